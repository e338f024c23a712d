package content

import (
	"time"
)

// dateLayouts are tried in order when turning stored datetime strings into time values
var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ParseDateTime parses a stored datetime value. Strings without a zone are read as UTC.
func ParseDateTime(s string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Hydrate converts the raw values of datetime fields into time.Time, the way
// the CMS storage layer hands them to its listeners. Values that cannot be
// parsed are left untouched. The input map is not modified.
func Hydrate(fields []Field, values map[string]any) map[string]any {
	out := make(map[string]any, len(values))
	for k, v := range values {
		out[k] = v
	}

	for _, f := range fields {
		if f.Type != FieldDatetime {
			continue
		}
		s, ok := out[f.Name].(string)
		if !ok {
			continue
		}
		if t, ok := ParseDateTime(s); ok {
			out[f.Name] = t
		}
	}
	return out
}
