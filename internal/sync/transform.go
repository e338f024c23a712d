package sync

import (
	"reflect"
	"strings"
	"time"

	"github.com/stacklok/content-search-sync/internal/content"
)

// Transform builds a search document body from record values. Only the
// registry fields are emitted; a field missing from values becomes null.
//
//   - datetime: RFC 3339 string for time values, null otherwise
//   - json, null: always null
//   - boolean: truthiness of the value
//   - anything else: passed through unchanged
func Transform(fields []content.Field, values map[string]any) map[string]any {
	body := make(map[string]any, len(fields))
	for _, f := range fields {
		v := values[f.Name]
		switch f.Type {
		case content.FieldDatetime:
			body[f.Name] = formatTime(v)
		case content.FieldJSON, content.FieldNull:
			body[f.Name] = nil
		case content.FieldBoolean:
			body[f.Name] = truthy(v)
		default:
			body[f.Name] = v
		}
	}
	return body
}

func formatTime(v any) any {
	switch t := v.(type) {
	case time.Time:
		return t.Format(time.RFC3339)
	case *time.Time:
		if t == nil {
			return nil
		}
		return t.Format(time.RFC3339)
	default:
		return nil
	}
}

// truthy follows loose scripting rules: zero numbers, empty strings, "0",
// "false", empty collections and nil are false.
func truthy(v any) bool {
	switch b := v.(type) {
	case nil:
		return false
	case bool:
		return b
	case string:
		s := strings.TrimSpace(b)
		return s != "" && s != "0" && !strings.EqualFold(s, "false")
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int() != 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return rv.Uint() != 0
	case reflect.Float32, reflect.Float64:
		return rv.Float() != 0
	case reflect.Slice, reflect.Map, reflect.Array:
		return rv.Len() > 0
	case reflect.Pointer, reflect.Interface:
		return !rv.IsNil()
	default:
		return true
	}
}
