// Package mapping derives search index mappings from content type fields.
package mapping

import (
	"github.com/stacklok/content-search-sync/internal/content"
)

const (
	// DateType is the mapping type assigned to datetime fields
	DateType = "date"

	// DateFormat matches the RFC3339 strings produced for datetime fields
	DateFormat = "yyyy-MM-dd'T'HH:mm:ssZZZZZ"
)

// Schema is the index mapping of one content type
type Schema struct {
	properties map[string]map[string]any
}

// Build derives the schema of a content type. Every field gets the user
// override when one exists, used verbatim. Otherwise datetime fields map to a
// date with a fixed format and every other field gets an empty entry, leaving
// the type to dynamic detection.
func Build(category content.Category) Schema {
	properties := make(map[string]map[string]any, len(category.Fields))
	for _, field := range category.Fields {
		if override, ok := category.Overrides[field.Name]; ok {
			properties[field.Name] = override
			continue
		}
		properties[field.Name] = defaultProperty(field.Type)
	}
	return Schema{properties: properties}
}

// BuildFor derives the schema of the named content type from a registry.
// Unknown content types yield an empty schema.
func BuildFor(registry content.TypeRegistry, name string) Schema {
	category, err := registry.Category(name)
	if err != nil {
		return Schema{properties: map[string]map[string]any{}}
	}
	return Build(category)
}

func defaultProperty(t content.FieldType) map[string]any {
	if t == content.FieldDatetime {
		return map[string]any{
			"type":   DateType,
			"format": DateFormat,
		}
	}
	return map[string]any{}
}

// Properties returns the per field mapping entries
func (s Schema) Properties() map[string]map[string]any {
	if s.properties == nil {
		return map[string]map[string]any{}
	}
	return s.properties
}

// Map renders the schema as a mapping document with source storage enabled
func (s Schema) Map() map[string]any {
	properties := make(map[string]any, len(s.properties))
	for name, p := range s.properties {
		properties[name] = p
	}
	return map[string]any{
		"_source": map[string]any{
			"enabled": true,
		},
		"properties": properties,
	}
}

// FromMap reads a mapping document as rendered by Map. Entries that are not
// objects are skipped.
func FromMap(doc map[string]any) Schema {
	properties := map[string]map[string]any{}
	raw, _ := doc["properties"].(map[string]any)
	for name, p := range raw {
		if entry, ok := p.(map[string]any); ok {
			properties[name] = entry
		}
	}
	return Schema{properties: properties}
}
