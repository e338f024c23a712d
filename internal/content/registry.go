package content

import (
	"fmt"
	"sort"

	"github.com/stacklok/content-search-sync/internal/config"
)

// ConfigRegistry is a TypeRegistry backed by the contentTypes and mappings
// sections of the configuration file.
type ConfigRegistry struct {
	categories map[string]Category
	names      []string
}

var _ TypeRegistry = (*ConfigRegistry)(nil)

// NewConfigRegistry builds the registry from a loaded configuration
func NewConfigRegistry(cfg *config.Config) (*ConfigRegistry, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	categories := make([]Category, 0, len(cfg.ContentTypes))
	for name, ct := range cfg.ContentTypes {
		fields := ct.GetFields()
		category := Category{
			Name:       name,
			Fields:     make([]Field, 0, len(fields)),
			Searchable: ct.Searchable,
			Overrides:  cfg.GetTypeMapping(name),
		}
		for _, f := range fields {
			category.Fields = append(category.Fields, Field{Name: f.Name, Type: FieldType(f.Type)})
		}
		categories = append(categories, category)
	}

	return NewStaticRegistry(categories...), nil
}

// NewStaticRegistry builds a registry from explicit categories
func NewStaticRegistry(categories ...Category) *ConfigRegistry {
	r := &ConfigRegistry{categories: make(map[string]Category, len(categories))}
	for _, c := range categories {
		if _, exists := r.categories[c.Name]; !exists {
			r.names = append(r.names, c.Name)
		}
		r.categories[c.Name] = c
	}
	sort.Strings(r.names)
	return r
}

// Categories returns every content type sorted by name
func (r *ConfigRegistry) Categories() []Category {
	out := make([]Category, 0, len(r.names))
	for _, name := range r.names {
		out = append(out, r.categories[name])
	}
	return out
}

// Category returns the named content type
func (r *ConfigRegistry) Category(name string) (Category, error) {
	c, ok := r.categories[name]
	if !ok {
		return Category{}, fmt.Errorf("%w: %s", ErrUnknownCategory, name)
	}
	return c, nil
}

// Fields returns the ordered fields of the named content type
func (r *ConfigRegistry) Fields(name string) []Field {
	return r.categories[name].Fields
}

// IsSearchable reports whether the named content type is configured as searchable
func (r *ConfigRegistry) IsSearchable(name string) bool {
	return r.categories[name].Searchable
}

// Searchable returns the searchable content types of a registry, sorted by name
func Searchable(r TypeRegistry) []Category {
	var out []Category
	for _, c := range r.Categories() {
		if c.Searchable {
			out = append(out, c)
		}
	}
	return out
}
