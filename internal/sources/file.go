package sources

import (
	"context"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/stacklok/content-search-sync/internal/content"
)

// recordsFile is the on disk layout of a file source. JSON is accepted as YAML.
type recordsFile struct {
	Records []fileRecord `yaml:"records"`
}

type fileRecord struct {
	ID          yaml.Node      `yaml:"id"`
	ContentType string         `yaml:"contentType"`
	Status      content.Status `yaml:"status"`
	Fields      map[string]any `yaml:"fields"`
}

// FileSource reads records from a local YAML or JSON file
type FileSource struct {
	path     string
	registry content.TypeRegistry
}

var _ Source = (*FileSource)(nil)

// NewFileSource creates a source reading path on every call
func NewFileSource(path string, registry content.TypeRegistry) (*FileSource, error) {
	if path == "" {
		return nil, fmt.Errorf("file path cannot be empty")
	}
	if registry == nil {
		return nil, fmt.Errorf("type registry is required")
	}
	return &FileSource{path: path, registry: registry}, nil
}

// GetRecords returns the records of category matching filter, ordered by ID
func (s *FileSource) GetRecords(_ context.Context, category string, filter content.Filter) ([]content.Record, error) {
	//nolint:gosec // File path comes from user configuration, this is expected behavior
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("file not found: %s", s.path)
		}
		return nil, fmt.Errorf("failed to read file %s: %w", s.path, err)
	}

	var file recordsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse records file %s: %w", s.path, err)
	}

	fields := s.registry.Fields(category)
	var records []content.Record
	for i, fr := range file.Records {
		if fr.ContentType != category {
			continue
		}
		if fr.ID.Kind != yaml.ScalarNode || fr.ID.Value == "" {
			return nil, fmt.Errorf("record %d of %s has no id", i, s.path)
		}

		record := content.Record{
			ID:       fr.ID.Value,
			Category: fr.ContentType,
			Status:   fr.Status,
			Fields:   content.Hydrate(fields, fr.Fields),
		}
		if filter.Matches(record) {
			records = append(records, record)
		}
	}

	sort.SliceStable(records, func(i, j int) bool {
		return lessID(records[i].ID, records[j].ID)
	})
	return records, nil
}

// Close implements Source
func (*FileSource) Close() error {
	return nil
}
