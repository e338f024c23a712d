package sources

import (
	"fmt"
	"io"

	"github.com/stacklok/content-search-sync/database"
	"github.com/stacklok/content-search-sync/internal/config"
	"github.com/stacklok/content-search-sync/internal/content"
)

// Source is a content source holding resources that must be released
type Source interface {
	content.Source
	io.Closer
}

// NewFromConfig creates the source described by cfg
func NewFromConfig(cfg config.ContentConfig, registry content.TypeRegistry) (Source, error) {
	switch cfg.Type {
	case config.ContentTypeFile:
		if cfg.File == nil {
			return nil, fmt.Errorf("file configuration is required")
		}
		return NewFileSource(cfg.File.Path, registry)

	case config.ContentTypeDatabase:
		if cfg.Database == nil {
			return nil, fmt.Errorf("database configuration is required")
		}
		db, err := database.Open(cfg.Database)
		if err != nil {
			return nil, err
		}
		src, err := NewDatabaseSource(db, cfg.Database.Driver, cfg.Database.GetTable(), registry)
		if err != nil {
			_ = db.Close()
			return nil, err
		}
		return src, nil

	default:
		return nil, fmt.Errorf("unsupported content source type: %s", cfg.Type)
	}
}
