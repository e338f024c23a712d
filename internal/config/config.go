// Package config provides configuration loading and management for the content sync server.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/tailscale/hujson"
	"gopkg.in/yaml.v3"

	"github.com/stacklok/content-search-sync/internal/telemetry"
)

// EnvPrefix is the prefix for environment variables read through viper
const EnvPrefix = "CONTENT_SYNC"

const (
	// EngineElasticsearch indexes documents into an Elasticsearch cluster
	EngineElasticsearch = "elasticsearch"

	// EngineBleve indexes documents into embedded bleve indices on local disk
	EngineBleve = "bleve"
)

const (
	// ContentTypeFile reads records from a local YAML or JSON file
	ContentTypeFile = "file"

	// ContentTypeDatabase reads records from a SQL database
	ContentTypeDatabase = "database"
)

const (
	// DriverPostgres selects the pgx driver
	DriverPostgres = "postgres"

	// DriverSQLite selects the pure Go sqlite driver
	DriverSQLite = "sqlite"
)

const defaultReindexTimeout = 10 * time.Minute

// Option defines the interface for configuration options
type Option func(*loaderConfig) error

// loaderConfig defines the configuration for loading a configuration
type loaderConfig struct {
	path string
}

// WithConfigPath loads configuration from a YAML file
func WithConfigPath(path string) Option {
	return func(cfg *loaderConfig) error {
		if path == "" {
			return fmt.Errorf("path is required")
		}

		// Resolve symlinks to prevent symlink attacks.
		// Note that this calls filepath.Clean internally.
		realPath, err := filepath.EvalSymlinks(path)
		if err != nil {
			return fmt.Errorf("failed to evaluate symlinks: %w", err)
		}

		if !filepath.IsAbs(realPath) {
			if !filepath.IsLocal(realPath) {
				return fmt.Errorf("path is not local or contains invalid traversal: %s", path)
			}
		}

		cfg.path = realPath
		return nil
	}
}

// Config represents the root configuration structure
type Config struct {
	// Search configures the search engine the content is mirrored into
	Search SearchConfig `yaml:"search"`

	// Mappings holds per content type field overrides, used verbatim in the index mapping
	Mappings map[string]map[string]map[string]any `yaml:"mappings,omitempty"`

	// ContentTypes describes every content type known to the CMS
	ContentTypes map[string]ContentTypeConfig `yaml:"contentTypes"`

	// Content configures where records are read from during a full reindex
	Content ContentConfig `yaml:"content"`

	// Reindex controls full reindex runs triggered over HTTP
	Reindex *ReindexConfig `yaml:"reindex,omitempty"`

	// Telemetry configures OpenTelemetry tracing and metrics
	Telemetry *telemetry.Config `yaml:"telemetry,omitempty"`
}

// SearchConfig defines the search engine connection
type SearchConfig struct {
	// Engine selects the search engine implementation, defaults to elasticsearch
	Engine string `yaml:"engine,omitempty"`

	// Hosts are the engine endpoints, e.g. http://localhost:9200
	Hosts []string `yaml:"hosts,omitempty"`

	// Index is the base index name. Every content type gets <index>-<type>
	Index string `yaml:"index"`

	// IndexSettings are engine level settings sent when an index is created
	IndexSettings map[string]any `yaml:"indexSettings,omitempty"`

	// MappingsFile is an optional HuJSON file with additional per content type overrides.
	// Entries in the YAML mappings section win over entries from this file.
	MappingsFile string `yaml:"mappingsFile,omitempty"`

	// Username for basic authentication
	Username string `yaml:"username,omitempty"`

	// PasswordFile is the path to a file containing the basic auth password
	PasswordFile string `yaml:"passwordFile,omitempty"`

	// Bleve holds settings for the embedded engine
	Bleve *BleveConfig `yaml:"bleve,omitempty"`
}

// BleveConfig defines the embedded engine storage
type BleveConfig struct {
	// Path is the directory holding one bleve index per content type.
	// Defaults to content-sync/indices under the XDG data directory.
	Path string `yaml:"path,omitempty"`
}

// GetPath returns the index directory, defaulting to $XDG_DATA_HOME/content-sync/indices
func (b *BleveConfig) GetPath() string {
	if b == nil || b.Path == "" {
		return filepath.Join(xdg.DataHome, "content-sync", "indices")
	}
	return b.Path
}

// ContentTypeConfig describes a single content type
type ContentTypeConfig struct {
	// Searchable marks the content type for indexing
	Searchable bool `yaml:"searchable"`

	// Fields maps field names to their storage type (text, datetime, boolean, json, ...)
	Fields yaml.Node `yaml:"fields"`
}

// ContentConfig defines the record source
type ContentConfig struct {
	// Type is either file or database
	Type string `yaml:"type"`

	File     *FileConfig     `yaml:"file,omitempty"`
	Database *DatabaseConfig `yaml:"database,omitempty"`
}

// FileConfig defines local file source configuration
type FileConfig struct {
	// Path is the path to the records file (YAML or JSON)
	Path string `yaml:"path"`
}

// DatabaseConfig defines database connection settings
type DatabaseConfig struct {
	// Driver is postgres or sqlite
	Driver string `yaml:"driver"`

	// DSN is the driver specific data source name.
	// For postgres the password may be left out and supplied through PasswordFile
	// or the CONTENT_SYNC_DATABASE_PASSWORD environment variable.
	DSN string `yaml:"dsn"`

	// PasswordFile is the path to a file containing the database password
	PasswordFile string `yaml:"passwordFile,omitempty"`

	// Table overrides the records table name, defaults to content_records
	Table string `yaml:"table,omitempty"`
}

// ReindexConfig defines limits for a full reindex
type ReindexConfig struct {
	// Timeout bounds a reindex started from the management endpoint (e.g. "10m")
	Timeout string `yaml:"timeout,omitempty"`

	// OnStartup runs a full reindex in the background when the server starts
	OnStartup bool `yaml:"onStartup,omitempty"`
}

// Field is a single named field of a content type
type Field struct {
	Name string
	Type string
}

// LoadConfig loads and parses configuration from a YAML file
func LoadConfig(opts ...Option) (*Config, error) {
	loaderCfg := &loaderConfig{}
	for _, opt := range opts {
		if err := opt(loaderCfg); err != nil {
			return nil, err
		}
	}

	if loaderCfg.path == "" {
		return nil, fmt.Errorf("path is required")
	}

	data, err := os.ReadFile(loaderCfg.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return ParseConfig(data, filepath.Dir(loaderCfg.path))
}

// ParseConfig parses YAML configuration. Relative paths to auxiliary files
// (such as the mappings file) are resolved against baseDir.
func ParseConfig(data []byte, baseDir string) (*Config, error) {
	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML config: %w", err)
	}

	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	if config.Search.MappingsFile != "" {
		path := config.Search.MappingsFile
		if !filepath.IsAbs(path) {
			path = filepath.Join(baseDir, path)
		}
		fileMappings, err := loadMappingsFile(path)
		if err != nil {
			return nil, err
		}
		config.Mappings = mergeMappings(fileMappings, config.Mappings)
	}

	return &config, nil
}

// loadMappingsFile reads per content type overrides from a HuJSON file.
// Comments and trailing commas are allowed.
func loadMappingsFile(path string) (map[string]map[string]map[string]any, error) {
	// #nosec G304 -- path comes from the operator supplied configuration
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read mappings file: %w", err)
	}

	standard, err := hujson.Standardize(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse mappings file %s: %w", path, err)
	}

	var mappings map[string]map[string]map[string]any
	if err := json.Unmarshal(standard, &mappings); err != nil {
		return nil, fmt.Errorf("failed to decode mappings file %s: %w", path, err)
	}
	return mappings, nil
}

// mergeMappings overlays the overrides on top of base, field by field
func mergeMappings(base, overrides map[string]map[string]map[string]any) map[string]map[string]map[string]any {
	merged := make(map[string]map[string]map[string]any, len(base))
	for contentType, fields := range base {
		merged[contentType] = make(map[string]map[string]any, len(fields))
		for field, mapping := range fields {
			merged[contentType][field] = mapping
		}
	}
	for contentType, fields := range overrides {
		if merged[contentType] == nil {
			merged[contentType] = make(map[string]map[string]any, len(fields))
		}
		for field, mapping := range fields {
			merged[contentType][field] = mapping
		}
	}
	return merged
}

// GetEngine returns the configured engine, defaulting to elasticsearch
func (s *SearchConfig) GetEngine() string {
	if s.Engine == "" {
		return EngineElasticsearch
	}
	return s.Engine
}

// GetPassword returns the basic auth password using the following priority:
// 1. Read from PasswordFile if specified
// 2. Read from CONTENT_SYNC_SEARCH_PASSWORD environment variable
//
// An empty password is not an error, authentication is optional.
func (s *SearchConfig) GetPassword() (string, error) {
	return readSecret(s.PasswordFile, EnvPrefix+"_SEARCH_PASSWORD")
}

// GetPassword returns the database password from PasswordFile or
// CONTENT_SYNC_DATABASE_PASSWORD. An empty password is not an error.
func (d *DatabaseConfig) GetPassword() (string, error) {
	return readSecret(d.PasswordFile, EnvPrefix+"_DATABASE_PASSWORD")
}

// GetTable returns the records table name
func (d *DatabaseConfig) GetTable() string {
	if d.Table == "" {
		return "content_records"
	}
	return d.Table
}

func readSecret(path, envVar string) (string, error) {
	if path != "" {
		cleanPath := filepath.Clean(path)

		data, err := os.ReadFile(cleanPath)
		if err != nil {
			return "", fmt.Errorf("failed to read password from file %s: %w", path, err)
		}

		// Trim whitespace (including newlines) from file content
		return strings.TrimSpace(string(data)), nil
	}

	return os.Getenv(envVar), nil
}

// GetTimeout returns the reindex timeout, defaulting to ten minutes
func (r *ReindexConfig) GetTimeout() time.Duration {
	if r == nil || r.Timeout == "" {
		return defaultReindexTimeout
	}
	d, err := time.ParseDuration(r.Timeout)
	if err != nil {
		return defaultReindexTimeout
	}
	return d
}

// GetFields returns the fields of a content type in declaration order
func (c *ContentTypeConfig) GetFields() []Field {
	if c.Fields.Kind != yaml.MappingNode {
		return nil
	}

	fields := make([]Field, 0, len(c.Fields.Content)/2)
	for i := 0; i+1 < len(c.Fields.Content); i += 2 {
		key := c.Fields.Content[i]
		value := c.Fields.Content[i+1]
		fields = append(fields, Field{Name: key.Value, Type: fieldType(value)})
	}
	return fields
}

// fieldType accepts both the short form (title: text) and the
// CMS form (title: {type: text, ...})
func fieldType(node *yaml.Node) string {
	switch node.Kind {
	case yaml.ScalarNode:
		return node.Value
	case yaml.MappingNode:
		for i := 0; i+1 < len(node.Content); i += 2 {
			if node.Content[i].Value == "type" {
				return node.Content[i+1].Value
			}
		}
	}
	return ""
}

// SearchableContentTypes returns the names of all searchable content types, sorted
func (c *Config) SearchableContentTypes() []string {
	var names []string
	for name, ct := range c.ContentTypes {
		if ct.Searchable {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// GetTypeMapping returns the user supplied overrides for a content type
func (c *Config) GetTypeMapping(contentType string) map[string]map[string]any {
	if mapping, ok := c.Mappings[contentType]; ok {
		return mapping
	}
	return map[string]map[string]any{}
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	if c == nil {
		return fmt.Errorf("config cannot be nil")
	}

	if err := c.validateSearch(); err != nil {
		return err
	}

	if len(c.ContentTypes) == 0 {
		return fmt.Errorf("at least one content type must be configured")
	}

	for name, ct := range c.ContentTypes {
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("contentTypes: name is required")
		}
		if ct.Fields.Kind != 0 && ct.Fields.Kind != yaml.MappingNode {
			return fmt.Errorf("contentTypes[%s]: fields must be a mapping of field name to type", name)
		}
	}

	if err := c.validateContent(); err != nil {
		return err
	}

	if c.Reindex != nil && c.Reindex.Timeout != "" {
		if _, err := time.ParseDuration(c.Reindex.Timeout); err != nil {
			return fmt.Errorf("reindex.timeout must be a valid duration (e.g., '5m'): %w", err)
		}
	}

	return c.Telemetry.Validate()
}

func (c *Config) validateSearch() error {
	if c.Search.Index == "" {
		return fmt.Errorf("search.index is required")
	}

	switch c.Search.GetEngine() {
	case EngineElasticsearch:
		if len(c.Search.Hosts) == 0 {
			return fmt.Errorf("search.hosts: at least one host is required for %s", EngineElasticsearch)
		}
		for i, host := range c.Search.Hosts {
			if host == "" {
				return fmt.Errorf("search.hosts[%d]: host cannot be empty", i)
			}
		}
	case EngineBleve:
		if c.Search.Bleve.GetPath() == "" {
			return fmt.Errorf("search.bleve.path is required for %s, no XDG data directory is available", EngineBleve)
		}
	default:
		return fmt.Errorf("search.engine must be one of %s or %s, got %s",
			EngineElasticsearch, EngineBleve, c.Search.Engine)
	}

	return nil
}

func (c *Config) validateContent() error {
	switch c.Content.Type {
	case ContentTypeFile:
		if c.Content.File == nil || c.Content.File.Path == "" {
			return fmt.Errorf("content.file.path is required")
		}
	case ContentTypeDatabase:
		db := c.Content.Database
		if db == nil {
			return fmt.Errorf("content.database is required")
		}
		if db.Driver != DriverPostgres && db.Driver != DriverSQLite {
			return fmt.Errorf("content.database.driver must be either %s or %s, got %s",
				DriverPostgres, DriverSQLite, db.Driver)
		}
		if db.DSN == "" {
			return fmt.Errorf("content.database.dsn is required")
		}
	default:
		return fmt.Errorf("content.type must be either %s or %s, got %s",
			ContentTypeFile, ContentTypeDatabase, c.Content.Type)
	}
	return nil
}
