package sources

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strconv"

	"github.com/stacklok/content-search-sync/internal/config"
	"github.com/stacklok/content-search-sync/internal/content"
)

var tableNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// recordQueries holds the record queries per driver. %s is the validated table name.
var recordQueries = map[string]struct{ all, byStatus string }{
	config.DriverPostgres: {
		all:      "SELECT id, status, fields FROM %s WHERE content_type = $1 ORDER BY id",
		byStatus: "SELECT id, status, fields FROM %s WHERE content_type = $1 AND status = $2 ORDER BY id",
	},
	config.DriverSQLite: {
		all:      "SELECT id, status, fields FROM %s WHERE content_type = ? ORDER BY id",
		byStatus: "SELECT id, status, fields FROM %s WHERE content_type = ? AND status = ? ORDER BY id",
	},
}

// DatabaseSource reads records from the content_records table of a SQL database
type DatabaseSource struct {
	db       *sql.DB
	driver   string
	table    string
	registry content.TypeRegistry
}

var _ Source = (*DatabaseSource)(nil)

// NewDatabaseSource creates a source over an open database. The source owns db
// and closes it on Close.
func NewDatabaseSource(db *sql.DB, driver, table string, registry content.TypeRegistry) (*DatabaseSource, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is required")
	}
	if registry == nil {
		return nil, fmt.Errorf("type registry is required")
	}
	if _, ok := recordQueries[driver]; !ok {
		return nil, fmt.Errorf("unsupported database driver: %s", driver)
	}
	if !tableNamePattern.MatchString(table) {
		return nil, fmt.Errorf("invalid table name: %q", table)
	}
	return &DatabaseSource{db: db, driver: driver, table: table, registry: registry}, nil
}

// GetRecords returns the records of category matching filter, ordered by ID
func (s *DatabaseSource) GetRecords(ctx context.Context, category string, filter content.Filter) ([]content.Record, error) {
	query, args := s.recordsQuery(category, filter)
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query records of %s: %w", category, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	fields := s.registry.Fields(category)
	var records []content.Record
	for rows.Next() {
		var (
			id, status string
			raw        []byte
		)
		if err := rows.Scan(&id, &status, &raw); err != nil {
			return nil, fmt.Errorf("failed to scan record of %s: %w", category, err)
		}

		values := map[string]any{}
		if len(raw) > 0 {
			if err := json.Unmarshal(raw, &values); err != nil {
				return nil, fmt.Errorf("failed to decode fields of %s %s: %w", category, id, err)
			}
		}

		records = append(records, content.Record{
			ID:       id,
			Category: category,
			Status:   content.Status(status),
			Fields:   content.Hydrate(fields, values),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read records of %s: %w", category, err)
	}

	sort.SliceStable(records, func(i, j int) bool {
		return lessID(records[i].ID, records[j].ID)
	})
	return records, nil
}

// Ping checks the database connection
func (s *DatabaseSource) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database
func (s *DatabaseSource) Close() error {
	return s.db.Close()
}

func (s *DatabaseSource) recordsQuery(category string, filter content.Filter) (string, []any) {
	q := recordQueries[s.driver]
	if filter.Status == "" {
		return fmt.Sprintf(q.all, s.table), []any{category}
	}
	return fmt.Sprintf(q.byStatus, s.table), []any{category, string(filter.Status)}
}

// lessID orders numeric IDs by value and everything else lexically, numbers first
func lessID(a, b string) bool {
	ai, aErr := strconv.ParseInt(a, 10, 64)
	bi, bErr := strconv.ParseInt(b, 10, 64)
	switch {
	case aErr == nil && bErr == nil:
		return ai < bi
	case aErr == nil:
		return true
	case bErr == nil:
		return false
	default:
		return a < b
	}
}
