// Package database opens the SQL content store and migrates its schema.
package database

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	// Registers the "sqlite" database/sql driver
	_ "modernc.org/sqlite"

	"github.com/stacklok/content-search-sync/internal/config"
)

// sqliteDriverName is the database/sql name registered by modernc.org/sqlite
const sqliteDriverName = "sqlite"

// Open connects to the configured content database. For postgres the password
// from the password file or environment replaces the one in the DSN.
func Open(cfg *config.DatabaseConfig) (*sql.DB, error) {
	if cfg == nil {
		return nil, fmt.Errorf("database configuration is required")
	}

	switch cfg.Driver {
	case config.DriverPostgres:
		connCfg, err := pgx.ParseConfig(cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("failed to parse postgres DSN: %w", err)
		}
		password, err := cfg.GetPassword()
		if err != nil {
			return nil, err
		}
		if password != "" {
			connCfg.Password = password
		}
		return stdlib.OpenDB(*connCfg), nil

	case config.DriverSQLite:
		db, err := sql.Open(sqliteDriverName, cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite database: %w", err)
		}
		// Every connection to an in-memory database sees its own empty database
		if isMemoryDSN(cfg.DSN) {
			db.SetMaxOpenConns(1)
		}
		return db, nil

	default:
		return nil, fmt.Errorf("unsupported database driver: %s", cfg.Driver)
	}
}

func isMemoryDSN(dsn string) bool {
	return dsn == ":memory:" || strings.Contains(dsn, "mode=memory")
}
