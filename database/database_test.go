package database

import (
	"database/sql"
	"io/fs"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stacklok/content-search-sync/internal/config"
)

func openSQLite(t *testing.T) *sql.DB {
	t.Helper()

	db, err := Open(&config.DatabaseConfig{
		Driver: config.DriverSQLite,
		DSN:    filepath.Join(t.TempDir(), "content.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestOpen(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		cfg     *config.DatabaseConfig
		wantErr bool
	}{
		{name: "nil config", wantErr: true},
		{name: "unknown driver", cfg: &config.DatabaseConfig{Driver: "mysql", DSN: "x"}, wantErr: true},
		{name: "invalid postgres dsn", cfg: &config.DatabaseConfig{Driver: config.DriverPostgres, DSN: "postgres://%zz"}, wantErr: true},
		{name: "postgres without connecting", cfg: &config.DatabaseConfig{
			Driver: config.DriverPostgres, DSN: "postgres://user@localhost:5432/content",
		}},
		{name: "sqlite in memory", cfg: &config.DatabaseConfig{Driver: config.DriverSQLite, DSN: ":memory:"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			db, err := Open(tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NoError(t, db.Close())
		})
	}
}

func TestMigrations_SQLite(t *testing.T) {
	t.Parallel()

	db := openSQLite(t)

	require.NoError(t, MigrateUp(db, config.DriverSQLite))
	require.NoError(t, MigrateUp(db, config.DriverSQLite), "up to date schema is not an error")

	_, err := db.Exec(`INSERT INTO content_records (content_type, id, status, fields) VALUES ('article', '1', 'published', '{}')`)
	require.NoError(t, err)

	_, err = db.Exec(`INSERT INTO content_records (content_type, id, status) VALUES ('article', '2', 'archived')`)
	assert.Error(t, err, "status is constrained")

	m, err := NewMigrator(db, config.DriverSQLite)
	require.NoError(t, err)
	version, dirty, err := m.Version()
	require.NoError(t, err)
	assert.False(t, dirty)
	assert.Equal(t, uint(1), version)

	require.NoError(t, MigrateDown(db, config.DriverSQLite, 1))
	_, err = db.Exec(`SELECT 1 FROM content_records`)
	assert.Error(t, err)

	assert.Error(t, MigrateDown(db, config.DriverSQLite, 0))
}

func TestMigrations_EveryDriverHasMatchingFiles(t *testing.T) {
	t.Parallel()

	for _, driver := range []string{config.DriverPostgres, config.DriverSQLite} {
		ups, err := fs.Glob(migrationsFS, "migrations/"+driver+"/*.up.sql")
		require.NoError(t, err)
		downs, err := fs.Glob(migrationsFS, "migrations/"+driver+"/*.down.sql")
		require.NoError(t, err)

		assert.NotEmpty(t, ups, driver)
		assert.Len(t, downs, len(ups), driver)
	}

	_, err := NewMigrator(nil, "mysql")
	assert.Error(t, err)
}

func TestMigrations_Postgres(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	t.Parallel()

	db := SetupTestDB(t)

	m, err := NewMigrator(db, config.DriverPostgres)
	require.NoError(t, err)

	fnames, err := fs.Glob(migrationsFS, "migrations/postgres/*.up.sql")
	require.NoError(t, err)

	// SetupTestDB leaves the schema fully migrated
	for i := len(fnames); i >= 1; i-- {
		assert.NoError(t, m.Steps(-i))
		assert.NoError(t, m.Steps(i))
	}
}
