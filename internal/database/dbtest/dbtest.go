// Package dbtest opens throwaway SQLite databases for tests.
package dbtest

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"todolist/internal/config"
	"todolist/internal/database"
	"todolist/internal/schema"
)

// OpenRaw opens an empty database file under t.TempDir without running migrations.
func OpenRaw(t *testing.T) *gorm.DB {
	t.Helper()
	logger, _ := test.NewNullLogger()
	path := filepath.Join(t.TempDir(), "todolist.db")

	db, err := database.Open(config.DatabaseConfig{Path: path, BusyTimeout: 5 * time.Second}, logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })
	return db
}

// Open returns a database migrated to the current schema version.
func Open(t *testing.T) *gorm.DB {
	t.Helper()
	db := OpenRaw(t)
	logger, _ := test.NewNullLogger()

	m, err := schema.NewManager(db, logger)
	require.NoError(t, err)
	require.NoError(t, m.Migrate(context.Background()))
	return db
}

// Mock returns a gorm handle backed by sqlmock for error-path tests.
func Mock(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	// the sqlite dialector probes the engine version on open
	mock.ExpectQuery(`select sqlite_version\(\)`).
		WillReturnRows(sqlmock.NewRows([]string{"sqlite_version()"}).AddRow("3.45.1"))

	gormDB, err := gorm.Open(sqlite.Dialector{DriverName: "sqlite3", Conn: db}, &gorm.Config{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return gormDB, mock
}
