// Package schema owns the versioned layout of the todo_list and reminders
// tables and applies forward migrations between versions.
package schema

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Version is the schema version this build expects.
const Version uint = 3

//go:embed migrations/*.sql
var migrationsFS embed.FS

var (
	ErrDirty           = errors.New("database schema is dirty")
	ErrMigrationFailed = errors.New("schema migration failed")
	ErrTooNew          = errors.New("database schema is newer than supported")
)

type Manager struct {
	db  *sql.DB
	log log.FieldLogger
}

func NewManager(db *gorm.DB, l log.FieldLogger) (*Manager, error) {
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	return &Manager{db: sqlDB, log: l}, nil
}

// Migrate brings the database up to Version.
func (m *Manager) Migrate(ctx context.Context) error {
	return m.MigrateTo(ctx, Version)
}

// MigrateTo applies pending steps up to and including target. Migrations only
// go forward: a database already at or past target is left untouched.
func (m *Manager) MigrateTo(ctx context.Context, target uint) error {
	if target > Version {
		return fmt.Errorf("%w: target %d, supported %d", ErrTooNew, target, Version)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	mig, closeSrc, err := m.newMigrate()
	if err != nil {
		return err
	}
	defer closeSrc()

	if err := m.adoptLegacy(ctx, mig); err != nil {
		return err
	}

	current, dirty, err := mig.Version()
	switch {
	case errors.Is(err, migrate.ErrNilVersion):
		current = 0
	case err != nil:
		return fmt.Errorf("read schema version: %w", err)
	}
	if dirty {
		return fmt.Errorf("%w: version %d", ErrDirty, current)
	}
	if current > Version {
		return fmt.Errorf("%w: found %d, supported %d", ErrTooNew, current, Version)
	}
	if current >= target {
		m.log.WithField("version", current).Debug("schema up to date")
		return nil
	}

	if err := ctx.Err(); err != nil {
		return err
	}
	if err := mig.Migrate(target); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		m.log.WithError(err).WithField("target", target).Error("schema migration failed")
		return fmt.Errorf("%w: %v", ErrMigrationFailed, err)
	}

	if _, err := m.db.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", target)); err != nil {
		return fmt.Errorf("record user_version: %w", err)
	}
	m.log.WithFields(log.Fields{"from": current, "to": target}).Info("schema migrated")
	return nil
}

// Version reports the applied schema version. A fresh database reports 0.
func (m *Manager) Version() (uint, bool, error) {
	mig, closeSrc, err := m.newMigrate()
	if err != nil {
		return 0, false, err
	}
	defer closeSrc()

	v, dirty, err := mig.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	return v, dirty, err
}

// adoptLegacy registers databases created by the mobile build, which track
// their version only in PRAGMA user_version, so applied steps are not re-run.
func (m *Manager) adoptLegacy(ctx context.Context, mig *migrate.Migrate) error {
	_, _, err := mig.Version()
	if !errors.Is(err, migrate.ErrNilVersion) {
		return err
	}

	var userVersion int
	if err := m.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&userVersion); err != nil {
		return fmt.Errorf("read user_version: %w", err)
	}
	if userVersion <= 0 {
		return nil
	}
	if uint(userVersion) > Version {
		return fmt.Errorf("%w: found %d, supported %d", ErrTooNew, userVersion, Version)
	}

	m.log.WithField("version", userVersion).Info("adopting legacy database")
	return mig.Force(userVersion)
}

// newMigrate wires golang-migrate over the shared connection. The returned
// func closes only the source: Migrate.Close would close the *sql.DB too.
func (m *Manager) newMigrate() (*migrate.Migrate, func(), error) {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return nil, nil, fmt.Errorf("load migrations: %w", err)
	}
	drv, err := sqlite3.WithInstance(m.db, &sqlite3.Config{})
	if err != nil {
		_ = src.Close()
		return nil, nil, fmt.Errorf("init migrate driver: %w", err)
	}
	mig, err := migrate.NewWithInstance("iofs", src, "sqlite3", drv)
	if err != nil {
		_ = src.Close()
		return nil, nil, fmt.Errorf("init migrate: %w", err)
	}
	mig.Log = migrateLogger{m.log}
	return mig, func() { _ = src.Close() }, nil
}

type migrateLogger struct {
	l log.FieldLogger
}

func (ml migrateLogger) Printf(format string, v ...interface{}) {
	ml.l.Debugf(format, v...)
}

func (ml migrateLogger) Verbose() bool {
	return false
}
