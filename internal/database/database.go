package database

import (
	"fmt"
	"net/url"
	"time"

	log "github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"todolist/internal/config"
)

// DSN builds a go-sqlite3 connection string. Writers take the lock at BEGIN so
// concurrent transactions queue on the busy timeout instead of failing on upgrade.
func DSN(path string, busyTimeout time.Duration) string {
	q := url.Values{}
	q.Set("_busy_timeout", fmt.Sprint(busyTimeout.Milliseconds()))
	q.Set("_journal_mode", "WAL")
	q.Set("_txlock", "immediate")
	return "file:" + path + "?" + q.Encode()
}

func Open(cfg config.DatabaseConfig, l log.FieldLogger) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(DSN(cfg.Path, cfg.BusyTimeout)), &gorm.Config{
		Logger: NewGormLogger(l),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", cfg.Path, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	// SQLite serializes writers anyway; a single connection keeps transactions
	// and the live-view readers from tripping over SQLITE_BUSY.
	sqlDB.SetMaxOpenConns(1)

	l.WithField("path", cfg.Path).Info("connected to database")
	return db, nil
}

func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// NewGormLogger routes gorm's SQL logging through logrus.
func NewGormLogger(l log.FieldLogger) gormlogger.Interface {
	return gormlogger.New(l, gormlogger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  gormlogger.Warn,
		IgnoreRecordNotFoundError: true,
	})
}
