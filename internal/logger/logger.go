package logger

import (
	"os"
	"time"

	log "github.com/sirupsen/logrus"

	"todolist/internal/config"
)

// New builds the application logger. Local runs get a readable text format,
// everything else logs JSON.
func New(cfg *config.Config) *log.Logger {
	l := log.New()
	l.SetOutput(os.Stdout)

	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		l.WithField("level", cfg.LogLevel).Warn("unknown log level, falling back to info")
		level = log.InfoLevel
	}
	if os.Getenv("DEBUG") == "1" {
		level = log.DebugLevel
	}
	l.SetLevel(level)

	if cfg.Env == config.EnvLocal {
		l.SetFormatter(&log.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: time.DateTime,
		})
	} else {
		l.SetFormatter(&log.JSONFormatter{})
	}

	l.WithFields(log.Fields{"env": cfg.Env, "level": level.String()}).Info("initialized application logger")
	return l
}
