package config

import (
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

const (
	EnvLocal = "local"
	EnvDev   = "dev"
	EnvProd  = "prod"
)

type Config struct {
	Env        string `env:"ENV" env-default:"local"`
	ServerPort string `env:"SERVER_PORT" env-default:"8080"`
	LogLevel   string `env:"LOG_LEVEL" env-default:"info"`

	Database DatabaseConfig
	Auth     AuthConfig
	Prefs    PrefsConfig
	Jobs     JobsConfig
	Notifier NotifierConfig
}

type DatabaseConfig struct {
	Path        string        `env:"DB_PATH" env-default:"todolist.db"`
	BusyTimeout time.Duration `env:"DB_BUSY_TIMEOUT" env-default:"5s"`
}

type AuthConfig struct {
	JWTSecret string        `env:"JWT_SECRET" env-default:"supersecretkey"`
	JWTExpiry time.Duration `env:"JWT_EXPIRY" env-default:"720h"`
}

type PrefsConfig struct {
	Path string `env:"PREFS_PATH" env-default:"prefs.yaml"`
}

// JobsConfig tunes the deferred-action runner.
type JobsConfig struct {
	PollInterval time.Duration `env:"JOBS_POLL_INTERVAL" env-default:"1s"`
	Workers      int           `env:"JOBS_WORKERS" env-default:"4"`
	BatchSize    int           `env:"JOBS_BATCH" env-default:"32"`
	MaxAttempts  int           `env:"JOBS_MAX_ATTEMPTS" env-default:"5"`
	RetryInitial time.Duration `env:"JOBS_RETRY_INITIAL" env-default:"30s"`
	RetryMax     time.Duration `env:"JOBS_RETRY_MAX" env-default:"1h"`
}

type NotifierConfig struct {
	Kind      string        `env:"NOTIFIER" env-default:"log"`
	RedisURL  string        `env:"REDIS_URL" env-default:"redis://localhost:6379/0"`
	Channel   string        `env:"NOTIFIER_CHANNEL" env-default:"notifications"`
	KeyPrefix string        `env:"NOTIFIER_KEY_PREFIX" env-default:"notification:"`
	TTL       time.Duration `env:"NOTIFIER_TTL" env-default:"24h"`
}

func Load() (*Config, error) {
	err := godotenv.Load()
	if err != nil {
		log.Warn("No .env file found, using system environment variables")
	}

	cfg := new(Config)
	if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
