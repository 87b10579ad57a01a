package notification

import (
	"fmt"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"todolist/internal/config"
)

// NewFromConfig picks the notifier named in cfg. The returned func releases
// any connection the notifier holds.
func NewFromConfig(cfg config.NotifierConfig, logger log.FieldLogger) (Notifier, func() error, error) {
	switch cfg.Kind {
	case "", "log":
		return NewLogNotifier(logger), func() error { return nil }, nil
	case "redis":
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, nil, fmt.Errorf("parse REDIS_URL: %w", err)
		}
		client := redis.NewClient(opts)
		logger.WithField("channel", cfg.Channel).Info("publishing notifications to redis")
		return NewRedisNotifier(client, cfg.Channel, cfg.KeyPrefix, cfg.TTL), client.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown notifier %q", cfg.Kind)
	}
}
