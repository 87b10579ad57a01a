// Package notification delivers reminder notifications once their deferred
// action falls due.
package notification

import (
	"context"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"todolist/internal/model"
)

// Notification is what the user sees. ID is the reminder id; delivering the
// same ID again replaces the earlier notification.
type Notification struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	Body        string  `json:"body"`
	TaskID      *string `json:"task_id,omitempty"`
	TriggerTime int64   `json:"trigger_time"`
}

func FromReminder(r model.Reminder) Notification {
	return Notification{
		ID:          r.ID,
		Title:       r.Title,
		Body:        r.Description,
		TaskID:      r.TaskID,
		TriggerTime: r.TriggerTime,
	}
}

type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

// LogNotifier writes notifications to the application log.
type LogNotifier struct {
	logger log.FieldLogger
}

func NewLogNotifier(logger log.FieldLogger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Notify(_ context.Context, note Notification) error {
	n.logger.WithFields(log.Fields{
		"notification_id": note.ID,
		"title":           note.Title,
		"body":            note.Body,
	}).Info("reminder")
	return nil
}

// RedisNotifier keeps the latest notification per reminder under a key and
// publishes it for connected UIs.
type RedisNotifier struct {
	client    *redis.Client
	channel   string
	keyPrefix string
	ttl       time.Duration
}

func NewRedisNotifier(client *redis.Client, channel, keyPrefix string, ttl time.Duration) *RedisNotifier {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &RedisNotifier{client: client, channel: channel, keyPrefix: keyPrefix, ttl: ttl}
}

func (n *RedisNotifier) Key(id int64) string {
	return fmt.Sprintf("%s%d", n.keyPrefix, id)
}

func (n *RedisNotifier) Notify(ctx context.Context, note Notification) error {
	body, err := sonic.Marshal(note)
	if err != nil {
		return err
	}
	_, err = n.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Set(ctx, n.Key(note.ID), body, n.ttl)
		p.Publish(ctx, n.channel, body)
		return nil
	})
	return err
}
