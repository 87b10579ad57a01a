package notification_test

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/bytedance/sonic"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"todolist/internal/config"
	"todolist/internal/notification"
)

func TestRedisNotifier_StoresAndPublishes(t *testing.T) {
	// Arrange
	m := miniredis.RunT(t)
	rc := redis.NewClient(&redis.Options{Addr: m.Addr()})
	defer rc.Close()
	ctx := context.Background()
	sub := rc.Subscribe(ctx, "notifications")
	defer sub.Close()
	_, err := sub.Receive(ctx)
	require.NoError(t, err)

	n := notification.NewRedisNotifier(rc, "notifications", "notification:", time.Hour)
	note := notification.Notification{ID: 7, Title: "Pay rent", Body: "before 5th", TriggerTime: 1000}

	// Act
	require.NoError(t, n.Notify(ctx, note))

	// Assert: ключ с последним уведомлением
	raw, err := m.Get("notification:7")
	require.NoError(t, err)
	var stored notification.Notification
	require.NoError(t, sonic.UnmarshalString(raw, &stored))
	assert.Equal(t, note, stored)
	assert.Equal(t, time.Hour, m.TTL("notification:7"))

	// Assert: сообщение в канале
	msgCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	msg, err := sub.ReceiveMessage(msgCtx)
	require.NoError(t, err)
	assert.Equal(t, raw, msg.Payload)
}

func TestRedisNotifier_SameIDReplaces(t *testing.T) {
	m := miniredis.RunT(t)
	rc := redis.NewClient(&redis.Options{Addr: m.Addr()})
	defer rc.Close()
	n := notification.NewRedisNotifier(rc, "notifications", "notification:", 0)
	ctx := context.Background()

	require.NoError(t, n.Notify(ctx, notification.Notification{ID: 1, Title: "first"}))
	require.NoError(t, n.Notify(ctx, notification.Notification{ID: 1, Title: "second"}))

	keys := m.Keys()
	assert.Equal(t, []string{"notification:1"}, keys)
	raw, err := m.Get("notification:1")
	require.NoError(t, err)
	assert.Contains(t, raw, "second")
}

func TestRedisNotifier_ConnectionError(t *testing.T) {
	m := miniredis.RunT(t)
	rc := redis.NewClient(&redis.Options{Addr: m.Addr(), MaxRetries: -1})
	defer rc.Close()
	m.Close()
	n := notification.NewRedisNotifier(rc, "c", "p:", time.Minute)

	err := n.Notify(context.Background(), notification.Notification{ID: 1})

	assert.Error(t, err)
}

func TestLogNotifier(t *testing.T) {
	logger, hook := test.NewNullLogger()
	n := notification.NewLogNotifier(logger)

	require.NoError(t, n.Notify(context.Background(), notification.Notification{ID: 3, Title: "Water plants", Body: "balcony"}))

	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, "reminder", hook.LastEntry().Message)
	assert.Equal(t, int64(3), hook.LastEntry().Data["notification_id"])
	assert.Equal(t, "Water plants", hook.LastEntry().Data["title"])
}

func TestNewFromConfig(t *testing.T) {
	logger, _ := test.NewNullLogger()

	n, closeFn, err := notification.NewFromConfig(config.NotifierConfig{Kind: "log"}, logger)
	require.NoError(t, err)
	assert.IsType(t, &notification.LogNotifier{}, n)
	assert.NoError(t, closeFn())

	m := miniredis.RunT(t)
	n, closeFn, err = notification.NewFromConfig(config.NotifierConfig{
		Kind: "redis", RedisURL: "redis://" + m.Addr() + "/0", Channel: "c", KeyPrefix: "p:",
	}, logger)
	require.NoError(t, err)
	assert.IsType(t, &notification.RedisNotifier{}, n)
	assert.NoError(t, closeFn())

	_, _, err = notification.NewFromConfig(config.NotifierConfig{Kind: "pigeon"}, logger)
	assert.Error(t, err)
	_, _, err = notification.NewFromConfig(config.NotifierConfig{Kind: "redis", RedisURL: "::bad"}, logger)
	assert.Error(t, err)
}
