package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"todolist/internal/config"
	"todolist/internal/jobs"
	"todolist/internal/model"
	"todolist/internal/prefs"
	"todolist/internal/scheduler"
	"todolist/internal/server"
)

func testConfig(t *testing.T) *config.Config {
	dir := t.TempDir()
	return &config.Config{
		Env:        config.EnvLocal,
		ServerPort: "0",
		Database:   config.DatabaseConfig{Path: filepath.Join(dir, "todolist.db"), BusyTimeout: time.Second},
		Auth:       config.AuthConfig{JWTSecret: "test-secret", JWTExpiry: time.Hour},
		Prefs:      config.PrefsConfig{Path: filepath.Join(dir, "prefs.yaml")},
		Jobs:       config.JobsConfig{PollInterval: time.Second, Workers: 1, BatchSize: 8, MaxAttempts: 3},
		Notifier:   config.NotifierConfig{Kind: "log"},
	}
}

func request(t *testing.T, s *server.Server, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, _ := http.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp := httptest.NewRecorder()
	s.Engine.ServeHTTP(resp, req)
	return resp
}

func TestInit_IssuesTokenAndServesRoutes(t *testing.T) {
	// Arrange
	cfg := testConfig(t)
	logger, _ := test.NewNullLogger()
	s, err := server.Init(cfg, logger)
	require.NoError(t, err)
	defer s.Close()

	// Токен сохранен в файл настроек для локального UI
	p, err := prefs.Open(cfg.Prefs.Path)
	require.NoError(t, err)
	stored, err := p.GetToken()
	require.NoError(t, err)
	assert.Equal(t, s.Token, stored)

	// Act / Assert
	assert.Equal(t, http.StatusOK, request(t, s, "GET", "/health", "", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, request(t, s, "GET", "/todos", "", nil).Code)

	resp := request(t, s, "POST", "/todos", s.Token, map[string]any{"text": "Buy milk", "importance": "basic"})
	require.Equal(t, http.StatusCreated, resp.Code)

	resp = request(t, s, "GET", "/todos", s.Token, nil)
	require.Equal(t, http.StatusOK, resp.Code)
	var todos []model.TodoItem
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &todos))
	require.Len(t, todos, 1)
	assert.Equal(t, "Buy milk", todos[0].Text)
}

func TestInit_ReminderLifecycleDrivesQueue(t *testing.T) {
	// Arrange
	cfg := testConfig(t)
	logger, _ := test.NewNullLogger()
	s, err := server.Init(cfg, logger)
	require.NoError(t, err)
	defer s.Close()
	queue, err := jobs.NewQueue(s.DB)
	require.NoError(t, err)
	ctx := context.Background()
	future := time.Now().Add(time.Hour).UnixMilli()

	// Act: создание планирует уведомление
	resp := request(t, s, "POST", "/reminders", s.Token, map[string]any{"title": "Call mom", "trigger_time": future})
	require.Equal(t, http.StatusCreated, resp.Code)
	var created model.Reminder
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &created))

	// Assert
	pending, err := queue.Pending(ctx, scheduler.Tag(created.ID))
	require.NoError(t, err)
	assert.Len(t, pending, 1)

	// Перенос оставляет ровно одно действие
	resp = request(t, s, "PUT", "/reminders/"+strconv.FormatInt(created.ID, 10), s.Token, map[string]any{"title": "Call mom", "trigger_time": future + 1000})
	require.Equal(t, http.StatusOK, resp.Code)
	pending, err = queue.Pending(ctx, scheduler.Tag(created.ID))
	require.NoError(t, err)
	assert.Len(t, pending, 1)

	// Удаление отменяет уведомление
	resp = request(t, s, "DELETE", "/reminders/"+strconv.FormatInt(created.ID, 10), s.Token, nil)
	require.Equal(t, http.StatusNoContent, resp.Code)
	pending, err = queue.Pending(ctx, scheduler.Tag(created.ID))
	require.NoError(t, err)
	assert.Empty(t, pending)

	// Изменение удалённого напоминания не воскрешает его
	resp = request(t, s, "PUT", "/reminders/"+strconv.FormatInt(created.ID, 10), s.Token, map[string]any{"title": "late edit", "trigger_time": future})
	assert.Equal(t, http.StatusNotFound, resp.Code)
	resp = request(t, s, "GET", "/reminders/"+strconv.FormatInt(created.ID, 10), s.Token, nil)
	assert.Equal(t, http.StatusNotFound, resp.Code)
	pending, err = queue.Pending(ctx, scheduler.Tag(created.ID))
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestInit_ReusesValidToken(t *testing.T) {
	cfg := testConfig(t)
	logger, _ := test.NewNullLogger()

	first, err := server.Init(cfg, logger)
	require.NoError(t, err)
	first.Close()

	second, err := server.Init(cfg, logger)
	require.NoError(t, err)
	defer second.Close()

	assert.Equal(t, first.Token, second.Token)
}

func TestInit_UnknownNotifier(t *testing.T) {
	cfg := testConfig(t)
	cfg.Notifier.Kind = "pigeon"
	logger, _ := test.NewNullLogger()

	_, err := server.Init(cfg, logger)

	assert.Error(t, err)
}
