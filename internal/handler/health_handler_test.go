package handler_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"todolist/internal/handler"
)

type pingFunc func(ctx context.Context) error

func (f pingFunc) PingContext(ctx context.Context) error { return f(ctx) }

func TestHealth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	logger, _ := test.NewNullLogger()

	ok := gin.New()
	ok.GET("/health", handler.NewHealthHandler(pingFunc(func(context.Context) error { return nil }), logger).Health)
	resp := doJSON(ok, "GET", "/health", nil)
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.JSONEq(t, `{"status":"ok"}`, resp.Body.String())
}

func TestHealth_DatabaseErrorStaysInLog(t *testing.T) {
	// Arrange
	gin.SetMode(gin.TestMode)
	logger, hook := test.NewNullLogger()
	dbErr := errors.New("unable to open database file: /var/lib/todolist/todo.db")
	router := gin.New()
	router.GET("/health", handler.NewHealthHandler(pingFunc(func(context.Context) error { return dbErr }), logger).Health)

	// Act
	resp := doJSON(router, "GET", "/health", nil)

	// Assert
	assert.Equal(t, http.StatusServiceUnavailable, resp.Code)
	assert.JSONEq(t, `{"status":"unavailable"}`, resp.Body.String())
	assert.NotContains(t, resp.Body.String(), "/var/lib/todolist")
	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, log.ErrorLevel, entry.Level)
	assert.Equal(t, dbErr, entry.Data[log.ErrorKey])
}
