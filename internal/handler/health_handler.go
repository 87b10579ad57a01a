package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

type Pinger interface {
	PingContext(ctx context.Context) error
}

type HealthHandler struct {
	db     Pinger
	logger log.FieldLogger
}

func NewHealthHandler(db Pinger, logger log.FieldLogger) *HealthHandler {
	return &HealthHandler{db: db, logger: logger}
}

// Health проверяет доступность базы данных; причина сбоя пишется только в лог
func (h *HealthHandler) Health(c *gin.Context) {
	if err := h.db.PingContext(c.Request.Context()); err != nil {
		h.logger.WithError(err).Error("health check: database ping")
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
