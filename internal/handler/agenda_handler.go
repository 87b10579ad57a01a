package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"todolist/internal/agenda"
	"todolist/internal/model"
)

type AgendaService interface {
	Schedule(ctx context.Context) ([]agenda.Day, error)
	Day(ctx context.Context, date time.Time) ([]model.ScheduledItem, error)
	ParseDate(v string) (time.Time, error)
}

type AgendaHandler struct {
	agenda AgendaService
	logger log.FieldLogger
}

func NewAgendaHandler(agenda AgendaService, logger log.FieldLogger) *AgendaHandler {
	return &AgendaHandler{agenda: agenda, logger: logger}
}

// ScheduledItemResponse представляет задачу или напоминание в расписании
type ScheduledItemResponse struct {
	Type     string          `json:"type"`
	Time     int64           `json:"time"`
	IsPast   bool            `json:"is_past"`
	Todo     *model.TodoItem `json:"todo,omitempty"`
	Reminder *model.Reminder `json:"reminder,omitempty"`
}

// DayResponse представляет один день расписания
type DayResponse struct {
	Date  string                  `json:"date"`
	Items []ScheduledItemResponse `json:"items"`
}

// Schedule возвращает расписание, сгруппированное по дням
func (h *AgendaHandler) Schedule(c *gin.Context) {
	days, err := h.agenda.Schedule(c.Request.Context())
	if err != nil {
		h.logger.WithError(err).Error("build schedule")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build schedule"})
		return
	}

	resp := make([]DayResponse, 0, len(days))
	for _, d := range days {
		resp = append(resp, DayResponse{Date: d.Date, Items: toItemResponses(d.Items)})
	}
	c.JSON(http.StatusOK, resp)
}

// Calendar возвращает задачи и напоминания за один день (?date=YYYY-MM-DD)
func (h *AgendaHandler) Calendar(c *gin.Context) {
	date, err := h.agenda.ParseDate(c.Query("date"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
		return
	}

	items, err := h.agenda.Day(c.Request.Context(), date)
	if err != nil {
		h.logger.WithError(err).Error("build calendar day")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build calendar"})
		return
	}

	c.JSON(http.StatusOK, DayResponse{Date: date.Format(agenda.DateLayout), Items: toItemResponses(items)})
}

func toItemResponses(items []model.ScheduledItem) []ScheduledItemResponse {
	resp := make([]ScheduledItemResponse, 0, len(items))
	for _, item := range items {
		r := ScheduledItemResponse{Time: item.Time(), IsPast: item.IsPast()}
		switch v := item.(type) {
		case model.TaskItem:
			r.Type = "task"
			r.Todo = &v.Todo
		case model.ReminderItem:
			r.Type = "reminder"
			r.Reminder = &v.Reminder
		}
		resp = append(resp, r)
	}
	return resp
}
