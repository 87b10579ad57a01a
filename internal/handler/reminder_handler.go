package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"todolist/internal/model"
	"todolist/internal/repository"
)

// ReminderScheduler планирует и отменяет уведомления по напоминаниям
type ReminderScheduler interface {
	Schedule(ctx context.Context, reminderID, triggerTime int64) error
	Cancel(ctx context.Context, reminderID int64) error
	Reschedule(ctx context.Context, reminderID, triggerTime int64) error
}

type ReminderHandler struct {
	reminders repository.ReminderRepositoryInterface
	scheduler ReminderScheduler
	logger    log.FieldLogger
}

func NewReminderHandler(reminders repository.ReminderRepositoryInterface, scheduler ReminderScheduler, logger log.FieldLogger) *ReminderHandler {
	return &ReminderHandler{reminders: reminders, scheduler: scheduler, logger: logger}
}

// ReminderRequest представляет запрос на создание или изменение напоминания.
// Title обязателен, но может быть пустой строкой
type ReminderRequest struct {
	TaskID      *string `json:"task_id"`
	Title       *string `json:"title" binding:"required"`
	Description string  `json:"description"`
	TriggerTime int64   `json:"trigger_time" binding:"required,gt=0"`
}

func (r ReminderRequest) toModel(id int64) model.Reminder {
	return model.Reminder{
		ID:          id,
		TaskID:      r.TaskID,
		Title:       *r.Title,
		Description: r.Description,
		TriggerTime: r.TriggerTime,
	}
}

// Create сохраняет напоминание и планирует уведомление
func (h *ReminderHandler) Create(c *gin.Context) {
	var req ReminderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	ctx := c.Request.Context()
	id, err := h.reminders.InsertReminder(ctx, req.toModel(0))
	if err != nil {
		h.logger.WithError(err).Error("insert reminder")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save reminder"})
		return
	}

	// Напоминание уже сохранено; ошибку планирования только логируем
	if err := h.scheduler.Schedule(ctx, id, req.TriggerTime); err != nil {
		h.logger.WithError(err).WithField("reminder_id", id).Error("schedule reminder")
	}

	c.JSON(http.StatusCreated, req.toModel(id))
}

// GetAll возвращает все напоминания или только попавшие в диапазон from..to
func (h *ReminderHandler) GetAll(c *gin.Context) {
	ctx := c.Request.Context()
	fromStr, toStr := c.Query("from"), c.Query("to")

	var (
		reminders []model.Reminder
		err       error
	)
	if fromStr == "" && toStr == "" {
		reminders, err = h.reminders.GetAllReminders(ctx)
	} else {
		from, ferr := strconv.ParseInt(fromStr, 10, 64)
		to, terr := strconv.ParseInt(toStr, 10, 64)
		if ferr != nil || terr != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "from and to must be epoch milliseconds"})
			return
		}
		reminders, err = h.reminders.GetRemindersByTimeRange(ctx, from, to)
	}
	if err != nil {
		h.logger.WithError(err).Error("get reminders")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve reminders"})
		return
	}

	c.JSON(http.StatusOK, reminders)
}

// GetByID возвращает напоминание по id
func (h *ReminderHandler) GetByID(c *gin.Context) {
	id, ok := reminderID(c)
	if !ok {
		return
	}

	reminder, err := h.reminders.GetReminderByID(c.Request.Context(), id)
	if err != nil {
		h.logger.WithError(err).Error("get reminder")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve reminder"})
		return
	}
	if reminder == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Reminder not found"})
		return
	}

	c.JSON(http.StatusOK, reminder)
}

// Update заменяет напоминание и переносит уведомление
func (h *ReminderHandler) Update(c *gin.Context) {
	id, ok := reminderID(c)
	if !ok {
		return
	}

	var req ReminderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	ctx := c.Request.Context()
	reminder := req.toModel(id)
	updated, err := h.reminders.UpdateReminder(ctx, reminder)
	if err != nil {
		h.logger.WithError(err).Error("update reminder")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save reminder"})
		return
	}
	if !updated {
		c.JSON(http.StatusNotFound, gin.H{"error": "Reminder not found"})
		return
	}
	if err := h.scheduler.Reschedule(ctx, id, reminder.TriggerTime); err != nil {
		h.logger.WithError(err).WithField("reminder_id", id).Error("reschedule reminder")
	}

	c.JSON(http.StatusOK, reminder)
}

// Delete удаляет напоминание и отменяет его уведомление
func (h *ReminderHandler) Delete(c *gin.Context) {
	id, ok := reminderID(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	if err := h.reminders.DeleteReminderByID(ctx, id); err != nil {
		h.logger.WithError(err).Error("delete reminder")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete reminder"})
		return
	}
	if err := h.scheduler.Cancel(ctx, id); err != nil {
		h.logger.WithError(err).WithField("reminder_id", id).Error("cancel reminder")
	}

	c.Status(http.StatusNoContent)
}

// GetByTaskID возвращает напоминания задачи
func (h *ReminderHandler) GetByTaskID(c *gin.Context) {
	reminders, err := h.reminders.GetRemindersByTaskID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.logger.WithError(err).Error("get task reminders")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve reminders"})
		return
	}

	c.JSON(http.StatusOK, reminders)
}

// DeleteByTaskID отменяет уведомления и удаляет все напоминания задачи
func (h *ReminderHandler) DeleteByTaskID(c *gin.Context) {
	ctx := c.Request.Context()
	taskID := c.Param("id")

	reminders, err := h.reminders.GetRemindersByTaskID(ctx, taskID)
	if err != nil {
		h.logger.WithError(err).Error("get task reminders")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve reminders"})
		return
	}
	for _, r := range reminders {
		if err := h.scheduler.Cancel(ctx, r.ID); err != nil {
			h.logger.WithError(err).WithField("reminder_id", r.ID).Error("cancel reminder")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to cancel reminders"})
			return
		}
	}

	n, err := h.reminders.DeleteRemindersByTaskID(ctx, taskID)
	if err != nil {
		h.logger.WithError(err).Error("delete task reminders")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete reminders"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted": n})
}

func reminderID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid reminder ID format"})
		return 0, false
	}
	return id, true
}
