package handler

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"todolist/internal/middleware"
	"todolist/internal/model"
	"todolist/internal/repository"
)

type TodoHandler struct {
	todos  repository.TodoRepositoryInterface
	logger log.FieldLogger
	now    func() time.Time
}

func NewTodoHandler(todos repository.TodoRepositoryInterface, logger log.FieldLogger) *TodoHandler {
	return &TodoHandler{todos: todos, logger: logger, now: time.Now}
}

// TodoRequest представляет запрос на создание или замену задачи
type TodoRequest struct {
	ID            string           `json:"id"`
	Text          string           `json:"text" binding:"required"`
	Importance    model.Importance `json:"importance" binding:"required"`
	Deadline      *int64           `json:"deadline"`
	Done          bool             `json:"done"`
	Color         *string          `json:"color"`
	Files         []string         `json:"files"`
	CreatedAt     int64            `json:"created_at"`
	LastUpdatedBy string           `json:"last_updated_by"`
}

// toModel заполняет значения по умолчанию: id, метки времени и автора изменения
func (r TodoRequest) toModel(deviceID string, now time.Time) model.TodoItem {
	item := model.TodoItem{
		ID:            r.ID,
		Text:          r.Text,
		Importance:    r.Importance,
		Deadline:      r.Deadline,
		Done:          r.Done,
		Color:         r.Color,
		Files:         r.Files,
		CreatedAt:     r.CreatedAt,
		ChangedAt:     now.UnixMilli(),
		LastUpdatedBy: r.LastUpdatedBy,
	}
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	if item.CreatedAt == 0 {
		item.CreatedAt = item.ChangedAt
	}
	if item.LastUpdatedBy == "" {
		item.LastUpdatedBy = deviceID
	}
	return item
}

// Create создает задачу или заменяет существующую с тем же id
func (h *TodoHandler) Create(c *gin.Context) {
	var req TodoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	ctx := c.Request.Context()
	todo := req.toModel(c.GetString(middleware.DeviceIDKey), h.now())
	// При замене без created_at сохраняем исходное время создания
	if req.ID != "" && req.CreatedAt == 0 {
		existing, err := h.todos.GetTodoByID(ctx, req.ID)
		if err != nil {
			h.logger.WithError(err).Error("get todo")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve todo"})
			return
		}
		if existing != nil {
			todo.CreatedAt = existing.CreatedAt
		}
	}
	if err := h.todos.InsertTodo(ctx, todo); err != nil {
		if errors.Is(err, repository.ErrInvalidImportance) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid importance"})
			return
		}
		h.logger.WithError(err).Error("insert todo")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save todo"})
		return
	}

	c.JSON(http.StatusCreated, todo)
}

// GetAll возвращает все задачи
func (h *TodoHandler) GetAll(c *gin.Context) {
	todos, err := h.todos.GetAllTodos(c.Request.Context())
	if err != nil {
		h.logger.WithError(err).Error("get todos")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve todos"})
		return
	}

	c.JSON(http.StatusOK, todos)
}

// GetByID возвращает задачу по id
func (h *TodoHandler) GetByID(c *gin.Context) {
	todo, err := h.todos.GetTodoByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.logger.WithError(err).Error("get todo")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve todo"})
		return
	}
	if todo == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Todo not found"})
		return
	}

	c.JSON(http.StatusOK, todo)
}

// Delete удаляет задачу; напоминания задачи не трогаем
func (h *TodoHandler) Delete(c *gin.Context) {
	if err := h.todos.DeleteTodoByID(c.Request.Context(), c.Param("id")); err != nil {
		h.logger.WithError(err).Error("delete todo")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete todo"})
		return
	}

	c.Status(http.StatusNoContent)
}

// ReplaceAll атомарно заменяет весь список задач
func (h *TodoHandler) ReplaceAll(c *gin.Context) {
	var reqs []TodoRequest
	if err := c.ShouldBindJSON(&reqs); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	deviceID := c.GetString(middleware.DeviceIDKey)
	now := h.now()
	todos := make([]model.TodoItem, 0, len(reqs))
	for _, req := range reqs {
		todos = append(todos, req.toModel(deviceID, now))
	}

	if err := h.todos.ReplaceTodos(c.Request.Context(), todos); err != nil {
		if errors.Is(err, repository.ErrInvalidImportance) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid importance"})
			return
		}
		h.logger.WithError(err).Error("replace todos")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to replace todos"})
		return
	}

	c.JSON(http.StatusOK, todos)
}

// Stream отдает список задач через SSE при каждом изменении
func (h *TodoHandler) Stream(c *gin.Context) {
	ctx := c.Request.Context()
	sub := h.todos.ObserveAllTodos(ctx)
	defer sub.Close()

	c.Header("Cache-Control", "no-cache")
	c.Stream(func(w io.Writer) bool {
		select {
		case todos, ok := <-sub.Updates():
			if !ok {
				if err := sub.Err(); err != nil {
					h.logger.WithError(err).Error("todo stream ended")
					c.SSEvent("error", gin.H{"error": "Failed to retrieve todos"})
				}
				return false
			}
			c.SSEvent("todos", todos)
			return true
		case <-ctx.Done():
			return false
		}
	})
}
