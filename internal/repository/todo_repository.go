package repository

import (
	"context"
	"fmt"

	"todolist/internal/model"
	"todolist/internal/store"
)

type TodoRepository struct {
	store *store.TodoStore
}

type TodoRepositoryInterface interface {
	InsertTodo(ctx context.Context, todo model.TodoItem) error
	GetAllTodos(ctx context.Context) ([]model.TodoItem, error)
	ObserveAllTodos(ctx context.Context) *store.Subscription[[]model.TodoItem]
	GetTodoByID(ctx context.Context, id string) (*model.TodoItem, error)
	DeleteTodoByID(ctx context.Context, id string) error
	ReplaceTodos(ctx context.Context, todos []model.TodoItem) error
}

var _ TodoRepositoryInterface = (*TodoRepository)(nil)

func NewTodoRepository(s *store.TodoStore) *TodoRepository {
	return &TodoRepository{store: s}
}

// InsertTodo inserts a todo or replaces the one with the same id
func (r *TodoRepository) InsertTodo(ctx context.Context, todo model.TodoItem) error {
	if err := checkImportance(todo.Importance); err != nil {
		return err
	}
	e := toTodoEntity(todo)
	if err := r.store.InsertTask(ctx, &e); err != nil {
		return fmt.Errorf("insert todo %s: %w", todo.ID, err)
	}
	return nil
}

// GetAllTodos retrieves all todos in table order
func (r *TodoRepository) GetAllTodos(ctx context.Context) ([]model.TodoItem, error) {
	rows, err := r.store.GetAllTasks(ctx)
	if err != nil {
		return nil, fmt.Errorf("get all todos: %w", err)
	}
	return toTodoItems(rows), nil
}

// ObserveAllTodos emits the full list on subscribe and after every change.
// Rapid writes may be folded into one emission.
func (r *TodoRepository) ObserveAllTodos(ctx context.Context) *store.Subscription[[]model.TodoItem] {
	return store.Watch(ctx, r.store.Feed(), r.GetAllTodos)
}

// GetTodoByID returns nil when the todo does not exist
func (r *TodoRepository) GetTodoByID(ctx context.Context, id string) (*model.TodoItem, error) {
	row, err := r.store.GetTaskByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get todo %s: %w", id, err)
	}
	if row == nil {
		return nil, nil
	}
	todo := toTodoItem(*row)
	return &todo, nil
}

// DeleteTodoByID removes a todo; deleting a missing id is not an error
func (r *TodoRepository) DeleteTodoByID(ctx context.Context, id string) error {
	if err := r.store.DeleteTaskByID(ctx, id); err != nil {
		return fmt.Errorf("delete todo %s: %w", id, err)
	}
	return nil
}

// ReplaceTodos swaps the whole table for todos in one transaction. Readers see
// either the old list or the new one.
func (r *TodoRepository) ReplaceTodos(ctx context.Context, todos []model.TodoItem) error {
	rows := make([]store.TodoItemEntity, 0, len(todos))
	for _, t := range todos {
		if err := checkImportance(t.Importance); err != nil {
			return fmt.Errorf("replace todos: %w", err)
		}
		rows = append(rows, toTodoEntity(t))
	}

	err := r.store.Transaction(ctx, func(tx *store.TodoStore) error {
		if err := tx.DeleteAllTasks(ctx); err != nil {
			return err
		}
		return tx.InsertTasks(ctx, rows)
	})
	if err != nil {
		return fmt.Errorf("replace todos: %w", err)
	}
	return nil
}

func toTodoEntity(t model.TodoItem) store.TodoItemEntity {
	return store.TodoItemEntity{
		ID:            t.ID,
		Text:          t.Text,
		Importance:    string(t.Importance),
		Deadline:      t.Deadline,
		Done:          t.Done,
		Color:         t.Color,
		Files:         store.JoinFiles(t.Files),
		CreatedAt:     t.CreatedAt,
		ChangedAt:     t.ChangedAt,
		LastUpdatedBy: t.LastUpdatedBy,
	}
}

func toTodoItem(e store.TodoItemEntity) model.TodoItem {
	return model.TodoItem{
		ID:            e.ID,
		Text:          e.Text,
		Importance:    model.Importance(e.Importance),
		Deadline:      e.Deadline,
		Done:          e.Done,
		Color:         e.Color,
		Files:         store.SplitFiles(e.Files),
		CreatedAt:     e.CreatedAt,
		ChangedAt:     e.ChangedAt,
		LastUpdatedBy: e.LastUpdatedBy,
	}
}

func toTodoItems(rows []store.TodoItemEntity) []model.TodoItem {
	todos := make([]model.TodoItem, 0, len(rows))
	for _, row := range rows {
		todos = append(todos, toTodoItem(row))
	}
	return todos
}

func checkImportance(i model.Importance) error {
	if _, err := model.ParseImportance(string(i)); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidImportance, err)
	}
	return nil
}
