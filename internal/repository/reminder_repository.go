package repository

import (
	"context"
	"fmt"

	"todolist/internal/model"
	"todolist/internal/store"
)

type ReminderRepository struct {
	store *store.ReminderStore
}

type ReminderRepositoryInterface interface {
	InsertReminder(ctx context.Context, reminder model.Reminder) (int64, error)
	UpdateReminder(ctx context.Context, reminder model.Reminder) (bool, error)
	GetAllReminders(ctx context.Context) ([]model.Reminder, error)
	GetRemindersByTaskID(ctx context.Context, taskID string) ([]model.Reminder, error)
	GetRemindersByTimeRange(ctx context.Context, from, to int64) ([]model.Reminder, error)
	GetReminderByID(ctx context.Context, id int64) (*model.Reminder, error)
	DeleteReminder(ctx context.Context, reminder model.Reminder) error
	DeleteReminderByID(ctx context.Context, id int64) error
	DeleteRemindersByTaskID(ctx context.Context, taskID string) (int64, error)
}

var _ ReminderRepositoryInterface = (*ReminderRepository)(nil)

func NewReminderRepository(s *store.ReminderStore) *ReminderRepository {
	return &ReminderRepository{store: s}
}

// InsertReminder stores a reminder and returns its id
func (r *ReminderRepository) InsertReminder(ctx context.Context, reminder model.Reminder) (int64, error) {
	e := toReminderEntity(reminder)
	id, err := r.store.InsertReminder(ctx, &e)
	if err != nil {
		return 0, fmt.Errorf("insert reminder: %w", err)
	}
	return id, nil
}

// UpdateReminder replaces a stored reminder. It never creates one: false means
// the id is unknown or was deleted meanwhile.
func (r *ReminderRepository) UpdateReminder(ctx context.Context, reminder model.Reminder) (bool, error) {
	if !reminder.Persisted() {
		return false, nil
	}
	e := toReminderEntity(reminder)
	ok, err := r.store.UpdateReminder(ctx, &e)
	if err != nil {
		return false, fmt.Errorf("update reminder %d: %w", reminder.ID, err)
	}
	return ok, nil
}

func (r *ReminderRepository) GetAllReminders(ctx context.Context) ([]model.Reminder, error) {
	rows, err := r.store.GetAllReminders(ctx)
	if err != nil {
		return nil, fmt.Errorf("get all reminders: %w", err)
	}
	return toReminders(rows), nil
}

func (r *ReminderRepository) GetRemindersByTaskID(ctx context.Context, taskID string) ([]model.Reminder, error) {
	rows, err := r.store.GetRemindersByTaskID(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("get reminders of task %s: %w", taskID, err)
	}
	return toReminders(rows), nil
}

// GetRemindersByTimeRange returns reminders with from <= trigger time <= to
func (r *ReminderRepository) GetRemindersByTimeRange(ctx context.Context, from, to int64) ([]model.Reminder, error) {
	rows, err := r.store.GetRemindersByTimeRange(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("get reminders in [%d, %d]: %w", from, to, err)
	}
	return toReminders(rows), nil
}

// GetReminderByID returns nil when the reminder does not exist
func (r *ReminderRepository) GetReminderByID(ctx context.Context, id int64) (*model.Reminder, error) {
	row, err := r.store.GetReminderByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get reminder %d: %w", id, err)
	}
	if row == nil {
		return nil, nil
	}
	reminder := toReminder(*row)
	return &reminder, nil
}

// DeleteReminder ignores reminders that were never stored
func (r *ReminderRepository) DeleteReminder(ctx context.Context, reminder model.Reminder) error {
	if !reminder.Persisted() {
		return nil
	}
	e := toReminderEntity(reminder)
	if err := r.store.DeleteReminder(ctx, &e); err != nil {
		return fmt.Errorf("delete reminder %d: %w", reminder.ID, err)
	}
	return nil
}

func (r *ReminderRepository) DeleteReminderByID(ctx context.Context, id int64) error {
	if err := r.store.DeleteReminderByID(ctx, id); err != nil {
		return fmt.Errorf("delete reminder %d: %w", id, err)
	}
	return nil
}

// DeleteRemindersByTaskID removes every reminder linked to the task and
// reports how many rows went away
func (r *ReminderRepository) DeleteRemindersByTaskID(ctx context.Context, taskID string) (int64, error) {
	n, err := r.store.DeleteRemindersByTaskID(ctx, taskID)
	if err != nil {
		return 0, fmt.Errorf("delete reminders of task %s: %w", taskID, err)
	}
	return n, nil
}

func toReminderEntity(r model.Reminder) store.ReminderEntity {
	return store.ReminderEntity{
		ID:          r.ID,
		TaskID:      r.TaskID,
		Title:       r.Title,
		Description: r.Description,
		TriggerTime: r.TriggerTime,
	}
}

func toReminder(e store.ReminderEntity) model.Reminder {
	return model.Reminder{
		ID:          e.ID,
		TaskID:      e.TaskID,
		Title:       e.Title,
		Description: e.Description,
		TriggerTime: e.TriggerTime,
	}
}

func toReminders(rows []store.ReminderEntity) []model.Reminder {
	reminders := make([]model.Reminder, 0, len(rows))
	for _, row := range rows {
		reminders = append(reminders, toReminder(row))
	}
	return reminders
}
