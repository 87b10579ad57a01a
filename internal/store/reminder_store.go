package store

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ReminderStore is the table-backed storage for reminders rows.
type ReminderStore struct {
	db   *gorm.DB
	feed *Feed
}

func NewReminderStore(db *gorm.DB) *ReminderStore {
	return &ReminderStore{db: db, feed: NewFeed()}
}

func (s *ReminderStore) Feed() *Feed {
	return s.feed
}

func (s *ReminderStore) Close() {
	s.feed.Close()
}

// InsertReminder stores the reminder and returns its id. A zero id gets a
// fresh one from the table; an existing id replaces that row.
func (s *ReminderStore) InsertReminder(ctx context.Context, reminder *ReminderEntity) (int64, error) {
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(reminder).Error
	if err != nil {
		return 0, err
	}
	s.feed.Publish()
	return reminder.ID, nil
}

// UpdateReminder rewrites the row with the reminder's id in a single UPDATE.
// It reports false and writes nothing when that row does not exist.
func (s *ReminderStore) UpdateReminder(ctx context.Context, reminder *ReminderEntity) (bool, error) {
	result := s.db.WithContext(ctx).
		Model(&ReminderEntity{}).
		Where("id = ?", reminder.ID).
		Select("task_id", "title", "description", "trigger_time").
		Updates(reminder)
	if result.Error != nil {
		return false, result.Error
	}
	if result.RowsAffected == 0 {
		return false, nil
	}
	s.feed.Publish()
	return true, nil
}

// GetAllReminders returns every reminder ordered by trigger time.
func (s *ReminderStore) GetAllReminders(ctx context.Context) ([]ReminderEntity, error) {
	var reminders []ReminderEntity
	err := s.db.WithContext(ctx).
		Order("trigger_time ASC").Order("id ASC").
		Find(&reminders).Error
	if err != nil {
		return nil, err
	}
	return reminders, nil
}

func (s *ReminderStore) ObserveAllReminders(ctx context.Context) *Subscription[[]ReminderEntity] {
	return Watch(ctx, s.feed, s.GetAllReminders)
}

func (s *ReminderStore) GetRemindersByTaskID(ctx context.Context, taskID string) ([]ReminderEntity, error) {
	var reminders []ReminderEntity
	err := s.db.WithContext(ctx).
		Where("task_id = ?", taskID).
		Order("trigger_time ASC").Order("id ASC").
		Find(&reminders).Error
	if err != nil {
		return nil, err
	}
	return reminders, nil
}

// GetRemindersByTimeRange includes both bounds.
func (s *ReminderStore) GetRemindersByTimeRange(ctx context.Context, from, to int64) ([]ReminderEntity, error) {
	var reminders []ReminderEntity
	err := s.db.WithContext(ctx).
		Where("trigger_time >= ? AND trigger_time <= ?", from, to).
		Order("trigger_time ASC").Order("id ASC").
		Find(&reminders).Error
	if err != nil {
		return nil, err
	}
	return reminders, nil
}

func (s *ReminderStore) GetReminderByID(ctx context.Context, id int64) (*ReminderEntity, error) {
	var reminder ReminderEntity
	err := s.db.WithContext(ctx).First(&reminder, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &reminder, nil
}

// DeleteReminder removes the row with the reminder's id. Unsaved reminders
// are ignored.
func (s *ReminderStore) DeleteReminder(ctx context.Context, reminder *ReminderEntity) error {
	if reminder == nil || reminder.ID == 0 {
		return nil
	}
	return s.DeleteReminderByID(ctx, reminder.ID)
}

func (s *ReminderStore) DeleteReminderByID(ctx context.Context, id int64) error {
	result := s.db.WithContext(ctx).Delete(&ReminderEntity{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected > 0 {
		s.feed.Publish()
	}
	return nil
}

// DeleteRemindersByTaskID removes every reminder linked to taskID. Reminders
// without a task are never matched.
func (s *ReminderStore) DeleteRemindersByTaskID(ctx context.Context, taskID string) (int64, error) {
	result := s.db.WithContext(ctx).Where("task_id = ?", taskID).Delete(&ReminderEntity{})
	if result.Error != nil {
		return 0, result.Error
	}
	if result.RowsAffected > 0 {
		s.feed.Publish()
	}
	return result.RowsAffected, nil
}
