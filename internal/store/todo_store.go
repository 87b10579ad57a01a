package store

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const insertBatchSize = 100

// TodoStore is the table-backed storage for todo_list rows.
type TodoStore struct {
	db   *gorm.DB
	feed *Feed
}

func NewTodoStore(db *gorm.DB) *TodoStore {
	return &TodoStore{db: db, feed: NewFeed()}
}

// Feed signals after every committed change to todo_list.
func (s *TodoStore) Feed() *Feed {
	return s.feed
}

// Close ends every live view over the table.
func (s *TodoStore) Close() {
	if s.feed != nil {
		s.feed.Close()
	}
}

// Transaction runs fn against a store bound to a single SQL transaction.
// Subscribers are notified once, after commit.
func (s *TodoStore) Transaction(ctx context.Context, fn func(tx *TodoStore) error) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&TodoStore{db: tx})
	})
	if err != nil {
		return err
	}
	s.feed.Publish()
	return nil
}

// InsertTask inserts the row or replaces the one with the same id.
func (s *TodoStore) InsertTask(ctx context.Context, task *TodoItemEntity) error {
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(task).Error
	if err != nil {
		return err
	}
	s.feed.Publish()
	return nil
}

// InsertTasks upserts all rows in one transaction.
func (s *TodoStore) InsertTasks(ctx context.Context, tasks []TodoItemEntity) error {
	if len(tasks) == 0 {
		return nil
	}
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		CreateInBatches(&tasks, insertBatchSize).Error
	if err != nil {
		return err
	}
	s.feed.Publish()
	return nil
}

func (s *TodoStore) GetAllTasks(ctx context.Context) ([]TodoItemEntity, error) {
	var tasks []TodoItemEntity
	if err := s.db.WithContext(ctx).Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// ObserveAllTasks is a live view over GetAllTasks.
func (s *TodoStore) ObserveAllTasks(ctx context.Context) *Subscription[[]TodoItemEntity] {
	return Watch(ctx, s.feed, s.GetAllTasks)
}

// GetTaskByID returns nil without an error when the row does not exist.
func (s *TodoStore) GetTaskByID(ctx context.Context, id string) (*TodoItemEntity, error) {
	var task TodoItemEntity
	err := s.db.WithContext(ctx).First(&task, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &task, nil
}

func (s *TodoStore) DeleteTaskByID(ctx context.Context, id string) error {
	result := s.db.WithContext(ctx).Delete(&TodoItemEntity{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected > 0 {
		s.feed.Publish()
	}
	return nil
}

func (s *TodoStore) DeleteAllTasks(ctx context.Context) error {
	result := s.db.WithContext(ctx).Where("1 = 1").Delete(&TodoItemEntity{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected > 0 {
		s.feed.Publish()
	}
	return nil
}
