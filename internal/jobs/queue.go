// Package jobs is a durable queue of deferred actions stored next to the app
// data, plus the runner that executes them once they fall due.
package jobs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type State string

const (
	StatePending State = "pending"
	StateRunning State = "running"
	StateFailed  State = "failed"
)

// Job is a row of deferred_actions. RunAt and CreatedAt are epoch millis.
type Job struct {
	ID        string `gorm:"column:id;primaryKey"`
	Kind      string `gorm:"column:kind;not null"`
	Tag       string `gorm:"column:tag;index"`
	Payload   []byte `gorm:"column:payload"`
	RunAt     int64  `gorm:"column:run_at;not null;index:idx_deferred_actions_due,priority:2"`
	State     State  `gorm:"column:state;not null;index:idx_deferred_actions_due,priority:1"`
	Attempts  int    `gorm:"column:attempts;not null"`
	LastError string `gorm:"column:last_error"`
	CreatedAt int64  `gorm:"column:created_at;autoCreateTime:milli"`
}

func (Job) TableName() string {
	return "deferred_actions"
}

type Queue struct {
	db  *gorm.DB
	now func() time.Time
}

// NewQueue creates the deferred_actions table when missing.
func NewQueue(db *gorm.DB) (*Queue, error) {
	if err := db.AutoMigrate(&Job{}); err != nil {
		return nil, fmt.Errorf("migrate deferred_actions: %w", err)
	}
	return &Queue{db: db, now: time.Now}, nil
}

// EnqueueDelayed persists an action that becomes due after delay.
func (q *Queue) EnqueueDelayed(ctx context.Context, kind, tag string, payload []byte, delay time.Duration) (string, error) {
	if delay < 0 {
		delay = 0
	}
	return q.EnqueueAt(ctx, kind, tag, payload, q.now().Add(delay).UnixMilli())
}

// EnqueueAt persists an action that becomes due at runAt (epoch millis).
func (q *Queue) EnqueueAt(ctx context.Context, kind, tag string, payload []byte, runAt int64) (string, error) {
	job := Job{
		ID:      uuid.NewString(),
		Kind:    kind,
		Tag:     tag,
		Payload: payload,
		RunAt:   runAt,
		State:   StatePending,
	}
	if err := q.db.WithContext(ctx).Create(&job).Error; err != nil {
		return "", err
	}
	return job.ID, nil
}

// CancelByTag drops every pending or running action carrying tag. A running
// action finishes, but its outcome is no longer recorded.
func (q *Queue) CancelByTag(ctx context.Context, tag string) (int64, error) {
	result := q.db.WithContext(ctx).
		Where("tag = ? AND state IN ?", tag, []State{StatePending, StateRunning}).
		Delete(&Job{})
	return result.RowsAffected, result.Error
}

// Pending lists actions with tag that have not run yet, soonest first.
func (q *Queue) Pending(ctx context.Context, tag string) ([]Job, error) {
	var jobs []Job
	err := q.db.WithContext(ctx).
		Where("tag = ? AND state = ?", tag, StatePending).
		Order("run_at ASC").
		Find(&jobs).Error
	return jobs, err
}

func (q *Queue) Get(ctx context.Context, id string) (*Job, error) {
	var job Job
	err := q.db.WithContext(ctx).First(&job, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &job, nil
}

// Claim moves up to limit due actions to running and returns them.
func (q *Queue) Claim(ctx context.Context, limit int) ([]Job, error) {
	var jobs []Job
	now := q.now().UnixMilli()

	err := q.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("state = ? AND run_at <= ?", StatePending, now).
			Order("run_at ASC").
			Limit(limit).
			Find(&jobs).Error; err != nil {
			return err
		}
		if len(jobs) == 0 {
			return nil
		}

		ids := make([]string, 0, len(jobs))
		for i := range jobs {
			ids = append(ids, jobs[i].ID)
			jobs[i].State = StateRunning
		}
		return tx.Model(&Job{}).Where("id IN ?", ids).Update("state", StateRunning).Error
	})
	if err != nil {
		return nil, err
	}
	return jobs, nil
}

// Complete removes a finished action.
func (q *Queue) Complete(ctx context.Context, id string) error {
	return q.db.WithContext(ctx).Delete(&Job{}, "id = ?", id).Error
}

// Retry puts a running action back to pending at runAt.
func (q *Queue) Retry(ctx context.Context, id string, attempts int, runAt time.Time, cause error) error {
	return q.db.WithContext(ctx).Model(&Job{}).
		Where("id = ? AND state = ?", id, StateRunning).
		Updates(map[string]interface{}{
			"state":      StatePending,
			"attempts":   attempts,
			"run_at":     runAt.UnixMilli(),
			"last_error": errString(cause),
		}).Error
}

// Fail parks an action for good. Failed rows are kept for inspection.
func (q *Queue) Fail(ctx context.Context, id string, attempts int, cause error) error {
	return q.db.WithContext(ctx).Model(&Job{}).
		Where("id = ? AND state = ?", id, StateRunning).
		Updates(map[string]interface{}{
			"state":      StateFailed,
			"attempts":   attempts,
			"last_error": errString(cause),
		}).Error
}

// Recover returns actions left running by a previous process to pending.
func (q *Queue) Recover(ctx context.Context) (int64, error) {
	result := q.db.WithContext(ctx).Model(&Job{}).
		Where("state = ?", StateRunning).
		Update("state", StatePending)
	return result.RowsAffected, result.Error
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
