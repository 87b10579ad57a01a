// Package scheduler turns a stored reminder into a deferred notification
// action that survives restarts and can be cancelled by reminder id.
package scheduler

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/bytedance/sonic"
	log "github.com/sirupsen/logrus"
)

// KindReminderNotification is the deferred action kind handled by the
// notification dispatcher.
const KindReminderNotification = "reminder_notification"

const tagPrefix = "reminder_"

// Payload is the body of a reminder notification action.
type Payload struct {
	ReminderID int64 `json:"reminder_id"`
}

// Tag names every action scheduled for reminderID.
func Tag(reminderID int64) string {
	return tagPrefix + strconv.FormatInt(reminderID, 10)
}

type Enqueuer interface {
	EnqueueAt(ctx context.Context, kind, tag string, payload []byte, runAt int64) (string, error)
	CancelByTag(ctx context.Context, tag string) (int64, error)
}

type Scheduler struct {
	queue  Enqueuer
	logger log.FieldLogger
	now    func() time.Time
}

func New(queue Enqueuer, logger log.FieldLogger) *Scheduler {
	return &Scheduler{queue: queue, logger: logger, now: time.Now}
}

// Schedule arranges a notification for reminderID at triggerTime (epoch
// millis). Trigger times that are not in the future are dropped. Scheduling
// the same reminder twice without Cancel yields two actions.
func (s *Scheduler) Schedule(ctx context.Context, reminderID, triggerTime int64) error {
	// compare in millis; a Duration overflows for triggers centuries away
	delayMs := triggerTime - s.now().UnixMilli()
	entry := s.logger.WithFields(log.Fields{"reminder_id": reminderID, "trigger_time": triggerTime})
	if delayMs <= 0 {
		entry.Debug("trigger time already passed, notification not scheduled")
		return nil
	}

	payload, err := sonic.Marshal(Payload{ReminderID: reminderID})
	if err != nil {
		return fmt.Errorf("encode reminder payload: %w", err)
	}
	id, err := s.queue.EnqueueAt(ctx, KindReminderNotification, Tag(reminderID), payload, triggerTime)
	if err != nil {
		return fmt.Errorf("schedule reminder %d: %w", reminderID, err)
	}
	entry.WithFields(log.Fields{"job": id, "delay_ms": delayMs}).Info("reminder notification scheduled")
	return nil
}

// Cancel drops every pending notification for reminderID.
func (s *Scheduler) Cancel(ctx context.Context, reminderID int64) error {
	n, err := s.queue.CancelByTag(ctx, Tag(reminderID))
	if err != nil {
		return fmt.Errorf("cancel reminder %d: %w", reminderID, err)
	}
	if n > 0 {
		s.logger.WithFields(log.Fields{"reminder_id": reminderID, "cancelled": n}).Info("reminder notification cancelled")
	}
	return nil
}

// Reschedule replaces whatever is pending for reminderID with a single action
// at triggerTime.
func (s *Scheduler) Reschedule(ctx context.Context, reminderID, triggerTime int64) error {
	if err := s.Cancel(ctx, reminderID); err != nil {
		return err
	}
	return s.Schedule(ctx, reminderID, triggerTime)
}
