package notification

import (
	"context"
	"errors"
	"fmt"

	"github.com/bytedance/sonic"
	log "github.com/sirupsen/logrus"

	"todolist/internal/jobs"
	"todolist/internal/model"
	"todolist/internal/scheduler"
)

var ErrInvalidPayload = errors.New("invalid reminder notification payload")

type ReminderReader interface {
	GetReminderByID(ctx context.Context, id int64) (*model.Reminder, error)
}

// Dispatcher runs when a reminder notification action falls due. It re-reads
// the reminder so edits made after scheduling are honoured and deleted
// reminders stay silent.
type Dispatcher struct {
	reminders ReminderReader
	notifier  Notifier
	logger    log.FieldLogger
}

var _ jobs.Handler = (*Dispatcher)(nil)

func NewDispatcher(reminders ReminderReader, notifier Notifier, logger log.FieldLogger) *Dispatcher {
	return &Dispatcher{reminders: reminders, notifier: notifier, logger: logger}
}

func (d *Dispatcher) Handle(ctx context.Context, payload []byte) error {
	var p scheduler.Payload
	if err := sonic.Unmarshal(payload, &p); err != nil {
		return jobs.Permanent(fmt.Errorf("%w: %v", ErrInvalidPayload, err))
	}
	if p.ReminderID <= 0 {
		return jobs.Permanent(fmt.Errorf("%w: missing reminder_id", ErrInvalidPayload))
	}

	entry := d.logger.WithField("reminder_id", p.ReminderID)
	reminder, err := d.reminders.GetReminderByID(ctx, p.ReminderID)
	if err != nil {
		return err
	}
	if reminder == nil {
		entry.Info("reminder deleted before firing, skipping notification")
		return nil
	}

	if err := d.notifier.Notify(ctx, FromReminder(*reminder)); err != nil {
		return fmt.Errorf("notify reminder %d: %w", reminder.ID, err)
	}
	entry.Debug("reminder notification delivered")
	return nil
}
