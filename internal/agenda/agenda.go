// Package agenda merges tasks with deadlines and reminders into the schedule
// and calendar views.
package agenda

import (
	"context"
	"sort"
	"time"

	"todolist/internal/model"
)

const DateLayout = "2006-01-02"

type TodoReader interface {
	GetAllTodos(ctx context.Context) ([]model.TodoItem, error)
}

type ReminderReader interface {
	GetAllReminders(ctx context.Context) ([]model.Reminder, error)
	GetRemindersByTimeRange(ctx context.Context, from, to int64) ([]model.Reminder, error)
}

// Day is one group of the schedule view.
type Day struct {
	Date  string                `json:"date"`
	Items []model.ScheduledItem `json:"items"`
}

type Service struct {
	todos     TodoReader
	reminders ReminderReader
	loc       *time.Location
	now       func() time.Time
}

func NewService(todos TodoReader, reminders ReminderReader, loc *time.Location) *Service {
	if loc == nil {
		loc = time.Local
	}
	return &Service{todos: todos, reminders: reminders, loc: loc, now: time.Now}
}

// Schedule returns every dated task and every reminder, sorted by time and
// grouped by local calendar day.
func (s *Service) Schedule(ctx context.Context) ([]Day, error) {
	todos, err := s.todos.GetAllTodos(ctx)
	if err != nil {
		return nil, err
	}
	reminders, err := s.reminders.GetAllReminders(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now().UnixMilli()
	items := make([]model.ScheduledItem, 0, len(todos)+len(reminders))
	for _, t := range todos {
		if t.Deadline == nil {
			continue
		}
		items = append(items, model.TaskItem{Todo: t, At: *t.Deadline, Past: *t.Deadline < now})
	}
	for _, r := range reminders {
		items = append(items, model.ReminderItem{Reminder: r, At: r.TriggerTime, Past: r.TriggerTime < now})
	}
	sortByTime(items)

	var days []Day
	for _, item := range items {
		date := time.UnixMilli(item.Time()).In(s.loc).Format(DateLayout)
		if len(days) == 0 || days[len(days)-1].Date != date {
			days = append(days, Day{Date: date})
		}
		days[len(days)-1].Items = append(days[len(days)-1].Items, item)
	}
	return days, nil
}

// Day returns the items falling on the local calendar day containing date,
// sorted by time. Calendar items are never flagged as past.
func (s *Service) Day(ctx context.Context, date time.Time) ([]model.ScheduledItem, error) {
	start, end := dayBounds(date.In(s.loc))

	todos, err := s.todos.GetAllTodos(ctx)
	if err != nil {
		return nil, err
	}
	// the time range query is inclusive, so stop one milli short of midnight
	reminders, err := s.reminders.GetRemindersByTimeRange(ctx, start, end-1)
	if err != nil {
		return nil, err
	}

	items := make([]model.ScheduledItem, 0)
	for _, t := range todos {
		if t.Deadline == nil || *t.Deadline < start || *t.Deadline >= end {
			continue
		}
		items = append(items, model.TaskItem{Todo: t, At: *t.Deadline})
	}
	for _, r := range reminders {
		items = append(items, model.ReminderItem{Reminder: r, At: r.TriggerTime})
	}
	sortByTime(items)
	return items, nil
}

// ParseDate reads a yyyy-MM-dd date in the service's location.
func (s *Service) ParseDate(v string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, v, s.loc)
}

func dayBounds(t time.Time) (int64, int64) {
	y, m, d := t.Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, t.Location())
	return start.UnixMilli(), start.AddDate(0, 0, 1).UnixMilli()
}

func sortByTime(items []model.ScheduledItem) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Time() < items[j].Time()
	})
}
