package model

// ScheduledItem is an entry of the schedule and calendar views. The set of
// implementations is closed: TaskItem and ReminderItem.
type ScheduledItem interface {
	Time() int64
	IsPast() bool
	scheduled()
}

type TaskItem struct {
	Todo TodoItem `json:"todo"`
	At   int64    `json:"time"`
	Past bool     `json:"is_past"`
}

func (t TaskItem) Time() int64  { return t.At }
func (t TaskItem) IsPast() bool { return t.Past }
func (TaskItem) scheduled()     {}

type ReminderItem struct {
	Reminder Reminder `json:"reminder"`
	At       int64    `json:"time"`
	Past     bool     `json:"is_past"`
}

func (r ReminderItem) Time() int64  { return r.At }
func (r ReminderItem) IsPast() bool { return r.Past }
func (ReminderItem) scheduled()     {}
