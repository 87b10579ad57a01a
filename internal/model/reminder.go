package model

// Reminder is a standalone notification. TaskID is a weak reference: nothing
// stops it from pointing at a task that no longer exists.
type Reminder struct {
	ID          int64   `json:"id"`
	TaskID      *string `json:"task_id,omitempty"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	TriggerTime int64   `json:"trigger_time"`
}

// Persisted reports whether the store has assigned an id.
func (r Reminder) Persisted() bool {
	return r.ID != 0
}
