package model

import "fmt"

type Importance string

const (
	ImportanceLow       Importance = "low"
	ImportanceBasic     Importance = "basic"
	ImportanceImportant Importance = "important"
)

func (i Importance) Valid() bool {
	switch i {
	case ImportanceLow, ImportanceBasic, ImportanceImportant:
		return true
	}
	return false
}

func ParseImportance(s string) (Importance, error) {
	i := Importance(s)
	if !i.Valid() {
		return "", fmt.Errorf("unknown importance %q", s)
	}
	return i, nil
}

// TodoItem is a user task. Timestamps are epoch milliseconds.
type TodoItem struct {
	ID            string     `json:"id"`
	Text          string     `json:"text"`
	Importance    Importance `json:"importance"`
	Deadline      *int64     `json:"deadline,omitempty"`
	Done          bool       `json:"done"`
	Color         *string    `json:"color,omitempty"`
	Files         []string   `json:"files,omitempty"`
	CreatedAt     int64      `json:"created_at"`
	ChangedAt     int64      `json:"changed_at"`
	LastUpdatedBy string     `json:"last_updated_by"`
}
