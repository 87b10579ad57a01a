package store

import "strings"

const filesSeparator = "|"

// TodoItemEntity is a row of todo_list. Column names follow the layout the
// mobile build shipped with, hence the camelCase timestamps.
type TodoItemEntity struct {
	ID            string  `gorm:"column:id;primaryKey"`
	Text          string  `gorm:"column:text;not null"`
	Importance    string  `gorm:"column:importance;not null"`
	Deadline      *int64  `gorm:"column:deadline"`
	Done          bool    `gorm:"column:done;not null"`
	Color         *string `gorm:"column:color"`
	Files         *string `gorm:"column:files"`
	CreatedAt     int64   `gorm:"column:createdAt;not null;autoCreateTime:false"`
	ChangedAt     int64   `gorm:"column:changedAt;not null"`
	LastUpdatedBy string  `gorm:"column:lastUpdatedBy;not null"`
}

func (TodoItemEntity) TableName() string {
	return "todo_list"
}

type ReminderEntity struct {
	ID          int64   `gorm:"column:id;primaryKey;autoIncrement"`
	TaskID      *string `gorm:"column:task_id"`
	Title       string  `gorm:"column:title;not null"`
	Description string  `gorm:"column:description;not null"`
	TriggerTime int64   `gorm:"column:trigger_time;not null"`
}

func (ReminderEntity) TableName() string {
	return "reminders"
}

// JoinFiles encodes a file list for the files column. A nil list stays NULL.
func JoinFiles(files []string) *string {
	if files == nil {
		return nil
	}
	s := strings.Join(files, filesSeparator)
	return &s
}

// SplitFiles decodes the files column, dropping empty segments. NULL and the
// empty string both read back as nil.
func SplitFiles(s *string) []string {
	if s == nil || *s == "" {
		return nil
	}
	parts := strings.Split(*s, filesSeparator)
	files := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			files = append(files, p)
		}
	}
	return files
}
