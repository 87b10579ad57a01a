package agenda

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"todolist/internal/model"
)

type MockTodoReader struct {
	mock.Mock
}

func (m *MockTodoReader) GetAllTodos(ctx context.Context) ([]model.TodoItem, error) {
	args := m.Called(ctx)
	todos, _ := args.Get(0).([]model.TodoItem)
	return todos, args.Error(1)
}

type MockReminderReader struct {
	mock.Mock
}

func (m *MockReminderReader) GetAllReminders(ctx context.Context) ([]model.Reminder, error) {
	args := m.Called(ctx)
	reminders, _ := args.Get(0).([]model.Reminder)
	return reminders, args.Error(1)
}

func (m *MockReminderReader) GetRemindersByTimeRange(ctx context.Context, from, to int64) ([]model.Reminder, error) {
	args := m.Called(ctx, from, to)
	reminders, _ := args.Get(0).([]model.Reminder)
	return reminders, args.Error(1)
}

var utc = time.UTC

func at(s string) int64 {
	t, err := time.ParseInLocation("2006-01-02 15:04", s, utc)
	if err != nil {
		panic(err)
	}
	return t.UnixMilli()
}

func ptr[T any](v T) *T { return &v }

func setup(now string) (*Service, *MockTodoReader, *MockReminderReader) {
	todos := new(MockTodoReader)
	reminders := new(MockReminderReader)
	s := NewService(todos, reminders, utc)
	s.now = func() time.Time { return time.UnixMilli(at(now)) }
	return s, todos, reminders
}

func TestSchedule_SortsAndGroupsByDay(t *testing.T) {
	// Arrange
	s, todos, reminders := setup("2024-03-10 12:00")
	todos.On("GetAllTodos", mock.Anything).Return([]model.TodoItem{
		{ID: "late", Deadline: ptr(at("2024-03-11 09:00"))},
		{ID: "undated"},
		{ID: "early", Deadline: ptr(at("2024-03-10 08:00"))},
	}, nil)
	reminders.On("GetAllReminders", mock.Anything).Return([]model.Reminder{
		{ID: 1, TriggerTime: at("2024-03-10 18:00")},
	}, nil)

	// Act
	days, err := s.Schedule(context.Background())

	// Assert
	require.NoError(t, err)
	require.Len(t, days, 2)
	assert.Equal(t, "2024-03-10", days[0].Date)
	require.Len(t, days[0].Items, 2)
	early := days[0].Items[0].(model.TaskItem)
	assert.Equal(t, "early", early.Todo.ID)
	assert.True(t, early.IsPast())
	reminder := days[0].Items[1].(model.ReminderItem)
	assert.Equal(t, int64(1), reminder.Reminder.ID)
	assert.False(t, reminder.IsPast())

	assert.Equal(t, "2024-03-11", days[1].Date)
	require.Len(t, days[1].Items, 1)
	assert.Equal(t, "late", days[1].Items[0].(model.TaskItem).Todo.ID)
}

func TestSchedule_Empty(t *testing.T) {
	s, todos, reminders := setup("2024-03-10 12:00")
	todos.On("GetAllTodos", mock.Anything).Return([]model.TodoItem{}, nil)
	reminders.On("GetAllReminders", mock.Anything).Return([]model.Reminder{}, nil)

	days, err := s.Schedule(context.Background())

	require.NoError(t, err)
	assert.Empty(t, days)
}

func TestSchedule_PropagatesErrors(t *testing.T) {
	s, todos, reminders := setup("2024-03-10 12:00")
	todos.On("GetAllTodos", mock.Anything).Return([]model.TodoItem{}, nil)
	reminders.On("GetAllReminders", mock.Anything).Return(nil, assert.AnError)

	_, err := s.Schedule(context.Background())

	assert.ErrorIs(t, err, assert.AnError)
}

func TestDay_UsesHalfOpenDayRange(t *testing.T) {
	// Arrange
	s, todos, reminders := setup("2024-03-20 12:00")
	start, end := at("2024-03-10 00:00"), at("2024-03-11 00:00")
	todos.On("GetAllTodos", mock.Anything).Return([]model.TodoItem{
		{ID: "midnight-start", Deadline: ptr(start)},
		{ID: "next-midnight", Deadline: ptr(end)},
		{ID: "noon", Deadline: ptr(at("2024-03-10 12:00"))},
		{ID: "undated"},
	}, nil)
	reminders.On("GetRemindersByTimeRange", mock.Anything, start, end-1).Return([]model.Reminder{
		{ID: 9, TriggerTime: at("2024-03-10 06:00")},
	}, nil)

	// Act
	date, err := s.ParseDate("2024-03-10")
	require.NoError(t, err)
	items, err := s.Day(context.Background(), date)

	// Assert
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, "midnight-start", items[0].(model.TaskItem).Todo.ID)
	assert.Equal(t, int64(9), items[1].(model.ReminderItem).Reminder.ID)
	assert.Equal(t, "noon", items[2].(model.TaskItem).Todo.ID)
	for _, item := range items {
		assert.False(t, item.IsPast())
	}
	reminders.AssertExpectations(t)
}

func TestParseDate_Invalid(t *testing.T) {
	s, _, _ := setup("2024-03-20 12:00")

	_, err := s.ParseDate("10.03.2024")

	assert.Error(t, err)
}
