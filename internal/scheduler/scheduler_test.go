package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"todolist/internal/database/dbtest"
	"todolist/internal/jobs"
)

var fixedNow = time.UnixMilli(1700000000000)

type MockEnqueuer struct {
	mock.Mock
}

func (m *MockEnqueuer) EnqueueAt(ctx context.Context, kind, tag string, payload []byte, runAt int64) (string, error) {
	args := m.Called(ctx, kind, tag, payload, runAt)
	return args.String(0), args.Error(1)
}

func (m *MockEnqueuer) CancelByTag(ctx context.Context, tag string) (int64, error) {
	args := m.Called(ctx, tag)
	return args.Get(0).(int64), args.Error(1)
}

func newScheduler(q Enqueuer) *Scheduler {
	logger, _ := test.NewNullLogger()
	s := New(q, logger)
	s.now = func() time.Time { return fixedNow }
	return s
}

func TestTag(t *testing.T) {
	assert.Equal(t, "reminder_42", Tag(42))
}

func TestSchedule_FutureTrigger(t *testing.T) {
	// Arrange
	q := new(MockEnqueuer)
	s := newScheduler(q)
	q.On("EnqueueAt", mock.Anything, KindReminderNotification, "reminder_5",
		mock.MatchedBy(func(p []byte) bool {
			var payload Payload
			return sonic.Unmarshal(p, &payload) == nil && payload.ReminderID == 5
		}), fixedNow.UnixMilli()+90_000).Return("job-1", nil)

	// Act
	err := s.Schedule(context.Background(), 5, fixedNow.UnixMilli()+90_000)

	// Assert
	assert.NoError(t, err)
	q.AssertExpectations(t)
}

func TestSchedule_PastOrNowIsDropped(t *testing.T) {
	q := new(MockEnqueuer)
	s := newScheduler(q)

	assert.NoError(t, s.Schedule(context.Background(), 5, fixedNow.UnixMilli()))
	assert.NoError(t, s.Schedule(context.Background(), 5, fixedNow.UnixMilli()-1))

	q.AssertNotCalled(t, "EnqueueAt", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSchedule_PropagatesQueueError(t *testing.T) {
	q := new(MockEnqueuer)
	s := newScheduler(q)
	q.On("EnqueueAt", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return("", assert.AnError)

	err := s.Schedule(context.Background(), 1, fixedNow.UnixMilli()+1000)

	assert.ErrorIs(t, err, assert.AnError)
}

// 300 лет в миллисекундах не помещаются в time.Duration
func TestSchedule_FarFutureTriggerIsKept(t *testing.T) {
	q := new(MockEnqueuer)
	s := newScheduler(q)
	farFuture := fixedNow.AddDate(300, 0, 0).UnixMilli()
	q.On("EnqueueAt", mock.Anything, KindReminderNotification, "reminder_6", mock.Anything, farFuture).
		Return("job-far", nil).Once()

	err := s.Schedule(context.Background(), 6, farFuture)

	assert.NoError(t, err)
	q.AssertExpectations(t)
}

func TestCancel_UsesReminderTag(t *testing.T) {
	q := new(MockEnqueuer)
	s := newScheduler(q)
	q.On("CancelByTag", mock.Anything, "reminder_9").Return(int64(0), nil)

	assert.NoError(t, s.Cancel(context.Background(), 9))
	q.AssertExpectations(t)
}

// Проверки на настоящей очереди

func newQueue(t *testing.T) *jobs.Queue {
	t.Helper()
	q, err := jobs.NewQueue(dbtest.OpenRaw(t))
	require.NoError(t, err)
	return q
}

func TestSchedule_TwiceCreatesTwoActions(t *testing.T) {
	// Arrange
	q := newQueue(t)
	s := newScheduler(q)
	ctx := context.Background()

	// Act
	require.NoError(t, s.Schedule(ctx, 3, fixedNow.UnixMilli()+60_000))
	require.NoError(t, s.Schedule(ctx, 3, fixedNow.UnixMilli()+60_000))

	// Assert
	pending, err := q.Pending(ctx, Tag(3))
	require.NoError(t, err)
	assert.Len(t, pending, 2)
}

func TestSchedule_PastTriggerLeavesNoPendingAction(t *testing.T) {
	q := newQueue(t)
	s := newScheduler(q)
	ctx := context.Background()

	require.NoError(t, s.Schedule(ctx, 4, fixedNow.UnixMilli()-60_000))

	pending, err := q.Pending(ctx, Tag(4))
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestSchedule_FarFutureTriggerIsPersistedAtTriggerTime(t *testing.T) {
	q := newQueue(t)
	s := newScheduler(q)
	ctx := context.Background()
	farFuture := fixedNow.AddDate(300, 0, 0).UnixMilli()

	require.NoError(t, s.Schedule(ctx, 11, farFuture))

	pending, err := q.Pending(ctx, Tag(11))
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, farFuture, pending[0].RunAt)
}

func TestCancelAndReschedule(t *testing.T) {
	// Arrange
	q := newQueue(t)
	s := newScheduler(q)
	ctx := context.Background()
	require.NoError(t, s.Schedule(ctx, 8, fixedNow.UnixMilli()+60_000))
	require.NoError(t, s.Schedule(ctx, 8, fixedNow.UnixMilli()+60_000))
	require.NoError(t, s.Schedule(ctx, 9, fixedNow.UnixMilli()+60_000))

	// Act
	require.NoError(t, s.Reschedule(ctx, 8, fixedNow.UnixMilli()+120_000))
	require.NoError(t, s.Cancel(ctx, 9))
	require.NoError(t, s.Cancel(ctx, 9))

	// Assert
	pending8, err := q.Pending(ctx, Tag(8))
	require.NoError(t, err)
	require.Len(t, pending8, 1)
	pending9, err := q.Pending(ctx, Tag(9))
	require.NoError(t, err)
	assert.Empty(t, pending9)
}
