package dispatcher

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"go-hiring-backend/internal/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockStore struct {
	mock.Mock
}

func (m *mockStore) Claim(ctx context.Context, workerID string, lease time.Duration) (*domain.OutboxEvent, error) {
	args := m.Called(ctx, workerID, lease)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.OutboxEvent), args.Error(1)
}

func (m *mockStore) MarkCompleted(ctx context.Context, id uuid.UUID, workerID string) (bool, error) {
	args := m.Called(ctx, id, workerID)
	return args.Bool(0), args.Error(1)
}

func (m *mockStore) MarkRetry(ctx context.Context, id uuid.UUID, workerID string, delay time.Duration, cause error) (bool, error) {
	args := m.Called(ctx, id, workerID, delay, cause)
	return args.Bool(0), args.Error(1)
}

func (m *mockStore) MarkDead(ctx context.Context, id uuid.UUID, workerID string, cause error) (bool, error) {
	args := m.Called(ctx, id, workerID, cause)
	return args.Bool(0), args.Error(1)
}

func (m *mockStore) ReclaimExpired(ctx context.Context, limit int) (int64, error) {
	args := m.Called(ctx, limit)
	return args.Get(0).(int64), args.Error(1)
}

type mockJobs struct {
	mock.Mock
}

func (m *mockJobs) GetByID(ctx context.Context, id int64) (*domain.Job, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Job), args.Error(1)
}

func (m *mockJobs) ReconcileApplicationCounts(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func newEvent(attempts, maxAttempts int) *domain.OutboxEvent {
	return &domain.OutboxEvent{
		ID:          uuid.New(),
		EventType:   domain.EventApplicationHired,
		AggregateID: 7,
		Payload:     []byte(`{}`),
		State:       domain.OutboxStateRunning,
		Attempts:    attempts,
		MaxAttempts: maxAttempts,
	}
}

func newTestDispatcher(store *mockStore, h Handler) *Dispatcher {
	reg := NewRegistry()
	if h != nil {
		reg.Register(domain.EventApplicationHired, h)
	}
	return New(store, reg, Options{LeaseSeconds: 5, Logger: discard})
}

func TestProcessOne_Idle(t *testing.T) {
	store := new(mockStore)
	d := newTestDispatcher(store, nil)
	store.On("Claim", mock.Anything, d.ID, 5*time.Second).Return(nil, nil)

	handled, err := d.ProcessOne(context.Background())
	require.NoError(t, err)
	assert.False(t, handled)
	store.AssertExpectations(t)
}

func TestProcessOne_Success(t *testing.T) {
	store := new(mockStore)
	var got []byte
	d := newTestDispatcher(store, func(ctx context.Context, payload []byte) error {
		got = payload
		return nil
	})
	event := newEvent(1, 10)

	store.On("Claim", mock.Anything, d.ID, 5*time.Second).Return(event, nil)
	store.On("MarkCompleted", mock.Anything, event.ID, d.ID).Return(true, nil)

	handled, err := d.ProcessOne(context.Background())
	require.NoError(t, err)
	assert.True(t, handled)
	assert.Equal(t, []byte(`{}`), got)
	store.AssertExpectations(t)
}

func TestProcessOne_RetryWithBackoff(t *testing.T) {
	store := new(mockStore)
	boom := errors.New("db unavailable")
	d := newTestDispatcher(store, func(ctx context.Context, payload []byte) error { return boom })
	event := newEvent(2, 10)

	store.On("Claim", mock.Anything, d.ID, mock.Anything).Return(event, nil)
	store.On("MarkRetry", mock.Anything, event.ID, d.ID, mock.MatchedBy(func(delay time.Duration) bool {
		// attempt 2: 10s ± 25%
		return delay >= 7500*time.Millisecond && delay <= 12500*time.Millisecond
	}), boom).Return(true, nil)

	_, err := d.ProcessOne(context.Background())
	require.NoError(t, err)
	store.AssertExpectations(t)
	store.AssertNotCalled(t, "MarkDead", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestProcessOne_DeadAfterMaxAttempts(t *testing.T) {
	store := new(mockStore)
	boom := errors.New("still failing")
	d := newTestDispatcher(store, func(ctx context.Context, payload []byte) error { return boom })
	event := newEvent(10, 10)

	store.On("Claim", mock.Anything, d.ID, mock.Anything).Return(event, nil)
	store.On("MarkDead", mock.Anything, event.ID, d.ID, boom).Return(true, nil)

	_, err := d.ProcessOne(context.Background())
	require.NoError(t, err)
	store.AssertExpectations(t)
}

func TestProcessOne_FatalErrorSkipsRetry(t *testing.T) {
	store := new(mockStore)
	d := newTestDispatcher(store, func(ctx context.Context, payload []byte) error {
		return Fatal(errors.New("malformed payload"))
	})
	event := newEvent(1, 10)

	store.On("Claim", mock.Anything, d.ID, mock.Anything).Return(event, nil)
	store.On("MarkDead", mock.Anything, event.ID, d.ID, mock.Anything).Return(true, nil)

	_, err := d.ProcessOne(context.Background())
	require.NoError(t, err)
	store.AssertExpectations(t)
	store.AssertNotCalled(t, "MarkRetry", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestProcessOne_UnknownEventType(t *testing.T) {
	store := new(mockStore)
	d := newTestDispatcher(store, nil)
	event := newEvent(1, 10)

	store.On("Claim", mock.Anything, d.ID, mock.Anything).Return(event, nil)
	store.On("MarkDead", mock.Anything, event.ID, d.ID, mock.Anything).Return(true, nil)

	_, err := d.ProcessOne(context.Background())
	require.NoError(t, err)
	store.AssertExpectations(t)
}

func TestProcessOne_ClaimError(t *testing.T) {
	store := new(mockStore)
	d := newTestDispatcher(store, nil)
	store.On("Claim", mock.Anything, d.ID, mock.Anything).Return(nil, errors.New("conn refused"))

	handled, err := d.ProcessOne(context.Background())
	assert.Error(t, err)
	assert.False(t, handled)
}

func TestStart_WakesOnNotification(t *testing.T) {
	store := new(mockStore)
	wake := make(chan struct{}, 1)
	handled := make(chan struct{})

	reg := NewRegistry()
	reg.Register(domain.EventApplicationHired, func(ctx context.Context, payload []byte) error {
		close(handled)
		return nil
	})
	d := New(store, reg, Options{PollInterval: time.Hour, Wake: wake, Logger: discard})
	event := newEvent(1, 10)

	store.On("Claim", mock.Anything, d.ID, mock.Anything).Return(nil, nil).Once()
	store.On("Claim", mock.Anything, d.ID, mock.Anything).Return(event, nil).Once()
	store.On("Claim", mock.Anything, d.ID, mock.Anything).Return(nil, nil)
	store.On("MarkCompleted", mock.Anything, event.ID, d.ID).Return(true, nil)

	ctx, cancel := context.WithCancel(context.Background())
	go d.Start(ctx)

	wake <- struct{}{}
	select {
	case <-handled:
	case <-time.After(2 * time.Second):
		t.Fatal("dispatcher did not wake up")
	}

	cancel()
	waitCtx, waitCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer waitCancel()
	require.NoError(t, d.Wait(waitCtx))
}

func TestComputeBackoff(t *testing.T) {
	for attempt := 1; attempt <= 20; attempt++ {
		d := computeBackoff(attempt)
		assert.Greater(t, d, time.Duration(0))
		assert.LessOrEqual(t, d, backoffMax)
	}

	d := computeBackoff(1)
	assert.GreaterOrEqual(t, d, 3750*time.Millisecond)
	assert.LessOrEqual(t, d, 6250*time.Millisecond)

	assert.GreaterOrEqual(t, computeBackoff(100), backoffMax*3/4)
}

func TestReapOnce_DrainsBatches(t *testing.T) {
	store := new(mockStore)
	store.On("ReclaimExpired", mock.Anything, reapBatchSize).Return(int64(reapBatchSize), nil).Once()
	store.On("ReclaimExpired", mock.Anything, reapBatchSize).Return(int64(3), nil).Once()

	total := reapOnce(context.Background(), store, discard)
	assert.Equal(t, int64(reapBatchSize+3), total)
	store.AssertExpectations(t)
}

func TestReconcileOnce(t *testing.T) {
	jobs := new(mockJobs)
	jobs.On("ReconcileApplicationCounts", mock.Anything).Return(int64(2), nil).Once()

	reconcileOnce(context.Background(), jobs, discard)
	jobs.AssertExpectations(t)
}

func TestRegistry(t *testing.T) {
	reg := NewRegistry()
	reg.Register("b", func(ctx context.Context, payload []byte) error { return nil })
	reg.Register("a", func(ctx context.Context, payload []byte) error { return nil })

	assert.Equal(t, []string{"a", "b"}, reg.EventTypes())
	_, err := reg.Lookup("c")
	assert.Error(t, err)

	var fatal *FatalError
	assert.True(t, errors.As(Fatal(io.EOF), &fatal))
	assert.ErrorIs(t, Fatal(io.EOF), io.EOF)
}
