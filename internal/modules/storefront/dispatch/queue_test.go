package dispatch

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gaborage/go-bricks-storefront/internal/modules/storefront/domain"
	"github.com/gaborage/go-bricks/logger"
)

type fakeSink struct {
	mu     sync.Mutex
	got    []domain.EventType
	err    error
	block  bool
	called chan struct{}
}

func (f *fakeSink) Name() string { return "fake" }

func (f *fakeSink) Submit(ctx context.Context, sub domain.Submission) error {
	if f.called != nil {
		f.called <- struct{}{}
	}
	if f.block {
		<-ctx.Done()
		return ctx.Err()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.got = append(f.got, sub.XDM.EventType)
	return f.err
}

func (f *fakeSink) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.got)
}

func sub(t domain.EventType) domain.Submission {
	return domain.Submission{XDM: domain.XDM{EventType: t}}
}

func TestQueueDropNew(t *testing.T) {
	q := NewQueue(&fakeSink{}, QueueOptions{Size: 2, Overflow: OverflowDropNew}, logger.New("info", false))

	require.NoError(t, q.Offer(sub("a")))
	require.NoError(t, q.Offer(sub("b")))
	assert.ErrorIs(t, q.Offer(sub("c")), ErrQueueFull)

	stats := q.Stats()
	assert.Equal(t, int64(3), stats.Offered)
	assert.Equal(t, int64(1), stats.Dropped)
	assert.Equal(t, 2, stats.Pending)

	assert.Equal(t, domain.EventType("a"), (<-q.items).XDM.EventType)
}

func TestQueueDropOldest(t *testing.T) {
	q := NewQueue(&fakeSink{}, QueueOptions{Size: 2, Overflow: OverflowDropOldest}, logger.New("info", false))

	require.NoError(t, q.Offer(sub("a")))
	require.NoError(t, q.Offer(sub("b")))
	require.NoError(t, q.Offer(sub("c")))

	assert.Equal(t, int64(1), q.Stats().Dropped)
	assert.Equal(t, domain.EventType("b"), (<-q.items).XDM.EventType)
	assert.Equal(t, domain.EventType("c"), (<-q.items).XDM.EventType)
}

func TestQueueDeliversAndDrainsOnClose(t *testing.T) {
	s := &fakeSink{}
	q := NewQueue(s, QueueOptions{Size: 16, Workers: 3}, logger.New("info", false))
	for i := 0; i < 10; i++ {
		require.NoError(t, q.Offer(sub("x")))
	}

	q.Start(context.Background())
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, q.Close(ctx))

	assert.Equal(t, 10, s.count())
	assert.Equal(t, int64(10), q.Stats().Delivered)
	assert.ErrorIs(t, q.Offer(sub("late")), ErrQueueClosed)
	assert.NoError(t, q.Close(ctx), "second close is a no-op")
}

func TestQueueCountsFailures(t *testing.T) {
	s := &fakeSink{err: errors.New("collector unavailable")}
	q := NewQueue(s, QueueOptions{Size: 4}, logger.New("info", false))
	q.Start(context.Background())

	require.NoError(t, q.Offer(sub("a")))
	require.NoError(t, q.Offer(sub("b")))
	require.NoError(t, q.Close(context.Background()))

	stats := q.Stats()
	assert.Equal(t, int64(2), stats.Failed)
	assert.Equal(t, int64(0), stats.Delivered)
	assert.Equal(t, 2, s.count(), "each submission is attempted exactly once")
}

func TestQueueSubmitTimeout(t *testing.T) {
	s := &fakeSink{block: true}
	q := NewQueue(s, QueueOptions{Size: 1, SubmitTimeout: 20 * time.Millisecond}, logger.New("info", false))
	q.Start(context.Background())

	require.NoError(t, q.Offer(sub("slow")))
	require.NoError(t, q.Close(context.Background()))

	assert.Equal(t, int64(1), q.Stats().Failed)
}

func TestQueueCloseDeadline(t *testing.T) {
	s := &fakeSink{block: true, called: make(chan struct{}, 1)}
	q := NewQueue(s, QueueOptions{Size: 4, SubmitTimeout: time.Hour}, logger.New("info", false))
	q.Start(context.Background())
	require.NoError(t, q.Offer(sub("stuck")))
	<-s.called

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	assert.ErrorIs(t, q.Close(ctx), context.DeadlineExceeded)
}

func TestQueueCloseWithoutStart(t *testing.T) {
	q := NewQueue(&fakeSink{}, QueueOptions{}, logger.New("info", false))
	require.NoError(t, q.Offer(sub("a")))
	assert.NoError(t, q.Close(context.Background()))
}
