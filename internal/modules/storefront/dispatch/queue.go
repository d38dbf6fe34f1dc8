package dispatch

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gaborage/go-bricks-storefront/internal/modules/storefront/domain"
	"github.com/gaborage/go-bricks-storefront/internal/modules/storefront/sink"
	"github.com/gaborage/go-bricks/logger"
)

// Overflow policies applied when the queue is full.
const (
	OverflowDropNew    = "drop-new"
	OverflowDropOldest = "drop-oldest"
)

var (
	ErrQueueFull   = errors.New("outbound queue full")
	ErrQueueClosed = errors.New("outbound queue closed")
)

// QueueOptions configure a Queue.
type QueueOptions struct {
	Size          int
	Workers       int
	Overflow      string
	SubmitTimeout time.Duration
}

// Stats is a point-in-time view of the queue counters.
type Stats struct {
	Offered   int64 `json:"offered"`
	Delivered int64 `json:"delivered"`
	Failed    int64 `json:"failed"`
	Dropped   int64 `json:"dropped"`
	Pending   int   `json:"pending"`
}

// Queue is the bounded outbound queue feeding the remote sink. Submissions are
// attempted once, each bounded by the submit timeout; there is no retry and no
// ordering guarantee between submissions.
type Queue struct {
	sink    sink.Sink
	opts    QueueOptions
	items   chan domain.Submission
	logger  logger.Logger
	mu      sync.RWMutex
	closed  bool
	started bool
	wg      sync.WaitGroup
	cancel  context.CancelFunc

	offered   atomic.Int64
	delivered atomic.Int64
	failed    atomic.Int64
	dropped   atomic.Int64
}

func NewQueue(s sink.Sink, opts QueueOptions, log logger.Logger) *Queue {
	if opts.Size < 1 {
		opts.Size = 1
	}
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if opts.Overflow == "" {
		opts.Overflow = OverflowDropNew
	}
	if opts.SubmitTimeout <= 0 {
		opts.SubmitTimeout = 5 * time.Second
	}
	return &Queue{
		sink:   s,
		opts:   opts,
		items:  make(chan domain.Submission, opts.Size),
		logger: log,
	}
}

// Start launches the workers. ctx bounds their lifetime; Close drains them gracefully.
func (q *Queue) Start(ctx context.Context) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.started || q.closed {
		return
	}
	q.started = true

	ctx, q.cancel = context.WithCancel(ctx)
	for i := 0; i < q.opts.Workers; i++ {
		q.wg.Add(1)
		go q.worker(ctx)
	}

	q.logger.Info().
		Str("sink", q.sink.Name()).
		Int("size", q.opts.Size).
		Int("workers", q.opts.Workers).
		Str("overflow", q.opts.Overflow).
		Msg("Outbound telemetry queue started")
}

// Offer enqueues sub without blocking.
func (q *Queue) Offer(sub domain.Submission) error {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return ErrQueueClosed
	}
	q.offered.Add(1)

	select {
	case q.items <- sub:
		return nil
	default:
	}

	if q.opts.Overflow != OverflowDropOldest {
		q.dropped.Add(1)
		return ErrQueueFull
	}

	// drop-oldest: make room by discarding the head, then retry once.
	select {
	case <-q.items:
		q.dropped.Add(1)
	default:
	}
	select {
	case q.items <- sub:
		return nil
	default:
		q.dropped.Add(1)
		return ErrQueueFull
	}
}

func (q *Queue) worker(ctx context.Context) {
	defer q.wg.Done()
	for {
		select {
		case sub, ok := <-q.items:
			if !ok {
				return
			}
			q.submit(ctx, sub)
		case <-ctx.Done():
			return
		}
	}
}

func (q *Queue) submit(ctx context.Context, sub domain.Submission) {
	ctx, cancel := context.WithTimeout(ctx, q.opts.SubmitTimeout)
	defer cancel()

	if err := q.sink.Submit(ctx, sub); err != nil {
		q.failed.Add(1)
		q.logger.Warn().
			Err(err).
			Str("sink", q.sink.Name()).
			Str("eventType", string(sub.XDM.EventType)).
			Msg("Telemetry submission failed")
		return
	}
	q.delivered.Add(1)
}

// Close stops intake and waits for pending submissions until ctx is done.
// Whatever is still queued when ctx expires is abandoned.
func (q *Queue) Close(ctx context.Context) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return nil
	}
	q.closed = true
	close(q.items)
	started := q.started
	q.mu.Unlock()

	if !started {
		return nil
	}

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		q.cancel()
		return nil
	case <-ctx.Done():
		q.cancel()
		<-done
		return ctx.Err()
	}
}

func (q *Queue) Stats() Stats {
	return Stats{
		Offered:   q.offered.Load(),
		Delivered: q.delivered.Load(),
		Failed:    q.failed.Load(),
		Dropped:   q.dropped.Load(),
		Pending:   len(q.items),
	}
}
