package output

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// ErrQueueClosed is returned by Queue.Go after Close.
var ErrQueueClosed = errors.New("output: queue closed")

// DefaultQueueGrace bounds how long Close waits for buffered outputs.
const DefaultQueueGrace = 5 * time.Second

// Queue hands outputs to a slow sink (webhook) on its own goroutine, so
// the caller never waits on the network. When the buffer is full the
// output is dropped and Go reports it.
type Queue struct {
	sink   Sink
	ch     chan Output
	logger *slog.Logger
	grace  time.Duration

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu     sync.Mutex
	closed bool
}

// QueueOption configures a Queue.
type QueueOption func(*Queue)

// WithQueueGrace sets how long Close lets the sink drain the buffer before
// cancelling in-flight deliveries. Default: DefaultQueueGrace.
func WithQueueGrace(d time.Duration) QueueOption { return func(q *Queue) { q.grace = d } }

// NewQueue starts a Queue of size buffered outputs in front of s.
func NewQueue(s Sink, size int, logger *slog.Logger, opts ...QueueOption) *Queue {
	if size <= 0 {
		size = 256
	}
	if logger == nil {
		logger = slog.Default()
	}
	q := &Queue{sink: s, ch: make(chan Output, size), logger: logger, grace: DefaultQueueGrace}
	for _, o := range opts {
		o(q)
	}
	q.ctx, q.cancel = context.WithCancel(context.Background())
	q.wg.Add(1)
	go q.drain()
	return q
}

func (q *Queue) drain() {
	defer q.wg.Done()
	for out := range q.ch {
		if q.ctx.Err() != nil {
			q.logger.Warn("output: queue closing, dropped", "id", out.ID)
			continue
		}
		if err := q.sink.Go(q.ctx, out); err != nil {
			q.logger.Warn("output: queued dispatch failed", "id", out.ID, "error", err)
		}
	}
}

func (q *Queue) Go(_ context.Context, out Output) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return ErrQueueClosed
	}
	select {
	case q.ch <- out:
		return nil
	default:
		return fmt.Errorf("output: queue full, dropped %s", out.ID)
	}
}

// Close stops accepting outputs and delivers what is buffered. Deliveries
// still running after the grace period are cancelled and the rest of the
// buffer is dropped. Close then closes the sink.
func (q *Queue) Close() error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return nil
	}
	q.closed = true
	close(q.ch)
	q.mu.Unlock()

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()
	timer := time.NewTimer(q.grace)
	defer timer.Stop()
	select {
	case <-done:
	case <-timer.C:
		q.cancel()
		<-done
	}
	q.cancel()
	return q.sink.Close()
}
