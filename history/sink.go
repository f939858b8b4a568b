package history

import (
	"context"
	"log/slog"
	"time"

	"github.com/hazyhaar/axlive/output"
)

// Sink records every dispatched output. Failures are returned to the
// router, which logs them; speech is never blocked on the database.
type Sink struct {
	store  *Store
	retain time.Duration
	now    func() time.Time
	logger *slog.Logger
	purged time.Time
}

// SinkOption configures a Sink.
type SinkOption func(*Sink)

// WithRetention purges outputs older than d, at most once a minute.
// Zero keeps everything.
func WithRetention(d time.Duration) SinkOption { return func(s *Sink) { s.retain = d } }

// WithClock replaces time.Now.
func WithClock(now func() time.Time) SinkOption { return func(s *Sink) { s.now = now } }

func WithLogger(l *slog.Logger) SinkOption { return func(s *Sink) { s.logger = l } }

// NewSink wraps store as an output sink.
func NewSink(store *Store, opts ...SinkOption) *Sink {
	s := &Sink{store: store, now: time.Now, logger: slog.Default()}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Go records out and, when retention is set, purges expired rows.
func (s *Sink) Go(ctx context.Context, out output.Output) error {
	if err := s.store.Record(ctx, out); err != nil {
		return err
	}
	if s.retain <= 0 {
		return nil
	}
	now := s.now()
	if now.Sub(s.purged) < time.Minute {
		return nil
	}
	s.purged = now
	n, err := s.store.Purge(ctx, now.Add(-s.retain))
	if err != nil {
		s.logger.Warn("history: purge failed", "error", err)
		return nil
	}
	if n > 0 {
		s.logger.Debug("history: purged", "rows", n)
	}
	return nil
}

// Close is a no-op: the store outlives its sinks.
func (s *Sink) Close() error { return nil }
