package output

import "context"

// Dispatcher hands an Output to the speech subsystem. Dispatch is
// fire-and-forget from the caller's point of view: errors are reported but
// never retried by the announcer.
type Dispatcher interface {
	Go(ctx context.Context, out Output) error
}

// Sink is a Dispatcher that owns resources.
type Sink interface {
	Dispatcher
	Close() error
}

// DispatcherFunc adapts a function to Dispatcher.
type DispatcherFunc func(ctx context.Context, out Output) error

func (f DispatcherFunc) Go(ctx context.Context, out Output) error { return f(ctx, out) }
