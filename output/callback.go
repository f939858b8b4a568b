package output

import "context"

// Callback delivers outputs to an in-process function, for embedding axlive
// next to a real speech engine in the same binary.
type Callback struct {
	fn DispatcherFunc
}

// NewCallback creates a Callback sink. A nil fn discards outputs.
func NewCallback(fn func(ctx context.Context, out Output) error) *Callback {
	return &Callback{fn: fn}
}

func (c *Callback) Go(ctx context.Context, out Output) error {
	if c.fn != nil {
		return c.fn(ctx, out)
	}
	return nil
}

func (c *Callback) Close() error { return nil }
