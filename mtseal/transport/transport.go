// Package transport defines how built frames leave the process.
package transport

import "context"

// Transport delivers complete encrypted frames. Send must not retain or modify
// frame after it returns.
type Transport interface {
	Send(ctx context.Context, frame []byte) error
}

// Func adapts a function to Transport.
type Func func(ctx context.Context, frame []byte) error

func (f Func) Send(ctx context.Context, frame []byte) error { return f(ctx, frame) }
