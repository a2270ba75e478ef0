package main

import (
	"context"
	"os/signal"
)

// notifyContext returns a context canceled when one of stopSignals arrives.
// Conversions in flight see ctx.Err() and --watch returns. Call stop() to
// release resources.
func notifyContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, stopSignals...)
}
