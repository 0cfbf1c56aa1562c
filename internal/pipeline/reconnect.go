package pipeline

import (
	"context"
	"log/slog"
	"time"
)

const (
	initialReconnectDelay = time.Second
	maxReconnectDelay     = 30 * time.Second
)

// Run keeps the control channel connected until ctx is canceled. Each time an
// established connection drops, onDisconnect is called before reconnecting.
func Run(ctx context.Context, client Client, handler Handler, onDisconnect func()) {
	delay := initialReconnectDelay
	for ctx.Err() == nil {
		if err := client.Connect(ctx); err != nil {
			slog.Warn("pipeline connect failed", "error", err, "retry_in", delay)
			if !sleepContext(ctx, delay) {
				return
			}
			delay = nextDelay(delay)
			continue
		}
		delay = initialReconnectDelay

		err := client.Serve(ctx, handler)
		if onDisconnect != nil {
			onDisconnect()
		}
		if ctx.Err() != nil {
			return
		}
		slog.Warn("pipeline control channel closed", "error", err, "retry_in", delay)
		if !sleepContext(ctx, delay) {
			return
		}
	}
}

func nextDelay(d time.Duration) time.Duration {
	d *= 2
	if d > maxReconnectDelay {
		return maxReconnectDelay
	}
	return d
}

func sleepContext(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
