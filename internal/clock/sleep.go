// Package clock provides cancelable sleep helpers.
package clock

import (
	"context"
	"time"
)

// SleepWithContext waits for the duration or returns early if the context is canceled.
func SleepWithContext(ctx context.Context, d time.Duration) error {
	return SleepWithSignal(ctx, d, nil)
}

// SleepWithSignal waits for the duration but wakes up early when the signal
// channel fires. A nil signal never fires, so passing nil degrades to a plain
// context-aware sleep.
func SleepWithSignal(ctx context.Context, d time.Duration, signal <-chan struct{}) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-signal:
		return nil
	case <-timer.C:
		return nil
	}
}
