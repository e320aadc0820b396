// Package utils holds small helpers with no better home.
package utils

import (
	"context"
	"time"
)

var sleep = time.Sleep

// WaitFor blocks for the delay or until the context is done, whichever comes
// first. It backs the retry pauses around external calls.
func WaitFor(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return nil
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		sleep(delay)
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-done:
		return nil
	}
}
