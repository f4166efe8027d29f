package utils

import (
	"context"
	"time"
)

var sleep = time.Sleep

// WaitFor blocks for d or until ctx is done.
func WaitFor(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}

	pause := sleep
	done := make(chan struct{})
	go func() {
		defer close(done)
		pause(d)
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-done:
		return nil
	}
}

// Retry calls fn up to attempts times, waiting backoff, then twice as long,
// between failures. It returns the last error.
func Retry(ctx context.Context, attempts int, backoff time.Duration, fn func(context.Context) error) error {
	if attempts <= 0 {
		attempts = 1
	}

	var err error
	for i := 0; i < attempts; i++ {
		if err = fn(ctx); err == nil {
			return nil
		}
		if i == attempts-1 {
			break
		}
		if waitErr := WaitFor(ctx, backoff); waitErr != nil {
			return waitErr
		}
		backoff *= 2
	}
	return err
}
