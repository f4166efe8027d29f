package utils

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestWaitForAndRetry(t *testing.T) {
	var waits []time.Duration
	sleep = func(d time.Duration) { waits = append(waits, d) }
	t.Cleanup(func() { sleep = time.Sleep })

	calls := 0
	err := Retry(context.Background(), 3, 10*time.Millisecond, func(context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("not yet")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 3 {
		t.Fatalf("expected 3 calls, got %d", calls)
	}
	if len(waits) != 2 || waits[0] != 10*time.Millisecond || waits[1] != 20*time.Millisecond {
		t.Fatalf("unexpected backoff %v", waits)
	}

	waits = nil
	err = Retry(context.Background(), 2, time.Millisecond, func(context.Context) error { return errors.New("down") })
	if err == nil || err.Error() != "down" || len(waits) != 1 {
		t.Fatalf("expected last error after 2 attempts, got %v waits=%v", err, waits)
	}
}

func TestWaitForCancelled(t *testing.T) {
	block := make(chan struct{})
	sleep = func(time.Duration) { <-block }
	t.Cleanup(func() {
		close(block)
		sleep = time.Sleep
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := WaitFor(ctx, time.Hour); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context cancellation, got %v", err)
	}
	if err := WaitFor(ctx, 0); err != nil {
		t.Fatalf("zero duration must not wait, got %v", err)
	}
}
