package ai

import (
	"context"
	"fmt"
	"time"
)

type rankResult struct {
	ranking *Ranking
	err     error
}

// RankWithin runs ranker under timeout. When the timer fires first the call's
// context is cancelled, ErrTimeout is returned and any late answer is dropped.
// A non-positive timeout disables the timer.
func RankWithin(ctx context.Context, ranker Ranker, req Request, timeout time.Duration) (*Ranking, error) {
	callCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Buffered so a late sender never blocks after we stop listening.
	done := make(chan rankResult, 1)
	go func() {
		ranking, err := ranker.Rank(callCtx, req)
		done <- rankResult{ranking: ranking, err: err}
	}()

	var expired <-chan time.Time
	if timeout > 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		expired = timer.C
	}

	select {
	case res := <-done:
		return res.ranking, res.err
	case <-expired:
		return nil, fmt.Errorf("%w after %s", ErrTimeout, timeout)
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %w", ErrTimeout, ctx.Err())
	}
}
