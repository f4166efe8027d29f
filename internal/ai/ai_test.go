package ai

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/spigell/jobmatch/internal/domain"
)

type funcRanker func(ctx context.Context, req Request) (*Ranking, error)

func (f funcRanker) Rank(ctx context.Context, req Request) (*Ranking, error) {
	return f(ctx, req)
}

func TestRankWithinReturnsAnswer(t *testing.T) {
	t.Parallel()

	ranker := funcRanker(func(context.Context, Request) (*Ranking, error) {
		return &Ranking{Matches: []domain.Match{{JobHash: "a"}}, Model: "m"}, nil
	})

	got, err := RankWithin(context.Background(), ranker, Request{Tier: TierFast}, time.Second)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Model != "m" || len(got.Matches) != 1 {
		t.Fatalf("unexpected ranking %+v", got)
	}
}

func TestRankWithinTimesOutAndCancels(t *testing.T) {
	t.Parallel()

	cancelled := make(chan struct{})
	ranker := funcRanker(func(ctx context.Context, _ Request) (*Ranking, error) {
		<-ctx.Done()
		close(cancelled)
		return &Ranking{Matches: []domain.Match{{JobHash: "late"}}}, nil
	})

	start := time.Now()
	got, err := RankWithin(context.Background(), ranker, Request{}, 20*time.Millisecond)
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("expected ErrTimeout, got %v", err)
	}
	if got != nil {
		t.Fatalf("late answer leaked: %+v", got)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Fatalf("timer did not bound the call: %s", elapsed)
	}

	select {
	case <-cancelled:
	case <-time.After(time.Second):
		t.Fatal("in-flight call was not cancelled")
	}
}

func TestRankWithinPropagatesErrors(t *testing.T) {
	t.Parallel()

	ranker := funcRanker(func(context.Context, Request) (*Ranking, error) {
		return nil, fmt.Errorf("%w: boom", ErrProvider)
	})

	_, err := RankWithin(context.Background(), ranker, Request{}, time.Second)
	if !errors.Is(err, ErrProvider) {
		t.Fatalf("expected ErrProvider, got %v", err)
	}
}

func TestRankWithinParentCancellation(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ranker := funcRanker(func(context.Context, Request) (*Ranking, error) {
		time.Sleep(200 * time.Millisecond)
		return &Ranking{}, nil
	})

	_, err := RankWithin(ctx, ranker, Request{}, 0)
	if Kind(err) != "timeout" {
		t.Fatalf("expected timeout kind, got %q (%v)", Kind(err), err)
	}
}

func TestKind(t *testing.T) {
	t.Parallel()

	cases := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{fmt.Errorf("wrap: %w", ErrTimeout), "timeout"},
		{context.DeadlineExceeded, "timeout"},
		{fmt.Errorf("x: %w", ErrProvider), "provider_error"},
		{ErrInvalidResponse, "invalid_response"},
		{fmt.Errorf("%w: %w", ErrInvalidResponse, ErrNoMatches), "no_matches"},
		{errors.New("other"), "unknown"},
	}

	for _, tc := range cases {
		if got := Kind(tc.err); got != tc.want {
			t.Fatalf("Kind(%v) = %q, want %q", tc.err, got, tc.want)
		}
	}
}

func TestUsageTracker(t *testing.T) {
	t.Parallel()

	tracker := NewUsageTracker()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			tier := TierFast
			if i%2 == 0 {
				tier = TierPremium
			}
			tracker.Record(tier, Usage{Tokens: 100})
		}(i)
	}
	wg.Wait()

	snap := tracker.Snapshot()
	if snap[TierFast] != (TierUsage{Calls: 5, Tokens: 500}) {
		t.Fatalf("unexpected fast usage %+v", snap[TierFast])
	}
	if snap[TierPremium] != (TierUsage{Calls: 5, Tokens: 500}) {
		t.Fatalf("unexpected premium usage %+v", snap[TierPremium])
	}

	snap[TierFast] = TierUsage{}
	if tracker.Snapshot()[TierFast].Calls != 5 {
		t.Fatal("snapshot must be a copy")
	}

	var nilTracker *UsageTracker
	nilTracker.Record(TierFast, Usage{Tokens: 1})
	if len(nilTracker.Snapshot()) != 0 {
		t.Fatal("nil tracker must report nothing")
	}
}
