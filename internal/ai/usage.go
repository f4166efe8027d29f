package ai

import "sync"

// TierUsage is the cumulative usage of one tier.
type TierUsage struct {
	Calls  int `json:"calls"`
	Tokens int `json:"tokens"`
}

// UsageTracker counts provider calls and tokens per tier. It is safe for
// concurrent use and never affects the outcome of a request.
type UsageTracker struct {
	mu    sync.Mutex
	tiers map[Tier]TierUsage
}

func NewUsageTracker() *UsageTracker {
	return &UsageTracker{tiers: make(map[Tier]TierUsage)}
}

// Record adds one completed call. A nil tracker ignores the call.
func (u *UsageTracker) Record(tier Tier, usage Usage) {
	if u == nil {
		return
	}
	u.mu.Lock()
	defer u.mu.Unlock()

	cur := u.tiers[tier]
	cur.Calls++
	cur.Tokens += usage.Tokens
	u.tiers[tier] = cur
}

// Snapshot returns a copy of the counters.
func (u *UsageTracker) Snapshot() map[Tier]TierUsage {
	out := make(map[Tier]TierUsage)
	if u == nil {
		return out
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	for tier, usage := range u.tiers {
		out[tier] = usage
	}
	return out
}
