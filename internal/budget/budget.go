// Package budget decides whether an AI call may be made and records what calls cost.
package budget

import (
	"context"
	"time"

	"github.com/spigell/jobmatch/internal/ai"
)

// Decision is the answer to a pre-call budget check. A denial is a normal
// outcome, not an error.
type Decision struct {
	Allowed bool
	Reason  string
	// SuggestedTier, when set, replaces the requested tier.
	SuggestedTier ai.Tier
}

// Manager gates AI calls on cost.
type Manager interface {
	CanCall(ctx context.Context, identity string, tier ai.Tier) (Decision, error)
	// RecordUsage is called once per completed provider call with the tokens
	// it consumed and how long it took.
	RecordUsage(ctx context.Context, identity string, tier ai.Tier, tokens int, latency time.Duration) error
}

// Unlimited allows every call and records nothing.
type Unlimited struct{}

func (Unlimited) CanCall(context.Context, string, ai.Tier) (Decision, error) {
	return Decision{Allowed: true}, nil
}

func (Unlimited) RecordUsage(context.Context, string, ai.Tier, int, time.Duration) error {
	return nil
}
