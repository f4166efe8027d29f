// Package ai defines the contract between the match engine and a generative
// ranking provider.
package ai

import (
	"context"

	"github.com/spigell/jobmatch/internal/domain"
	"github.com/spigell/jobmatch/internal/profile"
)

// Confidence is attached to every match produced by a provider.
const Confidence = 0.8

// Tier selects the cost class of the model used for a request.
type Tier string

const (
	TierFast    Tier = "fast"
	TierPremium Tier = "premium"
)

// Request is one ranking call. Jobs is the whole pool; providers look only at
// their leading analysis window.
type Request struct {
	Jobs    []domain.Job
	Profile *profile.Profile
	Tier    Tier
}

// Usage is the provider-reported token consumption of a call.
type Usage struct {
	Tokens int
}

// Ranking is a validated provider answer. Matches is never empty when err is
// nil. When the call completed but its answer was rejected, the ranking is
// returned alongside the error and carries the usage.
type Ranking struct {
	Matches []domain.Match
	Model   string
	Usage   Usage
}

// Ranker ranks a job pool for a profile.
type Ranker interface {
	Rank(ctx context.Context, req Request) (*Ranking, error)
}
