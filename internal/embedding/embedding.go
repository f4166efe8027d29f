// Package embedding declares the semantic-similarity collaborator that may
// adjust rule-based match scores.
package embedding

import (
	"context"

	"github.com/spigell/jobmatch/internal/domain"
	"github.com/spigell/jobmatch/internal/profile"
)

// Booster re-scores rule-based candidates.
type Booster interface {
	Boost(ctx context.Context, jobs []domain.Job, p *profile.Profile, matches []domain.Match) ([]domain.Match, error)
}

// Nop returns its input unchanged.
type Nop struct{}

func (Nop) Boost(_ context.Context, _ []domain.Job, _ *profile.Profile, matches []domain.Match) ([]domain.Match, error) {
	return matches, nil
}

// Func adapts a plain function to Booster.
type Func func(ctx context.Context, jobs []domain.Job, p *profile.Profile, matches []domain.Match) ([]domain.Match, error)

func (f Func) Boost(ctx context.Context, jobs []domain.Job, p *profile.Profile, matches []domain.Match) ([]domain.Match, error) {
	return f(ctx, jobs, p, matches)
}

// Sanitize drops boosted entries whose hash was not among the candidates and
// clamps the rest into the valid score range.
func Sanitize(candidates, boosted []domain.Match) []domain.Match {
	known := make(map[string]struct{}, len(candidates))
	for _, m := range candidates {
		known[m.JobHash] = struct{}{}
	}

	out := make([]domain.Match, 0, len(boosted))
	for _, m := range boosted {
		if _, ok := known[m.JobHash]; !ok {
			continue
		}
		m.Score = domain.ClampScore(m.Score)
		out = append(out, m)
	}
	return out
}
