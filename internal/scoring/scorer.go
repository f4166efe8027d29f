// Package scoring implements the deterministic, always-available match model.
package scoring

import (
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/spigell/jobmatch/internal/domain"
	"github.com/spigell/jobmatch/internal/profile"
)

const (
	// RuleConfidence is attached to every rule-based match.
	RuleConfidence  = 0.7
	defaultReason   = "Enhanced rule-based match"
	reasonSeparator = ", "
)

// Breakdown is the per-factor result of scoring one job for one profile.
type Breakdown struct {
	Overall     int      `json:"overall"`
	Eligibility int      `json:"eligibility"`
	Experience  int      `json:"experience"`
	Location    int      `json:"location"`
	Skills      int      `json:"skills"`
	Company     int      `json:"company"`
	Timing      int      `json:"timing"`
	Reasons     []string `json:"reasons"`
}

// Scorer is a weighted multi-factor scorer. It is safe for concurrent use.
type Scorer struct {
	weights    Weights
	lexicon    Lexicon
	vectorizer *profile.Vectorizer
	now        func() time.Time

	coldStart   chain
	earlyCareer chain
	location    chain
	company     chain
	recency     chain
}

type Option func(*Scorer)

// WithClock overrides the time source used for recency.
func WithClock(now func() time.Time) Option {
	return func(s *Scorer) { s.now = now }
}

func New(weights Weights, lexicon Lexicon, vectorizer *profile.Vectorizer, opts ...Option) *Scorer {
	if vectorizer == nil {
		vectorizer = profile.NewVectorizer(profile.DefaultTaxonomy())
	}

	s := &Scorer{
		weights:    weights,
		lexicon:    lexicon,
		vectorizer: vectorizer,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.coldStart = s.coldStartChain()
	s.earlyCareer = s.earlyCareerChain()
	s.location = s.locationChain()
	s.company = s.companyChain()
	s.recency = s.recencyChain()

	return s
}

// NewDefault builds a scorer with the built-in weights and keyword lists.
func NewDefault(opts ...Option) *Scorer {
	return New(DefaultWeights(), DefaultLexicon(), nil, opts...)
}

// Analyzed returns the leading slice of the pool the scorer looks at.
func (s *Scorer) Analyzed(jobs []domain.Job) []domain.Job {
	return domain.Leading(jobs, s.weights.JobsToScore)
}

// Match scores the analyzed slice and keeps jobs at or above the inclusion
// threshold, in pool order. Indexes are 1-based into the analyzed slice.
func (s *Scorer) Match(jobs []domain.Job, p *profile.Profile) []domain.Match {
	p = p.Normalize()
	analyzed := s.Analyzed(jobs)

	matches := make([]domain.Match, 0, len(analyzed))
	for i := range analyzed {
		b := s.Score(&analyzed[i], p)
		if b.Overall < s.weights.IncludeThreshold {
			continue
		}

		reason := strings.Join(b.Reasons, reasonSeparator)
		if reason == "" {
			reason = defaultReason
		}

		matches = append(matches, domain.Match{
			JobHash:    analyzed[i].JobHash,
			JobIndex:   i + 1,
			Score:      float64(b.Overall),
			Reason:     reason,
			Confidence: RuleConfidence,
			Quality:    domain.QualityFor(float64(b.Overall)),
		})
	}

	return matches
}

// Score computes the breakdown for a single job. Absent fields contribute 0.
func (s *Scorer) Score(job *domain.Job, p *profile.Profile) Breakdown {
	if p == nil {
		p = p.Normalize()
	}

	sig := &signal{
		title:    strings.ToLower(strings.TrimSpace(job.Title)),
		text:     job.Text(),
		company:  strings.ToLower(strings.TrimSpace(job.Company)),
		location: strings.ToLower(strings.TrimSpace(job.Location)),
		posted:   job.PostedAt(),
		profile:  p,
	}

	var b Breakdown
	total := s.weights.Base

	add := func(points int, reason string) int {
		total += points
		if points > 0 && reason != "" {
			b.Reasons = append(b.Reasons, reason)
		}
		return points
	}

	if p.IsColdStart() {
		b.Eligibility = add(s.coldStart.eval(sig))
	}
	b.Experience = add(s.earlyCareer.eval(sig))
	b.Location = add(s.location.eval(sig))
	b.Skills = add(s.skills(sig))
	b.Company = add(s.company.eval(sig))
	b.Timing = add(s.recency.eval(sig))

	b.Overall = clamp(total, 0, 100)
	if b.Reasons == nil {
		b.Reasons = []string{}
	}

	return b
}

// skills takes the strongest of the profile-vector overlap, a verbatim
// expertise or career-path mention, and career-family keyword alignment.
func (s *Scorer) skills(sig *signal) (int, string) {
	w := s.weights
	p := sig.profile
	best, reason := 0, ""

	user := s.vectorizer.UserVector(p.Expertise, p.CareerPaths)
	job := s.vectorizer.JobVector(sig.text)
	if n := profile.Overlap(user, job); n >= w.OverlapMinTerms {
		points := min(w.OverlapCap, w.OverlapBase+w.OverlapPerTerm*n)
		if points > best {
			best, reason = points, fmt.Sprintf("profile overlap (%d points)", points)
		}
	}

	expertise := strings.ToLower(strings.TrimSpace(p.Expertise))
	if expertise != "" && strings.Contains(sig.text, expertise) && w.DirectCareerMatch > best {
		best, reason = w.DirectCareerMatch, "direct career match"
	}

	for _, path := range p.CareerPaths {
		path = strings.ToLower(path)
		if path != "" && strings.Contains(sig.text, path) && w.DirectCareerMatch > best {
			best, reason = w.DirectCareerMatch, "career path match"
		}
	}

	if expertise == "" {
		return best, reason
	}

	for _, family := range slices.Sorted(maps.Keys(s.lexicon.CareerFamilies)) {
		if !strings.Contains(expertise, family) {
			continue
		}

		matched := 0
		for _, keyword := range s.lexicon.CareerFamilies[family] {
			if strings.Contains(sig.text, strings.ToLower(keyword)) {
				matched++
			}
		}
		if matched == 0 {
			continue
		}

		points := min(w.FamilyCap, w.FamilyBase+w.FamilyPerKeyword*matched)
		if points > best {
			best, reason = points, fmt.Sprintf("%s alignment (%d keywords)", family, matched)
		}
	}

	return best, reason
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
