package scoring

import (
	"strings"
	"time"

	"github.com/spigell/jobmatch/internal/profile"
)

// signal is the pre-lowered view of one (job, profile) pair that rules inspect.
type signal struct {
	title    string
	text     string
	company  string
	location string
	posted   time.Time
	profile  *profile.Profile
}

// rule awards points when its predicate holds.
type rule struct {
	points int
	reason string
	match  func(s *signal) bool
}

// chain is a priority-ordered factor: the first matching rule wins.
type chain []rule

func (c chain) eval(s *signal) (int, string) {
	for _, r := range c {
		if r.match(s) {
			return r.points, r.reason
		}
	}
	return 0, ""
}

func containsAny(haystack string, needles []string) bool {
	for _, needle := range needles {
		if needle == "" {
			continue
		}
		if strings.Contains(haystack, strings.ToLower(needle)) {
			return true
		}
	}
	return false
}

func textHas(needles []string) func(*signal) bool {
	return func(s *signal) bool { return containsAny(s.text, needles) }
}

func titleHas(needles []string) func(*signal) bool {
	return func(s *signal) bool { return containsAny(s.title, needles) }
}

func companyHas(needles []string) func(*signal) bool {
	return func(s *signal) bool { return containsAny(s.company, needles) }
}

func locationHas(needles []string) func(*signal) bool {
	return func(s *signal) bool { return containsAny(s.location, needles) }
}

func (sc *Scorer) coldStartChain() chain {
	w, lx := sc.weights, sc.lexicon
	return chain{
		{points: w.ColdStartProgramme, reason: "graduate programme", match: textHas(lx.ProgrammePhrases)},
		{points: w.ColdStartStructuredRole, reason: "structured early-career role", match: titleHas(lx.StructuredRoles)},
		{points: w.ColdStartEstablished, reason: "established company", match: textHas(lx.LargeEmployerHints)},
	}
}

// earlyCareerChain evaluates the seniority penalty first so that a senior
// title overrides any early-career wording found in the description.
func (sc *Scorer) earlyCareerChain() chain {
	w, lx := sc.weights, sc.lexicon
	return chain{
		{points: w.SeniorityPenalty, reason: "senior role penalty", match: titleHas(lx.SeniorTerms)},
		{points: w.EarlyCareerHigh, reason: "early-career role", match: textHas(lx.HighValueTerms)},
		{points: w.EarlyCareerMedium, reason: "entry-level position", match: textHas(lx.MediumValueTerms)},
		{points: w.EarlyCareerProgramme, reason: "structured programme", match: textHas(lx.ProgrammeTerms)},
	}
}

func (sc *Scorer) locationChain() chain {
	w, lx := sc.weights, sc.lexicon
	return chain{
		{points: w.RemotePenalty, reason: "remote job penalty", match: locationHas(lx.RemoteHints)},
		{points: w.TargetCity, reason: "target city match", match: func(s *signal) bool {
			return containsAny(s.location, s.profile.TargetCities)
		}},
		{points: w.EULocation, reason: "EU location", match: locationHas(lx.EUHints)},
	}
}

func (sc *Scorer) companyChain() chain {
	w, lx := sc.weights, sc.lexicon
	return chain{
		{points: w.Tier1Company, reason: "tier-1 company", match: companyHas(lx.Tier1Companies)},
		{points: w.Tier2Company, reason: "tier-2 company", match: companyHas(lx.Tier2Companies)},
		{points: w.Startup, reason: "startup/scaleup", match: textHas(lx.StartupHints)},
		{points: w.NamedCompany, reason: "established company", match: func(s *signal) bool {
			return len(s.company) > 3 && !containsAny(s.company, lx.LegalSuffixes)
		}},
	}
}

func (sc *Scorer) recencyChain() chain {
	out := make(chain, 0, len(sc.weights.Recency))
	for _, band := range sc.weights.Recency {
		maxAge := band.MaxAge
		out = append(out, rule{points: band.Points, reason: band.Reason, match: func(s *signal) bool {
			if s.posted.IsZero() {
				return false
			}
			return sc.now().Sub(s.posted) < maxAge
		}})
	}
	return out
}
