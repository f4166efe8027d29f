// Package cache stores AI match results so that requests with an equivalent
// user segment and job pool reuse them.
package cache

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/spigell/jobmatch/internal/domain"
	"github.com/spigell/jobmatch/internal/profile"
)

// DefaultTTL is how long a stored result stays live.
const DefaultTTL = 48 * time.Hour

const (
	defaultCareer = "general"
	defaultCities = "europe"
	defaultLevel  = "entry"
	citySeparator = "+"
)

// Letters and digits of any script survive; the separators "_" and "+" do not.
var partCleaner = regexp.MustCompile(`[^\p{L}\p{N}\s-]`)

// Store is a TTL-bounded result store shared by all in-flight requests.
// Implementations must be safe for concurrent Get and Put on the same key.
type Store interface {
	// Get returns the stored matches when the entry is younger than the TTL.
	// A stale or absent entry is reported as a miss, not as an error.
	Get(ctx context.Context, key string) ([]domain.Match, bool, error)
	// Put overwrites any existing entry for key.
	Put(ctx context.Context, key string, matches []domain.Match) error
}

// Entry is a stored result list and the moment it was written.
type Entry struct {
	Matches  []domain.Match `json:"matches"`
	StoredAt time.Time      `json:"stored_at"`
}

// Live reports whether the entry is still within ttl at now.
func (e *Entry) Live(now time.Time, ttl time.Duration) bool {
	return now.Sub(e.StoredAt) < ttl
}

// Key derives the cache key from the user segment (primary career path, the
// sorted set of target cities, entry-level preference) and the job pool version
// (UTC calendar day and pool size).
func Key(jobs []domain.Job, p *profile.Profile, now time.Time) string {
	p = p.Normalize()

	career := p.PrimaryCareerPath()
	if career == "" {
		career = defaultCareer
	}

	cities := defaultCities
	if len(p.TargetCities) > 0 {
		cleaned := make([]string, 0, len(p.TargetCities))
		for _, city := range p.TargetCities {
			cleaned = append(cleaned, keyPart(city))
		}
		sort.Strings(cleaned)
		cities = strings.Join(cleaned, citySeparator)
	}

	level := p.EntryLevel
	if level == "" {
		level = defaultLevel
	}

	return fmt.Sprintf("%s_%s_%s_v%s_%d", keyPart(career), cities, keyPart(level), now.UTC().Format(time.DateOnly), len(jobs))
}

// keyPart lower-cases v, drops punctuation and joins words with "-" so that
// "New York" and "Newyork" stay apart.
func keyPart(v string) string {
	v = partCleaner.ReplaceAllString(strings.ToLower(v), "")
	return strings.Join(strings.Fields(v), "-")
}
