package cache

import (
	"context"
	"sync"
	"time"

	"github.com/spigell/jobmatch/internal/domain"
)

// Memory is an in-process Store. Construct one per process and share it.
type Memory struct {
	ttl time.Duration
	now func() time.Time

	mu      sync.RWMutex
	entries map[string]Entry
}

// NewMemory creates an empty store; a non-positive ttl selects DefaultTTL.
func NewMemory(ttl time.Duration) *Memory {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Memory{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]Entry),
	}
}

// WithClock replaces the time source. Intended for tests.
func (m *Memory) WithClock(now func() time.Time) *Memory {
	m.now = now
	return m
}

func (m *Memory) Get(_ context.Context, key string) ([]domain.Match, bool, error) {
	m.mu.RLock()
	entry, ok := m.entries[key]
	m.mu.RUnlock()

	if !ok || !entry.Live(m.now(), m.ttl) {
		return nil, false, nil
	}

	return cloneMatches(entry.Matches), true, nil
}

func (m *Memory) Put(_ context.Context, key string, matches []domain.Match) error {
	entry := Entry{Matches: cloneMatches(matches), StoredAt: m.now()}

	m.mu.Lock()
	m.entries[key] = entry
	m.mu.Unlock()

	return nil
}

// Len reports the number of stored entries, live or stale.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

func cloneMatches(in []domain.Match) []domain.Match {
	if in == nil {
		return nil
	}
	out := make([]domain.Match, len(in))
	copy(out, in)
	return out
}
