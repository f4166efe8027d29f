package cache

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/spigell/jobmatch/internal/domain"
	"github.com/spigell/jobmatch/internal/profile"
)

func jobsOf(n int) []domain.Job {
	jobs := make([]domain.Job, n)
	for i := range jobs {
		jobs[i] = domain.Job{JobHash: fmt.Sprintf("h%d", i)}
	}
	return jobs
}

func TestKeySeparatesCitySets(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	jobs := jobsOf(30)

	a := Key(jobs, &profile.Profile{CareerPaths: []string{"Tech"}, TargetCities: []string{"London", "Paris"}}, now)
	b := Key(jobs, &profile.Profile{CareerPaths: []string{"Tech"}, TargetCities: []string{"London", "Berlin"}}, now)
	if a == b {
		t.Fatalf("expected distinct keys, both were %q", a)
	}

	c := Key(jobs, &profile.Profile{CareerPaths: []string{"tech"}, TargetCities: []string{"paris", "LONDON"}}, now)
	if a != c {
		t.Fatalf("expected equivalent segments to share a key: %q vs %q", a, c)
	}

	distinct := []struct {
		name string
		x, y []string
	}{
		{name: "cyrillic", x: []string{"Москва"}, y: []string{"Киев"}},
		{name: "cjk", x: []string{"東京"}, y: []string{"大阪"}},
		{name: "word boundaries", x: []string{"New York"}, y: []string{"Newyork"}},
		{name: "separator in a name", x: []string{"a+b"}, y: []string{"a", "b"}},
	}
	for _, tc := range distinct {
		kx := Key(jobs, &profile.Profile{CareerPaths: []string{"software"}, TargetCities: tc.x}, now)
		ky := Key(jobs, &profile.Profile{CareerPaths: []string{"software"}, TargetCities: tc.y}, now)
		if kx == ky {
			t.Fatalf("%s: %v and %v share key %q", tc.name, tc.x, tc.y, kx)
		}
	}

	ru := Key(jobs, &profile.Profile{CareerPaths: []string{"software"}, TargetCities: []string{"Москва"}}, now)
	if !strings.Contains(ru, "_москва_") {
		t.Fatalf("expected the city to survive in the key, got %q", ru)
	}
}

func TestKeyFormat(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 23, 30, 0, 0, time.FixedZone("x", -2*3600))

	cases := []struct {
		name string
		p    *profile.Profile
		want string
	}{
		{
			name: "defaults",
			p:    &profile.Profile{},
			want: "general_europe_entry_v2026-03-02_12",
		},
		{
			name: "nil profile",
			p:    nil,
			want: "general_europe_entry_v2026-03-02_12",
		},
		{
			name: "drops punctuation and keeps words apart",
			p: &profile.Profile{
				CareerPaths:  []string{"Data & AI"},
				TargetCities: []string{"São Paulo", "Berlin"},
				EntryLevel:   "Graduate",
			},
			want: "data-ai_berlin+são-paulo_graduate_v2026-03-02_12",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := Key(jobsOf(12), tc.p, now); got != tc.want {
				t.Fatalf("Key() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestKeyChangesWithPoolVersion(t *testing.T) {
	t.Parallel()

	p := &profile.Profile{CareerPaths: []string{"tech"}}
	day := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	if Key(jobsOf(10), p, day) == Key(jobsOf(11), p, day) {
		t.Fatal("pool size must be part of the key")
	}
	if Key(jobsOf(10), p, day) == Key(jobsOf(10), p, day.Add(24*time.Hour)) {
		t.Fatal("calendar day must be part of the key")
	}
	if !strings.HasPrefix(Key(nil, p, day), "tech_europe_entry_v") {
		t.Fatalf("unexpected key %q", Key(nil, p, day))
	}
}

func TestMemoryTTL(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	store := NewMemory(time.Hour).WithClock(func() time.Time { return now })
	ctx := context.Background()

	if _, ok, err := store.Get(ctx, "k"); ok || err != nil {
		t.Fatalf("expected clean miss, got ok=%v err=%v", ok, err)
	}

	if err := store.Put(ctx, "k", []domain.Match{{JobHash: "a", Score: 90}}); err != nil {
		t.Fatalf("put: %v", err)
	}

	now = now.Add(59 * time.Minute)
	got, ok, err := store.Get(ctx, "k")
	if err != nil || !ok || len(got) != 1 || got[0].JobHash != "a" {
		t.Fatalf("expected live hit, got %v ok=%v err=%v", got, ok, err)
	}

	now = now.Add(time.Minute)
	if _, ok, _ := store.Get(ctx, "k"); ok {
		t.Fatal("expected entry to expire at the TTL")
	}
}

func TestMemoryReturnsCopies(t *testing.T) {
	t.Parallel()

	store := NewMemory(0)
	ctx := context.Background()
	in := []domain.Match{{JobHash: "a", Score: 80}}

	if err := store.Put(ctx, "k", in); err != nil {
		t.Fatalf("put: %v", err)
	}
	in[0].Score = 10

	got, _, _ := store.Get(ctx, "k")
	got[0].JobHash = "mutated"

	again, _, _ := store.Get(ctx, "k")
	if again[0].Score != 80 || again[0].JobHash != "a" {
		t.Fatalf("stored entry was mutated: %+v", again[0])
	}
}

func TestMemoryConcurrentAccess(t *testing.T) {
	t.Parallel()

	store := NewMemory(time.Minute)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := fmt.Sprintf("k%d", i%4)
			_ = store.Put(ctx, key, []domain.Match{{JobHash: key}})
			if got, ok, _ := store.Get(ctx, key); ok && got[0].JobHash != key {
				t.Errorf("read %q under key %q", got[0].JobHash, key)
			}
		}(i)
	}
	wg.Wait()

	if store.Len() != 4 {
		t.Fatalf("expected 4 keys, got %d", store.Len())
	}
}

func TestRedisRoundTrip(t *testing.T) {
	addr := os.Getenv("JOBMATCH_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("JOBMATCH_TEST_REDIS_ADDR not set")
	}

	cfg := DefaultRedisConfig()
	cfg.Addr = addr
	client := NewRedisClient(cfg)
	t.Cleanup(func() { _ = client.Close() })

	prefix := fmt.Sprintf("jobmatch:test:%d:", time.Now().UnixNano())
	store := NewRedis(client, prefix, time.Minute)
	ctx := context.Background()

	if err := store.Health(ctx); err != nil {
		t.Fatalf("ping: %v", err)
	}
	t.Cleanup(func() { client.Del(context.Background(), prefix+"k") })

	if _, ok, err := store.Get(ctx, "k"); ok || err != nil {
		t.Fatalf("expected miss, got ok=%v err=%v", ok, err)
	}

	if err := store.Put(ctx, "k", []domain.Match{{JobHash: "a", Score: 77, Quality: domain.QualityGood}}); err != nil {
		t.Fatalf("put: %v", err)
	}

	got, ok, err := store.Get(ctx, "k")
	if err != nil || !ok {
		t.Fatalf("expected hit, got ok=%v err=%v", ok, err)
	}
	if len(got) != 1 || got[0].JobHash != "a" || got[0].Score != 77 {
		t.Fatalf("unexpected entry %+v", got)
	}

	store.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	if _, ok, _ := store.Get(ctx, "k"); ok {
		t.Fatal("expected stale entry to be a miss")
	}
}
