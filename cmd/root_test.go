package cmd

import (
	"bytes"
	"testing"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/jobmatch/internal/cache"
	"github.com/spigell/jobmatch/internal/domain"
	"github.com/spigell/jobmatch/internal/matching"
	"github.com/spigell/jobmatch/internal/profile"
	"github.com/spigell/jobmatch/internal/scoring"
)

const sampleConfig = `
ai:
  timeout: 5s
  gemini:
    api-key-file: /run/secrets/gemini
    premium-model: gemini-test-pro
    jobs-to-analyze: 30
cache:
  backend: redis
  ttl: 1h
  redis:
    addr: cache:6379
budget:
  daily-limit: 2.5
routing:
  threshold: 0.5
pool:
  exclude-companies: [Acme]
`

func TestGetConfigOverlaysDefaults(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	viper.SetConfigType("yaml")
	if err := viper.ReadConfig(bytes.NewBufferString(sampleConfig)); err != nil {
		t.Fatalf("read config: %v", err)
	}

	config, err := getConfig()
	if err != nil {
		t.Fatalf("getConfig: %v", err)
	}

	if config.AI.Timeout != 5*time.Second || !config.AI.Enabled {
		t.Fatalf("unexpected ai config %+v", config.AI)
	}
	if config.AI.Gemini.APIKeyFile != "/run/secrets/gemini" {
		t.Fatalf("unexpected key file %q", config.AI.Gemini.APIKeyFile)
	}
	if config.AI.Gemini.PremiumModel != "gemini-test-pro" || config.AI.Gemini.JobsToAnalyze != 30 {
		t.Fatalf("squashed gemini fields not decoded: %+v", config.AI.Gemini.Config)
	}
	if config.AI.Gemini.FastModel == "" || !config.AI.Gemini.StructuredOutput {
		t.Fatalf("gemini defaults lost: %+v", config.AI.Gemini.Config)
	}
	if config.Cache.Backend != cacheBackendRedis || config.Cache.TTL != time.Hour {
		t.Fatalf("unexpected cache config %+v", config.Cache)
	}
	if config.Cache.Redis.Addr != "cache:6379" || config.Cache.Redis.Prefix != cache.DefaultRedisConfig().Prefix {
		t.Fatalf("unexpected redis config %+v", config.Cache.Redis)
	}
	if config.Budget.DailyLimit != 2.5 || config.Budget.UserDailyLimit != 0.5 {
		t.Fatalf("unexpected budget config %+v", config.Budget)
	}
	if config.Routing.PremiumThreshold != 0.5 || config.Routing.LargePool != 100 {
		t.Fatalf("unexpected routing policy %+v", config.Routing)
	}
	if config.Scoring.JobsToScore != scoring.DefaultWeights().JobsToScore {
		t.Fatalf("scoring defaults lost: %+v", config.Scoring)
	}
	if len(config.Pool.ExcludeCompanies) != 1 || config.Pool.ExcludeCompanies[0] != "Acme" {
		t.Fatalf("unexpected pool config %+v", config.Pool)
	}
}

func TestSelectProfiles(t *testing.T) {
	profiles := []*profile.Profile{
		{Email: "a@example.com"},
		{Email: "b@example.com"},
	}

	t.Cleanup(func() {
		matchAll = false
		profileEmail = ""
	})

	matchAll = true
	got, err := selectProfiles(profiles)
	if err != nil || len(got) != 2 {
		t.Fatalf("--all: got %d profiles, err %v", len(got), err)
	}

	matchAll = false
	profileEmail = "B@example.com"
	got, err = selectProfiles(profiles)
	if err != nil || len(got) != 1 || got[0].Email != "b@example.com" {
		t.Fatalf("--profile: got %+v, err %v", got, err)
	}

	profileEmail = "missing@example.com"
	if _, err := selectProfiles(profiles); err == nil {
		t.Fatal("expected an error for an unknown profile")
	}

	profileEmail = ""
	got, err = selectProfiles(profiles[:1])
	if err != nil || len(got) != 1 {
		t.Fatalf("single profile: got %+v, err %v", got, err)
	}

	if _, err := selectProfiles(nil); err == nil {
		t.Fatal("expected an error without profiles")
	}
}

func TestMatchProfilesSharesEngine(t *testing.T) {
	store := cache.NewMemory(0)
	engine, err := matching.New(matching.DefaultConfig(), matching.Deps{
		Store:  store,
		Scorer: scoring.NewDefault(),
		Logger: zap.NewNop(),
	})
	if err != nil {
		t.Fatalf("engine: %v", err)
	}

	jobs := []domain.Job{{
		JobHash:     "job-001",
		Title:       "Graduate Software Engineer",
		Company:     "Google",
		Location:    "London",
		Description: "graduate programme for software engineers",
	}}
	profiles := []*profile.Profile{
		{Email: "a@example.com", EntryLevel: "graduate", TargetCities: []string{"london"}},
		{Email: "b@example.com", EntryLevel: "graduate", TargetCities: []string{"berlin"}},
		{Email: "c@example.com"},
	}

	results := matchProfiles(t.Context(), engine, jobs, profiles, matching.Options{})
	if len(results) != len(profiles) {
		t.Fatalf("expected %d results, got %d", len(profiles), len(results))
	}
	for i, r := range results {
		if r.Profile != profiles[i].Identity() {
			t.Fatalf("result %d belongs to %q, want %q", i, r.Profile, profiles[i].Identity())
		}
		if r.Outcome == nil || r.Outcome.Method != matching.MethodRuleBased {
			t.Fatalf("result %d: unexpected outcome %+v", i, r.Outcome)
		}
		if r.Outcome.Fallback != matching.FallbackAIUnavailable {
			t.Fatalf("result %d: unexpected fallback %q", i, r.Outcome.Fallback)
		}
	}
}
