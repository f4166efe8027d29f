package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/jobmatch/internal/ai"
	"github.com/spigell/jobmatch/internal/ai/gemini"
	"github.com/spigell/jobmatch/internal/budget"
	"github.com/spigell/jobmatch/internal/cache"
	"github.com/spigell/jobmatch/internal/logger"
	"github.com/spigell/jobmatch/internal/matching"
	"github.com/spigell/jobmatch/internal/routing"
	"github.com/spigell/jobmatch/internal/scoring"
	"github.com/spigell/jobmatch/internal/secrets"
)

const geminiKeyEnv = "GEMINI_API_KEY"

// session holds an assembled engine and the resources it must release.
type session struct {
	engine  *matching.Engine
	usage   *ai.UsageTracker
	closers []func() error
}

func (r *session) Close() error {
	var errs []error
	for i := len(r.closers) - 1; i >= 0; i-- {
		if err := r.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func newSession(ctx context.Context, config *Config, log *zap.Logger, rulesOnly bool) (*session, error) {
	rt := &session{usage: ai.NewUsageTracker()}

	store, err := newStore(ctx, config.Cache, rt)
	if err != nil {
		rt.Close()
		return nil, err
	}

	var ranker ai.Ranker
	if !rulesOnly {
		// Assigned only on success so the interface never holds a typed nil.
		r, err := newRanker(ctx, config.AI, rt.usage, log)
		if err != nil {
			log.Warn("ai ranker unavailable, using rule-based matching", zap.Error(err))
		} else {
			ranker = r
		}
	}

	limiter, err := newLimiter(ctx, config.Budget, log, rt)
	if err != nil {
		rt.Close()
		return nil, err
	}

	matchingCfg := *config.Matching
	matchingCfg.Timeout = config.AI.Timeout

	deps := matching.Deps{
		Store:  store,
		Budget: limiter,
		Router: routing.New(*config.Routing),
		Scorer: scoring.New(*config.Scoring, scoring.DefaultLexicon(), nil),
		Ranker: ranker,
		Logger: log,
	}

	engine, err := matching.New(matchingCfg, deps)
	if err != nil {
		rt.Close()
		return nil, err
	}
	rt.engine = engine

	return rt, nil
}

func newStore(ctx context.Context, config *CacheConfig, rt *session) (cache.Store, error) {
	switch strings.ToLower(strings.TrimSpace(config.Backend)) {
	case "", cacheBackendMemory:
		return cache.NewMemory(config.TTL), nil
	case cacheBackendRedis:
		client := cache.NewRedisClient(config.Redis)
		rt.closers = append(rt.closers, client.Close)

		store := cache.NewRedis(client, config.Redis.Prefix, config.TTL)
		if err := store.Health(ctx); err != nil {
			return nil, fmt.Errorf("redis cache: %w", err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unsupported cache backend %q", config.Backend)
	}
}

func newGenerator(ctx context.Context, config *AIConfig) (*gemini.Generator, error) {
	if config.Provider != "" && !strings.EqualFold(config.Provider, gemini.ProviderName) {
		return nil, fmt.Errorf("unsupported ai provider %q", config.Provider)
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name:  "gemini api key",
		Value: config.Gemini.APIKey,
		File:  config.Gemini.APIKeyFile,
		Env:   geminiKeyEnv,
	})
	if err != nil {
		return nil, err
	}

	return gemini.NewGenerator(ctx, apiKey)
}

func newRanker(ctx context.Context, config *AIConfig, usage *ai.UsageTracker, log *zap.Logger) (*gemini.Ranker, error) {
	if !config.Enabled {
		return nil, errors.New("ai is disabled in configuration")
	}

	generator, err := newGenerator(ctx, config)
	if err != nil {
		return nil, err
	}

	ranker := gemini.NewRanker(generator, config.Gemini.Config, usage, log)
	logger.WithModelFields(log, gemini.ProviderName, ranker.Model(ai.TierFast), string(ai.TierFast)).
		Info("ai ranker ready", zap.String("premium_model", ranker.Model(ai.TierPremium)))

	return ranker, nil
}

func newLimiter(ctx context.Context, config *budget.Config, log *zap.Logger, rt *session) (*budget.Limiter, error) {
	opts := []budget.Option{budget.WithLogger(log)}

	if config.LedgerPath != "" {
		ledger, err := budget.OpenLedger(config.LedgerPath)
		if err != nil {
			return nil, err
		}
		rt.closers = append(rt.closers, ledger.Close)
		opts = append(opts, budget.WithLedger(ledger))
	}

	limiter := budget.NewLimiter(*config, opts...)
	if err := limiter.Restore(ctx); err != nil {
		return nil, fmt.Errorf("restoring budget from ledger: %w", err)
	}

	return limiter, nil
}
