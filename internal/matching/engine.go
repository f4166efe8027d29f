// Package matching runs the per-request state machine that chooses between
// cached results, the AI ranker and the rule-based scorer.
package matching

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/jobmatch/internal/ai"
	"github.com/spigell/jobmatch/internal/budget"
	"github.com/spigell/jobmatch/internal/cache"
	"github.com/spigell/jobmatch/internal/domain"
	"github.com/spigell/jobmatch/internal/embedding"
	"github.com/spigell/jobmatch/internal/logger"
	"github.com/spigell/jobmatch/internal/profile"
	"github.com/spigell/jobmatch/internal/routing"
	"github.com/spigell/jobmatch/internal/scoring"
)

type Method string

const (
	MethodAISuccess Method = "ai_success"
	MethodAIFailed  Method = "ai_failed"
	MethodRuleBased Method = "rule_based"
	// MethodAITimeout is never reported by Match. A timed-out call is
	// MethodAIFailed with FallbackTimeout.
	MethodAITimeout Method = "ai_timeout"
)

// Fallback names why the AI path was skipped or abandoned.
type Fallback string

const (
	FallbackNone            Fallback = ""
	FallbackForced          Fallback = "forced"
	FallbackAIUnavailable   Fallback = "ai_unavailable"
	FallbackBudgetDenied    Fallback = "budget_denied"
	FallbackTimeout         Fallback = "timeout"
	FallbackProviderError   Fallback = "provider_error"
	FallbackInvalidResponse Fallback = "invalid_response"
	FallbackNoMatches       Fallback = "no_matches"
)

const (
	ConfidenceSuccess  = 0.9
	ConfidenceRules    = 0.8
	ConfidenceFallback = 0.7
)

// Config bounds result sizes and the AI latency.
type Config struct {
	MaxAIMatches   int           `mapstructure:"max-ai-matches"`
	MaxRuleMatches int           `mapstructure:"max-rule-matches"`
	Timeout        time.Duration `mapstructure:"-"`
}

func DefaultConfig() Config {
	return Config{
		MaxAIMatches:   5,
		MaxRuleMatches: 8,
		Timeout:        20 * time.Second,
	}
}

// Options alter a single request.
type Options struct {
	// ForceRules skips the AI path on a cache miss.
	ForceRules bool
}

// Outcome is the terminal state of a request.
type Outcome struct {
	Matches    []domain.Match `json:"matches"`
	Method     Method         `json:"method"`
	Elapsed    time.Duration  `json:"elapsed"`
	Confidence float64        `json:"confidence"`
	Fallback   Fallback       `json:"fallback,omitempty"`
	Tier       ai.Tier        `json:"tier,omitempty"`
	CacheKey   string         `json:"cache_key"`
}

// Deps are the collaborators of an Engine. Store and Scorer are required;
// a nil Ranker disables the AI path.
type Deps struct {
	Store   cache.Store
	Ranker  ai.Ranker
	Budget  budget.Manager
	Router  *routing.Router
	Scorer  *scoring.Scorer
	Booster embedding.Booster
	Logger  *zap.Logger
}

// Engine is safe for concurrent use; all requests share its store.
type Engine struct {
	cfg     Config
	store   cache.Store
	ranker  ai.Ranker
	budget  budget.Manager
	router  *routing.Router
	scorer  *scoring.Scorer
	booster embedding.Booster
	logger  *zap.Logger
	now     func() time.Time
}

func New(cfg Config, deps Deps) (*Engine, error) {
	if deps.Store == nil {
		return nil, errors.New("cache store is required")
	}
	if deps.Scorer == nil {
		return nil, errors.New("scorer is required")
	}

	def := DefaultConfig()
	if cfg.MaxAIMatches <= 0 {
		cfg.MaxAIMatches = def.MaxAIMatches
	}
	if cfg.MaxRuleMatches <= 0 {
		cfg.MaxRuleMatches = def.MaxRuleMatches
	}
	// The AI call always runs under a deadline.
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}

	e := &Engine{
		cfg:     cfg,
		store:   deps.Store,
		ranker:  deps.Ranker,
		budget:  deps.Budget,
		router:  deps.Router,
		scorer:  deps.Scorer,
		booster: deps.Booster,
		logger:  deps.Logger,
		now:     time.Now,
	}
	if e.budget == nil {
		e.budget = budget.Unlimited{}
	}
	if e.router == nil {
		e.router = routing.New(routing.DefaultPolicy())
	}
	if e.booster == nil {
		e.booster = embedding.Nop{}
	}
	if e.logger == nil {
		e.logger = zap.NewNop()
	}

	return e, nil
}

// WithClock replaces the time source used for cache keys and elapsed time.
func (e *Engine) WithClock(now func() time.Time) *Engine {
	e.now = now
	return e
}

// Match never fails: every AI problem degrades to the rule-based scorer.
func (e *Engine) Match(ctx context.Context, jobs []domain.Job, p *profile.Profile, opts Options) *Outcome {
	start := e.now()
	p = p.Normalize()
	key := cache.Key(jobs, p, start)

	log := e.logger.With(zap.String(logger.FieldCacheKey, key), zap.String(logger.FieldIdentity, p.Identity()))

	out, cause := e.run(ctx, jobs, p, key, opts, log)
	out.CacheKey = key
	out.Elapsed = e.now().Sub(start)
	if out.Matches == nil {
		out.Matches = []domain.Match{}
	}

	fields := logger.MatchFields(string(out.Method), string(out.Fallback), ai.Kind(cause), string(out.Tier), out.Elapsed)
	fields = append(fields, zap.Int("matches", len(out.Matches)))
	if cause != nil {
		fields = append(fields, zap.Error(cause))
	}
	log.Info("match complete", fields...)

	return out
}

func (e *Engine) run(ctx context.Context, jobs []domain.Job, p *profile.Profile, key string, opts Options, log *zap.Logger) (*Outcome, error) {
	cached, hit, err := e.store.Get(ctx, key)
	if err != nil {
		log.Warn("cache read failed, treating as miss", zap.Error(err))
	}
	if hit {
		return &Outcome{
			Matches:    domain.Finalize(cached, e.cfg.MaxAIMatches),
			Method:     MethodAISuccess,
			Confidence: ConfidenceSuccess,
		}, nil
	}

	if opts.ForceRules {
		return e.rules(ctx, jobs, p, MethodRuleBased, FallbackForced, log), nil
	}
	if e.ranker == nil {
		return e.rules(ctx, jobs, p, MethodRuleBased, FallbackAIUnavailable, log), nil
	}

	route := e.router.Decide(jobs, p)
	tier := ai.TierFast
	if route.Premium {
		tier = ai.TierPremium
	}
	log.Debug("routed request", zap.Float64("complexity", route.Score), zap.String(logger.FieldTier, string(tier)))

	identity := p.Identity()
	decision, err := e.budget.CanCall(ctx, identity, tier)
	if err != nil {
		log.Warn("budget check failed, skipping ai", zap.Error(err))
		decision = budget.Decision{Reason: err.Error()}
	}
	if !decision.Allowed {
		out := e.rules(ctx, jobs, p, MethodRuleBased, FallbackBudgetDenied, log)
		out.Tier = tier
		log.Info("ai call denied by budget", zap.String("reason", decision.Reason))
		return out, nil
	}
	if decision.SuggestedTier != "" && decision.SuggestedTier != tier {
		log.Info("budget changed tier",
			zap.String("from", string(tier)),
			zap.String("to", string(decision.SuggestedTier)),
			zap.String("reason", decision.Reason),
		)
		tier = decision.SuggestedTier
	}

	callStart := e.now()
	ranking, err := ai.RankWithin(ctx, e.ranker, ai.Request{Jobs: jobs, Profile: p, Tier: tier}, e.cfg.Timeout)
	latency := e.now().Sub(callStart)
	if ranking != nil {
		if recErr := e.budget.RecordUsage(ctx, identity, tier, ranking.Usage.Tokens, latency); recErr != nil {
			log.Warn("recording usage failed", zap.Error(recErr))
		}
	}
	if err == nil && (ranking == nil || len(ranking.Matches) == 0) {
		err = ai.ErrNoMatches
	}
	if err != nil {
		out := e.rules(ctx, jobs, p, MethodAIFailed, fallbackFor(err), log)
		out.Confidence = ConfidenceFallback
		out.Tier = tier
		return out, err
	}

	matches := domain.Finalize(ranking.Matches, e.cfg.MaxAIMatches)
	if err := e.store.Put(ctx, key, matches); err != nil {
		log.Warn("cache write failed", zap.Error(err))
	}

	return &Outcome{
		Matches:    matches,
		Method:     MethodAISuccess,
		Confidence: ConfidenceSuccess,
		Tier:       tier,
	}, nil
}

func (e *Engine) rules(ctx context.Context, jobs []domain.Job, p *profile.Profile, method Method, fallback Fallback, log *zap.Logger) *Outcome {
	candidates := e.scorer.Match(jobs, p)
	boosted := e.boost(ctx, e.scorer.Analyzed(jobs), p, candidates, log)

	return &Outcome{
		Matches:    domain.Finalize(boosted, e.cfg.MaxRuleMatches),
		Method:     method,
		Confidence: ConfidenceRules,
		Fallback:   fallback,
	}
}

// boost applies the embedding collaborator. Any failure yields the input.
func (e *Engine) boost(ctx context.Context, jobs []domain.Job, p *profile.Profile, candidates []domain.Match, log *zap.Logger) (out []domain.Match) {
	if len(candidates) == 0 {
		return candidates
	}

	defer func() {
		if r := recover(); r != nil {
			log.Warn("embedding boost panicked, using rule scores", zap.String("panic", fmt.Sprint(r)))
			out = candidates
		}
	}()

	boosted, err := e.booster.Boost(ctx, jobs, p, candidates)
	if err != nil {
		log.Warn("embedding boost failed, using rule scores", zap.Error(err))
		return candidates
	}

	return embedding.Sanitize(candidates, boosted)
}

func fallbackFor(err error) Fallback {
	switch ai.Kind(err) {
	case "timeout":
		return FallbackTimeout
	case "invalid_response":
		return FallbackInvalidResponse
	case "no_matches":
		return FallbackNoMatches
	default:
		return FallbackProviderError
	}
}
