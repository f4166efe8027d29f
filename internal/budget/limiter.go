package budget

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/spigell/jobmatch/internal/ai"
)

const (
	ReasonDailyLimit = "daily budget exhausted"
	ReasonUserLimit  = "user daily budget exhausted"
	ReasonRateLimit  = "call rate exceeded"
)

// Config holds spending caps in USD and the call rate.
type Config struct {
	DailyLimit        float64 `mapstructure:"daily-limit"`
	UserDailyLimit    float64 `mapstructure:"user-daily-limit"`
	CallsPerMinute    float64 `mapstructure:"calls-per-minute"`
	Burst             int     `mapstructure:"burst"`
	EstimatedTokens   int     `mapstructure:"estimated-tokens"`
	FastPricePer1K    float64 `mapstructure:"fast-price-per-1k"`
	PremiumPricePer1K float64 `mapstructure:"premium-price-per-1k"`
	LedgerPath        string  `mapstructure:"ledger-path"`
}

func DefaultConfig() Config {
	return Config{
		DailyLimit:        5,
		UserDailyLimit:    0.5,
		CallsPerMinute:    60,
		Burst:             10,
		EstimatedTokens:   3000,
		FastPricePer1K:    0.0015,
		PremiumPricePer1K: 0.03,
	}
}

// Cost converts tokens to USD at the tier's price.
func (c Config) Cost(tier ai.Tier, tokens int) float64 {
	price := c.FastPricePer1K
	if tier == ai.TierPremium {
		price = c.PremiumPricePer1K
	}
	return float64(tokens) / 1000 * price
}

// Limiter is an in-process Manager. Spend resets at UTC midnight. When a
// premium call would exceed a cap but a fast one fits, the call is allowed on
// the fast tier. A non-positive limit disables that cap.
type Limiter struct {
	cfg    Config
	rate   *rate.Limiter
	ledger *Ledger
	logger *zap.Logger
	now    func() time.Time

	mu    sync.Mutex
	day   string
	total float64
	users map[string]float64
}

type Option func(*Limiter)

// WithLedger persists every recorded call.
func WithLedger(l *Ledger) Option {
	return func(lim *Limiter) { lim.ledger = l }
}

func WithClock(now func() time.Time) Option {
	return func(lim *Limiter) { lim.now = now }
}

func WithLogger(l *zap.Logger) Option {
	return func(lim *Limiter) { lim.logger = l }
}

func NewLimiter(cfg Config, opts ...Option) *Limiter {
	lim := &Limiter{
		cfg:    cfg,
		logger: zap.NewNop(),
		now:    time.Now,
		users:  make(map[string]float64),
	}
	for _, opt := range opts {
		opt(lim)
	}

	if cfg.CallsPerMinute > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = 1
		}
		lim.rate = rate.NewLimiter(rate.Limit(cfg.CallsPerMinute/60), burst)
	}

	return lim
}

// Restore loads today's spend from the ledger so that caps hold across
// process restarts.
func (l *Limiter) Restore(ctx context.Context) error {
	if l.ledger == nil {
		return nil
	}

	since := startOfDay(l.now())
	totals, err := l.ledger.Totals(ctx, since)
	if err != nil {
		return fmt.Errorf("restore spend: %w", err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.rollover()
	l.total = 0
	clear(l.users)
	for _, t := range totals {
		l.users[t.Identity] = t.Cost
		l.total += t.Cost
	}

	return nil
}

func (l *Limiter) CanCall(_ context.Context, identity string, tier ai.Tier) (Decision, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.rollover()

	decision := l.fits(identity, tier)
	if decision.Allowed {
		if l.rate != nil && !l.rate.Allow() {
			return Decision{Reason: ReasonRateLimit}, nil
		}
		return decision, nil
	}

	if tier == ai.TierPremium {
		if fallback := l.fits(identity, ai.TierFast); fallback.Allowed {
			if l.rate != nil && !l.rate.Allow() {
				return Decision{Reason: ReasonRateLimit}, nil
			}
			fallback.SuggestedTier = ai.TierFast
			fallback.Reason = decision.Reason
			return fallback, nil
		}
	}

	return decision, nil
}

func (l *Limiter) fits(identity string, tier ai.Tier) Decision {
	estimate := l.cfg.Cost(tier, l.cfg.EstimatedTokens)

	if l.cfg.DailyLimit > 0 && l.total+estimate > l.cfg.DailyLimit {
		return Decision{Reason: ReasonDailyLimit}
	}
	if l.cfg.UserDailyLimit > 0 && l.users[identity]+estimate > l.cfg.UserDailyLimit {
		return Decision{Reason: ReasonUserLimit}
	}

	return Decision{Allowed: true}
}

func (l *Limiter) RecordUsage(ctx context.Context, identity string, tier ai.Tier, tokens int, latency time.Duration) error {
	cost := l.cfg.Cost(tier, tokens)

	l.mu.Lock()
	l.rollover()
	l.total += cost
	l.users[identity] += cost
	l.mu.Unlock()

	if l.ledger == nil {
		return nil
	}

	rec := &UsageRecord{
		Identity:  identity,
		Tier:      string(tier),
		Tokens:    tokens,
		Cost:      cost,
		LatencyMS: latency.Milliseconds(),
		CreatedAt: l.now().UTC(),
	}
	if err := l.ledger.Record(ctx, rec); err != nil {
		return err
	}

	l.logger.Debug("recorded ai usage",
		zap.String("identity", identity),
		zap.String("tier", string(tier)),
		zap.Int("tokens", tokens),
		zap.Float64("cost", cost),
		zap.Duration("latency", latency),
	)

	return nil
}

// Spent returns today's total and per-identity spend.
func (l *Limiter) Spent(identity string) (total, user float64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.rollover()
	return l.total, l.users[identity]
}

// rollover resets counters on a new UTC day. Callers hold mu.
func (l *Limiter) rollover() {
	day := l.now().UTC().Format(time.DateOnly)
	if day == l.day {
		return
	}
	l.day = day
	l.total = 0
	clear(l.users)
}

func startOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

var _ Manager = (*Limiter)(nil)
