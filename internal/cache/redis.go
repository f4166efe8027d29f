package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/spigell/jobmatch/internal/domain"
)

const defaultRedisPrefix = "jobmatch:matches:"

// RedisConfig holds connection settings for the redis backend.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
}

// DefaultRedisConfig returns a RedisConfig pointing at a local server.
func DefaultRedisConfig() RedisConfig {
	return RedisConfig{
		Addr:   "localhost:6379",
		Prefix: defaultRedisPrefix,
	}
}

// NewRedisClient creates a client from cfg.
func NewRedisClient(cfg RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

// Redis is a Store shared between processes. Entries expire server-side after
// the TTL; the stored timestamp is checked again on read.
type Redis struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
	now    func() time.Time
}

func NewRedis(client redis.UniversalClient, prefix string, ttl time.Duration) *Redis {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if prefix == "" {
		prefix = defaultRedisPrefix
	}
	return &Redis{client: client, prefix: prefix, ttl: ttl, now: time.Now}
}

func (r *Redis) Get(ctx context.Context, key string) ([]domain.Match, bool, error) {
	if key == "" {
		return nil, false, errors.New("key cannot be empty")
	}

	raw, err := r.client.Get(ctx, r.prefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("redis get: %w", err)
	}

	var entry Entry
	if err := json.Unmarshal(raw, &entry); err != nil {
		return nil, false, fmt.Errorf("decode cache entry: %w", err)
	}

	if !entry.Live(r.now(), r.ttl) {
		return nil, false, nil
	}

	return entry.Matches, true, nil
}

func (r *Redis) Put(ctx context.Context, key string, matches []domain.Match) error {
	if key == "" {
		return errors.New("key cannot be empty")
	}

	raw, err := json.Marshal(Entry{Matches: matches, StoredAt: r.now().UTC()})
	if err != nil {
		return fmt.Errorf("encode cache entry: %w", err)
	}

	if err := r.client.Set(ctx, r.prefix+key, raw, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}

	return nil
}

// Health checks the connection.
func (r *Redis) Health(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
