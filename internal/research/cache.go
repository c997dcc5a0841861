package research

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/Vitor-VarelAI/Polymarket/internal/domain"
)

// CacheTTL bounds how long cached evidence may substitute for a fresh
// lookup. Nearby cycles reuse it; anything older is researched again.
const CacheTTL = 24 * time.Hour

// Cache stores research results keyed by query identity.
type Cache interface {
	Get(ctx context.Context, key string) ([]domain.ResearchResult, bool)
	Set(ctx context.Context, key string, results []domain.ResearchResult)
}

// NewCache returns a Redis-backed cache when redisURL points at a
// reachable server, and an in-process cache otherwise. Cache loss only
// costs repeated lookups, so a missing Redis never blocks research.
func NewCache(ctx context.Context, redisURL string) Cache {
	if redisURL == "" {
		return NewMemoryCache(CacheTTL)
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		log.Warn().Err(err).Msg("Invalid Redis URL, caching research in memory")
		return NewMemoryCache(CacheTTL)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		log.Warn().Err(err).Msg("Redis unreachable, caching research in memory")
		return NewMemoryCache(CacheTTL)
	}

	log.Info().Str("addr", opts.Addr).Msg("Research cache using Redis")
	return &RedisCache{client: client, ttl: CacheTTL}
}

// RedisCache persists cached evidence across process restarts.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// Get implements Cache.
func (c *RedisCache) Get(ctx context.Context, key string) ([]domain.ResearchResult, bool) {
	raw, err := c.client.Get(ctx, cacheKey(key)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Warn().Err(err).Msg("Research cache read failed")
		}
		return nil, false
	}

	var results []domain.ResearchResult
	if err := json.Unmarshal(raw, &results); err != nil {
		return nil, false
	}
	return results, true
}

// Set implements Cache.
func (c *RedisCache) Set(ctx context.Context, key string, results []domain.ResearchResult) {
	raw, err := json.Marshal(results)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, cacheKey(key), raw, c.ttl).Err(); err != nil {
		log.Warn().Err(err).Msg("Research cache write failed")
	}
}

func cacheKey(key string) string {
	sum := sha256.Sum256([]byte(key))
	return "research:" + hex.EncodeToString(sum[:])
}

// MemoryCache is the in-process fallback. Entries expire lazily on
// read.
type MemoryCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]memoryCacheEntry
	nowFn   func() time.Time
}

type memoryCacheEntry struct {
	results   []domain.ResearchResult
	expiresAt time.Time
}

// NewMemoryCache creates an in-process cache with the given TTL.
func NewMemoryCache(ttl time.Duration) *MemoryCache {
	return &MemoryCache{
		ttl:     ttl,
		entries: make(map[string]memoryCacheEntry),
		nowFn:   time.Now,
	}
}

// Get implements Cache.
func (c *MemoryCache) Get(_ context.Context, key string) ([]domain.ResearchResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if c.nowFn().After(entry.expiresAt) {
		delete(c.entries, key)
		return nil, false
	}
	return entry.results, true
}

// Set implements Cache.
func (c *MemoryCache) Set(_ context.Context, key string, results []domain.ResearchResult) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.nowFn()
	if len(c.entries) >= 1024 {
		for k, e := range c.entries {
			if now.After(e.expiresAt) {
				delete(c.entries, k)
			}
		}
	}
	c.entries[key] = memoryCacheEntry{results: results, expiresAt: now.Add(c.ttl)}
}
