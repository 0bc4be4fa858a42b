package catalog

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// Scope names the hierarchy level a cached total belongs to.
type Scope string

const (
	ScopeContent  Scope = "content"
	ScopeSkill    Scope = "skill"
	ScopeLevel    Scope = "level"
	ScopeLanguage Scope = "language"
)

// TotalsCache is a write-through cache for derived totals backed by
// Redis/Dragonfly. The catalog works fine without one: a nil *TotalsCache is
// a no-op on writes and a miss on reads.
type TotalsCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewTotalsCache(client *redis.Client) *TotalsCache {
	return &TotalsCache{client: client, ttl: 12 * time.Hour}
}

// Connect dials the cache URL and verifies the connection.
func Connect(ctx context.Context, url string) (*TotalsCache, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid cache URL: %w", err)
	}
	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("pinging cache: %w", err)
	}
	return NewTotalsCache(client), nil
}

func (c *TotalsCache) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

// Put stores a freshly computed total. Cache failures are ignored; the store
// row stays authoritative.
func (c *TotalsCache) Put(ctx context.Context, scope Scope, id string, total int) {
	if c == nil || c.client == nil {
		return
	}
	c.client.Set(ctx, totalKey(scope, id), total, c.ttl)
}

// Get returns a cached total, reporting whether one was present.
func (c *TotalsCache) Get(ctx context.Context, scope Scope, id string) (int, bool) {
	if c == nil || c.client == nil {
		return 0, false
	}
	raw, err := c.client.Get(ctx, totalKey(scope, id)).Result()
	if err != nil {
		return 0, false
	}
	total, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return total, true
}

func totalKey(scope Scope, id string) string {
	return fmt.Sprintf("catalog:total:%s:%s", scope, id)
}
