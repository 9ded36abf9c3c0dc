package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/redis/go-redis/v9"
)

const defaultCacheTTL = time.Minute

var errCacheMiss = errors.New("cache miss")

// cacheEntry is the JSON document stored in redis for one page
type cacheEntry struct {
	Incidents  []Incident `json:"incidents"`
	TotalCount int        `json:"total_count"`
	HasTotal   bool       `json:"has_total"`
	CachedAt   time.Time  `json:"cached_at"`
}

// Purger is implemented by clients that can drop cached pages, so a refresh
// reaches the API instead of replaying the cache
type Purger interface {
	Purge(ctx context.Context) error
}

// CachedClient wraps an IncidentClient and keeps successful pages in redis for a short TTL.
// Failures are never cached, and a redis failure falls through to the wrapped client.
type CachedClient struct {
	next      IncidentClient
	redis     *redis.Client
	namespace string
	ttl       time.Duration
}

// NewCachedClient returns a caching IncidentClient. The namespace (usually the API base URL)
// keeps pages from different APIs apart in a shared redis.
func NewCachedClient(next IncidentClient, redisClient *redis.Client, namespace string, ttl time.Duration) *CachedClient {
	if next == nil || redisClient == nil {
		panic("api.NewCachedClient(): client and redis client cannot be nil")
	}
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &CachedClient{
		next:      next,
		redis:     redisClient,
		namespace: namespace,
		ttl:       ttl,
	}
}

func (c *CachedClient) key(page int) string {
	return fmt.Sprintf("heroes:%s:incidents/available:page=%d", c.namespace, page)
}

// purgePattern matches every key of this namespace and nothing else
func (c *CachedClient) purgePattern() string {
	return "heroes:" + globEscaper.Replace(c.namespace) + ":*"
}

// globEscaper quotes the characters redis MATCH patterns treat specially
var globEscaper = strings.NewReplacer(
	`\`, `\\`,
	`*`, `\*`,
	`?`, `\?`,
	`[`, `\[`,
	`]`, `\]`,
)

func (c *CachedClient) ListAvailableIncidentsWithContext(ctx context.Context, page int) (*Page, error) {
	key := c.key(page)

	p, err := c.get(ctx, key, page)
	if err == nil {
		cacheHits.Inc()
		log.Debug("api.CachedClient", "cache", "hit", "page", page)
		return p, nil
	}
	if errors.Is(err, errCacheMiss) {
		cacheMisses.Inc()
	} else {
		log.Warn("api.CachedClient", "cache get failed", err, "page", page)
	}

	p, err = c.next.ListAvailableIncidentsWithContext(ctx, page)
	if err != nil {
		return nil, err
	}

	if err := c.set(ctx, key, p); err != nil {
		log.Warn("api.CachedClient", "cache set failed", err, "page", page)
	}

	return p, nil
}

func (c *CachedClient) get(ctx context.Context, key string, page int) (*Page, error) {
	data, err := c.redis.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, errCacheMiss
		}
		cacheErrors.WithLabelValues("get").Inc()
		return nil, fmt.Errorf("redis get: %w", err)
	}

	var e cacheEntry
	if err := json.Unmarshal(data, &e); err != nil {
		cacheErrors.WithLabelValues("get").Inc()
		return nil, fmt.Errorf("invalid cache entry `%v`: %w", key, err)
	}

	return &Page{
		Number:     page,
		Incidents:  e.Incidents,
		TotalCount: e.TotalCount,
		HasTotal:   e.HasTotal,
	}, nil
}

func (c *CachedClient) set(ctx context.Context, key string, p *Page) error {
	data, err := json.Marshal(cacheEntry{
		Incidents:  p.Incidents,
		TotalCount: p.TotalCount,
		HasTotal:   p.HasTotal,
		CachedAt:   time.Now().UTC(),
	})
	if err != nil {
		cacheErrors.WithLabelValues("set").Inc()
		return fmt.Errorf("marshal cache entry: %w", err)
	}

	if err := c.redis.Set(ctx, key, data, c.ttl).Err(); err != nil {
		cacheErrors.WithLabelValues("set").Inc()
		return fmt.Errorf("redis set: %w", err)
	}

	return nil
}

// Purge removes every cached page in this client's namespace
func (c *CachedClient) Purge(ctx context.Context) error {
	var keys []string

	iter := c.redis.Scan(ctx, 0, c.purgePattern(), 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		cacheErrors.WithLabelValues("purge").Inc()
		return fmt.Errorf("api.Purge(): redis scan: %w", err)
	}

	if len(keys) == 0 {
		return nil
	}

	if err := c.redis.Del(ctx, keys...).Err(); err != nil {
		cacheErrors.WithLabelValues("purge").Inc()
		return fmt.Errorf("api.Purge(): redis del: %w", err)
	}

	log.Debug("api.Purge", "purged", len(keys))
	return nil
}
