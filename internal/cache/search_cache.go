package cache

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/nforb26-art/tradeanalyser/internal/logger"
	"github.com/nforb26-art/tradeanalyser/internal/models"
)

// Searcher is the lookup being cached.
type Searcher interface {
	Search(ctx context.Context, query string) ([]models.SearchResult, error)
}

type cachedResults struct {
	results   []models.SearchResult
	timestamp time.Time
}

// SearchCache keeps successful search responses in memory for a TTL.
// Queries are keyed case-insensitively; failures are never stored.
type SearchCache struct {
	next Searcher
	ttl  time.Duration
	log  *logger.Logger
	now  func() time.Time

	mu      sync.RWMutex
	entries map[string]cachedResults
}

func NewSearchCache(next Searcher, ttl time.Duration, log *logger.Logger) *SearchCache {
	if log == nil {
		log = logger.Nop()
	}
	return &SearchCache{
		next:    next,
		ttl:     ttl,
		log:     log,
		now:     time.Now,
		entries: make(map[string]cachedResults),
	}
}

func (c *SearchCache) Search(ctx context.Context, query string) ([]models.SearchResult, error) {
	key := strings.ToLower(strings.TrimSpace(query))

	if results, ok := c.get(key); ok {
		c.log.Debug("search cache hit", logger.String("query", key))
		return results, nil
	}

	results, err := c.next.Search(ctx, query)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.entries[key] = cachedResults{results: results, timestamp: c.now()}
	c.mu.Unlock()
	return results, nil
}

func (c *SearchCache) get(key string) ([]models.SearchResult, bool) {
	c.mu.RLock()
	cached, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if c.now().Sub(cached.timestamp) <= c.ttl {
		return cached.results, true
	}

	c.mu.Lock()
	if cur, ok := c.entries[key]; ok && cur.timestamp.Equal(cached.timestamp) {
		delete(c.entries, key)
	}
	c.mu.Unlock()
	return nil, false
}

// Len reports how many entries are held, expired ones included.
func (c *SearchCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
