package cache

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/soko/backend/internal/application/trust"
)

// InMemoryScoreCache is a process-local score cache for single-instance
// deployments and tests. Entries expire lazily on read.
type InMemoryScoreCache struct {
	mu      sync.RWMutex
	entries map[uuid.UUID]scoreEntry
	ttl     time.Duration
}

type scoreEntry struct {
	score     int
	expiresAt time.Time
}

// NewInMemoryScoreCache creates an in-memory score cache
func NewInMemoryScoreCache(ttl time.Duration) *InMemoryScoreCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &InMemoryScoreCache{
		entries: make(map[uuid.UUID]scoreEntry),
		ttl:     ttl,
	}
}

// GetScore returns the cached score for a shop, with a miss flag
func (c *InMemoryScoreCache) GetScore(_ context.Context, shopID uuid.UUID) (int, bool, error) {
	c.mu.RLock()
	entry, ok := c.entries[shopID]
	c.mu.RUnlock()

	if !ok {
		return 0, false, nil
	}
	if time.Now().After(entry.expiresAt) {
		c.mu.Lock()
		delete(c.entries, shopID)
		c.mu.Unlock()
		return 0, false, nil
	}
	return entry.score, true, nil
}

// SetScore caches a shop's score with the configured TTL
func (c *InMemoryScoreCache) SetScore(_ context.Context, shopID uuid.UUID, score int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[shopID] = scoreEntry{
		score:     score,
		expiresAt: time.Now().Add(c.ttl),
	}
	return nil
}

var _ trust.ScoreCache = (*InMemoryScoreCache)(nil)
