package cache

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/marketsync/backend/internal/application/dashboard"
)

// InMemorySummaryCache is a process-local summary cache for single-instance
// deployments and tests.
type InMemorySummaryCache struct {
	mu      sync.RWMutex
	entries map[uuid.UUID]summaryEntry
}

type summaryEntry struct {
	summary   *dashboard.Summary
	expiresAt time.Time
}

// NewInMemorySummaryCache creates an empty in-memory summary cache
func NewInMemorySummaryCache() *InMemorySummaryCache {
	return &InMemorySummaryCache{
		entries: make(map[uuid.UUID]summaryEntry),
	}
}

// Get returns the cached summary for an org
func (c *InMemorySummaryCache) Get(_ context.Context, orgID uuid.UUID) (*dashboard.Summary, bool) {
	c.mu.RLock()
	entry, ok := c.entries[orgID]
	c.mu.RUnlock()

	if !ok {
		return nil, false
	}
	if time.Now().After(entry.expiresAt) {
		c.mu.Lock()
		delete(c.entries, orgID)
		c.mu.Unlock()
		return nil, false
	}
	return entry.summary, true
}

// Set stores the summary for an org with a TTL
func (c *InMemorySummaryCache) Set(_ context.Context, orgID uuid.UUID, summary *dashboard.Summary, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[orgID] = summaryEntry{
		summary:   summary,
		expiresAt: time.Now().Add(ttl),
	}
}

// Invalidate drops the cached summary for an org
func (c *InMemorySummaryCache) Invalidate(_ context.Context, orgID uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, orgID)
}

// Ensure InMemorySummaryCache implements SummaryCache
var _ dashboard.SummaryCache = (*InMemorySummaryCache)(nil)
