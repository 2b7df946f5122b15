package cache

import (
	"crypto/sha256"
	"fmt"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/AndreyKorzunin/projectassist/internal/backend"
	"github.com/AndreyKorzunin/projectassist/internal/session"
)

// CachedResponse represents a cached query response
type CachedResponse struct {
	Response  backend.QueryResponse
	Timestamp time.Time
}

// GenerateCacheKey generates a cache key from the parts of a query
func GenerateCacheKey(sessionID string, taskType session.TaskType, query string) string {
	h := sha256.New()
	h.Write([]byte(sessionID))
	h.Write([]byte{0})
	h.Write([]byte(taskType))
	h.Write([]byte{0})
	h.Write([]byte(strings.ToLower(strings.TrimSpace(query))))
	return fmt.Sprintf("%x", h.Sum(nil))
}

// ResponseCache keeps query responses for a limited time. A zero TTL
// disables caching.
type ResponseCache struct {
	items *gocache.Cache
	ttl   time.Duration
}

// NewResponseCache creates a cache whose entries expire after ttl.
func NewResponseCache(ttl time.Duration) *ResponseCache {
	cleanup := ttl * 2
	if cleanup <= 0 {
		cleanup = time.Minute
	}
	return &ResponseCache{
		items: gocache.New(ttl, cleanup),
		ttl:   ttl,
	}
}

// Get returns a cached response.
func (c *ResponseCache) Get(key string) (CachedResponse, bool) {
	if c == nil || c.ttl <= 0 {
		return CachedResponse{}, false
	}
	if val, ok := c.items.Get(key); ok {
		return val.(CachedResponse), true
	}
	return CachedResponse{}, false
}

// Store stores a response.
func (c *ResponseCache) Store(key string, resp backend.QueryResponse) {
	if c == nil || c.ttl <= 0 {
		return
	}
	c.items.Set(key, CachedResponse{Response: resp, Timestamp: time.Now()}, gocache.DefaultExpiration)
}

// Clear drops every entry, used when the session changes.
func (c *ResponseCache) Clear() {
	if c == nil {
		return
	}
	c.items.Flush()
}

// Len returns the number of unexpired entries.
func (c *ResponseCache) Len() int {
	if c == nil {
		return 0
	}
	return c.items.ItemCount()
}
