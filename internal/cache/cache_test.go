package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AndreyKorzunin/projectassist/internal/backend"
	"github.com/AndreyKorzunin/projectassist/internal/session"
)

func TestGenerateCacheKey(t *testing.T) {
	a := GenerateCacheKey("s1", session.TaskAnswer, "What is this?")
	assert.Len(t, a, 64)
	assert.Equal(t, a, GenerateCacheKey("s1", session.TaskAnswer, "  what is this?"))
	assert.NotEqual(t, a, GenerateCacheKey("s2", session.TaskAnswer, "What is this?"))
	assert.NotEqual(t, a, GenerateCacheKey("s1", session.TaskGrammarCheck, "What is this?"))
	// Field boundaries are part of the key.
	assert.NotEqual(t, GenerateCacheKey("ab", session.TaskAnswer, "c"), GenerateCacheKey("a", session.TaskAnswer, "bc"))
}

func TestResponseCache_StoreAndGet(t *testing.T) {
	c := NewResponseCache(time.Minute)
	key := GenerateCacheKey("s1", session.TaskAnswer, "q")

	_, ok := c.Get(key)
	assert.False(t, ok)

	c.Store(key, backend.QueryResponse{TaskType: "answer"})
	got, ok := c.Get(key)
	require.True(t, ok)
	assert.Equal(t, "answer", got.Response.TaskType)
	assert.False(t, got.Timestamp.IsZero())
	assert.Equal(t, 1, c.Len())

	c.Clear()
	assert.Equal(t, 0, c.Len())
}

func TestResponseCache_Expires(t *testing.T) {
	c := NewResponseCache(10 * time.Millisecond)
	c.Store("k", backend.QueryResponse{})
	time.Sleep(30 * time.Millisecond)

	_, ok := c.Get("k")
	assert.False(t, ok)
}

func TestResponseCache_Disabled(t *testing.T) {
	c := NewResponseCache(0)
	c.Store("k", backend.QueryResponse{})
	_, ok := c.Get("k")
	assert.False(t, ok)

	var nilCache *ResponseCache
	nilCache.Store("k", backend.QueryResponse{})
	_, ok = nilCache.Get("k")
	assert.False(t, ok)
	assert.Equal(t, 0, nilCache.Len())
}
