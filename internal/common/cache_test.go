package common

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func setupTestEnvironment(t *testing.T) (*Cache, func()) {
	t.Helper()

	cache := NewCache(0, 0)

	cleanup := func() {
		cache.Flush()
	}

	return cache, cleanup
}

func TestCache_Set(t *testing.T) {
	cache, cleanup := setupTestEnvironment(t)
	defer cleanup()

	cache.Set("key", "value")

	if _, ok := cache.Get("key"); !ok {
		t.Error("expected key to be set")
	}
}

func TestCache_Delete(t *testing.T) {
	cache, cleanup := setupTestEnvironment(t)
	defer cleanup()

	id := uuid.New()
	cache.Set(CacheKeyBlog(id), "blog")
	cache.Delete(CacheKeyBlog(id))

	_, ok := cache.Get(CacheKeyBlog(id))
	assert.False(t, ok)
}

func TestCache_Flush(t *testing.T) {
	cache, cleanup := setupTestEnvironment(t)
	defer cleanup()

	cache.Set("key", "value")
	cache.Flush()

	if _, ok := cache.Get("key"); ok {
		t.Error("expected cache to be flushed")
	}
}

func TestCacheKeyBlog(t *testing.T) {
	id := uuid.MustParse("6f1c1b4e-3c1a-4c53-9d0e-3f7f0a2b9c11")
	assert.Equal(t, "blog:6f1c1b4e-3c1a-4c53-9d0e-3f7f0a2b9c11", CacheKeyBlog(id))
}
