package cache_test

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/geodash/pkg/cache"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}

func TestLRU_Basic(t *testing.T) {
	t.Run("put and get", func(t *testing.T) {
		c := cache.New[string, int](3)

		c.Put("a", 1)
		c.Put("b", 2)

		val, ok := c.Get("a")
		assert.True(t, ok)
		assert.Equal(t, 1, val)
		assert.Equal(t, 2, c.Len())
	})

	t.Run("get non-existent", func(t *testing.T) {
		c := cache.New[string, int](3)

		val, ok := c.Get("missing")
		assert.False(t, ok)
		assert.Equal(t, 0, val)
	})

	t.Run("update existing", func(t *testing.T) {
		c := cache.New[string, int](3)

		c.Put("a", 1)
		old, existed := c.Put("a", 2)

		assert.True(t, existed)
		assert.Equal(t, 1, old)
		val, _ := c.Get("a")
		assert.Equal(t, 2, val)
		assert.Equal(t, 1, c.Len())
	})

	t.Run("non-positive capacity panics", func(t *testing.T) {
		assert.Panics(t, func() { cache.New[string, int](0) })
	})
}

func TestLRU_Eviction(t *testing.T) {
	var evicted []string
	c := cache.New[string, int](2, cache.WithEvictCallback(func(k string, _ int) {
		evicted = append(evicted, k)
	}))

	c.Put("a", 1)
	c.Put("b", 2)
	c.Get("a")
	c.Put("c", 3)

	_, ok := c.Get("b")
	assert.False(t, ok, "least recently used entry is evicted")
	_, ok = c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, []string{"b"}, evicted)
}

func TestLRU_TTL(t *testing.T) {
	clock := &fakeClock{now: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	newCache := func() *cache.LRU[string, int] {
		return cache.New[string, int](4,
			cache.WithTTL[string, int](time.Minute),
			cache.WithClock[string, int](clock.Now),
		)
	}

	t.Run("entry expires after ttl", func(t *testing.T) {
		c := newCache()
		c.Put("a", 1)

		clock.Advance(59 * time.Second)
		_, ok := c.Get("a")
		assert.True(t, ok)

		clock.Advance(time.Second)
		_, ok = c.Get("a")
		assert.False(t, ok)
		assert.Zero(t, c.Len(), "expired entry is dropped on read")
	})

	t.Run("put refreshes expiry", func(t *testing.T) {
		c := newCache()
		c.Put("a", 1)
		clock.Advance(50 * time.Second)
		c.Put("a", 2)
		clock.Advance(50 * time.Second)

		val, ok := c.Get("a")
		assert.True(t, ok)
		assert.Equal(t, 2, val)
	})

	t.Run("overwriting expired entry reports no previous value", func(t *testing.T) {
		c := newCache()
		c.Put("a", 1)
		clock.Advance(2 * time.Minute)

		_, existed := c.Put("a", 2)
		assert.False(t, existed)
	})

	t.Run("remove expired entry reports missing", func(t *testing.T) {
		c := newCache()
		c.Put("a", 1)
		clock.Advance(2 * time.Minute)

		_, ok := c.Remove("a")
		assert.False(t, ok)
		assert.Zero(t, c.Len())
	})
}

func TestLRU_Clear(t *testing.T) {
	count := 0
	c := cache.New[int, int](5, cache.WithEvictCallback(func(int, int) { count++ }))
	for i := range 3 {
		c.Put(i, i)
	}

	c.Clear()

	assert.Zero(t, c.Len())
	assert.Equal(t, 3, count)
}

func TestLRU_Concurrent(t *testing.T) {
	c := cache.New[int, int](100)
	var wg sync.WaitGroup

	for g := range 8 {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := range 200 {
				c.Put(g*1000+i, i)
				c.Get(g*1000 + i)
			}
		}(g)
	}
	wg.Wait()

	assert.LessOrEqual(t, c.Len(), 100)
}
