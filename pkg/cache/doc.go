// Package cache provides a generic, thread-safe LRU cache with optional
// per-entry expiry.
//
//	c := cache.New[string, Place](256,
//		cache.WithTTL[string, Place](time.Hour),
//	)
//	c.Put("st. louis", place)
//	if p, ok := c.Get("st. louis"); ok {
//		// use p
//	}
//
// Get, Put and Remove are O(1). When the cache is full the least recently
// used entry is evicted. Expiry is lazy: an expired entry is dropped the next
// time it is read, or when capacity pressure pushes it out, so Len may count
// entries that are already stale.
//
// An eviction callback registered with WithEvictCallback runs for every
// removed entry while the cache lock is held; it must not call back into the
// cache.
package cache
