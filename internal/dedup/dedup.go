// Package dedup suppresses repeated emissions of the same kernel event.
//
// Deduplication is content-based: the key is a hash of the normalized log
// line (sub-second timestamp digits already stripped), taken before JSON
// parsing. Two textually identical lines are the same event regardless of
// which agent pod emitted them. The cache is a fixed-capacity LRU, so memory
// stays bounded for the process lifetime at the cost of possibly re-emitting
// an event once its hash has been evicted.
package dedup

import (
	"hash/fnv"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultCapacity bounds the number of remembered line hashes.
const DefaultCapacity = 8192

// Cache remembers hashes of previously seen log lines.
type Cache struct {
	seen *lru.Cache[uint64, struct{}]
}

// NewCache creates a Cache holding at most capacity line hashes. A capacity
// below 1 falls back to DefaultCapacity.
func NewCache(capacity int) *Cache {
	if capacity < 1 {
		capacity = DefaultCapacity
	}
	// lru.New only errors on a non-positive size.
	seen, _ := lru.New[uint64, struct{}](capacity)
	return &Cache{seen: seen}
}

// Seen checks whether the line was processed before and marks it as seen.
// The first caller for a given line content gets false; subsequent callers
// get true until the entry is evicted.
func (c *Cache) Seen(line string) bool {
	key := hashLine(line)
	if _, ok := c.seen.Get(key); ok {
		return true
	}
	c.seen.Add(key, struct{}{})
	return false
}

// Len returns the number of remembered line hashes.
func (c *Cache) Len() int {
	return c.seen.Len()
}

func hashLine(line string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(line))
	return h.Sum64()
}
