package ingest

import (
	"fmt"
	"os"
	"sync"

	"looksee/internal/domain"
)

// defaultCacheSize bounds the ingestion result cache. Eviction is
// oldest-first; entries also turn over naturally because local-file keys
// include mtime and size, so a rewritten file misses the cache instead of
// returning a stale result.
const defaultCacheSize = 128

type sourceCache struct {
	mu      sync.Mutex
	max     int
	entries map[string]bool
	order   []string
}

func newSourceCache(max int) *sourceCache {
	return &sourceCache{max: max, entries: make(map[string]bool, max)}
}

// key derives the cache key for a source. For local files the key carries
// mtime and size, so two different files written to the same reused temp
// path do not collide. Unreadable or remote locations fall back to the bare
// argument pair.
func (c *sourceCache) key(src domain.Source) string {
	k := src.Location + "\x00" + src.DeclaredName
	if fi, err := os.Stat(src.Location); err == nil {
		k += fmt.Sprintf("\x00%d\x00%d", fi.ModTime().UnixNano(), fi.Size())
	}
	return k
}

func (c *sourceCache) get(key string) (ok, hit bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	ok, hit = c.entries[key]
	return ok, hit
}

func (c *sourceCache) put(key string, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.entries[key]; !exists {
		if len(c.order) >= c.max {
			oldest := c.order[0]
			c.order = c.order[1:]
			delete(c.entries, oldest)
		}
		c.order = append(c.order, key)
	}
	c.entries[key] = ok
}

func (c *sourceCache) reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]bool, c.max)
	c.order = nil
}
