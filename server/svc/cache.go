package svc

import (
	"sync"

	"github.com/dekarrin/clrviz/internal/parse"
	"github.com/emirpasic/gods/maps/linkedhashmap"
)

// DefaultCacheSize is the number of built tables a Service keeps in memory
// when no other size is given.
const DefaultCacheSize = 64

// tableCache holds the most recently used tables by grammar key. Tables are
// immutable once built, so a cached value is handed out to any number of
// callers at once.
type tableCache struct {
	mtx     sync.Mutex
	size    int
	entries *linkedhashmap.Map
}

func newTableCache(size int) *tableCache {
	if size < 1 {
		size = DefaultCacheSize
	}
	return &tableCache{
		size:    size,
		entries: linkedhashmap.New(),
	}
}

func (tc *tableCache) get(key string) (*parse.Tables, bool) {
	tc.mtx.Lock()
	defer tc.mtx.Unlock()

	v, ok := tc.entries.Get(key)
	if !ok {
		return nil, false
	}

	// move to most recent
	tc.entries.Remove(key)
	tc.entries.Put(key, v)

	return v.(*parse.Tables), true
}

func (tc *tableCache) put(key string, t *parse.Tables) {
	tc.mtx.Lock()
	defer tc.mtx.Unlock()

	tc.entries.Remove(key)
	tc.entries.Put(key, t)

	for tc.entries.Size() > tc.size {
		it := tc.entries.Iterator()
		if !it.First() {
			break
		}
		tc.entries.Remove(it.Key())
	}
}

func (tc *tableCache) remove(key string) {
	tc.mtx.Lock()
	defer tc.mtx.Unlock()

	tc.entries.Remove(key)
}

func (tc *tableCache) len() int {
	tc.mtx.Lock()
	defer tc.mtx.Unlock()

	return tc.entries.Size()
}
