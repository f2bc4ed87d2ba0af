package suggest

import (
	"sync"

	"github.com/charmbracelet/log"
)

// hitCache is a small LRU of candidate sets per normalized query. Entries
// hold only the lexical part of the score; popularity and category are
// applied on every call so a cached set never serves stale weights.
type hitCache struct {
	sets        map[string][]hit
	accessTime  map[string]int64
	accessCount int64
	maxSets     int
	hits        int64
	misses      int64
	mu          sync.Mutex
}

func newHitCache(maxSets int) *hitCache {
	if maxSets <= 0 {
		return nil
	}
	return &hitCache{
		sets:       make(map[string][]hit, maxSets),
		accessTime: make(map[string]int64, maxSets),
		maxSets:    maxSets,
	}
}

func (hc *hitCache) get(query string) ([]hit, bool) {
	if hc == nil {
		return nil, false
	}
	hc.mu.Lock()
	defer hc.mu.Unlock()

	set, ok := hc.sets[query]
	if !ok {
		hc.misses++
		return nil, false
	}
	hc.hits++
	hc.accessTime[query] = hc.nextAccessTime()
	return set, true
}

func (hc *hitCache) put(query string, set []hit) {
	if hc == nil {
		return
	}
	hc.mu.Lock()
	defer hc.mu.Unlock()

	if _, exists := hc.sets[query]; !exists && len(hc.sets) >= hc.maxSets {
		hc.evictLRU()
	}
	hc.sets[query] = set
	hc.accessTime[query] = hc.nextAccessTime()
}

func (hc *hitCache) stats() map[string]int {
	if hc == nil {
		return map[string]int{"cacheSets": 0, "maxCacheSets": 0}
	}
	hc.mu.Lock()
	defer hc.mu.Unlock()
	return map[string]int{
		"cacheSets":    len(hc.sets),
		"maxCacheSets": hc.maxSets,
		"cacheHits":    int(hc.hits),
		"cacheMisses":  int(hc.misses),
	}
}

func (hc *hitCache) nextAccessTime() int64 {
	hc.accessCount++
	return hc.accessCount
}

func (hc *hitCache) evictLRU() {
	var oldest string
	found := false
	var oldestTime int64
	for q, t := range hc.accessTime {
		if !found || t < oldestTime {
			oldestTime = t
			oldest = q
			found = true
		}
	}
	if found {
		delete(hc.sets, oldest)
		delete(hc.accessTime, oldest)
		log.Debugf("Evicted query %q from search cache", oldest)
	}
}
