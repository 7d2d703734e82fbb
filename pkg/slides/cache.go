package slides

import (
	"container/list"
	"sync"
	"time"
)

// TemplateCache keeps prepared templates keyed by path, evicting the least recently used
// entry when full and dropping entries older than the TTL.
type TemplateCache struct {
	mu      sync.Mutex
	entries map[string]*cacheEntry
	lru     *list.List
	maxSize int
	ttl     time.Duration
	now     func() time.Time
}

type cacheEntry struct {
	key      string
	template *Template
	expiry   time.Time
	element  *list.Element
}

// NewTemplateCache creates a cache holding at most maxSize templates. A maxSize of 0
// disables caching; a ttl of 0 means entries never expire.
func NewTemplateCache(maxSize int, ttl time.Duration) *TemplateCache {
	return &TemplateCache{
		entries: make(map[string]*cacheEntry),
		lru:     list.New(),
		maxSize: maxSize,
		ttl:     ttl,
		now:     time.Now,
	}
}

// Get retrieves a template, refreshing its LRU position.
func (tc *TemplateCache) Get(key string) (*Template, bool) {
	tc.mu.Lock()
	defer tc.mu.Unlock()

	entry, ok := tc.entries[key]
	if !ok {
		return nil, false
	}
	if tc.ttl > 0 && tc.now().After(entry.expiry) {
		tc.removeLocked(entry)
		return nil, false
	}
	tc.lru.MoveToFront(entry.element)
	return entry.template, true
}

// Set adds or replaces a template.
func (tc *TemplateCache) Set(key string, tmpl *Template) {
	if tc.maxSize <= 0 {
		return
	}

	tc.mu.Lock()
	defer tc.mu.Unlock()

	var expiry time.Time
	if tc.ttl > 0 {
		expiry = tc.now().Add(tc.ttl)
	}

	if existing, ok := tc.entries[key]; ok {
		existing.template = tmpl
		existing.expiry = expiry
		tc.lru.MoveToFront(existing.element)
		return
	}

	if tc.lru.Len() >= tc.maxSize {
		if oldest := tc.lru.Back(); oldest != nil {
			tc.removeLocked(oldest.Value.(*cacheEntry))
		}
	}

	entry := &cacheEntry{key: key, template: tmpl, expiry: expiry}
	entry.element = tc.lru.PushFront(entry)
	tc.entries[key] = entry
}

// Remove drops a template from the cache.
func (tc *TemplateCache) Remove(key string) {
	tc.mu.Lock()
	defer tc.mu.Unlock()

	if entry, ok := tc.entries[key]; ok {
		tc.removeLocked(entry)
	}
}

// Clear removes all templates from the cache
func (tc *TemplateCache) Clear() {
	tc.mu.Lock()
	defer tc.mu.Unlock()

	tc.entries = make(map[string]*cacheEntry)
	tc.lru = list.New()
}

// Size returns the current number of cached templates
func (tc *TemplateCache) Size() int {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	return len(tc.entries)
}

func (tc *TemplateCache) removeLocked(entry *cacheEntry) {
	delete(tc.entries, entry.key)
	tc.lru.Remove(entry.element)
}
