package cache

import (
	"container/list"
	"strings"
	"sync"
	"time"
)

type localEntry struct {
	key     string
	value   []byte
	expires time.Time
}

// localTier is a bounded in-process cache with per-entry TTL and
// least-recently-used eviction once the entry limit is reached.
type localTier struct {
	mu      sync.Mutex
	maxSize int
	entries map[string]*list.Element
	order   *list.List // front = most recently used
	now     func() time.Time
}

func newLocalTier(maxSize int) *localTier {
	return &localTier{
		maxSize: maxSize,
		entries: make(map[string]*list.Element),
		order:   list.New(),
		now:     time.Now,
	}
}

func (t *localTier) get(key string) ([]byte, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	elem, ok := t.entries[key]
	if !ok {
		return nil, false
	}

	entry := elem.Value.(*localEntry)
	if t.now().After(entry.expires) {
		t.order.Remove(elem)
		delete(t.entries, key)
		return nil, false
	}

	t.order.MoveToFront(elem)
	return entry.value, true
}

func (t *localTier) set(key string, value []byte, ttl time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()

	expires := t.now().Add(ttl)
	if elem, ok := t.entries[key]; ok {
		entry := elem.Value.(*localEntry)
		entry.value = value
		entry.expires = expires
		t.order.MoveToFront(elem)
		return
	}

	t.entries[key] = t.order.PushFront(&localEntry{key: key, value: value, expires: expires})

	for t.order.Len() > t.maxSize {
		oldest := t.order.Back()
		if oldest == nil {
			break
		}
		t.order.Remove(oldest)
		delete(t.entries, oldest.Value.(*localEntry).key)
	}
}

func (t *localTier) clearPrefix(prefix string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for key, elem := range t.entries {
		if strings.HasPrefix(key, prefix) {
			t.order.Remove(elem)
			delete(t.entries, key)
		}
	}
}

func (t *localTier) len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.order.Len()
}
