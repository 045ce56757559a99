package cache

import (
	"sync"
	"time"
)

// Views is an in-process cache of rendered logical views (event list, event
// detail, user profile). Mutating operations invalidate the views they make
// stale; invalidation is fire-and-forget and never affects correctness of the
// underlying data.
type Views struct {
	mu      sync.RWMutex
	entries map[string]entry
}

type entry struct {
	data     []byte
	storedAt time.Time
}

// View key helpers
const (
	EventListView      = "events:list"
	AdminDashboardView = "admin:dashboard"
)

// EventView is the cache key for one event's detail view
func EventView(eventID string) string {
	return "events:" + eventID
}

// ProfileView is the cache key for one user's profile view
func ProfileView(userID string) string {
	return "profile:" + userID
}

// New creates an empty view cache
func New() *Views {
	return &Views{
		entries: make(map[string]entry),
	}
}

// Get returns the cached bytes for a view, if present
func (v *Views) Get(key string) ([]byte, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	e, ok := v.entries[key]
	return e.data, ok
}

// Set stores rendered bytes for a view
func (v *Views) Set(key string, data []byte) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.entries[key] = entry{data: data, storedAt: time.Now()}
}

// Invalidate drops the given views
func (v *Views) Invalidate(keys ...string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	for _, key := range keys {
		delete(v.entries, key)
	}
}

// Len reports how many views are currently cached
func (v *Views) Len() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return len(v.entries)
}
