package api

import (
	"encoding/json"
	"sync"
)

// Cache holds the last successful response for each operation + arguments
// tuple.
//
// The merge policy is deliberately the simplest one: a new response
// replaces the stored entry outright. There is no reconciliation by entity
// id, so two list queries with different arguments are stored
// independently and never see each other's results. Whichever response
// completes last wins.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]json.RawMessage
}

// NewCache creates an empty cache
func NewCache() *Cache {
	return &Cache{entries: map[string]json.RawMessage{}}
}

// Get returns the stored response data for key
func (c *Cache) Get(key string) (json.RawMessage, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	data, ok := c.entries[key]
	return data, ok
}

// Replace stores data for key, discarding whatever was there
func (c *Cache) Replace(key string, data json.RawMessage) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = append(json.RawMessage(nil), data...)
}

// Len returns the number of cached tuples
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Reset drops every entry
func (c *Cache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = map[string]json.RawMessage{}
}
