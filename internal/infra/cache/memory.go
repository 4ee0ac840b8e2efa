package cache

import (
	"context"
	"sync"
	"time"
)

type counterEntry struct {
	count      int
	expiryTime time.Time
}

// MemoryLoginCounter is the in-process fallback used when no Redis URL is configured.
// Counts are per process and lost on restart.
type MemoryLoginCounter struct {
	entries     map[string]counterEntry
	mutex       sync.Mutex
	maxAttempts int
	window      time.Duration
	now         func() time.Time
}

func NewMemoryLoginCounter(maxAttempts int, window time.Duration) *MemoryLoginCounter {
	return &MemoryLoginCounter{
		entries:     make(map[string]counterEntry),
		maxAttempts: maxAttempts,
		window:      window,
		now:         time.Now,
	}
}

func (c *MemoryLoginCounter) Allowed(_ context.Context, key string) (bool, error) {
	if c.maxAttempts <= 0 {
		return true, nil
	}
	c.mutex.Lock()
	defer c.mutex.Unlock()

	entry, found := c.entries[key]
	if !found || !c.now().Before(entry.expiryTime) {
		return true, nil
	}
	return entry.count < c.maxAttempts, nil
}

func (c *MemoryLoginCounter) RecordFailure(_ context.Context, key string) error {
	if c.maxAttempts <= 0 {
		return nil
	}
	c.mutex.Lock()
	defer c.mutex.Unlock()

	now := c.now()
	entry, found := c.entries[key]
	if !found || !now.Before(entry.expiryTime) {
		entry = counterEntry{expiryTime: now.Add(c.window)}
	}
	entry.count++
	c.entries[key] = entry
	return nil
}

func (c *MemoryLoginCounter) Reset(_ context.Context, key string) error {
	c.mutex.Lock()
	delete(c.entries, key)
	c.mutex.Unlock()
	return nil
}

// Clear removes expired entries.
func (c *MemoryLoginCounter) Clear() {
	c.mutex.Lock()
	now := c.now()
	for key, entry := range c.entries {
		if !now.Before(entry.expiryTime) {
			delete(c.entries, key)
		}
	}
	c.mutex.Unlock()
}
