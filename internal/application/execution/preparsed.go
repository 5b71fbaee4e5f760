package execution

import (
	"sync"

	"github.com/doeshing/shcmd/internal/parsing"
)

// PreparsedCache keeps processes whose first phase ran during a preview, keyed by command ID.
// Execute clears it after every attempt so resolved values never outlive one execution.
type PreparsedCache struct {
	mu      sync.Mutex
	entries map[string]*parsing.Process
}

// NewPreparsedCache creates an empty cache.
func NewPreparsedCache() *PreparsedCache {
	return &PreparsedCache{entries: make(map[string]*parsing.Process)}
}

// Put stores p for commandID, replacing any earlier entry.
func (c *PreparsedCache) Put(commandID string, p *parsing.Process) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[commandID] = p
}

// Take removes and returns the entry for commandID.
func (c *PreparsedCache) Take(commandID string) (*parsing.Process, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.entries[commandID]
	delete(c.entries, commandID)
	return p, ok
}

// Clear drops every entry.
func (c *PreparsedCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	clear(c.entries)
}

// Len returns the number of cached entries.
func (c *PreparsedCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
