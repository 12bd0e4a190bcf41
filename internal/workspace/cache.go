package workspace

import (
	"sync"

	"kitenav/internal/scanner"
)

// DeclCache holds the per-document Declaration lists the host owns. A cache
// miss is not an error; the engine degrades to best-effort textual scanning.
type DeclCache struct {
	mu    sync.RWMutex
	decls map[string][]*scanner.Declaration
}

func NewDeclCache() *DeclCache {
	return &DeclCache{
		decls: make(map[string][]*scanner.Declaration),
	}
}

// Get returns the cached declarations for a document URI.
func (c *DeclCache) Get(uri string) ([]*scanner.Declaration, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	decls, ok := c.decls[uri]
	return decls, ok
}

// Put replaces the cached declarations for a document URI.
func (c *DeclCache) Put(uri string, decls []*scanner.Declaration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.decls[uri] = decls
}

// Invalidate drops one document's cache entry.
func (c *DeclCache) Invalidate(uri string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.decls, uri)
}

// Stats reports cache occupancy for diagnostics.
func (c *DeclCache) Stats() map[string]interface{} {
	c.mu.RLock()
	defer c.mu.RUnlock()

	total := 0
	for _, decls := range c.decls {
		total += len(decls)
	}
	return map[string]interface{}{
		"documents":    len(c.decls),
		"declarations": total,
	}
}
