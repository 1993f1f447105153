package cluster

import "sync"

// DecisionCache memoizes "same person" verdicts keyed by normalized name.
// It lives for one sync run and is reset when the next run begins, so a
// user is never asked about the same name twice within a run.
type DecisionCache struct {
	mu       sync.RWMutex
	verdicts map[string]bool
}

// NewDecisionCache creates an empty decision cache.
func NewDecisionCache() *DecisionCache {
	return &DecisionCache{
		verdicts: make(map[string]bool),
	}
}

// Get returns the cached verdict for a normalized name, if any.
func (c *DecisionCache) Get(name string) (verdict, ok bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	verdict, ok = c.verdicts[name]
	return verdict, ok
}

// Set records a verdict for a normalized name.
func (c *DecisionCache) Set(name string, verdict bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.verdicts[name] = verdict
}

// Reset clears all cached verdicts.
func (c *DecisionCache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.verdicts = make(map[string]bool)
}

// Len returns the number of cached verdicts.
func (c *DecisionCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.verdicts)
}
