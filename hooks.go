package contactmirror

import (
	"sync"

	"github.com/agentstation/contactmirror/pkg/syncer"
)

// SyncCompletedHook is called after a sync run finishes writing.
type SyncCompletedHook func(result *syncer.Result)

// hooks manages event callbacks for sync runs
type hooks struct {
	mu              sync.RWMutex
	onSyncCompleted []SyncCompletedHook
}

// newHooks creates a new hooks instance
func newHooks() *hooks {
	return &hooks{}
}

// OnSyncCompleted registers a callback for finished runs
func (h *hooks) OnSyncCompleted(fn SyncCompletedHook) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onSyncCompleted = append(h.onSyncCompleted, fn)
}

// triggerSyncCompleted invokes every registered completion hook
func (h *hooks) triggerSyncCompleted(result *syncer.Result) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, fn := range h.onSyncCompleted {
		fn(result)
	}
}
