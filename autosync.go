package contactmirror

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/agentstation/contactmirror/pkg/errors"
	"github.com/agentstation/contactmirror/pkg/logging"
)

// Compile-time interface check to ensure proper implementation.
var _ AutoSyncer = (*mirror)(nil)

// AutoSyncer provides controls for periodic background syncs.
type AutoSyncer interface {
	// AutoSyncOn begins periodic syncs if configured
	AutoSyncOn() error

	// AutoSyncOff stops periodic syncs
	AutoSyncOff() error
}

// autoSyncTimeout bounds each background sync run.
const autoSyncTimeout = 5 * time.Minute

// AutoSyncOn begins periodic syncs if configured. Background runs use the
// configured approval function; with the default, duplicates merge without
// review.
func (m *mirror) AutoSyncOn() error {
	if m.config.autoSyncInterval <= 0 {
		return &errors.ValidationError{
			Field:   "autoSyncInterval",
			Value:   m.config.autoSyncInterval,
			Message: "sync interval must be positive",
		}
	}

	// Stop any existing auto-sync to prevent resource leaks
	if err := m.AutoSyncOff(); err != nil {
		return err
	}

	// Recreate stopCh since it was closed in AutoSyncOff
	m.stopCh = make(chan struct{})

	m.syncTicker = time.NewTicker(m.config.autoSyncInterval)

	ctx, cancel := context.WithCancel(context.Background())
	m.syncCancel = cancel

	go func(parentCtx context.Context) {
		for {
			select {
			case <-m.syncTicker.C:
				syncCtx, syncCancel := context.WithTimeout(parentCtx, autoSyncTimeout)
				_, err := m.Sync(syncCtx)
				syncCancel()

				if err != nil {
					if stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded) {
						return
					}
					// A run already in progress just means we fired early;
					// anything else is worth logging. Either way the ticker
					// keeps going.
					if !errors.IsRunActive(err) {
						logging.Error().Err(err).Msg("Auto-sync failed")
					}
				}
			case <-parentCtx.Done():
				return
			case <-m.stopCh:
				return
			}
		}
	}(ctx)

	return nil
}

// AutoSyncOff stops periodic syncs.
func (m *mirror) AutoSyncOff() error {
	if m.syncTicker != nil {
		m.syncTicker.Stop()
		m.syncTicker = nil
	}
	if m.syncCancel != nil {
		m.syncCancel()
		m.syncCancel = nil
	}
	select {
	case <-m.stopCh:
		// Already closed
	default:
		close(m.stopCh)
	}
	return nil
}
