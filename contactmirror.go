// Package contactmirror mirrors contact records across address-book
// accounts. It fetches every account's records, detects duplicate contacts
// across accounts, merges each duplicate cluster into a single golden
// record, and writes the unified record set back to every account.
//
// The Mirror interface is the library entry point; the lower-level pieces
// live in pkg/syncer, pkg/cluster, pkg/merge, and pkg/accounts.
package contactmirror

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/agentstation/contactmirror/pkg/accounts"
	"github.com/agentstation/contactmirror/pkg/accounts/files"
	"github.com/agentstation/contactmirror/pkg/accounts/memory"
	"github.com/agentstation/contactmirror/pkg/contacts"
	"github.com/agentstation/contactmirror/pkg/syncer"
)

// Mirror manages contact syncing across accounts with automatic runs and
// event hooks.
type Mirror interface {
	// Accounts lists the accounts available in the store
	Accounts(ctx context.Context) ([]accounts.Account, error)

	// Sync runs one sync over the given accounts, or over every account
	// in the store when none are given
	Sync(ctx context.Context, accountIDs ...contacts.AccountID) (*syncer.Result, error)

	// LastResult returns the result of the most recently finished run
	LastResult() *syncer.Result

	// AutoSyncOn begins periodic syncs if configured
	AutoSyncOn() error

	// AutoSyncOff stops periodic syncs
	AutoSyncOff() error

	// OnSyncCompleted registers a callback for finished runs
	OnSyncCompleted(SyncCompletedHook)
}

// ApprovalFunc decides whether the pending duplicate clusters of a run
// should be merged. Returning false cancels the run without writing.
type ApprovalFunc func(ctx context.Context, clusters [][]contacts.ContactRecord) (bool, error)

// mirror is the internal implementation of the Mirror interface
type mirror struct {
	mu     sync.Mutex
	config *config
	store  accounts.Store
	engine *syncer.Syncer

	// Event hooks
	hooks *hooks

	syncTicker *time.Ticker
	syncCancel context.CancelFunc
	stopCh     chan struct{}
}

// New creates a new Mirror instance with the given options
func New(opts ...Option) (Mirror, error) {
	m := &mirror{
		config: defaultConfig(),
		stopCh: make(chan struct{}),
		hooks:  newHooks(),
	}

	for _, opt := range opts {
		if err := opt(m.config); err != nil {
			return nil, fmt.Errorf("applying options: %w", err)
		}
	}

	// Use the provided store, or open one from the configured directory,
	// falling back to an empty in-memory store.
	switch {
	case m.config.store != nil:
		m.store = m.config.store
	case m.config.storeDir != "":
		store, err := files.New(m.config.storeDir)
		if err != nil {
			return nil, fmt.Errorf("opening account store: %w", err)
		}
		m.store = store
	default:
		store, err := memory.New()
		if err != nil {
			return nil, fmt.Errorf("creating account store: %w", err)
		}
		m.store = store
	}

	engine, err := syncer.New(m.store, m.config.syncOptions...)
	if err != nil {
		return nil, err
	}
	m.engine = engine

	return m, nil
}

// Accounts lists the accounts available in the store.
func (m *mirror) Accounts(ctx context.Context) ([]accounts.Account, error) {
	return m.store.ListAccounts(ctx)
}

// LastResult returns the result of the most recently finished run.
func (m *mirror) LastResult() *syncer.Result {
	return m.engine.LastResult()
}

// OnSyncCompleted registers a callback for finished runs.
func (m *mirror) OnSyncCompleted(fn SyncCompletedHook) {
	m.hooks.OnSyncCompleted(fn)
}

// Sync runs one sync over the given accounts. When the clustering stage
// finds duplicates the configured approval function decides whether to
// merge them; the default approves everything.
func (m *mirror) Sync(ctx context.Context, accountIDs ...contacts.AccountID) (*syncer.Result, error) {
	if len(accountIDs) == 0 {
		list, err := m.store.ListAccounts(ctx)
		if err != nil {
			return nil, err
		}
		for _, account := range list {
			accountIDs = append(accountIDs, account.ID)
		}
	}

	result, err := m.engine.BeginSync(ctx, accountIDs)
	if err != nil {
		return nil, err
	}

	if m.engine.State() == syncer.StateAwaitingApproval {
		approved, err := m.config.approve(ctx, m.engine.PendingClusters())
		if err != nil {
			_ = m.engine.Cancel()
			return nil, err
		}
		if !approved {
			if err := m.engine.Cancel(); err != nil {
				return nil, err
			}
			return m.engine.LastResult(), nil
		}
		result, err = m.engine.Approve(ctx)
		if err != nil {
			return nil, err
		}
	}

	m.hooks.triggerSyncCompleted(result)
	return result, nil
}
