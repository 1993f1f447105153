package contactmirror

import (
	"context"
	"time"

	"github.com/agentstation/contactmirror/pkg/accounts"
	"github.com/agentstation/contactmirror/pkg/contacts"
	"github.com/agentstation/contactmirror/pkg/errors"
	"github.com/agentstation/contactmirror/pkg/syncer"
)

// config holds Mirror configuration assembled from options.
type config struct {
	store            accounts.Store
	storeDir         string
	approve          ApprovalFunc
	syncOptions      []syncer.Option
	autoSyncInterval time.Duration
}

func defaultConfig() *config {
	return &config{
		approve: func(context.Context, [][]contacts.ContactRecord) (bool, error) {
			return true, nil
		},
	}
}

// Option is a function that configures a Mirror.
type Option func(*config) error

// WithStore sets the account store backing the mirror.
func WithStore(store accounts.Store) Option {
	return func(c *config) error {
		if store == nil {
			return &errors.ValidationError{
				Field:   "store",
				Message: "cannot be nil",
			}
		}
		c.store = store
		return nil
	}
}

// WithStoreDir opens a file-backed account store under dir.
func WithStoreDir(dir string) Option {
	return func(c *config) error {
		if dir == "" {
			return &errors.ValidationError{
				Field:   "storeDir",
				Message: "cannot be empty",
			}
		}
		c.storeDir = dir
		return nil
	}
}

// WithApproval sets the function that reviews pending duplicate clusters
// before they are merged. The default approves everything.
func WithApproval(fn ApprovalFunc) Option {
	return func(c *config) error {
		if fn == nil {
			return &errors.ValidationError{
				Field:   "approve",
				Message: "cannot be nil",
			}
		}
		c.approve = fn
		return nil
	}
}

// WithSyncOptions passes options through to the underlying syncer.
func WithSyncOptions(opts ...syncer.Option) Option {
	return func(c *config) error {
		c.syncOptions = append(c.syncOptions, opts...)
		return nil
	}
}

// WithAutoSyncInterval sets how often AutoSyncOn runs a sync.
func WithAutoSyncInterval(interval time.Duration) Option {
	return func(c *config) error {
		if interval <= 0 {
			return &errors.ValidationError{
				Field:   "autoSyncInterval",
				Value:   interval,
				Message: "sync interval must be positive",
			}
		}
		c.autoSyncInterval = interval
		return nil
	}
}
