package syncer

import (
	"github.com/agentstation/contactmirror/pkg/accounts"
	"github.com/agentstation/contactmirror/pkg/cluster"
	"github.com/agentstation/contactmirror/pkg/errors"
	"github.com/agentstation/contactmirror/pkg/merge"
)

// options configures a syncer.
type options struct {
	strategy   cluster.Strategy
	authorizer accounts.Authorizer
	saveMode   SaveMode
	decisions  *cluster.DecisionCache
	dryRun     bool
	mergeOpts  []merge.Option
}

func defaultOptions() *options {
	return &options{
		strategy:   cluster.NewEmailGraphStrategy(),
		authorizer: accounts.OpenAuthorizer{},
		saveMode:   SaveModeReplace,
		decisions:  cluster.NewDecisionCache(),
	}
}

// Option is a function that configures a Syncer.
type Option func(*options) error

func (options *options) apply(opts ...Option) (*options, error) {
	for _, opt := range opts {
		if err := opt(options); err != nil {
			return nil, err
		}
	}
	return options, nil
}

// newOptions returns syncer options with default values.
func newOptions(opts ...Option) (*options, error) {
	return defaultOptions().apply(opts...)
}

// WithStrategy sets the duplicate detection strategy.
func WithStrategy(strategy cluster.Strategy) Option {
	return func(o *options) error {
		if strategy == nil {
			return &errors.ValidationError{
				Field:   "strategy",
				Message: "cannot be nil",
			}
		}
		o.strategy = strategy
		return nil
	}
}

// WithAuthorizer sets the access gate consulted before each run.
func WithAuthorizer(authorizer accounts.Authorizer) Option {
	return func(o *options) error {
		if authorizer == nil {
			return &errors.ValidationError{
				Field:   "authorizer",
				Message: "cannot be nil",
			}
		}
		o.authorizer = authorizer
		return nil
	}
}

// WithSaveMode sets how the final record set is written.
func WithSaveMode(mode SaveMode) Option {
	return func(o *options) error {
		if mode != SaveModeReplace && mode != SaveModeAppend {
			return &errors.ValidationError{
				Field:   "saveMode",
				Message: "must be replace or append",
			}
		}
		o.saveMode = mode
		return nil
	}
}

// WithDecisionCache sets the decision cache shared with the strategy.
// The cache is reset at the start of every run.
func WithDecisionCache(cache *cluster.DecisionCache) Option {
	return func(o *options) error {
		if cache == nil {
			return &errors.ValidationError{
				Field:   "decisions",
				Message: "cannot be nil",
			}
		}
		o.decisions = cache
		return nil
	}
}

// WithDryRun skips the save stage. Fetch, analysis, and merge still run
// and the result reports what would have been written.
func WithDryRun(enabled bool) Option {
	return func(o *options) error {
		o.dryRun = enabled
		return nil
	}
}

// WithMergeOptions sets options passed through to golden record merging.
func WithMergeOptions(opts ...merge.Option) Option {
	return func(o *options) error {
		o.mergeOpts = append(o.mergeOpts, opts...)
		return nil
	}
}
