// Package syncer orchestrates a sync run across address-book accounts:
// fetch records from every selected account in parallel, detect duplicate
// clusters, optionally hold them for approval, merge each approved cluster
// into a golden record, and fan the final record set back out to every
// account.
//
// A Syncer runs one sync at a time. BeginSync refuses to start while a run
// is active; when the clustering stage finds duplicates the run parks in
// StateAwaitingApproval until Approve or Cancel is called.
package syncer

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/agentstation/contactmirror/pkg/accounts"
	"github.com/agentstation/contactmirror/pkg/cluster"
	"github.com/agentstation/contactmirror/pkg/contacts"
	"github.com/agentstation/contactmirror/pkg/errors"
	"github.com/agentstation/contactmirror/pkg/logging"
	"github.com/agentstation/contactmirror/pkg/merge"
)

// Syncer coordinates sync runs against an account store.
type Syncer struct {
	store accounts.Store
	opts  *options

	mu      sync.Mutex
	state   State
	pending *pendingRun
	last    *Result
}

// pendingRun carries the working state of the run in progress.
type pendingRun struct {
	accounts []contacts.AccountID
	fetched  map[contacts.AccountID][]contacts.ContactRecord
	clusters [][]contacts.ContactRecord
	safe     []contacts.ContactRecord
	result   *Result
}

// New creates a Syncer backed by the given account store.
func New(store accounts.Store, opts ...Option) (*Syncer, error) {
	if store == nil {
		return nil, errors.NewValidationError("store", nil, "cannot be nil")
	}
	options, err := newOptions(opts...)
	if err != nil {
		return nil, err
	}

	// A strategy that memoizes verdicts owns the cache; adopt it so the
	// per-run reset clears the cache actually consulted.
	if memoized, ok := options.strategy.(interface{ DecisionCache() *cluster.DecisionCache }); ok {
		if cache := memoized.DecisionCache(); cache != nil {
			options.decisions = cache
		}
	}

	return &Syncer{
		store: store,
		opts:  options,
		state: StateIdle,
	}, nil
}

// State returns the current run state.
func (s *Syncer) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// LastResult returns the result of the most recently finished run, or nil
// if no run has finished yet.
func (s *Syncer) LastResult() *Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

// Progress is a point-in-time snapshot of the run in progress.
type Progress struct {
	State           State
	Accounts        int
	RecordsFetched  int
	PendingClusters int
}

// Progress returns a snapshot of the current run.
func (s *Syncer) Progress() Progress {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := Progress{State: s.state}
	if s.pending != nil {
		p.Accounts = len(s.pending.accounts)
		p.RecordsFetched = s.pending.result.Metadata.Stats.RecordsFetched
		p.PendingClusters = len(s.pending.clusters)
	}
	return p
}

// BeginSync starts a sync run over the given accounts.
//
// If clustering finds no duplicates the run proceeds straight through merge
// and save, and the returned result is final. If duplicates are found the
// run parks in StateAwaitingApproval and the returned result is provisional;
// call PendingClusters to review, then Approve or Cancel.
//
// BeginSync returns ErrRunActive if a run is already in progress.
func (s *Syncer) BeginSync(ctx context.Context, accountIDs []contacts.AccountID) (*Result, error) {
	if err := validateAccounts(accountIDs); err != nil {
		return nil, err
	}
	if err := s.authorize(ctx); err != nil {
		return nil, err
	}

	s.mu.Lock()
	if s.state.Active() {
		s.mu.Unlock()
		return nil, errors.ErrRunActive
	}
	run := &pendingRun{
		accounts: append([]contacts.AccountID(nil), accountIDs...),
		result:   NewResult(),
	}
	run.result.Metadata.Accounts = run.accounts
	run.result.Metadata.Strategy = s.opts.strategy.Type()
	run.result.Metadata.SaveMode = s.opts.saveMode
	run.result.Metadata.DryRun = s.opts.dryRun
	s.state = StateFetching
	s.pending = run
	s.mu.Unlock()

	ctx = logging.WithRunID(ctx, uuid.NewString())
	log := logging.FromContext(ctx)
	log.Info().
		Int("accounts", len(run.accounts)).
		Str("strategy", s.opts.strategy.Type().String()).
		Msg("sync run starting")

	// Stale verdicts from a previous run must not leak into this one.
	s.opts.decisions.Reset()

	if err := s.fetch(ctx, run); err != nil {
		return nil, s.fail(ctx, run, err)
	}

	s.setState(StateAnalyzing)
	all := run.flatten()
	clusters, safe, err := s.opts.strategy.Cluster(ctx, all)
	if err != nil {
		return nil, s.fail(ctx, run, err)
	}
	s.mu.Lock()
	run.clusters = clusters
	run.safe = safe
	run.result.Metadata.Stats.ClustersFound = len(clusters)
	run.result.Metadata.Stats.SafeRecords = len(safe)
	if len(clusters) == 0 {
		s.state = StateMerging
		s.mu.Unlock()
		return s.complete(ctx, run)
	}
	s.state = StateAwaitingApproval
	s.mu.Unlock()
	log.Info().Int("clusters", len(clusters)).Msg("duplicate clusters awaiting approval")
	return run.result, nil
}

// PendingClusters returns a copy of the duplicate clusters awaiting
// approval, or nil if the run is not parked.
func (s *Syncer) PendingClusters() [][]contacts.ContactRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateAwaitingApproval || s.pending == nil {
		return nil
	}
	out := make([][]contacts.ContactRecord, len(s.pending.clusters))
	for i, c := range s.pending.clusters {
		out[i] = append([]contacts.ContactRecord(nil), c...)
	}
	return out
}

// Approve resumes a parked run, merging every pending cluster and saving
// the final record set.
func (s *Syncer) Approve(ctx context.Context) (*Result, error) {
	s.mu.Lock()
	if s.state != StateAwaitingApproval || s.pending == nil {
		state := s.state
		s.mu.Unlock()
		return nil, errors.NewValidationError("state", state.String(), "no clusters awaiting approval")
	}
	run := s.pending
	s.state = StateMerging
	s.mu.Unlock()

	return s.complete(ctx, run)
}

// Cancel discards a parked run and returns the syncer to idle. Nothing is
// written to any account. Canceling when no run is parked is a no-op unless
// the run is mid-I/O, in which case ErrRunActive is returned.
func (s *Syncer) Cancel() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateAwaitingApproval {
		if s.state.Active() {
			return errors.ErrRunActive
		}
		return nil
	}

	run := s.pending
	run.result.Warnings = append(run.result.Warnings, "run canceled before approval")
	run.result.Finalize()
	s.last = run.result
	s.pending = nil
	s.state = StateIdle
	return nil
}

// fetch pulls every selected account's records in parallel. Any account
// failure aborts the whole run.
func (s *Syncer) fetch(ctx context.Context, run *pendingRun) error {
	ctx = logging.WithStage(ctx, StateFetching.String())
	fetched := make([][]contacts.ContactRecord, len(run.accounts))

	g, gctx := errgroup.WithContext(ctx)
	for i, id := range run.accounts {
		i, id := i, id
		g.Go(func() error {
			actx := logging.WithAccount(gctx, id.String())
			records, err := s.store.FetchRecords(actx, id, accounts.AllFields())
			if err != nil {
				return errors.WrapFetch(id.String(), err)
			}
			logging.FromContext(actx).Debug().Int("records", len(records)).Msg("Fetched account records")
			fetched[i] = records
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	total := 0
	byAccount := make(map[contacts.AccountID][]contacts.ContactRecord, len(run.accounts))
	for i, id := range run.accounts {
		byAccount[id] = fetched[i]
		total += len(fetched[i])
	}

	// Progress reads the fetched count and cluster list under the mutex, so
	// writes to them take it too.
	s.mu.Lock()
	run.fetched = byAccount
	run.result.Metadata.Stats.RecordsFetched = total
	s.mu.Unlock()

	logging.FromContext(ctx).Info().
		Int("records", total).
		Int("accounts", len(run.accounts)).
		Msg("fetch complete")
	return nil
}

// complete runs the merge and save stages and finishes the run.
func (s *Syncer) complete(ctx context.Context, run *pendingRun) (*Result, error) {
	result := run.result
	for _, c := range run.clusters {
		result.Golden = append(result.Golden, merge.Golden(c, s.opts.mergeOpts...))
	}
	result.Safe = run.safe
	result.Metadata.Stats.GoldenRecords = len(result.Golden)

	if err := ctx.Err(); err != nil {
		return nil, s.fail(ctx, run, err)
	}

	s.setState(StateSaving)
	if s.opts.dryRun {
		result.Warnings = append(result.Warnings, "dry run: save stage skipped")
	} else if err := s.save(ctx, run, result); err != nil {
		return nil, s.fail(ctx, run, err)
	}

	result.Finalize()
	s.mu.Lock()
	s.state = StateIdle
	s.last = result
	s.pending = nil
	s.mu.Unlock()

	logging.FromContext(ctx).Info().
		Int("golden", result.Metadata.Stats.GoldenRecords).
		Int("inserted", result.Metadata.Stats.RecordsInserted).
		Dur("duration", result.Metadata.Duration).
		Msg("sync run complete")
	return result, nil
}

// save fans the final record set out to every account in parallel. In
// replace mode each account's fetched snapshot is deleted first so repeated
// runs do not accumulate duplicates.
func (s *Syncer) save(ctx context.Context, run *pendingRun, result *Result) error {
	ctx = logging.WithStage(ctx, StateSaving.String())
	final := result.FinalRecords()
	inserted := make([]int, len(run.accounts))
	deleted := make([]int, len(run.accounts))

	g, gctx := errgroup.WithContext(ctx)
	for i, id := range run.accounts {
		i, id := i, id
		g.Go(func() error {
			actx := logging.WithAccount(gctx, id.String())
			if s.opts.saveMode == SaveModeReplace {
				for _, rec := range run.fetched[id] {
					if err := s.store.DeleteRecord(actx, id, rec.ID); err != nil {
						return errors.WrapSave(id.String(), err)
					}
					deleted[i]++
				}
			}
			for _, gold := range final {
				if err := s.store.InsertRecord(actx, id, gold.Record(id)); err != nil {
					return errors.WrapSave(id.String(), err)
				}
				inserted[i]++
			}
			logging.FromContext(actx).Debug().
				Int("inserted", inserted[i]).
				Int("deleted", deleted[i]).
				Msg("Saved account records")
			return nil
		})
	}
	err := g.Wait()

	// Counts are reported even on failure so a partial mirror is visible.
	for i := range run.accounts {
		result.Metadata.Stats.RecordsInserted += inserted[i]
		result.Metadata.Stats.RecordsDeleted += deleted[i]
	}
	return err
}

// fail finishes the run in StateFailed and records the error on the result.
// The next BeginSync clears the failure.
func (s *Syncer) fail(ctx context.Context, run *pendingRun, err error) error {
	run.result.Errors = append(run.result.Errors, err)
	run.result.Finalize()

	s.mu.Lock()
	s.state = StateFailed
	s.last = run.result
	s.pending = nil
	s.mu.Unlock()

	logging.FromContext(ctx).Error().Err(err).Msg("sync run failed")
	return err
}

func (s *Syncer) setState(next State) {
	s.mu.Lock()
	s.state = next
	s.mu.Unlock()
}

// authorize checks the access gate, asking for access once if the status
// has never been determined.
func (s *Syncer) authorize(ctx context.Context) error {
	status := s.opts.authorizer.Status(ctx)
	switch status {
	case accounts.AuthAuthorized:
		return nil
	case accounts.AuthNotDetermined:
		granted, err := s.opts.authorizer.RequestAccess(ctx)
		if err != nil {
			return err
		}
		if granted {
			return nil
		}
		status = accounts.AuthDenied
	}
	return errors.NewPermissionError(status.String(), "sync requires address book access")
}

// validateAccounts rejects selections that cannot produce a meaningful run.
func validateAccounts(ids []contacts.AccountID) error {
	if len(ids) < 2 {
		return errors.NewValidationError("accounts", ids, "at least two accounts are required")
	}
	seen := make(map[contacts.AccountID]struct{}, len(ids))
	for _, id := range ids {
		if id == "" {
			return errors.NewValidationError("accounts", ids, "account ID cannot be empty")
		}
		if _, dup := seen[id]; dup {
			return errors.NewValidationError("accounts", ids, fmt.Sprintf("account %s selected more than once", id))
		}
		seen[id] = struct{}{}
	}
	return nil
}

// flatten concatenates the fetched snapshots in account selection order.
func (r *pendingRun) flatten() []contacts.ContactRecord {
	total := 0
	for _, id := range r.accounts {
		total += len(r.fetched[id])
	}
	all := make([]contacts.ContactRecord, 0, total)
	for _, id := range r.accounts {
		all = append(all, r.fetched[id]...)
	}
	return all
}
