package syncer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/contactmirror/pkg/accounts"
	"github.com/agentstation/contactmirror/pkg/accounts/memory"
	"github.com/agentstation/contactmirror/pkg/cluster"
	"github.com/agentstation/contactmirror/pkg/contacts"
	"github.com/agentstation/contactmirror/pkg/errors"
)

func record(id string, account contacts.AccountID, given, family string, emails ...string) contacts.ContactRecord {
	r := contacts.ContactRecord{
		ID:         id,
		AccountID:  account,
		GivenName:  given,
		FamilyName: family,
	}
	for _, e := range emails {
		r.Emails = append(r.Emails, contacts.LabeledValue{Label: "home", Value: e})
	}
	return r
}

// twoAccountStore builds a store where "Jo Lee" exists in both accounts with
// a shared email, plus one unrelated record per account.
func twoAccountStore(t *testing.T) *memory.Store {
	t.Helper()
	store, err := memory.New(
		memory.WithAccount(accounts.Account{ID: "icloud", DisplayName: "iCloud"},
			record("a1", "icloud", "Jo", "Lee", "jo@example.com"),
			record("a2", "icloud", "Pat", "Doe", "pat@example.com"),
		),
		memory.WithAccount(accounts.Account{ID: "google", DisplayName: "Google"},
			record("b1", "google", "Jo", "Lee", "JO@example.com"),
			record("b2", "google", "Sam", "Roe", "sam@example.com"),
		),
	)
	require.NoError(t, err)
	return store
}

// disjointStore builds a store with no duplicates across accounts.
func disjointStore(t *testing.T) *memory.Store {
	t.Helper()
	store, err := memory.New(
		memory.WithAccount(accounts.Account{ID: "icloud", DisplayName: "iCloud"},
			record("a1", "icloud", "Pat", "Doe"),
		),
		memory.WithAccount(accounts.Account{ID: "google", DisplayName: "Google"},
			record("b1", "google", "Sam", "Roe"),
			record("b2", "google", "Kim", "Park"),
		),
	)
	require.NoError(t, err)
	return store
}

func TestBeginSyncValidation(t *testing.T) {
	s, err := New(disjointStore(t))
	require.NoError(t, err)

	tests := []struct {
		name string
		ids  []contacts.AccountID
	}{
		{name: "no accounts", ids: nil},
		{name: "one account", ids: []contacts.AccountID{"icloud"}},
		{name: "empty account ID", ids: []contacts.AccountID{"icloud", ""}},
		{name: "duplicate account", ids: []contacts.AccountID{"icloud", "icloud"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.BeginSync(context.Background(), tt.ids)
			assert.True(t, errors.IsValidationError(err))
			assert.Equal(t, StateIdle, s.State())
		})
	}
}

type deniedAuthorizer struct{}

func (deniedAuthorizer) Status(context.Context) accounts.AuthStatus {
	return accounts.AuthDenied
}

func (deniedAuthorizer) RequestAccess(context.Context) (bool, error) {
	return false, nil
}

func TestBeginSyncPermissionDenied(t *testing.T) {
	s, err := New(disjointStore(t), WithAuthorizer(deniedAuthorizer{}))
	require.NoError(t, err)

	_, err = s.BeginSync(context.Background(), []contacts.AccountID{"icloud", "google"})
	assert.True(t, errors.IsPermissionDenied(err))
	assert.Equal(t, StateIdle, s.State())
}

func TestNoDuplicatesFastPath(t *testing.T) {
	store := disjointStore(t)
	s, err := New(store)
	require.NoError(t, err)

	result, err := s.BeginSync(context.Background(), []contacts.AccountID{"icloud", "google"})
	require.NoError(t, err)
	require.NotNil(t, result)

	// Completed without parking for approval.
	assert.Equal(t, StateIdle, s.State())
	assert.Nil(t, s.PendingClusters())
	assert.True(t, result.IsSuccess())

	stats := result.Metadata.Stats
	assert.Equal(t, 3, stats.RecordsFetched)
	assert.Equal(t, 0, stats.ClustersFound)
	assert.Equal(t, 0, stats.GoldenRecords)
	assert.Equal(t, 3, stats.SafeRecords)

	// Replace mode: every account ends up with the full final set.
	assert.Equal(t, 6, stats.RecordsInserted)
	assert.Equal(t, 3, stats.RecordsDeleted)
	assert.Equal(t, 3, store.Len("icloud"))
	assert.Equal(t, 3, store.Len("google"))
}

func TestDuplicatesParkForApproval(t *testing.T) {
	store := twoAccountStore(t)
	s, err := New(store)
	require.NoError(t, err)

	result, err := s.BeginSync(context.Background(), []contacts.AccountID{"icloud", "google"})
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.Equal(t, StateAwaitingApproval, s.State())
	assert.Equal(t, 1, result.Metadata.Stats.ClustersFound)

	pending := s.PendingClusters()
	require.Len(t, pending, 1)
	require.Len(t, pending[0], 2)
	assert.Equal(t, "Jo", pending[0][0].GivenName)

	// Nothing written while parked.
	assert.Equal(t, 2, store.Len("icloud"))
	assert.Equal(t, 2, store.Len("google"))

	final, err := s.Approve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StateIdle, s.State())
	assert.True(t, final.IsSuccess())
	assert.Equal(t, 1, final.Metadata.Stats.GoldenRecords)
	assert.Equal(t, 2, final.Metadata.Stats.SafeRecords)

	// One golden Jo Lee plus two safe records mirrored everywhere.
	assert.Equal(t, 3, store.Len("icloud"))
	assert.Equal(t, 3, store.Len("google"))
}

func TestCancelDiscardsRun(t *testing.T) {
	store := twoAccountStore(t)
	s, err := New(store)
	require.NoError(t, err)

	_, err = s.BeginSync(context.Background(), []contacts.AccountID{"icloud", "google"})
	require.NoError(t, err)
	require.Equal(t, StateAwaitingApproval, s.State())

	require.NoError(t, s.Cancel())
	assert.Equal(t, StateIdle, s.State())
	assert.Nil(t, s.PendingClusters())

	// Accounts are untouched.
	assert.Equal(t, 2, store.Len("icloud"))
	assert.Equal(t, 2, store.Len("google"))

	last := s.LastResult()
	require.NotNil(t, last)
	assert.NotEmpty(t, last.Warnings)

	// Cancel with nothing parked is a no-op.
	assert.NoError(t, s.Cancel())
}

func TestBeginSyncWhileRunActive(t *testing.T) {
	s, err := New(twoAccountStore(t))
	require.NoError(t, err)

	_, err = s.BeginSync(context.Background(), []contacts.AccountID{"icloud", "google"})
	require.NoError(t, err)
	require.Equal(t, StateAwaitingApproval, s.State())

	_, err = s.BeginSync(context.Background(), []contacts.AccountID{"icloud", "google"})
	assert.True(t, errors.IsRunActive(err))

	// The parked run is still intact.
	assert.Len(t, s.PendingClusters(), 1)
}

func TestApproveWithoutPendingRun(t *testing.T) {
	s, err := New(disjointStore(t))
	require.NoError(t, err)

	_, err = s.Approve(context.Background())
	assert.True(t, errors.IsValidationError(err))
}

type flakyStore struct {
	accounts.Store
	failFetch  contacts.AccountID
	failInsert bool
}

func (f *flakyStore) FetchRecords(ctx context.Context, accountID contacts.AccountID, fields accounts.FieldSet) ([]contacts.ContactRecord, error) {
	if accountID == f.failFetch {
		return nil, errors.ErrAccountUnavailable
	}
	return f.Store.FetchRecords(ctx, accountID, fields)
}

func (f *flakyStore) InsertRecord(ctx context.Context, accountID contacts.AccountID, rec contacts.ContactRecord) error {
	if f.failInsert {
		return errors.New("disk full")
	}
	return f.Store.InsertRecord(ctx, accountID, rec)
}

func TestFetchFailureAbortsRun(t *testing.T) {
	store := &flakyStore{Store: disjointStore(t), failFetch: "google"}
	s, err := New(store)
	require.NoError(t, err)

	_, err = s.BeginSync(context.Background(), []contacts.AccountID{"icloud", "google"})
	require.Error(t, err)

	var fetchErr *errors.FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, "google", fetchErr.AccountID)
	assert.Equal(t, StateFailed, s.State())

	last := s.LastResult()
	require.NotNil(t, last)
	assert.False(t, last.IsSuccess())

	// A failed run does not block the next one.
	store.failFetch = ""
	result, err := s.BeginSync(context.Background(), []contacts.AccountID{"icloud", "google"})
	require.NoError(t, err)
	assert.True(t, result.IsSuccess())
	assert.Equal(t, StateIdle, s.State())
}

func TestSaveFailureAbortsRun(t *testing.T) {
	store := &flakyStore{Store: disjointStore(t), failInsert: true}
	s, err := New(store, WithSaveMode(SaveModeAppend))
	require.NoError(t, err)

	_, err = s.BeginSync(context.Background(), []contacts.AccountID{"icloud", "google"})
	require.Error(t, err)

	var saveErr *errors.SaveError
	require.ErrorAs(t, err, &saveErr)
	assert.Equal(t, StateFailed, s.State())
}

func TestSaveModeAppend(t *testing.T) {
	store := disjointStore(t)
	s, err := New(store, WithSaveMode(SaveModeAppend))
	require.NoError(t, err)

	result, err := s.BeginSync(context.Background(), []contacts.AccountID{"icloud", "google"})
	require.NoError(t, err)

	stats := result.Metadata.Stats
	assert.Equal(t, 6, stats.RecordsInserted)
	assert.Equal(t, 0, stats.RecordsDeleted)

	// Originals are kept alongside the inserted final set.
	assert.Equal(t, 4, store.Len("icloud"))
	assert.Equal(t, 5, store.Len("google"))
}

func TestDryRunSkipsSave(t *testing.T) {
	store := twoAccountStore(t)
	s, err := New(store, WithDryRun(true))
	require.NoError(t, err)

	_, err = s.BeginSync(context.Background(), []contacts.AccountID{"icloud", "google"})
	require.NoError(t, err)

	result, err := s.Approve(context.Background())
	require.NoError(t, err)
	assert.True(t, result.Metadata.DryRun)
	assert.NotEmpty(t, result.Warnings)

	// Merge still ran, save did not.
	assert.Equal(t, 1, result.Metadata.Stats.GoldenRecords)
	assert.Equal(t, 0, result.Metadata.Stats.RecordsInserted)
	assert.Equal(t, 2, store.Len("icloud"))
	assert.Equal(t, 2, store.Len("google"))
}

func TestCanceledContextFailsRun(t *testing.T) {
	store := twoAccountStore(t)
	s, err := New(store)
	require.NoError(t, err)

	_, err = s.BeginSync(context.Background(), []contacts.AccountID{"icloud", "google"})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = s.Approve(ctx)
	require.Error(t, err)
	assert.Equal(t, StateFailed, s.State())

	// No partial save happened before the cancellation was noticed.
	assert.Equal(t, 2, store.Len("icloud"))
	assert.Equal(t, 2, store.Len("google"))
}

func TestSyncIsIdempotent(t *testing.T) {
	store := twoAccountStore(t)
	s, err := New(store)
	require.NoError(t, err)

	_, err = s.BeginSync(context.Background(), []contacts.AccountID{"icloud", "google"})
	require.NoError(t, err)
	first, err := s.Approve(context.Background())
	require.NoError(t, err)
	require.Equal(t, 3, store.Len("icloud"))

	// Running again over the mirrored accounts converges: every record now
	// exists in both accounts with a shared email, so each one clusters
	// with its own mirror copy and merges back to a single golden record.
	_, err = s.BeginSync(context.Background(), []contacts.AccountID{"icloud", "google"})
	require.NoError(t, err)
	require.Equal(t, StateAwaitingApproval, s.State())
	second, err := s.Approve(context.Background())
	require.NoError(t, err)

	assert.Equal(t, len(first.FinalRecords()), len(second.FinalRecords()))
	assert.Equal(t, 3, store.Len("icloud"))
	assert.Equal(t, 3, store.Len("google"))
}

func TestDecisionCacheResetsEachRun(t *testing.T) {
	// Same name in both accounts, no emails, so only the name-match
	// strategy can pair them and every pairing goes through the decider.
	store, err := memory.New(
		memory.WithAccount(accounts.Account{ID: "icloud"},
			record("a1", "icloud", "Jo", "Lee"),
		),
		memory.WithAccount(accounts.Account{ID: "google"},
			record("b1", "google", "Jo", "Lee"),
		),
	)
	require.NoError(t, err)

	calls := 0
	decider := cluster.DeciderFunc(func(context.Context, contacts.ContactRecord, contacts.ContactRecord) (bool, error) {
		calls++
		return false, nil
	})

	s, err := New(store,
		WithStrategy(cluster.NewNameMatchStrategy(decider, nil)),
		WithDryRun(true),
	)
	require.NoError(t, err)

	ids := []contacts.AccountID{"icloud", "google"}
	_, err = s.BeginSync(context.Background(), ids)
	require.NoError(t, err)
	_, err = s.BeginSync(context.Background(), ids)
	require.NoError(t, err)

	// One question per run: the first run's verdict must not carry over.
	assert.Equal(t, 2, calls)
}

func TestProgressSafeDuringRun(t *testing.T) {
	store := twoAccountStore(t)
	s, err := New(store)
	require.NoError(t, err)

	stop := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			select {
			case <-stop:
				return
			default:
				s.Progress()
			}
		}
	}()

	_, err = s.BeginSync(context.Background(), []contacts.AccountID{"icloud", "google"})
	require.NoError(t, err)
	_, err = s.Approve(context.Background())
	require.NoError(t, err)

	close(stop)
	<-done

	p := s.Progress()
	assert.Equal(t, StateIdle, p.State)
}

// heldStrategy blocks inside Cluster until released, so tests can observe
// the analyzing state from another goroutine.
type heldStrategy struct {
	entered chan struct{}
	release chan struct{}
}

func (h *heldStrategy) Type() cluster.Type  { return "held" }
func (h *heldStrategy) Description() string { return "blocks until released" }

func (h *heldStrategy) Cluster(_ context.Context, records []contacts.ContactRecord) ([][]contacts.ContactRecord, []contacts.ContactRecord, error) {
	close(h.entered)
	<-h.release
	return nil, records, nil
}

func TestApproveRejectedWhileAnalyzing(t *testing.T) {
	strategy := &heldStrategy{
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
	s, err := New(disjointStore(t), WithStrategy(strategy), WithDryRun(true))
	require.NoError(t, err)

	errCh := make(chan error, 1)
	go func() {
		_, err := s.BeginSync(context.Background(), []contacts.AccountID{"icloud", "google"})
		errCh <- err
	}()

	<-strategy.entered
	assert.Equal(t, StateAnalyzing, s.State())

	// Approval is only valid while parked for review, never mid-analysis.
	_, err = s.Approve(context.Background())
	assert.True(t, errors.IsValidationError(err))

	close(strategy.release)
	require.NoError(t, <-errCh)
	assert.Equal(t, StateIdle, s.State())
}
