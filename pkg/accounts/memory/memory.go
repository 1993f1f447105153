// Package memory provides a thread-safe in-memory account store, used by
// tests and as the programmatic default backend.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/agentstation/contactmirror/pkg/accounts"
	"github.com/agentstation/contactmirror/pkg/contacts"
	"github.com/agentstation/contactmirror/pkg/errors"
)

// Option is a function that configures a memory store.
type Option func(*config) error

// WithAccount seeds an account and its initial records.
func WithAccount(account accounts.Account, records ...contacts.ContactRecord) Option {
	return func(cfg *config) error {
		if account.ID == "" {
			return &errors.ValidationError{
				Field:   "account.id",
				Message: "cannot be empty",
			}
		}
		cfg.seeds = append(cfg.seeds, seed{account: account, records: records})
		return nil
	}
}

// WithReadOnly makes inserts and deletes fail with ErrReadOnly.
func WithReadOnly(readOnly bool) Option {
	return func(cfg *config) error {
		cfg.readOnly = readOnly
		return nil
	}
}

type seed struct {
	account accounts.Account
	records []contacts.ContactRecord
}

type config struct {
	readOnly bool
	seeds    []seed
}

// Store is an in-memory accounts.Store.
type Store struct {
	mu       sync.RWMutex
	readOnly bool
	accounts map[contacts.AccountID]accounts.Account
	records  map[contacts.AccountID][]contacts.ContactRecord
}

// New creates an in-memory account store.
func New(opts ...Option) (*Store, error) {
	cfg := &config{}
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	s := &Store{
		readOnly: cfg.readOnly,
		accounts: make(map[contacts.AccountID]accounts.Account),
		records:  make(map[contacts.AccountID][]contacts.ContactRecord),
	}
	for _, seed := range cfg.seeds {
		s.accounts[seed.account.ID] = seed.account
		for _, record := range seed.records {
			record.AccountID = seed.account.ID
			if record.ID == "" {
				record.ID = uuid.NewString()
			}
			s.records[seed.account.ID] = append(s.records[seed.account.ID], record)
		}
	}
	return s, nil
}

// ListAccounts implements accounts.Store.
func (s *Store) ListAccounts(_ context.Context) ([]accounts.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := make([]accounts.Account, 0, len(s.accounts))
	for _, account := range s.accounts {
		list = append(list, account)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list, nil
}

// FetchRecords implements accounts.Store. Records are returned fully
// populated regardless of the requested field set; the result is a copy
// and safe to retain.
func (s *Store) FetchRecords(_ context.Context, accountID contacts.AccountID, _ accounts.FieldSet) ([]contacts.ContactRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.accounts[accountID]; !ok {
		return nil, errors.NewNotFoundError("account", accountID.String())
	}
	return append([]contacts.ContactRecord(nil), s.records[accountID]...), nil
}

// InsertRecord implements accounts.Store. The store assigns a fresh ID.
func (s *Store) InsertRecord(_ context.Context, accountID contacts.AccountID, record contacts.ContactRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.readOnly {
		return errors.ErrReadOnly
	}
	if _, ok := s.accounts[accountID]; !ok {
		return errors.NewNotFoundError("account", accountID.String())
	}

	record.ID = uuid.NewString()
	record.AccountID = accountID
	s.records[accountID] = append(s.records[accountID], record)
	return nil
}

// DeleteRecord implements accounts.Store.
func (s *Store) DeleteRecord(_ context.Context, accountID contacts.AccountID, recordID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.readOnly {
		return errors.ErrReadOnly
	}
	if _, ok := s.accounts[accountID]; !ok {
		return errors.NewNotFoundError("account", accountID.String())
	}

	records := s.records[accountID]
	for i, record := range records {
		if record.ID == recordID {
			s.records[accountID] = append(records[:i:i], records[i+1:]...)
			return nil
		}
	}
	return errors.NewNotFoundError("record", recordID)
}

// Len returns the number of records currently held by an account.
func (s *Store) Len(accountID contacts.AccountID) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records[accountID])
}
