// Package files provides a YAML-file-backed account store. Each account is
// one document under the store directory: <dir>/<account-id>.yaml holding
// the account metadata and its records.
package files

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/goccy/go-yaml"
	"github.com/google/uuid"

	"github.com/agentstation/contactmirror/pkg/accounts"
	"github.com/agentstation/contactmirror/pkg/contacts"
	"github.com/agentstation/contactmirror/pkg/errors"
)

const fileExtension = ".yaml"

// filePermissions for created account documents.
const filePermissions = 0o644

// document is the on-disk shape of one account.
type document struct {
	Account accounts.Account         `yaml:"account"`
	Records []contacts.ContactRecord `yaml:"records,omitempty"`
}

// Store is a YAML-file-backed accounts.Store rooted at a directory.
type Store struct {
	dir string
	mu  sync.Mutex
}

// New creates a file-backed account store rooted at dir.
func New(dir string) (*Store, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, errors.WrapIO("open", dir, err)
	}
	if !info.IsDir() {
		return nil, &errors.ValidationError{
			Field:   "dir",
			Value:   dir,
			Message: "not a directory",
		}
	}
	return &Store{dir: dir}, nil
}

// ListAccounts implements accounts.Store.
func (s *Store) ListAccounts(_ context.Context) ([]accounts.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, errors.WrapIO("read", s.dir, err)
	}

	var list []accounts.Account
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), fileExtension) {
			continue
		}
		doc, err := s.load(strings.TrimSuffix(entry.Name(), fileExtension))
		if err != nil {
			return nil, err
		}
		list = append(list, doc.Account)
	}

	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list, nil
}

// FetchRecords implements accounts.Store. Records are returned fully
// populated regardless of the requested field set.
func (s *Store) FetchRecords(_ context.Context, accountID contacts.AccountID, _ accounts.FieldSet) ([]contacts.ContactRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load(accountID.String())
	if err != nil {
		return nil, err
	}

	records := make([]contacts.ContactRecord, len(doc.Records))
	for i, record := range doc.Records {
		record.AccountID = accountID
		records[i] = record
	}
	return records, nil
}

// InsertRecord implements accounts.Store. The store assigns a fresh ID.
func (s *Store) InsertRecord(_ context.Context, accountID contacts.AccountID, record contacts.ContactRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load(accountID.String())
	if err != nil {
		return err
	}

	record.ID = uuid.NewString()
	record.AccountID = accountID
	doc.Records = append(doc.Records, record)
	return s.save(doc)
}

// DeleteRecord implements accounts.Store.
func (s *Store) DeleteRecord(_ context.Context, accountID contacts.AccountID, recordID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load(accountID.String())
	if err != nil {
		return err
	}

	for i, record := range doc.Records {
		if record.ID == recordID {
			doc.Records = append(doc.Records[:i], doc.Records[i+1:]...)
			return s.save(doc)
		}
	}
	return errors.NewNotFoundError("record", recordID)
}

// CreateAccount writes a new empty account document.
func (s *Store) CreateAccount(account accounts.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := validAccountID(account.ID.String()); err != nil {
		return err
	}
	if _, err := os.Stat(s.path(account.ID.String())); err == nil {
		return errors.ErrAlreadyExists
	}
	return s.save(&document{Account: account})
}

// path returns the document path for an account name.
func (s *Store) path(name string) string {
	return filepath.Join(s.dir, name+fileExtension)
}

// validAccountID rejects IDs that would name a document outside the store
// directory.
func validAccountID(id string) error {
	if id == "" {
		return &errors.ValidationError{
			Field:   "account.id",
			Message: "cannot be empty",
		}
	}
	if id == "." || id == ".." || id != filepath.Base(id) || strings.ContainsAny(id, `/\`) {
		return &errors.ValidationError{
			Field:   "account.id",
			Value:   id,
			Message: "must not contain path separators",
		}
	}
	return nil
}

// load reads and parses one account document.
func (s *Store) load(name string) (*document, error) {
	if err := validAccountID(name); err != nil {
		return nil, err
	}
	path := s.path(name)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewNotFoundError("account", name)
		}
		return nil, errors.WrapIO("read", path, err)
	}

	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.NewParseError("yaml", path, err.Error(), err)
	}
	if doc.Account.ID == "" {
		doc.Account.ID = contacts.AccountID(name)
	}
	return &doc, nil
}

// save marshals and rewrites one account document.
func (s *Store) save(doc *document) error {
	path := s.path(doc.Account.ID.String())
	data, err := yaml.MarshalWithOptions(doc, yaml.Indent(2))
	if err != nil {
		return errors.NewParseError("yaml", path, err.Error(), err)
	}
	if err := os.WriteFile(path, data, filePermissions); err != nil {
		return errors.WrapIO("write", path, err)
	}
	return nil
}
