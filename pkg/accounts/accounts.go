// Package accounts defines the external address-book store and authorization
// interfaces consumed by the sync orchestrator, together with the in-memory
// and file-backed implementations in subpackages.
package accounts

import (
	"context"

	"github.com/agentstation/contactmirror/pkg/contacts"
)

// Account identifies one independently managed contact container.
type Account struct {
	ID          contacts.AccountID `json:"id" yaml:"id"`
	DisplayName string             `json:"display_name" yaml:"display_name"`
}

// Field names a contact record field group for fetch requests.
type Field string

// Record field groups.
const (
	FieldNames     Field = "names"
	FieldWork      Field = "work"
	FieldNote      Field = "note"
	FieldBirthday  Field = "birthday"
	FieldImage     Field = "image"
	FieldPhones    Field = "phones"
	FieldEmails    Field = "emails"
	FieldAddresses Field = "addresses"
	FieldURLs      Field = "urls"
	FieldSocial    Field = "social"
	FieldIM        Field = "im"
	FieldDates     Field = "dates"
)

// FieldSet selects which field groups a fetch should populate.
type FieldSet []Field

// AllFields returns a FieldSet covering every record field group.
func AllFields() FieldSet {
	return FieldSet{
		FieldNames, FieldWork, FieldNote, FieldBirthday, FieldImage,
		FieldPhones, FieldEmails, FieldAddresses, FieldURLs,
		FieldSocial, FieldIM, FieldDates,
	}
}

// Store is the address-book account store. Implementations must never
// return pre-merged records spanning multiple accounts: FetchRecords
// returns the raw, non-unified records of exactly one account, each tagged
// with that account's ID.
type Store interface {
	// ListAccounts enumerates the available accounts.
	ListAccounts(ctx context.Context) ([]Account, error)

	// FetchRecords returns a snapshot of one account's records with at
	// least the requested field groups populated.
	FetchRecords(ctx context.Context, accountID contacts.AccountID, fields FieldSet) ([]contacts.ContactRecord, error)

	// InsertRecord adds a fresh record to an account. The store assigns
	// the record's identifier; any ID on the given record is ignored.
	InsertRecord(ctx context.Context, accountID contacts.AccountID, record contacts.ContactRecord) error

	// DeleteRecord removes one record from an account by its store ID.
	DeleteRecord(ctx context.Context, accountID contacts.AccountID, recordID string) error
}

// AuthStatus is the authorization state of address-book access.
type AuthStatus string

// String returns the string representation of an AuthStatus.
func (s AuthStatus) String() string {
	return string(s)
}

// Authorization states.
const (
	AuthNotDetermined AuthStatus = "not-determined"
	AuthDenied        AuthStatus = "denied"
	AuthRestricted    AuthStatus = "restricted"
	AuthAuthorized    AuthStatus = "authorized"
)

// Authorizer gates access to the address-book store.
type Authorizer interface {
	// Status returns the current authorization state.
	Status(ctx context.Context) AuthStatus

	// RequestAccess asks the user (or platform) for access and reports
	// whether it was granted.
	RequestAccess(ctx context.Context) (bool, error)
}

// OpenAuthorizer always reports authorized access. It is the default for
// store backends that carry their own permissions (local files, memory).
type OpenAuthorizer struct{}

// Status implements Authorizer.
func (OpenAuthorizer) Status(context.Context) AuthStatus {
	return AuthAuthorized
}

// RequestAccess implements Authorizer.
func (OpenAuthorizer) RequestAccess(context.Context) (bool, error) {
	return true, nil
}
