// Package errors provides custom error types for the contactmirror system.
// These errors enable programmatic error checking and consistent reporting
// across the fetch, cluster, merge, and save stages.
package errors

import (
	"errors"
	"fmt"
)

// New returns an error that formats as the given text.
// It's an alias for the standard library errors.New for convenience.
var New = errors.New

// Common sentinel errors for the contactmirror system
var (
	// ErrNotFound indicates that a requested resource was not found
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates that a resource already exists
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates that provided input was invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrPermissionDenied indicates that address-book access is not authorized
	ErrPermissionDenied = errors.New("permission denied")

	// ErrAccountUnavailable indicates that an account is temporarily unavailable
	ErrAccountUnavailable = errors.New("account unavailable")

	// ErrRunActive indicates that a sync run is already in progress
	ErrRunActive = errors.New("sync run already active")

	// ErrTimeout indicates that an operation timed out
	ErrTimeout = errors.New("operation timed out")

	// ErrCanceled indicates that an operation was canceled
	ErrCanceled = errors.New("operation canceled")

	// ErrReadOnly indicates an attempt to modify a read-only store
	ErrReadOnly = errors.New("read only")
)

// NotFoundError represents an error when a resource is not found
type NotFoundError struct {
	Resource string
	ID       string
}

// Error implements the error interface
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with ID %s not found", e.Resource, e.ID)
}

// Is implements errors.Is support
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// NewNotFoundError creates a new NotFoundError
func NewNotFoundError(resource, id string) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

// ValidationError represents a validation failure, e.g. starting a sync
// with fewer than two selected accounts. The run never starts.
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for field %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

// Is implements errors.Is support
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// NewValidationError creates a new ValidationError
func NewValidationError(field string, value interface{}, message string) *ValidationError {
	return &ValidationError{Field: field, Value: value, Message: message}
}

// PermissionError represents an authorization failure from the address-book
// gate. The run never starts.
type PermissionError struct {
	Status  string
	Message string
}

// Error implements the error interface
func (e *PermissionError) Error() string {
	if e.Status != "" {
		return fmt.Sprintf("address book access %s: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("address book access denied: %s", e.Message)
}

// Is implements errors.Is support
func (e *PermissionError) Is(target error) bool {
	return target == ErrPermissionDenied
}

// NewPermissionError creates a new PermissionError
func NewPermissionError(status, message string) *PermissionError {
	return &PermissionError{Status: status, Message: message}
}

// FetchError wraps an account-store failure during the fetch stage.
// The whole run is aborted; no partial cluster state is retained.
type FetchError struct {
	AccountID string
	Err       error
}

// Error implements the error interface
func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch failed for account %s: %v", e.AccountID, e.Err)
}

// Unwrap implements errors.Unwrap
func (e *FetchError) Unwrap() error {
	return e.Err
}

// NewFetchError creates a new FetchError
func NewFetchError(accountID string, err error) *FetchError {
	return &FetchError{AccountID: accountID, Err: err}
}

// SaveError wraps an account-store failure during the save fan-out.
// Some accounts may already contain a partial mirror; the run is reported
// failed rather than silently swallowing the condition.
type SaveError struct {
	AccountID string
	Err       error
}

// Error implements the error interface
func (e *SaveError) Error() string {
	return fmt.Sprintf("save failed for account %s: %v", e.AccountID, e.Err)
}

// Unwrap implements errors.Unwrap
func (e *SaveError) Unwrap() error {
	return e.Err
}

// NewSaveError creates a new SaveError
func NewSaveError(accountID string, err error) *SaveError {
	return &SaveError{AccountID: accountID, Err: err}
}

// IOError represents an error during store I/O operations
type IOError struct {
	Operation string // "read", "write", "create", "delete", "open", "close"
	Path      string
	Message   string
	Err       error
}

// Error implements the error interface
func (e *IOError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("IO error during %s of %s: %s", e.Operation, e.Path, e.Message)
	}
	return fmt.Sprintf("IO error during %s: %s", e.Operation, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *IOError) Unwrap() error {
	return e.Err
}

// NewIOError creates a new IOError
func NewIOError(operation, path string, err error) *IOError {
	message := ""
	if err != nil {
		message = err.Error()
	}
	return &IOError{
		Operation: operation,
		Path:      path,
		Message:   message,
		Err:       err,
	}
}

// ParseError represents an error when parsing stored account data
type ParseError struct {
	Format  string // "yaml", "json"
	File    string
	Message string
	Err     error
}

// Error implements the error interface
func (e *ParseError) Error() string {
	if e.File != "" {
		return fmt.Sprintf("parse error in %s file %s: %s", e.Format, e.File, e.Message)
	}
	return fmt.Sprintf("%s parse error: %s", e.Format, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *ParseError) Unwrap() error {
	return e.Err
}

// NewParseError creates a new ParseError
func NewParseError(format, file, message string, err error) *ParseError {
	return &ParseError{Format: format, File: file, Message: message, Err: err}
}

// Helper functions for error checking

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsPermissionDenied checks if an error is an authorization error
func IsPermissionDenied(err error) bool {
	return errors.Is(err, ErrPermissionDenied)
}

// IsAccountUnavailable checks if an error indicates account unavailability
func IsAccountUnavailable(err error) bool {
	return errors.Is(err, ErrAccountUnavailable)
}

// IsRunActive checks if an error indicates a concurrent sync attempt
func IsRunActive(err error) bool {
	return errors.Is(err, ErrRunActive)
}

// IsTimeout checks if an error is a timeout error
func IsTimeout(err error) bool {
	return errors.Is(err, ErrTimeout)
}

// IsCanceled checks if an error is a cancellation error
func IsCanceled(err error) bool {
	return errors.Is(err, ErrCanceled)
}

// Helper wrapping functions for common patterns

// WrapValidation wraps an error as a ValidationError
func WrapValidation(field string, err error) error {
	if err == nil {
		return nil
	}
	return &ValidationError{Field: field, Message: err.Error()}
}

// WrapIO wraps an error as an IOError
func WrapIO(operation, path string, err error) error {
	if err == nil {
		return nil
	}
	return NewIOError(operation, path, err)
}

// WrapFetch wraps an error as a FetchError
func WrapFetch(accountID string, err error) error {
	if err == nil {
		return nil
	}
	return NewFetchError(accountID, err)
}

// WrapSave wraps an error as a SaveError
func WrapSave(accountID string, err error) error {
	if err == nil {
		return nil
	}
	return NewSaveError(accountID, err)
}
