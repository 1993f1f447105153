package errors_test

import (
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/agentstation/contactmirror/pkg/errors"
)

func TestValidationError(t *testing.T) {
	err := errors.NewValidationError("accounts", 1, "at least two accounts must be selected")
	assert.Contains(t, err.Error(), "accounts")
	assert.True(t, errors.IsValidationError(err))
	assert.True(t, stderrors.Is(err, errors.ErrInvalidInput))
}

func TestPermissionError(t *testing.T) {
	err := errors.NewPermissionError("denied", "user declined address book access")
	assert.Contains(t, err.Error(), "denied")
	assert.True(t, errors.IsPermissionDenied(err))
}

func TestFetchErrorUnwrap(t *testing.T) {
	cause := errors.ErrAccountUnavailable
	err := errors.NewFetchError("acct-1", cause)
	assert.Contains(t, err.Error(), "acct-1")
	assert.True(t, stderrors.Is(err, errors.ErrAccountUnavailable))
	assert.True(t, errors.IsAccountUnavailable(err))
}

func TestSaveErrorUnwrap(t *testing.T) {
	cause := stderrors.New("disk full")
	err := errors.NewSaveError("acct-2", cause)
	assert.ErrorIs(t, err, cause)
}

func TestNotFoundError(t *testing.T) {
	err := errors.NewNotFoundError("account", "acct-9")
	assert.True(t, errors.IsNotFound(err))
	assert.Contains(t, err.Error(), "acct-9")
}

func TestWrapHelpers(t *testing.T) {
	assert.Nil(t, errors.WrapFetch("acct-1", nil))
	assert.Nil(t, errors.WrapSave("acct-1", nil))
	assert.Nil(t, errors.WrapIO("read", "x.yaml", nil))

	wrapped := errors.WrapFetch("acct-1", errors.ErrTimeout)
	assert.True(t, errors.IsTimeout(wrapped))
}
