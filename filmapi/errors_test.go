package filmapi

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConnectionError(t *testing.T) {
	cause := errors.New("dial tcp 127.0.0.1:5105: connect: connection refused")
	err := &ConnectionError{Op: OpLogin, URL: "http://127.0.0.1:5105/login", Err: cause}

	assert.Equal(t, "login: connection to http://127.0.0.1:5105/login failed: dial tcp 127.0.0.1:5105: connect: connection refused", err.Error())
	assert.ErrorIs(t, err, ErrConnection)
	assert.ErrorIs(t, err, cause)
	assert.True(t, IsConnectionError(fmt.Errorf("wrapped: %w", err)))
}

func TestCredentialsError(t *testing.T) {
	err := &CredentialsError{Body: "Invalid credentials", StatusCode: 401}
	assert.Equal(t, "Invalid credentials", err.Error())
	assert.ErrorIs(t, err, ErrMalformedResponse)

	empty := &CredentialsError{StatusCode: 500}
	assert.Equal(t, "credentials rejected (status 500)", empty.Error())
}

func TestConflictErrors(t *testing.T) {
	assert.Equal(t, "Email already exists", ErrEmailExists.Error())
	assert.Equal(t, "Username already exists", ErrUsernameExists.Error())
	assert.True(t, IsConflict(ErrEmailExists))
	assert.True(t, IsConflict(fmt.Errorf("register: %w", ErrUsernameExists)))
	assert.False(t, IsConflict(&CredentialsError{Body: "Email already exists"}))
}

func TestAsAuthError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		ok   bool
	}{
		{name: "connection", err: &ConnectionError{Op: OpRegister}, ok: true},
		{name: "credentials", err: &CredentialsError{}, ok: true},
		{name: "conflict", err: ErrEmailExists, ok: true},
		{name: "wrapped", err: fmt.Errorf("x: %w", ErrUsernameExists), ok: true},
		{name: "search error", err: &SearchError{Query: "q"}, ok: false},
		{name: "plain", err: errors.New("boom"), ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := AsAuthError(tt.err)
			assert.Equal(t, tt.ok, ok)
		})
	}
}

func TestOutcomeOf(t *testing.T) {
	assert.Equal(t, OutcomeOK, outcomeOf(nil))
	assert.Equal(t, OutcomeEmailExists, outcomeOf(ErrEmailExists))
	assert.Equal(t, OutcomeUsernameExists, outcomeOf(ErrUsernameExists))
	assert.Equal(t, OutcomeConnectionError, outcomeOf(&ConnectionError{}))
	assert.Equal(t, OutcomeCredentialsError, outcomeOf(&CredentialsError{}))
}

func TestSearchError(t *testing.T) {
	err := &SearchError{Query: "dune", StatusCode: 500, Err: errors.New("unexpected status code")}
	assert.Equal(t, `search "dune" failed with status 500: unexpected status code`, err.Error())

	cause := &ConnectionError{Op: OpSearch, Err: errors.New("refused")}
	wrapped := &SearchError{Query: "dune", Err: cause}
	assert.True(t, IsConnectionError(wrapped))
}
