package filmapi

import (
	"errors"
	"fmt"
)

// Response bodies the server sends instead of JSON when a registration
// conflicts with an existing account. They are matched verbatim.
const (
	EmailExistsBody    = "Email already exists"
	UsernameExistsBody = "Username already exists"
)

// Common errors
var (
	// ErrInvalidConfig indicates invalid client configuration
	ErrInvalidConfig = errors.New("invalid film API configuration")
	// ErrConnection matches every ConnectionError
	ErrConnection = errors.New("failed to reach film API")
	// ErrMalformedResponse matches every CredentialsError
	ErrMalformedResponse = errors.New("film API response is not a valid auth result")

	// ErrEmailExists is returned by Register when the email is taken
	ErrEmailExists = &ConflictError{Field: "email", Message: EmailExistsBody}
	// ErrUsernameExists is returned by Register when the username is taken
	ErrUsernameExists = &ConflictError{Field: "username", Message: UsernameExistsBody}
)

// AuthError is implemented by every error Login and Register return
type AuthError interface {
	error
	authError()
}

// ConnectionError means the request could not be sent or its response body
// could not be read.
type ConnectionError struct {
	Op  Operation
	URL string
	Err error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("%s: connection to %s failed: %v", e.Op, e.URL, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrConnection) hold
func (e *ConnectionError) Is(target error) bool { return target == ErrConnection }

func (e *ConnectionError) authError() {}

// CredentialsError means a response arrived but did not parse as an auth
// result. Body is the response text exactly as the server sent it, so
// messages like "Invalid credentials" can be shown to the user.
type CredentialsError struct {
	Body       string
	StatusCode int
	Err        error
}

func (e *CredentialsError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("credentials rejected (status %d)", e.StatusCode)
	}
	return e.Body
}

func (e *CredentialsError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrMalformedResponse) hold
func (e *CredentialsError) Is(target error) bool { return target == ErrMalformedResponse }

func (e *CredentialsError) authError() {}

// ConflictError is a registration conflict signalled by a sentinel body
type ConflictError struct {
	Field   string
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

func (e *ConflictError) authError() {}

// SearchError describes a search that failed and was degraded to an empty
// result. Search never returns it; it is handed to the search error hook.
type SearchError struct {
	Query      string
	StatusCode int
	Err        error
}

func (e *SearchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("search %q failed with status %d: %v", e.Query, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("search %q failed: %v", e.Query, e.Err)
}

func (e *SearchError) Unwrap() error { return e.Err }

// AsAuthError extracts the AuthError from err's chain
func AsAuthError(err error) (AuthError, bool) {
	var ae AuthError
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}

// IsConnectionError checks if err is a transport failure
func IsConnectionError(err error) bool {
	return errors.Is(err, ErrConnection)
}

// IsCredentialsError checks if err carries an unparsable server response
func IsCredentialsError(err error) bool {
	return errors.Is(err, ErrMalformedResponse)
}

// IsConflict checks if err is one of the registration conflicts
func IsConflict(err error) bool {
	return errors.Is(err, ErrEmailExists) || errors.Is(err, ErrUsernameExists)
}
