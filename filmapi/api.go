package filmapi

import (
	"context"
	"time"
)

// API defines the interface for film API operations
type API interface {
	// Search finds films whose title matches query. Failures yield an empty slice.
	Search(ctx context.Context, query string) ([]Film, error)

	// ListFilms retrieves the whole catalog. Failures yield an empty slice.
	ListFilms(ctx context.Context) ([]Film, error)

	// GetFilm retrieves a single film, or nil when it cannot be loaded
	GetFilm(ctx context.Context, id string) (*Film, error)

	// Login authenticates with email and password
	Login(ctx context.Context, email, password string) (*AuthResult, error)

	// Register creates an account
	Register(ctx context.Context, user User) (*AuthResult, error)
}

// Operation names a client call
type Operation string

const (
	OpSearch    Operation = "search"
	OpListFilms Operation = "list_films"
	OpGetFilm   Operation = "get_film"
	OpLogin     Operation = "login"
	OpRegister  Operation = "register"
)

// Outcome classifies how a call ended
type Outcome string

const (
	OutcomeOK               Outcome = "ok"
	OutcomeEmpty            Outcome = "empty"
	OutcomeDegraded         Outcome = "degraded"
	OutcomeConnectionError  Outcome = "connection_error"
	OutcomeCredentialsError Outcome = "credentials_error"
	OutcomeEmailExists      Outcome = "email_exists"
	OutcomeUsernameExists   Outcome = "username_exists"
)

// Observer is notified once per call
type Observer interface {
	ObserveRequest(op Operation, outcome Outcome, elapsed time.Duration)
}

// outcomeOf maps an auth error to its Outcome
func outcomeOf(err error) Outcome {
	switch {
	case err == nil:
		return OutcomeOK
	case err == ErrEmailExists:
		return OutcomeEmailExists
	case err == ErrUsernameExists:
		return OutcomeUsernameExists
	case IsConnectionError(err):
		return OutcomeConnectionError
	default:
		return OutcomeCredentialsError
	}
}
