package filmapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Film represents a catalog entry returned by the film API
type Film struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	IsMovie     bool      `json:"isMovie"`
	Episodes    []Episode `json:"episodes,omitempty"`
}

// Episode represents a single episode of a film. Movies carry at most one
// virtual episode holding their runtime and release year.
type Episode struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	Description   string `json:"description"`
	EpisodeNumber int    `json:"episodeNumber"`
	SeasonNumber  int    `json:"seasonNumber"`
	Length        int    `json:"length"`
	Year          int    `json:"year"`
}

// Year returns the release year of the first episode, or 0 when unknown
func (f *Film) Year() int {
	for _, ep := range f.Episodes {
		if ep.Year > 0 {
			return ep.Year
		}
	}
	return 0
}

// Length returns the total runtime in minutes across all episodes
func (f *Film) Length() int {
	total := 0
	for _, ep := range f.Episodes {
		total += ep.Length
	}
	return total
}

// Seasons returns the distinct season numbers in episode order
func (f *Film) Seasons() []int {
	var seasons []int
	seen := make(map[int]bool)
	for _, ep := range f.Episodes {
		if !seen[ep.SeasonNumber] {
			seen[ep.SeasonNumber] = true
			seasons = append(seasons, ep.SeasonNumber)
		}
	}
	return seasons
}

// User is the registration payload. SecretKey is only set for admin
// registrations and is left out of the JSON body when nil.
type User struct {
	Username        string  `json:"username"`
	Email           string  `json:"email"`
	Password        string  `json:"password"`
	ConfirmPassword string  `json:"confirmPassword"`
	SecretKey       *string `json:"secretKey,omitempty"`
}

// NewUser creates a standard registration payload
func NewUser(username, email, password, confirmPassword string) User {
	return User{
		Username:        username,
		Email:           email,
		Password:        password,
		ConfirmPassword: confirmPassword,
	}
}

// NewAdminUser creates a privileged registration payload carrying a secret key
func NewAdminUser(username, email, password, confirmPassword, secretKey string) User {
	u := NewUser(username, email, password, confirmPassword)
	u.SecretKey = &secretKey
	return u
}

// IsAdmin reports whether the payload requests a privileged account
func (u User) IsAdmin() bool {
	return u.SecretKey != nil
}

// Credentials is the login payload
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResult is returned by a successful login or registration.
//
// The server names the token field jwtToken on /login and jwt on /register;
// both land in Token.
type AuthResult struct {
	ID       int
	Username string
	Token    string
	Email    string
}

// errIncompleteAuthResult marks a JSON object that lacks the required fields
var errIncompleteAuthResult = errors.New("auth result is missing id, username or token")

type authResultWire struct {
	ID       *int    `json:"id"`
	Username *string `json:"username"`
	JWTToken *string `json:"jwtToken,omitempty"`
	JWT      *string `json:"jwt,omitempty"`
	Email    string  `json:"email,omitempty"`
}

// UnmarshalJSON accepts both token field names and rejects incomplete objects
func (a *AuthResult) UnmarshalJSON(data []byte) error {
	var w authResultWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	token := w.JWTToken
	if token == nil {
		token = w.JWT
	}
	if w.ID == nil || w.Username == nil || token == nil {
		return errIncompleteAuthResult
	}

	*a = AuthResult{
		ID:       *w.ID,
		Username: *w.Username,
		Token:    *token,
		Email:    w.Email,
	}
	return nil
}

// MarshalJSON writes the canonical jwtToken field name
func (a AuthResult) MarshalJSON() ([]byte, error) {
	return json.Marshal(authResultWire{
		ID:       &a.ID,
		Username: &a.Username,
		JWTToken: &a.Token,
		Email:    a.Email,
	})
}

// TokenClaims holds the display-relevant claims of an auth token
type TokenClaims struct {
	Subject   string
	Username  string
	Role      string
	ExpiresAt time.Time
}

// Expired reports whether the token expiry has passed
func (c TokenClaims) Expired() bool {
	return !c.ExpiresAt.IsZero() && time.Now().After(c.ExpiresAt)
}

// Claims decodes the token payload without verifying its signature. The
// token is still treated as opaque by every client call.
func (a *AuthResult) Claims() (TokenClaims, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(a.Token, claims); err != nil {
		return TokenClaims{}, fmt.Errorf("failed to decode token: %w", err)
	}

	var tc TokenClaims
	if sub, err := claims.GetSubject(); err == nil {
		tc.Subject = sub
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		tc.ExpiresAt = exp.Time
	}
	if name, ok := claims["username"].(string); ok {
		tc.Username = name
	}
	if role, ok := claims["role"].(string); ok {
		tc.Role = role
	}
	return tc, nil
}
