package filmapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// DefaultBaseURL is the address of a locally running film API
const DefaultBaseURL = "http://127.0.0.1:5105"

// apiPrefix is prepended to catalog endpoints; auth endpoints live at the root
const apiPrefix = "/api"

// Client represents a film API client. It keeps no session state between
// calls and is safe for concurrent use.
type Client struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
	userAgent  string
	observer   Observer
	searchHook func(*SearchError)
	logger     zerolog.Logger
}

// NewClient creates a new film API client
func NewClient(baseURL string, logger zerolog.Logger, opts ...Option) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("%w: base URL is required", ErrInvalidConfig)
	}
	if u, err := url.Parse(baseURL); err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("%w: invalid base URL %q", ErrInvalidConfig, baseURL)
	}

	client := &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{},
		logger:     logger,
	}

	for _, opt := range opts {
		opt(client)
	}

	return client, nil
}

// BaseURL returns the configured base URL without a trailing slash
func (c *Client) BaseURL() string {
	return c.baseURL
}

// response is a fully read HTTP response
type response struct {
	status int
	body   []byte
}

// doRequest performs a single request/response cycle. Any failure before the
// body is fully read is returned as a ConnectionError.
func (c *Client) doRequest(ctx context.Context, op Operation, method, endpoint string, payload any) (*response, error) {
	requestURL := c.baseURL + endpoint

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to encode %s payload: %w", op, err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, requestURL, body)
	if err != nil {
		return nil, &ConnectionError{Op: op, URL: requestURL, Err: err}
	}

	if payload != nil {
		req.Header.Set("Accept", "*/*")
		req.Header.Set("Content-Type", "application/json")
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	c.logger.Debug().
		Str("op", string(op)).
		Str("method", method).
		Str("url", requestURL).
		Msg("Making film API request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &ConnectionError{Op: op, URL: requestURL, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &ConnectionError{Op: op, URL: requestURL, Err: fmt.Errorf("failed to read response body: %w", err)}
	}

	c.logger.Debug().
		Str("op", string(op)).
		Int("status", resp.StatusCode).
		Int("body_bytes", len(data)).
		Msg("Received film API response")

	return &response{status: resp.StatusCode, body: data}, nil
}

func (c *Client) observe(op Operation, outcome Outcome, start time.Time) {
	if c.observer != nil {
		c.observer.ObserveRequest(op, outcome, time.Since(start))
	}
}

// Search finds films matching query.
//
// A failed search is indistinguishable from one without matches: transport
// errors, non-2xx statuses and malformed bodies all produce an empty slice
// and a nil error. The failure is passed to the search error hook, if any.
// The returned error is reserved for future search failure kinds.
func (c *Client) Search(ctx context.Context, query string) ([]Film, error) {
	start := time.Now()

	films, err := c.fetchFilms(ctx, OpSearch, apiPrefix+"/film/search/"+url.PathEscape(query))
	if err != nil {
		err.Query = query
		c.logger.Debug().Err(err).Str("query", query).Msg("Search failed, returning no films")
		if c.searchHook != nil {
			c.searchHook(err)
		}
		c.observe(OpSearch, OutcomeDegraded, start)
		return films, nil
	}

	c.observe(OpSearch, filmsOutcome(films), start)
	return films, nil
}

// ListFilms retrieves the full catalog. Failures produce an empty slice.
func (c *Client) ListFilms(ctx context.Context) ([]Film, error) {
	start := time.Now()

	films, err := c.fetchFilms(ctx, OpListFilms, apiPrefix+"/film/details")
	if err != nil {
		c.logger.Debug().Err(err).Msg("Listing films failed, returning no films")
		c.observe(OpListFilms, OutcomeDegraded, start)
		return films, nil
	}

	c.observe(OpListFilms, filmsOutcome(films), start)
	return films, nil
}

// fetchFilms always returns a non-nil slice, even alongside an error
func (c *Client) fetchFilms(ctx context.Context, op Operation, endpoint string) ([]Film, *SearchError) {
	resp, err := c.doRequest(ctx, op, http.MethodGet, endpoint, nil)
	if err != nil {
		return []Film{}, &SearchError{Err: err}
	}
	if resp.status < 200 || resp.status > 299 {
		return []Film{}, &SearchError{StatusCode: resp.status, Err: fmt.Errorf("unexpected status code")}
	}

	var films []Film
	if err := json.Unmarshal(resp.body, &films); err != nil {
		return []Film{}, &SearchError{StatusCode: resp.status, Err: fmt.Errorf("failed to parse films: %w", err)}
	}
	if films == nil {
		films = []Film{}
	}
	return films, nil
}

func filmsOutcome(films []Film) Outcome {
	if len(films) == 0 {
		return OutcomeEmpty
	}
	return OutcomeOK
}

// GetFilm retrieves a film by its identifier. A film that is missing or
// cannot be loaded yields nil without an error. Any status other than 200
// counts as missing, whatever the body holds.
func (c *Client) GetFilm(ctx context.Context, id string) (*Film, error) {
	start := time.Now()

	resp, err := c.doRequest(ctx, OpGetFilm, http.MethodGet, apiPrefix+"/film/"+url.PathEscape(id)+"/details", nil)
	if err != nil {
		c.logger.Debug().Err(err).Str("film_id", id).Msg("Loading film failed")
		c.observe(OpGetFilm, OutcomeDegraded, start)
		return nil, nil
	}
	if resp.status != http.StatusOK {
		c.observe(OpGetFilm, OutcomeEmpty, start)
		return nil, nil
	}

	var film *Film
	if err := json.Unmarshal(resp.body, &film); err != nil {
		c.logger.Debug().Err(err).Str("film_id", id).Msg("Film response is not valid JSON")
		c.observe(OpGetFilm, OutcomeDegraded, start)
		return nil, nil
	}
	if film == nil {
		c.observe(OpGetFilm, OutcomeEmpty, start)
		return nil, nil
	}

	c.observe(OpGetFilm, OutcomeOK, start)
	return film, nil
}

// Login authenticates a user.
//
// Errors are *ConnectionError when the server could not be reached and
// *CredentialsError when the response body is not an auth result. The
// latter keeps the body verbatim, e.g. "Invalid credentials".
func (c *Client) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	start := time.Now()

	result, err := c.login(ctx, email, password)
	c.observe(OpLogin, outcomeOf(err), start)
	if err != nil {
		c.logger.Debug().Err(err).Str("email", email).Msg("Login failed")
		return nil, err
	}

	c.logger.Debug().Str("email", email).Int("user_id", result.ID).Msg("Login succeeded")
	return result, nil
}

func (c *Client) login(ctx context.Context, email, password string) (*AuthResult, error) {
	resp, err := c.doRequest(ctx, OpLogin, http.MethodPost, "/login", Credentials{
		Email:    email,
		Password: password,
	})
	if err != nil {
		return nil, err
	}

	return parseAuthResult(resp)
}

// Register creates an account.
//
// The response body is compared with the conflict sentinels before any JSON
// parsing: "Email already exists" yields ErrEmailExists and "Username already
// exists" yields ErrUsernameExists. Any other body must be an auth result,
// otherwise a *CredentialsError carrying the body is returned.
func (c *Client) Register(ctx context.Context, user User) (*AuthResult, error) {
	start := time.Now()

	result, err := c.register(ctx, user)
	c.observe(OpRegister, outcomeOf(err), start)
	if err != nil {
		c.logger.Debug().
			Err(err).
			Str("username", user.Username).
			Str("email", user.Email).
			Bool("admin", user.IsAdmin()).
			Msg("Registration failed")
		return nil, err
	}

	c.logger.Debug().Str("username", user.Username).Int("user_id", result.ID).Msg("Registration succeeded")
	return result, nil
}

func (c *Client) register(ctx context.Context, user User) (*AuthResult, error) {
	resp, err := c.doRequest(ctx, OpRegister, http.MethodPost, "/register", user)
	if err != nil {
		return nil, err
	}

	switch string(resp.body) {
	case EmailExistsBody:
		return nil, ErrEmailExists
	case UsernameExistsBody:
		return nil, ErrUsernameExists
	}

	return parseAuthResult(resp)
}

// parseAuthResult does not look at the status code: only the body decides
func parseAuthResult(resp *response) (*AuthResult, error) {
	var result AuthResult
	if err := json.Unmarshal(resp.body, &result); err != nil {
		return nil, &CredentialsError{
			Body:       string(resp.body),
			StatusCode: resp.status,
			Err:        err,
		}
	}
	return &result, nil
}
