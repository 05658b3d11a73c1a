package mockserver

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/s0up4200/filmforum/filmapi"
)

// ErrMissingSecret is returned when no token signing secret is configured
var ErrMissingSecret = errors.New("jwt secret is required")

// Config holds the mock server settings
type Config struct {
	JWTSecret      string
	TokenTTL       time.Duration
	AdminSecret    string
	AllowedOrigins []string
}

// Option configures a Server
type Option func(*Server)

// WithCatalog replaces the built-in film catalog
func WithCatalog(films []filmapi.Film) Option {
	return func(s *Server) {
		s.catalog = newCatalog(films)
	}
}

// WithPasswordCost sets the bcrypt cost used for new accounts
func WithPasswordCost(cost int) Option {
	return func(s *Server) {
		s.users = newUserStore(cost)
	}
}

// WithClock overrides the time source used for token expiry
func WithClock(now func() time.Time) Option {
	return func(s *Server) {
		s.now = now
	}
}

// Server is an in-memory implementation of the FilmForum HTTP API
type Server struct {
	cfg      Config
	catalog  *catalog
	users    *userStore
	validate *validator.Validate
	registry *prometheus.Registry
	metrics  *httpMetrics
	handler  http.Handler
	now      func() time.Time
	logger   zerolog.Logger
}

// New creates a mock server
func New(cfg Config, logger zerolog.Logger, opts ...Option) (*Server, error) {
	if cfg.JWTSecret == "" {
		return nil, ErrMissingSecret
	}
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = 24 * time.Hour
	}

	s := &Server{
		cfg:      cfg,
		catalog:  newCatalog(DefaultCatalog()),
		users:    newUserStore(bcrypt.DefaultCost),
		validate: validator.New(),
		registry: prometheus.NewRegistry(),
		now:      time.Now,
		logger:   logger.With().Str("component", "mockserver").Logger(),
	}

	for _, opt := range opts {
		opt(s)
	}

	s.metrics = newHTTPMetrics(s.registry)
	s.handler = s.routes()

	return s, nil
}

// Handler returns the HTTP handler serving the API
func (s *Server) Handler() http.Handler {
	return s.handler
}

func (s *Server) routes() http.Handler {
	r := mux.NewRouter()
	r.UseEncodedPath()

	r.HandleFunc("/api/film/search/{query}", s.handleSearch).Methods(http.MethodGet)
	r.HandleFunc("/api/film/details", s.handleListFilms).Methods(http.MethodGet)
	r.HandleFunc("/api/film/{id}/details", s.handleGetFilm).Methods(http.MethodGet)
	r.HandleFunc("/login", s.handleLogin).Methods(http.MethodPost)
	r.HandleFunc("/register", s.handleRegister).Methods(http.MethodPost)
	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	r.Handle("/metrics", s.metrics.handler(s.registry)).Methods(http.MethodGet)

	r.Use(s.metrics.middleware)
	r.Use(s.loggingMiddleware)

	origins := s.cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	c := cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Authorization", "Accept"},
	})

	return c.Handler(r)
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		s.logger.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rec.status).
			Dur("elapsed", time.Since(start)).
			Msg("Handled request")
	})
}

// ListenAndServe serves the API on addr until ctx is cancelled
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled, then shuts down
// gracefully
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", ln.Addr().String()).Msg("Mock film API listening")
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	s.logger.Info().Msg("Shutting down mock film API")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down: %w", err)
	}
	return nil
}
