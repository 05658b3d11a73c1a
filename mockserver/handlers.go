package mockserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"

	"github.com/s0up4200/filmforum/filmapi"
)

const (
	msgInvalidCredentials = "Invalid credentials"
	msgInvalidSecretKey   = "Invalid secret key"
	msgInvalidBody        = "Invalid request body"
	msgFilmNotFound       = "Film not found"
)

type loginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type registerRequest struct {
	Username        string  `json:"username" validate:"required"`
	Email           string  `json:"email" validate:"required,email"`
	Password        string  `json:"password" validate:"required,min=6"`
	ConfirmPassword string  `json:"confirmPassword" validate:"required,eqfield=Password"`
	SecretKey       *string `json:"secretKey"`
}

type loginResponse struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	JWTToken string `json:"jwtToken"`
}

type registerResponse struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	JWT      string `json:"jwt"`
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	query, err := url.PathUnescape(mux.Vars(r)["query"])
	if err != nil {
		writeText(w, http.StatusBadRequest, msgInvalidBody)
		return
	}

	writeJSON(w, http.StatusOK, s.catalog.search(query))
}

func (s *Server) handleListFilms(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.catalog.all())
}

func (s *Server) handleGetFilm(w http.ResponseWriter, r *http.Request) {
	id, err := url.PathUnescape(mux.Vars(r)["id"])
	if err != nil {
		writeText(w, http.StatusBadRequest, msgInvalidBody)
		return
	}

	film, ok := s.catalog.get(id)
	if !ok {
		writeText(w, http.StatusNotFound, msgFilmNotFound)
		return
	}
	writeJSON(w, http.StatusOK, film)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeText(w, http.StatusBadRequest, msgInvalidBody)
		return
	}
	if err := s.validate.Struct(req); err != nil {
		writeText(w, http.StatusUnauthorized, msgInvalidCredentials)
		return
	}

	acc, err := s.users.authenticate(req.Email, req.Password)
	if err != nil {
		s.logger.Debug().Str("email", req.Email).Msg("Login rejected")
		writeText(w, http.StatusUnauthorized, msgInvalidCredentials)
		return
	}

	token, err := s.issueToken(acc)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to sign token")
		writeText(w, http.StatusInternalServerError, "Failed to issue token")
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{
		ID:       acc.ID,
		Username: acc.Username,
		JWTToken: token,
	})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeText(w, http.StatusBadRequest, msgInvalidBody)
		return
	}
	if err := s.validate.Struct(req); err != nil {
		writeText(w, http.StatusBadRequest, validationMessage(err))
		return
	}

	role := roleUser
	if req.SecretKey != nil {
		if s.cfg.AdminSecret == "" || *req.SecretKey != s.cfg.AdminSecret {
			writeText(w, http.StatusForbidden, msgInvalidSecretKey)
			return
		}
		role = roleAdmin
	}

	acc, err := s.users.create(req.Username, req.Email, req.Password, role)
	switch {
	case errors.Is(err, errEmailTaken):
		writeText(w, http.StatusConflict, filmapi.EmailExistsBody)
		return
	case errors.Is(err, errUsernameTaken):
		writeText(w, http.StatusConflict, filmapi.UsernameExistsBody)
		return
	case err != nil:
		s.logger.Error().Err(err).Msg("Failed to create account")
		writeText(w, http.StatusInternalServerError, "Failed to create account")
		return
	}

	token, err := s.issueToken(acc)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to sign token")
		writeText(w, http.StatusInternalServerError, "Failed to issue token")
		return
	}

	s.logger.Info().Str("username", acc.Username).Str("role", acc.Role).Msg("Registered account")

	writeJSON(w, http.StatusOK, registerResponse{
		ID:       acc.ID,
		Username: acc.Username,
		Email:    acc.Email,
		JWT:      token,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeText(w, http.StatusOK, "ok")
}

// validationMessage converts validator errors into a readable message
func validationMessage(err error) string {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return err.Error()
	}

	msgs := make([]string, 0, len(ve))
	for _, fe := range ve {
		msgs = append(msgs, fieldError(fe))
	}
	return strings.Join(msgs, "; ")
}

func fieldError(fe validator.FieldError) string {
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "eqfield":
		return fmt.Sprintf("%s must match %s", field, strings.ToLower(fe.Param()))
	default:
		return fmt.Sprintf("%s failed validation (%s)", field, fe.Tag())
	}
}

// writeText writes body verbatim. http.Error would append a newline, which
// clients comparing exact bodies must not see.
func writeText(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
