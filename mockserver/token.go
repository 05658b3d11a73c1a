package mockserver

import (
	"strconv"

	"github.com/golang-jwt/jwt/v5"
)

// issueToken signs an HS256 token for acc
func (s *Server) issueToken(acc *account) (string, error) {
	claims := jwt.MapClaims{
		"sub":      strconv.Itoa(acc.ID),
		"username": acc.Username,
		"role":     acc.Role,
		"exp":      s.now().Add(s.cfg.TokenTTL).Unix(),
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.JWTSecret))
}
