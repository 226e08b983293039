package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/okian/portfolio/pkg/logger"
)

// TokenIssuer is the iss claim of admin tokens.
const TokenIssuer = "portfolio"

// Claims are the admin token claims.
type Claims struct {
	jwt.RegisteredClaims
}

// IssueToken signs an HS256 admin token for subject valid for ttl from now.
func IssueToken(secret, subject string, ttl time.Duration, now time.Time) (string, error) {
	if secret == "" {
		return "", errors.New("jwt secret is empty")
	}
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    TokenIssuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return token, nil
}

// ParseToken verifies an admin token and returns its claims. Expired,
// malformed or foreign tokens wrap ErrUnauthorized.
func ParseToken(secret, token string) (*Claims, error) {
	if token == "" {
		return nil, fmt.Errorf("%w: missing token", ErrUnauthorized)
	}
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	}, jwt.WithIssuer(TokenIssuer), jwt.WithExpirationRequired())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnauthorized, err)
	}
	if !parsed.Valid {
		return nil, fmt.Errorf("%w: token is not valid", ErrUnauthorized)
	}
	return claims, nil
}

func bearerToken(r *http.Request) string {
	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// requireToken rejects requests without a valid admin bearer token.
func (s *Server) requireToken(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, err := ParseToken(s.jwtSecret, bearerToken(r))
		if err != nil {
			s.logger.Warn(r.Context(), "admin request rejected", logger.Error(err))
			w.Header().Set("WWW-Authenticate", `Bearer realm="portfolio"`)
			writeFailure(w, http.StatusUnauthorized, MsgUnauthorized)
			return
		}
		s.logger.Debug(r.Context(), "admin request", logger.String("subject", claims.Subject))
		next.ServeHTTP(w, r)
	}
}
