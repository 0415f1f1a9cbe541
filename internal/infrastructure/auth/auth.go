// Package auth verifies bearer tokens issued by an external identity
// provider. The service never issues tokens itself: in jwks mode the
// provider's published key set is fetched and cached by keyfunc, and in
// hs256 mode a shared secret is used for local development and tests.
package auth

import (
	"errors"
	"fmt"
	"strings"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/tidytasks/api/internal/infrastructure/config"
)

// Verification errors
var (
	ErrMissingAuthorization = errors.New("missing authorization header")
	ErrBadAuthorization     = errors.New("malformed authorization header")
	ErrInvalidToken         = errors.New("invalid token")
)

// Verifier validates incoming JWT tokens and extracts the principal.
type Verifier struct {
	parser  *jwt.Parser
	keyfunc jwt.Keyfunc
}

// NewVerifier creates a verifier for the configured mode.
func NewVerifier(cfg config.AuthConfig) (*Verifier, error) {
	opts := []jwt.ParserOption{
		jwt.WithExpirationRequired(),
	}
	if cfg.Audience != "" {
		opts = append(opts, jwt.WithAudience(cfg.Audience))
	}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}

	switch cfg.Mode {
	case config.AuthModeHS256:
		secret := []byte(cfg.HS256Secret)
		opts = append(opts, jwt.WithValidMethods([]string{"HS256"}))
		return &Verifier{
			parser: jwt.NewParser(opts...),
			keyfunc: func(t *jwt.Token) (interface{}, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, errors.New("invalid signing method")
				}
				return secret, nil
			},
		}, nil
	case config.AuthModeJWKS:
		jwks, err := keyfunc.NewDefault([]string{cfg.JWKSURL})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize JWKS from %s: %w", cfg.JWKSURL, err)
		}
		opts = append(opts, jwt.WithValidMethods([]string{"RS256", "PS256", "ES256"}))
		return &Verifier{
			parser:  jwt.NewParser(opts...),
			keyfunc: jwks.Keyfunc,
		}, nil
	default:
		return nil, fmt.Errorf("unsupported auth mode %q", cfg.Mode)
	}
}

// UserIDFromAuthHeader extracts and verifies the principal from an
// Authorization header value.
func (v *Verifier) UserIDFromAuthHeader(header string) (uuid.UUID, error) {
	if header == "" {
		return uuid.Nil, ErrMissingAuthorization
	}

	token := strings.TrimPrefix(header, "Bearer ")
	if token == header {
		return uuid.Nil, ErrBadAuthorization
	}

	return v.UserIDFromToken(token)
}

// UserIDFromToken verifies a raw token and returns the user ID carried
// in the sub claim.
func (v *Verifier) UserIDFromToken(token string) (uuid.UUID, error) {
	claims := &jwt.RegisteredClaims{}
	parsed, err := v.parser.ParseWithClaims(token, claims, v.keyfunc)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !parsed.Valid {
		return uuid.Nil, ErrInvalidToken
	}

	if claims.Subject == "" {
		return uuid.Nil, fmt.Errorf("%w: missing sub claim", ErrInvalidToken)
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: sub claim is not a user ID", ErrInvalidToken)
	}

	return userID, nil
}
