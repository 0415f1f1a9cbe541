package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tidytasks/api/internal/infrastructure/config"
)

const testSecret = "test-secret-at-least-32-characters!!"

func newTestVerifier(t *testing.T) *Verifier {
	t.Helper()

	v, err := NewVerifier(config.AuthConfig{
		Mode:        config.AuthModeHS256,
		HS256Secret: testSecret,
	})
	require.NoError(t, err)
	return v
}

func signToken(t *testing.T, secret string, claims jwt.RegisteredClaims) string {
	t.Helper()

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func validClaims(sub string) jwt.RegisteredClaims {
	return jwt.RegisteredClaims{
		Subject:   sub,
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
}

func TestVerifierAcceptsValidToken(t *testing.T) {
	v := newTestVerifier(t)
	userID := uuid.New()

	token := signToken(t, testSecret, validClaims(userID.String()))

	got, err := v.UserIDFromToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID, got)
}

func TestVerifierRejectsExpiredToken(t *testing.T) {
	v := newTestVerifier(t)

	claims := validClaims(uuid.NewString())
	claims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))
	token := signToken(t, testSecret, claims)

	_, err := v.UserIDFromToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifierRequiresExpiration(t *testing.T) {
	v := newTestVerifier(t)

	claims := validClaims(uuid.NewString())
	claims.ExpiresAt = nil
	token := signToken(t, testSecret, claims)

	_, err := v.UserIDFromToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifierRejectsWrongSecret(t *testing.T) {
	v := newTestVerifier(t)

	token := signToken(t, "some-other-secret-32-characters!!!!!", validClaims(uuid.NewString()))

	_, err := v.UserIDFromToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifierRejectsUnsignedToken(t *testing.T) {
	v := newTestVerifier(t)

	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, validClaims(uuid.NewString())).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = v.UserIDFromToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifierRejectsMissingSub(t *testing.T) {
	v := newTestVerifier(t)

	token := signToken(t, testSecret, validClaims(""))

	_, err := v.UserIDFromToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
	assert.Contains(t, err.Error(), "sub")
}

func TestVerifierRejectsNonUUIDSub(t *testing.T) {
	v := newTestVerifier(t)

	token := signToken(t, testSecret, validClaims("alice"))

	_, err := v.UserIDFromToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifierEnforcesAudienceAndIssuer(t *testing.T) {
	v, err := NewVerifier(config.AuthConfig{
		Mode:        config.AuthModeHS256,
		HS256Secret: testSecret,
		Audience:    "tidytasks-api",
		Issuer:      "https://issuer.example.com",
	})
	require.NoError(t, err)

	claims := validClaims(uuid.NewString())
	claims.Audience = jwt.ClaimStrings{"tidytasks-api"}
	claims.Issuer = "https://issuer.example.com"
	_, err = v.UserIDFromToken(signToken(t, testSecret, claims))
	assert.NoError(t, err)

	claims.Audience = jwt.ClaimStrings{"someone-else"}
	_, err = v.UserIDFromToken(signToken(t, testSecret, claims))
	assert.ErrorIs(t, err, ErrInvalidToken)

	claims.Audience = jwt.ClaimStrings{"tidytasks-api"}
	claims.Issuer = "https://evil.example.com"
	_, err = v.UserIDFromToken(signToken(t, testSecret, claims))
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestUserIDFromAuthHeader(t *testing.T) {
	v := newTestVerifier(t)
	userID := uuid.New()
	token := signToken(t, testSecret, validClaims(userID.String()))

	got, err := v.UserIDFromAuthHeader("Bearer " + token)
	require.NoError(t, err)
	assert.Equal(t, userID, got)

	_, err = v.UserIDFromAuthHeader("")
	assert.ErrorIs(t, err, ErrMissingAuthorization)

	_, err = v.UserIDFromAuthHeader(token)
	assert.ErrorIs(t, err, ErrBadAuthorization)

	_, err = v.UserIDFromAuthHeader("Basic dXNlcjpwYXNz")
	assert.ErrorIs(t, err, ErrBadAuthorization)
}

func TestNewVerifierRejectsUnknownMode(t *testing.T) {
	_, err := NewVerifier(config.AuthConfig{Mode: "saml"})
	assert.Error(t, err)
}
