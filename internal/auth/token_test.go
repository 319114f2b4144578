package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenIssuer_RoundTrip(t *testing.T) {
	issuer, err := NewTokenIssuer("secret", time.Hour)
	require.NoError(t, err)

	now := time.Date(2025, 3, 3, 9, 0, 0, 0, time.UTC)
	identity := Identity{Subject: "u1", Role: "TEACHER", Name: "Dr. Smith", Email: "smith@example.com"}

	token, expiresAt, err := issuer.Sign(identity, now)
	require.NoError(t, err)
	assert.Equal(t, now.Add(time.Hour), expiresAt)

	got, err := issuer.Verify(token, now.Add(30*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, identity, got)
}

func TestTokenIssuer_Rejects(t *testing.T) {
	issuer, err := NewTokenIssuer("secret", time.Hour)
	require.NoError(t, err)
	now := time.Date(2025, 3, 3, 9, 0, 0, 0, time.UTC)

	token, _, err := issuer.Sign(Identity{Subject: "admin", Role: "ADMIN"}, now)
	require.NoError(t, err)

	t.Run("expired", func(t *testing.T) {
		_, err := issuer.Verify(token, now.Add(2*time.Hour))
		assert.ErrorIs(t, err, ErrExpiredToken)
	})

	t.Run("foreign secret", func(t *testing.T) {
		other, err := NewTokenIssuer("other", time.Hour)
		require.NoError(t, err)
		_, err = other.Verify(token, now)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("tampered", func(t *testing.T) {
		_, err := issuer.Verify(strings.TrimSuffix(token, token[len(token)-2:])+"xx", now)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("unsigned", func(t *testing.T) {
		unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"sub": "admin", "role": "ADMIN", "iss": Issuer}).
			SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)
		_, err = issuer.Verify(unsigned, now)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("missing fields", func(t *testing.T) {
		_, _, err := issuer.Sign(Identity{Subject: "x"}, now)
		assert.Error(t, err)
	})
}

func TestNewTokenIssuer_RequiresSecret(t *testing.T) {
	_, err := NewTokenIssuer("", time.Hour)
	assert.Error(t, err)
}
