package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AliiiBenn/mini-auth/internal/application/ports"
	domerrors "github.com/AliiiBenn/mini-auth/internal/domain/errors"
)

func TestTokenIssuerRoundTrip(t *testing.T) {
	issuer := NewTokenIssuer([]byte("test-secret"), "mini-auth")

	token, err := issuer.Issue("user-123", ports.TokenTypeAccess, time.Minute)
	require.NoError(t, err)

	subject, err := issuer.Validate(token, ports.TokenTypeAccess)
	require.NoError(t, err)
	assert.Equal(t, "user-123", subject)
}

func TestTokenIssuerWrongType(t *testing.T) {
	issuer := NewTokenIssuer([]byte("test-secret"), "mini-auth")

	t.Run("refresh token presented as access", func(t *testing.T) {
		token, err := issuer.Issue("user-123", ports.TokenTypeRefresh, time.Minute)
		require.NoError(t, err)
		_, err = issuer.Validate(token, ports.TokenTypeAccess)
		assert.ErrorIs(t, err, domerrors.ErrWrongTokenType)
	})
	t.Run("access token presented as refresh", func(t *testing.T) {
		token, err := issuer.Issue("user-123", ports.TokenTypeAccess, time.Minute)
		require.NoError(t, err)
		_, err = issuer.Validate(token, ports.TokenTypeRefresh)
		assert.ErrorIs(t, err, domerrors.ErrWrongTokenType)
	})
}

func TestTokenIssuerExpired(t *testing.T) {
	issuer := NewTokenIssuer([]byte("test-secret"), "mini-auth")

	token, err := issuer.Issue("user-123", ports.TokenTypeAccess, -time.Minute)
	require.NoError(t, err)

	_, err = issuer.Validate(token, ports.TokenTypeAccess)
	assert.ErrorIs(t, err, domerrors.ErrInvalidToken)
}

func TestTokenIssuerBadSignature(t *testing.T) {
	issuer := NewTokenIssuer([]byte("test-secret"), "mini-auth")
	other := NewTokenIssuer([]byte("other-secret"), "mini-auth")

	token, err := other.Issue("user-123", ports.TokenTypeAccess, time.Minute)
	require.NoError(t, err)

	_, err = issuer.Validate(token, ports.TokenTypeAccess)
	assert.ErrorIs(t, err, domerrors.ErrInvalidToken)
}

func TestTokenIssuerMalformed(t *testing.T) {
	issuer := NewTokenIssuer([]byte("test-secret"), "mini-auth")

	for _, token := range []string{"", "not-a-jwt", "a.b.c"} {
		_, err := issuer.Validate(token, ports.TokenTypeAccess)
		assert.ErrorIs(t, err, domerrors.ErrInvalidToken, "token %q", token)
	}
}
