package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AliiiBenn/mini-auth/internal/application/ports"
	"github.com/AliiiBenn/mini-auth/internal/domain"
	infraauth "github.com/AliiiBenn/mini-auth/internal/infrastructure/auth"
)

func TestAuthValidator(t *testing.T) {
	issuer := infraauth.NewTokenIssuer([]byte("test-secret"), "mini-auth")
	userID := uuid.New()

	var gotUser domain.UserID
	var called bool
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser, _ = AuthFromContext(r.Context())
		called = true
		w.WriteHeader(http.StatusOK)
	})
	handler := NewAuthValidator(issuer).Handler(next)

	newReq := func() *http.Request { return httptest.NewRequest(http.MethodGet, "/", nil) }

	t.Run("accepts a bearer token", func(t *testing.T) {
		called = false
		token, err := issuer.Issue(userID.String(), ports.TokenTypeAccess, time.Minute)
		require.NoError(t, err)
		req := newReq()
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.True(t, called)
		assert.Equal(t, userID, gotUser.UUID)
	})
	t.Run("accepts the access_token cookie", func(t *testing.T) {
		called = false
		token, err := issuer.Issue(userID.String(), ports.TokenTypeAccess, time.Minute)
		require.NoError(t, err)
		req := newReq()
		req.AddCookie(&http.Cookie{Name: AccessTokenCookie, Value: token})
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.True(t, called)
	})
	t.Run("rejects a missing token", func(t *testing.T) {
		called = false
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, newReq())
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.False(t, called)
	})
	t.Run("rejects a refresh token", func(t *testing.T) {
		called = false
		token, err := issuer.Issue(userID.String(), ports.TokenTypeRefresh, time.Minute)
		require.NoError(t, err)
		req := newReq()
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.False(t, called)
	})
	t.Run("rejects a non-uuid subject", func(t *testing.T) {
		called = false
		token, err := issuer.Issue("not-a-uuid", ports.TokenTypeAccess, time.Minute)
		require.NoError(t, err)
		req := newReq()
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.False(t, called)
	})
}
