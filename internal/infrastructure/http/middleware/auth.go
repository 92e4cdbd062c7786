package middleware

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/AliiiBenn/mini-auth/internal/application/ports"
	"github.com/AliiiBenn/mini-auth/internal/domain"
)

// AccessTokenCookie is the cookie set at login and read as a bearer fallback.
const AccessTokenCookie = "access_token"

// AuthValidator validates the access JWT and sets the user ID in context
// (see AuthFromContext). The token comes from the Authorization header or,
// failing that, the access_token cookie.
type AuthValidator struct {
	issuer ports.TokenIssuer
}

func NewAuthValidator(issuer ports.TokenIssuer) *AuthValidator {
	return &AuthValidator{issuer: issuer}
}

func (m *AuthValidator) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := BearerToken(r)
		if token == "" {
			writeAuthErr(w, "missing or invalid authorization")
			return
		}
		subject, err := m.issuer.Validate(token, ports.TokenTypeAccess)
		if err != nil {
			writeAuthErr(w, "invalid token")
			return
		}
		id, err := uuid.Parse(subject)
		if err != nil {
			writeAuthErr(w, "invalid token")
			return
		}
		ctx := WithAuth(r.Context(), domain.NewUserID(id))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// BearerToken extracts the access token from the Authorization header or the
// access_token cookie.
func BearerToken(r *http.Request) string {
	if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	if c, err := r.Cookie(AccessTokenCookie); err == nil {
		return c.Value
	}
	return ""
}

func writeAuthErr(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message, "code": "unauthorized"})
}
