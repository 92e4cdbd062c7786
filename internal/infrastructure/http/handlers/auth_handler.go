package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/AliiiBenn/mini-auth/internal/application/auth"
	"github.com/AliiiBenn/mini-auth/internal/domain"
	"github.com/AliiiBenn/mini-auth/internal/infrastructure/http/middleware"
)

// RefreshTokenCookie is the cookie carrying the refresh token between
// login and refresh/logout when the client does not manage it itself.
const RefreshTokenCookie = "refresh_token"

// AuthHandler handles platform /auth/* endpoints. Platform users live in the
// nil scope: no project API key is involved.
type AuthHandler struct {
	register     *auth.Register
	login        *auth.Login
	refresh      *auth.Refresh
	logout       *auth.Logout
	logoutAll    *auth.LogoutAll
	validate     *validator.Validate
	cookieSecure bool
	accessTTL    time.Duration
	refreshTTL   time.Duration
	log          zerolog.Logger
}

func NewAuthHandler(register *auth.Register, login *auth.Login, refresh *auth.Refresh, logout *auth.Logout, logoutAll *auth.LogoutAll, cookieSecure bool, accessTTL, refreshTTL time.Duration, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		register:     register,
		login:        login,
		refresh:      refresh,
		logout:       logout,
		logoutAll:    logoutAll,
		validate:     validator.New(),
		cookieSecure: cookieSecure,
		accessTTL:    accessTTL,
		refreshTTL:   refreshTTL,
		log:          log,
	}
}

type registerRequest struct {
	Email           string `json:"email" validate:"required,email,max=254"`
	Password        string `json:"password" validate:"required,min=8,max=128"`
	PasswordConfirm string `json:"password_confirm" validate:"required,max=128"`
	FullName        string `json:"full_name" validate:"max=255"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var body registerRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid body")
		return
	}
	if err := h.validate.Struct(&body); err != nil {
		writeErr(w, http.StatusBadRequest, err.Error())
		return
	}
	email := SanitizeEmail(body.Email)
	password := SanitizePassword(body.Password)
	if email == "" || password == "" {
		writeErr(w, http.StatusBadRequest, "invalid email or password length")
		return
	}
	result, err := h.register.Execute(r.Context(), auth.RegisterInput{
		Email:           email,
		FullName:        body.FullName,
		Password:        password,
		PasswordConfirm: SanitizePassword(body.PasswordConfirm),
	})
	if err != nil {
		AuditLog(h.log, r, "platform.register", "", "", false, err.Error())
		middleware.RecordAuthAttempt("register", "", false)
		writeDomainErr(w, err)
		return
	}
	AuditLog(h.log, r, "platform.register", "", result.User.ID.String(), true, "")
	middleware.RecordAuthAttempt("register", "", true)
	writeJSON(w, http.StatusCreated, newUserResponse(result.User))
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,max=128"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var body loginRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid body")
		return
	}
	if err := h.validate.Struct(&body); err != nil {
		writeErr(w, http.StatusBadRequest, err.Error())
		return
	}
	email := SanitizeEmail(body.Email)
	password := SanitizePassword(body.Password)
	if email == "" || password == "" {
		writeErr(w, http.StatusBadRequest, "invalid email or password length")
		return
	}
	result, err := h.login.Execute(r.Context(), auth.LoginInput{
		Email:     email,
		Password:  password,
		UserAgent: r.UserAgent(),
	})
	if err != nil {
		AuditLog(h.log, r, "platform.login", "", "", false, err.Error())
		middleware.RecordAuthAttempt("login", "", false)
		writeDomainErr(w, err)
		return
	}
	AuditLog(h.log, r, "platform.login", "", result.User.ID.String(), true, "")
	middleware.RecordAuthAttempt("login", "", true)
	h.setAuthCookies(w, result.AccessToken, result.RefreshToken)
	writeJSON(w, http.StatusOK, tokenResponse(result.AccessToken, result.RefreshToken, result.ExpiresIn, result.User))
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"max=1024"`
}

func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	token := h.refreshTokenFrom(r)
	if token == "" {
		writeErrCode(w, http.StatusUnauthorized, ErrCodeInvalidToken, "missing refresh token")
		return
	}
	result, err := h.refresh.Execute(r.Context(), auth.RefreshInput{RefreshToken: token})
	if err != nil {
		AuditLog(h.log, r, "platform.refresh", "", "", false, err.Error())
		middleware.RecordAuthAttempt("refresh", "", false)
		writeDomainErr(w, err)
		return
	}
	AuditLog(h.log, r, "platform.refresh", "", result.User.ID.String(), true, "")
	middleware.RecordAuthAttempt("refresh", "", true)
	h.setAuthCookies(w, result.AccessToken, result.RefreshToken)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"access_token":  result.AccessToken,
		"refresh_token": result.RefreshToken,
		"expires_in":    result.ExpiresIn,
	})
}

// Logout revokes the presented refresh token and clears the auth cookies.
// Revoking an already-dead token still returns 200; the session is gone
// either way.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	token := h.refreshTokenFrom(r)
	revoked, err := h.logout.Execute(r.Context(), token)
	if err != nil {
		h.log.Error().Err(err).Msg("logout failed")
		writeErr(w, http.StatusInternalServerError, "internal error")
		return
	}
	AuditLog(h.log, r, "platform.logout", "", "", true, "")
	h.clearAuthCookies(w)
	writeJSON(w, http.StatusOK, map[string]interface{}{"message": "logged out", "revoked": revoked})
}

// LogoutAll revokes every live refresh token of the authenticated user.
func (h *AuthHandler) LogoutAll(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.AuthFromContext(r.Context())
	if !ok {
		writeErr(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	revoked, err := h.logoutAll.Execute(r.Context(), userID)
	if err != nil {
		h.log.Error().Err(err).Msg("logout all failed")
		writeErr(w, http.StatusInternalServerError, "internal error")
		return
	}
	AuditLog(h.log, r, "platform.logout_all", "", userID.String(), true, "")
	h.clearAuthCookies(w)
	writeJSON(w, http.StatusOK, map[string]interface{}{"message": "logged out everywhere", "revoked": revoked})
}

// refreshTokenFrom reads the refresh token from the JSON body, falling back
// to the refresh_token cookie so browser clients work without storing it.
func (h *AuthHandler) refreshTokenFrom(r *http.Request) string {
	var body refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err == nil && body.RefreshToken != "" {
		if len(body.RefreshToken) <= MaxRefreshToken {
			return body.RefreshToken
		}
		return ""
	}
	if c, err := r.Cookie(RefreshTokenCookie); err == nil {
		return c.Value
	}
	return ""
}

func (h *AuthHandler) setAuthCookies(w http.ResponseWriter, accessToken, refreshToken string) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.AccessTokenCookie,
		Value:    accessToken,
		Path:     "/",
		MaxAge:   int(h.accessTTL.Seconds()),
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	http.SetCookie(w, &http.Cookie{
		Name:     RefreshTokenCookie,
		Value:    refreshToken,
		Path:     "/",
		MaxAge:   int(h.refreshTTL.Seconds()),
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *AuthHandler) clearAuthCookies(w http.ResponseWriter) {
	for _, name := range []string{middleware.AccessTokenCookie, RefreshTokenCookie} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			Secure:   h.cookieSecure,
			SameSite: http.SameSiteLaxMode,
		})
	}
}

func tokenResponse(accessToken, refreshToken string, expiresIn int64, user *domain.User) map[string]interface{} {
	return map[string]interface{}{
		"access_token":  accessToken,
		"refresh_token": refreshToken,
		"token_type":    "bearer",
		"expires_in":    expiresIn,
		"user":          newUserResponse(user),
	}
}
