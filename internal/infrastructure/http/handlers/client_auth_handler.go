package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/AliiiBenn/mini-auth/internal/application/auth"
	"github.com/AliiiBenn/mini-auth/internal/application/ports"
	"github.com/AliiiBenn/mini-auth/internal/infrastructure/http/middleware"
)

// ClientAuthHandler handles /client/auth/* for end-users of a project. Every
// route runs behind TenantResolver, so the project is always in context and
// users are created and looked up in that project's pool.
type ClientAuthHandler struct {
	register *auth.Register
	login    *auth.Login
	refresh  *auth.Refresh
	logout   *auth.Logout
	users    ports.UserRepository
	validate *validator.Validate
	log      zerolog.Logger
}

func NewClientAuthHandler(register *auth.Register, login *auth.Login, refresh *auth.Refresh, logout *auth.Logout, users ports.UserRepository, log zerolog.Logger) *ClientAuthHandler {
	return &ClientAuthHandler{
		register: register,
		login:    login,
		refresh:  refresh,
		logout:   logout,
		users:    users,
		validate: validator.New(),
		log:      log,
	}
}

func (h *ClientAuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	project := middleware.ProjectFromContext(r.Context())
	if project == nil {
		writeErr(w, http.StatusUnauthorized, "project required")
		return
	}
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
	projectID := project.ID
	result, err := h.register.Execute(r.Context(), auth.RegisterInput{
		ProjectID:       &projectID,
		Email:           email,
		FullName:        body.FullName,
		Password:        password,
		PasswordConfirm: SanitizePassword(body.PasswordConfirm),
	})
	if err != nil {
		AuditLog(h.log, r, "client.register", project.ID.String(), "", false, err.Error())
		middleware.RecordAuthAttempt("register", project.ID.String(), false)
		writeDomainErr(w, err)
		return
	}
	AuditLog(h.log, r, "client.register", project.ID.String(), result.User.ID.String(), true, "")
	middleware.RecordAuthAttempt("register", project.ID.String(), true)
	writeJSON(w, http.StatusCreated, newUserResponse(result.User))
}

func (h *ClientAuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	project := middleware.ProjectFromContext(r.Context())
	if project == nil {
		writeErr(w, http.StatusUnauthorized, "project required")
		return
	}
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
	projectID := project.ID
	result, err := h.login.Execute(r.Context(), auth.LoginInput{
		ProjectID: &projectID,
		Email:     email,
		Password:  password,
		UserAgent: r.UserAgent(),
	})
	if err != nil {
		AuditLog(h.log, r, "client.login", project.ID.String(), "", false, err.Error())
		middleware.RecordAuthAttempt("login", project.ID.String(), false)
		writeDomainErr(w, err)
		return
	}
	AuditLog(h.log, r, "client.login", project.ID.String(), result.User.ID.String(), true, "")
	middleware.RecordAuthAttempt("login", project.ID.String(), true)
	writeJSON(w, http.StatusOK, tokenResponse(result.AccessToken, result.RefreshToken, result.ExpiresIn, result.User))
}

func (h *ClientAuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	project := middleware.ProjectFromContext(r.Context())
	if project == nil {
		writeErr(w, http.StatusUnauthorized, "project required")
		return
	}
	var body refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.RefreshToken == "" {
		writeErrCode(w, http.StatusUnauthorized, ErrCodeInvalidToken, "missing refresh token")
		return
	}
	projectID := project.ID
	result, err := h.refresh.Execute(r.Context(), auth.RefreshInput{
		RefreshToken: body.RefreshToken,
		ProjectID:    &projectID,
	})
	if err != nil {
		AuditLog(h.log, r, "client.refresh", project.ID.String(), "", false, err.Error())
		middleware.RecordAuthAttempt("refresh", project.ID.String(), false)
		writeDomainErr(w, err)
		return
	}
	AuditLog(h.log, r, "client.refresh", project.ID.String(), result.User.ID.String(), true, "")
	middleware.RecordAuthAttempt("refresh", project.ID.String(), true)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"access_token":  result.AccessToken,
		"refresh_token": result.RefreshToken,
		"expires_in":    result.ExpiresIn,
	})
}

func (h *ClientAuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	project := middleware.ProjectFromContext(r.Context())
	if project == nil {
		writeErr(w, http.StatusUnauthorized, "project required")
		return
	}
	var body refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid body")
		return
	}
	revoked, err := h.logout.Execute(r.Context(), body.RefreshToken)
	if err != nil {
		h.log.Error().Err(err).Msg("client logout failed")
		writeErr(w, http.StatusInternalServerError, "internal error")
		return
	}
	AuditLog(h.log, r, "client.logout", project.ID.String(), "", true, "")
	writeJSON(w, http.StatusOK, map[string]interface{}{"message": "logged out", "revoked": revoked})
}

// Me returns the authenticated end-user. Requires AuthValidator after
// TenantResolver; the user must belong to the resolved project.
func (h *ClientAuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	project := middleware.ProjectFromContext(r.Context())
	if project == nil {
		writeErr(w, http.StatusUnauthorized, "project required")
		return
	}
	userID, ok := middleware.AuthFromContext(r.Context())
	if !ok {
		writeErr(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	u, err := h.users.GetByID(r.Context(), userID)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, "internal error")
		return
	}
	if u == nil || !u.InProject(project.ID) {
		// A platform token or a token from another project does not unlock
		// this pool.
		writeErrCode(w, http.StatusUnauthorized, ErrCodeInvalidToken, "token does not match project")
		return
	}
	writeJSON(w, http.StatusOK, newUserResponse(u))
}
