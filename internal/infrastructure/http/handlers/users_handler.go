package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/AliiiBenn/mini-auth/internal/application/ports"
	"github.com/AliiiBenn/mini-auth/internal/application/user"
	"github.com/AliiiBenn/mini-auth/internal/domain"
	"github.com/AliiiBenn/mini-auth/internal/infrastructure/http/middleware"
)

// UsersHandler handles /users/* for platform users. Requires JWT auth.
type UsersHandler struct {
	users          ports.UserRepository
	updateProfile  *user.UpdateProfile
	changePassword *user.ChangePassword
	validate       *validator.Validate
	log            zerolog.Logger
}

func NewUsersHandler(users ports.UserRepository, updateProfile *user.UpdateProfile, changePassword *user.ChangePassword, log zerolog.Logger) *UsersHandler {
	return &UsersHandler{
		users:          users,
		updateProfile:  updateProfile,
		changePassword: changePassword,
		validate:       validator.New(),
		log:            log,
	}
}

// userResponse is the JSON shape for a user (no password hash).
type userResponse struct {
	ID        string  `json:"id"`
	ProjectID *string `json:"project_id,omitempty"` // absent for platform users
	Email     string  `json:"email"`
	FullName  string  `json:"full_name,omitempty"`
	IsActive  bool    `json:"is_active"`
	CreatedAt string  `json:"created_at"`
	UpdatedAt *string `json:"updated_at,omitempty"`
}

func newUserResponse(u *domain.User) userResponse {
	resp := userResponse{
		ID:        u.ID.String(),
		Email:     u.Email,
		FullName:  u.FullName,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt.Format(timeFormat),
	}
	if u.ProjectID != nil {
		pid := u.ProjectID.String()
		resp.ProjectID = &pid
	}
	if u.UpdatedAt != nil {
		t := u.UpdatedAt.Format(timeFormat)
		resp.UpdatedAt = &t
	}
	return resp
}

// Me returns the current user from the JWT. Requires AuthValidator.
func (h *UsersHandler) Me(w http.ResponseWriter, r *http.Request) {
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
	if u == nil {
		writeErr(w, http.StatusNotFound, "user not found")
		return
	}
	writeJSON(w, http.StatusOK, newUserResponse(u))
}

type updateMeRequest struct {
	FullName *string `json:"full_name" validate:"omitempty,max=255"`
	Email    *string `json:"email" validate:"omitempty,email,max=254"`
}

// UpdateMe updates the current user's profile fields.
func (h *UsersHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.AuthFromContext(r.Context())
	if !ok {
		writeErr(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var body updateMeRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid body")
		return
	}
	if err := h.validate.Struct(&body); err != nil {
		writeErr(w, http.StatusBadRequest, err.Error())
		return
	}
	if body.Email != nil {
		email := SanitizeEmail(*body.Email)
		if email == "" {
			writeErr(w, http.StatusBadRequest, "invalid email")
			return
		}
		body.Email = &email
	}
	updated, err := h.updateProfile.Execute(r.Context(), user.UpdateProfileInput{
		UserID:   userID,
		FullName: body.FullName,
		Email:    body.Email,
	})
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newUserResponse(updated))
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required,max=128"`
	NewPassword     string `json:"new_password" validate:"required,min=8,max=128"`
}

// ChangePassword replaces the current user's password.
func (h *UsersHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.AuthFromContext(r.Context())
	if !ok {
		writeErr(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var body changePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid body")
		return
	}
	if err := h.validate.Struct(&body); err != nil {
		writeErr(w, http.StatusBadRequest, err.Error())
		return
	}
	err := h.changePassword.Execute(r.Context(), user.ChangePasswordInput{
		UserID:          userID,
		CurrentPassword: SanitizePassword(body.CurrentPassword),
		NewPassword:     SanitizePassword(body.NewPassword),
	})
	if err != nil {
		AuditLog(h.log, r, "user.change_password", "", userID.String(), false, err.Error())
		writeDomainErr(w, err)
		return
	}
	AuditLog(h.log, r, "user.change_password", "", userID.String(), true, "")
	writeJSON(w, http.StatusOK, map[string]string{"message": "password changed"})
}

// Get returns one user by ID. Requires JWT auth.
func (h *UsersHandler) Get(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.AuthFromContext(r.Context()); !ok {
		writeErr(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	idStr := chi.URLParam(r, "id")
	id, err := uuid.Parse(idStr)
	if err != nil {
		writeErr(w, http.StatusBadRequest, "invalid user id")
		return
	}
	u, err := h.users.GetByID(r.Context(), domain.NewUserID(id))
	if err != nil {
		writeErr(w, http.StatusInternalServerError, "internal error")
		return
	}
	if u == nil {
		writeErr(w, http.StatusNotFound, "user not found")
		return
	}
	writeJSON(w, http.StatusOK, newUserResponse(u))
}
