package handlers

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/AliiiBenn/mini-auth/internal/application/maintenance"
	"github.com/AliiiBenn/mini-auth/internal/application/ports"
)

// AdminHandler serves /admin/* behind the RequireAdminSecret middleware.
// These are operational endpoints, not part of the public surface.
type AdminHandler struct {
	users    ports.UserRepository
	projects ports.ProjectRepository
	ledger   ports.TokenLedger
	log      zerolog.Logger
}

func NewAdminHandler(users ports.UserRepository, projects ports.ProjectRepository, ledger ports.TokenLedger, log zerolog.Logger) *AdminHandler {
	return &AdminHandler{users: users, projects: projects, ledger: ledger, log: log}
}

// ListUsers returns users across all scopes with limit/offset.
func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	limit, offset := parseListParams(r)
	users, err := h.users.List(r.Context(), limit, offset)
	if err != nil {
		h.log.Error().Err(err).Msg("admin list users failed")
		writeErr(w, http.StatusInternalServerError, "internal error")
		return
	}
	items := make([]userResponse, 0, len(users))
	for _, u := range users {
		items = append(items, newUserResponse(u))
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"users": items})
}

// ListProjects returns all projects with limit/offset.
func (h *AdminHandler) ListProjects(w http.ResponseWriter, r *http.Request) {
	limit, offset := parseListParams(r)
	projects, err := h.projects.List(r.Context(), limit, offset)
	if err != nil {
		h.log.Error().Err(err).Msg("admin list projects failed")
		writeErr(w, http.StatusInternalServerError, "internal error")
		return
	}
	items := make([]projectResponse, 0, len(projects))
	for _, p := range projects {
		items = append(items, newProjectResponse(p))
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"projects": items})
}

// CleanupTokens purges expired and revoked refresh tokens on demand. The
// periodic sweep does the same thing; this endpoint exists for operators.
func (h *AdminHandler) CleanupTokens(w http.ResponseWriter, r *http.Request) {
	purged, err := maintenance.RunTokenCleanup(r.Context(), h.ledger)
	if err != nil {
		h.log.Error().Err(err).Msg("admin token cleanup failed")
		writeErr(w, http.StatusInternalServerError, "internal error")
		return
	}
	h.log.Info().Int64("purged", purged).Msg("admin token cleanup done")
	writeJSON(w, http.StatusOK, map[string]interface{}{"purged": purged})
}
