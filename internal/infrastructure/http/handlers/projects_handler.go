package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/AliiiBenn/mini-auth/internal/application/ports"
	"github.com/AliiiBenn/mini-auth/internal/application/project"
	"github.com/AliiiBenn/mini-auth/internal/domain"
	"github.com/AliiiBenn/mini-auth/internal/infrastructure/http/middleware"
)

const defaultListLimit = 20
const maxListLimit = 100

// ProjectsHandler handles /projects/* for platform users. Requires JWT auth;
// mutations are owner-only, enforced by the use cases.
type ProjectsHandler struct {
	create     *project.Create
	update     *project.Update
	deleteUC   *project.Delete
	apiKeys    *project.APIKeys
	members    *project.Members
	projects   ports.ProjectRepository
	memberRepo ports.MemberRepository
	validate   *validator.Validate
	log        zerolog.Logger
}

func NewProjectsHandler(create *project.Create, update *project.Update, deleteUC *project.Delete, apiKeys *project.APIKeys, members *project.Members, projects ports.ProjectRepository, memberRepo ports.MemberRepository, log zerolog.Logger) *ProjectsHandler {
	return &ProjectsHandler{
		create:     create,
		update:     update,
		deleteUC:   deleteUC,
		apiKeys:    apiKeys,
		members:    members,
		projects:   projects,
		memberRepo: memberRepo,
		validate:   validator.New(),
		log:        log,
	}
}

type projectResponse struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	OwnerID     string  `json:"owner_id"`
	IsActive    bool    `json:"is_active"`
	CreatedAt   string  `json:"created_at"`
	UpdatedAt   *string `json:"updated_at,omitempty"`
}

type apiKeyResponse struct {
	ID         string  `json:"id"`
	ProjectID  string  `json:"project_id"`
	Key        string  `json:"key"`
	Name       string  `json:"name"`
	CreatedAt  string  `json:"created_at"`
	LastUsedAt *string `json:"last_used_at,omitempty"`
	IsActive   bool    `json:"is_active"`
}

type memberResponse struct {
	ProjectID string `json:"project_id"`
	UserID    string `json:"user_id"`
	Role      string `json:"role"`
	CreatedAt string `json:"created_at"`
}

func newProjectResponse(p *domain.Project) projectResponse {
	resp := projectResponse{
		ID:          p.ID.String(),
		Name:        p.Name,
		Description: p.Description,
		OwnerID:     p.OwnerID.String(),
		IsActive:    p.IsActive,
		CreatedAt:   p.CreatedAt.Format(timeFormat),
	}
	if p.UpdatedAt != nil {
		t := p.UpdatedAt.Format(timeFormat)
		resp.UpdatedAt = &t
	}
	return resp
}

func newAPIKeyResponse(k *domain.ProjectAPIKey) apiKeyResponse {
	resp := apiKeyResponse{
		ID:        k.ID.String(),
		ProjectID: k.ProjectID.String(),
		Key:       k.Key,
		Name:      k.Name,
		CreatedAt: k.CreatedAt.Format(timeFormat),
		IsActive:  k.IsActive,
	}
	if k.LastUsedAt != nil {
		t := k.LastUsedAt.Format(timeFormat)
		resp.LastUsedAt = &t
	}
	return resp
}

func newMemberResponse(m *domain.ProjectMember) memberResponse {
	return memberResponse{
		ProjectID: m.ProjectID.String(),
		UserID:    m.UserID.String(),
		Role:      m.Role,
		CreatedAt: m.CreatedAt.Format(timeFormat),
	}
}

type createProjectRequest struct {
	Name        string `json:"name" validate:"required,max=255"`
	Description string `json:"description" validate:"max=1024"`
}

// Create creates a project owned by the caller, with a default API key
// returned alongside so client auth works immediately.
func (h *ProjectsHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.AuthFromContext(r.Context())
	if !ok {
		writeErr(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var body createProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid body")
		return
	}
	if err := h.validate.Struct(&body); err != nil {
		writeErr(w, http.StatusBadRequest, err.Error())
		return
	}
	result, err := h.create.Execute(r.Context(), project.CreateInput{
		OwnerID:     userID,
		Name:        body.Name,
		Description: body.Description,
	})
	if err != nil {
		h.log.Error().Err(err).Msg("project create failed")
		writeErr(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"project": newProjectResponse(result.Project),
		"api_key": newAPIKeyResponse(result.APIKey),
	})
}

// List returns projects owned by the caller.
func (h *ProjectsHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.AuthFromContext(r.Context())
	if !ok {
		writeErr(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	limit, offset := parseListParams(r)
	projects, err := h.projects.ListByOwner(r.Context(), userID, limit, offset)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, "internal error")
		return
	}
	items := make([]projectResponse, 0, len(projects))
	for _, p := range projects {
		items = append(items, newProjectResponse(p))
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"projects": items})
}

// Get returns one project. Open to the owner and members.
func (h *ProjectsHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, projectID, ok := h.callerAndProject(w, r)
	if !ok {
		return
	}
	p, err := h.projects.GetByID(r.Context(), projectID)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, "internal error")
		return
	}
	if p == nil {
		writeErr(w, http.StatusNotFound, "project not found")
		return
	}
	if !p.IsOwnedBy(userID) {
		member, err := h.memberRepo.Get(r.Context(), projectID, userID)
		if err != nil {
			writeErr(w, http.StatusInternalServerError, "internal error")
			return
		}
		if member == nil {
			writeErr(w, http.StatusForbidden, "not a member of this project")
			return
		}
	}
	writeJSON(w, http.StatusOK, newProjectResponse(p))
}

type updateProjectRequest struct {
	Name        *string `json:"name" validate:"omitempty,max=255"`
	Description *string `json:"description" validate:"omitempty,max=1024"`
	IsActive    *bool   `json:"is_active"`
}

// Update mutates a project. Owner only.
func (h *ProjectsHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, projectID, ok := h.callerAndProject(w, r)
	if !ok {
		return
	}
	var body updateProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid body")
		return
	}
	if err := h.validate.Struct(&body); err != nil {
		writeErr(w, http.StatusBadRequest, err.Error())
		return
	}
	updated, err := h.update.Execute(r.Context(), project.UpdateInput{
		ProjectID:   projectID,
		ActorID:     userID,
		Name:        body.Name,
		Description: body.Description,
		IsActive:    body.IsActive,
	})
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newProjectResponse(updated))
}

// Delete removes a project and everything scoped under it. Owner only.
func (h *ProjectsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, projectID, ok := h.callerAndProject(w, r)
	if !ok {
		return
	}
	if err := h.deleteUC.Execute(r.Context(), projectID, userID); err != nil {
		writeDomainErr(w, err)
		return
	}
	AuditLog(h.log, r, "project.delete", projectID.String(), userID.String(), true, "")
	w.WriteHeader(http.StatusNoContent)
}

type createAPIKeyRequest struct {
	Name string `json:"name" validate:"required,max=255"`
}

// CreateAPIKey mints a new key for the project. Owner only.
func (h *ProjectsHandler) CreateAPIKey(w http.ResponseWriter, r *http.Request) {
	userID, projectID, ok := h.callerAndProject(w, r)
	if !ok {
		return
	}
	var body createAPIKeyRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid body")
		return
	}
	if err := h.validate.Struct(&body); err != nil {
		writeErr(w, http.StatusBadRequest, err.Error())
		return
	}
	key, err := h.apiKeys.Create(r.Context(), project.CreateAPIKeyInput{
		ProjectID: projectID,
		ActorID:   userID,
		Name:      body.Name,
	})
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, newAPIKeyResponse(key))
}

// ListAPIKeys returns the project's keys. Owner only. Pass
// ?include_inactive=true to also list deactivated keys.
func (h *ProjectsHandler) ListAPIKeys(w http.ResponseWriter, r *http.Request) {
	userID, projectID, ok := h.callerAndProject(w, r)
	if !ok {
		return
	}
	includeInactive := r.URL.Query().Get("include_inactive") == "true"
	keys, err := h.apiKeys.List(r.Context(), projectID, userID, includeInactive)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	items := make([]apiKeyResponse, 0, len(keys))
	for _, k := range keys {
		items = append(items, newAPIKeyResponse(k))
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"api_keys": items})
}

// DeactivateAPIKey disables a key. The row stays for history. Owner only.
func (h *ProjectsHandler) DeactivateAPIKey(w http.ResponseWriter, r *http.Request) {
	userID, projectID, ok := h.callerAndProject(w, r)
	if !ok {
		return
	}
	keyID, err := uuid.Parse(chi.URLParam(r, "key_id"))
	if err != nil {
		writeErr(w, http.StatusBadRequest, "invalid key id")
		return
	}
	if err := h.apiKeys.Deactivate(r.Context(), projectID, userID, domain.NewAPIKeyID(keyID)); err != nil {
		writeDomainErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListMembers returns the project's members. Owner and members.
func (h *ProjectsHandler) ListMembers(w http.ResponseWriter, r *http.Request) {
	userID, projectID, ok := h.callerAndProject(w, r)
	if !ok {
		return
	}
	members, err := h.members.List(r.Context(), projectID, userID)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	items := make([]memberResponse, 0, len(members))
	for _, m := range members {
		items = append(items, newMemberResponse(m))
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"members": items})
}

type addMemberRequest struct {
	UserID string `json:"user_id" validate:"required,uuid"`
	Role   string `json:"role" validate:"omitempty,oneof=member admin"`
}

// AddMember adds a platform user to the project. Owner only.
func (h *ProjectsHandler) AddMember(w http.ResponseWriter, r *http.Request) {
	userID, projectID, ok := h.callerAndProject(w, r)
	if !ok {
		return
	}
	var body addMemberRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid body")
		return
	}
	if err := h.validate.Struct(&body); err != nil {
		writeErr(w, http.StatusBadRequest, err.Error())
		return
	}
	targetID, err := uuid.Parse(body.UserID)
	if err != nil {
		writeErr(w, http.StatusBadRequest, "invalid user_id")
		return
	}
	member, err := h.members.Add(r.Context(), project.AddMemberInput{
		ProjectID: projectID,
		ActorID:   userID,
		UserID:    domain.NewUserID(targetID),
		Role:      body.Role,
	})
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, newMemberResponse(member))
}

type updateMemberRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=member admin"`
}

// UpdateMemberRole changes a member's role. Owner only.
func (h *ProjectsHandler) UpdateMemberRole(w http.ResponseWriter, r *http.Request) {
	userID, projectID, ok := h.callerAndProject(w, r)
	if !ok {
		return
	}
	targetID, err := uuid.Parse(chi.URLParam(r, "user_id"))
	if err != nil {
		writeErr(w, http.StatusBadRequest, "invalid user_id")
		return
	}
	var body updateMemberRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid body")
		return
	}
	if err := h.validate.Struct(&body); err != nil {
		writeErr(w, http.StatusBadRequest, err.Error())
		return
	}
	member, err := h.members.UpdateRole(r.Context(), projectID, userID, domain.NewUserID(targetID), body.Role)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newMemberResponse(member))
}

// RemoveMember removes a member from the project. Owner only.
func (h *ProjectsHandler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	userID, projectID, ok := h.callerAndProject(w, r)
	if !ok {
		return
	}
	targetID, err := uuid.Parse(chi.URLParam(r, "user_id"))
	if err != nil {
		writeErr(w, http.StatusBadRequest, "invalid user_id")
		return
	}
	if err := h.members.Remove(r.Context(), projectID, userID, domain.NewUserID(targetID)); err != nil {
		writeDomainErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// callerAndProject resolves the authenticated user and the {id} URL param.
// On failure the error has already been written.
func (h *ProjectsHandler) callerAndProject(w http.ResponseWriter, r *http.Request) (domain.UserID, domain.ProjectID, bool) {
	userID, ok := middleware.AuthFromContext(r.Context())
	if !ok {
		writeErr(w, http.StatusUnauthorized, "unauthorized")
		return domain.UserID{}, domain.ProjectID{}, false
	}
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeErr(w, http.StatusBadRequest, "invalid project id")
		return domain.UserID{}, domain.ProjectID{}, false
	}
	return userID, domain.NewProjectID(id), true
}

func parseListParams(r *http.Request) (limit, offset int) {
	limit = defaultListLimit
	if l := r.URL.Query().Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 {
			limit = n
			if limit > maxListLimit {
				limit = maxListLimit
			}
		}
	}
	if o := r.URL.Query().Get("offset"); o != "" {
		if n, err := strconv.Atoi(o); err == nil && n >= 0 {
			offset = n
		}
	}
	return limit, offset
}
