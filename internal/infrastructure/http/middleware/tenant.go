package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/AliiiBenn/mini-auth/internal/application/ports"
)

// APIKeyHeader carries the project API key on client-facing routes.
const APIKeyHeader = "X-Project-Api-Key"

// TenantResolver validates the project API key and sets the owning project in
// context. A key only resolves while both the key and its project are active.
type TenantResolver struct {
	apiKeys  ports.APIKeyRepository
	projects ports.ProjectRepository
	tasks    ports.TaskEnqueuer
}

func NewTenantResolver(apiKeys ports.APIKeyRepository, projects ports.ProjectRepository, tasks ports.TaskEnqueuer) *TenantResolver {
	return &TenantResolver{apiKeys: apiKeys, projects: projects, tasks: tasks}
}

func (m *TenantResolver) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Header.Get(APIKeyHeader)
		if key == "" {
			writeTenantErr(w, "missing project API key")
			return
		}
		apiKey, err := m.apiKeys.GetByKey(r.Context(), key)
		if err != nil {
			writeTenantInternalErr(w)
			return
		}
		if apiKey == nil || !apiKey.IsActive {
			writeTenantErr(w, "invalid project API key")
			return
		}
		project, err := m.projects.GetByID(r.Context(), apiKey.ProjectID)
		if err != nil {
			writeTenantInternalErr(w)
			return
		}
		if project == nil || !project.IsActive {
			writeTenantErr(w, "invalid project API key")
			return
		}
		// Best effort; a stale last_used_at is not worth failing the request.
		_ = m.tasks.EnqueueAPIKeyTouch(r.Context(), key)
		ctx := WithProject(r.Context(), project)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func writeTenantErr(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message, "code": "unauthorized"})
}

func writeTenantInternalErr(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusInternalServerError)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": "internal error", "code": "internal_error"})
}
