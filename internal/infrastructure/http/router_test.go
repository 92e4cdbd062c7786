package http

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AliiiBenn/mini-auth/internal/application/auth"
	"github.com/AliiiBenn/mini-auth/internal/application/project"
	"github.com/AliiiBenn/mini-auth/internal/application/user"
	infraauth "github.com/AliiiBenn/mini-auth/internal/infrastructure/auth"
	"github.com/AliiiBenn/mini-auth/internal/infrastructure/http/handlers"
	"github.com/AliiiBenn/mini-auth/internal/infrastructure/http/middleware"
	"github.com/AliiiBenn/mini-auth/internal/infrastructure/memory"
	"github.com/AliiiBenn/mini-auth/internal/infrastructure/queue"
	"github.com/AliiiBenn/mini-auth/internal/infrastructure/security"
)

const testAdminSecret = "admin-secret"

// newTestServer wires the whole stack on the in-memory adapters, mirroring
// the production wiring in cmd/mini-auth.
func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	log := zerolog.Nop()

	users := memory.NewUserRepository()
	projects := memory.NewProjectRepository()
	apiKeys := memory.NewAPIKeyRepository()
	members := memory.NewMemberRepository()
	ledger := memory.NewTokenLedger()

	hasher := security.NewArgon2Hasher(security.Argon2Params{
		Memory: 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32,
	})
	issuer := infraauth.NewTokenIssuer([]byte("test-secret"), "mini-auth")
	tasks := queue.NewInlineEnqueuer(ledger, apiKeys, log)

	accessTTL := time.Minute
	refreshTTL := time.Hour

	registerUC := auth.NewRegister(users, hasher)
	loginUC := auth.NewLogin(users, hasher, issuer, ledger, accessTTL, refreshTTL)
	refreshUC := auth.NewRefresh(users, issuer, ledger, accessTTL)
	logoutUC := auth.NewLogout(ledger)
	logoutAllUC := auth.NewLogoutAll(ledger)

	authHandler := handlers.NewAuthHandler(registerUC, loginUC, refreshUC, logoutUC, logoutAllUC, false, accessTTL, refreshTTL, log)
	clientAuthHandler := handlers.NewClientAuthHandler(registerUC, loginUC, refreshUC, logoutUC, users, log)
	usersHandler := handlers.NewUsersHandler(users, user.NewUpdateProfile(users), user.NewChangePassword(users, hasher), log)
	projectsHandler := handlers.NewProjectsHandler(
		project.NewCreate(projects, apiKeys),
		project.NewUpdate(projects),
		project.NewDelete(projects),
		project.NewAPIKeys(projects, apiKeys),
		project.NewMembers(projects, members, users),
		projects, members, log,
	)
	adminHandler := handlers.NewAdminHandler(users, projects, ledger, log)

	router := NewRouter(RouterConfig{
		AuthHandler:       authHandler,
		ClientAuthHandler: clientAuthHandler,
		UsersHandler:      usersHandler,
		ProjectsHandler:   projectsHandler,
		AdminHandler:      adminHandler,
		Tenant:            middleware.NewTenantResolver(apiKeys, projects, tasks),
		RequireJWT:        middleware.NewAuthValidator(issuer).Handler,
		RequireAdmin:      middleware.RequireAdminSecret(testAdminSecret),
		Log:               log,
	})

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

type apiClient struct {
	t       *testing.T
	baseURL string
	headers map[string]string
}

func newAPIClient(t *testing.T, srv *httptest.Server) *apiClient {
	return &apiClient{t: t, baseURL: srv.URL, headers: map[string]string{}}
}

func (c *apiClient) do(method, path, body string) (*http.Response, map[string]interface{}) {
	c.t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, c.baseURL+path, reader)
	require.NoError(c.t, err)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(c.t, err)
	defer resp.Body.Close()
	var decoded map[string]interface{}
	raw, err := io.ReadAll(resp.Body)
	require.NoError(c.t, err)
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &decoded)
	}
	return resp, decoded
}

func TestPlatformAuthFlow(t *testing.T) {
	srv := newTestServer(t)
	c := newAPIClient(t, srv)

	resp, body := c.do(http.MethodPost, "/api/v1/auth/register",
		`{"email":"owner@example.com","password":"Password1","password_confirm":"Password1","full_name":"Owner"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "owner@example.com", body["email"])
	assert.Nil(t, body["project_id"])

	resp, _ = c.do(http.MethodPost, "/api/v1/auth/register",
		`{"email":"owner@example.com","password":"Password1","password_confirm":"Password1"}`)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp, body = c.do(http.MethodPost, "/api/v1/auth/login",
		`{"email":"owner@example.com","password":"Password1"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	accessToken, _ := body["access_token"].(string)
	refreshToken, _ := body["refresh_token"].(string)
	require.NotEmpty(t, accessToken)
	require.NotEmpty(t, refreshToken)

	var cookieNames []string
	for _, ck := range resp.Cookies() {
		cookieNames = append(cookieNames, ck.Name)
	}
	assert.Contains(t, cookieNames, "access_token")
	assert.Contains(t, cookieNames, "refresh_token")

	resp, _ = c.do(http.MethodGet, "/api/v1/users/me", "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	c.headers["Authorization"] = "Bearer " + accessToken
	resp, body = c.do(http.MethodGet, "/api/v1/users/me", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "owner@example.com", body["email"])
	assert.Equal(t, "Owner", body["full_name"])

	resp, body = c.do(http.MethodPost, "/api/v1/auth/refresh",
		`{"refresh_token":"`+refreshToken+`"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, body["access_token"])
	assert.Equal(t, refreshToken, body["refresh_token"])

	resp, _ = c.do(http.MethodPost, "/api/v1/auth/logout",
		`{"refresh_token":"`+refreshToken+`"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = c.do(http.MethodPost, "/api/v1/auth/refresh",
		`{"refresh_token":"`+refreshToken+`"}`)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestClientAuthFlow(t *testing.T) {
	srv := newTestServer(t)
	owner := newAPIClient(t, srv)

	_, _ = owner.do(http.MethodPost, "/api/v1/auth/register",
		`{"email":"owner@example.com","password":"Password1","password_confirm":"Password1"}`)
	_, body := owner.do(http.MethodPost, "/api/v1/auth/login",
		`{"email":"owner@example.com","password":"Password1"}`)
	owner.headers["Authorization"] = "Bearer " + body["access_token"].(string)

	resp, body := owner.do(http.MethodPost, "/api/v1/projects", `{"name":"My App"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	apiKey := body["api_key"].(map[string]interface{})["key"].(string)
	require.NotEmpty(t, apiKey)

	client := newAPIClient(t, srv)

	// Without the project key the pool is unreachable.
	resp, _ = client.do(http.MethodPost, "/api/v1/client/auth/register",
		`{"email":"enduser@example.com","password":"Password1","password_confirm":"Password1"}`)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	client.headers["X-Project-Api-Key"] = apiKey
	resp, body = client.do(http.MethodPost, "/api/v1/client/auth/register",
		`{"email":"enduser@example.com","password":"Password1","password_confirm":"Password1"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.NotEmpty(t, body["project_id"])

	// The same email can also exist at platform scope without conflict.
	resp, _ = owner.do(http.MethodPost, "/api/v1/auth/register",
		`{"email":"enduser@example.com","password":"Password1","password_confirm":"Password1"}`)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, body = client.do(http.MethodPost, "/api/v1/client/auth/login",
		`{"email":"enduser@example.com","password":"Password1"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	clientAccess := body["access_token"].(string)
	clientRefresh := body["refresh_token"].(string)

	client.headers["Authorization"] = "Bearer " + clientAccess
	resp, body = client.do(http.MethodGet, "/api/v1/client/auth/me", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "enduser@example.com", body["email"])

	resp, body = client.do(http.MethodPost, "/api/v1/client/auth/refresh",
		`{"refresh_token":"`+clientRefresh+`"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, clientRefresh, body["refresh_token"])

	// A platform user's token does not unlock the project pool.
	platform := newAPIClient(t, srv)
	platform.headers["X-Project-Api-Key"] = apiKey
	platform.headers["Authorization"] = owner.headers["Authorization"]
	resp, _ = platform.do(http.MethodGet, "/api/v1/client/auth/me", "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestProjectEndpoints(t *testing.T) {
	srv := newTestServer(t)
	owner := newAPIClient(t, srv)

	_, _ = owner.do(http.MethodPost, "/api/v1/auth/register",
		`{"email":"owner@example.com","password":"Password1","password_confirm":"Password1"}`)
	_, body := owner.do(http.MethodPost, "/api/v1/auth/login",
		`{"email":"owner@example.com","password":"Password1"}`)
	owner.headers["Authorization"] = "Bearer " + body["access_token"].(string)

	resp, body := owner.do(http.MethodPost, "/api/v1/projects", `{"name":"My App","description":"demo"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	projectID := body["project"].(map[string]interface{})["id"].(string)

	resp, body = owner.do(http.MethodGet, "/api/v1/projects", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, body["projects"], 1)

	resp, body = owner.do(http.MethodPatch, "/api/v1/projects/"+projectID, `{"name":"Renamed"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Renamed", body["name"])

	// A second platform user cannot touch it.
	intruder := newAPIClient(t, srv)
	_, _ = intruder.do(http.MethodPost, "/api/v1/auth/register",
		`{"email":"intruder@example.com","password":"Password1","password_confirm":"Password1"}`)
	_, body = intruder.do(http.MethodPost, "/api/v1/auth/login",
		`{"email":"intruder@example.com","password":"Password1"}`)
	intruder.headers["Authorization"] = "Bearer " + body["access_token"].(string)

	resp, _ = intruder.do(http.MethodPatch, "/api/v1/projects/"+projectID, `{"name":"Mine"}`)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp, _ = intruder.do(http.MethodDelete, "/api/v1/projects/"+projectID, "")
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	// Membership: add the intruder as a member, then they can read it.
	resp, _ = intruder.do(http.MethodGet, "/api/v1/projects/"+projectID, "")
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	_, body = intruder.do(http.MethodGet, "/api/v1/users/me", "")
	intruderID := body["id"].(string)

	resp, body = owner.do(http.MethodPost, "/api/v1/projects/"+projectID+"/members",
		`{"user_id":"`+intruderID+`","role":"admin"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "admin", body["role"])

	resp, _ = intruder.do(http.MethodGet, "/api/v1/projects/"+projectID, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = owner.do(http.MethodDelete, "/api/v1/projects/"+projectID+"/members/"+intruderID, "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp, _ = intruder.do(http.MethodGet, "/api/v1/projects/"+projectID, "")
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	// API keys.
	resp, body = owner.do(http.MethodPost, "/api/v1/projects/"+projectID+"/api-keys", `{"name":"CI"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	keyID := body["id"].(string)

	resp, body = owner.do(http.MethodGet, "/api/v1/projects/"+projectID+"/api-keys", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, body["api_keys"], 2)

	resp, _ = owner.do(http.MethodDelete, "/api/v1/projects/"+projectID+"/api-keys/"+keyID, "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, body = owner.do(http.MethodGet, "/api/v1/projects/"+projectID+"/api-keys", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, body["api_keys"], 1)

	// Delete takes the project and its surface with it.
	resp, _ = owner.do(http.MethodDelete, "/api/v1/projects/"+projectID, "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp, _ = owner.do(http.MethodGet, "/api/v1/projects/"+projectID, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAdminEndpoints(t *testing.T) {
	srv := newTestServer(t)
	c := newAPIClient(t, srv)

	resp, _ := c.do(http.MethodGet, "/api/v1/admin/users", "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	c.headers["X-Admin-Secret"] = "wrong"
	resp, _ = c.do(http.MethodGet, "/api/v1/admin/users", "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	c.headers["X-Admin-Secret"] = testAdminSecret
	resp, body := c.do(http.MethodGet, "/api/v1/admin/users", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotNil(t, body["users"])

	resp, body = c.do(http.MethodPost, "/api/v1/admin/maintenance/token-cleanup", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(0), body["purged"])
}
