// Package http wires handlers and middleware into the chi router.
package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimid "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/AliiiBenn/mini-auth/internal/infrastructure/http/handlers"
	"github.com/AliiiBenn/mini-auth/internal/infrastructure/http/middleware"
)

type RouterConfig struct {
	AuthHandler       *handlers.AuthHandler
	ClientAuthHandler *handlers.ClientAuthHandler
	UsersHandler      *handlers.UsersHandler
	ProjectsHandler   *handlers.ProjectsHandler
	AdminHandler      *handlers.AdminHandler
	HealthHandler     *handlers.HealthHandler
	Tenant            *middleware.TenantResolver
	RequireJWT        func(http.Handler) http.Handler // JWT auth for /users/*, /projects/* etc.
	RequireAdmin      func(http.Handler) http.Handler // X-Admin-Secret for /admin/*
	Log               zerolog.Logger
	Secure            func(http.Handler) http.Handler
	CORS              func(http.Handler) http.Handler
	IPRateLimit       func(http.Handler) http.Handler
	ProjectRateLimit  func(http.Handler) http.Handler
	APIVersion        string
	Metrics           bool // expose /metrics
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(chimid.RequestID)
	r.Use(chimid.RealIP)
	r.Use(loggerMiddleware(cfg.Log))
	r.Use(chimid.Recoverer)
	if cfg.Metrics {
		r.Use(middleware.PrometheusMiddleware)
	}
	if cfg.Secure != nil {
		r.Use(cfg.Secure)
	}
	if cfg.CORS != nil {
		r.Use(cfg.CORS)
	}
	if cfg.APIVersion != "" {
		r.Use(middleware.APIVersion(cfg.APIVersion))
	}
	if cfg.IPRateLimit != nil {
		r.Use(cfg.IPRateLimit)
	}

	if cfg.HealthHandler != nil {
		r.Get("/health", cfg.HealthHandler.ServeHTTP)
	} else {
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"status":"ok"}`))
		})
	}
	if cfg.Metrics {
		r.Handle("/metrics", promhttp.Handler())
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(chimid.AllowContentType("application/json"))

		// Platform auth: no project key involved.
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", cfg.AuthHandler.Register)
			r.Post("/login", cfg.AuthHandler.Login)
			r.Post("/refresh", cfg.AuthHandler.Refresh)
			r.Post("/logout", cfg.AuthHandler.Logout)
			if cfg.RequireJWT != nil {
				r.Group(func(r chi.Router) {
					r.Use(cfg.RequireJWT)
					r.Post("/logout-all", cfg.AuthHandler.LogoutAll)
				})
			}
		})

		// Client auth: every route behind the project API key.
		if cfg.ClientAuthHandler != nil && cfg.Tenant != nil {
			r.Route("/client/auth", func(r chi.Router) {
				r.Use(cfg.Tenant.Handler)
				if cfg.ProjectRateLimit != nil {
					r.Use(cfg.ProjectRateLimit)
				}
				r.Post("/register", cfg.ClientAuthHandler.Register)
				r.Post("/login", cfg.ClientAuthHandler.Login)
				r.Post("/refresh", cfg.ClientAuthHandler.Refresh)
				r.Post("/logout", cfg.ClientAuthHandler.Logout)
				if cfg.RequireJWT != nil {
					r.Group(func(r chi.Router) {
						r.Use(cfg.RequireJWT)
						r.Get("/me", cfg.ClientAuthHandler.Me)
					})
				}
			})
		}

		if cfg.UsersHandler != nil && cfg.RequireJWT != nil {
			r.Route("/users", func(r chi.Router) {
				r.Use(cfg.RequireJWT)
				r.Get("/me", cfg.UsersHandler.Me)
				r.Patch("/me", cfg.UsersHandler.UpdateMe)
				r.Post("/me/password", cfg.UsersHandler.ChangePassword)
				r.Get("/{id}", cfg.UsersHandler.Get)
			})
		}

		if cfg.ProjectsHandler != nil && cfg.RequireJWT != nil {
			r.Route("/projects", func(r chi.Router) {
				r.Use(cfg.RequireJWT)
				r.Post("/", cfg.ProjectsHandler.Create)
				r.Get("/", cfg.ProjectsHandler.List)
				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", cfg.ProjectsHandler.Get)
					r.Patch("/", cfg.ProjectsHandler.Update)
					r.Delete("/", cfg.ProjectsHandler.Delete)
					r.Post("/api-keys", cfg.ProjectsHandler.CreateAPIKey)
					r.Get("/api-keys", cfg.ProjectsHandler.ListAPIKeys)
					r.Delete("/api-keys/{key_id}", cfg.ProjectsHandler.DeactivateAPIKey)
					r.Get("/members", cfg.ProjectsHandler.ListMembers)
					r.Post("/members", cfg.ProjectsHandler.AddMember)
					r.Patch("/members/{user_id}", cfg.ProjectsHandler.UpdateMemberRole)
					r.Delete("/members/{user_id}", cfg.ProjectsHandler.RemoveMember)
				})
			})
		}

		if cfg.AdminHandler != nil && cfg.RequireAdmin != nil {
			r.Route("/admin", func(r chi.Router) {
				r.Use(cfg.RequireAdmin)
				r.Get("/users", cfg.AdminHandler.ListUsers)
				r.Get("/projects", cfg.AdminHandler.ListProjects)
				r.Post("/maintenance/token-cleanup", cfg.AdminHandler.CleanupTokens)
			})
		}
	})

	return r
}

func loggerMiddleware(log zerolog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reqID := chimid.GetReqID(r.Context())
			log.Info().
				Str("request_id", reqID).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Msg("request")
			next.ServeHTTP(w, r)
		})
	}
}
