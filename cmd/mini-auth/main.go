package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/AliiiBenn/mini-auth/internal/application/auth"
	"github.com/AliiiBenn/mini-auth/internal/application/ports"
	"github.com/AliiiBenn/mini-auth/internal/application/project"
	"github.com/AliiiBenn/mini-auth/internal/application/user"
	"github.com/AliiiBenn/mini-auth/internal/config"
	infraauth "github.com/AliiiBenn/mini-auth/internal/infrastructure/auth"
	httprouter "github.com/AliiiBenn/mini-auth/internal/infrastructure/http"
	"github.com/AliiiBenn/mini-auth/internal/infrastructure/http/handlers"
	"github.com/AliiiBenn/mini-auth/internal/infrastructure/http/middleware"
	"github.com/AliiiBenn/mini-auth/internal/infrastructure/persistence/postgres"
	"github.com/AliiiBenn/mini-auth/internal/infrastructure/queue"
	"github.com/AliiiBenn/mini-auth/internal/infrastructure/security"
)

func main() {
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, cfg.Database.URL)
	if err != nil {
		log.Fatal().Err(err).Msg("connect to database")
	}
	defer pool.Close()
	if err := pool.Ping(ctx); err != nil {
		log.Fatal().Err(err).Msg("ping database")
	}

	var redisClient *redis.Client
	if cfg.Redis.URL != "" {
		opt, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			log.Fatal().Err(err).Msg("parse REDIS_URL")
		}
		redisClient = redis.NewClient(opt)
		defer redisClient.Close()
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Warn().Err(err).Msg("redis ping failed; continuing without redis")
			redisClient = nil
		}
	}

	healthHandler := handlers.NewHealthHandler(pool, redisClient)

	userRepo := postgres.NewUserRepository(pool)
	projectRepo := postgres.NewProjectRepository(pool)
	apiKeyRepo := postgres.NewAPIKeyRepository(pool)
	memberRepo := postgres.NewMemberRepository(pool)
	tokenLedger := postgres.NewTokenLedger(pool)

	var taskEnqueuer ports.TaskEnqueuer
	var asynqWorker *queue.Worker
	if redisClient != nil {
		redisOpt, _ := redis.ParseURL(cfg.Redis.URL)
		asynqOpt := asynq.RedisClientOpt{Addr: redisOpt.Addr, Password: redisOpt.Password, DB: redisOpt.DB}
		asynqEnq := queue.NewAsynqEnqueuer(asynqOpt, log)
		defer asynqEnq.Close()
		taskEnqueuer = asynqEnq
		asynqWorker = queue.NewWorker(asynqOpt, tokenLedger, apiKeyRepo, log)
		go func() {
			if err := asynqWorker.Run(); err != nil {
				log.Warn().Err(err).Msg("asynq worker stopped")
			}
		}()
	} else {
		taskEnqueuer = queue.NewInlineEnqueuer(tokenLedger, apiKeyRepo, log)
	}

	hasher := security.NewArgon2Hasher(security.Argon2Params{
		Memory:      cfg.Argon2.Memory,
		Iterations:  cfg.Argon2.Iterations,
		Parallelism: cfg.Argon2.Parallelism,
		SaltLength:  16,
		KeyLength:   32,
	})

	issuer := infraauth.NewTokenIssuer([]byte(cfg.JWT.Secret), cfg.JWT.Issuer)
	accessTTL := time.Duration(cfg.JWT.AccessExpiry) * time.Second
	refreshTTL := time.Duration(cfg.JWT.RefreshExpiry) * time.Second

	registerUC := auth.NewRegister(userRepo, hasher)
	loginUC := auth.NewLogin(userRepo, hasher, issuer, tokenLedger, accessTTL, refreshTTL)
	refreshUC := auth.NewRefresh(userRepo, issuer, tokenLedger, accessTTL)
	logoutUC := auth.NewLogout(tokenLedger)
	logoutAllUC := auth.NewLogoutAll(tokenLedger)
	updateProfileUC := user.NewUpdateProfile(userRepo)
	changePasswordUC := user.NewChangePassword(userRepo, hasher)
	createProjectUC := project.NewCreate(projectRepo, apiKeyRepo)
	updateProjectUC := project.NewUpdate(projectRepo)
	deleteProjectUC := project.NewDelete(projectRepo)
	apiKeysUC := project.NewAPIKeys(projectRepo, apiKeyRepo)
	membersUC := project.NewMembers(projectRepo, memberRepo, userRepo)

	tenantResolver := middleware.NewTenantResolver(apiKeyRepo, projectRepo, taskEnqueuer)
	requireJWT := middleware.NewAuthValidator(issuer).Handler
	requireAdmin := middleware.RequireAdminSecret(cfg.Admin.Secret)

	ipLimit, err := middleware.NewIPRateLimiter(cfg.RateLimit.RatePerIP)
	if err != nil {
		log.Fatal().Err(err).Msg("create IP rate limiter")
	}
	projectLimit, err := middleware.NewProjectRateLimiter(cfg.RateLimit.RatePerProject)
	if err != nil {
		log.Fatal().Err(err).Msg("create project rate limiter")
	}
	secureMiddleware := middleware.NewSecure(middleware.SecureOptions(cfg.Secure.IsDevelopment))
	corsMiddleware := middleware.CORS(cfg.CORS.AllowedOrigins, nil, nil)

	cookieSecure := !cfg.Secure.IsDevelopment
	authHandler := handlers.NewAuthHandler(registerUC, loginUC, refreshUC, logoutUC, logoutAllUC, cookieSecure, accessTTL, refreshTTL, log)
	clientAuthHandler := handlers.NewClientAuthHandler(registerUC, loginUC, refreshUC, logoutUC, userRepo, log)
	usersHandler := handlers.NewUsersHandler(userRepo, updateProfileUC, changePasswordUC, log)
	projectsHandler := handlers.NewProjectsHandler(createProjectUC, updateProjectUC, deleteProjectUC, apiKeysUC, membersUC, projectRepo, memberRepo, log)
	adminHandler := handlers.NewAdminHandler(userRepo, projectRepo, tokenLedger, log)

	router := httprouter.NewRouter(httprouter.RouterConfig{
		AuthHandler:       authHandler,
		ClientAuthHandler: clientAuthHandler,
		UsersHandler:      usersHandler,
		ProjectsHandler:   projectsHandler,
		AdminHandler:      adminHandler,
		HealthHandler:     healthHandler,
		Tenant:            tenantResolver,
		RequireJWT:        requireJWT,
		RequireAdmin:      requireAdmin,
		Log:               log,
		Secure:            secureMiddleware,
		CORS:              corsMiddleware,
		IPRateLimit:       ipLimit,
		ProjectRateLimit:  projectLimit,
		APIVersion:        "v1",
		Metrics:           true,
	})

	// Periodic refresh token cleanup. With Redis the sweep runs through the
	// queue so a single worker does the work; otherwise inline.
	if cfg.Cleanup.IntervalSecs > 0 {
		interval := time.Duration(cfg.Cleanup.IntervalSecs) * time.Second
		go func() {
			ticker := time.NewTicker(interval)
			defer ticker.Stop()
			for range ticker.C {
				if err := taskEnqueuer.EnqueueTokenCleanup(context.Background()); err != nil {
					log.Warn().Err(err).Msg("schedule token cleanup")
				}
			}
		}()
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Server.Port).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown")
	}
	if asynqWorker != nil {
		asynqWorker.Shutdown()
	}
	log.Info().Msg("server stopped")
}
