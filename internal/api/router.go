package api

import (
	"net/http"

	"github.com/burnsbros/taskdeck/internal/api/handler"
	customMiddleware "github.com/burnsbros/taskdeck/internal/api/middleware"
	"github.com/burnsbros/taskdeck/internal/config"
	"github.com/burnsbros/taskdeck/internal/email"
	"github.com/burnsbros/taskdeck/internal/repository/postgres"
	"github.com/burnsbros/taskdeck/internal/repository/redis"
	"github.com/burnsbros/taskdeck/internal/security"
	"github.com/burnsbros/taskdeck/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog/log"
)

// NewRouter creates and configures the HTTP router
func NewRouter(cfg *config.Config, db *postgres.DB, redisClient *redis.Client) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(customMiddleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(cfg.Server.MiddlewareTimeout))

	// CORS
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Security components
	jwtManager := security.NewJWTManager(
		cfg.Auth.JWTSecret,
		cfg.Auth.AccessTokenTTL,
		cfg.Auth.RefreshTokenTTL,
	)
	encryptor, err := security.NewEncryptor(security.KeyFromSecret(cfg.Auth.JWTSecret))
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize encryptor")
	}

	// Repositories
	userRepo := postgres.NewUserRepository(db)
	workspaceRepo := postgres.NewWorkspaceRepository(db)
	projectRepo := postgres.NewProjectRepository(db)
	taskRepo := postgres.NewTaskRepository(db)
	commentRepo := postgres.NewCommentRepository(db)
	notificationRepo := postgres.NewNotificationRepository(db)

	// Redis-backed rate limiter and limits cache
	rateLimiter := redis.NewRateLimiter(
		redisClient,
		cfg.Security.RateLimit.RequestsPerMinute,
		cfg.Security.RateLimit.Burst,
	)
	limitsCache := redis.NewLimitsCache(redisClient)

	// Outbound email
	var sender email.Sender
	if cfg.Email.Enabled() {
		sender = email.NewMailgunSender(cfg.Email)
	} else {
		log.Warn().Msg("Email not configured, invitation mails disabled")
		sender = email.NopSender{}
	}

	// Services
	notificationService := service.NewNotificationService(notificationRepo)
	workspaceService := service.NewWorkspaceService(workspaceRepo, projectRepo, taskRepo, limitsCache, cfg.Workspace)
	invitationService := service.NewInvitationService(workspaceRepo, encryptor, sender, cfg.Workspace.InvitationTTL, cfg.Email.BaseURL)
	authService := service.NewAuthService(userRepo, invitationService, jwtManager)
	projectService := service.NewProjectService(projectRepo, workspaceRepo, taskRepo)
	taskService := service.NewTaskService(taskRepo, projectRepo, workspaceRepo, userRepo, notificationService)
	commentService := service.NewCommentService(commentRepo, taskRepo, projectRepo, workspaceRepo, notificationService)

	// Handlers
	authHandler := handler.NewAuthHandler(authService, workspaceService)
	workspaceHandler := handler.NewWorkspaceHandler(workspaceService, invitationService, authService)
	projectHandler := handler.NewProjectHandler(projectService)
	taskHandler := handler.NewTaskHandler(taskService)
	commentHandler := handler.NewCommentHandler(commentService)
	notificationHandler := handler.NewNotificationHandler(notificationService)

	authMiddleware := customMiddleware.NewAuthMiddleware(jwtManager)
	rateLimitMiddleware := customMiddleware.NewRateLimitMiddleware(rateLimiter)

	r.Route("/api", func(r chi.Router) {
		// Health
		r.Get("/health", handler.HealthCheck)
		r.Get("/ready", handler.ReadyCheck(db))

		// Auth routes (public)
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)
			r.Post("/refresh", authHandler.Refresh)
		})

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)
			r.Use(rateLimitMiddleware.Limit)

			r.Get("/auth/me", authHandler.Me)

			r.Route("/workspaces", func(r chi.Router) {
				r.Get("/", workspaceHandler.List)
				r.Post("/", workspaceHandler.Create)
				r.Post("/ensure-default", workspaceHandler.EnsureDefault)
				r.Get("/limits", workspaceHandler.Limits)

				r.Route("/{workspaceID}", func(r chi.Router) {
					r.Use(customMiddleware.WorkspaceContext)

					r.Get("/", workspaceHandler.Get)
					r.Patch("/", workspaceHandler.Update)
					r.Delete("/", workspaceHandler.Delete)

					r.Route("/members", func(r chi.Router) {
						r.Get("/", workspaceHandler.ListMembers)
						r.Post("/", workspaceHandler.InviteMember)
						r.Delete("/{userID}", workspaceHandler.RemoveMember)
						r.Patch("/{userID}/role", workspaceHandler.UpdateMemberRole)
					})
				})
			})

			r.Route("/projects", func(r chi.Router) {
				r.Post("/", projectHandler.Create)

				r.Route("/{projectID}", func(r chi.Router) {
					r.Get("/", projectHandler.Get)
					r.Put("/", projectHandler.Update)
					r.Delete("/", projectHandler.Delete)

					r.Route("/folders", func(r chi.Router) {
						r.Post("/", projectHandler.CreateFolder)
						r.Put("/{folderID}", projectHandler.UpdateFolder)
						r.Delete("/{folderID}", projectHandler.DeleteFolder)
					})
				})
			})

			r.Route("/tasks", func(r chi.Router) {
				r.Post("/", taskHandler.Create)
				r.Delete("/", taskHandler.BulkDelete)

				r.Route("/{taskID}", func(r chi.Router) {
					r.Get("/", taskHandler.Get)
					r.Put("/", taskHandler.Update)
				})
			})

			r.Route("/comments", func(r chi.Router) {
				r.Post("/", commentHandler.Create)
				r.Get("/task/{taskID}", commentHandler.ListByTask)
				r.Put("/{commentID}", commentHandler.Update)
				r.Delete("/{commentID}", commentHandler.Delete)
			})

			r.Route("/notifications", func(r chi.Router) {
				r.Get("/", notificationHandler.List)
				r.Patch("/read-all", notificationHandler.MarkAllRead)
				r.Patch("/{notificationID}/read", notificationHandler.MarkRead)
				r.Delete("/{notificationID}", notificationHandler.Delete)
			})
		})
	})

	return r
}
