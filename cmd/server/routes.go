package main

import (
	"github.com/gin-gonic/gin"
	"github.com/teamhq/teamhq/internal/handlers"
	"github.com/teamhq/teamhq/internal/middleware"
	"github.com/teamhq/teamhq/internal/models"
	"github.com/teamhq/teamhq/pkg/logger"
)

// registerRoutes sets up all HTTP routes on the given Gin engine.
func registerRoutes(r *gin.Engine, svc *appServices) {
	// Middleware
	r.Use(middleware.RequestID())
	r.Use(logger.GinLogger(), logger.GinRecovery())
	r.RedirectTrailingSlash = false
	r.RedirectFixedPath = false
	r.Use(middleware.CORS())
	r.Use(middleware.AuditFallback())

	// Rate limiter for credential endpoints
	loginLimiter := middleware.NewRateLimiter(5, 10)

	// Health check
	healthHandler := handlers.NewHealthHandler()
	r.GET("/health", healthHandler.CheckHealth)

	// API routes
	api := r.Group("/api")
	{
		// Auth routes (public, rate limited)
		auth := api.Group("/auth")
		{
			auth.POST("/login", loginLimiter.Middleware(), svc.authHandler.Login)
			auth.POST("/refresh", loginLimiter.Middleware(), svc.authHandler.Refresh)
			auth.GET("/config", svc.authHandler.GetAuthConfig)
		}

		// Protected routes
		protected := api.Group("")
		protected.Use(middleware.AuthRequired())
		{
			// Auth
			protected.GET("/auth/me", svc.authHandler.GetCurrentUser)
			protected.POST("/auth/logout", svc.authHandler.Logout)
			protected.POST("/auth/change-password", svc.authHandler.ChangePassword)

			// Teams (read for all users)
			teamHandler := handlers.NewTeamHandler(models.GetDB())
			protected.GET("/teams", teamHandler.List)
			protected.GET("/teams/:id", teamHandler.Get)

			// Roles (read for all users)
			roleHandler := handlers.NewRoleHandler(models.GetDB())
			protected.GET("/roles", roleHandler.List)
			protected.GET("/roles/:name", roleHandler.Get)

			// Membership requests. List is role-scoped inside the handler:
			// admins see all teams, managers only their own, others are refused.
			protected.POST("/team-requests", svc.teamRequestHandler.Create)
			protected.GET("/team-requests", svc.teamRequestHandler.List)
			protected.GET("/team-requests/mine", svc.teamRequestHandler.ListMine)
			protected.DELETE("/team-requests/:id", svc.teamRequestHandler.Cancel)

			// Role changes (authority checked against the acting user)
			userHandler := handlers.NewUserHandler(models.GetDB())
			protected.PUT("/users/:id/role", userHandler.ChangeRole)
			protected.GET("/users/:id/available-roles", userHandler.GetAvailableRoles)
		}

		// Manager only routes
		manager := api.Group("")
		manager.Use(middleware.AuthRequired(), middleware.ManagerRequired())
		{
			manager.POST("/team-requests/:id/process", svc.teamRequestHandler.Process)
		}

		// Admin only routes
		admin := api.Group("")
		admin.Use(middleware.AuthRequired(), middleware.AdminRequired())
		{
			// Users
			userHandler := handlers.NewUserHandler(models.GetDB())
			admin.GET("/users", userHandler.List)
			admin.GET("/users/:id", userHandler.Get)
			admin.POST("/users", userHandler.Create)
			admin.PUT("/users/:id", userHandler.Update)
			admin.PUT("/users/:id/active", userHandler.SetActive)
			admin.DELETE("/users/:id", userHandler.Delete)

			// Roles (write operations)
			roleHandler := handlers.NewRoleHandler(models.GetDB())
			admin.POST("/roles", roleHandler.Create)
			admin.DELETE("/roles/:id", roleHandler.Delete)

			// Teams (write operations and manager assignment)
			teamHandler := handlers.NewTeamHandler(models.GetDB())
			admin.POST("/teams", teamHandler.Create)
			admin.DELETE("/teams/:id", teamHandler.Delete)
			admin.POST("/teams/:id/promote", teamHandler.Promote)
			admin.POST("/teams/demote", teamHandler.Demote)
			admin.POST("/teams/:id/manager", teamHandler.AssignManager)
			admin.DELETE("/teams/:id/manager", teamHandler.RemoveManager)

			// Audit logs
			auditLogHandler := handlers.NewAuditLogHandler(models.GetDB())
			admin.GET("/audit-logs", auditLogHandler.List)
			admin.POST("/audit-logs/cleanup", auditLogHandler.Cleanup)

			// System config
			systemConfigHandler := handlers.NewSystemConfigHandler(models.GetDB())
			admin.GET("/system-configs/:group", systemConfigHandler.ListGroup)
			admin.PUT("/system-configs", systemConfigHandler.Set)
		}
	}
}
