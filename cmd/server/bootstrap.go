package main

import (
	"github.com/teamhq/teamhq/internal/config"
	"github.com/teamhq/teamhq/internal/handlers"
	"github.com/teamhq/teamhq/internal/models"
	"github.com/teamhq/teamhq/internal/services"
	"github.com/teamhq/teamhq/internal/utils"
	"github.com/teamhq/teamhq/pkg/logger"
)

// appServices holds all initialized services and handlers needed by the application.
type appServices struct {
	taskQueue          services.TaskQueue
	worker             *services.Worker
	authHandler        *handlers.AuthHandler
	teamRequestHandler *handlers.TeamRequestHandler
}

// bootstrap initializes all application dependencies: database, services, schedulers.
func bootstrap(cfg *config.Config) *appServices {
	utils.SetJWTSecret(cfg.JWT.Secret)

	// Initialize database
	if err := models.InitDB(&cfg.Database); err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}

	// Auto migrate database
	if err := models.AutoMigrate(); err != nil {
		logger.Fatalf("Failed to migrate database: %v", err)
	}

	// Seed default roles and system configs
	if err := models.SeedDefaultData(); err != nil {
		logger.Warn().Err(err).Msg("Failed to seed default data")
	}

	// Initialize audit recorder and retention scheduler
	services.InitAuditRecorder(models.GetDB())
	services.StartAuditCleanupScheduler(models.GetDB())

	// Initialize task queue (uses Redis if enabled, otherwise sync mode)
	notificationService := services.NewNotificationService(models.GetDB(), cfg.Notify.WebhookURL)
	taskQueue := services.InitTaskQueue(cfg)
	if syncQueue, ok := taskQueue.(*services.SyncQueue); ok {
		syncQueue.SetProcessor(notificationService.ProcessNotifyTask)
	}

	// Start async worker if Redis is enabled
	var worker *services.Worker
	if cfg.Redis.Enabled {
		worker = services.InitWorker(&cfg.Redis)
		if worker != nil {
			worker.SetProcessor(notificationService.ProcessNotifyTask)
			worker.Start()
		}
	}

	teamRequestHandler := handlers.NewTeamRequestHandler(models.GetDB())
	teamRequestHandler.SetQueue(taskQueue)

	// Create default admin user
	authHandler := handlers.NewAuthHandler(models.GetDB(), cfg)
	if err := authHandler.CreateAdminIfNotExists(); err != nil {
		logger.Warn().Err(err).Msg("Failed to create admin user")
	}

	return &appServices{
		taskQueue:          taskQueue,
		worker:             worker,
		authHandler:        authHandler,
		teamRequestHandler: teamRequestHandler,
	}
}

// shutdown gracefully stops all services.
func (s *appServices) shutdown() {
	services.StopAuditCleanupScheduler()
	logger.Info().Msg("All schedulers stopped")

	if s.worker != nil {
		s.worker.Stop()
	}
	if s.taskQueue != nil {
		s.taskQueue.Close()
	}
}
