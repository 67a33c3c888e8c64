package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/teamhq/teamhq/internal/models"
	"github.com/teamhq/teamhq/internal/services"
)

// HealthHandler provides health check endpoints.
type HealthHandler struct{}

func NewHealthHandler() *HealthHandler {
	return &HealthHandler{}
}

// CheckHealth returns the health status of all subsystems.
func (h *HealthHandler) CheckHealth(c *gin.Context) {
	overall := "healthy"

	// Database check
	dbStatus := "ok"
	sqlDB, err := models.GetDB().DB()
	if err != nil {
		dbStatus = "error: " + err.Error()
		overall = "unhealthy"
	} else if err := sqlDB.Ping(); err != nil {
		dbStatus = "error: " + err.Error()
		overall = "unhealthy"
	}

	// Queue mode
	taskQueue := services.GetTaskQueue()
	queueMode := "sync"
	if taskQueue != nil && taskQueue.IsAsync() {
		queueMode = "async (Redis)"
	}

	// Pending membership request count
	var pendingCount int64
	models.GetDB().Model(&models.TeamRequest{}).
		Where("status = ?", models.RequestPending).
		Count(&pendingCount)

	c.JSON(200, gin.H{
		"status":  overall,
		"service": "teamhq",
		"components": gin.H{
			"database":         dbStatus,
			"queue_mode":       queueMode,
			"pending_requests": pendingCount,
		},
	})
}
