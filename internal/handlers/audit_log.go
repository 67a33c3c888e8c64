package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/teamhq/teamhq/internal/services"
	"github.com/teamhq/teamhq/pkg/response"
	"gorm.io/gorm"
)

type AuditLogHandler struct {
	auditService *services.AuditService
}

func NewAuditLogHandler(db *gorm.DB) *AuditLogHandler {
	return &AuditLogHandler{auditService: services.NewAuditService(db)}
}

// List returns audit entries, newest first
// GET /api/audit-logs
func (h *AuditLogHandler) List(c *gin.Context) {
	var req services.AuditListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.auditService.List(&req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// Cleanup removes entries older than the configured retention window
// POST /api/audit-logs/cleanup
func (h *AuditLogHandler) Cleanup(c *gin.Context) {
	days := h.auditService.GetRetentionDays()
	deleted, err := h.auditService.CleanupOld(days)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"deleted": deleted, "retention_days": days})
}
