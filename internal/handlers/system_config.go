package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/teamhq/teamhq/internal/middleware"
	"github.com/teamhq/teamhq/internal/services"
	"github.com/teamhq/teamhq/pkg/response"
	"gorm.io/gorm"
)

type SystemConfigHandler struct {
	configService *services.SystemConfigService
}

func NewSystemConfigHandler(db *gorm.DB) *SystemConfigHandler {
	return &SystemConfigHandler{configService: services.NewSystemConfigService(db)}
}

// ListGroup returns all config entries in a group
// GET /api/system-configs/:group
func (h *SystemConfigHandler) ListGroup(c *gin.Context) {
	configs, err := h.configService.ListGroup(c.Param("group"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, configs)
}

type setConfigRequest struct {
	Key   string `json:"key" binding:"required"`
	Value string `json:"value" binding:"required"`
}

// Set updates an existing config value
// PUT /api/system-configs
func (h *SystemConfigHandler) Set(c *gin.Context) {
	var req setConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	if err := h.configService.Set(req.Key, req.Value); err != nil {
		response.Error(c, err)
		return
	}

	userID := middleware.GetUserID(c)
	services.RecordAudit(&userID, "System Config Updated",
		map[string]interface{}{"key": req.Key, "value": req.Value},
		c.ClientIP(), c.Request.UserAgent())
	middleware.MarkAudited(c)

	response.Success(c, gin.H{"message": "config updated"})
}
