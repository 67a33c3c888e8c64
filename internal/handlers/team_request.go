package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/teamhq/teamhq/internal/middleware"
	"github.com/teamhq/teamhq/internal/models"
	"github.com/teamhq/teamhq/internal/services"
	"github.com/teamhq/teamhq/pkg/response"
	"gorm.io/gorm"
)

type TeamRequestHandler struct {
	requestService *services.TeamRequestService
}

func NewTeamRequestHandler(db *gorm.DB) *TeamRequestHandler {
	return &TeamRequestHandler{requestService: services.NewTeamRequestService(db)}
}

// SetQueue wires the notification queue used after decisions
func (h *TeamRequestHandler) SetQueue(queue services.TaskQueue) {
	h.requestService.SetQueue(queue)
}

type createTeamRequestRequest struct {
	TeamID  uint   `json:"team_id" binding:"required"`
	Message string `json:"message" binding:"max=500"`
}

// Create files a membership request for the current user
// POST /api/team-requests
func (h *TeamRequestHandler) Create(c *gin.Context) {
	var req createTeamRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	request, err := h.requestService.Create(middleware.GetUserID(c), req.TeamID, req.Message)
	if err != nil {
		response.Error(c, err)
		return
	}

	middleware.MarkAudited(c)
	response.Created(c, request)
}

// List returns membership requests. Admins see all teams; managers are
// restricted to their own team regardless of the requested filter.
// GET /api/team-requests
func (h *TeamRequestHandler) List(c *gin.Context) {
	var req services.TeamRequestListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	switch middleware.GetRole(c) {
	case models.RoleAdmin:
	case models.RoleManager:
		teamID := middleware.GetTeamID(c)
		if teamID == nil {
			response.Forbidden(c, "manager has no team scope")
			return
		}
		req.TeamID = teamID
	default:
		response.Forbidden(c, "insufficient permission")
		return
	}

	result, err := h.requestService.List(&req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// ListMine returns the current user's membership requests
// GET /api/team-requests/mine
func (h *TeamRequestHandler) ListMine(c *gin.Context) {
	userID := middleware.GetUserID(c)
	req := services.TeamRequestListRequest{UserID: &userID, Status: c.Query("status")}

	result, err := h.requestService.List(&req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

type processRequestRequest struct {
	Approve *bool  `json:"approve" binding:"required"`
	Notes   string `json:"notes" binding:"max=500"`
}

// Process approves or rejects a pending request
// POST /api/team-requests/:id/process
func (h *TeamRequestHandler) Process(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req processRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	request, err := h.requestService.Process(id, middleware.GetUserID(c), *req.Approve, req.Notes)
	if err != nil {
		response.Error(c, err)
		return
	}

	middleware.MarkAudited(c)
	response.Success(c, request)
}

// Cancel withdraws the current user's own pending request
// DELETE /api/team-requests/:id
func (h *TeamRequestHandler) Cancel(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	if err := h.requestService.Cancel(id, middleware.GetUserID(c)); err != nil {
		response.Error(c, err)
		return
	}

	middleware.MarkAudited(c)
	response.Success(c, gin.H{"message": "request canceled"})
}
