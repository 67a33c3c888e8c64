package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/teamhq/teamhq/internal/middleware"
	"github.com/teamhq/teamhq/internal/services"
	"github.com/teamhq/teamhq/pkg/response"
	"gorm.io/gorm"
)

type TeamHandler struct {
	teamService *services.TeamService
}

func NewTeamHandler(db *gorm.DB) *TeamHandler {
	return &TeamHandler{teamService: services.NewTeamService(db)}
}

// Create adds a new team
// POST /api/teams
func (h *TeamHandler) Create(c *gin.Context) {
	var req services.CreateTeamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	team, err := h.teamService.Create(middleware.GetUserID(c), &req)
	if err != nil {
		response.Error(c, err)
		return
	}

	middleware.MarkAudited(c)
	response.Created(c, team)
}

// List returns all teams
// GET /api/teams
func (h *TeamHandler) List(c *gin.Context) {
	teams, err := h.teamService.List()
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, teams)
}

// Get returns a team with its members
// GET /api/teams/:id
func (h *TeamHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	team, err := h.teamService.GetByID(id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, team)
}

// Delete removes an empty team
// DELETE /api/teams/:id
func (h *TeamHandler) Delete(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	if err := h.teamService.Delete(middleware.GetUserID(c), id); err != nil {
		response.Error(c, err)
		return
	}

	middleware.MarkAudited(c)
	response.Success(c, gin.H{"message": "team deleted"})
}

type promoteRequest struct {
	UserID uint `json:"user_id" binding:"required"`
}

// Promote elevates a user to manager of the team
// POST /api/teams/:id/promote
func (h *TeamHandler) Promote(c *gin.Context) {
	teamID, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req promoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	if err := h.teamService.PromoteToManager(middleware.GetUserID(c), req.UserID, teamID); err != nil {
		response.Error(c, err)
		return
	}

	middleware.MarkAudited(c)
	response.Success(c, gin.H{"message": "user promoted to manager"})
}

type demoteRequest struct {
	UserID uint `json:"user_id" binding:"required"`
}

// Demote returns a manager to the regular user role
// POST /api/teams/demote
func (h *TeamHandler) Demote(c *gin.Context) {
	var req demoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	if err := h.teamService.DemoteManager(middleware.GetUserID(c), req.UserID); err != nil {
		response.Error(c, err)
		return
	}

	middleware.MarkAudited(c)
	response.Success(c, gin.H{"message": "manager demoted"})
}

type assignManagerRequest struct {
	UserID uint `json:"user_id" binding:"required"`
}

// AssignManager makes an existing member the team's manager
// POST /api/teams/:id/manager
func (h *TeamHandler) AssignManager(c *gin.Context) {
	teamID, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req assignManagerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	if err := h.teamService.AssignManager(teamID, req.UserID); err != nil {
		response.Error(c, err)
		return
	}

	middleware.MarkAudited(c)
	response.Success(c, gin.H{"message": "manager assigned"})
}

// RemoveManager clears the team's manager slot
// DELETE /api/teams/:id/manager
func (h *TeamHandler) RemoveManager(c *gin.Context) {
	teamID, ok := parseIDParam(c)
	if !ok {
		return
	}

	if err := h.teamService.RemoveManager(teamID); err != nil {
		response.Error(c, err)
		return
	}

	middleware.MarkAudited(c)
	response.Success(c, gin.H{"message": "manager removed"})
}
