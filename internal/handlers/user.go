package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/teamhq/teamhq/internal/middleware"
	"github.com/teamhq/teamhq/internal/services"
	"github.com/teamhq/teamhq/pkg/response"
	"gorm.io/gorm"
)

type UserHandler struct {
	userService  *services.UserService
	authzService *services.AuthzService
}

func NewUserHandler(db *gorm.DB) *UserHandler {
	return &UserHandler{
		userService:  services.NewUserService(db),
		authzService: services.NewAuthzService(db),
	}
}

// Create adds a new local user
// POST /api/users
func (h *UserHandler) Create(c *gin.Context) {
	var req services.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	user, err := h.userService.Create(middleware.GetUserID(c), &req)
	if err != nil {
		response.Error(c, err)
		return
	}

	middleware.MarkAudited(c)
	response.Created(c, user)
}

// List returns users with optional filters
// GET /api/users
func (h *UserHandler) List(c *gin.Context) {
	var req services.UserListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.userService.List(&req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// Get returns a single user
// GET /api/users/:id
func (h *UserHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	user, err := h.userService.GetByID(id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, user)
}

// Update modifies a user's profile fields
// PUT /api/users/:id
func (h *UserHandler) Update(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req services.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	user, err := h.userService.Update(middleware.GetUserID(c), id, &req)
	if err != nil {
		response.Error(c, err)
		return
	}

	middleware.MarkAudited(c)
	response.Success(c, user)
}

type setActiveRequest struct {
	IsActive *bool `json:"is_active" binding:"required"`
}

// SetActive enables or disables a user account
// PUT /api/users/:id/active
func (h *UserHandler) SetActive(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	actingUserID := middleware.GetUserID(c)
	if id == actingUserID {
		response.Forbidden(c, "cannot modify your own account")
		return
	}

	var req setActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	if err := h.userService.SetActive(actingUserID, id, *req.IsActive); err != nil {
		response.Error(c, err)
		return
	}

	middleware.MarkAudited(c)
	response.Success(c, gin.H{"message": "user updated"})
}

// Delete removes a user and its dependent records
// DELETE /api/users/:id
func (h *UserHandler) Delete(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	actingUserID := middleware.GetUserID(c)
	if id == actingUserID {
		response.Forbidden(c, "cannot delete your own account")
		return
	}

	if err := h.userService.Delete(actingUserID, id); err != nil {
		response.Error(c, err)
		return
	}

	middleware.MarkAudited(c)
	response.Success(c, gin.H{"message": "user deleted"})
}

type changeRoleRequest struct {
	Role string `json:"role" binding:"required"`
}

// ChangeRole assigns a new role to a user, subject to the acting user's
// authority over the target.
// PUT /api/users/:id/role
func (h *UserHandler) ChangeRole(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	actingUserID := middleware.GetUserID(c)
	if id == actingUserID {
		response.Forbidden(c, "cannot change your own role")
		return
	}

	var req changeRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	if err := h.authzService.ChangeUserRole(actingUserID, id, req.Role); err != nil {
		response.Error(c, err)
		return
	}

	middleware.MarkAudited(c)
	response.Success(c, gin.H{"message": "role updated"})
}

// GetAvailableRoles lists the roles the acting user may assign to the target
// GET /api/users/:id/available-roles
func (h *UserHandler) GetAvailableRoles(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	roles, err := h.authzService.GetAvailableRolesForUser(middleware.GetUserID(c), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"roles": roles})
}

func parseIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid id")
		return 0, false
	}
	return uint(id), true
}
