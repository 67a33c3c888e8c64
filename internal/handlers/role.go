package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/teamhq/teamhq/internal/middleware"
	"github.com/teamhq/teamhq/internal/services"
	"github.com/teamhq/teamhq/pkg/response"
	"gorm.io/gorm"
)

type RoleHandler struct {
	roleService *services.RoleService
}

func NewRoleHandler(db *gorm.DB) *RoleHandler {
	return &RoleHandler{roleService: services.NewRoleService(db)}
}

// Create adds a role to the catalog
// POST /api/roles
func (h *RoleHandler) Create(c *gin.Context) {
	var req services.CreateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	role, err := h.roleService.Create(middleware.GetUserID(c), &req)
	if err != nil {
		response.Error(c, err)
		return
	}

	middleware.MarkAudited(c)
	response.Created(c, role)
}

// List returns all catalog roles
// GET /api/roles
func (h *RoleHandler) List(c *gin.Context) {
	roles, err := h.roleService.List()
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, roles)
}

// Get returns a role by name
// GET /api/roles/:name
func (h *RoleHandler) Get(c *gin.Context) {
	role, err := h.roleService.GetByName(c.Param("name"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, role)
}

// Delete removes a role that is not assigned to any user
// DELETE /api/roles/:id
func (h *RoleHandler) Delete(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	if err := h.roleService.Delete(middleware.GetUserID(c), id); err != nil {
		response.Error(c, err)
		return
	}

	middleware.MarkAudited(c)
	response.Success(c, gin.H{"message": "role deleted"})
}
