package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/teamhq/teamhq/internal/config"
	"github.com/teamhq/teamhq/internal/middleware"
	"github.com/teamhq/teamhq/internal/services"
	"github.com/teamhq/teamhq/pkg/response"
	"gorm.io/gorm"
)

type AuthHandler struct {
	authService *services.AuthService
}

func NewAuthHandler(db *gorm.DB, cfg *config.Config) *AuthHandler {
	return &AuthHandler{
		authService: services.NewAuthService(db, &cfg.LDAP, &cfg.JWT),
	}
}

type loginResponse struct {
	AccessToken     string      `json:"access_token"`
	AccessExpireAt  int64       `json:"access_expire_at"`
	RefreshToken    string      `json:"refresh_token"`
	RefreshExpireAt int64       `json:"refresh_expire_at"`
	User            interface{} `json:"user"`
}

// Login handles user login
// POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req services.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.authService.Login(&req, c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		response.Error(c, err)
		return
	}

	services.RecordAudit(&result.User.ID, "User Login",
		map[string]interface{}{"username": result.User.Username, "auth_type": req.AuthType},
		c.ClientIP(), c.Request.UserAgent())
	middleware.MarkAudited(c)

	response.Success(c, loginResponse{
		AccessToken:     result.AccessToken,
		AccessExpireAt:  result.AccessExpireAt.Unix(),
		RefreshToken:    result.RefreshToken,
		RefreshExpireAt: result.RefreshExpireAt.Unix(),
		User:            result.User,
	})
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// Refresh rotates a refresh token and issues a new access token
// POST /api/auth/refresh
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.authService.Refresh(req.RefreshToken, c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		response.Error(c, err)
		return
	}

	middleware.MarkAudited(c)
	response.Success(c, gin.H{
		"access_token":      result.AccessToken,
		"access_expire_at":  result.AccessExpireAt.Unix(),
		"refresh_token":     result.RefreshToken,
		"refresh_expire_at": result.RefreshExpireAt.Unix(),
	})
}

type logoutRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// Logout revokes the presented refresh token
// POST /api/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	var req logoutRequest
	_ = c.ShouldBindJSON(&req)

	if err := h.authService.RevokeRefreshToken(req.RefreshToken); err != nil {
		response.Error(c, err)
		return
	}

	userID := middleware.GetUserID(c)
	services.RecordAudit(&userID, "User Logout", nil, c.ClientIP(), c.Request.UserAgent())
	middleware.MarkAudited(c)

	response.Success(c, gin.H{"message": "logged out successfully"})
}

// GetCurrentUser returns the current logged-in user
// GET /api/auth/me
func (h *AuthHandler) GetCurrentUser(c *gin.Context) {
	user, err := h.authService.GetUserByID(middleware.GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, user)
}

// GetAuthConfig returns authentication configuration
// GET /api/auth/config
func (h *AuthHandler) GetAuthConfig(c *gin.Context) {
	response.Success(c, gin.H{
		"ldap_enabled": h.authService.IsLDAPEnabled(),
	})
}

// ChangePassword updates the current user's password
// POST /api/auth/change-password
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	var req services.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	userID := middleware.GetUserID(c)
	if err := h.authService.ChangePassword(userID, &req); err != nil {
		response.Error(c, err)
		return
	}

	services.RecordAudit(&userID, "Password Changed", nil, c.ClientIP(), c.Request.UserAgent())
	middleware.MarkAudited(c)

	response.Success(c, gin.H{"message": "password changed"})
}

// CreateAdminIfNotExists creates the default admin user
func (h *AuthHandler) CreateAdminIfNotExists() error {
	return h.authService.CreateAdminIfNotExists()
}
