package services

import (
	"github.com/teamhq/teamhq/internal/models"
	"github.com/teamhq/teamhq/internal/utils"
	"github.com/teamhq/teamhq/pkg/response"
	"gorm.io/gorm"
)

type UserService struct {
	db *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

type CreateUserRequest struct {
	Username string `json:"username" binding:"required,max=100"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
	Nickname string `json:"nickname" binding:"max=100"`
	Role     string `json:"role"`
}

// Create adds a local user. Direct manager creation is rejected; managers
// only come out of the promotion operation.
func (s *UserService) Create(actingUserID uint, req *CreateUserRequest) (*models.User, error) {
	if req.Role == "" {
		req.Role = models.RoleViewer
	}
	if !models.IsSeededRole(req.Role) {
		return nil, response.NewNotFound("role not found")
	}
	if req.Role == models.RoleManager {
		return nil, response.NewForbidden("manager role cannot be assigned directly, use the promotion operation")
	}
	if !utils.IsPasswordStrong(req.Password) {
		return nil, response.NewBadRequest("password must be at least 8 characters with upper, lower, digit and symbol")
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username: req.Username,
		Email:    req.Email,
		Password: hash,
		Nickname: req.Nickname,
		Role:     req.Role,
		AuthType: "local",
		IsActive: true,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		tx.Model(&models.User{}).Where("username = ?", req.Username).Count(&count)
		if count > 0 {
			return response.NewConflict("username already exists")
		}
		tx.Model(&models.User{}).Where("email = ?", req.Email).Count(&count)
		if count > 0 {
			return response.NewConflict("email already exists")
		}

		if err := tx.Create(user).Error; err != nil {
			return err
		}
		return auditTx(tx, &actingUserID, "User Created", map[string]interface{}{
			"user_id":  user.ID,
			"username": user.Username,
			"role":     user.Role,
		})
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) GetByID(id uint) (*models.User, error) {
	return findUser(s.db, id)
}

type UserListRequest struct {
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
	Username string `form:"username"`
	Role     string `form:"role"`
	TeamID   *uint  `form:"team_id"`
}

type UserListResponse struct {
	Total    int64         `json:"total"`
	Page     int           `json:"page"`
	PageSize int           `json:"page_size"`
	Items    []models.User `json:"items"`
}

func (s *UserService) List(req *UserListRequest) (*UserListResponse, error) {
	if req.Page <= 0 {
		req.Page = 1
	}
	if req.PageSize <= 0 || req.PageSize > 100 {
		req.PageSize = 20
	}

	var users []models.User
	var total int64

	query := s.db.Model(&models.User{})
	if req.Username != "" {
		query = query.Where("username LIKE ?", "%"+req.Username+"%")
	}
	if req.Role != "" {
		query = query.Where("role = ?", req.Role)
	}
	if req.TeamID != nil {
		query = query.Where("team_id = ?", *req.TeamID)
	}

	query.Count(&total)
	if err := query.Order("id ASC").
		Offset((req.Page - 1) * req.PageSize).Limit(req.PageSize).
		Find(&users).Error; err != nil {
		return nil, err
	}

	return &UserListResponse{
		Total:    total,
		Page:     req.Page,
		PageSize: req.PageSize,
		Items:    users,
	}, nil
}

type UpdateUserRequest struct {
	Nickname *string `json:"nickname"`
	Email    *string `json:"email"`
}

func (s *UserService) Update(actingUserID, targetUserID uint, req *UpdateUserRequest) (*models.User, error) {
	var user *models.User

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		user, err = findUser(tx, targetUserID)
		if err != nil {
			return err
		}

		updates := make(map[string]interface{})
		if req.Nickname != nil {
			updates["nickname"] = *req.Nickname
		}
		if req.Email != nil {
			var count int64
			tx.Model(&models.User{}).Where("email = ? AND id != ?", *req.Email, targetUserID).Count(&count)
			if count > 0 {
				return response.NewConflict("email already exists")
			}
			updates["email"] = *req.Email
		}
		if len(updates) == 0 {
			return response.NewBadRequest("no fields to update")
		}

		if err := tx.Model(user).Updates(updates).Error; err != nil {
			return err
		}
		return auditTx(tx, &actingUserID, "User Updated", map[string]interface{}{
			"user_id": user.ID,
		})
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// SetActive enables or disables a user. Re-applying the current state is a
// no-op success.
func (s *UserService) SetActive(actingUserID, targetUserID uint, active bool) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		user, err := findUser(tx, targetUserID)
		if err != nil {
			return err
		}
		if user.IsActive == active {
			return nil
		}

		if err := tx.Model(user).Update("is_active", active).Error; err != nil {
			return err
		}

		action := "User Deactivated"
		if active {
			action = "User Activated"
		}
		return auditTx(tx, &actingUserID, action, map[string]interface{}{
			"user_id":  user.ID,
			"username": user.Username,
		})
	})
}

// Delete removes a user with the cascade made explicit: audit entries keep
// their rows but lose their actor reference, refresh tokens and the user's
// own pending requests go with the account.
func (s *UserService) Delete(actingUserID, targetUserID uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		user, err := findUser(tx, targetUserID)
		if err != nil {
			return err
		}

		if err := tx.Model(&models.AuditLog{}).
			Where("user_id = ?", targetUserID).
			Update("user_id", nil).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", targetUserID).Delete(&models.RefreshToken{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ? AND status = ?", targetUserID, models.RequestPending).
			Delete(&models.TeamRequest{}).Error; err != nil {
			return err
		}
		if err := tx.Delete(user).Error; err != nil {
			return err
		}

		return auditTx(tx, &actingUserID, "User Deleted", map[string]interface{}{
			"user_id":  user.ID,
			"username": user.Username,
		})
	})
}
