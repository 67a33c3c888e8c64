package services

import (
	"errors"

	"github.com/teamhq/teamhq/internal/models"
	"github.com/teamhq/teamhq/pkg/response"
	"gorm.io/gorm"
)

// RoleService manages the role catalog. The operational set is seeded at
// startup; creation and deletion exist for completeness and are guarded
// against collisions and in-use roles.
type RoleService struct {
	db *gorm.DB
}

func NewRoleService(db *gorm.DB) *RoleService {
	return &RoleService{db: db}
}

type CreateRoleRequest struct {
	Name        string `json:"name" binding:"required,max=50"`
	Description string `json:"description" binding:"max=255"`
}

func (s *RoleService) Create(actingUserID uint, req *CreateRoleRequest) (*models.Role, error) {
	role := &models.Role{Name: req.Name, Description: req.Description}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		tx.Model(&models.Role{}).Where("name = ?", req.Name).Count(&count)
		if count > 0 {
			return response.NewConflict("role name already exists")
		}
		if err := tx.Create(role).Error; err != nil {
			return err
		}
		return auditTx(tx, &actingUserID, "Role Created", map[string]interface{}{
			"role_id": role.ID,
			"name":    role.Name,
		})
	})
	if err != nil {
		return nil, err
	}
	return role, nil
}

func (s *RoleService) GetByName(name string) (*models.Role, error) {
	var role models.Role
	if err := s.db.Where("name = ?", name).First(&role).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("role not found")
		}
		return nil, err
	}
	return &role, nil
}

func (s *RoleService) List() ([]models.Role, error) {
	var roles []models.Role
	if err := s.db.Order("id ASC").Find(&roles).Error; err != nil {
		return nil, err
	}
	return roles, nil
}

// Delete removes a role from the catalog. Fails while any user still holds it.
func (s *RoleService) Delete(actingUserID, roleID uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var role models.Role
		if err := tx.First(&role, roleID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return response.NewNotFound("role not found")
			}
			return err
		}

		var inUse int64
		tx.Model(&models.User{}).Where("role = ?", role.Name).Count(&inUse)
		if inUse > 0 {
			return response.NewConflict("role is still assigned to users")
		}

		if err := tx.Delete(&role).Error; err != nil {
			return err
		}
		return auditTx(tx, &actingUserID, "Role Deleted", map[string]interface{}{
			"role_id": role.ID,
			"name":    role.Name,
		})
	})
}
