package services

import (
	"errors"

	"github.com/teamhq/teamhq/internal/models"
	"github.com/teamhq/teamhq/pkg/response"
	"gorm.io/gorm"
)

// AuthzService implements the role-change half of the permission state
// machine: who may assign which operational role to whom.
type AuthzService struct {
	db *gorm.DB
}

func NewAuthzService(db *gorm.DB) *AuthzService {
	return &AuthzService{db: db}
}

// assignableRoles returns the role names actor may legally assign to target.
// ChangeUserRole and GetAvailableRolesForUser both go through here so the
// executable rules and the UI affordance query cannot drift apart.
func assignableRoles(actor, target *models.User) []string {
	switch actor.Role {
	case models.RoleAdmin:
		// Manager assignment goes through the dedicated promotion operation,
		// which also handles team placement and the one-manager invariant.
		return []string{models.RoleAdmin, models.RoleUser, models.RoleViewer}
	case models.RoleManager:
		if actor.TeamID == nil || target.TeamID == nil || *actor.TeamID != *target.TeamID {
			return nil
		}
		if target.Role != models.RoleUser && target.Role != models.RoleViewer {
			return nil
		}
		return []string{models.RoleUser, models.RoleViewer}
	default:
		return nil
	}
}

func roleAssignable(actor, target *models.User, newRole string) bool {
	for _, r := range assignableRoles(actor, target) {
		if r == newRole {
			return true
		}
	}
	return false
}

// ChangeUserRole validates and applies a role transition, recording an audit
// entry in the same transaction.
func (s *AuthzService) ChangeUserRole(actingUserID, targetUserID uint, newRole string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		actor, err := findUser(tx, actingUserID)
		if err != nil {
			return err
		}
		target, err := findUser(tx, targetUserID)
		if err != nil {
			return err
		}

		var role models.Role
		if err := tx.Where("name = ?", newRole).First(&role).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return response.NewNotFound("role not found")
			}
			return err
		}

		if err := validateRoleChange(actor, target, newRole); err != nil {
			return err
		}

		oldRole := target.Role
		if err := tx.Model(target).Update("role", newRole).Error; err != nil {
			return err
		}

		return auditTx(tx, &actor.ID, "User Role Changed", map[string]interface{}{
			"target_user_id": target.ID,
			"target":         target.Username,
			"old_role":       oldRole,
			"new_role":       newRole,
		})
	})
}

// validateRoleChange is the role-change validation sub-routine.
func validateRoleChange(actor, target *models.User, newRole string) error {
	switch actor.Role {
	case models.RoleAdmin:
		if newRole == models.RoleManager {
			return response.NewForbidden("manager role cannot be assigned directly, use the promotion operation")
		}
	case models.RoleManager:
		if actor.TeamID == nil || target.TeamID == nil || *actor.TeamID != *target.TeamID {
			return response.NewForbidden("managers may only change roles within their own team")
		}
		if target.Role != models.RoleUser && target.Role != models.RoleViewer {
			return response.NewForbidden("target's current role cannot be changed by a manager")
		}
		if newRole != models.RoleUser && newRole != models.RoleViewer {
			return response.NewForbidden("managers may only assign user or viewer roles")
		}
	default:
		return response.NewForbidden("insufficient permission")
	}

	if !roleAssignable(actor, target, newRole) {
		return response.NewForbidden("insufficient permission")
	}
	return nil
}

// GetAvailableRolesForUser is the pure query counterpart of ChangeUserRole,
// returning the set of role names the actor could legally assign.
func (s *AuthzService) GetAvailableRolesForUser(actingUserID, targetUserID uint) ([]string, error) {
	actor, err := findUser(s.db, actingUserID)
	if err != nil {
		return nil, err
	}
	target, err := findUser(s.db, targetUserID)
	if err != nil {
		return nil, err
	}

	roles := assignableRoles(actor, target)
	if roles == nil {
		roles = []string{}
	}
	return roles, nil
}

func findUser(tx *gorm.DB, id uint) (*models.User, error) {
	var user models.User
	if err := tx.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("user not found")
		}
		return nil, err
	}
	return &user, nil
}
