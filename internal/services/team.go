package services

import (
	"errors"

	"github.com/teamhq/teamhq/internal/models"
	"github.com/teamhq/teamhq/pkg/response"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TeamService owns team CRUD and the manager half of the permission state
// machine: promotion, demotion and the one-manager-per-team invariant.
type TeamService struct {
	db *gorm.DB
}

func NewTeamService(db *gorm.DB) *TeamService {
	return &TeamService{db: db}
}

type CreateTeamRequest struct {
	Name        string `json:"name" binding:"required,max=100"`
	Description string `json:"description" binding:"max=500"`
}

func (s *TeamService) Create(actingUserID uint, req *CreateTeamRequest) (*models.Team, error) {
	team := &models.Team{Name: req.Name, Description: req.Description}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		tx.Model(&models.Team{}).Where("name = ?", req.Name).Count(&count)
		if count > 0 {
			return response.NewConflict("team name already exists")
		}
		if err := tx.Create(team).Error; err != nil {
			return err
		}
		return auditTx(tx, &actingUserID, "Team Created", map[string]interface{}{
			"team_id": team.ID,
			"name":    team.Name,
		})
	})
	if err != nil {
		return nil, err
	}
	return team, nil
}

func (s *TeamService) GetByID(id uint) (*models.Team, error) {
	var team models.Team
	if err := s.db.Preload("Members").First(&team, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("team not found")
		}
		return nil, err
	}
	return &team, nil
}

func (s *TeamService) List() ([]models.Team, error) {
	var teams []models.Team
	if err := s.db.Order("name ASC").Find(&teams).Error; err != nil {
		return nil, err
	}
	return teams, nil
}

func (s *TeamService) Delete(actingUserID, teamID uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		team, err := findTeam(tx, teamID)
		if err != nil {
			return err
		}

		var members int64
		tx.Model(&models.User{}).Where("team_id = ?", teamID).Count(&members)
		if members > 0 {
			return response.NewConflict("team still has members")
		}

		// Pending requests can no longer be processed once the team is gone.
		if err := tx.Where("team_id = ? AND status = ?", teamID, models.RequestPending).
			Delete(&models.TeamRequest{}).Error; err != nil {
			return err
		}

		if err := tx.Delete(team).Error; err != nil {
			return err
		}
		return auditTx(tx, &actingUserID, "Team Deleted", map[string]interface{}{
			"team_id": teamID,
			"name":    team.Name,
		})
	})
}

// ManagerCount returns the number of users holding the manager role in a team.
func (s *TeamService) ManagerCount(teamID uint) int64 {
	return managerCount(s.db, teamID)
}

func managerCount(tx *gorm.DB, teamID uint) int64 {
	var count int64
	tx.Model(&models.User{}).
		Where("team_id = ? AND role = ?", teamID, models.RoleManager).
		Count(&count)
	return count
}

// PromoteToManager makes target the manager of the team. Only admins may
// promote; the team row is locked so concurrent promotions cannot both pass
// the manager-count check.
func (s *TeamService) PromoteToManager(actingAdminID, targetUserID, teamID uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		actor, err := findUser(tx, actingAdminID)
		if err != nil {
			return err
		}
		if actor.Role != models.RoleAdmin {
			return response.NewForbidden("insufficient permission")
		}

		if err := assignManagerTx(tx, teamID, targetUserID); err != nil {
			return err
		}

		return auditTx(tx, &actor.ID, "Manager Promoted", map[string]interface{}{
			"target_user_id": targetUserID,
			"team_id":        teamID,
		})
	})
}

// DemoteManager strips the manager role, reverting the target to a regular
// user. The team assignment is intentionally kept: the target stays a team
// member, just not manager.
func (s *TeamService) DemoteManager(actingAdminID, managerID uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		actor, err := findUser(tx, actingAdminID)
		if err != nil {
			return err
		}
		if actor.Role != models.RoleAdmin {
			return response.NewForbidden("insufficient permission")
		}

		target, err := findUser(tx, managerID)
		if err != nil {
			return err
		}
		if target.Role != models.RoleManager {
			return response.NewInvalidState("user is not a manager")
		}

		if err := tx.Model(target).Update("role", models.RoleUser).Error; err != nil {
			return err
		}

		return auditTx(tx, &actor.ID, "Manager Demoted", map[string]interface{}{
			"target_user_id": target.ID,
			"target":         target.Username,
			"team_id":        target.TeamID,
		})
	})
}

// AssignManager is the lower-level primitive used outside the promotion flow.
func (s *TeamService) AssignManager(teamID, userID uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := assignManagerTx(tx, teamID, userID); err != nil {
			return err
		}
		return auditTx(tx, nil, "Manager Assigned", map[string]interface{}{
			"user_id": userID,
			"team_id": teamID,
		})
	})
}

func assignManagerTx(tx *gorm.DB, teamID, userID uint) error {
	// Lock the team row: the manager-count check and the role write must be
	// serialized per team. sqlite serializes writers on its own and rejects
	// FOR UPDATE, so the clause is skipped there.
	q := tx
	if tx.Dialector.Name() != "sqlite" {
		q = tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var team models.Team
	if err := q.First(&team, teamID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NewNotFound("team not found")
		}
		return err
	}

	if managerCount(tx, teamID) > 0 {
		return response.NewConflict("team already has a manager")
	}

	target, err := findUser(tx, userID)
	if err != nil {
		return err
	}
	if target.Role == models.RoleManager {
		return response.NewConflict("user is already a manager")
	}
	if target.Role != models.RoleUser && target.Role != models.RoleViewer {
		return response.NewInvalidState("user's current role is not eligible for promotion")
	}

	return tx.Model(target).Updates(map[string]interface{}{
		"team_id": teamID,
		"role":    models.RoleManager,
	}).Error
}

// RemoveManager demotes the current manager of a team to a regular user,
// keeping the team membership.
func (s *TeamService) RemoveManager(teamID uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if _, err := findTeam(tx, teamID); err != nil {
			return err
		}

		var manager models.User
		err := tx.Where("team_id = ? AND role = ?", teamID, models.RoleManager).First(&manager).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NewConflict("team has no manager")
		}
		if err != nil {
			return err
		}

		if err := tx.Model(&manager).Update("role", models.RoleUser).Error; err != nil {
			return err
		}

		return auditTx(tx, nil, "Manager Removed", map[string]interface{}{
			"user_id": manager.ID,
			"team_id": teamID,
		})
	})
}

func findTeam(tx *gorm.DB, id uint) (*models.Team, error) {
	var team models.Team
	if err := tx.First(&team, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("team not found")
		}
		return nil, err
	}
	return &team, nil
}
