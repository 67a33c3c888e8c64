package services

import (
	"errors"
	"time"

	"github.com/teamhq/teamhq/internal/models"
	"github.com/teamhq/teamhq/pkg/logger"
	"github.com/teamhq/teamhq/pkg/response"
	"gorm.io/gorm"
)

// TeamRequestService owns the team-request state machine:
// Pending → Approved/Rejected (terminal), or deleted by the requester while
// still pending.
type TeamRequestService struct {
	db    *gorm.DB
	queue TaskQueue
}

func NewTeamRequestService(db *gorm.DB) *TeamRequestService {
	return &TeamRequestService{db: db}
}

// SetQueue wires the notification queue for processed-request decisions.
func (s *TeamRequestService) SetQueue(queue TaskQueue) {
	s.queue = queue
}

// Create files a pending join request for a team.
func (s *TeamRequestService) Create(userID, teamID uint, message string) (*models.TeamRequest, error) {
	request := &models.TeamRequest{
		UserID:  userID,
		TeamID:  teamID,
		Message: message,
		Status:  models.RequestPending,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		user, err := findUser(tx, userID)
		if err != nil {
			return err
		}
		if user.TeamID != nil {
			return response.NewConflict("user already belongs to a team")
		}

		if _, err := findTeam(tx, teamID); err != nil {
			return err
		}

		var pending int64
		tx.Model(&models.TeamRequest{}).
			Where("user_id = ? AND team_id = ? AND status = ?", userID, teamID, models.RequestPending).
			Count(&pending)
		if pending > 0 {
			return response.NewConflict("a pending request for this team already exists")
		}

		// Nobody could process a request for an unmanaged team.
		if managerCount(tx, teamID) == 0 {
			return response.NewConflict("team has no manager to process requests")
		}

		if err := tx.Create(request).Error; err != nil {
			return err
		}

		return auditTx(tx, &userID, "Team Request Created", map[string]interface{}{
			"request_id": request.ID,
			"team_id":    teamID,
		})
	})
	if err != nil {
		return nil, err
	}
	return request, nil
}

// Process approves or rejects a pending request. Only the manager of the
// target team may process it; processed requests are terminal.
func (s *TeamRequestService) Process(requestID, processingUserID uint, approve bool, notes string) (*models.TeamRequest, error) {
	var request models.TeamRequest

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&request, requestID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return response.NewNotFound("team request not found")
			}
			return err
		}

		if request.Status != models.RequestPending {
			return response.NewConflict("request already processed")
		}

		processor, err := findUser(tx, processingUserID)
		if err != nil {
			return err
		}
		if processor.Role != models.RoleManager || processor.TeamID == nil || *processor.TeamID != request.TeamID {
			return response.NewForbidden("only the team's manager may process this request")
		}

		status := models.RequestRejected
		action := "Team Request Rejected"
		if approve {
			status = models.RequestApproved
			action = "Team Request Approved"
			if err := tx.Model(&models.User{}).
				Where("id = ?", request.UserID).
				Update("team_id", request.TeamID).Error; err != nil {
				return err
			}
		}

		now := time.Now()
		request.Status = status
		request.ProcessedBy = &processingUserID
		request.ProcessedAt = &now
		request.Notes = notes
		if err := tx.Save(&request).Error; err != nil {
			return err
		}

		return auditTx(tx, &processingUserID, action, map[string]interface{}{
			"request_id": request.ID,
			"user_id":    request.UserID,
			"team_id":    request.TeamID,
			"notes":      notes,
		})
	})
	if err != nil {
		return nil, err
	}

	if s.queue != nil {
		task := &NotifyTask{
			RequestID: request.ID,
			UserID:    request.UserID,
			TeamID:    request.TeamID,
			Approved:  request.Status == models.RequestApproved,
			Notes:     notes,
		}
		if err := s.queue.Enqueue(task); err != nil {
			// Notification failure never fails the decision.
			logger.Warnf("[TeamRequest] Failed to enqueue notification: %v", err)
		}
	}

	return &request, nil
}

// Cancel deletes a pending request. Only the requester may cancel.
func (s *TeamRequestService) Cancel(requestID, actingUserID uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var request models.TeamRequest
		if err := tx.First(&request, requestID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return response.NewNotFound("team request not found")
			}
			return err
		}

		if request.UserID != actingUserID {
			return response.NewForbidden("request belongs to another user")
		}
		if request.Status != models.RequestPending {
			return response.NewConflict("request already processed")
		}

		if err := tx.Delete(&request).Error; err != nil {
			return err
		}

		return auditTx(tx, &actingUserID, "Team Request Canceled", map[string]interface{}{
			"request_id": request.ID,
			"team_id":    request.TeamID,
		})
	})
}

type TeamRequestListRequest struct {
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
	TeamID   *uint  `form:"team_id"`
	UserID   *uint  `form:"user_id"`
	Status   string `form:"status"`
}

type TeamRequestListResponse struct {
	Total    int64                `json:"total"`
	Page     int                  `json:"page"`
	PageSize int                  `json:"page_size"`
	Items    []models.TeamRequest `json:"items"`
}

// List returns requests most recent first.
func (s *TeamRequestService) List(req *TeamRequestListRequest) (*TeamRequestListResponse, error) {
	if req.Page <= 0 {
		req.Page = 1
	}
	if req.PageSize <= 0 || req.PageSize > 100 {
		req.PageSize = 20
	}

	var requests []models.TeamRequest
	var total int64

	query := s.db.Model(&models.TeamRequest{})
	if req.TeamID != nil {
		query = query.Where("team_id = ?", *req.TeamID)
	}
	if req.UserID != nil {
		query = query.Where("user_id = ?", *req.UserID)
	}
	if req.Status != "" {
		query = query.Where("status = ?", req.Status)
	}

	query.Count(&total)

	offset := (req.Page - 1) * req.PageSize
	if err := query.Preload("User").Preload("Team").
		Order("created_at DESC").Offset(offset).Limit(req.PageSize).
		Find(&requests).Error; err != nil {
		return nil, err
	}

	return &TeamRequestListResponse{
		Total:    total,
		Page:     req.Page,
		PageSize: req.PageSize,
		Items:    requests,
	}, nil
}
