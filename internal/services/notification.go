package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/teamhq/teamhq/internal/models"
	"github.com/teamhq/teamhq/pkg/logger"
	"gorm.io/gorm"
)

// NotificationService delivers team-request decisions to an outbound webhook.
type NotificationService struct {
	db         *gorm.DB
	webhookURL string
	httpClient *http.Client
}

func NewNotificationService(db *gorm.DB, webhookURL string) *NotificationService {
	return &NotificationService{
		db:         db,
		webhookURL: webhookURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

type decisionPayload struct {
	Event     string    `json:"event"`
	RequestID uint      `json:"request_id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	TeamName  string    `json:"team_name"`
	Approved  bool      `json:"approved"`
	Notes     string    `json:"notes,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// ProcessNotifyTask resolves the task against the database and posts the
// decision to the configured webhook. Wired as the queue/worker processor.
func (s *NotificationService) ProcessNotifyTask(ctx context.Context, task *NotifyTask) error {
	if s.webhookURL == "" {
		logger.Debugf("[Notification] No webhook configured, dropping decision for request %d", task.RequestID)
		return nil
	}

	var user models.User
	if err := s.db.First(&user, task.UserID).Error; err != nil {
		return fmt.Errorf("notification target user not found: %w", err)
	}

	var team models.Team
	if err := s.db.First(&team, task.TeamID).Error; err != nil {
		return fmt.Errorf("notification target team not found: %w", err)
	}

	payload := decisionPayload{
		Event:     "team_request.processed",
		RequestID: task.RequestID,
		Username:  user.Username,
		Email:     user.Email,
		TeamName:  team.Name,
		Approved:  task.Approved,
		Notes:     task.Notes,
		Timestamp: time.Now(),
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.webhookURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("webhook request failed: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}

	logger.Infof("[Notification] Decision for request %d delivered (approved=%v)", task.RequestID, task.Approved)
	return nil
}
