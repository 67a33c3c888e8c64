package services

import (
	"encoding/json"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/teamhq/teamhq/internal/models"
	"github.com/teamhq/teamhq/pkg/logger"
	"gorm.io/gorm"
)

var auditDB *gorm.DB

// InitAuditRecorder sets the handle used by the package-level audit helpers.
func InitAuditRecorder(db *gorm.DB) {
	auditDB = db
}

// RecordAudit appends an audit entry outside any transaction. Used by the
// HTTP fallback hook; core operations use auditTx instead so the entry
// commits or rolls back with the mutation it describes.
func RecordAudit(userID *uint, action string, metadata interface{}, ip, userAgent string) {
	if auditDB == nil {
		return
	}

	entry := &models.AuditLog{
		UserID:    userID,
		Action:    action,
		Metadata:  marshalMetadata(metadata),
		IP:        ip,
		UserAgent: userAgent,
		CreatedAt: time.Now(),
	}
	if err := auditDB.Create(entry).Error; err != nil {
		logger.Error().Err(err).Str("action", action).Msg("audit write failed")
	}
}

func marshalMetadata(metadata interface{}) string {
	if metadata == nil {
		return ""
	}
	b, err := json.Marshal(metadata)
	if err != nil {
		return ""
	}
	return string(b)
}

// auditTx appends an audit entry on the given handle (typically a transaction).
func auditTx(tx *gorm.DB, userID *uint, action string, metadata interface{}) error {
	entry := &models.AuditLog{
		UserID:    userID,
		Action:    action,
		Metadata:  marshalMetadata(metadata),
		CreatedAt: time.Now(),
	}
	return tx.Create(entry).Error
}

type AuditService struct {
	db *gorm.DB
}

func NewAuditService(db *gorm.DB) *AuditService {
	return &AuditService{db: db}
}

// LogAction is the explicit audit hook for callers outside the core.
func (s *AuditService) LogAction(userID *uint, action string, metadata interface{}) error {
	return auditTx(s.db, userID, action, metadata)
}

type AuditListRequest struct {
	Page      int    `form:"page"`
	PageSize  int    `form:"page_size"`
	UserID    *uint  `form:"user_id"`
	Action    string `form:"action"`
	StartDate string `form:"start_date"`
	EndDate   string `form:"end_date"`
	Search    string `form:"search"`
}

type AuditListResponse struct {
	Total    int64             `json:"total"`
	Page     int               `json:"page"`
	PageSize int               `json:"page_size"`
	Items    []models.AuditLog `json:"items"`
}

func (s *AuditService) List(req *AuditListRequest) (*AuditListResponse, error) {
	if req.Page <= 0 {
		req.Page = 1
	}
	if req.PageSize <= 0 || req.PageSize > 100 {
		req.PageSize = 20
	}

	var logs []models.AuditLog
	var total int64

	query := s.db.Model(&models.AuditLog{})

	if req.UserID != nil {
		query = query.Where("user_id = ?", *req.UserID)
	}
	if req.Action != "" {
		query = query.Where("action LIKE ?", "%"+req.Action+"%")
	}
	if req.StartDate != "" {
		query = query.Where("created_at >= ?", req.StartDate)
	}
	if req.EndDate != "" {
		query = query.Where("created_at <= ?", req.EndDate+" 23:59:59")
	}
	if req.Search != "" {
		query = query.Where("metadata LIKE ?", "%"+req.Search+"%")
	}

	query.Count(&total)

	offset := (req.Page - 1) * req.PageSize
	if err := query.Offset(offset).Limit(req.PageSize).Order("created_at DESC").Find(&logs).Error; err != nil {
		return nil, err
	}

	return &AuditListResponse{
		Total:    total,
		Page:     req.Page,
		PageSize: req.PageSize,
		Items:    logs,
	}, nil
}

// CleanupOld deletes audit entries older than retentionDays and returns the
// number of deleted records.
func (s *AuditService) CleanupOld(retentionDays int) (int64, error) {
	if retentionDays <= 0 {
		return 0, nil
	}

	cutoff := time.Now().AddDate(0, 0, -retentionDays)
	result := s.db.Where("created_at < ?", cutoff).Delete(&models.AuditLog{})
	if result.Error != nil {
		return 0, result.Error
	}

	return result.RowsAffected, nil
}

// GetRetentionDays reads the retention setting, falling back to 90 days.
func (s *AuditService) GetRetentionDays() int {
	return NewSystemConfigService(s.db).GetInt("audit_retention_days", 90)
}

var auditCron *cron.Cron

// StartAuditCleanupScheduler runs retention cleanup nightly at 03:00.
func StartAuditCleanupScheduler(db *gorm.DB) {
	service := NewAuditService(db)

	auditCron = cron.New()
	_, err := auditCron.AddFunc("0 3 * * *", func() {
		runAuditCleanup(service)
	})
	if err != nil {
		logger.Errorf("[Audit] Failed to schedule cleanup: %v", err)
		return
	}
	auditCron.Start()

	// Also run once at startup
	go runAuditCleanup(service)
}

// StopAuditCleanupScheduler stops the retention scheduler.
func StopAuditCleanupScheduler() {
	if auditCron != nil {
		auditCron.Stop()
	}
}

func runAuditCleanup(service *AuditService) {
	retentionDays := service.GetRetentionDays()
	if retentionDays <= 0 {
		logger.Infof("[Audit] Cleanup disabled (retention_days <= 0)")
		return
	}

	deleted, err := service.CleanupOld(retentionDays)
	if err != nil {
		logger.Errorf("[Audit] Failed to cleanup old entries: %v", err)
		return
	}

	if deleted > 0 {
		logger.Infof("[Audit] Cleaned up %d entries older than %d days", deleted, retentionDays)
	}
}
