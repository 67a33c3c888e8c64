package services

import (
	"errors"
	"strconv"

	"github.com/teamhq/teamhq/internal/models"
	"github.com/teamhq/teamhq/pkg/response"
	"gorm.io/gorm"
)

type SystemConfigService struct {
	db *gorm.DB
}

func NewSystemConfigService(db *gorm.DB) *SystemConfigService {
	return &SystemConfigService{db: db}
}

// GetWithDefault returns the stored value for key, or def if unset.
func (s *SystemConfigService) GetWithDefault(key, def string) string {
	var cfg models.SystemConfig
	if err := s.db.Where("key = ?", key).First(&cfg).Error; err != nil {
		return def
	}
	if cfg.Value == "" {
		return def
	}
	return cfg.Value
}

// GetInt returns the stored integer value for key, or def when unset or invalid.
func (s *SystemConfigService) GetInt(key string, def int) int {
	value := s.GetWithDefault(key, strconv.Itoa(def))
	n, err := strconv.Atoi(value)
	if err != nil {
		return def
	}
	return n
}

// Set updates an existing config key.
func (s *SystemConfigService) Set(key, value string) error {
	result := s.db.Model(&models.SystemConfig{}).Where("key = ?", key).Update("value", value)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return response.NewNotFound("config key not found")
	}
	return nil
}

// ListGroup returns all config entries for a group.
func (s *SystemConfigService) ListGroup(group string) ([]models.SystemConfig, error) {
	var configs []models.SystemConfig
	query := s.db.Order("key ASC")
	if group != "" {
		query = query.Where("\"group\" = ?", group)
	}
	if err := query.Find(&configs).Error; err != nil {
		return nil, err
	}
	return configs, nil
}

// Get returns a single config entry.
func (s *SystemConfigService) Get(key string) (*models.SystemConfig, error) {
	var cfg models.SystemConfig
	if err := s.db.Where("key = ?", key).First(&cfg).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("config key not found")
		}
		return nil, err
	}
	return &cfg, nil
}
