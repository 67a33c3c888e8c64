package models

import (
	"fmt"

	"github.com/teamhq/teamhq/internal/config"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

func InitDB(cfg *config.DatabaseConfig) error {
	var dialector gorm.Dialector

	switch cfg.Driver {
	case "sqlite":
		dialector = sqlite.Open(cfg.DSN)
	case "mysql":
		dialector = mysql.Open(cfg.DSN)
	case "postgres":
		dialector = postgres.Open(cfg.DSN)
	default:
		return fmt.Errorf("unsupported database driver: %s", cfg.Driver)
	}

	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	}

	db, err := gorm.Open(dialector, gormConfig)
	if err != nil {
		return fmt.Errorf("failed to connect database: %w", err)
	}

	DB = db
	return nil
}

func AutoMigrate() error {
	return MigrateAll(DB)
}

// MigrateAll runs migrations against a specific handle. Split out so tests
// can migrate their own in-memory databases.
func MigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&Role{},
		&Team{},
		&TeamRequest{},
		&AuditLog{},
		&RefreshToken{},
		&SystemConfig{},
	)
}

func GetDB() *gorm.DB {
	return DB
}

// SeedDefaultData creates the fixed role catalog and default system configs
// if they do not exist.
func SeedDefaultData() error {
	return SeedDefaults(DB)
}

func SeedDefaults(db *gorm.DB) error {
	roleDescriptions := map[string]string{
		RoleAdmin:   "System-wide authority over users, roles and teams",
		RoleManager: "Scoped to one team; adjudicates its membership and roles",
		RoleUser:    "Regular member",
		RoleViewer:  "Read-only member",
	}

	for _, name := range SeededRoles {
		var count int64
		db.Model(&Role{}).Where("name = ?", name).Count(&count)
		if count == 0 {
			role := Role{Name: name, Description: roleDescriptions[name]}
			if err := db.Create(&role).Error; err != nil {
				return err
			}
		}
	}

	defaultConfigs := []SystemConfig{
		{Key: "auth_access_token_expire_hours", Value: "24", Type: "int", Group: "auth", Label: "Access Token Expiry (hours)"},
		{Key: "auth_refresh_token_expire_hours", Value: "720", Type: "int", Group: "auth", Label: "Refresh Token Expiry (hours)"},
		{Key: "audit_retention_days", Value: "90", Type: "int", Group: "audit", Label: "Audit Log Retention Days"},
	}

	for _, cfg := range defaultConfigs {
		var count int64
		db.Model(&SystemConfig{}).Where("key = ?", cfg.Key).Count(&count)
		if count == 0 {
			if err := db.Create(&cfg).Error; err != nil {
				return err
			}
		}
	}

	return nil
}
