package services

import (
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/teamhq/teamhq/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var testDBSeq atomic.Int64

// setupTestDB opens a fresh in-memory database, migrated and seeded with the
// default roles and system configs.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:testdb%d?mode=memory&cache=shared", testDBSeq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := models.MigrateAll(db); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	if err := models.SeedDefaults(db); err != nil {
		t.Fatalf("failed to seed test database: %v", err)
	}

	t.Cleanup(func() {
		sqlDB, err := db.DB()
		if err == nil {
			sqlDB.Close()
		}
	})

	return db
}

func createTestUser(t *testing.T, db *gorm.DB, username, role string, teamID *uint) *models.User {
	t.Helper()

	user := &models.User{
		Username: username,
		Email:    username + "@example.com",
		Role:     role,
		AuthType: "local",
		IsActive: true,
		TeamID:   teamID,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create user %q: %v", username, err)
	}
	return user
}

func createTestTeam(t *testing.T, db *gorm.DB, name string) *models.Team {
	t.Helper()

	team := &models.Team{Name: name}
	if err := db.Create(team).Error; err != nil {
		t.Fatalf("failed to create team %q: %v", name, err)
	}
	return team
}

func lastAuditActions(t *testing.T, db *gorm.DB, n int) []string {
	t.Helper()

	var logs []models.AuditLog
	if err := db.Order("id DESC").Limit(n).Find(&logs).Error; err != nil {
		t.Fatalf("failed to load audit logs: %v", err)
	}

	actions := make([]string, 0, len(logs))
	for i := len(logs) - 1; i >= 0; i-- {
		actions = append(actions, logs[i].Action)
	}
	return actions
}
