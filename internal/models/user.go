package models

import (
	"time"

	"gorm.io/gorm"
)

// User represents a system user. Role is the single operational role used for
// authorization decisions; a user holds exactly one at a time.
type User struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Username  string         `gorm:"uniqueIndex;size:100;not null" json:"username"`
	Email     string         `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Password  string         `gorm:"size:255" json:"-"` // Hashed password, empty for LDAP users
	Nickname  string         `gorm:"size:100" json:"nickname"`
	Role      string         `gorm:"size:50;not null;default:viewer" json:"role"` // admin, manager, user, viewer
	AuthType  string         `gorm:"size:20;default:local" json:"auth_type"`      // local, ldap
	IsActive  bool           `gorm:"default:true" json:"is_active"`
	TeamID    *uint          `gorm:"index" json:"team_id"`
	Team      *Team          `gorm:"foreignKey:TeamID" json:"team,omitempty"`
	LastLogin *time.Time     `json:"last_login"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string { return "users" }
