package models

import "time"

// Operational role names. Seeded at startup; the catalog is not expected to
// grow during normal operation.
const (
	RoleAdmin   = "admin"
	RoleManager = "manager"
	RoleUser    = "user"
	RoleViewer  = "viewer"
)

// SeededRoles lists the fixed role catalog in descending authority order.
var SeededRoles = []string{RoleAdmin, RoleManager, RoleUser, RoleViewer}

// Role is a named permission level in the role catalog.
type Role struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"uniqueIndex;size:50;not null" json:"name"`
	Description string    `gorm:"size:255" json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (Role) TableName() string { return "roles" }

// IsSeededRole reports whether name belongs to the fixed operational set.
func IsSeededRole(name string) bool {
	for _, r := range SeededRoles {
		if r == name {
			return true
		}
	}
	return false
}
