package models

import (
	"time"

	"gorm.io/gorm"
)

// Team is a named group of users. At most one member holds the manager role
// at any time; the invariant is enforced by the team service.
type Team struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Name        string         `gorm:"uniqueIndex;size:100;not null" json:"name"`
	Description string         `gorm:"size:500" json:"description"`
	Members     []User         `gorm:"foreignKey:TeamID" json:"members,omitempty"`
	Requests    []TeamRequest  `gorm:"foreignKey:TeamID" json:"requests,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Team) TableName() string { return "teams" }
