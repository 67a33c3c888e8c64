package models

import "time"

// Team request statuses. A request transitions out of pending exactly once;
// cancellation deletes the row instead of storing a terminal state.
const (
	RequestPending  = "pending"
	RequestApproved = "approved"
	RequestRejected = "rejected"
)

// TeamRequest is a user-initiated, manager-adjudicated request to join a team.
type TeamRequest struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	UserID      uint       `gorm:"index;not null" json:"user_id"`
	User        *User      `gorm:"foreignKey:UserID" json:"user,omitempty"`
	TeamID      uint       `gorm:"index;not null" json:"team_id"`
	Team        *Team      `gorm:"foreignKey:TeamID" json:"team,omitempty"`
	Message     string     `gorm:"size:1000" json:"message"`
	Status      string     `gorm:"size:20;not null;default:pending;index" json:"status"`
	ProcessedBy *uint      `json:"processed_by,omitempty"`
	ProcessedAt *time.Time `json:"processed_at,omitempty"`
	Notes       string     `gorm:"size:1000" json:"notes"`
	CreatedAt   time.Time  `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func (TeamRequest) TableName() string { return "team_requests" }
