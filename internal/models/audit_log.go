package models

import "time"

// AuditLog is an append-only record of a state-changing operation. Rows are
// never updated; deleting a user nulls UserID rather than removing entries.
type AuditLog struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    *uint     `gorm:"index" json:"user_id"`
	Action    string    `gorm:"size:200;index;not null" json:"action"`
	Metadata  string    `gorm:"type:text" json:"metadata"` // JSON extra data
	IP        string    `gorm:"size:50" json:"ip"`
	UserAgent string    `gorm:"size:500" json:"user_agent"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

func (AuditLog) TableName() string { return "audit_logs" }
