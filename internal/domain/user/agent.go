package user

import "time"

// Agent is a delegated user managed by one administrator. Self-registered
// agents start inactive until the administrator approves them.
type Agent struct {
	ID                int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	ManagerID         int64      `gorm:"not null;index;column:manager_id" json:"manager_id"`
	Username          string     `gorm:"not null;uniqueIndex;column:username" json:"username"`
	PasswordHash      string     `gorm:"not null;column:password_hash" json:"-"`
	IsActive          bool       `gorm:"not null;default:false;column:is_active" json:"is_active"`
	PasswordRequested bool       `gorm:"not null;default:false;column:password_requested" json:"password_requested"`
	PasswordRequestAt *time.Time `gorm:"column:password_request_at" json:"password_request_at,omitempty"`
	CreatedAt         time.Time  `gorm:"not null;column:created_at" json:"created_at"`
	UpdatedAt         time.Time  `gorm:"not null;column:updated_at" json:"updated_at"`
}

func (Agent) TableName() string { return "agent" }
