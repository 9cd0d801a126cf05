package models

import "time"

// Role values accepted for users.
const (
	RoleAdmin   = "admin"
	RoleDriver  = "driver"
	RoleMonitor = "monitor"
)

type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Name         string `gorm:"not null" json:"name"`
	Email        string `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string `gorm:"not null" json:"-"`
	Role         string `gorm:"not null" json:"role"` // "admin", "driver", "monitor"

	// Password reset flow; never serialized.
	ResetToken   *string    `gorm:"index" json:"-"`
	ResetExpires *time.Time `json:"-"`
}
