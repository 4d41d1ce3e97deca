package models

import "time"

// User describes a registered club member.
type User struct {
	BaseModel

	Username string `gorm:"uniqueIndex;not null" json:"username"`
	Email    string `gorm:"uniqueIndex;not null" json:"email"`
	Password string `gorm:"not null" json:"-"`

	DisplayName string `json:"display_name"`
	Avatar      string `json:"avatar"`

	IsActive bool `gorm:"default:true" json:"is_active"`

	Memberships []TeamMember `gorm:"foreignKey:UserID" json:"memberships,omitempty"`

	LastLoginAt *time.Time `json:"last_login_at"`
}
