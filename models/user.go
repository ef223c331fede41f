package models

import (
	"time"

	"gorm.io/gorm"
)

// User roles.
const (
	RoleFarmer = "farmer"
	RoleExpert = "expert"
	RoleAdmin  = "admin"
)

// User account record for a community member.
type User struct {
	ID        uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	Username  string         `json:"username" gorm:"uniqueIndex;size:64;not null"`
	Email     string         `json:"email" gorm:"uniqueIndex;size:190;not null"`
	Password  string         `json:"-" gorm:"size:255;not null"`
	Role      string         `json:"role" gorm:"size:16;default:'farmer'"`
	AvatarURL string         `json:"avatar_url"`
	Bio       string         `json:"bio"`
	LastLogin *time.Time     `json:"last_login" gorm:"default:NULL"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// PublicUser is the author shape embedded in resolved messages and
// conversation listings. Never carries credentials.
type PublicUser struct {
	ID        uint   `json:"id"`
	Username  string `json:"username"`
	Role      string `json:"role"`
	AvatarURL string `json:"avatar_url"`
}

func (u *User) Public() PublicUser {
	return PublicUser{
		ID:        u.ID,
		Username:  u.Username,
		Role:      u.Role,
		AvatarURL: u.AvatarURL,
	}
}
