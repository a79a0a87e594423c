package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID        string    `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	Email     string    `gorm:"type:varchar(255);not null;uniqueIndex" json:"email"`
	FullName  string    `gorm:"type:varchar(255);not null" json:"full_name"`
	Avatar    *string   `gorm:"type:text" json:"avatar,omitempty"`
	Role      string    `gorm:"type:varchar(20);not null;default:'author'" json:"role"` // admin, author, staff, blocked
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// BeforeCreate hook to generate UUID
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	return nil
}

// TableName specifies the table name
func (User) TableName() string {
	return "users"
}

// Role constants
const (
	RoleAdmin   = "admin"
	RoleAuthor  = "author"
	RoleStaff   = "staff"
	RoleBlocked = "blocked"
)

// IsBlocked reports whether the user is banned from interacting
func (u *User) IsBlocked() bool {
	return u.Role == RoleBlocked
}

// CanModerate reports whether the user may delete other users' comments
func (u *User) CanModerate() bool {
	return u.Role == RoleAdmin || u.Role == RoleStaff
}

// DisplayAvatar returns the avatar URL or an empty string
func (u *User) DisplayAvatar() string {
	if u.Avatar == nil {
		return ""
	}
	return *u.Avatar
}
