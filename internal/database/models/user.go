package models

import (
	"time"
)

// User roles
const (
	RoleClient = "client"
	RoleAdmin  = "admin"
)

// User represents an account that can sign in and hold refresh tokens
type User struct {
	ID           uint      `gorm:"primarykey" json:"id"`
	Email        string    `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"not null" json:"-"`
	Role         string    `gorm:"not null;default:client" json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	RefreshTokens []RefreshToken `gorm:"foreignKey:UserID;constraint:OnDelete:RESTRICT" json:"-"`
}

// TableName overrides the table name
func (User) TableName() string {
	return "users"
}

// PrimaryRole returns the role carried in access tokens
func (u *User) PrimaryRole() string {
	if u.Role == "" {
		return RoleClient
	}
	return u.Role
}
