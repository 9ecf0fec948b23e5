package models

import (
	"time"
)

// RefreshToken is a persisted refresh token. Records are never deleted: a
// rotated token keeps pointing at its successor through ReplacedByToken so the
// whole login lineage can be walked when a replay is detected.
type RefreshToken struct {
	ID              uint       `gorm:"primarykey" json:"id"`
	UserID          uint       `gorm:"not null;index" json:"user_id"`
	Token           string     `gorm:"uniqueIndex;not null" json:"-"`
	ExpiresAt       time.Time  `gorm:"not null" json:"expires_at"`
	IsRevoked       bool       `gorm:"not null;default:false" json:"is_revoked"`
	RevokedAt       *time.Time `json:"revoked_at,omitempty"`
	ReplacedByToken *string    `gorm:"index" json:"-"`
	CreatedByIP     string     `gorm:"size:64" json:"created_by_ip,omitempty"`
	UserAgent       string     `gorm:"size:255" json:"user_agent,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
	User            User       `gorm:"foreignKey:UserID" json:"-"`
}

// TableName overrides the table name
func (RefreshToken) TableName() string {
	return "refresh_tokens"
}

// IsExpired reports whether the token is past its expiry at the given instant.
// A token is valid only while now < ExpiresAt.
func (t *RefreshToken) IsExpired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}
