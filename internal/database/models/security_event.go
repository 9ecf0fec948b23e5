package models

import (
	"time"
)

// Security event types
const (
	EventRefreshTokenReuse  = "refresh_token_reuse"
	EventTokenFamilyRevoked = "token_family_revoked"
	EventUserTokensRevoked  = "user_tokens_revoked"
)

// SecurityEvent is an append-only audit row for token revocations
type SecurityEvent struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	EventID   string    `gorm:"size:36;uniqueIndex;not null" json:"event_id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	EventType string    `gorm:"size:64;not null;index" json:"event_type"`
	Affected  int64     `gorm:"not null;default:0" json:"affected"`
	ClientIP  string    `gorm:"size:64" json:"client_ip,omitempty"`
	UserAgent string    `gorm:"size:255" json:"user_agent,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName overrides the table name
func (SecurityEvent) TableName() string {
	return "security_events"
}
