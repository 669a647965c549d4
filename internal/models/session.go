package models

import (
	"time"
)

// Session maps an opaque bearer token to a user (Discord login) or to no
// user (shared-password login). Validity is purely time-based: a session is
// usable while now < ExpiresAt, with no sliding renewal.
type Session struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Token     string    `json:"token" gorm:"uniqueIndex;not null"`
	UserID    *uint     `json:"user_id"`
	DiscordID *string   `json:"discord_id"`
	ExpiresAt time.Time `json:"expires_at" gorm:"not null"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName specifies the table name for Session Model
func (Session) TableName() string {
	return "sessions"
}

// LoginAttempt logs one authentication attempt from a source address. Rows
// are immutable and only ever read in aggregate to drive lockout.
type LoginAttempt struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	IPAddress   string    `json:"ip_address" gorm:"not null;index"`
	Success     bool      `json:"success"`
	AttemptedAt time.Time `json:"attempted_at" gorm:"autoCreateTime"`
}

// TableName specifies the table name for LoginAttempt Model
func (LoginAttempt) TableName() string {
	return "login_attempts"
}
