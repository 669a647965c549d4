package models

import (
	"time"
)

// User represents a tracked user. Rows are created or refreshed whenever a
// Discord identity logs in or is synced from the guild member list; they are
// never deleted by normal flows.
type User struct {
	ID            uint      `json:"id" gorm:"primaryKey"`
	DiscordID     *string   `json:"discord_id" gorm:"uniqueIndex"`
	Username      string    `json:"username" gorm:"not null"`
	Discriminator *string   `json:"discriminator"`
	Avatar        *string   `json:"avatar"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// TableName specifies the table name for User Model
func (User) TableName() string {
	return "users"
}

// SystemUsername is the display name of the service account that owns tasks
// created through password-authenticated sessions. It is the only user with
// a NULL discord_id.
const SystemUsername = "System"
