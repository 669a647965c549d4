package models

import (
	"time"
)

// DefaultGroupColor is used when a group is created without an explicit color.
const DefaultGroupColor = "#3498db"

// Group represents a named collection of users. Names are not unique.
type Group struct {
	ID            uint      `json:"id" gorm:"primaryKey"`
	Name          string    `json:"name" gorm:"not null"`
	Description   *string   `json:"description"`
	Color         string    `json:"color" gorm:"default:'#3498db'"`
	DiscordRoleID *string   `json:"discord_role_id"`
	CreatedBy     *uint     `json:"created_by"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// TableName specifies the table name for Group Model
func (Group) TableName() string {
	return "groups"
}

// GroupMember relates a user to a group. At most one row per (group, user).
type GroupMember struct {
	ID      uint      `json:"id" gorm:"primaryKey"`
	GroupID uint      `json:"group_id" gorm:"not null;uniqueIndex:idx_group_members_pair;index"`
	UserID  uint      `json:"user_id" gorm:"not null;uniqueIndex:idx_group_members_pair;index"`
	AddedAt time.Time `json:"added_at" gorm:"autoCreateTime"`
}

// TableName specifies the table name for GroupMember Model
func (GroupMember) TableName() string {
	return "group_members"
}
