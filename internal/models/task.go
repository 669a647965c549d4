package models

import (
	"time"
)

// TaskStatus represents the status of a task
type TaskStatus string

const (
	StatusPending    TaskStatus = "pending"
	StatusInProgress TaskStatus = "in_progress"
	StatusOnHold     TaskStatus = "on_hold"
	StatusCompleted  TaskStatus = "completed"
	StatusOther      TaskStatus = "other"
)

// ValidStatus reports whether s is one of the known task statuses.
func ValidStatus(s TaskStatus) bool {
	switch s {
	case StatusPending, StatusInProgress, StatusOnHold, StatusCompleted, StatusOther:
		return true
	}
	return false
}

// TaskPriority represents the priority of a task. The column is nullable:
// completing a task clears its priority.
type TaskPriority string

const (
	PriorityLow    TaskPriority = "low"
	PriorityMedium TaskPriority = "medium"
	PriorityHigh   TaskPriority = "high"
	PriorityUrgent TaskPriority = "urgent"
)

// ValidPriority reports whether p is one of the known priorities.
func ValidPriority(p TaskPriority) bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// AssignedType describes how a task's assignees are interpreted: specific
// users, specific groups, or everyone.
type AssignedType string

const (
	AssignedUser  AssignedType = "user"
	AssignedGroup AssignedType = "group"
	AssignedAll   AssignedType = "all"
)

// ValidAssignedType reports whether t is one of the known assignment modes.
func ValidAssignedType(t AssignedType) bool {
	switch t {
	case AssignedUser, AssignedGroup, AssignedAll:
		return true
	}
	return false
}

// AssigneeInfo is the resolved identity of an assigned user, carried on
// hydrated tasks.
type AssigneeInfo struct {
	ID        uint    `json:"id"`
	Username  string  `json:"username"`
	DiscordID *string `json:"discord_id"`
}

// AssignedGroupInfo is the resolved identity of an assigned group.
type AssignedGroupInfo struct {
	ID            uint    `json:"id"`
	Name          string  `json:"name"`
	DiscordRoleID *string `json:"discord_role_id"`
}

// Task is the central entity. The task_assignees and task_assigned_groups
// relations are authoritative; AssignedUserID and AssignedGroupID are legacy
// scalar projections of the first element of each set, kept in sync on every
// write for older consumers.
type Task struct {
	ID              uint          `json:"id" gorm:"primaryKey"`
	Title           string        `json:"title" gorm:"not null"`
	Description     *string       `json:"description"`
	Status          TaskStatus    `json:"status" gorm:"not null;default:'pending';index"`
	Priority        *TaskPriority `json:"priority"`
	DueDate         *time.Time    `json:"due_date"`
	AssignedType    *AssignedType `json:"assigned_type"`
	AssignedUserID  *uint         `json:"assigned_user_id" gorm:"index"`
	AssignedGroupID *uint         `json:"assigned_group_id" gorm:"index"`
	CreatedBy       uint          `json:"created_by" gorm:"not null;index"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
	CompletedAt     *time.Time    `json:"completed_at"`

	// Hydrated fields, not stored on the tasks table.
	AssignedUsers         []AssigneeInfo      `json:"assigned_users" gorm:"-"`
	AssignedGroups        []AssignedGroupInfo `json:"assigned_groups" gorm:"-"`
	AssignedUserName      string              `json:"assigned_user_name,omitempty" gorm:"-"`
	AssignedUserDiscordID string              `json:"assigned_user_discord_id,omitempty" gorm:"-"`
	AssignedGroupName     string              `json:"assigned_group_name,omitempty" gorm:"-"`

	// Scanned from joined columns on read paths; never written.
	CreatorName      string  `json:"creator_name,omitempty" gorm:"->;-:migration"`
	CreatorDiscordID *string `json:"creator_discord_id,omitempty" gorm:"->;-:migration"`
	CommentCount     int64   `json:"comment_count" gorm:"->;-:migration"`
}

// TableName specifies the table name for Task Model
func (Task) TableName() string {
	return "tasks"
}

// TaskAssignee is the authoritative many-to-many relation between tasks and
// users. Unique per (task, user).
type TaskAssignee struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	TaskID     uint      `json:"task_id" gorm:"not null;uniqueIndex:idx_task_assignees_pair;index"`
	UserID     uint      `json:"user_id" gorm:"not null;uniqueIndex:idx_task_assignees_pair;index"`
	AssignedAt time.Time `json:"assigned_at" gorm:"autoCreateTime"`
}

// TableName specifies the table name for TaskAssignee Model
func (TaskAssignee) TableName() string {
	return "task_assignees"
}

// TaskAssignedGroup is the many-to-many relation between tasks and groups,
// with the same pattern and legacy-sync obligation as TaskAssignee.
type TaskAssignedGroup struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	TaskID     uint      `json:"task_id" gorm:"not null;uniqueIndex:idx_task_assigned_groups_pair;index"`
	GroupID    uint      `json:"group_id" gorm:"not null;uniqueIndex:idx_task_assigned_groups_pair;index"`
	AssignedAt time.Time `json:"assigned_at" gorm:"autoCreateTime"`
}

// TableName specifies the table name for TaskAssignedGroup Model
func (TaskAssignedGroup) TableName() string {
	return "task_assigned_groups"
}

// TaskComment is an append-only note on a task. Comments are never edited
// and disappear only when their task is deleted.
type TaskComment struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	TaskID    uint      `json:"task_id" gorm:"not null;index"`
	UserID    uint      `json:"user_id" gorm:"not null"`
	Content   string    `json:"content" gorm:"not null"`
	CreatedAt time.Time `json:"created_at"`

	// Commenter identity, joined in on read.
	Username  string  `json:"username,omitempty" gorm:"->;-:migration"`
	DiscordID *string `json:"discord_id,omitempty" gorm:"->;-:migration"`
}

// TableName specifies the table name for TaskComment Model
func (TaskComment) TableName() string {
	return "task_comments"
}
