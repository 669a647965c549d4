package notify

import (
	"strings"
	"time"

	"todo-tracker-api/internal/models"
)

// Mentions builds the Discord mention string for a task's assignees. Tasks
// assigned to everyone are announced without pings, and users who never
// linked a Discord account are skipped.
func Mentions(task *models.Task) string {
	if task.AssignedType != nil && *task.AssignedType == models.AssignedAll {
		return ""
	}
	var parts []string
	for _, u := range task.AssignedUsers {
		if u.DiscordID == nil || *u.DiscordID == "" {
			continue
		}
		parts = append(parts, "<@"+*u.DiscordID+">")
	}
	for _, g := range task.AssignedGroups {
		if g.DiscordRoleID == nil || *g.DiscordRoleID == "" {
			continue
		}
		parts = append(parts, "<@&"+*g.DiscordRoleID+">")
	}
	return strings.Join(parts, " ")
}

// AssigneeLabel renders the assignee set for embed display.
func AssigneeLabel(task *models.Task) string {
	if task.AssignedType != nil && *task.AssignedType == models.AssignedAll {
		return "Everyone"
	}
	var parts []string
	for _, u := range task.AssignedUsers {
		parts = append(parts, u.Username)
	}
	for _, g := range task.AssignedGroups {
		parts = append(parts, g.Name)
	}
	if len(parts) == 0 {
		return "Unassigned"
	}
	return strings.Join(parts, ", ")
}

// StatusLabel maps a status to its display name.
func StatusLabel(s models.TaskStatus) string {
	switch s {
	case models.StatusPending:
		return "Pending"
	case models.StatusInProgress:
		return "In Progress"
	case models.StatusOnHold:
		return "On Hold"
	case models.StatusCompleted:
		return "Completed"
	case models.StatusOther:
		return "Other"
	}
	return string(s)
}

// PriorityLabel maps a priority to its display name. Nil means the task has
// no priority, which is also the resting state of completed tasks.
func PriorityLabel(p *models.TaskPriority) string {
	if p == nil {
		return "None"
	}
	switch *p {
	case models.PriorityLow:
		return "Low"
	case models.PriorityMedium:
		return "Medium"
	case models.PriorityHigh:
		return "High"
	case models.PriorityUrgent:
		return "Urgent"
	}
	return string(*p)
}

// DueLabel formats a due date in the configured timezone.
func DueLabel(due *time.Time, loc *time.Location) string {
	if due == nil {
		return "None"
	}
	return due.In(loc).Format("2006-01-02")
}
