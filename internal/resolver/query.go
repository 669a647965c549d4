package resolver

import (
	"strings"
	"time"

	"todo-tracker-api/internal/models"

	"gorm.io/gorm"
)

// Filter is the supported predicate set for list reads.
type Filter struct {
	Status          *models.TaskStatus
	Priority        *models.TaskPriority
	AssignedUserID  *uint
	AssignedGroupID *uint
	AssignedType    *models.AssignedType
	CreatedBy       *uint
	Sort            string // "id" (default) or "priority"
	SortOrder       string // "asc" or "desc" (default)
	Limit           int
}

// Completed tasks always sort after non-completed ones, whatever order the
// caller asked for.
const completedLast = "CASE WHEN tasks.status = 'completed' THEN 1 ELSE 0 END ASC"

const priorityRank = `CASE tasks.priority
	WHEN 'urgent' THEN 0
	WHEN 'high' THEN 1
	WHEN 'medium' THEN 2
	WHEN 'low' THEN 3
	ELSE 4 END`

const hydrateSelect = `tasks.*,
	u.username AS creator_name,
	u.discord_id AS creator_discord_id,
	(SELECT COUNT(*) FROM task_comments tc WHERE tc.task_id = tasks.id) AS comment_count`

func (r *Resolver) baseQuery() *gorm.DB {
	return r.db.Model(&models.Task{}).
		Select(hydrateSelect).
		Joins("LEFT JOIN users u ON u.id = tasks.created_by")
}

func applyOrder(q *gorm.DB, f Filter) *gorm.DB {
	q = q.Order(completedLast)
	if f.Sort == "priority" {
		dir := "ASC" // rank ascending = most severe first
		if f.SortOrder == "asc" {
			dir = "DESC"
		}
		return q.Order(priorityRank + " " + dir).Order("tasks.id DESC")
	}
	dir := "DESC"
	if f.SortOrder == "asc" {
		dir = "ASC"
	}
	return q.Order("tasks.id " + dir)
}

func applyFilters(q *gorm.DB, f Filter) *gorm.DB {
	if f.Status != nil {
		q = q.Where("tasks.status = ?", *f.Status)
	}
	if f.Priority != nil {
		q = q.Where("tasks.priority = ?", *f.Priority)
	}
	if f.AssignedType != nil {
		q = q.Where("tasks.assigned_type = ?", *f.AssignedType)
	}
	if f.CreatedBy != nil {
		q = q.Where("tasks.created_by = ?", *f.CreatedBy)
	}
	if f.AssignedUserID != nil {
		q = q.Where("tasks.id IN (SELECT task_id FROM task_assignees WHERE user_id = ?)", *f.AssignedUserID)
	}
	if f.AssignedGroupID != nil {
		q = q.Where("tasks.id IN (SELECT task_id FROM task_assigned_groups WHERE group_id = ?)", *f.AssignedGroupID)
	}
	return q
}

// Get returns one fully hydrated task.
func (r *Resolver) Get(id uint) (*models.Task, error) {
	var task models.Task
	if err := r.baseQuery().Where("tasks.id = ?", id).First(&task).Error; err != nil {
		return nil, err
	}
	tasks := []models.Task{task}
	if err := r.attachAssignees(tasks); err != nil {
		return nil, err
	}
	return &tasks[0], nil
}

// List returns hydrated tasks matching the filter.
func (r *Resolver) List(f Filter) ([]models.Task, error) {
	q := applyOrder(applyFilters(r.baseQuery(), f), f)
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}

	var tasks []models.Task
	if err := q.Find(&tasks).Error; err != nil {
		return nil, err
	}
	if err := r.attachAssignees(tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

// DueBetween returns non-completed tasks whose due date falls in
// [start, end), hydrated, ordered by priority severity.
func (r *Resolver) DueBetween(start, end time.Time) ([]models.Task, error) {
	q := r.baseQuery().
		Where("tasks.due_date >= ? AND tasks.due_date < ?", start, end).
		Where("tasks.status != 'completed'")
	q = applyOrder(q, Filter{Sort: "priority"})

	var tasks []models.Task
	if err := q.Find(&tasks).Error; err != nil {
		return nil, err
	}
	if err := r.attachAssignees(tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

// ListForUser returns the tasks relevant to one user. Without an explicit
// assignment-mode filter that means: directly assigned, or assigned to a
// group the user belongs to, or marked for everyone.
func (r *Resolver) ListForUser(userID uint, f Filter) ([]models.Task, error) {
	q := r.baseQuery()

	const memberOfAssignedGroup = `tasks.id IN (
		SELECT tag.task_id FROM task_assigned_groups tag
		JOIN group_members gm ON gm.group_id = tag.group_id
		WHERE gm.user_id = ?)`
	const directAssignee = "tasks.id IN (SELECT task_id FROM task_assignees WHERE user_id = ?)"

	if f.AssignedType != nil {
		switch *f.AssignedType {
		case models.AssignedUser:
			q = q.Where(directAssignee, userID)
		case models.AssignedGroup:
			q = q.Where(memberOfAssignedGroup, userID)
		case models.AssignedAll:
			q = q.Where("tasks.assigned_type = 'all'")
		}
	} else {
		q = q.Where("("+directAssignee+" OR "+memberOfAssignedGroup+" OR tasks.assigned_type = 'all')",
			userID, userID)
	}

	if f.Status != nil {
		q = q.Where("tasks.status = ?", *f.Status)
	}
	if f.Priority != nil {
		q = q.Where("tasks.priority = ?", *f.Priority)
	}

	q = applyOrder(q, f)
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}

	var tasks []models.Task
	if err := q.Find(&tasks).Error; err != nil {
		return nil, err
	}
	if err := r.attachAssignees(tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

// attachAssignees resolves the assignee users and assigned groups for a
// whole batch of tasks with two bulk queries keyed by the full task-id set,
// never one query per task.
func (r *Resolver) attachAssignees(tasks []models.Task) error {
	if len(tasks) == 0 {
		return nil
	}
	ids := make([]uint, 0, len(tasks))
	for i := range tasks {
		ids = append(ids, tasks[i].ID)
	}

	type userRow struct {
		TaskID    uint
		ID        uint
		Username  string
		DiscordID *string
	}
	var userRows []userRow
	err := r.db.Table("task_assignees").
		Select("task_assignees.task_id AS task_id, users.id AS id, users.username AS username, users.discord_id AS discord_id").
		Joins("JOIN users ON users.id = task_assignees.user_id").
		Where("task_assignees.task_id IN ?", ids).
		Order("users.username ASC").
		Scan(&userRows).Error
	if err != nil {
		return err
	}

	type groupRow struct {
		TaskID        uint
		ID            uint
		Name          string
		DiscordRoleID *string
	}
	var groupRows []groupRow
	err = r.db.Table("task_assigned_groups").
		Select("task_assigned_groups.task_id AS task_id, groups.id AS id, groups.name AS name, groups.discord_role_id AS discord_role_id").
		Joins("JOIN groups ON groups.id = task_assigned_groups.group_id").
		Where("task_assigned_groups.task_id IN ?", ids).
		Order("groups.name ASC").
		Scan(&groupRows).Error
	if err != nil {
		return err
	}

	usersByTask := make(map[uint][]models.AssigneeInfo)
	for _, row := range userRows {
		usersByTask[row.TaskID] = append(usersByTask[row.TaskID], models.AssigneeInfo{
			ID: row.ID, Username: row.Username, DiscordID: row.DiscordID,
		})
	}
	groupsByTask := make(map[uint][]models.AssignedGroupInfo)
	for _, row := range groupRows {
		groupsByTask[row.TaskID] = append(groupsByTask[row.TaskID], models.AssignedGroupInfo{
			ID: row.ID, Name: row.Name, DiscordRoleID: row.DiscordRoleID,
		})
	}

	for i := range tasks {
		t := &tasks[i]
		t.AssignedUsers = usersByTask[t.ID]
		if t.AssignedUsers == nil {
			t.AssignedUsers = []models.AssigneeInfo{}
		}
		t.AssignedGroups = groupsByTask[t.ID]
		if t.AssignedGroups == nil {
			t.AssignedGroups = []models.AssignedGroupInfo{}
		}

		if len(t.AssignedUsers) > 0 {
			names := make([]string, 0, len(t.AssignedUsers))
			discordIDs := make([]string, 0, len(t.AssignedUsers))
			for _, u := range t.AssignedUsers {
				names = append(names, u.Username)
				if u.DiscordID != nil {
					discordIDs = append(discordIDs, *u.DiscordID)
				}
			}
			t.AssignedUserName = strings.Join(names, ", ")
			t.AssignedUserDiscordID = strings.Join(discordIDs, ",")
		}
		if len(t.AssignedGroups) > 0 {
			names := make([]string, 0, len(t.AssignedGroups))
			for _, g := range t.AssignedGroups {
				names = append(names, g.Name)
			}
			t.AssignedGroupName = strings.Join(names, ", ")
		}
	}
	return nil
}
