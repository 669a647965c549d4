// Package resolver owns all task mutation and read logic. It is the single
// source of truth for "who is this task assigned to": the task_assignees and
// task_assigned_groups relations are authoritative, and the legacy scalar
// columns on tasks are refreshed as a pure projection on every write.
package resolver

import (
	"errors"
	"time"

	"todo-tracker-api/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrTitleRequired       = errors.New("title is required")
	ErrCreatorRequired     = errors.New("creator is required")
	ErrInvalidStatus       = errors.New("invalid status")
	ErrInvalidPriority     = errors.New("invalid priority")
	ErrInvalidAssignedType = errors.New("invalid assigned type")
	ErrContentRequired     = errors.New("content is required")
)

// IsValidation reports whether err is one of the synchronous validation
// errors, as opposed to a not-found or storage error.
func IsValidation(err error) bool {
	return errors.Is(err, ErrTitleRequired) ||
		errors.Is(err, ErrCreatorRequired) ||
		errors.Is(err, ErrInvalidStatus) ||
		errors.Is(err, ErrInvalidPriority) ||
		errors.Is(err, ErrInvalidAssignedType) ||
		errors.Is(err, ErrContentRequired)
}

// Resolver wraps a gorm connection. Mutations run inside transactions so the
// task row, the relation rows and the legacy scalars change atomically.
type Resolver struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Resolver {
	return &Resolver{db: db}
}

// CreateInput is the assignment spec plus the task fields accepted on create.
type CreateInput struct {
	Title            string
	Description      *string
	Status           *models.TaskStatus
	Priority         *models.TaskPriority
	DueDate          *time.Time
	AssignedType     *models.AssignedType
	AssignedUserIDs  []uint
	AssignedGroupIDs []uint
	CreatedBy        uint
}

// UpdateInput carries a partial update. Nil fields are left untouched. The
// assignment slices use pointer-to-slice so that an explicitly supplied
// empty set (clear all assignees) is distinguishable from absence.
type UpdateInput struct {
	Title            *string
	Description      *string
	Status           *models.TaskStatus
	Priority         *models.TaskPriority
	DueDate          *time.Time
	AssignedType     *models.AssignedType
	AssignedUserIDs  *[]uint
	AssignedGroupIDs *[]uint
}

// Create validates the input, inserts the task with its assignee and group
// rows, back-fills the legacy scalar columns from the first id of each set
// and returns the hydrated task.
func (r *Resolver) Create(in CreateInput) (*models.Task, error) {
	if in.Title == "" {
		return nil, ErrTitleRequired
	}
	if in.CreatedBy == 0 {
		return nil, ErrCreatorRequired
	}

	status := models.StatusPending
	if in.Status != nil {
		status = *in.Status
	}
	if !models.ValidStatus(status) {
		return nil, ErrInvalidStatus
	}

	priority := models.PriorityMedium
	if in.Priority != nil {
		priority = *in.Priority
	}
	if !models.ValidPriority(priority) {
		return nil, ErrInvalidPriority
	}

	if in.AssignedType != nil && !models.ValidAssignedType(*in.AssignedType) {
		return nil, ErrInvalidAssignedType
	}

	userIDs := dedupe(in.AssignedUserIDs)
	groupIDs := dedupe(in.AssignedGroupIDs)
	// "all" tasks carry no concrete assignees.
	if in.AssignedType != nil && *in.AssignedType == models.AssignedAll {
		userIDs = nil
		groupIDs = nil
	}

	task := models.Task{
		Title:        in.Title,
		Description:  in.Description,
		Status:       status,
		Priority:     &priority,
		DueDate:      in.DueDate,
		AssignedType: in.AssignedType,
		CreatedBy:    in.CreatedBy,
	}
	if len(userIDs) > 0 {
		task.AssignedUserID = &userIDs[0]
	}
	if len(groupIDs) > 0 {
		task.AssignedGroupID = &groupIDs[0]
	}

	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&task).Error; err != nil {
			return err
		}
		if err := insertAssignees(tx, task.ID, userIDs); err != nil {
			return err
		}
		return insertAssignedGroups(tx, task.ID, groupIDs)
	})
	if err != nil {
		return nil, err
	}

	return r.Get(task.ID)
}

// Update applies a partial update. Supplying an assignment slice, even an
// empty one, replaces the whole relation and refreshes the legacy scalar.
// A status change to completed stamps completed_at and clears priority; an
// explicit priority in the same request wins over the clear.
func (r *Resolver) Update(id uint, in UpdateInput) (*models.Task, error) {
	if in.Status != nil && !models.ValidStatus(*in.Status) {
		return nil, ErrInvalidStatus
	}
	if in.Priority != nil && !models.ValidPriority(*in.Priority) {
		return nil, ErrInvalidPriority
	}
	if in.AssignedType != nil && !models.ValidAssignedType(*in.AssignedType) {
		return nil, ErrInvalidAssignedType
	}

	err := r.db.Transaction(func(tx *gorm.DB) error {
		var existing models.Task
		if err := tx.First(&existing, id).Error; err != nil {
			return err
		}

		updates := map[string]any{}
		if in.Title != nil {
			updates["title"] = *in.Title
		}
		if in.Description != nil {
			updates["description"] = *in.Description
		}
		if in.Status != nil {
			updates["status"] = *in.Status
			if *in.Status == models.StatusCompleted {
				updates["completed_at"] = time.Now()
				updates["priority"] = nil
			}
		}
		if in.Priority != nil {
			updates["priority"] = *in.Priority
		}
		if in.DueDate != nil {
			updates["due_date"] = *in.DueDate
		}
		if in.AssignedType != nil {
			updates["assigned_type"] = *in.AssignedType
		}

		userIDs := in.AssignedUserIDs
		groupIDs := in.AssignedGroupIDs
		if in.AssignedType != nil && *in.AssignedType == models.AssignedAll {
			// switching to "all" drops any concrete assignees
			empty := []uint{}
			userIDs = &empty
			groupIDs = &empty
		}

		if userIDs != nil {
			first, err := replaceAssignees(tx, id, dedupe(*userIDs))
			if err != nil {
				return err
			}
			updates["assigned_user_id"] = first
		}
		if groupIDs != nil {
			first, err := replaceAssignedGroups(tx, id, dedupe(*groupIDs))
			if err != nil {
				return err
			}
			updates["assigned_group_id"] = first
		}

		updates["updated_at"] = time.Now()
		return tx.Model(&models.Task{}).Where("id = ?", id).Updates(updates).Error
	})
	if err != nil {
		return nil, err
	}

	return r.Get(id)
}

// Delete removes the task and, in the same transaction, its assignee rows,
// assigned-group rows and comments.
func (r *Resolver) Delete(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var task models.Task
		if err := tx.First(&task, id).Error; err != nil {
			return err
		}
		if err := tx.Where("task_id = ?", id).Delete(&models.TaskAssignee{}).Error; err != nil {
			return err
		}
		if err := tx.Where("task_id = ?", id).Delete(&models.TaskAssignedGroup{}).Error; err != nil {
			return err
		}
		if err := tx.Where("task_id = ?", id).Delete(&models.TaskComment{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Task{}, id).Error
	})
}

func insertAssignees(tx *gorm.DB, taskID uint, userIDs []uint) error {
	if len(userIDs) == 0 {
		return nil
	}
	rows := make([]models.TaskAssignee, 0, len(userIDs))
	for _, uid := range userIDs {
		rows = append(rows, models.TaskAssignee{TaskID: taskID, UserID: uid})
	}
	return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&rows).Error
}

func insertAssignedGroups(tx *gorm.DB, taskID uint, groupIDs []uint) error {
	if len(groupIDs) == 0 {
		return nil
	}
	rows := make([]models.TaskAssignedGroup, 0, len(groupIDs))
	for _, gid := range groupIDs {
		rows = append(rows, models.TaskAssignedGroup{TaskID: taskID, GroupID: gid})
	}
	return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&rows).Error
}

// replaceAssignees implements full-replace semantics: delete all rows, insert
// the supplied set, and return the new legacy scalar (first id or nil).
func replaceAssignees(tx *gorm.DB, taskID uint, userIDs []uint) (*uint, error) {
	if err := tx.Where("task_id = ?", taskID).Delete(&models.TaskAssignee{}).Error; err != nil {
		return nil, err
	}
	if err := insertAssignees(tx, taskID, userIDs); err != nil {
		return nil, err
	}
	if len(userIDs) == 0 {
		return nil, nil
	}
	return &userIDs[0], nil
}

func replaceAssignedGroups(tx *gorm.DB, taskID uint, groupIDs []uint) (*uint, error) {
	if err := tx.Where("task_id = ?", taskID).Delete(&models.TaskAssignedGroup{}).Error; err != nil {
		return nil, err
	}
	if err := insertAssignedGroups(tx, taskID, groupIDs); err != nil {
		return nil, err
	}
	if len(groupIDs) == 0 {
		return nil, nil
	}
	return &groupIDs[0], nil
}

func dedupe(ids []uint) []uint {
	if len(ids) == 0 {
		return nil
	}
	seen := make(map[uint]struct{}, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if id == 0 {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
