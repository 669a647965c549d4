package export

import (
	"fmt"
	"strings"

	"todo-tracker-api/internal/models"
	"todo-tracker-api/internal/store"

	"gorm.io/gorm"
)

// Validate checks a document before the destructive import transaction is
// allowed to start. All record problems are reported at once.
func (d *Document) Validate() error {
	if d.Tasks == nil {
		return fmt.Errorf("document has no tasks array")
	}
	var problems []string
	for i, t := range d.Tasks {
		if strings.TrimSpace(t.Title) == "" {
			problems = append(problems, fmt.Sprintf("task %d: title is required", i))
		}
		if t.Status != "" && !models.ValidStatus(t.Status) {
			problems = append(problems, fmt.Sprintf("task %d: unknown status %q", i, t.Status))
		}
		if t.Priority != nil && !models.ValidPriority(*t.Priority) {
			problems = append(problems, fmt.Sprintf("task %d: unknown priority %q", i, *t.Priority))
		}
		if t.AssignedType != nil && !models.ValidAssignedType(*t.AssignedType) {
			problems = append(problems, fmt.Sprintf("task %d: unknown assigned type %q", i, *t.AssignedType))
		}
	}
	if len(problems) > 0 {
		return fmt.Errorf("invalid import document: %s", strings.Join(problems, "; "))
	}
	return nil
}

// Import replaces the entire task dataset with the document's contents in a
// single transaction. Task ids are preserved; assignee and group names are
// resolved back to existing rows, and names that no longer resolve are
// dropped silently. A failure anywhere rolls the whole import back.
func Import(db *gorm.DB, doc *Document) error {
	if err := doc.Validate(); err != nil {
		return err
	}

	return db.Transaction(func(tx *gorm.DB) error {
		for _, table := range []string{"task_comments", "task_assignees", "task_assigned_groups", "tasks"} {
			if err := tx.Exec("DELETE FROM " + table).Error; err != nil {
				return err
			}
		}

		system, err := store.SystemUser(tx)
		if err != nil {
			return err
		}

		for _, rec := range doc.Tasks {
			creatorID := system.ID
			if rec.CreatedBy != "" {
				var creator models.User
				if err := tx.Where("username = ?", rec.CreatedBy).First(&creator).Error; err == nil {
					creatorID = creator.ID
				}
			}

			status := rec.Status
			if status == "" {
				status = models.StatusPending
			}

			userIDs := resolveUserIDs(tx, rec.AssignedUser)
			groupIDs := resolveGroupIDs(tx, rec.AssignedGroup)

			task := models.Task{
				ID:           rec.ID,
				Title:        rec.Title,
				Description:  rec.Description,
				Status:       status,
				Priority:     rec.Priority,
				DueDate:      rec.DueDate,
				AssignedType: rec.AssignedType,
				CreatedBy:    creatorID,
				CreatedAt:    rec.CreatedAt,
				UpdatedAt:    rec.UpdatedAt,
				CompletedAt:  rec.CompletedAt,
			}
			if len(userIDs) > 0 {
				task.AssignedUserID = &userIDs[0]
			}
			if len(groupIDs) > 0 {
				task.AssignedGroupID = &groupIDs[0]
			}
			if err := tx.Create(&task).Error; err != nil {
				return err
			}

			for _, uid := range userIDs {
				if err := tx.Create(&models.TaskAssignee{TaskID: task.ID, UserID: uid}).Error; err != nil {
					return err
				}
			}
			for _, gid := range groupIDs {
				if err := tx.Create(&models.TaskAssignedGroup{TaskID: task.ID, GroupID: gid}).Error; err != nil {
					return err
				}
			}
		}
		return nil
	})
}

func resolveUserIDs(tx *gorm.DB, joinedNames string) []uint {
	var ids []uint
	for _, name := range splitNames(joinedNames) {
		var user models.User
		if err := tx.Where("username = ?", name).First(&user).Error; err == nil {
			ids = append(ids, user.ID)
		}
	}
	return ids
}

func resolveGroupIDs(tx *gorm.DB, joinedNames string) []uint {
	var ids []uint
	for _, name := range splitNames(joinedNames) {
		var group models.Group
		if err := tx.Where("name = ?", name).First(&group).Error; err == nil {
			ids = append(ids, group.ID)
		}
	}
	return ids
}

func splitNames(joined string) []string {
	var out []string
	for _, part := range strings.Split(joined, ",") {
		if name := strings.TrimSpace(part); name != "" {
			out = append(out, name)
		}
	}
	return out
}
