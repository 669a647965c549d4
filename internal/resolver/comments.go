package resolver

import (
	"todo-tracker-api/internal/models"
)

// AddComment appends a note to a task. The task must exist and content must
// be non-empty; comments are never edited afterwards.
func (r *Resolver) AddComment(taskID, userID uint, content string) error {
	if content == "" {
		return ErrContentRequired
	}
	var task models.Task
	if err := r.db.First(&task, taskID).Error; err != nil {
		return err
	}
	comment := models.TaskComment{TaskID: taskID, UserID: userID, Content: content}
	return r.db.Create(&comment).Error
}

// Comments returns a task's comments in insertion order with the commenter's
// identity joined in.
func (r *Resolver) Comments(taskID uint) ([]models.TaskComment, error) {
	var comments []models.TaskComment
	err := r.db.Model(&models.TaskComment{}).
		Select("task_comments.*, u.username AS username, u.discord_id AS discord_id").
		Joins("LEFT JOIN users u ON u.id = task_comments.user_id").
		Where("task_comments.task_id = ?", taskID).
		Order("task_comments.created_at ASC, task_comments.id ASC").
		Find(&comments).Error
	if err != nil {
		return nil, err
	}
	if comments == nil {
		comments = []models.TaskComment{}
	}
	return comments, nil
}
