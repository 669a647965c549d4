package store

import (
	"errors"

	"todo-tracker-api/internal/models"

	"gorm.io/gorm"
)

// ErrAlreadyMember is returned when adding a user who is already in the group.
var ErrAlreadyMember = errors.New("user is already a member of this group")

// GroupMembers returns a group's users ordered by username.
func GroupMembers(db *gorm.DB, groupID uint) ([]models.User, error) {
	var users []models.User
	err := db.Model(&models.User{}).
		Joins("INNER JOIN group_members gm ON gm.user_id = users.id").
		Where("gm.group_id = ?", groupID).
		Order("users.username ASC").
		Find(&users).Error
	if err != nil {
		return nil, err
	}
	if users == nil {
		users = []models.User{}
	}
	return users, nil
}

// UserGroups returns the groups a user belongs to, ordered by name.
func UserGroups(db *gorm.DB, userID uint) ([]models.Group, error) {
	var groups []models.Group
	err := db.Model(&models.Group{}).
		Joins("INNER JOIN group_members gm ON gm.group_id = groups.id").
		Where("gm.user_id = ?", userID).
		Order("groups.name ASC").
		Find(&groups).Error
	if err != nil {
		return nil, err
	}
	if groups == nil {
		groups = []models.Group{}
	}
	return groups, nil
}

// AddMember inserts a membership row; at most one per (group, user).
func AddMember(db *gorm.DB, groupID, userID uint) error {
	var count int64
	if err := db.Model(&models.GroupMember{}).
		Where("group_id = ? AND user_id = ?", groupID, userID).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return ErrAlreadyMember
	}
	return db.Create(&models.GroupMember{GroupID: groupID, UserID: userID}).Error
}

// RemoveMember deletes a membership row if present.
func RemoveMember(db *gorm.DB, groupID, userID uint) error {
	return db.Where("group_id = ? AND user_id = ?", groupID, userID).
		Delete(&models.GroupMember{}).Error
}

// DeleteGroup removes a group together with its membership rows and its
// task assignments, then recomputes the legacy assigned_group_id scalar for
// every task that pointed at it. Tasks themselves are never deleted here.
func DeleteGroup(db *gorm.DB, groupID uint) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("group_id = ?", groupID).Delete(&models.GroupMember{}).Error; err != nil {
			return err
		}
		if err := tx.Where("group_id = ?", groupID).Delete(&models.TaskAssignedGroup{}).Error; err != nil {
			return err
		}
		err := tx.Exec(`UPDATE tasks SET assigned_group_id = (
				SELECT group_id FROM task_assigned_groups
				WHERE task_id = tasks.id ORDER BY id LIMIT 1)
			WHERE assigned_group_id = ?`, groupID).Error
		if err != nil {
			return err
		}
		return tx.Delete(&models.Group{}, groupID).Error
	})
}
