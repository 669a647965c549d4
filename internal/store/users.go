// Package store holds the user and group persistence helpers shared by the
// auth flow, the HTTP handlers and the import path.
package store

import (
	"todo-tracker-api/internal/models"

	"gorm.io/gorm"
)

// UpsertDiscordUser creates or refreshes a user keyed by Discord identity.
// Called on every successful login and on guild member sync.
func UpsertDiscordUser(db *gorm.DB, discordID, username string, discriminator, avatar *string) (*models.User, error) {
	var user models.User
	err := db.Where("discord_id = ?", discordID).First(&user).Error
	if err == nil {
		user.Username = username
		user.Discriminator = discriminator
		user.Avatar = avatar
		if err := db.Save(&user).Error; err != nil {
			return nil, err
		}
		return &user, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	user = models.User{
		DiscordID:     &discordID,
		Username:      username,
		Discriminator: discriminator,
		Avatar:        avatar,
	}
	if err := db.Create(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// SystemUser returns the service account that owns tasks created through
// password sessions, creating it on first use. It is the only user without
// a Discord identity.
func SystemUser(db *gorm.DB) (*models.User, error) {
	var user models.User
	err := db.Where("discord_id IS NULL AND username = ?", models.SystemUsername).First(&user).Error
	if err == nil {
		return &user, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}
	user = models.User{Username: models.SystemUsername}
	if err := db.Create(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindUserByDiscordID looks a user up by external identity.
func FindUserByDiscordID(db *gorm.DB, discordID string) (*models.User, error) {
	var user models.User
	if err := db.Where("discord_id = ?", discordID).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}
