// Package auth implements the session gate: opaque bearer tokens with fixed
// expiry, per-IP login lockout, and the signed OAuth state parameter.
package auth

import (
	"time"

	"todo-tracker-api/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// now is a small indirection to allow test stubbing.
var now = time.Now

// CreateSession issues a new opaque token. userID is nil for shared-password
// sessions. Expiry is fixed at creation; there is no sliding renewal.
func CreateSession(db *gorm.DB, userID *uint, discordID *string, ttl time.Duration) (*models.Session, error) {
	session := models.Session{
		Token:     uuid.NewString(),
		UserID:    userID,
		DiscordID: discordID,
		ExpiresAt: now().Add(ttl),
	}
	if err := db.Create(&session).Error; err != nil {
		return nil, err
	}
	return &session, nil
}

// FindSession returns the session for a token only while it is unexpired.
// Expired sessions are indistinguishable from missing ones.
func FindSession(db *gorm.DB, token string) (*models.Session, error) {
	var session models.Session
	err := db.Where("token = ? AND expires_at > ?", token, now()).First(&session).Error
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// DeleteSession revokes a token (logout). Deleting an unknown token is a no-op.
func DeleteSession(db *gorm.DB, token string) error {
	return db.Where("token = ?", token).Delete(&models.Session{}).Error
}

// PurgeExpired removes expired sessions and login attempts older than the
// retention window. Safe to re-run at any time.
func PurgeExpired(db *gorm.DB, attemptRetention time.Duration) error {
	if err := db.Where("expires_at < ?", now()).Delete(&models.Session{}).Error; err != nil {
		return err
	}
	return db.Where("attempted_at < ?", now().Add(-attemptRetention)).Delete(&models.LoginAttempt{}).Error
}
