package auth

import (
	"time"

	"todo-tracker-api/internal/models"

	"gorm.io/gorm"
)

// RecordAttempt logs one login attempt. History is immutable: successes are
// recorded too but never reset the failure count.
func RecordAttempt(db *gorm.DB, ipAddress string, success bool) error {
	return db.Create(&models.LoginAttempt{IPAddress: ipAddress, Success: success}).Error
}

// RecentFailures counts failed attempts from one address within the rolling
// window. Only failures count toward lockout.
func RecentFailures(db *gorm.DB, ipAddress string, window time.Duration) (int64, error) {
	var count int64
	err := db.Model(&models.LoginAttempt{}).
		Where("ip_address = ? AND success = ? AND attempted_at > ?", ipAddress, false, now().Add(-window)).
		Count(&count).Error
	return count, err
}
