package auth

import (
	"crypto/subtle"

	"golang.org/x/crypto/bcrypt"
)

// VerifyAdminPassword checks a supplied password against the configured
// admin credential. A bcrypt hash takes precedence when set; otherwise the
// plaintext is compared in constant time. Returns false when neither is
// configured.
func VerifyAdminPassword(supplied, adminPassword, adminPasswordHash string) bool {
	if adminPasswordHash != "" {
		return bcrypt.CompareHashAndPassword([]byte(adminPasswordHash), []byte(supplied)) == nil
	}
	if adminPassword == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(supplied), []byte(adminPassword)) == 1
}
