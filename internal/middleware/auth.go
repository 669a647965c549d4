package middleware

import (
	"net/http"
	"strings"

	"todo-tracker-api/internal/auth"
	"todo-tracker-api/internal/database"
	"todo-tracker-api/internal/discord"
	"todo-tracker-api/internal/models"

	"github.com/gin-gonic/gin"
)

// SessionAuth validates the opaque session token from the Authorization
// header and loads the session owner. Discord-backed sessions are re-checked
// against the configured permission rule on every request, so a revoked role
// locks the user out without waiting for session expiry.
func SessionAuth(checker discord.PermissionChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		tokenString := ""
		if authHeader != "" {
			// Extract token from "Bearer <token>"
			parts := strings.Split(authHeader, " ")
			if len(parts) == 2 && parts[0] == "Bearer" {
				tokenString = parts[1]
			}
		}
		// Fallback for WebSocket/browser where custom headers cannot be set: allow token in query param
		if tokenString == "" {
			tokenString = c.Query("token")
		}
		if tokenString == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Authorization token is required",
			})
			c.Abort()
			return
		}

		session, err := auth.FindSession(database.GetDB(), tokenString)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid or expired session",
			})
			c.Abort()
			return
		}

		if session.DiscordID != nil && checker != nil {
			decision := checker.CheckPermission(c.Request.Context(), *session.DiscordID)
			if !decision.Allowed {
				c.JSON(http.StatusForbidden, gin.H{
					"error": decision.Reason,
				})
				c.Abort()
				return
			}
		}

		c.Set("session", session)

		if session.UserID != nil {
			var user models.User
			if err := database.GetDB().First(&user, *session.UserID).Error; err == nil {
				c.Set("user", &user)
			}
		}

		c.Next()
	}
}

// CurrentSession returns the session stored by SessionAuth.
func CurrentSession(c *gin.Context) *models.Session {
	if v, ok := c.Get("session"); ok {
		if s, ok := v.(*models.Session); ok {
			return s
		}
	}
	return nil
}

// CurrentUser returns the authenticated user, or nil for password sessions,
// which have no user row behind them.
func CurrentUser(c *gin.Context) *models.User {
	if v, ok := c.Get("user"); ok {
		if u, ok := v.(*models.User); ok {
			return u
		}
	}
	return nil
}

// IsAdminSession reports whether the request is backed by a password login.
// Password sessions are not tied to a user and carry admin privileges.
func IsAdminSession(c *gin.Context) bool {
	s := CurrentSession(c)
	return s != nil && s.UserID == nil
}
