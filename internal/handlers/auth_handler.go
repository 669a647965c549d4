package handlers

import (
	"net/http"
	"time"

	"todo-tracker-api/internal/auth"
	"todo-tracker-api/internal/config"
	"todo-tracker-api/internal/database"
	"todo-tracker-api/internal/discord"
	"todo-tracker-api/internal/middleware"
	"todo-tracker-api/internal/store"

	"github.com/gin-gonic/gin"
)

// AuthHandler serves the /api/auth endpoints.
type AuthHandler struct {
	Cfg     config.Config
	Discord *discord.Client
}

// Config handles GET /api/auth/config, telling the front end which login
// methods are available before any session exists.
func (h *AuthHandler) Config(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"enablePasswordLogin": h.Cfg.EnablePasswordLogin,
		"discordEnabled":      h.Discord.Enabled(),
	})
}

// PasswordLogin handles POST /api/auth/login/password. The lockout window is
// checked before the password is compared, so a locked-out address learns
// nothing about credential validity.
func (h *AuthHandler) PasswordLogin(c *gin.Context) {
	if !h.Cfg.EnablePasswordLogin {
		c.JSON(http.StatusForbidden, gin.H{"error": "Password login is disabled"})
		return
	}

	db := database.GetDB()
	ip := c.ClientIP()

	failures, err := auth.RecentFailures(db, ip, h.Cfg.LockoutWindow)
	if err == nil && failures >= int64(h.Cfg.LockoutMaxAttempts) {
		c.JSON(http.StatusTooManyRequests, gin.H{
			"error":      "Too many failed attempts. Please try again later.",
			"retryAfter": int(h.Cfg.LockoutWindow.Seconds()),
		})
		return
	}

	var req struct {
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Password == "" {
		_ = auth.RecordAttempt(db, ip, false)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Password is required"})
		return
	}

	if h.Cfg.AdminPassword == "" && h.Cfg.AdminPasswordHash == "" {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server not configured for password auth"})
		return
	}

	if !auth.VerifyAdminPassword(req.Password, h.Cfg.AdminPassword, h.Cfg.AdminPasswordHash) {
		_ = auth.RecordAttempt(db, ip, false)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid password"})
		return
	}

	_ = auth.RecordAttempt(db, ip, true)

	session, err := auth.CreateSession(db, nil, nil, h.Cfg.PasswordSessionTTL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create session"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token":     session.Token,
		"expiresAt": session.ExpiresAt.Format(time.RFC3339),
		"authType":  "password",
	})
}

// DiscordAuthURL handles GET /api/auth/discord: it hands the front end the
// authorization URL with a short-lived signed state token baked in.
func (h *AuthHandler) DiscordAuthURL(c *gin.Context) {
	state, err := auth.NewStateToken(h.Cfg.SessionSecret, 10*time.Minute)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build auth URL"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": h.Discord.AuthorizeURL(state)})
}

// DiscordCallback handles POST /api/auth/discord/callback: code exchange,
// identity fetch, guild membership and role permission checks, then a
// session tied to the upserted user.
func (h *AuthHandler) DiscordCallback(c *gin.Context) {
	var req struct {
		Code  string `json:"code"`
		State string `json:"state"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Authorization code is required"})
		return
	}
	if err := auth.ValidateStateToken(h.Cfg.SessionSecret, req.State); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid state"})
		return
	}

	ctx := c.Request.Context()

	accessToken, err := h.Discord.ExchangeCode(ctx, req.Code)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Failed to exchange code for token"})
		return
	}

	discordUser, err := h.Discord.FetchUser(ctx, accessToken)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Failed to get user info"})
		return
	}

	isMember, err := h.Discord.IsGuildMember(ctx, accessToken)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Failed to get guilds info"})
		return
	}
	if !isMember {
		c.JSON(http.StatusForbidden, gin.H{"error": "You are not a member of the required server"})
		return
	}

	if decision := h.Discord.CheckPermission(ctx, discordUser.ID); !decision.Allowed {
		c.JSON(http.StatusForbidden, gin.H{"error": decision.Reason})
		return
	}

	db := database.GetDB()
	user, err := store.UpsertDiscordUser(db, discordUser.ID, discordUser.Username, discordUser.Discriminator, discordUser.Avatar)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Authentication failed"})
		return
	}

	session, err := auth.CreateSession(db, &user.ID, &discordUser.ID, h.Cfg.DiscordSessionTTL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create session"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token":     session.Token,
		"expiresAt": session.ExpiresAt.Format(time.RFC3339),
		"authType":  "discord",
		"user": gin.H{
			"id":        user.ID,
			"discordId": discordUser.ID,
			"username":  user.Username,
			"avatar":    user.Avatar,
		},
	})
}

// Session handles GET /api/auth/session behind the auth middleware.
func (h *AuthHandler) Session(c *gin.Context) {
	var userPayload gin.H
	if user := middleware.CurrentUser(c); user != nil {
		userPayload = gin.H{
			"id":        user.ID,
			"discordId": user.DiscordID,
			"username":  user.Username,
			"avatar":    user.Avatar,
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"valid": true,
		"user":  userPayload,
	})
}

// Logout handles POST /api/auth/logout.
func (h *AuthHandler) Logout(c *gin.Context) {
	if session := middleware.CurrentSession(c); session != nil {
		_ = auth.DeleteSession(database.GetDB(), session.Token)
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
