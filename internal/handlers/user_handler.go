package handlers

import (
	"log"
	"net/http"
	"strconv"

	"todo-tracker-api/internal/database"
	"todo-tracker-api/internal/discord"
	"todo-tracker-api/internal/models"
	"todo-tracker-api/internal/store"

	"github.com/gin-gonic/gin"
)

// UserHandler serves the /api/users endpoints.
type UserHandler struct {
	Discord *discord.Client
}

type userWithGroups struct {
	models.User
	Groups []models.Group `json:"groups"`
}

// List handles GET /api/users. Guild members are synced into the users table
// first when the Discord client is configured, so the directory covers
// people who never logged in through the web.
func (h *UserHandler) List(c *gin.Context) {
	db := database.GetDB()

	if h.Discord.Enabled() && h.Discord.GuildID() != "" {
		members, err := h.Discord.ListGuildMembers(c.Request.Context(), 1000)
		if err != nil {
			log.Println("failed to sync guild members:", err)
		} else {
			for _, m := range members {
				if m.User.Bot {
					continue
				}
				username := m.User.Username
				if m.Nick != nil && *m.Nick != "" {
					username = *m.Nick
				}
				if _, err := store.UpsertDiscordUser(db, m.User.ID, username, m.User.Discriminator, m.User.Avatar); err != nil {
					log.Println("failed to upsert guild member:", err)
				}
			}
		}
	}

	var users []models.User
	if err := db.Order("username").Find(&users).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch users"})
		return
	}
	c.JSON(http.StatusOK, users)
}

// Get handles GET /api/users/:id, returning the user with their groups.
func (h *UserHandler) Get(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user id"})
		return
	}
	var user models.User
	if err := database.GetDB().First(&user, uint(id)).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	h.respondWithGroups(c, user)
}

// GetByDiscordID handles GET /api/users/discord/:discordId.
func (h *UserHandler) GetByDiscordID(c *gin.Context) {
	user, err := store.FindUserByDiscordID(database.GetDB(), c.Param("discordId"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	h.respondWithGroups(c, *user)
}

func (h *UserHandler) respondWithGroups(c *gin.Context, user models.User) {
	groups, err := store.UserGroups(database.GetDB(), user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch groups"})
		return
	}
	c.JSON(http.StatusOK, userWithGroups{User: user, Groups: groups})
}
