package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"todo-tracker-api/internal/database"
	"todo-tracker-api/internal/discord"
	"todo-tracker-api/internal/middleware"
	"todo-tracker-api/internal/models"
	"todo-tracker-api/internal/store"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// GroupHandler serves the /api/groups endpoints. Discord role side effects
// are best-effort: the group operation itself never fails because the role
// call did.
type GroupHandler struct {
	Discord *discord.Client
}

type groupWithMemberCount struct {
	models.Group
	MemberCount int `json:"memberCount"`
}

type groupWithMembers struct {
	models.Group
	Members []models.User `json:"members"`
}

// List handles GET /api/groups with a member count per group.
func (h *GroupHandler) List(c *gin.Context) {
	db := database.GetDB()
	var groups []models.Group
	if err := db.Order("id").Find(&groups).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch groups"})
		return
	}

	out := make([]groupWithMemberCount, 0, len(groups))
	for _, g := range groups {
		var count int64
		db.Model(&models.GroupMember{}).Where("group_id = ?", g.ID).Count(&count)
		out = append(out, groupWithMemberCount{Group: g, MemberCount: int(count)})
	}
	c.JSON(http.StatusOK, out)
}

// Get handles GET /api/groups/:id, returning the group with its members.
func (h *GroupHandler) Get(c *gin.Context) {
	group, ok := findGroup(c)
	if !ok {
		return
	}
	members, err := store.GroupMembers(database.GetDB(), group.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch members"})
		return
	}
	c.JSON(http.StatusOK, groupWithMembers{Group: *group, Members: members})
}

// Create handles POST /api/groups. When the Discord client is configured, a
// matching guild role is created and linked.
func (h *GroupHandler) Create(c *gin.Context) {
	var req struct {
		Name        string  `json:"name"`
		Description *string `json:"description"`
		Color       string  `json:"color"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Name is required"})
		return
	}
	color := req.Color
	if color == "" {
		color = models.DefaultGroupColor
	}

	group := models.Group{
		Name:        req.Name,
		Description: req.Description,
		Color:       color,
	}
	if user := middleware.CurrentUser(c); user != nil {
		group.CreatedBy = &user.ID
	}

	db := database.GetDB()
	if err := db.Create(&group).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create group"})
		return
	}

	if roleID, err := h.Discord.CreateGroupRole(c.Request.Context(), group.Name, color); err != nil {
		log.Println("failed to create group role:", err)
	} else if roleID != "" {
		group.DiscordRoleID = &roleID
		db.Model(&group).Update("discord_role_id", roleID)
	}

	c.JSON(http.StatusCreated, group)
}

// Update handles PUT /api/groups/:id. The linked Discord role is left alone.
func (h *GroupHandler) Update(c *gin.Context) {
	group, ok := findGroup(c)
	if !ok {
		return
	}
	var req struct {
		Name        *string `json:"name"`
		Description *string `json:"description"`
		Color       *string `json:"color"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	updates := map[string]any{}
	if req.Name != nil && *req.Name != "" {
		updates["name"] = *req.Name
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Color != nil && *req.Color != "" {
		updates["color"] = *req.Color
	}

	db := database.GetDB()
	if len(updates) > 0 {
		if err := db.Model(group).Updates(updates).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update group"})
			return
		}
	}
	var fresh models.Group
	if err := db.First(&fresh, group.ID).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch group"})
		return
	}
	c.JSON(http.StatusOK, fresh)
}

// Delete handles DELETE /api/groups/:id. The group, its memberships and its
// task assignments go away together; the linked Discord role is removed
// best-effort first.
func (h *GroupHandler) Delete(c *gin.Context) {
	group, ok := findGroup(c)
	if !ok {
		return
	}

	if group.DiscordRoleID != nil {
		if err := h.Discord.DeleteGroupRole(c.Request.Context(), *group.DiscordRoleID); err != nil {
			log.Println("failed to delete group role:", err)
		}
	}

	if err := store.DeleteGroup(database.GetDB(), group.ID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete group"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// AddMember handles POST /api/groups/:id/members. The user is picked by id
// or by Discord id.
func (h *GroupHandler) AddMember(c *gin.Context) {
	group, ok := findGroup(c)
	if !ok {
		return
	}
	var req struct {
		UserID    *uint   `json:"userId"`
		DiscordID *string `json:"discordId"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	db := database.GetDB()
	var user models.User
	var err error
	switch {
	case req.UserID != nil:
		err = db.First(&user, *req.UserID).Error
	case req.DiscordID != nil && *req.DiscordID != "":
		err = db.Where("discord_id = ?", *req.DiscordID).First(&user).Error
	default:
		err = gorm.ErrRecordNotFound
	}
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	if err := store.AddMember(db, group.ID, user.ID); err != nil {
		if errors.Is(err, store.ErrAlreadyMember) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add member"})
		return
	}

	if group.DiscordRoleID != nil && user.DiscordID != nil {
		if err := h.Discord.AddMemberRole(c.Request.Context(), *user.DiscordID, *group.DiscordRoleID); err != nil {
			log.Println("failed to add role to member:", err)
		}
	}

	members, err := store.GroupMembers(db, group.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch members"})
		return
	}
	c.JSON(http.StatusCreated, members)
}

// RemoveMember handles DELETE /api/groups/:id/members/:userId.
func (h *GroupHandler) RemoveMember(c *gin.Context) {
	group, ok := findGroup(c)
	if !ok {
		return
	}
	userID, err := strconv.ParseUint(c.Param("userId"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user id"})
		return
	}

	db := database.GetDB()
	if group.DiscordRoleID != nil {
		var user models.User
		if err := db.First(&user, uint(userID)).Error; err == nil && user.DiscordID != nil {
			if err := h.Discord.RemoveMemberRole(c.Request.Context(), *user.DiscordID, *group.DiscordRoleID); err != nil {
				log.Println("failed to remove role from member:", err)
			}
		}
	}

	if err := store.RemoveMember(db, group.ID, uint(userID)); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to remove member"})
		return
	}

	members, err := store.GroupMembers(db, group.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch members"})
		return
	}
	c.JSON(http.StatusOK, members)
}

func findGroup(c *gin.Context) (*models.Group, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid group id"})
		return nil, false
	}
	var group models.Group
	if err := database.GetDB().First(&group, uint(id)).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Group not found"})
		return nil, false
	}
	return &group, true
}
