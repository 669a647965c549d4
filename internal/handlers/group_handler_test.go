package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"todo-tracker-api/internal/config"
	"todo-tracker-api/internal/database"
	"todo-tracker-api/internal/discord"
	"todo-tracker-api/internal/middleware"
	"todo-tracker-api/internal/models"
	"todo-tracker-api/internal/testutil"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func newGroupRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db, err := testutil.NewInMemoryDB()
	require.NoError(t, err)
	database.DB = db

	h := &GroupHandler{Discord: discord.New(config.Config{})}
	r := gin.New()
	protected := r.Group("/api")
	protected.Use(middleware.SessionAuth(nil))
	protected.GET("/groups", h.List)
	protected.GET("/groups/:id", h.Get)
	protected.POST("/groups", h.Create)
	protected.PUT("/groups/:id", h.Update)
	protected.DELETE("/groups/:id", h.Delete)
	protected.POST("/groups/:id/members", h.AddMember)
	protected.DELETE("/groups/:id/members/:userId", h.RemoveMember)
	return r
}

func TestCreateGroup_DefaultColor(t *testing.T) {
	r := newGroupRouter(t)
	_, token := seedSessionUser(t, "alice", "d-alice")

	w := doJSON(r, http.MethodPost, "/api/groups", map[string]any{"name": "devs"}, token)
	require.Equal(t, http.StatusCreated, w.Code)

	var group models.Group
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &group))
	require.Equal(t, "devs", group.Name)
	require.Equal(t, models.DefaultGroupColor, group.Color)
}

func TestCreateGroup_NameRequired(t *testing.T) {
	r := newGroupRouter(t)
	_, token := seedSessionUser(t, "alice", "d-alice")

	w := doJSON(r, http.MethodPost, "/api/groups", map[string]any{"color": "#ff0000"}, token)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGroupMembership_ConflictOnDuplicate(t *testing.T) {
	r := newGroupRouter(t)
	_, token := seedSessionUser(t, "alice", "d-alice")
	bob, _ := seedSessionUser(t, "bob", "d-bob")

	w := doJSON(r, http.MethodPost, "/api/groups", map[string]any{"name": "devs"}, token)
	require.Equal(t, http.StatusCreated, w.Code)
	var group models.Group
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &group))

	w = doJSON(r, http.MethodPost, "/api/groups/"+itoa(group.ID)+"/members", map[string]any{"userId": bob.ID}, token)
	require.Equal(t, http.StatusCreated, w.Code)
	var members []models.User
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &members))
	require.Len(t, members, 1)

	w = doJSON(r, http.MethodPost, "/api/groups/"+itoa(group.ID)+"/members", map[string]any{"userId": bob.ID}, token)
	require.Equal(t, http.StatusConflict, w.Code)

	// adding by Discord id resolves the same user
	w = doJSON(r, http.MethodPost, "/api/groups/"+itoa(group.ID)+"/members", map[string]any{"discordId": "d-bob"}, token)
	require.Equal(t, http.StatusConflict, w.Code)

	w = doJSON(r, http.MethodDelete, "/api/groups/"+itoa(group.ID)+"/members/"+itoa(bob.ID), nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &members))
	require.Empty(t, members)
}

func TestListGroups_MemberCount(t *testing.T) {
	r := newGroupRouter(t)
	_, token := seedSessionUser(t, "alice", "d-alice")
	bob, _ := seedSessionUser(t, "bob", "d-bob")

	w := doJSON(r, http.MethodPost, "/api/groups", map[string]any{"name": "devs"}, token)
	var group models.Group
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &group))
	doJSON(r, http.MethodPost, "/api/groups/"+itoa(group.ID)+"/members", map[string]any{"userId": bob.ID}, token)

	w = doJSON(r, http.MethodGet, "/api/groups", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"memberCount":1`)
}

func TestDeleteGroup(t *testing.T) {
	r := newGroupRouter(t)
	_, token := seedSessionUser(t, "alice", "d-alice")

	w := doJSON(r, http.MethodPost, "/api/groups", map[string]any{"name": "devs"}, token)
	var group models.Group
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &group))

	w = doJSON(r, http.MethodDelete, "/api/groups/"+itoa(group.ID), nil, token)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(r, http.MethodGet, "/api/groups/"+itoa(group.ID), nil, token)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestUpdateGroup(t *testing.T) {
	r := newGroupRouter(t)
	_, token := seedSessionUser(t, "alice", "d-alice")

	w := doJSON(r, http.MethodPost, "/api/groups", map[string]any{"name": "devs"}, token)
	var group models.Group
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &group))

	w = doJSON(r, http.MethodPut, "/api/groups/"+itoa(group.ID), map[string]any{"name": "platform", "color": "#ff0000"}, token)
	require.Equal(t, http.StatusOK, w.Code)

	var updated models.Group
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &updated))
	require.Equal(t, "platform", updated.Name)
	require.Equal(t, "#ff0000", updated.Color)
}
