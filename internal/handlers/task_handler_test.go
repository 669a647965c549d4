package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"todo-tracker-api/internal/auth"
	"todo-tracker-api/internal/database"
	"todo-tracker-api/internal/middleware"
	"todo-tracker-api/internal/models"
	"todo-tracker-api/internal/notify"
	"todo-tracker-api/internal/resolver"
	"todo-tracker-api/internal/testutil"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

type taskTestEnv struct {
	router   *gin.Engine
	resolver *resolver.Resolver
}

func newTaskRouter(t *testing.T) *taskTestEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db, err := testutil.NewInMemoryDB()
	require.NoError(t, err)
	database.DB = db

	res := resolver.New(db)
	h := &TaskHandler{Resolver: res, Notifier: notify.Noop{}}

	r := gin.New()
	protected := r.Group("/api")
	protected.Use(middleware.SessionAuth(nil))
	protected.GET("/tasks", h.List)
	protected.GET("/tasks/my", h.Mine)
	protected.GET("/tasks/stats", h.Stats)
	protected.GET("/tasks/:id", h.Get)
	protected.POST("/tasks", h.Create)
	protected.PUT("/tasks/:id", h.Update)
	protected.DELETE("/tasks/:id", h.Delete)
	protected.POST("/tasks/:id/comments", h.AddComment)

	return &taskTestEnv{router: r, resolver: res}
}

func seedSessionUser(t *testing.T, username, discordID string) (models.User, string) {
	t.Helper()
	db := database.GetDB()
	user := models.User{Username: username, DiscordID: &discordID}
	require.NoError(t, db.Create(&user).Error)
	session, err := auth.CreateSession(db, &user.ID, &discordID, time.Hour)
	require.NoError(t, err)
	return user, session.Token
}

func adminToken(t *testing.T) string {
	t.Helper()
	session, err := auth.CreateSession(database.GetDB(), nil, nil, time.Hour)
	require.NoError(t, err)
	return session.Token
}

func itoa(id uint) string { return strconv.FormatUint(uint64(id), 10) }

func doJSON(r *gin.Engine, method, path string, payload any, token string) *httptest.ResponseRecorder {
	var req *http.Request
	if payload != nil {
		body, _ := json.Marshal(payload)
		req = httptest.NewRequest(method, path, bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCreateTask_WithAssignees(t *testing.T) {
	env := newTaskRouter(t)
	alice, token := seedSessionUser(t, "alice", "d-alice")
	bob, _ := seedSessionUser(t, "bob", "d-bob")

	payload := map[string]any{
		"title":           "Test Task",
		"description":     "Desc",
		"priority":        "high",
		"dueDate":         "2026-09-15",
		"assignedType":    "user",
		"assignedUserIds": []uint{bob.ID},
	}
	w := doJSON(env.router, http.MethodPost, "/api/tasks", payload, token)
	require.Equal(t, http.StatusCreated, w.Code)

	var created models.Task
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	require.Equal(t, alice.ID, created.CreatedBy)
	require.Len(t, created.AssignedUsers, 1)
	require.Equal(t, bob.ID, created.AssignedUsers[0].ID)
	require.NotNil(t, created.DueDate)
	require.Equal(t, "2026-09-15", created.DueDate.Format("2006-01-02"))
}

func TestCreateTask_LegacyScalarRequest(t *testing.T) {
	env := newTaskRouter(t)
	_, token := seedSessionUser(t, "alice", "d-alice")
	bob, _ := seedSessionUser(t, "bob", "d-bob")

	payload := map[string]any{"title": "legacy", "assignedUserId": bob.ID}
	w := doJSON(env.router, http.MethodPost, "/api/tasks", payload, token)
	require.Equal(t, http.StatusCreated, w.Code)

	var created models.Task
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	require.Len(t, created.AssignedUsers, 1)
	require.NotNil(t, created.AssignedUserID)
	require.Equal(t, bob.ID, *created.AssignedUserID)
}

func TestCreateTask_TitleRequired(t *testing.T) {
	env := newTaskRouter(t)
	_, token := seedSessionUser(t, "alice", "d-alice")

	w := doJSON(env.router, http.MethodPost, "/api/tasks", map[string]any{"description": "x"}, token)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateTask_AdminSessionUsesSystemUser(t *testing.T) {
	env := newTaskRouter(t)
	token := adminToken(t)

	w := doJSON(env.router, http.MethodPost, "/api/tasks", map[string]any{"title": "from admin"}, token)
	require.Equal(t, http.StatusCreated, w.Code)

	var created models.Task
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	require.Equal(t, models.SystemUsername, created.CreatorName)
}

func TestUpdateTask_CompleteClearsPriority(t *testing.T) {
	env := newTaskRouter(t)
	alice, token := seedSessionUser(t, "alice", "d-alice")

	urgent := models.PriorityUrgent
	task, err := env.resolver.Create(resolver.CreateInput{Title: "deploy", CreatedBy: alice.ID, Priority: &urgent})
	require.NoError(t, err)

	w := doJSON(env.router, http.MethodPut, "/api/tasks/"+itoa(task.ID), map[string]any{"status": "completed"}, token)
	require.Equal(t, http.StatusOK, w.Code)

	var updated models.Task
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &updated))
	require.Equal(t, models.StatusCompleted, updated.Status)
	require.Nil(t, updated.Priority)
	require.NotNil(t, updated.CompletedAt)
}

func TestUpdateTask_NotFound(t *testing.T) {
	env := newTaskRouter(t)
	_, token := seedSessionUser(t, "alice", "d-alice")

	w := doJSON(env.router, http.MethodPut, "/api/tasks/9999", map[string]any{"title": "x"}, token)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeleteTask(t *testing.T) {
	env := newTaskRouter(t)
	alice, token := seedSessionUser(t, "alice", "d-alice")

	task, err := env.resolver.Create(resolver.CreateInput{Title: "bye", CreatedBy: alice.ID})
	require.NoError(t, err)

	w := doJSON(env.router, http.MethodDelete, "/api/tasks/"+itoa(task.ID), nil, token)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(env.router, http.MethodGet, "/api/tasks/"+itoa(task.ID), nil, token)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetTask_IncludesComments(t *testing.T) {
	env := newTaskRouter(t)
	alice, token := seedSessionUser(t, "alice", "d-alice")

	task, err := env.resolver.Create(resolver.CreateInput{Title: "talk", CreatedBy: alice.ID})
	require.NoError(t, err)
	require.NoError(t, env.resolver.AddComment(task.ID, alice.ID, "hello"))

	w := doJSON(env.router, http.MethodGet, "/api/tasks/"+itoa(task.ID), nil, token)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		models.Task
		Comments []models.TaskComment `json:"comments"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Comments, 1)
	require.Equal(t, "hello", resp.Comments[0].Content)
	require.Equal(t, "alice", resp.Comments[0].Username)
}

func TestAddComment_RequiresUserSession(t *testing.T) {
	env := newTaskRouter(t)
	alice, userToken := seedSessionUser(t, "alice", "d-alice")
	admin := adminToken(t)

	task, err := env.resolver.Create(resolver.CreateInput{Title: "talk", CreatedBy: alice.ID})
	require.NoError(t, err)

	w := doJSON(env.router, http.MethodPost, "/api/tasks/"+itoa(task.ID)+"/comments",
		map[string]any{"content": "from admin"}, admin)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(env.router, http.MethodPost, "/api/tasks/"+itoa(task.ID)+"/comments",
		map[string]any{"content": "from alice"}, userToken)
	require.Equal(t, http.StatusCreated, w.Code)

	var comments []models.TaskComment
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &comments))
	require.Len(t, comments, 1)
}

func TestMyTasks_EmptyForAdminSession(t *testing.T) {
	env := newTaskRouter(t)
	alice, userToken := seedSessionUser(t, "alice", "d-alice")
	admin := adminToken(t)

	_, err := env.resolver.Create(resolver.CreateInput{Title: "mine", CreatedBy: alice.ID, AssignedUserIDs: []uint{alice.ID}})
	require.NoError(t, err)

	w := doJSON(env.router, http.MethodGet, "/api/tasks/my", nil, admin)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "[]", w.Body.String())

	w = doJSON(env.router, http.MethodGet, "/api/tasks/my", nil, userToken)
	require.Equal(t, http.StatusOK, w.Code)
	var tasks []models.Task
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &tasks))
	require.Len(t, tasks, 1)
}

func TestStatsEndpoint(t *testing.T) {
	env := newTaskRouter(t)
	alice, token := seedSessionUser(t, "alice", "d-alice")

	_, err := env.resolver.Create(resolver.CreateInput{Title: "a", CreatedBy: alice.ID})
	require.NoError(t, err)

	w := doJSON(env.router, http.MethodGet, "/api/tasks/stats", nil, token)
	require.Equal(t, http.StatusOK, w.Code)

	var stats resolver.Stats
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	require.EqualValues(t, 1, stats.Total)
	require.EqualValues(t, 1, stats.Pending)
}
