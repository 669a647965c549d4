package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"todo-tracker-api/internal/database"
	"todo-tracker-api/internal/middleware"
	"todo-tracker-api/internal/resolver"
	"todo-tracker-api/internal/testutil"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func newExportRouter(t *testing.T) (*gin.Engine, *resolver.Resolver) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db, err := testutil.NewInMemoryDB()
	require.NoError(t, err)
	database.DB = db

	res := resolver.New(db)
	h := &ExportHandler{Resolver: res}
	r := gin.New()
	protected := r.Group("/api")
	protected.Use(middleware.SessionAuth(nil))
	protected.GET("/export/txt", h.Text)
	protected.GET("/export/csv", h.CSV)
	protected.GET("/export/json", h.JSON)
	protected.POST("/export/import", h.Import)
	return r, res
}

func seedExportTask(t *testing.T, res *resolver.Resolver, title string) {
	t.Helper()
	user, _ := seedSessionUser(t, "creator-"+title, "d-"+title)
	_, err := res.Create(resolver.CreateInput{Title: title, CreatedBy: user.ID})
	require.NoError(t, err)
}

func TestExportText_Attachment(t *testing.T) {
	r, res := newExportRouter(t)
	_, token := seedSessionUser(t, "alice", "d-alice")
	seedExportTask(t, res, "Ship release")

	w := doJSON(r, http.MethodGet, "/api/export/txt", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, `attachment; filename="tasks.txt"`, w.Header().Get("Content-Disposition"))
	require.Contains(t, w.Body.String(), "Ship release")
	require.Contains(t, w.Body.String(), "Task List")
}

func TestExportCSV_StartsWithBOM(t *testing.T) {
	r, res := newExportRouter(t)
	_, token := seedSessionUser(t, "alice", "d-alice")
	seedExportTask(t, res, "Ship release")

	w := doJSON(r, http.MethodGet, "/api/export/csv", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, `attachment; filename="tasks.csv"`, w.Header().Get("Content-Disposition"))
	require.True(t, strings.HasPrefix(w.Body.String(), "\xEF\xBB\xBF"))
	require.Contains(t, w.Body.String(), "Ship release")
}

func TestExportJSON_RoundTrips(t *testing.T) {
	r, res := newExportRouter(t)
	_, token := seedSessionUser(t, "alice", "d-alice")
	seedExportTask(t, res, "Ship release")

	w := doJSON(r, http.MethodGet, "/api/export/json", nil, token)
	require.Equal(t, http.StatusOK, w.Code)

	var doc struct {
		TotalTasks int `json:"totalTasks"`
		Tasks      []struct {
			Title string `json:"title"`
		} `json:"tasks"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &doc))
	require.Equal(t, 1, doc.TotalTasks)
	require.Equal(t, "Ship release", doc.Tasks[0].Title)
}

func TestImport_RequiresAdminSession(t *testing.T) {
	r, _ := newExportRouter(t)
	_, token := seedSessionUser(t, "alice", "d-alice")

	w := doJSON(r, http.MethodPost, "/api/export/import", map[string]any{"tasks": []any{}}, token)
	require.Equal(t, http.StatusForbidden, w.Code)
}

func TestImport_ReplacesDataset(t *testing.T) {
	r, res := newExportRouter(t)
	token := adminToken(t)
	seedExportTask(t, res, "Old task")

	payload := map[string]any{
		"tasks": []map[string]any{
			{"id": 7, "title": "Imported task", "status": "pending"},
		},
	}
	w := doJSON(r, http.MethodPost, "/api/export/import", payload, token)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"imported":1`)

	tasks, err := res.List(resolver.Filter{})
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	require.Equal(t, uint(7), tasks[0].ID)
	require.Equal(t, "Imported task", tasks[0].Title)
}

func TestImport_RejectsInvalidDocument(t *testing.T) {
	r, _ := newExportRouter(t)
	token := adminToken(t)

	payload := map[string]any{
		"tasks": []map[string]any{
			{"id": 1, "status": "pending"},
		},
	}
	w := doJSON(r, http.MethodPost, "/api/export/import", payload, token)
	require.Equal(t, http.StatusBadRequest, w.Code)
}
