package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"todo-tracker-api/internal/database"
	"todo-tracker-api/internal/middleware"
	"todo-tracker-api/internal/models"
	"todo-tracker-api/internal/notify"
	"todo-tracker-api/internal/resolver"
	"todo-tracker-api/internal/store"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// TaskHandler serves the /api/tasks endpoints. All reads and mutations go
// through the resolver; the notifier is told about every committed change.
type TaskHandler struct {
	Resolver *resolver.Resolver
	Notifier notify.Dispatcher
}

// CreateTaskRequest represents the request payload for creating a task.
// The scalar assignedUserId/assignedGroupId fields are accepted for older
// clients and folded into the array forms.
type CreateTaskRequest struct {
	Title            string               `json:"title"`
	Description      *string              `json:"description"`
	Status           *models.TaskStatus   `json:"status"`
	Priority         *models.TaskPriority `json:"priority"`
	DueDate          *string              `json:"dueDate"`
	AssignedType     *models.AssignedType `json:"assignedType"`
	AssignedUserIDs  []uint               `json:"assignedUserIds"`
	AssignedUserID   *uint                `json:"assignedUserId"`
	AssignedGroupIDs []uint               `json:"assignedGroupIds"`
	AssignedGroupID  *uint                `json:"assignedGroupId"`
	CreatorDiscordID *string              `json:"creatorDiscordId"`
}

// UpdateTaskRequest represents a partial task update. Absent fields are left
// untouched; a supplied assignment array fully replaces the relation.
type UpdateTaskRequest struct {
	Title            *string              `json:"title"`
	Description      *string              `json:"description"`
	Status           *models.TaskStatus   `json:"status"`
	Priority         *models.TaskPriority `json:"priority"`
	DueDate          *string              `json:"dueDate"`
	AssignedType     *models.AssignedType `json:"assignedType"`
	AssignedUserIDs  *[]uint              `json:"assignedUserIds"`
	AssignedUserID   *uint                `json:"assignedUserId"`
	AssignedGroupIDs *[]uint              `json:"assignedGroupIds"`
	AssignedGroupID  *uint                `json:"assignedGroupId"`
}

func parseDateFlexible(dateStr string) (time.Time, bool) {
	if dateStr == "" {
		return time.Time{}, false
	}
	layouts := []string{
		"2006-01-02",
		time.RFC3339,
		"2006-01-02 15:04:05",
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, dateStr); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func parseFilter(c *gin.Context) resolver.Filter {
	var f resolver.Filter
	if s := c.Query("status"); s != "" && models.ValidStatus(models.TaskStatus(s)) {
		status := models.TaskStatus(s)
		f.Status = &status
	}
	if p := c.Query("priority"); p != "" && models.ValidPriority(models.TaskPriority(p)) {
		priority := models.TaskPriority(p)
		f.Priority = &priority
	}
	if at := c.Query("assignedType"); at != "" && models.ValidAssignedType(models.AssignedType(at)) {
		assignedType := models.AssignedType(at)
		f.AssignedType = &assignedType
	}
	if v := c.Query("assignedUserId"); v != "" {
		if id, err := strconv.ParseUint(v, 10, 32); err == nil {
			uid := uint(id)
			f.AssignedUserID = &uid
		}
	}
	if v := c.Query("assignedGroupId"); v != "" {
		if id, err := strconv.ParseUint(v, 10, 32); err == nil {
			gid := uint(id)
			f.AssignedGroupID = &gid
		}
	}
	if sort := c.Query("sort"); sort == "id" || sort == "priority" {
		f.Sort = sort
	}
	order := c.Query("sortOrder")
	if order == "" {
		order = c.Query("order")
	}
	if order == "asc" || order == "desc" {
		f.SortOrder = order
	}
	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			f.Limit = n
		}
	}
	return f
}

// List handles GET /api/tasks with optional filters.
func (h *TaskHandler) List(c *gin.Context) {
	tasks, err := h.Resolver.List(parseFilter(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch tasks"})
		return
	}
	c.JSON(http.StatusOK, tasks)
}

// Mine handles GET /api/tasks/my: tasks assigned to the requester directly,
// through group membership, or via an everyone-task. Password sessions have
// no user behind them and get an empty list.
func (h *TaskHandler) Mine(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		c.JSON(http.StatusOK, []models.Task{})
		return
	}
	tasks, err := h.Resolver.ListForUser(user.ID, parseFilter(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch tasks"})
		return
	}
	c.JSON(http.StatusOK, tasks)
}

// Stats handles GET /api/tasks/stats.
func (h *TaskHandler) Stats(c *gin.Context) {
	stats, err := h.Resolver.GetStats()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch stats"})
		return
	}
	c.JSON(http.StatusOK, stats)
}

type taskWithComments struct {
	models.Task
	Comments []models.TaskComment `json:"comments"`
}

// Get handles GET /api/tasks/:id, returning the task with its comments.
func (h *TaskHandler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	task, err := h.Resolver.Get(id)
	if err != nil {
		respondTaskError(c, err)
		return
	}
	comments, err := h.Resolver.Comments(id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch comments"})
		return
	}
	c.JSON(http.StatusOK, taskWithComments{Task: *task, Comments: comments})
}

// Create handles POST /api/tasks.
func (h *TaskHandler) Create(c *gin.Context) {
	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	createdBy, err := h.resolveCreator(c, req.CreatorDiscordID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve creator"})
		return
	}

	in := resolver.CreateInput{
		Title:            req.Title,
		Description:      req.Description,
		Status:           req.Status,
		Priority:         req.Priority,
		AssignedType:     req.AssignedType,
		AssignedUserIDs:  foldScalar(req.AssignedUserIDs, req.AssignedUserID),
		AssignedGroupIDs: foldScalar(req.AssignedGroupIDs, req.AssignedGroupID),
		CreatedBy:        createdBy,
	}
	if req.DueDate != nil {
		if due, ok := parseDateFlexible(*req.DueDate); ok {
			in.DueDate = &due
		}
	}

	task, err := h.Resolver.Create(in)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	h.Notifier.TaskCreated(c.Request.Context(), task)
	c.JSON(http.StatusCreated, task)
}

// Update handles PUT /api/tasks/:id.
func (h *TaskHandler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	existing, err := h.Resolver.Get(id)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	in := resolver.UpdateInput{
		Title:            req.Title,
		Description:      req.Description,
		Status:           req.Status,
		Priority:         req.Priority,
		AssignedType:     req.AssignedType,
		AssignedUserIDs:  req.AssignedUserIDs,
		AssignedGroupIDs: req.AssignedGroupIDs,
	}
	if req.DueDate != nil {
		if due, ok := parseDateFlexible(*req.DueDate); ok {
			in.DueDate = &due
		}
	}
	// Legacy scalar fields act as single-element replacements when the
	// array form is absent.
	if in.AssignedUserIDs == nil && req.AssignedUserID != nil {
		ids := []uint{*req.AssignedUserID}
		in.AssignedUserIDs = &ids
	}
	if in.AssignedGroupIDs == nil && req.AssignedGroupID != nil {
		ids := []uint{*req.AssignedGroupID}
		in.AssignedGroupIDs = &ids
	}

	task, err := h.Resolver.Update(id, in)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	assignmentChanged := in.AssignedUserIDs != nil ||
		in.AssignedGroupIDs != nil ||
		(req.AssignedType != nil && (existing.AssignedType == nil || *req.AssignedType != *existing.AssignedType))

	ctx := c.Request.Context()
	if req.Status != nil && *req.Status == models.StatusCompleted {
		h.Notifier.TaskCompleted(ctx, task)
	} else {
		h.Notifier.TaskUpdated(ctx, task, changeList(req, assignmentChanged), assignmentChanged)
	}
	c.JSON(http.StatusOK, task)
}

// Delete handles DELETE /api/tasks/:id.
func (h *TaskHandler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	task, err := h.Resolver.Get(id)
	if err != nil {
		respondTaskError(c, err)
		return
	}
	if err := h.Resolver.Delete(id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete task"})
		return
	}
	h.Notifier.TaskDeleted(c.Request.Context(), task)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// AddComment handles POST /api/tasks/:id/comments. Comments need a real user
// behind the session; password sessions cannot comment.
func (h *TaskHandler) AddComment(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req struct {
		Content string `json:"content"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Content == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Content is required"})
		return
	}

	task, err := h.Resolver.Get(id)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	user := middleware.CurrentUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required to add comments"})
		return
	}

	if err := h.Resolver.AddComment(id, user.ID, req.Content); err != nil {
		respondTaskError(c, err)
		return
	}

	comments, err := h.Resolver.Comments(id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch comments"})
		return
	}
	if len(comments) > 0 {
		h.Notifier.CommentAdded(c.Request.Context(), task, &comments[len(comments)-1])
	}
	c.JSON(http.StatusCreated, comments)
}

// resolveCreator decides which user a new task is attributed to: the session
// user when there is one, then an explicitly supplied Discord id, then the
// system user for password sessions.
func (h *TaskHandler) resolveCreator(c *gin.Context, creatorDiscordID *string) (uint, error) {
	if user := middleware.CurrentUser(c); user != nil {
		return user.ID, nil
	}
	if creatorDiscordID != nil && *creatorDiscordID != "" {
		if user, err := store.FindUserByDiscordID(database.GetDB(), *creatorDiscordID); err == nil {
			return user.ID, nil
		}
	}
	system, err := store.SystemUser(database.GetDB())
	if err != nil {
		return 0, err
	}
	return system.ID, nil
}

func foldScalar(ids []uint, scalar *uint) []uint {
	if len(ids) > 0 {
		return ids
	}
	if scalar != nil && *scalar != 0 {
		return []uint{*scalar}
	}
	return nil
}

func changeList(req UpdateTaskRequest, assignmentChanged bool) []string {
	var changes []string
	if req.Title != nil {
		changes = append(changes, "title")
	}
	if req.Description != nil {
		changes = append(changes, "description")
	}
	if req.Status != nil {
		changes = append(changes, "status: "+string(*req.Status))
	}
	if req.Priority != nil {
		changes = append(changes, "priority")
	}
	if assignmentChanged {
		changes = append(changes, "assignment")
	}
	if req.DueDate != nil {
		changes = append(changes, "due date")
	}
	return changes
}

func parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid task id"})
		return 0, false
	}
	return uint(id), true
}

func respondTaskError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
	case resolver.IsValidation(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
