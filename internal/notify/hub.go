package notify

import (
	"context"
	"encoding/json"

	"todo-tracker-api/internal/models"
	"todo-tracker-api/internal/realtime"
)

// HubDispatcher pushes lightweight change events to connected websocket
// clients so open task lists can refresh without polling.
type HubDispatcher struct {
	Hub *realtime.Hub
}

func (h *HubDispatcher) broadcast(evt map[string]any) {
	evt["version"] = 1
	if bytes, err := json.Marshal(evt); err == nil {
		h.Hub.Broadcast(bytes)
	}
}

func (h *HubDispatcher) TaskCreated(_ context.Context, task *models.Task) {
	h.broadcast(map[string]any{
		"type":   "task_created",
		"taskId": task.ID,
	})
}

func (h *HubDispatcher) TaskUpdated(_ context.Context, task *models.Task, changes []string, _ bool) {
	h.broadcast(map[string]any{
		"type":    "task_updated",
		"taskId":  task.ID,
		"changes": changes,
	})
}

func (h *HubDispatcher) TaskCompleted(_ context.Context, task *models.Task) {
	h.broadcast(map[string]any{
		"type":   "task_completed",
		"taskId": task.ID,
	})
}

func (h *HubDispatcher) TaskDeleted(_ context.Context, task *models.Task) {
	h.broadcast(map[string]any{
		"type":   "task_deleted",
		"taskId": task.ID,
	})
}

func (h *HubDispatcher) CommentAdded(_ context.Context, task *models.Task, comment *models.TaskComment) {
	h.broadcast(map[string]any{
		"type":      "comment_added",
		"taskId":    task.ID,
		"commentId": comment.ID,
	})
}

func (h *HubDispatcher) DueToday(_ context.Context, tasks []models.Task) {
	ids := make([]uint, 0, len(tasks))
	for _, t := range tasks {
		ids = append(ids, t.ID)
	}
	h.broadcast(map[string]any{
		"type":    "tasks_due_today",
		"taskIds": ids,
	})
}
