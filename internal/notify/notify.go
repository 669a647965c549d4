package notify

import (
	"context"

	"todo-tracker-api/internal/models"
)

// Dispatcher receives task lifecycle events after the database write has
// committed. Implementations must never fail the request: delivery problems
// are logged and swallowed.
type Dispatcher interface {
	TaskCreated(ctx context.Context, task *models.Task)
	TaskUpdated(ctx context.Context, task *models.Task, changes []string, assignmentChanged bool)
	TaskCompleted(ctx context.Context, task *models.Task)
	TaskDeleted(ctx context.Context, task *models.Task)
	CommentAdded(ctx context.Context, task *models.Task, comment *models.TaskComment)
	DueToday(ctx context.Context, tasks []models.Task)
}

// Noop discards every event. Used in tests and when no sink is configured.
type Noop struct{}

func (Noop) TaskCreated(context.Context, *models.Task)                       {}
func (Noop) TaskUpdated(context.Context, *models.Task, []string, bool)       {}
func (Noop) TaskCompleted(context.Context, *models.Task)                     {}
func (Noop) TaskDeleted(context.Context, *models.Task)                       {}
func (Noop) CommentAdded(context.Context, *models.Task, *models.TaskComment) {}
func (Noop) DueToday(context.Context, []models.Task)                         {}

// Multi fans an event out to several dispatchers in order.
type Multi []Dispatcher

func (m Multi) TaskCreated(ctx context.Context, task *models.Task) {
	for _, d := range m {
		d.TaskCreated(ctx, task)
	}
}

func (m Multi) TaskUpdated(ctx context.Context, task *models.Task, changes []string, assignmentChanged bool) {
	for _, d := range m {
		d.TaskUpdated(ctx, task, changes, assignmentChanged)
	}
}

func (m Multi) TaskCompleted(ctx context.Context, task *models.Task) {
	for _, d := range m {
		d.TaskCompleted(ctx, task)
	}
}

func (m Multi) TaskDeleted(ctx context.Context, task *models.Task) {
	for _, d := range m {
		d.TaskDeleted(ctx, task)
	}
}

func (m Multi) CommentAdded(ctx context.Context, task *models.Task, comment *models.TaskComment) {
	for _, d := range m {
		d.CommentAdded(ctx, task, comment)
	}
}

func (m Multi) DueToday(ctx context.Context, tasks []models.Task) {
	for _, d := range m {
		d.DueToday(ctx, tasks)
	}
}
