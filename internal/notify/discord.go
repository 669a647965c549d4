package notify

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"todo-tracker-api/internal/discord"
	"todo-tracker-api/internal/models"
	"todo-tracker-api/internal/resolver"
)

const (
	colorCreated   = 0x2ecc71
	colorUpdated   = 0x3498db
	colorCompleted = 0x95a5a6
	colorDeleted   = 0xe74c3c
	colorComment   = 0x9b59b6
	colorDue       = 0xe67e22
)

// DiscordDispatcher announces task activity in the notification channel and
// keeps the status panel message up to date.
type DiscordDispatcher struct {
	Client          *discord.Client
	Resolver        *resolver.Resolver
	NotifyChannelID string
	PanelChannelID  string
	Timezone        *time.Location
}

func (d *DiscordDispatcher) send(ctx context.Context, content string, embed discord.Embed) {
	if _, err := d.Client.SendMessage(ctx, d.NotifyChannelID, content, embed); err != nil {
		log.Println("discord notify failed:", err)
	}
}

func taskFields(task *models.Task, loc *time.Location) []discord.EmbedField {
	return []discord.EmbedField{
		{Name: "Status", Value: StatusLabel(task.Status), Inline: true},
		{Name: "Priority", Value: PriorityLabel(task.Priority), Inline: true},
		{Name: "Due", Value: DueLabel(task.DueDate, loc), Inline: true},
		{Name: "Assigned to", Value: AssigneeLabel(task), Inline: false},
	}
}

func (d *DiscordDispatcher) TaskCreated(ctx context.Context, task *models.Task) {
	embed := discord.Embed{
		Title:     fmt.Sprintf("Task #%d created: %s", task.ID, task.Title),
		Color:     colorCreated,
		Fields:    taskFields(task, d.Timezone),
		Footer:    &discord.EmbedFooter{Text: "Created by " + task.CreatorName},
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	if task.Description != nil && *task.Description != "" {
		embed.Description = *task.Description
	}
	d.send(ctx, Mentions(task), embed)
	d.updatePanel(ctx)
}

func (d *DiscordDispatcher) TaskUpdated(ctx context.Context, task *models.Task, changes []string, assignmentChanged bool) {
	embed := discord.Embed{
		Title:     fmt.Sprintf("Task #%d updated: %s", task.ID, task.Title),
		Color:     colorUpdated,
		Fields:    taskFields(task, d.Timezone),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	if len(changes) > 0 {
		embed.Description = "Changed: " + strings.Join(changes, ", ")
	}
	// Only ping people when the assignment itself changed; routine edits
	// should not interrupt anyone.
	content := ""
	if assignmentChanged {
		content = Mentions(task)
	}
	d.send(ctx, content, embed)
	d.updatePanel(ctx)
}

func (d *DiscordDispatcher) TaskCompleted(ctx context.Context, task *models.Task) {
	embed := discord.Embed{
		Title:     fmt.Sprintf("Task #%d completed: %s", task.ID, task.Title),
		Color:     colorCompleted,
		Fields:    taskFields(task, d.Timezone),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	d.send(ctx, "", embed)
	d.updatePanel(ctx)
}

func (d *DiscordDispatcher) TaskDeleted(ctx context.Context, task *models.Task) {
	embed := discord.Embed{
		Title:     fmt.Sprintf("Task #%d deleted: %s", task.ID, task.Title),
		Color:     colorDeleted,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	d.send(ctx, "", embed)
	d.updatePanel(ctx)
}

func (d *DiscordDispatcher) CommentAdded(ctx context.Context, task *models.Task, comment *models.TaskComment) {
	embed := discord.Embed{
		Title:       fmt.Sprintf("New comment on task #%d: %s", task.ID, task.Title),
		Description: comment.Content,
		Color:       colorComment,
		Footer:      &discord.EmbedFooter{Text: "By " + comment.Username},
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
	}
	d.send(ctx, "", embed)
}

func (d *DiscordDispatcher) DueToday(ctx context.Context, tasks []models.Task) {
	if len(tasks) == 0 {
		return
	}
	var lines []string
	var mentions []string
	for _, t := range tasks {
		lines = append(lines, fmt.Sprintf("#%d %s (%s)", t.ID, t.Title, AssigneeLabel(&t)))
		if m := Mentions(&t); m != "" {
			mentions = append(mentions, m)
		}
	}
	embed := discord.Embed{
		Title:       "Tasks due today",
		Description: strings.Join(lines, "\n"),
		Color:       colorDue,
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
	}
	d.send(ctx, strings.Join(dedupeStrings(mentions), " "), embed)
}

// updatePanel refreshes the pinned status panel with a live stats snapshot.
func (d *DiscordDispatcher) updatePanel(ctx context.Context) {
	if d.PanelChannelID == "" {
		return
	}
	stats, err := d.Resolver.GetStats()
	if err != nil {
		log.Println("panel stats query failed:", err)
		return
	}
	embed := discord.Embed{
		Title: "Task Overview",
		Color: colorUpdated,
		Fields: []discord.EmbedField{
			{Name: "Total", Value: fmt.Sprint(stats.Total), Inline: true},
			{Name: "Pending", Value: fmt.Sprint(stats.Pending), Inline: true},
			{Name: "In Progress", Value: fmt.Sprint(stats.InProgress), Inline: true},
			{Name: "On Hold", Value: fmt.Sprint(stats.OnHold), Inline: true},
			{Name: "Completed", Value: fmt.Sprint(stats.Completed), Inline: true},
			{Name: "Other", Value: fmt.Sprint(stats.Other), Inline: true},
			{Name: "Urgent", Value: fmt.Sprint(stats.Urgent), Inline: true},
			{Name: "High", Value: fmt.Sprint(stats.High), Inline: true},
			{Name: "Medium", Value: fmt.Sprint(stats.Medium), Inline: true},
			{Name: "Low", Value: fmt.Sprint(stats.Low), Inline: true},
			{Name: "No Priority", Value: fmt.Sprint(stats.NoPriority), Inline: true},
		},
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	if err := d.Client.UpdatePanel(ctx, d.PanelChannelID, embed); err != nil {
		log.Println("panel update failed:", err)
	}
}

func dedupeStrings(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
