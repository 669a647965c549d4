package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"todo-tracker-api/internal/models"
)

var statusLabels = map[models.TaskStatus]string{
	models.StatusPending:    "Pending",
	models.StatusInProgress: "In Progress",
	models.StatusOnHold:     "On Hold",
	models.StatusCompleted:  "Completed",
	models.StatusOther:      "Other",
}

var priorityLabels = map[models.TaskPriority]string{
	models.PriorityLow:    "Low",
	models.PriorityMedium: "Medium",
	models.PriorityHigh:   "High",
	models.PriorityUrgent: "Urgent",
}

// TaskRecord is one task in the interchange document. Assignee and group
// references are carried as resolved names, not ids, so a document stays
// meaningful outside the database it came from.
type TaskRecord struct {
	ID            uint                 `json:"id"`
	Title         string               `json:"title"`
	Description   *string              `json:"description"`
	Status        models.TaskStatus    `json:"status"`
	StatusLabel   string               `json:"statusLabel"`
	Priority      *models.TaskPriority `json:"priority"`
	PriorityLabel string               `json:"priorityLabel"`
	AssignedType  *models.AssignedType `json:"assignedType"`
	AssignedUser  string               `json:"assignedUser"`
	AssignedGroup string               `json:"assignedGroup"`
	CreatedBy     string               `json:"createdBy"`
	CreatedAt     time.Time            `json:"createdAt"`
	UpdatedAt     time.Time            `json:"updatedAt"`
	DueDate       *time.Time           `json:"dueDate"`
	CompletedAt   *time.Time           `json:"completedAt"`
}

// Document is the top-level export shape. Import accepts exactly this shape.
type Document struct {
	ExportedAt time.Time    `json:"exportedAt"`
	TotalTasks int          `json:"totalTasks"`
	Tasks      []TaskRecord `json:"tasks"`
}

// NewDocument builds a Document from hydrated tasks.
func NewDocument(tasks []models.Task) *Document {
	records := make([]TaskRecord, 0, len(tasks))
	for _, t := range tasks {
		rec := TaskRecord{
			ID:            t.ID,
			Title:         t.Title,
			Description:   t.Description,
			Status:        t.Status,
			StatusLabel:   statusLabels[t.Status],
			Priority:      t.Priority,
			AssignedType:  t.AssignedType,
			AssignedUser:  t.AssignedUserName,
			AssignedGroup: t.AssignedGroupName,
			CreatedBy:     t.CreatorName,
			CreatedAt:     t.CreatedAt,
			UpdatedAt:     t.UpdatedAt,
			DueDate:       t.DueDate,
			CompletedAt:   t.CompletedAt,
		}
		if t.Priority != nil {
			rec.PriorityLabel = priorityLabels[*t.Priority]
		}
		records = append(records, rec)
	}
	return &Document{
		ExportedAt: time.Now().UTC(),
		TotalTasks: len(records),
		Tasks:      records,
	}
}

// Text renders a human-readable dump.
func (d *Document) Text() []byte {
	var b strings.Builder
	b.WriteString("Task List\n")
	b.WriteString(strings.Repeat("=", 50) + "\n\n")

	for _, t := range d.Tasks {
		fmt.Fprintf(&b, "[#%d] %s\n", t.ID, t.Title)
		fmt.Fprintf(&b, "  Status: %s\n", t.StatusLabel)
		if t.PriorityLabel != "" {
			fmt.Fprintf(&b, "  Priority: %s\n", t.PriorityLabel)
		}
		if t.Description != nil && *t.Description != "" {
			fmt.Fprintf(&b, "  Description: %s\n", *t.Description)
		}
		if t.AssignedUser != "" {
			fmt.Fprintf(&b, "  Assigned to: %s\n", t.AssignedUser)
		} else if t.AssignedGroup != "" {
			fmt.Fprintf(&b, "  Assigned group: %s\n", t.AssignedGroup)
		} else if t.AssignedType != nil && *t.AssignedType == models.AssignedAll {
			b.WriteString("  Assigned to: everyone\n")
		}
		fmt.Fprintf(&b, "  Created by: %s\n", orUnknown(t.CreatedBy))
		fmt.Fprintf(&b, "  Created at: %s\n", t.CreatedAt.Format(time.RFC3339))
		if t.DueDate != nil {
			fmt.Fprintf(&b, "  Due: %s\n", t.DueDate.Format("2006-01-02"))
		}
		if t.CompletedAt != nil {
			fmt.Fprintf(&b, "  Completed at: %s\n", t.CompletedAt.Format(time.RFC3339))
		}
		b.WriteString("\n")
	}

	b.WriteString(strings.Repeat("=", 50) + "\n")
	fmt.Fprintf(&b, "Total tasks: %d\n", d.TotalTasks)
	fmt.Fprintf(&b, "Exported at: %s\n", d.ExportedAt.Format(time.RFC3339))
	return []byte(b.String())
}

// CSV renders the document as BOM-prefixed UTF-8 CSV. The BOM keeps older
// spreadsheet tools from misreading multibyte names.
func (d *Document) CSV() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString("\xEF\xBB\xBF")

	w := csv.NewWriter(&buf)
	header := []string{"ID", "Title", "Description", "Status", "Priority", "Assigned Type", "Assigned Users", "Assigned Groups", "Created By", "Created At", "Due Date", "Completed At"}
	if err := w.Write(header); err != nil {
		return nil, err
	}
	for _, t := range d.Tasks {
		row := []string{
			fmt.Sprint(t.ID),
			t.Title,
			strOrEmpty(t.Description),
			t.StatusLabel,
			t.PriorityLabel,
			assignedTypeString(t.AssignedType),
			t.AssignedUser,
			t.AssignedGroup,
			t.CreatedBy,
			t.CreatedAt.Format(time.RFC3339),
			timeOrEmpty(t.DueDate, "2006-01-02"),
			timeOrEmpty(t.CompletedAt, time.RFC3339),
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// JSON renders the document as indented JSON.
func (d *Document) JSON() ([]byte, error) {
	return json.MarshalIndent(d, "", "  ")
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}

func strOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func timeOrEmpty(t *time.Time, layout string) string {
	if t == nil {
		return ""
	}
	return t.Format(layout)
}

func assignedTypeString(t *models.AssignedType) string {
	if t == nil {
		return ""
	}
	return string(*t)
}
