package notify

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"todo-tracker-api/internal/models"
	"todo-tracker-api/internal/realtime"

	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string                            { return &s }
func typePtr(a models.AssignedType) *models.AssignedType { return &a }

func TestMentions_SkipsUnlinkedUsers(t *testing.T) {
	task := &models.Task{
		AssignedUsers: []models.AssigneeInfo{
			{ID: 1, Username: "alice", DiscordID: strPtr("111")},
			{ID: 2, Username: "system"},
			{ID: 3, Username: "bob", DiscordID: strPtr("")},
		},
		AssignedGroups: []models.AssignedGroupInfo{
			{ID: 1, Name: "devs", DiscordRoleID: strPtr("900")},
			{ID: 2, Name: "ops"},
		},
	}
	require.Equal(t, "<@111> <@&900>", Mentions(task))
}

func TestMentions_SuppressedForEveryoneTasks(t *testing.T) {
	task := &models.Task{
		AssignedType: typePtr(models.AssignedAll),
		AssignedUsers: []models.AssigneeInfo{
			{ID: 1, Username: "alice", DiscordID: strPtr("111")},
		},
	}
	require.Equal(t, "", Mentions(task))
}

func TestAssigneeLabel(t *testing.T) {
	require.Equal(t, "Everyone", AssigneeLabel(&models.Task{AssignedType: typePtr(models.AssignedAll)}))
	require.Equal(t, "Unassigned", AssigneeLabel(&models.Task{}))
	require.Equal(t, "alice, devs", AssigneeLabel(&models.Task{
		AssignedUsers:  []models.AssigneeInfo{{Username: "alice"}},
		AssignedGroups: []models.AssignedGroupInfo{{Name: "devs"}},
	}))
}

func TestLabels(t *testing.T) {
	require.Equal(t, "In Progress", StatusLabel(models.StatusInProgress))
	require.Equal(t, "None", PriorityLabel(nil))
	urgent := models.PriorityUrgent
	require.Equal(t, "Urgent", PriorityLabel(&urgent))

	loc, err := time.LoadLocation("Asia/Tokyo")
	require.NoError(t, err)
	require.Equal(t, "None", DueLabel(nil, loc))
	due := time.Date(2025, 6, 30, 20, 0, 0, 0, time.UTC)
	// 20:00 UTC is already July 1st in Tokyo
	require.Equal(t, "2025-07-01", DueLabel(&due, loc))
}

type captureClient struct {
	messages [][]byte
}

func (c *captureClient) Send(message []byte) bool {
	c.messages = append(c.messages, message)
	return true
}

func (c *captureClient) Close() {}

func TestHubDispatcher_BroadcastsEvents(t *testing.T) {
	hub := realtime.NewHub()
	client := &captureClient{}
	hub.Register(client)

	d := &HubDispatcher{Hub: hub}
	task := &models.Task{ID: 5}
	d.TaskCreated(context.Background(), task)
	d.TaskUpdated(context.Background(), task, []string{"title"}, false)
	d.CommentAdded(context.Background(), task, &models.TaskComment{ID: 9})

	require.Len(t, client.messages, 3)

	var evt map[string]any
	require.NoError(t, json.Unmarshal(client.messages[0], &evt))
	require.Equal(t, "task_created", evt["type"])
	require.EqualValues(t, 5, evt["taskId"])
	require.EqualValues(t, 1, evt["version"])

	require.NoError(t, json.Unmarshal(client.messages[2], &evt))
	require.Equal(t, "comment_added", evt["type"])
	require.EqualValues(t, 9, evt["commentId"])
}

func TestMulti_FansOutInOrder(t *testing.T) {
	hub := realtime.NewHub()
	client := &captureClient{}
	hub.Register(client)

	m := Multi{Noop{}, &HubDispatcher{Hub: hub}}
	m.TaskDeleted(context.Background(), &models.Task{ID: 1})
	require.Len(t, client.messages, 1)
}
