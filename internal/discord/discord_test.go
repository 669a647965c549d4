package discord

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"todo-tracker-api/internal/config"

	"github.com/stretchr/testify/require"
)

func testClient(t *testing.T, handler http.Handler, mode, roleID string) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(config.Config{
		BaseURL:          "http://localhost:4040",
		DiscordAPIBase:   srv.URL,
		DiscordClientID:  "client-id",
		DiscordBotToken:  "bot-token",
		DiscordGuildID:   "guild-1",
		PermissionMode:   mode,
		PermissionRoleID: roleID,
	})
}

func memberHandler(t *testing.T, roles []string, status int) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Bot bot-token", r.Header.Get("Authorization"))
		if status != http.StatusOK {
			w.WriteHeader(status)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"user":  map[string]any{"id": "u-1", "username": "alice"},
			"roles": roles,
		})
	})
}

func TestCheckPermission_DisabledAllowsEveryone(t *testing.T) {
	c := testClient(t, http.NotFoundHandler(), "disable", "role-1")
	require.True(t, c.CheckPermission(context.Background(), "u-1").Allowed)

	// no rule configured behaves the same
	c = testClient(t, http.NotFoundHandler(), "", "")
	require.True(t, c.CheckPermission(context.Background(), "u-1").Allowed)
}

func TestCheckPermission_EmptyUserDenied(t *testing.T) {
	c := testClient(t, http.NotFoundHandler(), "white", "role-1")
	d := c.CheckPermission(context.Background(), "")
	require.False(t, d.Allowed)
	require.Equal(t, "could not verify permission", d.Reason)
}

func TestCheckPermission_Whitelist(t *testing.T) {
	c := testClient(t, memberHandler(t, []string{"role-1", "other"}, http.StatusOK), "white", "role-1")
	require.True(t, c.CheckPermission(context.Background(), "u-1").Allowed)

	c = testClient(t, memberHandler(t, []string{"other"}, http.StatusOK), "white", "role-1")
	d := c.CheckPermission(context.Background(), "u-2")
	require.False(t, d.Allowed)
	require.Equal(t, "missing required role", d.Reason)
}

func TestCheckPermission_Blacklist(t *testing.T) {
	c := testClient(t, memberHandler(t, []string{"banned"}, http.StatusOK), "black", "banned")
	d := c.CheckPermission(context.Background(), "u-1")
	require.False(t, d.Allowed)
	require.Equal(t, "role is denied access", d.Reason)

	c = testClient(t, memberHandler(t, []string{"other"}, http.StatusOK), "black", "banned")
	require.True(t, c.CheckPermission(context.Background(), "u-2").Allowed)
}

func TestCheckPermission_NonMemberDenied(t *testing.T) {
	c := testClient(t, memberHandler(t, nil, http.StatusNotFound), "white", "role-1")
	d := c.CheckPermission(context.Background(), "u-1")
	require.False(t, d.Allowed)
	require.Equal(t, "not a member of the server", d.Reason)
}

func TestCheckPermission_FailsOpenOnAPIError(t *testing.T) {
	c := testClient(t, memberHandler(t, nil, http.StatusInternalServerError), "white", "role-1")
	require.True(t, c.CheckPermission(context.Background(), "u-1").Allowed)
}

func TestCheckPermission_DecisionCached(t *testing.T) {
	calls := 0
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		_ = json.NewEncoder(w).Encode(map[string]any{
			"user":  map[string]any{"id": "u-1"},
			"roles": []string{"role-1"},
		})
	})
	c := testClient(t, handler, "white", "role-1")

	require.True(t, c.CheckPermission(context.Background(), "u-1").Allowed)
	require.True(t, c.CheckPermission(context.Background(), "u-1").Allowed)
	require.Equal(t, 1, calls)
}

func TestAuthorizeURL_CarriesState(t *testing.T) {
	c := testClient(t, http.NotFoundHandler(), "", "")
	u := c.AuthorizeURL("state-token")
	require.Contains(t, u, "client_id=client-id")
	require.Contains(t, u, "state=state-token")
	require.Contains(t, u, "response_type=code")
}

func TestUpdatePanel_EditsInPlace(t *testing.T) {
	var posts, patches int
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			posts++
			_ = json.NewEncoder(w).Encode(map[string]string{"id": "msg-1"})
		case http.MethodPatch:
			patches++
			require.Contains(t, r.URL.Path, "/messages/msg-1")
			_ = json.NewEncoder(w).Encode(map[string]string{"id": "msg-1"})
		}
	})
	c := testClient(t, handler, "", "")

	require.NoError(t, c.UpdatePanel(context.Background(), "chan-1", Embed{Title: "panel"}))
	require.NoError(t, c.UpdatePanel(context.Background(), "chan-1", Embed{Title: "panel v2"}))

	require.Equal(t, 1, posts)
	require.Equal(t, 1, patches)
}

func TestParseColor(t *testing.T) {
	require.EqualValues(t, 0x3498db, parseColor("#3498db"))
	require.EqualValues(t, 0xffffff, parseColor("ffffff"))
	require.EqualValues(t, 0x3498db, parseColor("not-a-color"))
}
