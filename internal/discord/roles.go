package discord

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
)

// CreateGroupRole creates a mentionable guild role mirroring a group and
// returns its id. The role is named after the group with a TODO prefix.
func (c *Client) CreateGroupRole(ctx context.Context, groupName, colorHex string) (string, error) {
	if !c.Enabled() || c.guildID == "" {
		return "", nil
	}

	payload := map[string]any{
		"name":        "TODO: " + groupName,
		"color":       parseColor(colorHex),
		"mentionable": true,
	}
	body, _ := json.Marshal(payload)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		fmt.Sprintf("%s/guilds/%s/roles", c.apiBase, c.guildID), bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bot "+c.botToken)
	req.Header.Set("Content-Type", "application/json")

	var role struct {
		ID string `json:"id"`
	}
	if err := c.do(req, &role); err != nil {
		return "", fmt.Errorf("create role failed: %w", err)
	}
	return role.ID, nil
}

// DeleteGroupRole removes the guild role bound to a deleted group.
func (c *Client) DeleteGroupRole(ctx context.Context, roleID string) error {
	if !c.Enabled() || c.guildID == "" || roleID == "" {
		return nil
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete,
		fmt.Sprintf("%s/guilds/%s/roles/%s", c.apiBase, c.guildID, roleID), nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bot "+c.botToken)
	return c.do(req, nil)
}

// AddMemberRole grants a group's role to a guild member.
func (c *Client) AddMemberRole(ctx context.Context, discordUserID, roleID string) error {
	return c.memberRole(ctx, http.MethodPut, discordUserID, roleID)
}

// RemoveMemberRole revokes a group's role from a guild member.
func (c *Client) RemoveMemberRole(ctx context.Context, discordUserID, roleID string) error {
	return c.memberRole(ctx, http.MethodDelete, discordUserID, roleID)
}

func (c *Client) memberRole(ctx context.Context, method, discordUserID, roleID string) error {
	if !c.Enabled() || c.guildID == "" || roleID == "" || discordUserID == "" {
		return nil
	}
	req, err := http.NewRequestWithContext(ctx, method,
		fmt.Sprintf("%s/guilds/%s/members/%s/roles/%s", c.apiBase, c.guildID, discordUserID, roleID), nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bot "+c.botToken)
	return c.do(req, nil)
}

// parseColor converts "#3498db" to its integer form; defaults to the group
// color when unparsable.
func parseColor(hex string) int64 {
	s := strings.TrimPrefix(hex, "#")
	v, err := strconv.ParseInt(s, 16, 64)
	if err != nil {
		return 0x3498db
	}
	return v
}
