package discord

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// Embed mirrors the Discord message embed object.
type Embed struct {
	Title       string       `json:"title,omitempty"`
	Description string       `json:"description,omitempty"`
	Color       int          `json:"color,omitempty"`
	Fields      []EmbedField `json:"fields,omitempty"`
	Footer      *EmbedFooter `json:"footer,omitempty"`
	Timestamp   string       `json:"timestamp,omitempty"`
}

type EmbedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline,omitempty"`
}

type EmbedFooter struct {
	Text string `json:"text"`
}

type messagePayload struct {
	Content string  `json:"content,omitempty"`
	Embeds  []Embed `json:"embeds,omitempty"`
}

// SendMessage posts an embed (with optional mention content) to a channel
// and returns the message id.
func (c *Client) SendMessage(ctx context.Context, channelID, content string, embeds ...Embed) (string, error) {
	if !c.Enabled() || channelID == "" {
		return "", nil
	}
	body, _ := json.Marshal(messagePayload{Content: content, Embeds: embeds})

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		fmt.Sprintf("%s/channels/%s/messages", c.apiBase, channelID), bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bot "+c.botToken)
	req.Header.Set("Content-Type", "application/json")

	var msg struct {
		ID string `json:"id"`
	}
	if err := c.do(req, &msg); err != nil {
		return "", fmt.Errorf("send message failed: %w", err)
	}
	return msg.ID, nil
}

func (c *Client) editMessage(ctx context.Context, channelID, messageID string, embeds ...Embed) error {
	body, _ := json.Marshal(messagePayload{Embeds: embeds})

	req, err := http.NewRequestWithContext(ctx, http.MethodPatch,
		fmt.Sprintf("%s/channels/%s/messages/%s", c.apiBase, channelID, messageID), bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bot "+c.botToken)
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, nil)
}

// UpdatePanel keeps a single status panel message in the panel channel: the
// id of the last panel message is remembered and edited in place, falling
// back to sending a fresh message when the edit fails.
func (c *Client) UpdatePanel(ctx context.Context, channelID string, embed Embed) error {
	if !c.Enabled() || channelID == "" {
		return nil
	}

	c.mu.Lock()
	messageID := c.panelMessageID
	c.mu.Unlock()

	if messageID != "" {
		if err := c.editMessage(ctx, channelID, messageID, embed); err == nil {
			return nil
		}
		// stale message id; fall through and send a new panel
	}

	id, err := c.SendMessage(ctx, channelID, "", embed)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.panelMessageID = id
	c.mu.Unlock()
	return nil
}
