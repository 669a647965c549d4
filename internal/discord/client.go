// Package discord is a thin REST client for the Discord API: OAuth exchange,
// guild/member lookups, role management and channel messages. Every call has
// a bounded timeout and a single attempt; callers decide whether a failure
// fails open (permission checks) or is swallowed (notifications).
package discord

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"todo-tracker-api/internal/cache"
	"todo-tracker-api/internal/config"
)

const requestTimeout = 10 * time.Second

// Client is the long-lived connection object to the Discord service, owned
// by the composition root and passed by reference to whoever needs it.
type Client struct {
	apiBase      string
	clientID     string
	clientSecret string
	botToken     string
	guildID      string
	redirectURI  string
	permMode     string
	permRoleID   string

	httpClient *http.Client
	permCache  *cache.TTLCache[string, Decision]

	mu             sync.Mutex
	panelMessageID string
}

// New builds a client from the environment configuration.
func New(cfg config.Config) *Client {
	return &Client{
		apiBase:      strings.TrimRight(cfg.DiscordAPIBase, "/"),
		clientID:     cfg.DiscordClientID,
		clientSecret: cfg.DiscordClientSecret,
		botToken:     cfg.DiscordBotToken,
		guildID:      cfg.DiscordGuildID,
		redirectURI:  cfg.BaseURL + "/auth/callback",
		permMode:     cfg.PermissionMode,
		permRoleID:   cfg.PermissionRoleID,
		httpClient:   &http.Client{Timeout: requestTimeout},
		permCache:    cache.New[string, Decision](),
	}
}

// Enabled reports whether the bot credential is configured. When false, all
// guild-side operations are skipped and permission checks fail open.
func (c *Client) Enabled() bool {
	return c.botToken != ""
}

// GuildID returns the configured guild.
func (c *Client) GuildID() string {
	return c.guildID
}

// AuthorizeURL builds the OAuth authorization URL with a signed state.
func (c *Client) AuthorizeURL(state string) string {
	q := url.Values{}
	q.Set("client_id", c.clientID)
	q.Set("redirect_uri", c.redirectURI)
	q.Set("response_type", "code")
	q.Set("scope", "identify guilds")
	q.Set("state", state)
	return c.apiBase + "/oauth2/authorize?" + q.Encode()
}

// ExchangeCode trades an authorization code for an access token.
func (c *Client) ExchangeCode(ctx context.Context, code string) (string, error) {
	form := url.Values{}
	form.Set("client_id", c.clientID)
	form.Set("client_secret", c.clientSecret)
	form.Set("grant_type", "authorization_code")
	form.Set("code", code)
	form.Set("redirect_uri", c.redirectURI)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.apiBase+"/oauth2/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var tokenResp struct {
		AccessToken string `json:"access_token"`
	}
	if err := c.do(req, &tokenResp); err != nil {
		return "", fmt.Errorf("token exchange failed: %w", err)
	}
	if tokenResp.AccessToken == "" {
		return "", fmt.Errorf("token exchange returned no access token")
	}
	return tokenResp.AccessToken, nil
}

// User is the subset of the Discord user object we care about.
type User struct {
	ID            string  `json:"id"`
	Username      string  `json:"username"`
	Discriminator *string `json:"discriminator"`
	Avatar        *string `json:"avatar"`
	Bot           bool    `json:"bot"`
}

// FetchUser returns the identity behind an OAuth access token.
func (c *Client) FetchUser(ctx context.Context, accessToken string) (*User, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiBase+"/users/@me", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	var user User
	if err := c.do(req, &user); err != nil {
		return nil, fmt.Errorf("fetch user failed: %w", err)
	}
	return &user, nil
}

// IsGuildMember checks whether the token's user belongs to the configured
// guild, via the user's own guild list.
func (c *Client) IsGuildMember(ctx context.Context, accessToken string) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiBase+"/users/@me/guilds", nil)
	if err != nil {
		return false, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	var guilds []struct {
		ID string `json:"id"`
	}
	if err := c.do(req, &guilds); err != nil {
		return false, fmt.Errorf("fetch guilds failed: %w", err)
	}
	for _, g := range guilds {
		if g.ID == c.guildID {
			return true, nil
		}
	}
	return false, nil
}

// Member is a guild member with role ids.
type Member struct {
	User  User     `json:"user"`
	Nick  *string  `json:"nick"`
	Roles []string `json:"roles"`
}

// GuildMember fetches one member by Discord user id with the bot credential.
// Returns (nil, nil) when the user is not in the guild.
func (c *Client) GuildMember(ctx context.Context, discordUserID string) (*Member, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		fmt.Sprintf("%s/guilds/%s/members/%s", c.apiBase, c.guildID, discordUserID), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bot "+c.botToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("discord api status %d", resp.StatusCode)
	}
	var member Member
	if err := json.NewDecoder(resp.Body).Decode(&member); err != nil {
		return nil, err
	}
	return &member, nil
}

// ListGuildMembers returns up to limit guild members.
func (c *Client) ListGuildMembers(ctx context.Context, limit int) ([]Member, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		fmt.Sprintf("%s/guilds/%s/members?limit=%d", c.apiBase, c.guildID, limit), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bot "+c.botToken)

	var members []Member
	if err := c.do(req, &members); err != nil {
		return nil, fmt.Errorf("list members failed: %w", err)
	}
	return members, nil
}

// do executes the request and decodes a JSON response into out (skipped when
// out is nil). Non-2xx responses become errors carrying the status code.
func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("discord api status %d: %s", resp.StatusCode, bytes.TrimSpace(body))
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
