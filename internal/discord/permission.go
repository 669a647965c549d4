package discord

import (
	"context"
	"time"
)

// Decision is the outcome of a role permission check.
type Decision struct {
	Allowed bool
	Reason  string
}

// PermissionChecker is implemented by the client and by test fakes.
type PermissionChecker interface {
	CheckPermission(ctx context.Context, discordUserID string) Decision
}

// permCacheTTL bounds how stale a cached role decision may be.
const permCacheTTL = time.Minute

// CheckPermission applies the configured role rule to a Discord user. The
// check fails open: when the rule is off, the bot is not connected, or the
// Discord API is unreachable, the request is allowed. Decisions are cached
// briefly so routine API traffic does not hammer the member endpoint.
func (c *Client) CheckPermission(ctx context.Context, discordUserID string) Decision {
	if c.permMode == "disable" || c.permMode == "" || c.permRoleID == "" {
		return Decision{Allowed: true}
	}
	if discordUserID == "" {
		return Decision{Allowed: false, Reason: "could not verify permission"}
	}
	if !c.Enabled() || c.guildID == "" {
		return Decision{Allowed: true}
	}

	if d, ok := c.permCache.Get(discordUserID); ok {
		return d
	}

	member, err := c.GuildMember(ctx, discordUserID)
	if err != nil {
		// service unreachable: availability over strictness
		return Decision{Allowed: true}
	}

	var d Decision
	switch {
	case member == nil:
		d = Decision{Allowed: false, Reason: "not a member of the server"}
	case c.permMode == "white":
		if hasRole(member, c.permRoleID) {
			d = Decision{Allowed: true}
		} else {
			d = Decision{Allowed: false, Reason: "missing required role"}
		}
	case c.permMode == "black":
		if hasRole(member, c.permRoleID) {
			d = Decision{Allowed: false, Reason: "role is denied access"}
		} else {
			d = Decision{Allowed: true}
		}
	default:
		d = Decision{Allowed: true}
	}

	c.permCache.Set(discordUserID, d, permCacheTTL)
	return d
}

func hasRole(m *Member, roleID string) bool {
	for _, r := range m.Roles {
		if r == roleID {
			return true
		}
	}
	return false
}
