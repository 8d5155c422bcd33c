package roles

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
)

// DiscordDirectory implements Directory over a discordgo session.
type DiscordDirectory struct {
	session *discordgo.Session
}

// NewDiscordDirectory wraps an open discordgo session.
func NewDiscordDirectory(session *discordgo.Session) *DiscordDirectory {
	return &DiscordDirectory{session: session}
}

// ListRoles returns every role in the guild.
func (d *DiscordDirectory) ListRoles(ctx context.Context, guildID string) ([]Role, error) {
	raw, err := d.session.GuildRoles(guildID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("guild roles: %w", err)
	}
	out := make([]Role, 0, len(raw))
	for _, r := range raw {
		out = append(out, Role{ID: r.ID, Name: r.Name})
	}
	return out, nil
}

// CreateRole creates a role with the given name and default appearance.
func (d *DiscordDirectory) CreateRole(ctx context.Context, guildID, name string) (Role, error) {
	created, err := d.session.GuildRoleCreate(guildID, &discordgo.RoleParams{Name: name}, discordgo.WithContext(ctx))
	if err != nil {
		return Role{}, fmt.Errorf("guild role create: %w", err)
	}
	return Role{ID: created.ID, Name: created.Name}, nil
}

// GrantRole adds a role to a member.
func (d *DiscordDirectory) GrantRole(ctx context.Context, guildID, userID, roleID string) error {
	return d.session.GuildMemberRoleAdd(guildID, userID, roleID, discordgo.WithContext(ctx))
}

// RevokeRole removes a role from a member.
func (d *DiscordDirectory) RevokeRole(ctx context.Context, guildID, userID, roleID string) error {
	return d.session.GuildMemberRoleRemove(guildID, userID, roleID, discordgo.WithContext(ctx))
}

// ListMembers pages through the full guild member list.
func (d *DiscordDirectory) ListMembers(ctx context.Context, guildID string) ([]Member, error) {
	var out []Member
	after := ""
	for {
		page, err := d.session.GuildMembers(guildID, after, 1000, discordgo.WithContext(ctx))
		if err != nil {
			return nil, fmt.Errorf("guild members after %q: %w", after, err)
		}
		if len(page) == 0 {
			return out, nil
		}
		for _, m := range page {
			out = append(out, Member{UserID: m.User.ID, RoleIDs: m.Roles})
		}
		after = page[len(page)-1].User.ID
	}
}
