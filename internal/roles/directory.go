// Package roles reconciles externally-visible role grants with ledger
// state: one tier role per member derived from their level, and a single
// top-holder role pinned to whoever holds the most oil.
//
// The package computes plans as pure data and applies them through a
// narrow Directory interface, so the core never touches the Discord API
// directly. Role state is best-effort: an apply failure is reported to the
// caller for logging but never rolls back the ledger change that
// triggered it.
package roles

import "context"

// Role is an external guild role handle.
type Role struct {
	ID   string
	Name string
}

// Member is an external guild member with the role IDs they hold.
type Member struct {
	UserID  string
	RoleIDs []string
}

// Directory is the external role/member collaborator. The core calls it
// but does not own role lifecycle; tier roles are created on demand when
// missing.
type Directory interface {
	ListRoles(ctx context.Context, guildID string) ([]Role, error)
	CreateRole(ctx context.Context, guildID, name string) (Role, error)
	GrantRole(ctx context.Context, guildID, userID, roleID string) error
	RevokeRole(ctx context.Context, guildID, userID, roleID string) error
	ListMembers(ctx context.Context, guildID string) ([]Member, error)
}
