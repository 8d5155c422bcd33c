package roles

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/Uzidoorman9/Absolute-Solver/internal/economy"
)

// LevelRolePlan describes the role changes needed to bring a member's
// tier role in line with their level. Applying the plan and recomputing
// it yields an empty plan.
type LevelRolePlan struct {
	// ToAdd is the target tier role if not already held, else empty.
	ToAdd string

	// ToRemove is every tier-table role held other than the target. At
	// most one should ever be present, but the plan removes all stale
	// tier roles it finds.
	ToRemove []string
}

// Empty reports whether the plan changes nothing.
func (p LevelRolePlan) Empty() bool {
	return p.ToAdd == "" && len(p.ToRemove) == 0
}

// PlanLevelRoles computes the tier role changes for a member at the given
// level currently holding heldRoleNames.
func PlanLevelRoles(level int, heldRoleNames []string, table economy.TierTable) LevelRolePlan {
	target := table.TierFor(level)

	tierRoles := make(map[string]bool, len(table))
	for _, name := range table.RoleNames() {
		tierRoles[name] = true
	}

	var plan LevelRolePlan
	holdsTarget := false
	for _, held := range heldRoleNames {
		if held == target {
			holdsTarget = true
			continue
		}
		if tierRoles[held] {
			plan.ToRemove = append(plan.ToRemove, held)
		}
	}
	sort.Strings(plan.ToRemove)
	if !holdsTarget && target != "" {
		plan.ToAdd = target
	}
	return plan
}

// TopHolderPlan describes the reassignment of the top-holder role.
type TopHolderPlan struct {
	// NewHolder is the winning user if they do not already hold the role,
	// else empty.
	NewHolder string

	// OldHolders is every currently-tagged holder other than the winner.
	OldHolders []string
}

// Empty reports whether the plan changes nothing.
func (p TopHolderPlan) Empty() bool {
	return p.NewHolder == "" && len(p.OldHolders) == 0
}

// PlanTopHolder selects the single account with the maximum balance and
// plans the grant/revoke set against the current holders. Ties break to
// the lowest user ID so the winner is deterministic. An empty population
// yields an empty plan.
func PlanTopHolder(balances map[string]int, currentHolders []string) TopHolderPlan {
	if len(balances) == 0 {
		return TopHolderPlan{}
	}

	winner := ""
	best := 0
	for id, bal := range balances {
		switch {
		case winner == "", bal > best, bal == best && id < winner:
			winner = id
			best = bal
		}
	}

	var plan TopHolderPlan
	holdsAlready := false
	for _, holder := range currentHolders {
		if holder == winner {
			holdsAlready = true
			continue
		}
		plan.OldHolders = append(plan.OldHolders, holder)
	}
	sort.Strings(plan.OldHolders)
	if !holdsAlready {
		plan.NewHolder = winner
	}
	return plan
}

// Synchronizer applies role plans through the external directory.
type Synchronizer struct {
	dir     Directory
	table   economy.TierTable
	topRole string
}

// NewSynchronizer wires a synchronizer for one tier table and top-holder
// role name.
func NewSynchronizer(dir Directory, table economy.TierTable, topRole string) *Synchronizer {
	return &Synchronizer{dir: dir, table: table, topRole: topRole}
}

// roleIndex maps role names to IDs for one guild snapshot.
func (s *Synchronizer) roleIndex(ctx context.Context, guildID string) (map[string]string, error) {
	list, err := s.dir.ListRoles(ctx, guildID)
	if err != nil {
		return nil, fmt.Errorf("list roles: %w", err)
	}
	idx := make(map[string]string, len(list))
	for _, r := range list {
		idx[r.Name] = r.ID
	}
	return idx, nil
}

// ensureRole returns the ID for name, creating the role when absent.
func (s *Synchronizer) ensureRole(ctx context.Context, guildID, name string, idx map[string]string) (string, error) {
	if id, ok := idx[name]; ok {
		return id, nil
	}
	created, err := s.dir.CreateRole(ctx, guildID, name)
	if err != nil {
		return "", fmt.Errorf("create role %q: %w", name, err)
	}
	idx[name] = created.ID
	return created.ID, nil
}

// member finds one guild member by user ID.
func (s *Synchronizer) member(ctx context.Context, guildID, userID string) (Member, error) {
	members, err := s.dir.ListMembers(ctx, guildID)
	if err != nil {
		return Member{}, fmt.Errorf("list members: %w", err)
	}
	for _, m := range members {
		if m.UserID == userID {
			return m, nil
		}
	}
	return Member{}, fmt.Errorf("member %s not found in guild %s", userID, guildID)
}

// SyncLevelRoles reconciles one member's tier role with their level.
// Removals are attempted even when other steps fail; all errors are
// joined and returned for logging.
func (s *Synchronizer) SyncLevelRoles(ctx context.Context, guildID, userID string, level int) error {
	idx, err := s.roleIndex(ctx, guildID)
	if err != nil {
		return err
	}
	mem, err := s.member(ctx, guildID, userID)
	if err != nil {
		return err
	}

	idToName := make(map[string]string, len(idx))
	for name, id := range idx {
		idToName[id] = name
	}
	held := make([]string, 0, len(mem.RoleIDs))
	for _, id := range mem.RoleIDs {
		if name, ok := idToName[id]; ok {
			held = append(held, name)
		}
	}

	plan := PlanLevelRoles(level, held, s.table)
	if plan.Empty() {
		return nil
	}

	var errs []error
	for _, name := range plan.ToRemove {
		if err := s.dir.RevokeRole(ctx, guildID, userID, idx[name]); err != nil {
			errs = append(errs, fmt.Errorf("revoke %q: %w", name, err))
		}
	}
	if plan.ToAdd != "" {
		roleID, err := s.ensureRole(ctx, guildID, plan.ToAdd, idx)
		if err != nil {
			errs = append(errs, err)
		} else if err := s.dir.GrantRole(ctx, guildID, userID, roleID); err != nil {
			errs = append(errs, fmt.Errorf("grant %q: %w", plan.ToAdd, err))
		}
	}
	return errors.Join(errs...)
}

// SyncTopHolder moves the top-holder role to the account with the highest
// balance. No-op when the population is empty.
func (s *Synchronizer) SyncTopHolder(ctx context.Context, guildID string, balances map[string]int) error {
	if s.topRole == "" || len(balances) == 0 {
		return nil
	}

	idx, err := s.roleIndex(ctx, guildID)
	if err != nil {
		return err
	}
	roleID, err := s.ensureRole(ctx, guildID, s.topRole, idx)
	if err != nil {
		return err
	}

	members, err := s.dir.ListMembers(ctx, guildID)
	if err != nil {
		return fmt.Errorf("list members: %w", err)
	}
	var holders []string
	for _, m := range members {
		for _, id := range m.RoleIDs {
			if id == roleID {
				holders = append(holders, m.UserID)
				break
			}
		}
	}

	plan := PlanTopHolder(balances, holders)
	var errs []error
	for _, old := range plan.OldHolders {
		if err := s.dir.RevokeRole(ctx, guildID, old, roleID); err != nil {
			errs = append(errs, fmt.Errorf("revoke top holder from %s: %w", old, err))
		}
	}
	if plan.NewHolder != "" {
		if err := s.dir.GrantRole(ctx, guildID, plan.NewHolder, roleID); err != nil {
			errs = append(errs, fmt.Errorf("grant top holder to %s: %w", plan.NewHolder, err))
		}
	}
	return errors.Join(errs...)
}
