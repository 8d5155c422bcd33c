// Package economy implements the oil ledger: per-user balances, experience,
// levels, inventory, and the shop exchange that trades against them.
//
// All state is held in memory for the lifetime of the process. Balances
// reset on restart; that is a documented property of the game, not a gap.
package economy

import "fmt"

// ThresholdFor returns the XP cost to advance from level to level+1.
// It is strictly positive and strictly increasing for all level >= 0.
func ThresholdFor(level int) int {
	return 100 + level*50
}

// Tier associates a minimum level with an external role name.
type Tier struct {
	MinLevel int    `yaml:"min_level"`
	Role     string `yaml:"role"`
}

// TierTable is an ordered list of tiers, strictly ascending by MinLevel.
// The first entry is the floor tier and must start at level 0 so that
// TierFor is total.
type TierTable []Tier

// Validate checks the table's structural invariants.
func (t TierTable) Validate() error {
	if len(t) == 0 {
		return fmt.Errorf("tier table is empty")
	}
	if t[0].MinLevel != 0 {
		return fmt.Errorf("first tier %q must have min_level 0, got %d", t[0].Role, t[0].MinLevel)
	}
	for i := 1; i < len(t); i++ {
		if t[i].MinLevel <= t[i-1].MinLevel {
			return fmt.Errorf("tier %q: min_level %d not greater than previous %d",
				t[i].Role, t[i].MinLevel, t[i-1].MinLevel)
		}
	}
	for _, tier := range t {
		if tier.Role == "" {
			return fmt.Errorf("tier at min_level %d has no role name", tier.MinLevel)
		}
	}
	return nil
}

// TierFor returns the role name of the highest tier whose MinLevel <= level.
// Levels below every entry fall through to the floor tier.
func (t TierTable) TierFor(level int) string {
	if len(t) == 0 {
		return ""
	}
	current := t[0].Role
	for _, tier := range t {
		if tier.MinLevel > level {
			break
		}
		current = tier.Role
	}
	return current
}

// RoleNames returns every role name in the table, in tier order. The role
// synchronizer uses this to recognize stale tier roles on a member.
func (t TierTable) RoleNames() []string {
	names := make([]string, len(t))
	for i, tier := range t {
		names[i] = tier.Role
	}
	return names
}
