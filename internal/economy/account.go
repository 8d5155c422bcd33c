package economy

// Account is the per-user economic record. Accounts are created lazily on
// first reference and live for the process lifetime; they are never deleted.
//
// Invariants maintained by the ledger:
//   - Balance >= 0
//   - 0 <= XP < ThresholdFor(Level)
//   - Level is monotonically non-decreasing
//   - Inventory never holds zero-quantity entries
type Account struct {
	ID        string
	Balance   int
	XP        int
	Level     int
	Inventory map[string]int
}

// clone returns a deep copy so callers can never mutate ledger state
// through a returned account.
func (a *Account) clone() Account {
	out := *a
	out.Inventory = make(map[string]int, len(a.Inventory))
	for k, v := range a.Inventory {
		out.Inventory[k] = v
	}
	return out
}
