package economy

import (
	"fmt"
	"sort"
	"sync"
)

// Ledger is the sole owner of account state. Every read or write to
// balance, XP, level, or inventory goes through it; callers only ever see
// deep copies of accounts.
//
// Each exported method completes its mutation under a single lock
// acquisition, so one logical operation can never interleave with another
// touching the same account. Role synchronization triggered by a result
// (e.g. a level-up) must happen after the method returns; its failure does
// not roll the ledger back.
type Ledger struct {
	mu           sync.RWMutex
	accounts     map[string]*Account
	startBalance int
	journal      *Journal
}

// NewLedger creates an empty ledger. New accounts open with startBalance
// oil. journal may be nil to disable the audit trail.
func NewLedger(startBalance int, journal *Journal) *Ledger {
	return &Ledger{
		accounts:     make(map[string]*Account),
		startBalance: startBalance,
		journal:      journal,
	}
}

// getOrCreate returns the live account record. Callers must hold l.mu.
func (l *Ledger) getOrCreate(userID string) *Account {
	acct, ok := l.accounts[userID]
	if !ok {
		acct = &Account{
			ID:        userID,
			Balance:   l.startBalance,
			Inventory: make(map[string]int),
		}
		l.accounts[userID] = acct
	}
	return acct
}

// GetOrCreate returns a copy of the account, creating it on first
// reference. It never fails.
func (l *Ledger) GetOrCreate(userID string) Account {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.getOrCreate(userID).clone()
}

// AdjustBalance applies delta to the balance and clamps the result at
// zero. A negative result is not an error: the overdraft is silently
// written off. Callers that need insufficient-funds semantics must check
// the balance before debiting (Purchase and Transfer do).
func (l *Ledger) AdjustBalance(userID string, delta int) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	acct := l.getOrCreate(userID)
	before := acct.Balance
	acct.Balance += delta
	if acct.Balance < 0 {
		acct.Balance = 0
	}
	// Journal what actually moved, not what was asked for: a clamped
	// debit writes off only the available balance.
	l.journal.record(userID, KindAdjust, acct.Balance-before, "")
	return acct.Balance
}

// GrantXP adds amount XP and advances the level while the accumulated XP
// covers the next threshold. It reports whether at least one level-up
// occurred; the caller is responsible for triggering role sync when true.
func (l *Ledger) GrantXP(userID string, amount int) (leveledUp bool, err error) {
	if amount < 0 {
		return false, fmt.Errorf("%w: negative xp grant %d", ErrInvalidArgument, amount)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	acct := l.getOrCreate(userID)
	acct.XP += amount
	for acct.XP >= ThresholdFor(acct.Level) {
		acct.XP -= ThresholdFor(acct.Level)
		acct.Level++
		leveledUp = true
	}
	return leveledUp, nil
}

// InventoryAdd adds qty units of itemKey to the account.
func (l *Ledger) InventoryAdd(userID, itemKey string, qty int) error {
	if qty <= 0 {
		return fmt.Errorf("%w: quantity %d", ErrInvalidArgument, qty)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	acct := l.getOrCreate(userID)
	acct.Inventory[itemKey] += qty
	return nil
}

// InventoryRemove removes qty units of itemKey. Entries that reach zero
// are deleted; the inventory map never holds zero-valued keys.
func (l *Ledger) InventoryRemove(userID, itemKey string, qty int) error {
	if qty <= 0 {
		return fmt.Errorf("%w: quantity %d", ErrInvalidArgument, qty)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	acct := l.getOrCreate(userID)
	if acct.Inventory[itemKey] < qty {
		return fmt.Errorf("%w: have %d of %q, need %d",
			ErrInsufficientInventory, acct.Inventory[itemKey], itemKey, qty)
	}
	acct.Inventory[itemKey] -= qty
	if acct.Inventory[itemKey] == 0 {
		delete(acct.Inventory, itemKey)
	}
	return nil
}

// Transfer moves amount oil from one account to another. The debit is
// checked, not clamped. The two mutations are applied sequentially under
// the same lock; there is no all-or-nothing guarantee against a crash
// between them, an accepted risk for in-memory state.
func (l *Ledger) Transfer(fromID, toID string, amount int) error {
	if amount <= 0 {
		return fmt.Errorf("%w: transfer amount %d", ErrInvalidArgument, amount)
	}
	if fromID == toID {
		return fmt.Errorf("%w: cannot transfer to self", ErrInvalidArgument)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	from := l.getOrCreate(fromID)
	if from.Balance < amount {
		return fmt.Errorf("%w: balance %d, transfer %d", ErrInsufficientFunds, from.Balance, amount)
	}
	to := l.getOrCreate(toID)
	from.Balance -= amount
	to.Balance += amount
	l.journal.record(fromID, KindTransferOut, -amount, toID)
	l.journal.record(toID, KindTransferIn, amount, fromID)
	return nil
}

// Accounts returns copies of every known account, sorted by descending
// balance with user ID as the tie-break, ready for a leaderboard view.
func (l *Ledger) Accounts() []Account {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]Account, 0, len(l.accounts))
	for _, acct := range l.accounts {
		out = append(out, acct.clone())
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Balance != out[j].Balance {
			return out[i].Balance > out[j].Balance
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Balances returns the balance of every known account keyed by user ID.
// The top-holder synchronizer consumes this snapshot.
func (l *Ledger) Balances() map[string]int {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make(map[string]int, len(l.accounts))
	for id, acct := range l.accounts {
		out[id] = acct.Balance
	}
	return out
}
