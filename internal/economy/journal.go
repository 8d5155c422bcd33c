package economy

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// EntryKind classifies a journal entry.
type EntryKind string

const (
	KindAdjust      EntryKind = "adjust"
	KindPurchase    EntryKind = "purchase"
	KindSale        EntryKind = "sale"
	KindTransferOut EntryKind = "transfer_out"
	KindTransferIn  EntryKind = "transfer_in"
)

// Entry is one balance-affecting event. Amount is signed: debits are
// negative. Ref carries the item key for shop entries and the counterparty
// user ID for transfers.
type Entry struct {
	ID     string
	UserID string
	Kind   EntryKind
	Amount int
	Ref    string
	At     time.Time
}

// Journal is an in-memory, bounded audit trail of ledger mutations. Like
// the rest of the economy state it does not survive a restart; it exists
// so /history can answer "where did my oil go" within a session.
type Journal struct {
	mu      sync.Mutex
	entries []Entry
	limit   int
	now     func() time.Time
}

// NewJournal creates a journal keeping at most limit entries; older
// entries are discarded first. limit <= 0 selects a default of 1000.
func NewJournal(limit int) *Journal {
	if limit <= 0 {
		limit = 1000
	}
	return &Journal{limit: limit, now: time.Now}
}

// record appends an entry. Safe to call on a nil journal (no-op), which
// lets the ledger treat the audit trail as optional.
func (j *Journal) record(userID string, kind EntryKind, amount int, ref string) {
	if j == nil {
		return
	}
	j.mu.Lock()
	defer j.mu.Unlock()

	j.entries = append(j.entries, Entry{
		ID:     uuid.NewString(),
		UserID: userID,
		Kind:   kind,
		Amount: amount,
		Ref:    ref,
		At:     j.now(),
	})
	if len(j.entries) > j.limit {
		j.entries = j.entries[len(j.entries)-j.limit:]
	}
}

// ForUser returns the most recent entries for a user, newest first,
// capped at max (max <= 0 means no cap).
func (j *Journal) ForUser(userID string, max int) []Entry {
	if j == nil {
		return nil
	}
	j.mu.Lock()
	defer j.mu.Unlock()

	var out []Entry
	for i := len(j.entries) - 1; i >= 0; i-- {
		if j.entries[i].UserID != userID {
			continue
		}
		out = append(out, j.entries[i])
		if max > 0 && len(out) == max {
			break
		}
	}
	return out
}
