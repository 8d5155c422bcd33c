package economy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLedger_GetOrCreate(t *testing.T) {
	l := NewLedger(1000, nil)

	acct := l.GetOrCreate("user-1")
	assert.Equal(t, "user-1", acct.ID)
	assert.Equal(t, 1000, acct.Balance)
	assert.Equal(t, 0, acct.XP)
	assert.Equal(t, 0, acct.Level)
	assert.Empty(t, acct.Inventory)

	// Returned account is a copy; mutating it must not touch the ledger.
	acct.Balance = 5
	acct.Inventory["stolen"] = 1
	again := l.GetOrCreate("user-1")
	assert.Equal(t, 1000, again.Balance)
	assert.Empty(t, again.Inventory)
}

func TestLedger_AdjustBalance_ClampsAtZero(t *testing.T) {
	l := NewLedger(100, nil)

	assert.Equal(t, 150, l.AdjustBalance("u", 50))
	assert.Equal(t, 0, l.AdjustBalance("u", -9000))
	assert.Equal(t, 25, l.AdjustBalance("u", 25))
}

func TestLedger_AdjustBalance_JournalsEffectiveChange(t *testing.T) {
	l := NewLedger(100, NewJournal(10))

	l.AdjustBalance("u", -250) // clamped: only 100 was there to take

	entries := l.journal.ForUser("u", 0)
	require.Len(t, entries, 1)
	assert.Equal(t, -100, entries[0].Amount)

	l.AdjustBalance("u", 40)
	entries = l.journal.ForUser("u", 0)
	require.Len(t, entries, 2)
	assert.Equal(t, 40, entries[0].Amount)
}

func TestLedger_GrantXP(t *testing.T) {
	t.Run("negative amount rejected", func(t *testing.T) {
		l := NewLedger(0, nil)
		_, err := l.GrantXP("u", -1)
		require.ErrorIs(t, err, ErrInvalidArgument)
	})

	t.Run("single level up", func(t *testing.T) {
		l := NewLedger(0, nil)
		up, err := l.GrantXP("u", 120) // threshold at level 0 is 100
		require.NoError(t, err)
		assert.True(t, up)

		acct := l.GetOrCreate("u")
		assert.Equal(t, 1, acct.Level)
		assert.Equal(t, 20, acct.XP)
	})

	t.Run("carry across multiple levels", func(t *testing.T) {
		l := NewLedger(0, nil)
		up, err := l.GrantXP("u", 100+150+10) // levels 0 and 1 in one grant
		require.NoError(t, err)
		assert.True(t, up)

		acct := l.GetOrCreate("u")
		assert.Equal(t, 2, acct.Level)
		assert.Equal(t, 10, acct.XP)
	})

	t.Run("split grants equal one grant", func(t *testing.T) {
		a := NewLedger(0, nil)
		b := NewLedger(0, nil)

		_, err := a.GrantXP("u", 70)
		require.NoError(t, err)
		_, err = a.GrantXP("u", 230)
		require.NoError(t, err)

		_, err = b.GrantXP("u", 300)
		require.NoError(t, err)

		split := a.GetOrCreate("u")
		whole := b.GetOrCreate("u")
		assert.Equal(t, whole.Level, split.Level)
		assert.Equal(t, whole.XP, split.XP)
	})
}

func TestLedger_Inventory(t *testing.T) {
	l := NewLedger(0, nil)

	require.NoError(t, l.InventoryAdd("u", "claw", 2))
	require.NoError(t, l.InventoryRemove("u", "claw", 1))
	assert.Equal(t, 1, l.GetOrCreate("u").Inventory["claw"])

	err := l.InventoryRemove("u", "claw", 2)
	require.ErrorIs(t, err, ErrInsufficientInventory)

	// Hitting exactly zero deletes the key.
	require.NoError(t, l.InventoryRemove("u", "claw", 1))
	_, held := l.GetOrCreate("u").Inventory["claw"]
	assert.False(t, held)

	require.ErrorIs(t, l.InventoryAdd("u", "claw", 0), ErrInvalidArgument)
	require.ErrorIs(t, l.InventoryRemove("u", "claw", -1), ErrInvalidArgument)
}

func TestLedger_Transfer(t *testing.T) {
	l := NewLedger(1000, NewJournal(10))

	require.NoError(t, l.Transfer("a", "b", 400))
	assert.Equal(t, 600, l.GetOrCreate("a").Balance)
	assert.Equal(t, 1400, l.GetOrCreate("b").Balance)

	err := l.Transfer("a", "b", 601)
	require.ErrorIs(t, err, ErrInsufficientFunds)

	require.ErrorIs(t, l.Transfer("a", "a", 1), ErrInvalidArgument)
	require.ErrorIs(t, l.Transfer("a", "b", 0), ErrInvalidArgument)

	// Both sides journaled.
	assert.Len(t, l.journal.ForUser("a", 0), 1)
	assert.Len(t, l.journal.ForUser("b", 0), 1)
}

func TestLedger_Accounts_SortedByBalance(t *testing.T) {
	l := NewLedger(0, nil)
	l.AdjustBalance("c", 50)
	l.AdjustBalance("a", 200)
	l.AdjustBalance("b", 200)

	accts := l.Accounts()
	require.Len(t, accts, 3)
	assert.Equal(t, "a", accts[0].ID) // tie with b broken by ID
	assert.Equal(t, "b", accts[1].ID)
	assert.Equal(t, "c", accts[2].ID)
}

func TestJournal_Bounded(t *testing.T) {
	j := NewJournal(3)
	for i := 0; i < 10; i++ {
		j.record("u", KindAdjust, i, "")
	}
	entries := j.ForUser("u", 0)
	require.Len(t, entries, 3)
	// Newest first.
	assert.Equal(t, 9, entries[0].Amount)
	assert.Equal(t, 7, entries[2].Amount)
}

func TestJournal_NilSafe(t *testing.T) {
	var j *Journal
	j.record("u", KindAdjust, 1, "") // must not panic
	if got := j.ForUser("u", 0); got != nil {
		t.Fatalf("nil journal returned entries: %v", got)
	}
}
