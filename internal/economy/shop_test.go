package economy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCatalog(t *testing.T) *Catalog {
	t.Helper()
	c, err := NewCatalog([]Item{
		{Key: "oil-can", Price: 500, XPGrant: 20, Description: "A refreshing can of oil.", Sellable: true},
		{Key: "railgun", Price: 1500, XPGrant: 20, Description: "Standard issue.", Sellable: true},
		{Key: "core-shard", Price: 9999, XPGrant: 0, Description: "Earned, not bought.", Sellable: false},
	})
	require.NoError(t, err)
	return c
}

func TestNewCatalog_Invalid(t *testing.T) {
	cases := []struct {
		name  string
		items []Item
	}{
		{"empty key", []Item{{Key: "", Price: 1}}},
		{"duplicate key", []Item{{Key: "a", Price: 1}, {Key: "a", Price: 2}}},
		{"zero price", []Item{{Key: "a", Price: 0}}},
		{"negative xp", []Item{{Key: "a", Price: 1, XPGrant: -5}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewCatalog(tc.items)
			assert.Error(t, err)
		})
	}
}

func TestExchange_Purchase_InsufficientFunds(t *testing.T) {
	l := NewLedger(1000, nil)
	ex := NewExchange(l, testCatalog(t))

	_, err := ex.Purchase("uzi", "railgun") // price 1500 vs balance 1000
	require.ErrorIs(t, err, ErrInsufficientFunds)

	// State unchanged on rejection.
	acct := l.GetOrCreate("uzi")
	assert.Equal(t, 1000, acct.Balance)
	assert.Equal(t, 0, acct.XP)
	assert.Equal(t, 0, acct.Level)
	assert.Empty(t, acct.Inventory)
}

func TestExchange_Purchase_LevelUp(t *testing.T) {
	l := NewLedger(2000, nil)
	_, err := l.GrantXP("uzi", 90)
	require.NoError(t, err)

	ex := NewExchange(l, testCatalog(t))
	receipt, err := ex.Purchase("uzi", "oil-can") // price 500, xp 20, threshold 100
	require.NoError(t, err)

	assert.True(t, receipt.LeveledUp)
	assert.Equal(t, 1500, receipt.NewBalance)
	assert.Equal(t, 20, receipt.XPGranted)

	acct := l.GetOrCreate("uzi")
	assert.Equal(t, 1500, acct.Balance)
	assert.Equal(t, 10, acct.XP)
	assert.Equal(t, 1, acct.Level)
	assert.Equal(t, 1, acct.Inventory["oil-can"])
}

func TestExchange_Purchase_UnknownItem(t *testing.T) {
	ex := NewExchange(NewLedger(1000, nil), testCatalog(t))
	_, err := ex.Purchase("uzi", "banana")
	require.ErrorIs(t, err, ErrUnknownItem)
}

func TestExchange_Sell(t *testing.T) {
	l := NewLedger(2000, nil)
	ex := NewExchange(l, testCatalog(t))

	t.Run("not owned", func(t *testing.T) {
		_, err := ex.Sell("n", "oil-can")
		require.ErrorIs(t, err, ErrNotOwned)
	})

	t.Run("non-sellable item", func(t *testing.T) {
		require.NoError(t, l.InventoryAdd("n", "core-shard", 1))
		_, err := ex.Sell("n", "core-shard")
		require.ErrorIs(t, err, ErrUnknownItem)
		// Still owned; the sale never touched the inventory.
		assert.Equal(t, 1, l.GetOrCreate("n").Inventory["core-shard"])
	})

	t.Run("buy then sell nets price minus floor half", func(t *testing.T) {
		before := l.GetOrCreate("v").Balance
		_, err := ex.Purchase("v", "oil-can")
		require.NoError(t, err)
		receipt, err := ex.Sell("v", "oil-can")
		require.NoError(t, err)

		assert.Equal(t, 250, receipt.Refund)
		assert.Equal(t, before-(500-250), receipt.NewBalance)
		// Inventory back to where it started: key absent, not zero.
		_, held := l.GetOrCreate("v").Inventory["oil-can"]
		assert.False(t, held)
	})
}

func TestExchange_SwapCatalog(t *testing.T) {
	l := NewLedger(1000, nil)
	ex := NewExchange(l, testCatalog(t))

	replacement, err := NewCatalog([]Item{{Key: "wrench", Price: 10, Sellable: true}})
	require.NoError(t, err)
	ex.SwapCatalog(replacement)

	_, err = ex.Purchase("u", "oil-can")
	require.ErrorIs(t, err, ErrUnknownItem)
	_, err = ex.Purchase("u", "wrench")
	require.NoError(t, err)
}

func TestCatalog_Items_Sorted(t *testing.T) {
	items := testCatalog(t).Items()
	require.Len(t, items, 3)
	assert.Equal(t, "oil-can", items[0].Key)
	assert.Equal(t, "railgun", items[1].Key)
	assert.Equal(t, "core-shard", items[2].Key)
}
