package economy

import (
	"fmt"
	"sort"
)

// Item is a static catalog entry. Items are never user-owned themselves;
// ownership lives in account inventories keyed by Item.Key.
type Item struct {
	Key         string `yaml:"key"`
	Price       int    `yaml:"price"`
	XPGrant     int    `yaml:"xp_grant"`
	Description string `yaml:"description"`

	// Sellable marks items the exchange will buy back. Items earned
	// outside the shop can be ownable but not sellable.
	Sellable bool `yaml:"sellable"`
}

// Catalog is the static shop listing.
type Catalog struct {
	items map[string]Item
}

// NewCatalog builds a catalog, rejecting duplicate keys and non-positive
// prices or negative XP grants.
func NewCatalog(items []Item) (*Catalog, error) {
	m := make(map[string]Item, len(items))
	for _, it := range items {
		if it.Key == "" {
			return nil, fmt.Errorf("catalog item with empty key")
		}
		if _, dup := m[it.Key]; dup {
			return nil, fmt.Errorf("duplicate catalog item %q", it.Key)
		}
		if it.Price <= 0 {
			return nil, fmt.Errorf("item %q: price must be positive, got %d", it.Key, it.Price)
		}
		if it.XPGrant < 0 {
			return nil, fmt.Errorf("item %q: xp grant must be non-negative, got %d", it.Key, it.XPGrant)
		}
		m[it.Key] = it
	}
	return &Catalog{items: m}, nil
}

// Lookup returns the item for key.
func (c *Catalog) Lookup(key string) (Item, bool) {
	it, ok := c.items[key]
	return it, ok
}

// Items returns the catalog sorted by ascending price, then key.
func (c *Catalog) Items() []Item {
	out := make([]Item, 0, len(c.items))
	for _, it := range c.items {
		out = append(out, it)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Price != out[j].Price {
			return out[i].Price < out[j].Price
		}
		return out[i].Key < out[j].Key
	})
	return out
}

// PurchaseReceipt reports the outcome of a successful purchase.
type PurchaseReceipt struct {
	Item       Item
	NewBalance int
	XPGranted  int
	LeveledUp  bool
}

// SaleReceipt reports the outcome of a successful sale.
type SaleReceipt struct {
	Item       Item
	Refund     int
	NewBalance int
}

// Exchange validates and applies purchases and sales against the ledger.
// Each operation runs under one ledger lock acquisition: the funds check
// and the debit cannot interleave with another operation on the same
// account.
type Exchange struct {
	ledger  *Ledger
	catalog *Catalog
}

// NewExchange wires an exchange over a ledger and catalog.
func NewExchange(ledger *Ledger, catalog *Catalog) *Exchange {
	return &Exchange{ledger: ledger, catalog: catalog}
}

// Catalog returns the current catalog snapshot.
func (e *Exchange) Catalog() *Catalog {
	e.ledger.mu.RLock()
	defer e.ledger.mu.RUnlock()
	return e.catalog
}

// SwapCatalog replaces the catalog, used by config hot-reload. The ledger
// lock orders the swap against in-flight purchases.
func (e *Exchange) SwapCatalog(catalog *Catalog) {
	e.ledger.mu.Lock()
	defer e.ledger.mu.Unlock()
	e.catalog = catalog
}

// Purchase debits the item price, adds one unit to the inventory, and
// grants the item's XP. Insufficient funds reject the purchase outright;
// nothing is clamped and no state changes on failure.
func (e *Exchange) Purchase(userID, itemKey string) (PurchaseReceipt, error) {
	e.ledger.mu.Lock()
	defer e.ledger.mu.Unlock()

	item, ok := e.catalog.Lookup(itemKey)
	if !ok {
		return PurchaseReceipt{}, fmt.Errorf("%w: %q", ErrUnknownItem, itemKey)
	}

	acct := e.ledger.getOrCreate(userID)
	if acct.Balance < item.Price {
		return PurchaseReceipt{}, fmt.Errorf("%w: balance %d, price %d",
			ErrInsufficientFunds, acct.Balance, item.Price)
	}

	acct.Balance -= item.Price
	acct.Inventory[item.Key]++

	leveledUp := false
	acct.XP += item.XPGrant
	for acct.XP >= ThresholdFor(acct.Level) {
		acct.XP -= ThresholdFor(acct.Level)
		acct.Level++
		leveledUp = true
	}

	e.ledger.journal.record(userID, KindPurchase, -item.Price, item.Key)

	return PurchaseReceipt{
		Item:       item,
		NewBalance: acct.Balance,
		XPGranted:  item.XPGrant,
		LeveledUp:  leveledUp,
	}, nil
}

// Sell removes one unit from the inventory and credits half the item's
// price, rounded down. Unknown or non-sellable items fail with
// ErrUnknownItem before ownership is considered.
func (e *Exchange) Sell(userID, itemKey string) (SaleReceipt, error) {
	e.ledger.mu.Lock()
	defer e.ledger.mu.Unlock()

	item, ok := e.catalog.Lookup(itemKey)
	if !ok || !item.Sellable {
		return SaleReceipt{}, fmt.Errorf("%w: %q is not sellable here", ErrUnknownItem, itemKey)
	}

	acct := e.ledger.getOrCreate(userID)
	if acct.Inventory[item.Key] < 1 {
		return SaleReceipt{}, fmt.Errorf("%w: %q", ErrNotOwned, itemKey)
	}

	acct.Inventory[item.Key]--
	if acct.Inventory[item.Key] == 0 {
		delete(acct.Inventory, item.Key)
	}
	refund := item.Price / 2
	acct.Balance += refund

	e.ledger.journal.record(userID, KindSale, refund, item.Key)

	return SaleReceipt{
		Item:       item,
		Refund:     refund,
		NewBalance: acct.Balance,
	}, nil
}
