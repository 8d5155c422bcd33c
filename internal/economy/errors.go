package economy

import "errors"

// Sentinel errors returned by the ledger and exchange. All of these are
// local, recoverable conditions: command handlers translate them into a
// user-visible reply, none of them are fatal to the process.
var (
	// ErrUnknownItem is returned when an item key is not in the catalog.
	ErrUnknownItem = errors.New("unknown item")

	// ErrInsufficientFunds is returned when a checked debit (purchase,
	// transfer) would exceed the account balance. Note that AdjustBalance
	// deliberately does NOT return this - it clamps instead.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrNotOwned is returned when selling an item the account does not hold.
	ErrNotOwned = errors.New("item not owned")

	// ErrInsufficientInventory is returned when removing more units than held.
	ErrInsufficientInventory = errors.New("insufficient inventory")

	// ErrInvalidArgument is returned for negative XP grants and non-positive
	// quantities or transfer amounts.
	ErrInvalidArgument = errors.New("invalid argument")
)
