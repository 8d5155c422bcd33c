package gateway

import (
	"fmt"
	"sync"
	"time"
)

// Verdict is the outcome of a guard check. Guards return data instead of
// wrapping control flow; the router turns a denial into the terminal
// response.
type Verdict struct {
	Allowed bool
	Reason  string
}

// Allow is the passing verdict.
func Allow() Verdict { return Verdict{Allowed: true} }

// Deny fails the check with a user-visible reason.
func Deny(reason string) Verdict { return Verdict{Reason: reason} }

// Guard inspects an invocation before its handler runs.
type Guard func(inv Invocation) Verdict

// AdminOnly denies callers without the administrator permission.
func AdminOnly() Guard {
	return func(inv Invocation) Verdict {
		if !inv.IsAdmin {
			return Deny("This command requires administrator permissions.")
		}
		return Allow()
	}
}

// Cooldown rate-limits per user. One instance covers one command (or the
// passive message-XP path); the zero key namespace is per-user only.
type Cooldown struct {
	mu   sync.Mutex
	last map[string]time.Time
	per  time.Duration
	now  func() time.Time
}

// NewCooldown creates a cooldown of the given period. The clock is
// time.Now; tests swap it via WithClock.
func NewCooldown(per time.Duration) *Cooldown {
	return &Cooldown{
		last: make(map[string]time.Time),
		per:  per,
		now:  time.Now,
	}
}

// WithClock substitutes the time source and returns the cooldown.
func (c *Cooldown) WithClock(now func() time.Time) *Cooldown {
	c.now = now
	return c
}

// Try records an attempt for key and reports whether it is allowed. The
// attempt only consumes the cooldown when allowed.
func (c *Cooldown) Try(key string) (ok bool, retryIn time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if last, seen := c.last[key]; seen {
		if wait := c.per - now.Sub(last); wait > 0 {
			return false, wait
		}
	}
	c.last[key] = now
	return true, 0
}

// Guard adapts the cooldown for the router, keyed by user ID.
func (c *Cooldown) Guard() Guard {
	return func(inv Invocation) Verdict {
		ok, retryIn := c.Try(inv.UserID)
		if !ok {
			return Deny(fmt.Sprintf("Slow down. Try again in %s.", retryIn.Round(time.Second)))
		}
		return Allow()
	}
}
