package gateway

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Uzidoorman9/Absolute-Solver/internal/children"
	"github.com/Uzidoorman9/Absolute-Solver/internal/economy"
	"github.com/Uzidoorman9/Absolute-Solver/internal/fun"
	"github.com/Uzidoorman9/Absolute-Solver/internal/logging"
	"github.com/Uzidoorman9/Absolute-Solver/internal/roles"
)

// lockedRand makes a seeded *rand.Rand safe for concurrent handlers.
type lockedRand struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func (l *lockedRand) do(f func(*rand.Rand)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	f(l.rng)
}

// Commands implements every slash command over the economy core, the
// role synchronizer, and the drone supervisor.
type Commands struct {
	ledger   *economy.Ledger
	exchange *economy.Exchange
	journal  *economy.Journal
	sync     *roles.Synchronizer
	table    economy.TierTable
	drones   *children.Supervisor
	rand     *lockedRand
}

// NewCommands wires the command set. rng may be nil for a time-seeded
// source; tests pass a fixed seed.
func NewCommands(
	ledger *economy.Ledger,
	exchange *economy.Exchange,
	journal *economy.Journal,
	sync *roles.Synchronizer,
	table economy.TierTable,
	drones *children.Supervisor,
	rng *rand.Rand,
) *Commands {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Commands{
		ledger:   ledger,
		exchange: exchange,
		journal:  journal,
		sync:     sync,
		table:    table,
		drones:   drones,
		rand:     &lockedRand{rng: rng},
	}
}

// Register installs every command on the router with its guards.
func (c *Commands) Register(r *Router) {
	r.Handle("balance", c.Balance)
	r.Handle("rank", c.Rank)
	r.Handle("pay", c.Pay)
	r.Handle("shop", c.Shop)
	r.Handle("buy", c.Buy)
	r.Handle("sell", c.Sell)
	r.Handle("inventory", c.Inventory)
	r.Handle("leaderboard", c.Leaderboard)
	r.Handle("history", c.History)
	r.Handle("roll", c.RollDice)
	r.Handle("flip", c.FlipCoin)
	r.Handle("8ball", c.EightBall)
	r.Handle("blackjack", c.Blackjack, NewCooldown(5*time.Second).Guard())
	r.Handle("bot", c.SpawnDrone, AdminOnly())
	r.Handle("drones", c.ListDrones, AdminOnly())
	r.Handle("stopdrone", c.StopDrone, AdminOnly())
}

// syncLevel reconciles the caller's tier role after a level-up. Role
// state is best-effort: failures are logged and never undo the ledger
// change that triggered the sync.
func (c *Commands) syncLevel(ctx context.Context, guildID, userID string) {
	if c.sync == nil || guildID == "" {
		return
	}
	level := c.ledger.GetOrCreate(userID).Level
	if err := c.sync.SyncLevelRoles(ctx, guildID, userID, level); err != nil {
		logging.RolesWarn("level role sync for %s: %v", userID, err)
	}
}

// Balance reports the caller's oil and progression.
func (c *Commands) Balance(_ context.Context, inv Invocation) (Response, error) {
	acct := c.ledger.GetOrCreate(inv.UserID)
	return Response{Content: fmt.Sprintf(
		"You hold **%d oil**. Level %d (%d/%d XP).",
		acct.Balance, acct.Level, acct.XP, economy.ThresholdFor(acct.Level),
	)}, nil
}

// Rank reports level, tier, and progress to the next threshold.
func (c *Commands) Rank(_ context.Context, inv Invocation) (Response, error) {
	acct := c.ledger.GetOrCreate(inv.UserID)
	tier := c.table.TierFor(acct.Level)
	return Response{Content: fmt.Sprintf(
		"Level %d — **%s**. %d/%d XP to level %d.",
		acct.Level, tier, acct.XP, economy.ThresholdFor(acct.Level), acct.Level+1,
	)}, nil
}

// Pay transfers oil to another member.
func (c *Commands) Pay(_ context.Context, inv Invocation) (Response, error) {
	target := inv.StringArg("user")
	amount := inv.IntArg("amount", 0)
	if target == "" {
		return Response{}, fmt.Errorf("%w: missing recipient", economy.ErrInvalidArgument)
	}
	if err := c.ledger.Transfer(inv.UserID, target, amount); err != nil {
		return Response{}, err
	}
	logging.Economy("%s paid %d to %s", inv.UserID, amount, target)
	return Response{Content: fmt.Sprintf("Sent **%d oil** to <@%s>.", amount, target)}, nil
}

// Shop lists the catalog.
func (c *Commands) Shop(_ context.Context, _ Invocation) (Response, error) {
	items := c.exchange.Catalog().Items()
	if len(items) == 0 {
		return Response{Content: "The shop is empty."}, nil
	}
	var b strings.Builder
	b.WriteString("**Company Store**\n")
	for _, it := range items {
		fmt.Fprintf(&b, "`%s` — %d oil", it.Key, it.Price)
		if it.XPGrant > 0 {
			fmt.Fprintf(&b, " (+%d XP)", it.XPGrant)
		}
		if !it.Sellable {
			b.WriteString(" · no buy-back")
		}
		fmt.Fprintf(&b, " — %s\n", it.Description)
	}
	return Response{Content: b.String()}, nil
}

// Buy purchases one unit of an item. A level-up triggers role sync after
// the ledger mutation is finalized.
func (c *Commands) Buy(ctx context.Context, inv Invocation) (Response, error) {
	key := inv.StringArg("item")
	receipt, err := c.exchange.Purchase(inv.UserID, key)
	if err != nil {
		return Response{}, err
	}
	logging.Get(logging.CategoryShop).Info("%s bought %s for %d", inv.UserID, key, receipt.Item.Price)

	msg := fmt.Sprintf("Bought **%s** for %d oil. Balance: %d.", receipt.Item.Key, receipt.Item.Price, receipt.NewBalance)
	if receipt.LeveledUp {
		acct := c.ledger.GetOrCreate(inv.UserID)
		msg += fmt.Sprintf(" Level up! You are now level %d.", acct.Level)
		c.syncLevel(ctx, inv.GuildID, inv.UserID)
	}
	return Response{Content: msg}, nil
}

// Sell sells one unit back for half price.
func (c *Commands) Sell(_ context.Context, inv Invocation) (Response, error) {
	key := inv.StringArg("item")
	receipt, err := c.exchange.Sell(inv.UserID, key)
	if err != nil {
		return Response{}, err
	}
	logging.Get(logging.CategoryShop).Info("%s sold %s for %d", inv.UserID, key, receipt.Refund)
	return Response{Content: fmt.Sprintf(
		"Sold **%s** for %d oil. Balance: %d.", receipt.Item.Key, receipt.Refund, receipt.NewBalance,
	)}, nil
}

// Inventory lists the caller's items.
func (c *Commands) Inventory(_ context.Context, inv Invocation) (Response, error) {
	acct := c.ledger.GetOrCreate(inv.UserID)
	if len(acct.Inventory) == 0 {
		return Response{Content: "Your inventory is empty."}, nil
	}
	items := make([]string, 0, len(acct.Inventory))
	for key, qty := range acct.Inventory {
		items = append(items, fmt.Sprintf("`%s` ×%d", key, qty))
	}
	// Map order is fine for a chat list; sort for stable output anyway.
	sort.Strings(items)
	return Response{Content: "You own: " + strings.Join(items, ", ")}, nil
}

// Leaderboard shows the richest accounts and re-pins the top-holder role.
func (c *Commands) Leaderboard(ctx context.Context, inv Invocation) (Response, error) {
	accounts := c.ledger.Accounts()
	if len(accounts) == 0 {
		return Response{Content: "Nobody holds any oil yet."}, nil
	}

	var b strings.Builder
	b.WriteString("**Oil Leaderboard**\n")
	for i, acct := range accounts {
		if i == 10 {
			break
		}
		fmt.Fprintf(&b, "%d. <@%s> — %d oil (level %d)\n", i+1, acct.ID, acct.Balance, acct.Level)
	}

	// Viewing the leaderboard is the crown's sync point.
	if c.sync != nil && inv.GuildID != "" {
		if err := c.sync.SyncTopHolder(ctx, inv.GuildID, c.ledger.Balances()); err != nil {
			logging.RolesWarn("top holder sync: %v", err)
		}
	}
	return Response{Content: b.String()}, nil
}

// History shows the caller's recent ledger entries.
func (c *Commands) History(_ context.Context, inv Invocation) (Response, error) {
	entries := c.journal.ForUser(inv.UserID, 10)
	if len(entries) == 0 {
		return Response{Content: "No recorded transactions this session.", Ephemeral: true}, nil
	}
	var b strings.Builder
	b.WriteString("Recent transactions:\n")
	for _, e := range entries {
		sign := ""
		if e.Amount > 0 {
			sign = "+"
		}
		fmt.Fprintf(&b, "· %s %s%d", e.Kind, sign, e.Amount)
		if e.Ref != "" {
			fmt.Fprintf(&b, " (%s)", e.Ref)
		}
		b.WriteString("\n")
	}
	return Response{Content: b.String(), Ephemeral: true}, nil
}

// RollDice rolls dice.
func (c *Commands) RollDice(_ context.Context, inv Invocation) (Response, error) {
	sides := inv.IntArg("sides", 6)
	count := inv.IntArg("count", 1)
	var results []int
	c.rand.do(func(r *rand.Rand) { results = fun.Roll(r, count, sides) })
	return Response{Content: fmt.Sprintf("🎲 %s", fun.FormatRoll(results))}, nil
}

// FlipCoin flips a coin.
func (c *Commands) FlipCoin(_ context.Context, _ Invocation) (Response, error) {
	var side string
	c.rand.do(func(r *rand.Rand) { side = fun.Flip(r) })
	return Response{Content: "🪙 " + side + "!"}, nil
}

// EightBall consults the orb.
func (c *Commands) EightBall(_ context.Context, _ Invocation) (Response, error) {
	var answer string
	c.rand.do(func(r *rand.Rand) { answer = fun.EightBall(r) })
	return Response{Content: "🎱 " + answer}, nil
}

// Blackjack plays one round against the dealer for an optional wager.
// The wager settles after the round: a loss is debited (clamped, so a
// concurrent spender can at worst write the debt off), a win credited.
func (c *Commands) Blackjack(_ context.Context, inv Invocation) (Response, error) {
	bet := inv.IntArg("bet", 0)
	if bet < 0 {
		return Response{}, fmt.Errorf("%w: negative bet", economy.ErrInvalidArgument)
	}
	if bet > 0 && c.ledger.GetOrCreate(inv.UserID).Balance < bet {
		return Response{}, fmt.Errorf("%w: bet %d", economy.ErrInsufficientFunds, bet)
	}

	var round fun.Round
	c.rand.do(func(r *rand.Rand) { round = fun.Play(r) })

	msg := round.String()
	if bet > 0 {
		switch round.Result {
		case fun.OutcomeWin:
			newBal := c.ledger.AdjustBalance(inv.UserID, bet)
			msg += fmt.Sprintf("\nYou win **%d oil**! Balance: %d.", bet, newBal)
		case fun.OutcomeLose:
			newBal := c.ledger.AdjustBalance(inv.UserID, -bet)
			msg += fmt.Sprintf("\nYou lose **%d oil**. Balance: %d.", bet, newBal)
		default:
			msg += "\nPush — your oil stays where it is."
		}
	}
	return Response{Content: msg}, nil
}

// SpawnDrone forks a child chatbot for another bot token.
func (c *Commands) SpawnDrone(ctx context.Context, inv Invocation) (Response, error) {
	if c.drones == nil {
		return Response{Content: "Drone spawning is not configured.", Ephemeral: true}, nil
	}
	drone, err := c.drones.Spawn(ctx, children.SpawnRequest{
		Name:    inv.StringArg("name"),
		Persona: inv.StringArg("prompt"),
		Token:   inv.StringArg("token"),
	})
	if err != nil {
		return Response{Content: fmt.Sprintf("Could not start drone: %v", err), Ephemeral: true}, nil
	}
	// Always ephemeral: the invocation carried a bot token.
	return Response{
		Content:   fmt.Sprintf("Drone **%s** is starting (id `%s`).", drone.Name, drone.ID),
		Ephemeral: true,
	}, nil
}

// ListDrones lists tracked child bots.
func (c *Commands) ListDrones(_ context.Context, _ Invocation) (Response, error) {
	if c.drones == nil {
		return Response{Content: "Drone spawning is not configured.", Ephemeral: true}, nil
	}
	list := c.drones.List()
	if len(list) == 0 {
		return Response{Content: "No drones tracked.", Ephemeral: true}, nil
	}
	var b strings.Builder
	for _, d := range list {
		fmt.Fprintf(&b, "`%s` %s — %s (pid %d)\n", d.ID, d.Name, d.State, d.Pid)
	}
	return Response{Content: b.String(), Ephemeral: true}, nil
}

// StopDrone kills one child bot by ID.
func (c *Commands) StopDrone(_ context.Context, inv Invocation) (Response, error) {
	if c.drones == nil {
		return Response{Content: "Drone spawning is not configured.", Ephemeral: true}, nil
	}
	id := inv.StringArg("id")
	if err := c.drones.Stop(id); err != nil {
		return Response{Content: fmt.Sprintf("Could not stop drone: %v", err), Ephemeral: true}, nil
	}
	return Response{Content: fmt.Sprintf("Drone `%s` stopped.", id), Ephemeral: true}, nil
}
