package gateway

import (
	"context"
	"math/rand"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Uzidoorman9/Absolute-Solver/internal/children"
	"github.com/Uzidoorman9/Absolute-Solver/internal/economy"
)

func newTestRouter(t *testing.T) (*Router, *economy.Ledger) {
	t.Helper()

	journal := economy.NewJournal(100)
	ledger := economy.NewLedger(500, journal)
	catalog, err := economy.NewCatalog([]economy.Item{
		{Key: "oil-can", Price: 150, XPGrant: 25, Description: "A refreshing can of oil", Sellable: true},
		{Key: "railgun", Price: 400, XPGrant: 120, Description: "Standard-issue railgun", Sellable: true},
	})
	require.NoError(t, err)

	table := economy.TierTable{
		{MinLevel: 0, Role: "Worker Drone"},
		{MinLevel: 5, Role: "Disassembly Drone"},
	}
	cmds := NewCommands(ledger, economy.NewExchange(ledger, catalog), journal,
		nil, table, nil, rand.New(rand.NewSource(1)))

	r := NewRouter()
	cmds.Register(r)
	return r, ledger
}

func dispatch(r *Router, command, userID string, args map[string]any) Response {
	return r.Dispatch(context.Background(), Invocation{
		Command: command,
		UserID:  userID,
		GuildID: "g1",
		Args:    args,
	})
}

func TestBalanceCommand(t *testing.T) {
	r, _ := newTestRouter(t)
	resp := dispatch(r, "balance", "u1", nil)
	assert.Contains(t, resp.Content, "500 oil")
	assert.Contains(t, resp.Content, "Level 0")
}

func TestPayCommand(t *testing.T) {
	r, ledger := newTestRouter(t)

	resp := dispatch(r, "pay", "u1", map[string]any{"user": "u2", "amount": int64(200)})
	assert.Contains(t, resp.Content, "200 oil")
	assert.Equal(t, 300, ledger.GetOrCreate("u1").Balance)
	assert.Equal(t, 700, ledger.GetOrCreate("u2").Balance)

	// Overdraft is rejected, not clamped, and nothing moves.
	resp = dispatch(r, "pay", "u1", map[string]any{"user": "u2", "amount": int64(5000)})
	assert.True(t, resp.Ephemeral)
	assert.Contains(t, resp.Content, "enough oil")
	assert.Equal(t, 300, ledger.GetOrCreate("u1").Balance)
}

func TestBuyCommand_LevelUpAnnounced(t *testing.T) {
	r, ledger := newTestRouter(t)

	// 120 XP crosses the level-0 threshold of 100.
	resp := dispatch(r, "buy", "u1", map[string]any{"item": "railgun"})
	assert.Contains(t, resp.Content, "railgun")
	assert.Contains(t, resp.Content, "Level up")

	acct := ledger.GetOrCreate("u1")
	assert.Equal(t, 100, acct.Balance)
	assert.Equal(t, 1, acct.Level)
	assert.Equal(t, 20, acct.XP)
}

func TestBuyCommand_UnknownItem(t *testing.T) {
	r, _ := newTestRouter(t)
	resp := dispatch(r, "buy", "u1", map[string]any{"item": "plasma-cannon"})
	assert.True(t, resp.Ephemeral)
	assert.Contains(t, resp.Content, "catalog")
}

func TestSellCommand(t *testing.T) {
	r, ledger := newTestRouter(t)

	// Selling before owning fails.
	resp := dispatch(r, "sell", "u1", map[string]any{"item": "oil-can"})
	assert.True(t, resp.Ephemeral)

	dispatch(r, "buy", "u1", map[string]any{"item": "oil-can"})
	resp = dispatch(r, "sell", "u1", map[string]any{"item": "oil-can"})
	assert.Contains(t, resp.Content, "75 oil")
	assert.Equal(t, 500-150+75, ledger.GetOrCreate("u1").Balance)
	assert.Empty(t, ledger.GetOrCreate("u1").Inventory)
}

func TestInventoryCommand(t *testing.T) {
	r, _ := newTestRouter(t)

	resp := dispatch(r, "inventory", "u1", nil)
	assert.Contains(t, resp.Content, "empty")

	dispatch(r, "buy", "u1", map[string]any{"item": "oil-can"})
	dispatch(r, "buy", "u1", map[string]any{"item": "oil-can"})
	resp = dispatch(r, "inventory", "u1", nil)
	assert.Contains(t, resp.Content, "`oil-can` ×2")
}

func TestLeaderboardCommand(t *testing.T) {
	r, ledger := newTestRouter(t)
	ledger.AdjustBalance("rich", 1000)
	ledger.GetOrCreate("poor")

	resp := dispatch(r, "leaderboard", "u1", nil)
	richIdx := strings.Index(resp.Content, "rich")
	poorIdx := strings.Index(resp.Content, "poor")
	require.True(t, richIdx >= 0 && poorIdx >= 0, "both accounts listed")
	assert.Less(t, richIdx, poorIdx, "richest listed first")
}

func TestHistoryCommand(t *testing.T) {
	r, _ := newTestRouter(t)

	resp := dispatch(r, "history", "u1", nil)
	assert.True(t, resp.Ephemeral)
	assert.Contains(t, resp.Content, "No recorded")

	dispatch(r, "buy", "u1", map[string]any{"item": "oil-can"})
	resp = dispatch(r, "history", "u1", nil)
	assert.True(t, resp.Ephemeral)
	assert.Contains(t, resp.Content, "purchase")
	assert.Contains(t, resp.Content, "oil-can")
}

func TestBlackjackCommand_BetChecked(t *testing.T) {
	r, ledger := newTestRouter(t)

	resp := dispatch(r, "blackjack", "u1", map[string]any{"bet": int64(9999)})
	assert.True(t, resp.Ephemeral)
	assert.Contains(t, resp.Content, "enough oil")
	assert.Equal(t, 500, ledger.GetOrCreate("u1").Balance)

	resp = dispatch(r, "blackjack", "u2", map[string]any{"bet": int64(100)})
	assert.Contains(t, resp.Content, "Your hand")
	bal := ledger.GetOrCreate("u2").Balance
	assert.Contains(t, []int{400, 500, 600}, bal, "bet settles as win, push, or loss")
}

func TestFunCommands(t *testing.T) {
	r, _ := newTestRouter(t)

	resp := dispatch(r, "roll", "u1", map[string]any{"sides": int64(20), "count": int64(3)})
	assert.Contains(t, resp.Content, "=")

	resp = dispatch(r, "flip", "u1", nil)
	assert.True(t, strings.Contains(resp.Content, "heads") || strings.Contains(resp.Content, "tails"))

	resp = dispatch(r, "8ball", "u1", map[string]any{"question": "will I get paid"})
	assert.NotEmpty(t, resp.Content)
}

func TestDroneCommands_AdminGated(t *testing.T) {
	r, _ := newTestRouter(t)

	resp := dispatch(r, "drones", "u1", nil)
	assert.Contains(t, resp.Content, "administrator")

	resp = r.Dispatch(context.Background(), Invocation{
		Command: "drones", UserID: "u1", IsAdmin: true,
	})
	assert.Contains(t, resp.Content, "not configured")
}

type idleProc struct {
	done chan struct{}
	once sync.Once
}

func (p *idleProc) Wait() error { <-p.done; return nil }
func (p *idleProc) Kill() error { p.once.Do(func() { close(p.done) }); return nil }
func (p *idleProc) Pid() int    { return 4242 }

func TestDroneCommands_SpawnListStop(t *testing.T) {
	sup := children.NewSupervisor(children.Config{}, func(
		ctx context.Context, binary string, args, env []string,
	) (children.Process, error) {
		return &idleProc{done: make(chan struct{})}, nil
	})
	defer sup.StopAll()

	journal := economy.NewJournal(10)
	ledger := economy.NewLedger(0, journal)
	catalog, err := economy.NewCatalog(nil)
	require.NoError(t, err)
	cmds := NewCommands(ledger, economy.NewExchange(ledger, catalog), journal,
		nil, economy.TierTable{{MinLevel: 0, Role: "Worker Drone"}}, sup,
		rand.New(rand.NewSource(1)))
	r := NewRouter()
	cmds.Register(r)

	admin := func(command string, args map[string]any) Response {
		return r.Dispatch(context.Background(), Invocation{
			Command: command, UserID: "admin", GuildID: "g1", IsAdmin: true, Args: args,
		})
	}

	// Missing token never reaches the launcher.
	resp := admin("bot", map[string]any{"name": "V", "prompt": "be menacing"})
	assert.True(t, resp.Ephemeral)
	assert.Contains(t, resp.Content, "token")

	resp = admin("bot", map[string]any{"name": "V", "prompt": "be menacing", "token": "tok"})
	assert.True(t, resp.Ephemeral, "spawn response must stay ephemeral")
	assert.Contains(t, resp.Content, "starting")

	resp = admin("drones", nil)
	assert.Contains(t, resp.Content, "running")
	assert.Contains(t, resp.Content, "4242")

	id := sup.List()[0].ID
	resp = admin("stopdrone", map[string]any{"id": id})
	assert.Contains(t, resp.Content, "stopped")
}
