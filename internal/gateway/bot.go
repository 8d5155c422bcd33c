package gateway

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/Uzidoorman9/Absolute-Solver/internal/economy"
	"github.com/Uzidoorman9/Absolute-Solver/internal/logging"
	"github.com/Uzidoorman9/Absolute-Solver/internal/roles"
)

// commandTimeout bounds one slash command end to end, role sync included.
const commandTimeout = 15 * time.Second

// Bot connects the router to a Discord gateway session and runs the
// passive message-XP loop.
type Bot struct {
	session *discordgo.Session
	router  *Router
	guildID string

	ledger    *economy.Ledger
	sync      *roles.Synchronizer
	messageXP int
	msgCool   *Cooldown
}

// BotConfig carries the gateway settings.
type BotConfig struct {
	Token   string
	GuildID string

	// MessageXP is granted per counted message; zero disables passive XP.
	MessageXP int

	// MessageCooldown spaces out XP grants per user.
	MessageCooldown time.Duration
}

// NewBot opens nothing yet; Run connects. The role synchronizer is
// attached afterwards via SetSynchronizer because its directory needs
// the session this constructor creates.
func NewBot(cfg BotConfig, router *Router, ledger *economy.Ledger) (*Bot, error) {
	if cfg.Token == "" {
		return nil, fmt.Errorf("discord token is required")
	}
	session, err := discordgo.New("Bot " + cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	session.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsMessageContent

	b := &Bot{
		session:   session,
		router:    router,
		guildID:   cfg.GuildID,
		ledger:    ledger,
		messageXP: cfg.MessageXP,
		msgCool:   NewCooldown(cfg.MessageCooldown),
	}
	session.AddHandler(b.onInteraction)
	session.AddHandler(b.onMessage)
	return b, nil
}

// Session exposes the underlying connection for the role directory.
func (b *Bot) Session() *discordgo.Session {
	return b.session
}

// SetSynchronizer attaches the role synchronizer used by the passive XP
// path. Must be called before Run; nil disables level-role sync.
func (b *Bot) SetSynchronizer(sync *roles.Synchronizer) {
	b.sync = sync
}

// Run opens the gateway, registers the slash commands, and blocks until
// ctx is cancelled.
func (b *Bot) Run(ctx context.Context) error {
	if err := b.session.Open(); err != nil {
		return fmt.Errorf("open gateway: %w", err)
	}
	defer b.session.Close()

	if err := b.registerCommands(); err != nil {
		return err
	}
	logging.Boot("gateway connected as %s", b.session.State.User.Username)

	<-ctx.Done()
	return nil
}

// registerCommands overwrites the application command set. A guild ID
// scopes registration to one guild, which Discord propagates instantly;
// empty registers globally.
func (b *Bot) registerCommands() error {
	appID := b.session.State.User.ID
	_, err := b.session.ApplicationCommandBulkOverwrite(appID, b.guildID, commandDefinitions())
	if err != nil {
		return fmt.Errorf("register commands: %w", err)
	}
	return nil
}

func (b *Bot) onInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	inv := b.invocation(i)
	resp := b.router.Dispatch(ctx, inv)

	data := &discordgo.InteractionResponseData{Content: resp.Content}
	if resp.Ephemeral {
		data.Flags = discordgo.MessageFlagsEphemeral
	}
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: data,
	})
	if err != nil {
		logging.Get(logging.CategoryAPI).Error("interaction respond /%s: %v", inv.Command, err)
	}
}

// invocation translates a Discord interaction into the neutral form the
// handlers consume.
func (b *Bot) invocation(i *discordgo.InteractionCreate) Invocation {
	data := i.ApplicationCommandData()
	inv := Invocation{
		Command: data.Name,
		GuildID: i.GuildID,
		Args:    make(map[string]any, len(data.Options)),
	}
	if i.Member != nil && i.Member.User != nil {
		inv.UserID = i.Member.User.ID
		inv.IsAdmin = i.Member.Permissions&discordgo.PermissionAdministrator != 0
	} else if i.User != nil {
		inv.UserID = i.User.ID
	}
	for _, opt := range data.Options {
		switch opt.Type {
		case discordgo.ApplicationCommandOptionString:
			inv.Args[opt.Name] = opt.StringValue()
		case discordgo.ApplicationCommandOptionInteger:
			inv.Args[opt.Name] = opt.IntValue()
		case discordgo.ApplicationCommandOptionUser:
			inv.Args[opt.Name] = opt.UserValue(nil).ID
		}
	}
	return inv
}

// onMessage grants passive XP for guild chatter, rate-limited per user.
func (b *Bot) onMessage(s *discordgo.Session, m *discordgo.MessageCreate) {
	if b.messageXP <= 0 || m.GuildID == "" {
		return
	}
	if m.Author == nil || m.Author.Bot || m.Author.ID == s.State.User.ID {
		return
	}
	if ok, _ := b.msgCool.Try(m.Author.ID); !ok {
		return
	}

	leveledUp, err := b.ledger.GrantXP(m.Author.ID, b.messageXP)
	if err != nil {
		logging.Economy("message xp for %s: %v", m.Author.ID, err)
		return
	}
	if !leveledUp || b.sync == nil {
		return
	}

	level := b.ledger.GetOrCreate(m.Author.ID).Level
	logging.Economy("%s reached level %d", m.Author.ID, level)

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()
	if err := b.sync.SyncLevelRoles(ctx, m.GuildID, m.Author.ID, level); err != nil {
		logging.RolesWarn("level role sync for %s: %v", m.Author.ID, err)
	}
}

// commandDefinitions is the full slash command surface as Discord sees it.
func commandDefinitions() []*discordgo.ApplicationCommand {
	return []*discordgo.ApplicationCommand{
		{Name: "balance", Description: "Show your oil balance and level"},
		{Name: "rank", Description: "Show your level, tier, and XP progress"},
		{
			Name:        "pay",
			Description: "Send oil to another member",
			Options: []*discordgo.ApplicationCommandOption{
				{Type: discordgo.ApplicationCommandOptionUser, Name: "user", Description: "Recipient", Required: true},
				{Type: discordgo.ApplicationCommandOptionInteger, Name: "amount", Description: "Oil to send", Required: true},
			},
		},
		{Name: "shop", Description: "Browse the company store"},
		{
			Name:        "buy",
			Description: "Buy an item from the store",
			Options: []*discordgo.ApplicationCommandOption{
				{Type: discordgo.ApplicationCommandOptionString, Name: "item", Description: "Item key", Required: true},
			},
		},
		{
			Name:        "sell",
			Description: "Sell an item back for half price",
			Options: []*discordgo.ApplicationCommandOption{
				{Type: discordgo.ApplicationCommandOptionString, Name: "item", Description: "Item key", Required: true},
			},
		},
		{Name: "inventory", Description: "List the items you own"},
		{Name: "leaderboard", Description: "Show the richest members"},
		{Name: "history", Description: "Show your recent transactions"},
		{
			Name:        "roll",
			Description: "Roll dice",
			Options: []*discordgo.ApplicationCommandOption{
				{Type: discordgo.ApplicationCommandOptionInteger, Name: "sides", Description: "Sides per die (default 6)"},
				{Type: discordgo.ApplicationCommandOptionInteger, Name: "count", Description: "Number of dice (default 1)"},
			},
		},
		{Name: "flip", Description: "Flip a coin"},
		{
			Name:        "8ball",
			Description: "Consult the magic eight ball",
			Options: []*discordgo.ApplicationCommandOption{
				{Type: discordgo.ApplicationCommandOptionString, Name: "question", Description: "Your question"},
			},
		},
		{
			Name:        "blackjack",
			Description: "Play a round of blackjack",
			Options: []*discordgo.ApplicationCommandOption{
				{Type: discordgo.ApplicationCommandOptionInteger, Name: "bet", Description: "Oil to wager"},
			},
		},
		{
			Name:        "bot",
			Description: "Spawn a drone chatbot (admin)",
			Options: []*discordgo.ApplicationCommandOption{
				{Type: discordgo.ApplicationCommandOptionString, Name: "token", Description: "Bot token for the drone", Required: true},
				{Type: discordgo.ApplicationCommandOptionString, Name: "prompt", Description: "Persona prompt", Required: true},
				{Type: discordgo.ApplicationCommandOptionString, Name: "name", Description: "Drone name"},
			},
		},
		{Name: "drones", Description: "List tracked drones (admin)"},
		{
			Name:        "stopdrone",
			Description: "Stop a drone by ID (admin)",
			Options: []*discordgo.ApplicationCommandOption{
				{Type: discordgo.ApplicationCommandOptionString, Name: "id", Description: "Drone ID", Required: true},
			},
		},
	}
}
