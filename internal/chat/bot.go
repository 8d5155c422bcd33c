package chat

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/Uzidoorman9/Absolute-Solver/internal/logging"
)

// Bot is a drone's Discord message loop: every message from another user
// gets a persona-conditioned reply.
type Bot struct {
	session      *discordgo.Session
	replier      Replier
	replyTimeout time.Duration
}

// NewBot creates a drone bot over a Discord token and a replier.
func NewBot(token string, replier Replier) (*Bot, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("create discord session: %w", err)
	}
	session.Identify.Intents = discordgo.IntentsGuildMessages | discordgo.IntentsMessageContent

	b := &Bot{
		session:      session,
		replier:      replier,
		replyTimeout: 60 * time.Second,
	}
	session.AddHandler(b.onMessage)
	return b, nil
}

// Run opens the session and blocks until ctx is cancelled.
func (b *Bot) Run(ctx context.Context) error {
	if err := b.session.Open(); err != nil {
		return fmt.Errorf("open discord session: %w", err)
	}
	logging.Drones("drone logged in as %s", b.session.State.User.Username)

	<-ctx.Done()
	return b.session.Close()
}

func (b *Bot) onMessage(s *discordgo.Session, m *discordgo.MessageCreate) {
	// Never reply to ourselves or other bots; two drones in one channel
	// would otherwise talk forever.
	if m.Author == nil || m.Author.ID == s.State.User.ID || m.Author.Bot {
		return
	}
	if m.Content == "" {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), b.replyTimeout)
	defer cancel()

	reply, err := b.replier.Reply(ctx, m.Content)
	if err != nil {
		logging.Get(logging.CategoryAPI).Warn("reply failed: %v", err)
		return
	}
	if _, err := s.ChannelMessageSend(m.ChannelID, reply); err != nil {
		logging.Get(logging.CategoryAPI).Warn("send failed: %v", err)
	}
}
