// Package discord connects the dispatcher to the Discord gateway.
package discord

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/keshon/menubot/pkg/logger"
)

// MessageHandler receives every inbound message.
type MessageHandler interface {
	OnMessage(ctx context.Context, msg *discordgo.Message) error
}

// Bot is a Discord bot
type Bot struct {
	dg      *discordgo.Session
	handler MessageHandler
	log     logger.Logger
	ctx     context.Context
}

// NewSession creates an unopened session for token.
func NewSession(token string) (*discordgo.Session, error) {
	dg, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	dg.Identify.Intents = discordgo.IntentsGuildMessages |
		discordgo.IntentsDirectMessages |
		discordgo.IntentsMessageContent
	return dg, nil
}

func NewBot(dg *discordgo.Session, handler MessageHandler, log logger.Logger) *Bot {
	return &Bot{
		dg:      dg,
		handler: handler,
		log:     logger.OrNoop(log).With(logger.String("component", "discord")),
	}
}

// Run opens the gateway and blocks until ctx is done.
func (b *Bot) Run(ctx context.Context) error {
	b.ctx = ctx
	b.dg.AddHandler(b.onReady)
	b.dg.AddHandler(b.onMessageCreate)

	if err := b.dg.Open(); err != nil {
		return fmt.Errorf("failed to open Discord session: %w", err)
	}
	defer b.dg.Close()

	<-ctx.Done()
	b.log.Info("shutdown signal received, cleaning up")
	return nil
}

// onReady is called when the bot is ready
func (b *Bot) onReady(s *discordgo.Session, r *discordgo.Ready) {
	b.log.Info("discord bot is running",
		logger.String("user", r.User.Username),
		logger.Int("guilds", len(r.Guilds)),
	)
}

// onMessageCreate is called when a message is created. discordgo runs each
// handler call on its own goroutine.
func (b *Bot) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Message == nil {
		return
	}
	if err := b.handler.OnMessage(b.ctx, m.Message); err != nil {
		b.log.Debug("message handling ended with error",
			logger.String("message", m.ID),
			logger.Err(err),
		)
	}
}
