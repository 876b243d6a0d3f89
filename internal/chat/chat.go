// Package chat defines the boundary between the command core and the chat
// platform: message delivery, history and identity lookups.
package chat

import (
	"context"
	"iter"
	"strings"

	"github.com/bwmarrin/discordgo"
)

// Transport is the set of platform operations the core relies on.
type Transport interface {
	// Self is the bot's own user.
	Self() *discordgo.User

	Send(ctx context.Context, channelID, content string) (*discordgo.Message, error)
	SendEmbed(ctx context.Context, channelID string, embed *discordgo.MessageEmbed) (*discordgo.Message, error)
	// SendDirect delivers content to the user's private channel.
	SendDirect(ctx context.Context, userID, content string) (*discordgo.Message, error)
	EditEmbed(ctx context.Context, msg *discordgo.Message, embed *discordgo.MessageEmbed) error
	Delete(ctx context.Context, msg *discordgo.Message) error
	DeleteMany(ctx context.Context, channelID string, msgs []*discordgo.Message) error

	// History yields at most limit messages older than beforeID, most recent
	// first. Pages are fetched as the sequence is consumed.
	History(ctx context.Context, channelID, beforeID string, limit int) iter.Seq2[*discordgo.Message, error]

	// Permissions returns the author's effective permission bits in the
	// message's channel. Direct messages carry none.
	Permissions(ctx context.Context, msg *discordgo.Message) (int64, error)
	// OwnerID is the user id of the application owner.
	OwnerID(ctx context.Context) (string, error)
}

// DisplayName is the name shown for the author of msg.
func DisplayName(msg *discordgo.Message) string {
	if msg == nil || msg.Author == nil {
		return ""
	}
	if msg.Member != nil && msg.Member.Nick != "" {
		return msg.Member.Nick
	}
	if msg.Author.GlobalName != "" {
		return msg.Author.GlobalName
	}
	return msg.Author.Username
}

// Mention is the author's mention markup.
func Mention(msg *discordgo.Message) string {
	if msg == nil || msg.Author == nil {
		return ""
	}
	return msg.Author.Mention()
}

// CodeBlock fences text for monospaced display.
func CodeBlock(text string) string {
	return "```\n" + strings.TrimRight(text, "\n") + "\n```"
}
