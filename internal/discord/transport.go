package discord

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"sync"

	"github.com/bwmarrin/discordgo"

	"github.com/keshon/menubot/internal/chat"
	"github.com/keshon/menubot/pkg/util"
)

// maxPage is the most messages the API returns per history request.
const maxPage = 100

// deleteWorkers bounds concurrent single deletes.
const deleteWorkers = 4

// Transport implements chat.Transport over a discordgo session.
type Transport struct {
	s *discordgo.Session

	mu    sync.Mutex
	owner string
}

var _ chat.Transport = (*Transport)(nil)

// NewTransport wraps s. A non-empty ownerID overrides the application owner.
func NewTransport(s *discordgo.Session, ownerID string) *Transport {
	return &Transport{s: s, owner: ownerID}
}

func (t *Transport) Self() *discordgo.User {
	if t.s.State == nil {
		return nil
	}
	return t.s.State.User
}

func (t *Transport) Send(ctx context.Context, channelID, content string) (*discordgo.Message, error) {
	return t.s.ChannelMessageSend(channelID, content, discordgo.WithContext(ctx))
}

func (t *Transport) SendEmbed(ctx context.Context, channelID string, embed *discordgo.MessageEmbed) (*discordgo.Message, error) {
	return t.s.ChannelMessageSendEmbed(channelID, embed, discordgo.WithContext(ctx))
}

func (t *Transport) SendDirect(ctx context.Context, userID, content string) (*discordgo.Message, error) {
	ch, err := t.s.UserChannelCreate(userID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("failed to open direct channel: %w", err)
	}
	return t.s.ChannelMessageSend(ch.ID, content, discordgo.WithContext(ctx))
}

func (t *Transport) EditEmbed(ctx context.Context, msg *discordgo.Message, embed *discordgo.MessageEmbed) error {
	_, err := t.s.ChannelMessageEditEmbed(msg.ChannelID, msg.ID, embed, discordgo.WithContext(ctx))
	return err
}

func (t *Transport) Delete(ctx context.Context, msg *discordgo.Message) error {
	return t.s.ChannelMessageDelete(msg.ChannelID, msg.ID, discordgo.WithContext(ctx))
}

// DeleteMany uses a bulk delete and falls back to single deletes where the
// API refuses one (direct channels, messages older than two weeks).
func (t *Transport) DeleteMany(ctx context.Context, channelID string, msgs []*discordgo.Message) error {
	if len(msgs) == 0 {
		return nil
	}
	if len(msgs) > 1 && len(msgs) <= maxPage {
		ids := make([]string, len(msgs))
		for i, m := range msgs {
			ids[i] = m.ID
		}
		if err := t.s.ChannelMessagesBulkDelete(channelID, ids, discordgo.WithContext(ctx)); err == nil {
			return nil
		}
	}
	return util.Parallel(ctx, msgs, deleteWorkers, t.Delete)
}

func (t *Transport) History(ctx context.Context, channelID, beforeID string, limit int) iter.Seq2[*discordgo.Message, error] {
	return func(yield func(*discordgo.Message, error) bool) {
		cursor := beforeID
		for remaining := limit; remaining > 0; {
			page, err := t.s.ChannelMessages(channelID, min(remaining, maxPage), cursor, "", "", discordgo.WithContext(ctx))
			if err != nil {
				yield(nil, err)
				return
			}
			if len(page) == 0 {
				return
			}
			for _, m := range page {
				if !yield(m, nil) {
					return
				}
			}
			remaining -= len(page)
			cursor = page[len(page)-1].ID
		}
	}
}

func (t *Transport) Permissions(ctx context.Context, msg *discordgo.Message) (int64, error) {
	if msg == nil || msg.Author == nil || msg.GuildID == "" {
		return 0, nil
	}
	return t.s.UserChannelPermissions(msg.Author.ID, msg.ChannelID, discordgo.WithContext(ctx))
}

// OwnerID is fetched once from the application info and then cached.
func (t *Transport) OwnerID(ctx context.Context) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.owner != "" {
		return t.owner, nil
	}
	app, err := t.s.Application("@me")
	if err != nil {
		return "", err
	}
	if app.Owner == nil {
		return "", errors.New("application has no owner")
	}
	t.owner = app.Owner.ID
	return t.owner, nil
}
