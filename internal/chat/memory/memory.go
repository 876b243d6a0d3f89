// Package memory is an in-process chat transport. It keeps every channel's
// message log in memory and reports each change to an optional observer.
package memory

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/keshon/menubot/internal/chat"
)

var (
	ErrUnknownChannel = errors.New("unknown channel")
	ErrUnknownMessage = errors.New("unknown message")
)

// EventKind names a change to the log.
type EventKind string

const (
	EventSend   EventKind = "send"
	EventEdit   EventKind = "edit"
	EventDelete EventKind = "delete"
	EventDirect EventKind = "direct"
)

type Event struct {
	Kind    EventKind
	Message *discordgo.Message
}

// Transport is safe for concurrent use.
type Transport struct {
	mu       sync.Mutex
	self     *discordgo.User
	owner    string
	nextID   int64
	channels map[string][]*discordgo.Message
	guilds   map[string]string
	perms    map[string]int64
	direct   map[string][]*discordgo.Message
	observer func(Event)

	// PageSize bounds one History fetch, like the platform's page limit.
	PageSize int
	// Fetches counts History page loads.
	Fetches int
}

var _ chat.Transport = (*Transport)(nil)

func New(self *discordgo.User, ownerID string) *Transport {
	return &Transport{
		self:     self,
		owner:    ownerID,
		channels: make(map[string][]*discordgo.Message),
		guilds:   make(map[string]string),
		perms:    make(map[string]int64),
		direct:   make(map[string][]*discordgo.Message),
		PageSize: 100,
	}
}

// Observe registers fn to receive every change.
func (t *Transport) Observe(fn func(Event)) {
	t.mu.Lock()
	t.observer = fn
	t.mu.Unlock()
}

// AddChannel creates a channel. An empty guildID makes it a direct channel.
func (t *Transport) AddChannel(channelID, guildID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.channels[channelID]; !ok {
		t.channels[channelID] = nil
	}
	t.guilds[channelID] = guildID
}

// SetPermissions sets a user's effective permission bits in guild channels.
func (t *Transport) SetPermissions(userID string, perms int64) {
	t.mu.Lock()
	t.perms[userID] = perms
	t.mu.Unlock()
}

// Post appends a message written by author, as an inbound event would.
func (t *Transport) Post(channelID string, author *discordgo.User, content string) *discordgo.Message {
	t.mu.Lock()
	defer t.mu.Unlock()
	msg := t.appendLocked(channelID, author, content, nil)
	return copyMessage(msg)
}

// Messages returns a snapshot of a channel log, oldest first.
func (t *Transport) Messages(channelID string) []*discordgo.Message {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]*discordgo.Message, 0, len(t.channels[channelID]))
	for _, m := range t.channels[channelID] {
		out = append(out, copyMessage(m))
	}
	return out
}

// Direct returns what was sent privately to a user.
func (t *Transport) Direct(userID string) []*discordgo.Message {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]*discordgo.Message, 0, len(t.direct[userID]))
	for _, m := range t.direct[userID] {
		out = append(out, copyMessage(m))
	}
	return out
}

// Last returns the newest message in a channel, or nil.
func (t *Transport) Last(channelID string) *discordgo.Message {
	t.mu.Lock()
	defer t.mu.Unlock()
	log := t.channels[channelID]
	if len(log) == 0 {
		return nil
	}
	return copyMessage(log[len(log)-1])
}

func (t *Transport) Self() *discordgo.User { return t.self }

func (t *Transport) Send(ctx context.Context, channelID, content string) (*discordgo.Message, error) {
	return t.send(ctx, channelID, content, nil)
}

func (t *Transport) SendEmbed(ctx context.Context, channelID string, embed *discordgo.MessageEmbed) (*discordgo.Message, error) {
	return t.send(ctx, channelID, "", embed)
}

func (t *Transport) send(ctx context.Context, channelID, content string, embed *discordgo.MessageEmbed) (*discordgo.Message, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	t.mu.Lock()
	if _, ok := t.channels[channelID]; !ok {
		t.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", ErrUnknownChannel, channelID)
	}
	msg := copyMessage(t.appendLocked(channelID, t.self, content, embed))
	obs := t.observer
	t.mu.Unlock()

	notify(obs, EventSend, msg)
	return msg, nil
}

func (t *Transport) SendDirect(ctx context.Context, userID, content string) (*discordgo.Message, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	t.mu.Lock()
	t.nextID++
	msg := &discordgo.Message{
		ID:        strconv.FormatInt(t.nextID, 10),
		ChannelID: "dm-" + userID,
		Content:   content,
		Author:    t.self,
		Timestamp: time.Now(),
	}
	t.direct[userID] = append(t.direct[userID], msg)
	msg = copyMessage(msg)
	obs := t.observer
	t.mu.Unlock()

	notify(obs, EventDirect, msg)
	return msg, nil
}

func (t *Transport) EditEmbed(ctx context.Context, msg *discordgo.Message, embed *discordgo.MessageEmbed) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	t.mu.Lock()
	stored, err := t.findLocked(msg)
	if err != nil {
		t.mu.Unlock()
		return err
	}
	stored.Embeds = []*discordgo.MessageEmbed{copyEmbed(embed)}
	now := time.Now()
	stored.EditedTimestamp = &now
	out := copyMessage(stored)
	obs := t.observer
	t.mu.Unlock()

	notify(obs, EventEdit, out)
	return nil
}

func (t *Transport) Delete(ctx context.Context, msg *discordgo.Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	t.mu.Lock()
	if _, err := t.findLocked(msg); err != nil {
		t.mu.Unlock()
		return err
	}
	t.channels[msg.ChannelID] = slices.DeleteFunc(t.channels[msg.ChannelID], func(m *discordgo.Message) bool {
		return m.ID == msg.ID
	})
	obs := t.observer
	t.mu.Unlock()

	notify(obs, EventDelete, msg)
	return nil
}

func (t *Transport) DeleteMany(ctx context.Context, channelID string, msgs []*discordgo.Message) error {
	var errs []error
	for _, m := range msgs {
		if m.ChannelID != channelID {
			errs = append(errs, fmt.Errorf("message %s is not in channel %s", m.ID, channelID))
			continue
		}
		if err := t.Delete(ctx, m); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (t *Transport) History(ctx context.Context, channelID, beforeID string, limit int) iter.Seq2[*discordgo.Message, error] {
	return func(yield func(*discordgo.Message, error) bool) {
		cursor := beforeID
		remaining := limit
		for remaining > 0 {
			if err := ctx.Err(); err != nil {
				yield(nil, err)
				return
			}
			page, err := t.page(channelID, cursor, min(remaining, t.PageSize))
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

// page returns up to n messages older than beforeID, newest first.
func (t *Transport) page(channelID, beforeID string, n int) ([]*discordgo.Message, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	log, ok := t.channels[channelID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownChannel, channelID)
	}
	t.Fetches++

	before := int64(-1)
	if beforeID != "" {
		before, _ = strconv.ParseInt(beforeID, 10, 64)
	}
	var out []*discordgo.Message
	for i := len(log) - 1; i >= 0 && len(out) < n; i-- {
		id, _ := strconv.ParseInt(log[i].ID, 10, 64)
		if before >= 0 && id >= before {
			continue
		}
		out = append(out, copyMessage(log[i]))
	}
	return out, nil
}

func (t *Transport) Permissions(ctx context.Context, msg *discordgo.Message) (int64, error) {
	if msg == nil || msg.Author == nil {
		return 0, nil
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.guilds[msg.ChannelID] == "" {
		return 0, nil
	}
	return t.perms[msg.Author.ID], nil
}

func (t *Transport) OwnerID(ctx context.Context) (string, error) {
	return t.owner, nil
}

func (t *Transport) appendLocked(channelID string, author *discordgo.User, content string, embed *discordgo.MessageEmbed) *discordgo.Message {
	t.nextID++
	msg := &discordgo.Message{
		ID:        strconv.FormatInt(t.nextID, 10),
		ChannelID: channelID,
		GuildID:   t.guilds[channelID],
		Content:   content,
		Author:    author,
		Timestamp: time.Now(),
	}
	if embed != nil {
		msg.Embeds = []*discordgo.MessageEmbed{copyEmbed(embed)}
	}
	t.channels[channelID] = append(t.channels[channelID], msg)
	return msg
}

func (t *Transport) findLocked(msg *discordgo.Message) (*discordgo.Message, error) {
	if msg == nil {
		return nil, ErrUnknownMessage
	}
	for _, m := range t.channels[msg.ChannelID] {
		if m.ID == msg.ID {
			return m, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownMessage, msg.ID)
}

func notify(obs func(Event), kind EventKind, msg *discordgo.Message) {
	if obs != nil {
		obs(Event{Kind: kind, Message: msg})
	}
}

func copyMessage(m *discordgo.Message) *discordgo.Message {
	c := *m
	c.Embeds = make([]*discordgo.MessageEmbed, len(m.Embeds))
	for i, e := range m.Embeds {
		c.Embeds[i] = copyEmbed(e)
	}
	return &c
}

func copyEmbed(e *discordgo.MessageEmbed) *discordgo.MessageEmbed {
	c := *e
	if e.Footer != nil {
		f := *e.Footer
		c.Footer = &f
	}
	c.Fields = make([]*discordgo.MessageEmbedField, len(e.Fields))
	for i, f := range e.Fields {
		ff := *f
		c.Fields[i] = &ff
	}
	return &c
}
