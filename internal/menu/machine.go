package menu

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/keshon/menubot/internal/chat"
	"github.com/keshon/menubot/pkg/cmd"
	"github.com/keshon/menubot/pkg/logger"
)

const (
	DefaultPageSize   = 5
	DefaultScanWindow = 50

	embedColor = 0xb01e66
)

type Options struct {
	Menus     *Registry
	Transport chat.Transport
	// PageSize is the number of options per page, shared by every menu.
	PageSize int
	// ScanWindow bounds how many older messages Locate inspects.
	ScanWindow int
	Logger     logger.Logger
}

// Machine renders menus and moves them between states.
type Machine struct {
	menus     *Registry
	transport chat.Transport
	pageSize  int
	window    int
	log       logger.Logger
}

func NewMachine(opts Options) *Machine {
	if opts.Menus == nil {
		opts.Menus = NewRegistry()
	}
	if opts.PageSize <= 0 {
		opts.PageSize = DefaultPageSize
	}
	if opts.ScanWindow <= 0 {
		opts.ScanWindow = DefaultScanWindow
	}
	return &Machine{
		menus:     opts.Menus,
		transport: opts.Transport,
		pageSize:  opts.PageSize,
		window:    opts.ScanWindow,
		log:       logger.OrNoop(opts.Logger).With(logger.String("component", "menu")),
	}
}

// Menus returns the machine's registry.
func (m *Machine) Menus() *Registry { return m.menus }

// Located is a menu message found in history with its decoded state.
type Located struct {
	Message *discordgo.Message
	State   State
}

// titlePrefix marks the bot's own menus. ok is false while the transport
// does not know its user yet.
func (m *Machine) titlePrefix() (prefix string, ok bool) {
	self := m.transport.Self()
	if self == nil {
		return "", false
	}
	return self.Username + " menu:", true
}

// Render builds the embed for st. Page 1 always renders; any other page must
// start on an existing option.
func (m *Machine) Render(st State) (*discordgo.MessageEmbed, error) {
	if err := st.Validate(); err != nil {
		return nil, err
	}
	menu, ok := m.menus.Get(st.Menu)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownMenu, st.Menu)
	}

	start := (st.Page - 1) * m.pageSize
	if st.Page > 1 && start >= len(menu.Options) {
		return nil, fmt.Errorf("%w: %s has no page %d", ErrPageOutOfRange, st.Menu, st.Page)
	}
	end := min(start+m.pageSize, len(menu.Options))

	prefix, ok := m.titlePrefix()
	if !ok {
		return nil, ErrNoIdentity
	}
	embed := &discordgo.MessageEmbed{
		Title:  fmt.Sprintf("%s %s", prefix, st.Menu),
		Color:  embedColor,
		Footer: &discordgo.MessageEmbedFooter{Text: st.Encode()},
	}
	if st.Selection {
		for i := start; i < end; i++ {
			embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
				Name:  strconv.Itoa(i + 1),
				Value: menu.Options[i],
			})
		}
	} else {
		var sb strings.Builder
		for _, opt := range menu.Options[start:end] {
			sb.WriteString(opt)
			sb.WriteByte('\n')
		}
		embed.Description = sb.String()
	}
	return embed, nil
}

// Locate scans history before trigger for the nearest menu message sent by
// the bot. It returns ErrMenuNotFound when the window holds none or the bot
// does not know its own user yet, and ErrCorruptMenu when the nearest one
// cannot be decoded.
func (m *Machine) Locate(ctx context.Context, trigger *discordgo.Message) (*Located, error) {
	self := m.transport.Self()
	prefix, ok := m.titlePrefix()
	if !ok {
		return nil, ErrMenuNotFound
	}

	for msg, err := range m.transport.History(ctx, trigger.ChannelID, trigger.ID, m.window) {
		if err != nil {
			return nil, fmt.Errorf("failed to read history: %w", err)
		}
		if msg.Author == nil || msg.Author.ID != self.ID || len(msg.Embeds) != 1 {
			continue
		}
		embed := msg.Embeds[0]
		if !strings.HasPrefix(embed.Title, prefix) {
			continue
		}

		var footer string
		if embed.Footer != nil {
			footer = embed.Footer.Text
		}
		st, err := Decode(footer)
		if err != nil {
			return nil, fmt.Errorf("message %s: %w", msg.ID, err)
		}
		if _, ok := m.menus.Get(st.Menu); !ok {
			return nil, fmt.Errorf("message %s: %w: unknown menu %q", msg.ID, ErrCorruptMenu, st.Menu)
		}
		return &Located{Message: msg, State: st}, nil
	}
	return nil, ErrMenuNotFound
}

// Activate sends page 1 of a menu as a new message and removes the trigger.
func (m *Machine) Activate(ctx context.Context, inv *cmd.Invocation, name string) error {
	menu, ok := m.menus.Get(name)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownMenu, name)
	}
	embed, err := m.Render(State{Page: 1, Menu: menu.Name, Selection: menu.Selectable})
	if err != nil {
		return err
	}
	if _, err := m.transport.SendEmbed(ctx, inv.ChannelID(), embed); err != nil {
		return fmt.Errorf("failed to send menu: %w", err)
	}
	if err := m.transport.Delete(ctx, inv.Message); err != nil {
		return fmt.Errorf("failed to delete trigger: %w", err)
	}
	return nil
}

// Turn moves the nearest menu by delta pages, editing it in place.
func (m *Machine) Turn(ctx context.Context, inv *cmd.Invocation, delta int) error {
	loc, err := m.Locate(ctx, inv.Message)
	if err != nil {
		return err
	}
	next := loc.State
	next.Page += delta

	embed, err := m.Render(next)
	if err != nil {
		return err
	}
	if err := m.transport.EditEmbed(ctx, loc.Message, embed); err != nil {
		return fmt.Errorf("failed to edit menu: %w", err)
	}
	if err := m.transport.Delete(ctx, inv.Message); err != nil {
		return fmt.Errorf("failed to delete trigger: %w", err)
	}
	m.log.Debug("menu turned",
		logger.String("menu", next.Menu),
		logger.Int("page", next.Page),
	)
	return nil
}

// Select passes option choice (an index into the whole option list) to the
// menu's handler, then removes the trigger and the menu.
func (m *Machine) Select(ctx context.Context, inv *cmd.Invocation, choice int) error {
	loc, err := m.Locate(ctx, inv.Message)
	if err != nil {
		return err
	}
	if !loc.State.Selection {
		return ErrSelectionDisabled
	}
	menu, ok := m.menus.Get(loc.State.Menu)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownMenu, loc.State.Menu)
	}
	if menu.OnSelect == nil {
		return ErrSelectionDisabled
	}
	if choice < 0 || choice >= len(menu.Options) {
		return fmt.Errorf("%w: %d is not an option of %s", ErrChoiceOutOfRange, choice, menu.Name)
	}

	if err := menu.OnSelect(ctx, inv, menu.Options[choice]); err != nil {
		return err
	}
	if err := m.transport.DeleteMany(ctx, inv.ChannelID(), []*discordgo.Message{inv.Message, loc.Message}); err != nil {
		return fmt.Errorf("failed to delete menu: %w", err)
	}
	return nil
}

// Dismiss removes the nearest menu and the trigger.
func (m *Machine) Dismiss(ctx context.Context, inv *cmd.Invocation) error {
	loc, err := m.Locate(ctx, inv.Message)
	if err != nil {
		return err
	}
	if err := m.transport.DeleteMany(ctx, inv.ChannelID(), []*discordgo.Message{loc.Message, inv.Message}); err != nil {
		return fmt.Errorf("failed to delete menu: %w", err)
	}
	return nil
}
