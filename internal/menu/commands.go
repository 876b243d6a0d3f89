package menu

import (
	"context"
	"errors"
	"fmt"

	"github.com/keshon/menubot/internal/chat"
	"github.com/keshon/menubot/pkg/cmd"
	"github.com/keshon/menubot/pkg/logger"
)

type selectArgs struct {
	Choice int `arg:"choice" help:"index of the option to pick, counting from 0"`
}

// Install registers next, back, select and dismiss, plus one command per
// registered menu that opens it.
func (m *Machine) Install(r *cmd.Registry) error {
	builtins := []struct {
		name    string
		handler any
		help    string
	}{
		{"next", m.next, "Go to the next page of the nearest menu."},
		{"back", m.back, "Go to the previous page of the nearest menu."},
		{"select", m.pick, "Select an option of the nearest menu."},
		{"dismiss", m.dismiss, "Dismiss the nearest menu."},
	}
	for _, b := range builtins {
		if _, err := r.Register(b.handler, cmd.Name(b.name), cmd.Help(b.help)); err != nil {
			return fmt.Errorf("failed to register %s: %w", b.name, err)
		}
	}

	for _, menu := range m.menus.All() {
		name := menu.Name
		activate := func(ctx context.Context, inv *cmd.Invocation) error {
			return m.Activate(ctx, inv, name)
		}
		if _, err := r.Register(activate, cmd.Name(name), cmd.Help(menu.Help)); err != nil {
			return fmt.Errorf("failed to register menu %s: %w", name, err)
		}
	}
	return nil
}

func (m *Machine) next(ctx context.Context, inv *cmd.Invocation) error {
	return m.settle(ctx, inv, m.Turn(ctx, inv, 1))
}

func (m *Machine) back(ctx context.Context, inv *cmd.Invocation) error {
	return m.settle(ctx, inv, m.Turn(ctx, inv, -1))
}

func (m *Machine) pick(ctx context.Context, inv *cmd.Invocation, args selectArgs) error {
	return m.settle(ctx, inv, m.Select(ctx, inv, args.Choice))
}

func (m *Machine) dismiss(ctx context.Context, inv *cmd.Invocation) error {
	return m.settle(ctx, inv, m.Dismiss(ctx, inv))
}

// settle turns navigation failures the user can act on into a channel notice
// and leaves every message as it was. A missing menu is ignored. Other errors
// go back to the dispatcher.
func (m *Machine) settle(ctx context.Context, inv *cmd.Invocation, err error) error {
	var notice string
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrMenuNotFound):
		m.log.Debug("no menu near trigger", logger.String("channel", inv.ChannelID()))
		return nil
	case errors.Is(err, ErrCorruptMenu):
		notice = "the nearest menu is corrupt and can't be used."
	case errors.Is(err, ErrPageOutOfRange):
		notice = "there is no such page in that menu."
	case errors.Is(err, ErrChoiceOutOfRange):
		notice = "that is not one of the menu's options."
	default:
		return err
	}

	m.log.Info("menu navigation rejected", logger.Err(err))
	if _, sendErr := m.transport.Send(ctx, inv.ChannelID(), chat.Mention(inv.Message)+" "+notice); sendErr != nil {
		return fmt.Errorf("failed to send notice: %w", sendErr)
	}
	return nil
}
