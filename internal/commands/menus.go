package commands

import (
	"context"
	"fmt"

	"github.com/keshon/menubot/internal/chat"
	"github.com/keshon/menubot/internal/menu"
	"github.com/keshon/menubot/pkg/cmd"
)

// RegisterMenus adds the demo menus: fruits to pick from and rules to read.
func RegisterMenus(menus *menu.Registry, t chat.Transport) error {
	fruits := menu.Menu{
		Name:       "fruits",
		Help:       "Pick a fruit.",
		Selectable: true,
		Options:    []string{"apple", "banana", "cherry", "date", "elderberry", "fig", "grape"},
		OnSelect: func(ctx context.Context, inv *cmd.Invocation, option string) error {
			_, err := t.Send(ctx, inv.ChannelID(), fmt.Sprintf("%s picked %s.", chat.Mention(inv.Message), option))
			return err
		},
	}
	rules := menu.Menu{
		Name: "rules",
		Help: "Read the channel rules.",
		Options: []string{
			"Be kind.",
			"Stay on topic.",
			"No spam.",
			"No unsolicited direct messages.",
			"Use spoiler tags.",
			"Keep it legal.",
			"Moderators have the final word.",
		},
	}
	for _, m := range []menu.Menu{fruits, rules} {
		if err := menus.Register(m); err != nil {
			return err
		}
	}
	return nil
}
