package middleware

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/keshon/menubot/internal/chat"
	"github.com/keshon/menubot/internal/storage"
	"github.com/keshon/menubot/pkg/cmd"
	"github.com/keshon/menubot/pkg/logger"
)

// HistoryStore is where WithCommandLogger records invocations.
type HistoryStore interface {
	AppendCommandToHistory(guildID string, record storage.CommandHistoryRecord) error
}

// WithCommandLogger records every invocation, failed or not, in store.
func WithCommandLogger(store HistoryStore, log logger.Logger) cmd.Middleware {
	log = logger.OrNoop(log)
	return func(c cmd.Command) cmd.Command {
		return cmd.Wrap(c, func(ctx context.Context, inv *cmd.Invocation) error {
			err := c.Run(ctx, inv)

			author := inv.Author()
			if author == nil {
				return err
			}
			record := storage.CommandHistoryRecord{
				ChannelID: inv.ChannelID(),
				UserID:    author.ID,
				Username:  chat.DisplayName(inv.Message),
				Command:   c.Name(),
				Param:     describeArgs(c.Schema(), inv.Args),
				Datetime:  time.Now(),
			}
			if e := store.AppendCommandToHistory(inv.GuildID(), record); e != nil {
				log.Warn("failed to log command", logger.String("command", c.Name()), logger.Err(e))
			}
			return err
		})
	}
}

// describeArgs lists the arguments that differ from their defaults.
func describeArgs(s *cmd.Schema, args cmd.Arguments) string {
	var parts []string
	for _, p := range s.Params {
		v, ok := args[p.Name]
		if !ok || v == p.Default {
			continue
		}
		switch p.Kind {
		case cmd.KindFlag, cmd.KindConstant:
			parts = append(parts, "--"+p.Name)
		default:
			parts = append(parts, fmt.Sprintf("%s:%v", p.Name, v))
		}
	}
	return strings.Join(parts, " ")
}
