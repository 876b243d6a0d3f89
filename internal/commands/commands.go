// Package commands holds the stock commands the binaries ship with.
package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/keshon/menubot/internal/chat"
	"github.com/keshon/menubot/internal/storage"
	"github.com/keshon/menubot/pkg/cmd"
	"github.com/keshon/menubot/pkg/util"
)

const (
	discordMaxMessageLength = 2000
	codeLeftBlockWrapper    = "```md"
	codeRightBlockWrapper   = "```"
	defaultLogCount         = 10
)

var maxContentLength = discordMaxMessageLength - len(codeLeftBlockWrapper) - len(codeRightBlockWrapper) - 2

// HistoryReader is the read side of command history.
type HistoryReader interface {
	FetchCommandHistory(guildID string) ([]storage.CommandHistoryRecord, error)
}

type Deps struct {
	Registry  *cmd.Registry
	Transport chat.Transport
	// History may be nil, in which case log is not registered.
	History HistoryReader
	// Title is the program name shown in help.
	Title string
}

type stock struct {
	Deps
}

// Register adds help, greet and, with history available, log.
func Register(d Deps) error {
	s := &stock{d}
	if _, err := d.Registry.Register(s.help, cmd.Help("Show commands, or the usage of one command.")); err != nil {
		return err
	}
	if _, err := d.Registry.Register(s.greet, cmd.Help("Say hello to someone.")); err != nil {
		return err
	}
	if d.History != nil {
		if _, err := d.Registry.Register(s.log, cmd.Help("Review recent commands."), cmd.WithAdmin("")); err != nil {
			return err
		}
	}
	return nil
}

type helpArgs struct {
	Command string `arg:"command,optional" help:"command to describe"`
}

func (s *stock) help(ctx context.Context, inv *cmd.Invocation, args helpArgs) error {
	var text string
	if args.Command == "" {
		text = cmd.Overview(s.Title, s.Registry.All())
	} else if c, ok := s.Registry.Get(args.Command); ok {
		text = cmd.Usage(s.Title, c)
	} else {
		_, err := s.Transport.Send(ctx, inv.ChannelID(), fmt.Sprintf("No command named `%s`.", args.Command))
		return err
	}
	_, err := s.Transport.Send(ctx, inv.ChannelID(), chat.CodeBlock(text))
	return err
}

type greetArgs struct {
	Name string `arg:"name" help:"who to greet"`
	Loud bool   `arg:"loud" help:"shout it"`
}

func (s *stock) greet(ctx context.Context, inv *cmd.Invocation, args greetArgs) error {
	text := fmt.Sprintf("Hello, %s!", args.Name)
	if args.Loud {
		text = strings.ToUpper(text)
	}
	_, err := s.Transport.Send(ctx, inv.ChannelID(), text)
	return err
}

type logArgs struct {
	Count int `arg:"count,optional" default:"10" help:"how many entries to show"`
}

func (s *stock) log(ctx context.Context, inv *cmd.Invocation, args logArgs) error {
	records, err := s.History.FetchCommandHistory(inv.GuildID())
	if err != nil {
		return fmt.Errorf("failed to fetch command logs: %w", err)
	}
	if len(records) == 0 {
		_, err := s.Transport.Send(ctx, inv.ChannelID(), "No command logs found.")
		return err
	}
	count := args.Count
	if count <= 0 {
		count = defaultLogCount
	}

	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("%-19s\t%-15s\t%s\n", "# Datetime", "# Username", "# Command"))

	// latest first
	for i := len(records) - 1; i >= 0 && len(records)-i <= count; i-- {
		r := records[i]
		line := fmt.Sprintf("%-19s\t%-15s\t%s\n",
			util.FormatDate(r.Datetime, "YYYY-MM-DD hh:mm:ss"),
			r.Username,
			strings.TrimSpace(r.Command+" "+r.Param),
		)
		if builder.Len()+len(line) > maxContentLength {
			break
		}
		builder.WriteString(line)
	}

	_, err = s.Transport.Send(ctx, inv.ChannelID(), codeLeftBlockWrapper+"\n"+builder.String()+codeRightBlockWrapper)
	return err
}
