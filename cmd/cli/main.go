// Command cli runs the bot against an in-memory channel from the terminal.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/keshon/menubot/internal/bot"
	"github.com/keshon/menubot/internal/chat/memory"
	"github.com/keshon/menubot/internal/config"
	"github.com/keshon/menubot/pkg/logger"
)

const channelID = "console"

type options struct {
	username string
	admin    bool
	owner    bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var opts options
	cmd := &cobra.Command{
		Use:   "cli",
		Short: "Talk to the bot from a terminal",
		Long:  "Runs the command dispatcher and menus against an in-memory channel. Every message the bot sends, edits or deletes is printed.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), opts, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVarP(&opts.username, "user", "u", "console", "name to chat as")
	cmd.Flags().BoolVar(&opts.admin, "admin", false, "grant the administrator permission")
	cmd.Flags().BoolVar(&opts.owner, "owner", false, "act as the application owner")
	return cmd
}

func run(ctx context.Context, opts options, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	lg, err := logger.New(cfg.Logger)
	if err != nil {
		return err
	}
	defer lg.Sync()

	self := &discordgo.User{ID: "bot", Username: cfg.BotTitle, Bot: true}
	user := &discordgo.User{ID: "user", Username: opts.username}
	owner := "owner"
	if opts.owner {
		owner = user.ID
	}

	tr := memory.New(self, owner)
	tr.AddChannel(channelID, "console-guild")
	if opts.admin {
		tr.SetPermissions(user.ID, discordgo.PermissionAdministrator)
	}
	tr.Observe(func(e memory.Event) { printEvent(out, e) })

	b, err := bot.New(cfg, tr, lg)
	if err != nil {
		return err
	}
	defer b.Close()

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          opts.username + "> ",
		HistoryFile:     filepath.Join(os.TempDir(), ".menubot_history"),
		HistoryLimit:    100,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return fmt.Errorf("failed to initialize readline: %w", err)
	}
	defer rl.Close()

	fmt.Fprintf(out, "Commands start with %q. Try %shelp. Ctrl+D quits.\n", cfg.Prefix, cfg.Prefix)
	for {
		line, err := rl.Readline()
		if err != nil {
			if errors.Is(err, readline.ErrInterrupt) || errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		msg := tr.Post(channelID, user, line)
		// errors are already reported in the channel and logged
		_ = b.Dispatcher.OnMessage(ctx, msg)
	}
}

func printEvent(out io.Writer, e memory.Event) {
	m := e.Message
	switch e.Kind {
	case memory.EventSend:
		fmt.Fprintf(out, "[#%s] %s\n", m.ID, render(m))
	case memory.EventEdit:
		fmt.Fprintf(out, "[#%s edited] %s\n", m.ID, render(m))
	case memory.EventDelete:
		fmt.Fprintf(out, "[#%s deleted]\n", m.ID)
	case memory.EventDirect:
		fmt.Fprintf(out, "[direct] %s\n", m.Content)
	}
}

func render(m *discordgo.Message) string {
	if len(m.Embeds) == 0 {
		return m.Content
	}
	var sb strings.Builder
	for _, e := range m.Embeds {
		sb.WriteString(e.Title)
		sb.WriteByte('\n')
		for _, f := range e.Fields {
			fmt.Fprintf(&sb, "  %s. %s\n", f.Name, f.Value)
		}
		for _, line := range strings.Split(strings.TrimRight(e.Description, "\n"), "\n") {
			if line != "" {
				fmt.Fprintf(&sb, "  %s\n", line)
			}
		}
		if e.Footer != nil {
			fmt.Fprintf(&sb, "  -- %s", e.Footer.Text)
		}
	}
	return sb.String()
}
