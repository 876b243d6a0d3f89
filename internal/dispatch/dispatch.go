// Package dispatch turns inbound chat messages into command invocations.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/google/shlex"

	"github.com/keshon/menubot/internal/chat"
	"github.com/keshon/menubot/internal/permission"
	"github.com/keshon/menubot/pkg/cmd"
	"github.com/keshon/menubot/pkg/logger"
)

type Options struct {
	Registry  *cmd.Registry
	Pipeline  *permission.Pipeline
	Transport chat.Transport
	// Prefix marks a message as a command.
	Prefix string
	// Title is the program name shown in usage text.
	Title  string
	Logger logger.Logger
}

// Dispatcher is safe for concurrent use; every message is handled
// independently of the others.
type Dispatcher struct {
	registry  *cmd.Registry
	pipeline  *permission.Pipeline
	transport chat.Transport
	prefix    string
	title     string
	log       logger.Logger
}

func New(opts Options) (*Dispatcher, error) {
	if opts.Registry == nil || opts.Transport == nil {
		return nil, errors.New("dispatch: registry and transport are required")
	}
	if opts.Prefix == "" {
		return nil, errors.New("dispatch: prefix must not be empty")
	}
	return &Dispatcher{
		registry:  opts.Registry,
		pipeline:  opts.Pipeline,
		transport: opts.Transport,
		prefix:    opts.Prefix,
		title:     opts.Title,
		log:       logger.OrNoop(opts.Logger).With(logger.String("component", "dispatch")),
	}, nil
}

// OnMessage handles one inbound message. User mistakes are answered in chat
// and never returned; the returned error is a delivery or handler failure
// that has already been logged and reported.
func (d *Dispatcher) OnMessage(ctx context.Context, msg *discordgo.Message) error {
	if msg == nil || msg.Author == nil {
		return nil
	}
	if self := d.transport.Self(); self != nil && msg.Author.ID == self.ID {
		return nil
	}
	if !strings.HasPrefix(msg.Content, d.prefix) {
		return nil
	}

	tokens, err := split(strings.TrimPrefix(msg.Content, d.prefix))
	if err != nil {
		return d.usage(ctx, msg, &cmd.UsageError{
			Prog:  d.title,
			Msg:   err.Error(),
			Usage: cmd.Overview(d.title, d.registry.All()),
		})
	}

	c, args, err := d.registry.Resolve(d.title, tokens)
	if err != nil {
		var ue *cmd.UsageError
		if errors.As(err, &ue) {
			return d.usage(ctx, msg, ue)
		}
		return err
	}

	inv := &cmd.Invocation{Message: msg, Args: args}
	log := d.log.With(
		logger.String("command", c.Name()),
		logger.String("user", msg.Author.ID),
		logger.String("channel", msg.ChannelID),
	)

	ok, err := d.pipeline.Allow(ctx, c, inv)
	if err != nil {
		log.Error("permission check failed", logger.Err(err))
		return err
	}
	if !ok {
		return nil
	}

	log.Debug("running command")
	if err := c.Run(ctx, inv); err != nil {
		log.Error("command failed", logger.Err(err))
		if _, sendErr := d.transport.Send(ctx, msg.ChannelID, fmt.Sprintf("Error running command: %v", err)); sendErr != nil {
			log.Warn("failed to report command error", logger.Err(sendErr))
		}
		return err
	}
	return nil
}

// usage sends help and the error privately to the invoker.
func (d *Dispatcher) usage(ctx context.Context, msg *discordgo.Message, ue *cmd.UsageError) error {
	d.log.Debug("usage error",
		logger.String("user", msg.Author.ID),
		logger.String("error", ue.Msg),
	)
	if _, err := d.transport.SendDirect(ctx, msg.Author.ID, chat.CodeBlock(ue.Help())); err != nil {
		d.log.Warn("failed to deliver usage", logger.String("user", msg.Author.ID), logger.Err(err))
		return err
	}
	return nil
}

// split tokenizes a command line with POSIX shell rules. shlex drops
// everything from a '#' that starts a word, so such hashes are escaped first
// and #channel or #123 stay arguments.
func split(line string) ([]string, error) {
	var (
		sb      strings.Builder
		quote   rune
		escaped bool
		between = true
	)
	for _, r := range line {
		switch {
		case escaped:
			escaped = false
		case quote != 0:
			if r == quote {
				quote = 0
			} else if r == '\\' && quote == '"' {
				escaped = true
			}
		case r == '\\':
			escaped, between = true, false
		case r == '"' || r == '\'':
			quote, between = r, false
		case r == ' ' || r == '\t' || r == '\r' || r == '\n':
			between = true
		case r == '#' && between:
			sb.WriteByte('\\')
			between = false
		default:
			between = false
		}
		sb.WriteRune(r)
	}
	return shlex.Split(sb.String())
}
