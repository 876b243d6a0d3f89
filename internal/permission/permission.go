// Package permission runs the ordered checks that gate every command
// invocation.
package permission

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/time/rate"

	"github.com/keshon/menubot/internal/chat"
	"github.com/keshon/menubot/pkg/cmd"
	"github.com/keshon/menubot/pkg/logger"
)

// Check decides whether inv may run c. A check that denies is responsible
// for telling the user why.
type Check func(ctx context.Context, c cmd.Command, inv *cmd.Invocation) (bool, error)

// Pipeline runs checks in the order they were added.
type Pipeline struct {
	checks []Check
	log    logger.Logger
}

func NewPipeline(log logger.Logger, checks ...Check) *Pipeline {
	return &Pipeline{checks: checks, log: logger.OrNoop(log)}
}

// Add appends checks to the end of the pipeline.
func (p *Pipeline) Add(checks ...Check) {
	p.checks = append(p.checks, checks...)
}

// Allow stops at the first check that denies or fails.
func (p *Pipeline) Allow(ctx context.Context, c cmd.Command, inv *cmd.Invocation) (bool, error) {
	if p == nil {
		return true, nil
	}
	for i, check := range p.checks {
		ok, err := check(ctx, c, inv)
		if err != nil {
			return false, fmt.Errorf("permission check %d: %w", i, err)
		}
		if !ok {
			p.log.Debug("command denied",
				logger.String("command", c.Name()),
				logger.Int("check", i),
			)
			return false, nil
		}
	}
	return true, nil
}

// Default is the permission-flag check followed by the owner check.
func Default(t chat.Transport) []Check {
	return []Check{PermissionFlags(t), Owner(t)}
}

// PermissionFlags requires every permission the command declares.
func PermissionFlags(t chat.Transport) Check {
	return func(ctx context.Context, c cmd.Command, inv *cmd.Invocation) (bool, error) {
		meta := c.Metadata()
		if len(meta.PermissionsRequired) == 0 {
			return true, nil
		}
		perms, err := t.Permissions(ctx, inv.Message)
		if err != nil {
			return false, fmt.Errorf("failed to get user permissions: %w", err)
		}
		for _, name := range meta.PermissionsRequired {
			if chat.HasPermission(perms, name) {
				continue
			}
			text := meta.CheckFailedMessage
			if text == "" {
				text = cmd.DefaultCheckFailedMessage
			}
			return false, notify(ctx, t, inv, format(text, inv))
		}
		return true, nil
	}
}

// Owner restricts owner-only commands to the application owner.
func Owner(t chat.Transport) Check {
	return func(ctx context.Context, c cmd.Command, inv *cmd.Invocation) (bool, error) {
		if !c.Metadata().OwnerOnly {
			return true, nil
		}
		owner, err := t.OwnerID(ctx)
		if err != nil {
			return false, fmt.Errorf("failed to get application owner: %w", err)
		}
		if author := inv.Author(); author != nil && owner != "" && author.ID == owner {
			return true, nil
		}
		text := format("{mention} that command is only accessible to the owner of the bot.", inv)
		return false, notify(ctx, t, inv, text)
	}
}

// Throttle limits each user to r commands per second with the given burst.
func Throttle(r rate.Limit, burst int, t chat.Transport) Check {
	var (
		mu       sync.Mutex
		limiters = make(map[string]*rate.Limiter)
	)
	return func(ctx context.Context, c cmd.Command, inv *cmd.Invocation) (bool, error) {
		author := inv.Author()
		if author == nil {
			return true, nil
		}
		mu.Lock()
		l, ok := limiters[author.ID]
		if !ok {
			l = rate.NewLimiter(r, burst)
			limiters[author.ID] = l
		}
		mu.Unlock()

		if l.Allow() {
			return true, nil
		}
		return false, notify(ctx, t, inv, format("{mention} slow down, you are sending commands too fast.", inv))
	}
}

func format(text string, inv *cmd.Invocation) string {
	return strings.NewReplacer(
		"{name}", chat.DisplayName(inv.Message),
		"{mention}", chat.Mention(inv.Message),
	).Replace(text)
}

func notify(ctx context.Context, t chat.Transport, inv *cmd.Invocation, text string) error {
	if _, err := t.Send(ctx, inv.ChannelID(), text); err != nil {
		return fmt.Errorf("failed to send denial: %w", err)
	}
	return nil
}
