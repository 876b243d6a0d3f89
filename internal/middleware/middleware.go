// Package middleware holds command middlewares shared by the binaries.
package middleware

import (
	"context"
	"time"

	"github.com/keshon/menubot/pkg/cmd"
	"github.com/keshon/menubot/pkg/logger"
)

// WithRunLogger logs each run with its duration and outcome.
func WithRunLogger(log logger.Logger) cmd.Middleware {
	log = logger.OrNoop(log).With(logger.String("component", "command"))
	return func(c cmd.Command) cmd.Command {
		return cmd.Wrap(c, func(ctx context.Context, inv *cmd.Invocation) error {
			start := time.Now()
			err := c.Run(ctx, inv)
			fields := []logger.Field{
				logger.String("command", c.Name()),
				logger.String("channel", inv.ChannelID()),
				logger.Duration("took", time.Since(start)),
			}
			if err != nil {
				log.Warn("command returned error", append(fields, logger.Err(err))...)
				return err
			}
			log.Info("command completed", fields...)
			return nil
		})
	}
}
