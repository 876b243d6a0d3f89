// Package bot assembles the command stack both binaries run: registry,
// permission pipeline, menus, stock commands and dispatcher.
package bot

import (
	"errors"
	"fmt"

	"golang.org/x/time/rate"

	"github.com/keshon/menubot/internal/chat"
	"github.com/keshon/menubot/internal/commands"
	"github.com/keshon/menubot/internal/config"
	"github.com/keshon/menubot/internal/dispatch"
	"github.com/keshon/menubot/internal/menu"
	"github.com/keshon/menubot/internal/middleware"
	"github.com/keshon/menubot/internal/permission"
	"github.com/keshon/menubot/internal/storage"
	"github.com/keshon/menubot/pkg/cmd"
	"github.com/keshon/menubot/pkg/logger"
)

type Bot struct {
	Registry   *cmd.Registry
	Menus      *menu.Registry
	Machine    *menu.Machine
	Dispatcher *dispatch.Dispatcher

	storage *storage.Storage
}

// New wires everything on top of t. Command history is kept only when
// cfg.StoragePath is set.
func New(cfg *config.Config, t chat.Transport, log logger.Logger) (*Bot, error) {
	log = logger.OrNoop(log)
	b := &Bot{Registry: cmd.NewRegistry(), Menus: menu.NewRegistry()}

	var history commands.HistoryReader
	if cfg.StoragePath != "" {
		st, err := storage.New(cfg.StoragePath, log)
		if err != nil {
			return nil, fmt.Errorf("failed to open storage: %w", err)
		}
		b.storage = st
		history = st
		b.Registry.Use(middleware.WithCommandLogger(st, log))
	}
	b.Registry.Use(middleware.WithRunLogger(log))

	pipeline := permission.NewPipeline(log, permission.Default(t)...)
	if cfg.CommandRate > 0 {
		pipeline.Add(permission.Throttle(rate.Limit(cfg.CommandRate), cfg.CommandBurst, t))
	}

	if err := commands.Register(commands.Deps{
		Registry:  b.Registry,
		Transport: t,
		History:   history,
		Title:     cfg.BotTitle,
	}); err != nil {
		return nil, errors.Join(err, b.Close())
	}
	if err := commands.RegisterMenus(b.Menus, t); err != nil {
		return nil, errors.Join(err, b.Close())
	}

	b.Machine = menu.NewMachine(menu.Options{
		Menus:     b.Menus,
		Transport: t,
		PageSize:  cfg.ItemsPerPage,
		Logger:    log,
	})
	if err := b.Machine.Install(b.Registry); err != nil {
		return nil, errors.Join(err, b.Close())
	}

	d, err := dispatch.New(dispatch.Options{
		Registry:  b.Registry,
		Pipeline:  pipeline,
		Transport: t,
		Prefix:    cfg.Prefix,
		Title:     cfg.BotTitle,
		Logger:    log,
	})
	if err != nil {
		return nil, errors.Join(err, b.Close())
	}
	b.Dispatcher = d
	return b, nil
}

// Close flushes command history.
func (b *Bot) Close() error {
	if b.storage == nil {
		return nil
	}
	return b.storage.Close()
}
