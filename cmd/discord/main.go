package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/keshon/menubot/internal/bot"
	"github.com/keshon/menubot/internal/config"
	"github.com/keshon/menubot/internal/discord"
	"github.com/keshon/menubot/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	if err := cfg.RequireToken(); err != nil {
		log.Fatal(err)
	}

	lg, err := logger.New(cfg.Logger)
	if err != nil {
		log.Fatal(err)
	}
	defer lg.Sync()

	lg.Info("starting bot", logger.String("title", cfg.BotTitle), logger.String("prefix", cfg.Prefix))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	session, err := discord.NewSession(cfg.DiscordToken)
	if err != nil {
		lg.Fatal("failed to create session", logger.Err(err))
	}

	b, err := bot.New(cfg, discord.NewTransport(session, cfg.OwnerID), lg)
	if err != nil {
		lg.Fatal("failed to build bot", logger.Err(err))
	}
	defer func() {
		if err := b.Close(); err != nil {
			lg.Error("failed to flush storage", logger.Err(err))
		}
	}()

	errCh := make(chan error, 1)
	go func() {
		if err := discord.NewBot(session, b.Dispatcher, lg).Run(ctx); err != nil {
			errCh <- err
		}
		close(errCh)
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	select {
	case s := <-sig:
		lg.Info("received signal, shutting down", logger.String("signal", s.String()))
		cancel()
		<-errCh
	case err := <-errCh:
		if err != nil {
			lg.Error("discord bot error", logger.Err(err))
		}
		cancel()
	}

	lg.Info("discord bot exited cleanly")
}
