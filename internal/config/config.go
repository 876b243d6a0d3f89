package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/keshon/menubot/pkg/logger"
)

type Config struct {
	DiscordToken string  `env:"DISCORD_TOKEN"`
	Prefix       string  `env:"COMMAND_PREFIX" envDefault:"!"`
	ItemsPerPage int     `env:"MENU_ITEMS_PER_PAGE" envDefault:"5"`
	BotTitle     string  `env:"BOT_TITLE" envDefault:"menubot"`
	OwnerID      string  `env:"OWNER_ID"`
	StoragePath  string  `env:"STORAGE_PATH" envDefault:"datastore.json"`
	CommandRate  float64 `env:"COMMAND_RATE" envDefault:"0"`
	CommandBurst int     `env:"COMMAND_BURST" envDefault:"3"`

	Logger logger.Config `envPrefix:"LOG_"`
}

// Load reads .env (if present) and the process environment.
func Load(files ...string) (*Config, error) {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load env file: %w", err)
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.Prefix == "" {
		return errors.New("COMMAND_PREFIX must not be empty")
	}
	if c.ItemsPerPage <= 0 {
		return fmt.Errorf("MENU_ITEMS_PER_PAGE must be positive, got %d", c.ItemsPerPage)
	}
	if c.CommandRate < 0 {
		return fmt.Errorf("COMMAND_RATE must not be negative, got %v", c.CommandRate)
	}
	if c.CommandRate > 0 && c.CommandBurst <= 0 {
		return fmt.Errorf("COMMAND_BURST must be positive when COMMAND_RATE is set, got %d", c.CommandBurst)
	}
	return nil
}

// RequireToken is checked by the Discord binary only.
func (c *Config) RequireToken() error {
	if c.DiscordToken == "" {
		return errors.New("DISCORD_TOKEN is not set")
	}
	return nil
}
