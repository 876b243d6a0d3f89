package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, "!", cfg.Prefix)
	assert.Equal(t, 5, cfg.ItemsPerPage)
	assert.Equal(t, "menubot", cfg.BotTitle)
	assert.Equal(t, "info", cfg.Logger.Level)
	assert.Equal(t, "stdout", cfg.Logger.Output)
	assert.Error(t, cfg.RequireToken())
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("COMMAND_PREFIX", "?")
	t.Setenv("MENU_ITEMS_PER_PAGE", "3")
	t.Setenv("DISCORD_TOKEN", "token")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	assert.Equal(t, "?", cfg.Prefix)
	assert.Equal(t, 3, cfg.ItemsPerPage)
	assert.Equal(t, "debug", cfg.Logger.Level)
	assert.NoError(t, cfg.RequireToken())
}

func TestLoad_DotEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("BOT_TITLE=dotbot\n"), 0o644))
	t.Cleanup(func() { os.Unsetenv("BOT_TITLE") })

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "dotbot", cfg.BotTitle)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		key, value string
	}{
		{"MENU_ITEMS_PER_PAGE", "0"},
		{"MENU_ITEMS_PER_PAGE", "many"},
		{"COMMAND_RATE", "-1"},
	}
	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
			assert.Error(t, err)
		})
	}
}
