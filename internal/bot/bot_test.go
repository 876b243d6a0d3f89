package bot

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keshon/menubot/internal/chat/memory"
	"github.com/keshon/menubot/internal/config"
)

func TestNew_EndToEnd(t *testing.T) {
	self := &discordgo.User{ID: "bot", Username: "menubot", Bot: true}
	admin := &discordgo.User{ID: "admin", Username: "root"}
	tr := memory.New(self, admin.ID)
	tr.AddChannel("general", "guild")
	tr.SetPermissions(admin.ID, discordgo.PermissionAdministrator)

	cfg := &config.Config{
		Prefix:       "?",
		ItemsPerPage: 3,
		BotTitle:     "menubot",
		StoragePath:  filepath.Join(t.TempDir(), "s.json"),
		CommandRate:  100,
		CommandBurst: 100,
	}
	b, err := New(cfg, tr, nil)
	require.NoError(t, err)
	defer b.Close()

	ctx := context.Background()
	say := func(content string) {
		require.NoError(t, b.Dispatcher.OnMessage(ctx, tr.Post("general", admin, content)))
	}

	say("?fruits")
	e := tr.Last("general").Embeds[0]
	assert.Len(t, e.Fields, 3)

	say("?next")
	assert.Equal(t, "Page: 2 List: fruits Selection: True", tr.Last("general").Embeds[0].Footer.Text)

	say("?dismiss")
	assert.Empty(t, tr.Messages("general"))

	say("?log")
	out := tr.Last("general").Content
	assert.Contains(t, out, "fruits")
	assert.Contains(t, out, "dismiss")
}

func TestNew_WithoutStorage(t *testing.T) {
	tr := memory.New(&discordgo.User{ID: "bot", Username: "menubot"}, "")
	b, err := New(&config.Config{Prefix: "!", ItemsPerPage: 5, BotTitle: "menubot"}, tr, nil)
	require.NoError(t, err)
	assert.NoError(t, b.Close())

	_, ok := b.Registry.Get("log")
	assert.False(t, ok)
	_, ok = b.Registry.Get("help")
	assert.True(t, ok)
}
