package chat

import (
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
)

func TestDisplayName(t *testing.T) {
	u := &discordgo.User{ID: "1", Username: "alice"}
	assert.Equal(t, "alice", DisplayName(&discordgo.Message{Author: u}))

	u.GlobalName = "Alice"
	assert.Equal(t, "Alice", DisplayName(&discordgo.Message{Author: u}))

	msg := &discordgo.Message{Author: u, Member: &discordgo.Member{Nick: "Al"}}
	assert.Equal(t, "Al", DisplayName(msg))
	assert.Equal(t, "<@1>", Mention(msg))

	assert.Empty(t, DisplayName(nil))
}

func TestHasPermission(t *testing.T) {
	perms := int64(discordgo.PermissionKickMembers | discordgo.PermissionSendMessages)

	assert.True(t, HasPermission(perms, "kick_members"))
	assert.True(t, HasPermission(perms, "Send_Messages"))
	assert.False(t, HasPermission(perms, "ban_members"))
	assert.False(t, HasPermission(perms, "no_such_permission"))

	assert.True(t, HasPermission(discordgo.PermissionAdministrator, "ban_members"))
	assert.False(t, HasPermission(discordgo.PermissionAdministrator, "no_such_permission"))
}

func TestCodeBlock(t *testing.T) {
	assert.Equal(t, "```\nhello\n```", CodeBlock("hello\n"))
}
