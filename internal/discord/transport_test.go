package discord

import (
	"context"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// These cases never reach the network.
func TestTransport_Offline(t *testing.T) {
	dg, err := NewSession("token")
	require.NoError(t, err)
	assert.NotZero(t, dg.Identify.Intents&discordgo.IntentsMessageContent)

	tr := NewTransport(dg, "owner")
	ctx := context.Background()

	owner, err := tr.OwnerID(ctx)
	require.NoError(t, err)
	assert.Equal(t, "owner", owner)

	perms, err := tr.Permissions(ctx, &discordgo.Message{ChannelID: "dm", Author: &discordgo.User{ID: "u"}})
	require.NoError(t, err)
	assert.Zero(t, perms)

	assert.NoError(t, tr.DeleteMany(ctx, "c", nil))

	for range tr.History(ctx, "c", "", 0) {
		t.Fatal("zero limit must not fetch")
	}
}

func TestTransport_OwnerIDOverride(t *testing.T) {
	dg, err := NewSession("token")
	require.NoError(t, err)

	tr := NewTransport(dg, "123")
	for range 2 {
		owner, err := tr.OwnerID(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "123", owner)
	}
	assert.Nil(t, tr.Self())
}
