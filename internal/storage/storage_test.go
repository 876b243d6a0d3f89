package storage

import (
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommandHistory_Bounded(t *testing.T) {
	s, err := New(filepath.Join(t.TempDir(), "store.json"), nil)
	require.NoError(t, err)
	defer s.Close()

	for i := range commandHistoryLimit + 5 {
		require.NoError(t, s.AppendCommandToHistory("guild", CommandHistoryRecord{
			Command:  fmt.Sprintf("cmd%d", i),
			Datetime: time.Now(),
		}))
	}

	got, err := s.FetchCommandHistory("guild")
	require.NoError(t, err)
	require.Len(t, got, commandHistoryLimit)
	assert.Equal(t, "cmd5", got[0].Command)
	assert.Equal(t, fmt.Sprintf("cmd%d", commandHistoryLimit+4), got[len(got)-1].Command)
}

func TestCommandHistory_PerGuild(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.json")
	s, err := New(path, nil)
	require.NoError(t, err)

	require.NoError(t, s.AppendCommandToHistory("a", CommandHistoryRecord{Command: "greet"}))
	require.NoError(t, s.AppendCommandToHistory("", CommandHistoryRecord{Command: "help"}))
	require.NoError(t, s.Close())

	s, err = New(path, nil)
	require.NoError(t, err)
	defer s.Close()

	got, err := s.FetchCommandHistory("a")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "greet", got[0].Command)

	got, err = s.FetchCommandHistory("")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "help", got[0].Command)

	got, err = s.FetchCommandHistory("b")
	require.NoError(t, err)
	assert.Empty(t, got)
}
