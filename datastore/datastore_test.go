package datastore

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type record struct {
	Count int      `json:"count"`
	Tags  []string `json:"tags"`
}

func TestDataStore_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "store.json")

	ds, err := NewWithConfig(Config{FilePath: path})
	require.NoError(t, err)
	require.NoError(t, ds.Put("a", record{Count: 1, Tags: []string{"x"}}))
	require.NoError(t, ds.Close())
	assert.ErrorIs(t, ds.Put("b", 1), ErrClosed)

	ds, err = NewWithConfig(Config{FilePath: path})
	require.NoError(t, err)
	defer ds.Close()

	var got record
	ok, err := ds.Get("a", &got)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, record{Count: 1, Tags: []string{"x"}}, got)

	ok, err = ds.Get("missing", &got)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, []string{"a"}, ds.Keys())
}

func TestUpdate(t *testing.T) {
	ds, err := NewWithConfig(Config{FilePath: filepath.Join(t.TempDir(), "s.json")})
	require.NoError(t, err)
	defer ds.Close()

	inc := func(r *record) error { r.Count++; return nil }
	require.NoError(t, Update(ds, "k", inc))
	require.NoError(t, Update(ds, "k", inc))

	var got record
	_, err = ds.Get("k", &got)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Count)

	boom := errors.New("boom")
	assert.ErrorIs(t, Update(ds, "k", func(r *record) error { r.Count = 100; return boom }), boom)
	_, _ = ds.Get("k", &got)
	assert.Equal(t, 2, got.Count)

	ds.Delete("k")
	assert.Empty(t, ds.Keys())
}

func TestAutoSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "s.json")
	ds, err := NewWithConfig(Config{FilePath: path, AutoSaveInterval: 10 * time.Millisecond})
	require.NoError(t, err)
	defer ds.Close()

	require.NoError(t, ds.Put("k", "v"))
	assert.Eventually(t, func() bool {
		data, err := os.ReadFile(path)
		return err == nil && len(data) > 0
	}, time.Second, 10*time.Millisecond)
}

func TestNew_RejectsBadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "s.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))
	_, err := New(path)
	assert.Error(t, err)

	_, err = New("")
	assert.Error(t, err)
}
