package server

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestOpenStore_Memory(t *testing.T) {
	store, err := OpenStore("memory://")
	require.NoError(t, err)
	require.NoError(t, store.Close())
}

func TestOpenStore_SQLiteFile(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	store, err := OpenStore("sqlite:///" + dbPath)
	require.NoError(t, err)
	defer store.Close()

	id, err := store.Insert(context.Background(), time.Now(), 1.5, nil)
	require.NoError(t, err)
	require.Equal(t, int64(1), id)
}

func TestOpenStore_BadgerDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "bdg")

	store, err := OpenStore("badger://" + dir)
	require.NoError(t, err)
	defer store.Close()

	id, err := store.Insert(context.Background(), time.Now(), 2.5, nil)
	require.NoError(t, err)
	require.Equal(t, int64(1), id)
}

func TestOpenStore_RejectsUnknownScheme(t *testing.T) {
	_, err := OpenStore("redis://localhost:6379")
	require.Error(t, err)
}
