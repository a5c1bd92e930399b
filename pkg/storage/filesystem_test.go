package storage

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLocalStorageSaveOpenDelete(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	name, err := store.Save("plans/p1/schedule.csv", []byte("date,subject,hours\n"))
	require.NoError(t, err)
	require.Equal(t, "plans/p1/schedule.csv", name)
	require.True(t, store.Exists(name))

	f, err := store.Open(name)
	require.NoError(t, err)
	body, err := io.ReadAll(f)
	require.NoError(t, f.Close())
	require.NoError(t, err)
	require.Equal(t, "date,subject,hours\n", string(body))

	require.NoError(t, store.Delete(name))
	require.False(t, store.Exists(name))
	require.NoError(t, store.Delete(name))
}

func TestLocalStorageRejectsEscapes(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	_, err = store.Save("../outside.csv", []byte("x"))
	require.True(t, errors.Is(err, ErrOutsideRoot))
	_, err = store.Open("/etc/passwd")
	require.True(t, errors.Is(err, ErrOutsideRoot))
}

func TestLocalStorageCleanupOlderThan(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStorage(dir)
	require.NoError(t, err)

	_, err = store.Save("old.csv", []byte("old"))
	require.NoError(t, err)
	_, err = store.Save("fresh.csv", []byte("fresh"))
	require.NoError(t, err)
	past := time.Now().Add(-2 * time.Hour)
	require.NoError(t, os.Chtimes(filepath.Join(dir, "old.csv"), past, past))

	deleted, err := store.CleanupOlderThan(time.Hour)
	require.NoError(t, err)
	require.Equal(t, []string{"old.csv"}, deleted)
	require.True(t, store.Exists("fresh.csv"))
}
