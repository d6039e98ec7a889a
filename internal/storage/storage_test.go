package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/docbrief/docbrief/internal/config"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newStore(t *testing.T) *UploadStore {
	t.Helper()
	store, err := New(Params{
		Config: config.Config{UploadDir: t.TempDir()},
		Log:    zap.NewNop(),
	})
	require.NoError(t, err)
	return store
}

func TestSaveUsesRandomNameWithExtension(t *testing.T) {
	store := newStore(t)

	path, err := store.Save(strings.NewReader("hello"), ".PDF ")
	require.NoError(t, err)
	t.Cleanup(func() { store.Remove(path) })

	require.True(t, strings.HasSuffix(path, ".PDF") || strings.HasSuffix(path, ".pdf"))
	require.NotContains(t, filepath.Base(path), " ")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "hello", string(data))
}

func TestRemoveIsIdempotent(t *testing.T) {
	store := newStore(t)

	path, err := store.Save(strings.NewReader("bye"), "txt")
	require.NoError(t, err)

	store.Remove(path)
	_, statErr := os.Stat(path)
	require.True(t, os.IsNotExist(statErr))

	store.Remove(path)
	store.Remove("")
}
