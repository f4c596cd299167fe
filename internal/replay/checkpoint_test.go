package replay

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFileStateStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "checkpoint.json")
	store := NewFileStateStore(path)

	_, ok, err := store.Load(ctx)
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, store.Save(ctx, 42))
	last, ok, err := store.Load(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, uint64(42), last)

	_, err = os.Stat(path + ".tmp")
	require.True(t, os.IsNotExist(err))
}

func TestFileStateStoreRejectsDirectory(t *testing.T) {
	_, _, err := NewFileStateStore(t.TempDir()).Load(context.Background())
	require.Error(t, err)
}

type fakeBackend struct {
	seqs map[string]uint64
}

func (f *fakeBackend) LoadState(_ context.Context, name string) (uint64, bool, error) {
	seq, ok := f.seqs[name]
	return seq, ok, nil
}

func (f *fakeBackend) SaveState(_ context.Context, name string, seq uint64) error {
	f.seqs[name] = seq
	return nil
}

func TestDBStateStoreUsesStreamName(t *testing.T) {
	ctx := context.Background()
	backend := &fakeBackend{seqs: map[string]uint64{}}
	store := NewDBStateStore(backend, "ops-2024")

	require.NoError(t, store.Save(ctx, 7))
	require.Equal(t, uint64(7), backend.seqs["ops-2024"])
	last, ok, err := store.Load(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, uint64(7), last)
}
