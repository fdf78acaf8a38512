package blobstore

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stores(t *testing.T) map[string]BlobStore {
	return map[string]BlobStore{
		"local":  NewLocalStore(t.TempDir()),
		"memory": NewMemoryStore(),
	}
}

func TestBlobStore_Lifecycle(t *testing.T) {
	ctx := context.Background()

	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			data := []byte("hello world, this is a graph blob")
			require.NoError(t, store.Put(ctx, "graphs/bw-001.bin", data))
			require.NoError(t, store.Put(ctx, "graphs/bw-002.bin", []byte("second")))
			require.NoError(t, store.Put(ctx, "other.bin", []byte("x")))

			blob, err := store.Open(ctx, "graphs/bw-001.bin")
			require.NoError(t, err)
			assert.Equal(t, int64(len(data)), blob.Size())

			buf := make([]byte, 5)
			n, err := blob.ReadAt(ctx, buf, 6)
			require.NoError(t, err)
			assert.Equal(t, 5, n)
			assert.Equal(t, "world", string(buf))

			rc, err := blob.ReadRange(ctx, 13, 4)
			require.NoError(t, err)
			got, err := io.ReadAll(rc)
			require.NoError(t, err)
			require.NoError(t, rc.Close())
			assert.Equal(t, "this", string(got))

			m, ok := blob.(Mappable)
			require.True(t, ok)
			all, err := m.Bytes()
			require.NoError(t, err)
			assert.Equal(t, data, all)
			require.NoError(t, blob.Close())

			names, err := store.List(ctx, "graphs/")
			require.NoError(t, err)
			assert.Equal(t, []string{"graphs/bw-001.bin", "graphs/bw-002.bin"}, names)

			require.NoError(t, store.Delete(ctx, "graphs/bw-001.bin"))
			require.NoError(t, store.Delete(ctx, "graphs/bw-001.bin"))

			_, err = store.Open(ctx, "graphs/bw-001.bin")
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestBlob_ReadRangeBoundaries(t *testing.T) {
	ctx := context.Background()

	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, store.Put(ctx, "boundary.bin", []byte("0123456789")))
			blob, err := store.Open(ctx, "boundary.bin")
			require.NoError(t, err)
			defer blob.Close()

			rc, err := blob.ReadRange(ctx, 8, 5)
			require.NoError(t, err)
			got, err := io.ReadAll(rc)
			require.NoError(t, err)
			assert.Equal(t, "89", string(got))

			_, err = blob.ReadRange(ctx, 20, 5)
			assert.ErrorIs(t, err, io.EOF)
		})
	}
}

func TestOpenReader(t *testing.T) {
	ctx := context.Background()

	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, store.Put(ctx, "g.bin", []byte("payload")))
			require.NoError(t, store.Put(ctx, "empty.bin", nil))

			r, size, err := OpenReader(ctx, store, "g.bin")
			require.NoError(t, err)
			assert.Equal(t, int64(7), size)
			got, err := io.ReadAll(r)
			require.NoError(t, err)
			assert.Equal(t, "payload", string(got))
			require.NoError(t, r.Close())

			r, size, err = OpenReader(ctx, store, "empty.bin")
			require.NoError(t, err)
			assert.Zero(t, size)
			got, err = io.ReadAll(r)
			require.NoError(t, err)
			assert.Empty(t, got)
			require.NoError(t, r.Close())

			_, _, err = OpenReader(ctx, store, "missing.bin")
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestLocalStore_PutLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	store := NewLocalStore(dir)

	require.NoError(t, store.Put(context.Background(), "a.bin", []byte("abc")))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "a.bin", entries[0].Name())

	data, err := os.ReadFile(filepath.Join(dir, "a.bin"))
	require.NoError(t, err)
	assert.Equal(t, "abc", string(data))
}
