package blobstore

import (
	"bytes"
	"context"
	"io"
	"os"
)

// ErrNotFound is returned when a blob does not exist.
//
// Implementations should return an error that satisfies `errors.Is(err, ErrNotFound)`.
// The default maps to `os.ErrNotExist`.
var ErrNotFound = os.ErrNotExist

// BlobStore stores immutable graph blobs.
// Implementations must be safe for concurrent use.
type BlobStore interface {
	// Open opens a blob for reading.
	Open(ctx context.Context, name string) (Blob, error)
	// Put writes a blob atomically, replacing any previous content.
	Put(ctx context.Context, name string, data []byte) error
	// Delete removes a blob. Deleting a missing blob is not an error.
	Delete(ctx context.Context, name string) error
	// List returns the sorted names of all blobs with the given prefix.
	List(ctx context.Context, prefix string) ([]string, error)
}

// Blob is a read-only handle to a data blob.
type Blob interface {
	io.Closer
	// ReadAt reads len(p) bytes starting at off.
	ReadAt(ctx context.Context, p []byte, off int64) (int, error)
	// ReadRange returns a reader over [off, off+length), clamped to the blob size.
	ReadRange(ctx context.Context, off, length int64) (io.ReadCloser, error)
	// Size returns the size of the blob in bytes.
	Size() int64
}

// Mappable is an optional interface for Blobs whose content is already in memory.
type Mappable interface {
	// Bytes returns the underlying byte slice.
	// The slice is valid until the Blob is closed.
	Bytes() ([]byte, error)
}

// OpenReader opens name and returns a reader over the whole blob.
// Closing the returned reader closes the blob.
func OpenReader(ctx context.Context, store BlobStore, name string) (io.ReadCloser, int64, error) {
	blob, err := store.Open(ctx, name)
	if err != nil {
		return nil, 0, err
	}

	size := blob.Size()
	if size == 0 {
		return &blobReader{ReadCloser: io.NopCloser(bytes.NewReader(nil)), blob: blob}, 0, nil
	}

	if m, ok := blob.(Mappable); ok {
		if data, err := m.Bytes(); err == nil {
			return &blobReader{ReadCloser: io.NopCloser(bytes.NewReader(data)), blob: blob}, size, nil
		}
	}

	rc, err := blob.ReadRange(ctx, 0, size)
	if err != nil {
		_ = blob.Close()
		return nil, 0, err
	}

	return &blobReader{ReadCloser: rc, blob: blob}, size, nil
}

type blobReader struct {
	io.ReadCloser
	blob Blob
}

func (r *blobReader) Close() error {
	err := r.ReadCloser.Close()
	if cerr := r.blob.Close(); err == nil {
		err = cerr
	}
	return err
}
