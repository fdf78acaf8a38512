// Package blobstore abstracts where encoded road graphs live.
//
// A graph file is an immutable blob. The navigator only needs to open it and
// stream it once at startup; tooling also needs to publish, list and remove
// graph versions.
//
// # Built-in Implementations
//
//   - LocalStore: local filesystem, blobs are memory-mapped
//   - MemoryStore: in-memory, for tests
//   - s3.Store: Amazon S3 range reads and multipart uploads
//   - minio.Store: MinIO and other S3-compatible services
//
// # Custom Implementations
//
//	type BlobStore interface {
//	    Open(ctx, name) (Blob, error)
//	    Put(ctx, name, data) error
//	    Delete(ctx, name) error
//	    List(ctx, prefix) ([]string, error)
//	}
//
// Blobs that can expose their bytes without copying implement Mappable; the
// graph loader prefers that path over ReadRange.
package blobstore
