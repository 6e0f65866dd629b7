// Package storage provides the filesystem abstraction product images are
// written through.
//
// Two drivers are available:
//   - "local"  local filesystem under STORAGE_LOCAL_ROOT (default)
//   - "s3"     S3-compatible object storage (AWS S3, MinIO, R2, Spaces)
//
// Quick start:
//
//	// boot once in the serve command:
//	storage.Connect(ctx)
//
//	// default disk
//	storage.Default().Put(ctx, "shirt-1700000000000.png", file, "image/png")
//	url := storage.Default().URL("shirt-1700000000000.png")
package storage

import (
	"context"
	"io"
)

// Disk is the filesystem driver interface. Every driver must implement this.
type Disk interface {
	// Put writes r to path, creating parent directories as needed.
	Put(ctx context.Context, path string, r io.Reader, contentType string) error

	// Get returns a ReadCloser for the file. Caller must close it.
	Get(ctx context.Context, path string) (io.ReadCloser, error)

	// Exists reports whether a file exists at path.
	Exists(ctx context.Context, path string) bool

	// Delete removes a file. Returns nil if the file did not exist.
	Delete(ctx context.Context, path string) error

	// URL returns the public URL for path. It may be relative (local disk)
	// in which case callers prefix the request origin.
	URL(path string) string
}
