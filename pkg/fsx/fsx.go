// Package fsx abstracts document storage behind a small file-system
// interface so the campaign stores and the turn journal run unchanged
// against local disk or S3.
package fsx

import (
	"context"
	"time"
)

// FileInfo describes a stored object. Backends without real directories
// leave IsDir false.
type FileInfo struct {
	Name    string
	Size    int64
	ModTime time.Time
	IsDir   bool
}

// FileSystem is the storage surface the stores are written against. Paths
// are slash-separated and relative to the backend root.
type FileSystem interface {
	// ReadFile returns the full content at path.
	ReadFile(ctx context.Context, path string) ([]byte, error)

	// WriteFile replaces the content at path, creating it if absent.
	WriteFile(ctx context.Context, path string, data []byte) error

	// List returns the entries directly under path.
	List(ctx context.Context, path string) ([]FileInfo, error)

	// Exists reports whether path holds a file.
	Exists(ctx context.Context, path string) (bool, error)

	// Join builds a path in the backend's separator convention.
	Join(elem ...string) string
}
