package storage

import (
	"context"
	"io"
	"time"
)

// FileInfo represents metadata about a file in a tree
type FileInfo struct {
	Path         string
	Size         int64
	ModTime      time.Time
	IsDir        bool
	Permissions  uint32
	RelativePath string
}

// Tree is a read-only view of one version of a directory tree.
// A tree whose root does not exist on disk is valid and simply empty;
// this is how "artifact did not exist at that point in time" is
// represented, distinct from an existing empty directory.
type Tree interface {
	// Root returns the absolute root path of the tree
	Root() string

	// RootExists reports whether the root directory exists on disk
	RootExists() bool

	// List returns all files in the tree recursively
	List(ctx context.Context) ([]FileInfo, error)

	// Open opens a file for reading by relative path
	Open(ctx context.Context, relPath string) (io.ReadCloser, error)

	// ReadFile reads an entire file by relative path
	ReadFile(ctx context.Context, relPath string) ([]byte, error)

	// Stat returns metadata for a relative path
	Stat(ctx context.Context, relPath string) (*FileInfo, error)

	// Close releases any resources held by the tree
	Close() error
}
