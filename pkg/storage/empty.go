package storage

import (
	"context"
	"fmt"
	"io"
	"io/fs"
)

// Empty is a tree that never existed. It is used when a caller has no
// path at all for one of the three versions.
type Empty struct{}

// NewEmpty creates an empty tree view
func NewEmpty() *Empty {
	return &Empty{}
}

// Root returns an empty root path
func (e *Empty) Root() string {
	return ""
}

// RootExists always reports false
func (e *Empty) RootExists() bool {
	return false
}

// List returns no files
func (e *Empty) List(ctx context.Context) ([]FileInfo, error) {
	return nil, nil
}

// Open always fails with fs.ErrNotExist
func (e *Empty) Open(ctx context.Context, relPath string) (io.ReadCloser, error) {
	return nil, fmt.Errorf("failed to open file: %w", fs.ErrNotExist)
}

// ReadFile always fails with fs.ErrNotExist
func (e *Empty) ReadFile(ctx context.Context, relPath string) ([]byte, error) {
	return nil, fmt.Errorf("failed to read file: %w", fs.ErrNotExist)
}

// Stat always fails with fs.ErrNotExist
func (e *Empty) Stat(ctx context.Context, relPath string) (*FileInfo, error) {
	return nil, fmt.Errorf("failed to stat file: %w", fs.ErrNotExist)
}

// Close releases nothing
func (e *Empty) Close() error {
	return nil
}
