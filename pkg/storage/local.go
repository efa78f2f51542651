package storage

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// Local is a filesystem-backed tree rooted at a directory
type Local struct {
	rootPath string
}

// NewLocal creates a tree view over a directory. The directory is
// allowed to be absent; the tree then lists nothing. A root that exists
// but is not a directory is rejected.
func NewLocal(rootPath string) (*Local, error) {
	absPath, err := filepath.Abs(rootPath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve path: %w", err)
	}

	info, err := os.Stat(absPath)
	if err != nil {
		if os.IsNotExist(err) {
			return &Local{rootPath: absPath}, nil
		}
		return nil, fmt.Errorf("failed to access path: %w", err)
	}

	if !info.IsDir() {
		return nil, fmt.Errorf("path is not a directory: %s", absPath)
	}

	return &Local{rootPath: absPath}, nil
}

// Root returns the absolute root path
func (l *Local) Root() string {
	return l.rootPath
}

// RootExists reports whether the root directory exists
func (l *Local) RootExists() bool {
	info, err := os.Stat(l.rootPath)
	return err == nil && info.IsDir()
}

// List returns all files in the tree recursively. A missing root yields
// an empty list, not an error.
func (l *Local) List(ctx context.Context) ([]FileInfo, error) {
	if !l.RootExists() {
		return nil, nil
	}

	var files []FileInfo

	err := filepath.WalkDir(l.rootPath, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		// Check context cancellation
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		relPath, err := filepath.Rel(l.rootPath, p)
		if err != nil {
			return err
		}
		if relPath == "." {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}

		files = append(files, FileInfo{
			Path:         p,
			Size:         info.Size(),
			ModTime:      info.ModTime(),
			IsDir:        info.IsDir(),
			Permissions:  uint32(info.Mode().Perm()),
			RelativePath: relPath,
		})

		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("failed to list files: %w", err)
	}

	return files, nil
}

// Open opens a file for reading
func (l *Local) Open(ctx context.Context, relPath string) (io.ReadCloser, error) {
	fullPath := filepath.Join(l.rootPath, relPath)

	file, err := os.Open(fullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}

	return file, nil
}

// ReadFile reads an entire file by relative path
func (l *Local) ReadFile(ctx context.Context, relPath string) ([]byte, error) {
	fullPath := filepath.Join(l.rootPath, relPath)

	data, err := os.ReadFile(fullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	return data, nil
}

// Stat returns file metadata
func (l *Local) Stat(ctx context.Context, relPath string) (*FileInfo, error) {
	fullPath := filepath.Join(l.rootPath, relPath)

	info, err := os.Stat(fullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	return &FileInfo{
		Path:         fullPath,
		Size:         info.Size(),
		ModTime:      info.ModTime(),
		IsDir:        info.IsDir(),
		Permissions:  uint32(info.Mode().Perm()),
		RelativePath: relPath,
	}, nil
}

// Close releases resources (no-op for local filesystem)
func (l *Local) Close() error {
	return nil
}
