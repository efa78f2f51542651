package models

import (
	"fmt"
)

// ContentLoader reads the raw bytes of a file on demand
type ContentLoader func() ([]byte, error)

// FileSnapshot captures the state of a file in one tree during a diff pass.
// The hash is computed eagerly while walking; raw content is only read when
// a classification or conflict marker actually needs it. Snapshots are
// created and discarded within a single diff invocation.
type FileSnapshot struct {
	// RelPath is the path relative to the tree root
	RelPath string

	// Hash is the SHA-256 hash of the file content (hex encoded)
	Hash string

	// Size in bytes
	Size int64

	// IsBinary indicates the content looks like binary data
	IsBinary bool

	loader  ContentLoader
	content []byte
	loaded  bool
}

// NewFileSnapshot creates a snapshot with a deferred content loader
func NewFileSnapshot(relPath, hash string, size int64, isBinary bool, loader ContentLoader) *FileSnapshot {
	return &FileSnapshot{
		RelPath:  relPath,
		Hash:     hash,
		Size:     size,
		IsBinary: isBinary,
		loader:   loader,
	}
}

// Content returns the file content, reading it on first access
func (s *FileSnapshot) Content() ([]byte, error) {
	if s.loaded {
		return s.content, nil
	}
	if s.loader == nil {
		return nil, fmt.Errorf("no content loader for %s", s.RelPath)
	}

	data, err := s.loader()
	if err != nil {
		return nil, fmt.Errorf("failed to load content of %s: %w", s.RelPath, err)
	}

	s.content = data
	s.loaded = true
	return s.content, nil
}
