package merge

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// writeFileAtomic writes content to path by first writing a temporary
// sibling, syncing it to disk, then renaming it over the destination.
// A crash mid-write therefore never leaves a corrupt destination: the
// final path either holds its prior content or the complete new
// content.
func writeFileAtomic(path string, reader io.Reader, perm os.FileMode) error {
	dir := filepath.Dir(path)

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	cleanup := func() {
		tmp.Close()
		os.Remove(tmpPath)
	}

	if _, err := io.Copy(tmp, reader); err != nil {
		cleanup()
		return fmt.Errorf("failed to write temp file: %w", err)
	}

	if err := tmp.Sync(); err != nil {
		cleanup()
		return fmt.Errorf("failed to sync temp file: %w", err)
	}

	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Chmod(tmpPath, perm); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to set permissions: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to rename into place: %w", err)
	}

	return nil
}

// ensureDir creates dir and any missing parents, recording every
// directory that did not exist before in the transaction log so a
// rollback can remove them again
func ensureDir(dir string, log *txLog) error {
	missing := missingAncestors(dir)

	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	for _, d := range missing {
		log.recordDir(d)
	}

	return nil
}

// missingAncestors returns dir and every ancestor that does not yet
// exist, shallowest first
func missingAncestors(dir string) []string {
	var missing []string
	for d := dir; ; d = filepath.Dir(d) {
		if _, err := os.Stat(d); err == nil {
			break
		}
		missing = append(missing, d)
		if filepath.Dir(d) == d {
			break
		}
	}

	// Reverse so parents come before children
	for i, j := 0, len(missing)-1; i < j; i, j = i+1, j-1 {
		missing[i], missing[j] = missing[j], missing[i]
	}

	return missing
}
