package merge

import (
	"context"
	"os"
	"sort"
	"sync"

	"github.com/sdejongh/mergetree/pkg/logging"
)

// txLog records every file written and directory created during one
// merge invocation so a failure can be rolled back completely. It is
// owned by the Merge call stack, never shared between invocations, and
// is the single synchronization point of the parallel write phase.
type txLog struct {
	mu    sync.Mutex
	files []string // absolute paths of files written, in write order
	dirs  []string // absolute paths of directories created by this merge
}

func newTxLog() *txLog {
	return &txLog{}
}

// recordFile logs a successfully written file
func (t *txLog) recordFile(path string) {
	t.mu.Lock()
	t.files = append(t.files, path)
	t.mu.Unlock()
}

// recordDir logs a directory created by this invocation
func (t *txLog) recordDir(path string) {
	t.mu.Lock()
	t.dirs = append(t.dirs, path)
	t.mu.Unlock()
}

// fileCount returns the number of files written so far
func (t *txLog) fileCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.files)
}

// rollback deletes every recorded file, then removes created
// directories deepest-first. Directories that still contain
// pre-existing entries are left alone. Returns the number of files
// removed.
func (t *txLog) rollback(ctx context.Context, logger logging.Logger) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	removed := 0
	for _, path := range t.files {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			logger.Warn(ctx, "rollback: failed to remove file", logging.Fields{
				"path":  path,
				"error": err.Error(),
			})
			continue
		}
		removed++
	}
	t.files = nil

	// Deepest paths first so children go before parents
	dirs := make([]string, len(t.dirs))
	copy(dirs, t.dirs)
	sort.Slice(dirs, func(i, j int) bool {
		return len(dirs[i]) > len(dirs[j])
	})

	for _, dir := range dirs {
		// os.Remove refuses non-empty directories, which is exactly the
		// behavior wanted for directories that pre-existed with content
		if err := os.Remove(dir); err != nil && !os.IsNotExist(err) {
			logger.Debug(ctx, "rollback: directory kept", logging.Fields{
				"path": dir,
			})
		}
	}
	t.dirs = nil

	return removed
}
