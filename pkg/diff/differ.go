package diff

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/sdejongh/mergetree/pkg/logging"
	"github.com/sdejongh/mergetree/pkg/models"
	"github.com/sdejongh/mergetree/pkg/storage"
)

// Tree role names used in logs and access errors
const (
	TreeBase   = "base"
	TreeLocal  = "local"
	TreeRemote = "remote"
)

// Options configures a Differ
type Options struct {
	// MaxWorkers bounds the hashing worker pool
	MaxWorkers int

	// BufferSize is the read buffer size for hashing
	BufferSize int

	// ReaderWrapper optionally wraps file readers, e.g. for rate limiting
	ReaderWrapper ReaderWrapper
}

// DefaultOptions returns sensible defaults
func DefaultOptions() Options {
	return Options{
		MaxWorkers: 5,
		BufferSize: 65536,
	}
}

// Differ classifies every path in the union of three directory trees
// into unchanged, auto-mergeable or conflicting. It never writes
// anything; the merge executor consumes its result.
type Differ struct {
	base   storage.Tree
	local  storage.Tree
	remote storage.Tree
	logger logging.Logger
	opts   Options
	hasher *hasher
}

// NewDiffer creates a differ over three tree views. Any tree may be
// rooted at a directory that does not exist; it is then treated as
// empty. A nil logger disables logging.
func NewDiffer(base, local, remote storage.Tree, opts Options, logger logging.Logger) *Differ {
	if opts.MaxWorkers < 1 {
		opts.MaxWorkers = 1
	}
	if logger == nil {
		logger = logging.NewNullLogger()
	}
	return &Differ{
		base:   base,
		local:  local,
		remote: remote,
		logger: logger,
		opts:   opts,
		hasher: newHasher(opts.BufferSize, opts.ReaderWrapper),
	}
}

// Diff walks the three trees and classifies every relative path in
// their union. Ignore patterns are applied identically to all trees.
// An unreadable file aborts the whole invocation; a missing tree root
// does not.
func (d *Differ) Diff(ctx context.Context, ignorePatterns []string) (*models.DiffResult, error) {
	scans, err := d.scanTrees(ctx, ignorePatterns)
	if err != nil {
		return nil, err
	}

	snaps, err := d.snapshotTrees(ctx, scans)
	if err != nil {
		return nil, err
	}

	paths := unionPaths(scans)

	result := &models.DiffResult{}
	result.Stats.FilesCompared = len(paths)

	for _, path := range paths {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		base := snaps[TreeBase][path]
		local := snaps[TreeLocal][path]
		remote := snaps[TreeRemote][path]

		cls := classify(base, local, remote)

		switch cls.class {
		case classUnchanged:
			result.Unchanged = append(result.Unchanged, path)
			result.Stats.Unchanged++

		case classAutoMerge:
			result.AutoMerges = append(result.AutoMerges, models.AutoMerge{
				Path:     path,
				Strategy: cls.strategy,
				IsBinary: cls.isBinary,
			})
			result.Stats.AutoMerged++
			d.logger.Debug(ctx, "path auto-mergeable", logging.Fields{
				"path":     path,
				"strategy": cls.strategy.String(),
			})

		case classConflict:
			record, err := d.buildConflictRecord(path, cls, base, local, remote)
			if err != nil {
				return nil, err
			}
			result.Conflicts = append(result.Conflicts, *record)
			result.Stats.Conflicts++
			if cls.isBinary {
				result.Stats.BinaryConflicts++
			}
			d.logger.Debug(ctx, "path conflicts", logging.Fields{
				"path":   path,
				"kind":   string(cls.kind),
				"binary": cls.isBinary,
			})
		}
	}

	for _, snapMap := range snaps {
		for _, s := range snapMap {
			result.Stats.BytesHashed += s.Size
		}
	}

	d.logger.Info(ctx, "diff complete", logging.Fields{
		"compared":  result.Stats.FilesCompared,
		"unchanged": result.Stats.Unchanged,
		"auto":      result.Stats.AutoMerged,
		"conflicts": result.Stats.Conflicts,
	})

	return result, nil
}

// scanTrees lists all three trees concurrently, applying ignore
// patterns, and returns per-tree maps of relative path to file info.
// Directories are dropped; they are materialized implicitly as parents
// of merged files.
func (d *Differ) scanTrees(ctx context.Context, ignorePatterns []string) (map[string]map[string]storage.FileInfo, error) {
	type scanResult struct {
		name  string
		files map[string]storage.FileInfo
		err   error
	}

	trees := map[string]storage.Tree{
		TreeBase:   d.base,
		TreeLocal:  d.local,
		TreeRemote: d.remote,
	}

	results := make(chan scanResult, len(trees))
	var wg sync.WaitGroup

	for name, tree := range trees {
		wg.Add(1)
		go func(name string, tree storage.Tree) {
			defer wg.Done()

			entries, err := tree.List(ctx)
			if err != nil {
				results <- scanResult{name: name, err: fmt.Errorf("%s tree scan failed: %w", name, err)}
				return
			}

			files := make(map[string]storage.FileInfo)
			for _, entry := range entries {
				if entry.IsDir {
					continue
				}
				if shouldIgnore(entry.RelativePath, ignorePatterns) {
					continue
				}
				files[entry.RelativePath] = entry
			}
			results <- scanResult{name: name, files: files}
		}(name, tree)
	}

	wg.Wait()
	close(results)

	scans := make(map[string]map[string]storage.FileInfo, len(trees))
	for res := range results {
		if res.err != nil {
			return nil, res.err
		}
		scans[res.name] = res.files
	}

	return scans, nil
}

// snapshotTrees hashes every present file across a bounded worker pool
func (d *Differ) snapshotTrees(ctx context.Context, scans map[string]map[string]storage.FileInfo) (map[string]map[string]*models.FileSnapshot, error) {
	trees := map[string]storage.Tree{
		TreeBase:   d.base,
		TreeLocal:  d.local,
		TreeRemote: d.remote,
	}

	snaps := map[string]map[string]*models.FileSnapshot{
		TreeBase:   make(map[string]*models.FileSnapshot),
		TreeLocal:  make(map[string]*models.FileSnapshot),
		TreeRemote: make(map[string]*models.FileSnapshot),
	}

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		firstErr  error
		semaphore = make(chan struct{}, d.opts.MaxWorkers)
	)

	for name, files := range scans {
		tree := trees[name]
		for _, info := range files {
			select {
			case <-ctx.Done():
				wg.Wait()
				return nil, ctx.Err()
			case semaphore <- struct{}{}:
			}

			wg.Add(1)
			go func(name string, tree storage.Tree, info storage.FileInfo) {
				defer wg.Done()
				defer func() { <-semaphore }()

				mu.Lock()
				aborted := firstErr != nil
				mu.Unlock()
				if aborted {
					return
				}

				snap, err := d.hasher.snapshot(ctx, name, tree, info)

				mu.Lock()
				defer mu.Unlock()
				if err != nil {
					if firstErr == nil {
						firstErr = err
					}
					return
				}
				snaps[name][info.RelativePath] = snap
			}(name, tree, info)
		}
	}

	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}

	return snaps, nil
}

// buildConflictRecord materializes the content of each present side so
// the executor can render markers without touching the trees again
func (d *Differ) buildConflictRecord(path string, cls classification, base, local, remote *models.FileSnapshot) (*models.ConflictRecord, error) {
	record := &models.ConflictRecord{
		Path:          path,
		Kind:          cls.kind,
		AutoMergeable: false,
		Strategy:      models.StrategyManual,
		IsBinary:      cls.isBinary,
	}

	var err error
	if base != nil {
		if record.BaseContent, err = base.Content(); err != nil {
			return nil, &models.TreeAccessError{Tree: TreeBase, Path: path, Err: err}
		}
	}
	if local != nil {
		if record.LocalContent, err = local.Content(); err != nil {
			return nil, &models.TreeAccessError{Tree: TreeLocal, Path: path, Err: err}
		}
	}
	if remote != nil {
		if record.RemoteContent, err = remote.Content(); err != nil {
			return nil, &models.TreeAccessError{Tree: TreeRemote, Path: path, Err: err}
		}
	}

	return record, nil
}

// unionPaths collects the sorted union of relative paths across scans
func unionPaths(scans map[string]map[string]storage.FileInfo) []string {
	seen := make(map[string]bool)
	for _, files := range scans {
		for path := range files {
			seen[path] = true
		}
	}

	paths := make([]string, 0, len(seen))
	for path := range seen {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	return paths
}
