package merge

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/sdejongh/mergetree/pkg/diff"
	"github.com/sdejongh/mergetree/pkg/logging"
	"github.com/sdejongh/mergetree/pkg/models"
	"github.com/sdejongh/mergetree/pkg/output"
	"github.com/sdejongh/mergetree/pkg/ratelimit"
	"github.com/sdejongh/mergetree/pkg/storage"
)

// Executor performs a three-way merge into an output directory. It runs
// the differ, materializes every auto-mergeable path via atomic writes,
// embeds conflict markers for unresolved text conflicts, and rolls back
// all writes of the invocation on any I/O failure.
//
// The executor trusts the differ's classification completely; it never
// re-derives outcomes. Concurrent merges into the same output directory
// are not supported; the caller serializes per artifact.
type Executor struct {
	operation *models.MergeOperation
	logger    logging.Logger
	formatter output.Formatter
	limiter   *ratelimit.Limiter
}

// NewExecutor creates a merge executor. Logger and formatter may be nil.
func NewExecutor(operation *models.MergeOperation, formatter output.Formatter, logger logging.Logger) *Executor {
	if logger == nil {
		logger = logging.NewNullLogger()
	}
	return &Executor{
		operation: operation,
		logger:    logger,
		formatter: formatter,
		limiter:   ratelimit.NewLimiter(operation.BandwidthLimit),
	}
}

// Merge runs the full diff + write cycle. Input and diff errors are
// returned directly with nothing written. Once writes are underway, any
// failure triggers a full rollback and is absorbed into the result's
// Err field instead of being returned, because cleanup must happen
// regardless of how the caller reacts.
func (e *Executor) Merge(ctx context.Context) (*models.MergeResult, error) {
	startTime := time.Now()

	result := &models.MergeResult{
		OperationID: e.operation.ID,
		OutputDir:   e.operation.OutputDir,
		StartTime:   startTime,
	}

	baseTree, localTree, remoteTree, err := e.openTrees()
	if err != nil {
		return nil, err
	}
	defer baseTree.Close()
	defer localTree.Close()
	defer remoteTree.Close()

	opts := diff.Options{
		MaxWorkers: e.operation.MaxWorkers,
		BufferSize: e.operation.BufferSize,
	}
	if e.limiter != nil {
		opts.ReaderWrapper = func(rc io.ReadCloser) io.ReadCloser {
			return ratelimit.NewReadCloser(ctx, rc, e.limiter)
		}
	}

	differ := diff.NewDiffer(baseTree, localTree, remoteTree, opts, e.logger)

	diffResult, err := differ.Diff(ctx, e.operation.IgnorePatterns)
	if err != nil {
		return nil, fmt.Errorf("diff failed: %w", err)
	}

	result.Stats.DiffStats = diffResult.Stats
	result.Conflicts = append(result.Conflicts, diffResult.Conflicts...)

	if e.formatter != nil {
		e.formatter.Start(os.Stdout, len(diffResult.AutoMerges)+len(diffResult.Conflicts))
	}

	txlog := newTxLog()

	if err := ensureDir(e.operation.OutputDir, txlog); err != nil {
		return e.fail(ctx, result, txlog, err), nil
	}

	if err := e.applyAutoMerges(ctx, localTree, remoteTree, diffResult.AutoMerges, txlog, result); err != nil {
		return e.fail(ctx, result, txlog, err), nil
	}

	if err := e.writeConflictMarkers(ctx, txlog, result); err != nil {
		return e.fail(ctx, result, txlog, err), nil
	}

	sort.Strings(result.AutoMerged)
	e.finalize(result)

	if e.formatter != nil {
		e.formatter.Complete(result)
	}

	return result, nil
}

// openTrees builds the three tree views. An empty directory string
// stands for a tree that never existed.
func (e *Executor) openTrees() (base, local, remote storage.Tree, err error) {
	if base, err = openTree(e.operation.BaseDir); err != nil {
		return nil, nil, nil, fmt.Errorf("base: %w", err)
	}
	if local, err = openTree(e.operation.LocalDir); err != nil {
		return nil, nil, nil, fmt.Errorf("local: %w", err)
	}
	if remote, err = openTree(e.operation.RemoteDir); err != nil {
		return nil, nil, nil, fmt.Errorf("remote: %w", err)
	}
	return base, local, remote, nil
}

func openTree(dir string) (storage.Tree, error) {
	if dir == "" {
		return storage.NewEmpty(), nil
	}
	return storage.NewLocal(dir)
}

// applyAutoMerges materializes every auto-mergeable path across a
// bounded worker pool. The transaction log is the only shared mutable
// state; result bookkeeping is mutex-protected.
func (e *Executor) applyAutoMerges(ctx context.Context, localTree, remoteTree storage.Tree, merges []models.AutoMerge, txlog *txLog, result *models.MergeResult) error {
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		firstErr  error
		semaphore = make(chan struct{}, e.operation.MaxWorkers)
	)

	fileNum := 0
	for _, am := range merges {
		select {
		case <-ctx.Done():
			wg.Wait()
			return ctx.Err()
		case semaphore <- struct{}{}:
		}

		mu.Lock()
		aborted := firstErr != nil
		mu.Unlock()
		if aborted {
			<-semaphore
			break
		}

		fileNum++
		wg.Add(1)

		go func(am models.AutoMerge, fileIndex int) {
			defer wg.Done()
			defer func() { <-semaphore }()

			e.progress(output.ProgressUpdate{
				Type:        "file_start",
				FilePath:    am.Path,
				CurrentFile: fileIndex,
			})

			written, err := e.applyOne(ctx, localTree, remoteTree, am, txlog)

			mu.Lock()
			defer mu.Unlock()

			if err != nil {
				if firstErr == nil {
					firstErr = err
				}
				e.progress(output.ProgressUpdate{
					Type:        "file_error",
					FilePath:    am.Path,
					CurrentFile: fileIndex,
					Error:       err,
				})
				return
			}

			result.AutoMerged = append(result.AutoMerged, am.Path)
			if written {
				result.Stats.FilesWritten++
			}
			e.progress(output.ProgressUpdate{
				Type:        "file_complete",
				FilePath:    am.Path,
				CurrentFile: fileIndex,
			})
		}(am, fileNum)
	}

	wg.Wait()

	return firstErr
}

// applyOne resolves a single auto-merge. The strategy switch is
// exhaustive over the closed strategy set; a strategy without a handler
// here is a classifier bug surfaced as an error, never a silent skip.
// Returns whether a file was written (deletion propagation writes
// nothing).
func (e *Executor) applyOne(ctx context.Context, localTree, remoteTree storage.Tree, am models.AutoMerge, txlog *txLog) (bool, error) {
	switch am.Strategy {
	case models.StrategyUseLocal:
		return e.copyFromTree(ctx, localTree, am.Path, txlog)

	case models.StrategyUseRemote:
		return e.copyFromTree(ctx, remoteTree, am.Path, txlog)

	case models.StrategyUseBase:
		// Deletion propagation: remote removed a file local never
		// touched, so the merged tree omits it
		e.logger.Debug(ctx, "deletion propagated", logging.Fields{"path": am.Path})
		return false, nil

	case models.StrategyManual:
		return false, fmt.Errorf("auto-merge entry %s carries manual strategy", am.Path)

	default:
		return false, fmt.Errorf("auto-merge entry %s carries unknown strategy %d", am.Path, am.Strategy)
	}
}

// copyFromTree materializes the chosen side's state for a path: copy
// when the file exists there, omit when that side's state is "deleted"
func (e *Executor) copyFromTree(ctx context.Context, tree storage.Tree, relPath string, txlog *txLog) (bool, error) {
	info, err := tree.Stat(ctx, relPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			// The winning side deleted the file
			return false, nil
		}
		return false, fmt.Errorf("failed to stat %s: %w", relPath, err)
	}

	reader, err := tree.Open(ctx, relPath)
	if err != nil {
		return false, fmt.Errorf("failed to open %s: %w", relPath, err)
	}
	defer reader.Close()

	var src io.Reader = reader
	if e.limiter != nil {
		src = ratelimit.NewReader(ctx, reader, e.limiter)
	}

	destPath := filepath.Join(e.operation.OutputDir, relPath)
	if err := ensureDir(filepath.Dir(destPath), txlog); err != nil {
		return false, err
	}

	perm := os.FileMode(info.Permissions)
	if perm == 0 {
		perm = 0644
	}

	if err := writeFileAtomic(destPath, src, perm); err != nil {
		return false, fmt.Errorf("failed to write %s: %w", relPath, err)
	}

	txlog.recordFile(destPath)
	return true, nil
}

// writeConflictMarkers embeds the three-section conflict block for
// every unresolved text conflict so the output tree stays complete and
// inspectable. Binary conflicts get nothing written; the caller must
// pick a side out-of-band.
func (e *Executor) writeConflictMarkers(ctx context.Context, txlog *txLog, result *models.MergeResult) error {
	for i := range result.Conflicts {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		record := &result.Conflicts[i]

		if record.IsBinary {
			e.logger.Warn(ctx, "binary conflict left unresolved", logging.Fields{
				"path": record.Path,
				"kind": string(record.Kind),
			})
			continue
		}

		destPath := filepath.Join(e.operation.OutputDir, record.Path)
		if err := ensureDir(filepath.Dir(destPath), txlog); err != nil {
			return err
		}

		marker := RenderMarker(record)
		if err := writeFileAtomic(destPath, bytes.NewReader(marker), 0644); err != nil {
			return fmt.Errorf("failed to write conflict marker for %s: %w", record.Path, err)
		}

		txlog.recordFile(destPath)
		record.MarkerWritten = true
		result.Stats.MarkersWritten++
	}

	return nil
}

// fail rolls back every write of this invocation and absorbs the error
// into the result. The output directory is left exactly as it was
// before the merge attempt.
func (e *Executor) fail(ctx context.Context, result *models.MergeResult, txlog *txLog, err error) *models.MergeResult {
	e.logger.Error(ctx, "merge failed, rolling back", err, logging.Fields{
		"output":  e.operation.OutputDir,
		"written": txlog.fileCount(),
	})

	result.Stats.FilesRolledBack = txlog.rollback(ctx, e.logger)
	result.Err = err
	result.Success = false
	result.AutoMerged = nil
	result.Stats.FilesWritten = 0
	result.Stats.MarkersWritten = 0

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		result.Status = models.StatusCancelled
	} else {
		result.Status = models.StatusFailed
	}

	e.finishTiming(result)

	if e.formatter != nil {
		e.formatter.Error(err)
		e.formatter.Complete(result)
	}

	return result
}

// finalize computes the terminal status and statistics of a completed
// (non-failed) merge
func (e *Executor) finalize(result *models.MergeResult) {
	result.Success = len(result.Conflicts) == 0
	if result.Success {
		result.Status = models.StatusClean
	} else {
		result.Status = models.StatusConflicts
	}

	if result.Stats.FilesCompared > 0 {
		result.Stats.SuccessRate = float64(result.Stats.AutoMerged) / float64(result.Stats.FilesCompared)
	}

	e.finishTiming(result)
}

func (e *Executor) finishTiming(result *models.MergeResult) {
	result.EndTime = time.Now()
	result.Duration = result.EndTime.Sub(result.StartTime)
}

func (e *Executor) progress(update output.ProgressUpdate) {
	if e.formatter != nil {
		e.formatter.Progress(update)
	}
}
