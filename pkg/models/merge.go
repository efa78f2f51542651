package models

import (
	"time"
)

// MergeStatus represents the overall result of a merge attempt
type MergeStatus string

const (
	// StatusClean indicates every path was merged automatically
	StatusClean MergeStatus = "clean"
	// StatusConflicts indicates the output tree is complete but contains
	// unresolved conflicts
	StatusConflicts MergeStatus = "conflicts"
	// StatusFailed indicates an I/O failure; the output directory was
	// rolled back to its prior state
	StatusFailed MergeStatus = "failed"
	// StatusCancelled indicates the caller cancelled the merge; partial
	// writes were rolled back
	StatusCancelled MergeStatus = "cancelled"
)

// ExitCode returns the appropriate process exit code for the status
func (s MergeStatus) ExitCode() int {
	switch s {
	case StatusClean:
		return 0
	case StatusConflicts:
		return 1
	case StatusFailed:
		return 2
	case StatusCancelled:
		return 3
	default:
		return 2
	}
}

// MergeStats extends the diff metrics with write-phase counters
type MergeStats struct {
	DiffStats

	// FilesWritten is the number of files materialized in the output tree
	FilesWritten int

	// MarkersWritten is the number of textual conflict marker files written
	MarkersWritten int

	// FilesRolledBack is the number of files removed after a failure
	FilesRolledBack int

	// SuccessRate is AutoMerged / FilesCompared (0 when nothing compared)
	SuccessRate float64
}

// MergeResult is the terminal artifact of a merge invocation. The engine
// does not persist it; promotion of the output directory into durable
// storage is the caller's responsibility.
type MergeResult struct {
	// OperationID identifies the merge invocation
	OperationID string

	// Success is true iff no conflicts remain and no error occurred
	Success bool

	// Status is the overall outcome category
	Status MergeStatus

	// OutputDir is the directory the merged tree was written to
	OutputDir string

	// AutoMerged lists the relative paths resolved automatically
	AutoMerged []string

	// Conflicts is the full conflict list, annotated with MarkerWritten
	Conflicts []ConflictRecord

	// Err is set on any I/O failure; Success is forced false
	Err error

	// Timing
	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration

	// Stats are the aggregate merge metrics
	Stats MergeStats
}

// ErrorMessage returns the failure text, or empty when the merge
// completed without an I/O error
func (r *MergeResult) ErrorMessage() string {
	if r.Err == nil {
		return ""
	}
	return r.Err.Error()
}
