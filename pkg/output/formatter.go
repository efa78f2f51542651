package output

import (
	"io"

	"github.com/sdejongh/mergetree/pkg/models"
)

// ProgressUpdate represents a progress notification during a merge
type ProgressUpdate struct {
	Type        string // "file_start", "file_complete", "file_error"
	FilePath    string
	CurrentFile int
	Error       error
}

// Formatter defines the interface for merge output formatting.
// Implementations include human-readable, JSON and progress-bar
// formatters.
type Formatter interface {
	// Start initializes the formatter for a new merge operation
	Start(writer io.Writer, totalFiles int) error

	// Progress reports per-file progress during the write phase
	Progress(update ProgressUpdate) error

	// Complete finalizes output and displays the result summary
	Complete(result *models.MergeResult) error

	// Error reports a failure during the merge
	Error(err error) error

	// Name returns the formatter name
	Name() string
}
