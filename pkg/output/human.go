package output

import (
	"fmt"
	"io"
	"time"

	"github.com/sdejongh/mergetree/pkg/models"
)

// HumanFormatter formats merge results in human-readable format
type HumanFormatter struct {
	writer     io.Writer
	totalFiles int
	startTime  time.Time
}

// NewHumanFormatter creates a new human-readable formatter
func NewHumanFormatter() *HumanFormatter {
	return &HumanFormatter{}
}

// Start initializes the formatter
func (f *HumanFormatter) Start(writer io.Writer, totalFiles int) error {
	f.writer = writer
	f.totalFiles = totalFiles
	f.startTime = time.Now()

	if writer != nil && totalFiles > 0 {
		fmt.Fprintf(writer, "Merging %d changed files\n", totalFiles)
	}

	return nil
}

// Progress reports progress during the write phase
func (f *HumanFormatter) Progress(update ProgressUpdate) error {
	if f.writer == nil {
		return nil
	}

	switch update.Type {
	case "file_complete":
		fmt.Fprintf(f.writer, "[%d/%d] ✓ %s\n",
			update.CurrentFile, f.totalFiles, update.FilePath)

	case "file_error":
		fmt.Fprintf(f.writer, "[%d/%d] ✗ %s: %v\n",
			update.CurrentFile, f.totalFiles, update.FilePath, update.Error)
	}

	return nil
}

// Complete finalizes output and displays the summary
func (f *HumanFormatter) Complete(result *models.MergeResult) error {
	if f.writer == nil {
		f.writer = io.Discard
	}

	fmt.Fprintf(f.writer, "\n")
	fmt.Fprintf(f.writer, "Merge completed in %s\n", result.Duration.Round(time.Millisecond))
	fmt.Fprintf(f.writer, "\n")
	fmt.Fprintf(f.writer, "Summary:\n")
	fmt.Fprintf(f.writer, "  Files compared:     %d\n", result.Stats.FilesCompared)
	fmt.Fprintf(f.writer, "  Unchanged:          %d\n", result.Stats.Unchanged)
	fmt.Fprintf(f.writer, "  Auto-merged:        %d\n", result.Stats.AutoMerged)
	fmt.Fprintf(f.writer, "  Conflicts:          %d\n", result.Stats.Conflicts)
	fmt.Fprintf(f.writer, "  Binary conflicts:   %d\n", result.Stats.BinaryConflicts)
	fmt.Fprintf(f.writer, "  Files written:      %d\n", result.Stats.FilesWritten)
	fmt.Fprintf(f.writer, "  Markers written:    %d\n", result.Stats.MarkersWritten)
	if result.Stats.FilesCompared > 0 {
		fmt.Fprintf(f.writer, "  Auto-merge rate:    %.1f%%\n", result.Stats.SuccessRate*100)
	}

	if len(result.Conflicts) > 0 {
		fmt.Fprintf(f.writer, "\nConflicts requiring manual resolution:\n")
		for _, c := range result.Conflicts {
			detail := string(c.Kind)
			if c.IsBinary {
				detail += ", binary: choose a side manually"
			} else if c.MarkerWritten {
				detail += ", markers embedded"
			}
			fmt.Fprintf(f.writer, "  %s (%s)\n", c.Path, detail)
		}
	}

	fmt.Fprintf(f.writer, "\nStatus: %s\n", result.Status)

	if result.Err != nil {
		fmt.Fprintf(f.writer, "Error: %v\n", result.Err)
		if result.Stats.FilesRolledBack > 0 {
			fmt.Fprintf(f.writer, "Rolled back %d partial writes\n", result.Stats.FilesRolledBack)
		}
	}

	return nil
}

// Error reports an error
func (f *HumanFormatter) Error(err error) error {
	if f.writer != nil {
		fmt.Fprintf(f.writer, "Error: %v\n", err)
	}
	return nil
}

// Name returns the formatter name
func (f *HumanFormatter) Name() string {
	return "human"
}
