package output

import (
	"encoding/json"
	"io"
	"os"
	"time"

	"github.com/sdejongh/mergetree/pkg/models"
)

// JSONFormatter emits a single machine-readable document describing the
// merge outcome, for automation and scripting
type JSONFormatter struct {
	writer io.Writer
}

// JSONConflictData represents one conflict in JSON output
type JSONConflictData struct {
	Path          string `json:"path"`
	Kind          string `json:"kind"`
	IsBinary      bool   `json:"is_binary"`
	MarkerWritten bool   `json:"marker_written"`
}

// JSONStatsData represents merge statistics in JSON output
type JSONStatsData struct {
	FilesCompared   int     `json:"files_compared"`
	Unchanged       int     `json:"unchanged"`
	AutoMerged      int     `json:"auto_merged"`
	Conflicts       int     `json:"conflicts"`
	BinaryConflicts int     `json:"binary_conflicts"`
	FilesWritten    int     `json:"files_written"`
	MarkersWritten  int     `json:"markers_written"`
	FilesRolledBack int     `json:"files_rolled_back,omitempty"`
	SuccessRate     float64 `json:"success_rate"`
}

// JSONResultData is the top-level JSON document
type JSONResultData struct {
	OperationID string             `json:"operation_id,omitempty"`
	Status      string             `json:"status"`
	Success     bool               `json:"success"`
	OutputDir   string             `json:"output_dir"`
	Duration    string             `json:"duration"`
	DurationMs  int64              `json:"duration_ms"`
	AutoMerged  []string           `json:"auto_merged,omitempty"`
	Conflicts   []JSONConflictData `json:"conflicts,omitempty"`
	Error       string             `json:"error,omitempty"`
	Stats       JSONStatsData      `json:"stats"`
}

// NewJSONFormatter creates a new JSON formatter
func NewJSONFormatter() *JSONFormatter {
	return &JSONFormatter{}
}

// Start initializes the formatter
func (f *JSONFormatter) Start(writer io.Writer, totalFiles int) error {
	if writer == nil {
		writer = os.Stdout
	}
	f.writer = writer
	return nil
}

// Progress is silent; JSON output is a single terminal document
func (f *JSONFormatter) Progress(update ProgressUpdate) error {
	return nil
}

// Complete writes the result document
func (f *JSONFormatter) Complete(result *models.MergeResult) error {
	if f.writer == nil {
		f.writer = os.Stdout
	}

	doc := JSONResultData{
		OperationID: result.OperationID,
		Status:      string(result.Status),
		Success:     result.Success,
		OutputDir:   result.OutputDir,
		Duration:    result.Duration.Round(time.Millisecond).String(),
		DurationMs:  result.Duration.Milliseconds(),
		AutoMerged:  result.AutoMerged,
		Error:       result.ErrorMessage(),
		Stats: JSONStatsData{
			FilesCompared:   result.Stats.FilesCompared,
			Unchanged:       result.Stats.Unchanged,
			AutoMerged:      result.Stats.AutoMerged,
			Conflicts:       result.Stats.Conflicts,
			BinaryConflicts: result.Stats.BinaryConflicts,
			FilesWritten:    result.Stats.FilesWritten,
			MarkersWritten:  result.Stats.MarkersWritten,
			FilesRolledBack: result.Stats.FilesRolledBack,
			SuccessRate:     result.Stats.SuccessRate,
		},
	}

	for _, c := range result.Conflicts {
		doc.Conflicts = append(doc.Conflicts, JSONConflictData{
			Path:          c.Path,
			Kind:          string(c.Kind),
			IsBinary:      c.IsBinary,
			MarkerWritten: c.MarkerWritten,
		})
	}

	encoder := json.NewEncoder(f.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(doc)
}

// Error is folded into the final document
func (f *JSONFormatter) Error(err error) error {
	return nil
}

// Name returns the formatter name
func (f *JSONFormatter) Name() string {
	return "json"
}
