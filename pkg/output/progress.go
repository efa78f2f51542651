package output

import (
	"io"
	"sync"

	"github.com/cheggaaa/pb/v3"

	"github.com/sdejongh/mergetree/pkg/models"
)

// ProgressFormatter renders a progress bar over the merge write phase
// and falls back to the human summary once the merge completes
type ProgressFormatter struct {
	mu      sync.Mutex
	writer  io.Writer
	bar     *pb.ProgressBar
	summary *HumanFormatter
}

// NewProgressFormatter creates a new progress bar formatter
func NewProgressFormatter() *ProgressFormatter {
	return &ProgressFormatter{
		summary: NewHumanFormatter(),
	}
}

// Start initializes the progress bar
func (f *ProgressFormatter) Start(writer io.Writer, totalFiles int) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.writer = writer
	f.summary.Start(writer, 0)

	if totalFiles > 0 {
		f.bar = pb.New(totalFiles)
		if writer != nil {
			f.bar.SetWriter(writer)
		}
		f.bar.Set(pb.Bytes, false)
		f.bar.Start()
	}

	return nil
}

// Progress advances the bar on each completed file
func (f *ProgressFormatter) Progress(update ProgressUpdate) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.bar == nil {
		return nil
	}

	switch update.Type {
	case "file_complete", "file_error":
		f.bar.Increment()
	}

	return nil
}

// Complete stops the bar and prints the human summary
func (f *ProgressFormatter) Complete(result *models.MergeResult) error {
	f.mu.Lock()
	if f.bar != nil {
		f.bar.Finish()
		f.bar = nil
	}
	f.mu.Unlock()

	return f.summary.Complete(result)
}

// Error reports an error below the bar
func (f *ProgressFormatter) Error(err error) error {
	f.mu.Lock()
	if f.bar != nil {
		f.bar.Finish()
		f.bar = nil
	}
	f.mu.Unlock()

	return f.summary.Error(err)
}

// Name returns the formatter name
func (f *ProgressFormatter) Name() string {
	return "progress"
}
