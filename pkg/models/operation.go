package models

import (
	"time"
)

// MergeOperation represents a merge invocation configuration
type MergeOperation struct {
	ID             string
	BaseDir        string
	LocalDir       string
	RemoteDir      string
	OutputDir      string
	IgnorePatterns []string
	MaxWorkers     int
	BufferSize     int
	BandwidthLimit int64 // bytes per second, 0 = unlimited
	CreatedAt      time.Time
}

// Validate checks if the operation configuration is valid. The three
// input roots may point at directories that do not exist; only the
// output path is mandatory.
func (op *MergeOperation) Validate() error {
	if op.OutputDir == "" {
		return &ValidationError{Field: "OutputDir", Message: "output path is required"}
	}
	if op.LocalDir == "" && op.RemoteDir == "" {
		return &ValidationError{Field: "LocalDir", Message: "at least one of local or remote is required"}
	}
	if op.MaxWorkers < 1 {
		return &ValidationError{Field: "MaxWorkers", Message: "max workers must be at least 1"}
	}
	if op.BufferSize < 1024 {
		return &ValidationError{Field: "BufferSize", Message: "buffer size must be at least 1024 bytes"}
	}
	return nil
}

// ValidationError represents a validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}
