package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sdejongh/mergetree/pkg/config"
	"github.com/sdejongh/mergetree/pkg/logging"
	"github.com/sdejongh/mergetree/pkg/models"
)

// validateMergeFlags validates the merge command flags
func validateMergeFlags() error {
	// At least one side must be present
	if mergeFlags.Local == "" && mergeFlags.Remote == "" {
		return fmt.Errorf("at least one of --local or --remote is required")
	}

	// Input directories must exist when specified
	for _, tree := range []struct {
		name string
		path string
	}{
		{"base", mergeFlags.Base},
		{"local", mergeFlags.Local},
		{"remote", mergeFlags.Remote},
	} {
		if tree.path == "" {
			continue
		}
		info, err := os.Stat(tree.path)
		if os.IsNotExist(err) {
			// Missing roots are legal: the tree is treated as empty
			continue
		}
		if err != nil {
			return fmt.Errorf("failed to access %s path: %w", tree.name, err)
		}
		if !info.IsDir() {
			return fmt.Errorf("%s path exists but is not a directory: %s", tree.name, tree.path)
		}
	}

	// Output must not be one of the input trees
	outputAbs, err := filepath.Abs(mergeFlags.Output)
	if err != nil {
		return fmt.Errorf("failed to resolve output path: %w", err)
	}

	for _, tree := range []struct {
		name string
		path string
	}{
		{"base", mergeFlags.Base},
		{"local", mergeFlags.Local},
		{"remote", mergeFlags.Remote},
	} {
		if tree.path == "" {
			continue
		}
		treeAbs, err := filepath.Abs(tree.path)
		if err != nil {
			return fmt.Errorf("failed to resolve %s path: %w", tree.name, err)
		}
		if treeAbs == outputAbs {
			return fmt.Errorf("output cannot be the same as the %s directory: %s", tree.name, treeAbs)
		}
		if strings.HasPrefix(outputAbs, treeAbs+string(filepath.Separator)) {
			return fmt.Errorf("output cannot be inside the %s directory", tree.name)
		}
	}

	// Validate output format
	validFormats := map[string]bool{
		"human": true,
		"json":  true,
	}
	if !validFormats[mergeFlags.Format] {
		return fmt.Errorf("invalid output format: %s (valid: human, json)", mergeFlags.Format)
	}

	// Validate report format
	validReportFormats := map[string]bool{
		"human": true,
		"json":  true,
	}
	if !validReportFormats[mergeFlags.ReportFormat] {
		return fmt.Errorf("invalid report format: %s (valid: human, json)", mergeFlags.ReportFormat)
	}

	return nil
}

// loadConfig loads configuration from file or returns default
func loadConfig() (*config.Config, error) {
	if globalFlags.ConfigFile != "" {
		return config.LoadFromFile(globalFlags.ConfigFile)
	}
	return config.LoadDefault()
}

// applyFlagsToConfig overrides config values with command-line flags
func applyFlagsToConfig(cfg *config.Config) {
	// Parallel workers (default: 5)
	if mergeFlags.Workers > 0 {
		cfg.Performance.MaxWorkers = mergeFlags.Workers
	} else if cfg.Performance.MaxWorkers == 0 {
		cfg.Performance.MaxWorkers = 5
	}

	// Bandwidth limit
	if mergeFlags.Bandwidth != "" {
		if limit, err := parseBandwidth(mergeFlags.Bandwidth); err == nil {
			cfg.Performance.BandwidthLimit = limit
		}
	}

	// Ignore patterns
	if len(mergeFlags.Ignore) > 0 {
		cfg.Ignore = mergeFlags.Ignore
	}

	// Output format
	if mergeFlags.Format != "" {
		cfg.Output.Format = mergeFlags.Format
	}

	// Disable progress in quiet mode
	if globalFlags.Quiet {
		cfg.Output.Progress = false
		cfg.Output.Quiet = true
	}

	// Enable progress in verbose mode
	if globalFlags.Verbose {
		cfg.Output.Progress = true
	}
}

// createMergeOperation creates a merge operation from configuration
func createMergeOperation(cfg *config.Config) (*models.MergeOperation, error) {
	operation := &models.MergeOperation{
		ID:             uuid.New().String(),
		BaseDir:        mergeFlags.Base,
		LocalDir:       mergeFlags.Local,
		RemoteDir:      mergeFlags.Remote,
		OutputDir:      mergeFlags.Output,
		IgnorePatterns: cfg.Ignore,
		MaxWorkers:     cfg.Performance.MaxWorkers,
		BufferSize:     cfg.Performance.BufferSize,
		BandwidthLimit: cfg.Performance.BandwidthLimit,
		CreatedAt:      time.Now(),
	}

	if err := operation.Validate(); err != nil {
		return nil, err
	}

	return operation, nil
}

// createLogger creates a logger based on configuration
func createLogger(logFile, logFormat, logLevel string) (logging.Logger, error) {
	// If no log file specified, return null logger
	if logFile == "" {
		return logging.NewNullLogger(), nil
	}

	// Parse log format
	var format logging.Format
	switch logFormat {
	case "json":
		format = logging.FormatJSON
	default:
		format = logging.FormatText
	}

	return logging.NewFileLogger(logging.FileLoggerConfig{
		Path:   logFile,
		Format: format,
		Level:  logging.ParseLevel(logLevel),
	})
}

// parseBandwidth parses a human-friendly rate like "10M" or "1G" into
// bytes per second
func parseBandwidth(value string) (int64, error) {
	value = strings.TrimSpace(strings.ToUpper(value))
	if value == "" {
		return 0, fmt.Errorf("empty bandwidth value")
	}

	multiplier := int64(1)
	switch {
	case strings.HasSuffix(value, "K"):
		multiplier = 1024
		value = strings.TrimSuffix(value, "K")
	case strings.HasSuffix(value, "M"):
		multiplier = 1024 * 1024
		value = strings.TrimSuffix(value, "M")
	case strings.HasSuffix(value, "G"):
		multiplier = 1024 * 1024 * 1024
		value = strings.TrimSuffix(value, "G")
	}

	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid bandwidth value: %w", err)
	}
	if n < 0 {
		return 0, fmt.Errorf("bandwidth cannot be negative")
	}

	return n * multiplier, nil
}
