package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/sdejongh/mergetree/pkg/merge"
	"github.com/sdejongh/mergetree/pkg/output"
)

// MergeFlags holds merge command flags
type MergeFlags struct {
	Base         string
	Local        string
	Remote       string
	Output       string
	Ignore       []string
	Workers      int
	Bandwidth    string
	Format       string
	Report       string
	ReportFormat string
	// Logging flags
	LogFile   string
	LogFormat string
	LogLevel  string
}

var mergeFlags MergeFlags

// NewMergeCommand creates the merge command
func NewMergeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "merge",
		Short: "Three-way merge of directory trees",
		Long: `Merge two divergent directory trees against their common ancestor.
Identical and cleanly-diverged files are merged automatically; conflicting
text files receive embedded conflict markers in the output tree.`,
		RunE: runMerge,
	}

	// Required flags
	cmd.Flags().StringVarP(&mergeFlags.Output, "output", "o", "", "output directory for the merged tree (required)")
	cmd.MarkFlagRequired("output")

	// Tree flags
	cmd.Flags().StringVarP(&mergeFlags.Base, "base", "B", "", "common ancestor directory (empty = no ancestor)")
	cmd.Flags().StringVarP(&mergeFlags.Local, "local", "L", "", "local directory")
	cmd.Flags().StringVarP(&mergeFlags.Remote, "remote", "R", "", "remote directory")

	// Optional flags
	cmd.Flags().StringSliceVar(&mergeFlags.Ignore, "ignore", []string{}, "glob patterns to ignore")
	cmd.Flags().IntVarP(&mergeFlags.Workers, "workers", "p", 0, "number of parallel workers (default: 5)")
	cmd.Flags().StringVarP(&mergeFlags.Bandwidth, "bandwidth", "b", "", "read bandwidth limit (e.g., \"10M\", \"1G\")")
	cmd.Flags().StringVarP(&mergeFlags.Format, "format", "f", "human", "output format: human, json")
	cmd.Flags().StringVar(&mergeFlags.Report, "report", "", "write conflict report to file")
	cmd.Flags().StringVar(&mergeFlags.ReportFormat, "report-format", "human", "conflict report format: human, json")

	// Logging flags
	cmd.Flags().StringVar(&mergeFlags.LogFile, "log-file", "", "write logs to file (enables logging)")
	cmd.Flags().StringVar(&mergeFlags.LogFormat, "log-format", "text", "log format: text, json")
	cmd.Flags().StringVar(&mergeFlags.LogLevel, "log-level", "info", "log level: debug, info, warn, error")

	return cmd
}

func runMerge(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	// Validate flags
	if err := validateMergeFlags(); err != nil {
		return err
	}

	// Load configuration
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Override config with command-line flags
	applyFlagsToConfig(cfg)

	// Create merge operation
	operation, err := createMergeOperation(cfg)
	if err != nil {
		return fmt.Errorf("failed to create merge operation: %w", err)
	}

	// Create output formatter
	var formatter output.Formatter
	switch mergeFlags.Format {
	case "json":
		formatter = output.NewJSONFormatter()
	default:
		if cfg.Output.Progress {
			formatter = output.NewProgressFormatter()
		} else {
			formatter = output.NewHumanFormatter()
		}
	}

	// Create logger
	logger, err := createLogger(mergeFlags.LogFile, mergeFlags.LogFormat, mergeFlags.LogLevel)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer logger.Close()

	// Create merge executor
	executor := merge.NewExecutor(operation, formatter, logger)

	// Run merge
	result, err := executor.Merge(ctx)
	if err != nil {
		return fmt.Errorf("merge failed: %w", err)
	}

	// Write conflict report if requested
	if mergeFlags.Report != "" {
		if err := output.WriteConflictReport(result, mergeFlags.Report, mergeFlags.ReportFormat); err != nil {
			return fmt.Errorf("failed to write conflict report: %w", err)
		}
	}

	// Exit with appropriate code
	os.Exit(result.Status.ExitCode())
	return nil
}
