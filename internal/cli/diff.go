package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/sdejongh/mergetree/pkg/diff"
	"github.com/sdejongh/mergetree/pkg/models"
	"github.com/sdejongh/mergetree/pkg/storage"
)

// DiffFlags holds diff command flags
type DiffFlags struct {
	Base    string
	Local   string
	Remote  string
	Ignore  []string
	Workers int
	Format  string
	// Logging flags
	LogFile   string
	LogFormat string
	LogLevel  string
}

var diffFlags DiffFlags

// NewDiffCommand creates the diff command
func NewDiffCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "diff",
		Short: "Classify trees without merging",
		Long: `Classify every file in the union of the three trees as unchanged,
auto-mergeable or conflicting, without writing any output tree.`,
		RunE: runDiff,
	}

	cmd.Flags().StringVarP(&diffFlags.Base, "base", "B", "", "common ancestor directory (empty = no ancestor)")
	cmd.Flags().StringVarP(&diffFlags.Local, "local", "L", "", "local directory")
	cmd.Flags().StringVarP(&diffFlags.Remote, "remote", "R", "", "remote directory")
	cmd.Flags().StringSliceVar(&diffFlags.Ignore, "ignore", []string{}, "glob patterns to ignore")
	cmd.Flags().IntVarP(&diffFlags.Workers, "workers", "p", 0, "number of parallel workers (default: 5)")
	cmd.Flags().StringVarP(&diffFlags.Format, "format", "f", "human", "output format: human, json")

	cmd.Flags().StringVar(&diffFlags.LogFile, "log-file", "", "write logs to file (enables logging)")
	cmd.Flags().StringVar(&diffFlags.LogFormat, "log-format", "text", "log format: text, json")
	cmd.Flags().StringVar(&diffFlags.LogLevel, "log-level", "info", "log level: debug, info, warn, error")

	return cmd
}

func runDiff(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if diffFlags.Local == "" && diffFlags.Remote == "" {
		return fmt.Errorf("at least one of --local or --remote is required")
	}

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	ignore := cfg.Ignore
	if len(diffFlags.Ignore) > 0 {
		ignore = diffFlags.Ignore
	}

	opts := diff.DefaultOptions()
	if diffFlags.Workers > 0 {
		opts.MaxWorkers = diffFlags.Workers
	} else if cfg.Performance.MaxWorkers > 0 {
		opts.MaxWorkers = cfg.Performance.MaxWorkers
	}
	if cfg.Performance.BufferSize > 0 {
		opts.BufferSize = cfg.Performance.BufferSize
	}

	baseTree, err := openDiffTree(diffFlags.Base)
	if err != nil {
		return fmt.Errorf("base: %w", err)
	}
	defer baseTree.Close()

	localTree, err := openDiffTree(diffFlags.Local)
	if err != nil {
		return fmt.Errorf("local: %w", err)
	}
	defer localTree.Close()

	remoteTree, err := openDiffTree(diffFlags.Remote)
	if err != nil {
		return fmt.Errorf("remote: %w", err)
	}
	defer remoteTree.Close()

	logger, err := createLogger(diffFlags.LogFile, diffFlags.LogFormat, diffFlags.LogLevel)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer logger.Close()

	differ := diff.NewDiffer(baseTree, localTree, remoteTree, opts, logger)

	result, err := differ.Diff(ctx, ignore)
	if err != nil {
		return fmt.Errorf("diff failed: %w", err)
	}

	switch diffFlags.Format {
	case "json":
		if err := printDiffJSON(result); err != nil {
			return err
		}
	default:
		printDiffHuman(result)
	}

	// Exit 1 when conflicts exist, matching merge semantics
	if result.HasConflicts() {
		os.Exit(1)
	}
	return nil
}

func openDiffTree(dir string) (storage.Tree, error) {
	if dir == "" {
		return storage.NewEmpty(), nil
	}
	return storage.NewLocal(dir)
}

func printDiffHuman(result *models.DiffResult) {
	fmt.Printf("Files compared: %d\n", result.Stats.FilesCompared)
	fmt.Printf("Unchanged:      %d\n", result.Stats.Unchanged)
	fmt.Printf("Auto-mergeable: %d\n", result.Stats.AutoMerged)
	fmt.Printf("Conflicts:      %d\n", result.Stats.Conflicts)

	if len(result.AutoMerges) > 0 {
		fmt.Printf("\nAuto-mergeable files:\n")
		for _, am := range result.AutoMerges {
			fmt.Printf("  %-12s %s\n", am.Strategy.String(), am.Path)
		}
	}

	if len(result.Conflicts) > 0 {
		fmt.Printf("\nConflicting files:\n")
		for _, c := range result.Conflicts {
			note := ""
			if c.IsBinary {
				note = " (binary)"
			}
			fmt.Printf("  %-12s %s%s\n", string(c.Kind), c.Path, note)
		}
	}
}

func printDiffJSON(result *models.DiffResult) error {
	type autoEntry struct {
		Path     string `json:"path"`
		Strategy string `json:"strategy"`
		IsBinary bool   `json:"is_binary"`
	}
	type conflictEntry struct {
		Path     string `json:"path"`
		Kind     string `json:"kind"`
		IsBinary bool   `json:"is_binary"`
	}

	doc := struct {
		FilesCompared int             `json:"files_compared"`
		Unchanged     []string        `json:"unchanged,omitempty"`
		AutoMerges    []autoEntry     `json:"auto_merges,omitempty"`
		Conflicts     []conflictEntry `json:"conflicts,omitempty"`
	}{
		FilesCompared: result.Stats.FilesCompared,
		Unchanged:     result.Unchanged,
	}

	for _, am := range result.AutoMerges {
		doc.AutoMerges = append(doc.AutoMerges, autoEntry{
			Path:     am.Path,
			Strategy: am.Strategy.String(),
			IsBinary: am.IsBinary,
		})
	}
	for _, c := range result.Conflicts {
		doc.Conflicts = append(doc.Conflicts, conflictEntry{
			Path:     c.Path,
			Kind:     string(c.Kind),
			IsBinary: c.IsBinary,
		})
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(doc)
}
