package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/sdejongh/mergetree/pkg/models"
)

// WriteConflictReport writes a standalone report of unresolved
// conflicts to a file. Format can be "human" or "json". No file is
// created when the merge was clean.
func WriteConflictReport(result *models.MergeResult, path string, format string) error {
	if len(result.Conflicts) == 0 {
		return nil
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create report file: %w", err)
	}
	defer file.Close()

	switch format {
	case "json":
		return writeConflictReportJSON(result, file)
	default: // "human"
		return writeConflictReportHuman(result, file)
	}
}

// writeConflictReportHuman writes conflicts grouped by kind
func writeConflictReportHuman(result *models.MergeResult, w io.Writer) error {
	fmt.Fprintf(w, "Conflict Report\n")
	fmt.Fprintf(w, "===============\n\n")
	fmt.Fprintf(w, "Generated: %s\n", time.Now().Format(time.RFC3339))
	fmt.Fprintf(w, "Output: %s\n", result.OutputDir)
	fmt.Fprintf(w, "Status: %s\n\n", result.Status)
	fmt.Fprintf(w, "Total Conflicts: %d\n\n", len(result.Conflicts))

	byKind := make(map[models.ConflictKind][]models.ConflictRecord)
	for _, c := range result.Conflicts {
		kind := c.Kind.Normalize()
		byKind[kind] = append(byKind[kind], c)
	}

	kindOrder := []models.ConflictKind{
		models.KindContent,
		models.KindDeletion,
		models.KindAddAdd,
	}

	kindLabels := map[models.ConflictKind]string{
		models.KindContent:  "Content Conflicts",
		models.KindDeletion: "Deletion Conflicts",
		models.KindAddAdd:   "Add-Add Conflicts",
	}

	for _, kind := range kindOrder {
		conflicts, exists := byKind[kind]
		if !exists || len(conflicts) == 0 {
			continue
		}

		label := fmt.Sprintf("%s (%d files)", kindLabels[kind], len(conflicts))
		fmt.Fprintf(w, "%s\n", label)
		fmt.Fprintf(w, "%s\n", strings.Repeat("-", len(label)))

		for _, c := range conflicts {
			fmt.Fprintf(w, "  %s\n", c.Path)
			if c.IsBinary {
				fmt.Fprintf(w, "    Binary: resolve by choosing a side manually\n")
			} else if c.MarkerWritten {
				fmt.Fprintf(w, "    Markers embedded in output file\n")
			}
			fmt.Fprintf(w, "\n")
		}

		fmt.Fprintf(w, "\n")
	}

	return nil
}

// writeConflictReportJSON writes conflicts in JSON format
func writeConflictReportJSON(result *models.MergeResult, w io.Writer) error {
	doc := struct {
		Generated  string             `json:"generated"`
		OutputDir  string             `json:"output_dir"`
		Status     string             `json:"status"`
		TotalCount int                `json:"total_count"`
		Conflicts  []JSONConflictData `json:"conflicts"`
	}{
		Generated:  time.Now().Format(time.RFC3339),
		OutputDir:  result.OutputDir,
		Status:     string(result.Status),
		TotalCount: len(result.Conflicts),
	}

	for _, c := range result.Conflicts {
		doc.Conflicts = append(doc.Conflicts, JSONConflictData{
			Path:          c.Path,
			Kind:          string(c.Kind),
			IsBinary:      c.IsBinary,
			MarkerWritten: c.MarkerWritten,
		})
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(doc)
}
