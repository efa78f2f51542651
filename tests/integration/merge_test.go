package integration

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sdejongh/mergetree/pkg/merge"
	"github.com/sdejongh/mergetree/pkg/models"
)

// TestHelper provides utilities for integration tests
type TestHelper struct {
	t         *testing.T
	baseDir   string
	localDir  string
	remoteDir string
	outputDir string
}

// NewTestHelper creates a new integration test helper
func NewTestHelper(t *testing.T) *TestHelper {
	t.Helper()

	tempDir := t.TempDir()

	h := &TestHelper{
		t:         t,
		baseDir:   filepath.Join(tempDir, "base"),
		localDir:  filepath.Join(tempDir, "local"),
		remoteDir: filepath.Join(tempDir, "remote"),
		outputDir: filepath.Join(tempDir, "output"),
	}

	for _, dir := range []string{h.baseDir, h.localDir, h.remoteDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			t.Fatalf("failed to create dir: %v", err)
		}
	}

	return h
}

// CreateFile creates a file in one of the trees
func (h *TestHelper) CreateFile(dir, relPath, content string) {
	h.t.Helper()

	fullPath := filepath.Join(dir, relPath)
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		h.t.Fatalf("failed to create dir: %v", err)
	}
	if err := os.WriteFile(fullPath, []byte(content), 0644); err != nil {
		h.t.Fatalf("failed to create file: %v", err)
	}
}

// CreateEverywhere creates the same file in base, local and remote
func (h *TestHelper) CreateEverywhere(relPath, content string) {
	h.CreateFile(h.baseDir, relPath, content)
	h.CreateFile(h.localDir, relPath, content)
	h.CreateFile(h.remoteDir, relPath, content)
}

// Merge runs a full merge and returns the result
func (h *TestHelper) Merge(ignorePatterns []string) *models.MergeResult {
	h.t.Helper()

	operation := &models.MergeOperation{
		ID:             "integration-test",
		BaseDir:        h.baseDir,
		LocalDir:       h.localDir,
		RemoteDir:      h.remoteDir,
		OutputDir:      h.outputDir,
		IgnorePatterns: ignorePatterns,
		MaxWorkers:     5,
		BufferSize:     65536,
		CreatedAt:      time.Now(),
	}

	executor := merge.NewExecutor(operation, nil, nil)
	result, err := executor.Merge(context.Background())
	if err != nil {
		h.t.Fatalf("Merge() error = %v", err)
	}
	return result
}

// ReadOutput reads a file from the output tree
func (h *TestHelper) ReadOutput(relPath string) string {
	h.t.Helper()

	data, err := os.ReadFile(filepath.Join(h.outputDir, relPath))
	if err != nil {
		h.t.Fatalf("failed to read output %s: %v", relPath, err)
	}
	return string(data)
}

// OutputMissing reports whether a path is absent from the output tree
func (h *TestHelper) OutputMissing(relPath string) bool {
	_, err := os.Stat(filepath.Join(h.outputDir, relPath))
	return os.IsNotExist(err)
}

// TestEndToEndMerge exercises a realistic tree with every classification
// outcome in a single merge
func TestEndToEndMerge(t *testing.T) {
	h := NewTestHelper(t)

	// Unchanged everywhere
	h.CreateEverywhere("docs/readme.md", "# Readme\n")

	// Local-only edit
	h.CreateFile(h.baseDir, "src/app.go", "package app\n")
	h.CreateFile(h.localDir, "src/app.go", "package app // improved\n")
	h.CreateFile(h.remoteDir, "src/app.go", "package app\n")

	// Remote-only edit
	h.CreateFile(h.baseDir, "src/util.go", "package util\n")
	h.CreateFile(h.localDir, "src/util.go", "package util\n")
	h.CreateFile(h.remoteDir, "src/util.go", "package util // fixed\n")

	// Divergent edit
	h.CreateFile(h.baseDir, "config.yaml", "workers: 1\n")
	h.CreateFile(h.localDir, "config.yaml", "workers: 2\n")
	h.CreateFile(h.remoteDir, "config.yaml", "workers: 3\n")

	// Remote deletion of an untouched file
	h.CreateFile(h.baseDir, "legacy.txt", "old\n")
	h.CreateFile(h.localDir, "legacy.txt", "old\n")

	// Local addition
	h.CreateFile(h.localDir, "new-feature.go", "package feature\n")

	// Noise that must be ignored
	h.CreateFile(h.localDir, "scratch.tmp", "x\n")

	result := h.Merge([]string{"*.tmp"})

	if result.Status != models.StatusConflicts {
		t.Fatalf("Status = %s, want conflicts", result.Status)
	}

	if got := h.ReadOutput("src/app.go"); got != "package app // improved\n" {
		t.Errorf("src/app.go = %q", got)
	}
	if got := h.ReadOutput("src/util.go"); got != "package util // fixed\n" {
		t.Errorf("src/util.go = %q", got)
	}
	if got := h.ReadOutput("new-feature.go"); got != "package feature\n" {
		t.Errorf("new-feature.go = %q", got)
	}

	if !h.OutputMissing("legacy.txt") {
		t.Error("legacy.txt was deleted remotely and must not appear in output")
	}
	if !h.OutputMissing("scratch.tmp") {
		t.Error("scratch.tmp should have been ignored")
	}

	marker := h.ReadOutput("config.yaml")
	for _, section := range []string{
		"<<<<<<< LOCAL (current)",
		"workers: 2",
		"||||||| BASE (common ancestor)",
		"workers: 1",
		"=======",
		"workers: 3",
		">>>>>>> REMOTE (incoming)",
	} {
		if !strings.Contains(marker, section) {
			t.Errorf("config.yaml marker missing %q:\n%s", section, marker)
		}
	}

	if len(result.Conflicts) != 1 {
		t.Errorf("Conflicts = %d, want 1", len(result.Conflicts))
	}
	if result.Stats.AutoMerged != 4 {
		t.Errorf("AutoMerged = %d, want 4", result.Stats.AutoMerged)
	}
	if result.Stats.Unchanged != 1 {
		t.Errorf("Unchanged = %d, want 1", result.Stats.Unchanged)
	}
}

// TestMergeIdempotentClassification verifies that rerunning the same
// merge into a fresh output yields the same outcome
func TestMergeIdempotentClassification(t *testing.T) {
	h := NewTestHelper(t)

	h.CreateFile(h.baseDir, "f.txt", "1\n")
	h.CreateFile(h.localDir, "f.txt", "2\n")
	h.CreateFile(h.remoteDir, "f.txt", "3\n")

	first := h.Merge(nil)
	firstMarker := h.ReadOutput("f.txt")

	// Fresh output directory, same inputs
	h.outputDir = filepath.Join(t.TempDir(), "output2")
	second := h.Merge(nil)
	secondMarker := h.ReadOutput("f.txt")

	if first.Status != second.Status {
		t.Errorf("statuses diverge: %s vs %s", first.Status, second.Status)
	}
	if firstMarker != secondMarker {
		t.Error("conflict markers must be byte-identical across reruns")
	}
}

// TestLargeTreePerformance merges 500 files with roughly 30% overlapping
// changes and checks the whole cycle stays well under the 5 second target
func TestLargeTreePerformance(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping performance test in short mode")
	}

	h := NewTestHelper(t)

	const fileCount = 500
	for i := 0; i < fileCount; i++ {
		relPath := fmt.Sprintf("dir%02d/file%03d.txt", i%20, i)
		content := fmt.Sprintf("content of file %d\n", i)

		h.CreateFile(h.baseDir, relPath, content)

		switch {
		case i%10 < 2: // 20%: local edit
			h.CreateFile(h.localDir, relPath, content+"local change\n")
			h.CreateFile(h.remoteDir, relPath, content)
		case i%10 == 2: // 10%: divergent edit
			h.CreateFile(h.localDir, relPath, content+"local side\n")
			h.CreateFile(h.remoteDir, relPath, content+"remote side\n")
		default: // 70%: untouched
			h.CreateFile(h.localDir, relPath, content)
			h.CreateFile(h.remoteDir, relPath, content)
		}
	}

	start := time.Now()
	result := h.Merge(nil)
	elapsed := time.Since(start)

	if elapsed > 5*time.Second {
		t.Errorf("merge took %v, want under 5s", elapsed)
	}

	if result.Stats.FilesCompared != fileCount {
		t.Errorf("FilesCompared = %d, want %d", result.Stats.FilesCompared, fileCount)
	}
	if result.Stats.Conflicts != fileCount/10 {
		t.Errorf("Conflicts = %d, want %d", result.Stats.Conflicts, fileCount/10)
	}
	if result.Stats.AutoMerged != fileCount/5 {
		t.Errorf("AutoMerged = %d, want %d", result.Stats.AutoMerged, fileCount/5)
	}

	t.Logf("merged %d files in %v (%d auto, %d conflicts)",
		fileCount, elapsed, result.Stats.AutoMerged, result.Stats.Conflicts)
}

// TestMergeWithoutAncestor merges two trees that never shared a base
func TestMergeWithoutAncestor(t *testing.T) {
	h := NewTestHelper(t)

	// Base stays empty
	h.CreateFile(h.localDir, "ours.txt", "ours\n")
	h.CreateFile(h.remoteDir, "theirs.txt", "theirs\n")
	h.CreateFile(h.localDir, "shared.txt", "identical\n")
	h.CreateFile(h.remoteDir, "shared.txt", "identical\n")
	h.CreateFile(h.localDir, "clash.txt", "mine\n")
	h.CreateFile(h.remoteDir, "clash.txt", "yours\n")

	result := h.Merge(nil)

	if result.Status != models.StatusConflicts {
		t.Fatalf("Status = %s, want conflicts", result.Status)
	}
	if got := h.ReadOutput("ours.txt"); got != "ours\n" {
		t.Errorf("ours.txt = %q", got)
	}
	if got := h.ReadOutput("theirs.txt"); got != "theirs\n" {
		t.Errorf("theirs.txt = %q", got)
	}
	if got := h.ReadOutput("shared.txt"); got != "identical\n" {
		t.Errorf("shared.txt = %q", got)
	}

	if len(result.Conflicts) != 1 {
		t.Fatalf("Conflicts = %d, want 1", len(result.Conflicts))
	}
	if result.Conflicts[0].Kind != models.KindAddAdd {
		t.Errorf("Kind = %s, want add-add", result.Conflicts[0].Kind)
	}

	marker := h.ReadOutput("clash.txt")
	if !strings.Contains(marker, "(file did not exist)") {
		t.Error("add-add marker should show the absent-base placeholder")
	}
}
