package diff

import (
	"testing"
)

func TestShouldIgnore(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		patterns []string
		want     bool
	}{
		{"NoPatterns", "file.txt", nil, false},
		{"SimpleGlobMatch", "file.tmp", []string{"*.tmp"}, true},
		{"SimpleGlobNoMatch", "file.txt", []string{"*.tmp"}, false},
		{"GlobMatchesBasename", "deep/nested/file.tmp", []string{"*.tmp"}, true},
		{"DirPatternRoot", ".git/config", []string{".git/"}, true},
		{"DirPatternNested", "src/.git/config", []string{".git/"}, true},
		{"DirPatternExact", ".git", []string{".git/"}, true},
		{"DirPatternNoMatch", "gitlog.txt", []string{".git/"}, false},
		{"PathPattern", "build/output.o", []string{"build/*"}, true},
		{"AnyDepthFile", "a/b/cache", []string{"**/cache"}, true},
		{"AnyDepthGlob", "a/b/old.bak", []string{"**/*.bak"}, true},
		{"AnyDepthNoMatch", "a/b/new.txt", []string{"**/*.bak"}, false},
		{"ExactBasename", "sub/.DS_Store", []string{".DS_Store"}, true},
		{"EmptyPattern", "file.txt", []string{""}, false},
		{"MultiplePatterns", "node_modules/pkg/index.js", []string{"*.tmp", "node_modules/"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := shouldIgnore(tt.path, tt.patterns); got != tt.want {
				t.Errorf("shouldIgnore(%q, %v) = %v, want %v", tt.path, tt.patterns, got, tt.want)
			}
		})
	}
}
