package diff

import (
	"path/filepath"
	"strings"
)

// shouldIgnore checks whether a relative path matches any of the given
// ignore patterns. The same pattern semantics apply to all three trees
// so an excluded path never enters classification.
//
// Patterns support:
//   - Simple glob patterns: *.tmp, *.log
//   - Directory patterns: .git/, node_modules/
//   - Path patterns: build/*
//   - Any-depth patterns: **/cache, **/*.bak
func shouldIgnore(relativePath string, patterns []string) bool {
	if len(patterns) == 0 {
		return false
	}

	// Normalize path separators for cross-platform support
	normalizedPath := filepath.ToSlash(relativePath)
	baseName := filepath.Base(relativePath)

	for _, pattern := range patterns {
		if pattern == "" {
			continue
		}

		normalizedPattern := filepath.ToSlash(pattern)

		if strings.HasSuffix(normalizedPattern, "/") {
			if matchDirPattern(normalizedPath, strings.TrimSuffix(normalizedPattern, "/")) {
				return true
			}
			continue
		}

		if strings.Contains(normalizedPattern, "**") {
			if matchAnyDepth(normalizedPath, baseName, normalizedPattern) {
				return true
			}
			continue
		}

		if strings.Contains(normalizedPattern, "/") {
			// Pattern applies to the full path
			if matched, _ := filepath.Match(normalizedPattern, normalizedPath); matched {
				return true
			}
			if strings.HasSuffix(normalizedPath, normalizedPattern) {
				return true
			}
		} else {
			// Pattern applies to the basename only
			if matched, _ := filepath.Match(normalizedPattern, baseName); matched {
				return true
			}
		}
	}

	return false
}

// matchDirPattern reports whether the path lies inside a directory named
// by the pattern, at any depth
func matchDirPattern(path, dir string) bool {
	return path == dir ||
		strings.HasPrefix(path, dir+"/") ||
		strings.Contains(path, "/"+dir+"/")
}

// matchAnyDepth handles **/suffix patterns, matching the suffix against
// the basename, the path tail and each path component
func matchAnyDepth(path, baseName, pattern string) bool {
	parts := strings.Split(pattern, "**/")
	if len(parts) != 2 || parts[0] != "" {
		return false
	}
	suffix := parts[1]

	if matched, _ := filepath.Match(suffix, baseName); matched {
		return true
	}
	if path == suffix || strings.HasSuffix(path, "/"+suffix) {
		return true
	}
	for _, part := range strings.Split(path, "/") {
		if matched, _ := filepath.Match(suffix, part); matched {
			return true
		}
	}
	return false
}
