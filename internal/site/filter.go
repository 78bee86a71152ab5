package site

import (
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
)

// Match reports whether relPath is a page that carries the sidebar: it must
// match an include pattern, when there are any, and no exclude pattern.
func Match(relPath string, include, exclude []string) bool {
	if len(include) > 0 && !matchesAny(relPath, include) {
		return false
	}
	return !matchesAny(relPath, exclude)
}

// matchesAny checks if relPath matches any of the given glob patterns. A
// pattern is tried against the whole path and then against the base name,
// so "print.html" excludes that file at any depth.
func matchesAny(relPath string, patterns []string) bool {
	// Normalize to forward slashes for consistent matching.
	normalized := filepath.ToSlash(relPath)
	base := filepath.Base(normalized)

	for _, pattern := range patterns {
		pattern = filepath.ToSlash(pattern)
		if matched, err := doublestar.Match(pattern, normalized); err == nil && matched {
			return true
		}
		if matched, err := doublestar.Match(pattern, base); err == nil && matched {
			return true
		}
	}
	return false
}
