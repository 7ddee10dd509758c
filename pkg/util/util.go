// Package util holds small path and string helpers shared by the CLI layers.
package util

import (
	"path/filepath"
	"strings"
)

// OutputPathFor maps an input path, relative to the directory being
// converted, to its CSV path under outputDir. The input extension is
// replaced with ext; inputs without one get ext appended.
func OutputPathFor(relPath, outputDir, ext string) string {
	if relPath == "" || relPath == "." {
		return ""
	}
	dir, base := filepath.Split(filepath.Clean(relPath))
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	if stem == "" {
		// hidden file such as ".data": keep the whole name
		stem = base
	}
	return filepath.Join(outputDir, dir, stem+ext)
}

// Unescape expands the backslash escapes \t, \n, \r and \\ in s. Other
// backslashes are kept as written, so a Windows path survives.
func Unescape(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' || i+1 == len(s) {
			b.WriteByte(c)
			continue
		}
		switch s[i+1] {
		case 't':
			b.WriteByte('\t')
		case 'n':
			b.WriteByte('\n')
		case 'r':
			b.WriteByte('\r')
		case '\\':
			b.WriteByte('\\')
		default:
			b.WriteByte(c)
			continue
		}
		i++
	}
	return b.String()
}

// MatchesPattern checks if a slash-separated relative path matches a glob
// pattern. A pattern starting with "/" is anchored to the root; any other
// pattern may also match a trailing run of path segments, so "*.tmp.json"
// excludes such files in every subdirectory.
func MatchesPattern(pattern, relPath string) bool {
	pattern = filepath.ToSlash(strings.TrimSpace(pattern))
	relPath = filepath.ToSlash(relPath)
	if pattern == "" || relPath == "" || relPath == "." {
		return false
	}
	if rooted, ok := strings.CutPrefix(pattern, "/"); ok {
		match, _ := filepath.Match(rooted, relPath)
		return match
	}
	parts := strings.Split(relPath, "/")
	for i := range parts {
		if match, _ := filepath.Match(pattern, strings.Join(parts[i:], "/")); match {
			return true
		}
	}
	return false
}
