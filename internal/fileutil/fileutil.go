// Package fileutil provides file and path helpers shared by the exporter and CLI.
package fileutil

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// Sentinel errors for file utility operations.
var (
	ErrEmptyPath    = errors.New("path cannot be empty")
	ErrNotDirectory = errors.New("path exists but is not a directory")
)

// FileExists returns true if the path exists and is a regular file.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// IsFilePath returns true if the string looks like a file path rather than a name.
// A string containing path separators (/, \) or ending in .css is treated as a path.
//
// Examples:
//   - "default" -> false (name)
//   - "./custom.css" -> true (relative path)
//   - "print.css" -> true (file in current directory)
//   - "/absolute/path.css" -> true (absolute)
//   - "C:\styles\print.css" -> true (Windows)
func IsFilePath(s string) bool {
	return strings.ContainsAny(s, "/\\") || strings.EqualFold(filepath.Ext(s), ".css")
}

// IsURL returns true if the string looks like an http(s) URL.
func IsURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// BaseName returns the file name of path without its directory and extension.
// "docs/report.md" -> "report", "archive.tar.gz" -> "archive.tar".
func BaseName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// EnsureDir creates dir and any missing parents. An empty dir means the
// current directory and is a no-op. An existing directory is not an error.
func EnsureDir(dir string, perm os.FileMode) error {
	if dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, perm); err != nil {
		return err
	}
	info, err := os.Stat(dir)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s", ErrNotDirectory, dir)
	}
	return nil
}

// FileURL converts a local path to an absolute file:// URL usable by a browser.
// Relative paths are resolved against the working directory.
func FileURL(path string) (string, error) {
	if path == "" {
		return "", ErrEmptyPath
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolving %q: %w", path, err)
	}
	p := filepath.ToSlash(abs)
	// Windows drive paths ("C:/x") need a leading slash to form "file:///C:/x".
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	u := url.URL{Scheme: "file", Path: p}
	return u.String(), nil
}
