package pipeline

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// ErrSourceDir is returned when the source directory cannot be listed. It
// is the only error that aborts a run.
var ErrSourceDir = errors.New("source directory unavailable")

// Discover lists the candidate sources in dir, sorted by name. Only regular
// files directly in dir, or symlinks to them, are considered. A file is kept
// when its extension matches one of extensions (case-insensitive) and its
// name contains none of the exclude substrings.
func Discover(dir string, extensions, exclude []string) ([]string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSourceDir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrSourceDir, dir)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSourceDir, err)
	}

	var paths []string
	for _, entry := range entries {
		name := entry.Name()
		if !isRegular(dir, entry) {
			continue
		}
		if !Match(name, extensions, exclude) {
			continue
		}
		paths = append(paths, filepath.Join(dir, name))
	}

	slices.Sort(paths)
	return paths, nil
}

// Match reports whether a base file name is a candidate source.
func Match(name string, extensions, exclude []string) bool {
	return hasExtension(name, extensions) && !isExcluded(name, exclude)
}

// isRegular follows symlinks so linked sources are picked up.
func isRegular(dir string, entry os.DirEntry) bool {
	if entry.Type()&os.ModeSymlink == 0 {
		return entry.Type().IsRegular()
	}
	info, err := os.Stat(filepath.Join(dir, entry.Name()))
	return err == nil && info.Mode().IsRegular()
}

func hasExtension(name string, extensions []string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, want := range extensions {
		want = strings.ToLower(want)
		if !strings.HasPrefix(want, ".") {
			want = "." + want
		}
		if ext == want {
			return true
		}
	}
	return false
}

func isExcluded(name string, exclude []string) bool {
	for _, sub := range exclude {
		if sub != "" && strings.Contains(name, sub) {
			return true
		}
	}
	return false
}
