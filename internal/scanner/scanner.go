// Package scanner locates candidate test files in a repository tree.
package scanner

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/afero"

	"github.com/koetsu-dev/exemplar/internal/domain/tracker"
)

// Scanner walks configured subtrees and collects files matching the
// configured test-file patterns. Results are repo-relative and sorted.
type Scanner struct {
	fs       afero.Fs
	root     string
	paths    []string
	patterns []string
	limit    int
}

// New creates a scanner rooted at the repository directory.
// paths are subtrees relative to root ("." means the whole tree);
// patterns are filepath.Match globs applied to base names.
// limit caps the number of returned files (0 means unlimited).
func New(fs afero.Fs, root string, paths, patterns []string, limit int) *Scanner {
	if len(paths) == 0 {
		paths = []string{"."}
	}
	return &Scanner{fs: fs, root: root, paths: paths, patterns: patterns, limit: limit}
}

// Scan returns the matching files with modification times.
func (s *Scanner) Scan() ([]tracker.Scanned, error) {
	seen := make(map[string]tracker.Scanned)
	for _, sub := range s.paths {
		dir := filepath.Join(s.root, sub)
		ok, err := afero.DirExists(s.fs, dir)
		if err != nil {
			return nil, fmt.Errorf("check scan path %s: %w", sub, err)
		}
		if !ok {
			continue
		}
		if err := s.walk(dir, seen); err != nil {
			return nil, err
		}
	}

	found := make([]tracker.Scanned, 0, len(seen))
	for _, f := range seen {
		found = append(found, f)
	}
	sort.Slice(found, func(i, j int) bool { return found[i].Path < found[j].Path })

	if s.limit > 0 && len(found) > s.limit {
		found = found[:s.limit]
	}
	return found, nil
}

func (s *Scanner) walk(dir string, seen map[string]tracker.Scanned) error {
	return afero.Walk(s.fs, dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			if skipDir(info.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if !s.matches(info.Name()) {
			return nil
		}
		rel, err := filepath.Rel(s.root, path)
		if err != nil {
			return fmt.Errorf("relativize %s: %w", path, err)
		}
		rel = filepath.ToSlash(rel)
		seen[rel] = tracker.Scanned{Path: rel, LastModified: info.ModTime().UTC()}
		return nil
	})
}

func (s *Scanner) matches(name string) bool {
	for _, pattern := range s.patterns {
		if ok, err := filepath.Match(pattern, name); err == nil && ok {
			return true
		}
	}
	return false
}

func skipDir(name string) bool {
	if strings.HasPrefix(name, ".") && name != "." {
		return true
	}
	switch name {
	case "node_modules", "vendor", "__pycache__", "dist", "build":
		return true
	}
	return false
}
