// Package discovery finds candidate test executables on disk and narrows
// test ids down by name.
package discovery

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Scanner scans for test executables in a directory
type Scanner struct {
	skipDirs map[string]bool
	masks    []string
}

// NewScanner creates a new Scanner with the given directories to skip and
// the file name masks executables must match
func NewScanner(skipDirs []string, masks []string) *Scanner {
	skipMap := make(map[string]bool)
	for _, dir := range skipDirs {
		skipMap[dir] = true
	}
	return &Scanner{skipDirs: skipMap, masks: masks}
}

// Scan finds all executables under root whose name matches a mask. The
// result is sorted so runs are repeatable.
func (s *Scanner) Scan(root string) ([]string, error) {
	var executables []string

	root = filepath.Clean(root)
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("test path does not exist: %s", root)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("test path is not a directory: %s", root)
	}

	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			if path == root {
				return nil
			}
			name := d.Name()
			// Skip hidden directories (starting with .)
			if strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
			if s.skipDirs[name] {
				return filepath.SkipDir
			}
			return nil
		}

		if !s.Matches(path) {
			return nil
		}
		ok, err := isExecutable(path, d)
		if err != nil {
			return err
		}
		if ok {
			executables = append(executables, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", root, err)
	}

	sort.Strings(executables)
	return executables, nil
}

// Resolve turns the CLI arguments into candidate executables: directories
// are scanned, files are kept when they match a mask. Order follows the
// arguments; duplicates are dropped.
func (s *Scanner) Resolve(paths []string) ([]string, error) {
	seen := make(map[string]bool)
	var out []string
	add := func(p string) {
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}

	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("test path does not exist: %s", p)
		}
		if !info.IsDir() {
			if s.Matches(p) {
				add(filepath.Clean(p))
			}
			continue
		}
		found, err := s.Scan(p)
		if err != nil {
			return nil, err
		}
		for _, f := range found {
			add(f)
		}
	}
	return out, nil
}

// Matches reports whether the base name of path matches one of the masks.
// A scanner without masks matches everything.
func (s *Scanner) Matches(path string) bool {
	if len(s.masks) == 0 {
		return true
	}
	return MatchMask(path, s.masks)
}

func isExecutable(path string, d fs.DirEntry) (bool, error) {
	info, err := d.Info()
	if err != nil {
		return false, err
	}
	if info.Mode()&fs.ModeSymlink != 0 {
		if info, err = os.Stat(path); err != nil {
			// Dangling links are not test binaries.
			return false, nil
		}
	}
	return info.Mode().IsRegular() && info.Mode().Perm()&0o111 != 0, nil
}
