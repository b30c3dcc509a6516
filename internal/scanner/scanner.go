package scanner

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Scanner scans directories for MHTML archives (.mht / .mhtml)
type Scanner struct {
	rootPath string
}

// NewScanner creates a new scanner for the given root path
func NewScanner(rootPath string) *Scanner {
	return &Scanner{
		rootPath: rootPath,
	}
}

// GetRootPath returns the root path for resolving relative paths
func (s *Scanner) GetRootPath() string {
	return s.rootPath
}

// isArchive reports whether a path carries an MHTML file extension
func isArchive(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mht", ".mhtml":
		return true
	}
	return false
}

// Scan recursively scans for archive files and returns paths relative to
// rootPath. Relative paths keep the index portable across systems and
// drive mappings.
func (s *Scanner) Scan() ([]string, error) {
	var archiveFiles []string

	// Get absolute path of root for reliable relative path calculation
	absRoot, err := filepath.Abs(s.rootPath)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute root path: %w", err)
	}

	err = filepath.Walk(absRoot, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return fmt.Errorf("error accessing path %s: %w", path, err)
		}

		if info.IsDir() {
			return nil
		}

		if isArchive(path) {
			relPath, err := filepath.Rel(absRoot, path)
			if err != nil {
				return fmt.Errorf("failed to get relative path for %s: %w", path, err)
			}
			// Normalize to forward slashes for cross-platform compatibility
			archiveFiles = append(archiveFiles, filepath.ToSlash(relPath))
		}

		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("failed to scan directory: %w", err)
	}

	return archiveFiles, nil
}

// ScanWithCallback scans for archive files and calls the callback for each file found
func (s *Scanner) ScanWithCallback(callback func(path string, index, total int) error) error {
	files, err := s.Scan()
	if err != nil {
		return err
	}

	total := len(files)
	for i, file := range files {
		if err := callback(file, i+1, total); err != nil {
			return fmt.Errorf("callback error for file %s: %w", file, err)
		}
	}

	return nil
}

// CountArchiveFiles counts the number of archive files without collecting them
func (s *Scanner) CountArchiveFiles() (int, error) {
	count := 0

	err := filepath.Walk(s.rootPath, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if !info.IsDir() && isArchive(path) {
			count++
		}

		return nil
	})

	if err != nil {
		return 0, fmt.Errorf("failed to count files: %w", err)
	}

	return count, nil
}
