package fileutil

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
)

// ScanOptions configures directory scanning.
type ScanOptions struct {
	// Pattern is a regex matched against the filename without its extension.
	Pattern string
	// Extensions lists the file extensions to include (e.g. ".md", ".yaml").
	// Matching is case-insensitive. Empty means any extension.
	Extensions []string
	// Recursive enables descending into subdirectories.
	Recursive bool
	// ExcludeDirs lists directory names to skip (e.g. ".git", "node_modules").
	ExcludeDirs []string
}

// ScanDirectory walks dir and returns the sorted absolute paths of all files
// matching the options. Unreadable entries are skipped.
func ScanDirectory(dir string, opts ScanOptions) ([]string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("access directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("not a directory: %s", dir)
	}

	var re *regexp.Regexp
	if opts.Pattern != "" {
		re, err = regexp.Compile(opts.Pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern: %w", err)
		}
	}

	wantExt := make(map[string]bool)
	for _, ext := range opts.Extensions {
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		wantExt[strings.ToLower(ext)] = true
	}

	skipDirs := make(map[string]bool)
	for _, name := range opts.ExcludeDirs {
		skipDirs[name] = true
	}

	var files []string
	err = filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			// Skip unreadable entries and keep walking.
			return nil
		}
		if path == dir {
			return nil
		}

		if d.IsDir() {
			if skipDirs[d.Name()] || strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			if !opts.Recursive {
				return filepath.SkipDir
			}
			return nil
		}

		filename := d.Name()
		if len(wantExt) > 0 {
			ext := strings.ToLower(filepath.Ext(filename))
			if !wantExt[ext] {
				return nil
			}
		}
		if re != nil {
			stem := strings.TrimSuffix(filename, filepath.Ext(filename))
			if !re.MatchString(stem) {
				return nil
			}
		}

		absPath, err := filepath.Abs(path)
		if err != nil {
			return nil
		}
		files = append(files, absPath)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk directory: %w", err)
	}

	sort.Strings(files)
	return files, nil
}
