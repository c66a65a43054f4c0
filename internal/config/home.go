package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// Home returns the casework home directory.
// Priority order:
//  1. CASEWORK_HOME environment variable (if set)
//  2. Nearest ancestor directory containing a .casework-root marker
//  3. Current working directory (fallback)
//
// The .casework directory under the chosen root is created if it doesn't
// exist.
func Home() (string, error) {
	if home := os.Getenv("CASEWORK_HOME"); home != "" {
		return home, nil
	}

	root, err := findProjectRoot()
	if err != nil {
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("get working directory: %w", err)
		}
		root = cwd
	}

	home := filepath.Join(root, ".casework")
	if err := os.MkdirAll(home, 0755); err != nil {
		return "", fmt.Errorf("create casework home directory: %w", err)
	}
	return home, nil
}

// findProjectRoot walks up from the working directory looking for a
// .casework-root marker file.
func findProjectRoot() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}

	current := cwd
	for {
		markerPath := filepath.Join(current, ".casework-root")
		if _, err := os.Stat(markerPath); err == nil {
			return current, nil
		}

		parent := filepath.Dir(current)
		if parent == current {
			break
		}
		current = parent
	}

	return "", fmt.Errorf("project root not found (no .casework-root marker)")
}

// HistoryDBPath returns the default path of the history database,
// $CASEWORK_HOME/history.db.
func HistoryDBPath() (string, error) {
	home, err := Home()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, "history.db"), nil
}

// LogsDir returns the run log directory under the casework home,
// creating it if needed.
func LogsDir() (string, error) {
	home, err := Home()
	if err != nil {
		return "", err
	}

	logsDir := filepath.Join(home, "logs")
	if err := os.MkdirAll(logsDir, 0755); err != nil {
		return "", fmt.Errorf("create logs directory: %w", err)
	}
	return logsDir, nil
}
