// Package casedir manages a case instance's working directory and the
// summary file written into it, so a directory always records which case
// type produced it and with which inputs.
package casedir

import (
	"bytes"
	"fmt"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/harrison/casework/internal/filelock"
)

const (
	// SummaryDir is the subdirectory of a case directory holding files
	// owned by the runner rather than by step bodies.
	SummaryDir = "casework"

	// SummaryFile is the summary file name inside SummaryDir.
	SummaryFile = "case.toml"
)

// Summary records how a case directory was produced: the case type, the
// instance identifier, and the fully bound input values.
type Summary struct {
	CaseType string         `toml:"case_type"`
	CaseID   string         `toml:"case_id"`
	Inputs   map[string]any `toml:"inputs"`
}

// SummaryPath returns the summary file path for a case directory.
func SummaryPath(dir string) string {
	return filepath.Join(dir, SummaryDir, SummaryFile)
}

// InstanceDir derives a per-instance directory under a root: one directory
// per case type, one subdirectory per instance. id is shortened to its
// first 8 characters, enough to keep sweep directories readable.
func InstanceDir(root, caseType, id string) string {
	short := id
	if len(short) > 8 {
		short = short[:8]
	}
	return filepath.Join(root, caseType, short)
}

// Write creates the case directory if needed and writes the summary file
// under lock, so concurrently constructed instances sharing a directory
// never interleave writes.
func Write(dir string, s Summary) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(s); err != nil {
		return fmt.Errorf("encode case summary: %w", err)
	}
	if err := filelock.WriteLocked(SummaryPath(dir), buf.Bytes()); err != nil {
		return fmt.Errorf("write case summary: %w", err)
	}
	return nil
}

// Read loads the summary file from a case directory.
func Read(dir string) (Summary, error) {
	var s Summary
	if _, err := toml.DecodeFile(SummaryPath(dir), &s); err != nil {
		return Summary{}, fmt.Errorf("read case summary in %s: %w", dir, err)
	}
	return s, nil
}

