// Package campaign loads campaign files: ordered lists of case requests,
// written in YAML or Markdown, that expand into runnable case lists.
package campaign

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/harrison/casework/internal/cases"
	"github.com/harrison/casework/internal/fileutil"
	"github.com/harrison/casework/internal/registry"
)

// Format represents the format of a campaign file
type Format int

const (
	// FormatUnknown represents an unknown or unsupported file format
	FormatUnknown Format = iota
	// FormatMarkdown represents a Markdown (.md, .markdown) campaign file
	FormatMarkdown
	// FormatYAML represents a YAML (.yaml, .yml) campaign file
	FormatYAML
)

// String returns the string representation of the Format
func (f Format) String() string {
	switch f {
	case FormatMarkdown:
		return "markdown"
	case FormatYAML:
		return "yaml"
	default:
		return "unknown"
	}
}

// Campaign is a parsed campaign file.
type Campaign struct {
	// Name identifies the campaign. Defaults to the file's base name.
	Name string
	// StopOnFailure stops the run at the first failed case.
	StopOnFailure bool
	// Entries are the case requests in file order.
	Entries []Entry
	// FilePath is the absolute path the campaign was loaded from.
	FilePath string
}

// Entry is one case request: a case type name, pinned parameter values, and
// optional sweep axes that expand the entry into one case per combination.
type Entry struct {
	CaseType string
	Params   map[string]any
	Sweep    []cases.Axis
}

// Axes returns the entry's pinned parameters followed by its sweep axes, in
// the order Resolve expands them. Pins become single-value axes sorted by
// name, ahead of the sweep axes, so they never disturb the combination
// order.
func (e Entry) Axes() []cases.Axis {
	axes := make([]cases.Axis, 0, len(e.Params)+len(e.Sweep))
	names := make([]string, 0, len(e.Params))
	for name := range e.Params {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		axes = append(axes, cases.NewAxis(name, e.Params[name]))
	}
	return append(axes, e.Sweep...)
}

// Parser is the interface that all campaign parsers implement
type Parser interface {
	// Parse reads from an io.Reader and returns a parsed Campaign
	Parse(r io.Reader) (*Campaign, error)
}

// DetectFormat detects the campaign format from the file extension.
// Supported extensions:
//   - .md, .markdown -> FormatMarkdown
//   - .yaml, .yml -> FormatYAML
//   - all others -> FormatUnknown
func DetectFormat(filename string) Format {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".md", ".markdown":
		return FormatMarkdown
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatUnknown
	}
}

// NewParser creates a parser for the specified format.
func NewParser(format Format) (Parser, error) {
	switch format {
	case FormatMarkdown:
		return NewMarkdownParser(), nil
	case FormatYAML:
		return NewYAMLParser(), nil
	default:
		return nil, fmt.Errorf("unsupported format: %v", format)
	}
}

// ParseFile auto-detects the format of the campaign file at path, parses it,
// and records the absolute file path on the returned campaign.
func ParseFile(path string) (*Campaign, error) {
	format := DetectFormat(path)
	if format == FormatUnknown {
		return nil, fmt.Errorf("unknown campaign format: %s (supported: .md, .markdown, .yaml, .yml)", path)
	}

	parser, err := NewParser(format)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open campaign file: %w", err)
	}
	defer file.Close()

	camp, err := parser.Parse(file)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		absPath = path
	}
	camp.FilePath = absPath
	if camp.Name == "" {
		base := filepath.Base(path)
		camp.Name = strings.TrimSuffix(base, filepath.Ext(base))
	}

	return camp, nil
}

// Resolve looks up each entry's case type in reg and expands the entries
// into concrete case instances, in file order.
func (c *Campaign) Resolve(reg *registry.Registry) (*cases.CaseList, error) {
	list := cases.NewCaseList()
	list.StopOnFailure = c.StopOnFailure

	for i, entry := range c.Entries {
		ct, err := reg.Lookup(entry.CaseType)
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", i+1, err)
		}
		if _, err := list.AddSweep(ct, entry.Axes()...); err != nil {
			return nil, fmt.Errorf("entry %d (%s): %w", i+1, entry.CaseType, err)
		}
	}

	return list, nil
}

// FilterCampaignFiles accepts file and/or directory paths and returns a
// deduplicated, sorted list of absolute campaign file paths.
//
// Pattern matching rules:
//   - Files MUST start with the "campaign-" prefix
//   - Files MUST have extension: .md, .markdown, .yaml, or .yml
//   - Examples: campaign-nightly.yaml, campaign-smoke.md
//
// Directories are scanned recursively for files matching the pattern.
func FilterCampaignFiles(paths []string) ([]string, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("no paths provided")
	}

	campaignFiles := make(map[string]bool)
	campaignPattern := regexp.MustCompile(`^campaign-.*\.(md|markdown|yaml|yml)$`)

	opts := fileutil.ScanOptions{
		Pattern:    "^campaign-.*",
		Extensions: []string{".md", ".markdown", ".yaml", ".yml"},
		Recursive:  true,
	}

	for _, path := range paths {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return nil, fmt.Errorf("resolve path %q: %w", path, err)
		}

		info, err := os.Stat(absPath)
		if err != nil {
			if os.IsNotExist(err) {
				return nil, fmt.Errorf("path %q does not exist", absPath)
			}
			return nil, fmt.Errorf("access path %q: %w", absPath, err)
		}

		if info.IsDir() {
			files, err := fileutil.ScanDirectory(absPath, opts)
			if err != nil {
				return nil, fmt.Errorf("scan directory %q: %w", absPath, err)
			}
			for _, file := range files {
				campaignFiles[file] = true
			}
		} else {
			if campaignPattern.MatchString(filepath.Base(absPath)) {
				campaignFiles[absPath] = true
			}
		}
	}

	if len(campaignFiles) == 0 {
		return nil, fmt.Errorf("no campaign files found matching pattern campaign-*.{md,markdown,yaml,yml}")
	}

	result := make([]string, 0, len(campaignFiles))
	for path := range campaignFiles {
		result = append(result, path)
	}
	sort.Strings(result)

	return result, nil
}
