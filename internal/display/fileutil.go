package display

import (
	"path/filepath"
	"strings"

	"github.com/harrison/casework/internal/fileutil"
)

// campaignExtensions are the extensions directory discovery considers.
// Lowercase only, matching the discovery convention.
var campaignExtensions = map[string]bool{
	".md":       true,
	".markdown": true,
	".yaml":     true,
	".yml":      true,
}

// IsUnprefixedCampaignFile reports whether filename has a campaign file
// extension but lacks the campaign- prefix, so directory discovery skips it.
// Hidden files are never reported.
func IsUnprefixedCampaignFile(filename string) bool {
	if filename == "" || strings.HasPrefix(filename, ".") {
		return false
	}
	if strings.ContainsAny(filename, "\n\x00") {
		return false
	}

	ext := filepath.Ext(filename)
	if !campaignExtensions[ext] {
		return false
	}

	// Something must remain once the extension is stripped.
	if strings.TrimSuffix(filename, ext) == "" {
		return false
	}

	return !strings.HasPrefix(filename, "campaign-")
}

// FindUnprefixedFiles scans a directory and returns basenames of files that
// look like campaigns but lack the campaign- prefix.
// Only scans the immediate directory (not recursive).
// Returns error if path doesn't exist or is not a directory.
func FindUnprefixedFiles(dirPath string) ([]string, error) {
	opts := fileutil.ScanOptions{
		Extensions: []string{".md", ".markdown", ".yaml", ".yml"},
		Recursive:  false,
	}

	paths, err := fileutil.ScanDirectory(dirPath, opts)
	if err != nil {
		return nil, err
	}

	unprefixed := make([]string, 0, len(paths))
	for _, absPath := range paths {
		basename := filepath.Base(absPath)
		if IsUnprefixedCampaignFile(basename) {
			unprefixed = append(unprefixed, basename)
		}
	}

	return unprefixed, nil
}
