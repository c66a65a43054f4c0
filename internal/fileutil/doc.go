// Package fileutil provides directory scanning with filename filtering.
//
// It backs campaign file discovery: walking a directory tree, keeping
// files whose name matches a regex pattern and extension list, and
// returning sorted absolute paths.
//
// # Usage
//
// Scan a tree for campaign files:
//
//	files, err := fileutil.ScanDirectory("testdata", fileutil.ScanOptions{
//	    Pattern:    "^campaign-.*",
//	    Extensions: []string{".md", ".yaml", ".yml"},
//	    Recursive:  true,
//	})
//
// Hidden directories (names starting with ".") are always skipped, as are
// any names listed in ExcludeDirs. Unreadable entries are skipped rather
// than aborting the scan.
package fileutil
