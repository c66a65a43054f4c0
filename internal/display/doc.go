// Package display renders the terminal UI pieces of the casework CLI that
// are not run logging: campaign load progress, discovery warnings, and the
// filename checks behind those warnings.
//
// Directory loads print one line per campaign file:
//
//	progress := display.NewProgressIndicator(out, len(files))
//	progress.Start()
//	for _, file := range files {
//		progress.Step(file)
//		// parse file
//	}
//	progress.Complete()
//
// Warnings are built as a Warning value and rendered with Display, so
// commands attach the affected files and a suggested fix instead of
// formatting them inline:
//
//	if skipped, err := display.FindUnprefixedFiles(dir); err == nil && len(skipped) > 0 {
//		display.WarnUnprefixedFiles("Some files in this directory will not be loaded", skipped).Display(out)
//	}
//
// Colors come from github.com/fatih/color and are disabled automatically
// when output is not a terminal.
package display
