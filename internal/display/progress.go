package display

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/fatih/color"
)

var (
	stepColor    = color.New(color.FgCyan)
	successColor = color.New(color.FgGreen)
)

// ProgressIndicator prints per-file progress while a directory of campaign
// files is loaded.
type ProgressIndicator struct {
	writer io.Writer
	total  int
	done   int
}

// NewProgressIndicator returns an indicator expecting total files.
func NewProgressIndicator(w io.Writer, total int) *ProgressIndicator {
	return &ProgressIndicator{writer: w, total: total}
}

// Start prints the load header.
func (p *ProgressIndicator) Start() {
	fmt.Fprintln(p.writer, "Loading campaign files:")
}

// Step advances the counter and prints the base name of the file being
// loaded.
func (p *ProgressIndicator) Step(filename string) {
	p.done++
	stepColor.Fprintf(p.writer, "  [%d/%d] %s\n", p.done, p.total, filepath.Base(filename))
}

// Complete prints the closing summary line.
func (p *ProgressIndicator) Complete() {
	successColor.Fprint(p.writer, "✓")
	noun := "files"
	if p.total == 1 {
		noun = "file"
	}
	fmt.Fprintf(p.writer, " Loaded %d campaign %s\n", p.total, noun)
}

// DisplaySingleFile prints the load line for one explicitly named campaign
// file.
func DisplaySingleFile(w io.Writer, filename string) {
	fmt.Fprintf(w, "Loading campaign from %s...\n", filename)
}
