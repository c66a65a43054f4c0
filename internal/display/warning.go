package display

import (
	"io"

	"github.com/fatih/color"
)

var warnColor = color.New(color.FgYellow)

// Warning is a warning block shown to the user. Title is required; Message,
// Files and Suggestion are printed only when set.
type Warning struct {
	Title      string
	Message    string
	Files      []string
	Suggestion string
}

// Display renders the warning block to out.
func (w Warning) Display(out io.Writer) {
	warnColor.Fprintf(out, "⚠️  Warning: %s\n", w.Title)

	if w.Message != "" {
		warnColor.Fprintf(out, "    %s\n", w.Message)
	}

	if len(w.Files) > 0 {
		noun := "file"
		if len(w.Files) > 1 {
			noun = "files"
		}
		warnColor.Fprintf(out, "    Affected %s:\n", noun)
		for i, file := range w.Files {
			warnColor.Fprintf(out, "      %d. %s\n", i+1, file)
		}
	}

	if w.Suggestion != "" {
		warnColor.Fprintf(out, "    Suggestion:\n    %s\n", w.Suggestion)
	}
}

// WarnUnprefixedFiles builds the warning for campaign files that directory
// discovery skips for want of the campaign- prefix.
func WarnUnprefixedFiles(title string, files []string) Warning {
	return Warning{
		Title:      title,
		Message:    "These files have campaign extensions but no campaign- prefix, so directory discovery skips them.",
		Files:      files,
		Suggestion: "Rename them campaign-<name> or pass each file explicitly.",
	}
}
