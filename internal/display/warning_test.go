package display

import (
	"bytes"
	"strings"
	"testing"
)

func TestWarningDisplay(t *testing.T) {
	tests := []struct {
		name    string
		warning Warning
		want    []string
		absent  []string
	}{
		{
			name:    "title only",
			warning: Warning{Title: "Nothing to run"},
			want:    []string{"⚠️  Warning: Nothing to run\n"},
			absent:  []string{"Affected", "Suggestion:"},
		},
		{
			name: "message and suggestion",
			warning: Warning{
				Title:      "Timeout disabled",
				Message:    "timeout is 0, hung solvers will never be killed.",
				Suggestion: "Set timeout in .casework/config.yaml.",
			},
			want: []string{
				"Warning: Timeout disabled",
				"    timeout is 0",
				"Suggestion:\n    Set timeout",
			},
		},
		{
			name:    "single file",
			warning: Warning{Title: "Skipped", Files: []string{"nightly.yaml"}},
			want:    []string{"Affected file:", "      1. nightly.yaml"},
			absent:  []string{"Affected files:"},
		},
		{
			name:    "multiple files numbered in order",
			warning: Warning{Title: "Skipped", Files: []string{"nightly.yaml", "smoke.md"}},
			want:    []string{"Affected files:", "      1. nightly.yaml", "      2. smoke.md"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.warning.Display(&buf)

			output := buf.String()
			for _, want := range tt.want {
				if !strings.Contains(output, want) {
					t.Errorf("output missing %q:\n%s", want, output)
				}
			}
			for _, absent := range tt.absent {
				if strings.Contains(output, absent) {
					t.Errorf("output should not contain %q:\n%s", absent, output)
				}
			}
		})
	}
}

func TestWarnUnprefixedFiles(t *testing.T) {
	w := WarnUnprefixedFiles("Some files will not be loaded", []string{"nightly.yaml", "smoke.md"})

	if w.Title != "Some files will not be loaded" {
		t.Errorf("Title = %q", w.Title)
	}
	if len(w.Files) != 2 {
		t.Fatalf("Files = %v, want 2 entries", w.Files)
	}
	if !strings.Contains(w.Message, "campaign-") {
		t.Errorf("Message = %q, want mention of the campaign- prefix", w.Message)
	}
	if !strings.Contains(w.Suggestion, "campaign-") {
		t.Errorf("Suggestion = %q, want a rename hint", w.Suggestion)
	}
}
