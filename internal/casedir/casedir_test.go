package casedir

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

func TestWriteAndRead(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "SolverCase", "a1b2c3d4")

	in := Summary{
		CaseType: "SolverCase",
		CaseID:   "a1b2c3d4-0000-0000-0000-000000000000",
		Inputs: map[string]any{
			"angle": int64(12),
			"label": "baseline",
			"plots": true,
		},
	}
	if err := Write(dir, in); err != nil {
		t.Fatalf("Write() error: %v", err)
	}

	out, err := Read(dir)
	if err != nil {
		t.Fatalf("Read() error: %v", err)
	}
	if out.CaseType != in.CaseType {
		t.Errorf("case type = %q, want %q", out.CaseType, in.CaseType)
	}
	if out.CaseID != in.CaseID {
		t.Errorf("case id = %q, want %q", out.CaseID, in.CaseID)
	}
	if out.Inputs["label"] != "baseline" {
		t.Errorf("inputs[label] = %v, want baseline", out.Inputs["label"])
	}
	if out.Inputs["plots"] != true {
		t.Errorf("inputs[plots] = %v, want true", out.Inputs["plots"])
	}
}

func TestWriteCreatesSummaryLayout(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "case")

	if err := Write(dir, Summary{CaseType: "T", CaseID: "x"}); err != nil {
		t.Fatalf("Write() error: %v", err)
	}

	path := SummaryPath(dir)
	if path != filepath.Join(dir, "casework", "case.toml") {
		t.Errorf("unexpected summary path %q", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("summary file not written: %v", err)
	}
	if !strings.Contains(string(data), `case_type = "T"`) {
		t.Errorf("summary content missing case_type: %s", data)
	}
}

func TestWriteOverwritesAtomically(t *testing.T) {
	dir := t.TempDir()

	if err := Write(dir, Summary{CaseType: "T", CaseID: "first"}); err != nil {
		t.Fatalf("first Write() error: %v", err)
	}
	if err := Write(dir, Summary{CaseType: "T", CaseID: "second"}); err != nil {
		t.Fatalf("second Write() error: %v", err)
	}

	s, err := Read(dir)
	if err != nil {
		t.Fatalf("Read() error: %v", err)
	}
	if s.CaseID != "second" {
		t.Errorf("case id = %q, want %q", s.CaseID, "second")
	}

	// no temp litter left behind
	entries, err := os.ReadDir(filepath.Join(dir, SummaryDir))
	if err != nil {
		t.Fatalf("ReadDir error: %v", err)
	}
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".tmp-") {
			t.Errorf("leftover temp file %q", e.Name())
		}
	}
}

func TestConcurrentWrites(t *testing.T) {
	dir := t.TempDir()

	const writers = 8
	var wg sync.WaitGroup
	errs := make(chan error, writers)

	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			errs <- Write(dir, Summary{
				CaseType: "T",
				CaseID:   strings.Repeat("a", n+1),
				Inputs:   map[string]any{"n": int64(n)},
			})
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Errorf("concurrent Write() error: %v", err)
		}
	}

	// whichever write won, the file must parse cleanly
	if _, err := Read(dir); err != nil {
		t.Errorf("Read() after concurrent writes: %v", err)
	}
}

func TestInstanceDir(t *testing.T) {
	got := InstanceDir("/data/runs", "SolverCase", "a1b2c3d4-e5f6-0000-0000-000000000000")
	want := filepath.Join("/data/runs", "SolverCase", "a1b2c3d4")
	if got != want {
		t.Errorf("InstanceDir() = %q, want %q", got, want)
	}

	short := InstanceDir("root", "T", "ab")
	if short != filepath.Join("root", "T", "ab") {
		t.Errorf("InstanceDir() short id = %q", short)
	}
}
