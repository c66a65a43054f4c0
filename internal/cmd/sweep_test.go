package cmd

import (
	"fmt"
	"reflect"
	"strings"
	"testing"

	"github.com/zclconf/go-cty/cty"

	"github.com/harrison/casework/internal/cases"
)

func TestParseAxes(t *testing.T) {
	tests := []struct {
		name    string
		pairs   []string
		want    []cases.Axis
		wantErr bool
	}{
		{
			name:  "empty",
			pairs: nil,
			want:  []cases.Axis{},
		},
		{
			name:  "single axis",
			pairs: []string{"power=1,2,3"},
			want:  []cases.Axis{{Param: "power", Values: []any{"1", "2", "3"}}},
		},
		{
			name:  "flag order preserved",
			pairs: []string{"b=x,y", "a=1"},
			want: []cases.Axis{
				{Param: "b", Values: []any{"x", "y"}},
				{Param: "a", Values: []any{"1"}},
			},
		},
		{
			name:    "missing equals",
			pairs:   []string{"power"},
			wantErr: true,
		},
		{
			name:    "empty name",
			pairs:   []string{"=1,2"},
			wantErr: true,
		},
		{
			name:    "no values",
			pairs:   []string{"power="},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseAxes(tt.pairs)
			if tt.wantErr {
				if err == nil {
					t.Errorf("Expected error for %v", tt.pairs)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("parseAxes(%v) = %v, want %v", tt.pairs, got, tt.want)
			}
		})
	}
}

func TestSweepCommand(t *testing.T) {
	tmp := t.TempDir()
	cfgPath := writeTestConfig(t, tmp)

	var got []string
	ct := cases.NewCaseType("Grid").
		Param("power", cty.Number, cases.Min(0)).
		Param("fluid", cty.String, cases.Default("air")).
		Step("measure", func(c *cases.Case) error {
			got = append(got, fmt.Sprintf("%d/%s", c.Int64("power"), c.String("fluid")))
			return nil
		})
	withProvider(t, ct)

	output, err := executeCommand(t, "sweep", "Grid", "--config", cfgPath,
		"--axis", "power=1,2", "--axis", "fluid=air,water")
	if err != nil {
		t.Fatalf("Unexpected error: %v\nOutput: %s", err, output)
	}

	want := []string{"1/air", "1/water", "2/air", "2/water"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Expected combinations %v, got %v", want, got)
	}
	if !strings.Contains(output, "Sweep results:") {
		t.Errorf("Expected results table, got: %s", output)
	}
	if !strings.Contains(output, "fluid=air power=1") {
		t.Errorf("Expected sorted value columns, got: %s", output)
	}
	if !strings.Contains(output, "passed") {
		t.Errorf("Expected passed outcomes, got: %s", output)
	}
}

func TestSweepCommand_PinnedParam(t *testing.T) {
	tmp := t.TempDir()
	cfgPath := writeTestConfig(t, tmp)

	var got []string
	ct := cases.NewCaseType("Grid").
		Param("power", cty.Number, cases.Min(0)).
		Param("fluid", cty.String, cases.Default("air")).
		Step("measure", func(c *cases.Case) error {
			got = append(got, fmt.Sprintf("%d/%s", c.Int64("power"), c.String("fluid")))
			return nil
		})
	withProvider(t, ct)

	output, err := executeCommand(t, "sweep", "Grid", "--config", cfgPath,
		"--param", "fluid=water", "--axis", "power=1,2")
	if err != nil {
		t.Fatalf("Unexpected error: %v\nOutput: %s", err, output)
	}

	want := []string{"1/water", "2/water"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Expected pinned combinations %v, got %v", want, got)
	}
}

func TestSweepCommand_FailedCombination(t *testing.T) {
	tmp := t.TempDir()
	cfgPath := writeTestConfig(t, tmp)

	ct := cases.NewCaseType("Grid").
		Param("power", cty.Number, cases.Min(0)).
		Step("measure", func(c *cases.Case) error {
			if c.Int64("power") == 2 {
				return fmt.Errorf("overload at %d", c.Int64("power"))
			}
			return nil
		})
	withProvider(t, ct)

	output, err := executeCommand(t, "sweep", "Grid", "--config", cfgPath,
		"--axis", "power=1,2,3")
	if err == nil {
		t.Fatalf("Expected error from failed combination\nOutput: %s", output)
	}
	if !strings.Contains(err.Error(), "1 case(s) failed") {
		t.Errorf("Expected '1 case(s) failed', got: %v", err)
	}
	if !strings.Contains(output, "failed") || !strings.Contains(output, "overload at 2") {
		t.Errorf("Expected failure row in results, got: %s", output)
	}
	if !strings.Contains(output, "power=3") {
		t.Errorf("Expected later combinations to still run, got: %s", output)
	}
}

func TestSweepCommand_DuplicateAxis(t *testing.T) {
	ct := cases.NewCaseType("Grid").
		Param("power", cty.Number, cases.Default(1)).
		Step("measure", func(c *cases.Case) error { return nil })
	withProvider(t, ct)

	_, err := executeCommand(t, "sweep", "Grid", "--axis", "power=1", "--axis", "power=2")
	if err == nil {
		t.Fatal("Expected error for duplicate axis")
	}
	if !strings.Contains(err.Error(), "given twice") {
		t.Errorf("Expected duplicate axis error, got: %v", err)
	}
}

func TestSweepCommand_OutOfRangeValue(t *testing.T) {
	ct := cases.NewCaseType("Grid").
		Param("power", cty.Number, cases.Min(0)).
		Step("measure", func(c *cases.Case) error { return nil })
	withProvider(t, ct)

	_, err := executeCommand(t, "sweep", "Grid", "--axis", "power=-1,1")
	if err == nil {
		t.Fatal("Expected error for out-of-range axis value")
	}
	if !cases.IsParameterRange(err) {
		t.Errorf("Expected parameter range error, got: %v", err)
	}
}

func TestSweepCommand_UnknownCaseType(t *testing.T) {
	ct := cases.NewCaseType("Grid").
		Step("measure", func(c *cases.Case) error { return nil })
	withProvider(t, ct)

	output, err := executeCommand(t, "sweep", "Gird")
	if err == nil {
		t.Fatal("Expected error for unknown case type")
	}
	if ExitCode(err) != 2 {
		t.Errorf("Expected exit code 2, got %d", ExitCode(err))
	}
	_ = output
}

func TestFormatBoundValues(t *testing.T) {
	ct := cases.NewCaseType("FmtCase").
		Param("zeta", cty.String, cases.Default("z")).
		Param("alpha", cty.Number, cases.Default(2)).
		Param("flag", cty.Bool, cases.Default(true))
	c, err := ct.New(cases.Values{"alpha": 3.5})
	if err != nil {
		t.Fatalf("Failed to build case: %v", err)
	}

	got := formatBoundValues(c)
	want := "alpha=3.5 flag=true zeta=z"
	if got != want {
		t.Errorf("formatBoundValues() = %q, want %q", got, want)
	}
}
