package cases

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/zclconf/go-cty/cty"

	"github.com/harrison/casework/internal/casedir"
)

func record(log *[]string, name string) Action {
	return func(*Case) error {
		*log = append(*log, name)
		return nil
	}
}

func TestRunExecutesInScheduledOrder(t *testing.T) {
	var log []string
	ct := NewCaseType("Order").
		Step("report", record(&log, "report"), DependsOn("solve")).
		Step("mesh", record(&log, "mesh")).
		Step("solve", record(&log, "solve"), DependsOn("mesh"))

	c, err := ct.New(Values{})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	if err := c.Run(context.Background()); err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	want := []string{"mesh", "solve", "report"}
	if len(log) != len(want) {
		t.Fatalf("executed %v, want %v", log, want)
	}
	for i := range want {
		if log[i] != want[i] {
			t.Fatalf("executed %v, want %v", log, want)
		}
	}
	for _, name := range want {
		if got := c.StepStatus(name); got != StatusSucceeded {
			t.Errorf("step %s status = %q, want succeeded", name, got)
		}
	}
	if c.Err() != nil {
		t.Errorf("Err() = %v, want nil", c.Err())
	}
}

func TestConditionFalseSkips(t *testing.T) {
	var log []string
	ct := NewCaseType("Skip").
		Param("plots", cty.Bool, Default(false)).
		Step("solve", record(&log, "solve")).
		Step("plot", record(&log, "plot"), DependsOn("solve"), If(FlagSet("plots"))).
		Step("archive", record(&log, "archive"), DependsOn("solve"))

	c, err := ct.New(Values{})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	if err := c.Run(context.Background()); err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	if got := c.StepStatus("plot"); got != StatusSkipped {
		t.Errorf("plot status = %q, want skipped", got)
	}
	for _, name := range log {
		if name == "plot" {
			t.Error("skipped step's action was invoked")
		}
	}
	// the condition's outcome must not affect other steps
	if got := c.StepStatus("solve"); got != StatusSucceeded {
		t.Errorf("solve status = %q, want succeeded", got)
	}
	if got := c.StepStatus("archive"); got != StatusSucceeded {
		t.Errorf("archive status = %q, want succeeded", got)
	}
}

func TestConditionTrueRuns(t *testing.T) {
	var log []string
	ct := NewCaseType("Gate").
		Param("plots", cty.Bool, Default(false)).
		Step("plot", record(&log, "plot"), If(FlagSet("plots")))

	c, err := ct.New(Values{"plots": true})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	if err := c.Run(context.Background()); err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if len(log) != 1 {
		t.Errorf("gated step did not run: %v", log)
	}
}

func TestFailingStepAbortsLaterSteps(t *testing.T) {
	var log []string
	boom := errors.New("solver diverged")
	ct := NewCaseType("Abort").
		Step("mesh", record(&log, "mesh")).
		Step("solve", func(*Case) error { return boom }, DependsOn("mesh")).
		Step("plot", record(&log, "plot"), DependsOn("solve")).
		Step("archive", record(&log, "archive"))

	c, err := ct.New(Values{})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	err = c.Run(context.Background())
	if err == nil {
		t.Fatal("Run() should report failure")
	}

	var stepErr *StepExecutionError
	if !errors.As(err, &stepErr) {
		t.Fatalf("expected StepExecutionError, got %T: %v", err, err)
	}
	if stepErr.Step != "solve" {
		t.Errorf("failed step = %q, want solve", stepErr.Step)
	}
	if !errors.Is(err, boom) {
		t.Error("StepExecutionError should wrap the action's error")
	}
	if c.Err() == nil || !IsStepExecution(c.Err()) {
		t.Errorf("Err() = %v, want recorded StepExecutionError", c.Err())
	}

	// earlier steps keep their outcome, later steps abort
	if got := c.StepStatus("mesh"); got != StatusSucceeded {
		t.Errorf("mesh status = %q, want succeeded", got)
	}
	if got := c.StepStatus("solve"); got != StatusFailed {
		t.Errorf("solve status = %q, want failed", got)
	}
	if got := c.StepStatus("plot"); got != StatusAborted {
		t.Errorf("plot status = %q, want aborted", got)
	}
	if got := c.StepStatus("archive"); got != StatusAborted {
		t.Errorf("archive status = %q, want aborted", got)
	}
	for _, name := range log {
		if name == "plot" || name == "archive" {
			t.Errorf("aborted step %q ran", name)
		}
	}
}

func TestConditionErrorFailsStep(t *testing.T) {
	ct := NewCaseType("CondErr").
		Step("gated", func(*Case) error { return nil },
			If(func(*Case) (bool, error) { return false, errors.New("probe failed") })).
		Step("after", func(*Case) error { return nil })

	c, err := ct.New(Values{})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	err = c.Run(context.Background())
	if err == nil {
		t.Fatal("Run() should report failure")
	}
	if got := c.StepStatus("gated"); got != StatusFailed {
		t.Errorf("gated status = %q, want failed (not skipped)", got)
	}
	if got := c.StepStatus("after"); got != StatusAborted {
		t.Errorf("after status = %q, want aborted", got)
	}
}

func TestPanickingActionFailsCase(t *testing.T) {
	ct := NewCaseType("Panic").
		Step("explode", func(*Case) error { panic("kaboom") })

	c, err := ct.New(Values{})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	err = c.Run(context.Background())
	if err == nil {
		t.Fatal("Run() should report failure")
	}
	if !IsStepExecution(err) {
		t.Fatalf("expected StepExecutionError, got %T: %v", err, err)
	}
	if got := c.StepStatus("explode"); got != StatusFailed {
		t.Errorf("explode status = %q, want failed", got)
	}
}

func TestRunHonorsCancelledContext(t *testing.T) {
	var log []string
	ct := NewCaseType("Cancelled").
		Step("never", record(&log, "never"))

	c, err := ct.New(Values{})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err = c.Run(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Run() error = %v, want context.Canceled", err)
	}
	if len(log) != 0 {
		t.Error("action ran under a cancelled context")
	}
	if got := c.StepStatus("never"); got != StatusAborted {
		t.Errorf("never status = %q, want aborted", got)
	}
}

func TestRerunResetsStatuses(t *testing.T) {
	attempts := 0
	ct := NewCaseType("Retryable").
		Step("flaky", func(*Case) error {
			attempts++
			if attempts == 1 {
				return fmt.Errorf("transient")
			}
			return nil
		}).
		Step("after", func(*Case) error { return nil }, DependsOn("flaky"))

	c, err := ct.New(Values{})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	if err := c.Run(context.Background()); err == nil {
		t.Fatal("first run should fail")
	}
	if got := c.StepStatus("after"); got != StatusAborted {
		t.Errorf("after status = %q, want aborted", got)
	}

	if err := c.Run(context.Background()); err != nil {
		t.Fatalf("second run error: %v", err)
	}
	if got := c.StepStatus("flaky"); got != StatusSucceeded {
		t.Errorf("flaky status = %q, want succeeded after rerun", got)
	}
	if got := c.StepStatus("after"); got != StatusSucceeded {
		t.Errorf("after status = %q, want succeeded after rerun", got)
	}
	if c.Err() != nil {
		t.Errorf("Err() = %v, want nil after successful rerun", c.Err())
	}
}

func TestLazyResults(t *testing.T) {
	computed := 0
	ct := NewCaseType("Results").
		Param("n", cty.Number).
		Result("half", func(c *Case) (cty.Value, error) {
			computed++
			return cty.NumberFloatVal(c.Float64("n") / 2), nil
		})

	c, err := ct.New(Values{"n": 12})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	v, err := c.Result("half")
	if err != nil {
		t.Fatalf("Result() error: %v", err)
	}
	f, _ := v.AsBigFloat().Float64()
	if f != 6 {
		t.Errorf("half = %v, want 6", f)
	}

	if _, err := c.Result("half"); err != nil {
		t.Fatalf("second Result() error: %v", err)
	}
	if computed != 1 {
		t.Errorf("result computed %d times, want 1", computed)
	}

	if _, err := c.Result("unknown"); err == nil {
		t.Error("expected error for unknown result")
	}
}

func TestStoreResultVisibleToLaterSteps(t *testing.T) {
	ct := NewCaseType("Handoff").
		Step("produce", func(c *Case) error {
			c.StoreResult("lift", cty.NumberFloatVal(1.25))
			return nil
		}).
		Step("consume", func(c *Case) error {
			v, err := c.Result("lift")
			if err != nil {
				return err
			}
			if f, _ := v.AsBigFloat().Float64(); f != 1.25 {
				return fmt.Errorf("lift = %v", f)
			}
			return nil
		}, DependsOn("produce"))

	c, err := ct.New(Values{})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	if err := c.Run(context.Background()); err != nil {
		t.Fatalf("Run() error: %v", err)
	}
}

func TestRunWritesCaseSummary(t *testing.T) {
	ct := NewCaseType("WithDir").
		Param("angle", cty.Number).
		Step("noop", func(*Case) error { return nil })

	c, err := ct.New(Values{"angle": 12})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	dir := t.TempDir()
	c.SetDir(dir)
	if err := c.Run(context.Background()); err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	s, err := casedir.Read(dir)
	if err != nil {
		t.Fatalf("summary not written: %v", err)
	}
	if s.CaseType != "WithDir" {
		t.Errorf("summary case type = %q, want WithDir", s.CaseType)
	}
	if s.CaseID != c.ID() {
		t.Errorf("summary case id = %q, want %q", s.CaseID, c.ID())
	}
	if s.Inputs["angle"] != int64(12) {
		t.Errorf("summary inputs[angle] = %v (%T), want 12", s.Inputs["angle"], s.Inputs["angle"])
	}
}

func TestFlagConditionOnResult(t *testing.T) {
	ct := NewCaseType("ResultGate").
		Result("converged", func(*Case) (cty.Value, error) { return cty.False, nil }).
		Step("refine", func(*Case) error { return nil }, If(FlagClear("converged")))

	c, err := ct.New(Values{})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	if err := c.Run(context.Background()); err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if got := c.StepStatus("refine"); got != StatusSucceeded {
		t.Errorf("refine status = %q, want succeeded", got)
	}
}

func TestFlagConditionUnknownNameFailsStep(t *testing.T) {
	ct := NewCaseType("BadFlag").
		Step("gated", func(*Case) error { return nil }, If(FlagSet("missing")))

	c, err := ct.New(Values{})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	err = c.Run(context.Background())
	if err == nil {
		t.Fatal("expected failure for unknown flag name")
	}
	if got := c.StepStatus("gated"); got != StatusFailed {
		t.Errorf("gated status = %q, want failed", got)
	}
}
