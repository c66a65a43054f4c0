package cases

import (
	"context"
	"fmt"
	"time"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"

	"github.com/harrison/casework/internal/casedir"
)

// Logger receives execution events. Implementations must tolerate being
// called for every step of every case in a batch.
type Logger interface {
	LogCaseStart(caseType, id string, index, total int)
	LogStepResult(caseType, step string, status Status, duration time.Duration, err error)
	LogCaseComplete(caseType, id string, failed bool, duration time.Duration, err error)
	LogProgress(completed, total int)
	LogSummary(report *Report)
}

// Case is one bound, runnable realization of a case type. Parameter values
// are fully populated and validated before the instance exists; all mutable
// state is owned by the instance, so independent cases never interfere.
type Case struct {
	typ     *CaseType
	id      string
	dir     string
	values  map[string]cty.Value
	status  map[string]Status
	err     error
	results map[string]cty.Value

	ctx    context.Context
	logger Logger
}

// Type returns the case type this instance was built from.
func (c *Case) Type() *CaseType {
	return c.typ
}

// ID returns the instance identifier assigned at construction.
func (c *Case) ID() string {
	return c.id
}

// Dir returns the case working directory, empty when none is set.
func (c *Case) Dir() string {
	return c.dir
}

// SetDir assigns a working directory. When set, Run creates it and writes
// the case summary file under it before any step executes, and command
// actions run inside it.
func (c *Case) SetDir(dir string) {
	c.dir = dir
}

// SetLogger attaches an execution logger. A nil logger silences the case.
func (c *Case) SetLogger(l Logger) {
	c.logger = l
}

// Context returns the context of the run in progress, or a background
// context outside of Run. Step helpers use it for subprocesses.
func (c *Case) Context() context.Context {
	if c.ctx == nil {
		return context.Background()
	}
	return c.ctx
}

// Value returns the bound value of a parameter.
func (c *Case) Value(name string) (cty.Value, bool) {
	v, ok := c.values[name]
	return v, ok
}

// Values returns a copy of all bound parameter values.
func (c *Case) Values() map[string]cty.Value {
	out := make(map[string]cty.Value, len(c.values))
	for k, v := range c.values {
		out[k] = v
	}
	return out
}

// StepStatus returns the status of one step, or the empty string for an
// unknown step name.
func (c *Case) StepStatus(name string) Status {
	return c.status[name]
}

// Statuses returns a copy of the per-step status map.
func (c *Case) Statuses() map[string]Status {
	out := make(map[string]Status, len(c.status))
	for k, v := range c.status {
		out[k] = v
	}
	return out
}

// Err returns the error recorded by the most recent run, nil after success.
func (c *Case) Err() error {
	return c.err
}

// Result returns a named result, computing and caching it on first access
// when the case type registered a function for it.
func (c *Case) Result(name string) (cty.Value, error) {
	if v, ok := c.results[name]; ok {
		return v, nil
	}
	f, ok := c.typ.results[name]
	if !ok {
		return cty.NilVal, fmt.Errorf("%s: no result named %q", c.typ.name, name)
	}
	v, err := f(c)
	if err != nil {
		return cty.NilVal, fmt.Errorf("%s: result %q: %w", c.typ.name, name, err)
	}
	c.results[name] = v
	return v, nil
}

// StoreResult records a named value on the instance, overwriting any cached
// result of the same name. Step helpers use it to publish their outputs.
func (c *Case) StoreResult(name string, v cty.Value) {
	c.results[name] = v
}

// String returns a string parameter. It panics on an unknown name or an
// unconvertible value; inside a step action the panic fails the step.
func (c *Case) String(name string) string {
	var out string
	c.mustDecode(name, &out)
	return out
}

// Float64 returns a number parameter as float64. Panics like String.
func (c *Case) Float64(name string) float64 {
	var out float64
	c.mustDecode(name, &out)
	return out
}

// Int64 returns an integral number parameter. Panics like String, including
// on a fractional value.
func (c *Case) Int64(name string) int64 {
	var out int64
	c.mustDecode(name, &out)
	return out
}

// Bool returns a boolean parameter. Panics like String.
func (c *Case) Bool(name string) bool {
	var out bool
	c.mustDecode(name, &out)
	return out
}

func (c *Case) mustDecode(name string, target any) {
	v, ok := c.values[name]
	if !ok {
		panic(fmt.Sprintf("cases: %s: no parameter %q", c.typ.name, name))
	}
	if err := gocty.FromCtyValue(v, target); err != nil {
		panic(fmt.Sprintf("cases: %s: parameter %q: %v", c.typ.name, name, err))
	}
}

// Run executes the case's steps in the scheduled order. Scheduling errors
// (unknown dependencies, cycles) return before any action executes. A false
// condition skips its step; a condition error or action error (or panic)
// fails the step, records a StepExecutionError on the case, marks every
// later step aborted and returns the error. Statuses reset to pending at
// the start of each invocation, so no step runs twice within one Run.
func (c *Case) Run(ctx context.Context) error {
	c.typ.seal()
	order, err := c.typ.executionOrder()
	if err != nil {
		return err
	}

	if ctx == nil {
		ctx = context.Background()
	}
	c.ctx = ctx
	defer func() { c.ctx = nil }()

	c.err = nil
	for name := range c.status {
		c.status[name] = StatusPending
	}

	if c.dir != "" {
		if err := c.writeSummary(); err != nil {
			c.err = err
			return err
		}
	}

	for i, name := range order {
		if err := ctx.Err(); err != nil {
			c.abortFrom(order, i)
			c.err = err
			return err
		}

		step := c.typ.step(name)
		start := time.Now()

		if step.Condition != nil {
			proceed, err := step.Condition(c)
			if err != nil {
				return c.fail(order, i, name, start, err)
			}
			if !proceed {
				c.status[name] = StatusSkipped
				c.logStep(name, StatusSkipped, time.Since(start), nil)
				continue
			}
		}

		c.status[name] = StatusRunning
		if err := c.invoke(step); err != nil {
			return c.fail(order, i, name, start, err)
		}
		c.status[name] = StatusSucceeded
		c.logStep(name, StatusSucceeded, time.Since(start), nil)
	}

	return nil
}

// invoke runs the step's action, converting a panic into an error so one
// misbehaving step fails its case instead of the process.
func (c *Case) invoke(step *StepSpec) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return step.Action(c)
}

func (c *Case) fail(order []string, i int, name string, start time.Time, cause error) error {
	c.status[name] = StatusFailed
	c.err = newStepExecutionError(c.typ.name, name, cause)
	c.logStep(name, StatusFailed, time.Since(start), cause)
	c.abortFrom(order, i+1)
	return c.err
}

func (c *Case) abortFrom(order []string, from int) {
	for _, name := range order[from:] {
		c.status[name] = StatusAborted
		c.logStep(name, StatusAborted, 0, nil)
	}
}

func (c *Case) logStep(name string, status Status, d time.Duration, err error) {
	if c.logger != nil {
		c.logger.LogStepResult(c.typ.name, name, status, d, err)
	}
}

func (c *Case) writeSummary() error {
	inputs := make(map[string]any, len(c.values))
	for name, v := range c.values {
		inputs[name] = NativeValue(v)
	}
	summary := casedir.Summary{
		CaseType: c.typ.name,
		CaseID:   c.id,
		Inputs:   inputs,
	}
	return casedir.Write(c.dir, summary)
}
