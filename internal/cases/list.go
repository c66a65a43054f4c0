package cases

import (
	"context"
	"time"
)

// CaseList holds a collection of case instances, possibly of mixed types,
// and runs them in insertion order. The default failure policy is
// continue-on-failure: a failing instance is recorded and the batch moves
// on. Set StopOnFailure to stop at the first failing instance instead.
type CaseList struct {
	StopOnFailure bool

	cases  []*Case
	logger Logger
}

// Report aggregates the outcome of a batch run.
type Report struct {
	Total     int
	Succeeded int
	Failed    int
	Duration  time.Duration
	Failures  []*Case
}

// HasFailures reports whether any instance in the batch failed.
func (r *Report) HasFailures() bool {
	return r.Failed > 0
}

// NewCaseList creates an empty case list.
func NewCaseList() *CaseList {
	return &CaseList{}
}

// SetLogger attaches an execution logger used for every instance in the
// batch.
func (l *CaseList) SetLogger(logger Logger) {
	l.logger = logger
}

// Add appends case instances in the given order.
func (l *CaseList) Add(cs ...*Case) {
	l.cases = append(l.cases, cs...)
}

// Len returns the number of held instances.
func (l *CaseList) Len() int {
	return len(l.cases)
}

// Cases returns the held instances in insertion order.
func (l *CaseList) Cases() []*Case {
	out := make([]*Case, len(l.cases))
	copy(out, l.cases)
	return out
}

// RunAll executes every held instance sequentially in insertion order.
// Under the default policy a failing instance is recorded in the report and
// execution proceeds; the returned error is nil so batch callers treat
// failure as data. With StopOnFailure set, the first failure stops the
// batch and is returned. A cancelled context stops before the next
// instance and returns the context's error.
func (l *CaseList) RunAll(ctx context.Context) (*Report, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	start := time.Now()
	report := &Report{Total: len(l.cases)}

	finish := func() *Report {
		report.Duration = time.Since(start)
		if l.logger != nil {
			l.logger.LogSummary(report)
		}
		return report
	}

	for i, c := range l.cases {
		if err := ctx.Err(); err != nil {
			return finish(), err
		}

		if l.logger != nil {
			c.SetLogger(l.logger)
			l.logger.LogCaseStart(c.typ.name, c.id, i+1, len(l.cases))
		}

		caseStart := time.Now()
		err := c.Run(ctx)
		if l.logger != nil {
			l.logger.LogCaseComplete(c.typ.name, c.id, err != nil, time.Since(caseStart), err)
			l.logger.LogProgress(i+1, len(l.cases))
		}

		if err != nil {
			report.Failed++
			report.Failures = append(report.Failures, c)
			if l.StopOnFailure {
				return finish(), err
			}
			continue
		}
		report.Succeeded++
	}

	return finish(), nil
}
