package cases

// Status is the lifecycle state of one step within one run.
type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusSkipped   Status = "skipped"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
	StatusAborted   Status = "aborted"
)

// Action is the body of a step. It receives the case instance it runs
// against and reports failure by returning an error.
type Action func(*Case) error

// Condition gates whether a step runs. A nil Condition means always run; a
// Condition returning false skips the step; a Condition returning an error
// fails the step exactly as a failing Action would.
type Condition func(*Case) (bool, error)

// StepSpec declares one unit of work on a case type. Index records the
// declaration position within the type and breaks scheduling ties, so steps
// with no ordering constraint between them run top to bottom.
type StepSpec struct {
	Name      string
	Index     int
	DependsOn []string
	Condition Condition
	Action    Action
}

// StepOption configures a step declaration.
type StepOption func(*StepSpec)

// DependsOn names steps that must complete before this one runs.
func DependsOn(names ...string) StepOption {
	return func(s *StepSpec) {
		s.DependsOn = append(s.DependsOn, names...)
	}
}

// If attaches a run condition to the step.
func If(cond Condition) StepOption {
	return func(s *StepSpec) {
		s.Condition = cond
	}
}
