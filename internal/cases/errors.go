package cases

import (
	"errors"
	"fmt"

	"github.com/zclconf/go-cty/cty"
)

// MissingParameterError reports a required parameter with no supplied value
// and no default. Raised at construction time; the case is never created.
type MissingParameterError struct {
	CaseType string
	Param    string
}

func (e *MissingParameterError) Error() string {
	return fmt.Sprintf("%s: missing required parameter %q", e.CaseType, e.Param)
}

// ParameterTypeError reports a raw value that could not be coerced to the
// parameter's declared type.
type ParameterTypeError struct {
	CaseType string
	Param    string
	Raw      any
	Want     cty.Type
	Err      error
}

func (e *ParameterTypeError) Error() string {
	return fmt.Sprintf("%s: parameter %q: cannot convert %v to %s",
		e.CaseType, e.Param, rawString(e.Raw), e.Want.FriendlyName())
}

func (e *ParameterTypeError) Unwrap() error {
	return e.Err
}

// ParameterRangeError reports a coerced value outside the declared bounds.
// Bound is the violated limit and Violated names which one ("minimum" or
// "maximum").
type ParameterRangeError struct {
	CaseType string
	Param    string
	Value    cty.Value
	Bound    cty.Value
	Violated string
}

func (e *ParameterRangeError) Error() string {
	relation := "below"
	if e.Violated == "maximum" {
		relation = "above"
	}
	return fmt.Sprintf("%s: parameter %q: value %s is %s the %s %s",
		e.CaseType, e.Param, valueString(e.Value), relation, e.Violated, valueString(e.Bound))
}

// StepExecutionError wraps the failure of a step's action or condition. It is
// recorded on the case instance that failed.
type StepExecutionError struct {
	CaseType string
	Step     string
	Err      error
}

func (e *StepExecutionError) Error() string {
	return fmt.Sprintf("%s: step %q failed: %v", e.CaseType, e.Step, e.Err)
}

func (e *StepExecutionError) Unwrap() error {
	return e.Err
}

func newStepExecutionError(caseType, step string, err error) *StepExecutionError {
	return &StepExecutionError{CaseType: caseType, Step: step, Err: err}
}

// IsMissingParameter reports whether err is a MissingParameterError.
func IsMissingParameter(err error) bool {
	var target *MissingParameterError
	return errors.As(err, &target)
}

// IsParameterType reports whether err is a ParameterTypeError.
func IsParameterType(err error) bool {
	var target *ParameterTypeError
	return errors.As(err, &target)
}

// IsParameterRange reports whether err is a ParameterRangeError.
func IsParameterRange(err error) bool {
	var target *ParameterRangeError
	return errors.As(err, &target)
}

// IsStepExecution reports whether err is a StepExecutionError.
func IsStepExecution(err error) bool {
	var target *StepExecutionError
	return errors.As(err, &target)
}

func rawString(raw any) string {
	if s, ok := raw.(string); ok {
		return fmt.Sprintf("%q", s)
	}
	if v, ok := raw.(cty.Value); ok {
		return valueString(v)
	}
	return fmt.Sprintf("%v", raw)
}
