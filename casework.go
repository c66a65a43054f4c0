// Package casework is the front door of the case runner library: it
// re-exports the case execution core and the plugin registry so programs can
// declare, run, and sweep cases with a single import.
//
//	solver := casework.NewCaseType("SolverCase").
//	    Param("angle", cty.Number, casework.Default(10), casework.Min(0), casework.Max(30)).
//	    Step("mesh", buildMesh).
//	    Step("solve", runSolver, casework.DependsOn("mesh"))
//
//	list := casework.NewCaseList()
//	_, err := list.AddSweep(solver, casework.NewAxis("angle", 5, 10, 15))
//	report, err := list.RunAll(ctx)
//
// The command line interface in cmd/casework and the campaign, history, and
// configuration layers under internal/ build on the same packages.
package casework

import (
	"github.com/zclconf/go-cty/cty"

	"github.com/harrison/casework/internal/cases"
	"github.com/harrison/casework/internal/registry"
	"github.com/harrison/casework/internal/schedule"
)

// Core types of the case execution engine.
type (
	Case     = cases.Case
	CaseType = cases.CaseType
	CaseList = cases.CaseList
	Report   = cases.Report
	Values   = cases.Values
	Axis     = cases.Axis
	Status   = cases.Status

	Action     = cases.Action
	Condition  = cases.Condition
	StepOption = cases.StepOption
	StepSpec   = cases.StepSpec

	ParamOption = cases.ParamOption
	ParamSpec   = cases.ParamSpec
	ResultFunc  = cases.ResultFunc

	Logger = cases.Logger
)

// Step lifecycle states.
const (
	StatusPending   = cases.StatusPending
	StatusRunning   = cases.StatusRunning
	StatusSkipped   = cases.StatusSkipped
	StatusSucceeded = cases.StatusSucceeded
	StatusFailed    = cases.StatusFailed
	StatusAborted   = cases.StatusAborted
)

// Error types raised by construction, scheduling, and execution.
type (
	MissingParameterError = cases.MissingParameterError
	ParameterTypeError    = cases.ParameterTypeError
	ParameterRangeError   = cases.ParameterRangeError
	StepExecutionError    = cases.StepExecutionError

	DependencyDefinitionError = schedule.DependencyDefinitionError
	DependencyCycleError      = schedule.DependencyCycleError

	Registry           = registry.Registry
	Provider           = registry.Provider
	NameCollisionError = registry.NameCollisionError
	CaseNotFoundError  = registry.CaseNotFoundError
)

// NewCaseType starts the declaration of a case type. Add parameters and
// steps with the builder methods, then mint instances with New.
func NewCaseType(name string) *CaseType {
	return cases.NewCaseType(name)
}

// NewCaseList creates an empty case list.
func NewCaseList() *CaseList {
	return cases.NewCaseList()
}

// NewAxis names one swept parameter and its candidate values for AddSweep.
func NewAxis(param string, values ...any) Axis {
	return cases.NewAxis(param, values...)
}

// Default declares a parameter's default value; a parameter without one is
// required.
func Default(v any) ParamOption {
	return cases.Default(v)
}

// Min declares a parameter's inclusive lower bound.
func Min(v any) ParamOption {
	return cases.Min(v)
}

// Max declares a parameter's inclusive upper bound.
func Max(v any) ParamOption {
	return cases.Max(v)
}

// DependsOn declares the steps that must complete before this one runs.
func DependsOn(names ...string) StepOption {
	return cases.DependsOn(names...)
}

// If attaches a condition to a step; a false condition skips the step.
func If(cond Condition) StepOption {
	return cases.If(cond)
}

// FlagSet builds a condition that is true when the named boolean parameter
// or stored result is true.
func FlagSet(name string) Condition {
	return cases.FlagSet(name)
}

// FlagClear builds a condition that is true when the named boolean parameter
// or stored result is false.
func FlagClear(name string) Condition {
	return cases.FlagClear(name)
}

// Command builds a step action that runs an external program in the case
// directory, storing its output, exit code, and duration under key.
func Command(key, program string, args ...string) Action {
	return cases.Command(key, program, args...)
}

// NativeValue converts a bound cty value back to a plain Go value.
func NativeValue(v cty.Value) any {
	return cases.NativeValue(v)
}

// NewRegistry creates an empty case type registry.
func NewRegistry() *Registry {
	return registry.New()
}

// LoadPlugin opens a built Go plugin file and wraps its contributed case
// types in a Provider.
func LoadPlugin(path string) (Provider, error) {
	return registry.LoadPlugin(path)
}

// IsMissingParameter reports whether err is a MissingParameterError.
func IsMissingParameter(err error) bool {
	return cases.IsMissingParameter(err)
}

// IsParameterType reports whether err is a ParameterTypeError.
func IsParameterType(err error) bool {
	return cases.IsParameterType(err)
}

// IsParameterRange reports whether err is a ParameterRangeError.
func IsParameterRange(err error) bool {
	return cases.IsParameterRange(err)
}

// IsStepExecution reports whether err is a StepExecutionError.
func IsStepExecution(err error) bool {
	return cases.IsStepExecution(err)
}

// IsDependencyDefinition reports whether err is a DependencyDefinitionError.
func IsDependencyDefinition(err error) bool {
	return schedule.IsDependencyDefinition(err)
}

// IsDependencyCycle reports whether err is a DependencyCycleError.
func IsDependencyCycle(err error) bool {
	return schedule.IsDependencyCycle(err)
}

// IsNameCollision reports whether err is a NameCollisionError.
func IsNameCollision(err error) bool {
	return registry.IsNameCollision(err)
}

// IsCaseNotFound reports whether err is a CaseNotFoundError.
func IsCaseNotFound(err error) bool {
	return registry.IsCaseNotFound(err)
}
