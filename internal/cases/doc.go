// Package cases implements the case execution core: declaring parametrized
// case types with ordered, possibly-conditional steps, binding validated
// parameter values into case instances, running one instance through its
// dependency-scheduled steps, and expanding parameter sweeps into batches.
//
// # Declaring a case type
//
//	solver := cases.NewCaseType("SolverCase").
//	    Param("angle", cty.Number, cases.Default(10), cases.Min(0), cases.Max(30)).
//	    Param("label", cty.String).
//	    Param("plots", cty.Bool, cases.Default(false)).
//	    Step("mesh", buildMesh).
//	    Step("solve", runSolver, cases.DependsOn("mesh")).
//	    Step("plot", makePlots, cases.DependsOn("solve"), cases.If(cases.FlagSet("plots")))
//
// Steps run in declaration order unless DependsOn says otherwise; the
// schedule is validated (unknown dependencies, cycles) on first use.
//
// # Running
//
//	c, err := solver.New(cases.Values{"label": "baseline", "angle": "12.5"})
//	if err != nil { ... }
//	err = c.Run(ctx)
//
// Values arrive as native Go values, strings from a command surface, or cty
// values; each is coerced through the parameter's declared type. A failing
// step records a StepExecutionError on the instance and aborts every later
// step.
//
// # Sweeps
//
//	list := cases.NewCaseList()
//	_, err := list.AddSweep(solver, cases.NewAxis("angle", 5, 10, 15), cases.NewAxis("label", "a", "b"))
//	report, err := list.RunAll(ctx)
//
// RunAll continues past failing instances by default and aggregates the
// outcome in a Report.
package cases
