package cmd

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harrison/casework/internal/cases"
)

// NewSweepCommand creates the sweep command
func NewSweepCommand() *cobra.Command {
	sweepCmd := &cobra.Command{
		Use:   "sweep <case-type>",
		Short: "Run every combination of the given parameter axes",
		Long: `Sweep expands the cartesian product of repeated --axis flags into
one case per combination and runs them all:

  casework sweep HeatTransfer --axis power=20,40,60 --axis fluid=air,water

Axes iterate in flag order with the last axis varying fastest. Repeated
--param flags pin a parameter to one value across every combination.
Parameters covered by neither an axis nor a pin take their declared
defaults.`,
		Args: cobra.ExactArgs(1),
		RunE: runSweep,
	}

	sweepCmd.Flags().StringArray("plugin", nil, "Case type plugin to load (repeatable)")
	sweepCmd.Flags().StringArray("param", nil, "Pinned parameter value as name=value (repeatable)")
	sweepCmd.Flags().StringArray("axis", nil, "Sweep axis as name=value,value,... (repeatable)")
	sweepCmd.Flags().String("case-dir", "", "Root directory for per-case working directories")
	sweepCmd.Flags().Bool("stop-on-failure", false, "Stop at the first failed case")
	sweepCmd.Flags().Duration("timeout", 0, "Maximum total execution time (0 = no timeout)")
	sweepCmd.Flags().String("log-dir", "", "Directory for run log files")

	return sweepCmd
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cfg.NoColor {
		color.NoColor = true
	}

	reg, err := buildRegistry(cmd, cfg)
	if err != nil {
		return err
	}

	ct, err := reg.Lookup(args[0])
	if err != nil {
		if line := suggestionLine(err); line != "" {
			fmt.Fprintln(cmd.ErrOrStderr(), line)
		}
		return err
	}

	// Pins go ahead of the sweep axes so they never disturb the
	// combination order.
	pinFlags, _ := cmd.Flags().GetStringArray("param")
	axisFlags, _ := cmd.Flags().GetStringArray("axis")

	axes := make([]cases.Axis, 0, len(pinFlags)+len(axisFlags))
	for _, pair := range pinFlags {
		name, value, ok := strings.Cut(pair, "=")
		if !ok || name == "" {
			return fmt.Errorf("invalid --param %q, expected name=value", pair)
		}
		axes = append(axes, cases.NewAxis(name, value))
	}
	sweepAxes, err := parseAxes(axisFlags)
	if err != nil {
		return err
	}
	axes = append(axes, sweepAxes...)

	list := cases.NewCaseList()
	instances, err := list.AddSweep(ct, axes...)
	if err != nil {
		return err
	}
	if len(instances) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "Sweep produced no cases.")
		return nil
	}

	report, err := runList(cmd, cfg, list)
	if err != nil {
		return err
	}

	printSweepResults(cmd.OutOrStdout(), instances)

	if report.HasFailures() {
		return fmt.Errorf("%d case(s) failed", report.Failed)
	}
	return nil
}

// parseAxes splits repeated name=value,value flags into sweep axes, keeping
// flag order so the combination order is reproducible.
func parseAxes(pairs []string) ([]cases.Axis, error) {
	axes := make([]cases.Axis, 0, len(pairs))
	for _, pair := range pairs {
		name, spec, ok := strings.Cut(pair, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid --axis %q, expected name=value,value,...", pair)
		}
		if spec == "" {
			return nil, fmt.Errorf("axis %q has no values", name)
		}
		parts := strings.Split(spec, ",")
		values := make([]any, 0, len(parts))
		for _, p := range parts {
			values = append(values, p)
		}
		axes = append(axes, cases.NewAxis(name, values...))
	}
	return axes, nil
}

// printSweepResults lists each case's bound values and outcome, aligned in
// generation order.
func printSweepResults(out io.Writer, instances []*cases.Case) {
	green := color.New(color.FgGreen)
	red := color.New(color.FgRed)

	rows := make([]string, len(instances))
	width := 0
	for i, c := range instances {
		rows[i] = formatBoundValues(c)
		if len(rows[i]) > width {
			width = len(rows[i])
		}
	}

	fmt.Fprintf(out, "\nSweep results:\n")
	for i, c := range instances {
		fmt.Fprintf(out, "  %-*s  ", width, rows[i])
		if c.Err() != nil {
			red.Fprintf(out, "failed")
			fmt.Fprintf(out, "  %v", c.Err())
		} else {
			green.Fprintf(out, "passed")
		}
		fmt.Fprintln(out)
	}
}

// formatBoundValues renders a case's parameters as sorted name=value pairs.
func formatBoundValues(c *cases.Case) string {
	values := c.Values()
	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s=%v", name, cases.NativeValue(values[name])))
	}
	return strings.Join(parts, " ")
}
