package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harrison/casework/internal/campaign"
	"github.com/harrison/casework/internal/cases"
	"github.com/harrison/casework/internal/display"
	"github.com/harrison/casework/internal/registry"
)

// NewValidateCommand creates the validate command
func NewValidateCommand() *cobra.Command {
	validateCmd := &cobra.Command{
		Use:   "validate <case-type | campaign-file>",
		Short: "Check a case type or campaign file without running anything",
		Long: `Validate checks declarations without executing any steps.

For a case type, the parameter declarations are listed and the step
graph is checked for unknown dependencies and cycles. For a campaign
file, every entry is resolved against the registry and trial-expanded,
so missing case types and bad parameter values surface before a run.`,
		Args: cobra.ExactArgs(1),
		RunE: runValidate,
	}

	validateCmd.Flags().StringArray("plugin", nil, "Case type plugin to load (repeatable)")

	return validateCmd
}

func runValidate(cmd *cobra.Command, args []string) error {
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

	// An existing file is a campaign; anything else is a case type name.
	target := args[0]
	if info, err := os.Stat(target); err == nil && !info.IsDir() {
		return validateCampaign(cmd, reg, target)
	}
	return validateCaseType(cmd, reg, target)
}

func validateCaseType(cmd *cobra.Command, reg *registry.Registry, name string) error {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Validating case type %s...\n\n", name)

	ct, err := reg.Lookup(name)
	if err != nil {
		if line := suggestionLine(err); line != "" {
			fmt.Fprintln(cmd.ErrOrStderr(), line)
		}
		return err
	}

	params := ct.Params()
	fmt.Fprintf(out, "✓ %d parameter(s) declared\n", len(params))
	for _, p := range params {
		fmt.Fprintf(out, "    %s\n", describeParam(p))
	}

	steps := ct.Steps()
	fmt.Fprintf(out, "✓ %d step(s) declared\n", len(steps))
	for _, s := range steps {
		fmt.Fprintf(out, "    %s\n", describeStep(s))
	}

	if err := ct.Validate(); err != nil {
		fmt.Fprintf(out, "✗ %v\n", err)
		return fmt.Errorf("validation failed with 1 error(s)")
	}
	fmt.Fprintf(out, "✓ Step dependencies are satisfiable\n")

	fmt.Fprintf(out, "\n✓ Case type is valid!\n")
	return nil
}

func validateCampaign(cmd *cobra.Command, reg *registry.Registry, path string) error {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Validating campaign %s...\n\n", filepath.Base(path))

	if display.IsUnprefixedCampaignFile(filepath.Base(path)) {
		display.WarnUnprefixedFiles("This file will not be found by directory discovery",
			[]string{filepath.Base(path)}).Display(out)
	}

	camp, err := campaign.ParseFile(path)
	if err != nil {
		fmt.Fprintf(out, "✗ %v\n", err)
		return fmt.Errorf("validation failed with 1 error(s)")
	}
	fmt.Fprintf(out, "✓ Parsed campaign %q (%d entries)\n", camp.Name, len(camp.Entries))

	errorCount := 0
	total := 0
	for i, entry := range camp.Entries {
		ct, err := reg.Lookup(entry.CaseType)
		if err != nil {
			errorCount++
			fmt.Fprintf(out, "✗ entry %d: %v\n", i+1, err)
			if line := suggestionLine(err); line != "" {
				fmt.Fprintf(out, "    %s\n", line)
			}
			continue
		}
		if err := ct.Validate(); err != nil {
			errorCount++
			fmt.Fprintf(out, "✗ entry %d (%s): %v\n", i+1, entry.CaseType, err)
			continue
		}

		// Trial expansion binds every combination without running any
		// steps, so type and range violations surface here.
		trial := cases.NewCaseList()
		built, err := trial.AddSweep(ct, entry.Axes()...)
		if err != nil {
			errorCount++
			fmt.Fprintf(out, "✗ entry %d (%s): %v\n", i+1, entry.CaseType, err)
			continue
		}
		total += len(built)
		fmt.Fprintf(out, "✓ entry %d (%s): %d case(s)\n", i+1, entry.CaseType, len(built))
	}

	if errorCount > 0 {
		return fmt.Errorf("validation failed with %d error(s)", errorCount)
	}

	fmt.Fprintf(out, "\n✓ Campaign is valid! %d case(s) would run.\n", total)
	return nil
}

// describeParam renders one parameter declaration for validate output.
func describeParam(p cases.ParamSpec) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s  %s", p.Name, p.Type.FriendlyName())
	if p.Required() {
		b.WriteString("  required")
	} else {
		fmt.Fprintf(&b, "  default %v", cases.NativeValue(*p.Default))
	}
	if p.Min != nil {
		fmt.Fprintf(&b, ", min %v", cases.NativeValue(*p.Min))
	}
	if p.Max != nil {
		fmt.Fprintf(&b, ", max %v", cases.NativeValue(*p.Max))
	}
	return b.String()
}

// describeStep renders one step declaration for validate output.
func describeStep(s cases.StepSpec) string {
	var b strings.Builder
	b.WriteString(s.Name)
	if len(s.DependsOn) > 0 {
		fmt.Fprintf(&b, "  after %s", strings.Join(s.DependsOn, ", "))
	}
	if s.Condition != nil {
		b.WriteString("  [conditional]")
	}
	return b.String()
}
