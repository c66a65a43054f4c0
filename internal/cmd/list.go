package cmd

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// NewListCommand creates the list command
func NewListCommand() *cobra.Command {
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List registered case types",
		Long: `List shows every case type the registry can resolve, with the
provider that contributed it and its parameter and step counts.`,
		Args: cobra.NoArgs,
		RunE: listCaseTypes,
	}

	listCmd.Flags().StringArray("plugin", nil, "Case type plugin to load (repeatable)")

	return listCmd
}

func listCaseTypes(cmd *cobra.Command, args []string) error {
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

	out := cmd.OutOrStdout()
	names := reg.Names()
	if len(names) == 0 {
		fmt.Fprintln(out, "No case types registered.")
		fmt.Fprintln(out, "Load plugins with --plugin or the plugins list in .casework/config.yaml.")
		return nil
	}

	width := 0
	for _, name := range names {
		if len(name) > width {
			width = len(name)
		}
	}

	bold := color.New(color.Bold)
	gray := color.New(color.FgHiBlack)

	bold.Fprintf(out, "Case types (%d):\n", len(names))
	for _, name := range names {
		ct, err := reg.Lookup(name)
		if err != nil {
			continue
		}
		fmt.Fprintf(out, "  %-*s", width, name)
		gray.Fprintf(out, "  %d parameter(s), %d step(s), from %s",
			len(ct.Params()), len(ct.Steps()), reg.ProviderOf(name))
		fmt.Fprintln(out)
	}
	return nil
}
