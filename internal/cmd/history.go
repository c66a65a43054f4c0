package cmd

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harrison/casework/internal/config"
	"github.com/harrison/casework/internal/history"
)

// NewHistoryCommand creates the history command
func NewHistoryCommand() *cobra.Command {
	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Show recorded case runs",
		Long: `History lists recent case runs from the history database, newest
first. Runs are recorded automatically unless history is disabled in
the configuration.`,
		Args: cobra.NoArgs,
		RunE: showHistory,
	}

	historyCmd.Flags().String("case-type", "", "Only show runs of this case type")
	historyCmd.Flags().Int("limit", 0, "Maximum number of runs to show")

	return historyCmd
}

func showHistory(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cfg.NoColor {
		color.NoColor = true
	}

	out := cmd.OutOrStdout()

	dbPath := cfg.History.DBPath
	if dbPath == "" {
		dbPath, err = config.HistoryDBPath()
		if err != nil {
			return err
		}
	}
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		fmt.Fprintln(out, "No run history found.")
		return nil
	}

	store, err := history.NewStore(dbPath)
	if err != nil {
		return fmt.Errorf("open history database: %w", err)
	}
	defer store.Close()

	limit, _ := cmd.Flags().GetInt("limit")
	if limit <= 0 {
		limit = cfg.History.Limit
	}
	caseType, _ := cmd.Flags().GetString("case-type")

	ctx := cmd.Context()
	var runs []*history.Run
	if caseType != "" {
		runs, err = store.RunsByCaseType(ctx, caseType, limit)
	} else {
		runs, err = store.RecentRuns(ctx, limit)
	}
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Fprintln(out, "No run history found.")
		return nil
	}

	bold := color.New(color.Bold)
	green := color.New(color.FgGreen)
	red := color.New(color.FgRed)
	gray := color.New(color.FgHiBlack)

	if caseType != "" {
		bold.Fprintf(out, "Run history for %s (latest %d):\n\n", caseType, len(runs))
	} else {
		bold.Fprintf(out, "Run history (latest %d):\n\n", len(runs))
	}

	for _, run := range runs {
		fmt.Fprintf(out, "  %s ", formatTimestamp(run.FinishedAt))
		gray.Fprintf(out, "(%s ago)", humanizeSince(run.FinishedAt))
		fmt.Fprintf(out, "  %s [%s]  ", run.CaseType, shortRunID(run.CaseID))
		if run.Failed {
			red.Fprintf(out, "failed")
			if run.ErrorMessage != "" {
				fmt.Fprintf(out, "  %s", run.ErrorMessage)
			}
		} else {
			green.Fprintf(out, "passed")
		}
		gray.Fprintf(out, "  in %s", run.Duration)
		fmt.Fprintln(out)

		if len(run.Parameters) > 0 {
			gray.Fprintf(out, "      %s\n", formatRunParams(run.Parameters))
		}
	}

	if caseType != "" {
		failures, err := store.FailureCount(ctx, caseType)
		if err == nil && failures > 0 {
			fmt.Fprintln(out)
			red.Fprintf(out, "%d recorded failure(s) of %s overall\n", failures, caseType)
		}
	}

	return nil
}

// formatTimestamp renders an absolute time for history rows.
func formatTimestamp(t time.Time) string {
	return t.Format("2006-01-02 15:04:05")
}

// humanizeSince renders the elapsed time since t at coarse granularity.
func humanizeSince(t time.Time) string {
	d := time.Since(t)
	if d < 0 {
		d = 0
	}
	switch {
	case d < time.Minute:
		return fmt.Sprintf("%ds", int(d.Seconds()))
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd", int(d.Hours()/24))
	}
}

// shortRunID trims a case identifier for one-line output.
func shortRunID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// formatRunParams renders recorded parameters as sorted name=value pairs.
func formatRunParams(params map[string]any) string {
	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s=%v", name, params[name]))
	}
	return strings.Join(parts, " ")
}
