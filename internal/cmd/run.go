package cmd

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harrison/casework/internal/campaign"
	"github.com/harrison/casework/internal/casedir"
	"github.com/harrison/casework/internal/cases"
	"github.com/harrison/casework/internal/config"
	"github.com/harrison/casework/internal/display"
	"github.com/harrison/casework/internal/history"
	"github.com/harrison/casework/internal/logger"
	"github.com/harrison/casework/internal/registry"
)

// NewRunCommand creates the run command
func NewRunCommand() *cobra.Command {
	runCmd := &cobra.Command{
		Use:   "run [case-type]",
		Short: "Run a case type, a campaign file, or a directory of campaigns",
		Long: `Run executes cases and reports per-step results.

Three input modes are supported:

  casework run HeatTransfer --param power=40 --param fluid=air
  casework run --campaign campaign-nightly.yaml
  casework run --dir ./campaigns

A case type name runs one case, bound from repeated --param flags.
A campaign file runs its entries in file order, expanding any sweep
axes. A directory runs every campaign-*.{md,markdown,yaml,yml} file
under it.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runCases,
	}

	runCmd.Flags().StringArray("plugin", nil, "Case type plugin to load (repeatable)")
	runCmd.Flags().StringArray("param", nil, "Parameter value as name=value (repeatable)")
	runCmd.Flags().String("campaign", "", "Campaign file to run")
	runCmd.Flags().String("dir", "", "Directory to scan for campaign files")
	runCmd.Flags().String("case-dir", "", "Root directory for per-case working directories")
	runCmd.Flags().Bool("stop-on-failure", false, "Stop at the first failed case")
	runCmd.Flags().Duration("timeout", 0, "Maximum total execution time (0 = no timeout)")
	runCmd.Flags().String("log-dir", "", "Directory for run log files")

	return runCmd
}

func runCases(cmd *cobra.Command, args []string) error {
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

	campaignFile, _ := cmd.Flags().GetString("campaign")
	dirPath, _ := cmd.Flags().GetString("dir")

	var list *cases.CaseList
	switch {
	case campaignFile != "" && dirPath != "":
		return fmt.Errorf("--campaign and --dir cannot be combined")
	case campaignFile != "":
		if len(args) > 0 {
			return fmt.Errorf("give either a case type or --campaign, not both")
		}
		list, err = loadCampaign(cmd, reg, campaignFile)
	case dirPath != "":
		if len(args) > 0 {
			return fmt.Errorf("give either a case type or --dir, not both")
		}
		list, err = loadCampaignDir(cmd, reg, dirPath)
	case len(args) == 1:
		list, err = singleCaseList(cmd, reg, args[0])
	default:
		return fmt.Errorf("nothing to run: give a case type name, --campaign, or --dir")
	}
	if err != nil {
		if line := suggestionLine(err); line != "" {
			fmt.Fprintln(cmd.ErrOrStderr(), line)
		}
		return err
	}

	return executeList(cmd, cfg, list)
}

// loadConfig loads configuration, letting command line flags override file
// values, and validates the result.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	configPath, _ := cmd.Flags().GetString("config")

	var cfg *config.Config
	var err error
	if configPath != "" {
		cfg, err = config.LoadConfig(configPath)
	} else {
		cfg, err = config.LoadConfigFromDir(".")
	}
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}

	var logLevel *string
	if cmd.Flags().Changed("log-level") {
		v, _ := cmd.Flags().GetString("log-level")
		logLevel = &v
	}
	var timeout *time.Duration
	if cmd.Flags().Changed("timeout") {
		v, _ := cmd.Flags().GetDuration("timeout")
		timeout = &v
	}
	var noColor *bool
	if cmd.Flags().Changed("no-color") {
		v, _ := cmd.Flags().GetBool("no-color")
		noColor = &v
	}
	var stopOnFailure *bool
	if cmd.Flags().Changed("stop-on-failure") {
		v, _ := cmd.Flags().GetBool("stop-on-failure")
		stopOnFailure = &v
	}
	var caseRoot *string
	if cmd.Flags().Changed("case-dir") {
		v, _ := cmd.Flags().GetString("case-dir")
		caseRoot = &v
	}
	cfg.MergeWithFlags(logLevel, timeout, noColor, stopOnFailure, caseRoot)

	if cmd.Flags().Changed("log-dir") {
		v, _ := cmd.Flags().GetString("log-dir")
		cfg.LogDir = v
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// builtinProviders are contributed by the host program before Execute, so a
// binary embedding these commands can expose its compiled-in case types
// without plugin files.
var builtinProviders []registry.Provider

// RegisterProvider adds a provider to every registry the commands build.
// Call it before Execute.
func RegisterProvider(p registry.Provider) {
	builtinProviders = append(builtinProviders, p)
}

// buildRegistry registers built-in providers, then loads the case type
// plugins named by configuration and by repeated --plugin flags. Load
// failures are resolution errors, not run failures.
func buildRegistry(cmd *cobra.Command, cfg *config.Config) (*registry.Registry, error) {
	reg := registry.New()
	if err := reg.Discover(builtinProviders...); err != nil {
		return nil, &resolveError{err}
	}

	flagPlugins, _ := cmd.Flags().GetStringArray("plugin")

	paths := make([]string, 0, len(cfg.Plugins)+len(flagPlugins))
	paths = append(paths, cfg.Plugins...)
	paths = append(paths, flagPlugins...)

	if err := reg.DiscoverPlugins(paths...); err != nil {
		return nil, &resolveError{err}
	}
	return reg, nil
}

// singleCaseList binds one case of the named type from --param flags.
func singleCaseList(cmd *cobra.Command, reg *registry.Registry, name string) (*cases.CaseList, error) {
	ct, err := reg.Lookup(name)
	if err != nil {
		return nil, err
	}

	pairs, _ := cmd.Flags().GetStringArray("param")
	values, err := parseParams(pairs)
	if err != nil {
		return nil, err
	}

	c, err := ct.New(values)
	if err != nil {
		return nil, err
	}

	list := cases.NewCaseList()
	list.Add(c)
	return list, nil
}

// loadCampaign parses one campaign file and resolves it against the registry.
func loadCampaign(cmd *cobra.Command, reg *registry.Registry, path string) (*cases.CaseList, error) {
	display.DisplaySingleFile(cmd.OutOrStdout(), path)

	camp, err := campaign.ParseFile(path)
	if err != nil {
		return nil, err
	}
	return camp.Resolve(reg)
}

// loadCampaignDir scans a directory for campaign files and merges their
// resolved cases into one list, in sorted file order.
func loadCampaignDir(cmd *cobra.Command, reg *registry.Registry, dir string) (*cases.CaseList, error) {
	out := cmd.OutOrStdout()

	files, err := campaign.FilterCampaignFiles([]string{dir})
	if err != nil {
		return nil, err
	}

	if unprefixed, err := display.FindUnprefixedFiles(dir); err == nil && len(unprefixed) > 0 {
		display.WarnUnprefixedFiles("Some files in this directory will not be loaded", unprefixed).Display(out)
	}

	progress := display.NewProgressIndicator(out, len(files))
	progress.Start()

	merged := cases.NewCaseList()
	for _, file := range files {
		progress.Step(file)

		camp, err := campaign.ParseFile(file)
		if err != nil {
			return nil, err
		}
		list, err := camp.Resolve(reg)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", filepath.Base(file), err)
		}
		if list.StopOnFailure {
			merged.StopOnFailure = true
		}
		merged.Add(list.Cases()...)
	}
	progress.Complete()

	return merged, nil
}

// executeList runs a case list and folds the report into the command error:
// nil only when every case passed.
func executeList(cmd *cobra.Command, cfg *config.Config, list *cases.CaseList) error {
	report, err := runList(cmd, cfg, list)
	if err != nil {
		return err
	}
	if report.HasFailures() {
		return fmt.Errorf("%d case(s) failed", report.Failed)
	}
	return nil
}

// runList wires loggers, per-case directories, and history recording around
// a case list, then runs it under the configured timeout.
func runList(cmd *cobra.Command, cfg *config.Config, list *cases.CaseList) (*cases.Report, error) {
	if cfg.StopOnFailure {
		list.StopOnFailure = true
	}

	if cfg.CaseRoot != "" {
		for _, c := range list.Cases() {
			c.SetDir(casedir.InstanceDir(cfg.CaseRoot, c.Type().Name(), c.ID()))
		}
	}

	console := logger.NewConsoleLogger(cmd.OutOrStdout(), cfg.LogLevel)
	if cfg.NoColor {
		console.DisableColor()
	}
	loggers := []cases.Logger{console}

	if cfg.LogDir != "" {
		fileLog, err := logger.NewFileLoggerWithDirAndLevel(cfg.LogDir, cfg.LogLevel)
		if err != nil {
			console.LogWarn(fmt.Sprintf("run log disabled: %v", err))
		} else {
			defer fileLog.Close()
			loggers = append(loggers, fileLog)
		}
	}

	if cfg.History.Enabled {
		store, err := openHistoryStore(cfg)
		if err != nil {
			console.LogWarn(fmt.Sprintf("run history disabled: %v", err))
		} else {
			defer store.Close()
			loggers = append(loggers, newHistoryRecorder(store, list.Cases(), console))
		}
	}

	list.SetLogger(&multiLogger{loggers: loggers})

	ctx := cmd.Context()
	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	return list.RunAll(ctx)
}

// openHistoryStore opens the history database at the configured path, or the
// default location under the casework home.
func openHistoryStore(cfg *config.Config) (*history.Store, error) {
	dbPath := cfg.History.DBPath
	if dbPath == "" {
		p, err := config.HistoryDBPath()
		if err != nil {
			return nil, err
		}
		dbPath = p
	}
	return history.NewStore(dbPath)
}

// parseParams splits repeated name=value flags into a value map. Values stay
// strings; binding coerces them against the declared parameter types.
func parseParams(pairs []string) (cases.Values, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	values := make(cases.Values, len(pairs))
	for _, pair := range pairs {
		name, value, ok := strings.Cut(pair, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid --param %q, expected name=value", pair)
		}
		values[name] = value
	}
	return values, nil
}

// suggestionLine builds a hint for a failed case type lookup, either close
// matches or the full list of known names. Empty when err is not a lookup
// failure.
func suggestionLine(err error) string {
	var notFound *registry.CaseNotFoundError
	if !errors.As(err, &notFound) || len(notFound.Known) == 0 {
		return ""
	}
	matches := closeNames(notFound.Name, notFound.Known, 3)
	if len(matches) == 0 {
		return "Known case types: " + strings.Join(notFound.Known, ", ")
	}
	quoted := make([]string, len(matches))
	for i, m := range matches {
		quoted[i] = fmt.Sprintf("%q", m)
	}
	return "Did you mean " + strings.Join(quoted, " or ") + "?"
}

// closeNames picks up to max known names that plausibly match a mistyped
// name, comparing case-insensitively on equality, prefixes, and substrings.
func closeNames(name string, known []string, max int) []string {
	lower := strings.ToLower(name)
	var matches []string
	for _, k := range known {
		kl := strings.ToLower(k)
		if kl == lower || strings.HasPrefix(kl, lower) || strings.Contains(kl, lower) || strings.HasPrefix(lower, kl) {
			matches = append(matches, k)
			if len(matches) == max {
				break
			}
		}
	}
	return matches
}

// multiLogger fans execution events out to each attached logger.
type multiLogger struct {
	loggers []cases.Logger
}

func (m *multiLogger) LogCaseStart(caseType, id string, index, total int) {
	for _, l := range m.loggers {
		l.LogCaseStart(caseType, id, index, total)
	}
}

func (m *multiLogger) LogStepResult(caseType, step string, status cases.Status, duration time.Duration, err error) {
	for _, l := range m.loggers {
		l.LogStepResult(caseType, step, status, duration, err)
	}
}

func (m *multiLogger) LogCaseComplete(caseType, id string, failed bool, duration time.Duration, err error) {
	for _, l := range m.loggers {
		l.LogCaseComplete(caseType, id, failed, duration, err)
	}
}

func (m *multiLogger) LogProgress(completed, total int) {
	for _, l := range m.loggers {
		l.LogProgress(completed, total)
	}
}

func (m *multiLogger) LogSummary(report *cases.Report) {
	for _, l := range m.loggers {
		l.LogSummary(report)
	}
}

// historyRecorder writes finished cases to the history store as they
// complete. Store failures degrade to warnings; history must never fail a
// run.
type historyRecorder struct {
	store *history.Store
	byID  map[string]*cases.Case
	warn  func(msg string)
}

func newHistoryRecorder(store *history.Store, cs []*cases.Case, console *logger.ConsoleLogger) *historyRecorder {
	byID := make(map[string]*cases.Case, len(cs))
	for _, c := range cs {
		byID[c.ID()] = c
	}
	return &historyRecorder{
		store: store,
		byID:  byID,
		warn:  console.LogWarn,
	}
}

func (r *historyRecorder) LogCaseStart(caseType, id string, index, total int) {}

func (r *historyRecorder) LogStepResult(caseType, step string, status cases.Status, duration time.Duration, err error) {
}

func (r *historyRecorder) LogCaseComplete(caseType, id string, failed bool, duration time.Duration, caseErr error) {
	c, ok := r.byID[id]
	if !ok {
		return
	}

	params := make(map[string]any)
	for name, v := range c.Values() {
		params[name] = cases.NativeValue(v)
	}
	statuses := make(map[string]string)
	for name, s := range c.Statuses() {
		statuses[name] = string(s)
	}
	errMsg := ""
	if caseErr != nil {
		errMsg = caseErr.Error()
	}

	finished := time.Now()
	run := &history.Run{
		CaseType:     caseType,
		CaseID:       id,
		Parameters:   params,
		StepStatuses: statuses,
		Failed:       failed,
		ErrorMessage: errMsg,
		CaseDir:      c.Dir(),
		StartedAt:    finished.Add(-duration),
		FinishedAt:   finished,
		Duration:     duration,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := r.store.RecordRun(ctx, run); err != nil {
		r.warn(fmt.Sprintf("record run history: %v", err))
	}
}

func (r *historyRecorder) LogProgress(completed, total int) {}

func (r *historyRecorder) LogSummary(report *cases.Report) {}
