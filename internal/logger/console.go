// Package logger provides logging implementations for case execution.
//
// Loggers record case starts, step results, and the final run summary.
// Implementations are thread-safe and write either to a console writer or
// to run log files.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"

	"github.com/harrison/casework/internal/cases"
)

var _ cases.Logger = (*ConsoleLogger)(nil)
var _ cases.Logger = (*NoOpLogger)(nil)

// levelRanks orders level names from most to least verbose.
var levelRanks = map[string]int{
	"trace": 0,
	"debug": 1,
	"info":  2,
	"warn":  3,
	"error": 4,
}

// ConsoleLogger writes timestamped case progress to a single writer.
// Messages below the configured level are dropped, and a mutex keeps
// concurrent callers from interleaving lines. Color is used only when the
// writer is an interactive terminal.
type ConsoleLogger struct {
	mu          sync.Mutex
	writer      io.Writer
	logLevel    string
	colorOutput bool
}

// NewConsoleLogger builds a logger for the given writer and minimum level.
// A nil writer discards everything. Levels are trace, debug, info, warn and
// error (case-insensitive); anything unrecognized falls back to info.
func NewConsoleLogger(writer io.Writer, logLevel string) *ConsoleLogger {
	return &ConsoleLogger{
		writer:      writer,
		logLevel:    normalizeLogLevel(logLevel),
		colorOutput: isTerminal(writer),
	}
}

// DisableColor forces plain output regardless of terminal detection.
func (cl *ConsoleLogger) DisableColor() {
	cl.mu.Lock()
	defer cl.mu.Unlock()
	cl.colorOutput = false
}

// isTerminal reports whether w is an interactive terminal.
// NO_COLOR and similar overrides are honored through the color package.
func isTerminal(w io.Writer) bool {
	if w == nil || color.NoColor {
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// normalizeLogLevel lowercases a level name, falling back to "info" for
// empty or unknown values.
func normalizeLogLevel(level string) string {
	l := strings.ToLower(strings.TrimSpace(level))
	if _, ok := levelRanks[l]; ok {
		return l
	}
	return "info"
}

// shouldLog reports whether a message at messageLevel clears the configured
// threshold.
func (cl *ConsoleLogger) shouldLog(messageLevel string) bool {
	return levelRank(messageLevel) >= levelRank(cl.logLevel)
}

// levelRank resolves a level name to its severity rank. Unknown names rank
// as info.
func levelRank(level string) int {
	if r, ok := levelRanks[level]; ok {
		return r
	}
	return levelRanks["info"]
}

// LogTrace logs a message at the most verbose level.
func (cl *ConsoleLogger) LogTrace(message string) {
	cl.logAt("TRACE", message)
}

// LogDebug logs a message at debug level.
func (cl *ConsoleLogger) LogDebug(message string) {
	cl.logAt("DEBUG", message)
}

// LogInfo logs a message at info level.
func (cl *ConsoleLogger) LogInfo(message string) {
	cl.logAt("INFO", message)
}

// LogWarn logs a message at warn level.
func (cl *ConsoleLogger) LogWarn(message string) {
	cl.logAt("WARN", message)
}

// LogError logs a message at error level.
func (cl *ConsoleLogger) LogError(message string) {
	cl.logAt("ERROR", message)
}

// logAt writes one leveled line, "[HH:MM:SS] [LEVEL] <message>", if the
// level clears the filter.
func (cl *ConsoleLogger) logAt(level, message string) {
	if cl.writer == nil || !cl.shouldLog(strings.ToLower(level)) {
		return
	}

	cl.mu.Lock()
	defer cl.mu.Unlock()

	tag := level
	if cl.colorOutput {
		tag = coloredLevel(level)
	}
	line := fmt.Sprintf("[%s] [%s] %s\n", timestamp(), tag, message)

	cl.writer.Write([]byte(line))
}

// coloredLevel renders a level tag with its ANSI color.
func coloredLevel(level string) string {
	switch strings.ToUpper(level) {
	case "TRACE":
		return color.New(color.FgHiBlack).Sprint(level)
	case "DEBUG":
		return color.New(color.FgCyan).Sprint(level)
	case "INFO":
		return color.New(color.FgBlue).Sprint(level)
	case "WARN":
		return color.New(color.FgYellow).Sprint(level)
	case "ERROR":
		return color.New(color.FgRed).Sprint(level)
	default:
		return level
	}
}

// LogCaseStart logs the start of a case at INFO level.
// Format: "[HH:MM:SS] Starting <type> [<id>] (<index>/<total>)"
func (cl *ConsoleLogger) LogCaseStart(caseType, id string, index, total int) {
	if cl.writer == nil || !cl.shouldLog("info") {
		return
	}

	cl.mu.Lock()
	defer cl.mu.Unlock()

	ts := timestamp()
	name := caseType
	if cl.colorOutput {
		name = color.New(color.Bold).Sprint(caseType)
	}
	message := fmt.Sprintf("[%s] Starting %s [%s] (%d/%d)\n", ts, name, shortID(id), index, total)

	cl.writer.Write([]byte(message))
}

// LogStepResult logs the outcome of a single step.
// Failed steps log at ERROR level, everything else at DEBUG.
// Format: "[HH:MM:SS] <type>/<step>: <status> (<duration>)"
func (cl *ConsoleLogger) LogStepResult(caseType, step string, status cases.Status, duration time.Duration, err error) {
	if cl.writer == nil {
		return
	}
	level := "debug"
	if status == cases.StatusFailed {
		level = "error"
	}
	if !cl.shouldLog(level) {
		return
	}

	cl.mu.Lock()
	defer cl.mu.Unlock()

	ts := timestamp()
	statusText := string(status)
	if cl.colorOutput {
		statusText = statusColor(status).Sprint(statusText)
	}

	message := fmt.Sprintf("[%s] %s/%s: %s", ts, caseType, step, statusText)
	if status == cases.StatusSucceeded || status == cases.StatusFailed {
		message += fmt.Sprintf(" (%s)", formatDuration(duration))
	}
	if err != nil {
		message += fmt.Sprintf(": %v", err)
	}
	message += "\n"

	cl.writer.Write([]byte(message))
}

// LogCaseComplete logs the completion of a case.
// Failed cases log at ERROR level, passing cases at INFO.
// Format: "[HH:MM:SS] <type> [<id>] passed (<duration>)"
func (cl *ConsoleLogger) LogCaseComplete(caseType, id string, failed bool, duration time.Duration, err error) {
	if cl.writer == nil {
		return
	}
	level := "info"
	if failed {
		level = "error"
	}
	if !cl.shouldLog(level) {
		return
	}

	cl.mu.Lock()
	defer cl.mu.Unlock()

	ts := timestamp()
	outcome := "passed"
	if failed {
		outcome = "failed"
	}
	if cl.colorOutput {
		if failed {
			outcome = color.New(color.FgRed).Sprint(outcome)
		} else {
			outcome = color.New(color.FgGreen).Sprint(outcome)
		}
	}

	message := fmt.Sprintf("[%s] %s [%s] %s (%s)", ts, caseType, shortID(id), outcome, formatDuration(duration))
	if failed && err != nil {
		message += fmt.Sprintf(": %v", err)
	}
	message += "\n"

	cl.writer.Write([]byte(message))
}

// LogSummary logs the run summary with completion statistics at INFO level.
func (cl *ConsoleLogger) LogSummary(report *cases.Report) {
	if cl.writer == nil || report == nil {
		return
	}
	if !cl.shouldLog("info") {
		return
	}

	cl.mu.Lock()
	defer cl.mu.Unlock()

	ts := timestamp()
	durationStr := formatDuration(report.Duration)

	var output string
	if cl.colorOutput {
		header := color.New(color.Bold).Sprint("=== Case Summary ===")
		output = fmt.Sprintf("[%s] %s\n", ts, header)
		output += fmt.Sprintf("[%s] Total cases: %d\n", ts, report.Total)

		succeededText := color.New(color.FgGreen).Sprintf("Succeeded: %d", report.Succeeded)
		output += fmt.Sprintf("[%s] %s\n", ts, succeededText)

		if report.Failed > 0 {
			failedText := color.New(color.FgRed).Sprintf("Failed: %d", report.Failed)
			output += fmt.Sprintf("[%s] %s\n", ts, failedText)
		} else {
			output += fmt.Sprintf("[%s] Failed: %d\n", ts, report.Failed)
		}

		output += fmt.Sprintf("[%s] Duration: %s\n", ts, durationStr)

		if len(report.Failures) > 0 {
			failedHeader := color.New(color.FgRed).Sprint("Failed cases:")
			output += fmt.Sprintf("[%s] %s\n", ts, failedHeader)
			for _, c := range report.Failures {
				name := color.New(color.FgRed).Sprint(c.Type().Name())
				output += fmt.Sprintf("[%s]   - %s [%s]: %v\n", ts, name, shortID(c.ID()), c.Err())
			}
		}
	} else {
		output = fmt.Sprintf("[%s] === Case Summary ===\n", ts)
		output += fmt.Sprintf("[%s] Total cases: %d\n", ts, report.Total)
		output += fmt.Sprintf("[%s] Succeeded: %d\n", ts, report.Succeeded)
		output += fmt.Sprintf("[%s] Failed: %d\n", ts, report.Failed)
		output += fmt.Sprintf("[%s] Duration: %s\n", ts, durationStr)

		if len(report.Failures) > 0 {
			output += fmt.Sprintf("[%s] Failed cases:\n", ts)
			for _, c := range report.Failures {
				output += fmt.Sprintf("[%s]   - %s [%s]: %v\n", ts, c.Type().Name(), shortID(c.ID()), c.Err())
			}
		}
	}

	cl.writer.Write([]byte(output))
}

// LogProgress logs case completion progress with a bar and counts at INFO
// level. Format: "[HH:MM:SS] Progress: [=====     ] 4/8 (50%)"
func (cl *ConsoleLogger) LogProgress(completed, total int) {
	if cl.writer == nil || !cl.shouldLog("info") {
		return
	}

	cl.mu.Lock()
	defer cl.mu.Unlock()

	pb := NewProgressBar(total, 10, cl.colorOutput)
	pb.Update(completed)

	output := fmt.Sprintf("[%s] Progress: %s\n", timestamp(), pb.Render())
	cl.writer.Write([]byte(output))
}

// statusColor maps a step status to its display color.
func statusColor(status cases.Status) *color.Color {
	switch status {
	case cases.StatusSucceeded:
		return color.New(color.FgGreen)
	case cases.StatusFailed:
		return color.New(color.FgRed)
	case cases.StatusSkipped:
		return color.New(color.FgYellow)
	case cases.StatusAborted:
		return color.New(color.FgHiBlack)
	case cases.StatusRunning:
		return color.New(color.FgCyan)
	default:
		return color.New(color.Reset)
	}
}

// timestamp renders the current wall clock as HH:MM:SS.
func timestamp() string {
	return time.Now().Format("15:04:05")
}

// shortID returns the display form of a case id.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// formatDuration renders a duration compactly for log lines.
// Examples: "250ms", "2.3s", "1m30s", "2h15m"
func formatDuration(d time.Duration) string {
	switch {
	case d >= time.Hour:
		hours := d / time.Hour
		remainder := d % time.Hour
		minutes := remainder / time.Minute
		if minutes == 0 {
			return fmt.Sprintf("%dh", hours)
		}
		return fmt.Sprintf("%dh%dm", hours, minutes)
	case d >= time.Minute:
		minutes := d / time.Minute
		seconds := (d % time.Minute) / time.Second
		if seconds == 0 {
			return fmt.Sprintf("%dm", minutes)
		}
		return fmt.Sprintf("%dm%ds", minutes, seconds)
	case d >= time.Second:
		return fmt.Sprintf("%.1fs", d.Seconds())
	default:
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
}

// NoOpLogger discards everything it is given. It stands in for a real
// logger in tests and when output is suppressed.
type NoOpLogger struct{}

// NewNoOpLogger returns a logger that ignores all messages.
func NewNoOpLogger() *NoOpLogger {
	return &NoOpLogger{}
}

func (n *NoOpLogger) LogCaseStart(caseType, id string, index, total int) {}

func (n *NoOpLogger) LogStepResult(caseType, step string, status cases.Status, duration time.Duration, err error) {
}

func (n *NoOpLogger) LogCaseComplete(caseType, id string, failed bool, duration time.Duration, err error) {
}

func (n *NoOpLogger) LogProgress(completed, total int) {}

func (n *NoOpLogger) LogSummary(report *cases.Report) {}
