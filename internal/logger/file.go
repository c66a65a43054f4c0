package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/harrison/casework/internal/cases"
)

var _ cases.Logger = (*FileLogger)(nil)

// FileLogger records case execution under a log directory. Each run gets a
// timestamped log file plus a latest.log symlink pointing at it, and every
// completed case gets a detail file under cases/. Level filtering works the
// same way as in ConsoleLogger.
type FileLogger struct {
	mu       sync.Mutex
	logDir   string
	runLog   *os.File
	runFile  string
	casesDir string
	logLevel string
}

// NewFileLogger opens a run log under .casework/logs at the default info
// level.
func NewFileLogger() (*FileLogger, error) {
	logDir := filepath.Join(".casework", "logs")
	return NewFileLoggerWithDirAndLevel(logDir, "info")
}

// NewFileLoggerWithDir is NewFileLoggerWithDirAndLevel at the default info
// level.
func NewFileLoggerWithDir(logDir string) (*FileLogger, error) {
	return NewFileLoggerWithDirAndLevel(logDir, "info")
}

// NewFileLoggerWithDirAndLevel creates the log directory if needed, opens a
// run-YYYYMMDD-HHMMSS.log file inside it, and repoints latest.log at the
// new file.
func NewFileLoggerWithDirAndLevel(logDir string, logLevel string) (*FileLogger, error) {
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	casesDir := filepath.Join(logDir, "cases")
	if err := os.MkdirAll(casesDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create cases directory: %w", err)
	}

	stamp := time.Now().Format("20060102-150405")
	runFile := filepath.Join(logDir, fmt.Sprintf("run-%s.log", stamp))

	file, err := os.OpenFile(runFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to create run log file: %w", err)
	}

	symlinkPath := filepath.Join(logDir, "latest.log")
	if err := os.Remove(symlinkPath); err != nil && !os.IsNotExist(err) {
		file.Close()
		return nil, fmt.Errorf("failed to remove old symlink: %w", err)
	}
	if err := os.Symlink(filepath.Base(runFile), symlinkPath); err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to create symlink: %w", err)
	}

	logger := &FileLogger{
		logDir:   logDir,
		runLog:   file,
		runFile:  runFile,
		casesDir: casesDir,
		logLevel: normalizeLogLevel(logLevel),
	}

	logger.writeRunLog("=== Casework Run Log ===\n")
	logger.writeRunLog(fmt.Sprintf("Started at: %s\n\n", time.Now().Format(time.RFC3339)))

	return logger, nil
}

// RunFile returns the path of the current run log file.
func (fl *FileLogger) RunFile() string {
	return fl.runFile
}

// shouldLog reports whether a message at messageLevel clears the configured
// threshold.
func (fl *FileLogger) shouldLog(messageLevel string) bool {
	return levelRank(messageLevel) >= levelRank(fl.logLevel)
}

// LogTrace logs a message at the most verbose level.
func (fl *FileLogger) LogTrace(message string) {
	fl.logAt("TRACE", message)
}

// LogDebug logs a message at debug level.
func (fl *FileLogger) LogDebug(message string) {
	fl.logAt("DEBUG", message)
}

// LogInfo logs a message at info level.
func (fl *FileLogger) LogInfo(message string) {
	fl.logAt("INFO", message)
}

// LogWarn logs a message at warn level.
func (fl *FileLogger) LogWarn(message string) {
	fl.logAt("WARN", message)
}

// LogError logs a message at error level.
func (fl *FileLogger) LogError(message string) {
	fl.logAt("ERROR", message)
}

// logAt writes one leveled line to the run log if the level clears the
// filter.
func (fl *FileLogger) logAt(level, message string) {
	if !fl.shouldLog(strings.ToLower(level)) {
		return
	}
	fl.writeRunLog(fmt.Sprintf("[%s] [%s] %s\n", timestamp(), level, message))
}

// LogCaseStart logs the start of a case at INFO level.
func (fl *FileLogger) LogCaseStart(caseType, id string, index, total int) {
	if !fl.shouldLog("info") {
		return
	}

	fl.writeRunLog(fmt.Sprintf("[%s] Starting %s [%s] (%d/%d)\n", timestamp(), caseType, shortID(id), index, total))
}

// LogStepResult logs the outcome of a single step.
// Failed steps log at ERROR level, everything else at DEBUG.
func (fl *FileLogger) LogStepResult(caseType, step string, status cases.Status, duration time.Duration, err error) {
	level := "debug"
	if status == cases.StatusFailed {
		level = "error"
	}
	if !fl.shouldLog(level) {
		return
	}

	message := fmt.Sprintf("[%s] %s/%s: %s", timestamp(), caseType, step, status)
	if status == cases.StatusSucceeded || status == cases.StatusFailed {
		message += fmt.Sprintf(" (%s)", formatDuration(duration))
	}
	if err != nil {
		message += fmt.Sprintf(": %v", err)
	}
	message += "\n"

	fl.writeRunLog(message)
}

// LogCaseComplete logs the completion of a case to the run log and writes a
// per-case detail file in the cases/ subdirectory.
func (fl *FileLogger) LogCaseComplete(caseType, id string, failed bool, duration time.Duration, err error) {
	level := "info"
	if failed {
		level = "error"
	}

	if fl.shouldLog(level) {
		outcome := "passed"
		if failed {
			outcome = "failed"
		}

		message := fmt.Sprintf("[%s] %s [%s] %s (%s)", timestamp(), caseType, shortID(id), outcome, formatDuration(duration))
		if failed && err != nil {
			message += fmt.Sprintf(": %v", err)
		}
		message += "\n"

		fl.writeRunLog(message)
	}

	if werr := fl.writeCaseLog(caseType, id, failed, duration, err); werr != nil {
		fl.logAt("WARN", fmt.Sprintf("could not write case log: %v", werr))
	}
}

// writeCaseLog creates a detail file for one case: cases/case-<type>-<id>.log
func (fl *FileLogger) writeCaseLog(caseType, id string, failed bool, duration time.Duration, err error) error {
	fl.mu.Lock()
	defer fl.mu.Unlock()

	caseLogPath := filepath.Join(fl.casesDir, fmt.Sprintf("case-%s-%s.log", caseType, shortID(id)))

	file, ferr := os.OpenFile(caseLogPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if ferr != nil {
		return fmt.Errorf("failed to create case log file: %w", ferr)
	}
	defer file.Close()

	status := "passed"
	if failed {
		status = "failed"
	}

	content := fmt.Sprintf("=== Case %s [%s] ===\n", caseType, id)
	content += fmt.Sprintf("Status: %s\n", status)
	content += fmt.Sprintf("Duration: %s\n", formatDuration(duration))

	if err != nil {
		content += fmt.Sprintf("Error:\n%v\n", err)
	}

	content += fmt.Sprintf("Completed at: %s\n", time.Now().Format(time.RFC3339))

	if _, werr := file.WriteString(content); werr != nil {
		return fmt.Errorf("failed to write case log: %w", werr)
	}

	return nil
}

// LogProgress is a no-op for the file logger; the run log already records
// every case completion.
func (fl *FileLogger) LogProgress(completed, total int) {
}

// LogSummary logs the run summary with final statistics at INFO level.
func (fl *FileLogger) LogSummary(report *cases.Report) {
	if report == nil || !fl.shouldLog("info") {
		return
	}

	ts := timestamp()

	status := "SUCCESS"
	if report.Failed > 0 {
		if report.Succeeded == 0 {
			status = "FAILED"
		} else {
			status = "PARTIAL"
		}
	}

	message := fmt.Sprintf(
		"\n[%s] === CASE SUMMARY ===\n"+
			"[%s] Total cases:  %d\n"+
			"[%s] Succeeded:    %d\n"+
			"[%s] Failed:       %d\n"+
			"[%s] Total time:   %s\n"+
			"[%s] Status:       %s (%d/%d cases passed)\n"+
			"[%s] Completed at: %s\n",
		ts,
		ts,
		report.Total,
		ts,
		report.Succeeded,
		ts,
		report.Failed,
		ts,
		formatDuration(report.Duration),
		ts,
		status,
		report.Succeeded,
		report.Total,
		ts,
		time.Now().Format(time.RFC3339),
	)

	fl.writeRunLog(message)

	if len(report.Failures) > 0 {
		lines := fmt.Sprintf("[%s] Failed cases:\n", ts)
		for _, c := range report.Failures {
			lines += fmt.Sprintf("[%s]   - %s [%s]: %v\n", ts, c.Type().Name(), shortID(c.ID()), c.Err())
		}
		fl.writeRunLog(lines)
	}
}

// Close syncs and closes the run log. Messages logged afterwards are
// dropped, and a second Close is a no-op.
func (fl *FileLogger) Close() error {
	fl.mu.Lock()
	defer fl.mu.Unlock()

	if fl.runLog == nil {
		return nil
	}
	if err := fl.runLog.Sync(); err != nil {
		return fmt.Errorf("failed to sync run log: %w", err)
	}
	if err := fl.runLog.Close(); err != nil {
		return fmt.Errorf("failed to close run log: %w", err)
	}
	fl.runLog = nil
	return nil
}

// writeRunLog appends one message to the run log, syncing after the write
// so latest.log stays current while a run is in flight.
func (fl *FileLogger) writeRunLog(message string) {
	fl.mu.Lock()
	defer fl.mu.Unlock()

	if fl.runLog == nil {
		return
	}
	fl.runLog.WriteString(message)
	fl.runLog.Sync()
}
