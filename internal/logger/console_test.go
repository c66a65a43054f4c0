package logger

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/harrison/casework/internal/cases"
)

// TestNewConsoleLogger verifies the constructor creates a ConsoleLogger with the provided writer.
func TestNewConsoleLogger(t *testing.T) {
	t.Run("with valid writer", func(t *testing.T) {
		buf := &bytes.Buffer{}
		logger := NewConsoleLogger(buf, "info")

		if logger == nil {
			t.Fatal("expected non-nil logger")
		}
		if logger.writer != buf {
			t.Error("writer not set correctly")
		}
		if logger.logLevel != "info" {
			t.Errorf("expected log level %q, got %q", "info", logger.logLevel)
		}
		if logger.colorOutput {
			t.Error("expected color disabled for buffer writer")
		}
	})

	t.Run("with nil writer", func(t *testing.T) {
		logger := NewConsoleLogger(nil, "info")
		if logger == nil {
			t.Fatal("expected non-nil logger even with nil writer")
		}
		if logger.writer != nil {
			t.Error("expected nil writer")
		}
	})

	t.Run("invalid level defaults to info", func(t *testing.T) {
		logger := NewConsoleLogger(&bytes.Buffer{}, "loud")
		if logger.logLevel != "info" {
			t.Errorf("expected log level %q, got %q", "info", logger.logLevel)
		}
	})
}

// TestNormalizeLogLevel verifies level normalization handles case and whitespace.
func TestNormalizeLogLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"trace", "trace"},
		{"DEBUG", "debug"},
		{"  Info  ", "info"},
		{"WARN", "warn"},
		{"error", "error"},
		{"", "info"},
		{"verbose", "info"},
	}

	for _, tt := range tests {
		if got := normalizeLogLevel(tt.input); got != tt.expected {
			t.Errorf("normalizeLogLevel(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

// TestLogLevelFiltering verifies messages below the configured level are suppressed.
func TestLogLevelFiltering(t *testing.T) {
	tests := []struct {
		name          string
		configured    string
		log           func(*ConsoleLogger)
		expectVisible bool
	}{
		{"trace visible at trace", "trace", func(l *ConsoleLogger) { l.LogTrace("msg") }, true},
		{"trace hidden at debug", "debug", func(l *ConsoleLogger) { l.LogTrace("msg") }, false},
		{"debug visible at debug", "debug", func(l *ConsoleLogger) { l.LogDebug("msg") }, true},
		{"debug hidden at info", "info", func(l *ConsoleLogger) { l.LogDebug("msg") }, false},
		{"info visible at info", "info", func(l *ConsoleLogger) { l.LogInfo("msg") }, true},
		{"info hidden at warn", "warn", func(l *ConsoleLogger) { l.LogInfo("msg") }, false},
		{"warn visible at warn", "warn", func(l *ConsoleLogger) { l.LogWarn("msg") }, true},
		{"warn hidden at error", "error", func(l *ConsoleLogger) { l.LogWarn("msg") }, false},
		{"error visible at error", "error", func(l *ConsoleLogger) { l.LogError("msg") }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			logger := NewConsoleLogger(buf, tt.configured)

			tt.log(logger)

			if visible := buf.Len() > 0; visible != tt.expectVisible {
				t.Errorf("expected visible=%v, got output %q", tt.expectVisible, buf.String())
			}
		})
	}
}

// TestLogWithLevelFormat verifies the "[HH:MM:SS] [LEVEL] msg" message shape.
func TestLogWithLevelFormat(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := NewConsoleLogger(buf, "trace")

	logger.LogWarn("disk almost full")

	output := buf.String()
	if !strings.HasPrefix(output, "[") {
		t.Error("expected output to start with timestamp [")
	}
	if !strings.Contains(output, "[WARN] disk almost full") {
		t.Errorf("unexpected output %q", output)
	}
	if !strings.HasSuffix(output, "\n") {
		t.Error("expected trailing newline")
	}
}

// TestLogCaseStart verifies case start messages are formatted correctly.
func TestLogCaseStart(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := NewConsoleLogger(buf, "info")

	logger.LogCaseStart("LidDrivenCavity", "3f8a9c21-aaaa-bbbb-cccc-000000000000", 2, 5)

	output := buf.String()
	if !strings.Contains(output, "Starting LidDrivenCavity [3f8a9c21] (2/5)") {
		t.Errorf("unexpected output %q", output)
	}
	if !strings.HasPrefix(output, "[") {
		t.Error("expected output to start with timestamp [")
	}
}

// TestLogCaseStartSuppressedAtWarn verifies case starts are INFO level.
func TestLogCaseStartSuppressedAtWarn(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := NewConsoleLogger(buf, "warn")

	logger.LogCaseStart("LidDrivenCavity", "abc", 1, 1)

	if buf.Len() != 0 {
		t.Errorf("expected no output, got %q", buf.String())
	}
}

// TestLogStepResult verifies step outcomes, levels, and duration formatting.
func TestLogStepResult(t *testing.T) {
	tests := []struct {
		name         string
		configured   string
		status       cases.Status
		duration     time.Duration
		err          error
		expectedText string
		expectHidden bool
	}{
		{
			name:         "succeeded step at debug",
			configured:   "debug",
			status:       cases.StatusSucceeded,
			duration:     1500 * time.Millisecond,
			expectedText: "LidDrivenCavity/solve: succeeded (1.5s)",
		},
		{
			name:         "succeeded step hidden at info",
			configured:   "info",
			status:       cases.StatusSucceeded,
			duration:     time.Second,
			expectHidden: true,
		},
		{
			name:         "failed step visible at info",
			configured:   "info",
			status:       cases.StatusFailed,
			duration:     200 * time.Millisecond,
			err:          errors.New("residual diverged"),
			expectedText: "LidDrivenCavity/solve: failed (200ms): residual diverged",
		},
		{
			name:         "skipped step has no duration",
			configured:   "debug",
			status:       cases.StatusSkipped,
			expectedText: "LidDrivenCavity/solve: skipped\n",
		},
		{
			name:         "aborted step has no duration",
			configured:   "debug",
			status:       cases.StatusAborted,
			expectedText: "LidDrivenCavity/solve: aborted\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			logger := NewConsoleLogger(buf, tt.configured)

			logger.LogStepResult("LidDrivenCavity", "solve", tt.status, tt.duration, tt.err)

			output := buf.String()
			if tt.expectHidden {
				if output != "" {
					t.Errorf("expected no output, got %q", output)
				}
				return
			}
			if !strings.Contains(output, tt.expectedText) {
				t.Errorf("expected output to contain %q, got %q", tt.expectedText, output)
			}
		})
	}
}

// TestLogCaseComplete verifies completion messages for passing and failing cases.
func TestLogCaseComplete(t *testing.T) {
	t.Run("passed", func(t *testing.T) {
		buf := &bytes.Buffer{}
		logger := NewConsoleLogger(buf, "info")

		logger.LogCaseComplete("ChannelFlow", "11112222-dead-beef-0000-000000000000", false, 2300*time.Millisecond, nil)

		output := buf.String()
		if !strings.Contains(output, "ChannelFlow [11112222] passed (2.3s)") {
			t.Errorf("unexpected output %q", output)
		}
	})

	t.Run("failed with error", func(t *testing.T) {
		buf := &bytes.Buffer{}
		logger := NewConsoleLogger(buf, "info")

		logger.LogCaseComplete("ChannelFlow", "11112222", true, time.Second, errors.New("step solve failed"))

		output := buf.String()
		if !strings.Contains(output, "ChannelFlow [11112222] failed (1.0s): step solve failed") {
			t.Errorf("unexpected output %q", output)
		}
	})

	t.Run("passed hidden at error level", func(t *testing.T) {
		buf := &bytes.Buffer{}
		logger := NewConsoleLogger(buf, "error")

		logger.LogCaseComplete("ChannelFlow", "11112222", false, time.Second, nil)

		if buf.Len() != 0 {
			t.Errorf("expected no output, got %q", buf.String())
		}
	})

	t.Run("failed visible at error level", func(t *testing.T) {
		buf := &bytes.Buffer{}
		logger := NewConsoleLogger(buf, "error")

		logger.LogCaseComplete("ChannelFlow", "11112222", true, time.Second, nil)

		if !strings.Contains(buf.String(), "failed") {
			t.Errorf("expected failure line, got %q", buf.String())
		}
	})
}

// failedCase builds a case that has run and failed, for summary tests.
func failedCase(t *testing.T) *cases.Case {
	t.Helper()

	ct := cases.NewCaseType("Diverging").
		Step("solve", func(c *cases.Case) error {
			return errors.New("blew up")
		})

	c, err := ct.New(nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := c.Run(context.Background()); err == nil {
		t.Fatal("expected run to fail")
	}
	return c
}

// TestLogSummary verifies the summary block contents.
func TestLogSummary(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := NewConsoleLogger(buf, "info")

	report := &cases.Report{
		Total:     3,
		Succeeded: 2,
		Failed:    1,
		Duration:  90 * time.Second,
		Failures:  []*cases.Case{failedCase(t)},
	}

	logger.LogSummary(report)

	output := buf.String()
	for _, want := range []string{
		"=== Case Summary ===",
		"Total cases: 3",
		"Succeeded: 2",
		"Failed: 1",
		"Duration: 1m30s",
		"Failed cases:",
		"Diverging",
		"blew up",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("expected output to contain %q, got %q", want, output)
		}
	}
}

// TestLogSummaryNilReport verifies a nil report logs nothing.
func TestLogSummaryNilReport(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := NewConsoleLogger(buf, "info")

	logger.LogSummary(nil)

	if buf.Len() != 0 {
		t.Errorf("expected no output, got %q", buf.String())
	}
}

// TestLogProgress verifies the progress line format.
func TestLogProgress(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := NewConsoleLogger(buf, "info")

	logger.LogProgress(4, 8)

	output := buf.String()
	if !strings.Contains(output, "Progress: [=====     ] 4/8 (50%)") {
		t.Errorf("unexpected output %q", output)
	}
}

// TestFormatDuration verifies human-readable duration strings.
func TestFormatDuration(t *testing.T) {
	tests := []struct {
		duration time.Duration
		expected string
	}{
		{250 * time.Millisecond, "250ms"},
		{0, "0ms"},
		{time.Second, "1.0s"},
		{2300 * time.Millisecond, "2.3s"},
		{59 * time.Second, "59.0s"},
		{time.Minute, "1m"},
		{90 * time.Second, "1m30s"},
		{time.Hour, "1h"},
		{2*time.Hour + 15*time.Minute, "2h15m"},
	}

	for _, tt := range tests {
		if got := formatDuration(tt.duration); got != tt.expected {
			t.Errorf("formatDuration(%v) = %q, want %q", tt.duration, got, tt.expected)
		}
	}
}

// TestShortID verifies id truncation.
func TestShortID(t *testing.T) {
	if got := shortID("3f8a9c21-aaaa-bbbb"); got != "3f8a9c21" {
		t.Errorf("shortID = %q, want %q", got, "3f8a9c21")
	}
	if got := shortID("abc"); got != "abc" {
		t.Errorf("shortID = %q, want %q", got, "abc")
	}
	if got := shortID(""); got != "" {
		t.Errorf("shortID = %q, want empty", got)
	}
}

// TestConsoleLoggerConcurrentWrites verifies writes from multiple goroutines
// produce whole lines.
func TestConsoleLoggerConcurrentWrites(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := NewConsoleLogger(buf, "info")

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			logger.LogInfo(fmt.Sprintf("message %d", n))
		}(i)
	}
	wg.Wait()

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 20 {
		t.Errorf("expected 20 lines, got %d", len(lines))
	}
	for _, line := range lines {
		if !strings.Contains(line, "[INFO] message ") {
			t.Errorf("malformed line %q", line)
		}
	}
}

// TestNoOpLogger verifies the no-op logger accepts all calls without output.
func TestNoOpLogger(t *testing.T) {
	logger := NewNoOpLogger()

	logger.LogCaseStart("X", "id", 1, 1)
	logger.LogStepResult("X", "step", cases.StatusSucceeded, time.Second, nil)
	logger.LogCaseComplete("X", "id", true, time.Second, errors.New("boom"))
	logger.LogProgress(1, 1)
	logger.LogSummary(&cases.Report{Total: 1})
	logger.LogSummary(nil)
}
