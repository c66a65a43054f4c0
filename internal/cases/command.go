package cases

import (
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/zclconf/go-cty/cty"
)

const outputExcerptLimit = 400

// Command builds a step action that runs an external program, the usual
// shape of a solver or mesher invocation. The process runs in the case
// directory when one is set and under the run's context. Combined output,
// exit code and duration are stored as results under key_output,
// key_exit_code and key_duration_ms; a non-zero exit fails the step.
func Command(key, program string, args ...string) Action {
	return func(c *Case) error {
		cmd := exec.CommandContext(c.Context(), program, args...)
		if c.Dir() != "" {
			cmd.Dir = c.Dir()
		}

		start := time.Now()
		output, err := cmd.CombinedOutput()
		duration := time.Since(start)

		exitCode := 0
		if err != nil {
			var exitErr *exec.ExitError
			if !errors.As(err, &exitErr) {
				return fmt.Errorf("run %s: %w", program, err)
			}
			exitCode = exitErr.ExitCode()
		}

		c.StoreResult(key+"_output", cty.StringVal(string(output)))
		c.StoreResult(key+"_exit_code", cty.NumberIntVal(int64(exitCode)))
		c.StoreResult(key+"_duration_ms", cty.NumberIntVal(duration.Milliseconds()))

		if exitCode != 0 {
			return fmt.Errorf("%s exited with code %d: %s", program, exitCode, outputExcerpt(output))
		}
		return nil
	}
}

// outputExcerpt trims process output to a short trailing excerpt for error
// messages; full output stays available as a stored result.
func outputExcerpt(output []byte) string {
	s := strings.TrimSpace(string(output))
	if s == "" {
		return "(no output)"
	}
	if len(s) > outputExcerptLimit {
		s = "..." + s[len(s)-outputExcerptLimit:]
	}
	return s
}
