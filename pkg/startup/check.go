package startup

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// DefaultTimeout bounds a check that sets no Timeout of its own.
const DefaultTimeout = 5 * time.Second

// CheckFunc performs a startup check. It returns nil if the check passes.
type CheckFunc func(ctx context.Context) error

// Check is a single named startup check.
type Check struct {
	Name     string
	Run      CheckFunc
	Critical bool // a failure prevents startup
	Timeout  time.Duration
}

// Result holds the outcome of a single check.
type Result struct {
	Check    Check
	Error    error
	Duration time.Duration
}

// Run executes checks in order and returns their results.
func Run(ctx context.Context, checks []Check) []Result {
	results := make([]Result, len(checks))

	for i, c := range checks {
		timeout := c.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		start := time.Now()

		checkCtx, cancel := context.WithTimeout(ctx, timeout)
		err := c.Run(checkCtx)
		cancel()

		results[i] = Result{
			Check:    c,
			Error:    err,
			Duration: time.Since(start),
		}
	}

	return results
}

// AnalyzeResults logs each result and joins the errors of failed critical checks.
func AnalyzeResults(results []Result) error {
	var criticalErrors []error

	slog.Info("Startup Checks Summary", "checks", len(results))

	for _, r := range results {
		msg := fmt.Sprintf("[PASS] %-20s (%v)", r.Check.Name, r.Duration.Round(time.Millisecond))
		if r.Error == nil {
			slog.Info(msg)
			continue
		}

		msg = fmt.Sprintf("[FAIL] %-20s (%v)", r.Check.Name, r.Duration.Round(time.Millisecond))
		if r.Check.Critical {
			slog.Error(msg, "error", r.Error)
			criticalErrors = append(criticalErrors, fmt.Errorf("%s: %w", r.Check.Name, r.Error))
		} else {
			slog.Warn(msg, "error", r.Error)
		}
	}

	return errors.Join(criticalErrors...)
}
