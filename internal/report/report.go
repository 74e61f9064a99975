// Package report renders validation results for humans and decides the
// process exit code for the CLI.
package report

import (
	"fmt"
	"io"
	"sort"

	"github.com/johnayoung/go-ohlcv-validator/internal/validation"
)

// Exit codes used by the CLI.
const (
	ExitPassed = 0
	ExitFailed = 1
	ExitError  = 2
)

// ExitCode maps a result to the process exit code.
func ExitCode(res *validation.Result) int {
	if res.Passed() {
		return ExitPassed
	}
	return ExitFailed
}

// Render writes a human-readable report: a status line, the failed
// checks grouped by severity with their evidence, then free-text
// errors and warnings.
func Render(w io.Writer, res *validation.Result) {
	fmt.Fprintln(w, res.Summary())

	if asset, ok := res.Metadata()["asset"].(string); ok && asset != "" {
		fmt.Fprintf(w, "asset: %s\n", asset)
	}
	if rows, ok := res.Metadata()["row_count"]; ok {
		fmt.Fprintf(w, "rows: %v", rows)
		if start, ok := res.Metadata()["start_date"]; ok {
			fmt.Fprintf(w, "  range: %v .. %v", start, res.Metadata()["end_date"])
		}
		fmt.Fprintln(w)
	}
	fmt.Fprintln(w)

	renderChecks(w, "ERRORS", res.ErrorChecks())
	renderChecks(w, "WARNINGS", res.WarningChecks())

	for _, msg := range res.Errors() {
		fmt.Fprintf(w, "error: %s\n", msg)
	}
	for _, msg := range res.Warnings() {
		fmt.Fprintf(w, "warning: %s\n", msg)
	}

	passed := res.PassedChecks()
	if len(passed) > 0 {
		fmt.Fprintf(w, "\npassed checks (%d):", len(passed))
		for _, c := range passed {
			fmt.Fprintf(w, " %s", c.Name)
		}
		fmt.Fprintln(w)
	}
}

func renderChecks(w io.Writer, heading string, checks []validation.Check) {
	if len(checks) == 0 {
		return
	}
	fmt.Fprintf(w, "%s:\n", heading)
	for _, c := range checks {
		fmt.Fprintf(w, "  [%s] %s: %s\n", c.Severity, c.Name, c.Message)
		renderDetails(w, c.Details)
	}
	fmt.Fprintln(w)
}

// renderDetails prints scalar evidence in stable key order; nested
// structures stay in the JSON report.
func renderDetails(w io.Writer, details map[string]any) {
	keys := make([]string, 0, len(details))
	for k, v := range details {
		switch v.(type) {
		case string, bool, int, int64, float64:
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(w, "      %s: %v\n", k, details[k])
	}
}
