package validation

import (
	"fmt"
)

// Result aggregates the outcome of one validation pass: the ordered
// check sequence, free-text warning/error/info lists, and metadata about
// the validated input. It is built incrementally during a pass and
// treated as immutable once returned to the caller.
//
// Passed is derived: a result fails only when a contained check has
// Error severity and did not pass, or AddError was called directly.
// Warning and Info findings never fail a result on their own.
type Result struct {
	checks   []Check
	warnings []string
	errors   []string
	info     []string
	metadata map[string]any
}

// NewResult creates an empty result.
func NewResult() *Result {
	return &Result{metadata: make(map[string]any)}
}

// AddCheck appends a check evaluation.
func (r *Result) AddCheck(c Check) {
	r.checks = append(r.checks, c)
}

// AddWarning appends a free-text warning. Warnings never fail the result.
func (r *Result) AddWarning(msg string) {
	r.warnings = append(r.warnings, msg)
}

// AddError appends a free-text error and marks the result failed.
func (r *Result) AddError(msg string) {
	r.errors = append(r.errors, msg)
}

// AddInfo appends a free-text informational note.
func (r *Result) AddInfo(msg string) {
	r.info = append(r.info, msg)
}

// SetMetadata stores a metadata entry.
func (r *Result) SetMetadata(key string, value any) {
	r.metadata[key] = value
}

// Passed reports whether the result passed. See the type comment for
// the derivation rule.
func (r *Result) Passed() bool {
	if len(r.errors) > 0 {
		return false
	}
	for _, c := range r.checks {
		if !c.Passed && c.Severity == SeverityError {
			return false
		}
	}
	return true
}

// Checks returns the ordered check sequence.
func (r *Result) Checks() []Check { return r.checks }

// Warnings returns the free-text warnings.
func (r *Result) Warnings() []string { return r.warnings }

// Errors returns the free-text errors.
func (r *Result) Errors() []string { return r.errors }

// Info returns the free-text informational notes.
func (r *Result) Info() []string { return r.info }

// Metadata returns the metadata map. The map is shared; callers must
// treat it as read-only.
func (r *Result) Metadata() map[string]any { return r.metadata }

// ErrorChecks returns the failed checks with Error severity.
func (r *Result) ErrorChecks() []Check {
	return r.filter(func(c Check) bool { return !c.Passed && c.Severity == SeverityError })
}

// WarningChecks returns the failed checks with Warning severity.
func (r *Result) WarningChecks() []Check {
	return r.filter(func(c Check) bool { return !c.Passed && c.Severity == SeverityWarning })
}

// PassedChecks returns the checks that passed.
func (r *Result) PassedChecks() []Check {
	return r.filter(func(c Check) bool { return c.Passed })
}

// FailedChecks returns the checks that did not pass, at any severity.
func (r *Result) FailedChecks() []Check {
	return r.filter(func(c Check) bool { return !c.Passed })
}

// CheckByName returns the first check with the given name.
func (r *Result) CheckByName(name string) (Check, bool) {
	for _, c := range r.checks {
		if c.Name == name {
			return c, true
		}
	}
	return Check{}, false
}

func (r *Result) filter(keep func(Check) bool) []Check {
	var out []Check
	for _, c := range r.checks {
		if keep(c) {
			out = append(out, c)
		}
	}
	return out
}

// Merge appends the other result's checks, warnings, errors and info to
// this result in order. Metadata entries from the other result are
// copied in; on key collision the existing value wins and the other
// value is preserved under a "merged." prefix so no evidence is lost.
// Merge is associative with respect to Passed.
func (r *Result) Merge(other *Result) {
	if other == nil {
		return
	}
	r.checks = append(r.checks, other.checks...)
	r.warnings = append(r.warnings, other.warnings...)
	r.errors = append(r.errors, other.errors...)
	r.info = append(r.info, other.info...)
	for key, value := range other.metadata {
		if _, exists := r.metadata[key]; !exists {
			r.metadata[key] = value
			continue
		}
		r.metadata[fmt.Sprintf("merged.%s", key)] = value
	}
}

// Summary returns a one-line description of the result.
func (r *Result) Summary() string {
	status := "PASSED"
	if !r.Passed() {
		status = "FAILED"
	}
	return fmt.Sprintf("%s: %d checks, %d errors, %d warnings",
		status, len(r.checks), len(r.ErrorChecks())+len(r.errors), len(r.WarningChecks())+len(r.warnings))
}
