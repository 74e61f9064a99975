package validation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/johnayoung/go-ohlcv-validator/internal/calendar"
	"github.com/johnayoung/go-ohlcv-validator/internal/frame"
)

// Input carries everything a validation pass reads. The frame is
// treated as read-only for the whole call. Calendar may be nil; the
// continuity check then falls back to bar-spacing analysis for intraday
// timeframes.
type Input struct {
	Frame    *frame.Frame
	Mapping  frame.Mapping
	Calendar calendar.Calendar
	Asset    string
}

// Validator runs an ordered battery of checks over an input and
// produces a result. Implementations differ only in their check
// registries.
type Validator interface {
	Name() string
	Validate(ctx context.Context, in *Input) *Result
}

// CheckFunc evaluates one rule and appends its findings to the result.
// Returning errStopValidation aborts the remaining registry (used by
// blocking checks); any other error is downgraded to a warning by the
// runner and the pass continues.
type CheckFunc func(in *Input, cfg *Config, res *Result) error

type registeredCheck struct {
	name string
	fn   CheckFunc
}

// errStopValidation is the sentinel a blocking check returns when the
// remaining checks would be meaningless.
var errStopValidation = errors.New("validation stopped")

// runner owns the ordered execution of a check registry with per-check
// fault isolation. Concrete validators differ only in the registry they
// hand to it.
type runner struct {
	name   string
	cfg    *Config
	logger *slog.Logger
	checks []registeredCheck
}

func newRunner(name string, cfg *Config, logger *slog.Logger, checks []registeredCheck) runner {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return runner{
		name:   name,
		cfg:    cfg,
		logger: logger.With("component", name),
		checks: checks,
	}
}

// newResult seeds a result with the standard metadata for this pass.
func (r *runner) newResult(in *Input) *Result {
	res := NewResult()
	res.SetMetadata("id", uuid.NewString())
	res.SetMetadata("validator", r.name)
	res.SetMetadata("asset", in.Asset)
	res.SetMetadata("asset_type", string(r.cfg.AssetType))
	res.SetMetadata("timeframe", r.cfg.Timeframe)
	res.SetMetadata("validated_at", time.Now().UTC().Format(time.RFC3339Nano))
	res.SetMetadata("config", r.cfg.Snapshot())
	if in.Calendar != nil {
		res.SetMetadata("calendar", in.Calendar.Name())
	}
	if in.Frame != nil {
		res.SetMetadata("row_count", in.Frame.NumRows())
		res.SetMetadata("content_hash", in.Frame.Fingerprint())
		if in.Frame.NumRows() > 0 {
			res.SetMetadata("start_date", in.Frame.FirstDate().UTC().Format(time.RFC3339))
			res.SetMetadata("end_date", in.Frame.LastDate().UTC().Format(time.RFC3339))
		}
	}
	return res
}

// run executes the registry in order, skipping disabled checks and
// isolating per-check faults. A panicking or erroring check is recorded
// as a warning and never aborts the remaining checks.
func (r *runner) run(ctx context.Context, in *Input) *Result {
	res := r.newResult(in)

	select {
	case <-ctx.Done():
		res.AddWarning(fmt.Sprintf("validation aborted before start: %v", ctx.Err()))
		return res
	default:
	}

	if in.Frame == nil {
		res.AddError("no data: input frame is nil")
		return res
	}
	if (in.Mapping == frame.Mapping{}) {
		in.Mapping = frame.ResolveMapping(in.Frame)
	}

	for _, check := range r.checks {
		if !r.cfg.CheckEnabled(check.name) {
			r.logger.Debug("check disabled, skipping", "check", check.name)
			continue
		}
		if r.runCheck(res, check, in) {
			r.logger.Debug("blocking check stopped validation", "check", check.name)
			break
		}
	}

	r.logger.Info("validation completed",
		"asset", in.Asset,
		"passed", res.Passed(),
		"checks", len(res.Checks()),
		"error_checks", len(res.ErrorChecks()),
		"warning_checks", len(res.WarningChecks()))
	return res
}

// runCheck invokes one check with fault isolation. The returned flag
// reports whether the check blocked further validation.
func (r *runner) runCheck(res *Result, check registeredCheck, in *Input) (stop bool) {
	defer func() {
		if rec := recover(); rec != nil {
			res.AddWarning(fmt.Sprintf("Check '%s' failed with error: %v", check.name, rec))
			r.logger.Warn("check panicked", "check", check.name, "panic", rec)
			stop = false
		}
	}()

	err := check.fn(in, r.cfg, res)
	if err == nil {
		return false
	}
	if errors.Is(err, errStopValidation) {
		return true
	}
	res.AddWarning(fmt.Sprintf("Check '%s' failed with error: %v", check.name, err))
	r.logger.Warn("check failed to evaluate", "check", check.name, "error", err)
	return false
}
