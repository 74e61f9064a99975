package validation

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/shopspring/decimal"

	"github.com/johnayoung/go-ohlcv-validator/internal/frame"
)

// maxSampleDates caps the evidence samples recorded in check details.
const maxSampleDates = 3

// maxSampleIssues caps the per-issue samples for jump/gap style checks.
const maxSampleIssues = 5

// DataValidator runs the full generic OHLCV battery: structural checks
// first, then the statistical detectors. Checks that require an asset
// type or calendar the input does not have short-circuit to a no-op, so
// the same registry is valid for any table.
type DataValidator struct {
	runner
}

// NewDataValidator creates the generic validator. A nil config uses
// DefaultConfig; a nil logger uses slog.Default.
func NewDataValidator(cfg *Config, logger *slog.Logger) *DataValidator {
	v := &DataValidator{}
	v.runner = newRunner("ohlcv_validator", cfg, logger, v.registerChecks())
	return v
}

// Name implements Validator.
func (v *DataValidator) Name() string { return v.name }

// Validate implements Validator. It never mutates the input frame and
// is deterministic for a given input and config, excluding the
// timestamp and id metadata fields.
func (v *DataValidator) Validate(ctx context.Context, in *Input) *Result {
	return v.run(ctx, in)
}

// registerChecks returns the generic registry. Order matters: later
// checks assume the invariants earlier ones establish, and
// required_columns blocks everything behind it.
func (v *DataValidator) registerChecks() []registeredCheck {
	return []registeredCheck{
		{CheckRequiredColumns, checkRequiredColumns},
		{CheckNoNulls, checkNoNulls},
		{CheckOHLCConsistency, checkOHLCConsistency},
		{CheckNoNegativeValues, checkNoNegativeValues},
		{CheckNoFutureDates, checkNoFutureDates},
		{CheckNoDuplicateDates, checkNoDuplicateDates},
		{CheckSortedIndex, checkSortedIndex},
		{CheckZeroVolume, checkZeroVolume},
		{CheckPriceJumps, checkPriceJumps},
		{CheckStaleData, checkStaleData},
		{CheckDataSufficiency, checkDataSufficiency},
		{CheckPriceOutliers, checkPriceOutliers},
		{CheckVolumeSpikes, checkVolumeSpikes},
		{CheckPotentialSplits, checkPotentialSplits},
		{CheckSundayBars, checkSundayBars},
		{CheckWeekendGaps, checkWeekendGaps},
		{CheckDateContinuity, checkDateContinuity},
	}
}

// column returns the decimal column resolved for a canonical name.
func column(in *Input, canonical string) ([]decimal.NullDecimal, bool) {
	name := in.Mapping.Get(canonical)
	if name == "" {
		return nil, false
	}
	return in.Frame.Column(name)
}

// floatColumn returns the float view of a canonical column, NaN for nulls.
func floatColumn(in *Input, canonical string) ([]float64, bool) {
	name := in.Mapping.Get(canonical)
	if name == "" {
		return nil, false
	}
	return in.Frame.Floats(name)
}

func formatDate(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// checkRequiredColumns verifies all five canonical OHLCV columns
// resolved. It is blocking: when columns are missing the remaining
// checks would be meaningless, so the registry stops here.
func checkRequiredColumns(in *Input, cfg *Config, res *Result) error {
	missing := in.Mapping.MissingColumns()
	res.SetMetadata("column_mapping", in.Mapping.Resolved())
	if len(missing) == 0 {
		res.AddCheck(passedCheck(CheckRequiredColumns, "all required OHLCV columns present", map[string]any{
			"resolved": in.Mapping.Resolved(),
		}))
		return nil
	}
	res.AddCheck(NewCheck(CheckRequiredColumns, false, SeverityError,
		fmt.Sprintf("missing required columns: %v", missing),
		map[string]any{
			"missing_columns":   missing,
			"available_columns": in.Frame.ColumnNames(),
		}))
	return errStopValidation
}

// checkNoNulls counts nulls per OHLCV column. A column that is entirely
// null is reported as a distinct hard failure from partial null counts.
func checkNoNulls(in *Input, cfg *Config, res *Result) error {
	rows := in.Frame.NumRows()
	index := in.Frame.Index()

	totalNulls := 0
	perColumn := make(map[string]any)
	var allNull []string

	for _, canonical := range []string{frame.ColOpen, frame.ColHigh, frame.ColLow, frame.ColClose, frame.ColVolume} {
		col, ok := column(in, canonical)
		if !ok {
			continue
		}
		count := 0
		var samples []string
		for i, v := range col {
			if v.Valid {
				continue
			}
			count++
			if len(samples) < maxSampleDates {
				samples = append(samples, formatDate(index[i]))
			}
		}
		if count == 0 {
			continue
		}
		totalNulls += count
		entry := map[string]any{
			"count":        count,
			"pct":          float64(count) / float64(rows),
			"sample_dates": samples,
		}
		perColumn[canonical] = entry
		if count == rows && rows > 0 {
			allNull = append(allNull, canonical)
		}
	}

	if totalNulls == 0 {
		res.AddCheck(passedCheck(CheckNoNulls, "no null values in OHLCV columns", nil))
		return nil
	}

	message := fmt.Sprintf("found %d null values across OHLCV columns", totalNulls)
	if len(allNull) > 0 {
		message = fmt.Sprintf("columns entirely null: %v (%d null values total)", allNull, totalNulls)
	}
	res.AddCheck(NewCheck(CheckNoNulls, false, SeverityError, message, map[string]any{
		"total_nulls":      totalNulls,
		"columns":          perColumn,
		"all_null_columns": allNull,
	}))
	return nil
}

// checkOHLCConsistency flags rows violating the bar invariant:
// high < low, high < open, high < close, low > open or low > close.
func checkOHLCConsistency(in *Input, cfg *Config, res *Result) error {
	opens, _ := column(in, frame.ColOpen)
	highs, _ := column(in, frame.ColHigh)
	lows, _ := column(in, frame.ColLow)
	closes, _ := column(in, frame.ColClose)
	if opens == nil || highs == nil || lows == nil || closes == nil {
		return nil
	}
	index := in.Frame.Index()
	rows := in.Frame.NumRows()

	byType := map[string]int{
		"high_lt_low":   0,
		"high_lt_open":  0,
		"high_lt_close": 0,
		"low_gt_open":   0,
		"low_gt_close":  0,
	}
	total := 0
	var samples []string

	for i := 0; i < rows; i++ {
		if !opens[i].Valid || !highs[i].Valid || !lows[i].Valid || !closes[i].Valid {
			continue
		}
		o, h, l, c := opens[i].Decimal, highs[i].Decimal, lows[i].Decimal, closes[i].Decimal
		violated := false
		if h.LessThan(l) {
			byType["high_lt_low"]++
			violated = true
		}
		if h.LessThan(o) {
			byType["high_lt_open"]++
			violated = true
		}
		if h.LessThan(c) {
			byType["high_lt_close"]++
			violated = true
		}
		if l.GreaterThan(o) {
			byType["low_gt_open"]++
			violated = true
		}
		if l.GreaterThan(c) {
			byType["low_gt_close"]++
			violated = true
		}
		if violated {
			total++
			if len(samples) < maxSampleDates {
				samples = append(samples, formatDate(index[i]))
			}
		}
	}

	if total == 0 {
		res.AddCheck(passedCheck(CheckOHLCConsistency, "OHLC relationships consistent on every bar", nil))
		return nil
	}
	res.AddCheck(NewCheck(CheckOHLCConsistency, false, SeverityError,
		fmt.Sprintf("%d bars violate OHLC consistency (%.2f%%)", total, 100*float64(total)/float64(rows)),
		map[string]any{
			"total_violations":   total,
			"violations_by_type": byType,
			"pct":                float64(total) / float64(rows),
			"sample_dates":       samples,
		}))
	return nil
}

// checkNoNegativeValues flags negative prices or volume.
func checkNoNegativeValues(in *Input, cfg *Config, res *Result) error {
	index := in.Frame.Index()
	perColumn := make(map[string]any)
	total := 0
	var samples []string

	for _, canonical := range []string{frame.ColOpen, frame.ColHigh, frame.ColLow, frame.ColClose, frame.ColVolume} {
		col, ok := column(in, canonical)
		if !ok {
			continue
		}
		count := 0
		for i, v := range col {
			if !v.Valid || !v.Decimal.IsNegative() {
				continue
			}
			count++
			if len(samples) < maxSampleDates {
				samples = append(samples, formatDate(index[i]))
			}
		}
		if count > 0 {
			perColumn[canonical] = count
			total += count
		}
	}

	if total == 0 {
		res.AddCheck(passedCheck(CheckNoNegativeValues, "no negative prices or volume", nil))
		return nil
	}
	res.AddCheck(NewCheck(CheckNoNegativeValues, false, SeverityError,
		fmt.Sprintf("found %d negative values", total),
		map[string]any{
			"total_negative": total,
			"columns":        perColumn,
			"sample_dates":   samples,
		}))
	return nil
}

// checkNoFutureDates flags index timestamps after the current UTC time.
func checkNoFutureDates(in *Input, cfg *Config, res *Result) error {
	now := time.Now().UTC()
	count := 0
	var samples []string
	for _, t := range in.Frame.Index() {
		if t.UTC().After(now) {
			count++
			if len(samples) < maxSampleDates {
				samples = append(samples, formatDate(t))
			}
		}
	}
	if count == 0 {
		res.AddCheck(passedCheck(CheckNoFutureDates, "no future-dated bars", nil))
		return nil
	}
	res.AddCheck(NewCheck(CheckNoFutureDates, false, SeverityError,
		fmt.Sprintf("%d bars are dated in the future", count),
		map[string]any{
			"future_count": count,
			"sample_dates": samples,
			"now":          formatDate(now),
		}))
	return nil
}

// checkNoDuplicateDates flags duplicate index timestamps, which silently
// corrupt downstream consumers that key bars by date.
func checkNoDuplicateDates(in *Input, cfg *Config, res *Result) error {
	seen := make(map[int64]int, in.Frame.NumRows())
	duplicates := 0
	var samples []string
	for _, t := range in.Frame.Index() {
		key := t.UTC().UnixNano()
		seen[key]++
		if seen[key] == 2 {
			if len(samples) < maxSampleDates {
				samples = append(samples, formatDate(t))
			}
		}
		if seen[key] > 1 {
			duplicates++
		}
	}
	if duplicates == 0 {
		res.AddCheck(passedCheck(CheckNoDuplicateDates, "all index timestamps unique", nil))
		return nil
	}
	res.AddCheck(NewCheck(CheckNoDuplicateDates, false, SeverityError,
		fmt.Sprintf("%d duplicate index timestamps", duplicates),
		map[string]any{
			"duplicate_count": duplicates,
			"sample_dates":    samples,
		}))
	return nil
}

// checkSortedIndex verifies ascending monotonicity, distinguishing a
// fully descending index from a shuffled one for the message.
func checkSortedIndex(in *Input, cfg *Config, res *Result) error {
	index := in.Frame.Index()
	ascendingViolations := 0
	descending := len(index) > 1
	firstViolation := -1
	for i := 1; i < len(index); i++ {
		if index[i].Before(index[i-1]) {
			ascendingViolations++
			if firstViolation < 0 {
				firstViolation = i
			}
		}
		if index[i].After(index[i-1]) {
			descending = false
		}
	}
	if ascendingViolations == 0 {
		res.AddCheck(passedCheck(CheckSortedIndex, "index sorted ascending", nil))
		return nil
	}
	order := "unsorted"
	message := "index is not sorted ascending"
	if descending {
		order = "descending"
		message = "index is sorted descending; reverse it before use"
	}
	res.AddCheck(NewCheck(CheckSortedIndex, false, SeverityError, message, map[string]any{
		"order":                 order,
		"violations":            ascendingViolations,
		"first_violation_index": firstViolation,
	}))
	return nil
}

// checkZeroVolume flags a zero-volume bar fraction above the configured
// tolerance.
func checkZeroVolume(in *Input, cfg *Config, res *Result) error {
	volumes, ok := column(in, frame.ColVolume)
	if !ok {
		return nil
	}
	rows := in.Frame.NumRows()
	if rows == 0 {
		return nil
	}
	index := in.Frame.Index()
	count := 0
	var samples []string
	for i, v := range volumes {
		if !v.Valid || !v.Decimal.IsZero() {
			continue
		}
		count++
		if len(samples) < maxSampleDates {
			samples = append(samples, formatDate(index[i]))
		}
	}
	ratio := float64(count) / float64(rows)
	details := map[string]any{
		"zero_volume_count": count,
		"ratio":             ratio,
		"threshold":         cfg.MaxZeroVolumeRatio,
		"sample_dates":      samples,
	}
	if ratio <= cfg.MaxZeroVolumeRatio {
		res.AddCheck(passedCheck(CheckZeroVolume,
			fmt.Sprintf("zero-volume ratio %.4f within tolerance", ratio), details))
		return nil
	}
	res.AddCheck(NewCheck(CheckZeroVolume, false, cfg.findingSeverity(),
		fmt.Sprintf("zero-volume ratio %.4f exceeds tolerance %.4f", ratio, cfg.MaxZeroVolumeRatio),
		details))
	return nil
}

// checkPriceJumps flags close-to-close moves beyond the jump threshold.
// Large jumps are an early signal for unadjusted splits or bad prints.
func checkPriceJumps(in *Input, cfg *Config, res *Result) error {
	closes, ok := floatColumn(in, frame.ColClose)
	if !ok {
		return nil
	}
	index := in.Frame.Index()
	changes := pctChange(closes)
	count := 0
	var samples []map[string]any
	for i, change := range changes {
		if math.IsNaN(change) || math.Abs(change) <= cfg.MaxPriceJumpRatio {
			continue
		}
		count++
		if len(samples) < maxSampleIssues {
			samples = append(samples, map[string]any{
				"date":   formatDate(index[i]),
				"change": change,
			})
		}
	}
	if count == 0 {
		res.AddCheck(passedCheck(CheckPriceJumps, "no price jumps beyond threshold", map[string]any{
			"threshold": cfg.MaxPriceJumpRatio,
		}))
		return nil
	}
	res.AddCheck(NewCheck(CheckPriceJumps, false, cfg.findingSeverity(),
		fmt.Sprintf("%d close-to-close jumps beyond %.0f%%", count, 100*cfg.MaxPriceJumpRatio),
		map[string]any{
			"jump_count": count,
			"threshold":  cfg.MaxPriceJumpRatio,
			"samples":    samples,
		}))
	return nil
}

// checkStaleData flags a series whose last bar is older than the stale
// threshold. Staleness is informational, not corruption, so the
// severity stays Warning regardless of strict mode.
func checkStaleData(in *Input, cfg *Config, res *Result) error {
	if in.Frame.NumRows() == 0 {
		return nil
	}
	last := in.Frame.LastDate().UTC()
	days := int(time.Now().UTC().Sub(last).Hours() / 24)
	details := map[string]any{
		"days_since_last_bar": days,
		"threshold_days":      cfg.StaleDataDays,
		"last_date":           formatDate(last),
	}
	if days <= cfg.StaleDataDays {
		res.AddCheck(passedCheck(CheckStaleData, "data is current", details))
		return nil
	}
	res.AddCheck(NewCheck(CheckStaleData, false, SeverityWarning,
		fmt.Sprintf("last bar is %d days old (threshold %d)", days, cfg.StaleDataDays),
		details))
	return nil
}

// checkDataSufficiency flags a row count below the timeframe-dependent
// minimum.
func checkDataSufficiency(in *Input, cfg *Config, res *Result) error {
	rows := in.Frame.NumRows()
	minRows := cfg.MinRowsDaily
	class := "daily"
	if cfg.IsIntraday() {
		minRows = cfg.MinRowsIntraday
		class = "intraday"
	}
	details := map[string]any{
		"row_count":       rows,
		"min_rows":        minRows,
		"timeframe_class": class,
	}
	if rows >= minRows {
		res.AddCheck(passedCheck(CheckDataSufficiency,
			fmt.Sprintf("%d rows meet the %s minimum of %d", rows, class, minRows), details))
		return nil
	}
	res.AddCheck(NewCheck(CheckDataSufficiency, false, cfg.findingSeverity(),
		fmt.Sprintf("only %d rows, below the %s minimum of %d", rows, class, minRows),
		details))
	return nil
}

// checkPriceOutliers flags |pct_change(close)| observations whose
// z-score exceeds the outlier sigma. Outside strict mode the finding
// degrades to a warning.
func checkPriceOutliers(in *Input, cfg *Config, res *Result) error {
	closes, ok := floatColumn(in, frame.ColClose)
	if !ok {
		return nil
	}
	index := in.Frame.Index()
	magnitudes := absValues(pctChange(closes))
	scores := zScores(magnitudes)

	count := 0
	maxZ := 0.0
	var samples []map[string]any
	for i, z := range scores {
		if math.IsNaN(z) {
			continue
		}
		if z > maxZ {
			maxZ = z
		}
		if z <= cfg.OutlierSigma {
			continue
		}
		count++
		if len(samples) < maxSampleIssues {
			samples = append(samples, map[string]any{
				"date":    formatDate(index[i]),
				"z_score": z,
				"change":  magnitudes[i],
			})
		}
	}
	details := map[string]any{
		"outlier_count": count,
		"sigma":         cfg.OutlierSigma,
		"max_z_score":   maxZ,
		"samples":       samples,
	}
	if count == 0 {
		res.AddCheck(passedCheck(CheckPriceOutliers, "no price outliers beyond sigma threshold", details))
		return nil
	}
	if cfg.StrictMode {
		res.AddCheck(NewCheck(CheckPriceOutliers, false, SeverityError,
			fmt.Sprintf("%d price outliers beyond %.1f sigma", count, cfg.OutlierSigma), details))
		return nil
	}
	res.AddCheck(NewCheck(CheckPriceOutliers, false, SeverityWarning,
		fmt.Sprintf("%d price outliers found but within tolerance", count), details))
	return nil
}

// checkVolumeSpikes applies the same z-score technique to volume.
// Skipped for forex, where volume is not economically meaningful.
func checkVolumeSpikes(in *Input, cfg *Config, res *Result) error {
	if cfg.AssetType == AssetForex {
		return nil
	}
	volumes, ok := floatColumn(in, frame.ColVolume)
	if !ok {
		return nil
	}
	index := in.Frame.Index()
	scores := zScores(volumes)

	count := 0
	var samples []map[string]any
	for i, z := range scores {
		if math.IsNaN(z) || z <= cfg.VolumeSpikeSigma {
			continue
		}
		count++
		if len(samples) < maxSampleIssues {
			samples = append(samples, map[string]any{
				"date":    formatDate(index[i]),
				"z_score": z,
				"volume":  volumes[i],
			})
		}
	}
	details := map[string]any{
		"spike_count": count,
		"sigma":       cfg.VolumeSpikeSigma,
		"samples":     samples,
	}
	if count == 0 {
		res.AddCheck(passedCheck(CheckVolumeSpikes, "no volume spikes beyond sigma threshold", details))
		return nil
	}
	if cfg.StrictMode {
		res.AddCheck(NewCheck(CheckVolumeSpikes, false, SeverityError,
			fmt.Sprintf("%d volume spikes beyond %.1f sigma", count, cfg.VolumeSpikeSigma), details))
		return nil
	}
	res.AddCheck(NewCheck(CheckVolumeSpikes, false, SeverityWarning,
		fmt.Sprintf("%d volume spikes found but within tolerance", count), details))
	return nil
}
