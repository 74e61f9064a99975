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

// continuousCalendars are the calendar names under which Sunday bars
// can legitimately appear in the feed and therefore need checking.
var continuousCalendars = map[string]bool{
	"forex":      true,
	"continuous": true,
	"24/7":       true,
	"24/5":       true,
}

func runsContinuousSessions(in *Input, cfg *Config) bool {
	if cfg.AssetType == AssetForex {
		return true
	}
	if continuousCalendars[cfg.CalendarName] {
		return true
	}
	return in.Calendar != nil && continuousCalendars[in.Calendar.Name()]
}

// checkSundayBars flags bars dated Sunday on continuous/forex feeds.
// Backtest calendars generally have no Sunday session, so these bars
// are dropped silently downstream unless consolidated first.
func checkSundayBars(in *Input, cfg *Config, res *Result) error {
	if !runsContinuousSessions(in, cfg) {
		return nil
	}
	count := 0
	var samples []string
	for _, t := range in.Frame.Index() {
		if t.UTC().Weekday() != time.Sunday {
			continue
		}
		count++
		if len(samples) < maxSampleIssues {
			samples = append(samples, formatDate(t))
		}
	}
	if count == 0 {
		res.AddCheck(passedCheck(CheckSundayBars, "no Sunday bars", nil))
		return nil
	}
	res.AddCheck(NewCheck(CheckSundayBars, false, SeverityWarning,
		fmt.Sprintf("%d Sunday bars found; consolidate them into the preceding Friday session", count),
		map[string]any{
			"sunday_count":   count,
			"sample_dates":   samples,
			"recommendation": "consolidate Sunday bars into the preceding Friday bar before ingestion",
		}))
	return nil
}

// checkWeekendGaps cross-checks Friday/Sunday/Monday bar triples on
// forex feeds for three corruption signatures: a Sunday bar that
// duplicates Friday's close, a suspiciously tiny Sunday-to-Monday gap
// (possible missing weekend movement), and an abnormally large
// Friday-to-Monday gap when no Sunday bar exists (possible missing
// data).
func checkWeekendGaps(in *Input, cfg *Config, res *Result) error {
	if cfg.AssetType != AssetForex {
		return nil
	}
	closes, ok := column(in, frame.ColClose)
	if !ok {
		return nil
	}
	opens, ok := column(in, frame.ColOpen)
	if !ok {
		return nil
	}
	index := in.Frame.Index()

	issueCount := 0
	var samples []map[string]any
	record := func(kind, date string, gap float64) {
		issueCount++
		if len(samples) < maxSampleIssues {
			entry := map[string]any{"issue": kind, "date": date}
			if !math.IsNaN(gap) {
				entry["gap"] = gap
			}
			samples = append(samples, entry)
		}
	}

	for i := 1; i < len(index); i++ {
		prev := index[i-1].UTC().Weekday()
		cur := index[i].UTC().Weekday()

		switch {
		case cur == time.Sunday && prev == time.Friday:
			// Duplicated Friday+Sunday bar.
			if closes[i-1].Valid && closes[i].Valid && closes[i-1].Decimal.Equal(closes[i].Decimal) {
				record("duplicated_friday_sunday", formatDate(index[i]), math.NaN())
			}
			// Tiny Sunday→Monday gap.
			if i+1 < len(index) && index[i+1].UTC().Weekday() == time.Monday {
				gap := relativeGap(closes[i], opens[i+1])
				if !math.IsNaN(gap) && gap < cfg.WeekendGapMinRatio {
					record("tiny_sunday_monday_gap", formatDate(index[i+1]), gap)
				}
			}
		case cur == time.Monday && prev == time.Friday:
			// No Sunday bar: a large Friday→Monday gap suggests the
			// weekend bar went missing rather than never existing.
			gap := relativeGap(closes[i-1], opens[i])
			if !math.IsNaN(gap) && gap > cfg.WeekendGapMaxRatio {
				record("large_friday_monday_gap", formatDate(index[i]), gap)
			}
		}
	}

	details := map[string]any{
		"issue_count":   issueCount,
		"samples":       samples,
		"min_gap_ratio": cfg.WeekendGapMinRatio,
		"max_gap_ratio": cfg.WeekendGapMaxRatio,
	}
	if issueCount == 0 {
		res.AddCheck(passedCheck(CheckWeekendGaps, "weekend bar transitions look consistent", details))
		return nil
	}
	res.AddCheck(NewCheck(CheckWeekendGaps, false, cfg.findingSeverity(),
		fmt.Sprintf("%d weekend gap integrity issues", issueCount),
		details))
	return nil
}

// relativeGap returns |b/a - 1|, or NaN when either value is null or a
// is zero.
func relativeGap(a, b decimal.NullDecimal) float64 {
	if !a.Valid || !b.Valid || a.Decimal.IsZero() {
		return math.NaN()
	}
	ratio, _ := b.Decimal.Div(a.Decimal).Float64()
	return math.Abs(ratio - 1)
}

// ForexValidator is the forex-specific check registry: session-shape
// checks only, with volume statistics deliberately absent.
type ForexValidator struct {
	runner
}

// NewForexValidator creates the forex validator. The config's asset
// type is forced to forex so volume-based checks stay out of play.
func NewForexValidator(cfg *Config, logger *slog.Logger) *ForexValidator {
	if cfg == nil {
		cfg = ConfigForAsset(AssetForex)
	} else {
		cfg = cfg.Clone()
		cfg.AssetType = AssetForex
	}
	v := &ForexValidator{}
	v.runner = newRunner("forex_validator", cfg, logger, []registeredCheck{
		{CheckRequiredColumns, checkRequiredColumns},
		{CheckSundayBars, checkSundayBars},
		{CheckWeekendGaps, checkWeekendGaps},
		{CheckDateContinuity, checkDateContinuity},
	})
	return v
}

// Name implements Validator.
func (v *ForexValidator) Name() string { return v.name }

// Validate implements Validator.
func (v *ForexValidator) Validate(ctx context.Context, in *Input) *Result {
	return v.run(ctx, in)
}
