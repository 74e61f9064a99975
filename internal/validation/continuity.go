package validation

import (
	"fmt"
	"time"

	"github.com/johnayoung/go-ohlcv-validator/internal/calendar"
)

// checkDateContinuity diffs the observed dates against the calendar's
// expected sessions. Without a calendar it falls back to a bar-spacing
// scan for intraday timeframes: any inter-bar gap beyond three times
// the expected interval counts as a gap occurrence.
func checkDateContinuity(in *Input, cfg *Config, res *Result) error {
	if in.Frame.NumRows() < 2 {
		return nil
	}
	if in.Calendar != nil {
		return checkSessionContinuity(in, cfg, res)
	}
	if cfg.IsIntraday() {
		return checkBarSpacing(in, cfg, res)
	}
	return nil
}

func checkSessionContinuity(in *Input, cfg *Config, res *Result) error {
	index := in.Frame.Index()
	observed := make(map[time.Time]bool, len(index))
	for _, t := range index {
		observed[calendar.Normalize(t)] = true
	}

	sessions := in.Calendar.SessionsInRange(in.Frame.FirstDate(), in.Frame.LastDate())
	missing := 0
	var samples []string
	for _, session := range sessions {
		if observed[session] {
			continue
		}
		missing++
		if len(samples) < maxSampleIssues {
			samples = append(samples, session.Format("2006-01-02"))
		}
	}

	details := map[string]any{
		"calendar":          in.Calendar.Name(),
		"expected_sessions": len(sessions),
		"missing_sessions":  missing,
		"tolerance_days":    cfg.GapToleranceDays,
		"sample_dates":      samples,
	}
	if missing <= cfg.GapToleranceDays {
		res.AddCheck(passedCheck(CheckDateContinuity,
			fmt.Sprintf("%d missing sessions within tolerance of %d", missing, cfg.GapToleranceDays),
			details))
		return nil
	}
	res.AddCheck(NewCheck(CheckDateContinuity, false, cfg.findingSeverity(),
		fmt.Sprintf("%d missing sessions against the %s calendar (tolerance %d)",
			missing, in.Calendar.Name(), cfg.GapToleranceDays),
		details))
	return nil
}

func checkBarSpacing(in *Input, cfg *Config, res *Result) error {
	index := in.Frame.Index()
	expected := cfg.TimeframeDuration()
	limit := 3 * expected

	gaps := 0
	var samples []map[string]any
	for i := 1; i < len(index); i++ {
		diff := index[i].Sub(index[i-1])
		if diff <= limit {
			continue
		}
		gaps++
		if len(samples) < maxSampleIssues {
			samples = append(samples, map[string]any{
				"date": formatDate(index[i]),
				"gap":  diff.String(),
			})
		}
	}

	details := map[string]any{
		"gap_count":         gaps,
		"expected_interval": expected.String(),
		"tolerance_bars":    cfg.GapToleranceBars,
		"samples":           samples,
	}
	if gaps <= cfg.GapToleranceBars {
		res.AddCheck(passedCheck(CheckDateContinuity,
			fmt.Sprintf("%d oversized bar gaps within tolerance of %d", gaps, cfg.GapToleranceBars),
			details))
		return nil
	}
	res.AddCheck(NewCheck(CheckDateContinuity, false, cfg.findingSeverity(),
		fmt.Sprintf("%d inter-bar gaps exceed 3x the %s interval (tolerance %d)",
			gaps, expected, cfg.GapToleranceBars),
		details))
	return nil
}
