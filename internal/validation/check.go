package validation

import (
	"time"
)

// Stable check identifiers. Check registries, config toggles and report
// consumers all key on these names.
const (
	CheckRequiredColumns   = "required_columns"
	CheckNoNulls           = "no_nulls"
	CheckOHLCConsistency   = "ohlc_consistency"
	CheckNoNegativeValues  = "no_negative_values"
	CheckNoFutureDates     = "no_future_dates"
	CheckNoDuplicateDates  = "no_duplicate_dates"
	CheckSortedIndex       = "sorted_index"
	CheckZeroVolume        = "zero_volume"
	CheckPriceJumps        = "price_jumps"
	CheckStaleData         = "stale_data"
	CheckDataSufficiency   = "data_sufficiency"
	CheckPriceOutliers     = "price_outliers"
	CheckVolumeSpikes      = "volume_spikes"
	CheckPotentialSplits   = "potential_splits"
	CheckSundayBars        = "sunday_bars"
	CheckWeekendGaps       = "weekend_gaps"
	CheckDateContinuity    = "date_continuity"
	CheckExtremeVolatility = "extreme_volatility"
	CheckFlashCrash        = "flash_crash"
)

// Check records a single rule evaluation. Immutable once created.
type Check struct {
	Name      string         `json:"name"`
	Passed    bool           `json:"passed"`
	Severity  Severity       `json:"severity"`
	Message   string         `json:"message"`
	Details   map[string]any `json:"details,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

// NewCheck creates a check with the current UTC timestamp.
func NewCheck(name string, passed bool, severity Severity, message string, details map[string]any) Check {
	return Check{
		Name:      name,
		Passed:    passed,
		Severity:  severity,
		Message:   message,
		Details:   details,
		Timestamp: time.Now().UTC(),
	}
}

// passedCheck is the common shape for a rule that found nothing.
func passedCheck(name, message string, details map[string]any) Check {
	return NewCheck(name, true, SeverityInfo, message, details)
}
