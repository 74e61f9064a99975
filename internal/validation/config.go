package validation

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// AssetType identifies the market microstructure a series belongs to.
type AssetType string

const (
	AssetUnspecified AssetType = ""
	AssetEquity      AssetType = "equity"
	AssetForex       AssetType = "forex"
	AssetCrypto      AssetType = "crypto"
)

// ParseAssetType parses an asset type name. The empty string is valid
// and means unspecified.
func ParseAssetType(s string) (AssetType, error) {
	switch AssetType(strings.ToLower(strings.TrimSpace(s))) {
	case AssetUnspecified:
		return AssetUnspecified, nil
	case AssetEquity:
		return AssetEquity, nil
	case AssetForex:
		return AssetForex, nil
	case AssetCrypto:
		return AssetCrypto, nil
	}
	return AssetUnspecified, fmt.Errorf("unknown asset type %q", s)
}

// CheckToggles enables or disables individual checks without altering
// registry order.
type CheckToggles struct {
	RequiredColumns   bool `yaml:"required_columns"`
	Nulls             bool `yaml:"nulls"`
	OHLCConsistency   bool `yaml:"ohlc_consistency"`
	NegativeValues    bool `yaml:"negative_values"`
	FutureDates       bool `yaml:"future_dates"`
	DuplicateDates    bool `yaml:"duplicate_dates"`
	SortedIndex       bool `yaml:"sorted_index"`
	ZeroVolume        bool `yaml:"zero_volume"`
	PriceJumps        bool `yaml:"price_jumps"`
	StaleData         bool `yaml:"stale_data"`
	DataSufficiency   bool `yaml:"data_sufficiency"`
	PriceOutliers     bool `yaml:"price_outliers"`
	VolumeSpikes      bool `yaml:"volume_spikes"`
	PotentialSplits   bool `yaml:"potential_splits"`
	SundayBars        bool `yaml:"sunday_bars"`
	WeekendGaps       bool `yaml:"weekend_gaps"`
	DateContinuity    bool `yaml:"date_continuity"`
	ExtremeVolatility bool `yaml:"extreme_volatility"`
	FlashCrash        bool `yaml:"flash_crash"`
}

// Config is the immutable per-call validation configuration. It is
// constructed fresh (or copied from a preset) for each validation call
// and safely shareable across concurrent calls.
type Config struct {
	Checks CheckToggles `yaml:"checks"`

	// Calendar-session gap tolerance for daily continuity, in sessions.
	GapToleranceDays int `yaml:"gap_tolerance_days"`
	// Oversized inter-bar gap tolerance for intraday continuity, in
	// occurrences.
	GapToleranceBars int `yaml:"gap_tolerance_bars"`

	// Sigma threshold on the |pct_change(close)| z-score.
	OutlierSigma float64 `yaml:"outlier_sigma"`
	// Sigma threshold on the volume z-score.
	VolumeSpikeSigma float64 `yaml:"volume_spike_sigma"`
	// Days since the last bar before a series is considered stale.
	StaleDataDays int `yaml:"stale_data_days"`
	// Maximum tolerated fraction of zero-volume bars, in [0,1].
	MaxZeroVolumeRatio float64 `yaml:"max_zero_volume_ratio"`
	// Close-to-close change flagged as a jump, as a fraction in [0,1].
	MaxPriceJumpRatio float64 `yaml:"max_price_jump_ratio"`

	// Minimum row counts by timeframe class.
	MinRowsDaily    int `yaml:"min_rows_daily"`
	MinRowsIntraday int `yaml:"min_rows_intraday"`

	// Multiplier applied to the per-band split-ratio tolerances.
	SplitTolerance float64 `yaml:"split_tolerance"`

	// Weekend gap thresholds (forex), as fractions.
	WeekendGapMinRatio float64 `yaml:"weekend_gap_min_ratio"`
	WeekendGapMaxRatio float64 `yaml:"weekend_gap_max_ratio"`

	// Crypto thresholds, as fractions.
	ExtremeVolatilityRatio float64 `yaml:"extreme_volatility_ratio"`
	FlashCrashDropRatio    float64 `yaml:"flash_crash_drop_ratio"`
	FlashCrashRetraceRatio float64 `yaml:"flash_crash_retrace_ratio"`
	FlashCrashWindowBars   int     `yaml:"flash_crash_window_bars"`

	// StrictMode escalates Warning-severity findings to Error.
	StrictMode bool `yaml:"strict_mode"`

	AssetType    AssetType `yaml:"asset_type"`
	Timeframe    string    `yaml:"timeframe"`
	CalendarName string    `yaml:"calendar_name"`
}

func allChecksEnabled() CheckToggles {
	return CheckToggles{
		RequiredColumns:   true,
		Nulls:             true,
		OHLCConsistency:   true,
		NegativeValues:    true,
		FutureDates:       true,
		DuplicateDates:    true,
		SortedIndex:       true,
		ZeroVolume:        true,
		PriceJumps:        true,
		StaleData:         true,
		DataSufficiency:   true,
		PriceOutliers:     true,
		VolumeSpikes:      true,
		PotentialSplits:   true,
		SundayBars:        true,
		WeekendGaps:       true,
		DateContinuity:    true,
		ExtremeVolatility: true,
		FlashCrash:        true,
	}
}

// DefaultConfig returns the baseline configuration with every check
// enabled and moderate thresholds.
func DefaultConfig() *Config {
	return &Config{
		Checks:                 allChecksEnabled(),
		GapToleranceDays:       5,
		GapToleranceBars:       3,
		OutlierSigma:           5.0,
		VolumeSpikeSigma:       4.0,
		StaleDataDays:          30,
		MaxZeroVolumeRatio:     0.10,
		MaxPriceJumpRatio:      0.20,
		MinRowsDaily:           30,
		MinRowsIntraday:        100,
		SplitTolerance:         1.0,
		WeekendGapMinRatio:     0.00001,
		WeekendGapMaxRatio:     0.05,
		ExtremeVolatilityRatio: 0.50,
		FlashCrashDropRatio:    0.20,
		FlashCrashRetraceRatio: 0.50,
		FlashCrashWindowBars:   3,
		StrictMode:             false,
		Timeframe:              "1d",
	}
}

// StrictConfig returns a configuration with strict mode on and tighter
// statistical thresholds, for pre-ingestion gating.
func StrictConfig() *Config {
	cfg := DefaultConfig()
	cfg.StrictMode = true
	cfg.GapToleranceDays = 2
	cfg.GapToleranceBars = 1
	cfg.OutlierSigma = 4.0
	cfg.VolumeSpikeSigma = 3.0
	cfg.MaxZeroVolumeRatio = 0.05
	cfg.MaxPriceJumpRatio = 0.10
	return cfg
}

// LenientConfig returns a configuration with looser statistical
// thresholds, for exploratory work on known-messy data.
func LenientConfig() *Config {
	cfg := DefaultConfig()
	cfg.GapToleranceDays = 15
	cfg.GapToleranceBars = 10
	cfg.OutlierSigma = 7.0
	cfg.VolumeSpikeSigma = 6.0
	cfg.StaleDataDays = 90
	cfg.MaxZeroVolumeRatio = 0.25
	cfg.MaxPriceJumpRatio = 0.50
	return cfg
}

// MinimalConfig returns a configuration running only the structural
// checks, with every statistical detector disabled.
func MinimalConfig() *Config {
	cfg := DefaultConfig()
	cfg.Checks = CheckToggles{
		RequiredColumns: true,
		Nulls:           true,
		OHLCConsistency: true,
		NegativeValues:  true,
		FutureDates:     true,
		DuplicateDates:  true,
		SortedIndex:     true,
	}
	return cfg
}

// ConfigForAsset returns the default configuration specialized for an
// asset class.
func ConfigForAsset(asset AssetType) *Config {
	cfg := DefaultConfig()
	cfg.AssetType = asset
	switch asset {
	case AssetEquity:
		cfg.CalendarName = "weekday"
		cfg.Checks.SundayBars = false
		cfg.Checks.WeekendGaps = false
	case AssetForex:
		cfg.CalendarName = "forex"
		// Volume is not economically meaningful for forex feeds.
		cfg.Checks.ZeroVolume = false
		cfg.Checks.VolumeSpikes = false
		cfg.Checks.PotentialSplits = false
	case AssetCrypto:
		cfg.CalendarName = "24/7"
		cfg.Checks.SundayBars = false
		cfg.Checks.WeekendGaps = false
		cfg.Checks.PotentialSplits = false
	}
	return cfg
}

// LoadConfig reads a YAML configuration file over the defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config in %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the configuration values for internal consistency.
func (c *Config) Validate() error {
	if c.OutlierSigma <= 0 {
		return fmt.Errorf("outlier_sigma must be positive, got %v", c.OutlierSigma)
	}
	if c.VolumeSpikeSigma <= 0 {
		return fmt.Errorf("volume_spike_sigma must be positive, got %v", c.VolumeSpikeSigma)
	}
	if c.MaxZeroVolumeRatio < 0 || c.MaxZeroVolumeRatio > 1 {
		return fmt.Errorf("max_zero_volume_ratio must be in [0,1], got %v", c.MaxZeroVolumeRatio)
	}
	if c.MaxPriceJumpRatio <= 0 {
		return fmt.Errorf("max_price_jump_ratio must be positive, got %v", c.MaxPriceJumpRatio)
	}
	if c.FlashCrashWindowBars <= 0 {
		return fmt.Errorf("flash_crash_window_bars must be positive, got %v", c.FlashCrashWindowBars)
	}
	if _, err := ParseAssetType(string(c.AssetType)); err != nil {
		return err
	}
	if c.Timeframe != "" {
		if _, err := ParseTimeframe(c.Timeframe); err != nil {
			return err
		}
	}
	return nil
}

// CheckEnabled reports whether the named check is enabled.
func (c *Config) CheckEnabled(name string) bool {
	switch name {
	case CheckRequiredColumns:
		return c.Checks.RequiredColumns
	case CheckNoNulls:
		return c.Checks.Nulls
	case CheckOHLCConsistency:
		return c.Checks.OHLCConsistency
	case CheckNoNegativeValues:
		return c.Checks.NegativeValues
	case CheckNoFutureDates:
		return c.Checks.FutureDates
	case CheckNoDuplicateDates:
		return c.Checks.DuplicateDates
	case CheckSortedIndex:
		return c.Checks.SortedIndex
	case CheckZeroVolume:
		return c.Checks.ZeroVolume
	case CheckPriceJumps:
		return c.Checks.PriceJumps
	case CheckStaleData:
		return c.Checks.StaleData
	case CheckDataSufficiency:
		return c.Checks.DataSufficiency
	case CheckPriceOutliers:
		return c.Checks.PriceOutliers
	case CheckVolumeSpikes:
		return c.Checks.VolumeSpikes
	case CheckPotentialSplits:
		return c.Checks.PotentialSplits
	case CheckSundayBars:
		return c.Checks.SundayBars
	case CheckWeekendGaps:
		return c.Checks.WeekendGaps
	case CheckDateContinuity:
		return c.Checks.DateContinuity
	case CheckExtremeVolatility:
		return c.Checks.ExtremeVolatility
	case CheckFlashCrash:
		return c.Checks.FlashCrash
	}
	return true
}

// IsIntraday reports whether the configured timeframe is shorter than
// one day. An unparsable or empty timeframe is treated as daily.
func (c *Config) IsIntraday() bool {
	d, err := ParseTimeframe(c.Timeframe)
	if err != nil {
		return false
	}
	return d < 24*time.Hour
}

// TimeframeDuration returns the bar interval for the configured
// timeframe, defaulting to one day.
func (c *Config) TimeframeDuration() time.Duration {
	d, err := ParseTimeframe(c.Timeframe)
	if err != nil {
		return 24 * time.Hour
	}
	return d
}

// findingSeverity returns the severity for a soft statistical finding:
// Warning by default, escalated to Error under strict mode.
func (c *Config) findingSeverity() Severity {
	if c.StrictMode {
		return SeverityError
	}
	return SeverityWarning
}

// Snapshot returns the threshold values recorded in result metadata.
func (c *Config) Snapshot() map[string]any {
	return map[string]any{
		"strict_mode":           c.StrictMode,
		"asset_type":            string(c.AssetType),
		"timeframe":             c.Timeframe,
		"calendar_name":         c.CalendarName,
		"outlier_sigma":         c.OutlierSigma,
		"volume_spike_sigma":    c.VolumeSpikeSigma,
		"max_price_jump_ratio":  c.MaxPriceJumpRatio,
		"max_zero_volume_ratio": c.MaxZeroVolumeRatio,
		"gap_tolerance_days":    c.GapToleranceDays,
		"gap_tolerance_bars":    c.GapToleranceBars,
		"stale_data_days":       c.StaleDataDays,
	}
}

// Clone returns a deep copy of the configuration.
func (c *Config) Clone() *Config {
	copied := *c
	return &copied
}

// ParseTimeframe parses interval strings like "1m", "15m", "4h", "1d"
// or "1w" into a duration.
func ParseTimeframe(timeframe string) (time.Duration, error) {
	tf := strings.ToLower(strings.TrimSpace(timeframe))
	if tf == "" {
		return 24 * time.Hour, nil
	}
	if tf == "daily" {
		return 24 * time.Hour, nil
	}
	if len(tf) < 2 {
		return 0, fmt.Errorf("invalid timeframe %q", timeframe)
	}
	unit := tf[len(tf)-1]
	value, err := strconv.Atoi(tf[:len(tf)-1])
	if err != nil || value <= 0 {
		return 0, fmt.Errorf("invalid timeframe %q", timeframe)
	}
	switch unit {
	case 'm':
		return time.Duration(value) * time.Minute, nil
	case 'h':
		return time.Duration(value) * time.Hour, nil
	case 'd':
		return time.Duration(value) * 24 * time.Hour, nil
	case 'w':
		return time.Duration(value) * 7 * 24 * time.Hour, nil
	}
	return 0, fmt.Errorf("invalid timeframe unit in %q", timeframe)
}
