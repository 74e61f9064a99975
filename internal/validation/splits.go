package validation

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/johnayoung/go-ohlcv-validator/internal/frame"
)

// splitBand describes one known split ratio as the close-to-close
// fractional change it produces, with an absolute tolerance window.
// The magnitudes are the empirically established bands: forward splits
// drop the close by ~25/33/50/66.7/75 percent, reverse splits gain
// ~100/200 percent.
type splitBand struct {
	ratio     string
	change    float64
	tolerance float64
}

var splitBands = []splitBand{
	{"5:4", -0.25, 0.02},
	{"3:2", -1.0 / 3.0, 0.02},
	{"2:1", -0.50, 0.02},
	{"3:1", -2.0 / 3.0, 0.02},
	{"4:1", -0.75, 0.02},
	{"1:2", 1.00, 0.05},
	{"1:3", 2.00, 0.10},
}

// matchSplitBand returns the band a fractional change falls into, with
// the configured tolerance multiplier applied.
func matchSplitBand(change, toleranceScale float64) (splitBand, bool) {
	for _, band := range splitBands {
		if math.Abs(change-band.change) <= band.tolerance*toleranceScale {
			return band, true
		}
	}
	return splitBand{}, false
}

// checkPotentialSplits looks for day-over-day close changes that match a
// known split-ratio band. A band match alone is not a finding: ordinary
// volatility can land in a band, so a match is reported only when no
// volume series exists to corroborate, or the same date also shows a
// volume z-score above the spike threshold. Equity only.
func checkPotentialSplits(in *Input, cfg *Config, res *Result) error {
	if cfg.AssetType != AssetEquity {
		return nil
	}
	closes, ok := floatColumn(in, frame.ColClose)
	if !ok {
		return nil
	}
	index := in.Frame.Index()
	changes := pctChange(closes)

	volumes, hasVolume := floatColumn(in, frame.ColVolume)
	var volScores []float64
	if hasVolume {
		volScores = zScores(volumes)
	}

	totalMatches := 0
	var findings []map[string]any
	for i, change := range changes {
		if math.IsNaN(change) {
			continue
		}
		band, matched := matchSplitBand(change, cfg.SplitTolerance)
		if !matched {
			continue
		}
		totalMatches++

		corroborated := !hasVolume
		volZ := 0.0
		if hasVolume {
			volZ = volScores[i]
			if !math.IsNaN(volZ) && volZ > cfg.VolumeSpikeSigma {
				corroborated = true
			}
		}
		if !corroborated {
			continue
		}
		if len(findings) < maxSampleIssues {
			findings = append(findings, map[string]any{
				"date":           formatDate(index[i]),
				"ratio":          band.ratio,
				"change":         change,
				"volume_z_score": volZ,
			})
		}
	}

	details := map[string]any{
		"total_band_matches": totalMatches,
		"findings":           findings,
		"volume_available":   hasVolume,
	}
	if len(findings) == 0 {
		res.AddCheck(passedCheck(CheckPotentialSplits, "no unadjusted split signatures detected", details))
		return nil
	}
	res.AddCheck(NewCheck(CheckPotentialSplits, false, cfg.findingSeverity(),
		fmt.Sprintf("%d price moves match known split ratios; data may be unadjusted", len(findings)),
		details))
	return nil
}

// EquityValidator is the equity-specific check registry: the structural
// prerequisite plus the split detector. It is meant to run after (or
// merged with) the generic battery.
type EquityValidator struct {
	runner
}

// NewEquityValidator creates the equity validator. The config's asset
// type is forced to equity so the split detector engages.
func NewEquityValidator(cfg *Config, logger *slog.Logger) *EquityValidator {
	if cfg == nil {
		cfg = ConfigForAsset(AssetEquity)
	} else {
		cfg = cfg.Clone()
		cfg.AssetType = AssetEquity
	}
	v := &EquityValidator{}
	v.runner = newRunner("equity_validator", cfg, logger, []registeredCheck{
		{CheckRequiredColumns, checkRequiredColumns},
		{CheckPotentialSplits, checkPotentialSplits},
	})
	return v
}

// Name implements Validator.
func (v *EquityValidator) Name() string { return v.name }

// Validate implements Validator.
func (v *EquityValidator) Validate(ctx context.Context, in *Input) *Result {
	return v.run(ctx, in)
}
