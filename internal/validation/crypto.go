package validation

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/johnayoung/go-ohlcv-validator/internal/frame"
)

// checkExtremeVolatility flags bars whose intrabar range exceeds the
// extreme volatility threshold (default 50% per bar). Crypto markets
// trade continuously, so a range that wide on one bar usually marks a
// feed glitch or exchange outage print rather than real movement.
func checkExtremeVolatility(in *Input, cfg *Config, res *Result) error {
	highs, ok := floatColumn(in, frame.ColHigh)
	if !ok {
		return nil
	}
	lows, ok := floatColumn(in, frame.ColLow)
	if !ok {
		return nil
	}
	index := in.Frame.Index()

	count := 0
	var samples []map[string]any
	for i := range highs {
		h, l := highs[i], lows[i]
		if math.IsNaN(h) || math.IsNaN(l) || l <= 0 {
			continue
		}
		barRange := (h - l) / l
		if barRange <= cfg.ExtremeVolatilityRatio {
			continue
		}
		count++
		if len(samples) < maxSampleIssues {
			samples = append(samples, map[string]any{
				"date":  formatDate(index[i]),
				"range": barRange,
			})
		}
	}
	details := map[string]any{
		"extreme_count": count,
		"threshold":     cfg.ExtremeVolatilityRatio,
		"samples":       samples,
	}
	if count == 0 {
		res.AddCheck(passedCheck(CheckExtremeVolatility, "no bars with extreme intrabar volatility", details))
		return nil
	}
	res.AddCheck(NewCheck(CheckExtremeVolatility, false, cfg.findingSeverity(),
		fmt.Sprintf("%d bars exceed %.0f%% intrabar range", count, 100*cfg.ExtremeVolatilityRatio),
		details))
	return nil
}

// checkFlashCrash looks for the flash-crash signature: an intrabar
// high-to-low drop beyond the drop threshold that retraces more than
// the retrace fraction within the following window of bars. A genuine
// repricing does not snap back; a flash crash or bad print does.
func checkFlashCrash(in *Input, cfg *Config, res *Result) error {
	highs, ok := floatColumn(in, frame.ColHigh)
	if !ok {
		return nil
	}
	lows, ok := floatColumn(in, frame.ColLow)
	if !ok {
		return nil
	}
	closes, ok := floatColumn(in, frame.ColClose)
	if !ok {
		return nil
	}
	index := in.Frame.Index()

	count := 0
	var samples []map[string]any
	for i := range highs {
		h, l := highs[i], lows[i]
		if math.IsNaN(h) || math.IsNaN(l) || h <= 0 {
			continue
		}
		drop := (h - l) / h
		if drop <= cfg.FlashCrashDropRatio {
			continue
		}
		retraceLevel := l + cfg.FlashCrashRetraceRatio*(h-l)
		retraced := false
		for j := i + 1; j <= i+cfg.FlashCrashWindowBars && j < len(closes); j++ {
			if !math.IsNaN(closes[j]) && closes[j] >= retraceLevel {
				retraced = true
				break
			}
		}
		if !retraced {
			continue
		}
		count++
		if len(samples) < maxSampleIssues {
			samples = append(samples, map[string]any{
				"date": formatDate(index[i]),
				"drop": drop,
			})
		}
	}
	details := map[string]any{
		"flash_crash_count": count,
		"drop_threshold":    cfg.FlashCrashDropRatio,
		"retrace_threshold": cfg.FlashCrashRetraceRatio,
		"window_bars":       cfg.FlashCrashWindowBars,
		"samples":           samples,
	}
	if count == 0 {
		res.AddCheck(passedCheck(CheckFlashCrash, "no flash-crash signatures detected", details))
		return nil
	}
	res.AddCheck(NewCheck(CheckFlashCrash, false, cfg.findingSeverity(),
		fmt.Sprintf("%d bars show a flash-crash signature (drop and retrace)", count),
		details))
	return nil
}

// CryptoValidator is the crypto-specific check registry: continuous
// markets keep the volume checks and add the volatility pathology
// detectors.
type CryptoValidator struct {
	runner
}

// NewCryptoValidator creates the crypto validator. The config's asset
// type is forced to crypto.
func NewCryptoValidator(cfg *Config, logger *slog.Logger) *CryptoValidator {
	if cfg == nil {
		cfg = ConfigForAsset(AssetCrypto)
	} else {
		cfg = cfg.Clone()
		cfg.AssetType = AssetCrypto
	}
	v := &CryptoValidator{}
	v.runner = newRunner("crypto_validator", cfg, logger, []registeredCheck{
		{CheckRequiredColumns, checkRequiredColumns},
		{CheckZeroVolume, checkZeroVolume},
		{CheckExtremeVolatility, checkExtremeVolatility},
		{CheckFlashCrash, checkFlashCrash},
	})
	return v
}

// Name implements Validator.
func (v *CryptoValidator) Name() string { return v.name }

// Validate implements Validator.
func (v *CryptoValidator) Validate(ctx context.Context, in *Input) *Result {
	return v.run(ctx, in)
}
