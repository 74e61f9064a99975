package validation

import (
	"context"
	"fmt"
	"log/slog"
)

// CompositeValidator runs an ordered pipeline of validators against the
// same input and merges every result into one aggregate. A validator
// that panics is recorded as a warning naming it, so one broken
// specialized validator cannot abort the generic checks or vice versa.
type CompositeValidator struct {
	name       string
	validators []Validator
	logger     *slog.Logger
}

// NewCompositeValidator builds a composite over the given validators,
// run in order.
func NewCompositeValidator(logger *slog.Logger, validators ...Validator) *CompositeValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &CompositeValidator{
		name:       "composite_validator",
		validators: validators,
		logger:     logger.With("component", "composite_validator"),
	}
}

// Name implements Validator.
func (c *CompositeValidator) Name() string { return c.name }

// Validate runs each validator and merges the results in pipeline order.
func (c *CompositeValidator) Validate(ctx context.Context, in *Input) *Result {
	agg := NewResult()
	agg.SetMetadata("validator", c.name)
	agg.SetMetadata("asset", in.Asset)

	for _, v := range c.validators {
		res := c.validateIsolated(ctx, v, in)
		if res == nil {
			continue
		}
		agg.Merge(res)
	}

	c.logger.Info("composite validation completed",
		"asset", in.Asset,
		"validators", len(c.validators),
		"passed", agg.Passed(),
		"checks", len(agg.Checks()))
	return agg
}

// validateIsolated runs one validator, converting a panic into a
// warning on the aggregate instead of unwinding past the composite.
func (c *CompositeValidator) validateIsolated(ctx context.Context, v Validator, in *Input) (res *Result) {
	defer func() {
		if rec := recover(); rec != nil {
			c.logger.Warn("validator panicked", "validator", v.Name(), "panic", rec)
			res = NewResult()
			res.AddWarning(fmt.Sprintf("Validator '%s' failed with error: %v", v.Name(), rec))
		}
	}()
	return v.Validate(ctx, in)
}

// NewValidatorForAsset wires the standard pipeline for an asset class:
// the generic battery plus the asset-specialized registry, merged by a
// composite. An unspecified asset type returns just the generic
// validator.
func NewValidatorForAsset(asset AssetType, cfg *Config, logger *slog.Logger) Validator {
	if cfg == nil {
		cfg = ConfigForAsset(asset)
	} else {
		cfg = cfg.Clone()
		cfg.AssetType = asset
	}
	// The specialist owns its asset's checks; turn them off in the
	// generic pass so the merged report carries each finding once.
	genericCfg := cfg.Clone()
	switch asset {
	case AssetEquity:
		genericCfg.Checks.PotentialSplits = false
		return NewCompositeValidator(logger,
			NewDataValidator(genericCfg, logger), NewEquityValidator(cfg, logger))
	case AssetForex:
		genericCfg.Checks.SundayBars = false
		genericCfg.Checks.WeekendGaps = false
		genericCfg.Checks.DateContinuity = false
		return NewCompositeValidator(logger,
			NewDataValidator(genericCfg, logger), NewForexValidator(cfg, logger))
	case AssetCrypto:
		genericCfg.Checks.ZeroVolume = false
		return NewCompositeValidator(logger,
			NewDataValidator(genericCfg, logger), NewCryptoValidator(cfg, logger))
	}
	return NewDataValidator(cfg, logger)
}
