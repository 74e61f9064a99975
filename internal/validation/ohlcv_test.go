package validation

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/johnayoung/go-ohlcv-validator/internal/frame"
)

func TestDataValidatorCleanSeriesPasses(t *testing.T) {
	fr := cleanSeries(100).frame(t)
	v := NewDataValidator(nil, testLogger())

	res := v.Validate(context.Background(), &Input{Frame: fr, Asset: "TEST"})

	assert.True(t, res.Passed(), "clean series should pass: %s", res.Summary())
	assert.Empty(t, res.Errors())
	assert.Empty(t, res.FailedChecks())

	for _, name := range []string{
		CheckRequiredColumns,
		CheckNoNulls,
		CheckOHLCConsistency,
		CheckNoNegativeValues,
		CheckNoFutureDates,
		CheckNoDuplicateDates,
		CheckSortedIndex,
		CheckZeroVolume,
		CheckPriceJumps,
		CheckStaleData,
		CheckDataSufficiency,
		CheckPriceOutliers,
		CheckVolumeSpikes,
	} {
		c, ok := res.CheckByName(name)
		require.True(t, ok, "expected check %s in result", name)
		assert.True(t, c.Passed, "check %s should pass", name)
	}

	assert.Equal(t, 100, res.Metadata()["row_count"])
	assert.NotEmpty(t, res.Metadata()["content_hash"])
	assert.Equal(t, "ohlcv_validator", res.Metadata()["validator"])
}

func TestOHLCConsistencyViolation(t *testing.T) {
	s := cleanSeries(50)
	// One bar where the high sits below the low.
	s.high[10] = 90
	s.low[10] = 95
	s.open[10] = 92
	s.close_[10] = 93
	fr := s.frame(t)

	res := NewDataValidator(nil, testLogger()).Validate(context.Background(), &Input{Frame: fr})

	assert.False(t, res.Passed())
	c, ok := res.CheckByName(CheckOHLCConsistency)
	require.True(t, ok)
	assert.False(t, c.Passed)
	assert.Equal(t, SeverityError, c.Severity)
	assert.GreaterOrEqual(t, c.Details["total_violations"].(int), 1)
	byType := c.Details["violations_by_type"].(map[string]int)
	assert.Equal(t, 1, byType["high_lt_low"])
}

func TestMissingVolumeBlocksRemainingChecks(t *testing.T) {
	s := cleanSeries(50)
	fr := frame.New(s.index)
	require.NoError(t, fr.SetFloatColumn("open", s.open))
	require.NoError(t, fr.SetFloatColumn("high", s.high))
	require.NoError(t, fr.SetFloatColumn("low", s.low))
	require.NoError(t, fr.SetFloatColumn("close", s.close_))

	res := NewDataValidator(nil, testLogger()).Validate(context.Background(), &Input{Frame: fr})

	assert.False(t, res.Passed())
	require.Len(t, res.Checks(), 1, "required_columns must block every later check")
	c := res.Checks()[0]
	assert.Equal(t, CheckRequiredColumns, c.Name)
	assert.Equal(t, SeverityError, c.Severity)
	assert.Equal(t, []string{"volume"}, c.Details["missing_columns"])
}

func TestDuplicateDateCountsRowsBeyondFirst(t *testing.T) {
	s := cleanSeries(50)
	s.index[20] = s.index[19]
	fr := s.frame(t)

	res := NewDataValidator(nil, testLogger()).Validate(context.Background(), &Input{Frame: fr})

	c, ok := res.CheckByName(CheckNoDuplicateDates)
	require.True(t, ok)
	assert.False(t, c.Passed)
	assert.Equal(t, 1, c.Details["duplicate_count"])

	// Equal adjacent timestamps do not break ascending order.
	sorted, ok := res.CheckByName(CheckSortedIndex)
	require.True(t, ok)
	assert.True(t, sorted.Passed)
}

func TestSortedIndexDistinguishesDescending(t *testing.T) {
	s := cleanSeries(30)
	for i, j := 0, len(s.index)-1; i < j; i, j = i+1, j-1 {
		s.index[i], s.index[j] = s.index[j], s.index[i]
	}
	fr := s.frame(t)

	res := NewDataValidator(nil, testLogger()).Validate(context.Background(), &Input{Frame: fr})

	c, ok := res.CheckByName(CheckSortedIndex)
	require.True(t, ok)
	assert.False(t, c.Passed)
	assert.Equal(t, "descending", c.Details["order"])

	// A single swap is unsorted, not descending.
	s2 := cleanSeries(30)
	s2.index[5], s2.index[6] = s2.index[6], s2.index[5]
	res2 := NewDataValidator(nil, testLogger()).Validate(context.Background(), &Input{Frame: s2.frame(t)})
	c2, ok := res2.CheckByName(CheckSortedIndex)
	require.True(t, ok)
	assert.Equal(t, "unsorted", c2.Details["order"])
}

func TestFutureDatesFlagged(t *testing.T) {
	s := cleanSeries(40)
	s.index[39] = time.Now().UTC().AddDate(0, 0, 2)
	fr := s.frame(t)

	res := NewDataValidator(nil, testLogger()).Validate(context.Background(), &Input{Frame: fr})

	c, ok := res.CheckByName(CheckNoFutureDates)
	require.True(t, ok)
	assert.False(t, c.Passed)
	assert.Equal(t, SeverityError, c.Severity)
	assert.Equal(t, 1, c.Details["future_count"])
	assert.False(t, res.Passed())
}

func TestNullValuesReported(t *testing.T) {
	s := cleanSeries(40)
	fr := s.frame(t)
	closes, _ := fr.Column("close")
	nulled := make([]decimal.NullDecimal, len(closes))
	copy(nulled, closes)
	nulled[3] = decimal.NullDecimal{}
	nulled[7] = decimal.NullDecimal{}
	require.NoError(t, fr.SetColumn("close", nulled))

	res := NewDataValidator(nil, testLogger()).Validate(context.Background(), &Input{Frame: fr})

	c, ok := res.CheckByName(CheckNoNulls)
	require.True(t, ok)
	assert.False(t, c.Passed)
	assert.Equal(t, SeverityError, c.Severity)
	assert.Equal(t, 2, c.Details["total_nulls"])
	assert.Empty(t, c.Details["all_null_columns"])
}

func TestEntirelyNullColumnReportedDistinctly(t *testing.T) {
	s := cleanSeries(30)
	fr := s.frame(t)
	require.NoError(t, fr.SetColumn("volume", make([]decimal.NullDecimal, 30)))

	res := NewDataValidator(nil, testLogger()).Validate(context.Background(), &Input{Frame: fr})

	c, ok := res.CheckByName(CheckNoNulls)
	require.True(t, ok)
	assert.False(t, c.Passed)
	assert.Equal(t, []string{"volume"}, c.Details["all_null_columns"])
	assert.Contains(t, c.Message, "entirely null")
}

func TestNegativeValuesFlagged(t *testing.T) {
	s := cleanSeries(40)
	s.volume[12] = -500
	fr := s.frame(t)

	res := NewDataValidator(nil, testLogger()).Validate(context.Background(), &Input{Frame: fr})

	c, ok := res.CheckByName(CheckNoNegativeValues)
	require.True(t, ok)
	assert.False(t, c.Passed)
	assert.Equal(t, 1, c.Details["total_negative"])
}

func TestZeroVolatilitySeriesDoesNotPanic(t *testing.T) {
	// Identical OHLC on every bar: every pct change and every standard
	// deviation is zero, which must not divide by zero anywhere.
	s := cleanSeries(60)
	for i := range s.high {
		s.high[i] = 100
		s.low[i] = 100
		s.volume[i] = 1000
	}
	fr := s.frame(t)

	res := NewDataValidator(nil, testLogger()).Validate(context.Background(), &Input{Frame: fr})

	assert.True(t, res.Passed(), res.Summary())
	outliers, ok := res.CheckByName(CheckPriceOutliers)
	require.True(t, ok)
	assert.True(t, outliers.Passed)
	assert.Equal(t, 0.0, outliers.Details["max_z_score"])
	spikes, ok := res.CheckByName(CheckVolumeSpikes)
	require.True(t, ok)
	assert.True(t, spikes.Passed)
}

func TestValidateIsIdempotent(t *testing.T) {
	s := cleanSeries(50)
	s.close_[25] = 140 // one jump so both passing and failing checks repeat
	fr := s.frame(t)
	v := NewDataValidator(nil, testLogger())

	first := v.Validate(context.Background(), &Input{Frame: fr, Asset: "TEST"})
	second := v.Validate(context.Background(), &Input{Frame: fr, Asset: "TEST"})

	require.Equal(t, len(first.Checks()), len(second.Checks()))
	for i := range first.Checks() {
		a, b := first.Checks()[i], second.Checks()[i]
		assert.Equal(t, a.Name, b.Name)
		assert.Equal(t, a.Passed, b.Passed)
		assert.Equal(t, a.Severity, b.Severity)
		assert.Equal(t, a.Message, b.Message)
	}
	assert.Equal(t, first.Warnings(), second.Warnings())
	assert.Equal(t, first.Errors(), second.Errors())
	assert.Equal(t, first.Passed(), second.Passed())
	assert.Equal(t, first.Metadata()["content_hash"], second.Metadata()["content_hash"])
}

func TestPriceJumpDetection(t *testing.T) {
	s := cleanSeries(50)
	s.close_[25] = 130 // +30% close-to-close
	s.high[25] = 131
	for i := 26; i < 50; i++ {
		s.close_[i] = 130
		s.open[i] = 130
		s.high[i] = 131
		s.low[i] = 129
	}
	fr := s.frame(t)

	res := NewDataValidator(nil, testLogger()).Validate(context.Background(), &Input{Frame: fr})

	c, ok := res.CheckByName(CheckPriceJumps)
	require.True(t, ok)
	assert.False(t, c.Passed)
	assert.Equal(t, SeverityWarning, c.Severity)
	assert.Equal(t, 1, c.Details["jump_count"])
	// A jump alone is a warning, not a failure.
	assert.True(t, res.Passed())
}

func TestZeroVolumeRatioSeverity(t *testing.T) {
	s := cleanSeries(50)
	for i := 0; i < 10; i++ { // 20% zero-volume bars
		s.volume[i] = 0
	}
	fr := s.frame(t)

	res := NewDataValidator(nil, testLogger()).Validate(context.Background(), &Input{Frame: fr})
	c, ok := res.CheckByName(CheckZeroVolume)
	require.True(t, ok)
	assert.False(t, c.Passed)
	assert.Equal(t, SeverityWarning, c.Severity)
	assert.True(t, res.Passed(), "zero-volume excess is a warning outside strict mode")

	strict := StrictConfig()
	strictRes := NewDataValidator(strict, testLogger()).Validate(context.Background(), &Input{Frame: fr})
	sc, ok := strictRes.CheckByName(CheckZeroVolume)
	require.True(t, ok)
	assert.Equal(t, SeverityError, sc.Severity)
	assert.False(t, strictRes.Passed(), "strict mode escalates the finding to an error")
}

func TestStaleDataAlwaysWarning(t *testing.T) {
	s := cleanSeries(60)
	for i := range s.index {
		s.index[i] = s.index[i].AddDate(0, 0, -120)
	}
	fr := s.frame(t)

	res := NewDataValidator(StrictConfig(), testLogger()).Validate(context.Background(), &Input{Frame: fr})

	c, ok := res.CheckByName(CheckStaleData)
	require.True(t, ok)
	assert.False(t, c.Passed)
	assert.Equal(t, SeverityWarning, c.Severity, "staleness stays a warning even in strict mode")
}

func TestDataSufficiencyByTimeframeClass(t *testing.T) {
	s := cleanSeries(20)
	fr := s.frame(t)

	res := NewDataValidator(nil, testLogger()).Validate(context.Background(), &Input{Frame: fr})
	c, ok := res.CheckByName(CheckDataSufficiency)
	require.True(t, ok)
	assert.False(t, c.Passed)
	assert.Equal(t, "daily", c.Details["timeframe_class"])
	assert.Equal(t, 30, c.Details["min_rows"])

	cfg := DefaultConfig()
	cfg.Timeframe = "5m"
	intradayRes := NewDataValidator(cfg, testLogger()).Validate(context.Background(), &Input{Frame: fr})
	ic, ok := intradayRes.CheckByName(CheckDataSufficiency)
	require.True(t, ok)
	assert.Equal(t, "intraday", ic.Details["timeframe_class"])
	assert.Equal(t, 100, ic.Details["min_rows"])
}

func TestDisabledChecksAreSkipped(t *testing.T) {
	fr := cleanSeries(50).frame(t)

	res := NewDataValidator(MinimalConfig(), testLogger()).Validate(context.Background(), &Input{Frame: fr})

	_, hasZeroVolume := res.CheckByName(CheckZeroVolume)
	assert.False(t, hasZeroVolume)
	_, hasOutliers := res.CheckByName(CheckPriceOutliers)
	assert.False(t, hasOutliers)
	_, hasStructural := res.CheckByName(CheckOHLCConsistency)
	assert.True(t, hasStructural)
}

func TestPriceOutliersStrictModeSeverity(t *testing.T) {
	s := cleanSeries(80)
	s.close_[40] = 119 // +19%: below the jump threshold, far beyond sigma
	s.high[40] = 120
	for i := 41; i < 80; i++ {
		s.close_[i] = 119
		s.open[i] = 119
		s.high[i] = 120
		s.low[i] = 118
	}
	fr := s.frame(t)

	res := NewDataValidator(nil, testLogger()).Validate(context.Background(), &Input{Frame: fr})
	c, ok := res.CheckByName(CheckPriceOutliers)
	require.True(t, ok)
	assert.False(t, c.Passed)
	assert.Equal(t, SeverityWarning, c.Severity)
	assert.Contains(t, c.Message, "within tolerance")

	strictRes := NewDataValidator(StrictConfig(), testLogger()).Validate(context.Background(), &Input{Frame: fr})
	sc, ok := strictRes.CheckByName(CheckPriceOutliers)
	require.True(t, ok)
	assert.Equal(t, SeverityError, sc.Severity)
}
