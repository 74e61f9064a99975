package validation

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/johnayoung/go-ohlcv-validator/internal/frame"
)

// testLogger discards output so tests stay quiet.
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// dailyIndex returns n consecutive daily timestamps ending yesterday, so
// the series is neither stale nor future-dated.
func dailyIndex(n int) []time.Time {
	end := time.Now().UTC().Truncate(24 * time.Hour).AddDate(0, 0, -1)
	index := make([]time.Time, n)
	for i := range index {
		index[i] = end.AddDate(0, 0, i-n+1)
	}
	return index
}

// newOHLCVFrame builds a frame with the five canonical columns.
func newOHLCVFrame(t *testing.T, index []time.Time, open, high, low, closes, volume []float64) *frame.Frame {
	t.Helper()
	fr := frame.New(index)
	require.NoError(t, fr.SetFloatColumn("open", open))
	require.NoError(t, fr.SetFloatColumn("high", high))
	require.NoError(t, fr.SetFloatColumn("low", low))
	require.NoError(t, fr.SetFloatColumn("close", closes))
	require.NoError(t, fr.SetFloatColumn("volume", volume))
	return fr
}

// barSeries holds mutable per-column values for building test frames.
type barSeries struct {
	index  []time.Time
	open   []float64
	high   []float64
	low    []float64
	close_ []float64
	volume []float64
}

// cleanSeries returns n flat, internally consistent bars: close 100 on
// every bar with a mildly varying volume.
func cleanSeries(n int) *barSeries {
	s := &barSeries{
		index:  dailyIndex(n),
		open:   make([]float64, n),
		high:   make([]float64, n),
		low:    make([]float64, n),
		close_: make([]float64, n),
		volume: make([]float64, n),
	}
	for i := 0; i < n; i++ {
		s.open[i] = 100
		s.high[i] = 101
		s.low[i] = 99.5
		s.close_[i] = 100
		s.volume[i] = 1000 + float64(i)
	}
	return s
}

func (s *barSeries) frame(t *testing.T) *frame.Frame {
	t.Helper()
	return newOHLCVFrame(t, s.index, s.open, s.high, s.low, s.close_, s.volume)
}
