package validation

import (
	"math"
)

// pctChange returns the period-over-period fractional change of a
// series. The first element is NaN, as is any element whose current or
// previous value is NaN or whose previous value is zero.
func pctChange(values []float64) []float64 {
	out := make([]float64, len(values))
	for i := range values {
		if i == 0 {
			out[i] = math.NaN()
			continue
		}
		prev, cur := values[i-1], values[i]
		if math.IsNaN(prev) || math.IsNaN(cur) || prev == 0 {
			out[i] = math.NaN()
			continue
		}
		out[i] = (cur - prev) / prev
	}
	return out
}

// meanStd returns the population mean and standard deviation of the
// non-NaN elements, and how many there were.
func meanStd(values []float64) (mean, std float64, n int) {
	var sum float64
	for _, v := range values {
		if math.IsNaN(v) {
			continue
		}
		sum += v
		n++
	}
	if n == 0 {
		return 0, 0, 0
	}
	mean = sum / float64(n)
	var sq float64
	for _, v := range values {
		if math.IsNaN(v) {
			continue
		}
		d := v - mean
		sq += d * d
	}
	std = math.Sqrt(sq / float64(n))
	return mean, std, n
}

// zScores returns the population z-score of each element. A zero
// standard deviation yields a zero score for every observation rather
// than a division by zero; NaN elements stay NaN.
func zScores(values []float64) []float64 {
	mean, std, n := meanStd(values)
	out := make([]float64, len(values))
	for i, v := range values {
		if math.IsNaN(v) {
			out[i] = math.NaN()
			continue
		}
		if n == 0 || std == 0 {
			out[i] = 0
			continue
		}
		out[i] = (v - mean) / std
	}
	return out
}

// absValues returns the element-wise absolute value, preserving NaN.
func absValues(values []float64) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		if math.IsNaN(v) {
			out[i] = math.NaN()
			continue
		}
		out[i] = math.Abs(v)
	}
	return out
}
