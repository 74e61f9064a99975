package validation

import (
	"encoding/json"
	"fmt"
	"math"
	"time"
)

// reportDocument is the wire form of a Result. The document is strict
// JSON: non-finite floats are sanitized to 0.0 before encoding.
type reportDocument struct {
	Passed   bool           `json:"passed"`
	Checks   []Check        `json:"checks"`
	Warnings []string       `json:"warnings"`
	Errors   []string       `json:"errors"`
	Info     []string       `json:"info"`
	Metadata map[string]any `json:"metadata"`
}

// MarshalReport serializes a result to the JSON report document. All
// NaN and Infinity values in check details and metadata are replaced
// with 0.0 so the output always loads as strict JSON.
func MarshalReport(r *Result) ([]byte, error) {
	checks := make([]Check, len(r.Checks()))
	for i, c := range r.Checks() {
		c.Details = sanitizeMap(c.Details)
		checks[i] = c
	}
	doc := reportDocument{
		Passed:   r.Passed(),
		Checks:   checks,
		Warnings: emptyIfNil(r.Warnings()),
		Errors:   emptyIfNil(r.Errors()),
		Info:     emptyIfNil(r.Info()),
		Metadata: sanitizeMap(r.Metadata()),
	}
	return json.MarshalIndent(doc, "", "  ")
}

// UnmarshalReport reconstructs a Result from a JSON report document
// produced by MarshalReport. The reconstructed result derives the same
// Passed value as the original.
func UnmarshalReport(data []byte) (*Result, error) {
	var doc reportDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse validation report: %w", err)
	}
	r := NewResult()
	for _, c := range doc.Checks {
		r.AddCheck(c)
	}
	for _, w := range doc.Warnings {
		r.AddWarning(w)
	}
	for _, e := range doc.Errors {
		r.AddError(e)
	}
	for _, i := range doc.Info {
		r.AddInfo(i)
	}
	for k, v := range doc.Metadata {
		r.SetMetadata(k, v)
	}
	return r, nil
}

func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// sanitizeMap returns a copy of m with every non-finite float replaced
// by 0.0, recursing into nested maps and slices.
func sanitizeMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = sanitizeValue(v)
	}
	return out
}

func sanitizeValue(v any) any {
	switch value := v.(type) {
	case float64:
		if math.IsNaN(value) || math.IsInf(value, 0) {
			return 0.0
		}
		return value
	case float32:
		f := float64(value)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return 0.0
		}
		return f
	case map[string]any:
		return sanitizeMap(value)
	case []any:
		out := make([]any, len(value))
		for i, item := range value {
			out[i] = sanitizeValue(item)
		}
		return out
	case []float64:
		out := make([]float64, len(value))
		for i, f := range value {
			if math.IsNaN(f) || math.IsInf(f, 0) {
				f = 0.0
			}
			out[i] = f
		}
		return out
	case []map[string]any:
		out := make([]map[string]any, len(value))
		for i, item := range value {
			out[i] = sanitizeMap(item)
		}
		return out
	case time.Time:
		return value
	default:
		return v
	}
}
