package frame

import (
	"strings"
)

// Canonical OHLCV column names.
const (
	ColOpen   = "open"
	ColHigh   = "high"
	ColLow    = "low"
	ColClose  = "close"
	ColVolume = "volume"
)

// columnAliases maps each canonical name to the source spellings it is
// matched against, case-insensitively. Built once at package init and
// never mutated afterwards.
var columnAliases = map[string][]string{
	ColOpen:   {"open", "o"},
	ColHigh:   {"high", "h"},
	ColLow:    {"low", "l"},
	ColClose:  {"close", "c", "adj_close", "adj close"},
	ColVolume: {"volume", "v", "vol"},
}

var canonicalOrder = []string{ColOpen, ColHigh, ColLow, ColClose, ColVolume}

// Mapping records the actual source column name resolved for each
// canonical OHLCV name. An empty entry means the column was not found.
// A Mapping is resolved once per validation call and passed explicitly
// to every check.
type Mapping struct {
	Open   string
	High   string
	Low    string
	Close  string
	Volume string
}

// ResolveMapping matches the frame's columns against the alias lists
// and returns the resolved mapping.
func ResolveMapping(f *Frame) Mapping {
	lower := make(map[string]string, len(f.names))
	for _, name := range f.names {
		key := strings.ToLower(strings.TrimSpace(name))
		if _, taken := lower[key]; !taken {
			lower[key] = name
		}
	}

	var m Mapping
	for _, canonical := range canonicalOrder {
		for _, alias := range columnAliases[canonical] {
			if actual, ok := lower[alias]; ok {
				m.set(canonical, actual)
				break
			}
		}
	}
	return m
}

func (m *Mapping) set(canonical, actual string) {
	switch canonical {
	case ColOpen:
		m.Open = actual
	case ColHigh:
		m.High = actual
	case ColLow:
		m.Low = actual
	case ColClose:
		m.Close = actual
	case ColVolume:
		m.Volume = actual
	}
}

// Get returns the resolved source name for a canonical name.
func (m Mapping) Get(canonical string) string {
	switch canonical {
	case ColOpen:
		return m.Open
	case ColHigh:
		return m.High
	case ColLow:
		return m.Low
	case ColClose:
		return m.Close
	case ColVolume:
		return m.Volume
	}
	return ""
}

// MissingColumns returns the canonical names that could not be resolved,
// in canonical order.
func (m Mapping) MissingColumns() []string {
	var missing []string
	for _, canonical := range canonicalOrder {
		if m.Get(canonical) == "" {
			missing = append(missing, canonical)
		}
	}
	return missing
}

// HasAllRequired reports whether all five canonical columns resolved.
func (m Mapping) HasAllRequired() bool {
	return len(m.MissingColumns()) == 0
}

// Resolved returns the canonical→actual pairs that resolved, in
// canonical order. Used for result metadata.
func (m Mapping) Resolved() map[string]string {
	out := make(map[string]string, 5)
	for _, canonical := range canonicalOrder {
		if actual := m.Get(canonical); actual != "" {
			out[canonical] = actual
		}
	}
	return out
}
