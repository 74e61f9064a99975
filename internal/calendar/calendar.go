// Package calendar provides trading-session providers for continuity
// checks. Real exchange calendars are resolved by the caller; this
// package ships the two schedules the validators need out of the box
// (Monday–Friday and continuous) plus a read-only registry built at
// startup.
package calendar

import (
	"sort"
	"time"
)

// Calendar exposes the expected trading sessions in a date range.
// Implementations must be safe for concurrent use.
type Calendar interface {
	// Name returns the calendar identifier, e.g. "weekday" or "continuous".
	Name() string

	// SessionsInRange returns the session dates in [start, end],
	// normalized to midnight UTC, in ascending order.
	SessionsInRange(start, end time.Time) []time.Time
}

// Weekday is a Monday-through-Friday session calendar. It does not model
// exchange holidays; holiday-aware calendars are supplied by the caller.
type Weekday struct{}

func (Weekday) Name() string { return "weekday" }

func (Weekday) SessionsInRange(start, end time.Time) []time.Time {
	return daysInRange(start, end, func(d time.Time) bool {
		wd := d.Weekday()
		return wd != time.Saturday && wd != time.Sunday
	})
}

// Continuous is a 24/7 session calendar where every day trades, as used
// for crypto and continuous forex feeds.
type Continuous struct{}

func (Continuous) Name() string { return "continuous" }

func (Continuous) SessionsInRange(start, end time.Time) []time.Time {
	return daysInRange(start, end, func(time.Time) bool { return true })
}

func daysInRange(start, end time.Time, include func(time.Time) bool) []time.Time {
	var sessions []time.Time
	day := Normalize(start)
	last := Normalize(end)
	for !day.After(last) {
		if include(day) {
			sessions = append(sessions, day)
		}
		day = day.AddDate(0, 0, 1)
	}
	return sessions
}

// Normalize truncates a timestamp to midnight UTC.
func Normalize(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// Registry is a read-only name→calendar lookup constructed at startup.
type Registry struct {
	calendars map[string]Calendar
}

// NewRegistry builds a registry from the given calendars. The registry
// is immutable after construction.
func NewRegistry(calendars ...Calendar) *Registry {
	m := make(map[string]Calendar, len(calendars))
	for _, c := range calendars {
		m[c.Name()] = c
	}
	return &Registry{calendars: m}
}

// DefaultRegistry returns a registry with the built-in calendars
// registered under their names plus the common aliases.
func DefaultRegistry() *Registry {
	r := NewRegistry(Weekday{}, Continuous{})
	r.calendars["NYSE"] = Weekday{}
	r.calendars["24/7"] = Continuous{}
	r.calendars["forex"] = Continuous{}
	return r
}

// Lookup returns the named calendar, or false when unknown.
func (r *Registry) Lookup(name string) (Calendar, bool) {
	c, ok := r.calendars[name]
	return c, ok
}

// Names returns the registered calendar names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.calendars))
	for name := range r.calendars {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
