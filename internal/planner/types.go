// Package planner distributes a study-hour budget across subjects and calendar days.
//
// The package is pure: every function is deterministic in its inputs and keeps no
// state between calls, so callers may run plans concurrently for different inputs.
package planner

import (
	"math"
	"time"
)

// DateLayout is the wire format for plan dates.
const DateLayout = "2006-01-02"

const (
	// DefaultStepHours is the rounding granularity for budgets and blocks.
	DefaultStepHours = 0.5
	// DefaultBlockHours is the preferred length of one study block.
	DefaultBlockHours = 1.0

	epsilon   = 1e-9
	precision = 1e6
)

// Subject is one unit of study material.
type Subject struct {
	Name       string  `json:"name"`
	Difficulty int     `json:"difficulty"`
	Confidence int     `json:"confidence"`
	Weight     float64 `json:"weight"`
	Budget     float64 `json:"budget"`
}

// SubjectBudget is the allocator's view of a subject: a name and the hours to place.
type SubjectBudget struct {
	Name  string  `json:"name"`
	Hours float64 `json:"hours"`
}

// DayCapacity is the number of study hours available on a date.
type DayCapacity struct {
	Date  time.Time `json:"date"`
	Hours float64   `json:"hours"`
}

// Assignment is one allocated block.
type Assignment struct {
	Date    time.Time `json:"date"`
	Subject string    `json:"subject"`
	Hours   float64   `json:"hours"`
}

// DaySummary compares what a day could hold with what it received.
type DaySummary struct {
	Date     time.Time `json:"date"`
	Capacity float64   `json:"capacity"`
	Assigned float64   `json:"assigned"`
}

// Unused returns the capacity left over on the day.
func (d DaySummary) Unused() float64 {
	return RoundHours(math.Max(d.Capacity-d.Assigned, 0))
}

// Result is the allocator output.
type Result struct {
	Assignments []Assignment       `json:"assignments"`
	Days        []DaySummary       `json:"days"`
	Remaining   map[string]float64 `json:"remaining"`
	Requested   float64            `json:"requested"`
	Assigned    float64            `json:"assigned"`
}

// Shortfall is the requested hours that found no capacity.
func (r Result) Shortfall() float64 {
	return RoundHours(math.Max(r.Requested-r.Assigned, 0))
}

// Insufficient reports whether the calendar could not absorb every budget.
func (r Result) Insufficient() bool {
	return r.Shortfall() > epsilon
}

// Day truncates t to its civil date at midnight UTC.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD string into a civil date.
func ParseDate(raw string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, raw, time.UTC)
	if err != nil {
		return time.Time{}, err
	}
	return t, nil
}

// FormatDate renders a civil date as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// RoundHours trims floating point noise from an hour value.
func RoundHours(v float64) float64 {
	return math.Round(v*precision) / precision
}
