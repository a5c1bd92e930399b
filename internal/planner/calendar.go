package planner

import (
	"math"
	"time"
)

// BuildCalendar returns one DayCapacity per date in [start, end], both inclusive.
// Excluded dates get zero hours, Saturdays and Sundays get weekendHours and every other
// day weekdayHours. Negative hour constants are treated as zero.
func BuildCalendar(start, end time.Time, weekdayHours, weekendHours float64, excluded []time.Time) ([]DayCapacity, error) {
	start, end = Day(start), Day(end)
	if end.Before(start) {
		return nil, ErrInvalidWindow
	}
	weekdayHours = math.Max(weekdayHours, 0)
	weekendHours = math.Max(weekendHours, 0)

	skip := make(map[time.Time]struct{}, len(excluded))
	for _, d := range excluded {
		skip[Day(d)] = struct{}{}
	}

	days := make([]DayCapacity, 0, WindowDays(start, end))
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		hours := weekdayHours
		if _, ok := skip[d]; ok {
			hours = 0
		} else if IsWeekend(d) {
			hours = weekendHours
		}
		days = append(days, DayCapacity{Date: d, Hours: hours})
	}
	return days, nil
}

// IsWeekend reports whether t falls on a Saturday or Sunday.
func IsWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// WindowDays counts the dates in [start, end]; zero when end precedes start.
func WindowDays(start, end time.Time) int {
	start, end = Day(start), Day(end)
	if end.Before(start) {
		return 0
	}
	return int(end.Sub(start).Hours()/24) + 1
}

// DaysLeft is the number of days from today until the deadline, never negative.
func DaysLeft(today, deadline time.Time) int {
	n := WindowDays(today, deadline) - 1
	if n < 0 {
		return 0
	}
	return n
}

// TotalCapacity sums the hours of every day in the calendar.
func TotalCapacity(days []DayCapacity) float64 {
	total := 0.0
	for _, d := range days {
		total += d.Hours
	}
	return RoundHours(total)
}
