package planner

import (
	"math"
	"time"
)

// DefaultAnchorHour and DefaultAnchorMinute place the first block of a day at 18:00.
const (
	DefaultAnchorHour   = 18
	DefaultAnchorMinute = 0
)

// Event is an assignment placed on the clock.
type Event struct {
	Subject string    `json:"subject"`
	Start   time.Time `json:"start"`
	End     time.Time `json:"end"`
	Hours   float64   `json:"hours"`
}

// ParseAnchor reads an HH:MM time of day.
func ParseAnchor(raw string) (int, int, error) {
	t, err := time.Parse("15:04", raw)
	if err != nil {
		return 0, 0, invalid("anchor", "expected HH:MM, got %q", raw)
	}
	return t.Hour(), t.Minute(), nil
}

// BuildEvents lays each date's assignments back to back starting at the anchor time.
// Durations are hours rounded to whole minutes; a positive block lasts at least one minute.
// Event times are floating, expressed in UTC.
func BuildEvents(assignments []Assignment, anchorHour, anchorMinute int) ([]Event, error) {
	if anchorHour < 0 || anchorHour > 23 || anchorMinute < 0 || anchorMinute > 59 {
		return nil, invalid("anchor", "%02d:%02d is not a time of day", anchorHour, anchorMinute)
	}
	events := make([]Event, 0, len(assignments))
	cursor := make(map[time.Time]time.Time)
	for _, a := range assignments {
		day := Day(a.Date)
		start, ok := cursor[day]
		if !ok {
			start = day.Add(time.Duration(anchorHour)*time.Hour + time.Duration(anchorMinute)*time.Minute)
		}
		minutes := int(math.Round(a.Hours * 60))
		if minutes < 1 && a.Hours > 0 {
			minutes = 1
		}
		end := start.Add(time.Duration(minutes) * time.Minute)
		events = append(events, Event{Subject: a.Subject, Start: start, End: end, Hours: a.Hours})
		cursor[day] = end
	}
	return events, nil
}
