package export

import (
	"fmt"
	"time"

	ics "github.com/arran4/golang-ical"
)

// floatingLayout writes local times without a zone so calendar clients keep the wall clock.
const floatingLayout = "20060102T150405"

// CalendarEvent is one entry of an iCalendar export.
type CalendarEvent struct {
	UID         string
	Summary     string
	Description string
	Start       time.Time
	End         time.Time
}

// ICSExporter renders calendar events as an iCalendar document.
type ICSExporter struct {
	productID string
	now       func() time.Time
}

// NewICSExporter constructs an exporter stamping documents with productID.
func NewICSExporter(productID string) *ICSExporter {
	if productID == "" {
		productID = "-//StudyPlanner//EN"
	}
	return &ICSExporter{productID: productID, now: time.Now}
}

// ContentType is the MIME type of the rendered output.
func (e *ICSExporter) ContentType() string {
	return "text/calendar; charset=utf-8"
}

// Render serialises the events. Start and End are written as floating times.
func (e *ICSExporter) Render(events []CalendarEvent) ([]byte, error) {
	cal := ics.NewCalendar()
	cal.SetProductId(e.productID)
	cal.SetMethod(ics.MethodPublish)

	stamp := e.now().UTC()
	for i, ev := range events {
		if ev.UID == "" {
			return nil, fmt.Errorf("event %d: uid required", i)
		}
		if !ev.End.After(ev.Start) {
			return nil, fmt.Errorf("event %s: end must be after start", ev.UID)
		}
		event := cal.AddEvent(ev.UID)
		event.SetDtStampTime(stamp)
		event.SetProperty(ics.ComponentPropertyDtStart, ev.Start.Format(floatingLayout))
		event.SetProperty(ics.ComponentPropertyDtEnd, ev.End.Format(floatingLayout))
		event.SetSummary(ev.Summary)
		if ev.Description != "" {
			event.SetDescription(ev.Description)
		}
	}
	return []byte(cal.Serialize()), nil
}
