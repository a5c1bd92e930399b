package planner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildEventsSequentialFromAnchor(t *testing.T) {
	events, err := BuildEvents([]Assignment{
		{Date: date(t, "2024-06-10"), Subject: "Math", Hours: 1},
		{Date: date(t, "2024-06-10"), Subject: "Art", Hours: 1.5},
		{Date: date(t, "2024-06-11"), Subject: "Math", Hours: 0.25},
	}, DefaultAnchorHour, DefaultAnchorMinute)
	require.NoError(t, err)
	require.Len(t, events, 3)

	assert.Equal(t, "2024-06-10 18:00", events[0].Start.Format("2006-01-02 15:04"))
	assert.Equal(t, "2024-06-10 19:00", events[0].End.Format("2006-01-02 15:04"))
	assert.Equal(t, "2024-06-10 19:00", events[1].Start.Format("2006-01-02 15:04"))
	assert.Equal(t, "2024-06-10 20:30", events[1].End.Format("2006-01-02 15:04"))
	assert.Equal(t, "2024-06-11 18:00", events[2].Start.Format("2006-01-02 15:04"))
	assert.Equal(t, "2024-06-11 18:15", events[2].End.Format("2006-01-02 15:04"))
}

func TestBuildEventsKeepsSubMinuteBlocks(t *testing.T) {
	events, err := BuildEvents([]Assignment{
		{Date: date(t, "2024-06-03"), Subject: "Math", Hours: 1},
		{Date: date(t, "2024-06-03"), Subject: "Math", Hours: 0.005},
		{Date: date(t, "2024-06-03"), Subject: "Art", Hours: 0.5},
	}, DefaultAnchorHour, DefaultAnchorMinute)
	require.NoError(t, err)
	require.Len(t, events, 3)

	assert.True(t, events[1].End.After(events[1].Start))
	assert.Equal(t, "19:00", events[1].Start.Format("15:04"))
	assert.Equal(t, "19:01", events[1].End.Format("15:04"))
	assert.Equal(t, "19:01", events[2].Start.Format("15:04"))
}

func TestBuildEventsRejectsBadAnchor(t *testing.T) {
	_, err := BuildEvents(nil, 24, 0)
	assert.Error(t, err)
}

func TestParseAnchor(t *testing.T) {
	h, m, err := ParseAnchor("07:30")
	require.NoError(t, err)
	assert.Equal(t, 7, h)
	assert.Equal(t, 30, m)

	_, _, err = ParseAnchor("7pm")
	assert.Error(t, err)
}
