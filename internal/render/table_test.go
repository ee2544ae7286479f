package render

import (
	"bytes"
	"database/sql"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"daybrief/internal/models"
)

func TestFormatDuration(t *testing.T) {
	base := time.Date(2026, 8, 30, 9, 0, 0, 0, time.UTC)
	tests := []struct {
		name string
		end  time.Time
		want string
	}{
		{name: "minutes only", end: base.Add(45 * time.Minute), want: "45m"},
		{name: "exact hour", end: base.Add(time.Hour), want: "1h"},
		{name: "hours and minutes", end: base.Add(90 * time.Minute), want: "1h 30m"},
		{name: "multiple hours", end: base.Add(3 * time.Hour), want: "3h"},
		{name: "zero", end: base, want: "0m"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, formatDuration(base, tc.end))
		})
	}
}

func TestActivitiesEmptyList(t *testing.T) {
	var buf bytes.Buffer
	Activities(&buf, nil, false)
	require.Contains(t, buf.String(), "No activities scheduled for today")
}

func TestActivitiesTable(t *testing.T) {
	start := time.Date(2026, 8, 30, 9, 0, 0, 0, time.UTC)
	activities := []models.Activity{
		{
			EventID:   "e1",
			Title:     "Standup",
			StartTime: start,
			EndTime:   start.Add(15 * time.Minute),
			Attendees: models.AttendeeList{{Email: "ana@example.com"}, {Email: "bo@example.com"}},
			AISummary: sql.NullString{String: "Daily team check-in.", Valid: true},
		},
	}

	var buf bytes.Buffer
	Activities(&buf, activities, false)
	out := buf.String()
	require.Contains(t, out, "Today's Activities (1 total)")
	require.Contains(t, out, "Standup")
	require.Contains(t, out, "15m")
	require.Contains(t, out, "2")
	require.NotContains(t, out, "Daily team check-in.", "summary hidden without verbose")
	require.Contains(t, out, "--verbose")
}

func TestActivitiesVerboseShowsSummaries(t *testing.T) {
	start := time.Date(2026, 8, 30, 9, 0, 0, 0, time.UTC)
	activities := []models.Activity{
		{
			EventID:   "e1",
			Title:     "Standup",
			StartTime: start,
			EndTime:   start.Add(15 * time.Minute),
			AISummary: sql.NullString{String: "Daily team check-in.", Valid: true},
		},
		{
			EventID:   "e2",
			Title:     "Focus block",
			StartTime: start.Add(time.Hour),
			EndTime:   start.Add(2 * time.Hour),
			// No summary computed; no extra row expected.
		},
	}

	var buf bytes.Buffer
	Activities(&buf, activities, true)
	out := buf.String()
	require.Contains(t, out, "Daily team check-in.")
	require.Contains(t, out, "Focus block")
	require.False(t, strings.Contains(out, "--verbose"), "tip only shown in non-verbose mode")
}
