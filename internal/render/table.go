// Package render draws activities as a terminal table.
package render

import (
	"fmt"
	"io"
	"time"

	"github.com/olekukonko/tablewriter"

	"daybrief/internal/models"
)

// Activities writes today's activities as a table. With verbose set,
// each activity that has a summary gets an extra row beneath it.
func Activities(w io.Writer, activities []models.Activity, verbose bool) {
	if len(activities) == 0 {
		fmt.Fprintln(w, "No activities scheduled for today. Enjoy your free time!")
		return
	}

	fmt.Fprintf(w, "Today's Activities (%d total)\n", len(activities))

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Time", "Title", "Duration", "Attendees"})
	table.SetAutoWrapText(false)
	table.SetColumnAlignment([]int{
		tablewriter.ALIGN_LEFT,
		tablewriter.ALIGN_LEFT,
		tablewriter.ALIGN_RIGHT,
		tablewriter.ALIGN_RIGHT,
	})

	for _, activity := range activities {
		table.Append([]string{
			formatClock(activity.StartTime),
			activity.Title,
			formatDuration(activity.StartTime, activity.EndTime),
			fmt.Sprintf("%d", len(activity.Attendees)),
		})
		if verbose && activity.AISummary.Valid {
			table.Append([]string{"", activity.AISummary.String, "", ""})
		}
	}
	table.Render()

	if !verbose {
		fmt.Fprintln(w, "Tip: use --verbose to see AI-generated summaries")
	}
}

// formatClock renders a stored UTC instant in the local timezone.
func formatClock(t time.Time) string {
	return t.UTC().Local().Format("03:04 PM")
}

func formatDuration(start, end time.Time) string {
	minutes := int(end.Sub(start).Minutes())
	if minutes < 60 {
		return fmt.Sprintf("%dm", minutes)
	}
	hours := minutes / 60
	if rest := minutes % 60; rest > 0 {
		return fmt.Sprintf("%dh %dm", hours, rest)
	}
	return fmt.Sprintf("%dh", hours)
}
