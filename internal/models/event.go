package models

import "time"

// Event represents a calendar event as fetched from the provider.
// This is an internal representation, independent of any specific calendar provider.
type Event struct {
	ID          string     // Stable identifier assigned by the source calendar
	Title       string     // Summary or title of the event
	Description string     // Detailed description of the event, may be empty
	StartTime   time.Time  // Start time of the event (UTC)
	EndTime     time.Time  // End time of the event (UTC)
	Location    string     // Location of the event
	HTMLLink    string     // Link to the event in the provider's UI
	Attendees   []Attendee // Invited attendees, in provider order
}
