// Package extract derives meeting records from decoded calendar events.
//
// Two strategies share one output schema. Personal calendars list every
// participant, so each other participant of an event becomes a record.
// A shared group calendar yields at most one record per event, pairing a name
// taken from the event title with the first usable attendee address.
package extract

import (
	"meetlog/internal/models"
	"time"
)

// Unknown marks a name or email that could not be determined.
const Unknown = "Unknown"

// Rules configures an extraction pass.
type Rules struct {
	SelfEmail    string    // Address of the calendar owner, never reported
	Excluded     []string  // Addresses never reported
	DateFloor    time.Time // Events dated before this day are ignored
	MinAttendees int       // Personal path: events need more than MinAttendees-1 attendees
	TitlePrefix  string    // Group path: text preceding the other person's name in titles
	DomainSuffix string    // Group path: attendee addresses with this suffix are ignored
}

// MeetingDate reports whether event starts on or after floor, and returns its
// YYYYMMDD date if so.
func MeetingDate(event models.Event, floor time.Time) (string, bool) {
	if event.Start == nil {
		return "", false
	}

	date := event.Start.Date()
	if date.Before(floorDate(floor)) {
		return "", false
	}
	return date.Format(models.DateLayout), true
}

func floorDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
