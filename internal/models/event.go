package models

import "time"

// DateLayout is the only date representation written to reports.
const DateLayout = "20060102"

// Start is the start of an event. It is either a timestamp or an all-day date.
type Start struct {
	Time   time.Time // Parsed start; midnight in UTC when AllDay is set
	AllDay bool      // DTSTART carried VALUE=DATE
}

// Date truncates the start to its calendar date, in the timestamp's own location.
func (s Start) Date() time.Time {
	y, m, d := s.Time.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// RawIdentity is an organizer or attendee entry as exported by the calendar.
// Text is the property value (normally a mailto: URI, sometimes with CN
// embedded by quirky exporters). Params holds the property parameters, nil
// when the record carried none.
type RawIdentity struct {
	Text   string
	Params map[string]string
}

// Event represents a calendar event as decoded from an ICS file.
// This is an internal representation, independent of the decoder.
type Event struct {
	UID       string            // The iCalendar UID, empty if absent
	Title     string            // Summary or title of the event
	Start     *Start            // Nil when the event has no DTSTART
	Organizer *RawIdentity      // Nil when the event has no ORGANIZER
	Attendees []RawIdentity     // Zero or more ATTENDEE entries, in file order
	Props     map[string]string // Raw first values of every property, for debug logging
}

// MeetingRecord is one row of the report: a meeting with one other person.
type MeetingRecord struct {
	OtherPersonName  string
	OtherPersonEmail string
	MeetingDate      string // YYYYMMDD
	Summary          string
}
