package calendar

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const ics = `BEGIN:VCALENDAR
VERSION:2.0
PRODID:-//Test//EN
BEGIN:VEVENT
UID:0001@example.net
DTSTAMP:20240101T000000Z
DTSTART:20240601T150000Z
SUMMARY:Sync\, weekly
ORGANIZER;CN=Me Myself:mailto:me@x.com
ATTENDEE;CUTYPE=INDIVIDUAL;ROLE=REQ-PARTICIPANT;CN=Alice:mailto:a@x.com
ATTENDEE;ROLE=REQ-PARTICIPANT:mailto:b@x.com
END:VEVENT
BEGIN:VEVENT
UID:0002@example.net
DTSTAMP:20240101T000000Z
DTSTART;VALUE=DATE:20240704
ATTENDEE:mailto:c@x.com
END:VEVENT
BEGIN:VEVENT
UID:0003@example.net
DTSTAMP:20240101T000000Z
SUMMARY:Draft
END:VEVENT
END:VCALENDAR
BEGIN:VCALENDAR
VERSION:2.0
PRODID:-//Test//EN
BEGIN:VEVENT
UID:0004@example.net
DTSTAMP:20240101T000000Z
DTSTART;TZID=Europe/Paris:20240102T003000
SUMMARY:Second calendar
END:VEVENT
END:VCALENDAR
`

func newTestLoader() *Loader {
	return NewLoader(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestDecode(t *testing.T) {
	events, err := newTestLoader().Decode(strings.NewReader(ics))
	require.NoError(t, err)
	require.Len(t, events, 4)

	first := events[0]
	assert.Equal(t, "0001@example.net", first.UID)
	assert.Equal(t, "Sync, weekly", first.Title)
	require.NotNil(t, first.Start)
	assert.False(t, first.Start.AllDay)
	assert.Equal(t, time.Date(2024, 6, 1, 15, 0, 0, 0, time.UTC), first.Start.Time.UTC())
	require.NotNil(t, first.Organizer)
	assert.Equal(t, "mailto:me@x.com", first.Organizer.Text)
	assert.Equal(t, "Me Myself", first.Organizer.Params["CN"])
	require.Len(t, first.Attendees, 2)
	assert.Equal(t, "Alice", first.Attendees[0].Params["CN"])
	assert.Equal(t, "mailto:b@x.com", first.Attendees[1].Text)
	_, hasCN := first.Attendees[1].Params["CN"]
	assert.False(t, hasCN)

	allDay := events[1]
	assert.Equal(t, DefaultTitle, allDay.Title)
	require.NotNil(t, allDay.Start)
	assert.True(t, allDay.Start.AllDay)
	assert.Equal(t, "20240704", allDay.Start.Date().Format("20060102"))
	assert.Nil(t, allDay.Organizer)
	require.Len(t, allDay.Attendees, 1)
	assert.Nil(t, allDay.Attendees[0].Params)

	draft := events[2]
	assert.Nil(t, draft.Start)
	assert.Empty(t, draft.Attendees)

	zoned := events[3]
	require.NotNil(t, zoned.Start)
	assert.Equal(t, "20240102", zoned.Start.Date().Format("20060102"))
}

func TestDecode_Malformed(t *testing.T) {
	_, err := newTestLoader().Decode(strings.NewReader("this is not a calendar\n"))
	assert.Error(t, err)
}

func TestDecode_Truncated(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{
			name:  "cut off inside the first event",
			input: "BEGIN:VCALENDAR\nBEGIN:VEVENT\nSUMMARY:cut short\n",
		},
		{
			name: "complete event before the cut",
			input: "BEGIN:VCALENDAR\r\nVERSION:2.0\r\nPRODID:-//Test//EN\r\n" +
				"BEGIN:VEVENT\r\nUID:1\r\nDTSTAMP:20240101T000000Z\r\nDTSTART:20240601T150000Z\r\nEND:VEVENT\r\n" +
				"BEGIN:VEVENT\r\nUID:2\r\n",
		},
		{
			name:  "second calendar cut off",
			input: ics + "BEGIN:VCALENDAR\nVERSION:2.0\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			events, err := newTestLoader().Decode(strings.NewReader(tt.input))
			require.Error(t, err)
			assert.True(t, errors.Is(err, io.ErrUnexpectedEOF), "got %v", err)
			assert.Nil(t, events)
		})
	}
}

const outlookICS = `BEGIN:VCALENDAR
VERSION:2.0
PRODID:-//Microsoft Corporation//Outlook 16.0 MIMEDIR//EN
BEGIN:VTIMEZONE
TZID:Eastern Standard Time
BEGIN:STANDARD
DTSTART:16011104T020000
RRULE:FREQ=YEARLY;BYDAY=1SU;BYMONTH=11
TZOFFSETFROM:-0400
TZOFFSETTO:-0500
END:STANDARD
BEGIN:DAYLIGHT
DTSTART:16010311T020000
RRULE:FREQ=YEARLY;BYDAY=2SU;BYMONTH=3
TZOFFSETFROM:-0500
TZOFFSETTO:-0400
END:DAYLIGHT
END:VTIMEZONE
BEGIN:VEVENT
UID:outlook-1
DTSTAMP:20240101T000000Z
DTSTART;TZID="Eastern Standard Time":20240601T100000
SUMMARY:Quarterly review
ATTENDEE;CN=Alice:mailto:a@x.com
END:VEVENT
END:VCALENDAR
`

func TestDecode_UnknownTimezoneKeepsWallClock(t *testing.T) {
	events, err := newTestLoader().Decode(strings.NewReader(outlookICS))
	require.NoError(t, err)
	require.Len(t, events, 1)

	start := events[0].Start
	require.NotNil(t, start)
	assert.False(t, start.AllDay)
	assert.Equal(t, "20240601", start.Date().Format("20060102"))
	assert.Equal(t, 10, start.Time.Hour())
}

func TestDecode_Empty(t *testing.T) {
	events, err := newTestLoader().Decode(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a_b@x.com.ics")
	require.NoError(t, os.WriteFile(path, []byte(ics), 0o644))

	events, err := newTestLoader().LoadFile(path)
	require.NoError(t, err)
	assert.Len(t, events, 4)

	_, err = newTestLoader().LoadFile(filepath.Join(t.TempDir(), "missing.ics"))
	assert.Error(t, err)
}
