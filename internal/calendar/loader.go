// Package calendar decodes ICS calendar exports into models.Event values.
package calendar

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"meetlog/internal/models"
	"os"
	"strings"
	"time"

	"github.com/emersion/go-ical"
)

// DefaultTitle is used for events without a SUMMARY.
const DefaultTitle = "No Summary"

// floatingLayout is the DTSTART layout of a local date-time without a zone suffix.
const floatingLayout = "20060102T150405"

// Loader reads calendar files.
type Loader struct {
	logger *slog.Logger
}

// NewLoader creates a new Loader.
func NewLoader(logger *slog.Logger) *Loader {
	return &Loader{logger: logger}
}

// LoadFile decodes every event of the calendar file at path.
func (l *Loader) LoadFile(path string) ([]models.Event, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open calendar file: %w", err)
	}
	defer f.Close()

	return l.Decode(f)
}

// Decode reads all VCALENDAR objects from r and returns their events in order.
// A calendar that is cut off before its END line is reported as
// io.ErrUnexpectedEOF, since the decoder treats it as a clean end of input.
func (l *Loader) Decode(r io.Reader) ([]models.Event, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read calendar: %w", err)
	}
	dec := ical.NewDecoder(bytes.NewReader(data))

	var events []models.Event
	decoded := 0
	for {
		cal, err := dec.Decode()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to decode calendar: %w", err)
		}
		decoded++

		for _, ev := range cal.Events() {
			events = append(events, l.toInternalEvent(ev))
		}
	}

	if begun := countCalendars(data); decoded < begun {
		return nil, fmt.Errorf("failed to decode calendar: %d of %d calendars incomplete: %w", begun-decoded, begun, io.ErrUnexpectedEOF)
	}
	return events, nil
}

// countCalendars counts the BEGIN:VCALENDAR lines of data.
func countCalendars(data []byte) int {
	n := 0
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), len(data)+1)
	for scanner.Scan() {
		if strings.EqualFold(strings.TrimSpace(scanner.Text()), "BEGIN:"+ical.CompCalendar) {
			n++
		}
	}
	return n
}

// toInternalEvent converts a decoded VEVENT to the internal Event model.
func (l *Loader) toInternalEvent(ev ical.Event) models.Event {
	event := models.Event{
		Title: DefaultTitle,
		Props: make(map[string]string, len(ev.Props)),
	}

	for name, props := range ev.Props {
		if len(props) > 0 {
			event.Props[name] = props[0].Value
		}
	}

	if uid := ev.Props.Get(ical.PropUID); uid != nil {
		event.UID = uid.Value
	}

	if summary := ev.Props.Get(ical.PropSummary); summary != nil {
		if text, err := summary.Text(); err == nil {
			event.Title = text
		} else {
			event.Title = summary.Value
		}
	}

	if dtstart := ev.Props.Get(ical.PropDateTimeStart); dtstart != nil {
		start, err := parseStart(dtstart)
		if err != nil {
			l.logger.Warn("Skipping unparseable start time", "uid", event.UID, "value", dtstart.Value, "error", err)
		} else {
			event.Start = start
		}
	}

	if organizer := ev.Props.Get(ical.PropOrganizer); organizer != nil {
		raw := toRawIdentity(organizer)
		event.Organizer = &raw
	}

	attendees := ev.Props.Values(ical.PropAttendee)
	for i := range attendees {
		event.Attendees = append(event.Attendees, toRawIdentity(&attendees[i]))
	}

	return event
}

// parseStart interprets DTSTART as either an all-day date or a timestamp.
// Floating timestamps keep their wall clock by being read as UTC, and so do
// timestamps whose TZID is not a known location (e.g. Outlook's
// "Eastern Standard Time"), since only the date is used downstream.
func parseStart(prop *ical.Prop) (*models.Start, error) {
	allDay := prop.ValueType() == ical.ValueDate || len(prop.Value) == len(models.DateLayout)

	t, err := prop.DateTime(time.UTC)
	if err != nil {
		if allDay || prop.Params.Get(ical.PropTimezoneID) == "" {
			return nil, err
		}
		wall, perr := time.ParseInLocation(floatingLayout, prop.Value, time.UTC)
		if perr != nil {
			return nil, err
		}
		t = wall
	}
	return &models.Start{Time: t, AllDay: allDay}, nil
}

func toRawIdentity(prop *ical.Prop) models.RawIdentity {
	raw := models.RawIdentity{Text: prop.Value}
	if len(prop.Params) > 0 {
		raw.Params = make(map[string]string, len(prop.Params))
		for name := range prop.Params {
			raw.Params[name] = prop.Params.Get(name)
		}
	}
	return raw
}
