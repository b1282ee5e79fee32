package calendar

import (
	"fmt"
	"os"

	"github.com/emersion/go-ical"
)

// ProductID identifies calendars written by meetlog.
const ProductID = "-//meetlog//EN"

// NewCalendar returns an empty VCALENDAR with the required properties set.
func NewCalendar() *ical.Calendar {
	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, ProductID)
	return cal
}

// WriteFile encodes cal to path, replacing any existing file.
func WriteFile(path string, cal *ical.Calendar) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("unable to create calendar file: %w", err)
	}

	if err := ical.NewEncoder(f).Encode(cal); err != nil {
		f.Close()
		return fmt.Errorf("failed to encode calendar to iCal format: %w", err)
	}
	return f.Close()
}
