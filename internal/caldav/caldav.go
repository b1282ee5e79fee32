package caldav

import (
	"context"
	"fmt"
	"log/slog"
	icscal "meetlog/internal/calendar"
	"net/http"
	"time"

	"github.com/emersion/go-ical"
	"github.com/emersion/go-webdav/caldav"
)

// ICloudEndpoint is the default CalDAV endpoint.
const ICloudEndpoint = "https://caldav.icloud.com/"

// queryHorizon bounds the time-range filter. A zero End would be sent as
// 00010101T000000Z, an empty range.
const queryHorizon = 100

// customTransport handles adding Basic Auth and custom headers to requests.
type customTransport struct {
	Username  string
	Password  string
	Transport http.RoundTripper
}

// RoundTrip adds required headers and authentication to each request.
func (t *customTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req.SetBasicAuth(t.Username, t.Password)
	req.Header.Set("User-Agent", "meetlog/1.0")
	return t.Transport.RoundTrip(req)
}

// Client exports calendars from a CalDAV server.
type Client struct {
	caldavClient *caldav.Client
	logger       *slog.Logger
}

// NewClient creates a new CalDAV client for endpoint using basic auth.
func NewClient(logger *slog.Logger, endpoint, username, password string) (*Client, error) {
	transport := &customTransport{
		Username:  username,
		Password:  password,
		Transport: http.DefaultTransport,
	}
	httpClient := &http.Client{Transport: transport}

	caldavClient, err := caldav.NewClient(httpClient, endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to create caldav client: %w", err)
	}

	return &Client{caldavClient: caldavClient, logger: logger}, nil
}

// Export downloads the events of the calendar named calendarName that start
// at or after since, merged into a single VCALENDAR.
func (c *Client) Export(ctx context.Context, calendarName string, since time.Time) (*ical.Calendar, error) {
	c.logger.Info("Finding calendar", "calendarName", calendarName)
	calendarPath, err := c.findCalendar(ctx, calendarName)
	if err != nil {
		return nil, fmt.Errorf("could not find calendar '%s': %w", calendarName, err)
	}

	objects, err := c.queryEvents(ctx, calendarPath, since)
	if err != nil {
		return nil, err
	}

	cal := mergeObjects(objects)
	c.logger.Info("Successfully fetched events from CalDAV", "objects", len(objects), "events", len(cal.Events()), "calendarName", calendarName)
	return cal, nil
}

// queryEvents runs a calendar-query REPORT for the events of calendarPath
// overlapping [since, since+queryHorizon years).
func (c *Client) queryEvents(ctx context.Context, calendarPath string, since time.Time) ([]caldav.CalendarObject, error) {
	query := &caldav.CalendarQuery{
		CompRequest: caldav.CalendarCompRequest{
			Name:     ical.CompCalendar,
			AllProps: true,
			AllComps: true,
		},
		CompFilter: caldav.CompFilter{
			Name: ical.CompCalendar,
			Comps: []caldav.CompFilter{{
				Name:  ical.CompEvent,
				Start: since,
				End:   since.AddDate(queryHorizon, 0, 0),
			}},
		},
	}

	objects, err := c.caldavClient.QueryCalendar(ctx, calendarPath, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query calendar: %w", err)
	}
	return objects, nil
}

// mergeObjects combines the components of every calendar object into one
// calendar, keeping a single copy of each time zone definition.
func mergeObjects(objects []caldav.CalendarObject) *ical.Calendar {
	cal := icscal.NewCalendar()
	timezones := make(map[string]bool)

	for _, obj := range objects {
		if obj.Data == nil {
			continue
		}
		for _, child := range obj.Data.Children {
			if child.Name == ical.CompTimezone {
				tzid := child.Props.Get(ical.PropTimezoneID)
				if tzid == nil || timezones[tzid.Value] {
					continue
				}
				timezones[tzid.Value] = true
			}
			cal.Children = append(cal.Children, child)
		}
	}
	return cal
}

// findCalendar discovers the user's calendars and returns the path of the one with the matching name.
func (c *Client) findCalendar(ctx context.Context, name string) (string, error) {
	principalPath, err := c.caldavClient.FindCurrentUserPrincipal(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to find principal path: %w", err)
	}

	homeSetPath, err := c.caldavClient.FindCalendarHomeSet(ctx, principalPath)
	if err != nil {
		return "", fmt.Errorf("failed to find calendar home set: %w", err)
	}

	calendars, err := c.caldavClient.FindCalendars(ctx, homeSetPath)
	if err != nil {
		return "", fmt.Errorf("failed to find calendars: %w", err)
	}

	for _, cal := range calendars {
		if cal.Name == name {
			return cal.Path, nil
		}
	}

	return "", fmt.Errorf("no calendar found with name '%s'", name)
}

// ExportFileName returns the personal calendar file name for a contact.
func ExportFileName(contactName, contactEmail string) string {
	return contactName + "_" + contactEmail + ".ics"
}
