package google

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"log/slog"
	icscal "meetlog/internal/calendar"
	"os"
	"strings"
	"time"

	"github.com/emersion/go-ical"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

const (
	credentialsFile = "credentials.json"
	statusCancelled = "cancelled"
)

// CalendarClient exports Google calendars to ICS.
type CalendarClient struct {
	service *calendar.Service
	logger  *slog.Logger
}

// NewClient creates a new Google Calendar client.
// It handles loading credentials and setting up an authenticated HTTP client.
// The accountName selects the token-<accountName>.json file saved by the auth command.
func NewClient(ctx context.Context, logger *slog.Logger, clientID, clientSecret, accountName string) (*CalendarClient, error) {
	config, err := getOAuthConfig(clientID, clientSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to get OAuth config: %w", err)
	}

	token, err := tokenFromFile(TokenFile(accountName))
	if err != nil {
		return nil, fmt.Errorf("could not load token for account %s: %w. Please run the 'auth' command first", accountName, err)
	}

	client := config.Client(ctx, token)
	service, err := calendar.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar service: %w", err)
	}

	return &CalendarClient{service: service, logger: logger}, nil
}

// Export fetches every event of calendarID starting at or after since and
// returns them as a single VCALENDAR.
func (c *CalendarClient) Export(ctx context.Context, calendarID string, since time.Time) (*ical.Calendar, error) {
	c.logger.Debug("Fetching events", "calendarID", calendarID, "since", since)

	cal := icscal.NewCalendar()
	count := 0
	err := c.service.Events.List(calendarID).
		ShowDeleted(false).
		SingleEvents(true).
		TimeMin(since.Format(time.RFC3339)).
		OrderBy("startTime").
		Pages(ctx, func(page *calendar.Events) error {
			for _, item := range page.Items {
				if vevent := toICalEvent(item); vevent != nil {
					cal.Children = append(cal.Children, vevent)
					count++
				}
			}
			return nil
		})
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve events: %w", err)
	}

	c.logger.Info("Successfully fetched events from Google Calendar", "count", count, "calendarID", calendarID)
	return cal, nil
}

// toICalEvent converts a Google Calendar event to a VEVENT, or nil for
// cancelled events and events without a start.
func toICalEvent(item *calendar.Event) *ical.Component {
	if item.Status == statusCancelled || item.Start == nil {
		return nil
	}

	ve := ical.NewComponent(ical.CompEvent)

	uid := item.ICalUID
	if uid == "" {
		uid = uuid.New().String()
	}
	ve.Props.SetText(ical.PropUID, uid)
	ve.Props.SetDateTime(ical.PropDateTimeStamp, time.Now().UTC())

	switch {
	case item.Start.DateTime != "":
		start, err := time.Parse(time.RFC3339, item.Start.DateTime)
		if err != nil {
			return nil
		}
		ve.Props.SetDateTime(ical.PropDateTimeStart, start.UTC())
	case item.Start.Date != "":
		start, err := time.Parse("2006-01-02", item.Start.Date)
		if err != nil {
			return nil
		}
		dtstart := ical.NewProp(ical.PropDateTimeStart)
		dtstart.SetDate(start)
		ve.Props.Set(dtstart)
	default:
		return nil
	}

	if item.Summary != "" {
		ve.Props.SetText(ical.PropSummary, item.Summary)
	}
	if item.Organizer != nil && item.Organizer.Email != "" {
		ve.Props.Add(participantProp(ical.PropOrganizer, item.Organizer.Email, item.Organizer.DisplayName, ""))
	}
	for _, a := range item.Attendees {
		if a.Email == "" {
			continue
		}
		ve.Props.Add(participantProp(ical.PropAttendee, a.Email, a.DisplayName, a.ResponseStatus))
	}
	return ve
}

func participantProp(name, email, displayName, status string) *ical.Prop {
	p := ical.NewProp(name)
	p.Value = "mailto:" + email
	if displayName != "" {
		p.Params.Set("CN", displayName)
	}
	if status != "" {
		p.Params.Set("PARTSTAT", partStat(status))
	}
	return p
}

// partStat maps a Google response status to an iCalendar PARTSTAT value.
func partStat(status string) string {
	switch status {
	case "accepted":
		return "ACCEPTED"
	case "declined":
		return "DECLINED"
	case "tentative":
		return "TENTATIVE"
	default:
		return "NEEDS-ACTION"
	}
}

// GetOAuthConfigForAuthFlow is used by the auth command to get the config for the web flow.
func GetOAuthConfigForAuthFlow(clientID, clientSecret string) (*oauth2.Config, error) {
	return getOAuthConfig(clientID, clientSecret)
}

// getOAuthConfig reads credentials and returns an OAuth2 config.
// It prioritizes environment variables over a local credentials.json file.
func getOAuthConfig(clientID, clientSecret string) (*oauth2.Config, error) {
	if clientID != "" && clientSecret != "" {
		return &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  "urn:ietf:wg:oauth:2.0:oob",
			Scopes:       []string{calendar.CalendarReadonlyScope},
			Endpoint:     google.Endpoint,
		}, nil
	}

	b, err := os.ReadFile(credentialsFile)
	if err != nil {
		if _, ok := err.(*fs.PathError); ok {
			return nil, fmt.Errorf("credentials.json not found. Please provide GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET env vars or place credentials.json in the working directory")
		}
		return nil, fmt.Errorf("unable to read client secret file: %w", err)
	}

	config, err := google.ConfigFromJSON(b, calendar.CalendarReadonlyScope)
	if err != nil {
		return nil, fmt.Errorf("unable to parse client secret file to config: %w", err)
	}
	config.RedirectURL = "urn:ietf:wg:oauth:2.0:oob" // For desktop app flow
	return config, nil
}

// TokenFromWeb is called by the auth flow to retrieve a token.
func TokenFromWeb(ctx context.Context, config *oauth2.Config, authCode string) (*oauth2.Token, error) {
	return config.Exchange(ctx, authCode)
}

// TokenFile returns the token file name for an account.
func TokenFile(accountName string) string {
	return "token-" + accountName + ".json"
}

// SaveToken saves a token to a file path.
func SaveToken(path string, token *oauth2.Token) error {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("unable to create token file: %w", err)
	}
	defer f.Close()
	return json.NewEncoder(f).Encode(token)
}

// tokenFromFile retrieves a token from a local file.
func tokenFromFile(file string) (*oauth2.Token, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	tok := &oauth2.Token{}
	err = json.NewDecoder(f).Decode(tok)
	return tok, err
}

// GetTokenAccounts lists the accounts that have a saved token in dir.
func GetTokenAccounts(dir string) ([]string, error) {
	files, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var accounts []string
	for _, file := range files {
		if strings.HasPrefix(file.Name(), "token-") && strings.HasSuffix(file.Name(), ".json") {
			accountName := strings.TrimSuffix(strings.TrimPrefix(file.Name(), "token-"), ".json")
			accounts = append(accounts, accountName)
		}
	}
	return accounts, nil
}

// ExportFileName returns the name under which a group calendar export is
// saved so that meetlog later recognizes it as a group calendar.
func ExportFileName(label, calendarID string) string {
	if label == "" {
		return calendarID + ".ics"
	}
	return label + "_" + calendarID + ".ics"
}
