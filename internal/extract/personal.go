package extract

import (
	"errors"
	"log/slog"
	"meetlog/internal/identity"
	"meetlog/internal/models"
)

// Extractor turns events into meeting records.
type Extractor struct {
	logger *slog.Logger
}

// NewExtractor creates a new Extractor.
func NewExtractor(logger *slog.Logger) *Extractor {
	return &Extractor{logger: logger}
}

// Personal extracts one record per other participant of every qualifying event
// of a personal calendar.
func (x *Extractor) Personal(events []models.Event, rules Rules) []models.MeetingRecord {
	resolver := identity.NewResolver(rules.SelfEmail, rules.Excluded)

	var records []models.MeetingRecord
	for _, event := range events {
		records = append(records, x.personalEvent(event, rules, resolver)...)
	}
	return records
}

func (x *Extractor) personalEvent(event models.Event, rules Rules, resolver *identity.Resolver) []models.MeetingRecord {
	date, ok := MeetingDate(event, rules.DateFloor)
	if !ok {
		return nil
	}
	if len(event.Attendees) < rules.MinAttendees {
		x.logger.Debug("Skipping event with too few attendees", "title", event.Title, "attendees", len(event.Attendees))
		return nil
	}

	x.logger.Debug("Event", "title", event.Title, "date", date, "props", event.Props)

	book := identity.NewBook()

	if event.Organizer != nil {
		if id, err := resolver.Resolve(*event.Organizer, book); err == nil {
			book.Upsert(id)
		} else {
			x.logResolveSkip("organizer", event, err)
		}
	}

	for _, attendee := range event.Attendees {
		id, err := resolver.Resolve(attendee, book)
		if err != nil {
			x.logResolveSkip("attendee", event, err)
			continue
		}
		book.Upsert(id)
	}

	records := make([]models.MeetingRecord, 0, book.Len())
	for _, id := range book.Identities() {
		records = append(records, models.MeetingRecord{
			OtherPersonName:  id.Name,
			OtherPersonEmail: id.Email,
			MeetingDate:      date,
			Summary:          event.Title,
		})
	}
	return records
}

func (x *Extractor) logResolveSkip(role string, event models.Event, err error) {
	if errors.Is(err, identity.ErrExcluded) {
		return
	}
	x.logger.Debug("Skipping unresolvable participant", "role", role, "title", event.Title, "error", err)
}
