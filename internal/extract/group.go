package extract

import (
	"meetlog/internal/identity"
	"meetlog/internal/models"
	"strings"
)

// Group extracts at most one record per qualifying event of a shared calendar.
// There is no attendee count requirement on this path.
func (x *Extractor) Group(events []models.Event, rules Rules) []models.MeetingRecord {
	resolver := identity.NewResolver(rules.SelfEmail, rules.Excluded, rules.DomainSuffix)

	var records []models.MeetingRecord
	for _, event := range events {
		if rec, ok := x.groupEvent(event, rules, resolver); ok {
			records = append(records, rec)
		}
	}
	return records
}

func (x *Extractor) groupEvent(event models.Event, rules Rules, resolver *identity.Resolver) (models.MeetingRecord, bool) {
	date, ok := MeetingDate(event, rules.DateFloor)
	if !ok {
		return models.MeetingRecord{}, false
	}

	name, email := Unknown, Unknown
	titleName, fromTitle := NameFromTitle(event.Title, rules.TitlePrefix)
	if fromTitle {
		name = titleName
	}

	for _, attendee := range event.Attendees {
		addr, err := resolver.Address(attendee)
		if err != nil {
			continue
		}

		// The first usable attendee supplies the address. Its own name is
		// only used when the title named nobody.
		email = addr
		if !fromTitle {
			if attendeeName, src := identity.ExplicitName(attendee); src != identity.SourceNone {
				name = attendeeName
			}
		}
		// A nameless attendee still ends the scan.
		break
	}

	if name == Unknown && email == Unknown {
		x.logger.Debug("No participant found in group event", "title", event.Title, "date", date)
		return models.MeetingRecord{}, false
	}

	return models.MeetingRecord{
		OtherPersonName:  name,
		OtherPersonEmail: email,
		MeetingDate:      date,
		Summary:          event.Title,
	}, true
}

// NameFromTitle returns the text following prefix in title, trimmed.
func NameFromTitle(title, prefix string) (string, bool) {
	if prefix == "" {
		return "", false
	}
	_, rest, found := strings.Cut(title, prefix)
	if !found {
		return "", false
	}
	rest = strings.TrimSpace(rest)
	if rest == "" {
		return "", false
	}
	return rest, true
}
