// Package filename infers who a calendar export belongs to from its file name.
package filename

import (
	"regexp"
	"strings"
)

// GroupMarker identifies exports of a shared Google group calendar.
const GroupMarker = "@group.calendar.google.com.ics"

const (
	unknown       = "Unknown"
	groupName     = "Group Calendar"
	personalMark  = "(p)"
	personalStrip = " (p)"
)

// Kind selects the extraction strategy for a file.
type Kind int

const (
	KindUnknown Kind = iota
	KindPersonal
	KindGroup
)

func (k Kind) String() string {
	switch k {
	case KindPersonal:
		return "personal"
	case KindGroup:
		return "group"
	default:
		return "unknown"
	}
}

// Category labels a personal calendar by relationship.
const (
	CategoryPersonal = "Personal"
	CategoryBusiness = "Business"
)

// personalPattern matches "<name>_<email>.ics".
var personalPattern = regexp.MustCompile(`^(.+?)_(.+?)\.ics`)

// Info describes a calendar file.
type Info struct {
	Kind     Kind
	Name     string // Contact display name, or "Group Calendar"
	Email    string // Contact address; the calendar ID for group calendars
	Category string // Personal or Business; the name prefix for group calendars
}

// Classify inspects a base file name. Unrecognized shapes yield Unknown
// values rather than an error.
func Classify(name string) Info {
	if strings.Contains(name, GroupMarker) {
		category, _, _ := strings.Cut(name, "_")
		return Info{
			Kind:     KindGroup,
			Name:     groupName,
			Email:    strings.ReplaceAll(name, ".ics", ""),
			Category: category,
		}
	}

	if m := personalPattern.FindStringSubmatch(name); m != nil {
		contact, email := m[1], m[2]
		category := CategoryBusiness
		if strings.Contains(contact, personalMark) {
			category = CategoryPersonal
		}
		return Info{
			Kind:     KindPersonal,
			Name:     strings.ReplaceAll(contact, personalStrip, ""),
			Email:    email,
			Category: category,
		}
	}

	return Info{Kind: KindUnknown, Name: unknown, Email: unknown, Category: unknown}
}
