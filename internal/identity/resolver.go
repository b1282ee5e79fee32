// Package identity turns organizer and attendee records into normalized
// email addresses and display names.
//
// Display names are resolved through an ordered chain of sources, recorded on
// every Identity as a NameSource so callers can decide precedence explicitly.
package identity

import (
	"errors"
	"meetlog/internal/models"
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ParamCommonName is the parameter carrying a participant's display name.
const ParamCommonName = "CN"

var (
	// ErrUnresolvable is returned for records that carry no mailto: address.
	ErrUnresolvable = errors.New("identity: no mailto address")
	// ErrExcluded is returned for the self identity and excluded addresses.
	ErrExcluded = errors.New("identity: excluded address")
)

var (
	emailPattern     = regexp.MustCompile(`(?i)mailto:([\w.-]+@[\w.-]+)`)
	delimitedPattern = regexp.MustCompile(`;CN=([^;]+);`)
	loosePattern     = regexp.MustCompile(`CN=([^;:]+)`)
)

// NameSource tells where a resolved display name came from.
type NameSource int

const (
	SourceNone        NameSource = iota
	SourceParam                  // structured CN parameter
	SourceDelimited              // ";CN=value;" in the raw text
	SourceLoose                  // "CN=value" ended by ';' or ':' in the raw text
	SourceInherited              // name already known for the address
	SourceSynthesized            // built from the address local part
)

// Explicit reports whether the name came from metadata on the record itself.
func (s NameSource) Explicit() bool {
	return s == SourceParam || s == SourceDelimited || s == SourceLoose
}

func (s NameSource) String() string {
	switch s {
	case SourceParam:
		return "param"
	case SourceDelimited:
		return "delimited"
	case SourceLoose:
		return "loose"
	case SourceInherited:
		return "inherited"
	case SourceSynthesized:
		return "synthesized"
	default:
		return "none"
	}
}

// Identity is a resolved participant.
type Identity struct {
	Email  string
	Name   string
	Source NameSource
}

// Resolver resolves raw records against a self address and an exclusion set.
type Resolver struct {
	self     string
	excluded map[string]struct{}
	suffixes []string
}

// NewResolver creates a Resolver. Addresses are compared lowercased.
// Any address ending in one of suffixes is excluded as well.
func NewResolver(self string, excluded []string, suffixes ...string) *Resolver {
	r := &Resolver{
		self:     strings.ToLower(self),
		excluded: make(map[string]struct{}, len(excluded)),
	}
	for _, e := range excluded {
		r.excluded[strings.ToLower(e)] = struct{}{}
	}
	for _, s := range suffixes {
		if s != "" {
			r.suffixes = append(r.suffixes, strings.ToLower(s))
		}
	}
	return r
}

// IsExcluded reports whether email is the self address or filtered out.
func (r *Resolver) IsExcluded(email string) bool {
	email = strings.ToLower(email)
	if email == r.self {
		return true
	}
	if _, ok := r.excluded[email]; ok {
		return true
	}
	for _, s := range r.suffixes {
		if strings.HasSuffix(email, s) {
			return true
		}
	}
	return false
}

// Address extracts the qualifying email of raw, without resolving a name.
func (r *Resolver) Address(raw models.RawIdentity) (string, error) {
	email, ok := ExtractEmail(raw.Text)
	if !ok {
		return "", ErrUnresolvable
	}
	if r.IsExcluded(email) {
		return email, ErrExcluded
	}
	return email, nil
}

// Resolve resolves raw to an Identity. Names already recorded in known are
// inherited when the record carries no name of its own; known may be nil.
func (r *Resolver) Resolve(raw models.RawIdentity, known *Book) (Identity, error) {
	email, err := r.Address(raw)
	if err != nil {
		return Identity{}, err
	}

	if name, src := ExplicitName(raw); src != SourceNone {
		return Identity{Email: email, Name: name, Source: src}, nil
	}
	if prev, ok := known.Get(email); ok {
		return Identity{Email: email, Name: prev.Name, Source: SourceInherited}, nil
	}
	return Identity{Email: email, Name: SynthesizeName(email), Source: SourceSynthesized}, nil
}

// ExtractEmail finds the mailto: address in text and lowercases it.
func ExtractEmail(text string) (string, bool) {
	m := emailPattern.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	return strings.ToLower(m[1]), true
}

// ExplicitName returns the display name carried by the record itself, trying
// the structured parameter first and then the two raw text conventions.
func ExplicitName(raw models.RawIdentity) (string, NameSource) {
	if cn, ok := raw.Params[ParamCommonName]; ok && cn != "" {
		return cn, SourceParam
	}
	if m := delimitedPattern.FindStringSubmatch(raw.Text); m != nil {
		if name := strings.TrimSpace(m[1]); name != "" {
			return name, SourceDelimited
		}
	}
	if m := loosePattern.FindStringSubmatch(raw.Text); m != nil {
		if name := strings.TrimSpace(m[1]); name != "" {
			return name, SourceLoose
		}
	}
	return "", SourceNone
}

// SynthesizeName builds a display name from the local part of email:
// "john.doe@x.com" becomes "John Doe" and "johndoe@x.com" becomes "Johndoe".
func SynthesizeName(email string) string {
	local, _, _ := strings.Cut(email, "@")
	caser := cases.Title(language.Und)

	parts := strings.Split(local, ".")
	for i, p := range parts {
		parts[i] = caser.String(p)
	}
	return strings.Join(parts, " ")
}
