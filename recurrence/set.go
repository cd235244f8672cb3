package recurrence

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

const (
	dtstartKey   = "DTSTART"
	tzidParam    = ";TZID="
	rrulePrefix  = "RRULE:"
	exrulePrefix = "EXRULE:"
)

// Set is a full schedule: an anchor start in a zone plus the inclusion
// (RRULE) and exclusion (EXRULE) rules, in the order they were added.
type Set struct {
	start      time.Time
	zone       *time.Location
	inclusions []*Rule
	exclusions []*Rule
}

// NewSet anchors a schedule at start. A UTC instant gets the UTC zone; any
// other instant gets the host's local zone, named by its IANA identifier.
// When the host zone has no name the set falls back to UTC.
func NewSet(start time.Time) *Set {
	if isUTC(start.Location()) {
		return NewSetInZone(start, time.UTC)
	}
	return NewSetInZone(start, time.Local)
}

// NewSetInZone anchors a schedule at start in an explicit zone. A nil or
// unnamed zone means UTC; time.Local is replaced by the zone it names.
func NewSetInZone(start time.Time, zone *time.Location) *Set {
	zone = canonicalZone(zone)
	return &Set{start: start.In(zone).Truncate(time.Second), zone: zone}
}

// Start returns the anchor instant in the set's zone.
func (s *Set) Start() time.Time { return s.start.In(s.Zone()) }

// Zone returns the zone DTSTART is written in.
func (s *Set) Zone() *time.Location {
	if s.zone == nil {
		return time.UTC
	}
	return s.zone
}

// IsUTC reports whether DTSTART is written in the Z-suffixed UTC form.
func (s *Set) IsUTC() bool { return zoneID(s.zone) == "" }

// ZoneID returns the TZID DTSTART is written with, or "" for the UTC form.
func (s *Set) ZoneID() string { return zoneID(s.zone) }

// SetStart moves the anchor, keeping the current zone.
func (s *Set) SetStart(t time.Time) {
	s.start = t.In(s.Zone()).Truncate(time.Second)
}

// SetZone changes the zone the anchor is rendered in; the instant is unchanged.
// Zones are mapped the same way as in NewSetInZone.
func (s *Set) SetZone(zone *time.Location) {
	zone = canonicalZone(zone)
	s.zone = zone
	s.start = s.start.In(zone)
}

// Inclusions returns the RRULEs in the order they were added.
func (s *Set) Inclusions() []*Rule { return slices.Clone(s.inclusions) }

// Exclusions returns the EXRULEs in the order they were added.
func (s *Set) Exclusions() []*Rule { return slices.Clone(s.exclusions) }

// AddInclusion appends an RRULE. A nil rule is ignored.
func (s *Set) AddInclusion(r *Rule) {
	if r != nil {
		s.inclusions = append(s.inclusions, r)
	}
}

// AddExclusion appends an EXRULE. A nil rule is ignored.
func (s *Set) AddExclusion(r *Rule) {
	if r != nil {
		s.exclusions = append(s.exclusions, r)
	}
}

// Clone returns a deep copy, rules included.
func (s *Set) Clone() *Set {
	c := &Set{start: s.start, zone: s.zone}
	for _, r := range s.inclusions {
		c.inclusions = append(c.inclusions, r.Clone())
	}
	for _, r := range s.exclusions {
		c.exclusions = append(c.exclusions, r.Clone())
	}
	return c
}

// Equal compares start instant, zone name and both rule lists.
func (s *Set) Equal(o *Set) bool {
	if s == nil || o == nil {
		return s == o
	}
	if !s.start.Equal(o.start) || s.Zone().String() != o.Zone().String() {
		return false
	}
	return slices.EqualFunc(s.inclusions, o.inclusions, (*Rule).Equal) &&
		slices.EqualFunc(s.exclusions, o.exclusions, (*Rule).Equal)
}

// Format renders "DTSTART... RRULE:... EXRULE:...".
func (s *Set) Format() string {
	parts := make([]string, 0, 1+len(s.inclusions)+len(s.exclusions))
	parts = append(parts, s.formatStart())
	for _, r := range s.inclusions {
		parts = append(parts, rrulePrefix+r.Format())
	}
	for _, r := range s.exclusions {
		parts = append(parts, exrulePrefix+r.Format())
	}
	return strings.Join(parts, " ")
}

func (s *Set) String() string {
	return s.Format()
}

// MarshalText implements encoding.TextMarshaler.
func (s *Set) MarshalText() ([]byte, error) {
	return []byte(s.Format()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler using the platform zone database.
func (s *Set) UnmarshalText(text []byte) error {
	parsed, err := ParseSet(string(text))
	if err != nil {
		return err
	}
	*s = *parsed
	return nil
}

func (s *Set) formatStart() string {
	zone := s.Zone()
	id := zoneID(zone)
	if id == "" {
		return dtstartKey + ":" + s.start.UTC().Format(utcLayout)
	}
	return dtstartKey + tzidParam + id + ":" + s.start.In(zone).Format(floatingLayout)
}

// ParseOption tunes ParseSet.
type ParseOption func(*parseOptions)

type parseOptions struct {
	zones   ZoneResolver
	ignored func(token string)
}

// WithZoneResolver replaces the platform zone lookup used for TZID values.
func WithZoneResolver(zones ZoneResolver) ParseOption {
	return func(o *parseOptions) {
		if zones != nil {
			o.zones = zones
		}
	}
}

// WithIgnoredTokenHandler is called for every token ParseSet skips.
func WithIgnoredTokenHandler(fn func(token string)) ParseOption {
	return func(o *parseOptions) {
		o.ignored = fn
	}
}

// ParseSet parses a whitespace separated schedule made of one DTSTART token
// and any number of "RRULE:" and "EXRULE:" tokens. Tokens with other prefixes
// are skipped. Without a DTSTART the anchor is the zero instant in UTC.
func ParseSet(text string, opts ...ParseOption) (*Set, error) {
	o := parseOptions{zones: PlatformZones}
	for _, opt := range opts {
		opt(&o)
	}

	s := &Set{zone: time.UTC}
	for _, token := range strings.Fields(text) {
		switch {
		case strings.HasPrefix(token, dtstartKey):
			start, zone, err := parseStart(token, o.zones)
			if err != nil {
				return nil, err
			}
			s.start, s.zone = start, zone
		case strings.HasPrefix(token, rrulePrefix):
			r, err := ParseRule(token[len(rrulePrefix):])
			if err != nil {
				return nil, fmt.Errorf("RRULE: %w", err)
			}
			s.inclusions = append(s.inclusions, r)
		case strings.HasPrefix(token, exrulePrefix):
			r, err := ParseRule(token[len(exrulePrefix):])
			if err != nil {
				return nil, fmt.Errorf("EXRULE: %w", err)
			}
			s.exclusions = append(s.exclusions, r)
		default:
			if o.ignored != nil {
				o.ignored(token)
			}
		}
	}
	return s, nil
}

// TryParseSet reports success as a boolean instead of an error.
func TryParseSet(text string, opts ...ParseOption) (*Set, bool) {
	s, err := ParseSet(text, opts...)
	if err != nil {
		return nil, false
	}
	return s, true
}

// parseStart handles "DTSTART:<ts>" and "DTSTART;TZID=<zone>:<ts>".
func parseStart(token string, zones ZoneResolver) (time.Time, *time.Location, error) {
	rest := token[len(dtstartKey):]
	switch {
	case strings.HasPrefix(rest, ":"):
		t, err := parseTimestamp(rest[1:])
		if err != nil {
			return time.Time{}, nil, err
		}
		return t, time.UTC, nil
	case strings.HasPrefix(rest, tzidParam):
		id, ts, ok := strings.Cut(rest[len(tzidParam):], ":")
		if !ok || id == "" || ts == "" {
			return time.Time{}, nil, formatErr(token, "expected DTSTART;TZID=<zone>:<timestamp>", nil)
		}
		loc, err := zones.LoadLocation(id)
		if err != nil || loc == nil {
			return time.Time{}, nil, &UnknownTimeZoneError{Zone: id, Err: err}
		}
		t, err := parseZonedTimestamp(ts, loc)
		if err != nil {
			return time.Time{}, nil, err
		}
		loc = canonicalZone(loc)
		return t.In(loc), loc, nil
	default:
		return time.Time{}, nil, formatErr(token, "expected DTSTART:<timestamp> or DTSTART;TZID=<zone>:<timestamp>", nil)
	}
}

// parseZonedTimestamp reads wall-clock time in loc. A Z suffix contradicts
// the TZID and is rejected.
func parseZonedTimestamp(value string, loc *time.Location) (time.Time, error) {
	layout := floatingLayout
	if len(value) == len(dateLayout) {
		layout = dateLayout
	} else if len(value) != len(floatingLayout) {
		return time.Time{}, formatErr(value, "zoned timestamp must look like 20060102T150405", nil)
	}
	t, err := time.ParseInLocation(layout, value, loc)
	if err != nil {
		return time.Time{}, formatErr(value, "invalid timestamp", err)
	}
	return t, nil
}
