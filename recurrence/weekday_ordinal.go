package recurrence

import (
	"strconv"
	"strings"
)

// maxWeekdayOrdinal bounds the magnitude of a BYDAY ordinal ("53rd Monday of the year").
const maxWeekdayOrdinal = 53

// WeekdayOrdinal is one BYDAY element. Ordinal 0 means every such weekday in
// the period; otherwise it selects the n-th (or n-th from last, when negative)
// occurrence, e.g. {-1, Friday} is the last Friday.
type WeekdayOrdinal struct {
	Ordinal int
	Weekday Weekday
}

// Every returns the ordinal-less form of d.
func Every(d Weekday) WeekdayOrdinal {
	return WeekdayOrdinal{Weekday: d}
}

// Nth returns the n-th occurrence of d.
func Nth(n int, d Weekday) WeekdayOrdinal {
	return WeekdayOrdinal{Ordinal: n, Weekday: d}
}

// Valid reports whether the weekday is known and the ordinal is 0 or within ±1..53.
func (w WeekdayOrdinal) Valid() bool {
	if !w.Weekday.Valid() {
		return false
	}
	return w.Ordinal == 0 || (abs(w.Ordinal) >= 1 && abs(w.Ordinal) <= maxWeekdayOrdinal)
}

// Format renders the token: "SU", "2TU", "-1MO".
func (w WeekdayOrdinal) Format() string {
	if w.Ordinal == 0 {
		return w.Weekday.String()
	}
	return strconv.Itoa(w.Ordinal) + w.Weekday.String()
}

func (w WeekdayOrdinal) String() string {
	return w.Format()
}

// ParseWeekdayOrdinal parses a BYDAY element: an optional signed ordinal
// followed by exactly one two-letter weekday code.
func ParseWeekdayOrdinal(token string) (WeekdayOrdinal, error) {
	if len(token) < 2 {
		return WeekdayOrdinal{}, formatErr(token, "weekday token too short", nil)
	}
	prefix, code := token[:len(token)-2], strings.ToUpper(token[len(token)-2:])

	day, err := ParseWeekday(code)
	if err != nil {
		return WeekdayOrdinal{}, formatErr(token, "unknown weekday code "+strconv.Quote(code), nil)
	}
	if prefix == "" {
		return WeekdayOrdinal{Weekday: day}, nil
	}

	n, err := strconv.Atoi(prefix)
	if err != nil {
		return WeekdayOrdinal{}, formatErr(token, "invalid ordinal", err)
	}
	if n == 0 || abs(n) > maxWeekdayOrdinal {
		return WeekdayOrdinal{}, formatErr(token, "ordinal must be within ±1..53", nil)
	}
	return WeekdayOrdinal{Ordinal: n, Weekday: day}, nil
}

// TryParseWeekdayOrdinal is ParseWeekdayOrdinal without the error detail.
func TryParseWeekdayOrdinal(token string) (WeekdayOrdinal, bool) {
	w, err := ParseWeekdayOrdinal(token)
	if err != nil {
		return WeekdayOrdinal{}, false
	}
	return w, true
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
