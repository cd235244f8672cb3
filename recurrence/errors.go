package recurrence

import (
	"errors"
	"fmt"
)

var (
	// ErrFormat is matched by every *FormatError
	ErrFormat = errors.New("malformed recurrence text")
	// ErrRange is matched by every *RangeError
	ErrRange = errors.New("value out of range")
	// ErrUnknownKey is matched by every *UnknownKeyError
	ErrUnknownKey = errors.New("unknown rule key")
	// ErrUnknownTimeZone is matched by every *UnknownTimeZoneError
	ErrUnknownTimeZone = errors.New("unknown time zone")
)

// FormatError reports text that does not follow the grammar: a bad KEY=VALUE
// token, a bad weekday token or a bad timestamp.
type FormatError struct {
	Input  string
	Reason string
	Err    error
}

func (e *FormatError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed %q: %s: %v", e.Input, e.Reason, e.Err)
	}
	return fmt.Sprintf("malformed %q: %s", e.Input, e.Reason)
}

func (e *FormatError) Unwrap() error { return e.Err }

func (e *FormatError) Is(target error) bool { return target == ErrFormat }

// RangeError reports a value outside the domain of a rule field. For signed
// fields the negative mirror [-Max, -Min] is accepted as well.
type RangeError struct {
	Field  string
	Value  int
	Min    int
	Max    int
	Signed bool
}

func (e *RangeError) Error() string {
	if e.Signed {
		return fmt.Sprintf("%s value %d out of range: must be %d..%d or %d..%d",
			e.Field, e.Value, e.Min, e.Max, -e.Max, -e.Min)
	}
	return fmt.Sprintf("%s value %d out of range: must be %d..%d", e.Field, e.Value, e.Min, e.Max)
}

func (e *RangeError) Is(target error) bool { return target == ErrRange }

// UnknownKeyError reports a key inside a rule body that is not part of the grammar.
type UnknownKeyError struct {
	Key string
}

func (e *UnknownKeyError) Error() string {
	return fmt.Sprintf("unknown rule key %q", e.Key)
}

func (e *UnknownKeyError) Is(target error) bool { return target == ErrUnknownKey }

// UnknownTimeZoneError reports a TZID the zone resolver could not load.
type UnknownTimeZoneError struct {
	Zone string
	Err  error
}

func (e *UnknownTimeZoneError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("unknown time zone %q: %v", e.Zone, e.Err)
	}
	return fmt.Sprintf("unknown time zone %q", e.Zone)
}

func (e *UnknownTimeZoneError) Unwrap() error { return e.Err }

func (e *UnknownTimeZoneError) Is(target error) bool { return target == ErrUnknownTimeZone }

func formatErr(input, reason string, err error) error {
	return &FormatError{Input: input, Reason: reason, Err: err}
}
