package recurrence

import (
	"strconv"
	"time"
)

// Frequency is the base period of a rule, ordered coarse to fine.
type Frequency int

const (
	Yearly Frequency = iota
	Monthly
	Weekly
	Daily
	Hourly
	Minutely
)

var frequencyNames = [...]string{
	Yearly:   "YEARLY",
	Monthly:  "MONTHLY",
	Weekly:   "WEEKLY",
	Daily:    "DAILY",
	Hourly:   "HOURLY",
	Minutely: "MINUTELY",
}

// Valid reports whether f is one of the six frequencies.
func (f Frequency) Valid() bool {
	return f >= Yearly && f <= Minutely
}

func (f Frequency) String() string {
	if !f.Valid() {
		return "Frequency(" + strconv.Itoa(int(f)) + ")"
	}
	return frequencyNames[f]
}

// ParseFrequency maps a FREQ value such as "WEEKLY" to its Frequency.
func ParseFrequency(s string) (Frequency, error) {
	for f, name := range frequencyNames {
		if name == s {
			return Frequency(f), nil
		}
	}
	return 0, formatErr(s, "unknown frequency", nil)
}

// Weekday is a day code, Sunday first so that it lines up with time.Weekday.
type Weekday int

const (
	Sunday Weekday = iota
	Monday
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
)

var weekdayCodes = [...]string{"SU", "MO", "TU", "WE", "TH", "FR", "SA"}

// Valid reports whether d is one of the seven day codes.
func (d Weekday) Valid() bool {
	return d >= Sunday && d <= Saturday
}

// String returns the two-letter code, e.g. "MO".
func (d Weekday) String() string {
	if !d.Valid() {
		return "Weekday(" + strconv.Itoa(int(d)) + ")"
	}
	return weekdayCodes[d]
}

// Time converts d to the standard library weekday.
func (d Weekday) Time() time.Weekday {
	return time.Weekday(d)
}

// ParseWeekday maps a two-letter code to its Weekday.
func ParseWeekday(code string) (Weekday, error) {
	for d, c := range weekdayCodes {
		if c == code {
			return Weekday(d), nil
		}
	}
	return 0, formatErr(code, "unknown weekday code", nil)
}
