package recurrence

import (
	"math"
	"slices"
	"time"

	"github.com/samber/mo"
)

// field identifies one of the By*-lists of a Rule.
type field int

const (
	fieldSecond field = iota
	fieldMinute
	fieldHour
	fieldWeekday
	fieldMonthDay
	fieldYearDay
	fieldWeekNumber
	fieldMonth
	fieldPosition
)

// domain is the accepted value range of an integer field. Signed domains
// also accept [-max, -min], and always have min >= 1 so that 0 is rejected.
type domain struct {
	key    string
	min    int
	max    int
	signed bool
}

var domains = [...]domain{
	fieldSecond:     {key: "BYSECOND", min: 0, max: 60},
	fieldMinute:     {key: "BYMINUTE", min: 0, max: 59},
	fieldHour:       {key: "BYHOUR", min: 0, max: 23},
	fieldWeekday:    {key: "BYDAY", min: 1, max: maxWeekdayOrdinal, signed: true},
	fieldMonthDay:   {key: "BYMONTHDAY", min: 1, max: 31, signed: true},
	fieldYearDay:    {key: "BYYEARDAY", min: 1, max: 366, signed: true},
	fieldWeekNumber: {key: "BYWEEKNO", min: 1, max: 53, signed: true},
	fieldMonth:      {key: "BYMONTH", min: 1, max: 12, signed: true},
	fieldPosition:   {key: "BYSETPOS", min: 1, max: 366, signed: true},
}

var (
	intervalDomain  = domain{key: "INTERVAL", min: 1, max: math.MaxInt}
	countDomain     = domain{key: "COUNT", min: 0, max: math.MaxInt}
	frequencyDomain = domain{key: "FREQ", min: int(Yearly), max: int(Minutely)}
)

func (d domain) contains(v int) bool {
	if v >= d.min && v <= d.max {
		return true
	}
	return d.signed && v <= -d.min && v >= -d.max
}

func (d domain) check(v int) error {
	if d.contains(v) {
		return nil
	}
	return &RangeError{Field: d.key, Value: v, Min: d.min, Max: d.max, Signed: d.signed}
}

// Rule is an RRULE/EXRULE body. The zero value is a yearly rule with interval 1.
//
// Every setter validates its whole input before touching the rule, so a
// failed call leaves the previous value in place. A Rule must not be mutated
// concurrently; once built it is safe to read from several goroutines.
type Rule struct {
	freq     Frequency
	interval int
	count    mo.Option[int]
	until    mo.Option[time.Time]

	seconds     []int
	minutes     []int
	hours       []int
	weekdays    []WeekdayOrdinal
	monthDays   []int
	yearDays    []int
	weekNumbers []int
	months      []int
	positions   []int
}

// NewRule returns a rule with the given frequency and default interval.
// An invalid frequency falls back to Yearly.
func NewRule(freq Frequency) *Rule {
	r := &Rule{interval: 1}
	if freq.Valid() {
		r.freq = freq
	}
	return r
}

// Reset restores the default state: yearly, interval 1, everything else empty.
func (r *Rule) Reset() {
	*r = Rule{interval: 1}
}

// Frequency returns the FREQ value.
func (r *Rule) Frequency() Frequency { return r.freq }

// Interval returns the INTERVAL value, at least 1.
func (r *Rule) Interval() int {
	if r.interval < 1 {
		return 1
	}
	return r.interval
}

// Count returns COUNT, if set.
func (r *Rule) Count() mo.Option[int] { return r.count }

// Until returns UNTIL as a UTC instant, if set.
func (r *Rule) Until() mo.Option[time.Time] { return r.until }

// Seconds returns a copy of BYSECOND.
func (r *Rule) Seconds() []int { return slices.Clone(r.seconds) }

// Minutes returns a copy of BYMINUTE.
func (r *Rule) Minutes() []int { return slices.Clone(r.minutes) }

// Hours returns a copy of BYHOUR.
func (r *Rule) Hours() []int { return slices.Clone(r.hours) }

// Weekdays returns a copy of BYDAY.
func (r *Rule) Weekdays() []WeekdayOrdinal { return slices.Clone(r.weekdays) }

// MonthDays returns a copy of BYMONTHDAY.
func (r *Rule) MonthDays() []int { return slices.Clone(r.monthDays) }

// YearDays returns a copy of BYYEARDAY.
func (r *Rule) YearDays() []int { return slices.Clone(r.yearDays) }

// WeekNumbers returns a copy of BYWEEKNO.
func (r *Rule) WeekNumbers() []int { return slices.Clone(r.weekNumbers) }

// Months returns a copy of BYMONTH.
func (r *Rule) Months() []int { return slices.Clone(r.months) }

// Positions returns a copy of BYSETPOS.
func (r *Rule) Positions() []int { return slices.Clone(r.positions) }

// SetFrequency changes FREQ. An unknown frequency is a RangeError.
func (r *Rule) SetFrequency(f Frequency) error {
	if err := frequencyDomain.check(int(f)); err != nil {
		return err
	}
	r.freq = f
	return nil
}

// SetInterval changes INTERVAL; n must be at least 1.
func (r *Rule) SetInterval(n int) error {
	if err := intervalDomain.check(n); err != nil {
		return err
	}
	r.interval = n
	return nil
}

// SetCount bounds the rule to n occurrences; n must not be negative.
func (r *Rule) SetCount(n int) error {
	if err := countDomain.check(n); err != nil {
		return err
	}
	r.count = mo.Some(n)
	return nil
}

// ClearCount removes COUNT.
func (r *Rule) ClearCount() { r.count = mo.None[int]() }

// SetUntil bounds the rule at t, stored as a UTC instant with second precision.
func (r *Rule) SetUntil(t time.Time) {
	r.until = mo.Some(t.UTC().Truncate(time.Second))
}

// ClearUntil removes UNTIL.
func (r *Rule) ClearUntil() { r.until = mo.None[time.Time]() }

// SetSecond replaces BYSECOND (0..60).
func (r *Rule) SetSecond(values ...int) error { return r.setInts(fieldSecond, values) }

// SetMinute replaces BYMINUTE (0..59).
func (r *Rule) SetMinute(values ...int) error { return r.setInts(fieldMinute, values) }

// SetHour replaces BYHOUR (0..23).
func (r *Rule) SetHour(values ...int) error { return r.setInts(fieldHour, values) }

// SetMonthDay replaces BYMONTHDAY (±1..31).
func (r *Rule) SetMonthDay(values ...int) error { return r.setInts(fieldMonthDay, values) }

// SetYearDay replaces BYYEARDAY (±1..366).
func (r *Rule) SetYearDay(values ...int) error { return r.setInts(fieldYearDay, values) }

// SetWeekNumber replaces BYWEEKNO (±1..53).
func (r *Rule) SetWeekNumber(values ...int) error { return r.setInts(fieldWeekNumber, values) }

// SetMonth replaces BYMONTH (±1..12).
func (r *Rule) SetMonth(values ...int) error { return r.setInts(fieldMonth, values) }

// SetPosition replaces BYSETPOS (±1..366).
func (r *Rule) SetPosition(values ...int) error { return r.setInts(fieldPosition, values) }

// SetWeekday replaces the BYDAY list.
func (r *Rule) SetWeekday(days ...WeekdayOrdinal) error {
	d := domains[fieldWeekday]
	for _, w := range days {
		if !w.Weekday.Valid() {
			return &RangeError{Field: d.key, Value: int(w.Weekday), Min: int(Sunday), Max: int(Saturday)}
		}
		if w.Ordinal != 0 {
			if err := d.check(w.Ordinal); err != nil {
				return err
			}
		}
	}
	r.weekdays = cloneOrNil(days)
	return nil
}

func (r *Rule) setInts(f field, values []int) error {
	d := domains[f]
	for _, v := range values {
		if err := d.check(v); err != nil {
			return err
		}
	}
	*r.ints(f) = cloneOrNil(values)
	return nil
}

// ints returns the storage of an integer By*-list.
func (r *Rule) ints(f field) *[]int {
	switch f {
	case fieldSecond:
		return &r.seconds
	case fieldMinute:
		return &r.minutes
	case fieldHour:
		return &r.hours
	case fieldMonthDay:
		return &r.monthDays
	case fieldYearDay:
		return &r.yearDays
	case fieldWeekNumber:
		return &r.weekNumbers
	case fieldMonth:
		return &r.months
	case fieldPosition:
		return &r.positions
	}
	panic("recurrence: not an integer field")
}

// Clone returns a deep copy of r.
func (r *Rule) Clone() *Rule {
	c := *r
	c.seconds = slices.Clone(r.seconds)
	c.minutes = slices.Clone(r.minutes)
	c.hours = slices.Clone(r.hours)
	c.weekdays = slices.Clone(r.weekdays)
	c.monthDays = slices.Clone(r.monthDays)
	c.yearDays = slices.Clone(r.yearDays)
	c.weekNumbers = slices.Clone(r.weekNumbers)
	c.months = slices.Clone(r.months)
	c.positions = slices.Clone(r.positions)
	return &c
}

// Equal reports whether both rules carry the same fields, list order included.
func (r *Rule) Equal(o *Rule) bool {
	if r == nil || o == nil {
		return r == o
	}
	if r.freq != o.freq || r.Interval() != o.Interval() {
		return false
	}
	rc, rok := r.count.Get()
	oc, ook := o.count.Get()
	if rok != ook || rc != oc {
		return false
	}
	ru, rok := r.until.Get()
	ou, ook := o.until.Get()
	if rok != ook || !ru.Equal(ou) {
		return false
	}
	return slices.Equal(r.seconds, o.seconds) &&
		slices.Equal(r.minutes, o.minutes) &&
		slices.Equal(r.hours, o.hours) &&
		slices.Equal(r.weekdays, o.weekdays) &&
		slices.Equal(r.monthDays, o.monthDays) &&
		slices.Equal(r.yearDays, o.yearDays) &&
		slices.Equal(r.weekNumbers, o.weekNumbers) &&
		slices.Equal(r.months, o.months) &&
		slices.Equal(r.positions, o.positions)
}

func cloneOrNil[T any](values []T) []T {
	if len(values) == 0 {
		return nil
	}
	return slices.Clone(values)
}
