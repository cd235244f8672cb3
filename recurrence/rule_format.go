package recurrence

import (
	"slices"
	"strconv"
	"strings"
)

// timeOfDay lists, per sub-monthly frequency, the By*-fields it emits. Each
// level adds the next coarser field to the one below it.
var timeOfDay = map[Frequency][]field{
	Minutely: {fieldSecond},
	Hourly:   {fieldSecond, fieldMinute},
	Daily:    {fieldSecond, fieldMinute, fieldHour},
	Weekly:   {fieldSecond, fieldMinute, fieldHour, fieldWeekday},
}

// yearlyTail is appended to every yearly rule regardless of branch.
var yearlyTail = []field{fieldMonthDay, fieldYearDay, fieldWeekNumber, fieldMonth}

// emittedFields decides which By*-fields Format writes, and in which order,
// for the rule's frequency.
func (r *Rule) emittedFields() []field {
	switch r.freq {
	case Monthly:
		if len(r.monthDays) > 0 {
			return append(slices.Clone(timeOfDay[Daily]), []field{fieldMonthDay}...)
		}
		return timeOfDay[Weekly]
	case Yearly:
		if len(r.yearDays) > 0 || len(r.monthDays) > 0 {
			return append(slices.Clone(timeOfDay[Daily]), yearlyTail...)
		}
		return append(slices.Clone(timeOfDay[Weekly]), yearlyTail...)
	default:
		return timeOfDay[r.freq]
	}
}

// Format renders the canonical rule body. FREQ and INTERVAL always lead,
// BYSETPOS, COUNT and UNTIL always trail. Fields the frequency does not
// expand or limit by are left out.
func (r *Rule) Format() string {
	parts := []string{
		"FREQ=" + r.freq.String(),
		"INTERVAL=" + strconv.Itoa(r.Interval()),
	}
	for _, f := range r.emittedFields() {
		parts = r.appendField(parts, f)
	}
	parts = r.appendField(parts, fieldPosition)
	if n, ok := r.count.Get(); ok {
		parts = append(parts, "COUNT="+strconv.Itoa(n))
	}
	if t, ok := r.until.Get(); ok {
		parts = append(parts, "UNTIL="+t.UTC().Format(utcLayout))
	}
	return strings.Join(parts, ";")
}

func (r *Rule) String() string {
	return r.Format()
}

// MarshalText implements encoding.TextMarshaler.
func (r *Rule) MarshalText() ([]byte, error) {
	return []byte(r.Format()), nil
}

func (r *Rule) appendField(parts []string, f field) []string {
	if f == fieldWeekday {
		if len(r.weekdays) == 0 {
			return parts
		}
		codes := make([]string, len(r.weekdays))
		for i, w := range r.weekdays {
			codes[i] = w.Format()
		}
		return append(parts, "BYDAY="+strings.Join(codes, ","))
	}

	values := *r.ints(f)
	if len(values) == 0 {
		return parts
	}
	elems := make([]string, len(values))
	for i, v := range values {
		elems[i] = strconv.Itoa(v)
	}
	return append(parts, domains[f].key+"="+strings.Join(elems, ","))
}
