/*
Package recurrence models the RFC 5545 recurrence grammar used to describe
repeating automation schedules: DTSTART, RRULE and EXRULE.

It owns the textual form only. Expanding a schedule into occurrence
timestamps is left to the caller.

# Basic Usage

Parse a schedule, inspect it and write it back in canonical form:

	set, err := recurrence.ParseSet("DTSTART;TZID=America/New_York:20240101T090000 RRULE:FREQ=DAILY;COUNT=5")
	if err != nil {
		return err
	}
	fmt.Println(set.Zone(), set.Inclusions()[0].Frequency())
	fmt.Println(set.Format())

Build a rule field by field. Each setter validates its whole list and leaves
the rule untouched on failure:

	r := recurrence.NewRule(recurrence.Weekly)
	if err := r.SetWeekday(recurrence.Every(recurrence.Monday), recurrence.Every(recurrence.Friday)); err != nil {
		return err
	}
	r.Format() // FREQ=WEEKLY;INTERVAL=1;BYDAY=MO,FR

# Canonical Form

Format picks the By*-fields to write from the rule's frequency, following the
expand/limit table of RFC 5545:

  - MINUTELY writes BYSECOND; HOURLY adds BYMINUTE; DAILY adds BYHOUR;
    WEEKLY adds BYDAY.
  - MONTHLY with BYMONTHDAY writes the DAILY fields then BYMONTHDAY;
    otherwise it writes the WEEKLY fields.
  - YEARLY with BYYEARDAY or BYMONTHDAY writes the DAILY fields, otherwise
    the WEEKLY fields, and then BYMONTHDAY, BYYEARDAY, BYWEEKNO and BYMONTH.
  - BYSETPOS, COUNT and UNTIL close every rule.

# Errors

Parse failures are one of *FormatError, *RangeError, *UnknownKeyError or
*UnknownTimeZoneError. Use errors.As for details or errors.Is with ErrFormat,
ErrRange, ErrUnknownKey and ErrUnknownTimeZone.
*/
package recurrence
