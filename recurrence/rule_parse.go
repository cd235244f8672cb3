package recurrence

import (
	"strconv"
	"strings"
	"time"
)

const (
	utcLayout      = "20060102T150405Z"
	floatingLayout = "20060102T150405"
	dateLayout     = "20060102"
)

type keyParser func(r *Rule, value string) error

var ruleKeys = map[string]keyParser{
	"FREQ": func(r *Rule, value string) error {
		f, err := ParseFrequency(strings.ToUpper(value))
		if err != nil {
			return err
		}
		r.freq = f
		return nil
	},
	"INTERVAL": func(r *Rule, value string) error {
		n, err := parseInt("INTERVAL", value)
		if err != nil {
			return err
		}
		return r.SetInterval(n)
	},
	"COUNT": func(r *Rule, value string) error {
		n, err := parseInt("COUNT", value)
		if err != nil {
			return err
		}
		return r.SetCount(n)
	},
	"UNTIL": func(r *Rule, value string) error {
		t, err := parseTimestamp(value)
		if err != nil {
			return err
		}
		r.SetUntil(t)
		return nil
	},
	"BYSECOND":   intListParser(fieldSecond),
	"BYMINUTE":   intListParser(fieldMinute),
	"BYHOUR":     intListParser(fieldHour),
	"BYMONTHDAY": intListParser(fieldMonthDay),
	"BYYEARDAY":  intListParser(fieldYearDay),
	"BYWEEKNO":   intListParser(fieldWeekNumber),
	"BYMONTH":    intListParser(fieldMonth),
	"BYSETPOS":   intListParser(fieldPosition),
	"BYDAY": func(r *Rule, value string) error {
		elems := strings.Split(value, ",")
		days := make([]WeekdayOrdinal, 0, len(elems))
		for _, elem := range elems {
			w, err := ParseWeekdayOrdinal(elem)
			if err != nil {
				return err
			}
			days = append(days, w)
		}
		return r.SetWeekday(days...)
	},
}

func intListParser(f field) keyParser {
	return func(r *Rule, value string) error {
		elems := strings.Split(value, ",")
		values := make([]int, 0, len(elems))
		for _, elem := range elems {
			n, err := parseInt(domains[f].key, elem)
			if err != nil {
				return err
			}
			values = append(values, n)
		}
		return r.setInts(f, values)
	}
}

func parseInt(key, value string) (int, error) {
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, formatErr(value, key+" expects an integer", err)
	}
	return n, nil
}

// parseTimestamp reads an UNTIL value. A trailing Z marks UTC; a date-time
// without a zone marker and a bare date are taken as UTC too.
func parseTimestamp(value string) (time.Time, error) {
	var (
		t   time.Time
		err error
	)
	switch len(value) {
	case len(utcLayout):
		t, err = time.Parse(utcLayout, value)
	case len(floatingLayout):
		t, err = time.ParseInLocation(floatingLayout, value, time.UTC)
	case len(dateLayout):
		t, err = time.ParseInLocation(dateLayout, value, time.UTC)
	default:
		return time.Time{}, formatErr(value, "timestamp must look like 20060102T150405Z", nil)
	}
	if err != nil {
		return time.Time{}, formatErr(value, "invalid timestamp", err)
	}
	return t.UTC(), nil
}

// ParseRule parses a rule body such as "FREQ=WEEKLY;BYDAY=MO,WE,FR".
// Components may come in any order; FREQ must appear exactly once. On error
// nothing is returned, so callers never observe a half-built rule.
func ParseRule(text string) (*Rule, error) {
	r := &Rule{interval: 1}
	freqSeen := false
	for _, token := range strings.Split(strings.TrimSpace(text), ";") {
		parts := strings.Split(token, "=")
		if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
			return nil, formatErr(token, "expected KEY=VALUE", nil)
		}
		key := strings.ToUpper(parts[0])
		parse, ok := ruleKeys[key]
		if !ok {
			return nil, &UnknownKeyError{Key: parts[0]}
		}
		if key == "FREQ" {
			if freqSeen {
				return nil, formatErr(text, "FREQ given more than once", nil)
			}
			freqSeen = true
		}
		if err := parse(r, parts[1]); err != nil {
			return nil, err
		}
	}
	if !freqSeen {
		return nil, formatErr(text, "FREQ is required", nil)
	}
	return r, nil
}

// TryParseRule reports success as a boolean instead of an error.
func TryParseRule(text string) (*Rule, bool) {
	r, err := ParseRule(text)
	if err != nil {
		return nil, false
	}
	return r, true
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (r *Rule) UnmarshalText(text []byte) error {
	parsed, err := ParseRule(string(text))
	if err != nil {
		return err
	}
	*r = *parsed
	return nil
}
