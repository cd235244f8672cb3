package recurrence

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRule_WeeklyByDay(t *testing.T) {
	const text = "FREQ=WEEKLY;INTERVAL=1;BYDAY=MO,WE,FR"

	r, err := ParseRule(text)
	require.NoError(t, err)

	assert.Equal(t, Weekly, r.Frequency())
	assert.Equal(t, 1, r.Interval())
	assert.Equal(t, []WeekdayOrdinal{Every(Monday), Every(Wednesday), Every(Friday)}, r.Weekdays())
	assert.Equal(t, text, r.Format())
}

func TestParseRule_MonthlyLastDay(t *testing.T) {
	const text = "FREQ=MONTHLY;INTERVAL=1;BYMONTHDAY=-1"

	r, err := ParseRule(text)
	require.NoError(t, err)

	assert.Equal(t, []int{-1}, r.MonthDays())
	assert.Equal(t, text, r.Format())
	assert.NotContains(t, r.Format(), "BYDAY")
}

func TestParseRule_RoundTrip(t *testing.T) {
	canonical := []string{
		"FREQ=MINUTELY;INTERVAL=15;BYSECOND=0,30",
		"FREQ=HOURLY;INTERVAL=2;BYSECOND=0;BYMINUTE=0,30;COUNT=12",
		"FREQ=DAILY;INTERVAL=1;BYMINUTE=0;BYHOUR=9,17",
		"FREQ=WEEKLY;INTERVAL=1;BYHOUR=9;BYDAY=MO,TU,WE,TH,FR",
		"FREQ=MONTHLY;INTERVAL=1;BYDAY=-1FR",
		"FREQ=MONTHLY;INTERVAL=1;BYDAY=MO,TU,WE,TH,FR;BYSETPOS=-1",
		"FREQ=MONTHLY;INTERVAL=3;BYHOUR=6;BYMONTHDAY=1,15,-1",
		"FREQ=YEARLY;INTERVAL=1;BYDAY=1MO;BYMONTH=9",
		"FREQ=YEARLY;INTERVAL=1;BYMONTHDAY=25;BYMONTH=12",
		"FREQ=YEARLY;INTERVAL=1;BYYEARDAY=1,100,-1",
		"FREQ=YEARLY;INTERVAL=1;BYDAY=MO;BYWEEKNO=20,-1",
		"FREQ=YEARLY;INTERVAL=1;BYMONTH=-12",
		"FREQ=DAILY;INTERVAL=1;COUNT=3;UNTIL=20240101T000000Z",
		"FREQ=DAILY;INTERVAL=1;COUNT=0",
	}

	for _, text := range canonical {
		t.Run(text, func(t *testing.T) {
			r, err := ParseRule(text)
			require.NoError(t, err)
			assert.Equal(t, text, r.Format())

			again, err := ParseRule(r.Format())
			require.NoError(t, err)
			assert.True(t, r.Equal(again), "re-parsed rule differs: %s vs %s", r, again)
		})
	}
}

func TestParseRule_AnyOrderAndCase(t *testing.T) {
	r, err := ParseRule("bymonthday=-1;count=2;freq=monthly")
	require.NoError(t, err)
	assert.Equal(t, "FREQ=MONTHLY;INTERVAL=1;BYMONTHDAY=-1;COUNT=2", r.Format())
}

func TestParseRule_RepeatedKeyLastWins(t *testing.T) {
	r, err := ParseRule("FREQ=DAILY;BYHOUR=1;BYHOUR=2,3")
	require.NoError(t, err)
	assert.Equal(t, []int{2, 3}, r.Hours())
}

func TestParseRule_Bounds(t *testing.T) {
	tests := []struct {
		text  string
		field string
		ok    bool
	}{
		{text: "FREQ=MINUTELY;BYSECOND=60", ok: true},
		{text: "FREQ=MINUTELY;BYSECOND=61", field: "BYSECOND"},
		{text: "FREQ=MINUTELY;BYSECOND=-1", field: "BYSECOND"},
		{text: "FREQ=HOURLY;BYMINUTE=59", ok: true},
		{text: "FREQ=HOURLY;BYMINUTE=60", field: "BYMINUTE"},
		{text: "FREQ=DAILY;BYHOUR=0,23", ok: true},
		{text: "FREQ=DAILY;BYHOUR=24", field: "BYHOUR"},
		{text: "FREQ=MONTHLY;BYMONTHDAY=31", ok: true},
		{text: "FREQ=MONTHLY;BYMONTHDAY=-31", ok: true},
		{text: "FREQ=MONTHLY;BYMONTHDAY=0", field: "BYMONTHDAY"},
		{text: "FREQ=MONTHLY;BYMONTHDAY=32", field: "BYMONTHDAY"},
		{text: "FREQ=YEARLY;BYYEARDAY=366,-366", ok: true},
		{text: "FREQ=YEARLY;BYYEARDAY=367", field: "BYYEARDAY"},
		{text: "FREQ=YEARLY;BYWEEKNO=-53", ok: true},
		{text: "FREQ=YEARLY;BYWEEKNO=0", field: "BYWEEKNO"},
		{text: "FREQ=YEARLY;BYMONTH=-1,12", ok: true},
		{text: "FREQ=YEARLY;BYMONTH=13", field: "BYMONTH"},
		{text: "FREQ=MONTHLY;BYSETPOS=-366", ok: true},
		{text: "FREQ=MONTHLY;BYSETPOS=0", field: "BYSETPOS"},
		{text: "FREQ=DAILY;INTERVAL=0", field: "INTERVAL"},
		{text: "FREQ=DAILY;COUNT=-1", field: "COUNT"},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			_, err := ParseRule(tt.text)
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			var rangeErr *RangeError
			require.ErrorAs(t, err, &rangeErr)
			assert.Equal(t, tt.field, rangeErr.Field)
			assert.ErrorIs(t, err, ErrRange)
		})
	}
}

func TestParseRule_Errors(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		target error
	}{
		{name: "empty", text: "", target: ErrFormat},
		{name: "missing FREQ", text: "INTERVAL=2", target: ErrFormat},
		{name: "FREQ twice", text: "FREQ=DAILY;FREQ=WEEKLY", target: ErrFormat},
		{name: "unknown frequency", text: "FREQ=FORTNIGHTLY", target: ErrFormat},
		{name: "no equals", text: "FREQ=DAILY;INTERVAL", target: ErrFormat},
		{name: "empty value", text: "FREQ=DAILY;INTERVAL=", target: ErrFormat},
		{name: "empty key", text: "FREQ=DAILY;=2", target: ErrFormat},
		{name: "two equals", text: "FREQ=DAILY;COUNT=1=2", target: ErrFormat},
		{name: "trailing separator", text: "FREQ=DAILY;", target: ErrFormat},
		{name: "not an integer", text: "FREQ=DAILY;INTERVAL=x", target: ErrFormat},
		{name: "empty list element", text: "FREQ=DAILY;BYHOUR=1,,2", target: ErrFormat},
		{name: "bad weekday", text: "FREQ=WEEKLY;BYDAY=MO,XX", target: ErrFormat},
		{name: "weekday ordinal out of range", text: "FREQ=MONTHLY;BYDAY=54MO", target: ErrFormat},
		{name: "bad until", text: "FREQ=DAILY;UNTIL=2024", target: ErrFormat},
		{name: "until with offset", text: "FREQ=DAILY;UNTIL=20240101T000000+", target: ErrFormat},
		{name: "unknown key", text: "FREQ=DAILY;WKST=MO", target: ErrUnknownKey},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := ParseRule(tt.text)
			assert.Nil(t, r)
			assert.ErrorIs(t, err, tt.target)

			_, ok := TryParseRule(tt.text)
			assert.False(t, ok)
		})
	}
}

func TestParseRule_UnknownKeyNamesKey(t *testing.T) {
	_, err := ParseRule("FREQ=DAILY;X-NAME=foo")
	var keyErr *UnknownKeyError
	require.ErrorAs(t, err, &keyErr)
	assert.Equal(t, "X-NAME", keyErr.Key)
	assert.Contains(t, err.Error(), "X-NAME")
}

func TestParseRule_Until(t *testing.T) {
	want := time.Date(2024, 1, 31, 23, 59, 59, 0, time.UTC)

	tests := []struct {
		value string
		want  time.Time
	}{
		{value: "20240131T235959Z", want: want},
		{value: "20240131T235959", want: want},
		{value: "20240131", want: time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			r, err := ParseRule("FREQ=DAILY;UNTIL=" + tt.value)
			require.NoError(t, err)

			until, ok := r.Until().Get()
			require.True(t, ok)
			assert.True(t, tt.want.Equal(until))
			assert.Equal(t, time.UTC, until.Location())
			assert.Contains(t, r.Format(), "UNTIL="+tt.want.Format(utcLayout))
		})
	}
}

func TestRule_SettersAreAllOrNothing(t *testing.T) {
	tests := []struct {
		name  string
		set   func(r *Rule, values ...int) error
		get   func(r *Rule) []int
		good  []int
		bad   []int
		field string
	}{
		{name: "second", set: (*Rule).SetSecond, get: (*Rule).Seconds, good: []int{0, 60}, bad: []int{1, 61}, field: "BYSECOND"},
		{name: "minute", set: (*Rule).SetMinute, get: (*Rule).Minutes, good: []int{0, 59}, bad: []int{1, 60}, field: "BYMINUTE"},
		{name: "hour", set: (*Rule).SetHour, get: (*Rule).Hours, good: []int{9, 17}, bad: []int{10, 24}, field: "BYHOUR"},
		{name: "month day", set: (*Rule).SetMonthDay, get: (*Rule).MonthDays, good: []int{1, -31}, bad: []int{2, 0}, field: "BYMONTHDAY"},
		{name: "year day", set: (*Rule).SetYearDay, get: (*Rule).YearDays, good: []int{366, -1}, bad: []int{5, -367}, field: "BYYEARDAY"},
		{name: "week number", set: (*Rule).SetWeekNumber, get: (*Rule).WeekNumbers, good: []int{1, -53}, bad: []int{2, 54}, field: "BYWEEKNO"},
		{name: "month", set: (*Rule).SetMonth, get: (*Rule).Months, good: []int{1, -12}, bad: []int{3, 13}, field: "BYMONTH"},
		{name: "position", set: (*Rule).SetPosition, get: (*Rule).Positions, good: []int{1, -1}, bad: []int{2, 0}, field: "BYSETPOS"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRule(Yearly)
			require.NoError(t, tt.set(r, tt.good...))

			err := tt.set(r, tt.bad...)
			var rangeErr *RangeError
			require.ErrorAs(t, err, &rangeErr)
			assert.Equal(t, tt.field, rangeErr.Field)
			assert.Equal(t, tt.bad[1], rangeErr.Value)
			assert.Equal(t, tt.good, tt.get(r))

			require.NoError(t, tt.set(r))
			assert.Empty(t, tt.get(r))
		})
	}
}

func TestRule_SetWeekday(t *testing.T) {
	r := NewRule(Monthly)
	require.NoError(t, r.SetWeekday(Nth(-1, Friday)))

	err := r.SetWeekday(Every(Monday), Nth(54, Monday))
	assert.ErrorIs(t, err, ErrRange)

	err = r.SetWeekday(WeekdayOrdinal{Weekday: Weekday(9)})
	assert.ErrorIs(t, err, ErrRange)

	assert.Equal(t, []WeekdayOrdinal{Nth(-1, Friday)}, r.Weekdays())
}

func TestRule_ScalarSetters(t *testing.T) {
	r := NewRule(Daily)

	require.NoError(t, r.SetInterval(3))
	assert.ErrorIs(t, r.SetInterval(0), ErrRange)
	assert.Equal(t, 3, r.Interval())

	require.NoError(t, r.SetCount(0))
	assert.ErrorIs(t, r.SetCount(-5), ErrRange)
	assert.Equal(t, 0, r.Count().MustGet())
	r.ClearCount()
	assert.False(t, r.Count().IsPresent())

	assert.ErrorIs(t, r.SetFrequency(Frequency(42)), ErrRange)
	assert.Equal(t, Daily, r.Frequency())

	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	r.SetUntil(time.Date(2024, 6, 1, 9, 0, 0, 500, ny))
	until := r.Until().MustGet()
	assert.Equal(t, time.UTC, until.Location())
	assert.True(t, time.Date(2024, 6, 1, 13, 0, 0, 0, time.UTC).Equal(until))
	r.ClearUntil()
	assert.False(t, r.Until().IsPresent())
}

func TestRule_Reset(t *testing.T) {
	r, err := ParseRule("FREQ=HOURLY;INTERVAL=4;BYMINUTE=5;COUNT=9;UNTIL=20250101T000000Z")
	require.NoError(t, err)

	r.Reset()

	assert.True(t, r.Equal(&Rule{}))
	assert.Equal(t, "FREQ=YEARLY;INTERVAL=1", r.Format())
}

func TestRule_FormatByFrequency(t *testing.T) {
	build := func(freq Frequency) *Rule {
		r := NewRule(freq)
		require.NoError(t, r.SetSecond(0, 30))
		require.NoError(t, r.SetMinute(15))
		require.NoError(t, r.SetHour(9))
		require.NoError(t, r.SetWeekday(Every(Monday), Nth(-1, Friday)))
		require.NoError(t, r.SetMonthDay(1, -1))
		require.NoError(t, r.SetYearDay(100))
		require.NoError(t, r.SetWeekNumber(20))
		require.NoError(t, r.SetMonth(3))
		require.NoError(t, r.SetPosition(-1))
		require.NoError(t, r.SetCount(10))
		return r
	}

	tests := []struct {
		freq     Frequency
		expected string
	}{
		{Minutely, "FREQ=MINUTELY;INTERVAL=1;BYSECOND=0,30;BYSETPOS=-1;COUNT=10"},
		{Hourly, "FREQ=HOURLY;INTERVAL=1;BYSECOND=0,30;BYMINUTE=15;BYSETPOS=-1;COUNT=10"},
		{Daily, "FREQ=DAILY;INTERVAL=1;BYSECOND=0,30;BYMINUTE=15;BYHOUR=9;BYSETPOS=-1;COUNT=10"},
		{Weekly, "FREQ=WEEKLY;INTERVAL=1;BYSECOND=0,30;BYMINUTE=15;BYHOUR=9;BYDAY=MO,-1FR;BYSETPOS=-1;COUNT=10"},
		{Monthly, "FREQ=MONTHLY;INTERVAL=1;BYSECOND=0,30;BYMINUTE=15;BYHOUR=9;BYMONTHDAY=1,-1;BYSETPOS=-1;COUNT=10"},
		{Yearly, "FREQ=YEARLY;INTERVAL=1;BYSECOND=0,30;BYMINUTE=15;BYHOUR=9;BYMONTHDAY=1,-1;BYYEARDAY=100;BYWEEKNO=20;BYMONTH=3;BYSETPOS=-1;COUNT=10"},
	}

	for _, tt := range tests {
		t.Run(tt.freq.String(), func(t *testing.T) {
			assert.Equal(t, tt.expected, build(tt.freq).Format())
		})
	}
}

func TestRule_FormatFallbacks(t *testing.T) {
	t.Run("monthly without month days expands by weekday", func(t *testing.T) {
		r := NewRule(Monthly)
		require.NoError(t, r.SetHour(8))
		require.NoError(t, r.SetWeekday(Nth(2, Tuesday)))
		require.NoError(t, r.SetMonth(5))
		assert.Equal(t, "FREQ=MONTHLY;INTERVAL=1;BYHOUR=8;BYDAY=2TU", r.Format())
	})

	t.Run("yearly without day lists expands by weekday then appends tail", func(t *testing.T) {
		r := NewRule(Yearly)
		require.NoError(t, r.SetWeekday(Nth(-1, Friday)))
		require.NoError(t, r.SetWeekNumber(20))
		require.NoError(t, r.SetMonth(3))
		assert.Equal(t, "FREQ=YEARLY;INTERVAL=1;BYDAY=-1FR;BYWEEKNO=20;BYMONTH=3", r.Format())
	})

	t.Run("yearly with year days suppresses weekdays", func(t *testing.T) {
		r := NewRule(Yearly)
		require.NoError(t, r.SetWeekday(Every(Monday)))
		require.NoError(t, r.SetYearDay(1, -1))
		assert.Equal(t, "FREQ=YEARLY;INTERVAL=1;BYYEARDAY=1,-1", r.Format())
	})

	t.Run("position without other qualifiers is kept", func(t *testing.T) {
		r := NewRule(Daily)
		require.NoError(t, r.SetPosition(1))
		assert.Equal(t, "FREQ=DAILY;INTERVAL=1;BYSETPOS=1", r.Format())
	})
}

func TestRule_CloneIsIndependent(t *testing.T) {
	r, err := ParseRule("FREQ=WEEKLY;BYDAY=MO,FR;COUNT=4")
	require.NoError(t, err)

	c := r.Clone()
	require.True(t, r.Equal(c))

	require.NoError(t, c.SetWeekday(Every(Sunday)))
	assert.False(t, r.Equal(c))
	assert.Equal(t, []WeekdayOrdinal{Every(Monday), Every(Friday)}, r.Weekdays())
}

func TestRule_AccessorsReturnCopies(t *testing.T) {
	r := NewRule(Daily)
	require.NoError(t, r.SetHour(9, 17))

	hours := r.Hours()
	hours[0] = 99
	assert.Equal(t, []int{9, 17}, r.Hours())
}

func TestRule_Text(t *testing.T) {
	type job struct {
		Rule *Rule `json:"rule"`
	}

	r, err := ParseRule("FREQ=DAILY;BYHOUR=9")
	require.NoError(t, err)

	data, err := json.Marshal(job{Rule: r})
	require.NoError(t, err)
	assert.JSONEq(t, `{"rule":"FREQ=DAILY;INTERVAL=1;BYHOUR=9"}`, string(data))

	var decoded job
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.True(t, r.Equal(decoded.Rule))

	err = json.Unmarshal([]byte(`{"rule":"FREQ=DAILY;BYHOUR=25"}`), &decoded)
	assert.ErrorIs(t, err, ErrRange)
}
