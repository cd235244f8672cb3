package schedule

import (
	"errors"
	"fmt"
	"strings"

	"github.com/cyp0633/schedrule/recurrence"
	"github.com/emersion/go-ical"
)

// PropExceptionRule is the deprecated RFC 2445 EXRULE property, which go-ical has no constant for
const PropExceptionRule = "EXRULE"

var (
	// ErrMissingStart is returned when a component has no DTSTART property
	ErrMissingStart = errors.New("component has no DTSTART")
)

// ComponentText rebuilds the schedule text of a component from its DTSTART,
// RRULE and EXRULE properties, in that order.
func ComponentText(comp *ical.Component) (string, error) {
	dtstart := comp.Props.Get(ical.PropDateTimeStart)
	if dtstart == nil || dtstart.Value == "" {
		return "", ErrMissingStart
	}

	var parts []string

	start := "DTSTART"
	if tzid := dtstart.Params.Get(ical.ParamTimezoneID); tzid != "" {
		if strings.ContainsFunc(tzid, isSpace) {
			return "", fmt.Errorf("TZID %q cannot be written in a schedule: contains whitespace", tzid)
		}
		start += ";TZID=" + tzid
	}
	parts = append(parts, start+":"+dtstart.Value)

	for _, prop := range comp.Props[ical.PropRecurrenceRule] {
		parts = append(parts, "RRULE:"+prop.Value)
	}
	for _, prop := range comp.Props[PropExceptionRule] {
		parts = append(parts, "EXRULE:"+prop.Value)
	}

	return strings.Join(parts, " "), nil
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\r' || r == '\n'
}

// SetFromComponent extracts the schedule of an iCalendar component. A nil
// resolver uses the platform zone database.
func SetFromComponent(comp *ical.Component, zones recurrence.ZoneResolver) (*recurrence.Set, error) {
	text, err := ComponentText(comp)
	if err != nil {
		return nil, err
	}
	if zones == nil {
		zones = recurrence.PlatformZones
	}
	return recurrence.ParseSet(text, recurrence.WithZoneResolver(zones))
}

// ParseComponent is SetFromComponent through the engine's cache and zone resolver
func (e *Engine) ParseComponent(comp *ical.Component) (*recurrence.Set, error) {
	text, err := ComponentText(comp)
	if err != nil {
		return nil, err
	}
	return e.Parse(text)
}

// ApplyToComponent replaces the DTSTART, RRULE and EXRULE properties of comp
// with the canonical form of set. Other properties are left untouched.
func ApplyToComponent(comp *ical.Component, set *recurrence.Set) {
	start := set.Start()

	dtstart := ical.NewProp(ical.PropDateTimeStart)
	if tzid := set.ZoneID(); tzid == "" {
		dtstart.Value = start.UTC().Format("20060102T150405Z")
	} else {
		dtstart.Params.Set(ical.ParamTimezoneID, tzid)
		dtstart.Value = start.Format("20060102T150405")
	}
	comp.Props.Set(dtstart)

	delete(comp.Props, ical.PropRecurrenceRule)
	delete(comp.Props, PropExceptionRule)

	for _, r := range set.Inclusions() {
		prop := ical.NewProp(ical.PropRecurrenceRule)
		prop.Value = r.Format()
		comp.Props.Add(prop)
	}
	for _, r := range set.Exclusions() {
		prop := ical.NewProp(PropExceptionRule)
		prop.Value = r.Format()
		comp.Props.Add(prop)
	}
}
