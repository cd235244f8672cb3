package recurrence

import (
	"os"
	"strings"
	"time"
)

// ZoneResolver looks up a time zone by its TZID.
type ZoneResolver interface {
	LoadLocation(name string) (*time.Location, error)
}

// ZoneResolverFunc adapts a plain function to ZoneResolver.
type ZoneResolverFunc func(name string) (*time.Location, error)

// LoadLocation calls f(name).
func (f ZoneResolverFunc) LoadLocation(name string) (*time.Location, error) {
	return f(name)
}

// PlatformZones resolves names against the local zone database.
var PlatformZones ZoneResolver = ZoneResolverFunc(time.LoadLocation)

// localTimeLink is read to name the host zone when TZ is unset.
var localTimeLink = "/etc/localtime"

func isUTC(loc *time.Location) bool {
	return loc == nil || loc == time.UTC || loc.String() == "UTC"
}

// zoneID returns the TZID written for loc, or "" when DTSTART must use the
// Z-suffixed UTC form: UTC itself, unnamed fixed offsets, and a "Local" zone
// that has no real name.
func zoneID(loc *time.Location) string {
	if isUTC(loc) {
		return ""
	}
	name := loc.String()
	if name == "Local" {
		return ""
	}
	return name
}

// canonicalZone maps loc to a zone whose name can be written as a TZID. The
// host zone is replaced by the IANA zone it names; anything that cannot be
// named becomes UTC.
func canonicalZone(loc *time.Location) *time.Location {
	if isUTC(loc) {
		return time.UTC
	}
	if loc == time.Local || loc.String() == "Local" {
		name := localZoneName()
		if name == "" || name == "UTC" {
			return time.UTC
		}
		named, err := time.LoadLocation(name)
		if err != nil {
			return time.UTC
		}
		return named
	}
	if loc.String() == "" {
		return time.UTC
	}
	return loc
}

// localZoneName names the host zone from TZ, or from the zoneinfo path
// /etc/localtime links to. It returns "" when neither names a zone.
func localZoneName() string {
	if tz, ok := os.LookupEnv("TZ"); ok {
		if tz == "" {
			return "UTC"
		}
		return zoneinfoName(strings.TrimPrefix(tz, ":"))
	}
	target, err := os.Readlink(localTimeLink)
	if err != nil {
		return ""
	}
	if _, name, ok := strings.Cut(target, "zoneinfo/"); ok {
		return name
	}
	return ""
}

// zoneinfoName strips a zoneinfo directory from an absolute TZ value.
func zoneinfoName(tz string) string {
	if !strings.HasPrefix(tz, "/") {
		return tz
	}
	if _, name, ok := strings.Cut(tz, "zoneinfo/"); ok {
		return name
	}
	return ""
}
