package schedule

import (
	"time"
)

// Info summarizes a parsed schedule for display or diagnostics
type Info struct {
	Input      string    // The text as given, trimmed
	Canonical  string    // Canonical DTSTART/RRULE/EXRULE form
	Start      time.Time // Anchor instant, in Zone
	Zone       string    // IANA name, or "UTC"
	Rules      []string  // Canonical RRULE values (without "RRULE:" prefix)
	Exclusions []string  // Canonical EXRULE values (without "EXRULE:" prefix)
	Lossy      bool      // True if the canonical form drops fields the input set
}
