package feed

import (
	"strings"
	"time"
)

// dateLayouts are tried in order; the first one that parses wins. Layouts
// without a zone yield UTC.
var dateLayouts = []string{
	time.RFC1123,
	time.RFC1123Z,
	"Mon, 2 Jan 2006 15:04:05 MST",
	"Mon, 2 Jan 2006 15:04:05 -0700",
	time.RFC3339,
	"2006-01-02T15:04:05-0700",
	"2006-01-02 15:04:05-0700",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseDate parses a raw publication date. It reports false for empty or
// unrecognised input.
func ParseDate(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, raw)
		if err != nil {
			continue
		}
		if strings.Contains(layout, "MST") {
			return resolveZoneName(t)
		}
		return t, true
	}
	return time.Time{}, false
}

// rfc822Zones are the zone names RFC 822 allows, as offsets in hours.
var rfc822Zones = map[string]int{
	"UTC": 0, "GMT": 0,
	"EST": -5, "EDT": -4,
	"CST": -6, "CDT": -5,
	"MST": -7, "MDT": -6,
	"PST": -8, "PDT": -7,
}

// resolveZoneName replaces the offset time.Parse picked for a zone name,
// which is zero for names it does not know. Names outside RFC 822 make the
// date unparsable.
func resolveZoneName(t time.Time) (time.Time, bool) {
	name, _ := t.Zone()
	hours, ok := rfc822Zones[strings.ToUpper(name)]
	if !ok {
		return time.Time{}, false
	}
	zone := time.FixedZone(name, hours*60*60)
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), zone), true
}

// FormatReadableDate renders a raw date as "January 02, 2006 at 03:04 PM"
// in the zone it was published with. Unparsable input yields "".
func FormatReadableDate(raw string) string {
	t, ok := ParseDate(raw)
	if !ok {
		return ""
	}
	return t.Format("January 02, 2006 at 03:04 PM")
}
