package normalize

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrUnparsableTime is returned when no known layout matches.
var ErrUnparsableTime = errors.New("unparsable time")

// zonedLayouts carry an offset; the parsed instant is converted into the venue location.
var zonedLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05Z0700",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05 -0700",
	"2006-01-02T15:04Z07:00",
	time.RFC1123Z,
	time.RFC1123,
}

// naiveLayouts carry no offset and are read as venue-local wall time.
var naiveLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"January 2, 2006 3:04 PM",
	"January 2, 2006 3:04PM",
	"Jan 2, 2006 3:04 PM",
	"Jan 2, 2006 3:04PM",
	"Monday, January 2, 2006 3:04 PM",
	"Mon, Jan 2, 2006 3:04 PM",
	"01/02/2006 03:04:05 PM",
	"1/2/2006 3:04:05 PM",
	"1/2/2006 3:04 PM",
	"01/02/2006 15:04",
}

// ParseTime reads the date-time formats seen across inventory and listing feeds.
// Date-only values are rejected because they cannot be compared to a showtime.
func ParseTime(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	value := strings.Join(strings.Fields(s), " ")
	if value == "" {
		return time.Time{}, fmt.Errorf("%w: empty value", ErrUnparsableTime)
	}

	// AM/PM only parses upper-case; month names match case-insensitively.
	for _, candidate := range []string{value, strings.ToUpper(value)} {
		for _, layout := range zonedLayouts {
			if t, err := time.Parse(layout, candidate); err == nil {
				return t.In(loc), nil
			}
		}
		for _, layout := range naiveLayouts {
			if t, err := time.ParseInLocation(layout, candidate, loc); err == nil {
				return t, nil
			}
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrUnparsableTime, s)
}
