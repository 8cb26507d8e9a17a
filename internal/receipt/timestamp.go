package receipt

import (
	"errors"
	"fmt"
	"time"
)

// DisplayLayout renders e.g. "03/05/2024 – 02:30PM".
const DisplayLayout = "01/02/2006 – 03:04PM"

var ErrTimestampFormat = errors.New("invalid timestamp")

// zone-less ISO-8601 forms, read as UTC
var naiveLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// LocalizeTimestamp parses an ISO-8601 timestamp and formats it in loc.
func LocalizeTimestamp(iso string, loc *time.Location) (string, error) {
	t, err := parseISO(iso)
	if err != nil {
		return "", err
	}
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format(DisplayLayout), nil
}

func parseISO(iso string) (time.Time, error) {
	// fractional seconds are accepted by RFC3339 parsing even without a layout for them
	if t, err := time.Parse(time.RFC3339, iso); err == nil {
		return t, nil
	}
	for _, layout := range naiveLayouts {
		if t, err := time.ParseInLocation(layout, iso, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrTimestampFormat, iso)
}
