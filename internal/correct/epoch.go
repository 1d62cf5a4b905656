package correct

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// CatalogEpoch is the catalog reference epoch, J2015.5 (Gaia DR2).
var CatalogEpoch = time.Date(2015, time.July, 2, 12, 0, 0, 0, time.UTC)

// SecondsPerYear is one Julian year of 365.25 days.
const SecondsPerYear = 365.25 * 86400

// epochLayouts are the calendar forms accepted for an observation time.
var epochLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02-15:04:05",
	"2006-01-02",
}

// ParseEpoch converts an observation-time argument to Julian years past
// the catalog epoch. A bare number is read as a fractional calendar year
// (2016.0 is half a year past J2015.5); anything else must match one of
// the accepted calendar-date forms, taken as UTC.
func ParseEpoch(arg string) (float64, error) {
	s := strings.TrimSpace(arg)
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f - 2015.5, nil
	}
	for _, layout := range epochLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			sec := float64(t.Unix()-CatalogEpoch.Unix()) + float64(t.Nanosecond())/1e9
			return sec / SecondsPerYear, nil
		}
	}
	return 0, fmt.Errorf("cannot parse observation time %q", arg)
}
