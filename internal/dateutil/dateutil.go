// Package dateutil normalizes the date formats found in personal finance
// exports into canonical ISO (YYYY-MM-DD) strings.
package dateutil

import (
	"fmt"
	"time"
)

// ISOLayout is the canonical date layout used throughout the ledger model.
const ISOLayout = "2006-01-02"

// defaultLayouts is the ordered list of layouts tried by ParseDate. Month-first
// variants come before day-first so that US-style Quicken exports win on
// ambiguous dates; the trailing layouts cover GnuCash timestamps with timezone
// and Microsoft Money timestamps.
var defaultLayouts = []string{
	"01.02.06",
	"02.01.06",
	"01/02/06",
	"02/01/06",
	"2006-01-02",
	"2006/01/02",
	"2006-01-02 15:04:05 -0700",
	"01/02/06 15:04:05",
}

// ISODate formats a time as YYYY-MM-DD.
func ISODate(t time.Time) string {
	return t.Format(ISOLayout)
}

// ParseDate tries the given layouts (or the default list if none are given)
// and returns the first successful ISO conversion. It never panics; ok is
// false when no layout matches and callers decide whether that is fatal.
func ParseDate(s string, layouts ...string) (iso string, ok bool) {
	if len(layouts) == 0 {
		layouts = defaultLayouts
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return ISODate(t), true
		}
	}
	return "", false
}

// DateRange is an inclusive start/end pair of ISO dates.
type DateRange struct {
	Start string
	End   string
}

// SplitDateRange divides the inclusive day range [start, end] into n
// contiguous sub-ranges whose lengths differ by at most one day; the first
// total%n ranges get the extra day. The last range's end is forced to the
// requested end date so no drift can accumulate from the division.
func SplitDateRange(start, end string, n int) ([]DateRange, error) {
	startTime, err := time.Parse(ISOLayout, start)
	if err != nil {
		return nil, fmt.Errorf("parsing start date %q: %w", start, err)
	}
	endTime, err := time.Parse(ISOLayout, end)
	if err != nil {
		return nil, fmt.Errorf("parsing end date %q: %w", end, err)
	}
	if n <= 0 {
		return nil, fmt.Errorf("number of ranges must be positive, got %d", n)
	}

	totalDays := int(endTime.Sub(startTime).Hours() / 24)
	baseLength := totalDays / n
	extraDays := totalDays % n

	ranges := make([]DateRange, 0, n)
	currentStart := startTime
	for i := 0; i < n; i++ {
		length := baseLength
		if i < extraDays {
			length++
		}
		currentEnd := currentStart.AddDate(0, 0, length-1)
		ranges = append(ranges, DateRange{Start: ISODate(currentStart), End: ISODate(currentEnd)})
		currentStart = currentEnd.AddDate(0, 0, 1)
	}

	ranges[n-1].End = end
	return ranges, nil
}
