package timeline

import (
	"fmt"
	"time"
)

// Resolution is the label granularity used for a visible duration.
type Resolution int

const (
	Hour Resolution = iota
	Day
	Month
	Year
)

// Fixed step sizes. Month and year are calendar-naive and only drive tick
// spacing.
const (
	HourMs  int64 = 60 * 60 * 1000
	DayMs         = 24 * HourMs
	MonthMs       = 30 * DayMs
	YearMs        = 365 * DayMs
)

// Resolution thresholds, inclusive upper bounds on the visible duration.
const (
	hourResolutionMaxMs  = 3 * DayMs
	dayResolutionMaxMs   = 120 * DayMs
	monthResolutionMaxMs = 6 * YearMs
)

// ResolutionFor classifies a visible duration in milliseconds.
func ResolutionFor(durationMs int64) Resolution {
	switch {
	case durationMs <= hourResolutionMaxMs:
		return Hour
	case durationMs <= dayResolutionMaxMs:
		return Day
	case durationMs <= monthResolutionMaxMs:
		return Month
	default:
		return Year
	}
}

// Step returns the tick spacing for the resolution in milliseconds.
func (r Resolution) Step() int64 {
	switch r {
	case Year:
		return YearMs
	case Month:
		return MonthMs
	case Day:
		return DayMs
	default:
		return HourMs
	}
}

// Format renders a tick label for the instant ms. Labels are always
// formatted in UTC so output does not depend on the host timezone.
func (r Resolution) Format(ms int64) string {
	t := time.UnixMilli(ms).UTC()
	switch r {
	case Year:
		return t.Format("2006")
	case Month:
		return t.Format("Jan 2006")
	case Day:
		return t.Format("Jan 2")
	default:
		return t.Format("15:04")
	}
}

func (r Resolution) String() string {
	switch r {
	case Hour:
		return "hour"
	case Day:
		return "day"
	case Month:
		return "month"
	case Year:
		return "year"
	default:
		return fmt.Sprintf("Resolution(%d)", int(r))
	}
}

// ParseResolution is the inverse of Resolution.String.
func ParseResolution(s string) (Resolution, error) {
	switch s {
	case "hour":
		return Hour, nil
	case "day":
		return Day, nil
	case "month":
		return Month, nil
	case "year":
		return Year, nil
	default:
		return Hour, fmt.Errorf("unknown resolution %q", s)
	}
}
