package domain

import (
	"time"
)

// DefaultTimezone is the retreat house's local zone. Stay dates are calendar
// days at the property, so normalization is pinned here rather than to the
// server's zone.
const DefaultTimezone = "Asia/Manila"

const dayLayout = "2006-01-02"

// Calendar normalizes timestamps to midnight-aligned calendar days in one
// fixed zone.
type Calendar struct {
	loc *time.Location
}

func NewCalendar(timezone string) (*Calendar, error) {
	if timezone == "" {
		timezone = DefaultTimezone
	}
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, Errorf(KindInvalidDate, "unknown timezone %q", timezone)
	}
	return &Calendar{loc: loc}, nil
}

// Normalize collapses t to midnight of its calendar day in the calendar's
// zone. Time-of-day is discarded.
func (c *Calendar) Normalize(t time.Time) time.Time {
	t = t.In(c.loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, c.loc)
}

// ParseDay parses a YYYY-MM-DD value into a normalized calendar day.
func (c *Calendar) ParseDay(s string) (time.Time, error) {
	t, err := time.ParseInLocation(dayLayout, s, c.loc)
	if err != nil {
		return time.Time{}, Errorf(KindInvalidDate, "%q is not a valid calendar day", s)
	}
	return t, nil
}

func (c *Calendar) Today() time.Time {
	return c.Normalize(time.Now())
}

// FormatDay renders a calendar day back to YYYY-MM-DD.
func FormatDay(t time.Time) string {
	return t.Format(dayLayout)
}

// Overlaps reports whether [aIn, aOut) and [bIn, bOut) intersect under
// half-open semantics: a checkout day equal to a check-in day is a handover,
// not a conflict.
func Overlaps(aIn, aOut, bIn, bOut time.Time) bool {
	return aIn.Before(bOut) && bIn.Before(aOut)
}

// DaysBetween expands [checkIn, checkOut) into the individual calendar days
// it covers, checkout day excluded.
func DaysBetween(checkIn, checkOut time.Time) []time.Time {
	var days []time.Time
	for d := checkIn; d.Before(checkOut); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}
