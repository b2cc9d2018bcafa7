package service

import (
	"fmt"
	"time"
)

// TimeWindow describes when an action is allowed: an hour-of-day range
// and a set of weekdays, interpreted in Location. StartHour == EndHour
// means the whole day; a range wrapping midnight (StartHour > EndHour)
// is allowed, e.g. 18-6.
type TimeWindow struct {
	StartHour int
	EndHour   int
	// Days allowed, as English weekday names ("Monday"). Empty means
	// every day.
	Days     []string
	Location *time.Location
}

// ParseTimeWindow builds a TimeWindow from policy parameters. tz defaults
// to UTC when empty.
func ParseTimeWindow(startHour, endHour int, days []string, tz string) (*TimeWindow, error) {
	if startHour < 0 || startHour > 23 || endHour < 0 || endHour > 23 {
		return nil, fmt.Errorf("hours must be in [0, 23], got %d-%d", startHour, endHour)
	}
	loc := time.UTC
	if tz != "" {
		var err error
		loc, err = time.LoadLocation(tz)
		if err != nil {
			return nil, fmt.Errorf("unknown time zone %q: %w", tz, err)
		}
	}
	for _, day := range days {
		if !validWeekday(day) {
			return nil, fmt.Errorf("unknown weekday %q", day)
		}
	}
	return &TimeWindow{
		StartHour: startHour,
		EndHour:   endHour,
		Days:      days,
		Location:  loc,
	}, nil
}

// Contains reports whether now falls inside the window. It never reads
// the system clock; the caller supplies now so evaluation stays
// deterministic.
func (w *TimeWindow) Contains(now time.Time) bool {
	local := now.In(w.Location)

	if len(w.Days) > 0 {
		dayOK := false
		for _, day := range w.Days {
			if local.Weekday().String() == day {
				dayOK = true
				break
			}
		}
		if !dayOK {
			return false
		}
	}

	hour := local.Hour()
	switch {
	case w.StartHour == w.EndHour:
		return true
	case w.StartHour < w.EndHour:
		return hour >= w.StartHour && hour < w.EndHour
	default:
		return hour >= w.StartHour || hour < w.EndHour
	}
}

func validWeekday(day string) bool {
	for d := time.Sunday; d <= time.Saturday; d++ {
		if d.String() == day {
			return true
		}
	}
	return false
}
