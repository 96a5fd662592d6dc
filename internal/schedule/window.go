// Package schedule classifies quiz time windows against wall-clock time.
//
// Every call site that needs to know whether a quiz window is open — the
// submission gate, the teacher dashboard counts, the student quiz list and
// the retention sweeper — goes through Evaluate, so the midnight-crossing
// rule lives in exactly one place.
package schedule

import (
	"fmt"
	"time"
)

// Status is the time-derived state of a quiz window.
type Status string

const (
	StatusUnscheduled Status = "unscheduled"
	StatusUpcoming    Status = "upcoming"
	StatusActive      Status = "active"
	StatusExpired     Status = "expired"
)

// Evaluate classifies a quiz window against now.
//
// A window is only considered scheduled when all three of scheduleDate,
// startTime and endTime are present and well-formed; anything else is
// StatusUnscheduled regardless of what the stored is_scheduled flag says.
// A window whose end time-of-day is not after its start time-of-day spans
// midnight: its end instant falls on the following day.
//
// Evaluate is a pure function of its four inputs. The window is the
// half-open range [start, end): now == start is active, now == end is
// expired.
func Evaluate(scheduleDate *time.Time, startTime, endTime *string, now time.Time) Status {
	if scheduleDate == nil || startTime == nil || *startTime == "" || endTime == nil || *endTime == "" {
		return StatusUnscheduled
	}

	start, end, err := Bounds(*scheduleDate, *startTime, *endTime, now.Location())
	if err != nil {
		return StatusUnscheduled
	}

	switch {
	case now.Before(start):
		return StatusUpcoming
	case now.Before(end):
		return StatusActive
	default:
		return StatusExpired
	}
}

// Bounds computes the [start, end) instants of a window in loc.
// If the end time-of-day does not come after the start time-of-day, the
// end instant is advanced one calendar day.
func Bounds(scheduleDate time.Time, startTime, endTime string, loc *time.Location) (start, end time.Time, err error) {
	sh, sm, err := parseClock(startTime)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	eh, em, err := parseClock(endTime)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}

	y, m, d := scheduleDate.Date()
	start = time.Date(y, m, d, sh, sm, 0, 0, loc)
	end = time.Date(y, m, d, eh, em, 0, 0, loc)

	if !end.After(start) {
		end = end.AddDate(0, 0, 1)
	}
	return start, end, nil
}

// parseClock parses a 24-hour "HH:MM" string.
func parseClock(s string) (hour, minute int, err error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, 0, fmt.Errorf("parse clock %q: %w", s, err)
	}
	return t.Hour(), t.Minute(), nil
}
