package template

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	ledgererrors "github.com/taskledger/taskledger/internal/errors"
)

// Interval is the repeat cadence of a recurrence rule.
type Interval string

// Supported recurrence intervals.
const (
	IntervalDaily  Interval = "daily"
	IntervalWeekly Interval = "weekly"
)

// weekdayNames maps the three-letter day token in weekly rules.
//
//nolint:gochecknoglobals // immutable lookup table
var weekdayNames = map[string]time.Weekday{
	"sun": time.Sunday,
	"mon": time.Monday,
	"tue": time.Tuesday,
	"wed": time.Wednesday,
	"thu": time.Thursday,
	"fri": time.Friday,
	"sat": time.Saturday,
}

// Recurrence is a parsed recurrence rule. The textual forms are
// "daily@HH:MM" and "weekly:<day>@HH:MM", e.g. "weekly:mon@17:30".
type Recurrence struct {
	Interval Interval
	Weekday  time.Weekday // weekly rules only
	Hour     int
	Minute   int
}

// ParseRecurrence parses a recurrence rule from its textual form.
func ParseRecurrence(s string) (Recurrence, error) {
	head, clock, ok := strings.Cut(strings.ToLower(strings.TrimSpace(s)), "@")
	if !ok {
		return Recurrence{}, fmt.Errorf("%w: %q missing @HH:MM", ledgererrors.ErrInvalidRecurrence, s)
	}

	var rec Recurrence
	switch {
	case head == string(IntervalDaily):
		rec.Interval = IntervalDaily
	case strings.HasPrefix(head, string(IntervalWeekly)+":"):
		day := strings.TrimPrefix(head, string(IntervalWeekly)+":")
		weekday, known := weekdayNames[day]
		if !known {
			return Recurrence{}, fmt.Errorf("%w: unknown weekday %q", ledgererrors.ErrInvalidRecurrence, day)
		}
		rec.Interval = IntervalWeekly
		rec.Weekday = weekday
	default:
		return Recurrence{}, fmt.Errorf("%w: %q", ledgererrors.ErrInvalidRecurrence, s)
	}

	hour, minute, err := parseClock(clock)
	if err != nil {
		return Recurrence{}, err
	}
	rec.Hour, rec.Minute = hour, minute
	return rec, nil
}

// Next returns the first occurrence strictly after the given time,
// in that time's location.
func (r Recurrence) Next(after time.Time) time.Time {
	next := time.Date(after.Year(), after.Month(), after.Day(), r.Hour, r.Minute, 0, 0, after.Location())

	switch r.Interval {
	case IntervalWeekly:
		for next.Weekday() != r.Weekday || !next.After(after) {
			next = next.AddDate(0, 0, 1)
		}
	case IntervalDaily:
		if !next.After(after) {
			next = next.AddDate(0, 0, 1)
		}
	}
	return next
}

// String renders the rule back to its textual form.
func (r Recurrence) String() string {
	clock := fmt.Sprintf("%02d:%02d", r.Hour, r.Minute)
	if r.Interval == IntervalWeekly {
		return fmt.Sprintf("weekly:%s@%s", strings.ToLower(r.Weekday.String()[:3]), clock)
	}
	return "daily@" + clock
}

func parseClock(clock string) (int, int, error) {
	hourStr, minuteStr, ok := strings.Cut(clock, ":")
	if !ok {
		return 0, 0, fmt.Errorf("%w: clock %q must be HH:MM", ledgererrors.ErrInvalidRecurrence, clock)
	}
	hour, err := strconv.Atoi(hourStr)
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("%w: hour %q out of range", ledgererrors.ErrInvalidRecurrence, hourStr)
	}
	minute, err := strconv.Atoi(minuteStr)
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("%w: minute %q out of range", ledgererrors.ErrInvalidRecurrence, minuteStr)
	}
	return hour, minute, nil
}
