package tui

import (
	"fmt"
	"time"

	"github.com/taskledger/taskledger/internal/clock"
)

// DefaultClock is the default clock used for time formatting.
// It can be replaced in tests.
//
//nolint:gochecknoglobals // Package-level default for dependency injection
var DefaultClock clock.Clock = clock.RealClock{}

// RelativeTime formats a time as a human-readable relative string.
// Examples: "just now", "2 minutes ago", "1 hour ago", "3 days ago".
func RelativeTime(t time.Time) string {
	return RelativeTimeWith(t, DefaultClock)
}

// RelativeTimeWith formats a time relative to the provided clock's now.
func RelativeTimeWith(t time.Time, c clock.Clock) string {
	diff := c.Now().Sub(t)
	if diff < time.Minute {
		return "just now"
	}

	var n int
	var unit string
	switch {
	case diff < time.Hour:
		n, unit = int(diff.Minutes()), "minute"
	case diff < 24*time.Hour:
		n, unit = int(diff.Hours()), "hour"
	case diff < 7*24*time.Hour:
		n, unit = int(diff.Hours()/24), "day"
	default:
		n, unit = int(diff.Hours()/24/7), "week"
	}
	if n == 1 {
		return fmt.Sprintf("1 %s ago", unit)
	}
	return fmt.Sprintf("%d %ss ago", n, unit)
}

// DueLabel formats a due date relative to now, marking overdue dates.
// Returns "-" for tasks without a due date.
func DueLabel(due *time.Time, c clock.Clock) string {
	if due == nil {
		return "-"
	}
	date := due.UTC().Format("2006-01-02")
	if due.Before(c.Now()) {
		return date + " (overdue)"
	}
	return date
}
