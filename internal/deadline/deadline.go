// Package deadline buckets task deadlines for display.
//
// Only calendar days matter: a deadline at 23:59 and one at 00:01 on the same
// day land in the same bucket.
package deadline

import (
	"fmt"
	"strings"
	"time"
)

type Bucket string

const (
	BucketNone    Bucket = "none"
	BucketOverdue Bucket = "overdue"
	BucketWarning Bucket = "warning"
	BucketNormal  Bucket = "normal"
)

const NoDeadlineLabel = "–"

type Result struct {
	Bucket Bucket
	Label  string
}

// Classify maps a nullable deadline to a bucket relative to today.
// Today counts as overdue.
func Classify(deadline *time.Time, today time.Time) Result {
	if deadline == nil || deadline.IsZero() {
		return Result{Bucket: BucketNone, Label: NoDeadlineLabel}
	}

	diff := DaysBetween(today, *deadline)
	switch {
	case diff == -1:
		return Result{Bucket: BucketOverdue, Label: "Yesterday"}
	case diff < 0:
		return Result{Bucket: BucketOverdue, Label: fmt.Sprintf("%dd ago", -diff)}
	case diff == 0:
		return Result{Bucket: BucketOverdue, Label: "Today"}
	case diff == 1:
		return Result{Bucket: BucketWarning, Label: "Tomorrow"}
	case diff == 2:
		return Result{Bucket: BucketWarning, Label: fmt.Sprintf("%dd", diff)}
	case diff <= 7:
		return Result{Bucket: BucketNormal, Label: fmt.Sprintf("%dd", diff)}
	default:
		y, m, d := calendarDate(*deadline, today.Location())
		return Result{Bucket: BucketNormal, Label: time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Format("Jan 2")}
	}
}

// DaysBetween counts calendar days from today to t, both read in today's
// location. A deadline at exactly UTC midnight is a date-only value and keeps
// its UTC date, so "2026-03-05" is the 5th for every viewer.
func DaysBetween(today, t time.Time) int {
	ty, tm, td := today.Date()
	dy, dm, dd := calendarDate(t, today.Location())
	// UTC midnights keep DST shifts out of the subtraction.
	from := time.Date(ty, tm, td, 0, 0, 0, 0, time.UTC)
	to := time.Date(dy, dm, dd, 0, 0, 0, 0, time.UTC)
	return int(to.Sub(from).Hours() / 24)
}

func calendarDate(t time.Time, loc *time.Location) (int, time.Month, int) {
	if u := t.UTC(); u.Hour() == 0 && u.Minute() == 0 && u.Second() == 0 && u.Nanosecond() == 0 {
		return u.Date()
	}
	return t.In(loc).Date()
}

var lenientLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseLenient accepts the date shapes the API and older clients produce.
// Date-only input becomes UTC midnight of that date. Anything unparseable
// yields nil, which callers treat as "no deadline".
func ParseLenient(raw string) *time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	for _, layout := range lenientLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t
		}
	}
	return nil
}

// Style is the fixed presentation pair of a bucket.
type Style struct {
	Color string
	Bold  bool
}

func StyleOf(b Bucket) Style {
	switch b {
	case BucketOverdue:
		return Style{Color: "red", Bold: true}
	case BucketWarning:
		return Style{Color: "yellow", Bold: true}
	case BucketNormal:
		return Style{Color: "default"}
	default:
		return Style{Color: "gray"}
	}
}
