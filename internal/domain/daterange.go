package domain

import (
	"fmt"
	"strings"
	"time"
)

// DefaultRangeDays is the width of the default selection, ending today.
const DefaultRangeDays = 30

const dateLayout = "2006-01-02"

// dateInputLayouts are accepted for user-supplied range bounds.
var dateInputLayouts = []string{"2006-1-2", "2006/1/2"}

// DateRange is an inclusive window of calendar dates. Both bounds are stored
// as midnight in the same location. An event is inside the range when
// Start <= OccurredAt < End + 1 day, so the whole end date is included.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// NewDateRange truncates start and end to their calendar dates (in start's
// location) and rejects start after end with an *InvalidRangeError. Bounds
// are never swapped.
func NewDateRange(start, end time.Time) (DateRange, error) {
	loc := start.Location()
	s := startOfDay(start, loc)
	r := DateRange{Start: s, End: startOfDay(end, loc)}
	if err := r.Validate(); err != nil {
		return DateRange{}, err
	}
	return r, nil
}

// DefaultDateRange returns [today - days, today] in loc, using the package clock.
func DefaultDateRange(loc *time.Location, days int) DateRange {
	if loc == nil {
		loc = time.UTC
	}
	today := startOfDay(clock.Now().In(loc), loc)
	return DateRange{Start: today.AddDate(0, 0, -days), End: today}
}

// ParseDateRange builds a range from user input. Both bounds blank selects
// the default range; exactly one blank bound is a partial selection and is
// rejected, as is unparseable text or start after end.
func ParseDateRange(startText, endText string, loc *time.Location, defaultDays int) (DateRange, error) {
	if loc == nil {
		loc = time.UTC
	}
	startText = strings.TrimSpace(startText)
	endText = strings.TrimSpace(endText)

	switch {
	case startText == "" && endText == "":
		return DefaultDateRange(loc, defaultDays), nil
	case startText == "" || endText == "":
		return DateRange{}, &InvalidRangeError{Reason: "both start and end dates are required"}
	}

	start, err := parseDateInput(startText, loc)
	if err != nil {
		return DateRange{}, &InvalidRangeError{Reason: fmt.Sprintf("start: %v", err)}
	}
	end, err := parseDateInput(endText, loc)
	if err != nil {
		return DateRange{}, &InvalidRangeError{Reason: fmt.Sprintf("end: %v", err)}
	}
	return NewDateRange(start, end)
}

// Contains reports whether t falls on or between the range's dates.
func (r DateRange) Contains(t time.Time) bool {
	return !t.Before(r.Start) && t.Before(r.endExclusive())
}

// Days is the number of calendar dates covered, bounds included.
func (r DateRange) Days() int {
	n := 0
	for d := r.Start; !d.After(r.End); d = d.AddDate(0, 0, 1) {
		n++
	}
	return n
}

func (r DateRange) String() string {
	return r.Start.Format(dateLayout) + ".." + r.End.Format(dateLayout)
}

// endExclusive is midnight after End; AddDate keeps it correct across DST shifts.
func (r DateRange) endExclusive() time.Time {
	return r.End.AddDate(0, 0, 1)
}

// Validate rejects a range whose start is after its end. Ranges built by
// NewDateRange are always valid; this guards hand-assembled literals.
func (r DateRange) Validate() error {
	if r.Start.After(r.End) {
		return &InvalidRangeError{
			Reason: fmt.Sprintf("start %s is after end %s", r.Start.Format(dateLayout), r.End.Format(dateLayout)),
		}
	}
	return nil
}

// FilterByDate returns, in input order, the events whose OccurredAt falls in r.
// The result is a new slice; the input is not modified. An invalid range
// returns an *InvalidRangeError and no events.
func FilterByDate(events []QuakeEvent, r DateRange) ([]QuakeEvent, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	out := make([]QuakeEvent, 0, len(events))
	for i := range events {
		if r.Contains(events[i].OccurredAt) {
			out = append(out, events[i])
		}
	}
	return out, nil
}

// FilterBetween validates the inclusive date window [start, end] and filters
// events by it.
func FilterBetween(events []QuakeEvent, start, end time.Time) ([]QuakeEvent, error) {
	r, err := NewDateRange(start, end)
	if err != nil {
		return nil, err
	}
	return FilterByDate(events, r)
}

func parseDateInput(s string, loc *time.Location) (time.Time, error) {
	for _, layout := range dateInputLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

func startOfDay(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}
