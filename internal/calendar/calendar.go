// Package calendar holds the time primitives for visit scheduling: civil
// dates, times of day, visit slots, and an establishment's visiting rules.
// Everything here is pure domain logic - no I/O, no side effects.
package calendar

import (
	"fmt"
	"time"

	dErrors "github.com/JIATech/SIGVIP-sub002/pkg/domain-errors"
)

// TimeOfDay is a wall-clock time expressed as minutes since midnight,
// 0 (00:00) through 1440 (24:00, used only as a slot or window end).
type TimeOfDay int

// ParseTimeOfDay parses "HH:MM" (24-hour clock) into a TimeOfDay.
func ParseTimeOfDay(raw string) (TimeOfDay, error) {
	parsed, err := time.Parse("15:04", raw)
	if err != nil {
		return 0, dErrors.New(dErrors.CodeInvalidInput, "time of day must be HH:MM, got "+raw)
	}
	return TimeOfDay(parsed.Hour()*60 + parsed.Minute()), nil
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", int(t)/60, int(t)%60)
}

// At anchors the time of day on a civil date, producing a UTC instant.
func (t TimeOfDay) At(date time.Time) time.Time {
	return DateOf(date).Add(time.Duration(t) * time.Minute)
}

// Slot is a half-open visit interval [Start, End) within a single day.
type Slot struct {
	Start TimeOfDay `json:"start"`
	End   TimeOfDay `json:"end"`
}

// Validate rejects empty and reversed slots.
func (s Slot) Validate() error {
	if s.End <= s.Start {
		return dErrors.New(dErrors.CodeInvalidInput,
			fmt.Sprintf("slot end %s must be after start %s", s.End, s.Start))
	}
	if s.Start < 0 || s.End > 24*60 {
		return dErrors.New(dErrors.CodeInvalidInput, "slot must lie within a single day")
	}
	return nil
}

// Overlaps reports whether two slots share any time. Touching endpoints
// (one slot ending exactly when the other starts) do not overlap.
func (s Slot) Overlaps(other Slot) bool {
	return s.Start < other.End && other.Start < s.End
}

func (s Slot) String() string {
	return s.Start.String() + "-" + s.End.String()
}

// DateOf truncates an instant to its civil date at 00:00 UTC. All visit
// dates are normalized through this so map keys and SQL date columns agree.
func DateOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// VisitingRules captures when an establishment receives visitors: a set of
// weekdays and an open/close window shared by all of them.
type VisitingRules struct {
	Days  map[time.Weekday]bool
	Open  TimeOfDay
	Close TimeOfDay
}

// NewVisitingRules builds rules from an explicit day list and window.
func NewVisitingRules(days []time.Weekday, open, close TimeOfDay) (VisitingRules, error) {
	if len(days) == 0 {
		return VisitingRules{}, dErrors.New(dErrors.CodeInvalidInput, "at least one visiting day is required")
	}
	if close <= open {
		return VisitingRules{}, dErrors.New(dErrors.CodeInvalidInput,
			fmt.Sprintf("closing time %s must be after opening time %s", close, open))
	}
	set := make(map[time.Weekday]bool, len(days))
	for _, d := range days {
		set[d] = true
	}
	return VisitingRules{Days: set, Open: open, Close: close}, nil
}

// Contains reports whether the requested slot falls on an allowed weekday
// and lies entirely within the opening window. A malformed slot is the only
// error case; a well-formed slot outside the rules is simply false.
func (r VisitingRules) Contains(date time.Time, slot Slot) (bool, error) {
	if err := slot.Validate(); err != nil {
		return false, err
	}
	if !r.Days[DateOf(date).Weekday()] {
		return false, nil
	}
	return slot.Start >= r.Open && slot.End <= r.Close, nil
}

// DayList returns the allowed weekdays in Sunday-first order, for
// serialization and persistence.
func (r VisitingRules) DayList() []time.Weekday {
	var days []time.Weekday
	for d := time.Sunday; d <= time.Saturday; d++ {
		if r.Days[d] {
			days = append(days, d)
		}
	}
	return days
}
