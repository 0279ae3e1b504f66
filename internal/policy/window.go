package policy

import (
	"fmt"
	"time"
)

// ClockTime is a time of day with minute precision.
type ClockTime struct {
	Hour   int
	Minute int
}

// ParseClockTime parses "HH:MM" in 24-hour form.
func ParseClockTime(s string) (ClockTime, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return ClockTime{}, fmt.Errorf("invalid clock time %q: %w", s, err)
	}
	return ClockTime{Hour: t.Hour(), Minute: t.Minute()}, nil
}

func (c ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

func (c ClockTime) sinceMidnight() time.Duration {
	return time.Duration(c.Hour)*time.Hour + time.Duration(c.Minute)*time.Minute
}

// Window is a daily half-open interval [Start, End) evaluated in Location.
// When Start is after End the window wraps midnight; when they are equal the
// window is empty.
type Window struct {
	Start    ClockTime
	End      ClockTime
	Location *time.Location
}

// Contains reports whether t falls inside the window.
func (w Window) Contains(t time.Time) bool {
	loc := w.Location
	if loc == nil {
		loc = time.Local
	}
	t = t.In(loc)
	d := time.Duration(t.Hour())*time.Hour +
		time.Duration(t.Minute())*time.Minute +
		time.Duration(t.Second())*time.Second +
		time.Duration(t.Nanosecond())

	start, end := w.Start.sinceMidnight(), w.End.sinceMidnight()
	switch {
	case start < end:
		return d >= start && d < end
	case start > end:
		return d >= start || d < end
	default:
		return false
	}
}

func (w Window) String() string {
	loc := w.Location
	if loc == nil {
		loc = time.Local
	}
	return fmt.Sprintf("%s-%s %s", w.Start, w.End, loc)
}
