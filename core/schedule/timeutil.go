package schedule

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var (
	// ErrInvalidRange reports a malformed time interval (end not after start).
	ErrInvalidRange = errors.New("end time must be after start time")
)

// ClockTime is a 24h "HH:MM" wall-clock string. Zero-padded clock strings
// order lexicographically, so ClockTime values compare with plain < and >.
type ClockTime string

// ParseClock validates `s` and returns it as a ClockTime.
func ParseClock(s string) (ClockTime, error) {
	t := ClockTime(strings.TrimSpace(s))
	if _, err := t.Minutes(); err != nil {
		return "", err
	}
	return t, nil
}

// Minutes returns the clock time as minutes since midnight.
func (t ClockTime) Minutes() (int, error) {
	parts := strings.Split(string(t), ":")
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid clock time %q", t)
	}
	hh, err := strconv.Atoi(parts[0])
	if err != nil || hh < 0 || hh > 23 || len(parts[0]) != 2 {
		return 0, fmt.Errorf("invalid clock time %q", t)
	}
	mm, err := strconv.Atoi(parts[1])
	if err != nil || mm < 0 || mm > 59 || len(parts[1]) != 2 {
		return 0, fmt.Errorf("invalid clock time %q", t)
	}
	return hh*60 + mm, nil
}

// Overlaps reports whether the half-open intervals [aStart,aEnd) and
// [bStart,bEnd) intersect. A session ending at the exact instant another
// starts does not overlap, so back-to-back sessions never collide.
func Overlaps(aStart, aEnd, bStart, bEnd ClockTime) bool {
	switch {
	case aStart >= bStart && aStart < bEnd: // a starts inside b
		return true
	case aEnd > bStart && aEnd <= bEnd: // a ends inside b
		return true
	case aStart <= bStart && aEnd >= bEnd: // a fully contains b
		return true
	}
	return false
}

// DurationMinutes returns the elapsed minutes between two same-day wall-clock
// times. Fails with ErrInvalidRange when end is not strictly after start.
func DurationMinutes(start, end ClockTime) (int, error) {
	s, err := start.Minutes()
	if err != nil {
		return 0, err
	}
	e, err := end.Minutes()
	if err != nil {
		return 0, err
	}
	if e <= s {
		return 0, ErrInvalidRange
	}
	return e - s, nil
}

// DateOnly truncates `t` to its calendar date in UTC.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// SameDate reports whether two timestamps fall on the same calendar date.
func SameDate(a, b time.Time) bool {
	return DateOnly(a).Equal(DateOnly(b))
}
