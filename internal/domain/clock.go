package domain

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// MaxOffsetHours bounds a user's timezone offset relative to the canonical
// timezone. Real offsets never exceed UTC±14, so a single ±24h wrap is
// always enough when converting.
const MaxOffsetHours = 14

var (
	ErrInvalidClock     = errors.New("invalid clock time")
	ErrOffsetOutOfRange = errors.New("timezone offset out of range")
)

// TimeOfDay is a wall-clock time with minute resolution, stored as "HH:MM".
type TimeOfDay struct {
	Hour   int
	Minute int
}

// ParseClock parses "HH:MM" (e.g. "08:30") into a TimeOfDay.
func ParseClock(s string) (TimeOfDay, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 {
		return TimeOfDay{}, fmt.Errorf("%w: %q", ErrInvalidClock, s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return TimeOfDay{}, fmt.Errorf("%w: hour in %q", ErrInvalidClock, s)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return TimeOfDay{}, fmt.Errorf("%w: minute in %q", ErrInvalidClock, s)
	}
	return TimeOfDay{Hour: h, Minute: m}, nil
}

// String formats the time as zero-padded "HH:MM".
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// Valid reports whether the time is within normal clock ranges.
func (t TimeOfDay) Valid() bool {
	return t.Hour >= 0 && t.Hour <= 23 && t.Minute >= 0 && t.Minute <= 59
}

// ToCanonical converts a user-local time of day into the canonical
// scheduling timezone given the user's hour offset. Minutes pass through
// unchanged; the hour wraps into [0,24) at most once.
func ToCanonical(local TimeOfDay, offsetHours int) (TimeOfDay, error) {
	if err := checkConvertible(local, offsetHours); err != nil {
		return TimeOfDay{}, err
	}
	return TimeOfDay{Hour: wrapHour(local.Hour - offsetHours), Minute: local.Minute}, nil
}

// ToLocal is the exact inverse of ToCanonical:
// ToLocal(ToCanonical(t, o), o) == t for all valid inputs.
func ToLocal(canonical TimeOfDay, offsetHours int) (TimeOfDay, error) {
	if err := checkConvertible(canonical, offsetHours); err != nil {
		return TimeOfDay{}, err
	}
	return TimeOfDay{Hour: wrapHour(canonical.Hour + offsetHours), Minute: canonical.Minute}, nil
}

func checkConvertible(t TimeOfDay, offsetHours int) error {
	if !t.Valid() {
		return fmt.Errorf("%w: %s", ErrInvalidClock, t)
	}
	if offsetHours < -MaxOffsetHours || offsetHours > MaxOffsetHours {
		return fmt.Errorf("%w: %d", ErrOffsetOutOfRange, offsetHours)
	}
	return nil
}

func wrapHour(h int) int {
	if h < 0 {
		return h + 24
	}
	if h >= 24 {
		return h - 24
	}
	return h
}

// ParseSleepHours accepts either a plain number of hours ("7", "7.5") or a
// "HH:MM" duration ("7:30") and returns hours as a float in [0,24].
func ParseSleepHours(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		if v < 0 || v > 24 {
			return 0, fmt.Errorf("%w: %q", ErrInvalidClock, s)
		}
		return v, nil
	}
	t, err := ParseClock(s)
	if err != nil {
		return 0, err
	}
	return float64(t.Hour) + float64(t.Minute)/60.0, nil
}
