package domain

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// RecurrenceKind selects which fields of the cron expression are populated.
type RecurrenceKind string

const (
	RecurDaily   RecurrenceKind = "daily"
	RecurWeekly  RecurrenceKind = "weekly"
	RecurMonthly RecurrenceKind = "monthly"
)

var (
	ErrUnknownRecurrence  = errors.New("unknown recurrence kind")
	ErrEmptyWeekdays      = errors.New("weekly recurrence needs at least one weekday")
	ErrEmptyMonthdays     = errors.New("monthly recurrence needs at least one day of month")
	ErrMonthdayOutOfRange = errors.New("day of month out of range")
)

// Recurrence describes how often a custom reminder repeats.
// Weekdays use Go's time.Weekday convention (0=Sunday .. 6=Saturday).
type Recurrence struct {
	Kind      RecurrenceKind
	Weekdays  []time.Weekday
	Monthdays []int
}

// BuildCronSpec emits a five-field cron expression
// ("minute hour day-of-month month day-of-week") for the given recurrence
// at the given canonical-timezone time. It only builds the string; firing
// it is the dispatcher's job.
func BuildCronSpec(r Recurrence, at TimeOfDay) (string, error) {
	if !at.Valid() {
		return "", fmt.Errorf("%w: %s", ErrInvalidClock, at)
	}
	switch r.Kind {
	case RecurDaily:
		return fmt.Sprintf("%d %d * * *", at.Minute, at.Hour), nil

	case RecurWeekly:
		if len(r.Weekdays) == 0 {
			return "", ErrEmptyWeekdays
		}
		days := make([]int, 0, len(r.Weekdays))
		for _, wd := range r.Weekdays {
			days = append(days, int(wd))
		}
		return fmt.Sprintf("%d %d * * %s", at.Minute, at.Hour, joinDays(days)), nil

	case RecurMonthly:
		if len(r.Monthdays) == 0 {
			return "", ErrEmptyMonthdays
		}
		for _, d := range r.Monthdays {
			if d < 1 || d > 31 {
				return "", fmt.Errorf("%w: %d", ErrMonthdayOutOfRange, d)
			}
		}
		return fmt.Sprintf("%d %d %s * *", at.Minute, at.Hour, joinDays(r.Monthdays)), nil

	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownRecurrence, r.Kind)
	}
}

func joinDays(days []int) string {
	sorted := make([]int, len(days))
	copy(sorted, days)
	sort.Ints(sorted)
	parts := make([]string, len(sorted))
	for i, d := range sorted {
		parts[i] = strconv.Itoa(d)
	}
	return strings.Join(parts, ",")
}

// DescribeCadence renders the repetition part of a stored cron spec as a
// short human-readable phrase for reminder listings. Unknown shapes fall
// back to the raw spec.
func DescribeCadence(spec string) string {
	fields := strings.Fields(spec)
	if len(fields) != 5 {
		return spec
	}
	if _, err := strconv.Atoi(fields[0]); err != nil {
		return spec
	}
	if _, err := strconv.Atoi(fields[1]); err != nil {
		return spec
	}

	switch {
	case fields[2] == "*" && fields[4] == "*":
		return "daily"
	case fields[2] == "*":
		names := make([]string, 0, 4)
		for _, p := range strings.Split(fields[4], ",") {
			n, err := strconv.Atoi(p)
			if err != nil || n < 0 || n > 6 {
				return spec
			}
			names = append(names, time.Weekday(n).String()[:3])
		}
		return "weekly on " + strings.Join(names, ", ")
	case fields[4] == "*":
		return "monthly on day " + fields[2]
	default:
		return spec
	}
}

// DescribeCron is DescribeCadence with the spec's own (canonical) time
// appended.
func DescribeCron(spec string) string {
	cadence := DescribeCadence(spec)
	if cadence == spec {
		return spec
	}
	fields := strings.Fields(spec)
	min, _ := strconv.Atoi(fields[0])
	hour, _ := strconv.Atoi(fields[1])
	return cadence + " at " + TimeOfDay{Hour: hour, Minute: min}.String()
}
