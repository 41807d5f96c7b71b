package domain

import (
	"errors"
	"fmt"
	"time"
)

// Morning check-in slots, in dependency order.
const (
	StepFeeling    StepID = "feeling"
	StepSleep      StepID = "sleep"
	StepGoingToGym StepID = "going_to_gym"
	StepGymTime    StepID = "gym_time"
	StepWeight     StepID = "weight"
)

var ErrRatingOutOfRange = errors.New("rating out of range")

// Checkin is the daily morning questionnaire. Slots are pointers so that
// "unanswered" is representable; they are filled strictly in step order.
// The created-at timestamp doubles as the record's day-scope key.
type Checkin struct {
	ID         string
	UserID     int64
	Feeling    *int     // 1..10
	SleepHours *float64 // e.g. 7.5
	GoingToGym *bool    // branch slot
	GymTime    *TimeOfDay
	Weight     *float64 // kg
	Test       bool     // rehearsal instance, excluded from daily limits
	Completed  bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Steps lists the check-in slots in order. When the user answered "not
// going to the gym", the gym-time slot is skipped rather than required.
func (c *Checkin) Steps() []Step {
	skipGym := c.GoingToGym != nil && !*c.GoingToGym
	return []Step{
		{ID: StepFeeling, Filled: c.Feeling != nil},
		{ID: StepSleep, Filled: c.SleepHours != nil},
		{ID: StepGoingToGym, Filled: c.GoingToGym != nil},
		{ID: StepGymTime, Filled: c.GymTime != nil, Skip: skipGym},
		{ID: StepWeight, Filled: c.Weight != nil},
	}
}

// NextStep returns the current step of this check-in, ok=false if complete.
func (c *Checkin) NextStep() (StepID, bool) { return NextStep(c.Steps()) }

// SetFeeling answers the feeling slot (1..10).
func (c *Checkin) SetFeeling(v int) error {
	if v < 1 || v > 10 {
		return fmt.Errorf("%w: %d", ErrRatingOutOfRange, v)
	}
	if err := CanApply(c.Steps(), StepFeeling); err != nil {
		return err
	}
	c.Feeling = &v
	return nil
}

// SetSleepHours answers the sleep slot.
func (c *Checkin) SetSleepHours(v float64) error {
	if v < 0 || v > 24 {
		return fmt.Errorf("%w: %v", ErrInvalidClock, v)
	}
	if err := CanApply(c.Steps(), StepSleep); err != nil {
		return err
	}
	c.SleepHours = &v
	return nil
}

// SetGoingToGym answers the branch slot.
func (c *Checkin) SetGoingToGym(v bool) error {
	if err := CanApply(c.Steps(), StepGoingToGym); err != nil {
		return err
	}
	c.GoingToGym = &v
	return nil
}

// SetGymTime answers the gym-time slot; only reachable when the branch
// answer was "yes".
func (c *Checkin) SetGymTime(t TimeOfDay) error {
	if !t.Valid() {
		return fmt.Errorf("%w: %s", ErrInvalidClock, t)
	}
	if err := CanApply(c.Steps(), StepGymTime); err != nil {
		return err
	}
	c.GymTime = &t
	return nil
}

// SetWeight answers the final slot and marks the check-in completed.
func (c *Checkin) SetWeight(v float64) error {
	if v <= 0 || v > 500 {
		return fmt.Errorf("%w: weight %v", ErrRatingOutOfRange, v)
	}
	if err := CanApply(c.Steps(), StepWeight); err != nil {
		return err
	}
	c.Weight = &v
	if _, ok := c.NextStep(); !ok {
		c.Completed = true
	}
	return nil
}
