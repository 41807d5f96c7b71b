package domain

import (
	"fmt"
	"time"
)

// Workout session slots. The main flow is answered right after training;
// the follow-up slots arrive the next day via the follow-up reminder.
const (
	StepFeelBefore StepID = "feel_before"
	StepHardness   StepID = "hardness"
	StepPain       StepID = "pain"

	StepSoreness StepID = "soreness"
	StepStress   StepID = "stress"
)

// Workout is a logged training session.
type Workout struct {
	ID         string
	UserID     int64
	FeelBefore *int // 1..10
	Hardness   *int // 1..10
	Pain       *bool
	StartedAt  *time.Time
	EndedAt    *time.Time
	DurationM  *int // minutes

	// Day-after follow-up.
	Soreness *bool
	Stress   *int // 1..10

	Completed bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Steps lists the main-flow slots in order.
func (w *Workout) Steps() []Step {
	return []Step{
		{ID: StepFeelBefore, Filled: w.FeelBefore != nil},
		{ID: StepHardness, Filled: w.Hardness != nil},
		{ID: StepPain, Filled: w.Pain != nil},
	}
}

// FollowUpSteps lists the next-day follow-up slots in order.
func (w *Workout) FollowUpSteps() []Step {
	return []Step{
		{ID: StepSoreness, Filled: w.Soreness != nil},
		{ID: StepStress, Filled: w.Stress != nil},
	}
}

// NextStep returns the current main-flow step, ok=false if complete.
func (w *Workout) NextStep() (StepID, bool) { return NextStep(w.Steps()) }

// NextFollowUpStep returns the current follow-up step, ok=false if done.
func (w *Workout) NextFollowUpStep() (StepID, bool) { return NextStep(w.FollowUpSteps()) }

// FollowUpDone reports whether every follow-up slot is answered.
func (w *Workout) FollowUpDone() bool {
	_, ok := w.NextFollowUpStep()
	return !ok
}

// Begin stamps the session start. Idempotent: a second call is a no-op.
func (w *Workout) Begin(now time.Time) {
	if w.StartedAt != nil {
		return
	}
	t := now.UTC()
	w.StartedAt = &t
}

// SetFeelBefore answers the pre-training feeling slot (1..10).
func (w *Workout) SetFeelBefore(v int) error {
	if v < 1 || v > 10 {
		return fmt.Errorf("%w: %d", ErrRatingOutOfRange, v)
	}
	if err := CanApply(w.Steps(), StepFeelBefore); err != nil {
		return err
	}
	w.FeelBefore = &v
	return nil
}

// SetHardness answers the training hardness slot (1..10).
func (w *Workout) SetHardness(v int) error {
	if v < 1 || v > 10 {
		return fmt.Errorf("%w: %d", ErrRatingOutOfRange, v)
	}
	if err := CanApply(w.Steps(), StepHardness); err != nil {
		return err
	}
	w.Hardness = &v
	return nil
}

// SetPain answers the final main-flow slot, stamps the session end and
// marks the workout completed.
func (w *Workout) SetPain(v bool, now time.Time) error {
	if err := CanApply(w.Steps(), StepPain); err != nil {
		return err
	}
	w.Pain = &v
	end := now.UTC()
	w.EndedAt = &end
	if w.StartedAt != nil {
		mins := int(end.Sub(*w.StartedAt).Minutes())
		w.DurationM = &mins
	}
	if _, ok := w.NextStep(); !ok {
		w.Completed = true
	}
	return nil
}

// SetSoreness answers the first follow-up slot.
func (w *Workout) SetSoreness(v bool) error {
	if err := CanApply(w.FollowUpSteps(), StepSoreness); err != nil {
		return err
	}
	w.Soreness = &v
	return nil
}

// SetStress answers the last follow-up slot (1..10).
func (w *Workout) SetStress(v int) error {
	if v < 1 || v > 10 {
		return fmt.Errorf("%w: %d", ErrRatingOutOfRange, v)
	}
	if err := CanApply(w.FollowUpSteps(), StepStress); err != nil {
		return err
	}
	w.Stress = &v
	return nil
}
