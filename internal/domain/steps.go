package domain

import (
	"errors"
	"fmt"
)

// StepID names a single answer slot within a questionnaire flow.
type StepID string

var (
	// ErrStepAlreadySet marks a duplicate answer for a slot that already
	// holds a value. Expected under at-least-once delivery; callers treat
	// it as a no-op, not a failure.
	ErrStepAlreadySet = errors.New("step already answered")
	// ErrStepOutOfOrder marks an answer for a slot that is not the
	// currently inferred step (a future slot, or one skipped by a branch).
	ErrStepOutOfOrder = errors.New("step out of order")
	ErrUnknownStep    = errors.New("unknown step")
)

// Step is one slot in a record's fixed dependency order. Skip marks slots
// excluded by an earlier branch decision (e.g. gym time when the user is
// not going to the gym today).
type Step struct {
	ID     StepID
	Filled bool
	Skip   bool
}

// NextStep walks the slot order and returns the first unfilled, non-skipped
// step. ok is false when every required slot is filled, meaning the flow is
// complete. The walk is pure: calling it twice on the same record yields
// the same answer, which is what makes resumption after a crash or a
// duplicate event safe.
func NextStep(steps []Step) (StepID, bool) {
	for _, s := range steps {
		if s.Skip || s.Filled {
			continue
		}
		return s.ID, true
	}
	return "", false
}

// CanApply reports whether an inbound answer for the given step may be
// written. Only the currently inferred step is writable: answers for
// already-set slots return ErrStepAlreadySet (replay), answers for future
// or skipped slots return ErrStepOutOfOrder.
func CanApply(steps []Step, id StepID) error {
	next, ok := NextStep(steps)
	if ok && next == id {
		return nil
	}
	for _, s := range steps {
		if s.ID != id {
			continue
		}
		if s.Filled {
			return fmt.Errorf("%w: %s", ErrStepAlreadySet, id)
		}
		return fmt.Errorf("%w: %s", ErrStepOutOfOrder, id)
	}
	return fmt.Errorf("%w: %s", ErrUnknownStep, id)
}
