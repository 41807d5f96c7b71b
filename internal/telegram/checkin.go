package telegram

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/iSlob-hub/islob-aio-bot-sub000/internal/domain"
	"github.com/iSlob-hub/islob-aio-bot-sub000/internal/store"
)

// openAnyCheckin resolves the check-in a free-form answer belongs to: the
// real one for today first, then a rehearsal.
func (r *Router) openAnyCheckin(ctx context.Context, chatID int64) (*domain.Checkin, error) {
	c, err := r.guard.OpenCheckin(ctx, chatID, false)
	if err == nil {
		return c, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}
	return r.guard.OpenCheckin(ctx, chatID, true)
}

// handleCheckinCommand resumes today's open check-in; when there is none
// (already done, or the prompt never fired) it starts a rehearsal that does
// not count against the daily record.
func (r *Router) handleCheckinCommand(ctx context.Context, chatID int64) {
	c, err := r.openAnyCheckin(ctx, chatID)
	if errors.Is(err, store.ErrNotFound) {
		var isNew bool
		c, isNew, err = r.guard.FindOrCreateCheckin(ctx, chatID, true)
		if err == nil && isNew {
			r.sendText(chatID, "Rehearsal check-in, answers are stored separately.")
		}
	}
	if err != nil {
		r.log.Error("checkin lookup failed", zap.Error(err), zap.Int64("chatID", chatID))
		r.sendText(chatID, "Could not open the check-in, please try again.")
		return
	}
	r.promptCheckinStep(chatID, c)
}

func (r *Router) handleCheckinCallback(ctx context.Context, chatID int64, data, cbID string) {
	r.answerCallback(cbID, "")

	if data == "checkin:begin" {
		c, _, err := r.guard.FindOrCreateCheckin(ctx, chatID, false)
		if err != nil {
			r.log.Error("checkin begin failed", zap.Error(err), zap.Int64("chatID", chatID))
			r.sendText(chatID, "Could not open the check-in, please try again.")
			return
		}
		r.promptCheckinStep(chatID, c)
		return
	}

	c, err := r.openAnyCheckin(ctx, chatID)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			r.log.Error("checkin lookup failed", zap.Error(err), zap.Int64("chatID", chatID))
		}
		return
	}

	switch {
	case strings.HasPrefix(data, "checkin:feel:"):
		v, convErr := strconv.Atoi(strings.TrimPrefix(data, "checkin:feel:"))
		if convErr != nil {
			return
		}
		err = c.SetFeeling(v)
	case data == "checkin:gym:yes":
		err = c.SetGoingToGym(true)
	case data == "checkin:gym:no":
		err = c.SetGoingToGym(false)
	default:
		return
	}
	r.applyCheckinAnswer(ctx, chatID, c, err)
}

// handleCheckinText feeds plain text into the text-answered check-in slots.
// The target slot is re-derived from the stored record, so a stale message
// after a restart still lands on the right question.
func (r *Router) handleCheckinText(ctx context.Context, chatID int64, text string) {
	c, err := r.openAnyCheckin(ctx, chatID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			r.sendText(chatID, mainHintText)
			return
		}
		r.log.Error("checkin lookup failed", zap.Error(err), zap.Int64("chatID", chatID))
		return
	}

	step, ok := c.NextStep()
	if !ok {
		r.sendText(chatID, mainHintText)
		return
	}

	switch step {
	case domain.StepFeeling:
		v, convErr := strconv.Atoi(strings.TrimSpace(text))
		if convErr != nil {
			r.promptCheckinStep(chatID, c)
			return
		}
		err = c.SetFeeling(v)
	case domain.StepSleep:
		v, convErr := domain.ParseSleepHours(text)
		if convErr != nil {
			r.sendText(chatID, "Enter sleep as hours, e.g. 7, 7.5 or 7:30.")
			return
		}
		err = c.SetSleepHours(v)
	case domain.StepGoingToGym:
		r.promptCheckinStep(chatID, c)
		return
	case domain.StepGymTime:
		t, convErr := domain.ParseClock(text)
		if convErr != nil {
			r.sendText(chatID, badClockText)
			return
		}
		err = c.SetGymTime(t)
	case domain.StepWeight:
		v, convErr := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(text), ",", "."), 64)
		if convErr != nil {
			r.sendText(chatID, "Enter your weight in kg, e.g. 72.5.")
			return
		}
		err = c.SetWeight(v)
	default:
		return
	}
	r.applyCheckinAnswer(ctx, chatID, c, err)
}

// applyCheckinAnswer persists a slot answer and advances the conversation.
// Validation failures re-prompt the same step; duplicate answers are
// acknowledged without overwriting the stored value.
func (r *Router) applyCheckinAnswer(ctx context.Context, chatID int64, c *domain.Checkin, setErr error) {
	switch {
	case setErr == nil:
	case errors.Is(setErr, domain.ErrStepAlreadySet):
		r.sendText(chatID, "Already answered, moving on.")
		r.promptCheckinStep(chatID, c)
		return
	case errors.Is(setErr, domain.ErrStepOutOfOrder):
		r.promptCheckinStep(chatID, c)
		return
	case errors.Is(setErr, domain.ErrRatingOutOfRange):
		r.sendText(chatID, "Use a number from 1 to 10.")
		return
	default:
		r.sendText(chatID, "Could not record that, please try again.")
		return
	}

	if err := r.repo.UpdateCheckin(ctx, c); err != nil {
		r.log.Error("checkin update failed", zap.Error(err), zap.String("checkin", c.ID))
		r.sendText(chatID, "Could not record that, please try again.")
		return
	}

	// Declaring a gym time sets up today's training reminder alongside.
	if !c.Test && c.GymTime != nil && c.Weight == nil {
		if _, err := r.reminders.SetGymReminder(ctx, chatID, *c.GymTime); err != nil {
			r.log.Error("gym reminder failed", zap.Error(err), zap.Int64("chatID", chatID))
		}
	}

	r.promptCheckinStep(chatID, c)
}

func (r *Router) promptCheckinStep(chatID int64, c *domain.Checkin) {
	step, ok := c.NextStep()
	if !ok {
		r.sendText(chatID, checkinSummary(c))
		return
	}
	switch step {
	case domain.StepFeeling:
		r.sendWithKeyboard(chatID, "How do you feel this morning? (1-10)", ratingKeyboard("checkin:feel"))
	case domain.StepSleep:
		r.sendText(chatID, "How many hours did you sleep? E.g. 7, 7.5 or 7:30.")
	case domain.StepGoingToGym:
		r.sendWithKeyboard(chatID, "Are you going to the gym today?", yesNoKeyboard("checkin:gym"))
	case domain.StepGymTime:
		r.sendText(chatID, "What time is your training? Enter HH:MM.")
	case domain.StepWeight:
		r.sendText(chatID, "And your weight this morning, in kg?")
	}
}

func checkinSummary(c *domain.Checkin) string {
	var b strings.Builder
	b.WriteString("Check-in complete ✅\n")
	if c.Feeling != nil {
		fmt.Fprintf(&b, "Feeling: %d/10\n", *c.Feeling)
	}
	if c.SleepHours != nil {
		fmt.Fprintf(&b, "Sleep: %.1f h\n", *c.SleepHours)
	}
	if c.GoingToGym != nil {
		if *c.GoingToGym && c.GymTime != nil {
			fmt.Fprintf(&b, "Training at %s, I will remind you.\n", c.GymTime)
		} else if !*c.GoingToGym {
			b.WriteString("Rest day today.\n")
		}
	}
	if c.Weight != nil {
		fmt.Fprintf(&b, "Weight: %.1f kg\n", *c.Weight)
	}
	b.WriteString("\nHave a great day 💪")
	return b.String()
}
