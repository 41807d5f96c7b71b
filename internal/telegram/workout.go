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

// handleTrainingCommand opens (or resumes) today's workout session and asks
// the current question.
func (r *Router) handleTrainingCommand(ctx context.Context, chatID int64) {
	w, isNew, err := r.guard.FindOrCreateWorkout(ctx, chatID)
	if err != nil {
		r.log.Error("workout open failed", zap.Error(err), zap.Int64("chatID", chatID))
		r.sendText(chatID, "Could not open the workout log, please try again.")
		return
	}
	if isNew {
		r.sendText(chatID, "Training started, the clock is running ⏱")
	}
	r.promptWorkoutStep(chatID, w)
}

func (r *Router) handleWorkoutCallback(ctx context.Context, chatID int64, data, cbID string) {
	r.answerCallback(cbID, "")

	w, err := r.guard.OpenWorkout(ctx, chatID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			r.sendText(chatID, "No workout in progress. Start one with /training.")
			return
		}
		r.log.Error("workout lookup failed", zap.Error(err), zap.Int64("chatID", chatID))
		return
	}

	switch {
	case strings.HasPrefix(data, "workout:feel:"):
		v, convErr := strconv.Atoi(strings.TrimPrefix(data, "workout:feel:"))
		if convErr != nil {
			return
		}
		err = w.SetFeelBefore(v)
	case strings.HasPrefix(data, "workout:hard:"):
		v, convErr := strconv.Atoi(strings.TrimPrefix(data, "workout:hard:"))
		if convErr != nil {
			return
		}
		err = w.SetHardness(v)
	case data == "workout:pain:yes":
		err = w.SetPain(true, r.now())
	case data == "workout:pain:no":
		err = w.SetPain(false, r.now())
	default:
		return
	}

	switch {
	case err == nil:
	case errors.Is(err, domain.ErrStepAlreadySet), errors.Is(err, domain.ErrStepOutOfOrder):
		r.promptWorkoutStep(chatID, w)
		return
	default:
		r.sendText(chatID, "Could not record that, please try again.")
		return
	}

	if err := r.repo.UpdateWorkout(ctx, w); err != nil {
		r.log.Error("workout update failed", zap.Error(err), zap.String("workout", w.ID))
		r.sendText(chatID, "Could not record that, please try again.")
		return
	}

	if w.Completed {
		r.finishWorkout(ctx, chatID, w)
		return
	}
	r.promptWorkoutStep(chatID, w)
}

// finishWorkout runs the post-completion side effects: the pain alert to
// the coach, the next-day follow-up reminder, and retiring today's gym
// reminder since the session already happened.
func (r *Router) finishWorkout(ctx context.Context, chatID int64, w *domain.Workout) {
	if w.Pain != nil && *w.Pain && r.adminChat != 0 {
		u, err := r.repo.GetUser(ctx, chatID)
		who := strconv.FormatInt(chatID, 10)
		if err == nil {
			who = u.FullName
			if u.Username != "" {
				who += " (@" + u.Username + ")"
			}
		}
		if err := r.SendText(r.adminChat, "⚠️ "+who+" reported pain during training."); err != nil {
			r.log.Error("pain alert failed", zap.Error(err), zap.Int64("chatID", chatID))
		}
	}

	if _, err := r.reminders.ScheduleFollowUp(ctx, w); err != nil {
		r.log.Error("follow-up schedule failed", zap.Error(err), zap.String("workout", w.ID))
	}
	if _, err := r.repo.DeactivateByCategory(ctx, chatID, domain.CategoryGym); err != nil {
		r.log.Error("gym reminder retire failed", zap.Error(err), zap.Int64("chatID", chatID))
	}

	r.sendText(chatID, workoutSummary(w))
}

func (r *Router) promptWorkoutStep(chatID int64, w *domain.Workout) {
	step, ok := w.NextStep()
	if !ok {
		r.sendText(chatID, workoutSummary(w))
		return
	}
	switch step {
	case domain.StepFeelBefore:
		r.sendWithKeyboard(chatID, "How did you feel before training? (1-10)", ratingKeyboard("workout:feel"))
	case domain.StepHardness:
		r.sendWithKeyboard(chatID, "How hard was the session? (1-10)", ratingKeyboard("workout:hard"))
	case domain.StepPain:
		r.sendWithKeyboard(chatID, "Any pain during the session?", yesNoKeyboard("workout:pain"))
	}
}

func workoutSummary(w *domain.Workout) string {
	var b strings.Builder
	b.WriteString("Workout logged ✅\n")
	if w.FeelBefore != nil {
		fmt.Fprintf(&b, "Felt before: %d/10\n", *w.FeelBefore)
	}
	if w.Hardness != nil {
		fmt.Fprintf(&b, "Hardness: %d/10\n", *w.Hardness)
	}
	if w.DurationM != nil {
		fmt.Fprintf(&b, "Duration: %d min\n", *w.DurationM)
	}
	b.WriteString("\nI will check on you tomorrow afternoon.")
	return b.String()
}
