package telegram

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/iSlob-hub/islob-aio-bot-sub000/internal/domain"
	"github.com/iSlob-hub/islob-aio-bot-sub000/internal/store"
)

// Follow-up callbacks carry the workout session id so that the day-after
// questionnaire stays bound to the session it asks about:
//
//	followup:begin:<sid>
//	followup:sore:<sid>:yes|no
//	followup:stress:<sid>:1..10
func (r *Router) handleFollowUpCallback(ctx context.Context, chatID int64, data, cbID string) {
	r.answerCallback(cbID, "")

	parts := strings.Split(data, ":")
	if len(parts) < 3 {
		return
	}
	action, sid := parts[1], parts[2]

	w, err := r.repo.GetWorkout(ctx, sid)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			r.sendText(chatID, "That training session is gone.")
			return
		}
		r.log.Error("workout lookup failed", zap.Error(err), zap.String("workout", sid))
		return
	}
	if w.UserID != chatID {
		return
	}

	switch action {
	case "begin":
		r.promptFollowUpStep(chatID, w)
		return
	case "sore":
		if len(parts) != 4 {
			return
		}
		err = w.SetSoreness(parts[3] == "yes")
	case "stress":
		if len(parts) != 4 {
			return
		}
		v, convErr := strconv.Atoi(parts[3])
		if convErr != nil {
			return
		}
		err = w.SetStress(v)
	default:
		return
	}

	switch {
	case err == nil:
	case errors.Is(err, domain.ErrStepAlreadySet), errors.Is(err, domain.ErrStepOutOfOrder):
		r.promptFollowUpStep(chatID, w)
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

	if w.FollowUpDone() {
		if err := r.reminders.CompleteFollowUp(ctx, chatID, w.ID); err != nil {
			r.log.Error("follow-up complete failed", zap.Error(err), zap.String("workout", w.ID))
		}
		r.sendText(chatID, "Thanks! Recovery noted, see you at the next session 💪")
		return
	}
	r.promptFollowUpStep(chatID, w)
}

func (r *Router) promptFollowUpStep(chatID int64, w *domain.Workout) {
	step, ok := w.NextFollowUpStep()
	if !ok {
		r.sendText(chatID, "This follow-up is already answered.")
		return
	}
	switch step {
	case domain.StepSoreness:
		r.sendWithKeyboard(chatID, "Any muscle soreness after yesterday's training?",
			yesNoKeyboard("followup:sore:"+w.ID))
	case domain.StepStress:
		r.sendWithKeyboard(chatID, "How stressed do you feel today? (1-10)",
			ratingKeyboard("followup:stress:"+w.ID))
	}
}
