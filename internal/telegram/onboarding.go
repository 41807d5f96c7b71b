package telegram

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/iSlob-hub/islob-aio-bot-sub000/internal/domain"
	"github.com/iSlob-hub/islob-aio-bot-sub000/internal/flow"
	"github.com/iSlob-hub/islob-aio-bot-sub000/internal/store"
)

// Onboarding graph nodes. The current node name is persisted on the user
// row, so a restarted process resumes the conversation where it stopped.
const (
	nodeAskName      = "ask_name"
	nodeAskGoal      = "ask_goal"
	nodeAskTZ        = "ask_tz"
	nodeAskDailyTime = "ask_daily_time"
)

func (r *Router) buildOnboarding() *flow.Graph {
	g := flow.New(r.repo)

	g.Add(&flow.Node{
		Name:        nodeAskName,
		Handler:     r.onboardName,
		Transitions: map[flow.Outcome]string{"named": nodeAskGoal},
	})
	g.Add(&flow.Node{
		Name:        nodeAskGoal,
		Handler:     r.onboardGoal,
		Transitions: map[flow.Outcome]string{"goal_set": nodeAskTZ},
	})
	g.Add(&flow.Node{
		Name:        nodeAskTZ,
		Handler:     r.onboardTZ,
		Transitions: map[flow.Outcome]string{"tz_set": nodeAskDailyTime},
	})
	g.Add(&flow.Node{
		Name:        nodeAskDailyTime,
		Handler:     r.onboardDailyTime,
		Transitions: map[flow.Outcome]string{"done": flow.End},
	})
	if err := g.SetEntry(nodeAskName); err != nil {
		// Entry node is registered right above; this cannot fire at runtime.
		panic(err)
	}
	return g
}

// advanceOnboarding feeds an event into the onboarding graph when the user
// is mid-onboarding. Returns false when the event belongs elsewhere.
func (r *Router) advanceOnboarding(ctx context.Context, chatID int64, ev flow.Event) bool {
	u, err := r.repo.GetUser(ctx, chatID)
	if err != nil || u.CurrentNode == "" || !r.onboard.Has(u.CurrentNode) {
		return false
	}
	if _, err := r.onboard.Advance(ctx, u.CurrentNode, ev); err != nil {
		r.log.Error("onboarding advance failed", zap.Error(err), zap.Int64("chatID", chatID))
		r.sendText(chatID, "Something went wrong, please try again.")
	}
	return true
}

func (r *Router) onboardName(ctx context.Context, ev flow.Event) (flow.Outcome, error) {
	name := strings.TrimSpace(ev.Text)
	if name == "" {
		r.sendText(ev.UserID, "Please send me your name as a message.")
		return flow.Stay, nil
	}
	u, err := r.repo.GetUser(ctx, ev.UserID)
	if err != nil {
		return "", err
	}
	u.FullName = name
	if err := r.repo.UpsertUser(ctx, u); err != nil {
		return "", err
	}
	r.sendWithKeyboard(ev.UserID, fmt.Sprintf(askGoalText, name), goalKeyboard())
	return "named", nil
}

func (r *Router) onboardGoal(ctx context.Context, ev flow.Event) (flow.Outcome, error) {
	goal, ok := parseGoal(ev.Data)
	if !ok {
		r.sendWithKeyboard(ev.UserID, "Pick a goal with the buttons below.", goalKeyboard())
		return flow.Stay, nil
	}
	u, err := r.repo.GetUser(ctx, ev.UserID)
	if err != nil {
		return "", err
	}
	u.Goal = goal
	if err := r.repo.UpsertUser(ctx, u); err != nil {
		return "", err
	}
	r.sendText(ev.UserID, fmt.Sprintf(askTZText, "Kyiv"))
	return "goal_set", nil
}

func (r *Router) onboardTZ(ctx context.Context, ev flow.Event) (flow.Outcome, error) {
	offset, err := parseOffset(ev.Text)
	if err != nil {
		r.sendText(ev.UserID, badOffsetText)
		return flow.Stay, nil
	}
	if err := r.repo.SetTimezoneOffset(ctx, ev.UserID, offset); err != nil {
		return "", err
	}
	r.sendText(ev.UserID, askDailyTimeText)
	return "tz_set", nil
}

func (r *Router) onboardDailyTime(ctx context.Context, ev flow.Event) (flow.Outcome, error) {
	local, err := domain.ParseClock(ev.Text)
	if err != nil {
		r.sendText(ev.UserID, badClockText)
		return flow.Stay, nil
	}
	if _, err := r.reminders.SetDailyReminder(ctx, ev.UserID, local); err != nil {
		return "", err
	}
	u, err := r.repo.GetUser(ctx, ev.UserID)
	if err != nil {
		return "", err
	}
	u.Verified = true
	if err := r.repo.UpsertUser(ctx, u); err != nil {
		return "", err
	}
	r.sendText(ev.UserID, fmt.Sprintf(onboardingDone, local))
	return "done", nil
}

func parseGoal(data string) (domain.TrainingGoal, bool) {
	switch strings.TrimPrefix(data, "goal:") {
	case "lose_weight":
		return domain.GoalLoseWeight, true
	case "build_muscle":
		return domain.GoalBuildMuscle, true
	case "maintain":
		return domain.GoalMaintain, true
	default:
		return "", false
	}
}

func parseOffset(s string) (int, error) {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("%w: %q", domain.ErrOffsetOutOfRange, s)
	}
	if v < -domain.MaxOffsetHours || v > domain.MaxOffsetHours {
		return 0, fmt.Errorf("%w: %d", domain.ErrOffsetOutOfRange, v)
	}
	return v, nil
}

// --- /start, goal callback, /timezone ---

func (r *Router) handleStart(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	u, err := r.repo.GetUser(ctx, chatID)
	switch {
	case err == nil && u.Verified:
		r.sendText(chatID, "Welcome back, "+u.FullName+"!\n\n"+mainHintText)
		return
	case err == nil:
		// Re-entered /start mid-onboarding: resume from the stored node.
	case errors.Is(err, store.ErrNotFound):
		u = &domain.User{
			ChatID:    chatID,
			Username:  msg.From.UserName,
			FullName:  msg.From.FirstName,
			Goal:      domain.GoalMaintain,
			CreatedAt: time.Now().UTC(),
		}
		if err := r.repo.UpsertUser(ctx, u); err != nil {
			r.log.Error("create user failed", zap.Error(err), zap.Int64("chatID", chatID))
			r.sendText(chatID, "Profile initialization error. Please try again later.")
			return
		}
	default:
		r.log.Error("load user failed", zap.Error(err), zap.Int64("chatID", chatID))
		r.sendText(chatID, "Profile initialization error. Please try again later.")
		return
	}

	if u.CurrentNode == "" {
		if err := r.repo.SetCurrentNode(ctx, chatID, r.onboard.Entry()); err != nil {
			r.log.Error("set node failed", zap.Error(err), zap.Int64("chatID", chatID))
			return
		}
	}
	r.sendText(chatID, introText)
}

func (r *Router) handleGoalCallback(ctx context.Context, chatID int64, data, cbID string) {
	r.answerCallback(cbID, "")
	r.advanceOnboarding(ctx, chatID, flow.Event{UserID: chatID, Data: data})
}

func (r *Router) askTimezone(ctx context.Context, chatID int64) {
	r.setPending(chatID, pendingTZ)
	r.sendText(chatID, fmt.Sprintf(askTZText, "Kyiv"))
}

// handleTimezoneInput applies an explicit timezone change: the profile
// offset is updated first, then every active reminder is retimed from its
// authoritative local time.
func (r *Router) handleTimezoneInput(ctx context.Context, chatID int64, text string) {
	offset, err := parseOffset(text)
	if err != nil {
		r.sendText(chatID, badOffsetText)
		return
	}
	if err := r.repo.SetTimezoneOffset(ctx, chatID, offset); err != nil {
		r.log.Error("set offset failed", zap.Error(err), zap.Int64("chatID", chatID))
		r.sendText(chatID, "Could not save timezone.")
		return
	}
	if err := r.reminders.RetimeAll(ctx, chatID, offset); err != nil {
		r.log.Error("retime failed", zap.Error(err), zap.Int64("chatID", chatID))
		r.sendText(chatID, "Timezone saved, but rescheduling failed. Try again.")
		return
	}
	r.sendText(chatID, savedText)
}
