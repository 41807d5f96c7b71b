package telegram

import (
	"context"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/iSlob-hub/islob-aio-bot-sub000/internal/flow"
	"github.com/iSlob-hub/islob-aio-bot-sub000/internal/reminder"
	"github.com/iSlob-hub/islob-aio-bot-sub000/internal/session"
	"github.com/iSlob-hub/islob-aio-bot-sub000/internal/store"
)

// Pending keys for short free-text inputs outside questionnaire flows.
// Questionnaire position is never held here: it is re-derived from the
// persisted record on every event.
const (
	pendingTZ = "await_tz_text"
)

// Router wires Telegram updates to handlers. Durable state lives in the
// store; only transient input-await markers and reminder drafts are
// in-memory.
type Router struct {
	bot       *tgbotapi.BotAPI
	log       *zap.Logger
	repo      store.Repo
	guard     *session.Guard
	reminders *reminder.Manager
	adminChat int64
	onboard   *flow.Graph
	now       func() time.Time

	mu      sync.RWMutex
	pending map[int64]string
	drafts  map[int64]*reminderDraft
}

// NewRouter creates a new Telegram router.
func NewRouter(
	bot *tgbotapi.BotAPI,
	log *zap.Logger,
	repo store.Repo,
	guard *session.Guard,
	reminders *reminder.Manager,
	adminChat int64,
) *Router {
	r := &Router{
		bot:       bot,
		log:       log,
		repo:      repo,
		guard:     guard,
		reminders: reminders,
		adminChat: adminChat,
		now:       time.Now,
		pending:   make(map[int64]string),
		drafts:    make(map[int64]*reminderDraft),
	}
	r.onboard = r.buildOnboarding()
	return r
}

func (r *Router) setPending(chatID int64, s string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pending[chatID] = s
}

func (r *Router) getPending(chatID int64) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.pending[chatID]
}

func (r *Router) clearPending(chatID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.pending, chatID)
}

// HandleUpdate routes a single update to the appropriate handler.
func (r *Router) HandleUpdate(ctx context.Context, upd tgbotapi.Update) {
	if upd.Message != nil {
		msg := upd.Message
		chatID := msg.Chat.ID
		text := strings.TrimSpace(msg.Text)

		switch {
		case strings.HasPrefix(text, "/start"):
			r.handleStart(ctx, msg)
		case strings.HasPrefix(text, "/checkin"):
			r.handleCheckinCommand(ctx, chatID)
		case strings.HasPrefix(text, "/training"):
			r.handleTrainingCommand(ctx, chatID)
		case strings.HasPrefix(text, "/reminders"):
			r.handleRemindersCommand(ctx, chatID)
		case strings.HasPrefix(text, "/timezone"):
			r.askTimezone(ctx, chatID)
		default:
			r.handleFreeForm(ctx, chatID, text)
		}
		return
	}

	if upd.CallbackQuery != nil {
		cb := upd.CallbackQuery
		data := cb.Data
		chatID := cb.Message.Chat.ID

		switch {
		case strings.HasPrefix(data, "goal:"):
			r.handleGoalCallback(ctx, chatID, data, cb.ID)
		case strings.HasPrefix(data, "checkin:"):
			r.handleCheckinCallback(ctx, chatID, data, cb.ID)
		case strings.HasPrefix(data, "workout:"):
			r.handleWorkoutCallback(ctx, chatID, data, cb.ID)
		case strings.HasPrefix(data, "followup:"):
			r.handleFollowUpCallback(ctx, chatID, data, cb.ID)
		case strings.HasPrefix(data, "rem:"):
			r.handleReminderCallback(ctx, chatID, data, cb.ID)
		default:
			// Unknown callback, ignore silently
		}
		return
	}
}

// handleFreeForm dispatches plain text. Order matters: onboarding first,
// then explicit awaits, then the open check-in (its current step is
// re-derived from the stored record, so replays and restarts are safe).
func (r *Router) handleFreeForm(ctx context.Context, chatID int64, text string) {
	if r.advanceOnboarding(ctx, chatID, flow.Event{UserID: chatID, Text: text}) {
		return
	}

	switch r.getPending(chatID) {
	case pendingTZ:
		r.clearPending(chatID)
		r.handleTimezoneInput(ctx, chatID, text)
		return
	}

	if d := r.getDraft(chatID); d != nil {
		r.handleDraftInput(ctx, chatID, d, text)
		return
	}

	r.handleCheckinText(ctx, chatID, text)
}

// --- shared send helpers ---

func (r *Router) sendText(chatID int64, text string) {
	if err := r.SendText(chatID, text); err != nil {
		r.log.Error("send failed", zap.Error(err), zap.Int64("chatID", chatID))
	}
}

func (r *Router) sendWithKeyboard(chatID int64, text string, kb tgbotapi.InlineKeyboardMarkup) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = kb
	if _, err := r.bot.Send(msg); err != nil {
		r.log.Error("send failed", zap.Error(err), zap.Int64("chatID", chatID))
	}
}

func (r *Router) answerCallback(id, text string) {
	if _, err := r.bot.Request(tgbotapi.NewCallback(id, text)); err != nil {
		r.log.Warn("answer callback failed", zap.Error(err))
	}
}

// --- scheduler.Sender implementation ---

// SendText sends a plain text message to the given chat.
func (r *Router) SendText(chatID int64, text string) error {
	_, err := r.bot.Send(tgbotapi.NewMessage(chatID, text))
	return err
}

// SendCheckinPrompt sends the morning prompt with a start button.
func (r *Router) SendCheckinPrompt(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = checkinStartKeyboard()
	_, err := r.bot.Send(msg)
	return err
}

// SendFollowUpPrompt sends the day-after-training prompt with a start button.
func (r *Router) SendFollowUpPrompt(chatID int64, sessionID, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = followUpStartKeyboard(sessionID)
	_, err := r.bot.Send(msg)
	return err
}
