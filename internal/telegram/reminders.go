package telegram

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/iSlob-hub/islob-aio-bot-sub000/internal/domain"
)

// Draft stages for the custom reminder wizard. The draft is transient UI
// state only; nothing is written to the store until the final step.
const (
	draftText      = "text"
	draftWeekdays  = "weekdays"
	draftMonthdays = "monthdays"
	draftTime      = "time"
)

type reminderDraft struct {
	stage     string
	text      string
	kind      domain.RecurrenceKind
	once      bool
	weekdays  map[int]bool
	monthdays map[int]bool
}

func (r *Router) getDraft(chatID int64) *reminderDraft {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.drafts[chatID]
}

func (r *Router) setDraft(chatID int64, d *reminderDraft) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.drafts[chatID] = d
}

func (r *Router) clearDraft(chatID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.drafts, chatID)
}

// handleRemindersCommand shows the custom reminder list with per-item
// toggle and delete buttons.
func (r *Router) handleRemindersCommand(ctx context.Context, chatID int64) {
	items, err := r.repo.ListUserNotifications(ctx, chatID, domain.CategoryCustom)
	if err != nil {
		r.log.Error("list reminders failed", zap.Error(err), zap.Int64("chatID", chatID))
		r.sendText(chatID, "Could not load your reminders.")
		return
	}
	if len(items) == 0 {
		r.sendWithKeyboard(chatID, "You have no custom reminders yet.", reminderListKeyboard(items))
		return
	}
	var b strings.Builder
	b.WriteString("Your reminders:\n")
	for _, n := range items {
		cadence := domain.DescribeCadence(n.CronSpec)
		if n.Once {
			cadence = "once"
		}
		fmt.Fprintf(&b, "• %s, %s at %s\n", n.Text, cadence, n.Local)
	}
	r.sendWithKeyboard(chatID, b.String(), reminderListKeyboard(items))
}

func (r *Router) handleReminderCallback(ctx context.Context, chatID int64, data, cbID string) {
	r.answerCallback(cbID, "")

	switch {
	case data == "rem:new":
		r.setDraft(chatID, &reminderDraft{stage: draftText})
		r.sendText(chatID, "What should the reminder say?")

	case strings.HasPrefix(data, "rem:freq:"):
		d := r.getDraft(chatID)
		if d == nil {
			return
		}
		switch strings.TrimPrefix(data, "rem:freq:") {
		case "daily":
			d.kind = domain.RecurDaily
			d.stage = draftTime
			r.sendText(chatID, "At what local time? Enter HH:MM.")
		case "once":
			// One-shot: scheduled like a daily reminder, retired after the
			// first fire.
			d.kind = domain.RecurDaily
			d.once = true
			d.stage = draftTime
			r.sendText(chatID, "At what local time? Enter HH:MM.")
		case "weekly":
			d.kind = domain.RecurWeekly
			d.weekdays = make(map[int]bool)
			d.stage = draftWeekdays
			r.sendWithKeyboard(chatID, "Pick the weekdays:", weekdayKeyboard(d.weekdays))
		case "monthly":
			d.kind = domain.RecurMonthly
			d.monthdays = make(map[int]bool)
			d.stage = draftMonthdays
			r.sendWithKeyboard(chatID, "Pick the days of month:", monthdayKeyboard(d.monthdays))
		}

	case strings.HasPrefix(data, "rem:wd:"):
		d := r.getDraft(chatID)
		if d == nil || d.stage != draftWeekdays {
			return
		}
		arg := strings.TrimPrefix(data, "rem:wd:")
		if arg == "done" {
			if len(selectedDays(d.weekdays)) == 0 {
				r.sendText(chatID, "Pick at least one weekday first.")
				return
			}
			d.stage = draftTime
			r.sendText(chatID, "At what local time? Enter HH:MM.")
			return
		}
		n, err := strconv.Atoi(arg)
		if err != nil || n < 0 || n > 6 {
			return
		}
		d.weekdays[n] = !d.weekdays[n]
		r.sendWithKeyboard(chatID, "Pick the weekdays:", weekdayKeyboard(d.weekdays))

	case strings.HasPrefix(data, "rem:md:"):
		d := r.getDraft(chatID)
		if d == nil || d.stage != draftMonthdays {
			return
		}
		arg := strings.TrimPrefix(data, "rem:md:")
		if arg == "done" {
			if len(selectedDays(d.monthdays)) == 0 {
				r.sendText(chatID, "Pick at least one day first.")
				return
			}
			d.stage = draftTime
			r.sendText(chatID, "At what local time? Enter HH:MM.")
			return
		}
		n, err := strconv.Atoi(arg)
		if err != nil || n < 1 || n > 31 {
			return
		}
		d.monthdays[n] = !d.monthdays[n]
		r.sendWithKeyboard(chatID, "Pick the days of month:", monthdayKeyboard(d.monthdays))

	case strings.HasPrefix(data, "rem:toggle:"):
		id := strings.TrimPrefix(data, "rem:toggle:")
		if _, err := r.reminders.Toggle(ctx, id); err != nil {
			r.log.Error("toggle reminder failed", zap.Error(err), zap.String("id", id))
		}
		r.handleRemindersCommand(ctx, chatID)

	case strings.HasPrefix(data, "rem:del:"):
		id := strings.TrimPrefix(data, "rem:del:")
		if err := r.reminders.Delete(ctx, id); err != nil {
			r.log.Error("delete reminder failed", zap.Error(err), zap.String("id", id))
		}
		r.handleRemindersCommand(ctx, chatID)
	}
}

// handleDraftInput consumes plain text for the wizard stages that need it.
func (r *Router) handleDraftInput(ctx context.Context, chatID int64, d *reminderDraft, text string) {
	switch d.stage {
	case draftText:
		text = strings.TrimSpace(text)
		if text == "" {
			r.sendText(chatID, "Send the reminder text as a message.")
			return
		}
		d.text = text
		r.sendWithKeyboard(chatID, "How often should I remind you?", frequencyKeyboard())

	case draftTime:
		local, err := domain.ParseClock(text)
		if err != nil {
			r.sendText(chatID, badClockText)
			return
		}
		rec := domain.Recurrence{Kind: d.kind}
		for _, n := range selectedDays(d.weekdays) {
			rec.Weekdays = append(rec.Weekdays, time.Weekday(n))
		}
		rec.Monthdays = selectedDays(d.monthdays)

		if _, err := r.reminders.CreateCustomReminder(ctx, chatID, d.text, rec, local, d.once); err != nil {
			r.log.Error("create reminder failed", zap.Error(err), zap.Int64("chatID", chatID))
			r.sendText(chatID, "Could not create the reminder, please try again.")
			return
		}
		r.clearDraft(chatID)
		r.sendText(chatID, savedText)
		r.handleRemindersCommand(ctx, chatID)

	default:
		// Waiting on a button press, not text.
		r.sendText(chatID, "Use the buttons above to continue.")
	}
}

func selectedDays(m map[int]bool) []int {
	out := make([]int, 0, len(m))
	for n, on := range m {
		if on {
			out = append(out, n)
		}
	}
	sort.Ints(out)
	return out
}
