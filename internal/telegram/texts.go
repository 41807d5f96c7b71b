package telegram

import (
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/iSlob-hub/islob-aio-bot-sub000/internal/domain"
)

// UI texts in English
const (
	introText = "👋 I am your fitness coach bot.\n\n" +
		"Every morning I will ask a short check-in, remind you about training " +
		"and collect your workout log.\n\nFirst, what is your name?"
	mainHintText = "Commands:\n" +
		"/checkin — morning check-in\n" +
		"/training — log a workout\n" +
		"/reminders — custom reminders\n" +
		"/timezone — change timezone"
	askGoalText      = "Nice to meet you, %s! What is your training goal?"
	askDailyTimeText = "When should I send the morning check-in? Enter local time as HH:MM (e.g. 07:30)."
	askTZText        = "What is your timezone offset from %s in whole hours? E.g. 0, +2 or -5."
	onboardingDone   = "All set ✅ I will ping you every day at %s your time.\n\n" + mainHintText

	badClockText  = "Invalid time. Use HH:MM, e.g. 08:30."
	badOffsetText = "Invalid offset. Enter a whole number between -14 and 14."
	savedText     = "Saved ✅"
)

func goalKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔥 Lose weight", "goal:lose_weight"),
			tgbotapi.NewInlineKeyboardButtonData("💪 Build muscle", "goal:build_muscle"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🧘 Maintain", "goal:maintain"),
		),
	)
}

// ratingKeyboard renders two rows of 1..10 buttons with the given callback
// prefix ("checkin:feel", "workout:hard", ...).
func ratingKeyboard(prefix string) tgbotapi.InlineKeyboardMarkup {
	row1 := make([]tgbotapi.InlineKeyboardButton, 0, 5)
	row2 := make([]tgbotapi.InlineKeyboardButton, 0, 5)
	for i := 1; i <= 10; i++ {
		btn := tgbotapi.NewInlineKeyboardButtonData(strconv.Itoa(i), prefix+":"+strconv.Itoa(i))
		if i <= 5 {
			row1 = append(row1, btn)
		} else {
			row2 = append(row2, btn)
		}
	}
	return tgbotapi.NewInlineKeyboardMarkup(row1, row2)
}

func yesNoKeyboard(prefix string) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Yes", prefix+":yes"),
			tgbotapi.NewInlineKeyboardButtonData("No", prefix+":no"),
		),
	)
}

func checkinStartKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("▶️ Start check-in", "checkin:begin"),
		),
	)
}

func followUpStartKeyboard(sessionID string) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("▶️ Answer", "followup:begin:"+sessionID),
		),
	)
}

func frequencyKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Daily", "rem:freq:daily"),
			tgbotapi.NewInlineKeyboardButtonData("Weekly", "rem:freq:weekly"),
			tgbotapi.NewInlineKeyboardButtonData("Monthly", "rem:freq:monthly"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("One time", "rem:freq:once"),
		),
	)
}

var weekdayOrder = []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

// weekdayNum maps button labels to the 0(Sunday)..6(Saturday) convention.
var weekdayNum = map[string]int{
	"Sun": 0, "Mon": 1, "Tue": 2, "Wed": 3, "Thu": 4, "Fri": 5, "Sat": 6,
}

func weekdayKeyboard(selected map[int]bool) tgbotapi.InlineKeyboardMarkup {
	row1 := make([]tgbotapi.InlineKeyboardButton, 0, 4)
	row2 := make([]tgbotapi.InlineKeyboardButton, 0, 4)
	for i, name := range weekdayOrder {
		label := name
		if selected[weekdayNum[name]] {
			label += " ✅"
		}
		btn := tgbotapi.NewInlineKeyboardButtonData(label, "rem:wd:"+strconv.Itoa(weekdayNum[name]))
		if i < 4 {
			row1 = append(row1, btn)
		} else {
			row2 = append(row2, btn)
		}
	}
	return tgbotapi.NewInlineKeyboardMarkup(
		row1, row2,
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Continue", "rem:wd:done"),
		),
	)
}

func monthdayKeyboard(selected map[int]bool) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, 6)
	row := make([]tgbotapi.InlineKeyboardButton, 0, 7)
	for d := 1; d <= 31; d++ {
		label := strconv.Itoa(d)
		if selected[d] {
			label += "✅"
		}
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(label, "rem:md:"+strconv.Itoa(d)))
		if len(row) == 7 {
			rows = append(rows, row)
			row = make([]tgbotapi.InlineKeyboardButton, 0, 7)
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("✅ Continue", "rem:md:done"),
	))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func reminderListKeyboard(items []domain.Notification) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(items)+1)
	for _, n := range items {
		state := "⏸"
		if n.Active {
			state = "✅"
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(state+" "+n.Text, "rem:toggle:"+n.ID),
			tgbotapi.NewInlineKeyboardButtonData("🗑", "rem:del:"+n.ID),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("➕ New reminder", "rem:new"),
	))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}
