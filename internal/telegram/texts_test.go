package telegram

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iSlob-hub/islob-aio-bot-sub000/internal/domain"
)

func TestParseGoal(t *testing.T) {
	tests := []struct {
		data string
		want domain.TrainingGoal
		ok   bool
	}{
		{"goal:lose_weight", domain.GoalLoseWeight, true},
		{"goal:build_muscle", domain.GoalBuildMuscle, true},
		{"goal:maintain", domain.GoalMaintain, true},
		{"goal:get_huge", "", false},
		{"checkin:begin", "", false},
	}
	for _, tt := range tests {
		got, ok := parseGoal(tt.data)
		assert.Equal(t, tt.ok, ok, tt.data)
		assert.Equal(t, tt.want, got, tt.data)
	}
}

func TestParseOffset(t *testing.T) {
	for in, want := range map[string]int{"0": 0, "+2": 2, "-5": -5, " 14 ": 14} {
		got, err := parseOffset(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	for _, in := range []string{"", "abc", "2.5", "15", "-15"} {
		_, err := parseOffset(in)
		assert.ErrorIs(t, err, domain.ErrOffsetOutOfRange, in)
	}
}

func TestRatingKeyboardLayout(t *testing.T) {
	kb := ratingKeyboard("checkin:feel")
	require.Len(t, kb.InlineKeyboard, 2)
	assert.Len(t, kb.InlineKeyboard[0], 5)
	assert.Len(t, kb.InlineKeyboard[1], 5)
	require.NotNil(t, kb.InlineKeyboard[0][0].CallbackData)
	assert.Equal(t, "checkin:feel:1", *kb.InlineKeyboard[0][0].CallbackData)
	require.NotNil(t, kb.InlineKeyboard[1][4].CallbackData)
	assert.Equal(t, "checkin:feel:10", *kb.InlineKeyboard[1][4].CallbackData)
}

func TestCheckinSummary(t *testing.T) {
	feeling, sleep, weight := 8, 7.5, 72.5
	gym := true
	tod := domain.TimeOfDay{Hour: 18, Minute: 30}
	c := &domain.Checkin{
		Feeling: &feeling, SleepHours: &sleep, GoingToGym: &gym,
		GymTime: &tod, Weight: &weight, Completed: true,
	}
	s := checkinSummary(c)
	assert.Contains(t, s, "8/10")
	assert.Contains(t, s, "7.5 h")
	assert.Contains(t, s, "18:30")
	assert.Contains(t, s, "72.5 kg")

	rest := false
	c2 := &domain.Checkin{GoingToGym: &rest}
	assert.Contains(t, checkinSummary(c2), "Rest day")
}

func TestWeekdayKeyboardMarksSelection(t *testing.T) {
	kb := weekdayKeyboard(map[int]bool{1: true})
	var monLabel string
	for _, row := range kb.InlineKeyboard {
		for _, btn := range row {
			if btn.CallbackData != nil && *btn.CallbackData == "rem:wd:1" {
				monLabel = btn.Text
			}
		}
	}
	assert.Contains(t, monLabel, "Mon")
	assert.Contains(t, monLabel, "✅")
}
