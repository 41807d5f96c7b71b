package reminder

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iSlob-hub/islob-aio-bot-sub000/internal/domain"
)

func TestRecurrenceFromSpec(t *testing.T) {
	tests := []struct {
		name string
		spec string
		ok   bool
		want domain.Recurrence
	}{
		{
			name: "daily",
			spec: "30 8 * * *",
			ok:   true,
			want: domain.Recurrence{Kind: domain.RecurDaily},
		},
		{
			name: "weekly",
			spec: "0 7 * * 1,3",
			ok:   true,
			want: domain.Recurrence{Kind: domain.RecurWeekly, Weekdays: []time.Weekday{time.Monday, time.Wednesday}},
		},
		{
			name: "monthly",
			spec: "15 9 1,15 * *",
			ok:   true,
			want: domain.Recurrence{Kind: domain.RecurMonthly, Monthdays: []int{1, 15}},
		},
		{name: "both fields set", spec: "0 7 1 * 1", ok: false},
		{name: "wrong arity", spec: "0 7 * *", ok: false},
		{name: "weekday out of range", spec: "0 7 * * 8", ok: false},
		{name: "garbage day list", spec: "0 7 x,2 * *", ok: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, got := recurrenceFromSpec(tt.spec)
			require.Equal(t, tt.ok, ok)
			if ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestRecurrenceSpecRoundTrip(t *testing.T) {
	// Specs emitted by the builder must be recoverable so retiming can
	// rebuild them at a new canonical time.
	recs := []domain.Recurrence{
		{Kind: domain.RecurDaily},
		{Kind: domain.RecurWeekly, Weekdays: []time.Weekday{time.Sunday, time.Friday}},
		{Kind: domain.RecurMonthly, Monthdays: []int{5, 20, 31}},
	}
	for _, rec := range recs {
		spec, err := domain.BuildCronSpec(rec, domain.TimeOfDay{Hour: 6, Minute: 45})
		require.NoError(t, err)
		ok, got := recurrenceFromSpec(spec)
		require.True(t, ok, spec)
		assert.Equal(t, rec.Kind, got.Kind)
	}
}
