package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToCanonical_RoundTripsAllValidInputs(t *testing.T) {
	for h := 0; h < 24; h++ {
		for m := 0; m < 60; m++ {
			for o := -MaxOffsetHours; o <= MaxOffsetHours; o++ {
				local := TimeOfDay{Hour: h, Minute: m}
				canonical, err := ToCanonical(local, o)
				require.NoError(t, err)
				back, err := ToLocal(canonical, o)
				require.NoError(t, err)
				if back != local {
					t.Fatalf("round trip broke: %s offset %d -> %s -> %s", local, o, canonical, back)
				}
			}
		}
	}
}

func TestToCanonical_WrapsOnceAcrossMidnight(t *testing.T) {
	// +3 local 07:00 -> canonical 04:00
	got, err := ToCanonical(TimeOfDay{Hour: 7}, 3)
	require.NoError(t, err)
	assert.Equal(t, "04:00", got.String())

	// same local time with offset -2 -> canonical 09:00
	got, err = ToCanonical(TimeOfDay{Hour: 7}, -2)
	require.NoError(t, err)
	assert.Equal(t, "09:00", got.String())

	// wrap below zero
	got, err = ToCanonical(TimeOfDay{Hour: 1, Minute: 30}, 5)
	require.NoError(t, err)
	assert.Equal(t, "20:30", got.String())

	// wrap above 23
	got, err = ToCanonical(TimeOfDay{Hour: 23}, -4)
	require.NoError(t, err)
	assert.Equal(t, "03:00", got.String())
}

func TestToCanonical_RejectsBadInput(t *testing.T) {
	_, err := ToCanonical(TimeOfDay{Hour: 24}, 0)
	assert.ErrorIs(t, err, ErrInvalidClock)

	_, err = ToCanonical(TimeOfDay{Hour: 10}, 15)
	assert.ErrorIs(t, err, ErrOffsetOutOfRange)

	_, err = ToLocal(TimeOfDay{Hour: 10}, -15)
	assert.ErrorIs(t, err, ErrOffsetOutOfRange)
}

func TestParseClock(t *testing.T) {
	tests := []struct {
		in      string
		want    TimeOfDay
		wantErr bool
	}{
		{in: "08:30", want: TimeOfDay{8, 30}},
		{in: " 23:59 ", want: TimeOfDay{23, 59}},
		{in: "0:05", want: TimeOfDay{0, 5}},
		{in: "24:00", wantErr: true},
		{in: "12:60", wantErr: true},
		{in: "12", wantErr: true},
		{in: "ab:cd", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ParseClock(tt.in)
		if tt.wantErr {
			assert.ErrorIs(t, err, ErrInvalidClock, "input %q", tt.in)
			continue
		}
		require.NoError(t, err, "input %q", tt.in)
		assert.Equal(t, tt.want, got)
	}
}

func TestParseSleepHours(t *testing.T) {
	got, err := ParseSleepHours("7:30")
	require.NoError(t, err)
	assert.InDelta(t, 7.5, got, 1e-9)

	got, err = ParseSleepHours("8")
	require.NoError(t, err)
	assert.Equal(t, 8.0, got)

	_, err = ParseSleepHours("25")
	require.Error(t, err)

	_, err = ParseSleepHours("bogus")
	assert.True(t, errors.Is(err, ErrInvalidClock))
}
