package easydays

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestShiftDue_NoMultipliersConfigured(t *testing.T) {
	due := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	require.True(t, due.Equal(ShiftDue(due, nil)))
}

func TestShiftDue_FullMultiplierNeverShifts(t *testing.T) {
	due := time.Date(2024, 3, 18, 0, 0, 0, 0, time.UTC) // Monday
	mult := Multipliers{time.Monday: 1.0}
	require.True(t, due.Equal(ShiftDue(due, mult)))
}

// TestShiftDue_WorkedExample reproduces the spec's own S5 scenario:
// Friday carries a 0.25 multiplier, so a card due Friday 2024-03-15
// shifts to Thursday 2024-03-14 — the nearest full-multiplier
// candidate, preferred over the tied Saturday for being sooner.
func TestShiftDue_WorkedExample(t *testing.T) {
	due := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	require.Equal(t, time.Friday, due.Weekday())

	mult := Multipliers{time.Friday: 0.25}
	got := ShiftDue(due, mult)

	want := time.Date(2024, 3, 14, 0, 0, 0, 0, time.UTC)
	require.True(t, got.Equal(want), "got %v, want %v", got, want)
}

func TestShiftDue_Deterministic(t *testing.T) {
	due := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	mult := Multipliers{time.Friday: 0.25}

	first := ShiftDue(due, mult)
	for i := 0; i < 10; i++ {
		require.True(t, first.Equal(ShiftDue(due, mult)))
	}
}

func TestEffectiveDailyLimit_ScalesByMultiplier(t *testing.T) {
	date := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC) // Friday
	mult := Multipliers{time.Friday: 0.5}
	require.Equal(t, 10, EffectiveDailyLimit(20, date, mult))
}

func TestEffectiveDailyLimit_NeverBelowOne(t *testing.T) {
	date := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	mult := Multipliers{time.Friday: 0.01}
	require.Equal(t, 1, EffectiveDailyLimit(20, date, mult))
}

func TestEffectiveDailyLimit_UnconfiguredWeekdayUnshaped(t *testing.T) {
	date := time.Date(2024, 3, 18, 0, 0, 0, 0, time.UTC) // Monday
	mult := Multipliers{time.Friday: 0.5}
	require.Equal(t, 20, EffectiveDailyLimit(20, date, mult))
}
