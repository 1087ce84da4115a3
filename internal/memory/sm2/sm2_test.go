package sm2

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/flashcore/srscore/internal/domain"
)

func TestNextEaseFactor_AppliesDeltaAndFloors(t *testing.T) {
	require.InDelta(t, 2.3, NextEaseFactor(2.5, domain.Again, 1.3), 1e-9)
	require.InDelta(t, 2.65, NextEaseFactor(2.5, domain.Easy, 1.3), 1e-9)
	require.Equal(t, 1.3, NextEaseFactor(1.35, domain.Again, 1.3))
}

func TestSchedule_FirstRepUsesGraduatingInterval(t *testing.T) {
	params := domain.DefaultSM2Parameters()
	steps := domain.DefaultStepConfig()
	now := time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC)

	sched := domain.CardSchedulingData{State: domain.New}
	out := Schedule(params, steps, sched, now)

	easy := out[domain.Easy]
	require.Equal(t, domain.Review, easy.Scheduling.State)
	require.Equal(t, params.Intervals[0], easy.IntervalDays)
}

func TestSchedule_AgainTriggersRelearning(t *testing.T) {
	params := domain.DefaultSM2Parameters()
	steps := domain.DefaultStepConfig()
	now := time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC)

	sched := domain.CardSchedulingData{State: domain.Review, Difficulty: 2.5, ScheduledDays: 10}
	out := Schedule(params, steps, sched, now)

	again := out[domain.Again]
	require.Equal(t, domain.Relearning, again.Scheduling.State)
	require.Equal(t, 1, again.Scheduling.Lapses)
}

func TestSchedule_IntervalClampedToMax(t *testing.T) {
	params := domain.DefaultSM2Parameters()
	params.MaxInterval = 30
	steps := domain.DefaultStepConfig()
	now := time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC)

	sched := domain.CardSchedulingData{State: domain.Review, Difficulty: 2.5, ScheduledDays: 1000, Reps: 10}
	out := Schedule(params, steps, sched, now)

	require.LessOrEqual(t, out[domain.Easy].IntervalDays, params.MaxInterval)
}
