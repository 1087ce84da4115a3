// Package sm2 implements the legacy SuperMemo-2 memory model (§4.2):
// ease-factor adjustment and interval growth, layered on top of the
// shared state machine for step-ladder traversal.
package sm2

import (
	"time"

	"github.com/flashcore/srscore/internal/domain"
	"github.com/flashcore/srscore/internal/statemachine"
)

// easeDelta is the per-rating ease-factor adjustment (§4.2).
var easeDelta = map[domain.Rating]float64{
	domain.Again: -0.20,
	domain.Hard:  -0.15,
	domain.Good:  0,
	domain.Easy:  0.15,
}

// NextEaseFactor applies the rating's adjustment and floors at minEF.
func NextEaseFactor(currentEF float64, rating domain.Rating, minEF float64) float64 {
	next := currentEF + easeDelta[rating]
	if next < minEF {
		next = minEF
	}
	return next
}

// ScheduledCard mirrors fsrs.ScheduledCard: the updated scheduling
// data, resulting interval (days; 0 for intra-day delays), and due
// time. SM-2 tracks ease factor in CardSchedulingData.Difficulty,
// reusing the same field the FSRS model uses for difficulty (both
// represent "how hard this card is to recall", scaled differently).
type ScheduledCard struct {
	Scheduling   domain.CardSchedulingData
	IntervalDays float64
	DueAt        time.Time
}

// Schedule computes the four per-rating outcomes for sched at now, per
// §4.2: rep 1 graduates to graduatingInterval, rep 2 to 6 days, later
// reps multiply the previous interval by EF (Good), hardMult (Hard),
// or EF*easyMult (Easy); Again resets the card into the relearning
// ladder via the shared state machine.
func Schedule(params domain.SM2Parameters, steps domain.StepConfig, sched domain.CardSchedulingData, now time.Time) map[domain.Rating]ScheduledCard {
	results := make(map[domain.Rating]ScheduledCard, 4)

	ef := sched.Difficulty
	if ef == 0 {
		ef = params.InitialEF
	}

	for _, g := range []domain.Rating{domain.Again, domain.Hard, domain.Good, domain.Easy} {
		transition := statemachine.Apply(sched.State, sched.StepIndex, g, steps)

		next := sched.Clone()
		next.Reps = sched.Reps + 1
		if transition.Lapsed {
			next.Lapses = sched.Lapses + 1
		}
		next.State = transition.NewState
		next.StepIndex = transition.NewStepIndex
		next.Difficulty = NextEaseFactor(ef, g, params.MinEF)

		var intervalDays float64
		var dueAt time.Time
		switch {
		case transition.Graduated:
			intervalDays = nextRepInterval(sched.Reps+1, next.Difficulty, sched.ScheduledDays, g, params)
			dueAt = now.AddDate(0, 0, int(intervalDays))
			next.ScheduledDays = intervalDays
		case transition.DelayMinutes != nil:
			dueAt = now.Add(time.Duration(*transition.DelayMinutes * float64(time.Minute)))
			next.ScheduledDays = 0
		default:
			intervalDays = nextRepInterval(sched.Reps+1, next.Difficulty, sched.ScheduledDays, g, params)
			dueAt = now.AddDate(0, 0, int(intervalDays))
			next.ScheduledDays = intervalDays
		}
		if next.ScheduledDays > params.MaxInterval {
			next.ScheduledDays = params.MaxInterval
			intervalDays = params.MaxInterval
			dueAt = now.AddDate(0, 0, int(intervalDays))
		}
		next.LastReview = &now

		results[g] = ScheduledCard{Scheduling: next, IntervalDays: intervalDays, DueAt: dueAt}
	}

	return results
}

// nextRepInterval implements the §4.2 interval rule: rep 1 uses
// graduatingInterval, rep 2 uses 6 days, later reps scale the prior
// interval by the rating's multiplier.
func nextRepInterval(repNumber int, ef, prevInterval float64, rating domain.Rating, params domain.SM2Parameters) float64 {
	switch repNumber {
	case 1:
		return params.Intervals[0]
	case 2:
		if len(params.Intervals) > 1 {
			return params.Intervals[1]
		}
		return 6
	default:
		switch rating {
		case domain.Hard:
			return prevInterval * params.HardMult
		case domain.Easy:
			return prevInterval * ef * params.EasyMult
		default: // Good
			return prevInterval * ef
		}
	}
}
