package fsrs

import (
	"time"

	"github.com/flashcore/srscore/internal/domain"
	"github.com/flashcore/srscore/internal/statemachine"
)

// ScheduledCard is one rating's outcome: the updated scheduling data,
// the resulting interval in days (0 for intra-day step delays), and
// the absolute due time.
type ScheduledCard struct {
	Scheduling   domain.CardSchedulingData
	IntervalDays float64
	DueAt        time.Time
}

// Schedule computes the four per-rating outcomes for sched at now,
// per §4.1/§4.3: the state machine decides the transition and, on
// graduation, the interval (from steps); otherwise FSRS's own formulas
// supply stability, difficulty, and (while already in Review) the
// next interval. Review-state outcomes are then adjusted so that
// hard.interval <= good.interval <= easy.interval with strict
// inequality between them, per the monotonicity invariant.
//
// Fuzz is intentionally not applied here: per the design note in §9,
// fuzz is applied by the caller (Scheduler.ProcessAnswer) after this
// monotonicity chain has been computed.
func Schedule(params domain.FSRSParameters, steps domain.StepConfig, sched domain.CardSchedulingData, now time.Time) (map[domain.Rating]ScheduledCard, error) {
	results := make(map[domain.Rating]ScheduledCard, 4)

	elapsedDays := 0.0
	if sched.LastReview != nil {
		elapsedDays = now.Sub(*sched.LastReview).Hours() / 24
		if elapsedDays < 0 {
			elapsedDays = 0
		}
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

		switch {
		case sched.State == domain.New:
			next.Stability = InitStability(params.W, g)
			next.Difficulty = InitDifficulty(params.W, g)
		case elapsedDays < 1:
			next.Difficulty = NextDifficulty(params.W, sched.Difficulty, g)
			next.Stability = ShortTermStability(params.W, sched.Stability, g)
		default:
			r := Retrievability(elapsedDays, sched.Stability)
			next.Difficulty = NextDifficulty(params.W, sched.Difficulty, g)
			if g == domain.Again {
				next.Stability = FailureStability(params.W, sched.Stability, sched.Difficulty, r)
			} else {
				next.Stability = SuccessStability(params.W, sched.Stability, sched.Difficulty, r, g)
			}
		}

		var intervalDays float64
		var dueAt time.Time
		switch {
		case transition.Graduated:
			intervalDays = *transition.GraduationIntervalDays
			dueAt = now.AddDate(0, 0, int(intervalDays))
			next.ScheduledDays = intervalDays
		case transition.DelayMinutes != nil:
			dueAt = now.Add(time.Duration(*transition.DelayMinutes * float64(time.Minute)))
			next.ScheduledDays = 0
		default:
			iv, err := NextInterval(next.Stability, params.RequestRetention, params.MaximumInterval)
			if err != nil {
				return nil, err
			}
			intervalDays = iv
			dueAt = now.AddDate(0, 0, int(intervalDays))
			next.ScheduledDays = intervalDays
		}
		next.ElapsedDays = elapsedDays
		next.LastReview = &now

		results[g] = ScheduledCard{Scheduling: next, IntervalDays: intervalDays, DueAt: dueAt}
	}

	if sched.State == domain.Review {
		enforceMonotonicity(results, sched.ScheduledDays, params.MaximumInterval, now)
	}

	return results, nil
}

// enforceMonotonicity applies the §4.1 ordering constraints to the
// Review-state outcomes: hard >= the card's current scheduled days,
// good >= hard+1, easy >= good+1, then caps at maxInterval.
func enforceMonotonicity(results map[domain.Rating]ScheduledCard, priorScheduledDays, maxInterval float64, now time.Time) {
	hard := results[domain.Hard]
	good := results[domain.Good]
	easy := results[domain.Easy]

	if hard.IntervalDays < priorScheduledDays {
		hard.IntervalDays = priorScheduledDays
	}
	if good.IntervalDays < hard.IntervalDays+1 {
		good.IntervalDays = hard.IntervalDays + 1
	}
	if easy.IntervalDays < good.IntervalDays+1 {
		easy.IntervalDays = good.IntervalDays + 1
	}

	out := []*fsrsOutcome{
		{&hard.IntervalDays, &hard.Scheduling.ScheduledDays, &hard.DueAt},
		{&good.IntervalDays, &good.Scheduling.ScheduledDays, &good.DueAt},
		{&easy.IntervalDays, &easy.Scheduling.ScheduledDays, &easy.DueAt},
	}
	for _, o := range out {
		if *o.intervalPtr > maxInterval {
			*o.intervalPtr = maxInterval
		}
		*o.scheduledPtr = *o.intervalPtr
		*o.duePtr = now.AddDate(0, 0, int(*o.intervalPtr))
	}

	results[domain.Hard] = hard
	results[domain.Good] = good
	results[domain.Easy] = easy
}

// fsrsOutcome is a small pointer bundle used by enforceMonotonicity to
// re-derive ScheduledDays/DueAt after adjusting IntervalDays.
type fsrsOutcome struct {
	intervalPtr  *float64
	scheduledPtr *float64
	duePtr       *time.Time
}
