// Package statemachine implements the card state machine (§4.3): pure
// transitions over {New, Learning, Review, Relearning} driven by
// ratings, with intra-day step-ladder traversal.
package statemachine

import (
	"time"

	"github.com/flashcore/srscore/internal/domain"
)

// IsEligibleForStudy implements §4.3: a card is eligible when it is
// Active and its due time has arrived.
func IsEligibleForStudy(status domain.CardStatus, due, now time.Time) bool {
	return status == domain.Active && !due.After(now)
}

// Transition is the result of applying a rating to a card's current
// state and step index.
type Transition struct {
	NewState     domain.CardState
	NewStepIndex int
	Graduated    bool
	Lapsed       bool

	// DelayMinutes is set when the card remains in a step-based state
	// (Learning/Relearning): the duration until the next step is due.
	DelayMinutes *float64

	// GraduationIntervalDays is set only when Graduated is true: the
	// interval in days supplied by StepConfig (not by the memory
	// model). When nil and Graduated is false, the SRS algorithm
	// supplies the interval from its own formulas.
	GraduationIntervalDays *float64
}

func minutes(m float64) *float64   { return &m }
func days(d float64) *float64      { return &d }

// Apply computes the transition for (state, stepIndex) under rating
// using the given step ladder configuration.
func Apply(state domain.CardState, stepIndex int, rating domain.Rating, steps domain.StepConfig) Transition {
	switch state {
	case domain.New:
		return fromNew(rating, steps)
	case domain.Learning:
		return fromLadder(domain.Learning, stepIndex, rating, steps.LearningSteps, steps)
	case domain.Review:
		return fromReview(rating, steps)
	case domain.Relearning:
		return fromLadder(domain.Relearning, stepIndex, rating, steps.RelearningSteps, steps)
	default:
		return Transition{NewState: state, NewStepIndex: stepIndex}
	}
}

func fromNew(rating domain.Rating, steps domain.StepConfig) Transition {
	switch rating {
	case domain.Again, domain.Hard:
		return Transition{NewState: domain.Learning, NewStepIndex: 0, DelayMinutes: firstStepDelay(steps.LearningSteps)}
	case domain.Good:
		if len(steps.LearningSteps) <= 1 {
			return Transition{NewState: domain.Review, Graduated: true, GraduationIntervalDays: days(steps.GraduatingInterval)}
		}
		idx := 1
		if idx >= len(steps.LearningSteps) {
			idx = len(steps.LearningSteps) - 1
		}
		return Transition{NewState: domain.Learning, NewStepIndex: idx, DelayMinutes: minutes(steps.LearningSteps[idx])}
	case domain.Easy:
		return Transition{NewState: domain.Review, Graduated: true, GraduationIntervalDays: days(steps.EasyGraduatingInterval)}
	default:
		return Transition{NewState: domain.New}
	}
}

// fromLadder handles both Learning and Relearning, which share the
// same step-traversal shape over their respective ladders.
func fromLadder(state domain.CardState, stepIndex int, rating domain.Rating, ladder []float64, steps domain.StepConfig) Transition {
	switch rating {
	case domain.Again:
		return Transition{NewState: state, NewStepIndex: 0, DelayMinutes: firstStepDelay(ladder)}
	case domain.Hard:
		return Transition{NewState: state, NewStepIndex: stepIndex, DelayMinutes: stepDelay(ladder, stepIndex)}
	case domain.Good:
		next := stepIndex + 1
		if next >= len(ladder) {
			return Transition{NewState: domain.Review, Graduated: true, GraduationIntervalDays: days(steps.GraduatingInterval)}
		}
		return Transition{NewState: state, NewStepIndex: next, DelayMinutes: stepDelay(ladder, next)}
	case domain.Easy:
		return Transition{NewState: domain.Review, Graduated: true, GraduationIntervalDays: days(steps.EasyGraduatingInterval)}
	default:
		return Transition{NewState: state, NewStepIndex: stepIndex}
	}
}

func fromReview(rating domain.Rating, steps domain.StepConfig) Transition {
	switch rating {
	case domain.Again:
		if len(steps.RelearningSteps) == 0 {
			// No relearning ladder configured: bounce straight back to
			// Review: the SRS algorithm supplies the interval.
			return Transition{NewState: domain.Review, Lapsed: true}
		}
		return Transition{NewState: domain.Relearning, NewStepIndex: 0, Lapsed: true, DelayMinutes: firstStepDelay(steps.RelearningSteps)}
	case domain.Hard, domain.Good, domain.Easy:
		return Transition{NewState: domain.Review}
	default:
		return Transition{NewState: domain.Review}
	}
}

func firstStepDelay(ladder []float64) *float64 {
	if len(ladder) == 0 {
		return minutes(0)
	}
	return minutes(ladder[0])
}

func stepDelay(ladder []float64, idx int) *float64 {
	if idx < 0 || idx >= len(ladder) {
		return minutes(0)
	}
	return minutes(ladder[idx])
}
