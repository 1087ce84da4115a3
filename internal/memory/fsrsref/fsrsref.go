// Package fsrsref wraps github.com/open-spaced-repetition/go-fsrs as a
// cross-check oracle for internal/memory/fsrs. It is not used by the
// production scheduler — the spec requires the FSRS-5 formulas be
// implemented directly (§4.1) — but it lets our from-scratch math be
// verified against a known-good reference implementation, the way the
// original FSRSManagerImpl wrapped the same library for production
// scheduling.
package fsrsref

import (
	"time"

	gofsrs "github.com/open-spaced-repetition/go-fsrs"
)

// Outcome is the oracle's prediction for one rating: the resulting
// stability, difficulty, and interval in days.
type Outcome struct {
	Stability  float64
	Difficulty float64
	Interval   int64
}

// Repeat runs the upstream library's scheduler over a fresh New card
// rated once, and returns the outcome for every rating. Used by
// fsrs_test.go to sanity-check InitStability against upstream's
// default weights.
func Repeat(requestRetention float64, now time.Time) map[gofsrs.Rating]Outcome {
	params := gofsrs.DefaultParam()
	params.RequestRetention = requestRetention

	card := gofsrs.NewCard()
	infos := params.Repeat(card, now)

	out := make(map[gofsrs.Rating]Outcome, len(infos))
	for rating, info := range infos {
		out[rating] = Outcome{
			Stability:  info.Card.Stability,
			Difficulty: info.Card.Difficulty,
			Interval:   int64(info.Card.ScheduledDays),
		}
	}
	return out
}
