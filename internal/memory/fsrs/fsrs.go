// Package fsrs implements the FSRS-5 memory model: the power
// forgetting curve, stability/difficulty updates, interval
// computation, and fuzz. Every function here is pure and
// deterministic except FuzzInterval, which consumes an injected Rng
// (§4.1, §9).
package fsrs

import (
	"errors"
	"math"

	"github.com/flashcore/srscore/internal/domain"
	"github.com/flashcore/srscore/internal/platform/rng"
)

// ErrInvalidParameter is returned by NextInterval when the request
// retention is outside (0,1).
var ErrInvalidParameter = errors.New("fsrs: invalid parameter")

const stabilityFloor = 0.01

// Retrievability computes the predicted probability of recall at
// elapsed time t (days) given stability S, under the power forgetting
// curve: R(t,S) = (1 + t/(9*S))^-1. R(0,*) = 1; R(*, S<=0) = 0.
func Retrievability(t, stability float64) float64 {
	if t <= 0 {
		return 1
	}
	if stability <= 0 {
		return 0
	}
	return math.Pow(1+t/(9*stability), -1)
}

// InitStability returns the initial stability for a New card rated g.
func InitStability(w []float64, g domain.Rating) float64 {
	s := w[int(g)-1]
	if s < stabilityFloor {
		return stabilityFloor
	}
	return s
}

// initDifficultyOfGood computes D0(3) = w[4] - exp(w[5]*2) + 1, the
// anchor used by NextDifficulty's mean-reversion term.
func initDifficultyOfGood(w []float64) float64 {
	return w[4] - math.Exp(w[5]*2) + 1
}

// InitDifficulty returns the initial difficulty for a New card rated
// g: clamp(w[4] - exp(w[5]*(g-1)) + 1, 1, 10).
func InitDifficulty(w []float64, g domain.Rating) float64 {
	d := w[4] - math.Exp(w[5]*(float64(g)-1)) + 1
	return clampDifficulty(d)
}

// NextDifficulty computes the post-review difficulty:
// clamp(w[7]*D0(3) + (1-w[7])*(D - w[6]*(g-3)), 1, 10).
func NextDifficulty(w []float64, d float64, g domain.Rating) float64 {
	d0 := initDifficultyOfGood(w)
	next := w[7]*d0 + (1-w[7])*(d-w[6]*(float64(g)-3))
	return clampDifficulty(next)
}

func clampDifficulty(d float64) float64 {
	if d < 1 {
		return 1
	}
	if d > 10 {
		return 10
	}
	return d
}

func floorStability(s float64) float64 {
	if s < stabilityFloor {
		return stabilityFloor
	}
	return s
}

// SuccessStability computes the post-review stability for g in
// {Hard, Good, Easy}:
//
//	S' = S * (exp(w[8]) * (11-D) * S^-w[10] * (exp(w[11]*(1-R)) - 1) * HP * EB + 1)
//
// with HP = w[16] iff g == Hard else 1, EB = w[17] iff g == Easy else 1.
func SuccessStability(w []float64, s, d, r float64, g domain.Rating) float64 {
	hp := 1.0
	if g == domain.Hard {
		hp = w[16]
	}
	eb := 1.0
	if g == domain.Easy {
		eb = w[17]
	}
	factor := math.Exp(w[8]) * (11 - d) * math.Pow(s, -w[10]) * (math.Exp(w[11]*(1-r)) - 1) * hp * eb
	return floorStability(s * (factor + 1))
}

// FailureStability computes the post-review stability for g == Again:
//
//	S' = min(w[12] * D^-w[13] * ((S+1)^w[14] - 1) * exp(w[15]*(1-R)), S)
func FailureStability(w []float64, s, d, r float64) float64 {
	candidate := w[12] * math.Pow(d, -w[13]) * (math.Pow(s+1, w[14]) - 1) * math.Exp(w[15]*(1-r))
	if candidate > s {
		candidate = s
	}
	return floorStability(candidate)
}

// ShortTermStability computes the intra-step stability update used
// when a review happens same-day (before the elapsed-day formulas
// apply): S' = max(S * exp(w[18]*(g-3+w[17])), 0.01).
func ShortTermStability(w []float64, s float64, g domain.Rating) float64 {
	return floorStability(s * math.Exp(w[18]*(float64(g)-3+w[17])))
}

// NextInterval computes I = round(9*S*(1/Rreq - 1)), clamped to
// [1, maxInterval]. Returns ErrInvalidParameter when requestRetention
// is not in (0,1).
func NextInterval(stability, requestRetention, maxInterval float64) (float64, error) {
	if requestRetention <= 0 || requestRetention >= 1 {
		return 0, ErrInvalidParameter
	}
	interval := math.Round(9 * stability * (1/requestRetention - 1))
	if interval < 1 {
		interval = 1
	}
	if interval > maxInterval {
		interval = maxInterval
	}
	return interval, nil
}

// fuzzBound returns f(I), the half-width of the fuzz window, per §4.1.
// Intervals <= 2 are never fuzzed (the caller checks this).
func fuzzBound(interval float64) float64 {
	switch {
	case interval < 7:
		return 1
	case interval < 14:
		return math.Round(0.15 * interval)
	default:
		f := math.Round(0.20 * interval)
		if f > 30 {
			f = 30
		}
		return f
	}
}

// FuzzInterval samples the fuzzed interval uniformly from
// [I-f, I+f], floored at 1. Intervals <= 2 are returned unchanged:
// fuzz only applies to Review-state intervals greater than 2.
func FuzzInterval(r rng.Rng, interval float64) float64 {
	if interval <= 2 {
		return interval
	}
	f := fuzzBound(interval)
	lo := interval - f
	if lo < 1 {
		lo = 1
	}
	hi := interval + f
	span := hi - lo
	fuzzed := lo + r.Float64()*span
	fuzzed = math.Round(fuzzed)
	// Rounding a non-integer window edge can step outside [lo, hi];
	// pull the result back to the nearest whole day inside it.
	if fuzzed < lo {
		fuzzed = math.Ceil(lo)
	}
	if fuzzed > hi {
		fuzzed = math.Floor(hi)
	}
	if fuzzed < 1 {
		fuzzed = 1
	}
	return fuzzed
}
