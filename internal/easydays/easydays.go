// Package easydays implements §4.6: deterministically shifting due
// dates that fall on low-multiplier weekdays to the nearest
// acceptable day, and computing the effective daily new-card limit
// under a weekday multiplier.
package easydays

import (
	"fmt"
	"hash/fnv"
	"time"
)

// Multipliers maps time.Weekday to a workload multiplier in [0,1].
// Weekdays absent from the map default to 1.0 (no shaping).
type Multipliers map[time.Weekday]float64

func (m Multipliers) multiplierFor(d time.Time) float64 {
	if v, ok := m[d.Weekday()]; ok {
		return v
	}
	return 1.0
}

// candidateOffsets is the fixed search order from §4.6.
var candidateOffsets = []int{1, -1, 2, -2, 3}

// stableHash computes a deterministic pseudo-random value in [0,1)
// from the ISO date string, per §9 ("the EasyDays shift uses a stable
// string hash of the ISO date").
func stableHash(date time.Time) float64 {
	iso := date.Format("2006-01-02")
	h := fnv.New64a()
	_, _ = h.Write([]byte(iso))
	sum := h.Sum64()
	// Scale the 64-bit hash into [0,1) using the top 53 bits, so the
	// result has full float64 mantissa precision.
	return float64(sum>>11) / float64(1<<53)
}

// ShiftDue returns the (possibly shifted) due date for a newly
// computed due timestamp under the configured weekday multipliers.
// When the weekday's multiplier is 1 the date is never shifted. When
// it is below 1, the date is shifted iff hash(date) > multiplier;
// every candidate offset in {+1,-1,+2,-2,+3} is evaluated and the
// winner prefers higher multiplier, then an earlier (negative)
// offset, then the offset closer to zero. No multiplier threshold
// ends the search early.
func ShiftDue(due time.Time, mult Multipliers) time.Time {
	if len(mult) == 0 {
		return due
	}
	m := mult.multiplierFor(due)
	if m >= 1 {
		return due
	}
	if stableHash(due) <= m {
		return due
	}

	// Evaluate every candidate before choosing: the winner is picked by
	// score across the whole set, not by accepting the first day that
	// clears the 0.75 bar in scan order.
	type candidate struct {
		offset int
		date   time.Time
		mult   float64
	}
	candidates := make([]candidate, 0, len(candidateOffsets))
	for _, off := range candidateOffsets {
		cand := due.AddDate(0, 0, off)
		candidates = append(candidates, candidate{offset: off, date: cand, mult: mult.multiplierFor(cand)})
	}

	best := candidates[0]
	for _, c := range candidates[1:] {
		if better(c, best) {
			best = c
		}
	}
	return best.date
}

// better reports whether candidate a should replace the current best:
// higher multiplier wins; ties prefer "forward" (the earlier, sooner
// due date — reviewing a card early is preferred to delaying it);
// remaining ties prefer the offset with smaller absolute value.
func better(a, b struct {
	offset int
	date   time.Time
	mult   float64
}) bool {
	if a.mult != b.mult {
		return a.mult > b.mult
	}
	aSooner, bSooner := a.offset < 0, b.offset < 0
	if aSooner != bSooner {
		return aSooner
	}
	return abs(a.offset) < abs(b.offset)
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// EffectiveDailyLimit implements §4.6's "Effective daily limit": when
// both baseLimit and the weekday's multiplier are positive, the
// effective limit is max(1, round(baseLimit*m)); otherwise baseLimit
// is returned unshaped.
func EffectiveDailyLimit(baseLimit int, date time.Time, mult Multipliers) int {
	if baseLimit <= 0 {
		return baseLimit
	}
	m := mult.multiplierFor(date)
	if m <= 0 {
		return baseLimit
	}
	scaled := int(roundHalfAwayFromZero(float64(baseLimit) * m))
	if scaled < 1 {
		scaled = 1
	}
	return scaled
}

func roundHalfAwayFromZero(x float64) float64 {
	if x >= 0 {
		return float64(int64(x + 0.5))
	}
	return float64(int64(x - 0.5))
}

// String implements a debugging helper used by CLI/log output.
func (m Multipliers) String() string {
	return fmt.Sprintf("easydays.Multipliers(%d weekdays configured)", len(m))
}
