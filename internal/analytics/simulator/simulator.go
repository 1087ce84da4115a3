// Package simulator implements §4.8's Monte-Carlo forward workload
// simulation: projecting daily review counts across a horizon given a
// snapshot of existing cards and a steady rate of new-card
// introduction.
package simulator

import (
	"github.com/flashcore/srscore/internal/domain"
	"github.com/flashcore/srscore/internal/memory/fsrs"
	"github.com/flashcore/srscore/internal/platform/rng"
)

// SimCard is a lightweight projection of a Card for simulation: only
// the fields the forward model needs, keyed to an integer day offset
// from "today" rather than an absolute timestamp.
type SimCard struct {
	Stability     float64
	Difficulty    float64
	State         domain.CardState
	DueDay        int
	LastReviewDay int
}

// Config holds the simulation's tunable inputs.
type Config struct {
	Horizon        int // days to simulate
	Iterations     int // Monte Carlo repetitions; default 100
	NewCardsPerDay int
	Params         domain.FSRSParameters
}

// DefaultIterations is used when Config.Iterations is zero.
const DefaultIterations = 100

// DayStats aggregates one simulated day's review count across every
// iteration.
type DayStats struct {
	Mean float64
	Min  int
	Max  int
}

// Result is the full simulation output.
type Result struct {
	Days    []DayStats
	PeakDay int
}

var outcomeRatings = []struct {
	rating domain.Rating
	weight float64
}{
	{domain.Hard, 0.05},
	{domain.Good, 0.80},
	{domain.Easy, 0.15},
}

func sampleNonAgainRating(u float64) domain.Rating {
	cum := 0.0
	for _, o := range outcomeRatings {
		cum += o.weight
		if u < cum {
			return o.rating
		}
	}
	return domain.Easy
}

// Run executes cfg.Iterations independent forward simulations from
// cards (mutated copies only) and aggregates per-day review counts.
func Run(cards []SimCard, cfg Config, r rng.Rng) Result {
	iterations := cfg.Iterations
	if iterations <= 0 {
		iterations = DefaultIterations
	}

	counts := make([][]int, iterations)
	for i := 0; i < iterations; i++ {
		counts[i] = runOnce(cards, cfg, r)
	}

	days := make([]DayStats, cfg.Horizon)
	peakDay, peakMean := 0, -1.0
	for d := 0; d < cfg.Horizon; d++ {
		sum, min, max := 0, counts[0][d], counts[0][d]
		for i := 0; i < iterations; i++ {
			v := counts[i][d]
			sum += v
			if v < min {
				min = v
			}
			if v > max {
				max = v
			}
		}
		mean := float64(sum) / float64(iterations)
		days[d] = DayStats{Mean: mean, Min: min, Max: max}
		if mean > peakMean {
			peakMean = mean
			peakDay = d
		}
	}

	return Result{Days: days, PeakDay: peakDay}
}

// runOnce simulates a single iteration and returns the per-day review
// count across the horizon.
func runOnce(initial []SimCard, cfg Config, r rng.Rng) []int {
	cards := make([]SimCard, len(initial))
	copy(cards, initial)

	reviewsPerDay := make([]int, cfg.Horizon)

	for d := 0; d < cfg.Horizon; d++ {
		for i := range cards {
			c := &cards[i]
			if c.State == domain.New || c.DueDay > d {
				continue
			}
			elapsed := float64(d - c.LastReviewDay)
			retrievability := fsrs.Retrievability(elapsed, c.Stability)
			recalled := r.Float64() < retrievability

			var rating domain.Rating
			if !recalled {
				rating = domain.Again
			} else {
				rating = sampleNonAgainRating(r.Float64())
			}

			c.Difficulty = fsrs.NextDifficulty(cfg.Params.W, c.Difficulty, rating)
			if rating == domain.Again {
				c.Stability = fsrs.FailureStability(cfg.Params.W, c.Stability, c.Difficulty, retrievability)
				c.State = domain.Relearning
				c.DueDay = d + 1
			} else {
				c.Stability = fsrs.SuccessStability(cfg.Params.W, c.Stability, c.Difficulty, retrievability, rating)
				c.State = domain.Review
				interval, _ := fsrs.NextInterval(c.Stability, cfg.Params.RequestRetention, cfg.Params.MaximumInterval)
				c.DueDay = d + int(interval)
			}
			c.LastReviewDay = d
			reviewsPerDay[d]++
		}

		for n := 0; n < cfg.NewCardsPerDay; n++ {
			rating := domain.Again
			if r.Float64() < 0.70 {
				rating = domain.Good
			}
			cards = append(cards, SimCard{
				Stability:     fsrs.InitStability(cfg.Params.W, rating),
				Difficulty:    fsrs.InitDifficulty(cfg.Params.W, rating),
				State:         domain.Review,
				DueDay:        d + 1,
				LastReviewDay: d,
			})
			reviewsPerDay[d]++
		}
	}

	return reviewsPerDay
}

// SimulateRetentionChange runs two simulations with NewCardsPerDay
// forced to zero — one at the current request retention and one at
// candidateRetention — and returns the change in average daily review
// load (candidate minus current).
func SimulateRetentionChange(cards []SimCard, cfg Config, candidateRetention float64, r rng.Rng) float64 {
	baseline := cfg
	baseline.NewCardsPerDay = 0

	candidate := baseline
	candidate.Params.RequestRetention = candidateRetention

	before := Run(cards, baseline, r)
	after := Run(cards, candidate, r)

	return average(after.Days) - average(before.Days)
}

func average(days []DayStats) float64 {
	if len(days) == 0 {
		return 0
	}
	sum := 0.0
	for _, d := range days {
		sum += d.Mean
	}
	return sum / float64(len(days))
}
