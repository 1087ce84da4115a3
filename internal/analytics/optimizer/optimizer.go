// Package optimizer implements §4.9: fitting the 19 FSRS weights to a
// user's review history with Adam gradient descent over
// central-finite-difference gradients of the RMSE loss between
// predicted retrievability and observed recall.
package optimizer

import (
	"math"

	"github.com/flashcore/srscore/internal/domain"
	"github.com/flashcore/srscore/internal/memory/fsrs"
)

// MinReviewsRequired is the §4.9 "hasEnoughData" floor.
const MinReviewsRequired = 400

// HasEnoughData reports whether reviewCount is sufficient to fit
// parameters reliably.
func HasEnoughData(reviewCount int) bool {
	return reviewCount >= MinReviewsRequired
}

// Event is one training example: the card it belongs to, the elapsed
// time since the prior review, the rating given (success means rating
// != Again), and whether it is the card's first review.
type Event struct {
	CardID    string
	Elapsed   float64 // days since the prior review; 0 for the first event
	Rating    domain.Rating
	IsFirst   bool
}

// bounds are the documented per-index clamp ranges for each of the 19
// FSRS weights, loosely bracketing the reference weight set so the
// optimizer cannot wander into numerically unstable territory.
var bounds = [19][2]float64{
	{0.01, 20}, {0.01, 20}, {0.01, 20}, {0.01, 50},
	{1, 10}, {0.01, 5}, {0.01, 5}, {0, 1},
	{0, 6}, {0, 1}, {0.01, 5}, {0.01, 6},
	{0.01, 3}, {0.01, 1}, {0.01, 5}, {0, 1},
	{0.01, 6}, {0.01, 3}, {0.01, 3},
}

func clampWeight(i int, v float64) float64 {
	if v < bounds[i][0] {
		return bounds[i][0]
	}
	if v > bounds[i][1] {
		return bounds[i][1]
	}
	return v
}

// groupByCard partitions events by CardID. It does not sort: each
// card's events keep the order in which they appear in the input.
func groupByCard(events []Event) map[string][]Event {
	out := map[string][]Event{}
	for _, e := range events {
		out[e.CardID] = append(out[e.CardID], e)
	}
	return out
}

// Loss computes the RMSE between predicted retrievability and actual
// recall (1 for success, 0 for Again) over every non-first event,
// walking each card's sequence forward and updating S/D per §4.1.
func Loss(w []float64, events []Event) float64 {
	byCard := groupByCard(events)

	var sumSq float64
	var count int
	for _, seq := range byCard {
		var stability, difficulty float64
		for _, e := range seq {
			if e.IsFirst {
				stability = fsrs.InitStability(w, e.Rating)
				difficulty = fsrs.InitDifficulty(w, e.Rating)
				continue
			}
			predicted := fsrs.Retrievability(e.Elapsed, stability)
			actual := 1.0
			if e.Rating == domain.Again {
				actual = 0.0
			}
			diff := predicted - actual
			sumSq += diff * diff
			count++

			nextD := fsrs.NextDifficulty(w, difficulty, e.Rating)
			if e.Rating == domain.Again {
				stability = fsrs.FailureStability(w, stability, difficulty, predicted)
			} else {
				stability = fsrs.SuccessStability(w, stability, difficulty, predicted, e.Rating)
			}
			difficulty = nextD
		}
	}
	if count == 0 {
		return 0
	}
	return math.Sqrt(sumSq / float64(count))
}

// Config holds the Adam optimizer's hyperparameters, per §4.9.
type Config struct {
	LearningRate    float64
	Beta1           float64
	Beta2           float64
	Epsilon         float64
	MaxIterations   int
	EarlyStopAfter  int
	EarlyStopDelta  float64
}

// DefaultConfig returns the §4.9 hyperparameter defaults.
func DefaultConfig() Config {
	return Config{
		LearningRate:   0.005,
		Beta1:          0.9,
		Beta2:          0.999,
		Epsilon:        1e-8,
		MaxIterations:  500,
		EarlyStopAfter: 50,
		EarlyStopDelta: 1e-7,
	}
}

// Result is the fitted output.
type Result struct {
	Weights    []float64
	FinalLoss  float64
	Iterations int
}

// centralDifferenceGradient computes ∂loss/∂w_i for every index via a
// central finite difference with step h_i = max(1e-4, |w_i|*1e-4).
func centralDifferenceGradient(w []float64, events []Event) []float64 {
	grad := make([]float64, len(w))
	for i := range w {
		h := math.Max(1e-4, math.Abs(w[i])*1e-4)

		plus := append([]float64(nil), w...)
		plus[i] = clampWeight(i, w[i]+h)
		minus := append([]float64(nil), w...)
		minus[i] = clampWeight(i, w[i]-h)

		lossPlus := Loss(plus, events)
		lossMinus := Loss(minus, events)
		grad[i] = (lossPlus - lossMinus) / (2 * h)
	}
	return grad
}

// Fit runs Adam gradient descent starting from initial (typically
// domain.DefaultFSRSWeights), returning the best parameters observed
// across the run (not necessarily the final iterate).
func Fit(initial []float64, events []Event, cfg Config) Result {
	w := append([]float64(nil), initial...)
	m := make([]float64, len(w))
	v := make([]float64, len(w))

	bestW := append([]float64(nil), w...)
	bestLoss := Loss(w, events)
	prevLoss := bestLoss

	iterations := 0
	for t := 1; t <= cfg.MaxIterations; t++ {
		iterations = t
		grad := centralDifferenceGradient(w, events)

		for i := range w {
			m[i] = cfg.Beta1*m[i] + (1-cfg.Beta1)*grad[i]
			v[i] = cfg.Beta2*v[i] + (1-cfg.Beta2)*grad[i]*grad[i]

			mHat := m[i] / (1 - math.Pow(cfg.Beta1, float64(t)))
			vHat := v[i] / (1 - math.Pow(cfg.Beta2, float64(t)))

			w[i] = clampWeight(i, w[i]-cfg.LearningRate*mHat/(math.Sqrt(vHat)+cfg.Epsilon))
		}

		loss := Loss(w, events)
		if loss < bestLoss {
			bestLoss = loss
			bestW = append([]float64(nil), w...)
		}

		if t > cfg.EarlyStopAfter && math.Abs(prevLoss-loss) < cfg.EarlyStopDelta {
			prevLoss = loss
			break
		}
		prevLoss = loss
	}

	return Result{Weights: bestW, FinalLoss: bestLoss, Iterations: iterations}
}

// RecommendedRetention implements §4.9's retention recommendation:
// average the terminal stability across every card with at least 3
// events, then map via R = 0.85 + 0.05*sigmoid((avgS-30)/20), rounded
// to 2 decimals.
func RecommendedRetention(w []float64, events []Event) float64 {
	byCard := groupByCard(events)

	var sum float64
	var n int
	for _, seq := range byCard {
		if len(seq) < 3 {
			continue
		}
		var stability, difficulty float64
		for _, e := range seq {
			if e.IsFirst {
				stability = fsrs.InitStability(w, e.Rating)
				difficulty = fsrs.InitDifficulty(w, e.Rating)
				continue
			}
			predicted := fsrs.Retrievability(e.Elapsed, stability)
			nextD := fsrs.NextDifficulty(w, difficulty, e.Rating)
			if e.Rating == domain.Again {
				stability = fsrs.FailureStability(w, stability, difficulty, predicted)
			} else {
				stability = fsrs.SuccessStability(w, stability, difficulty, predicted, e.Rating)
			}
			difficulty = nextD
		}
		sum += stability
		n++
	}

	if n == 0 {
		return 0.9
	}
	avgS := sum / float64(n)
	sigmoid := 1 / (1 + math.Exp(-(avgS-30)/20))
	r := 0.85 + 0.05*sigmoid
	return math.Round(r*100) / 100
}
