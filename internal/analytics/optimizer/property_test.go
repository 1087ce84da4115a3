package optimizer

import (
	"math/rand"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/flashcore/srscore/internal/domain"
)

// randomEvents synthesizes a plausible review history for n cards:
// a first-seen event followed by a handful of spaced reviews each.
func randomEvents(n int, seed int64) []Event {
	r := rand.New(rand.NewSource(seed))
	events := make([]Event, 0, n*3)
	for i := 0; i < n; i++ {
		cardID := string(rune('a' + i%26))
		events = append(events, Event{CardID: cardID, Elapsed: 0, Rating: domain.Good, IsFirst: true})
		reviews := r.Intn(4)
		for j := 0; j < reviews; j++ {
			events = append(events, Event{
				CardID:  cardID,
				Elapsed: 1 + r.Float64()*30,
				Rating:  domain.Rating(1 + r.Intn(4)),
				IsFirst: false,
			})
		}
	}
	return events
}

// TestProperty_FitReturnsBoundedWeights covers invariant 10: whatever
// history Fit is handed, the returned weights never leave the
// documented per-index clamp ranges.
func TestProperty_FitReturnsBoundedWeights(t *testing.T) {
	properties := gopter.NewProperties(gopter.DefaultTestParameters())

	properties.Property("Fit's result weights stay within the documented bounds", prop.ForAll(
		func(n int, seed int64) bool {
			events := randomEvents(n, seed)
			cfg := DefaultConfig()
			cfg.MaxIterations = 5

			result := Fit(append([]float64(nil), domain.DefaultFSRSWeights...), events, cfg)
			if len(result.Weights) != len(bounds) {
				return false
			}
			for i, w := range result.Weights {
				if w < bounds[i][0]-1e-9 || w > bounds[i][1]+1e-9 {
					return false
				}
			}
			return true
		},
		gen.IntRange(0, 10),
		gen.Int64Range(1, 1_000_000),
	))

	properties.TestingRun(t)
}
