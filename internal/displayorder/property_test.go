package displayorder

import (
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/flashcore/srscore/internal/domain"
)

func makeGroup(prefix string, n int, now time.Time) []domain.Card {
	cards := make([]domain.Card, n)
	for i := 0; i < n; i++ {
		cards[i] = cardWithState(prefix+string(rune('a'+i%26))+string(rune('0'+i/26)), domain.Review, now)
	}
	return cards
}

// TestProperty_InterleavePreservesEveryItem covers invariant 8: no
// matter the relative group sizes, Interleave is a bijection from the
// two input slices onto the output slice.
func TestProperty_InterleavePreservesEveryItem(t *testing.T) {
	properties := gopter.NewProperties(gopter.DefaultTestParameters())
	now := time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC)

	properties.Property("every card from both groups appears exactly once in Interleave's output", prop.ForAll(
		func(aSize, bSize int) bool {
			a := makeGroup("a-", aSize, now)
			b := makeGroup("b-", bSize, now)

			out := Interleave(a, b)
			if len(out) != aSize+bSize {
				return false
			}

			seen := make(map[string]int, len(out))
			for _, c := range out {
				seen[c.ID]++
			}
			for _, c := range a {
				if seen[c.ID] != 1 {
					return false
				}
			}
			for _, c := range b {
				if seen[c.ID] != 1 {
					return false
				}
			}
			return true
		},
		gen.IntRange(0, 20),
		gen.IntRange(0, 20),
	))

	properties.TestingRun(t)
}
