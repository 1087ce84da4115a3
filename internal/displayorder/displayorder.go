// Package displayorder implements §4.5: partitioning a batch of
// eligible cards into gather buckets, sorting each bucket, and
// interleaving them into the final study order.
package displayorder

import (
	"sort"
	"time"

	"github.com/flashcore/srscore/internal/domain"
	"github.com/flashcore/srscore/internal/memory/fsrs"
	"github.com/flashcore/srscore/internal/platform/rng"
)

// GatherOrder selects how New cards are grouped before sorting.
type GatherOrder int

const (
	GatherDeck GatherOrder = iota
	GatherDeckRandom
	GatherAscPos
	GatherDescPos
	GatherRandomNotes
	GatherRandomCards
)

// SortOrder selects the final ordering applied within a gathered
// group of New cards.
type SortOrder int

const (
	SortCardTemplate SortOrder = iota
	SortRandom
	SortAscPos
	SortDescPos
	SortGatherOrder
	SortReverseGatherOrder
)

// ReviewSortOrder selects the ordering applied to the review bucket.
type ReviewSortOrder int

const (
	ReviewSortDueDate ReviewSortOrder = iota
	ReviewSortDueDateRandom
	ReviewSortDeck
	ReviewSortAscInterval
	ReviewSortDescInterval
	ReviewSortAscEase // == DescDifficulty
	ReviewSortDescEase // == AscDifficulty
	ReviewSortRelativeOverdueness
	ReviewSortRetrievability
)

// GroupPlacement selects where a non-urgent group sits relative to
// another: before it, after it, or interleaved ("mix").
type GroupPlacement int

const (
	PlacementBefore GroupPlacement = iota
	PlacementAfter
	PlacementMix
)

// Config holds the pipeline's configuration knobs.
type Config struct {
	NewGatherOrder          GatherOrder
	NewSortOrder            SortOrder
	ReviewSort              ReviewSortOrder
	InterdayLearningVsReview GroupPlacement
	NewVsReview              GroupPlacement
	RequestRetention         float64 // not consulted by any sort; retrievability uses stability and elapsed time only
}

// position carries the original index, used by the *_pos sort orders
// and as a stable index for grouping notes.
type position struct {
	card  domain.Card
	index int
}

// Order partitions and orders cards into the final study sequence.
// Intraday learning always leads (urgency); the remaining three
// buckets are combined per Config's placement rules.
func Order(cards []domain.Card, now time.Time, cfg Config, r rng.Rng) []domain.Card {
	intraday, interday, news, reviews := partition(cards, now)

	news = sortNew(news, cfg.NewGatherOrder, cfg.NewSortOrder, r)
	reviews = sortReview(reviews, cfg.ReviewSort, now, cfg.RequestRetention, r)
	interday = sortByDue(interday)
	intraday = sortByDue(intraday)

	newVsReview := combine(news, reviews, cfg.NewVsReview)
	rest := combine(interday, newVsReview, cfg.InterdayLearningVsReview)

	return append(append([]domain.Card{}, intraday...), rest...)
}

// partition buckets eligible cards into intraday learning
// (Learning/Relearning cards due less than 24 hours after now),
// interday learning (Learning/Relearning cards due 24 hours or more ahead),
// New, and Review.
func partition(cards []domain.Card, now time.Time) (intraday, interday, news, reviews []domain.Card) {
	sameDay := now.AddDate(0, 0, 1)
	for _, c := range cards {
		switch c.Scheduling.State {
		case domain.New:
			news = append(news, c)
		case domain.Review:
			reviews = append(reviews, c)
		case domain.Learning, domain.Relearning:
			if c.Due.Before(sameDay) {
				intraday = append(intraday, c)
			} else {
				interday = append(interday, c)
			}
		}
	}
	return
}

func sortByDue(cards []domain.Card) []domain.Card {
	out := append([]domain.Card(nil), cards...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Due.Before(out[j].Due) })
	return out
}

func sortNew(cards []domain.Card, gather GatherOrder, order SortOrder, r rng.Rng) []domain.Card {
	positions := make([]position, len(cards))
	for i, c := range cards {
		positions[i] = position{card: c, index: i}
	}

	gathered := gatherNew(positions, gather, r)
	return applySortOrder(gathered, order, gather, r)
}

func gatherNew(positions []position, gather GatherOrder, r rng.Rng) []position {
	out := append([]position(nil), positions...)
	switch gather {
	case GatherDeck:
		sort.SliceStable(out, func(i, j int) bool { return out[i].card.DeckID < out[j].card.DeckID })
	case GatherDeckRandom:
		byDeck := groupByDeck(out)
		decks := make([]string, 0, len(byDeck))
		for d := range byDeck {
			decks = append(decks, d)
		}
		sort.Strings(decks)
		shuffleStrings(decks, r)
		out = out[:0]
		for _, d := range decks {
			out = append(out, byDeck[d]...)
		}
	case GatherAscPos:
		sort.SliceStable(out, func(i, j int) bool { return out[i].index < out[j].index })
	case GatherDescPos:
		sort.SliceStable(out, func(i, j int) bool { return out[i].index > out[j].index })
	case GatherRandomNotes:
		out = gatherRandomNotes(out, r)
	case GatherRandomCards:
		shufflePositions(out, r)
	}
	return out
}

// gatherRandomNotes groups cards by NoteID (cards of the same note stay
// adjacent, in template/original order), then randomizes the order of
// the note groups themselves, per §4.5.
func gatherRandomNotes(positions []position, r rng.Rng) []position {
	order := make([]string, 0, len(positions))
	seen := map[string]bool{}
	groups := map[string][]position{}
	for _, p := range positions {
		key := p.card.NoteID
		if key == "" {
			key = "card:" + p.card.ID
		}
		if !seen[key] {
			seen[key] = true
			order = append(order, key)
		}
		groups[key] = append(groups[key], p)
	}
	shuffleStrings(order, r)
	out := make([]position, 0, len(positions))
	for _, key := range order {
		out = append(out, groups[key]...)
	}
	return out
}

func groupByDeck(positions []position) map[string][]position {
	m := map[string][]position{}
	for _, p := range positions {
		m[p.card.DeckID] = append(m[p.card.DeckID], p)
	}
	return m
}

func applySortOrder(positions []position, order SortOrder, gather GatherOrder, r rng.Rng) []domain.Card {
	out := append([]position(nil), positions...)
	switch order {
	case SortRandom:
		shufflePositions(out, r)
	case SortAscPos:
		sort.SliceStable(out, func(i, j int) bool { return out[i].index < out[j].index })
	case SortDescPos:
		sort.SliceStable(out, func(i, j int) bool { return out[i].index > out[j].index })
	case SortReverseGatherOrder:
		reversePositions(out)
	case SortGatherOrder, SortCardTemplate:
		// keep the order the gather step already produced.
	}
	cards := make([]domain.Card, len(out))
	for i, p := range out {
		cards[i] = p.card
	}
	return cards
}

func reversePositions(p []position) {
	for i, j := 0, len(p)-1; i < j; i, j = i+1, j-1 {
		p[i], p[j] = p[j], p[i]
	}
}

func shufflePositions(p []position, r rng.Rng) {
	for i := len(p) - 1; i > 0; i-- {
		j := r.Intn(i + 1)
		p[i], p[j] = p[j], p[i]
	}
}

func shuffleStrings(s []string, r rng.Rng) {
	for i := len(s) - 1; i > 0; i-- {
		j := r.Intn(i + 1)
		s[i], s[j] = s[j], s[i]
	}
}

func sortReview(cards []domain.Card, order ReviewSortOrder, now time.Time, requestRetention float64, r rng.Rng) []domain.Card {
	out := append([]domain.Card(nil), cards...)
	switch order {
	case ReviewSortDueDate:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Due.Before(out[j].Due) })
	case ReviewSortDueDateRandom:
		sort.SliceStable(out, func(i, j int) bool { return sameDay(out[i].Due, out[j].Due) == false && out[i].Due.Before(out[j].Due) })
		shuffleWithinSameDay(out, r)
	case ReviewSortDeck:
		sort.SliceStable(out, func(i, j int) bool { return out[i].DeckID < out[j].DeckID })
	case ReviewSortAscInterval:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].Scheduling.ScheduledDays < out[j].Scheduling.ScheduledDays
		})
	case ReviewSortDescInterval:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].Scheduling.ScheduledDays > out[j].Scheduling.ScheduledDays
		})
	case ReviewSortAscEase: // == desc difficulty
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].Scheduling.Difficulty > out[j].Scheduling.Difficulty
		})
	case ReviewSortDescEase: // == asc difficulty
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].Scheduling.Difficulty < out[j].Scheduling.Difficulty
		})
	case ReviewSortRelativeOverdueness:
		sort.SliceStable(out, func(i, j int) bool {
			return relativeOverdueness(out[i], now) > relativeOverdueness(out[j], now)
		})
	case ReviewSortRetrievability:
		sort.SliceStable(out, func(i, j int) bool {
			return retrievabilityNow(out[i], now) < retrievabilityNow(out[j], now)
		})
	}
	return out
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// shuffleWithinSameDay randomly permutes runs of cards that share a
// calendar due-date, keeping the overall date ordering intact.
func shuffleWithinSameDay(cards []domain.Card, r rng.Rng) {
	i := 0
	for i < len(cards) {
		j := i + 1
		for j < len(cards) && sameDay(cards[i].Due, cards[j].Due) {
			j++
		}
		run := cards[i:j]
		for k := len(run) - 1; k > 0; k-- {
			l := r.Intn(k + 1)
			run[k], run[l] = run[l], run[k]
		}
		i = j
	}
}

// relativeOverdueness is overdue_days / max(1, scheduledDays), per
// §4.5.
func relativeOverdueness(c domain.Card, now time.Time) float64 {
	overdueDays := now.Sub(c.Due).Hours() / 24
	denom := c.Scheduling.ScheduledDays
	if denom < 1 {
		denom = 1
	}
	return overdueDays / denom
}

func retrievabilityNow(c domain.Card, now time.Time) float64 {
	elapsed := 0.0
	if c.Scheduling.LastReview != nil {
		elapsed = now.Sub(*c.Scheduling.LastReview).Hours() / 24
	}
	return fsrs.Retrievability(elapsed, c.Scheduling.Stability)
}

// combine joins groups a and b according to placement: Before puts a
// first, After puts b first, and Mix interleaves the smaller of the
// two groups through the larger one.
func combine(a, b []domain.Card, placement GroupPlacement) []domain.Card {
	switch placement {
	case PlacementBefore:
		return append(append([]domain.Card{}, a...), b...)
	case PlacementAfter:
		return append(append([]domain.Card{}, b...), a...)
	default: // mix
		return Interleave(a, b)
	}
}

// Interleave evenly distributes the smaller group's items through the
// larger group, per §4.5 step 6: given groups of sizes s <= L, place
// one small-group item every (s+L)/s positions, starting at
// (s+L)/(2s). Implements invariant 8: no two smaller-group items are
// adjacent unless s > L/2, and every item appears exactly once.
func Interleave(a, b []domain.Card) []domain.Card {
	small, large := a, b
	if len(a) > len(b) {
		small, large = b, a
	}
	s, l := len(small), len(large)
	total := s + l
	if s == 0 {
		return append([]domain.Card{}, large...)
	}

	step := float64(total) / float64(s)
	start := step / 2

	out := make([]domain.Card, 0, total)
	nextSmallPos := start
	smallIdx, largeIdx := 0, 0
	for pos := 0; pos < total; pos++ {
		if smallIdx < s && float64(pos) >= nextSmallPos {
			out = append(out, small[smallIdx])
			smallIdx++
			nextSmallPos += step
			continue
		}
		if largeIdx < l {
			out = append(out, large[largeIdx])
			largeIdx++
		} else if smallIdx < s {
			out = append(out, small[smallIdx])
			smallIdx++
		}
	}
	return out
}
