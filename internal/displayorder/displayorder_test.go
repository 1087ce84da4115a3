package displayorder

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/flashcore/srscore/internal/domain"
	"github.com/flashcore/srscore/internal/platform/rng"
)

func cardWithState(id string, state domain.CardState, due time.Time) domain.Card {
	return domain.Card{ID: id, DeckID: "deck-1", Due: due, Status: domain.Active, Scheduling: domain.CardSchedulingData{State: state}}
}

func TestPartition_SplitsByStateAndUrgency(t *testing.T) {
	now := time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC)
	cards := []domain.Card{
		cardWithState("n1", domain.New, now),
		cardWithState("r1", domain.Review, now.Add(-time.Hour)),
		cardWithState("l-intraday", domain.Learning, now.Add(10*time.Minute)),
		cardWithState("l-interday", domain.Learning, now.Add(48*time.Hour)),
	}

	intraday, interday, news, reviews := partition(cards, now)
	require.Len(t, intraday, 1)
	require.Equal(t, "l-intraday", intraday[0].ID)
	require.Len(t, interday, 1)
	require.Equal(t, "l-interday", interday[0].ID)
	require.Len(t, news, 1)
	require.Len(t, reviews, 1)
}

func TestOrder_IntradayLearningAlwaysLeads(t *testing.T) {
	now := time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC)
	cards := []domain.Card{
		cardWithState("review", domain.Review, now.Add(-time.Hour)),
		cardWithState("new", domain.New, now),
		cardWithState("intraday", domain.Learning, now.Add(5*time.Minute)),
	}

	ordered := Order(cards, now, Config{NewVsReview: PlacementBefore, InterdayLearningVsReview: PlacementBefore}, rng.New(1))
	require.Equal(t, "intraday", ordered[0].ID)
}

func TestInterleave_EveryItemAppearsExactlyOnce(t *testing.T) {
	small := []domain.Card{{ID: "s1"}, {ID: "s2"}}
	large := []domain.Card{{ID: "l1"}, {ID: "l2"}, {ID: "l3"}, {ID: "l4"}, {ID: "l5"}, {ID: "l6"}}

	out := Interleave(small, large)
	require.Len(t, out, 8)

	seen := map[string]bool{}
	for _, c := range out {
		require.False(t, seen[c.ID], "duplicate %s", c.ID)
		seen[c.ID] = true
	}
	for _, c := range append(small, large...) {
		require.True(t, seen[c.ID])
	}
}

func TestInterleave_NoTwoSmallItemsAdjacentWhenMinority(t *testing.T) {
	small := []domain.Card{{ID: "s1"}, {ID: "s2"}}
	large := []domain.Card{{ID: "l1"}, {ID: "l2"}, {ID: "l3"}, {ID: "l4"}, {ID: "l5"}, {ID: "l6"}, {ID: "l7"}, {ID: "l8"}}

	out := Interleave(small, large)
	for i := 1; i < len(out); i++ {
		bothSmall := (out[i].ID == "s1" || out[i].ID == "s2") && (out[i-1].ID == "s1" || out[i-1].ID == "s2")
		require.False(t, bothSmall, "two small-group items adjacent at %d", i)
	}
}

func TestInterleave_EmptySmallGroupReturnsLargeUnchanged(t *testing.T) {
	large := []domain.Card{{ID: "l1"}, {ID: "l2"}}
	out := Interleave(nil, large)
	require.Equal(t, large, out)
}

func TestSortReview_AscInterval(t *testing.T) {
	now := time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC)
	cards := []domain.Card{
		{ID: "a", Scheduling: domain.CardSchedulingData{ScheduledDays: 10}},
		{ID: "b", Scheduling: domain.CardSchedulingData{ScheduledDays: 2}},
		{ID: "c", Scheduling: domain.CardSchedulingData{ScheduledDays: 5}},
	}
	out := sortReview(cards, ReviewSortAscInterval, now, 0.9, rng.New(1))
	require.Equal(t, []string{"b", "c", "a"}, []string{out[0].ID, out[1].ID, out[2].ID})
}

func TestSortNew_AscPosPreservesOriginalOrder(t *testing.T) {
	cards := []domain.Card{{ID: "a"}, {ID: "b"}, {ID: "c"}}
	out := sortNew(cards, GatherAscPos, SortAscPos, rng.New(1))
	require.Equal(t, []string{"a", "b", "c"}, []string{out[0].ID, out[1].ID, out[2].ID})
}
