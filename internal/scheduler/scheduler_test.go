package scheduler

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/flashcore/srscore/internal/domain"
	"github.com/flashcore/srscore/internal/easydays"
	"github.com/flashcore/srscore/internal/platform/clock"
	"github.com/flashcore/srscore/internal/platform/rng"
)

// fakeStore is an in-memory Store used by tests, grounded on the same
// map-backed approach the teacher's FileStorage uses internally.
type fakeStore struct {
	cards map[string]domain.Card
	logs  map[string][]domain.ReviewLog
}

func newFakeStore() *fakeStore {
	return &fakeStore{cards: map[string]domain.Card{}, logs: map[string][]domain.ReviewLog{}}
}

func (f *fakeStore) GetCard(id string) (domain.Card, error) {
	c, ok := f.cards[id]
	if !ok {
		return domain.Card{}, ErrCardNotFound
	}
	return c.Clone(), nil
}

func (f *fakeStore) ListCards() ([]domain.Card, error) {
	out := make([]domain.Card, 0, len(f.cards))
	for _, c := range f.cards {
		out = append(out, c.Clone())
	}
	return out, nil
}

func (f *fakeStore) PutCard(c domain.Card) error {
	f.cards[c.ID] = c.Clone()
	return nil
}

func (f *fakeStore) LastReviewLog(cardID string) (domain.ReviewLog, error) {
	logs := f.logs[cardID]
	if len(logs) == 0 {
		return domain.ReviewLog{}, ErrNothingToUndo
	}
	return logs[len(logs)-1], nil
}

func (f *fakeStore) PopLastReviewLog(cardID string) (domain.ReviewLog, error) {
	logs := f.logs[cardID]
	if len(logs) == 0 {
		return domain.ReviewLog{}, ErrNothingToUndo
	}
	last := logs[len(logs)-1]
	f.logs[cardID] = logs[:len(logs)-1]
	return last, nil
}

func (f *fakeStore) ProcessAnswer(c domain.Card, entry domain.ReviewLog) error {
	f.cards[c.ID] = c.Clone()
	f.logs[entry.CardID] = append(f.logs[entry.CardID], entry)
	return nil
}

func (f *fakeStore) AllReviewLogs() ([]domain.ReviewLog, error) {
	out := make([]domain.ReviewLog, 0)
	for _, logs := range f.logs {
		out = append(out, logs...)
	}
	return out, nil
}

func newCard(id string, state domain.CardState) domain.Card {
	now := time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC)
	return domain.Card{
		ID:        id,
		DeckID:    "deck-1",
		Status:    domain.Active,
		Due:       now,
		CreatedAt: now,
		UpdatedAt: now,
		Scheduling: domain.CardSchedulingData{
			State: state,
		},
	}
}

func TestScheduler_ProcessAnswer_NewCardEasyGraduatesToReview(t *testing.T) {
	store := newFakeStore()
	require.NoError(t, store.PutCard(newCard("c1", domain.New)))

	now := time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC)
	s := New(domain.FSRS, store, clock.NewFrozen(now), rng.New(1), nil)

	updated, err := s.ProcessAnswer("c1", domain.Easy, 1500)
	require.NoError(t, err)
	require.Equal(t, domain.Review, updated.Scheduling.State)
	require.Equal(t, 1, updated.Scheduling.Reps)
	require.InDelta(t, s.FSRS.W[3], updated.Scheduling.Stability, 1e-9)

	last, err := store.LastReviewLog("c1")
	require.NoError(t, err)
	require.Equal(t, domain.Easy, last.Rating)
	require.Equal(t, domain.New, last.StateBefore)
}

func TestScheduler_ProcessAnswer_UnknownCard(t *testing.T) {
	store := newFakeStore()
	s := New(domain.FSRS, store, clock.NewFrozen(time.Now()), rng.New(1), nil)

	_, err := s.ProcessAnswer("missing", domain.Good, 0)
	require.ErrorIs(t, err, ErrCardNotFound)
}

func TestScheduler_UndoLastReview_RestoresByteForByte(t *testing.T) {
	store := newFakeStore()
	require.NoError(t, store.PutCard(newCard("c1", domain.New)))

	now := time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC)
	s := New(domain.FSRS, store, clock.NewFrozen(now), rng.New(1), nil)

	before, err := store.GetCard("c1")
	require.NoError(t, err)

	_, err = s.ProcessAnswer("c1", domain.Good, 1000)
	require.NoError(t, err)

	restored, err := s.UndoLastReview("c1")
	require.NoError(t, err)
	require.Equal(t, before.Scheduling, restored.Scheduling)
	require.True(t, before.Due.Equal(restored.Due))

	_, err = s.UndoLastReview("c1")
	require.ErrorIs(t, err, ErrNothingToUndo)
}

func TestScheduler_GetNextCards_OrdersByStatePriorityThenDue(t *testing.T) {
	store := newFakeStore()
	now := time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC)

	review := newCard("review", domain.Review)
	review.Due = now.Add(-time.Hour)
	learning := newCard("learning", domain.Learning)
	learning.Due = now.Add(-time.Minute)
	newCardEarly := newCard("new-early", domain.New)
	newCardEarly.Due = now.Add(-2 * time.Hour)

	require.NoError(t, store.PutCard(review))
	require.NoError(t, store.PutCard(learning))
	require.NoError(t, store.PutCard(newCardEarly))

	s := New(domain.FSRS, store, clock.NewFrozen(now), rng.New(1), nil)
	cards, err := s.GetNextCards("deck-1", 0)
	require.NoError(t, err)
	require.Len(t, cards, 3)
	require.Equal(t, "learning", cards[0].ID)
	require.Equal(t, "new-early", cards[1].ID)
	require.Equal(t, "review", cards[2].ID)
}

func TestScheduler_BuryDailySiblings(t *testing.T) {
	store := newFakeStore()
	a := newCard("a", domain.New)
	a.NoteID = "note-1"
	b := newCard("b", domain.New)
	b.NoteID = "note-1"

	require.NoError(t, store.PutCard(a))
	require.NoError(t, store.PutCard(b))

	s := New(domain.FSRS, store, clock.NewFrozen(time.Now()), rng.New(1), nil)
	require.NoError(t, s.BuryDailySiblings("note-1", "a"))

	got, err := store.GetCard("b")
	require.NoError(t, err)
	require.Equal(t, domain.Buried, got.Status)

	got, err = store.GetCard("a")
	require.NoError(t, err)
	require.Equal(t, domain.Active, got.Status)
}

func TestScheduler_ProcessAnswer_ShiftsDueOffEasyDay(t *testing.T) {
	store := newFakeStore()
	require.NoError(t, store.PutCard(newCard("c1", domain.New)))

	now := time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC)
	s := New(domain.FSRS, store, clock.NewFrozen(now), rng.New(1), nil)

	graduationDue := now.AddDate(0, 0, int(s.Steps.EasyGraduatingInterval))
	s.EasyDays = easydays.Multipliers{graduationDue.Weekday(): 0}

	updated, err := s.ProcessAnswer("c1", domain.Easy, 1000)
	require.NoError(t, err)

	want := easydays.ShiftDue(graduationDue, s.EasyDays)
	require.True(t, updated.Due.Equal(want))
	require.NotEqual(t, graduationDue.Weekday(), updated.Due.Weekday())
}

func TestScheduler_GetStudyStats_AccuracyAndEstimatedMinutes(t *testing.T) {
	store := newFakeStore()
	now := time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC)

	review := newCard("review", domain.Review)
	learning := newCard("learning", domain.Learning)
	for i := 0; i < 3; i++ {
		n := newCard(fmt.Sprintf("new-%d", i), domain.New)
		require.NoError(t, store.PutCard(n))
	}
	require.NoError(t, store.PutCard(review))
	require.NoError(t, store.PutCard(learning))

	store.logs["review"] = []domain.ReviewLog{
		{CardID: "review", Rating: domain.Good, ReviewedAt: now.AddDate(0, 0, -1)},
		{CardID: "review", Rating: domain.Again, ReviewedAt: now.AddDate(0, 0, -2)},
		{CardID: "review", Rating: domain.Good, ReviewedAt: now.AddDate(0, 0, -40)}, // outside 30-day window
	}

	s := New(domain.FSRS, store, clock.NewFrozen(now), rng.New(1), nil)
	stats, err := s.GetStudyStats("deck-1", 2)
	require.NoError(t, err)

	require.Equal(t, 3, stats.NewCount)
	require.Equal(t, 1, stats.ReviewCount)
	require.Equal(t, 1, stats.LearningCount)
	require.InDelta(t, 0.5, stats.RecentAccuracy, 1e-9)
	// reviewCount*8 + learningCount*12 + min(newCount, dailyNewLimit=2)*20 = 8+12+40 = 60s -> 1 minute.
	require.Equal(t, 1, stats.EstimatedMinutes)
}

func TestScheduler_UnburyAll(t *testing.T) {
	store := newFakeStore()
	c := newCard("a", domain.New)
	c.Status = domain.Buried
	require.NoError(t, store.PutCard(c))

	s := New(domain.FSRS, store, clock.NewFrozen(time.Now()), rng.New(1), nil)
	require.NoError(t, s.UnburyAll())

	got, err := store.GetCard("a")
	require.NoError(t, err)
	require.Equal(t, domain.Active, got.Status)
}
