package main

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flashcore/srscore/internal/config"
	"github.com/flashcore/srscore/internal/domain"
	"github.com/flashcore/srscore/internal/platform/clock"
	"github.com/flashcore/srscore/internal/platform/rng"
)

func newTestService(t *testing.T) (*FlashcardService, *clock.Frozen) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "flashcards.json")
	frozen := clock.NewFrozen(time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC))
	svc, err := NewFlashcardService(path, config.Default(), frozen, rng.New(7), nil)
	require.NoError(t, err)
	return svc, frozen
}

func newCard(id string, now time.Time) domain.Card {
	return domain.Card{
		ID:        id,
		DeckID:    "deck-1",
		NoteID:    "note-" + id,
		Status:    domain.Active,
		Due:       now,
		CreatedAt: now,
		UpdatedAt: now,
		Scheduling: domain.CardSchedulingData{
			State: domain.New,
		},
	}
}

func TestFlashcardService_GetDueCardAndSubmitReview(t *testing.T) {
	svc, frozen := newTestService(t)
	now := frozen.Now()
	require.NoError(t, svc.Store.PutCard(newCard("c1", now)))

	card, stats, err := svc.GetDueCard("deck-1")
	require.NoError(t, err)
	require.NotNil(t, card)
	assert.Equal(t, "c1", card.ID)
	assert.Equal(t, 1, stats.NewCount)

	updated, err := svc.SubmitReview("c1", domain.Easy, 1500)
	require.NoError(t, err)
	assert.Equal(t, domain.Review, updated.Scheduling.State)
	assert.Equal(t, 1, updated.Scheduling.Reps)

	reverted, err := svc.UndoReview("c1")
	require.NoError(t, err)
	assert.Equal(t, domain.New, reverted.Scheduling.State)
}

func TestFlashcardService_GetDueCardEmptyDeck(t *testing.T) {
	svc, _ := newTestService(t)
	card, stats, err := svc.GetDueCard("deck-1")
	require.NoError(t, err)
	assert.Nil(t, card)
	assert.Equal(t, 0, stats.TotalCount)
}

func TestFlashcardService_SessionLifecycle(t *testing.T) {
	svc, frozen := newTestService(t)
	now := frozen.Now()
	for _, id := range []string{"c1", "c2", "c3"} {
		require.NoError(t, svc.Store.PutCard(newCard(id, now)))
	}

	first, progress, err := svc.StartSession("deck-1")
	require.NoError(t, err)
	require.NotNil(t, first)
	assert.Equal(t, 3, progress.Remaining)

	_, _, _, _, err = svc.SessionAnswer(domain.Good, 2000)
	require.NoError(t, err)

	_, _, progress, _, err = svc.SessionAnswer(domain.Again, 1000)
	require.NoError(t, err)
	assert.Equal(t, 2, progress.Completed)

	summary, err := svc.EndSession()
	require.NoError(t, err)
	assert.Equal(t, 2, summary.TotalCards)

	_, err = svc.EndSession()
	assert.ErrorIs(t, err, ErrNoSessionActive)
}

func TestFlashcardService_RunSimulation(t *testing.T) {
	svc, frozen := newTestService(t)
	now := frozen.Now()
	last := now.Add(-10 * 24 * time.Hour)
	card := newCard("c1", now)
	card.Scheduling.State = domain.Review
	card.Scheduling.Stability = 10
	card.Scheduling.Difficulty = 5
	card.Scheduling.LastReview = &last
	require.NoError(t, svc.Store.PutCard(card))

	result, err := svc.RunSimulation("deck-1", 14, 0, 5)
	require.NoError(t, err)
	assert.Len(t, result.Days, 14)
}

func TestFlashcardService_OptimizeParameters_NotEnoughData(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.OptimizeParameters()
	assert.ErrorIs(t, err, ErrNotEnoughData)
}

func TestFlashcardService_RecommendRetention(t *testing.T) {
	svc, frozen := newTestService(t)
	now := frozen.Now()
	card := newCard("c1", now)
	card.Scheduling.State = domain.Review
	card.Scheduling.Stability = 30
	require.NoError(t, svc.Store.PutCard(card))

	r, err := svc.RecommendRetention(5, 8)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, r, 0.70)
	assert.LessOrEqual(t, r, 0.97)
}
