package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/flashcore/srscore/internal/displayorder"
	"github.com/flashcore/srscore/internal/domain"
	"github.com/flashcore/srscore/internal/platform/clock"
	"github.com/flashcore/srscore/internal/platform/rng"
	"github.com/flashcore/srscore/internal/scheduler"
)

func newEnhancedTestSession(t *testing.T, store *fakeStore, now time.Time) *EnhancedSession {
	t.Helper()
	sched := scheduler.New(domain.FSRS, store, clock.NewFrozen(now), rng.New(1), nil)
	cfg := DefaultConfig()
	cfg.PrefetchSize = 4
	base, err := Start(sched, displayorder.Config{}, cfg, clock.NewFrozen(now), rng.New(2), "deck-1")
	require.NoError(t, err)
	return StartEnhanced(base)
}

func TestEnhancedSession_StreakMilestoneEmitsFeedback(t *testing.T) {
	now := time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC)
	store := newFakeStore()
	for i := 0; i < 6; i++ {
		seedCard(store, string(rune('a'+i)), domain.New, now.Add(-time.Hour))
	}
	es := newEnhancedTestSession(t, store, now)

	var allEvents []MicroFeedbackEvent
	for i := 0; i < 5; i++ {
		_, err := es.AnswerCard(domain.Good, 4000)
		require.NoError(t, err)
		allEvents = append(allEvents, es.DrainFeedback()...)
	}

	foundMilestone := false
	for _, e := range allEvents {
		if e.Type == "milestone" {
			foundMilestone = true
		}
	}
	require.True(t, foundMilestone)
}

func TestEnhancedSession_AgainResetsStreak(t *testing.T) {
	now := time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC)
	store := newFakeStore()
	seedCard(store, "c1", domain.New, now.Add(-time.Hour))
	seedCard(store, "c2", domain.New, now.Add(-time.Hour))
	es := newEnhancedTestSession(t, store, now)

	_, err := es.AnswerCard(domain.Good, 1000)
	require.NoError(t, err)
	require.Equal(t, 1, es.streak)

	_, err = es.AnswerCard(domain.Again, 1000)
	require.NoError(t, err)
	require.Equal(t, 0, es.streak)
}

func TestEnhancedSession_DrainFeedbackClearsQueue(t *testing.T) {
	now := time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC)
	store := newFakeStore()
	seedCard(store, "c1", domain.New, now.Add(-time.Hour))
	es := newEnhancedTestSession(t, store, now)

	_, err := es.AnswerCard(domain.Good, 1000)
	require.NoError(t, err)
	_ = es.DrainFeedback()
	require.Empty(t, es.DrainFeedback())
}
