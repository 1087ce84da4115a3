// Package session implements §4.7's StudySession: a mutable,
// single-owner queue of cards drawn from the Scheduler, with answer
// processing, skip/pause, undo, and progress/summary reporting.
package session

import (
	"time"

	"github.com/flashcore/srscore/internal/domain"
	"github.com/flashcore/srscore/internal/displayorder"
	"github.com/flashcore/srscore/internal/easydays"
	"github.com/flashcore/srscore/internal/gamification"
	"github.com/flashcore/srscore/internal/platform/clock"
	"github.com/flashcore/srscore/internal/platform/rng"
	"github.com/flashcore/srscore/internal/scheduler"
)

// Config holds the §6 session defaults.
type Config struct {
	PrefetchSize     int
	NewCardLimit     int
	ReviewCardLimit  int
	AutoburySiblings bool
	TagFilter        []string
	Gamification     gamification.Config
	// EasyDays scales NewCardLimit by the weekday multiplier in effect
	// on the session's start date (§4.6's effective daily limit). Empty
	// means no weekday ever shapes the new-card budget.
	EasyDays easydays.Multipliers
	// Preset, when non-nil, replaces TagFilter-only candidate matching
	// with the full §3 StudyPreset predicate (tag/deck/state filters)
	// during refill. Nil preserves the plain TagFilter behavior.
	Preset *domain.StudyPreset
}

// DefaultConfig returns the §6 configuration defaults.
func DefaultConfig() Config {
	return Config{
		PrefetchSize:     50,
		NewCardLimit:     20,
		ReviewCardLimit:  200,
		AutoburySiblings: true,
		Gamification:     gamification.DefaultConfig(),
	}
}

// historyEntry records one answered card, enough to undo it.
type historyEntry struct {
	card        domain.Card
	wasNew      bool
	rating      domain.Rating
	timeSpentMs int64
}

// Progress mirrors §4.7's getProgress result.
type Progress struct {
	Completed       int
	Remaining       int
	PartitionCounts map[domain.CardState]int
	Accuracy        float64
	ElapsedMs       int64
}

// Summary mirrors §4.7's end-of-session result.
type Summary struct {
	PerRatingCounts map[domain.Rating]int
	TotalTimeMs     int64
	XP              int
	StreakUpdated   bool
	TotalCards      int
	Accuracy        float64
}

// StudySession is single-owner: callers MUST NOT invoke its methods
// concurrently from more than one goroutine.
type StudySession struct {
	scheduler *scheduler.Scheduler
	order     displayorder.Config
	cfg       Config
	clock     clock.Clock
	rng       rng.Rng
	deckID    string

	queue        []domain.Card
	currentIndex int
	history      []historyEntry

	newCardsIntroduced int
	reviewCardsStudied int
	totalTimeMs        int64
	startedAt          time.Time
	ended              bool

	newLimitRemaining    int
	reviewLimitRemaining int
}

// Start begins a session over deckID (empty deckID studies all
// decks), pulling its first batch of cards immediately.
func Start(s *scheduler.Scheduler, order displayorder.Config, cfg Config, c clock.Clock, r rng.Rng, deckID string) (*StudySession, error) {
	sess := &StudySession{
		scheduler:            s,
		order:                order,
		cfg:                  cfg,
		clock:                c,
		rng:                  r,
		deckID:               deckID,
		startedAt:            c.Now(),
		newLimitRemaining:    easydays.EffectiveDailyLimit(cfg.NewCardLimit, c.Now(), cfg.EasyDays),
		reviewLimitRemaining: cfg.ReviewCardLimit,
	}
	if err := sess.refill(); err != nil {
		return nil, err
	}
	return sess, nil
}

// GetCurrentCard returns the card awaiting an answer.
func (s *StudySession) GetCurrentCard() (domain.Card, error) {
	if s.ended {
		return domain.Card{}, ErrClosed
	}
	if s.currentIndex >= len(s.queue) {
		return domain.Card{}, ErrEmptyQueue
	}
	return s.queue[s.currentIndex], nil
}

// AnswerCard implements §4.7's answerCard steps 1-8.
func (s *StudySession) AnswerCard(rating domain.Rating, timeSpentMs int64) (domain.Card, error) {
	if s.ended {
		return domain.Card{}, ErrClosed
	}
	card, err := s.GetCurrentCard()
	if err != nil {
		return domain.Card{}, err
	}

	wasNew := card.Scheduling.State == domain.New
	if wasNew {
		s.newCardsIntroduced++
	} else {
		s.reviewCardsStudied++
	}

	updated, err := s.scheduler.ProcessAnswer(card.ID, rating, timeSpentMs)
	if err != nil {
		return domain.Card{}, err
	}
	s.totalTimeMs += timeSpentMs

	if s.cfg.AutoburySiblings && card.NoteID != "" {
		_ = s.scheduler.BuryDailySiblings(card.NoteID, card.ID)
		s.purgeSiblings(card.NoteID, card.ID)
	}

	s.history = append(s.history, historyEntry{card: card, wasNew: wasNew, rating: rating, timeSpentMs: timeSpentMs})
	s.currentIndex++

	if updated.Scheduling.State == domain.Learning || updated.Scheduling.State == domain.Relearning {
		if updated.Due.Before(s.clock.Now().AddDate(0, 0, 1)) {
			s.reinsert(updated)
		}
	}

	s.skipInactive()

	if len(s.queue)-s.currentIndex < s.cfg.PrefetchSize/2 {
		_ = s.refill()
	}

	return updated, nil
}

// purgeSiblings removes any remaining queue entries sharing noteID
// other than keepID, since they were just buried.
func (s *StudySession) purgeSiblings(noteID, keepID string) {
	out := s.queue[:s.currentIndex]
	for _, c := range s.queue[s.currentIndex:] {
		if c.NoteID == noteID && c.ID != keepID {
			continue
		}
		out = append(out, c)
	}
	s.queue = out
}

// reinsert places an intra-day card back into the upcoming queue at
// offset 3+rand(0..3), bounded by the remaining queue length, so it
// reappears later in this session.
func (s *StudySession) reinsert(card domain.Card) {
	remaining := len(s.queue) - s.currentIndex
	offset := 3 + s.rng.Intn(4)
	if offset > remaining {
		offset = remaining
	}
	pos := s.currentIndex + offset
	s.queue = append(s.queue[:pos], append([]domain.Card{card}, s.queue[pos:]...)...)
}

// skipInactive advances currentIndex past any buried/suspended
// entries left stale in the queue.
func (s *StudySession) skipInactive() {
	for s.currentIndex < len(s.queue) && s.queue[s.currentIndex].Status != domain.Active {
		s.currentIndex++
	}
}

// SkipCard buries the current card and removes it from the queue.
func (s *StudySession) SkipCard() error {
	card, err := s.GetCurrentCard()
	if err != nil {
		return err
	}
	card.Status = domain.Buried
	card.UpdatedAt = s.clock.Now()
	if err := s.scheduler.Store.PutCard(card); err != nil {
		return err
	}
	s.queue = append(s.queue[:s.currentIndex], s.queue[s.currentIndex+1:]...)
	s.skipInactive()
	return nil
}

// PauseCard suspends the current card and removes it from the queue.
func (s *StudySession) PauseCard() error {
	card, err := s.GetCurrentCard()
	if err != nil {
		return err
	}
	card.Status = domain.Suspended
	card.UpdatedAt = s.clock.Now()
	if err := s.scheduler.Store.PutCard(card); err != nil {
		return err
	}
	s.queue = append(s.queue[:s.currentIndex], s.queue[s.currentIndex+1:]...)
	s.skipInactive()
	return nil
}

// Undo pops the most recent answered card, reverts it via the
// scheduler, and reinserts it at currentIndex.
func (s *StudySession) Undo() (domain.Card, error) {
	if s.ended {
		return domain.Card{}, ErrClosed
	}
	if len(s.history) == 0 {
		return domain.Card{}, ErrNothingToUndo
	}
	last := s.history[len(s.history)-1]
	s.history = s.history[:len(s.history)-1]

	restored, err := s.scheduler.UndoLastReview(last.card.ID)
	if err != nil {
		return domain.Card{}, err
	}

	if last.wasNew {
		s.newCardsIntroduced--
	} else {
		s.reviewCardsStudied--
	}
	s.totalTimeMs -= last.timeSpentMs
	s.currentIndex--

	pos := s.currentIndex
	if pos < 0 {
		pos = 0
	}
	if pos > len(s.queue) {
		pos = len(s.queue)
	}
	s.queue = append(s.queue[:pos:pos], append([]domain.Card{restored}, s.queue[pos:]...)...)

	return restored, nil
}

// GetProgress implements §4.7's getProgress.
func (s *StudySession) GetProgress() Progress {
	completed := len(s.history)
	remaining := len(s.queue) - s.currentIndex
	if remaining < 0 {
		remaining = 0
	}

	counts := map[domain.CardState]int{}
	for _, c := range s.queue[s.currentIndex:] {
		counts[c.Scheduling.State]++
	}

	nonAgain := 0
	for _, h := range s.history {
		if h.rating != domain.Again {
			nonAgain++
		}
	}
	accuracy := 0.0
	if completed > 0 {
		accuracy = float64(nonAgain) / float64(completed)
	}

	return Progress{
		Completed:       completed,
		Remaining:       remaining,
		PartitionCounts: counts,
		Accuracy:        accuracy,
		ElapsedMs:       s.clock.Now().Sub(s.startedAt).Milliseconds(),
	}
}

// End closes the session and returns its summary. Afterwards
// GetCurrentCard, AnswerCard, SkipCard, PauseCard and Undo fail with
// ErrClosed; GetProgress and End have no error result and keep
// returning the session's figures.
func (s *StudySession) End() Summary {
	perRating := map[domain.Rating]int{}
	nonAgain := 0
	for _, h := range s.history {
		perRating[h.rating]++
		if h.rating != domain.Again {
			nonAgain++
		}
	}
	total := len(s.history)
	accuracy := 0.0
	if total > 0 {
		accuracy = float64(nonAgain) / float64(total)
	}

	xp := gamification.SessionXP(total, accuracy, s.cfg.Gamification)
	s.ended = true

	return Summary{
		PerRatingCounts: perRating,
		TotalTimeMs:     s.totalTimeMs,
		XP:              xp,
		StreakUpdated:   gamification.StreakUpdated(total),
		TotalCards:      total,
		Accuracy:        accuracy,
	}
}

// refill draws more cards from the Scheduler, orders them, and
// appends any not already present in the queue or history, respecting
// whatever NewCardLimit/ReviewCardLimit budget remains.
func (s *StudySession) refill() error {
	candidates, err := s.scheduler.GetNextCards(s.deckID, s.cfg.PrefetchSize*2)
	if err != nil {
		return err
	}

	seen := map[string]bool{}
	for _, c := range s.queue {
		seen[c.ID] = true
	}
	for _, h := range s.history {
		seen[h.card.ID] = true
	}

	filtered := candidates[:0:0]
	for _, c := range candidates {
		if seen[c.ID] {
			continue
		}
		if s.cfg.Preset != nil {
			if !s.cfg.Preset.Matches(c) {
				continue
			}
		} else if len(s.cfg.TagFilter) > 0 && !c.HasAnyTag(s.cfg.TagFilter) {
			continue
		}
		if c.Scheduling.State == domain.New {
			if s.newLimitRemaining <= 0 {
				continue
			}
			s.newLimitRemaining--
		} else if c.Scheduling.State == domain.Review {
			if s.reviewLimitRemaining <= 0 {
				continue
			}
			s.reviewLimitRemaining--
		}
		filtered = append(filtered, c)
		seen[c.ID] = true
	}

	ordered := displayorder.Order(filtered, s.clock.Now(), s.order, s.rng)
	s.queue = append(s.queue, ordered...)
	return nil
}
