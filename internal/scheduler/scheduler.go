// Package scheduler is the algorithm-agnostic facade over the memory
// models and state machine: it turns a rating into a persisted card
// update plus an append-only review log entry, atomically, and
// exposes undo, sibling burial, and due-card retrieval.
package scheduler

import (
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/flashcore/srscore/internal/domain"
	"github.com/flashcore/srscore/internal/easydays"
	"github.com/flashcore/srscore/internal/memory/fsrs"
	"github.com/flashcore/srscore/internal/memory/sm2"
	"github.com/flashcore/srscore/internal/platform/clock"
	"github.com/flashcore/srscore/internal/platform/rng"
	"github.com/flashcore/srscore/internal/statemachine"
)

// ScheduledCard is the algorithm-agnostic outcome of scheduling a
// single rating: fsrs.Schedule and sm2.Schedule both collapse into
// this shape so callers never need to know which algorithm produced
// it.
type ScheduledCard struct {
	Scheduling   domain.CardSchedulingData
	IntervalDays float64
	DueAt        time.Time
}

// Scheduler composes one memory model (chosen at construction, per
// the Algorithm tagged union) with the shared state machine into the
// public scheduling contract (§4.4).
type Scheduler struct {
	Algorithm domain.Algorithm
	FSRS      domain.FSRSParameters
	SM2       domain.SM2Parameters
	Steps     domain.StepConfig
	// EasyDays holds the per-weekday workload multipliers (§4.6). A
	// newly computed Review-state due date that lands on a
	// low-multiplier weekday is shifted to the nearest acceptable day.
	EasyDays easydays.Multipliers

	Store Store
	Clock clock.Clock
	Rng   rng.Rng
	Log   *zap.Logger
}

// New constructs a Scheduler. log may be nil (a no-op logger is used).
func New(algo domain.Algorithm, store Store, c clock.Clock, r rng.Rng, log *zap.Logger) *Scheduler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Scheduler{
		Algorithm: algo,
		FSRS:      domain.DefaultFSRSParameters(),
		SM2:       domain.DefaultSM2Parameters(),
		Steps:     domain.DefaultStepConfig(),
		Store:     store,
		Clock:     c,
		Rng:       r,
		Log:       log,
	}
}

// scheduleReview is the pure per-rating dispatch: chosen once at
// construction, never per-call, per the spec's tagged-union design.
// Review-state outcomes (day-granularity due dates, as opposed to
// intra-day learning-step delays) are then shifted off configured
// easy-day weekdays per §4.6.
func (s *Scheduler) scheduleReview(sched domain.CardSchedulingData, now time.Time) (map[domain.Rating]ScheduledCard, error) {
	var out map[domain.Rating]ScheduledCard
	switch s.Algorithm {
	case domain.SM2:
		out = convertSM2(sm2.Schedule(s.SM2, s.Steps, sched, now))
	default:
		raw, err := fsrs.Schedule(s.FSRS, s.Steps, sched, now)
		if err != nil {
			return nil, err
		}
		out = convertFSRS(raw)
	}
	for g, o := range out {
		if o.Scheduling.State == domain.Review {
			o.DueAt = easydays.ShiftDue(o.DueAt, s.EasyDays)
			out[g] = o
		}
	}
	return out, nil
}

func convertFSRS(in map[domain.Rating]fsrs.ScheduledCard) map[domain.Rating]ScheduledCard {
	out := make(map[domain.Rating]ScheduledCard, len(in))
	for k, v := range in {
		out[k] = ScheduledCard{Scheduling: v.Scheduling, IntervalDays: v.IntervalDays, DueAt: v.DueAt}
	}
	return out
}

func convertSM2(in map[domain.Rating]sm2.ScheduledCard) map[domain.Rating]ScheduledCard {
	out := make(map[domain.Rating]ScheduledCard, len(in))
	for k, v := range in {
		out[k] = ScheduledCard{Scheduling: v.Scheduling, IntervalDays: v.IntervalDays, DueAt: v.DueAt}
	}
	return out
}

// ScheduleReview previews the four rating outcomes for a card without
// persisting anything.
func (s *Scheduler) ScheduleReview(cardID string) (map[domain.Rating]ScheduledCard, error) {
	card, err := s.Store.GetCard(cardID)
	if err != nil {
		return nil, ErrCardNotFound
	}
	return s.scheduleReview(card.Scheduling, s.Clock.Now())
}

// ProcessAnswer is the atomic write path (§4.4): it loads the card,
// computes the rated outcome, applies fuzz when the algorithm is FSRS
// and the new state is Review with an interval greater than 2, and
// persists the updated card plus a new ReviewLog entry in a single
// store call. Either both writes land or neither does.
func (s *Scheduler) ProcessAnswer(cardID string, rating domain.Rating, timeSpentMs int64) (domain.Card, error) {
	if !rating.Valid() {
		return domain.Card{}, ErrInvalidParameter
	}

	card, err := s.Store.GetCard(cardID)
	if err != nil {
		return domain.Card{}, ErrCardNotFound
	}

	now := s.Clock.Now()
	outcomes, err := s.scheduleReview(card.Scheduling, now)
	if err != nil {
		return domain.Card{}, err
	}
	outcome := outcomes[rating]

	if s.Algorithm == domain.FSRS && outcome.Scheduling.State == domain.Review && outcome.IntervalDays > 2 {
		fuzzed := fsrs.FuzzInterval(s.Rng, outcome.IntervalDays)
		if fuzzed != outcome.IntervalDays {
			outcome.Scheduling.ScheduledDays = fuzzed
			outcome.IntervalDays = fuzzed
			outcome.DueAt = easydays.ShiftDue(now.AddDate(0, 0, int(fuzzed)), s.EasyDays)
		}
	}

	before := card.Clone()
	updated := card.Clone()
	updated.Scheduling = outcome.Scheduling
	updated.Due = outcome.DueAt
	updated.UpdatedAt = now

	entry := domain.ReviewLog{
		ID:               uuid.New().String(),
		CardID:           cardID,
		Rating:           rating,
		StateBefore:      before.Scheduling.State,
		StateAfter:       updated.Scheduling.State,
		ReviewedAt:       now,
		TimeSpentMs:      timeSpentMs,
		SchedulingBefore: before.Scheduling,
		SchedulingAfter:  updated.Scheduling,
		DueBefore:        before.Due,
		DueAfter:         updated.Due,
	}

	if err := s.Store.ProcessAnswer(updated, entry); err != nil {
		s.Log.Error("process answer failed", zap.String("card_id", cardID), zap.Error(err))
		return domain.Card{}, err
	}
	return updated, nil
}

// UndoLastReview restores a card's scheduling and due date from its
// most recent review log entry, then removes that entry (§4.4). Fails
// with ErrNothingToUndo when the card has no log.
func (s *Scheduler) UndoLastReview(cardID string) (domain.Card, error) {
	card, err := s.Store.GetCard(cardID)
	if err != nil {
		return domain.Card{}, ErrCardNotFound
	}

	entry, err := s.Store.PopLastReviewLog(cardID)
	if err != nil {
		return domain.Card{}, ErrNothingToUndo
	}

	restored := card.Clone()
	restored.Scheduling = entry.SchedulingBefore
	restored.Due = entry.DueBefore
	restored.UpdatedAt = s.Clock.Now()

	if err := s.Store.PutCard(restored); err != nil {
		return domain.Card{}, err
	}
	return restored, nil
}

// statePriority orders Relearning < Learning < New < Review, per
// §4.4's GetNextCards ordering.
func statePriority(st domain.CardState) int {
	switch st {
	case domain.Relearning:
		return 0
	case domain.Learning:
		return 1
	case domain.New:
		return 2
	default: // Review
		return 3
	}
}

// GetNextCards returns up to limit eligible cards for deckID (empty
// deckID means all decks), sorted by statePriority ascending, then by
// Due ascending.
func (s *Scheduler) GetNextCards(deckID string, limit int) ([]domain.Card, error) {
	all, err := s.Store.ListCards()
	if err != nil {
		return nil, ErrStoreUnavailable
	}

	now := s.Clock.Now()
	out := make([]domain.Card, 0, len(all))
	for _, c := range all {
		if deckID != "" && c.DeckID != deckID {
			continue
		}
		if !statemachine.IsEligibleForStudy(c.Status, c.Due, now) {
			continue
		}
		out = append(out, c)
	}

	sort.SliceStable(out, func(i, j int) bool {
		pi, pj := statePriority(out[i].Scheduling.State), statePriority(out[j].Scheduling.State)
		if pi != pj {
			return pi < pj
		}
		return out[i].Due.Before(out[j].Due)
	})

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// BuryDailySiblings marks every Active card sharing noteID (other than
// exceptCardID) as Buried, so a session never serves two cards built
// from the same note in the same day.
func (s *Scheduler) BuryDailySiblings(noteID, exceptCardID string) error {
	if noteID == "" {
		return nil
	}
	all, err := s.Store.ListCards()
	if err != nil {
		return ErrStoreUnavailable
	}
	now := s.Clock.Now()
	for _, c := range all {
		if c.NoteID != noteID || c.ID == exceptCardID || c.Status != domain.Active {
			continue
		}
		c.Status = domain.Buried
		c.UpdatedAt = now
		if err := s.Store.PutCard(c); err != nil {
			return err
		}
	}
	return nil
}

// UnburyAll restores every Buried card to Active. Called once per
// calendar day boundary.
func (s *Scheduler) UnburyAll() error {
	all, err := s.Store.ListCards()
	if err != nil {
		return ErrStoreUnavailable
	}
	now := s.Clock.Now()
	for _, c := range all {
		if c.Status != domain.Buried {
			continue
		}
		c.Status = domain.Active
		c.UpdatedAt = now
		if err := s.Store.PutCard(c); err != nil {
			return err
		}
	}
	return nil
}

// GetStudyStats computes DeckStats over the cards in deckID (empty
// means all decks): the bare counts, the last-30-day accuracy over
// that deck's review logs, and estimatedMinutes per §4.4 ≈
// reviewCount*8 + learningCount*12 + min(newCount, dailyNewLimit)*20
// seconds, divided by 60 and rounded up. dailyNewLimit <= 0 leaves
// newCount unclamped.
func (s *Scheduler) GetStudyStats(deckID string, dailyNewLimit int) (domain.DeckStats, error) {
	all, err := s.Store.ListCards()
	if err != nil {
		return domain.DeckStats{}, ErrStoreUnavailable
	}

	var stats domain.DeckStats
	inScope := make(map[string]bool, len(all))
	for _, c := range all {
		if deckID != "" && c.DeckID != deckID {
			continue
		}
		inScope[c.ID] = true
		stats.TotalCount++
		switch c.Status {
		case domain.Buried:
			stats.BuriedCount++
			continue
		case domain.Suspended:
			stats.SuspendedCount++
			continue
		}
		switch c.Scheduling.State {
		case domain.New:
			stats.NewCount++
		case domain.Review:
			stats.ReviewCount++
		case domain.Learning, domain.Relearning:
			stats.LearningCount++
		}
	}

	logs, err := s.Store.AllReviewLogs()
	if err != nil {
		return domain.DeckStats{}, ErrStoreUnavailable
	}
	cutoff := s.Clock.Now().AddDate(0, 0, -30)
	var total, nonAgain int
	for _, l := range logs {
		if !inScope[l.CardID] || l.ReviewedAt.Before(cutoff) {
			continue
		}
		total++
		if l.Rating != domain.Again {
			nonAgain++
		}
	}
	if total > 0 {
		stats.RecentAccuracy = float64(nonAgain) / float64(total)
	}

	newBudget := stats.NewCount
	if dailyNewLimit > 0 && dailyNewLimit < newBudget {
		newBudget = dailyNewLimit
	}
	seconds := float64(stats.ReviewCount)*8 + float64(stats.LearningCount)*12 + float64(newBudget)*20
	stats.EstimatedMinutes = int(math.Ceil(seconds / 60))

	return stats, nil
}
