package main

import (
	"errors"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/flashcore/srscore/internal/analytics/optimizer"
	"github.com/flashcore/srscore/internal/analytics/retention"
	"github.com/flashcore/srscore/internal/analytics/simulator"
	"github.com/flashcore/srscore/internal/config"
	"github.com/flashcore/srscore/internal/displayorder"
	"github.com/flashcore/srscore/internal/domain"
	"github.com/flashcore/srscore/internal/platform/clock"
	"github.com/flashcore/srscore/internal/platform/rng"
	"github.com/flashcore/srscore/internal/scheduler"
	"github.com/flashcore/srscore/internal/session"
	"github.com/flashcore/srscore/internal/storage"
)

// ErrNoSessionActive is returned by the session_answer/end_session
// tools when start_session hasn't been called yet.
var ErrNoSessionActive = errors.New("flashcards: no session active")

// FlashcardService adapts the scheduling core (Scheduler, StudySession,
// analytics) to the MCP tool surface, the way the teacher's
// FlashcardService adapts storage.Storage + fsrs.FSRSManager to its
// own tool handlers.
type FlashcardService struct {
	Store     *storage.FileStore
	Scheduler *scheduler.Scheduler
	Config    config.Config
	Clock     clock.Clock
	Rng       rng.Rng
	Log       *zap.Logger

	mu      sync.Mutex
	current *session.EnhancedSession

	rolloverMu   sync.Mutex
	lastRollover string
}

// NewFlashcardService loads (or creates) the file-backed store at
// path and wires a Scheduler around it per cfg.
func NewFlashcardService(path string, cfg config.Config, c clock.Clock, r rng.Rng, log *zap.Logger) (*FlashcardService, error) {
	if log == nil {
		log = zap.NewNop()
	}
	store := storage.NewFileStore(path, log)
	if err := store.Load(); err != nil {
		return nil, err
	}
	sched := scheduler.New(cfg.Algorithm, store, c, r, log)
	sched.FSRS = cfg.FSRS
	sched.SM2 = cfg.SM2
	sched.Steps = cfg.Steps
	sched.EasyDays = cfg.EasyDays

	return &FlashcardService{
		Store:     store,
		Scheduler: sched,
		Config:    cfg,
		Clock:     c,
		Rng:       r,
		Log:       log,
	}, nil
}

func (s *FlashcardService) displayOrder() displayorder.Config {
	return displayorder.Config{RequestRetention: s.Config.FSRS.RequestRetention}
}

// maybeUnburyForNewDay calls Scheduler.UnburyAll exactly once per
// local-day rollover (§5): GetDueCard, GetStats and StartSession call
// this first, and the lastRollover gate makes the actual UnburyAll call
// a once-a-day event regardless of how many times this is invoked.
func (s *FlashcardService) maybeUnburyForNewDay() {
	today := s.Clock.Now().Format("2006-01-02")

	s.rolloverMu.Lock()
	if s.lastRollover == today {
		s.rolloverMu.Unlock()
		return
	}
	s.lastRollover = today
	s.rolloverMu.Unlock()

	if err := s.Scheduler.UnburyAll(); err != nil {
		s.Log.Warn("day-rollover unbury failed", zap.Error(err))
	}
}

// GetDueCard returns the single most urgent eligible card in deckID
// (empty deckID means all decks) plus a fresh stats snapshot.
func (s *FlashcardService) GetDueCard(deckID string) (*domain.Card, domain.DeckStats, error) {
	s.maybeUnburyForNewDay()

	stats, err := s.Scheduler.GetStudyStats(deckID, s.Config.Session.NewCardLimit)
	if err != nil {
		return nil, domain.DeckStats{}, err
	}
	cards, err := s.Scheduler.GetNextCards(deckID, 1)
	if err != nil {
		return nil, domain.DeckStats{}, err
	}
	if len(cards) == 0 {
		return nil, stats, nil
	}
	return &cards[0], stats, nil
}

// SubmitReview answers a single card outside of any session, via the
// Scheduler's atomic write path.
func (s *FlashcardService) SubmitReview(cardID string, rating domain.Rating, timeSpentMs int64) (domain.Card, error) {
	return s.Scheduler.ProcessAnswer(cardID, rating, timeSpentMs)
}

// UndoReview reverts a card's most recent review.
func (s *FlashcardService) UndoReview(cardID string) (domain.Card, error) {
	return s.Scheduler.UndoLastReview(cardID)
}

// GetStats reports deck-level counts, recent accuracy, and estimated
// daily workload.
func (s *FlashcardService) GetStats(deckID string) (domain.DeckStats, error) {
	s.maybeUnburyForNewDay()
	return s.Scheduler.GetStudyStats(deckID, s.Config.Session.NewCardLimit)
}

// StartSession begins (replacing any prior) session over deckID.
func (s *FlashcardService) StartSession(deckID string) (*domain.Card, session.Progress, error) {
	s.maybeUnburyForNewDay()

	s.mu.Lock()
	defer s.mu.Unlock()

	base, err := session.Start(s.Scheduler, s.displayOrder(), s.Config.Session, s.Clock, s.Rng, deckID)
	if err != nil {
		return nil, session.Progress{}, err
	}
	sess := session.StartEnhanced(base)
	s.current = sess

	card, err := sess.GetCurrentCard()
	if err != nil {
		return nil, sess.GetProgress(), nil
	}
	return &card, sess.GetProgress(), nil
}

// SessionAnswer answers the current session card and returns the
// result card, the next card (if any), fresh progress, and any
// micro-feedback events (streaks, bonus cards, insight injections)
// raised by the Enhanced session layer.
func (s *FlashcardService) SessionAnswer(rating domain.Rating, timeSpentMs int64) (domain.Card, *domain.Card, session.Progress, []session.MicroFeedbackEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return domain.Card{}, nil, session.Progress{}, nil, ErrNoSessionActive
	}

	updated, err := s.current.AnswerCard(rating, timeSpentMs)
	if err != nil {
		return domain.Card{}, nil, session.Progress{}, nil, err
	}
	feedback := s.current.DrainFeedback()

	progress := s.current.GetProgress()
	next, err := s.current.GetCurrentCard()
	if err != nil {
		return updated, nil, progress, feedback, nil
	}
	return updated, &next, progress, feedback, nil
}

// SessionUndo reverts the most recently answered session card.
func (s *FlashcardService) SessionUndo() (domain.Card, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return domain.Card{}, ErrNoSessionActive
	}
	return s.current.Undo()
}

// EndSession closes the active session and returns its summary.
func (s *FlashcardService) EndSession() (session.Summary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return session.Summary{}, ErrNoSessionActive
	}
	summary := s.current.End()
	s.current = nil
	return summary, nil
}

// RunSimulation projects daily review load over horizonDays, seeding
// the Monte Carlo model from the store's current cards.
func (s *FlashcardService) RunSimulation(deckID string, horizonDays, newCardsPerDay, iterations int) (simulator.Result, error) {
	cards, err := s.Store.ListCards()
	if err != nil {
		return simulator.Result{}, err
	}
	now := s.Clock.Now()

	simCards := make([]simulator.SimCard, 0, len(cards))
	for _, c := range cards {
		if deckID != "" && c.DeckID != deckID {
			continue
		}
		if c.Status != domain.Active || c.Scheduling.State == domain.New {
			continue
		}
		lastReviewDay := 0
		if c.Scheduling.LastReview != nil {
			lastReviewDay = -int(now.Sub(*c.Scheduling.LastReview).Hours() / 24)
		}
		simCards = append(simCards, simulator.SimCard{
			Stability:     c.Scheduling.Stability,
			Difficulty:    c.Scheduling.Difficulty,
			State:         c.Scheduling.State,
			DueDay:        int(c.Due.Sub(now).Hours() / 24),
			LastReviewDay: lastReviewDay,
		})
	}

	cfg := simulator.Config{
		Horizon:        horizonDays,
		Iterations:     iterations,
		NewCardsPerDay: newCardsPerDay,
		Params:         s.Config.FSRS,
	}
	return simulator.Run(simCards, cfg, s.Rng), nil
}

// OptimizeParameters fits FSRS weights to the store's full review
// history, refusing when there isn't enough data (§4.9).
func (s *FlashcardService) OptimizeParameters() (optimizer.Result, error) {
	logs, err := s.Store.AllReviewLogs()
	if err != nil {
		return optimizer.Result{}, err
	}
	if !optimizer.HasEnoughData(len(logs)) {
		return optimizer.Result{}, ErrNotEnoughData
	}

	events := reviewLogsToEvents(logs)
	return optimizer.Fit(s.Config.FSRS.W, events, optimizer.DefaultConfig()), nil
}

// ErrNotEnoughData is returned by OptimizeParameters when the review
// log is below optimizer.MinReviewsRequired.
var ErrNotEnoughData = errors.New("flashcards: not enough review history to optimize parameters")

// RecommendRetention sweeps for the best sustainable request
// retention given the user's daily time budget, per §4.10.
func (s *FlashcardService) RecommendRetention(dailyBudgetMinutes, secondsPerReview float64) (float64, error) {
	cards, err := s.Store.ListCards()
	if err != nil {
		return 0, err
	}

	var reviewCount int
	var stabilitySum float64
	var correct, total int
	logs, err := s.Store.AllReviewLogs()
	if err != nil {
		return 0, err
	}
	for _, c := range cards {
		if c.Scheduling.State == domain.Review {
			reviewCount++
			stabilitySum += c.Scheduling.Stability
		}
	}
	for _, l := range logs {
		total++
		if l.Rating != domain.Again {
			correct++
		}
	}
	accuracy := 1.0
	if total > 0 {
		accuracy = float64(correct) / float64(total)
	}
	avgStability := 0.0
	if reviewCount > 0 {
		avgStability = stabilitySum / float64(reviewCount)
	}

	return retention.Recommend(retention.Budget{
		ReviewCount:        reviewCount,
		AverageStability:   avgStability,
		SecondsPerReview:   secondsPerReview,
		DailyBudgetMinutes: dailyBudgetMinutes,
		Accuracy:           accuracy,
	}), nil
}

// reviewLogsToEvents groups logs by card, sorts each group by review
// time, and converts it into the optimizer's Event sequence, marking
// the first event per card and computing elapsed days between
// consecutive reviews.
func reviewLogsToEvents(logs []domain.ReviewLog) []optimizer.Event {
	byCard := map[string][]domain.ReviewLog{}
	for _, l := range logs {
		byCard[l.CardID] = append(byCard[l.CardID], l)
	}

	var events []optimizer.Event
	for cardID, group := range byCard {
		sortReviewLogsByTime(group)
		var prev time.Time
		for i, l := range group {
			isFirst := i == 0
			elapsed := 0.0
			if !isFirst {
				elapsed = l.ReviewedAt.Sub(prev).Hours() / 24
			}
			events = append(events, optimizer.Event{
				CardID:  cardID,
				Elapsed: elapsed,
				Rating:  l.Rating,
				IsFirst: isFirst,
			})
			prev = l.ReviewedAt
		}
	}
	return events
}

func sortReviewLogsByTime(logs []domain.ReviewLog) {
	sort.Slice(logs, func(i, j int) bool { return logs[i].ReviewedAt.Before(logs[j].ReviewedAt) })
}
