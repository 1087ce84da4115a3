package session

import (
	"fmt"

	"github.com/flashcore/srscore/internal/domain"
)

// bonusCardProbability is the §4.7 "Enhanced session" bonus-card
// designation rate.
const bonusCardProbability = 0.07

// insightIntervalMin/Max bound the periodic insight-card injection
// cadence: every [10..15] reviews.
const (
	insightIntervalMin = 10
	insightIntervalMax = 15
)

// Streak milestones that trigger a micro-feedback event.
const (
	milestoneEveryNAfter20 = 25
)

// MicroFeedbackEvent is emitted to the session's FeedbackSink on
// streaks, fast correct answers, milestones, and bonus-card hits.
type MicroFeedbackEvent struct {
	Type      string // streak | speed | accuracy | milestone | bonus_card
	Message   string
	Animation string
	Sound     string
}

// FeedbackSink receives micro-feedback events as a session plays out.
type FeedbackSink interface {
	Emit(MicroFeedbackEvent)
}

// queueSink is the default FeedbackSink: it buffers events for the
// caller to drain after each answer, rather than pushing them
// anywhere itself.
type queueSink struct {
	events []MicroFeedbackEvent
}

func (q *queueSink) Emit(e MicroFeedbackEvent) { q.events = append(q.events, e) }

func (q *queueSink) drain() []MicroFeedbackEvent {
	out := q.events
	q.events = nil
	return out
}

// EnhancedSession layers bonus-card designation, periodic insight-card
// injection, and a micro-feedback event stream on top of a plain
// StudySession.
type EnhancedSession struct {
	*StudySession

	sink      *queueSink
	bonusIDs  map[string]bool
	streak    int
	untilInsight int
}

// StartEnhanced begins an EnhancedSession the same way Start begins a
// plain one, then designates bonus cards from the initial queue and
// schedules the first insight-card injection.
func StartEnhanced(base *StudySession) *EnhancedSession {
	es := &EnhancedSession{
		StudySession: base,
		sink:         &queueSink{},
		bonusIDs:     map[string]bool{},
	}
	for _, c := range base.queue {
		if base.rng.Float64() < bonusCardProbability {
			es.bonusIDs[c.ID] = true
		}
	}
	es.untilInsight = insightIntervalMin + base.rng.Intn(insightIntervalMax-insightIntervalMin+1)
	return es
}

// DrainFeedback returns and clears the events accumulated since the
// last call, for the caller to forward after each answer.
func (es *EnhancedSession) DrainFeedback() []MicroFeedbackEvent {
	return es.sink.drain()
}

// AnswerCard wraps StudySession.AnswerCard with bonus-card,
// streak-milestone, speed, and insight-card bookkeeping.
func (es *EnhancedSession) AnswerCard(rating domain.Rating, timeSpentMs int64) (domain.Card, error) {
	current, err := es.GetCurrentCard()
	if err != nil {
		return domain.Card{}, err
	}
	wasBonus := es.bonusIDs[current.ID]

	updated, err := es.StudySession.AnswerCard(rating, timeSpentMs)
	if err != nil {
		return domain.Card{}, err
	}

	if rating == domain.Again {
		es.streak = 0
	} else {
		es.streak++
		if es.isStreakMilestone(es.streak) {
			es.sink.Emit(MicroFeedbackEvent{
				Type:    "milestone",
				Message: fmt.Sprintf("%d in a row!", es.streak),
			})
		}
		if timeSpentMs > 500 && timeSpentMs < 3000 && es.rng.Float64() < 0.15 {
			es.sink.Emit(MicroFeedbackEvent{Type: "speed", Message: "Fast and correct!"})
		}
	}

	if wasBonus {
		es.sink.Emit(MicroFeedbackEvent{Type: "bonus_card", Message: "Bonus card!"})
	}

	es.untilInsight--
	if es.untilInsight <= 0 {
		es.injectInsightCard()
		es.untilInsight = insightIntervalMin + es.rng.Intn(insightIntervalMax-insightIntervalMin+1)
	}

	return updated, nil
}

func (es *EnhancedSession) isStreakMilestone(streak int) bool {
	switch streak {
	case 5, 10, 20:
		return true
	}
	return streak > 20 && streak%milestoneEveryNAfter20 == 0
}

// injectInsightCard picks an unseen queued entry and moves it to just
// after the current position, so the next answer surfaces it.
func (es *EnhancedSession) injectInsightCard() {
	rest := es.queue[es.currentIndex:]
	if len(rest) < 2 {
		return
	}
	idx := es.currentIndex + 1 + es.rng.Intn(len(rest)-1)
	card := es.queue[idx]
	es.queue = append(es.queue[:idx], es.queue[idx+1:]...)
	pos := es.currentIndex + 1
	es.queue = append(es.queue[:pos], append([]domain.Card{card}, es.queue[pos:]...)...)
}
