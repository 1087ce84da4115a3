package domain

import "time"

// CardSchedulingData is the per-card memory state consumed and
// produced by the scheduling algorithms (§3).
//
// Invariant: State == New iff LastReview is zero iff Reps == 0.
// Invariant: when State == Review, Stability > 0.
type CardSchedulingData struct {
	Stability     float64    `json:"stability"`
	Difficulty    float64    `json:"difficulty"`
	ElapsedDays   float64    `json:"elapsed_days"`
	ScheduledDays float64    `json:"scheduled_days"`
	Reps          int        `json:"reps"`
	Lapses        int        `json:"lapses"`
	State         CardState  `json:"state"`
	StepIndex     int        `json:"step_index"`
	LastReview    *time.Time `json:"last_review,omitempty"`
}

// Clone returns a deep copy, used whenever a caller needs to mutate a
// scheduling snapshot without perturbing the card's current data (e.g.
// computing all four rating outcomes from the same starting point).
func (d CardSchedulingData) Clone() CardSchedulingData {
	clone := d
	if d.LastReview != nil {
		t := *d.LastReview
		clone.LastReview = &t
	}
	return clone
}

// Card is a single flashcard: identity, content pointer, and the
// scheduling data that the Scheduler owns exclusively. Ownership:
// created by ingestion (outside this core); mutated only by
// Scheduler.ProcessAnswer, Scheduler.BuryDailySiblings,
// Scheduler.UnburyAll, and session skip/pause.
type Card struct {
	ID         string              `json:"id"`
	DeckID     string              `json:"deck_id"`
	NoteID     string              `json:"note_id,omitempty"`
	Tags       []string            `json:"tags,omitempty"`
	Status     CardStatus          `json:"status"`
	Due        time.Time           `json:"due"`
	Scheduling CardSchedulingData  `json:"scheduling"`
	CreatedAt  time.Time           `json:"created_at"`
	UpdatedAt  time.Time           `json:"updated_at"`
}

// Clone returns a deep copy of the card, including its tag slice and
// scheduling data, so that callers can hold a value-semantics snapshot
// across store round trips (§9 ownership discipline: cards are loaded
// by value on each operation).
func (c Card) Clone() Card {
	clone := c
	clone.Scheduling = c.Scheduling.Clone()
	if c.Tags != nil {
		clone.Tags = append([]string(nil), c.Tags...)
	}
	return clone
}

// HasAnyTag reports whether the card carries at least one of the given
// tags. An empty filter always matches.
func (c Card) HasAnyTag(tags []string) bool {
	if len(tags) == 0 {
		return true
	}
	set := make(map[string]struct{}, len(c.Tags))
	for _, t := range c.Tags {
		set[t] = struct{}{}
	}
	for _, want := range tags {
		if _, ok := set[want]; ok {
			return true
		}
	}
	return false
}

// ReviewLog is an immutable, append-only record of one review (§3).
// A log entry is removed only when Scheduler.UndoLastReview consumes
// it.
type ReviewLog struct {
	ID               string             `json:"id"`
	CardID           string             `json:"card_id"`
	Rating           Rating             `json:"rating"`
	StateBefore      CardState          `json:"state_before"`
	StateAfter       CardState          `json:"state_after"`
	ReviewedAt       time.Time          `json:"reviewed_at"`
	TimeSpentMs      int64              `json:"time_spent_ms"`
	SchedulingBefore CardSchedulingData `json:"scheduling_before"`
	SchedulingAfter  CardSchedulingData `json:"scheduling_after"`
	DueBefore        time.Time          `json:"due_before"`
	DueAfter         time.Time          `json:"due_after"`
}

// DeckStats mirrors CardStore.GetDeckStats (§6), plus the recent
// accuracy and estimated daily workload §4.4's getStudyStats adds on
// top of the bare counts.
type DeckStats struct {
	NewCount       int `json:"new_count"`
	LearningCount  int `json:"learning_count"`
	ReviewCount    int `json:"review_count"`
	TotalCount     int `json:"total_count"`
	BuriedCount    int `json:"buried_count"`
	SuspendedCount int `json:"suspended_count"`

	// RecentAccuracy is nonAgain/total over review logs from the last
	// 30 days, or 0 when there were none.
	RecentAccuracy float64 `json:"recent_accuracy"`
	// EstimatedMinutes is reviewCount*8 + learningCount*12 +
	// min(newCount, dailyNewLimit)*20, in seconds, divided by 60 and
	// rounded up.
	EstimatedMinutes int `json:"estimated_minutes"`
}
