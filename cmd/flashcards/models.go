// Package main provides the MCP binary wiring the scheduling core
// (internal/scheduler, internal/session, internal/analytics/...)
// behind mark3labs/mcp-go tool handlers, the way the teacher's
// cmd/flashcards binary exposes its FSRS store over MCP.
package main

import "github.com/flashcore/srscore/internal/domain"

// CardResponse is the wire shape for get_due_card: the due card plus
// a fresh stats snapshot, mirroring the teacher's CardResponse.
type CardResponse struct {
	Card  domain.Card     `json:"card"`
	Stats domain.DeckStats `json:"stats"`
}

// ReviewResponse is the wire shape for submit_review / undo_review.
type ReviewResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Card    domain.Card `json:"card,omitempty"`
}

// SessionStartResponse is the wire shape for start_session.
type SessionStartResponse struct {
	Card     *domain.Card `json:"card,omitempty"`
	Progress progressView `json:"progress"`
}

// SessionAnswerResponse is the wire shape for session_answer.
type SessionAnswerResponse struct {
	Card      domain.Card  `json:"card"`
	Next      *domain.Card `json:"next,omitempty"`
	Progress  progressView `json:"progress"`
	Feedback  []string     `json:"feedback,omitempty"`
}

// SessionEndResponse is the wire shape for end_session.
type SessionEndResponse struct {
	TotalCards    int             `json:"total_cards"`
	Accuracy      float64         `json:"accuracy"`
	XP            int             `json:"xp"`
	StreakUpdated bool            `json:"streak_updated"`
	TotalTimeMs   int64           `json:"total_time_ms"`
	PerRating     map[string]int  `json:"per_rating"`
}

// progressView renders session.Progress with string-keyed partition
// counts, since domain.CardState doesn't marshal as a map key.
type progressView struct {
	Completed int            `json:"completed"`
	Remaining int            `json:"remaining"`
	Accuracy  float64        `json:"accuracy"`
	ElapsedMs int64          `json:"elapsed_ms"`
	Partition map[string]int `json:"partition_counts"`
}

// ErrorResponse is the uniform error envelope every handler falls
// back to, following the teacher's `{"error": "..."}`  convention.
type ErrorResponse struct {
	Error string `json:"error"`
}
