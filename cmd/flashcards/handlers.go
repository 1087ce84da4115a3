package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/flashcore/srscore/internal/domain"
	"github.com/flashcore/srscore/internal/session"
)

// serviceFromContext recovers the FlashcardService stashed in ctx by
// main, following the teacher's context.WithValue("service", ...)
// wiring.
func serviceFromContext(ctx context.Context) (*FlashcardService, bool) {
	s, ok := ctx.Value(serviceContextKey{}).(*FlashcardService)
	return s, ok && s != nil
}

type serviceContextKey struct{}

func errorResult(format string, args ...any) *mcp.CallToolResult {
	payload, _ := json.Marshal(ErrorResponse{Error: fmt.Sprintf(format, args...)})
	return mcp.NewToolResultText(string(payload))
}

func jsonResult(v any) *mcp.CallToolResult {
	payload, err := json.Marshal(v)
	if err != nil {
		return errorResult("marshaling response: %v", err)
	}
	return mcp.NewToolResultText(string(payload))
}

func progressToView(p session.Progress) progressView {
	partitions := make(map[string]int, len(p.PartitionCounts))
	for state, n := range p.PartitionCounts {
		partitions[state.String()] = n
	}
	return progressView{
		Completed: p.Completed,
		Remaining: p.Remaining,
		Accuracy:  p.Accuracy,
		ElapsedMs: p.ElapsedMs,
		Partition: partitions,
	}
}

func ratingParam(request mcp.CallToolRequest) (domain.Rating, error) {
	raw, ok := request.Params.Arguments["rating"]
	if !ok {
		return 0, fmt.Errorf("missing required parameter: rating")
	}
	n, ok := raw.(float64)
	if !ok {
		return 0, fmt.Errorf("rating must be a number")
	}
	r := domain.Rating(int(n))
	if !r.Valid() {
		return 0, fmt.Errorf("rating must be between 1 (again) and 4 (easy)")
	}
	return r, nil
}

func stringParam(request mcp.CallToolRequest, name string) string {
	v, ok := request.Params.Arguments[name]
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return s
}

func intParam(request mcp.CallToolRequest, name string, fallback int) int {
	v, ok := request.Params.Arguments[name]
	if !ok {
		return fallback
	}
	n, ok := v.(float64)
	if !ok {
		return fallback
	}
	return int(n)
}

func floatParam(request mcp.CallToolRequest, name string, fallback float64) float64 {
	v, ok := request.Params.Arguments[name]
	if !ok {
		return fallback
	}
	n, ok := v.(float64)
	if !ok {
		return fallback
	}
	return n
}

// handleGetDueCard implements the get_due_card tool.
func handleGetDueCard(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s, ok := serviceFromContext(ctx)
	if !ok {
		return errorResult("service not available"), nil
	}

	deckID := stringParam(request, "deck_id")
	card, stats, err := s.GetDueCard(deckID)
	if err != nil {
		return errorResult("getting due card: %v", err), nil
	}
	if card == nil {
		return jsonResult(map[string]any{"message": "no cards due for review", "stats": stats}), nil
	}
	return jsonResult(CardResponse{Card: *card, Stats: stats}), nil
}

// handleSubmitReview implements the submit_review tool.
func handleSubmitReview(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s, ok := serviceFromContext(ctx)
	if !ok {
		return errorResult("service not available"), nil
	}

	cardID := stringParam(request, "card_id")
	if cardID == "" {
		return errorResult("missing required parameter: card_id"), nil
	}
	rating, err := ratingParam(request)
	if err != nil {
		return errorResult("%v", err), nil
	}
	timeSpentMs := int64(intParam(request, "time_spent_ms", 0))

	card, err := s.SubmitReview(cardID, rating, timeSpentMs)
	if err != nil {
		return errorResult("submitting review: %v", err), nil
	}
	return jsonResult(ReviewResponse{Success: true, Message: "review recorded", Card: card}), nil
}

// handleUndoReview implements the undo_review tool.
func handleUndoReview(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s, ok := serviceFromContext(ctx)
	if !ok {
		return errorResult("service not available"), nil
	}

	cardID := stringParam(request, "card_id")
	if cardID == "" {
		return errorResult("missing required parameter: card_id"), nil
	}

	card, err := s.UndoReview(cardID)
	if err != nil {
		return errorResult("undoing review: %v", err), nil
	}
	return jsonResult(ReviewResponse{Success: true, Message: "review undone", Card: card}), nil
}

// handleGetStats implements the get_stats tool.
func handleGetStats(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s, ok := serviceFromContext(ctx)
	if !ok {
		return errorResult("service not available"), nil
	}

	stats, err := s.GetStats(stringParam(request, "deck_id"))
	if err != nil {
		return errorResult("getting stats: %v", err), nil
	}
	return jsonResult(stats), nil
}

// handleStartSession implements the start_session tool.
func handleStartSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s, ok := serviceFromContext(ctx)
	if !ok {
		return errorResult("service not available"), nil
	}

	card, progress, err := s.StartSession(stringParam(request, "deck_id"))
	if err != nil {
		return errorResult("starting session: %v", err), nil
	}
	return jsonResult(SessionStartResponse{Card: card, Progress: progressToView(progress)}), nil
}

// handleSessionAnswer implements the session_answer tool.
func handleSessionAnswer(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s, ok := serviceFromContext(ctx)
	if !ok {
		return errorResult("service not available"), nil
	}

	rating, err := ratingParam(request)
	if err != nil {
		return errorResult("%v", err), nil
	}
	timeSpentMs := int64(intParam(request, "time_spent_ms", 0))

	card, next, progress, feedback, err := s.SessionAnswer(rating, timeSpentMs)
	if err != nil {
		return errorResult("answering session card: %v", err), nil
	}

	messages := make([]string, 0, len(feedback))
	for _, e := range feedback {
		messages = append(messages, e.Message)
	}
	return jsonResult(SessionAnswerResponse{Card: card, Next: next, Progress: progressToView(progress), Feedback: messages}), nil
}

// handleSessionUndo implements the undo_session_answer tool.
func handleSessionUndo(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s, ok := serviceFromContext(ctx)
	if !ok {
		return errorResult("service not available"), nil
	}

	card, err := s.SessionUndo()
	if err != nil {
		return errorResult("undoing session answer: %v", err), nil
	}
	return jsonResult(ReviewResponse{Success: true, Message: "session answer undone", Card: card}), nil
}

// handleEndSession implements the end_session tool.
func handleEndSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s, ok := serviceFromContext(ctx)
	if !ok {
		return errorResult("service not available"), nil
	}

	summary, err := s.EndSession()
	if err != nil {
		return errorResult("ending session: %v", err), nil
	}

	perRating := make(map[string]int, len(summary.PerRatingCounts))
	for rating, n := range summary.PerRatingCounts {
		perRating[rating.String()] = n
	}
	return jsonResult(SessionEndResponse{
		TotalCards:    summary.TotalCards,
		Accuracy:      summary.Accuracy,
		XP:            summary.XP,
		StreakUpdated: summary.StreakUpdated,
		TotalTimeMs:   summary.TotalTimeMs,
		PerRating:     perRating,
	}), nil
}

// handleRunSimulation implements the run_simulation tool.
func handleRunSimulation(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s, ok := serviceFromContext(ctx)
	if !ok {
		return errorResult("service not available"), nil
	}

	horizon := intParam(request, "horizon_days", 30)
	newCardsPerDay := intParam(request, "new_cards_per_day", 0)
	iterations := intParam(request, "iterations", 0)

	result, err := s.RunSimulation(stringParam(request, "deck_id"), horizon, newCardsPerDay, iterations)
	if err != nil {
		return errorResult("running simulation: %v", err), nil
	}
	return jsonResult(result), nil
}

// handleOptimizeParameters implements the optimize_parameters tool.
func handleOptimizeParameters(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s, ok := serviceFromContext(ctx)
	if !ok {
		return errorResult("service not available"), nil
	}

	result, err := s.OptimizeParameters()
	if err != nil {
		return errorResult("optimizing parameters: %v", err), nil
	}
	return jsonResult(result), nil
}

// handleRecommendRetention implements the recommend_retention tool.
func handleRecommendRetention(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s, ok := serviceFromContext(ctx)
	if !ok {
		return errorResult("service not available"), nil
	}

	budgetMinutes := floatParam(request, "daily_budget_minutes", 20)
	secondsPerReview := floatParam(request, "seconds_per_review", 8)

	r, err := s.RecommendRetention(budgetMinutes, secondsPerReview)
	if err != nil {
		return errorResult("recommending retention: %v", err), nil
	}
	return jsonResult(map[string]float64{"recommended_retention": r}), nil
}
