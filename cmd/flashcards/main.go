package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/flashcore/srscore/internal/config"
	"github.com/flashcore/srscore/internal/platform/clock"
	"github.com/flashcore/srscore/internal/platform/logging"
	"github.com/flashcore/srscore/internal/platform/rng"
)

func main() {
	filePath := flag.String("file", "./flashcards.json", "path to the card/review-log data file")
	logLevel := flag.String("log-level", "info", "zap log level (debug, info, warn, error)")
	seed := flag.Int64("seed", 1, "seed for the injected Rng (fuzz, display order, analytics sampling)")
	flag.Parse()

	log := logging.New(*logLevel)
	defer log.Sync()

	svc, err := NewFlashcardService(*filePath, config.Default(), clock.System{}, rng.New(*seed), log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "flashcards: failed to initialize service: %v\n", err)
		os.Exit(1)
	}

	s := server.NewMCPServer(
		"Flashcard Scheduling Core",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithLogging(),
	)

	ctx := context.WithValue(context.Background(), serviceContextKey{}, svc)

	registerTool := func(tool mcp.Tool, handler func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error)) {
		s.AddTool(tool, func(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handler(ctx, request)
		})
	}

	registerTool(mcp.NewTool("get_due_card",
		mcp.WithDescription("Get the next flashcard due for review"),
		mcp.WithString("deck_id", mcp.Description("Restrict to a single deck (omit for all decks)")),
	), handleGetDueCard)

	registerTool(mcp.NewTool("submit_review",
		mcp.WithDescription("Submit a rating for a flashcard outside of a session"),
		mcp.WithString("card_id", mcp.Required(), mcp.Description("The id of the card being reviewed")),
		mcp.WithNumber("rating", mcp.Required(), mcp.Description("Again=1, Hard=2, Good=3, Easy=4")),
		mcp.WithNumber("time_spent_ms", mcp.Description("Milliseconds spent answering")),
	), handleSubmitReview)

	registerTool(mcp.NewTool("undo_review",
		mcp.WithDescription("Undo the most recent review for a card"),
		mcp.WithString("card_id", mcp.Required(), mcp.Description("The id of the card to revert")),
	), handleUndoReview)

	registerTool(mcp.NewTool("get_stats",
		mcp.WithDescription("Get new/learning/review/buried/suspended counts for a deck"),
		mcp.WithString("deck_id", mcp.Description("Restrict to a single deck (omit for all decks)")),
	), handleGetStats)

	registerTool(mcp.NewTool("start_session",
		mcp.WithDescription("Start a study session over a deck, returning the first card"),
		mcp.WithString("deck_id", mcp.Description("Restrict to a single deck (omit for all decks)")),
	), handleStartSession)

	registerTool(mcp.NewTool("session_answer",
		mcp.WithDescription("Answer the current card in the active study session"),
		mcp.WithNumber("rating", mcp.Required(), mcp.Description("Again=1, Hard=2, Good=3, Easy=4")),
		mcp.WithNumber("time_spent_ms", mcp.Description("Milliseconds spent answering")),
	), handleSessionAnswer)

	registerTool(mcp.NewTool("undo_session_answer",
		mcp.WithDescription("Undo the most recently answered card in the active session"),
	), handleSessionUndo)

	registerTool(mcp.NewTool("end_session",
		mcp.WithDescription("Close the active study session and return its summary"),
	), handleEndSession)

	registerTool(mcp.NewTool("run_simulation",
		mcp.WithDescription("Monte-Carlo simulate future daily review workload"),
		mcp.WithString("deck_id", mcp.Description("Restrict to a single deck (omit for all decks)")),
		mcp.WithNumber("horizon_days", mcp.Description("Number of days to project (default 30)")),
		mcp.WithNumber("new_cards_per_day", mcp.Description("Steady new-card introduction rate (default 0)")),
		mcp.WithNumber("iterations", mcp.Description("Monte Carlo repetitions (default 100)")),
	), handleRunSimulation)

	registerTool(mcp.NewTool("optimize_parameters",
		mcp.WithDescription("Fit FSRS weights to this user's review history via gradient descent"),
	), handleOptimizeParameters)

	registerTool(mcp.NewTool("recommend_retention",
		mcp.WithDescription("Recommend the highest sustainable request retention for a daily time budget"),
		mcp.WithNumber("daily_budget_minutes", mcp.Description("Minutes per day available for review (default 20)")),
		mcp.WithNumber("seconds_per_review", mcp.Description("Assumed seconds spent per review (default 8)")),
	), handleRecommendRetention)

	if err := server.ServeStdio(s); err != nil {
		log.Sugar().Fatalf("flashcards: serving MCP over stdio: %v", err)
	}
}
