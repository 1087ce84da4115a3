package simulator

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/flashcore/srscore/internal/domain"
	"github.com/flashcore/srscore/internal/platform/rng"
)

func TestRun_ProducesOneDayStatPerHorizonDay(t *testing.T) {
	cfg := Config{Horizon: 10, Iterations: 20, NewCardsPerDay: 5, Params: domain.DefaultFSRSParameters()}
	result := Run(nil, cfg, rng.New(1))

	require.Len(t, result.Days, 10)
	require.GreaterOrEqual(t, result.PeakDay, 0)
	require.Less(t, result.PeakDay, 10)
}

func TestRun_NewCardsIncreaseReviewLoad(t *testing.T) {
	params := domain.DefaultFSRSParameters()
	withNew := Run(nil, Config{Horizon: 5, Iterations: 10, NewCardsPerDay: 10, Params: params}, rng.New(1))
	withoutNew := Run(nil, Config{Horizon: 5, Iterations: 10, NewCardsPerDay: 0, Params: params}, rng.New(1))

	require.Greater(t, withNew.Days[0].Mean, withoutNew.Days[0].Mean)
}

func TestRun_ExistingDueCardsAreReviewed(t *testing.T) {
	cards := []SimCard{
		{Stability: 10, Difficulty: 5, State: domain.Review, DueDay: 0, LastReviewDay: -10},
	}
	cfg := Config{Horizon: 1, Iterations: 5, NewCardsPerDay: 0, Params: domain.DefaultFSRSParameters()}
	result := Run(cards, cfg, rng.New(1))

	require.Equal(t, 1.0, result.Days[0].Mean)
}

func TestSimulateRetentionChange_HigherRetentionIncreasesLoad(t *testing.T) {
	cards := []SimCard{
		{Stability: 20, Difficulty: 5, State: domain.Review, DueDay: 0, LastReviewDay: -5},
	}
	cfg := Config{Horizon: 30, Iterations: 20, Params: domain.DefaultFSRSParameters()}

	delta := SimulateRetentionChange(cards, cfg, 0.97, rng.New(1))
	require.Greater(t, delta, 0.0)
}
