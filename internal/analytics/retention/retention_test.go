package retention

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMinRetentionFromAccuracy(t *testing.T) {
	require.Equal(t, 0.80, minRetentionFromAccuracy(0.95))
	require.Equal(t, 0.82, minRetentionFromAccuracy(0.85))
	require.Equal(t, 0.85, minRetentionFromAccuracy(0.75))
	require.Equal(t, 0.87, minRetentionFromAccuracy(0.5))
}

func TestRecommend_GenerousBudgetPicksHighRetention(t *testing.T) {
	r := Recommend(Budget{
		ReviewCount:        50,
		AverageStability:   30,
		SecondsPerReview:   8,
		DailyBudgetMinutes: 120,
		Accuracy:           0.95,
	})
	require.GreaterOrEqual(t, r, 0.90)
}

func TestRecommend_TightBudgetFallsToAccuracyFloor(t *testing.T) {
	r := Recommend(Budget{
		ReviewCount:        5000,
		AverageStability:   5,
		SecondsPerReview:   8,
		DailyBudgetMinutes: 1,
		Accuracy:           0.95,
	})
	require.Equal(t, 0.80, r)
}

func TestRecommend_NeverBelowAccuracyFloor(t *testing.T) {
	r := Recommend(Budget{
		ReviewCount:        5000,
		AverageStability:   5,
		SecondsPerReview:   8,
		DailyBudgetMinutes: 1,
		Accuracy:           0.5,
	})
	require.Equal(t, 0.87, r)
}
