package gamification

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSessionXP_AppliesBonusAboveThreshold(t *testing.T) {
	cfg := DefaultConfig()
	require.Equal(t, 150, SessionXP(10, 0.8, cfg))
	require.Equal(t, 100, SessionXP(10, 0.79, cfg))
}

func TestStreakUpdated(t *testing.T) {
	require.True(t, StreakUpdated(1))
	require.False(t, StreakUpdated(0))
}

func TestLevelForTotalXP(t *testing.T) {
	require.Equal(t, "Novice", LevelForTotalXP(0).Name)
	require.Equal(t, "Apprentice", LevelForTotalXP(500).Name)
	require.Equal(t, "Apprentice", LevelForTotalXP(1999).Name)
	require.Equal(t, "Journeyman", LevelForTotalXP(2000).Name)
	require.Equal(t, "Grandmaster", LevelForTotalXP(999999).Name)
}

func TestStreakTier(t *testing.T) {
	require.Equal(t, "none", StreakTier(0))
	require.Equal(t, "active", StreakTier(1))
	require.Equal(t, "weekly", StreakTier(7))
	require.Equal(t, "monthly", StreakTier(30))
	require.Equal(t, "centurion", StreakTier(100))
}
