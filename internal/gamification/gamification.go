// Package gamification implements the "Gamification Hooks" component
// (spec §2): pure computation of per-review XP, session bonus
// multipliers, and level/streak tiers derived from running totals. No
// function here touches a clock, a store, or an Rng — every input is
// passed in explicitly so a caller can replay totals deterministically.
package gamification

// Config holds the tunable knobs, mirroring the §6 session defaults.
type Config struct {
	XPPerCard               int
	AccuracyBonusMultiplier float64
}

// DefaultConfig returns the §6 configuration defaults.
func DefaultConfig() Config {
	return Config{XPPerCard: 10, AccuracyBonusMultiplier: 1.5}
}

// SessionXP implements §4.7's end-of-session formula:
// totalCards * xpPerCard * (accuracyBonus if accuracy >= 0.8 else 1).
func SessionXP(totalCards int, accuracy float64, cfg Config) int {
	bonus := 1.0
	if accuracy >= 0.8 {
		bonus = cfg.AccuracyBonusMultiplier
	}
	return int(float64(totalCards*cfg.XPPerCard) * bonus)
}

// StreakUpdated reports whether a session's activity should advance
// the user's daily streak counter: any completed card counts.
func StreakUpdated(totalCards int) bool {
	return totalCards > 0
}

// Level is a named XP tier.
type Level struct {
	Name      string
	Threshold int // cumulative XP required to reach this level
}

// Levels are cumulative-XP thresholds, low to high.
var Levels = []Level{
	{Name: "Novice", Threshold: 0},
	{Name: "Apprentice", Threshold: 500},
	{Name: "Journeyman", Threshold: 2000},
	{Name: "Adept", Threshold: 5000},
	{Name: "Expert", Threshold: 12000},
	{Name: "Master", Threshold: 30000},
	{Name: "Grandmaster", Threshold: 75000},
}

// LevelForTotalXP returns the highest level whose threshold the
// user's cumulative XP has reached.
func LevelForTotalXP(totalXP int) Level {
	best := Levels[0]
	for _, l := range Levels {
		if totalXP >= l.Threshold {
			best = l
		}
	}
	return best
}

// StreakTier buckets a streak length (consecutive study days) into a
// named tier, used by the UI to award a badge.
func StreakTier(streakDays int) string {
	switch {
	case streakDays >= 100:
		return "centurion"
	case streakDays >= 30:
		return "monthly"
	case streakDays >= 7:
		return "weekly"
	case streakDays >= 1:
		return "active"
	default:
		return "none"
	}
}
