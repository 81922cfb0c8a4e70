// Package gamification holds the pure XP, level, badge, challenge, scoring and
// leaderboard rules. Nothing here touches storage.
package gamification

import "math"

// Difficulty tiers
const (
	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"
)

// baseLevelGap is the XP needed to go from level 1 to level 2. Each later gap doubles.
const baseLevelGap = 25

// XPThresholdForLevel returns the cumulative XP needed to reach level.
// Thresholds past the int range saturate at math.MaxInt.
func XPThresholdForLevel(level int) int {
	if level <= 1 {
		return 0
	}
	total := 0
	gap := baseLevelGap
	for l := 1; l < level; l++ {
		if gap > math.MaxInt-total {
			return math.MaxInt
		}
		total += gap
		if gap > math.MaxInt/2 {
			gap = math.MaxInt
		} else {
			gap *= 2
		}
	}
	return total
}

// LevelFromXP returns the highest level whose threshold is at most xp
func LevelFromXP(xp int) int {
	level := 1
	for {
		next := XPThresholdForLevel(level + 1)
		if next == math.MaxInt || xp < next {
			return level
		}
		level++
	}
}

// XPGapToNextLevel returns the XP between level and level+1
func XPGapToNextLevel(level int) int {
	return XPThresholdForLevel(level+1) - XPThresholdForLevel(level)
}

// DifficultyForLevel recommends a practice difficulty
func DifficultyForLevel(level int) string {
	switch {
	case level <= 4:
		return DifficultyEasy
	case level <= 10:
		return DifficultyMedium
	default:
		return DifficultyHard
	}
}

// LevelProgress describes how far a student is into the current level
type LevelProgress struct {
	TotalXP               int    `json:"total_xp"`
	Level                 int    `json:"level"`
	XPInCurrentLevel      int    `json:"xp_in_current_level"`
	XPNeededForNext       int    `json:"xp_needed_for_next"`
	RecommendedDifficulty string `json:"recommended_difficulty"`
}

// ProgressFor computes the progress view for a stored level and XP total
func ProgressFor(level, totalXP int) LevelProgress {
	if level < 1 {
		level = 1
	}
	return LevelProgress{
		TotalXP:               totalXP,
		Level:                 level,
		XPInCurrentLevel:      totalXP - XPThresholdForLevel(level),
		XPNeededForNext:       XPGapToNextLevel(level),
		RecommendedDifficulty: DifficultyForLevel(level),
	}
}

// XPMultiplier returns the stage XP factor of a difficulty. Unknown tiers count as easy.
func XPMultiplier(difficulty string) int {
	switch difficulty {
	case DifficultyMedium:
		return 2
	case DifficultyHard:
		return 3
	default:
		return 1
	}
}
