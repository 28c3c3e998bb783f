package progression

import (
	"errors"
	"math"
)

// Growth curve constants. Tuned so thresholds stay "clean" round numbers
// for display while ramping difficulty geometrically.
const (
	baseThreshold = 10000
	growthRate    = 1.2
	roundUnit     = 100

	baseBonus      = 20
	perLevelBonus  = 2
	milestoneEvery = 5
	milestoneBonus = 30
)

var (
	// ErrInvalidLevel reports a contract violation on the curve functions;
	// valid call sites can never trigger it.
	ErrInvalidLevel = errors.New("progression: invalid level")

	// ErrInvalidReward reports a negative XP gain passed to ApplyReward.
	ErrInvalidReward = errors.New("progression: xp gain must be >= 0")

	// ErrInvalidCoinBalance reports a negative coin balance passed to OverrideCoins.
	ErrInvalidCoinBalance = errors.New("progression: coin balance must be >= 0")
)

// LevelThreshold returns the XP required to advance from `level` to level+1.
// Level 1 = 10,000; level 2 = 12,000; level 3 = 14,400; truncated down to a
// multiple of 100. Strictly increasing in level.
//
// Calling it with level < 1 is a caller bug and panics with ErrInvalidLevel.
func LevelThreshold(level int) int {
	if level < 1 {
		panic(ErrInvalidLevel)
	}
	raw := baseThreshold * math.Pow(growthRate, float64(level-1))
	return int(raw/roundUnit) * roundUnit
}

// LevelUpBonus returns the coin bonus awarded for reaching `level`, linear in
// level with a flat extra every 5th level.
//
// Calling it with level < 2 (level 1 is never "reached") is a caller bug and
// panics with ErrInvalidLevel.
func LevelUpBonus(level int) int {
	if level < 2 {
		panic(ErrInvalidLevel)
	}
	bonus := baseBonus + (level-1)*perLevelBonus
	if level%milestoneEvery == 0 {
		bonus += milestoneBonus
	}
	return bonus
}
