package progression

// State is an immutable snapshot of a player's progression. Transitions
// produce a new value; the old one is discarded.
//
// Invariants (hold after every transition):
//   - 0 <= XP < NextLevelXP
//   - NextLevelXP == LevelThreshold(Level); it is a cached derived value
type State struct {
	Level       int `json:"level" db:"level"`
	XP          int `json:"xp" db:"xp"`
	NextLevelXP int `json:"next_level_xp" db:"next_level_xp"`
	Coins       int `json:"coins" db:"coins"`
}

// DefaultState is the progression of a user identity never seen before.
func DefaultState() State {
	return State{
		Level:       1,
		XP:          0,
		NextLevelXP: LevelThreshold(1),
		Coins:       0,
	}
}

// ApplyReward adds an XP and coin gain to `s`, crossing as many level
// boundaries as the gain covers. Each crossing grants LevelUpBonus for the
// level reached and recomputes the threshold. It returns the new snapshot and
// the number of levels gained so callers can surface a level-up event.
//
// A zero/zero gain returns `s` unchanged; a negative xpGain is a caller bug
// and panics with ErrInvalidReward.
func ApplyReward(s State, xpGain, coinGain int) (State, int) {
	if xpGain < 0 {
		panic(ErrInvalidReward)
	}
	if xpGain == 0 && coinGain == 0 {
		return s, 0
	}

	xp := s.XP + xpGain
	coins := s.Coins + coinGain
	level := s.Level
	threshold := s.NextLevelXP

	// loop handles multi-leveling when a single reward is massive
	for xp >= threshold {
		xp -= threshold
		level++
		coins += LevelUpBonus(level)
		threshold = LevelThreshold(level)
	}

	return State{Level: level, XP: xp, NextLevelXP: threshold, Coins: coins}, level - s.Level
}

// OverrideCoins returns a copy of `s` with the coin balance replaced; level
// and XP are untouched. Used by the shop after a purchase or sale.
func OverrideCoins(s State, coins int) (State, error) {
	if coins < 0 {
		return State{}, ErrInvalidCoinBalance
	}
	s.Coins = coins
	return s, nil
}
