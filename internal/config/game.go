// SPDX-License-Identifier: MPL-2.0

package config

import "strconv"

const (
	// Game1 selects Warhammer: End Times - Vermintide.
	Game1 Game = 1
	// Game2 selects Warhammer: Vermintide 2.
	Game2 Game = 2
)

// Game selects which of the two supported games per-game keys resolve for.
type Game int

// IsValid reports whether g is one of the supported games.
func (g Game) IsValid() bool {
	return g == Game1 || g == Game2
}

// String returns the game's display name.
func (g Game) String() string {
	return "Vermintide " + strconv.Itoa(int(g))
}
