package services

import "math"

// BaseXPPerLevel anchors the level curve.
const BaseXPPerLevel = 100

// LevelForXP derives the level tier for an XP total:
//
//	level(xp) = floor(sqrt(xp / 100)) + 1
//
// with integer division on the inner ratio, matching the documented tiers
// (0–100 XP → level 1, 100–400 → level 2, 400–900 → level 3). Pure and
// monotonically non-decreasing; every XP-mutating write calls this itself and
// persists xp and level together, so the two can never drift apart.
func LevelForXP(xp int64) int {
	if xp < 0 {
		xp = 0
	}
	return int(math.Sqrt(float64(xp/BaseXPPerLevel))) + 1
}
