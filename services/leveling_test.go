package services

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLevelForXPTiers(t *testing.T) {
	cases := []struct {
		xp    int64
		level int
	}{
		{0, 1},
		{50, 1},
		{99, 1},
		{100, 2},
		{125, 2},
		{399, 2},
		{400, 3},
		{899, 3},
		{900, 4},
		{-10, 1},
	}
	for _, c := range cases {
		require.Equal(t, c.level, LevelForXP(c.xp), "xp=%d", c.xp)
	}
}

func TestLevelForXPMonotonic(t *testing.T) {
	prev := LevelForXP(0)
	require.Equal(t, 1, prev)
	for xp := int64(1); xp <= 5000; xp++ {
		level := LevelForXP(xp)
		require.GreaterOrEqual(t, level, prev, "xp=%d", xp)
		prev = level
	}
}

func TestLevelForXPDeterministic(t *testing.T) {
	require.Equal(t, LevelForXP(777), LevelForXP(777))
}
