package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUnownedLines(t *testing.T) {
	g := newTestGame(t, nil)
	// every sub-run of 3+ along 12 lines of 6 and 7+7 diagonals of 3..6
	assert.Len(t, g.UnownedLines(), 180)

	mustClaim(t, g, 1, 1, At(2, 0))
	for _, run := range g.UnownedLines() {
		assert.NotContains(t, run, At(2, 0))
	}
}

func TestRaisableCells(t *testing.T) {
	g := newTestGame(t, nil)
	mustClaim(t, g, 1, 6, At(0, 0))
	mustClaim(t, g, 1, 2, At(3, 3))
	mustClaim(t, g, 2, 2, At(4, 4))
	assert.Equal(t, []Coordinates{At(3, 3)}, g.RaisableCells(1))
}

func TestSwapCandidates(t *testing.T) {
	g := newTestGame(t, nil)
	mustClaim(t, g, 1, 2, At(0, 0))
	mustClaim(t, g, 2, 2, At(0, 3), At(4, 0), At(1, 1))
	mustClaim(t, g, 2, 3, At(5, 0))
	assert.Equal(t, []Coordinates{At(4, 0), At(0, 3)}, g.SwapCandidates(At(0, 0)))
	assert.Nil(t, g.SwapCandidates(At(-1, 0)))
}

func TestPlayerCoinsAndCombos(t *testing.T) {
	g := newTestGame(t, nil)
	mustClaim(t, g, 1, 2, At(0, 0), At(0, 1), At(0, 2))
	mustClaim(t, g, 1, 5, At(4, 4))
	mustClaim(t, g, 2, 1, At(5, 0), At(5, 1), At(5, 2))

	assert.Equal(t, map[int]int{2: 6, 5: 5}, g.PlayerCoins(1))
	assert.Equal(t, []Coordinates{At(0, 0), At(0, 1), At(0, 2)}, g.PlayerOpenedComboCells(1))
	assert.True(t, g.InCombo(At(0, 1), 1))
	assert.False(t, g.InCombo(At(0, 1), 2))
	assert.False(t, g.InCombo(At(4, 4), 1))
}
