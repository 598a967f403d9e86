package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoordinates_IndexRoundTrip(t *testing.T) {
	for i := 0; i < CellCount; i++ {
		c := FromIndex(i)
		require.True(t, c.Valid())
		assert.Equal(t, i, c.Index())
	}
	assert.Equal(t, At(5, 0), FromIndex(5))
	assert.Equal(t, At(0, 1), FromIndex(6))
}

func TestCoordinates_ReadingOrder(t *testing.T) {
	assert.Equal(t, -1, At(5, 0).Compare(At(0, 1)))
	assert.Equal(t, 1, At(1, 2).Compare(At(0, 2)))
	assert.Equal(t, 0, At(3, 3).Compare(At(3, 3)))

	cs := []Coordinates{At(2, 2), At(0, 1), At(4, 0), At(1, 1)}
	SortCoordinates(cs)
	assert.Equal(t, []Coordinates{At(4, 0), At(0, 1), At(1, 1), At(2, 2)}, cs)
}

func TestCoordinates_Valid(t *testing.T) {
	assert.False(t, At(-1, 0).Valid())
	assert.False(t, At(0, BoardSize).Valid())
	assert.ErrorIs(t, checkCoords(At(0, 0), At(6, 6)), ErrOutOfRange)
	assert.NoError(t, checkCoords(At(0, 0), At(5, 5)))
}

func TestBuildLines(t *testing.T) {
	lines := buildLines(BoardSize, MinComboCells)
	require.Len(t, lines, 26)

	for _, l := range lines {
		assert.GreaterOrEqual(t, len(l), MinComboCells)
	}
	assert.Equal(t, []Coordinates{At(0, 0), At(1, 0), At(2, 0), At(3, 0), At(4, 0), At(5, 0)}, lines[0])
	assert.Equal(t, []Coordinates{At(0, 0), At(0, 1), At(0, 2), At(0, 3), At(0, 4), At(0, 5)}, lines[6])
	// first down-left diagonal long enough starts at the top row
	assert.Equal(t, []Coordinates{At(2, 0), At(1, 1), At(0, 2)}, lines[12])
}
