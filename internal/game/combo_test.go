package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsCombo_Geometry(t *testing.T) {
	cases := []struct {
		name  string
		cells []CellView
		want  bool
	}{
		{"horizontal", owned(1, 1, At(0, 0), At(1, 0), At(2, 0)), true},
		{"vertical", owned(1, 1, At(4, 1), At(4, 2), At(4, 3)), true},
		{"down right", owned(1, 1, At(1, 1), At(2, 2), At(3, 3)), true},
		{"down left", owned(1, 1, At(2, 0), At(1, 1), At(0, 2)), true},
		{"any input order", owned(1, 1, At(2, 0), At(0, 0), At(1, 0)), true},
		{"too short", owned(1, 1, At(0, 0), At(1, 0)), false},
		{"gap", owned(1, 1, At(0, 0), At(1, 0), At(3, 0)), false},
		{"bent", owned(1, 1, At(0, 0), At(1, 0), At(1, 1)), false},
		{"duplicate", owned(1, 1, At(0, 0), At(1, 0), At(1, 0)), false},
		{"unowned", owned(NoOwner, 0, At(0, 0), At(1, 0), At(2, 0)), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, IsCombo(tc.cells, false))
		})
	}
}

func TestIsCombo_MixedOwners(t *testing.T) {
	cells := owned(1, 1, At(0, 0), At(1, 0), At(2, 0))
	cells[1].Owner = 2
	assert.False(t, IsCombo(cells, false))
}

func TestIsCombo_Locked(t *testing.T) {
	cells := owned(1, 1, At(0, 0), At(1, 0), At(2, 0))
	cells[2].Locked = true
	assert.False(t, IsCombo(cells, false))
	assert.True(t, IsCombo(cells, true))
}

func TestFixingBonus(t *testing.T) {
	assert.Equal(t, 3, fixingBonus([]int{1, 2, 3}))
	assert.Equal(t, 7, fixingBonus([]int{1, 2, 3, 4}))
	assert.Equal(t, 3, fixingBonus([]int{3, 2, 1}))
	assert.Equal(t, 2, fixingBonus([]int{2, 2, 2}))
	assert.Equal(t, 0, fixingBonus([]int{1, 3, 2}))
	assert.Equal(t, 0, fixingBonus([]int{1, 2}))
}

func TestNewCombo(t *testing.T) {
	cells := []CellView{
		{Coords: At(2, 0), CellData: CellData{Owner: 1, Price: 3}},
		{Coords: At(0, 0), CellData: CellData{Owner: 1, Price: 1}},
		{Coords: At(1, 0), CellData: CellData{Owner: 1, Price: 2}},
	}
	c, err := NewCombo(cells, false)
	require.NoError(t, err)
	assert.Equal(t, PlayerID(1), c.Owner())
	assert.Equal(t, []Coordinates{At(0, 0), At(1, 0), At(2, 0)}, c.Coordinates())
	assert.Equal(t, []int{1, 2, 3}, c.Prices())
	assert.Equal(t, 3, c.FixingBonus())
	assert.Equal(t, At(0, 0), c.First())
	assert.True(t, c.Contains(At(1, 0)))
	assert.False(t, c.Contains(At(1, 1)))

	_, err = NewCombo(cells[:2], false)
	assert.ErrorIs(t, err, ErrNotACombo)
}

func TestSortCombos(t *testing.T) {
	mk := func(prices []int, cs ...Coordinates) *Combo {
		cells := make([]CellView, len(cs))
		for i, c := range cs {
			cells[i] = CellView{Coords: c, CellData: CellData{Owner: 1, Price: prices[i]}}
		}
		c, err := NewCombo(cells, false)
		require.NoError(t, err)
		return c
	}
	flatLate := mk([]int{1, 1, 1}, At(0, 5), At(1, 5), At(2, 5))
	flatEarly := mk([]int{1, 1, 1}, At(0, 0), At(1, 0), At(2, 0))
	flatLong := mk([]int{1, 1, 1, 1}, At(0, 3), At(1, 3), At(2, 3), At(3, 3))
	rich := mk([]int{4, 5, 6}, At(5, 0), At(5, 1), At(5, 2))

	cs := []*Combo{flatLate, flatEarly, rich, flatLong}
	SortCombos(cs)
	// bonus 6, then 2 (longer), then the two 1s by position
	assert.Equal(t, []*Combo{rich, flatLong, flatEarly, flatLate}, cs)
}
