package game

import (
	"fmt"
	"sort"
)

// Coordinates is a board position. Ordering is reading order: row (Y) first,
// then column (X).
type Coordinates struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// At is shorthand for Coordinates{X: x, Y: y}.
func At(x, y int) Coordinates { return Coordinates{X: x, Y: y} }

// FromIndex is the inverse of Index.
func FromIndex(i int) Coordinates { return Coordinates{X: i % BoardSize, Y: i / BoardSize} }

// Valid reports whether c lies on the board.
func (c Coordinates) Valid() bool {
	return c.X >= 0 && c.X < BoardSize && c.Y >= 0 && c.Y < BoardSize
}

// Index is the row-major offset of c.
func (c Coordinates) Index() int { return c.Y*BoardSize + c.X }

// Compare returns -1, 0 or 1 like strings.Compare.
func (c Coordinates) Compare(o Coordinates) int {
	switch {
	case c.Y < o.Y:
		return -1
	case c.Y > o.Y:
		return 1
	case c.X < o.X:
		return -1
	case c.X > o.X:
		return 1
	}
	return 0
}

// Less orders coordinates row by row, the order Cells and snapshots use.
func (c Coordinates) Less(o Coordinates) bool { return c.Compare(o) < 0 }

func (c Coordinates) String() string { return fmt.Sprintf("[%d,%d]", c.X, c.Y) }

// SortCoordinates sorts cs in place in reading order.
func SortCoordinates(cs []Coordinates) {
	sort.Slice(cs, func(i, j int) bool { return cs[i].Less(cs[j]) })
}

func checkCoords(cs ...Coordinates) error {
	for _, c := range cs {
		if !c.Valid() {
			return fmt.Errorf("%w: %s", ErrOutOfRange, c)
		}
	}
	return nil
}
