// apps/go-server/internal/game/combo.go
//
// Combo detection and scoring.
//
// A combo is 3+ cells with one owner forming a contiguous straight run:
// horizontal, vertical, down-right or down-left diagonal. Combos are values;
// they are recomputed after every board change, never mutated.
//
// Fixing bonus: when the prices (in reading order) form an arithmetic
// progression, the bonus is the larger of the sum without the first two
// prices and the sum without the last two. Otherwise there is no bonus.

package game

import "sort"

// directions a combo may run in, as the step between consecutive cells in
// reading order.
var comboSteps = [4][2]int{
	{1, 0},  // horizontal
	{0, 1},  // vertical
	{1, 1},  // down-right
	{-1, 1}, // down-left
}

// CellFitForCombo reports whether a single cell may take part in a combo.
func CellFitForCombo(c CellView, ignoreLock bool) bool {
	return c.Owned() && (!c.Locked || ignoreLock)
}

// IsCombo reports whether cells form a combo. Locked cells are rejected
// unless ignoreLock is set.
func IsCombo(cells []CellView, ignoreLock bool) bool {
	if len(cells) < MinComboCells {
		return false
	}
	for _, c := range cells {
		if !CellFitForCombo(c, ignoreLock) {
			return false
		}
	}

	owner := cells[0].Owner
	seen := make(map[Coordinates]struct{}, len(cells))
	coords := make([]Coordinates, 0, len(cells))
	for _, c := range cells {
		if c.Owner != owner {
			return false
		}
		if _, dup := seen[c.Coords]; dup {
			continue
		}
		seen[c.Coords] = struct{}{}
		coords = append(coords, c.Coords)
	}
	if len(coords) != len(cells) {
		return false
	}

	SortCoordinates(coords)
	for _, step := range comboSteps {
		if isRun(coords, step[0], step[1]) {
			return true
		}
	}
	return false
}

// isRun checks that sorted advances by exactly (dx, dy) at every step.
func isRun(sorted []Coordinates, dx, dy int) bool {
	for i := 1; i < len(sorted); i++ {
		if sorted[i].X-sorted[i-1].X != dx || sorted[i].Y-sorted[i-1].Y != dy {
			return false
		}
	}
	return true
}

// Combo is a validated, immutable run of cells.
type Combo struct {
	owner  PlayerID
	coords []Coordinates
	prices []int
	bonus  int
}

// NewCombo validates cells and builds a Combo from them. The cells are
// copied and sorted in reading order.
func NewCombo(cells []CellView, ignoreLock bool) (*Combo, error) {
	if !IsCombo(cells, ignoreLock) {
		return nil, ErrNotACombo
	}
	sorted := append([]CellView(nil), cells...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Coords.Less(sorted[j].Coords) })

	c := &Combo{
		owner:  sorted[0].Owner,
		coords: make([]Coordinates, len(sorted)),
		prices: make([]int, len(sorted)),
	}
	for i, cell := range sorted {
		c.coords[i] = cell.Coords
		c.prices[i] = cell.Price
	}
	c.bonus = fixingBonus(c.prices)
	return c, nil
}

func (c *Combo) Owner() PlayerID { return c.owner }
func (c *Combo) FixingBonus() int { return c.bonus }
func (c *Combo) Len() int { return len(c.coords) }

// First is the smallest coordinate of the combo.
func (c *Combo) First() Coordinates { return c.coords[0] }

// Coordinates returns the member cells in reading order.
func (c *Combo) Coordinates() []Coordinates { return append([]Coordinates(nil), c.coords...) }

// Prices returns the member prices in the same order as Coordinates.
func (c *Combo) Prices() []int { return append([]int(nil), c.prices...) }

// Contains reports whether pos is a member of the combo.
func (c *Combo) Contains(pos Coordinates) bool {
	for _, m := range c.coords {
		if m == pos {
			return true
		}
	}
	return false
}

func fixingBonus(prices []int) int {
	if len(prices) < MinComboCells {
		return 0
	}
	step := prices[1] - prices[0]
	for i := 2; i < len(prices); i++ {
		if prices[i]-prices[i-1] != step {
			return 0
		}
	}

	dropFirst, dropLast := 0, 0
	for i := MinComboCells - 1; i < len(prices); i++ {
		dropFirst += prices[i]
	}
	for i := 0; i <= len(prices)-MinComboCells; i++ {
		dropLast += prices[i]
	}
	return max(dropFirst, dropLast)
}

// Compare ranks combos in descending preference: higher bonus, then longer,
// then the one whose first cell comes earlier. It returns a negative number
// when a should be ranked before b.
func Compare(a, b *Combo) int {
	if a.bonus != b.bonus {
		if a.bonus > b.bonus {
			return -1
		}
		return 1
	}
	if a.Len() != b.Len() {
		if a.Len() > b.Len() {
			return -1
		}
		return 1
	}
	return a.First().Compare(b.First())
}

// SortCombos orders combos by Compare.
func SortCombos(cs []*Combo) {
	sort.SliceStable(cs, func(i, j int) bool { return Compare(cs[i], cs[j]) < 0 })
}
