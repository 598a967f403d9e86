package game

// Read-only helpers for bots and client hints. None of them mutate state.

// UnownedLines returns every run of 3+ free cells along the line index.
func (g *GameState) UnownedLines() [][]Coordinates {
	var out [][]Coordinates
	for _, line := range g.lines {
		for start := 0; start <= len(line)-MinComboCells; start++ {
			var run []Coordinates
			for _, c := range line[start:] {
				if g.cell(c).data.Owned() {
					break
				}
				run = append(run, c)
				if len(run) >= MinComboCells {
					out = append(out, append([]Coordinates(nil), run...))
				}
			}
		}
	}
	return out
}

// RaisableCells lists the cells of p that can still be raised to MaxPrice.
func (g *GameState) RaisableCells(p PlayerID) []Coordinates {
	var out []Coordinates
	for i := 0; i < CellCount; i++ {
		c := FromIndex(i)
		if g.CanRaise(c, g.rules.MaxPrice-g.cell(c).data.Price, p) {
			out = append(out, c)
		}
	}
	return out
}

// SwapCandidates lists the cells on the row and column of c it could swap
// with right now.
func (g *GameState) SwapCandidates(c Coordinates) []Coordinates {
	if !c.Valid() {
		return nil
	}
	var out []Coordinates
	for i := 0; i < BoardSize; i++ {
		if col := At(c.X, i); g.CanSwap(c, col) {
			out = append(out, col)
		}
		if row := At(i, c.Y); g.CanSwap(c, row) {
			out = append(out, row)
		}
	}
	SortCoordinates(out)
	return out
}

// PlayerOpenedComboCells filters the highlighted cells down to those of p.
func (g *GameState) PlayerOpenedComboCells(p PlayerID) []Coordinates {
	var out []Coordinates
	for _, c := range g.highlighted {
		if g.cell(c).data.OwnedBy(p) {
			out = append(out, c)
		}
	}
	return out
}

// PlayerCoins sums the value p holds on the board, keyed by price.
func (g *GameState) PlayerCoins(p PlayerID) map[int]int {
	out := make(map[int]int)
	for i := 0; i < CellCount; i++ {
		d := g.cell(FromIndex(i)).data
		if d.OwnedBy(p) {
			out[d.Price] += d.Price
		}
	}
	return out
}

// InCombo reports whether c belongs to one of the opened combos of p.
func (g *GameState) InCombo(c Coordinates, p PlayerID) bool {
	for _, combo := range g.opened[p] {
		if combo.Contains(c) {
			return true
		}
	}
	return false
}
