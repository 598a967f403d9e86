package game

// buildLines lists every straight line of at least minLen cells on a
// size x size board: rows, columns, then down-left and down-right diagonals.
// Each line is ordered from its first cell in the direction of travel.
func buildLines(size, minLen int) [][]Coordinates {
	var lines [][]Coordinates

	for y := 0; y < size; y++ {
		row := make([]Coordinates, 0, size)
		for x := 0; x < size; x++ {
			row = append(row, At(x, y))
		}
		lines = append(lines, row)
	}
	for x := 0; x < size; x++ {
		col := make([]Coordinates, 0, size)
		for y := 0; y < size; y++ {
			col = append(col, At(x, y))
		}
		lines = append(lines, col)
	}

	// down-left diagonals start on the top row, then down the right edge
	for sx := 0; sx < size; sx++ {
		lines = appendDiagonal(lines, size, minLen, sx, 0, -1)
	}
	for sy := 1; sy < size; sy++ {
		lines = appendDiagonal(lines, size, minLen, size-1, sy, -1)
	}

	// down-right diagonals start down the left edge (bottom up), then along the top row
	for sy := size - 1; sy >= 0; sy-- {
		lines = appendDiagonal(lines, size, minLen, 0, sy, 1)
	}
	for sx := 1; sx < size; sx++ {
		lines = appendDiagonal(lines, size, minLen, sx, 0, 1)
	}
	return lines
}

func appendDiagonal(lines [][]Coordinates, size, minLen, x, y, dx int) [][]Coordinates {
	var diag []Coordinates
	for ; x >= 0 && x < size && y < size; x, y = x+dx, y+1 {
		diag = append(diag, At(x, y))
	}
	if len(diag) < minLen {
		return lines
	}
	return append(lines, diag)
}
