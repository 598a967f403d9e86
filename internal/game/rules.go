// apps/go-server/internal/game/rules.go
//
// Board geometry, player identity and the tunable economy rules.
// Defaults mirror the live game balance:
//   - 6x6 board, combos of 3 or more cells.
//   - Prices 1..6, cash accrues 0.5/s up to 6, one action per second.
//   - First player to 100 points wins.

package game

import "time"

const (
	// BoardSize is the side length of the square board.
	BoardSize = 6
	// CellCount is the number of cells on the board.
	CellCount = BoardSize * BoardSize
	// MinComboCells is the shortest run that counts as a combo.
	MinComboCells = 3
	// MaxPlayers is the number of seats in a match.
	MaxPlayers = 2
)

// PlayerID identifies a seat in a match. NoOwner marks an unowned cell.
type PlayerID int

const NoOwner PlayerID = -1

// Rules holds the economy and pacing constants of a match.
type Rules struct {
	ActionCooldown float64 // seconds a player waits after each committed action
	CashCap        float64 // ticking never raises cash above this
	CashRate       float64 // cash earned per second
	StartCash      float64
	StartCooldown  float64
	MinPrice       int
	MaxPrice       int
	ScoreGoal      int

	TickInterval time.Duration // host tick period
	StartDelay   time.Duration // countdown between "all ready" and the first tick
}

// DefaultRules returns the standard match balance.
func DefaultRules() Rules {
	return Rules{
		ActionCooldown: 1,
		CashCap:        6,
		CashRate:       0.5,
		StartCash:      0,
		StartCooldown:  0,
		MinPrice:       1,
		MaxPrice:       6,
		ScoreGoal:      100,
		TickInterval:   40 * time.Millisecond,
		StartDelay:     5 * time.Second,
	}
}
