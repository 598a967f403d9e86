package game

import "fmt"

// PlayerScore is one (player, score) pair of a snapshot.
type PlayerScore struct {
	Player PlayerID `json:"player"`
	Score  int      `json:"score"`
}

// Snapshot is an authoritative point-in-time view of a match from one
// player's perspective. Cells are in row-major order.
type Snapshot struct {
	Cash     float64                 `json:"cash"`
	Cooldown float64                 `json:"cooldown"`
	Scores   [MaxPlayers]PlayerScore `json:"scores"`
	Cells    [CellCount]CellData     `json:"cells"`
}

// Snapshot captures the state as seen by p. Empty seats are reported with
// NoOwner ids.
func (g *GameState) Snapshot(p PlayerID) (Snapshot, error) {
	w, err := g.wallet(p)
	if err != nil {
		return Snapshot{}, err
	}
	s := Snapshot{Cash: w.cash, Cooldown: w.cooldown}
	for i := range s.Scores {
		s.Scores[i] = PlayerScore{Player: NoOwner}
	}
	for i, pl := range g.players {
		s.Scores[i] = PlayerScore{Player: pl.ID, Score: g.score.Score(pl.ID)}
	}
	for i := range s.Cells {
		d := g.cell(FromIndex(i)).data
		d.IsLocal = d.OwnedBy(p)
		s.Cells[i] = d
	}
	return s, nil
}

// ApplySnapshot reconciles local state for p with an authoritative snapshot.
// Every id and cell is validated before anything is written. Economy and
// scores are overwritten; only cells that differ are adopted.
// When any cell changed, combos are rescanned once and a single board event
// is emitted. Applying the same snapshot twice changes nothing the second
// time.
func (g *GameState) ApplySnapshot(s Snapshot, p PlayerID) ([]Event, bool, error) {
	w, err := g.wallet(p)
	if err != nil {
		return nil, false, err
	}
	scores := make(map[PlayerID]int, MaxPlayers)
	for _, ps := range s.Scores {
		if ps.Player == NoOwner {
			continue
		}
		if err := g.checkPlayer(ps.Player); err != nil {
			return nil, false, err
		}
		scores[ps.Player] = ps.Score
	}
	for i, d := range s.Cells {
		if err := g.checkCellData(d); err != nil {
			return nil, false, fmt.Errorf("cell %s: %w", FromIndex(i), err)
		}
	}

	w.cash, w.cooldown = s.Cash, s.Cooldown
	events := g.score.Overwrite(scores)

	changed := false
	for i, d := range s.Cells {
		if ev, ok := g.cell(FromIndex(i)).Adopt(d); ok {
			events = append(events, ev)
			changed = true
		}
	}
	if changed {
		events = append(events, g.boardChanged()...)
	}
	return events, changed, nil
}

// checkCellData enforces the cell invariant: an unowned cell is exactly
// EmptyCell, an owned cell belongs to a registered player at a legal price.
func (g *GameState) checkCellData(d CellData) error {
	if !d.Owned() {
		if d != EmptyCell {
			return fmt.Errorf("%w: unowned cell with price %d, locked %t", ErrBadCell, d.Price, d.Locked)
		}
		return nil
	}
	if err := g.checkPlayer(d.Owner); err != nil {
		return err
	}
	if d.Price < g.rules.MinPrice || d.Price > g.rules.MaxPrice {
		return fmt.Errorf("%w: price %d outside [%d,%d]", ErrBadCell, d.Price, g.rules.MinPrice, g.rules.MaxPrice)
	}
	return nil
}
