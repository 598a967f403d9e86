// apps/go-server/internal/game/cell.go
//
// Per-cell state. A cell is either unowned (no owner, price 0, unlocked) or
// owned with a price. Every mutator returns the Event it caused; GameState is
// responsible for checking preconditions before calling them.

package game

// CellData is the transferable part of a cell: what snapshots carry and what
// a swap exchanges.
type CellData struct {
	Owner   PlayerID `json:"owner"`
	Price   int      `json:"price"`
	IsLocal bool     `json:"isLocal"` // perspective flag for client views only
	Locked  bool     `json:"locked"`
}

// EmptyCell is the data of an unowned cell.
var EmptyCell = CellData{Owner: NoOwner}

// Owned reports whether any player holds the cell.
func (d CellData) Owned() bool { return d.Owner != NoOwner }

// OwnedBy reports whether p holds the cell.
func (d CellData) OwnedBy(p PlayerID) bool { return d.Owned() && d.Owner == p }

func (d CellData) sameAs(other CellData) bool { return d == other }

// CellView is a read-only copy of a cell together with its position.
type CellView struct {
	Coords Coordinates `json:"coords"`
	CellData
}

// CellState is a live board cell. Its coordinates never change.
type CellState struct {
	coords Coordinates
	data   CellData
}

func newCellState(c Coordinates) CellState {
	return CellState{coords: c, data: EmptyCell}
}

func (s *CellState) Coordinates() Coordinates { return s.coords }

// View returns a copy that callers cannot use to mutate the board.
func (s *CellState) View() CellView { return CellView{Coords: s.coords, CellData: s.data} }

// Claim takes an unowned cell for owner at price.
func (s *CellState) Claim(price int, owner PlayerID, isLocal bool) Event {
	s.data = CellData{Owner: owner, Price: price, IsLocal: isLocal}
	return cellEvent(EventCellChanged, s.coords, s.data)
}

// RaisePrice adds delta to the price.
func (s *CellState) RaisePrice(delta int) Event {
	s.data.Price += delta
	return cellEvent(EventCellChanged, s.coords, s.data)
}

// Lock marks the cell as part of a fixed combo.
func (s *CellState) Lock() Event {
	s.data.Locked = true
	return cellEvent(EventCellLocked, s.coords, s.data)
}

// Unlock makes the cell tradeable again.
func (s *CellState) Unlock() Event {
	s.data.Locked = false
	return cellEvent(EventCellUnlocked, s.coords, s.data)
}

// Adopt overwrites all four fields with d. It only mutates and reports an
// event when something differs, so adopting the same data twice is a no-op.
func (s *CellState) Adopt(d CellData) (Event, bool) {
	if s.data.sameAs(d) {
		return Event{}, false
	}
	s.data = d
	return cellEvent(EventCellChanged, s.coords, s.data), true
}
