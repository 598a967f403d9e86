package game

// EventKind tags the variant carried by an Event.
type EventKind string

const (
	EventCellChanged         EventKind = "cell_changed"
	EventCellLocked          EventKind = "cell_locked"
	EventCellUnlocked        EventKind = "cell_unlocked"
	EventBoardChanged        EventKind = "board_changed"
	EventOpenedCombosChanged EventKind = "opened_combos_changed"
	EventScoreChanged        EventKind = "score_changed"
	EventPlayerWon           EventKind = "player_won"
)

// Event is a state change produced by a mutation. Mutations return the
// events they caused in the order they happened; nothing is delivered
// behind the caller's back.
//
// Fields are populated per kind:
//   - cell kinds:            Coords, Cell
//   - opened combos changed: Highlighted (sorted, all players)
//   - score changed:         Scores
//   - player won:            Player
type Event struct {
	Kind        EventKind
	Coords      Coordinates
	Cell        CellData
	Highlighted []Coordinates
	Scores      map[PlayerID]int
	Player      PlayerID
}

func cellEvent(kind EventKind, c Coordinates, d CellData) Event {
	return Event{Kind: kind, Coords: c, Cell: d}
}
