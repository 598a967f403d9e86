// apps/go-server/internal/wire/messages.go
//
// JSON envelopes exchanged over the room websocket.
// Every frame is {"type": ..., "payload": ...}. Client requests are decoded
// and validated once here; everything past this package works with typed
// values only.
//
// Server messages:
//   - lifecycle: joined, countdown, start, win, disconnected
//   - echoes of accepted actions: claimed, raised, fixed, opened, swapped
//   - engine fan-out: cell, highlight, score
//   - per-actor: error, sync (binary frame, see snapshot.go)

package wire

import (
	"encoding/json"
	"sort"

	"github.com/docombos/docombos/apps/go-server/internal/game"
)

// Type tags an envelope.
type Type string

// Client -> server.
const (
	TypeReady Type = "ready"
	TypeClaim Type = "claim"
	TypeRaise Type = "raise"
	TypeFix   Type = "fix"
	TypeOpen  Type = "open"
	TypeSwap  Type = "swap"
)

// Server -> client.
const (
	TypeJoined       Type = "joined"
	TypeCountdown    Type = "countdown"
	TypeStart        Type = "start"
	TypeClaimed      Type = "claimed"
	TypeRaised       Type = "raised"
	TypeFixed        Type = "fixed"
	TypeOpened       Type = "opened"
	TypeSwapped      Type = "swapped"
	TypeCell         Type = "cell"
	TypeHighlight    Type = "highlight"
	TypeScore        Type = "score"
	TypeError        Type = "error"
	TypeSync         Type = "sync"
	TypeWin          Type = "win"
	TypeDisconnected Type = "disconnected"
)

// Envelope is the raw frame shape in both directions.
type Envelope struct {
	Type    Type            `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Message is an outbound frame. Sync messages carry Binary instead of a
// JSON payload and go out as a binary websocket frame.
type Message struct {
	Type    Type
	Payload any
	Binary  []byte
}

// IsBinary reports whether m must be written as a binary frame.
func (m Message) IsBinary() bool { return m.Binary != nil }

// Encode renders a JSON message. Binary messages are returned as is.
func Encode(m Message) ([]byte, error) {
	if m.IsBinary() {
		return m.Binary, nil
	}
	return json.Marshal(struct {
		Type    Type `json:"type"`
		Payload any  `json:"payload,omitempty"`
	}{m.Type, m.Payload})
}

// ------------------------------- payloads ----------------------------------

// JoinedPayload announces a seated player and the current seat list.
type JoinedPayload struct {
	Room     string        `json:"room"`
	Player   game.PlayerID `json:"player"`
	Nickname string        `json:"nickname"`
	Players  []game.Player `json:"players"`
}

// CountdownPayload carries the whole seconds left before the match starts.
type CountdownPayload struct {
	Seconds int `json:"seconds"`
}

// StartPayload publishes the rules the match runs with.
type StartPayload struct {
	ScoreGoal int     `json:"scoreGoal"`
	CashCap   float64 `json:"cashCap"`
	CashRate  float64 `json:"cashRate"`
	MinPrice  int     `json:"minPrice"`
	MaxPrice  int     `json:"maxPrice"`
}

// ActionPayload echoes an accepted request together with its actor.
type ActionPayload struct {
	Player game.PlayerID      `json:"player"`
	X      int                `json:"x"`
	Y      int                `json:"y"`
	Price  int                `json:"price,omitempty"`
	Cells  []game.Coordinates `json:"cells,omitempty"`
	A      *game.Coordinates  `json:"a,omitempty"`
	B      *game.Coordinates  `json:"b,omitempty"`
}

// CellPayload is the new data of one changed cell.
type CellPayload struct {
	X      int           `json:"x"`
	Y      int           `json:"y"`
	Owner  game.PlayerID `json:"owner"`
	Price  int           `json:"price"`
	Locked bool          `json:"locked"`
}

// HighlightPayload is the union of every opened combo's cells.
type HighlightPayload struct {
	Cells []game.Coordinates `json:"cells"`
}

// ScorePayload lists scores ordered by player id.
type ScorePayload struct {
	Scores []game.PlayerScore `json:"scores"`
}

// ErrorPayload explains why a request was refused.
type ErrorPayload struct {
	Reason string `json:"reason"`
}

// WinPayload names the winner with the final scores.
type WinPayload struct {
	Player game.PlayerID      `json:"player"`
	Scores []game.PlayerScore `json:"scores"`
}

// DisconnectedPayload names the player who left.
type DisconnectedPayload struct {
	Nickname string `json:"nickname"`
}

// ----------------------------- constructors --------------------------------

// Joined builds the joined message.
func Joined(room string, p game.PlayerID, nickname string, players []game.Player) Message {
	return Message{Type: TypeJoined, Payload: JoinedPayload{Room: room, Player: p, Nickname: nickname, Players: players}}
}

// Countdown builds the countdown message.
func Countdown(seconds int) Message {
	return Message{Type: TypeCountdown, Payload: CountdownPayload{Seconds: seconds}}
}

// Start builds the start message from r.
func Start(r game.Rules) Message {
	return Message{Type: TypeStart, Payload: StartPayload{
		ScoreGoal: r.ScoreGoal,
		CashCap:   r.CashCap,
		CashRate:  r.CashRate,
		MinPrice:  r.MinPrice,
		MaxPrice:  r.MaxPrice,
	}}
}

// Error builds an error message for the actor of a refused request.
func Error(reason string) Message {
	return Message{Type: TypeError, Payload: ErrorPayload{Reason: reason}}
}

// Sync wraps a binary snapshot frame.
func Sync(s game.Snapshot) Message {
	return Message{Type: TypeSync, Binary: EncodeSnapshot(s)}
}

// Win builds the win message with scores sorted by player.
func Win(p game.PlayerID, scores map[game.PlayerID]int) Message {
	return Message{Type: TypeWin, Payload: WinPayload{Player: p, Scores: scoreList(scores)}}
}

// Disconnected builds the message sent when a seat leaves.
func Disconnected(nickname string) Message {
	return Message{Type: TypeDisconnected, Payload: DisconnectedPayload{Nickname: nickname}}
}

// Echo turns an accepted request into the broadcast that announces it.
func Echo(actor game.PlayerID, req Request) Message {
	p := ActionPayload{Player: actor, X: req.Cell.X, Y: req.Cell.Y, Price: req.Price}
	var t Type
	switch req.Type {
	case TypeClaim:
		t = TypeClaimed
	case TypeRaise:
		t = TypeRaised
	case TypeOpen:
		t = TypeOpened
	case TypeFix:
		t = TypeFixed
		p = ActionPayload{Player: actor, Cells: req.Cells}
	case TypeSwap:
		t = TypeSwapped
		a, b := req.A, req.B
		p = ActionPayload{Player: actor, A: &a, B: &b}
	default:
		t = req.Type
	}
	return Message{Type: t, Payload: p}
}

// FromEvents translates engine events into client messages. Board-changed
// markers have no wire form; clients redraw on every cell message. Wins are
// announced by the host once it has closed the match.
func FromEvents(events []game.Event) []Message {
	var out []Message
	for _, e := range events {
		switch e.Kind {
		case game.EventCellChanged, game.EventCellLocked, game.EventCellUnlocked:
			out = append(out, Message{Type: TypeCell, Payload: CellPayload{
				X:      e.Coords.X,
				Y:      e.Coords.Y,
				Owner:  e.Cell.Owner,
				Price:  e.Cell.Price,
				Locked: e.Cell.Locked,
			}})
		case game.EventOpenedCombosChanged:
			cells := e.Highlighted
			if cells == nil {
				cells = []game.Coordinates{}
			}
			out = append(out, Message{Type: TypeHighlight, Payload: HighlightPayload{Cells: cells}})
		case game.EventScoreChanged:
			out = append(out, Message{Type: TypeScore, Payload: ScorePayload{Scores: scoreList(e.Scores)}})
		}
	}
	return out
}

// scoreList flattens a score map ordered by player id.
func scoreList(scores map[game.PlayerID]int) []game.PlayerScore {
	out := make([]game.PlayerScore, 0, len(scores))
	for p, s := range scores {
		out = append(out, game.PlayerScore{Player: p, Score: s})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Player < out[j].Player })
	return out
}
