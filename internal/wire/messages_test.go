package wire

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docombos/docombos/apps/go-server/internal/game"
)

func TestEncode(t *testing.T) {
	b, err := Encode(Countdown(5))
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"countdown","payload":{"seconds":5}}`, string(b))

	b, err = Encode(Message{Type: TypeStart})
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"start"}`, string(b))
}

func TestEcho(t *testing.T) {
	m := Echo(2, Request{Type: TypeClaim, Cell: game.At(1, 4), Price: 3})
	assert.Equal(t, TypeClaimed, m.Type)
	assert.Equal(t, ActionPayload{Player: 2, X: 1, Y: 4, Price: 3}, m.Payload)

	m = Echo(1, Request{Type: TypeSwap, A: game.At(0, 0), B: game.At(3, 0)})
	require.Equal(t, TypeSwapped, m.Type)
	b, err := Encode(m)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"swapped","payload":{"player":1,"x":0,"y":0,"a":{"x":0,"y":0},"b":{"x":3,"y":0}}}`, string(b))
}

func TestFromEvents(t *testing.T) {
	g := game.New(game.DefaultRules())
	require.NoError(t, g.AddPlayer(1, true, "alice"))
	g.Tick(10)

	events, err := g.Claim(game.At(2, 2), 1, 3)
	require.NoError(t, err)
	msgs := FromEvents(events)

	var types []Type
	for _, m := range msgs {
		types = append(types, m.Type)
	}
	assert.Equal(t, []Type{TypeCell, TypeHighlight, TypeScore}, types)
	assert.Equal(t, CellPayload{X: 2, Y: 2, Owner: 1, Price: 3}, msgs[0].Payload)
	assert.Equal(t, ScorePayload{Scores: []game.PlayerScore{{Player: 1, Score: 3}}}, msgs[2].Payload)

	// empty highlight encodes as a list, not null
	b, err := Encode(msgs[1])
	require.NoError(t, err)
	var env struct {
		Payload struct {
			Cells json.RawMessage `json:"cells"`
		} `json:"payload"`
	}
	require.NoError(t, json.Unmarshal(b, &env))
	assert.Equal(t, "[]", string(env.Payload.Cells))
}

func TestFromEvents_SkipsMarkers(t *testing.T) {
	msgs := FromEvents([]game.Event{{Kind: game.EventBoardChanged}, {Kind: game.EventPlayerWon, Player: 2}})
	assert.Empty(t, msgs)
}

func TestWin(t *testing.T) {
	m := Win(2, map[game.PlayerID]int{2: 101, 1: 40})
	assert.Equal(t, WinPayload{Player: 2, Scores: []game.PlayerScore{{Player: 1, Score: 40}, {Player: 2, Score: 101}}}, m.Payload)
}
