package game

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// newTestGame seats players 1 (local) and 2 on a board where cash and
// cooldown never get in the way unless tune says otherwise.
func newTestGame(t *testing.T, tune func(*Rules)) *GameState {
	t.Helper()
	r := DefaultRules()
	r.StartCash = 100
	r.CashCap = 100
	r.ActionCooldown = 0
	if tune != nil {
		tune(&r)
	}
	g := New(r)
	require.NoError(t, g.AddPlayer(1, true, "alice"))
	require.NoError(t, g.AddPlayer(2, false, "bob"))
	return g
}

func mustClaim(t *testing.T, g *GameState, p PlayerID, price int, cs ...Coordinates) {
	t.Helper()
	for _, c := range cs {
		_, err := g.Claim(c, p, price)
		require.NoError(t, err, "claim %s", c)
	}
}

func kinds(events []Event) []EventKind {
	out := make([]EventKind, len(events))
	for i, e := range events {
		out[i] = e.Kind
	}
	return out
}

func owned(p PlayerID, price int, cs ...Coordinates) []CellView {
	out := make([]CellView, len(cs))
	for i, c := range cs {
		out[i] = CellView{Coords: c, CellData: CellData{Owner: p, Price: price}}
	}
	return out
}
