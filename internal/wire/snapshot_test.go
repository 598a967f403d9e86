package wire

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docombos/docombos/apps/go-server/internal/game"
)

func TestSnapshotFrame(t *testing.T) {
	r := game.DefaultRules()
	r.StartCash = 6
	g := game.New(r)
	require.NoError(t, g.AddPlayer(1, true, "alice"))
	require.NoError(t, g.AddPlayer(2, false, "bob"))
	_, err := g.Claim(game.At(3, 1), 2, 4)
	require.NoError(t, err)

	snap, err := g.Snapshot(1)
	require.NoError(t, err)

	frame := EncodeSnapshot(snap)
	require.Len(t, frame, SnapshotSize)
	assert.Equal(t, 384, SnapshotSize)

	got, err := DecodeSnapshot(frame)
	require.NoError(t, err)
	assert.Equal(t, snap, got)

	// row-major: cell (3,1) sits at index 9
	off := headerSize + game.MaxPlayers*scoreSize + 9*cellSize
	assert.Equal(t, []byte{0, 0, 0, 2, 0, 0, 0, 4, 0, 0}, frame[off:off+cellSize])
}

func TestDecodeSnapshot_BadLength(t *testing.T) {
	_, err := DecodeSnapshot(make([]byte, SnapshotSize-1))
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestSync(t *testing.T) {
	var s game.Snapshot
	m := Sync(s)
	assert.True(t, m.IsBinary())
	b, err := Encode(m)
	require.NoError(t, err)
	assert.Len(t, b, SnapshotSize)
}

func TestDecodeSnapshot_BadCell(t *testing.T) {
	g := game.New(game.DefaultRules())
	require.NoError(t, g.AddPlayer(1, true, "alice"))
	snap, err := g.Snapshot(1)
	require.NoError(t, err)

	for name, bad := range map[string]game.CellData{
		"unowned with price": {Owner: game.NoOwner, Price: 5},
		"unowned and locked": {Owner: game.NoOwner, Locked: true},
		"negative price":     {Owner: 1, Price: -2},
		"owner below none":   {Owner: -7, Price: 1},
	} {
		s := snap
		s.Cells[4] = bad
		_, err := DecodeSnapshot(EncodeSnapshot(s))
		assert.ErrorIs(t, err, ErrMalformed, name)
	}
}
