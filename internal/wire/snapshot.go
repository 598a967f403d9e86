package wire

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/docombos/docombos/apps/go-server/internal/game"
)

// Snapshot frame layout, all big-endian:
//
//	float32 cash, float32 cooldown
//	MaxPlayers x (int32 player, int32 score)
//	CellCount  x (int32 owner, int32 price, byte isLocal, byte locked)  row-major
const (
	headerSize   = 4 + 4
	scoreSize    = 4 + 4
	cellSize     = 4 + 4 + 1 + 1
	SnapshotSize = headerSize + game.MaxPlayers*scoreSize + game.CellCount*cellSize
)

// EncodeSnapshot renders s into a SnapshotSize byte frame.
func EncodeSnapshot(s game.Snapshot) []byte {
	buf := make([]byte, 0, SnapshotSize)
	buf = binary.BigEndian.AppendUint32(buf, math.Float32bits(float32(s.Cash)))
	buf = binary.BigEndian.AppendUint32(buf, math.Float32bits(float32(s.Cooldown)))
	for _, ps := range s.Scores {
		buf = binary.BigEndian.AppendUint32(buf, uint32(int32(ps.Player)))
		buf = binary.BigEndian.AppendUint32(buf, uint32(int32(ps.Score)))
	}
	for _, c := range s.Cells {
		buf = binary.BigEndian.AppendUint32(buf, uint32(int32(c.Owner)))
		buf = binary.BigEndian.AppendUint32(buf, uint32(int32(c.Price)))
		buf = append(buf, boolByte(c.IsLocal), boolByte(c.Locked))
	}
	return buf
}

// DecodeSnapshot parses a frame produced by EncodeSnapshot.
func DecodeSnapshot(data []byte) (game.Snapshot, error) {
	var s game.Snapshot
	if len(data) != SnapshotSize {
		return s, fmt.Errorf("%w: snapshot is %d bytes, want %d", ErrMalformed, len(data), SnapshotSize)
	}
	be := binary.BigEndian
	off := 0
	u32 := func() uint32 {
		v := be.Uint32(data[off:])
		off += 4
		return v
	}
	i32 := func() int { return int(int32(u32())) }

	s.Cash = float64(math.Float32frombits(u32()))
	s.Cooldown = float64(math.Float32frombits(u32()))
	for i := range s.Scores {
		s.Scores[i].Player = game.PlayerID(i32())
		s.Scores[i].Score = i32()
	}
	for i := range s.Cells {
		c := &s.Cells[i]
		c.Owner = game.PlayerID(i32())
		c.Price = i32()
		c.IsLocal = data[off] != 0
		c.Locked = data[off+1] != 0
		off += 2
		if c.Owner < game.NoOwner || c.Price < 0 || (!c.Owned() && *c != game.EmptyCell) {
			return s, fmt.Errorf("%w: cell %s holds %+v", ErrMalformed, game.FromIndex(i), *c)
		}
	}
	return s, nil
}

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}
