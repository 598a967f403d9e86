package game

import (
	"errors"
	"fmt"
)

// Precondition failures wrap ErrRejected. They leave state untouched and the
// caller is expected to resync the actor. The remaining errors flag malformed
// input that a well-behaved transport should never let through.
var (
	ErrRejected      = errors.New("game: action rejected")
	ErrOutOfRange    = errors.New("game: coordinates out of range")
	ErrUnknownPlayer = errors.New("game: unknown player")
	ErrNotACombo     = errors.New("game: cells do not form a combo")
	ErrPlayerExists  = errors.New("game: player already registered")
	ErrRoomFull      = errors.New("game: room is full")
	ErrBadCell       = errors.New("game: invalid cell data")
)

func reject(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrRejected, fmt.Sprintf(format, args...))
}
