package wire

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/docombos/docombos/apps/go-server/internal/game"
)

// ErrMalformed is returned for frames that cannot become a Request.
var ErrMalformed = errors.New("wire: malformed request")

// Request is a validated client request. Which fields are set depends on
// Type: Cell for claim/raise/open, Price for claim/raise, Cells for fix,
// A and B for swap. For raise, Price is the amount to add.
type Request struct {
	Type  Type
	Cell  game.Coordinates
	Price int
	Cells []game.Coordinates
	A, B  game.Coordinates
}

type cellBody struct {
	X     *int `json:"x"`
	Y     *int `json:"y"`
	Price int  `json:"price"`
}

type fixBody struct {
	Cells []game.Coordinates `json:"cells"`
}

type swapBody struct {
	A *game.Coordinates `json:"a"`
	B *game.Coordinates `json:"b"`
}

// Decode parses and validates one client frame.
func Decode(data []byte) (Request, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Request{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	req := Request{Type: env.Type}
	switch env.Type {
	case TypeReady:
		return req, nil

	case TypeClaim, TypeRaise, TypeOpen:
		var b cellBody
		if err := unmarshalPayload(env.Payload, &b); err != nil {
			return Request{}, err
		}
		if b.X == nil || b.Y == nil {
			return Request{}, fmt.Errorf("%w: %s needs x and y", ErrMalformed, env.Type)
		}
		req.Cell = game.At(*b.X, *b.Y)
		if env.Type != TypeOpen {
			req.Price = b.Price
		}
		return req, checkCells(req.Cell)

	case TypeFix:
		var b fixBody
		if err := unmarshalPayload(env.Payload, &b); err != nil {
			return Request{}, err
		}
		if len(b.Cells) < game.MinComboCells || len(b.Cells) > game.BoardSize {
			return Request{}, fmt.Errorf("%w: fix needs %d to %d cells, got %d",
				ErrMalformed, game.MinComboCells, game.BoardSize, len(b.Cells))
		}
		req.Cells = b.Cells
		return req, checkCells(b.Cells...)

	case TypeSwap:
		var b swapBody
		if err := unmarshalPayload(env.Payload, &b); err != nil {
			return Request{}, err
		}
		if b.A == nil || b.B == nil {
			return Request{}, fmt.Errorf("%w: swap needs a and b", ErrMalformed)
		}
		req.A, req.B = *b.A, *b.B
		return req, checkCells(req.A, req.B)
	}
	return Request{}, fmt.Errorf("%w: unknown type %q", ErrMalformed, env.Type)
}

func unmarshalPayload(raw json.RawMessage, v any) error {
	if len(raw) == 0 {
		return fmt.Errorf("%w: missing payload", ErrMalformed)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return nil
}

func checkCells(cs ...game.Coordinates) error {
	for _, c := range cs {
		if !c.Valid() {
			return fmt.Errorf("%w: %s is off the board", ErrMalformed, c)
		}
	}
	return nil
}
