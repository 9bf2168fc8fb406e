package domain

import (
	"github.com/pkg/errors"
)

// MoveRecord is the persisted form of a placed stone. Records are replayed in
// the order they were stored.
type MoveRecord struct {
	Color      Color
	BoardIndex int
	X          int
	Y          int
}

func RecordOf(stone GoStone) MoveRecord {
	c := stone.Coordinate()
	return MoveRecord{
		Color:      stone.Color(),
		BoardIndex: c.BoardIndex(),
		X:          c.X(),
		Y:          c.Y(),
	}
}

func (r MoveRecord) Stone() (GoStone, error) {
	if r.Color != Black && r.Color != White {
		return GoStone{}, errors.WithMessagef(ErrUnknownColor, "record color %d", r.Color)
	}
	c, err := NewCoordinate(r.X, r.Y)
	if err != nil {
		return GoStone{}, errors.WithMessage(err, "record coordinate")
	}
	return NewGoStone(r.Color, c), nil
}
