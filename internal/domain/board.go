package domain

import (
	"github.com/pkg/errors"
)

var ErrOccupied = errors.New("coordinate is already occupied")

// Board is an append-only set of stones, one per coordinate.
type Board struct {
	stones map[Coordinate]GoStone
	order  []GoStone
}

func NewBoard() *Board {
	return &Board{
		stones: make(map[Coordinate]GoStone),
	}
}

func (b *Board) Place(stone GoStone) error {
	c := stone.Coordinate()
	if !c.InRange(BoardSize, BoardSize) {
		return errors.WithMessagef(ErrOutOfRange, "place stone at %s", c)
	}
	if _, ok := b.stones[c]; ok {
		return errors.WithMessagef(ErrOccupied, "place stone at %s", c)
	}
	b.stones[c] = stone
	b.order = append(b.order, stone)
	return nil
}

func (b *Board) StoneAt(c Coordinate) (GoStone, bool) {
	stone, ok := b.stones[c]
	return stone, ok
}

func (b *Board) IsEmpty(c Coordinate) bool {
	_, ok := b.stones[c]
	return !ok
}

func (b *Board) StonesOfColor(color Color) []GoStone {
	var result []GoStone
	for _, stone := range b.order {
		if stone.Color() == color {
			result = append(result, stone)
		}
	}
	return result
}

// Stones returns the stones in placement order.
func (b *Board) Stones() []GoStone {
	result := make([]GoStone, len(b.order))
	copy(result, b.order)
	return result
}

func (b *Board) Len() int {
	return len(b.order)
}

func (b *Board) Clone() *Board {
	clone := NewBoard()
	for _, stone := range b.order {
		clone.stones[stone.Coordinate()] = stone
		clone.order = append(clone.order, stone)
	}
	return clone
}
