package rule

import (
	"github.com/kiryu-dev/omok/internal/domain"
)

type cell byte

const (
	empty = cell(iota)
	own
	blocked
)

// reach is how far a line extends on each side of the pivot. Six cells is
// enough to tell an exact five from an overline after one hypothetical stone
// is added four cells away.
const reach = 6

type line [2*reach + 1]cell

type direction struct {
	dx, dy int
}

var directions = [4]direction{
	{dx: 1, dy: 0},
	{dx: 0, dy: 1},
	{dx: 1, dy: 1},
	{dx: 1, dy: -1},
}

func lineThrough(view StoneView, pivot domain.Coordinate, color domain.Color, dir direction) line {
	var l line
	for i := -reach; i <= reach; i++ {
		l[reach+i] = cellAt(view, pivot.Move(i*dir.dx, i*dir.dy), color)
	}
	l[reach] = own
	return l
}

func cellAt(view StoneView, c domain.Coordinate, color domain.Color) cell {
	if !c.InRange(domain.BoardSize, domain.BoardSize) {
		return blocked
	}
	stone, ok := view.StoneAt(c)
	switch {
	case !ok:
		return empty
	case stone.Color() == color:
		return own
	default:
		return blocked
	}
}

// run counts the contiguous own cells through the pivot.
func (l line) run() int {
	n := 1
	for i := reach - 1; i >= 0 && l[i] == own; i-- {
		n++
	}
	for i := reach + 1; i < len(l) && l[i] == own; i++ {
		n++
	}
	return n
}

func (l line) isFive(exact bool) bool {
	n := l.run()
	if exact {
		return n == 5
	}
	return n >= 5
}

// completions lists the empty cells that would turn the line into a five
// containing the pivot.
func (l line) completions(exact bool) []int {
	var result []int
	for i := reach - 4; i <= reach+4; i++ {
		if l[i] != empty {
			continue
		}
		l[i] = own
		if l.isFive(exact) {
			result = append(result, i)
		}
		l[i] = empty
	}
	return result
}

// fours counts the fours on the line. An open four has two completions with
// four stones between them and counts once; split shapes such as X.XXX.X
// hold two fours on a single line.
func (l line) fours(exact bool) int {
	points := l.completions(exact)
	if len(points) == 2 && points[1]-points[0] == 5 {
		return 1
	}
	return len(points)
}

func (l line) isOpenFour(exact bool) bool {
	points := l.completions(exact)
	return len(points) == 2 && points[1]-points[0] == 5
}
