// Package rule judges a just-placed stone against the board.
//
// Verdict precedence when several conditions hold for one move:
//
//	WIN > OVERLINE > DOUBLE_FOUR > DOUBLE_THREE > STAY
//
// A genuine five therefore wins even if the same move also completes a
// forbidden shape on another line. For the restricted color a five means
// exactly five stones; six or more is an overline, never a win.
package rule

import (
	"github.com/kiryu-dev/omok/internal/domain"
)

// maxDepth bounds the check that the point completing an open three is not
// itself forbidden.
const maxDepth = 2

type StoneView interface {
	StoneAt(c domain.Coordinate) (domain.GoStone, bool)
}

type Engine struct {
	restricted domain.Color
}

// New returns an engine applying forbidden-move rules to the restricted
// color. domain.NoColor disables them.
func New(restricted domain.Color) Engine {
	return Engine{restricted: restricted}
}

func Default() Engine {
	return New(domain.Black)
}

func (e Engine) Restricted() domain.Color {
	return e.restricted
}

// Judge expects the view to already contain stone.
func (e Engine) Judge(view StoneView, stone domain.GoStone) domain.Verdict {
	pivot, color := stone.Coordinate(), stone.Color()
	lines := linesThrough(view, pivot, color)
	restricted := color == e.restricted
	for _, l := range lines {
		if l.isFive(restricted) {
			return domain.Win
		}
	}
	if !restricted {
		return domain.Stay
	}
	return e.forbidden(view, pivot, color, lines, maxDepth)
}

func (e Engine) forbidden(view StoneView, pivot domain.Coordinate, color domain.Color,
	lines [4]line, depth int) domain.Verdict {
	for _, l := range lines {
		if l.run() >= 6 {
			return domain.Overline
		}
	}
	fours := 0
	for _, l := range lines {
		fours += l.fours(true)
	}
	if fours >= 2 {
		return domain.DoubleFour
	}
	threes := 0
	for i, l := range lines {
		if l.fours(true) > 0 {
			continue
		}
		if e.hasOpenThree(view, pivot, color, l, directions[i], depth) {
			threes++
		}
	}
	if threes >= 2 {
		return domain.DoubleThree
	}
	return domain.Stay
}

// hasOpenThree reports whether one more stone on the line makes a straight
// four through the pivot at a point that is not itself forbidden.
func (e Engine) hasOpenThree(view StoneView, pivot domain.Coordinate, color domain.Color,
	l line, dir direction, depth int) bool {
	for i := reach - 4; i <= reach+4; i++ {
		if l[i] != empty {
			continue
		}
		next := l
		next[i] = own
		if next.run() >= 5 || !next.isOpenFour(true) {
			continue
		}
		offset := i - reach
		target := pivot.Move(offset*dir.dx, offset*dir.dy)
		if depth > 0 && e.isForbiddenAt(view, target, color, depth-1) {
			continue
		}
		return true
	}
	return false
}

func (e Engine) isForbiddenAt(view StoneView, c domain.Coordinate, color domain.Color, depth int) bool {
	v := overlay{base: view, stone: domain.NewGoStone(color, c)}
	lines := linesThrough(v, c, color)
	for _, l := range lines {
		if l.isFive(true) {
			return false
		}
	}
	return e.forbidden(v, c, color, lines, depth).IsForbidden()
}

func linesThrough(view StoneView, pivot domain.Coordinate, color domain.Color) [4]line {
	var lines [4]line
	for i, dir := range directions {
		lines[i] = lineThrough(view, pivot, color, dir)
	}
	return lines
}

// overlay adds one hypothetical stone on top of a view without touching it.
type overlay struct {
	base  StoneView
	stone domain.GoStone
}

func (o overlay) StoneAt(c domain.Coordinate) (domain.GoStone, bool) {
	if c == o.stone.Coordinate() {
		return o.stone, true
	}
	return o.base.StoneAt(c)
}
