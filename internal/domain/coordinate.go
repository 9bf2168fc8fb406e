package domain

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/pkg/errors"
	"golang.org/x/text/width"
)

const BoardSize = 15

var (
	ErrOutOfRange    = errors.New("coordinate is out of range")
	ErrInvalidFormat = errors.New("invalid coordinate format")
)

// Coordinate is a 1-based (x, y) position, x counting columns from the left
// and y counting rows from the bottom.
type Coordinate struct {
	x int
	y int
}

func NewCoordinate(x, y int) (Coordinate, error) {
	c := Coordinate{x: x, y: y}
	if !c.InRange(BoardSize, BoardSize) {
		return Coordinate{}, errors.WithMessagef(ErrOutOfRange, "(%d, %d) is outside 1..%d", x, y, BoardSize)
	}
	return c, nil
}

// ParseCoordinate accepts "3,7", "3 7", "3，7" or the column-letter form "C7".
// Full-width digits and letters ("３，７", "Ｃ７") are folded to ASCII first.
func ParseCoordinate(text string) (Coordinate, error) {
	text = strings.TrimSpace(width.Narrow.String(text))
	if text == "" {
		return Coordinate{}, errors.WithMessage(ErrInvalidFormat, "empty input")
	}
	r, w := utf8.DecodeRuneInString(text)
	if unicode.IsLetter(r) {
		return parseLetterCoordinate(unicode.ToUpper(r), text[w:])
	}
	fields := strings.FieldsFunc(text, isCoordinateSeparator)
	if len(fields) != 2 {
		return Coordinate{}, errors.WithMessagef(ErrInvalidFormat, "%q", text)
	}
	x, err := strconv.Atoi(fields[0])
	if err != nil {
		return Coordinate{}, errors.WithMessagef(ErrInvalidFormat, "%q", text)
	}
	y, err := strconv.Atoi(fields[1])
	if err != nil {
		return Coordinate{}, errors.WithMessagef(ErrInvalidFormat, "%q", text)
	}
	return NewCoordinate(x, y)
}

func parseLetterCoordinate(col rune, rest string) (Coordinate, error) {
	if col < 'A' || col > 'Z' {
		return Coordinate{}, errors.WithMessagef(ErrInvalidFormat, "unknown column %q", col)
	}
	y, err := strconv.Atoi(strings.TrimSpace(rest))
	if err != nil {
		return Coordinate{}, errors.WithMessagef(ErrInvalidFormat, "%c%s", col, rest)
	}
	return NewCoordinate(int(col-'A')+1, y)
}

// Narrowing turns '、' into the halfwidth '､'.
func isCoordinateSeparator(r rune) bool {
	return r == ',' || r == '､' || r == '、' || unicode.IsSpace(r)
}

// CoordinateFromIndex maps a row-major index of the rendered grid (index 0
// is the top-left cell) back to a coordinate.
func CoordinateFromIndex(index int) (Coordinate, error) {
	if index < 0 || index >= BoardSize*BoardSize {
		return Coordinate{}, errors.WithMessagef(ErrOutOfRange, "board index %d", index)
	}
	return NewCoordinate(index%BoardSize+1, BoardSize-index/BoardSize)
}

func (c Coordinate) X() int {
	return c.x
}

func (c Coordinate) Y() int {
	return c.y
}

// Move does not range-check the result; callers walking lines must check
// InRange before using it.
func (c Coordinate) Move(dx, dy int) Coordinate {
	return Coordinate{x: c.x + dx, y: c.y + dy}
}

func (c Coordinate) InRange(xBound, yBound int) bool {
	return c.x >= 1 && c.x <= xBound && c.y >= 1 && c.y <= yBound
}

func (c Coordinate) BoardIndex() int {
	return (BoardSize-c.y)*BoardSize + c.x - 1
}

func (c Coordinate) String() string {
	if !c.InRange(BoardSize, BoardSize) {
		return fmt.Sprintf("(%d,%d)", c.x, c.y)
	}
	return fmt.Sprintf("%c%d", 'A'+rune(c.x-1), c.y)
}
