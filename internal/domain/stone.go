package domain

import (
	"strings"

	"github.com/pkg/errors"
)

var ErrUnknownColor = errors.New("unknown stone color")

type Color byte

const (
	NoColor = Color(iota)
	Black
	White
)

func ParseColor(s string) (Color, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "BLACK", "B":
		return Black, nil
	case "WHITE", "W":
		return White, nil
	default:
		return NoColor, errors.WithMessagef(ErrUnknownColor, "%q", s)
	}
}

// ColorFromNumber decodes the persisted color number (BLACK=1, WHITE=2).
func ColorFromNumber(n int) (Color, error) {
	c := Color(n)
	if c != Black && c != White {
		return NoColor, errors.WithMessagef(ErrUnknownColor, "number %d", n)
	}
	return c, nil
}

func (c Color) Number() int {
	return int(c)
}

func (c Color) Next() Color {
	switch c {
	case Black:
		return White
	case White:
		return Black
	default:
		return NoColor
	}
}

func (c Color) String() string {
	switch c {
	case Black:
		return "BLACK"
	case White:
		return "WHITE"
	default:
		return "NONE"
	}
}

func (c Color) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c *Color) UnmarshalText(text []byte) error {
	v, err := ParseColor(string(text))
	if err != nil {
		return err
	}
	*c = v
	return nil
}

type GoStone struct {
	color      Color
	coordinate Coordinate
}

func NewGoStone(color Color, coordinate Coordinate) GoStone {
	return GoStone{color: color, coordinate: coordinate}
}

func (s GoStone) Color() Color {
	return s.color
}

func (s GoStone) Coordinate() Coordinate {
	return s.coordinate
}

func (s GoStone) String() string {
	if s == (GoStone{}) {
		return NoColor.String()
	}
	return s.color.String() + "@" + s.coordinate.String()
}
