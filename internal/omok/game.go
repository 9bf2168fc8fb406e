package omok

import (
	"github.com/kiryu-dev/omok/internal/domain"
	"github.com/kiryu-dev/omok/internal/rule"
	"github.com/pkg/errors"
)

var ErrGameOver = errors.New("game is over")

// CoordinateSupplier yields the next move location. It is invoked once per
// Turn call.
type CoordinateSupplier func() (domain.Coordinate, error)

type Option func(g *Game)

func WithRule(engine rule.Engine) Option {
	return func(g *Game) {
		g.rule = engine
	}
}

// Game drives turn order for one session. It is not safe for concurrent use.
type Game struct {
	board   *domain.Board
	rule    rule.Engine
	current domain.Color
	winner  domain.Color
	verdict domain.Verdict
	over    bool
}

func New(board *domain.Board, opts ...Option) *Game {
	if board == nil {
		board = domain.NewBoard()
	}
	g := &Game{
		board:   board,
		rule:    rule.Default(),
		current: domain.Black,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Turn places a stone of the current color at the supplied coordinate. The
// color only changes once Judge reports STAY.
func (g *Game) Turn(next CoordinateSupplier) (domain.GoStone, error) {
	if g.over {
		return domain.GoStone{}, ErrGameOver
	}
	c, err := next()
	if err != nil {
		return domain.GoStone{}, errors.WithMessage(err, "supply coordinate")
	}
	stone := domain.NewGoStone(g.current, c)
	if err := g.board.Place(stone); err != nil {
		return domain.GoStone{}, err
	}
	return stone, nil
}

// Judge evaluates a placed stone. Any verdict other than STAY ends the game:
// WIN goes to the stone's color, a forbidden move to the opponent.
func (g *Game) Judge(stone domain.GoStone) domain.Verdict {
	verdict := g.rule.Judge(g.board, stone)
	g.verdict = verdict
	switch {
	case verdict == domain.Win:
		g.finish(stone.Color())
	case verdict.IsForbidden():
		g.finish(stone.Color().Next())
	default:
		g.current = stone.Color().Next()
	}
	return verdict
}

// AddStoneDirect places a stone without judging it. The next color follows
// the replayed stone, so records must be replayed in their original order.
func (g *Game) AddStoneDirect(stone domain.GoStone) error {
	if err := g.board.Place(stone); err != nil {
		return errors.WithMessage(err, "add stone")
	}
	g.current = stone.Color().Next()
	return nil
}

func (g *Game) Replay(records []domain.MoveRecord) error {
	for i, record := range records {
		stone, err := record.Stone()
		if err != nil {
			return errors.WithMessagef(err, "decode record #%d", i)
		}
		if err := g.AddStoneDirect(stone); err != nil {
			return errors.WithMessagef(err, "replay record #%d", i)
		}
	}
	return nil
}

func (g *Game) finish(winner domain.Color) {
	g.over = true
	g.winner = winner
}

func (g *Game) Board() *domain.Board {
	return g.board
}

func (g *Game) CurrentColor() domain.Color {
	return g.current
}

func (g *Game) IsTerminal() bool {
	return g.over
}

// Winner is domain.NoColor while the game is in progress.
func (g *Game) Winner() domain.Color {
	return g.winner
}

func (g *Game) LastVerdict() domain.Verdict {
	return g.verdict
}

func (g *Game) Restricted() domain.Color {
	return g.rule.Restricted()
}
