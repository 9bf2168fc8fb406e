package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/kiryu-dev/omok/internal/adapters/storage"
	"github.com/kiryu-dev/omok/internal/config"
	"github.com/kiryu-dev/omok/internal/domain"
	"github.com/kiryu-dev/omok/internal/omok"
	"github.com/kiryu-dev/omok/internal/rule"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const localGameUuid = "local"

var errInputClosed = errors.New("input closed")

func main() {
	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	defer func() {
		_ = logger.Sync()
	}()
	dsn := flag.String("db", "omok-local.db", "sqlite database the unfinished game is kept in")
	restricted := flag.String("restricted", "black", "color forbidden moves apply to: black, white or none")
	flag.Parse()

	color, err := config.RuleConfig{Restricted: *restricted}.RestrictedColor()
	if err != nil {
		logger.Fatal("invalid restricted color", zap.Error(err))
	}
	repo, err := storage.New(config.SqliteDriver, *dsn)
	if err != nil {
		logger.Fatal("failed to open move storage", zap.Error(err))
	}
	defer func() {
		_ = repo.Close()
	}()

	s := &session{
		repo:    repo,
		engine:  rule.New(color),
		scanner: bufio.NewScanner(os.Stdin),
		logger:  logger,
	}
	if err := s.run(context.Background()); err != nil && !errors.Is(err, errInputClosed) {
		logger.Fatal("game failed", zap.Error(err))
	}
}

type session struct {
	repo    domain.MoveRepository
	engine  rule.Engine
	scanner *bufio.Scanner
	logger  *zap.Logger
}

// run plays games until the players decline a rematch. An unfinished game
// left in storage is resumed first.
func (s *session) run(ctx context.Context) error {
	for {
		game, err := s.restore(ctx)
		if err != nil {
			return errors.WithMessage(err, "restore game")
		}
		if err := s.play(ctx, game); err != nil {
			return err
		}
		if err := s.repo.Clear(ctx, localGameUuid); err != nil {
			s.logger.Warn("failed to clear finished game", zap.Error(err))
		}
		again, err := s.ask("Play again? (y/n): ")
		if err != nil {
			return err
		}
		if !again {
			return nil
		}
	}
}

func (s *session) restore(ctx context.Context) (*omok.Game, error) {
	game := omok.New(domain.NewBoard(), omok.WithRule(s.engine))
	records, err := s.repo.Moves(ctx, localGameUuid)
	if err != nil {
		return nil, err
	}
	if len(records) > 0 {
		fmt.Printf("Resuming the unfinished game (%d moves).\n", len(records))
		if err := game.Replay(records); err != nil {
			return nil, err
		}
		return game, nil
	}
	err = s.repo.CreateGame(ctx, localGameUuid, domain.GameState{
		PlayerBlack: domain.Black.String(),
		PlayerWhite: domain.White.String(),
		Status:      domain.InProgress,
	})
	if err != nil {
		return nil, err
	}
	return game, nil
}

func (s *session) play(ctx context.Context, game *omok.Game) error {
	for !game.IsTerminal() {
		printBoard(game.Board())
		if game.Restricted() != domain.NoColor {
			fmt.Printf("Forbidden moves apply to %s.\n", game.Restricted())
		}
		stone, err := game.Turn(s.readCoordinate(game.CurrentColor()))
		switch {
		case errors.Is(err, domain.ErrOccupied):
			fmt.Println(err.Error())
			continue
		case err != nil:
			return errors.WithMessage(err, "turn")
		}
		verdict := game.Judge(stone)
		seq := game.Board().Len() - 1
		if err := s.repo.Insert(ctx, localGameUuid, seq, domain.RecordOf(stone)); err != nil {
			s.logger.Warn("failed to record move", zap.Int("seq", seq), zap.Error(err))
		}
		if verdict.IsTerminal() {
			printBoard(game.Board())
			fmt.Println(describe(stone, verdict))
		}
	}
	return nil
}

// readCoordinate prompts until the input parses to a coordinate on the board.
func (s *session) readCoordinate(color domain.Color) omok.CoordinateSupplier {
	return func() (domain.Coordinate, error) {
		for {
			fmt.Printf("%s to move, e.g. 8,8 or H8: ", color)
			line, err := s.readLine()
			if err != nil {
				return domain.Coordinate{}, err
			}
			coordinate, err := domain.ParseCoordinate(line)
			if err == nil {
				return coordinate, nil
			}
			fmt.Println(err.Error())
		}
	}
}

func (s *session) ask(prompt string) (bool, error) {
	for {
		fmt.Print(prompt)
		line, err := s.readLine()
		if err != nil {
			return false, err
		}
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		}
	}
}

func (s *session) readLine() (string, error) {
	if ok := s.scanner.Scan(); !ok {
		if err := s.scanner.Err(); err != nil {
			return "", err
		}
		return "", errInputClosed
	}
	return s.scanner.Text(), nil
}

func describe(stone domain.GoStone, verdict domain.Verdict) string {
	if verdict == domain.Win {
		return fmt.Sprintf("%s wins with %s!", stone.Color(), stone.Coordinate())
	}
	return fmt.Sprintf("%s at %s is a forbidden move (%s). %s wins!",
		stone.Color(), stone.Coordinate(), verdict, stone.Color().Next())
}

func printBoard(board *domain.Board) {
	fmt.Printf("\033[H\033[J")
	for y := domain.BoardSize; y >= 1; y-- {
		fmt.Printf("%2d ", y)
		for x := 1; x <= domain.BoardSize; x++ {
			symbol := '+'
			c, err := domain.NewCoordinate(x, y)
			if err != nil {
				continue
			}
			if stone, ok := board.StoneAt(c); ok {
				symbol = '○'
				if stone.Color() == domain.Black {
					symbol = '●'
				}
			}
			fmt.Printf("%c ", symbol)
		}
		fmt.Println()
	}
	fmt.Print("   ")
	for x := 0; x < domain.BoardSize; x++ {
		fmt.Printf("%c ", 'A'+x)
	}
	fmt.Println()
}
