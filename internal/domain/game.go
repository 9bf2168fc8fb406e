package domain

import (
	"context"
)

type status byte

const (
	ReadyToStart = status(iota)
	InProgress
	Finished
)

// GameState is the serializable snapshot of a game, used for persistence
// and for syncing peers.
type GameState struct {
	PlayerBlack string
	PlayerWhite string
	Moves       []MoveRecord
	Status      status
}

// Match is a live game shared by both player loops.
type Match interface {
	Play(c Coordinate, color Color) (GoStone, Verdict, error)
	CurrentColor() Color
	Restricted() Color
	Snapshot() GameState
	Abort()
}

type GameUseCase interface {
	Play(ctx context.Context, player Player, match Match) error
}

type MoveRepository interface {
	CreateGame(ctx context.Context, gameUuid string, state GameState) error
	Insert(ctx context.Context, gameUuid string, seq int, record MoveRecord) error
	Moves(ctx context.Context, gameUuid string) ([]MoveRecord, error)
	ActiveGames(ctx context.Context) (map[string]*GameState, error)
	Clear(ctx context.Context, gameUuid string) error
	Close() error
}
