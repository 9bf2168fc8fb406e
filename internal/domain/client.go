package domain

import (
	"github.com/pkg/errors"
)

var (
	ErrConnectionClosed = errors.New("connection closed")
	ErrEmptyMessage     = errors.New("empty message")
)

const (
	ClientUuidHeader = "X-Client-Key"
)

type messageType byte

const (
	StartGame = messageType(iota)
	RequestMove
	PlayerMove
	Walkover
	SwitchServer
)

type Message struct {
	Type    messageType
	Payload any
}

type StartGamePayload struct {
	Color      Color
	Restricted Color
	Moves      []MoveRecord
}

type RequestMovePayload struct {
	Reason string
}

type PlayerMovePayload struct {
	Color           Color
	X               int
	Y               int
	Verdict         Verdict
	IsMoveRequested bool
	GameResult      *string
}

type WalkoverPayload struct {
	GameResult string
}

type SwitchServerPayload struct {
	MasterServer string
}

type PlayerMovePayloadOption func(p *PlayerMovePayload)

func RequestMoveBack() PlayerMovePayloadOption {
	return func(p *PlayerMovePayload) {
		p.IsMoveRequested = true
	}
}

func WithGameResult(gameResultMsg string) PlayerMovePayloadOption {
	return func(p *PlayerMovePayload) {
		p.GameResult = &gameResultMsg
	}
}

func WithStone(stone GoStone) PlayerMovePayloadOption {
	return func(p *PlayerMovePayload) {
		p.Color = stone.Color()
		p.X = stone.Coordinate().X()
		p.Y = stone.Coordinate().Y()
	}
}

func WithVerdict(verdict Verdict) PlayerMovePayloadOption {
	return func(p *PlayerMovePayload) {
		p.Verdict = verdict
	}
}

type Client interface {
	WriteMessage(msg Message) error
	ReadMessage() (Message, error)
	Uuid() string
}
