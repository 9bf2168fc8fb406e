package game

import (
	"context"

	"github.com/kiryu-dev/omok/internal/domain"
	"github.com/kiryu-dev/omok/pkg/utils"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

type useCase struct {
	logger *zap.Logger
}

func New(logger *zap.Logger) useCase {
	return useCase{
		logger: logger,
	}
}

// Play runs one side of a match. The two sides take turns by handing moves
// to each other through the player's channel, so a match is only ever
// driven by one loop at a time.
func (u useCase) Play(ctx context.Context, player domain.Player, match domain.Match) error {
	if err := startGame(player, match); err != nil {
		return errors.WithMessage(err, "start game")
	}
	if player.Color() != match.CurrentColor() {
		if !player.MakeMove(domain.Move{Status: domain.NoneMove}) {
			return sendWalkover(player)
		}
	}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-player.Aborted():
			return sendWalkover(player)
		case v := <-player.GetEnemyMove():
			switch v.Status {
			case domain.NoneMove:
				if err := player.SendMessage(domain.Message{Type: domain.RequestMove}); err != nil {
					return errors.WithMessage(err, "send message to player")
				}
			case domain.Placed:
				err := sendMoveMessage(player, domain.WithStone(v.Stone), domain.WithVerdict(v.Verdict),
					domain.RequestMoveBack())
				if err != nil {
					return errors.WithMessage(err, "send move message")
				}
			case domain.Disconnect:
				return sendWalkover(player)
			case domain.Ended:
				gameResult, err := toGameResult(v.Stone, v.Verdict)
				if err != nil {
					return errors.WithMessage(err, "to game result")
				}
				err = sendMoveMessage(player, domain.WithStone(v.Stone), domain.WithVerdict(v.Verdict),
					domain.WithGameResult(gameResult))
				if err != nil {
					return errors.WithMessage(err, "send move message")
				}
				return nil
			default:
				return errors.WithMessagef(errUnexpectedMoveStatus, "status %d", v.Status)
			}
			stone, verdict, err := u.receiveMove(player, match)
			switch {
			case errors.Is(err, domain.ErrConnectionClosed):
				player.MakeMove(domain.Move{Status: domain.Disconnect})
				return nil
			case err != nil:
				return errors.WithMessage(err, "receive move")
			}
			status := domain.Placed
			if verdict.IsTerminal() {
				status = domain.Ended
			}
			player.MakeMove(domain.Move{Stone: stone, Verdict: verdict, Status: status})
			if status == domain.Placed {
				if err := sendMoveMessage(player, domain.WithStone(stone), domain.WithVerdict(verdict)); err != nil {
					return errors.WithMessage(err, "send move message")
				}
				continue
			}
			gameResult, err := toGameResult(stone, verdict)
			if err != nil {
				return errors.WithMessage(err, "to game result")
			}
			err = sendMoveMessage(player, domain.WithStone(stone), domain.WithVerdict(verdict),
				domain.WithGameResult(gameResult))
			if err != nil {
				return errors.WithMessage(err, "send move message")
			}
			return nil
		}
	}
}

func startGame(player domain.Player, match domain.Match) error {
	err := player.SendMessage(domain.Message{
		Type: domain.StartGame,
		Payload: domain.StartGamePayload{
			Color:      player.Color(),
			Restricted: match.Restricted(),
			Moves:      match.Snapshot().Moves,
		},
	})
	if err != nil {
		return errors.WithMessage(err, "send message to player")
	}
	return nil
}

func sendWalkover(player domain.Player) error {
	err := player.SendMessage(domain.Message{
		Type:    domain.Walkover,
		Payload: domain.WalkoverPayload{GameResult: WalkoverGameResult},
	})
	if err != nil {
		return errors.WithMessage(err, "send message to player")
	}
	return nil
}

func sendMoveMessage(player domain.Player, opts ...domain.PlayerMovePayloadOption) error {
	payload := &domain.PlayerMovePayload{
		Color: player.Color(),
	}
	for _, opt := range opts {
		opt(payload)
	}
	err := player.SendMessage(domain.Message{
		Type:    domain.PlayerMove,
		Payload: payload,
	})
	if err != nil {
		return errors.WithMessage(err, "send message to player")
	}
	return nil
}

// receiveMove keeps asking the player until the move is accepted by the
// match. Malformed, out of range and occupied coordinates are re-requested.
func (u useCase) receiveMove(player domain.Player, match domain.Match) (domain.GoStone, domain.Verdict, error) {
	for {
		msg, err := player.ReceiveMessage()
		if err != nil {
			return domain.GoStone{}, domain.Stay, errors.WithMessage(err, "read message from player")
		}
		if msg.Type != domain.PlayerMove {
			return domain.GoStone{}, domain.Stay, errors.WithMessagef(errUnexpectedMessageType, "type %d", msg.Type)
		}
		move, err := utils.DecodePayload[domain.PlayerMovePayload](msg.Payload)
		if err != nil {
			return domain.GoStone{}, domain.Stay, errors.WithMessage(err, "decode player's move")
		}
		c, err := domain.NewCoordinate(move.X, move.Y)
		if err == nil {
			stone, verdict, playErr := match.Play(c, player.Color())
			if playErr == nil {
				u.logger.Info("stone placed", zap.String("game uuid", player.GameUuid()),
					zap.Stringer("stone", stone), zap.Stringer("verdict", verdict))
				return stone, verdict, nil
			}
			err = playErr
		}
		if !errors.Is(err, domain.ErrOutOfRange) && !errors.Is(err, domain.ErrOccupied) {
			return domain.GoStone{}, domain.Stay, errors.WithMessage(err, "play move")
		}
		err = player.SendMessage(domain.Message{
			Type:    domain.RequestMove,
			Payload: domain.RequestMovePayload{Reason: err.Error()},
		})
		if err != nil {
			return domain.GoStone{}, domain.Stay, errors.WithMessage(err, "send message to player")
		}
	}
}
