package game

import (
	"fmt"

	"github.com/kiryu-dev/omok/internal/domain"
)

const WalkoverGameResult = "Walkover: the opponent has left the game"

// toGameResult renders the verdict of the final stone for the players.
func toGameResult(stone domain.GoStone, verdict domain.Verdict) (string, error) {
	color := stone.Color()
	switch {
	case verdict == domain.Win:
		return fmt.Sprintf("%s wins!", color), nil
	case verdict.IsForbidden():
		return fmt.Sprintf("forbidden move (%s): %s forfeits, %s wins!", verdict, color, color.Next()), nil
	default:
		return "", errUnexpectedMoveStatus
	}
}
