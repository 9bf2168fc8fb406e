package hub

import (
	"sync"

	"github.com/kiryu-dev/omok/internal/domain"
	"github.com/kiryu-dev/omok/internal/omok"
	"github.com/kiryu-dev/omok/internal/rule"
	"github.com/pkg/errors"
)

var errNotYourTurn = errors.New("not your turn")

// match serializes access to one omok.Game. Placed stones are handed to the
// recorder without waiting for storage.
type match struct {
	uuid     string
	game     *omok.Game
	state    domain.GameState
	moveChan chan domain.Move
	done     chan struct{}
	once     *sync.Once
	mu       *sync.Mutex
	records  *recorder
}

func newMatch(gameUuid string, state domain.GameState, engine rule.Engine,
	records *recorder) (*match, error) {
	game := omok.New(domain.NewBoard(), omok.WithRule(engine))
	if err := game.Replay(state.Moves); err != nil {
		return nil, errors.WithMessagef(err, "restore game '%s'", gameUuid)
	}
	moves := make([]domain.MoveRecord, len(state.Moves))
	copy(moves, state.Moves)
	state.Moves = moves
	return &match{
		uuid:     gameUuid,
		game:     game,
		state:    state,
		moveChan: make(chan domain.Move),
		done:     make(chan struct{}),
		once:     &sync.Once{},
		mu:       &sync.Mutex{},
		records:  records,
	}, nil
}

func (m *match) Play(c domain.Coordinate, color domain.Color) (domain.GoStone, domain.Verdict, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.game.IsTerminal() || m.state.Status == domain.Finished {
		return domain.GoStone{}, domain.Stay, omok.ErrGameOver
	}
	if color != m.game.CurrentColor() {
		return domain.GoStone{}, domain.Stay, errNotYourTurn
	}
	stone, err := m.game.Turn(func() (domain.Coordinate, error) {
		return c, nil
	})
	if err != nil {
		return domain.GoStone{}, domain.Stay, err
	}
	verdict := m.game.Judge(stone)
	record := domain.RecordOf(stone)
	m.records.push(recordJob{gameUuid: m.uuid, seq: len(m.state.Moves), record: record})
	m.state.Moves = append(m.state.Moves, record)
	m.state.Status = domain.InProgress
	if verdict.IsTerminal() {
		m.state.Status = domain.Finished
		m.records.push(recordJob{gameUuid: m.uuid, clear: true})
	}
	return stone, verdict, nil
}

// catchUp appends moves a peer has seen but this server has not.
func (m *match) catchUp(state *domain.GameState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	known := len(m.state.Moves)
	if len(state.Moves) <= known {
		return nil
	}
	for i := 0; i < known; i++ {
		if state.Moves[i] != m.state.Moves[i] {
			return errors.Errorf("move #%d diverges from the local game", i)
		}
	}
	for i, record := range state.Moves[known:] {
		stone, err := record.Stone()
		if err != nil {
			return errors.WithMessage(err, "decode synced move")
		}
		if err := m.game.AddStoneDirect(stone); err != nil {
			return errors.WithMessage(err, "add synced move")
		}
		m.records.push(recordJob{gameUuid: m.uuid, seq: known + i, record: record})
		m.state.Moves = append(m.state.Moves, record)
	}
	return nil
}

func (m *match) CurrentColor() domain.Color {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.game.CurrentColor()
}

func (m *match) Restricted() domain.Color {
	return m.game.Restricted()
}

func (m *match) Snapshot() domain.GameState {
	m.mu.Lock()
	defer m.mu.Unlock()
	state := m.state
	state.Moves = make([]domain.MoveRecord, len(m.state.Moves))
	copy(state.Moves, m.state.Moves)
	return state
}

// Abort ends an unfinished match, e.g. when a player disconnects, and
// releases a loop blocked on handing over its move.
func (m *match) Abort() {
	m.once.Do(func() {
		m.mu.Lock()
		if m.state.Status != domain.Finished {
			m.state.Status = domain.Finished
			m.records.push(recordJob{gameUuid: m.uuid, clear: true})
		}
		m.mu.Unlock()
		close(m.done)
	})
}

func (m *match) isFinished() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.Status == domain.Finished
}

func (m *match) player(client domain.Client, color domain.Color) domain.Player {
	return domain.NewPlayer(m.uuid, client, color, m.moveChan, m.done)
}
