package game

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/kiryu-dev/omok/internal/domain"
	"github.com/kiryu-dev/omok/internal/omok"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeClient struct {
	uuid string
	in   chan domain.Message
	out  chan domain.Message
}

func newFakeClient(uuid string, moves ...[2]int) *fakeClient {
	c := &fakeClient{
		uuid: uuid,
		in:   make(chan domain.Message, len(moves)),
		out:  make(chan domain.Message, 64),
	}
	for _, m := range moves {
		c.in <- domain.Message{
			Type:    domain.PlayerMove,
			Payload: domain.PlayerMovePayload{X: m[0], Y: m[1]},
		}
	}
	close(c.in)
	return c
}

func (c *fakeClient) ReadMessage() (domain.Message, error) {
	msg, ok := <-c.in
	if !ok {
		return domain.Message{}, domain.ErrConnectionClosed
	}
	return msg, nil
}

func (c *fakeClient) WriteMessage(msg domain.Message) error {
	c.out <- msg
	return nil
}

func (c *fakeClient) Uuid() string {
	return c.uuid
}

func (c *fakeClient) messages() []domain.Message {
	close(c.out)
	var result []domain.Message
	for msg := range c.out {
		result = append(result, msg)
	}
	return result
}

type fakeMatch struct {
	mu   sync.Mutex
	game *omok.Game
	done chan struct{}
	once sync.Once
}

func newFakeMatch() *fakeMatch {
	return &fakeMatch{game: omok.New(nil), done: make(chan struct{})}
}

func (m *fakeMatch) Play(c domain.Coordinate, color domain.Color) (domain.GoStone, domain.Verdict, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if color != m.game.CurrentColor() {
		return domain.GoStone{}, domain.Stay, errors.New("not your turn")
	}
	stone, err := m.game.Turn(func() (domain.Coordinate, error) {
		return c, nil
	})
	if err != nil {
		return domain.GoStone{}, domain.Stay, err
	}
	return stone, m.game.Judge(stone), nil
}

func (m *fakeMatch) CurrentColor() domain.Color {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.game.CurrentColor()
}

func (m *fakeMatch) Restricted() domain.Color {
	return m.game.Restricted()
}

func (m *fakeMatch) Snapshot() domain.GameState {
	m.mu.Lock()
	defer m.mu.Unlock()
	var state domain.GameState
	for _, stone := range m.game.Board().Stones() {
		state.Moves = append(state.Moves, domain.RecordOf(stone))
	}
	return state
}

func (m *fakeMatch) Abort() {
	m.once.Do(func() {
		close(m.done)
	})
}

// playMatch runs both sides to completion and returns what each client
// received.
func playMatch(t *testing.T, black, white *fakeClient) ([]domain.Message, []domain.Message) {
	t.Helper()
	var (
		uc     = New(zap.NewNop())
		match  = newFakeMatch()
		ch     = make(chan domain.Move)
		errs   = make(chan error, 2)
		ctx    = context.Background()
		blackP = domain.NewPlayer("g1", black, domain.Black, ch, match.done)
		whiteP = domain.NewPlayer("g1", white, domain.White, ch, match.done)
	)
	go func() {
		errs <- uc.Play(ctx, blackP, match)
	}()
	go func() {
		errs <- uc.Play(ctx, whiteP, match)
	}()
	for i := 0; i < 2; i++ {
		select {
		case err := <-errs:
			require.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Fatal("match did not finish")
		}
	}
	return black.messages(), white.messages()
}

func lastResult(t *testing.T, msgs []domain.Message) string {
	t.Helper()
	require.NotEmpty(t, msgs)
	last := msgs[len(msgs)-1]
	require.Equal(t, domain.PlayerMove, last.Type)
	payload, ok := last.Payload.(*domain.PlayerMovePayload)
	require.True(t, ok)
	require.NotNil(t, payload.GameResult)
	return *payload.GameResult
}

func TestPlay_BlackWins(t *testing.T) {
	black := newFakeClient("black", [2]int{1, 8}, [2]int{2, 8}, [2]int{3, 8}, [2]int{4, 8}, [2]int{5, 8})
	white := newFakeClient("white", [2]int{1, 1}, [2]int{2, 1}, [2]int{3, 1}, [2]int{4, 1})
	blackMsgs, whiteMsgs := playMatch(t, black, white)

	assert.Equal(t, domain.StartGame, blackMsgs[0].Type)
	assert.Equal(t, domain.StartGame, whiteMsgs[0].Type)
	assert.Equal(t, "BLACK wins!", lastResult(t, blackMsgs))
	assert.Equal(t, "BLACK wins!", lastResult(t, whiteMsgs))
}

func TestPlay_ForbiddenMoveLoses(t *testing.T) {
	black := newFakeClient("black", [2]int{6, 8}, [2]int{7, 8}, [2]int{8, 6}, [2]int{8, 7}, [2]int{8, 8})
	white := newFakeClient("white", [2]int{1, 1}, [2]int{1, 3}, [2]int{1, 5}, [2]int{1, 7})
	blackMsgs, whiteMsgs := playMatch(t, black, white)

	expected := "forbidden move (DOUBLE_THREE): BLACK forfeits, WHITE wins!"
	assert.Equal(t, expected, lastResult(t, blackMsgs))
	assert.Equal(t, expected, lastResult(t, whiteMsgs))
}

func TestPlay_InvalidMoveIsRequestedAgain(t *testing.T) {
	black := newFakeClient("black",
		[2]int{0, 8}, [2]int{1, 8}, [2]int{2, 8}, [2]int{3, 8}, [2]int{4, 8}, [2]int{5, 8})
	white := newFakeClient("white", [2]int{1, 8}, [2]int{1, 1}, [2]int{2, 1}, [2]int{3, 1}, [2]int{4, 1})
	blackMsgs, whiteMsgs := playMatch(t, black, white)

	assert.Equal(t, "BLACK wins!", lastResult(t, blackMsgs))
	assert.Equal(t, "BLACK wins!", lastResult(t, whiteMsgs))

	var reasons []string
	for _, msg := range append(blackMsgs, whiteMsgs...) {
		if payload, ok := msg.Payload.(domain.RequestMovePayload); ok {
			reasons = append(reasons, payload.Reason)
		}
	}
	require.Len(t, reasons, 2)
}

func TestPlay_Walkover(t *testing.T) {
	black := newFakeClient("black", [2]int{8, 8})
	white := newFakeClient("white")
	blackMsgs, _ := playMatch(t, black, white)

	last := blackMsgs[len(blackMsgs)-1]
	assert.Equal(t, domain.Walkover, last.Type)
	assert.Equal(t, domain.WalkoverPayload{GameResult: WalkoverGameResult}, last.Payload)
}

func TestToGameResult(t *testing.T) {
	c, err := domain.NewCoordinate(8, 8)
	require.NoError(t, err)
	stone := domain.NewGoStone(domain.Black, c)

	result, err := toGameResult(stone, domain.Win)
	require.NoError(t, err)
	assert.Equal(t, "BLACK wins!", result)

	result, err = toGameResult(stone, domain.Overline)
	require.NoError(t, err)
	assert.Equal(t, "forbidden move (OVERLINE): BLACK forfeits, WHITE wins!", result)

	_, err = toGameResult(stone, domain.Stay)
	assert.ErrorIs(t, err, errUnexpectedMoveStatus)
}
