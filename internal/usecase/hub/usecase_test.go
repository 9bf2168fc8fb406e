package hub

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/kiryu-dev/omok/internal/domain"
	"github.com/kiryu-dev/omok/internal/omok"
	"github.com/kiryu-dev/omok/internal/rule"
	"github.com/kiryu-dev/omok/internal/usecase/game"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeRepo struct {
	mu      sync.Mutex
	games   map[string]*domain.GameState
	cleared []string
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{games: make(map[string]*domain.GameState)}
}

func (r *fakeRepo) CreateGame(_ context.Context, gameUuid string, state domain.GameState) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.games[gameUuid]; !ok {
		state.Moves = nil
		r.games[gameUuid] = &state
	}
	return nil
}

func (r *fakeRepo) Insert(_ context.Context, gameUuid string, seq int, record domain.MoveRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	state, ok := r.games[gameUuid]
	if !ok || seq != len(state.Moves) {
		return assert.AnError
	}
	state.Moves = append(state.Moves, record)
	return nil
}

func (r *fakeRepo) Moves(_ context.Context, gameUuid string) ([]domain.MoveRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if state, ok := r.games[gameUuid]; ok {
		return append([]domain.MoveRecord(nil), state.Moves...), nil
	}
	return nil, nil
}

func (r *fakeRepo) ActiveGames(context.Context) (map[string]*domain.GameState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	states := make(map[string]*domain.GameState, len(r.games))
	for id, state := range r.games {
		copied := *state
		states[id] = &copied
	}
	return states, nil
}

func (r *fakeRepo) Clear(_ context.Context, gameUuid string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.games, gameUuid)
	r.cleared = append(r.cleared, gameUuid)
	return nil
}

func (r *fakeRepo) Close() error {
	return nil
}

func (r *fakeRepo) movesOf(gameUuid string) int {
	moves, _ := r.Moves(context.Background(), gameUuid)
	return len(moves)
}

func coordinate(t *testing.T, x, y int) domain.Coordinate {
	t.Helper()
	c, err := domain.NewCoordinate(x, y)
	require.NoError(t, err)
	return c
}

func TestMatch_PlayRecordsInOrder(t *testing.T) {
	records := newRecorder()
	m, err := newMatch("g1", domain.GameState{}, rule.Default(), records)
	require.NoError(t, err)

	_, verdict, err := m.Play(coordinate(t, 8, 8), domain.Black)
	require.NoError(t, err)
	assert.Equal(t, domain.Stay, verdict)

	_, _, err = m.Play(coordinate(t, 9, 9), domain.Black)
	assert.ErrorIs(t, err, errNotYourTurn)

	_, _, err = m.Play(coordinate(t, 8, 8), domain.White)
	assert.ErrorIs(t, err, domain.ErrOccupied)

	_, _, err = m.Play(coordinate(t, 9, 9), domain.White)
	require.NoError(t, err)

	jobs := records.drain()
	require.Len(t, jobs, 2)
	first, second := jobs[0], jobs[1]
	assert.Equal(t, 0, first.seq)
	assert.Equal(t, 1, second.seq)
	assert.Equal(t, domain.White, second.record.Color)

	state := m.Snapshot()
	assert.Len(t, state.Moves, 2)
	assert.Equal(t, domain.InProgress, state.Status)
}

func TestMatch_FinishClearsRecords(t *testing.T) {
	records := newRecorder()
	m, err := newMatch("g1", domain.GameState{}, rule.Default(), records)
	require.NoError(t, err)
	for i := 1; i <= 4; i++ {
		_, _, err = m.Play(coordinate(t, i, 8), domain.Black)
		require.NoError(t, err)
		_, _, err = m.Play(coordinate(t, i, 1), domain.White)
		require.NoError(t, err)
	}
	_, verdict, err := m.Play(coordinate(t, 5, 8), domain.Black)
	require.NoError(t, err)
	assert.Equal(t, domain.Win, verdict)
	assert.True(t, m.isFinished())

	_, _, err = m.Play(coordinate(t, 5, 1), domain.White)
	assert.ErrorIs(t, err, omok.ErrGameOver)

	jobs := records.drain()
	require.Len(t, jobs, 10)
	assert.True(t, jobs[9].clear)
}

func TestMatch_CatchUp(t *testing.T) {
	records := newRecorder()
	m, err := newMatch("g1", domain.GameState{}, rule.Default(), records)
	require.NoError(t, err)
	stone, _, err := m.Play(coordinate(t, 8, 8), domain.Black)
	require.NoError(t, err)
	records.drain()

	remote := &domain.GameState{Moves: []domain.MoveRecord{
		domain.RecordOf(stone),
		{Color: domain.White, BoardIndex: coordinate(t, 9, 9).BoardIndex(), X: 9, Y: 9},
	}}
	require.NoError(t, m.catchUp(remote))
	assert.Len(t, m.Snapshot().Moves, 2)
	assert.Equal(t, domain.Black, m.CurrentColor())
	jobs := records.drain()
	require.Len(t, jobs, 1)
	assert.Equal(t, 1, jobs[0].seq)

	diverged := &domain.GameState{Moves: []domain.MoveRecord{
		{Color: domain.Black, BoardIndex: 0, X: 1, Y: 15},
		remote.Moves[1],
		{Color: domain.Black, BoardIndex: 1, X: 2, Y: 15},
	}}
	assert.Error(t, m.catchUp(diverged))
}

func TestMatch_AbortReleasesPlayers(t *testing.T) {
	records := newRecorder()
	m, err := newMatch("g1", domain.GameState{}, rule.Default(), records)
	require.NoError(t, err)
	player := m.player(&stubClient{uuid: "a"}, domain.Black)

	done := make(chan bool)
	go func() {
		done <- player.MakeMove(domain.Move{Status: domain.NoneMove})
	}()
	m.Abort()
	m.Abort()
	select {
	case ok := <-done:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("MakeMove was not released")
	}
	assert.True(t, m.isFinished())
	jobs := records.drain()
	require.Len(t, jobs, 1)
	assert.True(t, jobs[0].clear)
}

func TestHub_RestoreAndApplyStates(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	repo := newFakeRepo()
	require.NoError(t, repo.CreateGame(ctx, "stored", domain.GameState{
		PlayerBlack: "a", PlayerWhite: "b", Status: domain.InProgress,
	}))
	require.NoError(t, repo.Insert(ctx, "stored", 0, domain.MoveRecord{Color: domain.Black, BoardIndex: 112, X: 8, Y: 8}))

	u, err := New(ctx, nil, repo, rule.Default(), zap.NewNop())
	require.NoError(t, err)
	require.Contains(t, u.matches, "stored")
	assert.Equal(t, domain.White, u.matches["stored"].CurrentColor())

	err = u.ApplyStates(ctx, map[string]*domain.GameState{
		"synced": {
			PlayerBlack: "c",
			PlayerWhite: "d",
			Status:      domain.InProgress,
			Moves: []domain.MoveRecord{
				{Color: domain.Black, BoardIndex: 112, X: 8, Y: 8},
				{Color: domain.White, BoardIndex: 113, X: 9, Y: 8},
			},
		},
		"stored": {Status: domain.Finished},
	})
	require.NoError(t, err)

	u.mu.RLock()
	_, hasStored := u.matches["stored"]
	synced := u.matches["synced"]
	u.mu.RUnlock()
	assert.False(t, hasStored)
	require.NotNil(t, synced)
	assert.Equal(t, domain.Black, synced.CurrentColor())

	assert.Eventually(t, func() bool {
		return repo.movesOf("synced") == 2
	}, time.Second, 10*time.Millisecond)

	player, m, ok := u.continueActiveGame(&stubClient{uuid: "d"})
	require.True(t, ok)
	assert.Equal(t, domain.White, player.Color())
	assert.Same(t, synced, m)
}

type stubClient struct {
	uuid string
}

func (c *stubClient) WriteMessage(domain.Message) error {
	return nil
}

func (c *stubClient) ReadMessage() (domain.Message, error) {
	return domain.Message{}, domain.ErrConnectionClosed
}

func (c *stubClient) Uuid() string {
	return c.uuid
}

// scriptedClient plays the given moves and then drops the connection.
type scriptedClient struct {
	uuid string
	in   chan domain.Message
	mu   sync.Mutex
	out  []domain.Message
}

func newScriptedClient(uuid string, moves ...[2]int) *scriptedClient {
	c := &scriptedClient{uuid: uuid, in: make(chan domain.Message, len(moves))}
	for _, m := range moves {
		c.in <- domain.Message{
			Type:    domain.PlayerMove,
			Payload: domain.PlayerMovePayload{X: m[0], Y: m[1]},
		}
	}
	close(c.in)
	return c
}

func (c *scriptedClient) WriteMessage(msg domain.Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.out = append(c.out, msg)
	return nil
}

func (c *scriptedClient) ReadMessage() (domain.Message, error) {
	msg, ok := <-c.in
	if !ok {
		return domain.Message{}, domain.ErrConnectionClosed
	}
	return msg, nil
}

func (c *scriptedClient) Uuid() string {
	return c.uuid
}

func (c *scriptedClient) walkedOver() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, msg := range c.out {
		if msg.Type == domain.Walkover {
			return true
		}
	}
	return false
}

func TestRecorder_PushNeverBlocks(t *testing.T) {
	rec := newRecorder()
	for i := 0; i < 1000; i++ {
		rec.push(recordJob{gameUuid: "g1", seq: i})
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	var (
		mu   sync.Mutex
		seqs []int
	)
	go rec.run(ctx, func(job recordJob) {
		mu.Lock()
		seqs = append(seqs, job.seq)
		mu.Unlock()
	})
	rec.push(recordJob{gameUuid: "g1", seq: 1000})
	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(seqs) == 1001
	}, time.Second, time.Millisecond)
	for i, seq := range seqs {
		require.Equal(t, i, seq)
	}
}

func TestHub_WalkoverFinishesMatch(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	repo := newFakeRepo()
	u, err := New(ctx, game.New(zap.NewNop()), repo, rule.Default(), zap.NewNop())
	require.NoError(t, err)

	first := newScriptedClient("first", [2]int{8, 8})
	second := newScriptedClient("second", [2]int{9, 9})
	errs := make(chan error, 2)
	for _, c := range []*scriptedClient{first, second} {
		go func(c *scriptedClient) {
			errs <- u.Handle(ctx, c)
		}(c)
	}
	for i := 0; i < 2; i++ {
		select {
		case err := <-errs:
			require.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Fatal("match did not finish")
		}
	}
	assert.True(t, first.walkedOver() || second.walkedOver())

	u.mu.RLock()
	require.Len(t, u.matches, 1)
	for _, m := range u.matches {
		assert.True(t, m.isFinished())
	}
	u.mu.RUnlock()
	assert.Eventually(t, func() bool {
		states, err := repo.ActiveGames(ctx)
		return err == nil && len(states) == 0
	}, time.Second, 10*time.Millisecond)

	for _, clientUuid := range []string{"first", "second"} {
		_, _, ok := u.continueActiveGame(&stubClient{uuid: clientUuid})
		assert.False(t, ok, clientUuid)
	}
}
