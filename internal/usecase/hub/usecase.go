package hub

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/kiryu-dev/omok/internal/domain"
	"github.com/kiryu-dev/omok/internal/rule"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const (
	clientQueueBufSize = 2
	syncPeriod         = 5 * time.Second
)

type enqueuedClient struct {
	client     domain.Client
	resultChan chan domain.Player
}

type useCase struct {
	game        domain.GameUseCase
	repo        domain.MoveRepository
	rule        rule.Engine
	clientQueue chan enqueuedClient
	matches     map[string]*match
	statesChan  chan map[string]*domain.GameState
	records     *recorder
	ticker      *time.Ticker
	mu          *sync.RWMutex
	logger      *zap.Logger
}

// New restores unfinished games from the repository and starts pairing
// clients.
func New(ctx context.Context, game domain.GameUseCase, repo domain.MoveRepository, engine rule.Engine,
	logger *zap.Logger) (*useCase, error) {
	u := &useCase{
		game:        game,
		repo:        repo,
		rule:        engine,
		clientQueue: make(chan enqueuedClient, clientQueueBufSize),
		matches:     make(map[string]*match),
		statesChan:  make(chan map[string]*domain.GameState),
		records:     newRecorder(),
		ticker:      time.NewTicker(syncPeriod),
		mu:          &sync.RWMutex{},
		logger:      logger,
	}
	if err := u.restoreGames(ctx); err != nil {
		return nil, errors.WithMessage(err, "restore games")
	}
	go u.record(ctx)
	go u.createGames()
	go u.syncStates()
	return u, nil
}

// Handle plays the client's game to the end. The match is finished once
// either side returns, so a walkover cannot be resumed later.
func (u *useCase) Handle(ctx context.Context, client domain.Client) error {
	player, m, ok := u.continueActiveGame(client)
	if !ok {
		player, m = u.enqueueForGame(client)
	}
	defer m.Abort()
	if err := u.game.Play(ctx, player, m); err != nil {
		return errors.WithMessage(err, "play game")
	}
	return nil
}

func (u *useCase) enqueueForGame(client domain.Client) (domain.Player, *match) {
	ch := make(chan domain.Player)
	u.clientQueue <- enqueuedClient{
		client:     client,
		resultChan: ch,
	}
	player := <-ch
	u.mu.RLock()
	m := u.matches[player.GameUuid()]
	u.mu.RUnlock()
	return player, m
}

func (u *useCase) createGames() {
	for lhs := range u.clientQueue {
		rhs, ok := <-u.clientQueue
		if !ok {
			return
		}
		m, err := u.createGame(lhs.client.Uuid(), rhs.client.Uuid())
		if err != nil {
			u.logger.Error("failed to create game", zap.Error(err))
			continue
		}
		lhs.resultChan <- m.player(lhs.client, domain.Black)
		rhs.resultChan <- m.player(rhs.client, domain.White)
	}
}

func (u *useCase) createGame(playerBlack string, playerWhite string) (*match, error) {
	gameUuid := uuid.NewString()
	state := domain.GameState{
		PlayerBlack: playerBlack,
		PlayerWhite: playerWhite,
		Status:      domain.ReadyToStart,
	}
	m, err := newMatch(gameUuid, state, u.rule, u.records)
	if err != nil {
		return nil, err
	}
	if err := u.repo.CreateGame(context.Background(), gameUuid, state); err != nil {
		u.logger.Warn("failed to persist game", zap.String("game uuid", gameUuid), zap.Error(err))
	}
	u.mu.Lock()
	u.matches[gameUuid] = m
	u.mu.Unlock()
	u.logger.Info("created game", zap.String("game uuid", gameUuid),
		zap.String("black", playerBlack), zap.String("white", playerWhite))
	return m, nil
}

// record writes placed moves in the order they were played. Storage errors
// are logged and never reach the players.
func (u *useCase) record(ctx context.Context) {
	u.records.run(ctx, func(job recordJob) {
		var err error
		if job.clear {
			err = u.repo.Clear(ctx, job.gameUuid)
		} else {
			err = u.repo.Insert(ctx, job.gameUuid, job.seq, job.record)
		}
		if err != nil {
			u.logger.Warn("failed to record move", zap.String("game uuid", job.gameUuid), zap.Error(err))
		}
	})
}

func (u *useCase) restoreGames(ctx context.Context) error {
	states, err := u.repo.ActiveGames(ctx)
	if err != nil {
		return err
	}
	for gameUuid, state := range states {
		m, err := newMatch(gameUuid, *state, u.rule, u.records)
		if err != nil {
			u.logger.Warn("skip broken game", zap.String("game uuid", gameUuid), zap.Error(err))
			continue
		}
		u.matches[gameUuid] = m
	}
	u.logger.Info("restored games", zap.Int("count", len(u.matches)))
	return nil
}

func (u *useCase) syncStates() {
	defer u.ticker.Stop()
	for range u.ticker.C {
		states := u.snapshot()
		if len(states) > 0 {
			u.statesChan <- states
		}
	}
}

func (u *useCase) snapshot() map[string]*domain.GameState {
	u.mu.Lock()
	defer u.mu.Unlock()
	states := make(map[string]*domain.GameState, len(u.matches))
	for gameUuid, m := range u.matches {
		state := m.Snapshot()
		states[gameUuid] = &state
		if state.Status == domain.Finished {
			delete(u.matches, gameUuid)
		}
	}
	return states
}

func (u *useCase) GamesStates() <-chan map[string]*domain.GameState {
	return u.statesChan
}

// ApplyStates merges game states pushed by the master server.
func (u *useCase) ApplyStates(ctx context.Context, states map[string]*domain.GameState) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	for gameUuid, state := range states {
		m, ok := u.matches[gameUuid]
		if state.Status == domain.Finished {
			if ok {
				m.Abort()
				delete(u.matches, gameUuid)
			}
			continue
		}
		if ok {
			if err := m.catchUp(state); err != nil {
				u.logger.Warn("failed to apply state", zap.String("game uuid", gameUuid), zap.Error(err))
			}
			continue
		}
		m, err := newMatch(gameUuid, domain.GameState{
			PlayerBlack: state.PlayerBlack,
			PlayerWhite: state.PlayerWhite,
			Status:      state.Status,
		}, u.rule, u.records)
		if err != nil {
			return errors.WithMessagef(err, "new match '%s'", gameUuid)
		}
		if err := u.repo.CreateGame(ctx, gameUuid, *state); err != nil {
			u.logger.Warn("failed to persist synced game", zap.String("game uuid", gameUuid), zap.Error(err))
		}
		if err := m.catchUp(state); err != nil {
			u.logger.Warn("failed to apply state", zap.String("game uuid", gameUuid), zap.Error(err))
			continue
		}
		u.matches[gameUuid] = m
	}
	u.logger.Info("applied states", zap.Int("games", len(states)))
	return nil
}

func (u *useCase) continueActiveGame(client domain.Client) (domain.Player, *match, bool) {
	u.mu.RLock()
	defer u.mu.RUnlock()
	clientUuid := client.Uuid()
	for gameUuid, m := range u.matches {
		if m.isFinished() {
			continue
		}
		state := m.Snapshot()
		color := domain.NoColor
		switch clientUuid {
		case state.PlayerBlack:
			color = domain.Black
		case state.PlayerWhite:
			color = domain.White
		default:
			continue
		}
		u.logger.Info("found active game", zap.String("game uuid", gameUuid), zap.Stringer("color", color))
		return m.player(client, color), m, true
	}
	return domain.Player{}, nil, false
}
