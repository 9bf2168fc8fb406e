package storage

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/kiryu-dev/omok/internal/domain"
	_ "github.com/lib/pq"
	"github.com/pkg/errors"
	_ "modernc.org/sqlite"
)

const (
	insertGameQuery = `INSERT INTO game (id, player_black, player_white, status) VALUES (?, ?, ?, ?)
ON CONFLICT (id) DO NOTHING`
	insertMoveQuery = `INSERT INTO move (game_id, seq, go_stone_color, board_index, x, y) VALUES (?, ?, ?, ?, ?, ?)`
	selectMovesQuery = `SELECT go_stone_color, board_index, x, y FROM move WHERE game_id = ? ORDER BY seq`
	selectGamesQuery = `SELECT id, player_black, player_white, status FROM game WHERE status <> ?`
	deleteMovesQuery = `DELETE FROM move WHERE game_id = ?`
	deleteGameQuery  = `DELETE FROM game WHERE id = ?`
)

type repository struct {
	db *sqlx.DB
}

// New opens the database, verifies the connection and creates the schema.
// driver is "sqlite" or "postgres"; queries are rebound to its placeholder
// style by sqlx.
func New(driver, dsn string) (repository, error) {
	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return repository{}, errors.WithMessage(err, "open database")
	}
	if driver == "sqlite" {
		db.SetMaxOpenConns(1)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return repository{}, errors.WithMessage(err, "ping database")
	}
	if err := createSchema(db); err != nil {
		_ = db.Close()
		return repository{}, err
	}
	return repository{db: db}, nil
}

func (r repository) CreateGame(ctx context.Context, gameUuid string, state domain.GameState) error {
	_, err := r.db.ExecContext(ctx, r.db.Rebind(insertGameQuery),
		gameUuid, state.PlayerBlack, state.PlayerWhite, int(state.Status))
	if err != nil {
		return errors.WithMessagef(err, "insert game '%s'", gameUuid)
	}
	return nil
}

func (r repository) Insert(ctx context.Context, gameUuid string, seq int, record domain.MoveRecord) error {
	_, err := r.db.ExecContext(ctx, r.db.Rebind(insertMoveQuery),
		gameUuid, seq, record.Color.Number(), record.BoardIndex, record.X, record.Y)
	if err != nil {
		return errors.WithMessagef(err, "insert move #%d of game '%s'", seq, gameUuid)
	}
	return nil
}

func (r repository) Moves(ctx context.Context, gameUuid string) ([]domain.MoveRecord, error) {
	var rows []moveRow
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(selectMovesQuery), gameUuid); err != nil {
		return nil, errors.WithMessagef(err, "select moves of game '%s'", gameUuid)
	}
	var records []domain.MoveRecord
	for _, row := range rows {
		color, err := domain.ColorFromNumber(row.Color)
		if err != nil {
			return nil, errors.WithMessage(err, "decode move color")
		}
		records = append(records, domain.MoveRecord{
			Color:      color,
			BoardIndex: row.BoardIndex,
			X:          row.X,
			Y:          row.Y,
		})
	}
	return records, nil
}

func (r repository) ActiveGames(ctx context.Context) (map[string]*domain.GameState, error) {
	var rows []gameRow
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(selectGamesQuery), int(domain.Finished)); err != nil {
		return nil, errors.WithMessage(err, "select games")
	}
	states := make(map[string]*domain.GameState, len(rows))
	for _, row := range rows {
		moves, err := r.Moves(ctx, row.ID)
		if err != nil {
			return nil, err
		}
		states[row.ID] = &domain.GameState{
			PlayerBlack: row.PlayerBlack,
			PlayerWhite: row.PlayerWhite,
			Moves:       moves,
			Status:      domain.InProgress,
		}
	}
	return states, nil
}

// Clear forgets a game once it is over.
func (r repository) Clear(ctx context.Context, gameUuid string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.WithMessage(err, "begin tx")
	}
	defer func() {
		_ = tx.Rollback()
	}()
	if _, err := tx.ExecContext(ctx, r.db.Rebind(deleteMovesQuery), gameUuid); err != nil {
		return errors.WithMessagef(err, "delete moves of game '%s'", gameUuid)
	}
	if _, err := tx.ExecContext(ctx, r.db.Rebind(deleteGameQuery), gameUuid); err != nil {
		return errors.WithMessagef(err, "delete game '%s'", gameUuid)
	}
	if err := tx.Commit(); err != nil {
		return errors.WithMessage(err, "commit tx")
	}
	return nil
}

func (r repository) Close() error {
	return r.db.Close()
}
