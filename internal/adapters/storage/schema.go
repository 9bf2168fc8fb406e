package storage

import (
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

// createSchema is safe to call on every start.
func createSchema(db *sqlx.DB) error {
	if _, err := db.Exec(schema); err != nil {
		return errors.WithMessage(err, "create schema")
	}
	return nil
}

const schema = `
CREATE TABLE IF NOT EXISTS game (
    id TEXT PRIMARY KEY,
    player_black TEXT NOT NULL,
    player_white TEXT NOT NULL,
    status INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS move (
    game_id TEXT NOT NULL REFERENCES game(id) ON DELETE CASCADE,
    seq INTEGER NOT NULL,
    go_stone_color INTEGER NOT NULL,
    board_index INTEGER NOT NULL,
    x INTEGER NOT NULL,
    y INTEGER NOT NULL,
    PRIMARY KEY (game_id, seq)
);
`

type gameRow struct {
	ID          string `db:"id"`
	PlayerBlack string `db:"player_black"`
	PlayerWhite string `db:"player_white"`
	Status      int    `db:"status"`
}

type moveRow struct {
	Color      int `db:"go_stone_color"`
	BoardIndex int `db:"board_index"`
	X          int `db:"x"`
	Y          int `db:"y"`
}
