package main

import (
	"bufio"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kiryu-dev/omok/internal/adapters/storage"
	"github.com/kiryu-dev/omok/internal/config"
	"github.com/kiryu-dev/omok/internal/domain"
	"github.com/kiryu-dev/omok/internal/rule"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newSession(t *testing.T, dsn string, input ...string) *session {
	t.Helper()
	repo, err := storage.New(config.SqliteDriver, dsn)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = repo.Close()
	})
	return &session{
		repo:    repo,
		engine:  rule.Default(),
		scanner: bufio.NewScanner(strings.NewReader(strings.Join(input, "\n") + "\n")),
		logger:  zap.NewNop(),
	}
}

func TestSession_PlaysToTheEndAndClears(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "local.db")
	s := newSession(t, dsn,
		"1,8", "zz", "1,8", "1,1",
		"2,8", "2,1",
		"3,8", "3,1",
		"4,8", "4,1",
		"E8",
		"n",
	)
	require.NoError(t, s.run(context.Background()))

	moves, err := s.repo.Moves(context.Background(), localGameUuid)
	require.NoError(t, err)
	assert.Empty(t, moves)
}

func TestSession_ResumesUnfinishedGame(t *testing.T) {
	ctx := context.Background()
	dsn := filepath.Join(t.TempDir(), "local.db")

	first := newSession(t, dsn, "8,8", "9,9", "8,9")
	assert.ErrorIs(t, first.run(ctx), errInputClosed)
	moves, err := first.repo.Moves(ctx, localGameUuid)
	require.NoError(t, err)
	require.Len(t, moves, 3)
	require.NoError(t, first.repo.Close())

	second := newSession(t, dsn)
	game, err := second.restore(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, game.Board().Len())
	assert.Equal(t, domain.White, game.CurrentColor())
}

func TestDescribe(t *testing.T) {
	c, err := domain.NewCoordinate(8, 8)
	require.NoError(t, err)
	stone := domain.NewGoStone(domain.Black, c)
	assert.Equal(t, "BLACK wins with H8!", describe(stone, domain.Win))
	assert.Equal(t, "BLACK at H8 is a forbidden move (DOUBLE_FOUR). WHITE wins!", describe(stone, domain.DoubleFour))
}
