package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/kiryu-dev/omok/internal/adapters/storage"
	"github.com/kiryu-dev/omok/internal/adapters/webapi"
	"github.com/kiryu-dev/omok/internal/config"
	"github.com/kiryu-dev/omok/internal/rule"
	"github.com/kiryu-dev/omok/internal/transport/ws"
	"github.com/kiryu-dev/omok/internal/usecase/game"
	"github.com/kiryu-dev/omok/internal/usecase/hub"
	"github.com/kiryu-dev/omok/internal/usecase/synchronizer"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer func() {
		_ = logger.Sync()
	}()
	cfgPath := flag.String("config", "./config.yml", "path to config")
	envPath := flag.String("env", ".env", "path to env file")
	flag.Parse()
	if err := godotenv.Load(*envPath); err != nil {
		logger.Info("env file is not loaded, using process environment", zap.Error(err))
	}
	cfg, err := config.New(*cfgPath)
	if err != nil {
		logger.Fatal("failed to load config", zap.Error(err))
	}
	restricted, err := cfg.Rule.RestrictedColor()
	if err != nil {
		logger.Fatal("failed to define restricted color", zap.Error(err))
	}
	repo, err := storage.New(cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		logger.Fatal("failed to open move storage", zap.Error(err))
	}
	defer func() {
		_ = repo.Close()
	}()

	errGroup, ctx := errgroup.WithContext(context.Background())
	sigChan := make(chan os.Signal, 2)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	errGroup.Go(func() error {
		select {
		case s := <-sigChan:
			return errors.Errorf("captured signal: %v", s)
		case <-ctx.Done():
			return nil
		}
	})

	gameUseCase := game.New(logger)
	hubUseCase, err := hub.New(ctx, gameUseCase, repo, rule.New(restricted), logger)
	if err != nil {
		logger.Fatal("failed to start hub", zap.Error(err))
	}
	var (
		serverName = os.Getenv("SERVER_NAME")
		sync       = synchronizer.New(webapi.New(), cfg.Servers, serverName, logger)
		server     = ws.New(os.Getenv("SERVER_PORT"), hubUseCase, sync, logger)
	)
	logger.Info("starting omok server", zap.String("server name", serverName),
		zap.Stringer("restricted", restricted), zap.String("database", cfg.Database.Driver))
	errGroup.Go(func() error {
		return server.ListenAndServe(ctx)
	})
	errGroup.Go(func() error {
		<-ctx.Done()
		if err := server.Shutdown(); err != nil {
			logger.Info("failed to shutdown http server", zap.Error(err))
		}
		return nil
	})
	if err := errGroup.Wait(); err != nil {
		logger.Info("gracefully shutting down the server: " + err.Error())
	}
}
