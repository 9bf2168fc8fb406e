package ws

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/kiryu-dev/omok/internal/domain"
	"github.com/pkg/errors"
	"go.uber.org/atomic"
	"go.uber.org/zap"
)

// startDelay gives the other servers time to come up before the first
// master election.
const (
	startDelay      = 3 * time.Second
	shutdownTimeout = 5 * time.Second
)

type server struct {
	srv        *http.Server
	hub        domain.HubUseCase
	sync       domain.SyncUseCase
	role       *atomic.String
	masterHost *atomic.String
	upgrader   websocket.Upgrader
	logger     *zap.Logger
}

func New(addr string, hub domain.HubUseCase, sync domain.SyncUseCase, logger *zap.Logger) *server {
	s := &server{
		hub:        hub,
		sync:       sync,
		role:       atomic.NewString(""),
		masterHost: atomic.NewString(""),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		logger: logger,
	}
	s.srv = &http.Server{Addr: addr, Handler: s.routes()}
	return s
}

// ListenAndServe serves players and peers until ctx is done. The server
// takes players only while it is the elected master.
func (s *server) ListenAndServe(ctx context.Context) error {
	errChan := make(chan error, 1)
	go func() {
		s.logger.Info("starting listening address: " + s.srv.Addr)
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()
	select {
	case <-ctx.Done():
		return nil
	case err := <-errChan:
		return errors.WithMessage(err, "listen and serve")
	case <-time.After(startDelay):
	}
	go s.sync.Sync(ctx, s.hub.GamesStates())
	go s.sync.DefineServerRole(ctx, "")
	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-errChan:
			return errors.WithMessage(err, "listen and serve")
		case info := <-s.sync.Chan():
			s.logger.Info("server info", zap.Any("info", info))
			s.setServerInfo(info)
			if info.ServerRole == domain.ReserveServer {
				go func() {
					if err := s.sync.CheckMasterHealth(ctx); err != nil && !errors.Is(err, context.Canceled) {
						s.logger.Error("failed to check master health", zap.Error(err))
					}
				}()
			}
		}
	}
}

func (s *server) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return s.srv.Shutdown(ctx)
}

func (s *server) setServerInfo(info domain.ServerInfo) {
	s.masterHost.Store(info.MasterServerName)
	s.role.Store(string(info.ServerRole))
}

func (s *server) serverRole() domain.ServerRole {
	return domain.ServerRole(s.role.Load())
}

func (s *server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/game", s.serveWs)
	mux.HandleFunc("GET /health", s.healthCheck)
	mux.HandleFunc("POST /sync", s.applyStates)
	mux.HandleFunc("POST /master", s.defineMaster)
	return mux
}
