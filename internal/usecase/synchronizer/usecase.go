package synchronizer

import (
	"context"
	"fmt"
	"time"

	"github.com/kiryu-dev/omok/internal/config"
	"github.com/kiryu-dev/omok/internal/domain"
	"github.com/pkg/errors"
	"go.uber.org/atomic"
	"go.uber.org/zap"
)

var errUndefinedServer = errors.New("undefined server")

const (
	httpPrefix        = "http://"
	healthCheckPeriod = 5 * time.Second
)

// useCase elects the master among the configured servers: the live server
// with the lexicographically smallest name wins. Only the master serves
// players and pushes game states to the others.
type useCase struct {
	repo       domain.SyncRepository
	addrs      map[string]string
	serverName string
	masterName *atomic.String
	period     time.Duration
	logger     *zap.Logger
	srvChan    chan domain.ServerInfo
}

func New(repo domain.SyncRepository, servers []config.ServerConfig, serverName string,
	logger *zap.Logger) *useCase {
	addrs := make(map[string]string)
	for _, srv := range servers {
		if srv.Host != serverName {
			addrs[srv.Host] = fmt.Sprintf("%s%s:%d", httpPrefix, srv.Host, srv.Port)
		}
	}
	logger.Info("defined servers", zap.String("server name", serverName), zap.Any("servers", addrs))
	return &useCase{
		repo:       repo,
		addrs:      addrs,
		serverName: serverName,
		masterName: atomic.NewString(serverName),
		period:     healthCheckPeriod,
		logger:     logger,
		srvChan:    make(chan domain.ServerInfo),
	}
}

// Sync pushes every snapshot of the hub to the other servers while this
// server is the master.
func (u *useCase) Sync(ctx context.Context, statesChan <-chan map[string]*domain.GameState) {
	for {
		select {
		case <-ctx.Done():
			return
		case states, ok := <-statesChan:
			if !ok {
				return
			}
			if u.masterName.Load() != u.serverName {
				continue
			}
			u.logger.Info("starting sync games states...", zap.Int("games", len(states)))
			for host, addr := range u.addrs {
				if err := u.repo.Sync(ctx, addr, states); err != nil {
					u.logger.Warn("failed to sync states", zap.String("host", host), zap.Error(err))
				}
			}
		}
	}
}

func (u *useCase) DefineMasterServer(_ context.Context, req domain.DefineMasterRequest) (domain.DefineMasterResponse, error) {
	u.logger.Info("define master server", zap.Any("req", req))
	if req.MasterToIgnore != "" && req.MasterToIgnore == u.masterName.Load() {
		u.masterName.Store(u.serverName)
	}
	if req.InitiatorMasterServerName == u.masterName.Load() {
		return domain.DefineMasterResponse{MasterServerName: u.masterName.Load()}, nil
	}
	if _, ok := u.addrs[req.InitiatorMasterServerName]; !ok {
		u.logger.Warn("undefined server", zap.String("host", req.InitiatorMasterServerName))
		return domain.DefineMasterResponse{}, errors.WithMessagef(errUndefinedServer, "'%s'",
			req.InitiatorMasterServerName)
	}
	u.compareWithCurrentMaster(req.InitiatorMasterServerName)
	return domain.DefineMasterResponse{MasterServerName: u.masterName.Load()}, nil
}

// DefineServerRole asks every reachable server for its master candidate and
// publishes the resulting role on Chan.
func (u *useCase) DefineServerRole(ctx context.Context, masterToIgnore string) {
	for host, addr := range u.addrs {
		if host == masterToIgnore {
			continue
		}
		resp, err := u.repo.DefineMaster(ctx, domain.DefineMasterRequest{
			InitiatorMasterServerName: u.masterName.Load(),
			MasterToIgnore:            masterToIgnore,
		}, addr)
		if err != nil {
			u.logger.Warn("failed to define master", zap.String("host", host), zap.Error(err))
			continue
		}
		u.compareWithCurrentMaster(resp.MasterServerName)
	}
	info := domain.ServerInfo{
		ServerRole:       domain.ReserveServer,
		MasterServerName: u.masterName.Load(),
	}
	if info.MasterServerName == u.serverName {
		info.ServerRole = domain.MasterServer
	}
	select {
	case u.srvChan <- info:
	case <-ctx.Done():
	}
}

// CheckMasterHealth polls the master until it stops answering, then starts a
// new election without it. It returns at once when this server is the
// master.
func (u *useCase) CheckMasterHealth(ctx context.Context) error {
	ticker := time.NewTicker(u.period)
	defer ticker.Stop()
	for {
		masterName := u.masterName.Load()
		if masterName == u.serverName {
			return nil
		}
		masterAddr, ok := u.addrs[masterName]
		if !ok {
			return errors.WithMessagef(errUndefinedServer, "master '%s'", masterName)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
		if _, err := u.repo.HealthCheck(ctx, masterAddr); err != nil {
			u.logger.Warn("master server is unavailable", zap.String("host", masterName), zap.Error(err))
			u.masterName.CompareAndSwap(masterName, u.serverName)
			go u.DefineServerRole(ctx, masterName)
			return nil
		}
	}
}

func (u *useCase) compareWithCurrentMaster(newMasterServerName string) {
	masterName := u.masterName.Load()
	if masterName == "" || masterName > newMasterServerName {
		u.masterName.Store(newMasterServerName)
		u.logger.Info("new master server", zap.String("host", newMasterServerName))
	}
}

func (u *useCase) Chan() <-chan domain.ServerInfo {
	return u.srvChan
}
