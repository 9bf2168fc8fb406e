package ws

import (
	"net/http"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/kiryu-dev/omok/internal/domain"
	"go.uber.org/zap"
)

func (s *server) serveWs(w http.ResponseWriter, r *http.Request) {
	clientUuid := strings.TrimSpace(r.Header.Get(domain.ClientUuidHeader))
	if clientUuid == "" {
		s.logger.Warn("empty client uuid header", zap.String("header", domain.ClientUuidHeader))
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("failed to upgrade connection", zap.Error(err))
		return
	}
	client := newClient(conn, clientUuid)
	defer client.Close()
	s.logger.Info("new connection", zap.String("client uuid", clientUuid),
		zap.String("master host", s.masterHost.Load()), zap.Any("role", s.serverRole()))
	switch s.serverRole() {
	case domain.ReserveServer:
		err := client.WriteMessage(domain.Message{
			Type:    domain.SwitchServer,
			Payload: domain.SwitchServerPayload{MasterServer: s.masterHost.Load()},
		})
		if err != nil {
			s.logger.Error("failed to request server switch", zap.Error(err))
		}
	case domain.MasterServer:
		if err := s.hub.Handle(r.Context(), client); err != nil {
			s.logger.Error("failed to handle client", zap.String("client uuid", clientUuid), zap.Error(err))
		}
	default:
		s.logger.Warn("the client connected before the server role was determined")
	}
}

func (s *server) healthCheck(w http.ResponseWriter, _ *http.Request) {
	resp := domain.HealthCheckResponse{
		MasterServer: s.masterHost.Load(),
		Role:         s.serverRole(),
	}
	if err := jsoniter.NewEncoder(w).Encode(resp); err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		s.logger.Warn("failed to encode health check response", zap.Error(err))
	}
}

func (s *server) applyStates(w http.ResponseWriter, r *http.Request) {
	states := make(map[string]*domain.GameState)
	if err := jsoniter.NewDecoder(r.Body).Decode(&states); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		s.logger.Warn("failed to decode states", zap.Error(err))
		return
	}
	if err := s.hub.ApplyStates(r.Context(), states); err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		s.logger.Warn("failed to apply states", zap.Error(err))
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (s *server) defineMaster(w http.ResponseWriter, r *http.Request) {
	var req domain.DefineMasterRequest
	if err := jsoniter.NewDecoder(r.Body).Decode(&req); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		s.logger.Warn("failed to decode define master request", zap.Error(err))
		return
	}
	resp, err := s.sync.DefineMasterServer(r.Context(), req)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		s.logger.Warn("failed to define master", zap.Error(err))
		return
	}
	if err := jsoniter.NewEncoder(w).Encode(resp); err != nil {
		s.logger.Warn("failed to encode define master response", zap.Error(err))
	}
}
