// Package gateway pushes workshop snapshots to browser screens over
// websockets.
package gateway

import (
	"context"
	"net/http"

	"github.com/mcdev12/liveworkshop/go/internal/live/broadcast"
	"github.com/rs/cors"
	"github.com/rs/zerolog/log"
)

// Config holds gateway configuration
type Config struct {
	ConnectionConfig ConnectionConfig
	AllowedOrigins   []string
}

// DefaultConfig returns the default gateway configuration
func DefaultConfig() Config {
	return Config{
		ConnectionConfig: DefaultConnectionConfig(),
		AllowedOrigins:   []string{"*"},
	}
}

// Service wires the connection manager and the HTTP handlers together.
type Service struct {
	config            Config
	connectionManager *ConnectionManager
	wsHandler         *WebSocketHandler
	stateHandler      *StateHandler
}

// NewService creates a gateway fed by transport. Snapshots for new screens
// and cold reads come from provider.
func NewService(config Config, transport broadcast.Transport, provider StateProvider) *Service {
	cm := NewConnectionManager(config.ConnectionConfig, transport)
	return &Service{
		config:            config,
		connectionManager: cm,
		wsHandler:         NewWebSocketHandler(cm, provider),
		stateHandler:      NewStateHandler(provider),
	}
}

// Start runs the connection manager until ctx is cancelled
func (s *Service) Start(ctx context.Context) {
	log.Info().Msg("starting gateway service")
	s.connectionManager.Start(ctx)
	log.Info().Msg("gateway service stopped")
}

// RegisterRoutes registers the websocket and REST routes
func (s *Service) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /ws/workshop", s.wsHandler.HandleWebSocket)
	mux.HandleFunc("GET /ws/stats", s.wsHandler.HandleStats)
	mux.HandleFunc("GET /api/workshops/{id}/state", s.stateHandler.HandleGetState)
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
}

// Handler returns the routes wrapped with CORS
func (s *Service) Handler() http.Handler {
	mux := http.NewServeMux()
	s.RegisterRoutes(mux)

	c := cors.New(cors.Options{
		AllowedOrigins: s.config.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"*"},
	})
	return c.Handler(mux)
}

// GetStats returns connection statistics
func (s *Service) GetStats() Stats {
	return s.connectionManager.GetConnectionStats()
}
