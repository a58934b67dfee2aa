package gateway

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"auctiondesk/internal/live/bus"
	"auctiondesk/internal/live/viewer"
)

// Gateway hosts the spectator side: a viewer reconstructing auction state
// from the live channel, fanned out to browsers over WebSocket.
type Gateway struct {
	viewer  *viewer.Viewer
	manager *ConnectionManager
}

// New builds a gateway over the live channel.
func New(b bus.Bus, clock clockwork.Clock, config ConnectionConfig) *Gateway {
	g := &Gateway{manager: NewConnectionManager(config)}
	g.viewer = viewer.New(b, clock, g.onSnapshot)
	return g
}

// Run drives the viewer until ctx is done, then disconnects all spectators.
func (g *Gateway) Run(ctx context.Context) error {
	defer g.manager.CloseAll()
	return g.viewer.Run(ctx)
}

// onSnapshot fans every viewer change out to all spectators.
func (g *Gateway) onSnapshot(snap viewer.Snapshot) {
	data, err := json.Marshal(snap)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal viewer snapshot")
		return
	}
	g.manager.Broadcast(data)
}

// HandleWS upgrades a spectator connection. The current snapshot is queued
// immediately so a late joiner renders without waiting for the next change.
func (g *Gateway) HandleWS(w http.ResponseWriter, r *http.Request) {
	initial, err := json.Marshal(g.viewer.Snapshot())
	if err != nil {
		http.Error(w, "failed to snapshot state", http.StatusInternalServerError)
		return
	}
	if err := g.manager.UpgradeConnection(w, r, initial); err != nil {
		log.Error().Err(err).Msg("failed to upgrade spectator connection")
	}
}

// HandleState serves the current viewer snapshot over plain HTTP, for
// debugging and non-WebSocket consumers.
func (g *Gateway) HandleState(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(g.viewer.Snapshot()); err != nil {
		log.Error().Err(err).Msg("failed to encode viewer snapshot")
	}
}

// Routes mounts the spectator endpoints.
func (g *Gateway) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.Get("/ws", g.HandleWS)
	r.Get("/api/view", g.HandleState)
	return r
}
