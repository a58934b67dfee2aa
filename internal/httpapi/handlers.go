package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"auctiondesk/internal/auction"
	"auctiondesk/internal/live/broadcast"
	"auctiondesk/internal/models"
	"auctiondesk/internal/tournament"
)

// Handlers serves the control API. It owns the live auction session, which
// exists only while a tournament is launched and is rebuilt whenever the
// configuration changes.
type Handlers struct {
	app  *tournament.App
	live *broadcast.Publisher

	mu      sync.Mutex
	session *auction.Session
}

// NewHandlers wires the control API over the tournament state and the live
// publisher. A session is restored immediately when persisted state says the
// tournament is already launched.
func NewHandlers(app *tournament.App, live *broadcast.Publisher) *Handlers {
	h := &Handlers{app: app, live: live}
	if app.Launched() {
		h.session = auction.NewSession(app.Config(), app, live)
	}
	return h
}

func (h *Handlers) currentSession() *auction.Session {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.session
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("failed to encode response")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, tournament.ErrTeamNotFound),
		errors.Is(err, tournament.ErrPlayerNotFound):
		return http.StatusNotFound
	case errors.Is(err, tournament.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, tournament.ErrNotLaunched),
		errors.Is(err, tournament.ErrTeamLimit),
		errors.Is(err, tournament.ErrTeamHasPlayers),
		errors.Is(err, tournament.ErrPlayerNotPending),
		errors.Is(err, auction.ErrNoOpenSession),
		errors.Is(err, auction.ErrNoBidPlaced),
		errors.Is(err, auction.ErrLeaderExists),
		errors.Is(err, auction.ErrPlayerNotPending):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func writeDomainErr(w http.ResponseWriter, err error) {
	writeError(w, statusFor(err), err.Error())
}

func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

func idParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id < 1 {
		writeError(w, http.StatusBadRequest, "invalid id")
		return 0, false
	}
	return id, true
}

// StateResponse is the full control-panel state in one round trip.
type StateResponse struct {
	Launched    bool                     `json:"launched"`
	Config      *models.TournamentConfig `json:"config,omitempty"`
	Teams       []models.Team            `json:"teams"`
	Players     []models.Player          `json:"players"`
	SoldPlayers []models.SoldPlayer      `json:"sold_players"`
	ActiveTab   string                   `json:"active_tab"`
	Session     auction.Snapshot         `json:"session"`
	Summaries   []tournament.TeamSummary `json:"summaries"`
	Pending     map[string]int           `json:"pending_by_category"`
	Defaults    *models.TournamentConfig `json:"defaults,omitempty"`
}

// GetState handles GET /api/state.
func (h *Handlers) GetState(w http.ResponseWriter, r *http.Request) {
	resp := StateResponse{
		Launched:    h.app.Launched(),
		Teams:       h.app.Teams(),
		Players:     h.app.Players(),
		SoldPlayers: h.app.SoldPlayers(),
		ActiveTab:   h.app.ActiveTab(),
		Summaries:   h.app.TeamSummaries(),
		Pending:     h.app.PendingByCategory(),
	}
	if resp.Launched {
		cfg := h.app.Config()
		resp.Config = &cfg
	} else {
		defaults := tournament.DefaultConfig()
		resp.Defaults = &defaults
	}
	if s := h.currentSession(); s != nil {
		resp.Session = s.Snapshot()
	}
	writeJSON(w, http.StatusOK, resp)
}

// Launch handles POST /api/config: validate and store the configuration,
// then bring up a fresh auction session.
func (h *Handlers) Launch(w http.ResponseWriter, r *http.Request) {
	var cfg models.TournamentConfig
	if !decodeBody(w, r, &cfg) {
		return
	}
	if errs := h.app.Launch(r.Context(), cfg); len(errs) > 0 {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{"errors": errs})
		return
	}

	h.mu.Lock()
	h.session = auction.NewSession(h.app.Config(), h.app, h.live)
	h.mu.Unlock()

	writeJSON(w, http.StatusCreated, h.app.Config())
}

// Reset handles POST /api/reset: wipe everything and tear the session down.
func (h *Handlers) Reset(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	if h.session != nil {
		h.session.Cancel()
	}
	h.session = nil
	h.mu.Unlock()

	h.app.Reset(r.Context())
	h.live.ShowIdle()
	writeJSON(w, http.StatusOK, nil)
}

// SetTab handles PUT /api/tab.
func (h *Handlers) SetTab(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Tab string `json:"tab"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	h.app.SetActiveTab(r.Context(), req.Tab)
	writeJSON(w, http.StatusOK, nil)
}

// CreateTeam handles POST /api/teams.
func (h *Handlers) CreateTeam(w http.ResponseWriter, r *http.Request) {
	var req tournament.CreateTeamRequest
	if !decodeBody(w, r, &req) {
		return
	}
	team, err := h.app.CreateTeam(r.Context(), req)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, team)
}

// UpdateTeam handles PATCH /api/teams/{id}.
func (h *Handlers) UpdateTeam(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	var req tournament.UpdateTeamRequest
	if !decodeBody(w, r, &req) {
		return
	}
	team, err := h.app.UpdateTeam(r.Context(), id, req)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, team)
}

// DeleteTeam handles DELETE /api/teams/{id}.
func (h *Handlers) DeleteTeam(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	if err := h.app.DeleteTeam(r.Context(), id); err != nil {
		writeDomainErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nil)
}

// CreatePlayer handles POST /api/players.
func (h *Handlers) CreatePlayer(w http.ResponseWriter, r *http.Request) {
	var req tournament.CreatePlayerRequest
	if !decodeBody(w, r, &req) {
		return
	}
	player, err := h.app.CreatePlayer(r.Context(), req)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, player)
}

// UpdatePlayer handles PATCH /api/players/{id}.
func (h *Handlers) UpdatePlayer(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	var req tournament.UpdatePlayerRequest
	if !decodeBody(w, r, &req) {
		return
	}
	player, err := h.app.UpdatePlayer(r.Context(), id, req)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, player)
}

// DeletePlayer handles DELETE /api/players/{id}.
func (h *Handlers) DeletePlayer(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	if err := h.app.DeletePlayer(r.Context(), id); err != nil {
		writeDomainErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nil)
}

// OpenBidding handles POST /api/auction/open.
func (h *Handlers) OpenBidding(w http.ResponseWriter, r *http.Request) {
	s := h.currentSession()
	if s == nil {
		writeDomainErr(w, tournament.ErrNotLaunched)
		return
	}
	var req struct {
		PlayerID int `json:"player_id"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	player, err := s.OpenBidding(req.PlayerID)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, player)
}

// bidResponse carries the validation outcome alongside the fresh session
// state, so the control panel can show the reason without another fetch.
type bidResponse struct {
	auction.ValidationResult
	Session auction.Snapshot `json:"session"`
}

// PlaceBid handles POST /api/auction/bid. A missing delta raises by the
// tier increment for the standing bid.
func (h *Handlers) PlaceBid(w http.ResponseWriter, r *http.Request) {
	s := h.currentSession()
	if s == nil {
		writeDomainErr(w, tournament.ErrNotLaunched)
		return
	}
	var req struct {
		TeamID int `json:"team_id"`
		Delta  int `json:"delta,omitempty"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	delta := req.Delta
	if delta == 0 {
		delta = auction.ActiveIncrement(s.Snapshot().CurrentBid)
	}
	result, err := s.PlaceBid(req.TeamID, delta)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	status := http.StatusOK
	if !result.Valid {
		status = http.StatusUnprocessableEntity
	}
	writeJSON(w, status, bidResponse{ValidationResult: result, Session: s.Snapshot()})
}

// BasePick handles POST /api/auction/base-pick.
func (h *Handlers) BasePick(w http.ResponseWriter, r *http.Request) {
	s := h.currentSession()
	if s == nil {
		writeDomainErr(w, tournament.ErrNotLaunched)
		return
	}
	var req struct {
		TeamID int `json:"team_id"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	result, err := s.BasePick(req.TeamID)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	status := http.StatusOK
	if !result.Valid {
		status = http.StatusUnprocessableEntity
	}
	writeJSON(w, status, bidResponse{ValidationResult: result, Session: s.Snapshot()})
}

// UndoBid handles POST /api/auction/undo-bid.
func (h *Handlers) UndoBid(w http.ResponseWriter, r *http.Request) {
	s := h.currentSession()
	if s == nil {
		writeDomainErr(w, tournament.ErrNotLaunched)
		return
	}
	if !s.UndoLastBid() {
		writeError(w, http.StatusConflict, "nothing to undo")
		return
	}
	writeJSON(w, http.StatusOK, s.Snapshot())
}

// RestartBidding handles POST /api/auction/restart.
func (h *Handlers) RestartBidding(w http.ResponseWriter, r *http.Request) {
	s := h.currentSession()
	if s == nil {
		writeDomainErr(w, tournament.ErrNotLaunched)
		return
	}
	if err := s.RestartBidding(); err != nil {
		writeDomainErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.Snapshot())
}

// ConfirmSale handles POST /api/auction/sale.
func (h *Handlers) ConfirmSale(w http.ResponseWriter, r *http.Request) {
	s := h.currentSession()
	if s == nil {
		writeDomainErr(w, tournament.ErrNotLaunched)
		return
	}
	sale, err := s.ConfirmSale()
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sale)
}

// MarkUnsold handles POST /api/auction/unsold.
func (h *Handlers) MarkUnsold(w http.ResponseWriter, r *http.Request) {
	s := h.currentSession()
	if s == nil {
		writeDomainErr(w, tournament.ErrNotLaunched)
		return
	}
	result, err := s.MarkUnsold()
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// UndoSale handles POST /api/auction/undo-sale.
func (h *Handlers) UndoSale(w http.ResponseWriter, r *http.Request) {
	s := h.currentSession()
	if s == nil {
		writeDomainErr(w, tournament.ErrNotLaunched)
		return
	}
	undone, ok := s.UndoLastSale()
	if !ok {
		writeError(w, http.StatusConflict, "no sale to undo")
		return
	}
	writeJSON(w, http.StatusOK, undone)
}

// CancelBidding handles POST /api/auction/cancel.
func (h *Handlers) CancelBidding(w http.ResponseWriter, r *http.Request) {
	s := h.currentSession()
	if s == nil {
		writeDomainErr(w, tournament.ErrNotLaunched)
		return
	}
	if !s.Cancel() {
		writeError(w, http.StatusConflict, "no open bidding")
		return
	}
	writeJSON(w, http.StatusOK, nil)
}

// ShowSquads handles POST /api/live/show-squads.
func (h *Handlers) ShowSquads(w http.ResponseWriter, r *http.Request) {
	h.live.ShowSquads()
	writeJSON(w, http.StatusOK, nil)
}

// ShowIdle handles POST /api/live/show-idle.
func (h *Handlers) ShowIdle(w http.ResponseWriter, r *http.Request) {
	h.live.ShowIdle()
	writeJSON(w, http.StatusOK, nil)
}

// Healthz handles GET /healthz.
func (h *Handlers) Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}
