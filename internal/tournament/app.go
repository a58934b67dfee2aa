package tournament

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"

	"auctiondesk/internal/models"
	"auctiondesk/internal/storage"
)

// App owns the persisted tournament state: configuration, teams, the player
// pool and the append-only sold list. It is the single source of truth the
// auction session and the live publisher read from. All mutations are
// serialized and written through to the store; storage failures are logged
// and never block the session (state stays correct in memory).
type App struct {
	mu    sync.RWMutex
	store storage.Store

	cfg       *models.TournamentConfig
	teams     []models.Team
	players   []models.Player
	sold      []models.SoldPlayer
	activeTab string

	nextTeamID   int
	nextPlayerID int
}

// NewApp creates an app over the given store with nothing loaded.
func NewApp(store storage.Store) *App {
	return &App{
		store:        store,
		activeTab:    "setup",
		nextTeamID:   1,
		nextPlayerID: 1,
	}
}

// Load pulls persisted state. Unreadable entries fall back to in-memory
// defaults; the session keeps operating either way.
func (a *App) Load(ctx context.Context) {
	a.mu.Lock()
	defer a.mu.Unlock()

	var cfg models.TournamentConfig
	ok, err := a.store.Get(ctx, storage.KeyConfig, &cfg)
	if err != nil {
		log.Warn().Err(err).Msg("failed to load config, starting unconfigured")
	} else if ok {
		a.cfg = &cfg
	}

	if _, err := a.store.Get(ctx, storage.KeyTeams, &a.teams); err != nil {
		log.Warn().Err(err).Msg("failed to load teams, starting empty")
		a.teams = nil
	}
	if _, err := a.store.Get(ctx, storage.KeyPlayers, &a.players); err != nil {
		log.Warn().Err(err).Msg("failed to load players, starting empty")
		a.players = nil
	}
	if _, err := a.store.Get(ctx, storage.KeySoldPlayers, &a.sold); err != nil {
		log.Warn().Err(err).Msg("failed to load sold players, starting empty")
		a.sold = nil
	}
	var tab string
	if ok, err := a.store.Get(ctx, storage.KeyActiveTab, &tab); err == nil && ok && tab != "" {
		a.activeTab = tab
	}

	for _, t := range a.teams {
		if t.ID >= a.nextTeamID {
			a.nextTeamID = t.ID + 1
		}
	}
	for _, p := range a.players {
		if p.ID >= a.nextPlayerID {
			a.nextPlayerID = p.ID + 1
		}
	}

	log.Info().
		Bool("configured", a.cfg != nil).
		Int("teams", len(a.teams)).
		Int("players", len(a.players)).
		Int("sold", len(a.sold)).
		Msg("tournament state loaded")
}

// persist writes one key through to the store, logging failures.
func (a *App) persist(ctx context.Context, key string, v interface{}) {
	if err := a.store.Put(ctx, key, v); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("failed to persist state")
	}
}

// Launched reports whether a config entry exists, the signal that setup has
// completed.
func (a *App) Launched() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.cfg != nil
}

// Config returns the active configuration, or the zero value before launch.
func (a *App) Config() models.TournamentConfig {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.cfg == nil {
		return models.TournamentConfig{}
	}
	return *a.cfg
}

// Launch validates and stores the tournament configuration. Field errors
// are returned for the operator; nothing changes unless they are empty.
func (a *App) Launch(ctx context.Context, cfg models.TournamentConfig) []FieldError {
	if errs := ValidateConfig(cfg); len(errs) > 0 {
		return errs
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.cfg = &cfg
	a.persist(ctx, storage.KeyConfig, cfg)
	log.Info().Str("tournament", cfg.TournamentName).Int("teams", cfg.TotalTeams).Msg("tournament launched")
	return nil
}

// Reset wipes all tournament state, returning to the unconfigured screen.
func (a *App) Reset(ctx context.Context) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.cfg = nil
	a.teams = nil
	a.players = nil
	a.sold = nil
	a.activeTab = "setup"
	a.nextTeamID = 1
	a.nextPlayerID = 1

	for _, key := range []string{
		storage.KeyConfig, storage.KeyTeams, storage.KeyPlayers,
		storage.KeySoldPlayers, storage.KeyActiveTab,
	} {
		if err := a.store.Delete(ctx, key); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("failed to delete state entry")
		}
	}
	log.Info().Msg("tournament reset")
}

// Teams returns a copy of the team list.
func (a *App) Teams() []models.Team {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return append([]models.Team(nil), a.teams...)
}

// Players returns a copy of the player pool.
func (a *App) Players() []models.Player {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return append([]models.Player(nil), a.players...)
}

// SoldPlayers returns a copy of the sold list in sale order.
func (a *App) SoldPlayers() []models.SoldPlayer {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return append([]models.SoldPlayer(nil), a.sold...)
}

// Team looks a team up by id.
func (a *App) Team(id int) (models.Team, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	for _, t := range a.teams {
		if t.ID == id {
			return t, true
		}
	}
	return models.Team{}, false
}

// ActiveTab returns the persisted control tab.
func (a *App) ActiveTab() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.activeTab
}

// SetActiveTab persists the control tab selection.
func (a *App) SetActiveTab(ctx context.Context, tab string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.activeTab = tab
	a.persist(ctx, storage.KeyActiveTab, tab)
}

// CreateTeamRequest carries the team entry form.
type CreateTeamRequest struct {
	Name          string  `json:"name"`
	Captain       string  `json:"captain"`
	Color         string  `json:"color"`
	LogoBase64    *string `json:"logo_base64,omitempty"`
	CaptainBase64 *string `json:"captain_base64,omitempty"`
}

// CreateTeam adds a team during setup. Team count is capped by the config.
func (a *App) CreateTeam(ctx context.Context, req CreateTeamRequest) (models.Team, error) {
	if errs := ValidateTeamForm(req.Name, req.Captain); len(errs) > 0 {
		return models.Team{}, fmt.Errorf("%w: %s", ErrInvalidInput, errs[0].Message)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.cfg == nil {
		return models.Team{}, ErrNotLaunched
	}
	if len(a.teams) >= a.cfg.TotalTeams {
		return models.Team{}, fmt.Errorf("%w: config allows %d teams", ErrTeamLimit, a.cfg.TotalTeams)
	}

	team := models.Team{
		ID:            a.nextTeamID,
		Name:          strings.TrimSpace(req.Name),
		Captain:       strings.TrimSpace(req.Captain),
		Color:         req.Color,
		LogoBase64:    req.LogoBase64,
		CaptainBase64: req.CaptainBase64,
	}
	if team.Color == "" {
		team.Color = DefaultTeamColors[(team.ID-1)%len(DefaultTeamColors)]
	}
	a.nextTeamID++
	a.teams = append(a.teams, team)
	a.persist(ctx, storage.KeyTeams, a.teams)

	log.Info().Int("team_id", team.ID).Str("name", team.Name).Msg("team created")
	return team, nil
}

// UpdateTeamRequest carries team edits; nil fields are left unchanged.
type UpdateTeamRequest struct {
	Name          *string `json:"name,omitempty"`
	Captain       *string `json:"captain,omitempty"`
	Color         *string `json:"color,omitempty"`
	LogoBase64    *string `json:"logo_base64,omitempty"`
	CaptainBase64 *string `json:"captain_base64,omitempty"`
}

// UpdateTeam edits a team. Renaming or recoloring re-syncs the identity
// fields captured on that team's sold entries.
func (a *App) UpdateTeam(ctx context.Context, id int, req UpdateTeamRequest) (models.Team, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	idx := -1
	for i, t := range a.teams {
		if t.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return models.Team{}, fmt.Errorf("update team %d: %w", id, ErrTeamNotFound)
	}

	team := a.teams[idx]
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return models.Team{}, fmt.Errorf("%w: team name is required", ErrInvalidInput)
		}
		team.Name = name
	}
	if req.Captain != nil {
		captain := strings.TrimSpace(*req.Captain)
		if captain == "" {
			return models.Team{}, fmt.Errorf("%w: captain name is required", ErrInvalidInput)
		}
		team.Captain = captain
	}
	if req.Color != nil {
		team.Color = *req.Color
	}
	if req.LogoBase64 != nil {
		team.LogoBase64 = req.LogoBase64
	}
	if req.CaptainBase64 != nil {
		team.CaptainBase64 = req.CaptainBase64
	}
	a.teams[idx] = team

	// Keep sale-time identity snapshots in sync with the edited team.
	soldChanged := false
	for i := range a.sold {
		if a.sold[i].TeamID == id {
			a.sold[i].TeamName = team.Name
			a.sold[i].TeamColor = team.Color
			soldChanged = true
		}
	}

	a.persist(ctx, storage.KeyTeams, a.teams)
	if soldChanged {
		a.persist(ctx, storage.KeySoldPlayers, a.sold)
	}
	return team, nil
}

// DeleteTeam removes a team during setup. Teams referenced by sold entries
// cannot be removed.
func (a *App) DeleteTeam(ctx context.Context, id int) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	for _, s := range a.sold {
		if s.TeamID == id {
			return fmt.Errorf("delete team %d: %w", id, ErrTeamHasPlayers)
		}
	}
	for i, t := range a.teams {
		if t.ID == id {
			a.teams = append(a.teams[:i], a.teams[i+1:]...)
			a.persist(ctx, storage.KeyTeams, a.teams)
			return nil
		}
	}
	return fmt.Errorf("delete team %d: %w", id, ErrTeamNotFound)
}

// CreatePlayerRequest carries the player entry form.
type CreatePlayerRequest struct {
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Category    string  `json:"category"`
	BasePrice   int     `json:"base_price"`
	PhotoBase64 *string `json:"photo_base64,omitempty"`
}

// CreatePlayer adds a pending player to the pool.
func (a *App) CreatePlayer(ctx context.Context, req CreatePlayerRequest) (models.Player, error) {
	if errs := ValidatePlayerForm(req.Name, req.BasePrice); len(errs) > 0 {
		return models.Player{}, fmt.Errorf("%w: %s", ErrInvalidInput, errs[0].Message)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.cfg == nil {
		return models.Player{}, ErrNotLaunched
	}
	if a.cfg.CategoryIndex(req.Category) < 0 {
		return models.Player{}, fmt.Errorf("%w: unknown category %q", ErrInvalidInput, req.Category)
	}

	player := models.Player{
		ID:          a.nextPlayerID,
		Name:        strings.TrimSpace(req.Name),
		Description: strings.TrimSpace(req.Description),
		Category:    req.Category,
		BasePrice:   req.BasePrice,
		Status:      models.PlayerStatusPending,
		PhotoBase64: req.PhotoBase64,
	}
	a.nextPlayerID++
	a.players = append(a.players, player)
	a.persist(ctx, storage.KeyPlayers, a.players)

	log.Info().Int("player_id", player.ID).Str("name", player.Name).Str("category", player.Category).Msg("player created")
	return player, nil
}

// UpdatePlayerRequest carries player edits; nil fields are left unchanged.
type UpdatePlayerRequest struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	Category    *string `json:"category,omitempty"`
	BasePrice   *int    `json:"base_price,omitempty"`
	PhotoBase64 *string `json:"photo_base64,omitempty"`
}

// UpdatePlayer edits a pending player. Players already sold keep their
// snapshot untouched.
func (a *App) UpdatePlayer(ctx context.Context, id int, req UpdatePlayerRequest) (models.Player, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	idx := -1
	for i, p := range a.players {
		if p.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return models.Player{}, fmt.Errorf("update player %d: %w", id, ErrPlayerNotFound)
	}
	player := a.players[idx]
	if player.Status == models.PlayerStatusSold {
		return models.Player{}, fmt.Errorf("update player %d: %w", id, ErrPlayerNotPending)
	}

	if req.Name != nil {
		if errs := ValidatePlayerForm(*req.Name, player.BasePrice); len(errs) > 0 {
			return models.Player{}, fmt.Errorf("%w: %s", ErrInvalidInput, errs[0].Message)
		}
		player.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		player.Description = strings.TrimSpace(*req.Description)
	}
	if req.Category != nil {
		if a.cfg == nil || a.cfg.CategoryIndex(*req.Category) < 0 {
			return models.Player{}, fmt.Errorf("%w: unknown category %q", ErrInvalidInput, *req.Category)
		}
		player.Category = *req.Category
	}
	if req.BasePrice != nil {
		if *req.BasePrice < 1 {
			return models.Player{}, fmt.Errorf("%w: base price must be a positive number", ErrInvalidInput)
		}
		player.BasePrice = *req.BasePrice
	}
	if req.PhotoBase64 != nil {
		player.PhotoBase64 = req.PhotoBase64
	}

	a.players[idx] = player
	a.persist(ctx, storage.KeyPlayers, a.players)
	return player, nil
}

// DeletePlayer removes a pending player from the pool.
func (a *App) DeletePlayer(ctx context.Context, id int) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	for i, p := range a.players {
		if p.ID != id {
			continue
		}
		if p.Status == models.PlayerStatusSold {
			return fmt.Errorf("delete player %d: %w", id, ErrPlayerNotPending)
		}
		a.players = append(a.players[:i], a.players[i+1:]...)
		a.persist(ctx, storage.KeyPlayers, a.players)
		return nil
	}
	return fmt.Errorf("delete player %d: %w", id, ErrPlayerNotFound)
}
