package auction

import (
	"errors"
	"fmt"
	"sync"

	"auctiondesk/internal/models"
)

var (
	ErrNoOpenSession    = errors.New("no player is on the block")
	ErrNoBidPlaced      = errors.New("no bid placed yet")
	ErrLeaderExists     = errors.New("base pick unavailable once a leader exists")
	ErrUnknownTeam      = errors.New("unknown team")
	ErrPlayerNotPending = errors.New("player is not in the pending pool")
)

// MaxLogEntries bounds the bid log kept per session.
const MaxLogEntries = 60

// LogEntry is one line of the bid log, newest first.
type LogEntry struct {
	TeamName  string `json:"team_name"`
	TeamColor string `json:"team_color"`
	Bid       int    `json:"bid"`
	Player    string `json:"player"`
}

// bidSnapshot captures the state restored by an undo. leadingTeamID 0 means
// no leader.
type bidSnapshot struct {
	bid           int
	leadingTeamID int
}

// Sale describes a completed sale for replication and overlays.
type Sale struct {
	Player         models.Player `json:"player"`
	TeamID         int           `json:"team_id"`
	TeamName       string        `json:"team_name"`
	TeamColor      string        `json:"team_color"`
	TeamLogoBase64 *string       `json:"team_logo_base64,omitempty"`
	FinalPrice     int           `json:"final_price"`
}

// Roster is what the session needs from the tournament state: team lookups,
// the player pool, and the append-only sold list.
type Roster interface {
	Team(id int) (models.Team, bool)
	Players() []models.Player
	SoldPlayers() []models.SoldPlayer
	// RecordSale appends a sold entry and marks the player sold in the pool.
	RecordSale(sale models.SoldPlayer) error
	// ReturnPlayer applies an unsold outcome: status back to pending with the
	// demoted category and/or recalculated base price.
	ReturnPlayer(playerID int, result DemotionResult) error
	// UndoLastSale removes exactly the most recent sold entry and resets that
	// player's status to pending. Reports false when the sold list is empty.
	UndoLastSale() (models.SoldPlayer, bool)
}

// Events receives every replicated session transition. Implementations must
// not call back into the session.
type Events interface {
	BiddingStarted(player models.Player, baseBid int)
	BidUpdated(currentBid, leadingTeamID int, entry LogEntry)
	Sold(sale Sale, sold []models.SoldPlayer, players []models.Player)
	Unsold(playerName string, result DemotionResult, players []models.Player)
	BiddingCancelled()
	SaleUndone(sold []models.SoldPlayer, players []models.Player)
}

// Session is the auction state machine: Closed (no player on the block) or
// Open (player up, zero or more bids placed). All operations are serialized;
// replication events are emitted in transition order before the lock is
// released.
type Session struct {
	mu     sync.Mutex
	cfg    models.TournamentConfig
	roster Roster
	events Events

	current       *models.Player
	currentBid    int
	leadingTeamID int // 0 = no leader
	log           []LogEntry
	history       []bidSnapshot
}

// NewSession creates a session in the Closed state. events may be nil when
// no spectator replication is wanted.
func NewSession(cfg models.TournamentConfig, roster Roster, events Events) *Session {
	return &Session{cfg: cfg, roster: roster, events: events}
}

// OpenBidding puts a pending player on the block. Opening over an already
// open session implicitly closes it; the new bidding-started event
// supersedes any cancel.
func (s *Session) OpenBidding(playerID int) (models.Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var player models.Player
	found := false
	for _, p := range s.roster.Players() {
		if p.ID == playerID {
			player = p
			found = true
			break
		}
	}
	if !found || player.Status != models.PlayerStatusPending {
		return models.Player{}, fmt.Errorf("open bidding for player %d: %w", playerID, ErrPlayerNotPending)
	}

	s.current = &player
	s.currentBid = player.BasePrice
	s.leadingTeamID = 0
	s.log = nil
	s.history = nil

	if s.events != nil {
		s.events.BiddingStarted(player, player.BasePrice)
	}
	return player, nil
}

// PlaceBid raises the current bid by delta on behalf of a team. A failed
// validation leaves state untouched and returns the reason; the caller
// decides how to surface it.
func (s *Session) PlaceBid(teamID, delta int) (ValidationResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return ValidationResult{}, ErrNoOpenSession
	}
	team, ok := s.roster.Team(teamID)
	if !ok {
		return ValidationResult{}, fmt.Errorf("place bid: team %d: %w", teamID, ErrUnknownTeam)
	}

	newBid := s.currentBid + delta
	result := ValidateBid(teamID, s.roster.SoldPlayers(), s.current.Category, newBid, s.cfg)
	if !result.Valid {
		return result, nil
	}

	s.history = append(s.history, bidSnapshot{bid: s.currentBid, leadingTeamID: s.leadingTeamID})
	s.currentBid = newBid
	s.leadingTeamID = teamID
	entry := LogEntry{TeamName: team.Name, TeamColor: team.Color, Bid: newBid, Player: s.current.Name}
	s.prependLog(entry)

	if s.events != nil {
		s.events.BidUpdated(newBid, teamID, entry)
	}
	return result, nil
}

// BasePick lets a team claim the player at the standing price without
// raising it. Allowed only while no leader exists.
func (s *Session) BasePick(teamID int) (ValidationResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return ValidationResult{}, ErrNoOpenSession
	}
	if s.leadingTeamID != 0 {
		return ValidationResult{}, ErrLeaderExists
	}
	team, ok := s.roster.Team(teamID)
	if !ok {
		return ValidationResult{}, fmt.Errorf("base pick: team %d: %w", teamID, ErrUnknownTeam)
	}

	result := ValidateBid(teamID, s.roster.SoldPlayers(), s.current.Category, s.currentBid, s.cfg)
	if !result.Valid {
		return result, nil
	}

	s.history = append(s.history, bidSnapshot{bid: s.currentBid, leadingTeamID: s.leadingTeamID})
	s.leadingTeamID = teamID
	entry := LogEntry{TeamName: team.Name, TeamColor: team.Color, Bid: s.currentBid, Player: s.current.Name}
	s.prependLog(entry)

	if s.events != nil {
		s.events.BidUpdated(s.currentBid, teamID, entry)
	}
	return result, nil
}

// UndoLastBid reverts the most recent bid or base pick. Reports false when
// there is nothing to undo.
func (s *Session) UndoLastBid() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil || len(s.history) == 0 {
		return false
	}
	last := s.history[len(s.history)-1]
	s.history = s.history[:len(s.history)-1]
	s.currentBid = last.bid
	s.leadingTeamID = last.leadingTeamID
	if len(s.log) > 0 {
		s.log = s.log[1:]
	}
	return true
}

// RestartBidding resets the open session back to the player's base price,
// clearing the leader, log and history without leaving the Open state.
// Intended for auctioneer error recovery.
func (s *Session) RestartBidding() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return ErrNoOpenSession
	}
	s.currentBid = s.current.BasePrice
	s.leadingTeamID = 0
	s.log = nil
	s.history = nil
	return nil
}

// ConfirmSale closes the session by selling the player to the leading team
// at the current bid. The sold event supersedes any cancel.
func (s *Session) ConfirmSale() (models.SoldPlayer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return models.SoldPlayer{}, ErrNoOpenSession
	}
	if s.leadingTeamID == 0 {
		return models.SoldPlayer{}, ErrNoBidPlaced
	}
	team, ok := s.roster.Team(s.leadingTeamID)
	if !ok {
		return models.SoldPlayer{}, fmt.Errorf("confirm sale: team %d: %w", s.leadingTeamID, ErrUnknownTeam)
	}

	snapshot := *s.current
	snapshot.Status = models.PlayerStatusSold
	entry := models.SoldPlayer{
		Player:     snapshot,
		TeamID:     team.ID,
		TeamName:   team.Name,
		TeamColor:  team.Color,
		FinalPrice: s.currentBid,
	}
	if err := s.roster.RecordSale(entry); err != nil {
		return models.SoldPlayer{}, fmt.Errorf("record sale: %w", err)
	}

	if s.events != nil {
		sale := Sale{
			Player:         snapshot,
			TeamID:         team.ID,
			TeamName:       team.Name,
			TeamColor:      team.Color,
			TeamLogoBase64: team.LogoBase64,
			FinalPrice:     s.currentBid,
		}
		s.events.Sold(sale, s.roster.SoldPlayers(), s.roster.Players())
	}

	s.reset()
	return entry, nil
}

// MarkUnsold closes the session without a sale, demoting the player to the
// next tier or halving its base price when already in the terminal tier.
func (s *Session) MarkUnsold() (DemotionResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return DemotionResult{}, ErrNoOpenSession
	}

	player := *s.current
	result := Demote(player, s.roster.Players(), s.cfg)
	if err := s.roster.ReturnPlayer(player.ID, result); err != nil {
		return DemotionResult{}, fmt.Errorf("return player %d: %w", player.ID, err)
	}

	if s.events != nil {
		s.events.Unsold(player.Name, result, s.roster.Players())
	}

	s.reset()
	return result, nil
}

// UndoLastSale reverses the single most recent sale: the sold entry is
// removed and the player returns to the pending pool with its category and
// base price untouched. Works from Closed or Open.
func (s *Session) UndoLastSale() (models.SoldPlayer, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	undone, ok := s.roster.UndoLastSale()
	if !ok {
		return models.SoldPlayer{}, false
	}
	if s.events != nil {
		s.events.SaleUndone(s.roster.SoldPlayers(), s.roster.Players())
	}
	return undone, true
}

// Cancel discards the open session without a decision. Reports false when
// nothing was open.
func (s *Session) Cancel() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return false
	}
	s.reset()
	if s.events != nil {
		s.events.BiddingCancelled()
	}
	return true
}

// Snapshot is a read-only copy of the session for API responses and sync.
type Snapshot struct {
	Open          bool           `json:"open"`
	Player        *models.Player `json:"player,omitempty"`
	CurrentBid    int            `json:"current_bid"`
	LeadingTeamID int            `json:"leading_team_id"`
	Log           []LogEntry     `json:"log"`
	HistoryDepth  int            `json:"history_depth"`
}

// Snapshot returns the current session state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		Open:          s.current != nil,
		CurrentBid:    s.currentBid,
		LeadingTeamID: s.leadingTeamID,
		Log:           append([]LogEntry(nil), s.log...),
		HistoryDepth:  len(s.history),
	}
	if s.current != nil {
		p := *s.current
		snap.Player = &p
	}
	return snap
}

func (s *Session) prependLog(entry LogEntry) {
	s.log = append([]LogEntry{entry}, s.log...)
	if len(s.log) > MaxLogEntries {
		s.log = s.log[:MaxLogEntries]
	}
}

func (s *Session) reset() {
	s.current = nil
	s.currentBid = 0
	s.leadingTeamID = 0
	s.log = nil
	s.history = nil
}
