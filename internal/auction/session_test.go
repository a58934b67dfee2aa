package auction

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"auctiondesk/internal/models"
)

// fakeRoster is an in-memory Roster for session tests.
type fakeRoster struct {
	teams   map[int]models.Team
	players []models.Player
	sold    []models.SoldPlayer
}

func newFakeRoster(players ...models.Player) *fakeRoster {
	return &fakeRoster{
		teams: map[int]models.Team{
			1: {ID: 1, Name: "Strikers", Color: "#e63946"},
			2: {ID: 2, Name: "Titans", Color: "#2a9d8f"},
		},
		players: players,
	}
}

func (r *fakeRoster) Team(id int) (models.Team, bool) {
	t, ok := r.teams[id]
	return t, ok
}

func (r *fakeRoster) Players() []models.Player {
	return append([]models.Player(nil), r.players...)
}

func (r *fakeRoster) SoldPlayers() []models.SoldPlayer {
	return append([]models.SoldPlayer(nil), r.sold...)
}

func (r *fakeRoster) RecordSale(sale models.SoldPlayer) error {
	for i, p := range r.players {
		if p.ID == sale.Player.ID {
			r.players[i].Status = models.PlayerStatusSold
			r.sold = append(r.sold, sale)
			return nil
		}
	}
	return fmt.Errorf("player %d not in pool", sale.Player.ID)
}

func (r *fakeRoster) ReturnPlayer(playerID int, result DemotionResult) error {
	for i, p := range r.players {
		if p.ID == playerID {
			r.players[i].Status = models.PlayerStatusPending
			if result.Demoted {
				r.players[i].Category = result.NewCategory
			}
			r.players[i].BasePrice = result.NewBasePrice
			return nil
		}
	}
	return fmt.Errorf("player %d not in pool", playerID)
}

func (r *fakeRoster) UndoLastSale() (models.SoldPlayer, bool) {
	if len(r.sold) == 0 {
		return models.SoldPlayer{}, false
	}
	last := r.sold[len(r.sold)-1]
	r.sold = r.sold[:len(r.sold)-1]
	for i, p := range r.players {
		if p.ID == last.Player.ID {
			r.players[i].Status = models.PlayerStatusPending
			r.players[i].Category = last.Player.Category
			r.players[i].BasePrice = last.Player.BasePrice
		}
	}
	return last, true
}

// recordingEvents captures the order of emitted replication events.
type recordingEvents struct {
	calls []string
}

func (e *recordingEvents) BiddingStarted(player models.Player, baseBid int) {
	e.calls = append(e.calls, fmt.Sprintf("start:%s@%d", player.Name, baseBid))
}

func (e *recordingEvents) BidUpdated(currentBid, leadingTeamID int, entry LogEntry) {
	e.calls = append(e.calls, fmt.Sprintf("bid:%d@%d", leadingTeamID, currentBid))
}

func (e *recordingEvents) Sold(sale Sale, sold []models.SoldPlayer, players []models.Player) {
	e.calls = append(e.calls, fmt.Sprintf("sold:%s@%d", sale.Player.Name, sale.FinalPrice))
}

func (e *recordingEvents) Unsold(playerName string, result DemotionResult, players []models.Player) {
	e.calls = append(e.calls, "unsold:"+playerName)
}

func (e *recordingEvents) BiddingCancelled() {
	e.calls = append(e.calls, "cancel")
}

func (e *recordingEvents) SaleUndone(sold []models.SoldPlayer, players []models.Player) {
	e.calls = append(e.calls, "undo-sale")
}

func newTestSession(players ...models.Player) (*Session, *fakeRoster, *recordingEvents) {
	roster := newFakeRoster(players...)
	events := &recordingEvents{}
	return NewSession(testConfig(), roster, events), roster, events
}

func TestOpenBidding(t *testing.T) {
	s, _, events := newTestSession(pendingPlayer(10, "Gold", 200))

	player, err := s.OpenBidding(10)
	require.NoError(t, err)
	assert.Equal(t, 10, player.ID)

	snap := s.Snapshot()
	assert.True(t, snap.Open)
	assert.Equal(t, 200, snap.CurrentBid)
	assert.Equal(t, 0, snap.LeadingTeamID)
	assert.Equal(t, []string{"start:p@200"}, events.calls)
}

func TestOpenBidding_RejectsNonPending(t *testing.T) {
	sold := pendingPlayer(10, "Gold", 200)
	sold.Status = models.PlayerStatusSold
	s, _, _ := newTestSession(sold)

	_, err := s.OpenBidding(10)
	assert.ErrorIs(t, err, ErrPlayerNotPending)

	_, err = s.OpenBidding(99)
	assert.ErrorIs(t, err, ErrPlayerNotPending)
}

func TestOpenBidding_ImplicitlyReplacesOpenSession(t *testing.T) {
	s, _, _ := newTestSession(pendingPlayer(10, "Gold", 200), pendingPlayer(11, "Silver", 100))

	_, err := s.OpenBidding(10)
	require.NoError(t, err)
	_, err = s.PlaceBid(1, 20)
	require.NoError(t, err)

	_, err = s.OpenBidding(11)
	require.NoError(t, err)

	snap := s.Snapshot()
	assert.Equal(t, 11, snap.Player.ID)
	assert.Equal(t, 100, snap.CurrentBid)
	assert.Equal(t, 0, snap.LeadingTeamID)
	assert.Empty(t, snap.Log)
}

func TestPlaceBid(t *testing.T) {
	s, _, events := newTestSession(pendingPlayer(10, "Gold", 200))
	_, err := s.OpenBidding(10)
	require.NoError(t, err)

	result, err := s.PlaceBid(1, 20)
	require.NoError(t, err)
	assert.True(t, result.Valid)

	result, err = s.PlaceBid(2, 20)
	require.NoError(t, err)
	assert.True(t, result.Valid)

	snap := s.Snapshot()
	assert.Equal(t, 240, snap.CurrentBid)
	assert.Equal(t, 2, snap.LeadingTeamID)
	require.Len(t, snap.Log, 2)
	assert.Equal(t, "Titans", snap.Log[0].TeamName)
	assert.Equal(t, 240, snap.Log[0].Bid)
	assert.Equal(t, []string{"start:p@200", "bid:1@220", "bid:2@240"}, events.calls)
}

func TestPlaceBid_InvalidLeavesStateUntouched(t *testing.T) {
	s, _, events := newTestSession(pendingPlayer(10, "Gold", 200))
	_, err := s.OpenBidding(10)
	require.NoError(t, err)

	// 200 + 2300 blows past the 2400 cap.
	result, err := s.PlaceBid(1, 2300)
	require.NoError(t, err)
	assert.False(t, result.Valid)
	assert.Contains(t, result.Reason, "Bid cap exceeded")

	snap := s.Snapshot()
	assert.Equal(t, 200, snap.CurrentBid)
	assert.Equal(t, 0, snap.LeadingTeamID)
	assert.Empty(t, snap.Log)
	assert.Equal(t, []string{"start:p@200"}, events.calls)
}

func TestPlaceBid_Closed(t *testing.T) {
	s, _, _ := newTestSession(pendingPlayer(10, "Gold", 200))
	_, err := s.PlaceBid(1, 20)
	assert.ErrorIs(t, err, ErrNoOpenSession)
}

func TestPlaceBid_UnknownTeam(t *testing.T) {
	s, _, _ := newTestSession(pendingPlayer(10, "Gold", 200))
	_, err := s.OpenBidding(10)
	require.NoError(t, err)

	_, err = s.PlaceBid(9, 20)
	assert.ErrorIs(t, err, ErrUnknownTeam)
}

func TestBasePick(t *testing.T) {
	s, _, events := newTestSession(pendingPlayer(10, "Gold", 200))
	_, err := s.OpenBidding(10)
	require.NoError(t, err)

	result, err := s.BasePick(1)
	require.NoError(t, err)
	assert.True(t, result.Valid)

	snap := s.Snapshot()
	assert.Equal(t, 200, snap.CurrentBid)
	assert.Equal(t, 1, snap.LeadingTeamID)
	assert.Equal(t, []string{"start:p@200", "bid:1@200"}, events.calls)
}

func TestBasePick_BlockedOnceLeaderExists(t *testing.T) {
	s, _, _ := newTestSession(pendingPlayer(10, "Gold", 200))
	_, err := s.OpenBidding(10)
	require.NoError(t, err)

	_, err = s.PlaceBid(1, 20)
	require.NoError(t, err)

	_, err = s.BasePick(2)
	assert.ErrorIs(t, err, ErrLeaderExists)

	// A base pick also counts as a leader.
	_, err = s.OpenBidding(10)
	require.NoError(t, err)
	_, err = s.BasePick(1)
	require.NoError(t, err)
	_, err = s.BasePick(2)
	assert.ErrorIs(t, err, ErrLeaderExists)
}

func TestUndoLastBid_IsExactInverse(t *testing.T) {
	s, _, _ := newTestSession(pendingPlayer(10, "Gold", 200))
	_, err := s.OpenBidding(10)
	require.NoError(t, err)

	before := s.Snapshot()

	_, err = s.PlaceBid(1, 20)
	require.NoError(t, err)
	require.True(t, s.UndoLastBid())

	after := s.Snapshot()
	assert.Equal(t, before.CurrentBid, after.CurrentBid)
	assert.Equal(t, before.LeadingTeamID, after.LeadingTeamID)
	assert.Equal(t, len(before.Log), len(after.Log))
}

func TestUndoLastBid_Chain(t *testing.T) {
	s, _, _ := newTestSession(pendingPlayer(10, "Gold", 200))
	_, err := s.OpenBidding(10)
	require.NoError(t, err)

	_, _ = s.PlaceBid(1, 20)
	_, _ = s.PlaceBid(2, 20)
	_, _ = s.PlaceBid(1, 50)

	require.True(t, s.UndoLastBid())
	snap := s.Snapshot()
	assert.Equal(t, 240, snap.CurrentBid)
	assert.Equal(t, 2, snap.LeadingTeamID)

	require.True(t, s.UndoLastBid())
	require.True(t, s.UndoLastBid())
	snap = s.Snapshot()
	assert.Equal(t, 200, snap.CurrentBid)
	assert.Equal(t, 0, snap.LeadingTeamID)

	assert.False(t, s.UndoLastBid())
}

func TestRestartBidding(t *testing.T) {
	s, _, _ := newTestSession(pendingPlayer(10, "Gold", 200))
	_, err := s.OpenBidding(10)
	require.NoError(t, err)
	_, _ = s.PlaceBid(1, 20)
	_, _ = s.PlaceBid(2, 20)

	require.NoError(t, s.RestartBidding())

	snap := s.Snapshot()
	assert.True(t, snap.Open)
	assert.Equal(t, 200, snap.CurrentBid)
	assert.Equal(t, 0, snap.LeadingTeamID)
	assert.Empty(t, snap.Log)
	assert.Equal(t, 0, snap.HistoryDepth)

	require.True(t, s.Cancel())
	assert.ErrorIs(t, s.RestartBidding(), ErrNoOpenSession)
}

func TestConfirmSale(t *testing.T) {
	s, roster, events := newTestSession(pendingPlayer(10, "Gold", 200))
	_, err := s.OpenBidding(10)
	require.NoError(t, err)
	_, _ = s.PlaceBid(1, 20)

	entry, err := s.ConfirmSale()
	require.NoError(t, err)
	assert.Equal(t, 220, entry.FinalPrice)
	assert.Equal(t, 1, entry.TeamID)
	assert.Equal(t, "Strikers", entry.TeamName)
	assert.Equal(t, models.PlayerStatusSold, entry.Player.Status)

	assert.Equal(t, models.PlayerStatusSold, roster.players[0].Status)
	require.Len(t, roster.sold, 1)

	snap := s.Snapshot()
	assert.False(t, snap.Open)
	assert.Equal(t, "sold:p@220", events.calls[len(events.calls)-1])
}

func TestConfirmSale_RequiresLeader(t *testing.T) {
	s, _, _ := newTestSession(pendingPlayer(10, "Gold", 200))

	_, err := s.ConfirmSale()
	assert.ErrorIs(t, err, ErrNoOpenSession)

	_, err = s.OpenBidding(10)
	require.NoError(t, err)
	_, err = s.ConfirmSale()
	assert.ErrorIs(t, err, ErrNoBidPlaced)
}

func TestMarkUnsold_DemotesAndReturns(t *testing.T) {
	s, roster, events := newTestSession(
		pendingPlayer(10, "Gold", 500),
		pendingPlayer(11, "Silver", 150),
	)
	_, err := s.OpenBidding(10)
	require.NoError(t, err)

	result, err := s.MarkUnsold()
	require.NoError(t, err)
	assert.True(t, result.Demoted)
	assert.Equal(t, "Silver", result.NewCategory)
	assert.Equal(t, 150, result.NewBasePrice)

	assert.Equal(t, "Silver", roster.players[0].Category)
	assert.Equal(t, 150, roster.players[0].BasePrice)
	assert.Equal(t, models.PlayerStatusPending, roster.players[0].Status)

	snap := s.Snapshot()
	assert.False(t, snap.Open)
	assert.Equal(t, "unsold:p", events.calls[len(events.calls)-1])
}

func TestMarkUnsold_TerminalTierHalves(t *testing.T) {
	s, roster, _ := newTestSession(pendingPlayer(10, "Bronze", 100))
	_, err := s.OpenBidding(10)
	require.NoError(t, err)

	result, err := s.MarkUnsold()
	require.NoError(t, err)
	assert.True(t, result.HalvedInPlace)
	assert.Equal(t, 50, result.NewBasePrice)
	assert.Equal(t, "Bronze", roster.players[0].Category)
}

func TestUndoLastSale_RestoresSnapshot(t *testing.T) {
	s, roster, events := newTestSession(pendingPlayer(10, "Gold", 200))
	_, err := s.OpenBidding(10)
	require.NoError(t, err)
	_, _ = s.PlaceBid(1, 20)
	_, err = s.ConfirmSale()
	require.NoError(t, err)

	undone, ok := s.UndoLastSale()
	require.True(t, ok)
	assert.Equal(t, 10, undone.Player.ID)

	assert.Empty(t, roster.sold)
	assert.Equal(t, models.PlayerStatusPending, roster.players[0].Status)
	assert.Equal(t, "Gold", roster.players[0].Category)
	assert.Equal(t, 200, roster.players[0].BasePrice)
	assert.Equal(t, "undo-sale", events.calls[len(events.calls)-1])

	_, ok = s.UndoLastSale()
	assert.False(t, ok)
}

func TestCancel(t *testing.T) {
	s, _, events := newTestSession(pendingPlayer(10, "Gold", 200))

	assert.False(t, s.Cancel())

	_, err := s.OpenBidding(10)
	require.NoError(t, err)
	_, _ = s.PlaceBid(1, 20)

	assert.True(t, s.Cancel())
	snap := s.Snapshot()
	assert.False(t, snap.Open)
	assert.Equal(t, "cancel", events.calls[len(events.calls)-1])
}

func TestBidLogIsBounded(t *testing.T) {
	s, _, _ := newTestSession(pendingPlayer(10, "Gold", 20))
	_, err := s.OpenBidding(10)
	require.NoError(t, err)

	for i := 0; i < MaxLogEntries+10; i++ {
		team := 1 + i%2
		result, err := s.PlaceBid(team, 1)
		require.NoError(t, err)
		require.True(t, result.Valid, "bid %d: %s", i, result.Reason)
	}

	snap := s.Snapshot()
	assert.Len(t, snap.Log, MaxLogEntries)
	// Newest entry first.
	assert.Equal(t, 20+MaxLogEntries+10, snap.Log[0].Bid)
}
