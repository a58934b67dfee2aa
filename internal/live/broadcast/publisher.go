package broadcast

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"auctiondesk/internal/auction"
	"auctiondesk/internal/live/bus"
	"auctiondesk/internal/live/events"
	"auctiondesk/internal/models"
)

// StateProvider is the publisher's read-only window onto the authoritative
// tournament state. The publisher never keeps shadow copies of these lists;
// a sync responder always reads them fresh.
type StateProvider interface {
	Config() models.TournamentConfig
	Teams() []models.Team
	Players() []models.Player
	SoldPlayers() []models.SoldPlayer
}

// Publisher mirrors every auction session transition onto the live channel
// and answers SYNC_REQUEST with the full authoritative state, so any number
// of passive viewers can reconstruct the auction without polling.
//
// It implements auction.Events. The display phase and the current bidding /
// last-sold payloads live here because they are presentation state the
// tournament store does not track.
type Publisher struct {
	mu    sync.Mutex
	bus   bus.Bus
	state StateProvider

	phase    events.Phase
	bidding  *events.BiddingPayload
	lastSold *auction.Sale

	unsub func()
}

// NewPublisher attaches a publisher to the live channel and starts answering
// sync requests.
func NewPublisher(b bus.Bus, state StateProvider) (*Publisher, error) {
	p := &Publisher{
		bus:   b,
		state: state,
		phase: events.PhaseIdle,
	}
	unsub, err := b.Subscribe(p.onMessage)
	if err != nil {
		return nil, fmt.Errorf("subscribe live channel: %w", err)
	}
	p.unsub = unsub
	return p, nil
}

// Close stops answering sync requests.
func (p *Publisher) Close() {
	if p.unsub != nil {
		p.unsub()
	}
}

// onMessage handles inbound channel traffic. The publisher only ever reacts
// to SYNC_REQUEST; everything else on the subject is its own output.
func (p *Publisher) onMessage(msg events.Message) {
	if msg.Type != events.TypeSyncRequest {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	payload := events.SyncStatePayload{
		Config:      p.state.Config(),
		Teams:       p.state.Teams(),
		Players:     p.state.Players(),
		SoldPlayers: p.state.SoldPlayers(),
		Phase:       p.phase,
		Bidding:     p.bidding,
		LastSold:    p.lastSold,
	}
	p.send(events.TypeSyncState, payload)
}

// BiddingStarted implements auction.Events.
func (p *Publisher) BiddingStarted(player models.Player, baseBid int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.bidding = &events.BiddingPayload{Player: player, CurrentBid: baseBid}
	p.lastSold = nil
	p.phase = events.PhaseBidding
	p.send(events.TypeBiddingStart, events.BiddingStartPayload{Player: player, CurrentBid: baseBid})
}

// BidUpdated implements auction.Events.
func (p *Publisher) BidUpdated(currentBid, leadingTeamID int, entry auction.LogEntry) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.bidding != nil {
		p.bidding.CurrentBid = currentBid
		p.bidding.LeadingTeamID = leadingTeamID
		p.bidding.Log = append([]auction.LogEntry{entry}, p.bidding.Log...)
		if len(p.bidding.Log) > auction.MaxLogEntries {
			p.bidding.Log = p.bidding.Log[:auction.MaxLogEntries]
		}
	}
	p.send(events.TypeBidUpdate, events.BidUpdatePayload{
		CurrentBid:    currentBid,
		LeadingTeamID: leadingTeamID,
		LogEntry:      entry,
	})
}

// Sold implements auction.Events.
func (p *Publisher) Sold(sale auction.Sale, sold []models.SoldPlayer, players []models.Player) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.lastSold = &sale
	p.bidding = nil
	p.phase = events.PhaseSold
	p.send(events.TypeSold, events.SoldPayload{Sale: sale, SoldPlayers: sold, Players: players})
}

// Unsold implements auction.Events.
func (p *Publisher) Unsold(playerName string, result auction.DemotionResult, players []models.Player) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.bidding = nil
	p.phase = events.PhaseUnsold
	p.send(events.TypeUnsold, events.UnsoldPayload{
		PlayerName:    playerName,
		Demoted:       result.Demoted,
		NewCategory:   result.NewCategory,
		HalvedInPlace: result.HalvedInPlace,
		Players:       players,
	})
}

// BiddingCancelled implements auction.Events.
func (p *Publisher) BiddingCancelled() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.bidding = nil
	p.phase = events.PhaseIdle
	p.send(events.TypeBiddingCancel, nil)
}

// SaleUndone implements auction.Events.
func (p *Publisher) SaleUndone(sold []models.SoldPlayer, players []models.Player) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.lastSold = nil
	p.phase = events.PhaseIdle
	p.send(events.TypeUndoSale, events.UndoSalePayload{SoldPlayers: sold, Players: players})
}

// ShowSquads jumps viewers straight to the squad board, for manual
// auctioneer override.
func (p *Publisher) ShowSquads() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.phase = events.PhaseSquadView
	p.send(events.TypeShowSquads, nil)
}

// ShowIdle returns viewers to the idle screen.
func (p *Publisher) ShowIdle() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.phase = events.PhaseIdle
	p.send(events.TypeShowIdle, nil)
}

// send publishes one envelope. Failures are logged and swallowed: the
// channel is best-effort, and the sync handshake is the recovery path.
func (p *Publisher) send(t events.Type, payload interface{}) {
	msg := events.Message{
		ID:        uuid.New().String(),
		Type:      t,
		Timestamp: time.Now(),
	}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			log.Error().Err(err).Str("type", string(t)).Msg("failed to marshal live payload")
			return
		}
		msg.Data = data
	}
	if err := p.bus.Publish(msg); err != nil {
		log.Warn().Err(err).Str("type", string(t)).Msg("failed to publish live message")
	}
}
