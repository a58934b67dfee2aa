package events

import (
	"encoding/json"
	"fmt"
	"time"

	"auctiondesk/internal/auction"
	"auctiondesk/internal/models"
)

// Type tags the live message union. Publishers and listeners share these
// shapes; there is no schema versioning on the channel.
type Type string

const (
	TypeSyncState     Type = "SYNC_STATE"
	TypeBiddingStart  Type = "BIDDING_START"
	TypeBidUpdate     Type = "BID_UPDATE"
	TypeSold          Type = "SOLD"
	TypeUnsold        Type = "UNSOLD"
	TypeBiddingCancel Type = "BIDDING_CANCEL"
	TypeShowSquads    Type = "SHOW_SQUADS"
	TypeShowIdle      Type = "SHOW_IDLE"
	TypeUndoSale      Type = "UNDO_SALE"
	TypeSyncRequest   Type = "SYNC_REQUEST"
)

// Phase is the spectator view's data phase.
type Phase string

const (
	PhaseIdle      Phase = "IDLE"
	PhaseBidding   Phase = "BIDDING"
	PhaseSold      Phase = "SOLD"
	PhaseUnsold    Phase = "UNSOLD"
	PhaseSquadView Phase = "SQUAD_VIEW"
)

// Message is the envelope carried on the live channel.
type Message struct {
	ID        string          `json:"id"`
	Type      Type            `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data,omitempty"`
}

// BiddingPayload mirrors the control tab's live bidding state.
type BiddingPayload struct {
	Player        models.Player      `json:"player"`
	CurrentBid    int                `json:"current_bid"`
	LeadingTeamID int                `json:"leading_team_id"` // 0 = no leader
	Log           []auction.LogEntry `json:"log"`
}

// BiddingStartPayload announces a player going on the block.
type BiddingStartPayload struct {
	Player     models.Player `json:"player"`
	CurrentBid int           `json:"current_bid"`
}

// BidUpdatePayload carries one accepted bid.
type BidUpdatePayload struct {
	CurrentBid    int              `json:"current_bid"`
	LeadingTeamID int              `json:"leading_team_id"`
	LogEntry      auction.LogEntry `json:"log_entry"`
}

// SoldPayload carries a completed sale plus the full lists so a viewer needs
// no further catch-up.
type SoldPayload struct {
	Sale        auction.Sale        `json:"sale"`
	SoldPlayers []models.SoldPlayer `json:"sold_players"`
	Players     []models.Player     `json:"players"`
}

// UnsoldPayload carries an unsold/demotion outcome plus the updated pool.
type UnsoldPayload struct {
	PlayerName    string          `json:"player_name"`
	Demoted       bool            `json:"demoted"`
	NewCategory   string          `json:"new_category,omitempty"`
	HalvedInPlace bool            `json:"halved_in_place,omitempty"`
	Players       []models.Player `json:"players"`
}

// UndoSalePayload carries the lists after the most recent sale was reversed.
type UndoSalePayload struct {
	SoldPlayers []models.SoldPlayer `json:"sold_players"`
	Players     []models.Player     `json:"players"`
}

// SyncStatePayload is the full authoritative state, sent in answer to a
// SYNC_REQUEST so a late-joining viewer converges immediately.
type SyncStatePayload struct {
	Config      models.TournamentConfig `json:"config"`
	Teams       []models.Team           `json:"teams"`
	Players     []models.Player         `json:"players"`
	SoldPlayers []models.SoldPlayer     `json:"sold_players"`
	Phase       Phase                   `json:"phase"`
	Bidding     *BiddingPayload         `json:"bidding,omitempty"`
	LastSold    *auction.Sale           `json:"last_sold,omitempty"`
}

// ParsePayload decodes a message's data into its payload struct. Messages
// without a payload (cancel, show-squads, show-idle, sync-request) decode to
// nil.
func ParsePayload(msg Message) (interface{}, error) {
	switch msg.Type {
	case TypeSyncState:
		var p SyncStatePayload
		if err := json.Unmarshal(msg.Data, &p); err != nil {
			return nil, fmt.Errorf("unmarshal %s payload: %w", msg.Type, err)
		}
		return p, nil
	case TypeBiddingStart:
		var p BiddingStartPayload
		if err := json.Unmarshal(msg.Data, &p); err != nil {
			return nil, fmt.Errorf("unmarshal %s payload: %w", msg.Type, err)
		}
		return p, nil
	case TypeBidUpdate:
		var p BidUpdatePayload
		if err := json.Unmarshal(msg.Data, &p); err != nil {
			return nil, fmt.Errorf("unmarshal %s payload: %w", msg.Type, err)
		}
		return p, nil
	case TypeSold:
		var p SoldPayload
		if err := json.Unmarshal(msg.Data, &p); err != nil {
			return nil, fmt.Errorf("unmarshal %s payload: %w", msg.Type, err)
		}
		return p, nil
	case TypeUnsold:
		var p UnsoldPayload
		if err := json.Unmarshal(msg.Data, &p); err != nil {
			return nil, fmt.Errorf("unmarshal %s payload: %w", msg.Type, err)
		}
		return p, nil
	case TypeUndoSale:
		var p UndoSalePayload
		if err := json.Unmarshal(msg.Data, &p); err != nil {
			return nil, fmt.Errorf("unmarshal %s payload: %w", msg.Type, err)
		}
		return p, nil
	case TypeBiddingCancel, TypeShowSquads, TypeShowIdle, TypeSyncRequest:
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown message type: %s", msg.Type)
	}
}
