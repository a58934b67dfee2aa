package viewer

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"auctiondesk/internal/auction"
	"auctiondesk/internal/live/bus"
	"auctiondesk/internal/live/events"
	"auctiondesk/internal/models"
)

// DisplayPhase is what the spectator screen is actually showing. It tracks
// the data phase except for the transient logo bumper the presentation layer
// inserts between phases for pacing.
type DisplayPhase string

const (
	DisplayIdle           DisplayPhase = "IDLE"
	DisplayBidding        DisplayPhase = "BIDDING"
	DisplaySold           DisplayPhase = "SOLD"
	DisplayUnsold         DisplayPhase = "UNSOLD"
	DisplaySquadView      DisplayPhase = "SQUAD_VIEW"
	DisplayLogoTransition DisplayPhase = "LOGO_TRANSITION"
)

// Presentation timings.
const (
	LogoDuration      = 1800 * time.Millisecond
	SoldDisplay       = 5000 * time.Millisecond
	UnsoldDisplay     = 2500 * time.Millisecond
	SyncRetryInterval = 3 * time.Second
)

// UnsoldInfo is what the unsold overlay needs to announce.
type UnsoldInfo struct {
	PlayerName    string `json:"player_name"`
	Demoted       bool   `json:"demoted"`
	NewCategory   string `json:"new_category,omitempty"`
	HalvedInPlace bool   `json:"halved_in_place,omitempty"`
}

// State is the reconstructed auction state on the spectator side. Every
// field is read-only here; the viewer never originates a mutation, its only
// outbound message is SYNC_REQUEST.
type State struct {
	Phase       events.Phase             `json:"phase"`
	Config      *models.TournamentConfig `json:"config,omitempty"`
	Teams       []models.Team            `json:"teams"`
	Players     []models.Player          `json:"players"`
	SoldPlayers []models.SoldPlayer      `json:"sold_players"`
	Bidding     *events.BiddingPayload   `json:"bidding,omitempty"`
	LastSold    *auction.Sale            `json:"last_sold,omitempty"`
	UnsoldInfo  *UnsoldInfo              `json:"unsold_info,omitempty"`
	Connected   bool                     `json:"connected"`
}

// Snapshot pairs the data state with the display phase for rendering.
type Snapshot struct {
	Display DisplayPhase `json:"display"`
	State   State        `json:"state"`
}

// Viewer consumes live channel messages and drives the spectator display
// phase sequence. Phase timers are cancelable: a new transition always wins
// over a previously scheduled delayed one.
type Viewer struct {
	mu       sync.Mutex
	bus      bus.Bus
	clock    clockwork.Clock
	onChange func(Snapshot)

	state    State
	display  DisplayPhase
	timerGen int
}

// New creates a viewer in the waiting state. onChange, if non-nil, is called
// with a fresh snapshot after every state or display change.
func New(b bus.Bus, clock clockwork.Clock, onChange func(Snapshot)) *Viewer {
	return &Viewer{
		bus:      b,
		clock:    clock,
		onChange: onChange,
		state:    State{Phase: events.PhaseIdle},
		display:  DisplayIdle,
	}
}

// Run subscribes to the live channel and keeps requesting a full sync every
// retry interval until a publisher answers. It blocks until ctx is done.
func (v *Viewer) Run(ctx context.Context) error {
	unsub, err := v.bus.Subscribe(v.handle)
	if err != nil {
		return err
	}
	defer unsub()

	v.requestSync()

	ticker := v.clock.NewTicker(SyncRetryInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.Chan():
			if v.Connected() {
				continue
			}
			v.requestSync()
		}
	}
}

// Connected reports whether a publisher has answered with state yet.
func (v *Viewer) Connected() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state.Connected
}

// Snapshot returns the current display phase and data state.
func (v *Viewer) Snapshot() Snapshot {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.snapshotLocked()
}

func (v *Viewer) snapshotLocked() Snapshot {
	return Snapshot{Display: v.display, State: v.state}
}

func (v *Viewer) requestSync() {
	msg := events.Message{
		ID:        uuid.New().String(),
		Type:      events.TypeSyncRequest,
		Timestamp: v.clock.Now(),
	}
	if err := v.bus.Publish(msg); err != nil {
		log.Warn().Err(err).Msg("failed to send sync request")
	}
}

// handle folds one channel message into the state and, when the data phase
// changed, restarts the presentation sequence.
func (v *Viewer) handle(msg events.Message) {
	if msg.Type == events.TypeSyncRequest {
		return
	}
	payload, err := events.ParsePayload(msg)
	if err != nil {
		log.Warn().Err(err).Str("type", string(msg.Type)).Msg("dropping undecodable live message")
		return
	}

	v.mu.Lock()
	prev := v.state.Phase
	v.apply(msg.Type, payload)
	v.transition(prev)
	snap := v.snapshotLocked()
	v.mu.Unlock()

	v.notify(snap)
}

// apply is the reducer: it mirrors the publisher's state transitions
// one-to-one.
func (v *Viewer) apply(t events.Type, payload interface{}) {
	switch t {
	case events.TypeSyncState:
		p := payload.(events.SyncStatePayload)
		cfg := p.Config
		v.state.Connected = true
		v.state.Phase = p.Phase
		v.state.Config = &cfg
		v.state.Teams = p.Teams
		v.state.Players = p.Players
		v.state.SoldPlayers = p.SoldPlayers
		v.state.Bidding = p.Bidding
		v.state.LastSold = p.LastSold
		v.state.UnsoldInfo = nil

	case events.TypeBiddingStart:
		p := payload.(events.BiddingStartPayload)
		v.state.Phase = events.PhaseBidding
		v.state.Bidding = &events.BiddingPayload{Player: p.Player, CurrentBid: p.CurrentBid}
		v.state.LastSold = nil
		v.state.UnsoldInfo = nil

	case events.TypeBidUpdate:
		if v.state.Bidding == nil {
			return
		}
		p := payload.(events.BidUpdatePayload)
		v.state.Bidding.CurrentBid = p.CurrentBid
		v.state.Bidding.LeadingTeamID = p.LeadingTeamID
		v.state.Bidding.Log = append([]auction.LogEntry{p.LogEntry}, v.state.Bidding.Log...)
		if len(v.state.Bidding.Log) > auction.MaxLogEntries {
			v.state.Bidding.Log = v.state.Bidding.Log[:auction.MaxLogEntries]
		}

	case events.TypeSold:
		p := payload.(events.SoldPayload)
		sale := p.Sale
		v.state.Phase = events.PhaseSold
		v.state.LastSold = &sale
		v.state.Bidding = nil
		v.state.SoldPlayers = p.SoldPlayers
		v.state.Players = p.Players

	case events.TypeUnsold:
		p := payload.(events.UnsoldPayload)
		v.state.Phase = events.PhaseUnsold
		v.state.Bidding = nil
		v.state.UnsoldInfo = &UnsoldInfo{
			PlayerName:    p.PlayerName,
			Demoted:       p.Demoted,
			NewCategory:   p.NewCategory,
			HalvedInPlace: p.HalvedInPlace,
		}
		v.state.Players = p.Players

	case events.TypeBiddingCancel:
		v.state.Phase = events.PhaseIdle
		v.state.Bidding = nil

	case events.TypeShowSquads:
		v.state.Phase = events.PhaseSquadView

	case events.TypeShowIdle:
		v.state.Phase = events.PhaseIdle

	case events.TypeUndoSale:
		p := payload.(events.UndoSalePayload)
		v.state.Phase = events.PhaseIdle
		v.state.LastSold = nil
		v.state.SoldPlayers = p.SoldPlayers
		v.state.Players = p.Players
	}
}

// transition drives the display sequence when the data phase changes.
// Repeated same-phase events (successive bid updates while already in
// BIDDING) never re-trigger the bumper.
func (v *Viewer) transition(prev events.Phase) {
	phase := v.state.Phase
	if phase == prev {
		return
	}

	// Invalidate any pending delayed transition; the new one wins.
	v.timerGen++

	switch phase {
	case events.PhaseBidding:
		v.display = DisplayLogoTransition
		v.schedule(LogoDuration, func() {
			v.display = DisplayBidding
		})

	case events.PhaseSold:
		v.display = DisplaySold
		v.schedule(SoldDisplay, func() {
			after := v.afterOverlay()
			v.display = DisplayLogoTransition
			v.schedule(LogoDuration, func() {
				v.display = after
			})
		})

	case events.PhaseUnsold:
		v.display = DisplayUnsold
		v.schedule(UnsoldDisplay, func() {
			after := v.afterOverlay()
			v.display = DisplayLogoTransition
			v.schedule(LogoDuration, func() {
				v.display = after
			})
		})

	default:
		// IDLE and SQUAD_VIEW (and explicit overrides) show directly.
		v.display = DisplayPhase(phase)
	}
}

// afterOverlay decides where a sold/unsold overlay lands: the squad board
// once any sale has ever happened, otherwise idle.
func (v *Viewer) afterOverlay() DisplayPhase {
	if len(v.state.SoldPlayers) > 0 {
		return DisplaySquadView
	}
	return DisplayIdle
}

// schedule arms a display transition guarded by the current timer
// generation. Callbacks run with the lock held.
func (v *Viewer) schedule(d time.Duration, fn func()) {
	gen := v.timerGen
	v.clock.AfterFunc(d, func() {
		v.mu.Lock()
		if gen != v.timerGen {
			// A newer transition superseded this timer.
			v.mu.Unlock()
			return
		}
		fn()
		snap := v.snapshotLocked()
		v.mu.Unlock()
		v.notify(snap)
	})
}

func (v *Viewer) notify(snap Snapshot) {
	if v.onChange != nil {
		v.onChange(snap)
	}
}
