package tournament

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"auctiondesk/internal/auction"
	"auctiondesk/internal/models"
	"auctiondesk/internal/storage"
)

// The methods below satisfy the session's roster dependency. They mutate
// the pool and the sold list together under one lock so the session never
// observes a sold entry without the matching player status.

// RecordSale appends a sold entry and flips the player's pool status.
func (a *App) RecordSale(sale models.SoldPlayer) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	idx := -1
	for i, p := range a.players {
		if p.ID == sale.Player.ID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("record sale for player %d: %w", sale.Player.ID, ErrPlayerNotFound)
	}
	if a.players[idx].Status != models.PlayerStatusPending {
		return fmt.Errorf("record sale for player %d: %w", sale.Player.ID, ErrPlayerNotPending)
	}

	a.players[idx].Status = models.PlayerStatusSold
	a.sold = append(a.sold, sale)

	ctx := context.Background()
	a.persist(ctx, storage.KeyPlayers, a.players)
	a.persist(ctx, storage.KeySoldPlayers, a.sold)

	log.Info().
		Int("player_id", sale.Player.ID).
		Str("player", sale.Player.Name).
		Int("team_id", sale.TeamID).
		Int("final_price", sale.FinalPrice).
		Msg("sale recorded")
	return nil
}

// ReturnPlayer applies an unsold outcome: the player goes back to pending
// with the demoted category and recalculated base price.
func (a *App) ReturnPlayer(playerID int, result auction.DemotionResult) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	for i, p := range a.players {
		if p.ID != playerID {
			continue
		}
		a.players[i].Status = models.PlayerStatusPending
		if result.Demoted {
			a.players[i].Category = result.NewCategory
		}
		a.players[i].BasePrice = result.NewBasePrice

		a.persist(context.Background(), storage.KeyPlayers, a.players)
		log.Info().
			Int("player_id", playerID).
			Bool("demoted", result.Demoted).
			Str("category", a.players[i].Category).
			Int("base_price", result.NewBasePrice).
			Msg("player returned unsold")
		return nil
	}
	return fmt.Errorf("return player %d: %w", playerID, ErrPlayerNotFound)
}

// UndoLastSale removes the most recent sold entry and restores that player
// to pending with its snapshot category and base price.
func (a *App) UndoLastSale() (models.SoldPlayer, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if len(a.sold) == 0 {
		return models.SoldPlayer{}, false
	}
	last := a.sold[len(a.sold)-1]
	a.sold = a.sold[:len(a.sold)-1]

	for i, p := range a.players {
		if p.ID == last.Player.ID {
			a.players[i].Status = models.PlayerStatusPending
			a.players[i].Category = last.Player.Category
			a.players[i].BasePrice = last.Player.BasePrice
			break
		}
	}

	ctx := context.Background()
	a.persist(ctx, storage.KeyPlayers, a.players)
	a.persist(ctx, storage.KeySoldPlayers, a.sold)

	log.Info().Int("player_id", last.Player.ID).Str("player", last.Player.Name).Msg("last sale undone")
	return last, true
}
