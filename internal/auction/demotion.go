package auction

import (
	"auctiondesk/internal/models"
)

// DemotionResult describes what happened to a player marked unsold.
type DemotionResult struct {
	Demoted       bool   `json:"demoted"`
	HalvedInPlace bool   `json:"halved_in_place,omitempty"`
	NewCategory   string `json:"new_category,omitempty"`
	NewBasePrice  int    `json:"new_base_price"`
}

// Demote computes the unsold outcome for a player from the ordered tier
// list. A player not yet in the terminal tier drops one tier; its new base
// price is the lowest base price among pending players already in the target
// tier, or the tournament's minimum reserve if that tier has no pending
// players. A player already in the terminal tier keeps its tier and has its
// base price halved, floored at 1. Repeated demotions therefore terminate:
// the chain only ever moves down the tier list and then halves in place.
func Demote(player models.Player, players []models.Player, cfg models.TournamentConfig) DemotionResult {
	idx := cfg.CategoryIndex(player.Category)
	if idx >= 0 && idx < len(cfg.Categories)-1 {
		target := cfg.Categories[idx+1].Name
		base := minPendingBase(target, player.ID, players)
		if base == 0 {
			base = cfg.MinBidReserve
		}
		return DemotionResult{Demoted: true, NewCategory: target, NewBasePrice: base}
	}

	half := player.BasePrice / 2
	if half < 1 {
		half = 1
	}
	return DemotionResult{HalvedInPlace: true, NewBasePrice: half}
}

// minPendingBase returns the lowest base price among pending players of a
// category, or 0 when the category has none.
func minPendingBase(category string, excludeID int, players []models.Player) int {
	min := 0
	for _, p := range players {
		if p.ID == excludeID || p.Status != models.PlayerStatusPending || p.Category != category {
			continue
		}
		if min == 0 || p.BasePrice < min {
			min = p.BasePrice
		}
	}
	return min
}
