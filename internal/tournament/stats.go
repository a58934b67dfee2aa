package tournament

import (
	"auctiondesk/internal/auction"
	"auctiondesk/internal/models"
)

// TeamSummary aggregates one team's standing for the squads view.
type TeamSummary struct {
	Team       models.Team         `json:"team"`
	Squad      []models.SoldPlayer `json:"squad"`
	Spent      int                 `json:"spent"`
	Remaining  int                 `json:"remaining"`
	SlotsLeft  int                 `json:"slots_left"`
	BidCap     auction.CapResult   `json:"bid_cap"`
	ByCategory map[string]int      `json:"by_category"`
}

// TeamSummaries computes the per-team standings in team order. Empty before
// launch.
func (a *App) TeamSummaries() []TeamSummary {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if a.cfg == nil {
		return nil
	}
	cfg := *a.cfg

	summaries := make([]TeamSummary, 0, len(a.teams))
	for _, t := range a.teams {
		squad := auction.Squad(t.ID, a.sold)
		byCategory := make(map[string]int, len(cfg.Categories))
		for _, s := range squad {
			byCategory[s.Category]++
		}
		summaries = append(summaries, TeamSummary{
			Team:       t,
			Squad:      squad,
			Spent:      auction.Spent(t.ID, a.sold),
			Remaining:  auction.RemainingBudget(t.ID, a.sold, cfg.Budget),
			SlotsLeft:  cfg.SquadSize() - len(squad),
			BidCap:     auction.BidCap(t.ID, a.sold, cfg),
			ByCategory: byCategory,
		})
	}
	return summaries
}

// PendingByCategory counts pending players per tier, keyed by category name.
func (a *App) PendingByCategory() map[string]int {
	a.mu.RLock()
	defer a.mu.RUnlock()

	counts := make(map[string]int)
	for _, p := range a.players {
		if p.Status == models.PlayerStatusPending {
			counts[p.Category]++
		}
	}
	return counts
}
