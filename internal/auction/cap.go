package auction

import (
	"auctiondesk/internal/models"
)

// Squad returns all sold players belonging to a team. Order is not
// significant.
func Squad(teamID int, sold []models.SoldPlayer) []models.SoldPlayer {
	var squad []models.SoldPlayer
	for _, s := range sold {
		if s.TeamID == teamID {
			squad = append(squad, s)
		}
	}
	return squad
}

// Spent returns the total points a team has committed so far.
func Spent(teamID int, sold []models.SoldPlayer) int {
	total := 0
	for _, s := range sold {
		if s.TeamID == teamID {
			total += s.FinalPrice
		}
	}
	return total
}

// CategoryCount returns how many players of one tier a team has won.
func CategoryCount(teamID int, category string, sold []models.SoldPlayer) int {
	count := 0
	for _, s := range sold {
		if s.TeamID == teamID && s.Category == category {
			count++
		}
	}
	return count
}

// RemainingBudget returns the points a team still has available.
func RemainingBudget(teamID int, sold []models.SoldPlayer, budget int) int {
	return budget - Spent(teamID, sold)
}

// CapResult breaks down the maximum legal bid for a team.
type CapResult struct {
	Cap           int `json:"cap"`
	Reserve       int `json:"reserve"`
	SlotsAfterWin int `json:"slots_after_win"`
	Remaining     int `json:"remaining"`
}

// BidCap computes the most a team may bid on the current player.
//
//	slotsAfterWin = squadSize - currentSquadSize - 1
//	reserve       = slotsAfterWin * minBidReserve
//	cap           = remainingBudget - reserve
//
// After winning this player the team must still be able to fill every
// remaining slot at the minimum price. The current pick itself is exempt
// from the hold-back, so on a team's last open slot slotsAfterWin is 0 and
// the cap equals the full remaining budget.
func BidCap(teamID int, sold []models.SoldPlayer, cfg models.TournamentConfig) CapResult {
	squadSize := cfg.SquadSize()
	squadLen := len(Squad(teamID, sold))
	remaining := cfg.Budget - Spent(teamID, sold)

	slotsAfterWin := squadSize - squadLen - 1
	if slotsAfterWin < 0 {
		slotsAfterWin = 0
	}
	reserve := slotsAfterWin * cfg.MinBidReserve

	return CapResult{
		Cap:           remaining - reserve,
		Reserve:       reserve,
		SlotsAfterWin: slotsAfterWin,
		Remaining:     remaining,
	}
}
