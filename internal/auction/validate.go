package auction

import (
	"fmt"

	"auctiondesk/internal/models"
)

// ValidationResult reports whether a proposed bid is legal. Reason is a
// human-readable explanation for the operator when Valid is false.
type ValidationResult struct {
	Valid  bool   `json:"valid"`
	Reason string `json:"reason,omitempty"`
}

// ValidateBid checks a proposed bid against squad size, category quota and
// the bid cap, in that order. The first failing rule wins. It is pure; the
// caller applies state changes only after a valid result.
func ValidateBid(teamID int, sold []models.SoldPlayer, category string, newBid int, cfg models.TournamentConfig) ValidationResult {
	squadSize := cfg.SquadSize()
	if len(Squad(teamID, sold)) >= squadSize {
		return ValidationResult{Valid: false, Reason: "Squad is already full."}
	}

	if def, ok := cfg.CategoryDef(category); ok && def.Max > 0 {
		if CategoryCount(teamID, category, sold) >= def.Max {
			return ValidationResult{
				Valid:  false,
				Reason: fmt.Sprintf("%s category limit reached (max %d per team).", category, def.Max),
			}
		}
	}

	cap := BidCap(teamID, sold, cfg)
	if newBid > cap.Cap {
		plural := "s"
		if cap.SlotsAfterWin == 1 {
			plural = ""
		}
		return ValidationResult{
			Valid: false,
			Reason: fmt.Sprintf(
				"Bid cap exceeded. Must keep %d pts in reserve (%d slot%s x %d min). Max allowed: %d pts.",
				cap.Reserve, cap.SlotsAfterWin, plural, cfg.MinBidReserve, cap.Cap,
			),
		}
	}

	return ValidationResult{Valid: true}
}
