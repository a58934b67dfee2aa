package tournament

import (
	"strings"

	"auctiondesk/internal/models"
)

// FieldError names the offending field with a human-readable message.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

const maxNameLength = 60

// ValidatePlayerForm checks the player entry form fields.
func ValidatePlayerForm(name string, basePrice int) []FieldError {
	var errs []FieldError
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		errs = append(errs, FieldError{Field: "name", Message: "Player name is required."})
	} else if len(trimmed) > maxNameLength {
		errs = append(errs, FieldError{Field: "name", Message: "Name must be 60 characters or fewer."})
	}
	if basePrice < 1 {
		errs = append(errs, FieldError{Field: "base_price", Message: "Base price must be a positive number."})
	}
	return errs
}

// ValidateTeamForm checks the team entry form fields.
func ValidateTeamForm(name, captain string) []FieldError {
	var errs []FieldError
	if strings.TrimSpace(name) == "" {
		errs = append(errs, FieldError{Field: "name", Message: "Team name is required."})
	}
	if strings.TrimSpace(captain) == "" {
		errs = append(errs, FieldError{Field: "captain", Message: "Captain name is required."})
	}
	return errs
}

// ValidateConfig checks tournament settings before launch.
func ValidateConfig(cfg models.TournamentConfig) []FieldError {
	var errs []FieldError
	if cfg.TotalTeams < 2 || cfg.TotalTeams > 20 {
		errs = append(errs, FieldError{Field: "total_teams", Message: "Teams must be between 2 and 20."})
	}
	if cfg.PlayersPerTeam < 3 || cfg.PlayersPerTeam > 15 {
		errs = append(errs, FieldError{Field: "players_per_team", Message: "Players per team must be between 3 and 15."})
	}
	if cfg.Budget < 100 {
		errs = append(errs, FieldError{Field: "budget", Message: "Budget must be at least 100 pts."})
	}
	if cfg.MinBidReserve < 0 {
		errs = append(errs, FieldError{Field: "min_bid_reserve", Message: "Min bid reserve must be 0 or more."})
	}
	if len(cfg.Categories) == 0 {
		errs = append(errs, FieldError{Field: "categories", Message: "At least one category is required."})
	}
	seen := make(map[string]bool, len(cfg.Categories))
	for _, def := range cfg.Categories {
		name := strings.TrimSpace(def.Name)
		if name == "" {
			errs = append(errs, FieldError{Field: "categories", Message: "Category names cannot be empty."})
			continue
		}
		if seen[name] {
			errs = append(errs, FieldError{Field: "categories", Message: "Category names must be unique."})
		}
		seen[name] = true
	}
	return errs
}
