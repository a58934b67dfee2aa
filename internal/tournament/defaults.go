package tournament

import "auctiondesk/internal/models"

// DefaultCategories is the ordered default tier list. Position matters: an
// unsold Gold player demotes to Silver, Silver to Bronze, and Bronze (the
// terminal tier) halves in place.
func DefaultCategories() []models.CategoryDefinition {
	return []models.CategoryDefinition{
		{Name: "Gold", Color: "#FFD700", BgColor: "#2a1f00", Min: 0, Max: 3},
		{Name: "Silver", Color: "#C0C0C0", BgColor: "#1a1a2a", Min: 0, Max: 4},
		{Name: "Bronze", Color: "#CD7F32", BgColor: "#1f0f00", Min: 0, Max: 4},
	}
}

// DefaultConfig returns the out-of-the-box tournament settings.
func DefaultConfig() models.TournamentConfig {
	return models.TournamentConfig{
		TournamentName: "Cricket Auction",
		TotalTeams:     6,
		PlayersPerTeam: 8, // including captain, squad size 7
		Budget:         3000,
		MinBidReserve:  100,
		Categories:     DefaultCategories(),
	}
}

// DefaultTeamColors is the palette assigned to teams created without an
// explicit color, cycled by team id.
var DefaultTeamColors = []string{
	"#e63946", "#f4a261", "#2a9d8f",
	"#e9c46a", "#a8dadc", "#c77dff",
	"#06d6a0", "#ef476f", "#ffd166",
	"#118ab2", "#073b4c", "#8ecae6",
	"#ffb703", "#fb8500", "#023047",
	"#219ebc", "#8338ec", "#3a86ff",
	"#ff006e", "#fb5607",
}
