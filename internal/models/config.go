package models

// CategoryDefinition describes one player tier. Tiers are ordered: the
// position in TournamentConfig.Categories defines the demotion chain, where
// an unsold player drops to the next index and the last tier is terminal.
type CategoryDefinition struct {
	Name    string `json:"name"`
	Color   string `json:"color"`
	BgColor string `json:"bg_color"`
	Min     int    `json:"min"` // minimum picks per team
	Max     int    `json:"max"` // maximum picks per team; 0 = unlimited
}

// TournamentConfig holds the immutable-per-session tournament settings.
type TournamentConfig struct {
	TournamentName string               `json:"tournament_name"`
	TotalTeams     int                  `json:"total_teams"`
	PlayersPerTeam int                  `json:"players_per_team"` // including captain
	Budget         int                  `json:"budget"`           // points per team
	MinBidReserve  int                  `json:"min_bid_reserve"`  // held per unfilled slot
	Categories     []CategoryDefinition `json:"categories"`
	LogoBase64     *string              `json:"logo_base64,omitempty"`
}

// SquadSize returns the number of auction picks per team. The captain is
// pre-assigned, so one roster spot never goes through the auction.
func (c TournamentConfig) SquadSize() int {
	return c.PlayersPerTeam - 1
}

// CategoryIndex returns the position of a category in the ordered tier list,
// or -1 if the name is unknown.
func (c TournamentConfig) CategoryIndex(name string) int {
	for i, def := range c.Categories {
		if def.Name == name {
			return i
		}
	}
	return -1
}

// CategoryDef looks up a tier definition by name.
func (c TournamentConfig) CategoryDef(name string) (CategoryDefinition, bool) {
	i := c.CategoryIndex(name)
	if i < 0 {
		return CategoryDefinition{}, false
	}
	return c.Categories[i], true
}

// CategoryNames returns the ordered list of tier names.
func (c TournamentConfig) CategoryNames() []string {
	names := make([]string, len(c.Categories))
	for i, def := range c.Categories {
		names[i] = def.Name
	}
	return names
}
