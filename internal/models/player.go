package models

// PlayerStatus tracks where a player sits in the auction flow.
type PlayerStatus string

const (
	PlayerStatusPending PlayerStatus = "pending"
	PlayerStatusSold    PlayerStatus = "sold"
	PlayerStatusUnsold  PlayerStatus = "unsold"
)

// Player represents an auction-eligible player in the pool.
type Player struct {
	ID          int          `json:"id"`
	Name        string       `json:"name"`
	Description string       `json:"description,omitempty"`
	Category    string       `json:"category"`
	BasePrice   int          `json:"base_price"`
	Status      PlayerStatus `json:"status"`
	PhotoBase64 *string      `json:"photo_base64,omitempty"`
}

// SoldPlayer is a Player snapshot extended with sale data, captured at the
// moment of sale. TeamName and TeamColor are kept in sync if the owning
// team's identity fields are edited later; everything else is immutable.
type SoldPlayer struct {
	Player
	TeamID     int    `json:"team_id"`
	TeamName   string `json:"team_name"`
	TeamColor  string `json:"team_color"`
	FinalPrice int    `json:"final_price"`
}
