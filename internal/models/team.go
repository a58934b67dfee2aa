package models

// Team represents one franchise in the tournament. IDs are stable small
// integers (1..TotalTeams); teams are never deleted mid-auction, only
// reshaped by config edits that change the team count.
type Team struct {
	ID            int     `json:"id"`
	Name          string  `json:"name"`
	Captain       string  `json:"captain"`
	Color         string  `json:"color"`
	LogoBase64    *string `json:"logo_base64,omitempty"`
	CaptainBase64 *string `json:"captain_base64,omitempty"`
}
