// internal/models/house_rules.go
package models

// HouseRules captures the table configuration applied at game start.
type HouseRules struct {
	// HandSize is how many cards each player is dealt.
	HandSize int `json:"handSize"`

	// MinPlayers is the number of players required to start, and below which a running game stops.
	MinPlayers int `json:"minPlayers"`

	// MaxPlayers caps the roster; 0 means no limit.
	MaxPlayers int `json:"maxPlayers"`
}

// DefaultHouseRules returns the standard UNO table: seven cards, two to ten players.
func DefaultHouseRules() HouseRules {
	return HouseRules{
		HandSize:   7,
		MinPlayers: 2,
		MaxPlayers: 10,
	}
}
