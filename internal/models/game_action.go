package models

import "github.com/google/uuid"

// IntentType names a player intent as it appears on the wire.
type IntentType string

const (
	IntentJoin       IntentType = "joinGame"
	IntentStart      IntentType = "startGameRequest"
	IntentPlayCard   IntentType = "playCard"
	IntentDrawCard   IntentType = "drawCard"
	IntentDisconnect IntentType = "disconnect"
)

// Intent captures a player's request to change the game.
// Name is used by joinGame; Card and ChosenColor by playCard.
type Intent struct {
	Type        IntentType `json:"type"`
	PlayerID    uuid.UUID  `json:"playerId"`
	Name        string     `json:"name,omitempty"`
	Card        *Card      `json:"card,omitempty"`
	ChosenColor Color      `json:"chosenColor,omitempty"`
}
