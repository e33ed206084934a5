package handlers

import (
	"github.com/google/uuid"
	"github.com/jason-s-yu/uno/internal/game"
	"github.com/jason-s-yu/uno/internal/models"
)

// Client to server frame types that never reach the engine.
const msgPing = "ping"

// Server to client frame types.
const (
	msgWelcome = "welcome"
	msgPong    = "pong"
)

// ClientMessage is the union of every frame a client may send.
type ClientMessage struct {
	Type        string       `json:"type"`
	Name        string       `json:"name,omitempty"`
	Card        *models.Card `json:"card,omitempty"`
	ChosenColor models.Color `json:"chosenColor,omitempty"`
}

// Intent converts the frame into an engine intent for the connection.
func (m ClientMessage) Intent(connID uuid.UUID) models.Intent {
	return models.Intent{
		Type:        models.IntentType(m.Type),
		PlayerID:    connID,
		Name:        m.Name,
		Card:        m.Card,
		ChosenColor: m.ChosenColor,
	}
}

type stateUpdateMessage struct {
	Type  string          `json:"type"`
	State *game.GameState `json:"state"`
}

type gameOverMessage struct {
	Type   string `json:"type"`
	Winner string `json:"winner"`
}

type errorMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type welcomeMessage struct {
	Type string    `json:"type"`
	ID   uuid.UUID `json:"id"`
}

// effectMessage maps an engine effect to its wire frame.
func effectMessage(e game.Effect) interface{} {
	switch e.Type {
	case game.EffectStateUpdate:
		return stateUpdateMessage{Type: string(e.Type), State: e.State}
	case game.EffectGameOver:
		return gameOverMessage{Type: string(e.Type), Winner: e.Winner}
	default:
		return errorMessage{Type: string(game.EffectError), Message: e.Message}
	}
}
