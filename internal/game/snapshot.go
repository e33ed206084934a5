// internal/game/snapshot.go
package game

import (
	"github.com/google/uuid"
	"github.com/jason-s-yu/uno/internal/models"
)

// PlayerState is one player as seen in a broadcast snapshot.
type PlayerState struct {
	ID   uuid.UUID     `json:"id"`
	Name string        `json:"name"`
	Hand []models.Card `json:"hand"`
}

// GameState is the full broadcastable snapshot. It shares no memory with the engine,
// so it can be marshaled after the room lock is released.
type GameState struct {
	Players            []PlayerState `json:"players"`
	Deck               []models.Card `json:"deck"`
	DiscardPile        []models.Card `json:"discardPile"`
	CurrentPlayerIndex int           `json:"currentPlayerIndex"`
	IsGameRunning      bool          `json:"isGameRunning"`
	Direction          int           `json:"direction"`
	// CurrentColor is nil before the first deal and encodes as null.
	CurrentColor *models.Color `json:"currentColor"`
}

// TotalCards counts every card in the deck, the discard pile and all hands.
func (s GameState) TotalCards() int {
	n := len(s.Deck) + len(s.DiscardPile)
	for _, p := range s.Players {
		n += len(p.Hand)
	}
	return n
}

// Snapshot copies the current state.
func (g *UnoGame) Snapshot() GameState {
	s := GameState{
		Players:            make([]PlayerState, len(g.Players)),
		Deck:               cloneCards(g.Deck),
		DiscardPile:        cloneCards(g.DiscardPile),
		CurrentPlayerIndex: g.CurrentPlayerIndex,
		IsGameRunning:      g.Running,
		Direction:          g.Direction,
	}
	if g.CurrentColor != "" {
		color := g.CurrentColor
		s.CurrentColor = &color
	}
	for i, p := range g.Players {
		s.Players[i] = PlayerState{ID: p.ID, Name: p.Name, Hand: cloneCards(p.Hand)}
	}
	return s
}

func cloneCards(in []models.Card) []models.Card {
	out := make([]models.Card, len(in))
	copy(out, in)
	return out
}
