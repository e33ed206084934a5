// internal/models/player.go
package models

import "github.com/google/uuid"

// Player is a seat in the game. ID is the connection identity assigned by the transport.
type Player struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
	Hand []Card    `json:"hand"`
}

// NewPlayer returns a player with an empty hand.
func NewPlayer(id uuid.UUID, name string) *Player {
	return &Player{
		ID:   id,
		Name: name,
		Hand: []Card{},
	}
}

// HandIndex returns the index of the first card matching c by color and value, or -1.
func (p *Player) HandIndex(c Card) int {
	for i, h := range p.Hand {
		if h == c {
			return i
		}
	}
	return -1
}

// RemoveAt removes the card at idx, keeping the order of the remaining cards.
func (p *Player) RemoveAt(idx int) Card {
	c := p.Hand[idx]
	p.Hand = append(p.Hand[:idx], p.Hand[idx+1:]...)
	return c
}
