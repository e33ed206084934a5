// internal/game/deck.go
package game

import (
	"math/rand"

	"github.com/jason-s-yu/uno/internal/models"
)

// DeckSize is the number of cards in a standard UNO deck.
const DeckSize = 108

// BuildDeck returns the canonical 108-card deck in a fixed order:
// per color one "0", two of each 1-9 and two of each action, then four wild and four wild_draw4.
func BuildDeck() []models.Card {
	deck := make([]models.Card, 0, DeckSize)
	for _, color := range models.ConcreteColors {
		for _, v := range models.NumberValues {
			deck = append(deck, models.Card{Color: color, Value: v})
			if v != "0" {
				deck = append(deck, models.Card{Color: color, Value: v})
			}
		}
		for _, v := range models.ActionValues {
			deck = append(deck,
				models.Card{Color: color, Value: v},
				models.Card{Color: color, Value: v},
			)
		}
	}
	for i := 0; i < 4; i++ {
		deck = append(deck,
			models.Card{Color: models.ColorWild, Value: models.ValueWild},
			models.Card{Color: models.ColorWild, Value: models.ValueWildDraw4},
		)
	}
	return deck
}

// Shuffle permutes deck in place. rand.Shuffle is a Fisher-Yates shuffle, so every
// permutation is equally likely for a uniform source.
func Shuffle(deck []models.Card, rng *rand.Rand) {
	rng.Shuffle(len(deck), func(i, j int) {
		deck[i], deck[j] = deck[j], deck[i]
	})
}

// draw moves up to count cards from the top of the deck into the player's hand and
// returns how many were actually drawn. An empty deck is refilled from the discard
// pile, keeping its top card; if that leaves the deck empty drawing stops short.
func (g *UnoGame) draw(p *models.Player, count int) int {
	drawn := 0
	for i := 0; i < count; i++ {
		if len(g.Deck) == 0 {
			g.reshuffleDiscard()
		}
		if len(g.Deck) == 0 {
			g.log.WithField("player", p.ID).Warnf("Deck and discard exhausted, drew %d of %d card(s).", drawn, count)
			break
		}
		last := len(g.Deck) - 1
		p.Hand = append(p.Hand, g.Deck[last])
		g.Deck = g.Deck[:last]
		drawn++
	}
	return drawn
}

// reshuffleDiscard sets aside the top discard, shuffles the rest into a new deck
// and leaves the set-aside card as the only discard.
func (g *UnoGame) reshuffleDiscard() {
	if len(g.DiscardPile) < 2 {
		return
	}
	topIdx := len(g.DiscardPile) - 1
	top := g.DiscardPile[topIdx]

	deck := make([]models.Card, topIdx)
	copy(deck, g.DiscardPile[:topIdx])
	Shuffle(deck, g.rng)

	g.Deck = deck
	g.DiscardPile = []models.Card{top}
	g.log.Infof("Deck reshuffled from discard pile. New size: %d", len(g.Deck))
}

// revealStartingCard pops cards until a numbered one turns up. Rejected cards go
// to the bottom of the deck so the next pop yields a different card.
func (g *UnoGame) revealStartingCard() (models.Card, bool) {
	for attempts := len(g.Deck); attempts > 0; attempts-- {
		last := len(g.Deck) - 1
		c := g.Deck[last]
		g.Deck = g.Deck[:last]
		if c.Value.IsNumber() {
			return c, true
		}
		g.Deck = append([]models.Card{c}, g.Deck...)
	}
	return models.Card{}, false
}
