package game

import (
	"math/rand"
	"testing"

	"github.com/google/uuid"
	"github.com/jason-s-yu/uno/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func countCards(deck []models.Card) map[models.Card]int {
	counts := make(map[models.Card]int)
	for _, c := range deck {
		counts[c]++
	}
	return counts
}

func TestBuildDeckComposition(t *testing.T) {
	deck := BuildDeck()
	require.Len(t, deck, DeckSize)

	counts := countCards(deck)
	for _, color := range models.ConcreteColors {
		assert.Equal(t, 1, counts[card(color, "0")], "%s 0", color)
		for _, v := range models.NumberValues[1:] {
			assert.Equal(t, 2, counts[card(color, v)], "%s %s", color, v)
		}
		for _, v := range models.ActionValues {
			assert.Equal(t, 2, counts[card(color, v)], "%s %s", color, v)
		}
	}
	assert.Equal(t, 4, counts[card(models.ColorWild, models.ValueWild)])
	assert.Equal(t, 4, counts[card(models.ColorWild, models.ValueWildDraw4)])

	for _, c := range deck {
		assert.True(t, c.Valid(), "%s should be valid", c)
	}
	assert.Equal(t, deck, BuildDeck(), "composition is deterministic")
}

func TestShufflePreservesCards(t *testing.T) {
	deck := BuildDeck()
	Shuffle(deck, rand.New(rand.NewSource(99)))
	assert.Equal(t, countCards(BuildDeck()), countCards(deck))
	assert.NotEqual(t, BuildDeck(), deck)

	again := BuildDeck()
	Shuffle(again, rand.New(rand.NewSource(99)))
	assert.Equal(t, deck, again, "same seed, same order")
}

// TestShuffleIsUniform checks every position of a 3-card deck receives each card
// roughly a third of the time.
func TestShuffleIsUniform(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	const rounds = 30000
	var hits [3][3]int
	for i := 0; i < rounds; i++ {
		deck := []models.Card{card(models.ColorRed, "0"), card(models.ColorRed, "1"), card(models.ColorRed, "2")}
		Shuffle(deck, rng)
		for pos, c := range deck {
			hits[pos][int(c.Value[0]-'0')]++
		}
	}
	for pos := range hits {
		for v := range hits[pos] {
			assert.InDelta(t, rounds/3, hits[pos][v], rounds*0.03, "position %d value %d", pos, v)
		}
	}
}

func TestDrawReshufflesDiscardKeepingTop(t *testing.T) {
	g := newTestGame(11)
	p := models.NewPlayer(uuid.New(), "A")
	top := card(models.ColorBlue, "9")
	g.Deck = []models.Card{card(models.ColorRed, "1")}
	g.DiscardPile = []models.Card{card(models.ColorRed, "2"), card(models.ColorRed, "3"), card(models.ColorGreen, "4"), top}

	drawn := g.draw(p, 3)
	assert.Equal(t, 3, drawn)
	assert.Len(t, p.Hand, 3)
	assert.Equal(t, []models.Card{top}, g.DiscardPile)
	assert.Len(t, g.Deck, 1)
	assert.Equal(t, card(models.ColorRed, "1"), p.Hand[0], "existing deck is used first")
}

func TestDrawStopsShortWhenExhausted(t *testing.T) {
	g := newTestGame(12)
	p := models.NewPlayer(uuid.New(), "A")
	top := card(models.ColorBlue, "9")
	g.Deck = []models.Card{}
	g.DiscardPile = []models.Card{card(models.ColorRed, "2"), top}

	drawn := g.draw(p, 4)
	assert.Equal(t, 1, drawn)
	assert.Equal(t, []models.Card{card(models.ColorRed, "2")}, p.Hand)
	assert.Equal(t, []models.Card{top}, g.DiscardPile)
	assert.Empty(t, g.Deck)

	assert.Equal(t, 0, g.draw(p, 1))
}

func TestRevealStartingCardSkipsActions(t *testing.T) {
	g := newTestGame(13)
	g.Deck = []models.Card{
		card(models.ColorGreen, "4"),
		card(models.ColorRed, models.ValueSkip),
		card(models.ColorWild, models.ValueWildDraw4),
	}
	c, ok := g.revealStartingCard()
	require.True(t, ok)
	assert.Equal(t, card(models.ColorGreen, "4"), c)
	assert.Equal(t, []models.Card{card(models.ColorRed, models.ValueSkip), card(models.ColorWild, models.ValueWildDraw4)}, g.Deck)

	g.Deck = []models.Card{card(models.ColorRed, models.ValueSkip)}
	_, ok = g.revealStartingCard()
	assert.False(t, ok)
	assert.Len(t, g.Deck, 1)
}

func TestIsMoveValid(t *testing.T) {
	top := card(models.ColorRed, models.ValueSkip)
	assert.True(t, IsMoveValid(card(models.ColorWild, models.ValueWild), top, models.ColorRed))
	assert.True(t, IsMoveValid(card(models.ColorRed, "3"), top, models.ColorRed))
	assert.True(t, IsMoveValid(card(models.ColorBlue, models.ValueSkip), top, models.ColorRed))
	assert.False(t, IsMoveValid(card(models.ColorBlue, "3"), top, models.ColorRed))

	// After a wild, the active color decides, not the wild's own color.
	wildTop := card(models.ColorWild, models.ValueWild)
	assert.True(t, IsMoveValid(card(models.ColorGreen, "1"), wildTop, models.ColorGreen))
	assert.False(t, IsMoveValid(card(models.ColorRed, "1"), wildTop, models.ColorGreen))
}
