// internal/game/game.go
package game

import (
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/uno/internal/models"
	"github.com/sirupsen/logrus"
)

// UnoGame holds the entire state for a single game room in memory.
// It performs no I/O and is not safe for concurrent use; the caller serializes intents.
type UnoGame struct {
	// ID identifies the current deal. It is regenerated by every Start.
	ID uuid.UUID

	HouseRules models.HouseRules

	Players     []*models.Player
	Deck        []models.Card
	DiscardPile []models.Card

	CurrentPlayerIndex int
	Direction          int
	CurrentColor       models.Color
	Running            bool

	// Winner is the display name of the last player to empty their hand.
	Winner string

	rng *rand.Rand
	log *logrus.Entry
}

// NewUnoGame builds an empty room. A nil rng is replaced by a time-seeded source
// and a nil logger by the logrus standard logger.
func NewUnoGame(rng *rand.Rand, rules models.HouseRules, logger logrus.FieldLogger) *UnoGame {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &UnoGame{
		ID:          uuid.New(),
		HouseRules:  rules,
		Players:     []*models.Player{},
		Deck:        []models.Card{},
		DiscardPile: []models.Card{},
		Direction:   1,
		rng:         rng,
		log:         logger.WithField("component", "game"),
	}
}

// Apply routes an intent to the matching operation. It is the single entry point
// used by the transport.
func (g *UnoGame) Apply(in models.Intent) Result {
	var res Result
	switch in.Type {
	case models.IntentJoin:
		res = g.Join(in.PlayerID, in.Name)
	case models.IntentStart:
		res = g.Start()
	case models.IntentPlayCard:
		if in.Card == nil {
			res = rejected(ReasonInvalidMove)
			break
		}
		res = g.PlayCard(in.PlayerID, *in.Card, in.ChosenColor)
	case models.IntentDrawCard:
		res = g.DrawCard(in.PlayerID)
	case models.IntentDisconnect:
		res = g.Leave(in.PlayerID)
	default:
		res = rejected(ReasonUnknownIntent)
	}
	if !res.Accepted {
		g.log.WithFields(logrus.Fields{
			"intent": in.Type,
			"player": in.PlayerID,
			"reason": res.Reason,
		}).Debug("Intent rejected")
	}
	return res
}

// Join appends a new player with an empty hand.
func (g *UnoGame) Join(playerID uuid.UUID, name string) Result {
	if g.Running {
		return Result{
			Reason:  ReasonGameRunning,
			Effects: []Effect{errorTo(playerID, ReasonGameRunning)},
		}
	}
	if g.getPlayerByID(playerID) != nil {
		return rejected(ReasonAlreadyJoined)
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return rejected(ReasonInvalidName)
	}
	if g.HouseRules.MaxPlayers > 0 && len(g.Players) >= g.HouseRules.MaxPlayers {
		return Result{
			Reason:  ReasonRoomFull,
			Effects: []Effect{errorTo(playerID, ReasonRoomFull)},
		}
	}

	g.Players = append(g.Players, models.NewPlayer(playerID, name))
	g.log.Infof("%s has joined the lobby. Total players: %d", name, len(g.Players))
	return accepted(g.stateUpdate())
}

// Leave removes a player. Any cards they hold go to the bottom of the deck, also
// after a game has ended. A running game stops when fewer than MinPlayers remain;
// otherwise the turn pointer keeps pointing at the same player, or moves to the next
// player in the current direction when the current player left.
func (g *UnoGame) Leave(playerID uuid.UUID) Result {
	idx := g.getPlayerIndex(playerID)
	if idx < 0 {
		return rejected(ReasonUnknownPlayer)
	}
	leaver := g.Players[idx]
	name := leaver.Name
	g.Players = append(g.Players[:idx], g.Players[idx+1:]...)
	if len(leaver.Hand) > 0 {
		g.Deck = append(cloneCards(leaver.Hand), g.Deck...)
	}

	if g.Running && len(g.Players) < g.HouseRules.MinPlayers {
		g.Running = false
		g.log.Infof("%s left; not enough players, game stopped.", name)
		return accepted(g.stateUpdate())
	}

	n := len(g.Players)
	switch {
	case n == 0:
		g.CurrentPlayerIndex = 0
	case idx < g.CurrentPlayerIndex:
		g.CurrentPlayerIndex--
	case idx == g.CurrentPlayerIndex && g.Direction < 0:
		// Seat idx now holds the player after the leaver in clockwise order.
		g.CurrentPlayerIndex = seat(idx-1, n)
	case g.CurrentPlayerIndex >= n:
		g.CurrentPlayerIndex = 0
	}
	g.log.Infof("%s left. Total players: %d", name, n)
	return accepted(g.stateUpdate())
}

// Start deals a fresh game. It requires MinPlayers and a stopped game.
func (g *UnoGame) Start() Result {
	if g.Running {
		return rejected(ReasonGameRunning)
	}
	if len(g.Players) < g.HouseRules.MinPlayers {
		return rejected(ReasonNotEnoughPlayers)
	}
	if len(g.Players)*g.HouseRules.HandSize >= DeckSize {
		return rejected(ReasonRoomFull)
	}

	g.ID = uuid.New()
	g.Deck = BuildDeck()
	Shuffle(g.Deck, g.rng)
	g.DiscardPile = []models.Card{}
	for _, p := range g.Players {
		p.Hand = make([]models.Card, 0, g.HouseRules.HandSize)
	}
	for _, p := range g.Players {
		g.draw(p, g.HouseRules.HandSize)
	}

	first, ok := g.revealStartingCard()
	if !ok {
		// Only reachable when the deal leaves no numbered card in the deck.
		last := len(g.Deck) - 1
		first = g.Deck[last]
		g.Deck = g.Deck[:last]
		g.log.Warnf("No numbered card left to reveal; starting on %s.", first)
	}
	g.DiscardPile = append(g.DiscardPile, first)
	g.CurrentColor = first.Color
	if !g.CurrentColor.IsConcrete() {
		g.CurrentColor = models.ColorRed
	}

	g.Running = true
	g.Winner = ""
	g.CurrentPlayerIndex = 0
	g.Direction = 1

	g.log.WithField("game", g.ID).Infof("Game started with %d players; first card %s.", len(g.Players), first)
	return accepted(g.stateUpdate())
}

// PlayCard plays one card matching card by color and value from the current player's hand.
// chosenColor is required for wild cards and ignored otherwise.
func (g *UnoGame) PlayCard(playerID uuid.UUID, card models.Card, chosenColor models.Color) Result {
	if !g.Running {
		return rejected(ReasonGameNotRunning)
	}
	player := g.currentPlayer()
	if player.ID != playerID {
		return rejected(ReasonNotYourTurn)
	}
	if !card.Valid() || !IsMoveValid(card, g.topDiscard(), g.CurrentColor) {
		return rejected(ReasonInvalidMove)
	}
	idx := player.HandIndex(card)
	if idx < 0 {
		return rejected(ReasonCardNotInHand)
	}
	if card.Color == models.ColorWild && !chosenColor.IsConcrete() {
		return rejected(ReasonInvalidColor)
	}

	player.RemoveAt(idx)
	g.DiscardPile = append(g.DiscardPile, card)
	if card.Color == models.ColorWild {
		g.CurrentColor = chosenColor
	} else {
		g.CurrentColor = card.Color
	}

	n := len(g.Players)
	next := g.Players[seat(g.CurrentPlayerIndex+g.Direction, n)]
	if card.Value == models.ValueReverse {
		g.Direction = -g.Direction
	}
	if count := penaltyDraw(card.Value); count > 0 {
		g.draw(next, count)
	}

	if len(player.Hand) == 0 {
		g.Running = false
		g.Winner = player.Name
		g.log.WithField("game", g.ID).Infof("%s wins.", player.Name)
		final := g.Snapshot()
		return accepted(Effect{
			Type:     EffectGameOver,
			State:    &final,
			Winner:   player.Name,
			WinnerID: player.ID,
		})
	}

	g.CurrentPlayerIndex = seat(g.CurrentPlayerIndex+turnIncrement(card.Value)*g.Direction, n)
	return accepted(g.stateUpdate())
}

// DrawCard draws exactly one card for the current player and ends their turn.
func (g *UnoGame) DrawCard(playerID uuid.UUID) Result {
	if !g.Running {
		return rejected(ReasonGameNotRunning)
	}
	player := g.currentPlayer()
	if player.ID != playerID {
		return rejected(ReasonNotYourTurn)
	}
	g.draw(player, 1)
	g.CurrentPlayerIndex = seat(g.CurrentPlayerIndex+g.Direction, len(g.Players))
	return accepted(g.stateUpdate())
}

func (g *UnoGame) stateUpdate() Effect {
	s := g.Snapshot()
	return Effect{Type: EffectStateUpdate, State: &s}
}

func errorTo(playerID uuid.UUID, reason Reason) Effect {
	return Effect{Type: EffectError, To: playerID, Message: reason.Message()}
}

// currentPlayer assumes the game is running, which implies a valid index.
func (g *UnoGame) currentPlayer() *models.Player {
	return g.Players[g.CurrentPlayerIndex]
}

func (g *UnoGame) topDiscard() models.Card {
	return g.DiscardPile[len(g.DiscardPile)-1]
}

func (g *UnoGame) getPlayerByID(playerID uuid.UUID) *models.Player {
	if i := g.getPlayerIndex(playerID); i >= 0 {
		return g.Players[i]
	}
	return nil
}

func (g *UnoGame) getPlayerIndex(playerID uuid.UUID) int {
	for i, p := range g.Players {
		if p.ID == playerID {
			return i
		}
	}
	return -1
}
