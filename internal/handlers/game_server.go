// internal/handlers/game_server.go
package handlers

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/uno/internal/cache"
	"github.com/jason-s-yu/uno/internal/database"
	"github.com/jason-s-yu/uno/internal/game"
	"github.com/jason-s-yu/uno/internal/models"
	"github.com/sirupsen/logrus"
)

const persistTimeout = 3 * time.Second

// ActionPublisher receives every accepted intent of a running game.
type ActionPublisher interface {
	Publish(ctx context.Context, record cache.ActionRecord) error
}

// ResultRecorder stores the outcome of a finished game.
type ResultRecorder interface {
	RecordGameResult(ctx context.Context, res database.GameResult) error
}

// GameServer serializes intents from every connection into the single game room
// and delivers the resulting effects.
type GameServer struct {
	// OriginPatterns is passed to websocket.Accept.
	OriginPatterns []string

	mu          sync.Mutex
	game        *game.UnoGame
	clients     map[uuid.UUID]Sender
	actionIndex int

	actions ActionPublisher
	results ResultRecorder
	log     *logrus.Entry

	// bg tracks in-flight publishes and result writes. No new work is added once
	// closing is set, so Wait cannot race with Add.
	bg      sync.WaitGroup
	closing bool
}

type Option func(*GameServer)

// WithActionLog publishes accepted intents, typically to cache.ActionLog.
func WithActionLog(p ActionPublisher) Option {
	return func(s *GameServer) { s.actions = p }
}

// WithResultStore records finished games, typically to database.ResultStore.
func WithResultStore(r ResultRecorder) Option {
	return func(s *GameServer) { s.results = r }
}

func WithOriginPatterns(patterns []string) Option {
	return func(s *GameServer) { s.OriginPatterns = patterns }
}

func NewGameServer(g *game.UnoGame, logger logrus.FieldLogger, opts ...Option) *GameServer {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	s := &GameServer{
		OriginPatterns: []string{"*"},
		game:           g,
		clients:        make(map[uuid.UUID]Sender),
		log:            logger.WithField("component", "game_server"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Connect registers a client and greets it with its connection id.
func (s *GameServer) Connect(c Sender) {
	s.mu.Lock()
	s.clients[c.ID()] = c
	n := len(s.clients)
	s.mu.Unlock()

	s.sendTo(c, welcomeMessage{Type: msgWelcome, ID: c.ID()})
	s.log.WithField("conn", c.ID()).Infof("Client connected. Total connections: %d", n)
}

// Disconnect unregisters the client and removes its player from the room.
func (s *GameServer) Disconnect(connID uuid.UUID) {
	s.mu.Lock()
	delete(s.clients, connID)
	s.mu.Unlock()

	s.Dispatch(models.Intent{Type: models.IntentDisconnect, PlayerID: connID})
	s.log.WithField("conn", connID).Info("Client disconnected.")
}

// Dispatch applies one intent and delivers its effects before the next intent runs.
func (s *GameServer) Dispatch(in models.Intent) game.Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	wasRunning := s.game.Running
	res := s.game.Apply(in)
	s.deliver(res.Effects)
	if !res.Accepted {
		return res
	}

	if in.Type == models.IntentStart {
		s.actionIndex = 0
	}
	// Lobby joins and leaves are not part of any deal.
	if wasRunning || s.game.Running {
		s.publish(in)
	}
	for _, e := range res.Effects {
		if e.Type == game.EffectGameOver {
			s.recordResult(e)
		}
	}
	return res
}

// Snapshot returns the current room state.
func (s *GameServer) Snapshot() game.GameState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.game.Snapshot()
}

// CloseAll closes every connection and waits for background writes. Intents
// dispatched afterwards, such as the disconnects it triggers, are applied but not
// persisted.
func (s *GameServer) CloseAll() {
	s.mu.Lock()
	s.closing = true
	clients := make([]Sender, 0, len(s.clients))
	for _, c := range s.clients {
		clients = append(clients, c)
	}
	s.mu.Unlock()

	for _, c := range clients {
		c.Close(ServerShutdownError, "server shutting down")
	}
	s.Wait()
}

// Wait blocks until background publishes and result writes finish.
func (s *GameServer) Wait() {
	s.bg.Wait()
}

// deliver must be called with s.mu held.
func (s *GameServer) deliver(effects []game.Effect) {
	for _, e := range effects {
		data, err := json.Marshal(effectMessage(e))
		if err != nil {
			s.log.Errorf("Failed to marshal %s effect: %v", e.Type, err)
			continue
		}
		if e.To == uuid.Nil {
			for _, c := range s.clients {
				c.Send(data)
			}
			continue
		}
		if c, ok := s.clients[e.To]; ok {
			c.Send(data)
		}
	}
}

func (s *GameServer) sendTo(c Sender, message interface{}) {
	data, err := json.Marshal(message)
	if err != nil {
		s.log.Errorf("Error marshaling WebSocket message: %v", err)
		return
	}
	c.Send(data)
}

// sendError sends a structured error frame to one connection.
func (s *GameServer) sendError(c Sender, message string) {
	s.sendTo(c, errorMessage{Type: string(game.EffectError), Message: message})
}

// publish must be called with s.mu held.
func (s *GameServer) publish(in models.Intent) {
	if s.actions == nil || s.closing {
		return
	}
	record := cache.ActionRecord{
		GameID:        s.game.ID,
		ActionIndex:   s.actionIndex,
		ActorID:       in.PlayerID,
		ActionType:    string(in.Type),
		ActionPayload: actionPayload(in),
		Timestamp:     time.Now().UnixMilli(),
	}
	s.actionIndex++

	s.bg.Add(1)
	go func() {
		defer s.bg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
		defer cancel()
		if err := s.actions.Publish(ctx, record); err != nil {
			s.log.Warnf("Failed to publish action %d of game %s: %v", record.ActionIndex, record.GameID, err)
		}
	}()
}

func actionPayload(in models.Intent) map[string]interface{} {
	switch in.Type {
	case models.IntentPlayCard:
		p := map[string]interface{}{
			"color": string(in.Card.Color),
			"value": string(in.Card.Value),
		}
		if in.ChosenColor != "" {
			p["chosenColor"] = string(in.ChosenColor)
		}
		return p
	case models.IntentJoin:
		return map[string]interface{}{"name": in.Name}
	}
	return nil
}

// recordResult must be called with s.mu held; e.State is the final snapshot.
func (s *GameServer) recordResult(e game.Effect) {
	if s.results == nil || e.State == nil || s.closing {
		return
	}
	res := database.GameResult{
		GameID:     s.game.ID,
		WinnerID:   e.WinnerID,
		WinnerName: e.Winner,
		EndedAt:    time.Now(),
	}
	for _, p := range e.State.Players {
		res.Players = append(res.Players, database.PlayerResult{ID: p.ID, Name: p.Name, CardsLeft: len(p.Hand)})
	}

	s.bg.Add(1)
	go func() {
		defer s.bg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
		defer cancel()
		if err := s.results.RecordGameResult(ctx, res); err != nil {
			s.log.Errorf("Failed to record result of game %s: %v", res.GameID, err)
			return
		}
		s.log.Infof("Recorded result of game %s (winner %s).", res.GameID, res.WinnerName)
	}()
}
