// internal/handlers/game_ws.go
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/jason-s-yu/uno/internal/middleware"
	"github.com/jason-s-yu/uno/internal/models"
	"github.com/sirupsen/logrus"
)

// Subprotocol is the WebSocket subprotocol clients must request.
const Subprotocol = "uno"

// GameWSHandler upgrades the HTTP connection to WebSocket, registers the connection
// with the GameServer under a fresh id, and runs its read loop. When the loop
// exits the player is removed from the room.
func GameWSHandler(logger *logrus.Logger, gs *GameServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			Subprotocols:   []string{Subprotocol},
			OriginPatterns: gs.OriginPatterns,
		})
		if err != nil {
			logger.Warnf("WebSocket accept error: %v", err)
			return
		}
		defer c.Close(websocket.StatusInternalError, "Internal server error during handler exit.")

		if c.Subprotocol() != Subprotocol {
			logger.Warnf("Client %s connected with invalid subprotocol: %q", r.RemoteAddr, c.Subprotocol())
			c.Close(BadSubprotocolError, "Client must use the 'uno' subprotocol.")
			return
		}
		middleware.LogWebSocketConnect(logger, r.RemoteAddr, r.URL.Path)

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		client := newWSClient(uuid.New(), c, logger)
		go client.writeLoop(ctx)
		gs.Connect(client)

		err = readGameMessages(ctx, c, gs, client, logger)

		gs.Disconnect(client.ID())
		middleware.LogWebSocketDisconnect(logger, r.RemoteAddr, r.URL.Path, err)
		c.Close(websocket.StatusNormalClosure, "")
	}
}

// readGameMessages reads frames until the connection fails or ctx is cancelled.
// A clean close returns nil.
func readGameMessages(ctx context.Context, c *websocket.Conn, gs *GameServer, client Sender, logger *logrus.Logger) error {
	log := logger.WithField("conn", client.ID())
	for {
		msgType, data, err := c.Read(ctx)
		if err != nil {
			status := websocket.CloseStatus(err)
			if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway || errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}
		if msgType != websocket.MessageText {
			log.Warnf("Received non-text message type %d. Ignoring.", msgType)
			continue
		}

		var msg ClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			log.Warnf("Invalid JSON received: %v. Data: %s", err, string(data))
			gs.sendError(client, "Invalid JSON format.")
			continue
		}
		log.Debugf("Received action '%s'.", msg.Type)

		switch models.IntentType(msg.Type) {
		case models.IntentJoin, models.IntentStart, models.IntentPlayCard, models.IntentDrawCard:
			gs.Dispatch(msg.Intent(client.ID()))
		default:
			if msg.Type == msgPing {
				gs.sendTo(client, map[string]string{"type": msgPong})
				continue
			}
			log.Warnf("Unknown action type '%s'.", msg.Type)
			gs.sendError(client, fmt.Sprintf("Unknown action type: %s", msg.Type))
		}
	}
}
