// internal/handlers/client.go
package handlers

import (
	"context"
	"errors"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	sendBufferSize = 64
	writeTimeout   = 5 * time.Second
	pingPeriod     = 15 * time.Second
)

// Sender is one connected client as seen by the GameServer.
type Sender interface {
	ID() uuid.UUID
	// Send queues data without blocking and reports whether it was accepted.
	Send(data []byte) bool
	Close(code websocket.StatusCode, reason string)
}

var _ Sender = (*wsClient)(nil)

// wsClient owns a WebSocket connection. Only writeLoop writes to conn.
type wsClient struct {
	id   uuid.UUID
	conn *websocket.Conn
	send chan []byte
	log  *logrus.Entry
}

func newWSClient(id uuid.UUID, conn *websocket.Conn, logger logrus.FieldLogger) *wsClient {
	return &wsClient{
		id:   id,
		conn: conn,
		send: make(chan []byte, sendBufferSize),
		log:  logger.WithField("conn", id),
	}
}

func (c *wsClient) ID() uuid.UUID { return c.id }

// Send drops the frame when the buffer is full; the next snapshot supersedes it.
func (c *wsClient) Send(data []byte) bool {
	select {
	case c.send <- data:
		return true
	default:
		c.log.Warn("send buffer full, dropping message")
		return false
	}
}

func (c *wsClient) Close(code websocket.StatusCode, reason string) {
	c.conn.Close(code, reason)
}

// writeLoop drains the send buffer and pings the peer until ctx is done.
func (c *wsClient) writeLoop(ctx context.Context) {
	ping := time.NewTicker(pingPeriod)
	defer ping.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-c.send:
			writeCtx, cancel := context.WithTimeout(ctx, writeTimeout)
			err := c.conn.Write(writeCtx, websocket.MessageText, msg)
			cancel()
			if err != nil {
				c.logWriteError(err)
				return
			}
		case <-ping.C:
			pingCtx, cancel := context.WithTimeout(ctx, writeTimeout)
			err := c.conn.Ping(pingCtx)
			cancel()
			if err != nil {
				c.logWriteError(err)
				return
			}
		}
	}
}

// logWriteError also closes the connection so the read loop exits.
func (c *wsClient) logWriteError(err error) {
	status := websocket.CloseStatus(err)
	if status != websocket.StatusNormalClosure && status != websocket.StatusGoingAway && !errors.Is(err, context.Canceled) {
		c.log.Warnf("Error writing WebSocket message: %v (Status: %d)", err, status)
	}
	c.conn.Close(websocket.StatusInternalError, "write failed")
}
