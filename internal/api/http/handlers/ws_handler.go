package handlers

import (
	"sync"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/sweetshop/internal/broadcast"
)

// WSHandler attaches websocket listeners to the broadcast hub.
type WSHandler struct {
	hub          *broadcast.Hub
	writeTimeout time.Duration
	logger       *zap.Logger
}

// NewWSHandler constructs handler.
func NewWSHandler(hub *broadcast.Hub, writeTimeout time.Duration, logger *zap.Logger) *WSHandler {
	return &WSHandler{hub: hub, writeTimeout: writeTimeout, logger: logger}
}

// Upgrade rejects plain HTTP requests on the websocket route.
func (h *WSHandler) Upgrade(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}

// Listen GET /ws.
func (h *WSHandler) Listen() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		listener := &wsListener{id: uuid.NewString(), conn: conn, writeTimeout: h.writeTimeout}
		h.hub.Subscribe(listener)
		defer h.hub.Unsubscribe(listener.id)

		// Inbound frames are ignored; reading detects the peer going away.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				h.logger.Debug("listener disconnected", zap.String("listener_id", listener.id), zap.Error(err))
				return
			}
		}
	})
}

// frameWriter is the part of a websocket connection a listener writes through.
type frameWriter interface {
	SetWriteDeadline(t time.Time) error
	WriteMessage(messageType int, data []byte) error
}

type wsListener struct {
	id           string
	conn         frameWriter
	writeTimeout time.Duration

	mu sync.Mutex
}

func (l *wsListener) ID() string { return l.id }

func (l *wsListener) Send(message []byte) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.writeTimeout > 0 {
		if err := l.conn.SetWriteDeadline(time.Now().Add(l.writeTimeout)); err != nil {
			return err
		}
	}
	return l.conn.WriteMessage(websocket.TextMessage, message)
}
