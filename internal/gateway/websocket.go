// Package gateway is the thin connection-lifecycle adapter in front of the
// presence registry: it upgrades the HTTP request, waits for the client to
// announce its user id, and keeps the registry in sync until the socket
// closes. Everything else about realtime delivery lives in presence.
package gateway

import (
	"log/slog"
	"net/http"
	"sync"

	"mentorhub-notify/internal/presence"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type joinMessage struct {
	UserID uuid.UUID `json:"userId"`
}

// wsSink serializes writes to one connection; the registry may fan out from
// multiple workers while the read loop also touches the conn.
type wsSink struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (s *wsSink) WriteJSON(v any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn.WriteJSON(v)
}

type Gateway struct {
	registry *presence.Registry
	logger   *slog.Logger
}

func NewGateway(registry *presence.Registry, logger *slog.Logger) *Gateway {
	return &Gateway{registry: registry, logger: logger}
}

// Handle upgrades the request and runs the connection until it closes.
func (g *Gateway) Handle(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		g.logger.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	var join joinMessage
	if err := conn.ReadJSON(&join); err != nil || join.UserID == uuid.Nil {
		g.logger.Warn("websocket join rejected", "error", err)
		return
	}

	connID := uuid.New()
	g.registry.Join(join.UserID, connID, &wsSink{conn: conn})
	defer g.registry.Leave(connID)

	g.logger.Info("client connected", "user_id", join.UserID, "conn_id", connID)

	// Drain the connection; the server only pushes. Exit on close or error.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			g.logger.Info("client disconnected", "user_id", join.UserID, "conn_id", connID)
			return
		}
	}
}
