// Package presence tracks which users currently hold live realtime
// connections. The registry is an explicitly constructed instance injected
// into whoever needs to push or query presence; it carries no persistence and
// is rebuilt from scratch on restart.
package presence

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Sink is the write side of one live connection. *websocket.Conn satisfies it
// directly; tests use in-memory fakes.
type Sink interface {
	WriteJSON(v any) error
}

// Event is the envelope fanned out to a user's connections.
type Event struct {
	Event     string    `json:"event"`
	Payload   any       `json:"payload"`
	Timestamp time.Time `json:"timestamp"`
}

type Registry struct {
	mu     sync.Mutex
	byUser map[uuid.UUID]map[uuid.UUID]Sink // userID -> connID -> sink
	byConn map[uuid.UUID]uuid.UUID          // connID -> userID, makes Leave O(1)
	logger *slog.Logger
}

func NewRegistry(logger *slog.Logger) *Registry {
	return &Registry{
		byUser: make(map[uuid.UUID]map[uuid.UUID]Sink),
		byConn: make(map[uuid.UUID]uuid.UUID),
		logger: logger,
	}
}

func (r *Registry) Join(userID, connID uuid.UUID, sink Sink) {
	r.mu.Lock()
	defer r.mu.Unlock()

	conns, ok := r.byUser[userID]
	if !ok {
		conns = make(map[uuid.UUID]Sink)
		r.byUser[userID] = conns
	}
	conns[connID] = sink
	r.byConn[connID] = userID

	r.logger.Debug("connection joined", "user_id", userID, "conn_id", connID)
}

// Leave removes the connection from whichever user it was associated with.
// Unknown connections are a no-op.
func (r *Registry) Leave(connID uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	userID, ok := r.byConn[connID]
	if !ok {
		return
	}
	delete(r.byConn, connID)

	conns := r.byUser[userID]
	delete(conns, connID)
	if len(conns) == 0 {
		delete(r.byUser, userID)
	}

	r.logger.Debug("connection left", "user_id", userID, "conn_id", connID)
}

func (r *Registry) IsOnline(userID uuid.UUID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byUser[userID]) > 0
}

// SendToUser fans the event out to every live connection of the user.
// Fire-and-forget: a no-op when the user is offline, and a write failure on
// one connection does not stop the others.
func (r *Registry) SendToUser(userID uuid.UUID, event string, payload any) {
	r.mu.Lock()
	sinks := make([]Sink, 0, len(r.byUser[userID]))
	for _, s := range r.byUser[userID] {
		sinks = append(sinks, s)
	}
	r.mu.Unlock()

	if len(sinks) == 0 {
		return
	}

	msg := Event{Event: event, Payload: payload, Timestamp: time.Now()}
	for _, s := range sinks {
		if err := s.WriteJSON(msg); err != nil {
			r.logger.Warn("realtime write failed", "user_id", userID, "error", err)
		}
	}
}
