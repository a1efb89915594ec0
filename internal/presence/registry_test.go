//go:build unit

package presence

import (
	"errors"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSink struct {
	events []Event
	err    error
}

func (f *fakeSink) WriteJSON(v any) error {
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, v.(Event))
	return nil
}

func newTestRegistry() *Registry {
	return NewRegistry(slog.New(slog.DiscardHandler))
}

func TestRegistry_Presence(t *testing.T) {
	t.Run("user is online while any connection is live", func(t *testing.T) {
		r := newTestRegistry()
		userID := uuid.New()
		conn1, conn2 := uuid.New(), uuid.New()

		assert.False(t, r.IsOnline(userID))

		r.Join(userID, conn1, &fakeSink{})
		r.Join(userID, conn2, &fakeSink{})
		assert.True(t, r.IsOnline(userID))

		r.Leave(conn1)
		assert.True(t, r.IsOnline(userID))

		r.Leave(conn2)
		assert.False(t, r.IsOnline(userID))
	})

	t.Run("leaving an unknown connection is a no-op", func(t *testing.T) {
		r := newTestRegistry()
		r.Leave(uuid.New())
	})

	t.Run("rejoining after a restart-like cycle works", func(t *testing.T) {
		r := newTestRegistry()
		userID := uuid.New()
		connID := uuid.New()

		r.Join(userID, connID, &fakeSink{})
		r.Leave(connID)
		r.Join(userID, connID, &fakeSink{})
		assert.True(t, r.IsOnline(userID))
	})
}

func TestRegistry_SendToUser(t *testing.T) {
	t.Run("fans out to every connection of the user", func(t *testing.T) {
		r := newTestRegistry()
		userID := uuid.New()
		sink1, sink2 := &fakeSink{}, &fakeSink{}
		other := &fakeSink{}

		r.Join(userID, uuid.New(), sink1)
		r.Join(userID, uuid.New(), sink2)
		r.Join(uuid.New(), uuid.New(), other)

		r.SendToUser(userID, "notification", map[string]string{"title": "hola"})

		require.Len(t, sink1.events, 1)
		require.Len(t, sink2.events, 1)
		assert.Empty(t, other.events)

		assert.Equal(t, "notification", sink1.events[0].Event)
		assert.False(t, sink1.events[0].Timestamp.IsZero())
	})

	t.Run("offline user is a silent no-op", func(t *testing.T) {
		r := newTestRegistry()
		r.SendToUser(uuid.New(), "notification", nil)
	})

	t.Run("one failing connection does not stop the others", func(t *testing.T) {
		r := newTestRegistry()
		userID := uuid.New()
		bad := &fakeSink{err: errors.New("broken pipe")}
		good := &fakeSink{}

		r.Join(userID, uuid.New(), bad)
		r.Join(userID, uuid.New(), good)

		r.SendToUser(userID, "notification", nil)
		assert.Len(t, good.events, 1)
	})

	t.Run("delivery stops after leave", func(t *testing.T) {
		r := newTestRegistry()
		userID := uuid.New()
		connID := uuid.New()
		sink := &fakeSink{}

		r.Join(userID, connID, sink)
		r.Leave(connID)

		r.SendToUser(userID, "notification", nil)
		assert.Empty(t, sink.events)
	})
}
