package presence

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-monolith/mono/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockLogger implements types.Logger for testing
type mockLogger struct{}

func (m *mockLogger) Debug(_ string, _ ...any) {}
func (m *mockLogger) Info(_ string, _ ...any)  {}
func (m *mockLogger) Warn(_ string, _ ...any)  {}
func (m *mockLogger) Error(_ string, _ ...any) {}
func (m *mockLogger) With(_ ...any) types.Logger {
	return m
}
func (m *mockLogger) WithModule(_ string) types.Logger {
	return m
}
func (m *mockLogger) WithError(_ error) types.Logger {
	return m
}

// fakeConn records written frames. Writes block while gate is held.
type fakeConn struct {
	mu         sync.Mutex
	frames     []Envelope
	closed     bool
	released   bool
	lateWrites int
	attempts   atomic.Int32
	gate       chan struct{}
	failErr    error
}

func (c *fakeConn) WriteJSON(v any) error {
	c.attempts.Add(1)
	if c.gate != nil {
		<-c.gate
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.released {
		c.lateWrites++
	}
	if c.failErr != nil {
		return c.failErr
	}
	c.frames = append(c.frames, v.(Envelope))
	return nil
}

func (c *fakeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *fakeConn) written() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.frames))
	for i, f := range c.frames {
		out[i] = f.Event
	}
	return out
}

func TestQueuedSender_FIFO(t *testing.T) {
	conn := &fakeConn{}
	s := NewQueuedSender(conn, 16, &mockLogger{})

	for _, e := range []string{"a", "b", "c", "d"} {
		require.True(t, s.Send(Envelope{Event: e}))
	}

	assert.Eventually(t, func() bool { return len(conn.written()) == 4 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{"a", "b", "c", "d"}, conn.written())

	require.NoError(t, s.Close())
	s.Wait()
	assert.True(t, conn.closed)
	assert.False(t, s.Send(Envelope{Event: "late"}))
	assert.NoError(t, s.Close())
}

func TestQueuedSender_DropsWhenFull(t *testing.T) {
	conn := &fakeConn{gate: make(chan struct{})}
	s := NewQueuedSender(conn, 2, &mockLogger{})

	accepted := 0
	for i := 0; i < 10; i++ {
		if s.Send(Envelope{Event: "x"}) {
			accepted++
		}
	}
	// Queue of two plus at most one frame held by the blocked writer.
	assert.LessOrEqual(t, accepted, 3)
	assert.GreaterOrEqual(t, accepted, 2)
	assert.EqualValues(t, 10-accepted, s.Dropped())

	close(conn.gate)
	assert.Eventually(t, func() bool { return len(conn.written()) == accepted }, time.Second, 5*time.Millisecond)
	_ = s.Close()
}

func TestQueuedSender_NoWritesAfterClose(t *testing.T) {
	for i := 0; i < 200; i++ {
		conn := &fakeConn{gate: make(chan struct{})}
		s := NewQueuedSender(conn, 8, &mockLogger{})

		// The writer blocks on the gate with the first frame; the rest queue up.
		require.True(t, s.Send(Envelope{Event: "first"}))
		require.Eventually(t, func() bool { return conn.attempts.Load() == 1 }, time.Second, time.Millisecond)
		for j := 0; j < 5; j++ {
			require.True(t, s.Send(Envelope{Event: "pending"}))
		}

		closed := make(chan struct{})
		go func() {
			_ = s.Close()
			close(closed)
		}()

		require.Eventually(t, func() bool {
			conn.mu.Lock()
			defer conn.mu.Unlock()
			return conn.closed
		}, time.Second, time.Millisecond)

		select {
		case <-closed:
			t.Fatal("Close returned while a write was in progress")
		default:
		}

		close(conn.gate)
		<-closed

		// What the websocket package does once the handler returns.
		conn.mu.Lock()
		conn.released = true
		conn.mu.Unlock()

		time.Sleep(time.Millisecond)
		conn.mu.Lock()
		assert.Zero(t, conn.lateWrites)
		assert.LessOrEqual(t, len(conn.frames), 1, "queued frames must be dropped once closed")
		conn.mu.Unlock()
	}
}

func TestQueuedSender_WriteErrorCloses(t *testing.T) {
	conn := &fakeConn{failErr: errors.New("broken pipe")}
	s := NewQueuedSender(conn, 4, &mockLogger{})

	require.True(t, s.Send(Envelope{Event: "a"}))
	s.Wait()
	assert.True(t, conn.closed)
	assert.False(t, s.Send(Envelope{Event: "b"}))
}

func TestPresenceModule(t *testing.T) {
	m := NewModule(8, &mockLogger{})
	assert.Equal(t, "presence", m.Name())
	require.NotNil(t, m.Registry())

	conn := &fakeConn{}
	m.Registry().AddConnection(Connection{ID: "c1", UserID: "alice"}, m.NewSender(conn))

	h := m.Health(t.Context())
	assert.True(t, h.Healthy)
	assert.Contains(t, h.Message, "1 users online")

	require.NoError(t, m.Stop(t.Context()))
	assert.Equal(t, 0, m.Registry().ConnectionCount())
	assert.Eventually(t, func() bool {
		conn.mu.Lock()
		defer conn.mu.Unlock()
		return conn.closed
	}, time.Second, 5*time.Millisecond)
}
