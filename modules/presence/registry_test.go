package presence

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingSender captures envelopes in order.
type recordingSender struct {
	mu     sync.Mutex
	events []Envelope
	closed bool
	refuse bool
}

func (s *recordingSender) Send(env Envelope) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.refuse || s.closed {
		return false
	}
	s.events = append(s.events, env)
	return true
}

func (s *recordingSender) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *recordingSender) names() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.events))
	for i, e := range s.events {
		out[i] = e.Event
	}
	return out
}

func (s *recordingSender) count(event string) int {
	n := 0
	for _, name := range s.names() {
		if name == event {
			n++
		}
	}
	return n
}

func connect(r *Registry, connID, userID string) *recordingSender {
	s := &recordingSender{}
	r.AddConnection(Connection{ID: connID, UserID: userID, Name: userID, Email: userID + "@example.com"}, s)
	return s
}

func TestRegistry_OnlineBroadcastOnFirstConnectionOnly(t *testing.T) {
	r := NewRegistry()
	observer := connect(r, "c-obs", "observer")

	connect(r, "c1", "alice")
	connect(r, "c2", "alice")

	assert.Equal(t, 1, observer.count(EventUserOnline))
	assert.True(t, r.IsOnline("alice"))
	assert.Equal(t, 3, r.ConnectionCount())
	assert.Equal(t, 2, r.UserCount())
}

func TestRegistry_OnlineNotSentToSelf(t *testing.T) {
	r := NewRegistry()
	first := connect(r, "c1", "alice")
	connect(r, "c2", "alice")
	assert.Empty(t, first.names())
}

func TestRegistry_OfflineOnLastConnectionOnly(t *testing.T) {
	r := NewRegistry()
	observer := connect(r, "c-obs", "observer")
	connect(r, "c1", "alice")
	connect(r, "c2", "alice")

	r.RemoveConnection("c1")
	assert.Equal(t, 0, observer.count(EventUserOffline), "one of two connections closed")
	assert.True(t, r.IsOnline("alice"))

	r.RemoveConnection("c2")
	assert.Equal(t, 1, observer.count(EventUserOffline))
	assert.False(t, r.IsOnline("alice"))

	r.mu.RLock()
	_, tracked := r.users["alice"]
	r.mu.RUnlock()
	assert.False(t, tracked, "user is forgotten, not left as an empty set")

	r.RemoveConnection("c2")
	assert.Equal(t, 1, observer.count(EventUserOffline), "unknown id is a no-op")
}

func TestRegistry_OfflinePayload(t *testing.T) {
	r := NewRegistry()
	observer := connect(r, "c-obs", "observer")
	connect(r, "c1", "alice")
	r.RemoveConnection("c1")

	names := observer.names()
	require.Equal(t, []string{EventUserOnline, EventUserOffline}, names)
	ev, ok := observer.events[1].Data.(StatusEvent)
	require.True(t, ok)
	assert.Equal(t, "alice", ev.UserID)
	assert.False(t, ev.Timestamp.IsZero())
}

func TestRegistry_OnlineUsersOnePerUser(t *testing.T) {
	r := NewRegistry()
	connect(r, "c1", "bob")
	connect(r, "c2", "alice")
	connect(r, "c3", "alice")

	users := r.OnlineUsers()
	require.Len(t, users, 2)
	assert.Equal(t, "alice", users[0].UserID)
	assert.Contains(t, []string{"c2", "c3"}, users[0].ConnectionID)
	assert.Equal(t, "bob", users[1].UserID)
	assert.Equal(t, "bob@example.com", users[1].Email)
}

func TestRegistry_EmitToUserFansOut(t *testing.T) {
	r := NewRegistry()
	phone := connect(r, "c1", "alice")
	laptop := connect(r, "c2", "alice")
	other := connect(r, "c3", "bob")

	n := r.EmitToUser("alice", "task:updated", map[string]string{"id": "t1"})
	assert.Equal(t, 2, n)
	assert.Equal(t, 1, phone.count("task:updated"))
	assert.Equal(t, 1, laptop.count("task:updated"))
	assert.Equal(t, 0, other.count("task:updated"))

	assert.Equal(t, 0, r.EmitToUser("nobody", "task:updated", nil))
}

func TestRegistry_EmitToUsersDedups(t *testing.T) {
	r := NewRegistry()
	alice := connect(r, "c1", "alice")
	bob := connect(r, "c2", "bob")

	n := r.EmitToUsers([]string{"alice", "bob", "alice", "ghost"}, "notification", "hi")
	assert.Equal(t, 2, n)
	assert.Equal(t, 1, alice.count("notification"))
	assert.Equal(t, 1, bob.count("notification"))
}

func TestRegistry_RefusingSenderNotCounted(t *testing.T) {
	r := NewRegistry()
	r.AddConnection(Connection{ID: "c1", UserID: "alice"}, &recordingSender{refuse: true})
	assert.Equal(t, 0, r.EmitToUser("alice", "notification", nil))
}

func TestRegistry_CloseAll(t *testing.T) {
	r := NewRegistry()
	a := connect(r, "c1", "alice")
	b := connect(r, "c2", "bob")

	r.CloseAll()
	assert.True(t, a.closed)
	assert.True(t, b.closed)
	assert.Equal(t, 0, r.ConnectionCount())
	assert.False(t, r.IsOnline("alice"))
}

// reentrantSender calls back into the registry when closed.
type reentrantSender struct {
	recordingSender
	registry *Registry
	seen     int
}

func (s *reentrantSender) Close() error {
	s.seen = s.registry.ConnectionCount()
	return s.recordingSender.Close()
}

func TestRegistry_CloseAllReleasesLockBeforeClosing(t *testing.T) {
	r := NewRegistry()
	s := &reentrantSender{registry: r}
	r.AddConnection(Connection{ID: "c1", UserID: "alice"}, s)

	done := make(chan struct{})
	go func() {
		r.CloseAll()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("CloseAll held the registry lock while closing senders")
	}
	assert.True(t, s.closed)
	assert.Equal(t, 0, s.seen)
}

func TestRegistry_ConcurrentLifecycles(t *testing.T) {
	r := NewRegistry()
	observer := connect(r, "c-obs", "observer")

	const users, perUser = 20, 5
	var wg sync.WaitGroup
	for u := 0; u < users; u++ {
		for c := 0; c < perUser; c++ {
			wg.Add(1)
			go func(u, c int) {
				defer wg.Done()
				connID := fmt.Sprintf("u%d-c%d", u, c)
				userID := fmt.Sprintf("user-%d", u)
				r.AddConnection(Connection{ID: connID, UserID: userID}, &recordingSender{})
				r.EmitToUser(userID, "ping", nil)
			}(u, c)
		}
	}
	wg.Wait()
	assert.Equal(t, users*perUser+1, r.ConnectionCount())

	for u := 0; u < users; u++ {
		for c := 0; c < perUser; c++ {
			wg.Add(1)
			go func(u, c int) {
				defer wg.Done()
				r.RemoveConnection(fmt.Sprintf("u%d-c%d", u, c))
			}(u, c)
		}
	}
	wg.Wait()

	assert.Equal(t, 1, r.ConnectionCount())
	assert.Equal(t, 1, r.UserCount())
	assert.Equal(t, users, observer.count(EventUserOnline))
	assert.Equal(t, users, observer.count(EventUserOffline))
}

func TestNewConnectionID(t *testing.T) {
	a, b := NewConnectionID(), NewConnectionID()
	assert.Len(t, a, 21)
	assert.NotEqual(t, a, b)
}
