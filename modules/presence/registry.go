package presence

import (
	"sort"
	"sync"
	"time"

	nanoid "github.com/jaevor/go-nanoid"
)

// Presence event names.
const (
	EventUserOnline  = "user:online"
	EventUserOffline = "user:offline"
)

// Envelope is one outbound event as written on the wire.
type Envelope struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// Sender delivers envelopes to one live connection. Send must not block; it
// reports false when the event was not accepted. Close must not return while
// a write to the connection is still in progress.
type Sender interface {
	Send(env Envelope) bool
	Close() error
}

// Connection is a snapshot of who opened a connection.
type Connection struct {
	ID          string    `json:"connectionId"`
	UserID      string    `json:"userId"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	ConnectedAt time.Time `json:"connectedAt"`
}

// OnlineUser is one entry of the online list.
type OnlineUser struct {
	UserID       string `json:"userId"`
	ConnectionID string `json:"connectionId"`
	Name         string `json:"name"`
	Email        string `json:"email"`
}

// StatusEvent is the payload of user:online and user:offline.
type StatusEvent struct {
	UserID    string    `json:"userId"`
	Name      string    `json:"name"`
	Timestamp time.Time `json:"timestamp"`
}

type entry struct {
	conn   Connection
	sender Sender
}

// Registry tracks live connections per user.
type Registry struct {
	mu    sync.RWMutex
	users map[string]map[string]struct{} // userID -> set of connIDs
	conns map[string]*entry              // connID -> entry
	now   func() time.Time
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		users: make(map[string]map[string]struct{}),
		conns: make(map[string]*entry),
		now:   time.Now,
	}
}

var generateID = mustGenerator()

func mustGenerator() func() string {
	gen, err := nanoid.Standard(21)
	if err != nil {
		panic(err)
	}
	return gen
}

// NewConnectionID returns a fresh random connection id.
func NewConnectionID() string {
	return generateID()
}

// AddConnection records conn. The first connection of a user announces them
// online to every other connected user.
func (r *Registry) AddConnection(conn Connection, sender Sender) {
	if conn.ConnectedAt.IsZero() {
		conn.ConnectedAt = r.now()
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if old, ok := r.conns[conn.ID]; ok {
		r.detach(conn.ID, old)
	}

	set, ok := r.users[conn.UserID]
	first := !ok || len(set) == 0
	if !ok {
		set = make(map[string]struct{})
		r.users[conn.UserID] = set
	}
	set[conn.ID] = struct{}{}
	r.conns[conn.ID] = &entry{conn: conn, sender: sender}

	if first {
		r.broadcastExcept(conn.UserID, Envelope{
			Event: EventUserOnline,
			Data:  StatusEvent{UserID: conn.UserID, Name: conn.Name, Timestamp: r.now()},
		})
	}
}

// RemoveConnection forgets connID. When it was the user's last connection
// the user is announced offline and dropped. Unknown ids are ignored.
func (r *Registry) RemoveConnection(connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.conns[connID]
	if !ok {
		return
	}
	if r.detach(connID, e) {
		r.broadcastExcept(e.conn.UserID, Envelope{
			Event: EventUserOffline,
			Data:  StatusEvent{UserID: e.conn.UserID, Name: e.conn.Name, Timestamp: r.now()},
		})
	}
}

// detach removes connID and reports whether its user has no connections left.
// Caller holds r.mu.
func (r *Registry) detach(connID string, e *entry) bool {
	delete(r.conns, connID)
	set := r.users[e.conn.UserID]
	delete(set, connID)
	if len(set) == 0 {
		delete(r.users, e.conn.UserID)
		return true
	}
	return false
}

// broadcastExcept sends env to every connection not owned by userID.
// Caller holds r.mu.
func (r *Registry) broadcastExcept(userID string, env Envelope) {
	for _, e := range r.conns {
		if e.conn.UserID != userID {
			e.sender.Send(env)
		}
	}
}

// IsOnline reports whether userID has at least one live connection.
func (r *Registry) IsOnline(userID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.users[userID]) > 0
}

// OnlineUsers returns one entry per online user, ordered by name.
func (r *Registry) OnlineUsers() []OnlineUser {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]OnlineUser, 0, len(r.users))
	for _, set := range r.users {
		for connID := range set {
			c := r.conns[connID].conn
			out = append(out, OnlineUser{UserID: c.UserID, ConnectionID: c.ID, Name: c.Name, Email: c.Email})
			break
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].UserID < out[j].UserID
	})
	return out
}

// EmitToUser delivers one event to each of userID's live connections and
// returns how many accepted it. An offline user is a silent no-op.
func (r *Registry) EmitToUser(userID, event string, payload any) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.emit(userID, Envelope{Event: event, Data: payload})
}

// EmitToUsers applies EmitToUser to each distinct id.
func (r *Registry) EmitToUsers(userIDs []string, event string, payload any) int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	env := Envelope{Event: event, Data: payload}
	seen := make(map[string]struct{}, len(userIDs))
	delivered := 0
	for _, id := range userIDs {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		delivered += r.emit(id, env)
	}
	return delivered
}

func (r *Registry) emit(userID string, env Envelope) int {
	delivered := 0
	for connID := range r.users[userID] {
		if r.conns[connID].sender.Send(env) {
			delivered++
		}
	}
	return delivered
}

// ConnectionCount returns the number of live connections.
func (r *Registry) ConnectionCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}

// UserCount returns the number of online users.
func (r *Registry) UserCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.users)
}

// CloseAll closes every connection and empties the registry. No presence
// events are sent.
func (r *Registry) CloseAll() {
	r.mu.Lock()
	senders := make([]Sender, 0, len(r.conns))
	for _, e := range r.conns {
		senders = append(senders, e.sender)
	}
	r.users = make(map[string]map[string]struct{})
	r.conns = make(map[string]*entry)
	r.mu.Unlock()

	for _, s := range senders {
		_ = s.Close()
	}
}
