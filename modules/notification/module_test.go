package notification

import (
	"sync"
	"testing"

	"github.com/go-monolith/mono/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vishu1803/Collaborative-task-manager/domain/task"
	"github.com/vishu1803/Collaborative-task-manager/events"
	"github.com/vishu1803/Collaborative-task-manager/modules/presence"
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

// inbox is a presence.Sender that keeps what it receives.
type inbox struct {
	mu     sync.Mutex
	events []string
}

func (b *inbox) Send(env presence.Envelope) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if env.Event == presence.EventUserOnline || env.Event == presence.EventUserOffline {
		return true
	}
	b.events = append(b.events, env.Event)
	return true
}

func (b *inbox) Close() error { return nil }

func (b *inbox) received() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.events...)
}

func setup(t *testing.T, users ...string) (*NotificationModule, map[string]*inbox) {
	t.Helper()
	registry := presence.NewRegistry()
	boxes := make(map[string]*inbox, len(users))
	for _, u := range users {
		b := &inbox{}
		boxes[u] = b
		registry.AddConnection(presence.Connection{ID: presence.NewConnectionID(), UserID: u, Name: u}, b)
	}

	m := NewModule(&mockLogger{})
	m.SetEmitter(registry)
	require.NoError(t, m.Start(t.Context()))
	return m, boxes
}

func TestModule_StartRequiresEmitter(t *testing.T) {
	m := NewModule(&mockLogger{})
	assert.Error(t, m.Start(t.Context()))
	assert.False(t, m.Health(t.Context()).Healthy)
}

func TestModule_TaskCreated(t *testing.T) {
	m, boxes := setup(t, "creator", "assignee", "bystander")
	created := sampleTask()

	require.NoError(t, m.handleTaskCreated(t.Context(), events.TaskCreatedEvent{Task: created, Actor: actor, Timestamp: at}, nil))

	assert.Equal(t, []string{EventTaskCreated, EventTaskAssigned, EventNotification}, boxes["assignee"].received())
	assert.Empty(t, boxes["creator"].received())
	assert.Empty(t, boxes["bystander"].received())
}

func TestModule_StatusChangeSelfAssignedDeliversOnce(t *testing.T) {
	m, boxes := setup(t, "creator")
	before := sampleTask()
	before.AssigneeID = "creator"
	after := before
	after.Status = task.StatusReview

	require.NoError(t, m.handleTaskUpdated(t.Context(), events.TaskUpdatedEvent{Before: before, After: after, Actor: actor}, nil))
	assert.Equal(t, []string{EventTaskStatusChanged, EventNotification}, boxes["creator"].received())
}

func TestModule_Reassignment(t *testing.T) {
	m, boxes := setup(t, "creator", "assignee", "newcomer")
	before := sampleTask()
	after := before
	after.AssigneeID = "newcomer"

	require.NoError(t, m.handleTaskUpdated(t.Context(), events.TaskUpdatedEvent{Before: before, After: after, Actor: actor}, nil))

	assert.Equal(t, []string{EventTaskUpdated}, boxes["assignee"].received())
	assert.Equal(t, []string{EventTaskAssigned, EventNotification}, boxes["newcomer"].received())
	assert.Empty(t, boxes["creator"].received())
}

func TestModule_TaskDeleted(t *testing.T) {
	m, boxes := setup(t, "creator", "assignee")
	gone := sampleTask()

	require.NoError(t, m.handleTaskDeleted(t.Context(), events.TaskDeletedEvent{Task: gone, Actor: actor}, nil))

	assert.Equal(t, []string{EventTaskDeleted, EventNotification}, boxes["assignee"].received())
	assert.Empty(t, boxes["creator"].received())
	assert.Contains(t, m.Health(t.Context()).Message, "1 dispatches, 2 deliveries")
}

func TestModule_OfflineRecipientIsNoop(t *testing.T) {
	m, _ := setup(t)
	created := sampleTask()
	assert.NoError(t, m.handleTaskCreated(t.Context(), events.TaskCreatedEvent{Task: created, Actor: actor}, nil))
}
