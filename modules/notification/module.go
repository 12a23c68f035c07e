package notification

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"github.com/go-monolith/mono/pkg/types"

	"github.com/vishu1803/Collaborative-task-manager/events"
)

// Emitter fans an event out to users' live connections.
// *presence.Registry satisfies it.
type Emitter interface {
	EmitToUsers(userIDs []string, event string, payload any) int
}

// NotificationModule turns task events into realtime notifications.
// It subscribes to domain events using the EventConsumerModule interface.
type NotificationModule struct {
	emitter    Emitter
	logger     types.Logger
	dispatched atomic.Int64
	delivered  atomic.Int64
}

var _ mono.Module = (*NotificationModule)(nil)
var _ mono.EventConsumerModule = (*NotificationModule)(nil)
var _ mono.HealthCheckableModule = (*NotificationModule)(nil)

func NewModule(logger types.Logger) *NotificationModule {
	return &NotificationModule{
		logger: logger.WithModule("notification"),
	}
}

func (m *NotificationModule) Name() string {
	return "notification"
}

// SetEmitter injects the presence registry.
func (m *NotificationModule) SetEmitter(e Emitter) {
	m.emitter = e
}

func (m *NotificationModule) RegisterEventConsumers(registry mono.EventRegistry) error {
	if err := helper.RegisterTypedEventConsumer(registry, events.TaskCreatedV1, m.handleTaskCreated, m); err != nil {
		return fmt.Errorf("failed to register TaskCreated consumer: %w", err)
	}
	if err := helper.RegisterTypedEventConsumer(registry, events.TaskUpdatedV1, m.handleTaskUpdated, m); err != nil {
		return fmt.Errorf("failed to register TaskUpdated consumer: %w", err)
	}
	if err := helper.RegisterTypedEventConsumer(registry, events.TaskDeletedV1, m.handleTaskDeleted, m); err != nil {
		return fmt.Errorf("failed to register TaskDeleted consumer: %w", err)
	}

	m.logger.Info("Registered event consumers", "events", "TaskCreated, TaskUpdated, TaskDeleted")
	return nil
}

func (m *NotificationModule) handleTaskCreated(_ context.Context, event events.TaskCreatedEvent, _ *mono.Msg) error {
	m.deliver(Mutation{After: &event.Task, Actor: event.Actor, At: event.Timestamp})
	return nil
}

func (m *NotificationModule) handleTaskUpdated(_ context.Context, event events.TaskUpdatedEvent, _ *mono.Msg) error {
	m.deliver(Mutation{Before: &event.Before, After: &event.After, Actor: event.Actor, At: event.Timestamp})
	return nil
}

func (m *NotificationModule) handleTaskDeleted(_ context.Context, event events.TaskDeletedEvent, _ *mono.Msg) error {
	m.deliver(Mutation{Before: &event.Task, Actor: event.Actor, At: event.Timestamp})
	return nil
}

// deliver is fire-and-forget: offline recipients simply miss the event.
func (m *NotificationModule) deliver(mut Mutation) {
	if m.emitter == nil {
		m.logger.Warn("Emitter not set, dropping notifications")
		return
	}
	for _, d := range Plan(mut) {
		for _, event := range d.Events {
			n := m.emitter.EmitToUsers(d.Recipients, event, d.Notification)
			m.delivered.Add(int64(n))
		}
		m.dispatched.Add(1)
		m.logger.Debug("Notification dispatched",
			"type", d.Notification.Type, "recipients", d.Recipients, "events", d.Events)
	}
}

func (m *NotificationModule) Start(_ context.Context) error {
	if m.emitter == nil {
		return fmt.Errorf("emitter not set")
	}
	m.logger.Info("Module started - listening for task events")
	return nil
}

func (m *NotificationModule) Stop(_ context.Context) error {
	m.logger.Info("Module stopped")
	return nil
}

func (m *NotificationModule) Health(_ context.Context) mono.HealthStatus {
	return mono.HealthStatus{
		Healthy: m.emitter != nil,
		Message: fmt.Sprintf("%d dispatches, %d deliveries", m.dispatched.Load(), m.delivered.Load()),
	}
}
