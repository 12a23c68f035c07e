package presence

import (
	"context"
	"fmt"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/types"
)

// PresenceModule owns the connection registry.
type PresenceModule struct {
	registry  *Registry
	queueSize int
	logger    types.Logger
}

var _ mono.Module = (*PresenceModule)(nil)
var _ mono.HealthCheckableModule = (*PresenceModule)(nil)

// NewModule creates a PresenceModule. queueSize bounds each connection's
// outbound queue.
func NewModule(queueSize int, logger types.Logger) *PresenceModule {
	return &PresenceModule{
		registry:  NewRegistry(),
		queueSize: queueSize,
		logger:    logger.WithModule("presence"),
	}
}

func (m *PresenceModule) Name() string {
	return "presence"
}

// Registry returns the registry shared with the api and notification modules.
func (m *PresenceModule) Registry() *Registry {
	return m.registry
}

// NewSender wraps a connection in a QueuedSender sized for this module.
func (m *PresenceModule) NewSender(w FrameWriter) *QueuedSender {
	return NewQueuedSender(w, m.queueSize, m.logger)
}

func (m *PresenceModule) Start(_ context.Context) error {
	m.logger.Info("Module started", "queue_size", m.queueSize)
	return nil
}

func (m *PresenceModule) Stop(_ context.Context) error {
	n := m.registry.ConnectionCount()
	m.registry.CloseAll()
	m.logger.Info("Module stopped", "closed_connections", n)
	return nil
}

func (m *PresenceModule) Health(_ context.Context) mono.HealthStatus {
	return mono.HealthStatus{
		Healthy: true,
		Message: fmt.Sprintf("%d users online, %d connections",
			m.registry.UserCount(), m.registry.ConnectionCount()),
	}
}
