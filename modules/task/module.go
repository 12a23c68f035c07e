package task

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"github.com/go-monolith/mono/pkg/types"
	"gorm.io/gorm"

	"github.com/vishu1803/Collaborative-task-manager/events"
	"github.com/vishu1803/Collaborative-task-manager/modules/user"
	"github.com/vishu1803/Collaborative-task-manager/storage"
)

// TaskModule provides the task mutation engine as request-reply services.
type TaskModule struct {
	db       *gorm.DB
	store    Store
	engine   *Engine
	opts     []EngineOption
	eventBus mono.EventBus
	logger   types.Logger
}

var _ mono.Module = (*TaskModule)(nil)
var _ mono.ServiceProviderModule = (*TaskModule)(nil)
var _ mono.DependentModule = (*TaskModule)(nil)
var _ mono.EventEmitterModule = (*TaskModule)(nil)
var _ mono.HealthCheckableModule = (*TaskModule)(nil)

func NewModule(db *gorm.DB, logger types.Logger, opts ...EngineOption) *TaskModule {
	return &TaskModule{
		db:     db,
		store:  NewGormStore(db),
		opts:   opts,
		logger: logger.WithModule("task"),
	}
}

func (m *TaskModule) Name() string {
	return "task"
}

func (m *TaskModule) Dependencies() []string {
	return []string{"user"}
}

func (m *TaskModule) SetDependencyServiceContainer(dependency string, container mono.ServiceContainer) {
	if dependency == "user" {
		m.engine = NewEngine(m.store, user.NewUserAdapter(container), m.opts...)
	}
}

func (m *TaskModule) SetEventBus(bus mono.EventBus) {
	m.eventBus = bus
}

func (m *TaskModule) EmitEvents() []mono.BaseEventDefinition {
	return []mono.BaseEventDefinition{
		events.TaskCreatedV1.ToBase(),
		events.TaskUpdatedV1.ToBase(),
		events.TaskDeletedV1.ToBase(),
	}
}

func (m *TaskModule) RegisterServices(container mono.ServiceContainer) error {
	if err := helper.RegisterTypedRequestReplyService(
		container, "create-task", json.Unmarshal, json.Marshal, m.createTask,
	); err != nil {
		return fmt.Errorf("failed to register create-task service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "get-task", json.Unmarshal, json.Marshal, m.getTask,
	); err != nil {
		return fmt.Errorf("failed to register get-task service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "update-task", json.Unmarshal, json.Marshal, m.updateTask,
	); err != nil {
		return fmt.Errorf("failed to register update-task service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "delete-task", json.Unmarshal, json.Marshal, m.deleteTask,
	); err != nil {
		return fmt.Errorf("failed to register delete-task service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "list-tasks", json.Unmarshal, json.Marshal, m.listTasks,
	); err != nil {
		return fmt.Errorf("failed to register list-tasks service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "user-tasks", json.Unmarshal, json.Marshal, m.userTasks,
	); err != nil {
		return fmt.Errorf("failed to register user-tasks service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "overdue-tasks", json.Unmarshal, json.Marshal, m.overdueTasks,
	); err != nil {
		return fmt.Errorf("failed to register overdue-tasks service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "task-stats", json.Unmarshal, json.Marshal, m.taskStats,
	); err != nil {
		return fmt.Errorf("failed to register task-stats service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "user-task-stats", json.Unmarshal, json.Marshal, m.userTaskStats,
	); err != nil {
		return fmt.Errorf("failed to register user-task-stats service: %w", err)
	}

	m.logger.Info("Registered services",
		"services", "create-task, get-task, update-task, delete-task, list-tasks, user-tasks, overdue-tasks, task-stats, user-task-stats")
	return nil
}

func (m *TaskModule) Start(_ context.Context) error {
	if m.engine == nil {
		return fmt.Errorf("user dependency not set")
	}
	if m.eventBus == nil {
		m.logger.Warn("eventBus not set, events will not be published")
	}
	m.logger.Info("Module started", "depends_on", "user")
	return nil
}

func (m *TaskModule) Stop(_ context.Context) error {
	m.logger.Info("Module stopped")
	return nil
}

func (m *TaskModule) Health(ctx context.Context) mono.HealthStatus {
	if err := storage.Ping(m.db); err != nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: fmt.Sprintf("database ping failed: %v", err),
		}
	}
	total, err := m.store.CountTasks(ctx, Filter{})
	if err != nil {
		return mono.HealthStatus{Healthy: false, Message: fmt.Sprintf("task count failed: %v", err)}
	}
	return mono.HealthStatus{Healthy: true, Message: fmt.Sprintf("operational (%d tasks)", total)}
}
