package task

import (
	"context"
	"time"

	"github.com/go-monolith/mono"

	"github.com/vishu1803/Collaborative-task-manager/domain/apperr"
	"github.com/vishu1803/Collaborative-task-manager/events"
)

// Request-reply handlers. Domain failures travel in the response's Error
// field so their kind survives the service boundary.

func (m *TaskModule) createTask(ctx context.Context, req CreateTaskRequest, _ *mono.Msg) (TaskResponse, error) {
	t, err := m.engine.Create(ctx, req.Input, req.Actor.ID)
	if err != nil {
		m.logFailure("create-task", err)
		return TaskResponse{Error: apperr.From(err)}, nil
	}

	if m.eventBus != nil {
		event := events.TaskCreatedEvent{Task: *t, Actor: req.Actor, Timestamp: time.Now()}
		if err := events.TaskCreatedV1.Publish(m.eventBus, event, nil); err != nil {
			m.logger.Warn("Failed to publish TaskCreated event", "task_id", t.ID, "error", err)
		}
	}

	m.logger.Info("Task created", "task_id", t.ID, "creator_id", t.CreatorID, "assignee_id", t.AssigneeID)
	return TaskResponse{Task: t}, nil
}

func (m *TaskModule) getTask(ctx context.Context, req GetTaskRequest, _ *mono.Msg) (TaskResponse, error) {
	t, err := m.engine.Get(ctx, req.TaskID)
	if err != nil {
		m.logFailure("get-task", err)
		return TaskResponse{Error: apperr.From(err)}, nil
	}
	return TaskResponse{Task: t}, nil
}

func (m *TaskModule) updateTask(ctx context.Context, req UpdateTaskRequest, _ *mono.Msg) (TaskResponse, error) {
	before, after, err := m.engine.UpdateWithPrevious(ctx, req.TaskID, req.Patch, req.Actor.ID)
	if err != nil {
		m.logFailure("update-task", err)
		return TaskResponse{Error: apperr.From(err)}, nil
	}

	if m.eventBus != nil && !req.Patch.Empty() {
		event := events.TaskUpdatedEvent{Before: *before, After: *after, Actor: req.Actor, Timestamp: time.Now()}
		if err := events.TaskUpdatedV1.Publish(m.eventBus, event, nil); err != nil {
			m.logger.Warn("Failed to publish TaskUpdated event", "task_id", after.ID, "error", err)
		}
	}

	return TaskResponse{Task: after}, nil
}

func (m *TaskModule) deleteTask(ctx context.Context, req DeleteTaskRequest, _ *mono.Msg) (DeleteTaskResponse, error) {
	t, err := m.engine.Delete(ctx, req.TaskID, req.Actor.ID)
	if err != nil {
		m.logFailure("delete-task", err)
		return DeleteTaskResponse{Error: apperr.From(err)}, nil
	}

	if m.eventBus != nil {
		event := events.TaskDeletedEvent{Task: *t, Actor: req.Actor, Timestamp: time.Now()}
		if err := events.TaskDeletedV1.Publish(m.eventBus, event, nil); err != nil {
			m.logger.Warn("Failed to publish TaskDeleted event", "task_id", t.ID, "error", err)
		}
	}

	m.logger.Info("Task deleted", "task_id", t.ID, "actor_id", req.Actor.ID)
	return DeleteTaskResponse{Deleted: true}, nil
}

func (m *TaskModule) listTasks(ctx context.Context, req ListTasksRequest, _ *mono.Msg) (ListTasksResponse, error) {
	page, err := m.engine.List(ctx, req.Query)
	if err != nil {
		m.logFailure("list-tasks", err)
		return ListTasksResponse{Error: apperr.From(err)}, nil
	}
	return ListTasksResponse{Page: page}, nil
}

func (m *TaskModule) userTasks(ctx context.Context, req UserTasksRequest, _ *mono.Msg) (TasksResponse, error) {
	tasks, err := m.engine.UserTasks(ctx, req.UserID, req.Scope)
	if err != nil {
		m.logFailure("user-tasks", err)
		return TasksResponse{Error: apperr.From(err)}, nil
	}
	return TasksResponse{Tasks: tasks}, nil
}

func (m *TaskModule) overdueTasks(ctx context.Context, req OverdueTasksRequest, _ *mono.Msg) (TasksResponse, error) {
	tasks, err := m.engine.Overdue(ctx, req.UserID)
	if err != nil {
		m.logFailure("overdue-tasks", err)
		return TasksResponse{Error: apperr.From(err)}, nil
	}
	return TasksResponse{Tasks: tasks}, nil
}

func (m *TaskModule) taskStats(ctx context.Context, req StatsRequest, _ *mono.Msg) (StatsResponse, error) {
	stats, err := m.engine.Statistics(ctx, req.UserID)
	if err != nil {
		m.logFailure("task-stats", err)
		return StatsResponse{Error: apperr.From(err)}, nil
	}
	return StatsResponse{Stats: stats}, nil
}

func (m *TaskModule) userTaskStats(ctx context.Context, req StatsRequest, _ *mono.Msg) (UserStatsResponse, error) {
	stats, err := m.engine.UserStatistics(ctx, req.UserID)
	if err != nil {
		m.logFailure("user-task-stats", err)
		return UserStatsResponse{Error: apperr.From(err)}, nil
	}
	return UserStatsResponse{Stats: stats}, nil
}

// logFailure logs internal errors; domain rejections are the caller's business.
func (m *TaskModule) logFailure(service string, err error) {
	if apperr.KindOf(err) == apperr.KindInternal {
		m.logger.Error("Service failed", "service", service, "error", err)
		return
	}
	m.logger.Debug("Request rejected", "service", service, "reason", err.Error())
}
