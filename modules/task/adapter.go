package task

import (
	"context"
	"encoding/json"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"

	"github.com/vishu1803/Collaborative-task-manager/domain/apperr"
	domain "github.com/vishu1803/Collaborative-task-manager/domain/task"
	"github.com/vishu1803/Collaborative-task-manager/domain/user"
)

// taskAdapter wraps ServiceContainer for type-safe cross-module communication.
// This is the adapter that implements the TaskPort interface.
type taskAdapter struct {
	container mono.ServiceContainer
}

// NewTaskAdapter creates a TaskPort backed by the task module's services.
func NewTaskAdapter(container mono.ServiceContainer) TaskPort {
	if container == nil {
		panic("task adapter requires non-nil ServiceContainer")
	}
	return &taskAdapter{container: container}
}

func (a *taskAdapter) call(ctx context.Context, service string, req, resp any) error {
	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		service,
		json.Marshal,
		json.Unmarshal,
		req,
		resp,
	); err != nil {
		return apperr.Internal("%s service call failed: %v", service, err)
	}
	return nil
}

func (a *taskAdapter) task(ctx context.Context, service string, req any) (*domain.Task, error) {
	var resp TaskResponse
	if err := a.call(ctx, service, req, &resp); err != nil {
		return nil, err
	}
	if resp.Error != nil {
		return nil, resp.Error
	}
	if resp.Task == nil {
		return nil, apperr.Internal("%s returned no task", service)
	}
	return resp.Task, nil
}

func (a *taskAdapter) tasks(ctx context.Context, service string, req any) ([]domain.Task, error) {
	var resp TasksResponse
	if err := a.call(ctx, service, req, &resp); err != nil {
		return nil, err
	}
	if resp.Error != nil {
		return nil, resp.Error
	}
	if resp.Tasks == nil {
		return []domain.Task{}, nil
	}
	return resp.Tasks, nil
}

// CreateTask creates a new task via the create-task service.
func (a *taskAdapter) CreateTask(ctx context.Context, req *CreateTaskRequest) (*domain.Task, error) {
	return a.task(ctx, "create-task", req)
}

// GetTask retrieves a task by ID via the get-task service.
func (a *taskAdapter) GetTask(ctx context.Context, taskID string) (*domain.Task, error) {
	return a.task(ctx, "get-task", &GetTaskRequest{TaskID: taskID})
}

// UpdateTask updates a task via the update-task service.
func (a *taskAdapter) UpdateTask(ctx context.Context, req *UpdateTaskRequest) (*domain.Task, error) {
	return a.task(ctx, "update-task", req)
}

// DeleteTask deletes a task via the delete-task service.
func (a *taskAdapter) DeleteTask(ctx context.Context, taskID string, actor user.Actor) error {
	var resp DeleteTaskResponse
	if err := a.call(ctx, "delete-task", &DeleteTaskRequest{TaskID: taskID, Actor: actor}, &resp); err != nil {
		return err
	}
	if resp.Error != nil {
		return resp.Error
	}
	if !resp.Deleted {
		return apperr.Internal("task not deleted: %s", taskID)
	}
	return nil
}

// ListTasks lists one page of tasks via the list-tasks service.
func (a *taskAdapter) ListTasks(ctx context.Context, q domain.Query) (*domain.Page, error) {
	var resp ListTasksResponse
	if err := a.call(ctx, "list-tasks", &ListTasksRequest{Query: q}, &resp); err != nil {
		return nil, err
	}
	if resp.Error != nil {
		return nil, resp.Error
	}
	if resp.Page == nil {
		return nil, apperr.Internal("list-tasks returned no page")
	}
	return resp.Page, nil
}

// UserTasks lists a user's tasks via the user-tasks service.
func (a *taskAdapter) UserTasks(ctx context.Context, userID string, scope domain.Scope) ([]domain.Task, error) {
	return a.tasks(ctx, "user-tasks", &UserTasksRequest{UserID: userID, Scope: scope})
}

// OverdueTasks lists a user's overdue tasks via the overdue-tasks service.
func (a *taskAdapter) OverdueTasks(ctx context.Context, userID string) ([]domain.Task, error) {
	return a.tasks(ctx, "overdue-tasks", &OverdueTasksRequest{UserID: userID})
}

// Statistics fetches task statistics via the task-stats service.
func (a *taskAdapter) Statistics(ctx context.Context, userID string) (*domain.Stats, error) {
	var resp StatsResponse
	if err := a.call(ctx, "task-stats", &StatsRequest{UserID: userID}, &resp); err != nil {
		return nil, err
	}
	if resp.Error != nil {
		return nil, resp.Error
	}
	return resp.Stats, nil
}

// UserStatistics fetches one user's statistics via the user-task-stats service.
func (a *taskAdapter) UserStatistics(ctx context.Context, userID string) (*domain.UserStats, error) {
	var resp UserStatsResponse
	if err := a.call(ctx, "user-task-stats", &StatsRequest{UserID: userID}, &resp); err != nil {
		return nil, err
	}
	if resp.Error != nil {
		return nil, resp.Error
	}
	return resp.Stats, nil
}
