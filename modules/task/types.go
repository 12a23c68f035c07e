package task

import (
	"context"

	"github.com/vishu1803/Collaborative-task-manager/domain/apperr"
	domain "github.com/vishu1803/Collaborative-task-manager/domain/task"
	"github.com/vishu1803/Collaborative-task-manager/domain/user"
)

// CreateTaskRequest is the request for creating a task.
type CreateTaskRequest struct {
	Input domain.NewTask `json:"input"`
	Actor user.Actor     `json:"actor"`
}

// GetTaskRequest is the request for getting a task.
type GetTaskRequest struct {
	TaskID string `json:"task_id"`
}

// UpdateTaskRequest is the request for updating a task.
type UpdateTaskRequest struct {
	TaskID string       `json:"task_id"`
	Patch  domain.Patch `json:"patch"`
	Actor  user.Actor   `json:"actor"`
}

// DeleteTaskRequest is the request for deleting a task.
type DeleteTaskRequest struct {
	TaskID string     `json:"task_id"`
	Actor  user.Actor `json:"actor"`
}

// TaskResponse carries one task or a typed error.
type TaskResponse struct {
	Task  *domain.Task  `json:"task,omitempty"`
	Error *apperr.Error `json:"error,omitempty"`
}

// DeleteTaskResponse is the response for deleting a task.
type DeleteTaskResponse struct {
	Deleted bool          `json:"deleted"`
	Error   *apperr.Error `json:"error,omitempty"`
}

// ListTasksRequest is the request for listing tasks.
type ListTasksRequest struct {
	Query domain.Query `json:"query"`
}

// ListTasksResponse carries one page of tasks.
type ListTasksResponse struct {
	Page  *domain.Page  `json:"page,omitempty"`
	Error *apperr.Error `json:"error,omitempty"`
}

// UserTasksRequest is the request for a user's tasks.
type UserTasksRequest struct {
	UserID string       `json:"user_id"`
	Scope  domain.Scope `json:"scope"`
}

// OverdueTasksRequest is the request for a user's overdue tasks.
type OverdueTasksRequest struct {
	UserID string `json:"user_id"`
}

// TasksResponse carries a task list.
type TasksResponse struct {
	Tasks []domain.Task `json:"tasks"`
	Error *apperr.Error `json:"error,omitempty"`
}

// StatsRequest scopes statistics to a user; an empty UserID means all tasks.
type StatsRequest struct {
	UserID string `json:"user_id,omitempty"`
}

// StatsResponse carries task statistics.
type StatsResponse struct {
	Stats *domain.Stats `json:"stats,omitempty"`
	Error *apperr.Error `json:"error,omitempty"`
}

// UserStatsResponse carries one user's task statistics.
type UserStatsResponse struct {
	Stats *domain.UserStats `json:"stats,omitempty"`
	Error *apperr.Error     `json:"error,omitempty"`
}

// TaskPort defines the interface driving adapters use to reach the task engine.
type TaskPort interface {
	CreateTask(ctx context.Context, req *CreateTaskRequest) (*domain.Task, error)
	GetTask(ctx context.Context, taskID string) (*domain.Task, error)
	UpdateTask(ctx context.Context, req *UpdateTaskRequest) (*domain.Task, error)
	DeleteTask(ctx context.Context, taskID string, actor user.Actor) error
	ListTasks(ctx context.Context, q domain.Query) (*domain.Page, error)
	UserTasks(ctx context.Context, userID string, scope domain.Scope) ([]domain.Task, error)
	OverdueTasks(ctx context.Context, userID string) ([]domain.Task, error)
	Statistics(ctx context.Context, userID string) (*domain.Stats, error)
	UserStatistics(ctx context.Context, userID string) (*domain.UserStats, error)
}
