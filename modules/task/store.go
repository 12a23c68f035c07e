package task

import (
	"context"
	"errors"
	"time"

	domain "github.com/vishu1803/Collaborative-task-manager/domain/task"
	"github.com/vishu1803/Collaborative-task-manager/domain/user"
)

// ErrTaskNotFound is returned by a Store when no task has the requested id.
var ErrTaskNotFound = errors.New("task not found")

// Filter is a conjunction of optional predicates. Zero fields are ignored.
type Filter struct {
	Status        domain.Status
	ExcludeStatus domain.Status
	Priority      domain.Priority
	AssigneeID    string
	CreatorID     string
	// ParticipantID matches tasks where the user is creator or assignee.
	ParticipantID string
	DueBefore     time.Time
}

// SortKey orders results by one field.
type SortKey struct {
	Field domain.SortField
	Desc  bool
}

// GroupKey is a column tasks can be counted by.
type GroupKey string

const (
	GroupByStatus   GroupKey = "status"
	GroupByPriority GroupKey = "priority"
)

// Store is the task record store.
type Store interface {
	GetTask(ctx context.Context, id string) (*domain.Task, error)
	CreateTask(ctx context.Context, t *domain.Task) error
	UpdateTask(ctx context.Context, id string, fields map[string]any) error
	DeleteTask(ctx context.Context, id string) error
	CountTasks(ctx context.Context, f Filter) (int64, error)
	// ListTasks returns matching tasks in sort order. limit <= 0 means no limit.
	ListTasks(ctx context.Context, f Filter, sort []SortKey, skip, limit int) ([]domain.Task, error)
	AggregateTaskCounts(ctx context.Context, f Filter, key GroupKey) (map[string]int64, error)
}

// UserDirectory resolves user ids. GetUser fails with an apperr NotFound
// error for unknown ids; GetUsers silently skips them.
type UserDirectory interface {
	GetUser(ctx context.Context, id string) (*user.User, error)
	GetUsers(ctx context.Context, ids []string) ([]user.Summary, error)
}
