package task

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/vishu1803/Collaborative-task-manager/domain/apperr"
	domain "github.com/vishu1803/Collaborative-task-manager/domain/task"
	"github.com/vishu1803/Collaborative-task-manager/domain/user"
)

// overdueListLimit caps the overdue view.
const overdueListLimit = 100

// Engine enforces who may change which task and serves task views.
type Engine struct {
	store Store
	users UserDirectory
	now   func() time.Time
	stats singleflight.Group
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) { e.now = now }
}

// NewEngine creates a new Engine.
func NewEngine(store Store, users UserDirectory, opts ...EngineOption) *Engine {
	e := &Engine{store: store, users: users, now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) clock() time.Time {
	return e.now().UTC()
}

// Create validates input and stores a new TODO task.
func (e *Engine) Create(ctx context.Context, in domain.NewTask, creatorID string) (*domain.Task, error) {
	in.Normalize()
	if err := in.Validate(e.clock()); err != nil {
		return nil, err
	}

	if err := e.requireUser(ctx, in.AssigneeID, "Assigned user not found"); err != nil {
		return nil, err
	}
	if err := e.requireUser(ctx, creatorID, "Creator user not found"); err != nil {
		return nil, err
	}

	t := &domain.Task{
		ID:          uuid.New().String(),
		Title:       in.Title,
		Description: in.Description,
		DueDate:     in.DueDate.UTC(),
		Priority:    in.Priority,
		Status:      domain.StatusTodo,
		CreatorID:   creatorID,
		AssigneeID:  in.AssigneeID,
	}
	if err := e.store.CreateTask(ctx, t); err != nil {
		return nil, apperr.Internal("Failed to create task: %v", err)
	}
	return e.Get(ctx, t.ID)
}

// Get returns one task with creator and assignee summaries.
func (e *Engine) Get(ctx context.Context, taskID string) (*domain.Task, error) {
	t, err := e.load(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if err := e.populate(ctx, []*domain.Task{t}); err != nil {
		return nil, err
	}
	return t, nil
}

// Update applies a partial update on behalf of actingUserID.
func (e *Engine) Update(ctx context.Context, taskID string, patch domain.Patch, actingUserID string) (*domain.Task, error) {
	_, after, err := e.UpdateWithPrevious(ctx, taskID, patch, actingUserID)
	return after, err
}

// UpdateWithPrevious is Update that also returns the task as it was before.
func (e *Engine) UpdateWithPrevious(ctx context.Context, taskID string, patch domain.Patch, actingUserID string) (before, after *domain.Task, err error) {
	if err := patch.Validate(); err != nil {
		return nil, nil, err
	}

	before, err = e.load(ctx, taskID)
	if err != nil {
		return nil, nil, err
	}
	if !before.Involves(actingUserID) {
		return nil, nil, apperr.Forbidden("You do not have permission to update this task")
	}

	if patch.AssigneeID.Present() && patch.AssigneeID.Value != before.AssigneeID {
		if err := e.requireUser(ctx, patch.AssigneeID.Value, "Assigned user not found"); err != nil {
			return nil, nil, err
		}
	}
	if patch.DueDate.Present() {
		patch.DueDate.Value = patch.DueDate.Value.UTC()
	}

	if err := e.populate(ctx, []*domain.Task{before}); err != nil {
		return nil, nil, err
	}

	fields := patch.Fields()
	if len(fields) == 0 {
		cp := *before
		return before, &cp, nil
	}

	if err := e.store.UpdateTask(ctx, before.ID, fields); err != nil {
		if errors.Is(err, ErrTaskNotFound) {
			return nil, nil, apperr.NotFound("Task not found")
		}
		return nil, nil, apperr.Internal("Failed to update task: %v", err)
	}

	after, err = e.Get(ctx, before.ID)
	if err != nil {
		return nil, nil, err
	}
	return before, after, nil
}

// Delete removes a task. Only its creator may do so. The deleted task is returned.
func (e *Engine) Delete(ctx context.Context, taskID, actingUserID string) (*domain.Task, error) {
	t, err := e.load(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if t.CreatorID != actingUserID {
		return nil, apperr.Forbidden("Only the task creator can delete this task")
	}

	if err := e.store.DeleteTask(ctx, t.ID); err != nil {
		if errors.Is(err, ErrTaskNotFound) {
			return nil, apperr.NotFound("Task not found")
		}
		return nil, apperr.Internal("Failed to delete task: %v", err)
	}
	return t, nil
}

// List returns one page of tasks matching q.
func (e *Engine) List(ctx context.Context, q domain.Query) (*domain.Page, error) {
	q.Normalize()
	if q.Status != "" && !q.Status.Valid() {
		return nil, apperr.InvalidInput("Invalid status: %s", q.Status)
	}
	if q.Priority != "" && !q.Priority.Valid() {
		return nil, apperr.InvalidInput("Invalid priority: %s", q.Priority)
	}

	f := Filter{
		Status:     q.Status,
		Priority:   q.Priority,
		AssigneeID: q.AssigneeID,
		CreatorID:  q.CreatorID,
	}
	// Combined with a status filter this intersects: status=COMPLETED&overdue=true is empty.
	if q.Overdue {
		f.ExcludeStatus = domain.StatusCompleted
		f.DueBefore = e.clock()
	}

	total, err := e.store.CountTasks(ctx, f)
	if err != nil {
		return nil, apperr.Internal("Failed to count tasks: %v", err)
	}

	sort := []SortKey{{Field: q.SortBy, Desc: q.SortOrder == domain.SortDesc}}
	tasks, err := e.store.ListTasks(ctx, f, sort, q.Offset(), q.PageSize)
	if err != nil {
		return nil, apperr.Internal("Failed to retrieve tasks: %v", err)
	}
	items, err := e.withSummaries(ctx, tasks)
	if err != nil {
		return nil, err
	}

	return &domain.Page{
		Items:      items,
		Pagination: domain.NewPagination(q.Page, q.PageSize, total),
	}, nil
}

// UserTasks returns a user's tasks, soonest due first and most urgent first on ties.
func (e *Engine) UserTasks(ctx context.Context, userID string, scope domain.Scope) ([]domain.Task, error) {
	if scope == "" {
		scope = domain.ScopeAll
	}
	if !scope.Valid() {
		return nil, apperr.InvalidInput("Invalid task type: %s", scope)
	}
	f := Filter{}
	switch scope {
	case domain.ScopeAssigned:
		f.AssigneeID = userID
	case domain.ScopeCreated:
		f.CreatorID = userID
	case domain.ScopeAll:
		f.ParticipantID = userID
	}

	sort := []SortKey{
		{Field: domain.SortDueDate},
		{Field: domain.SortPriority, Desc: true},
	}
	tasks, err := e.store.ListTasks(ctx, f, sort, 0, 0)
	if err != nil {
		return nil, apperr.Internal("Failed to retrieve user tasks: %v", err)
	}
	return e.withSummaries(ctx, tasks)
}

// Overdue returns up to 100 of the user's unfinished tasks that are past due.
func (e *Engine) Overdue(ctx context.Context, userID string) ([]domain.Task, error) {
	f := Filter{
		ParticipantID: userID,
		ExcludeStatus: domain.StatusCompleted,
		DueBefore:     e.clock(),
	}
	tasks, err := e.store.ListTasks(ctx, f, []SortKey{{Field: domain.SortDueDate}}, 0, overdueListLimit)
	if err != nil {
		return nil, apperr.Internal("Failed to retrieve overdue tasks: %v", err)
	}
	return e.withSummaries(ctx, tasks)
}

// Statistics summarises the tasks userID takes part in, or all tasks when
// userID is empty. Concurrent calls for the same scope share one computation.
func (e *Engine) Statistics(ctx context.Context, userID string) (*domain.Stats, error) {
	ch := e.stats.DoChan("stats:"+userID, func() (any, error) {
		// Detached from any single caller's cancellation.
		return e.statistics(context.WithoutCancel(ctx), userID)
	})

	select {
	case <-ctx.Done():
		return nil, apperr.Internal("Failed to retrieve task statistics: %v", ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		s := *res.Val.(*domain.Stats)
		return &s, nil
	}
}

func (e *Engine) statistics(ctx context.Context, userID string) (*domain.Stats, error) {
	base := Filter{ParticipantID: userID}

	total, err := e.store.CountTasks(ctx, base)
	if err != nil {
		return nil, apperr.Internal("Failed to retrieve task statistics: %v", err)
	}

	byStatus, err := e.store.AggregateTaskCounts(ctx, base, GroupByStatus)
	if err != nil {
		return nil, apperr.Internal("Failed to retrieve task statistics: %v", err)
	}

	overdueFilter := base
	overdueFilter.ExcludeStatus = domain.StatusCompleted
	overdueFilter.DueBefore = e.clock()
	overdue, err := e.store.CountTasks(ctx, overdueFilter)
	if err != nil {
		return nil, apperr.Internal("Failed to retrieve task statistics: %v", err)
	}

	byPriority, err := e.store.AggregateTaskCounts(ctx, base, GroupByPriority)
	if err != nil {
		return nil, apperr.Internal("Failed to retrieve task statistics: %v", err)
	}

	statuses := domain.StatusCountsFrom(byStatus)
	return &domain.Stats{
		Total:          total,
		ByStatus:       statuses,
		Overdue:        overdue,
		CompletionRate: domain.CompletionRate(statuses.Completed, total),
		PriorityCounts: domain.PriorityCountsFrom(byPriority),
	}, nil
}

// UserStatistics reports how many tasks a user created and was assigned, and
// how the assigned ones are going.
func (e *Engine) UserStatistics(ctx context.Context, userID string) (*domain.UserStats, error) {
	if err := e.requireUser(ctx, userID, "User not found"); err != nil {
		return nil, err
	}

	now := e.clock()
	var s domain.UserStats
	counts := []struct {
		f   Filter
		dst *int64
	}{
		{Filter{CreatorID: userID}, &s.TotalCreated},
		{Filter{AssigneeID: userID}, &s.TotalAssigned},
		{Filter{AssigneeID: userID, Status: domain.StatusCompleted}, &s.Completed},
		{Filter{AssigneeID: userID, ExcludeStatus: domain.StatusCompleted, DueBefore: now}, &s.Overdue},
	}

	for _, c := range counts {
		n, err := e.store.CountTasks(ctx, c.f)
		if err != nil {
			return nil, apperr.Internal("Failed to retrieve user statistics: %v", err)
		}
		*c.dst = n
	}
	s.CompletionRate = domain.CompletionRate(s.Completed, s.TotalAssigned)
	return &s, nil
}

func (e *Engine) load(ctx context.Context, taskID string) (*domain.Task, error) {
	if _, err := uuid.Parse(taskID); err != nil {
		return nil, apperr.InvalidInput("Invalid task ID format")
	}
	t, err := e.store.GetTask(ctx, taskID)
	if err != nil {
		if errors.Is(err, ErrTaskNotFound) {
			return nil, apperr.NotFound("Task not found")
		}
		return nil, apperr.Internal("Failed to retrieve task: %v", err)
	}
	return t, nil
}

// requireUser fails with NotFound(msg) when id does not name a user.
func (e *Engine) requireUser(ctx context.Context, id, msg string) error {
	if id == "" {
		return apperr.NotFound("%s", msg)
	}
	if _, err := e.users.GetUser(ctx, id); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return apperr.NotFound("%s", msg)
		}
		return apperr.Internal("Failed to look up user: %v", err)
	}
	return nil
}

func (e *Engine) withSummaries(ctx context.Context, tasks []domain.Task) ([]domain.Task, error) {
	ptrs := make([]*domain.Task, len(tasks))
	for i := range tasks {
		ptrs[i] = &tasks[i]
	}
	if err := e.populate(ctx, ptrs); err != nil {
		return nil, err
	}
	if tasks == nil {
		tasks = []domain.Task{}
	}
	return tasks, nil
}

// populate resolves creator and assignee summaries with one directory call.
func (e *Engine) populate(ctx context.Context, tasks []*domain.Task) error {
	if len(tasks) == 0 {
		return nil
	}
	ids := make([]string, 0, len(tasks)*2)
	for _, t := range tasks {
		ids = append(ids, t.CreatorID, t.AssigneeID)
	}
	summaries, err := e.users.GetUsers(ctx, ids)
	if err != nil {
		return apperr.Internal("Failed to resolve users: %v", err)
	}

	byID := make(map[string]user.Summary, len(summaries))
	for _, s := range summaries {
		byID[s.ID] = s
	}
	for _, t := range tasks {
		if s, ok := byID[t.CreatorID]; ok {
			s := s
			t.Creator = &s
		}
		if s, ok := byID[t.AssigneeID]; ok {
			s := s
			t.Assignee = &s
		}
	}
	return nil
}
