package api

import (
	"context"
	"sync"
	"time"

	"github.com/go-monolith/mono/pkg/types"

	"github.com/vishu1803/Collaborative-task-manager/domain/apperr"
	taskdomain "github.com/vishu1803/Collaborative-task-manager/domain/task"
	domain "github.com/vishu1803/Collaborative-task-manager/domain/user"
	"github.com/vishu1803/Collaborative-task-manager/middleware/ratelimit"
	"github.com/vishu1803/Collaborative-task-manager/modules/auth"
	"github.com/vishu1803/Collaborative-task-manager/modules/presence"
	"github.com/vishu1803/Collaborative-task-manager/modules/task"
	"github.com/vishu1803/Collaborative-task-manager/modules/user"
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

// mockAuth resolves tokens from a fixed table.
type mockAuth struct {
	tokens map[string]string
}

var _ auth.AuthPort = (*mockAuth)(nil)

func (a *mockAuth) Resolve(_ context.Context, token string) (string, error) {
	id, ok := a.tokens[token]
	if !ok {
		return "", apperr.Unauthenticated("Invalid or expired token")
	}
	return id, nil
}

func (a *mockAuth) Register(_ context.Context, req *auth.RegisterRequest) (*auth.SessionResponse, error) {
	if req.Email == "taken@example.com" {
		return nil, apperr.Conflict("User already exists with this email")
	}
	return &auth.SessionResponse{
		User:   &domain.User{ID: "u-new", Name: req.Name, Email: req.Email},
		Tokens: &domain.TokenPair{AccessToken: "new-token"},
	}, nil
}

func (a *mockAuth) Login(_ context.Context, _ *auth.LoginRequest) (*auth.SessionResponse, error) {
	return nil, apperr.Unauthenticated("Invalid email or password")
}

// mockUsers serves a fixed set of users.
type mockUsers struct {
	users map[string]*domain.User
}

var _ user.UserPort = (*mockUsers)(nil)

func (u *mockUsers) GetUser(_ context.Context, id string) (*domain.User, error) {
	found, ok := u.users[id]
	if !ok {
		return nil, apperr.NotFound("User not found")
	}
	return found, nil
}

func (u *mockUsers) GetUsers(_ context.Context, ids []string) ([]domain.Summary, error) {
	var out []domain.Summary
	for _, id := range ids {
		if found, ok := u.users[id]; ok {
			out = append(out, found.Summary())
		}
	}
	return out, nil
}

func (u *mockUsers) ListUsers(_ context.Context, requesterID string, includeMe bool) ([]domain.Summary, error) {
	var out []domain.Summary
	for id, found := range u.users {
		if id == requesterID && !includeMe {
			continue
		}
		out = append(out, found.Summary())
	}
	return out, nil
}

func (u *mockUsers) SearchUsers(ctx context.Context, requesterID, _ string, includeMe bool) ([]domain.Summary, error) {
	return u.ListUsers(ctx, requesterID, includeMe)
}

func (u *mockUsers) UpdateProfile(_ context.Context, req *user.UpdateProfileRequest) (*domain.User, error) {
	found := *u.users[req.UserID]
	if req.Name != nil {
		found.Name = *req.Name
	}
	return &found, nil
}

func (u *mockUsers) DeleteUser(_ context.Context, requesterID, userID string) error {
	if requesterID != userID {
		return apperr.Forbidden("You can only delete your own account")
	}
	return nil
}

// mockTasks records the last call and returns err when set.
type mockTasks struct {
	mu        sync.Mutex
	err       error
	lastQuery taskdomain.Query
	lastScope taskdomain.Scope
	lastUser  string
	created   *task.CreateTaskRequest
	updated   *task.UpdateTaskRequest
}

var _ task.TaskPort = (*mockTasks)(nil)

func (m *mockTasks) sample(id string) *taskdomain.Task {
	return &taskdomain.Task{
		ID:         id,
		Title:      "Write tests",
		DueDate:    time.Now().Add(24 * time.Hour),
		Priority:   taskdomain.PriorityMedium,
		Status:     taskdomain.StatusTodo,
		CreatorID:  "u-alice",
		AssigneeID: "u-bob",
	}
}

func (m *mockTasks) CreateTask(_ context.Context, req *task.CreateTaskRequest) (*taskdomain.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	m.created = req
	t := m.sample("t-1")
	t.Title = req.Input.Title
	t.CreatorID = req.Actor.ID
	return t, nil
}

func (m *mockTasks) GetTask(_ context.Context, id string) (*taskdomain.Task, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.sample(id), nil
}

func (m *mockTasks) UpdateTask(_ context.Context, req *task.UpdateTaskRequest) (*taskdomain.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	m.updated = req
	return m.sample(req.TaskID), nil
}

func (m *mockTasks) DeleteTask(_ context.Context, _ string, _ domain.Actor) error {
	return m.err
}

func (m *mockTasks) ListTasks(_ context.Context, q taskdomain.Query) (*taskdomain.Page, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	m.lastQuery = q
	return &taskdomain.Page{Items: []taskdomain.Task{*m.sample("t-1")}}, nil
}

func (m *mockTasks) UserTasks(_ context.Context, userID string, scope taskdomain.Scope) ([]taskdomain.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	m.lastUser = userID
	m.lastScope = scope
	return []taskdomain.Task{*m.sample("t-1"), *m.sample("t-2")}, nil
}

func (m *mockTasks) OverdueTasks(_ context.Context, _ string) ([]taskdomain.Task, error) {
	return nil, m.err
}

func (m *mockTasks) Statistics(_ context.Context, _ string) (*taskdomain.Stats, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &taskdomain.Stats{}, nil
}

func (m *mockTasks) UserStatistics(_ context.Context, _ string) (*taskdomain.UserStats, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &taskdomain.UserStats{}, nil
}

// stubAllower admits the first n checks per key.
type stubAllower struct {
	mu    sync.Mutex
	n     int
	calls map[string]int
}

func (a *stubAllower) Allow(_ context.Context, key string, limit int, window time.Duration) (*ratelimit.Result, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.calls[key]++
	allowed := a.calls[key] <= a.n
	remaining := a.n - a.calls[key]
	if remaining < 0 {
		remaining = 0
	}
	return &ratelimit.Result{
		Allowed:   allowed,
		Remaining: remaining,
		Limit:     limit,
		ResetAt:   time.Now().Add(window),
	}, nil
}

// nopSender accepts every frame.
type nopSender struct{}

func (nopSender) Send(presence.Envelope) bool { return true }
func (nopSender) Close() error                { return nil }
