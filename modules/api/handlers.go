package api

import (
	"fmt"
	"strings"

	"github.com/go-monolith/mono/pkg/types"
	"github.com/gofiber/fiber/v2"

	domain "github.com/vishu1803/Collaborative-task-manager/domain/task"
	"github.com/vishu1803/Collaborative-task-manager/modules/auth"
	"github.com/vishu1803/Collaborative-task-manager/modules/presence"
	"github.com/vishu1803/Collaborative-task-manager/modules/task"
	"github.com/vishu1803/Collaborative-task-manager/modules/user"
)

// Handlers contains HTTP handlers for the API.
type Handlers struct {
	auth     auth.AuthPort
	users    user.UserPort
	tasks    task.TaskPort
	registry *presence.Registry
	logger   types.Logger
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(authPort auth.AuthPort, users user.UserPort, tasks task.TaskPort, registry *presence.Registry, logger types.Logger) *Handlers {
	return &Handlers{
		auth:     authPort,
		users:    users,
		tasks:    tasks,
		registry: registry,
		logger:   logger,
	}
}

func (h *Handlers) fail(c *fiber.Ctx, err error) error {
	return writeError(c, h.logger, err)
}

// Register handles user registration.
func (h *Handlers) Register(c *fiber.Ctx) error {
	var req auth.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	resp, err := h.auth.Register(c.UserContext(), &req)
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(ok("User registered successfully", fiber.Map{
		"user":   resp.User,
		"tokens": resp.Tokens,
	}))
}

// Login handles user login.
func (h *Handlers) Login(c *fiber.Ctx) error {
	var req auth.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	resp, err := h.auth.Login(c.UserContext(), &req)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(ok("Login successful", fiber.Map{
		"user":   resp.User,
		"tokens": resp.Tokens,
	}))
}

// Profile returns the authenticated user.
func (h *Handlers) Profile(c *fiber.Ctx) error {
	return c.JSON(ok("Profile retrieved successfully", currentUser(c)))
}

// UpdateProfile edits the authenticated user's name or email.
func (h *Handlers) UpdateProfile(c *fiber.Ctx) error {
	var req ProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	u, err := h.users.UpdateProfile(c.UserContext(), &user.UpdateProfileRequest{
		UserID: currentUser(c).ID,
		Name:   req.Name,
		Email:  req.Email,
	})
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(ok("Profile updated successfully", u))
}

// ListUsers lists other users, or everyone with includeMe=true.
func (h *Handlers) ListUsers(c *fiber.Ctx) error {
	users, err := h.users.ListUsers(c.UserContext(), currentUser(c).ID, c.QueryBool("includeMe"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(ok("Users retrieved successfully", users))
}

// SearchUsers finds users by name or email.
func (h *Handlers) SearchUsers(c *fiber.Ctx) error {
	term := strings.TrimSpace(c.Query("q"))
	if term == "" {
		return badRequest(c, "Search term is required")
	}

	users, err := h.users.SearchUsers(c.UserContext(), currentUser(c).ID, term, c.QueryBool("includeMe"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(ok("User search completed successfully", users))
}

// GetUser returns one user.
func (h *Handlers) GetUser(c *fiber.Ctx) error {
	u, err := h.users.GetUser(c.UserContext(), c.Params("id"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(ok("User retrieved successfully", u.Summary()))
}

// UserStats returns task statistics for the user in the path.
func (h *Handlers) UserStats(c *fiber.Ctx) error {
	stats, err := h.tasks.UserStatistics(c.UserContext(), c.Params("id"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(ok("User statistics retrieved successfully", stats))
}

// MyStats returns task statistics for the authenticated user.
func (h *Handlers) MyStats(c *fiber.Ctx) error {
	stats, err := h.tasks.UserStatistics(c.UserContext(), currentUser(c).ID)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(ok("Your statistics retrieved successfully", stats))
}

// DeleteUser deletes the authenticated user's own account.
func (h *Handlers) DeleteUser(c *fiber.Ctx) error {
	if err := h.users.DeleteUser(c.UserContext(), currentUser(c).ID, c.Params("id")); err != nil {
		return h.fail(c, err)
	}
	return c.JSON(ok("Account deleted successfully", nil))
}

// OnlineUsers lists users with a live connection.
func (h *Handlers) OnlineUsers(c *fiber.Ctx) error {
	users := h.registry.OnlineUsers()
	return c.JSON(ok("Online users retrieved successfully", fiber.Map{
		"users": users,
		"count": len(users),
	}))
}

// CreateTask creates a task owned by the authenticated user.
func (h *Handlers) CreateTask(c *fiber.Ctx) error {
	var in domain.NewTask
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "Invalid request body")
	}

	t, err := h.tasks.CreateTask(c.UserContext(), &task.CreateTaskRequest{
		Input: in,
		Actor: actorOf(currentUser(c)),
	})
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(ok("Task created successfully", t))
}

// ListTasks returns one filtered, sorted page of tasks.
func (h *Handlers) ListTasks(c *fiber.Ctx) error {
	q := domain.Query{
		Page:       c.QueryInt("page", 1),
		PageSize:   c.QueryInt("limit", domain.DefaultPageSize),
		SortBy:     domain.SortField(c.Query("sortBy")),
		SortOrder:  domain.SortOrder(c.Query("sortOrder")),
		Status:     domain.Status(c.Query("status")),
		Priority:   domain.Priority(c.Query("priority")),
		AssigneeID: c.Query("assignedToId"),
		CreatorID:  c.Query("creatorId"),
		Overdue:    c.Query("overdue") == "true",
	}

	page, err := h.tasks.ListTasks(c.UserContext(), q)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(ok("Tasks retrieved successfully", page))
}

// TaskStats returns statistics over the authenticated user's tasks.
func (h *Handlers) TaskStats(c *fiber.Ctx) error {
	stats, err := h.tasks.Statistics(c.UserContext(), currentUser(c).ID)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(ok("Task statistics retrieved successfully", stats))
}

// MyTasks returns the authenticated user's tasks.
func (h *Handlers) MyTasks(c *fiber.Ctx) error {
	scope := domain.Scope(c.Query("type", string(domain.ScopeAll)))
	tasks, err := h.tasks.UserTasks(c.UserContext(), currentUser(c).ID, scope)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(ok(fmt.Sprintf("Your %s tasks retrieved successfully", scope), fiber.Map{
		"tasks": tasks,
		"total": len(tasks),
		"type":  scope,
	}))
}

// UserTasks returns another user's tasks; userId defaults to the caller.
func (h *Handlers) UserTasks(c *fiber.Ctx) error {
	userID := c.Query("userId", currentUser(c).ID)
	scope := domain.Scope(c.Query("type", string(domain.ScopeAll)))

	tasks, err := h.tasks.UserTasks(c.UserContext(), userID, scope)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(ok(fmt.Sprintf("%s tasks retrieved successfully", scope), fiber.Map{
		"tasks":  tasks,
		"total":  len(tasks),
		"type":   scope,
		"userId": userID,
	}))
}

// OverdueTasks returns the authenticated user's overdue tasks.
func (h *Handlers) OverdueTasks(c *fiber.Ctx) error {
	tasks, err := h.tasks.OverdueTasks(c.UserContext(), currentUser(c).ID)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(ok("Overdue tasks retrieved successfully", fiber.Map{
		"tasks": tasks,
		"total": len(tasks),
	}))
}

// GetTask returns one task.
func (h *Handlers) GetTask(c *fiber.Ctx) error {
	t, err := h.tasks.GetTask(c.UserContext(), c.Params("id"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(ok("Task retrieved successfully", t))
}

// UpdateTask applies a partial update.
func (h *Handlers) UpdateTask(c *fiber.Ctx) error {
	var patch domain.Patch
	if err := c.BodyParser(&patch); err != nil {
		return badRequest(c, "Invalid request body")
	}

	t, err := h.tasks.UpdateTask(c.UserContext(), &task.UpdateTaskRequest{
		TaskID: c.Params("id"),
		Patch:  patch,
		Actor:  actorOf(currentUser(c)),
	})
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(ok("Task updated successfully", t))
}

// DeleteTask deletes a task created by the authenticated user.
func (h *Handlers) DeleteTask(c *fiber.Ctx) error {
	if err := h.tasks.DeleteTask(c.UserContext(), c.Params("id"), actorOf(currentUser(c))); err != nil {
		return h.fail(c, err)
	}
	return c.JSON(ok("Task deleted successfully", nil))
}
