package api

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/types"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/vishu1803/Collaborative-task-manager/config"
	"github.com/vishu1803/Collaborative-task-manager/middleware/ratelimit"
	"github.com/vishu1803/Collaborative-task-manager/modules/auth"
	"github.com/vishu1803/Collaborative-task-manager/modules/presence"
	"github.com/vishu1803/Collaborative-task-manager/modules/task"
	"github.com/vishu1803/Collaborative-task-manager/modules/user"
)

// APIModule is the HTTP API module with WebSocket support.
type APIModule struct {
	app       *fiber.App
	cfg       config.Config
	authPort  auth.AuthPort
	userPort  user.UserPort
	taskPort  task.TaskPort
	registry  *presence.Registry
	newSender SenderFactory
	limiter   ratelimit.Allower
	logger    types.Logger
}

// Compile-time interface checks.
var _ mono.Module = (*APIModule)(nil)
var _ mono.DependentModule = (*APIModule)(nil)
var _ mono.HealthCheckableModule = (*APIModule)(nil)

// NewModule creates a new APIModule.
func NewModule(cfg config.Config, logger types.Logger) *APIModule {
	return &APIModule{
		cfg:    cfg,
		logger: logger.WithModule("api"),
	}
}

// Name returns the module name.
func (m *APIModule) Name() string {
	return "api"
}

// Dependencies returns the list of module dependencies.
func (m *APIModule) Dependencies() []string {
	return []string{"auth", "user", "task"}
}

// SetDependencyServiceContainer receives service containers from dependencies.
func (m *APIModule) SetDependencyServiceContainer(dependency string, container mono.ServiceContainer) {
	switch dependency {
	case "auth":
		m.authPort = auth.NewAuthAdapter(container)
	case "user":
		m.userPort = user.NewUserAdapter(container)
	case "task":
		m.taskPort = task.NewTaskAdapter(container)
	}
}

// SetPresence wires the connection registry (called from main.go).
func (m *APIModule) SetPresence(p *presence.PresenceModule) {
	m.registry = p.Registry()
	m.newSender = func(w presence.FrameWriter) presence.Sender {
		return p.NewSender(w)
	}
}

// SetRateLimiter enables per-user limiting of mutating requests.
func (m *APIModule) SetRateLimiter(a ratelimit.Allower) {
	m.limiter = a
}

// Start initializes the Fiber HTTP server.
func (m *APIModule) Start(_ context.Context) error {
	if m.authPort == nil || m.userPort == nil || m.taskPort == nil {
		return fmt.Errorf("auth, user and task dependencies must be set")
	}
	if m.registry == nil {
		return fmt.Errorf("presence registry not set")
	}

	m.app = m.newApp()

	go func() {
		if err := m.app.Listen(":" + m.cfg.Port); err != nil {
			m.logger.Error("HTTP server error", "error", err)
		}
	}()

	m.logger.Info("HTTP server started", "port", m.cfg.Port, "rate_limited", m.limiter != nil)
	return nil
}

// Stop shuts down the Fiber HTTP server.
func (m *APIModule) Stop(_ context.Context) error {
	if m.app == nil {
		return nil
	}
	m.logger.Info("Shutting down HTTP server...")
	return m.app.Shutdown()
}

// Health returns the health status of the module.
func (m *APIModule) Health(_ context.Context) mono.HealthStatus {
	return mono.HealthStatus{
		Healthy: m.app != nil,
		Message: "operational",
		Details: map[string]any{
			"port":        m.cfg.Port,
			"connections": m.registry.ConnectionCount(),
		},
	}
}

// newApp builds the fiber app with all middleware and routes.
func (m *APIModule) newApp() *fiber.App {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler:          customErrorHandler,
		ReadTimeout:           30 * time.Second,
		WriteTimeout:          60 * time.Second,
		IdleTimeout:           120 * time.Second,
	})

	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(m.cfg.Origins(), ","),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
	}))

	m.setupRoutes(app)
	return app
}

// setupRoutes configures all API routes.
func (m *APIModule) setupRoutes(app *fiber.App) {
	h := NewHandlers(m.authPort, m.userPort, m.taskPort, m.registry, m.logger)
	requireAuth := AuthMiddleware(m.authPort, m.userPort, m.logger)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":      "healthy",
			"timestamp":   time.Now().UTC(),
			"onlineUsers": m.registry.UserCount(),
			"connections": m.registry.ConnectionCount(),
		})
	})

	ws := &socketHandler{registry: m.registry, newSender: m.newSender, logger: m.logger}
	app.Use("/ws", upgradeOnly, WebSocketAuthMiddleware(m.authPort, m.userPort, m.logger))
	app.Get("/ws", websocket.New(ws.Handle))

	v1 := app.Group("/api/v1")

	authRoutes := v1.Group("/auth")
	authRoutes.Post("/register", h.Register)
	authRoutes.Post("/login", h.Login)
	authRoutes.Get("/me", requireAuth, h.Profile)
	authRoutes.Put("/profile", requireAuth, h.UpdateProfile)

	users := v1.Group("/users", requireAuth)
	users.Get("/", h.ListUsers)
	users.Get("/search", h.SearchUsers)
	users.Get("/me/stats", h.MyStats)
	users.Get("/:id", h.GetUser)
	users.Get("/:id/stats", h.UserStats)
	users.Delete("/:id", h.DeleteUser)

	v1.Get("/presence/online", requireAuth, h.OnlineUsers)

	tasks := v1.Group("/tasks", requireAuth)
	if m.limiter != nil {
		limit := ratelimit.NewMiddleware(m.limiter, ratelimit.Config{
			Limit:   m.cfg.RateLimit,
			Window:  m.cfg.RateLimitWindow,
			UserKey: UserIDContextKey,
		}, m.logger)
		tasks.Use(mutationsOnly(limit.Handler()))
	}
	tasks.Post("/", h.CreateTask)
	tasks.Get("/", h.ListTasks)
	tasks.Get("/stats", h.TaskStats)
	tasks.Get("/my", h.MyTasks)
	tasks.Get("/user", h.UserTasks)
	tasks.Get("/overdue", h.OverdueTasks)
	tasks.Get("/:id", h.GetTask)
	tasks.Put("/:id", h.UpdateTask)
	tasks.Delete("/:id", h.DeleteTask)
}
