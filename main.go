package main

import (
	"context"
	"log"
	"os"
	"time"

	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/types"
	"github.com/redis/go-redis/v9"

	"github.com/vishu1803/Collaborative-task-manager/config"
	"github.com/vishu1803/Collaborative-task-manager/middleware/ratelimit"
	"github.com/vishu1803/Collaborative-task-manager/modules/api"
	"github.com/vishu1803/Collaborative-task-manager/modules/auth"
	"github.com/vishu1803/Collaborative-task-manager/modules/notification"
	"github.com/vishu1803/Collaborative-task-manager/modules/presence"
	"github.com/vishu1803/Collaborative-task-manager/modules/task"
	"github.com/vishu1803/Collaborative-task-manager/modules/user"
	"github.com/vishu1803/Collaborative-task-manager/storage"
)

const shutdownTimeout = 30 * time.Second

func main() {
	log.Println("=== Collaborative Task Manager ===")

	cfg := config.Load()

	app, err := mono.NewMonoApplication(
		mono.WithShutdownTimeout(shutdownTimeout),
		mono.WithLogLevel(mono.LogLevelInfo),
		mono.WithLogFormat(mono.LogFormatText),
	)
	if err != nil {
		log.Fatalf("Failed to create application: %v", err)
	}
	logger := app.Logger()

	db, err := storage.Open(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}

	presenceModule := presence.NewModule(cfg.PresenceQueueSize, logger)
	notificationModule := notification.NewModule(logger)
	notificationModule.SetEmitter(presenceModule.Registry())

	apiModule := api.NewModule(cfg, logger)
	apiModule.SetPresence(presenceModule)

	redisClient := connectRedis(cfg, logger)
	if redisClient != nil {
		apiModule.SetRateLimiter(ratelimit.NewLimiter(redisClient, "ratelimit:tasks:"))
	}

	// Order: independent modules first, then modules with dependencies
	app.Register(user.NewModule(db, logger))
	app.Register(auth.NewModule(db, cfg, logger))
	app.Register(presenceModule)
	app.Register(notificationModule) // consumes task events
	app.Register(task.NewModule(db, logger))
	app.Register(apiModule)

	if err := app.Start(context.Background()); err != nil {
		log.Fatalf("Failed to start application: %v", err)
	}

	printStartupInfo(cfg, redisClient != nil)

	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		shutdownTimeout,
		map[string]gfshutdown.Operation{
			"mono-app": func(ctx context.Context) error {
				log.Println("Graceful shutdown initiated...")
				if err := app.Stop(ctx); err != nil {
					return err
				}
				if redisClient != nil {
					_ = redisClient.Close()
				}
				return storage.Close(db)
			},
		},
	)

	exitCode := <-wait
	log.Printf("Application exited with code: %d", exitCode)
	os.Exit(exitCode)
}

// connectRedis returns nil when rate limiting is disabled or Redis is unreachable.
func connectRedis(cfg config.Config, logger types.Logger) *redis.Client {
	if !cfg.RateLimitEnabled() {
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("Redis unavailable, rate limiting disabled", "addr", cfg.RedisAddr, "error", err)
		_ = client.Close()
		return nil
	}
	return client
}

func printStartupInfo(cfg config.Config, rateLimited bool) {
	log.Println("")
	log.Println("Application started successfully!")
	log.Println("")
	log.Printf("REST API Endpoints (http://localhost:%s):", cfg.Port)
	log.Println("  POST   /api/v1/auth/register     - Register a new user")
	log.Println("  POST   /api/v1/auth/login        - Login and get a token")
	log.Println("  GET    /api/v1/auth/me           - Current user")
	log.Println("  GET    /api/v1/users             - List users")
	log.Println("  GET    /api/v1/presence/online   - Online users")
	log.Println("  POST   /api/v1/tasks             - Create a task")
	log.Println("  GET    /api/v1/tasks             - List tasks (filter, sort, paginate)")
	log.Println("  PUT    /api/v1/tasks/:id         - Update a task")
	log.Println("  DELETE /api/v1/tasks/:id         - Delete a task")
	log.Println("  GET    /ws?token=<jwt>           - Real-time notifications")
	log.Println("")
	if rateLimited {
		log.Printf("Task mutations limited to %d per %s per user", cfg.RateLimit, cfg.RateLimitWindow)
	}
	log.Println("Press Ctrl+C to shutdown gracefully")
}
