package main

import (
	"context"
	"log"
	"os"
	"time"

	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/go-monolith/mono"
	"github.com/joho/godotenv"

	"github.com/example/realtime-tasks-demo/middleware/ratelimit"
	"github.com/example/realtime-tasks-demo/modules/api"
	"github.com/example/realtime-tasks-demo/modules/auth"
	"github.com/example/realtime-tasks-demo/modules/broadcast"
	"github.com/example/realtime-tasks-demo/modules/task"
)

const shutdownTimeout = 30 * time.Second

func main() {
	log.Println("=== Realtime Tasks Demo - Fiber + EventBus Fan-out ===")

	// Load .env if present; real environments set variables directly
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded configuration from .env")
	}

	// Create mono application
	app, err := mono.NewMonoApplication(
		mono.WithShutdownTimeout(shutdownTimeout),
		mono.WithLogLevel(mono.LogLevelInfo),
		mono.WithLogFormat(mono.LogFormatText),
	)
	if err != nil {
		log.Fatalf("Failed to create application: %v", err)
	}

	// Rate limiting middleware, enabled only when Redis is configured.
	// Middleware must be registered BEFORE regular modules to intercept
	// their service registrations.
	if redisAddr := os.Getenv("REDIS_ADDR"); redisAddr != "" {
		rateLimitMiddleware, err := ratelimit.New(
			ratelimit.WithRedisAddr(redisAddr),
			ratelimit.WithRedisPassword(os.Getenv("REDIS_PASSWORD")),
			ratelimit.WithDefaultLimit(100, time.Minute),
			// Writes are throttled harder than reads
			ratelimit.WithServiceLimit("create-task", 30, time.Minute),
			ratelimit.WithServiceLimit("share-task", 30, time.Minute),
			ratelimit.WithServiceLimit("google-login", 10, time.Minute),
		)
		if err != nil {
			log.Fatalf("Failed to create rate limiting middleware: %v", err)
		}
		app.Register(rateLimitMiddleware)
	} else {
		log.Println("REDIS_ADDR not set, rate limiting disabled")
	}

	// Create modules
	authModule := auth.NewModule()
	taskModule := task.NewModule()
	broadcastModule := broadcast.NewModule()
	apiModule := api.NewModule(broadcastModule.GetHub())

	// Register modules with the framework.
	// Order: independent modules first, then modules with dependencies
	// - auth: users, Google OAuth, session tokens (ServiceProviderModule)
	// - broadcast: WebSocket hub + event consumer
	// - task: core domain, depends on auth for share-by-email
	// - api: driving adapter (Fiber HTTP/WebSocket server)
	app.Register(authModule)
	app.Register(broadcastModule)
	app.Register(taskModule)
	app.Register(apiModule)

	// Start application
	if err := app.Start(context.Background()); err != nil {
		log.Fatalf("Failed to start application: %v", err)
	}

	printStartupInfo()

	// Graceful shutdown
	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		shutdownTimeout,
		map[string]gfshutdown.Operation{
			"mono-app": func(ctx context.Context) error {
				log.Println("Graceful shutdown initiated...")
				return app.Stop(ctx)
			},
		},
	)

	exitCode := <-wait
	log.Printf("Application exited with code: %d", exitCode)
	os.Exit(exitCode)
}

func printStartupInfo() {
	addr := os.Getenv("HTTP_ADDR")
	if addr == "" {
		addr = ":3000"
	}
	mongoURI := os.Getenv("MONGO_URI")
	if mongoURI == "" {
		mongoURI = "mongodb://localhost:27017"
	}

	log.Println("")
	log.Println("Application started successfully!")
	log.Println("")
	log.Println("Architecture:")
	log.Println("  - HTTP Framework: Fiber with WebSocket support")
	log.Println("  - Event Bus: NATS JetStream (internal pubsub)")
	log.Printf("  - MongoDB: %s", mongoURI)
	log.Println("")
	log.Println("Realtime fan-out:")
	log.Println("  - TaskChanged events -> broadcast module -> owner + shared users")
	log.Println("  - TaskRemoved events -> broadcast module -> owner + shared users")
	log.Println("")
	log.Printf("REST API Endpoints (http://localhost%s):", addr)
	log.Println("  GET    /health                      - Health check")
	log.Println("  GET    /api/auth/google             - Start Google sign-in")
	log.Println("  GET    /api/auth/google/callback    - OAuth callback, issues session token")
	log.Println("  GET    /api/tasks                   - List visible tasks")
	log.Println("  POST   /api/tasks                   - Create a task")
	log.Println("  GET    /api/tasks/:id               - Get a task")
	log.Println("  PUT    /api/tasks/:id               - Update a task")
	log.Println("  DELETE /api/tasks/:id               - Delete a task")
	log.Println("  POST   /api/tasks/:id/share         - Share a task by email")
	log.Println("  POST   /api/tasks/suggest-priority  - Suggest a priority")
	log.Println("  GET    /api/user/profile            - Current user profile")
	log.Println("  PATCH  /api/user/xp                 - Adjust XP")
	log.Println("  POST   /api/user/find               - Find a user by email")
	log.Println("")
	log.Printf("WebSocket Endpoint (ws://localhost%s/ws?token=<jwt>):", addr)
	log.Println("  Pushes: refresh-tasks (full task), remove-task (task id)")
	log.Println("")
	log.Println("Press Ctrl+C to shutdown gracefully")
}
