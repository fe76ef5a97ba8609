package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/taskboard/task-api/internal/api/handler"
	"github.com/taskboard/task-api/internal/api/middleware"
	"github.com/taskboard/task-api/internal/core/ports"
	"github.com/taskboard/task-api/internal/core/service"
	"github.com/taskboard/task-api/internal/infrastructure/config"
	mongodb "github.com/taskboard/task-api/internal/infrastructure/db/mongo"
	redisdb "github.com/taskboard/task-api/internal/infrastructure/db/redis"
	httphandlers "github.com/taskboard/task-api/internal/infrastructure/http/handlers"
)

// NewRouter wires the stores, services, and handlers and returns the Echo
// instance with all routes registered.
func NewRouter(db *mongo.Database, rdb *redis.Client, cfg *config.Config, log zerolog.Logger) *echo.Echo {
	userRepo := mongodb.NewUserRepository(db)
	taskRepo := mongodb.NewTaskRepository(db)
	listCache := redisdb.NewTaskListCache(rdb, cfg.CacheTTL)

	authService := service.NewAuthService(userRepo, cfg.JWTSecret, cfg.TokenTTL, log)
	taskService := service.NewTaskService(taskRepo, listCache, log)

	e := buildRouter(authService, taskService, cfg.JWTSecret, log)

	// Health probes need the live connections, so they are mounted here
	// rather than in buildRouter.
	healthHandler := httphandlers.NewHealthHandler()
	readinessHandler := httphandlers.NewHealthDependenciesHandler(db, rdb)
	e.GET("/api/health", healthHandler.Liveness)
	e.GET("/api/health/ready", readinessHandler.Readiness)

	return e
}

// buildRouter registers everything that does not depend on live database
// connections. Split out so tests can exercise the full HTTP surface with
// in-memory repositories.
func buildRouter(authService ports.AuthService, taskService ports.TaskService, jwtSecret string, log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("taskapi"))

	e.GET("/metrics", echoprometheus.NewHandler())

	authHandler := handler.NewAuthHandler(authService)
	taskHandler := handler.NewTaskHandler(taskService)

	auth := e.Group("/api/auth")
	auth.POST("/signup", authHandler.Signup)
	auth.POST("/signin", authHandler.Signin)

	tasks := e.Group("/api/tasks", middleware.Auth(jwtSecret))
	tasks.GET("", taskHandler.List)
	tasks.POST("", taskHandler.Create)
	tasks.GET("/:id", taskHandler.Get)
	tasks.PUT("/:id", taskHandler.Update)
	tasks.PUT("/:id/complete", taskHandler.Complete)
	tasks.DELETE("/:id", taskHandler.Delete)

	return e
}
