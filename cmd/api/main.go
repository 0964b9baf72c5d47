package main

import (
	"context"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"todolist/internal/config"
	"todolist/internal/database"
	"todolist/internal/handlers"
	"todolist/internal/middleware"
	"todolist/internal/repository"
	"todolist/internal/session"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load config")
	}

	gin.SetMode(cfg.GinMode)

	db, err := database.Connect(cfg)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to connect to database")
	}
	defer db.Close()

	if err := database.CreateTables(db); err != nil {
		logrus.WithError(err).Fatal("Failed to create tables")
	}

	registry, err := newSessionRegistry(cfg)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to initialize session registry")
	}

	api := handlers.NewAPI(
		repository.NewPostgresUserRepository(db),
		repository.NewPostgresTaskRepository(db),
		registry,
		cfg.SessionTTL,
	)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = strings.Split(cfg.CORSAllowedOrigins, ",")
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	router.Use(cors.New(corsConfig))

	setupRoutes(router, api, registry)

	addr := ":" + cfg.Port
	logrus.WithFields(logrus.Fields{"addr": addr, "mode": cfg.GinMode}).Info("Starting API server")
	if err := router.Run(addr); err != nil {
		logrus.WithError(err).Fatal("Server failed to start")
	}
}

// newSessionRegistry picks Redis when configured, otherwise the
// in-process registry. Both enforce the same TTL contract.
func newSessionRegistry(cfg *config.Config) (session.Registry, error) {
	if cfg.RedisURL == "" {
		logrus.Info("REDIS_URL not set, using in-memory session registry")
		return session.NewMemoryRegistry(cfg.SessionTTL), nil
	}
	return session.NewRedisRegistry(context.Background(), cfg.RedisURL, cfg.SessionTTL)
}

func setupRoutes(router *gin.Engine, api *handlers.API, registry session.Registry) {
	router.GET("/health", handlers.Health)

	router.POST("/auth/register", api.Register)
	router.POST("/auth/login", api.Login)
	router.GET("/auth/logout", api.Logout)

	// Registration is also reachable through the users collection.
	router.GET("/users", api.ListUsers)
	router.POST("/users", api.Register)

	authed := router.Group("")
	authed.Use(middleware.RequireAuth(registry))
	{
		authed.GET("/users/:id", api.GetUser)
		authed.PUT("/users/:id", api.UpdateUser)
		authed.DELETE("/users/:id", api.DeleteUser)

		authed.GET("/tasks", api.ListTasks)
		authed.POST("/tasks", api.CreateTask)
		authed.GET("/tasks/:id", api.GetTask)
		authed.PUT("/tasks/:id", api.UpdateTask)
		authed.DELETE("/tasks/:id", api.DeleteTask)
		authed.PATCH("/tasks/:id/mark_completed", api.MarkCompleted)
	}
}
