package server

import (
	"net/http"
	"os"

	cachepackage "task-service/cache"
	"task-service/config"
	"task-service/database"

	"github.com/umakantv/go-utils/logger"
	"go.uber.org/zap"
)

// StartServer wires everything together and blocks on the listen loop.
func StartServer() {
	// Initialize logger
	logger.Init(logger.LoggerConfig{
		CallerKey:  "file",
		TimeKey:    "timestamp",
		CallerSkip: 1,
	})

	logger.Info("Starting Task Service...")

	cfg := config.FromEnv()

	// Initialize database
	dbConn := database.Initialize(cfg.DatabasePath)
	defer dbConn.Close()

	// Initialize cache
	cache := cachepackage.Initialize(cfg)
	defer cache.Close()

	handler := NewRouter(cfg, dbConn, cache)

	logger.Info("Task Service started", zap.String("port", cfg.Port))
	logger.Info("Health check: GET /health")
	logger.Info("API endpoints: /auth, /api/tasks, /api/users")

	if err := http.ListenAndServe(":"+cfg.Port, handler); err != nil {
		logger.Error("Server failed to start", zap.Error(err))
		os.Exit(1)
	}
}
