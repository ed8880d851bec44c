package main

import (
	"log"
	"net/http"

	"blogly/internal/config"
	"blogly/internal/database"
	"blogly/internal/handlers"

	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := zap.NewProductionConfig().Build()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	// Initialize database
	if err := database.InitDB(cfg.DatabasePath); err != nil {
		logger.Fatal("failed to initialize database", zap.Error(err))
	}
	defer database.DB.Close()

	handlers.Init(cfg, logger)
	r := handlers.NewRouter()

	logger.Info("server starting", zap.String("addr", cfg.ListenAddr))
	if err := http.ListenAndServe(cfg.ListenAddr, r); err != nil {
		logger.Fatal("server exited", zap.Error(err))
	}
}
