package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mkealoha/ainabucks-server/internal/api"
	"github.com/mkealoha/ainabucks-server/internal/cache"
	"github.com/mkealoha/ainabucks-server/internal/config"
	"github.com/mkealoha/ainabucks-server/internal/repository"
	"github.com/mkealoha/ainabucks-server/internal/service"
	"github.com/mkealoha/ainabucks-server/internal/utils"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg := config.LoadConfig()

	logger, err := utils.NewLogger()
	if err != nil {
		log.Fatalf("Failed to set up logger: %v", err)
	}
	defer logger.Sync()

	// Set up database connection
	db, err := config.SetupDatabase(cfg)
	if err != nil {
		logger.Fatal("Failed to set up database", zap.Error(err))
	}
	defer db.Close()

	// Create repository
	repo := repository.NewPostgresRepository(db)

	// View cache invalidated by the service after each mutating operation
	views := cache.New()

	// Create service
	svc := service.NewDefaultService(repo, views, cfg.Auth.JWTSecret)

	// Create API handler
	handler := api.NewHandler(svc, views, logger)

	// Set up Gin router
	router := gin.Default()

	// Add middleware for JWT secret
	router.Use(func(c *gin.Context) {
		c.Set("jwtSecret", []byte(cfg.Auth.JWTSecret))
		c.Next()
	})

	// Set up routes
	handler.SetupRoutes(router)

	// Start server
	serverAddr := fmt.Sprintf(":%d", cfg.Server.Port)
	logger.Info("Starting server", zap.String("addr", serverAddr))
	if err := http.ListenAndServe(serverAddr, router); err != nil {
		logger.Fatal("Failed to start server", zap.Error(err))
	}
}
