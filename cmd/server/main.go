package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/hyeonlab/accounts-backend/config"
	"github.com/hyeonlab/accounts-backend/internal/app/controller"
	"github.com/hyeonlab/accounts-backend/internal/app/repository"
	"github.com/hyeonlab/accounts-backend/internal/app/service"
	"github.com/hyeonlab/accounts-backend/internal/db"
	"github.com/hyeonlab/accounts-backend/internal/mailer"
	"github.com/hyeonlab/accounts-backend/internal/middleware"
	"github.com/hyeonlab/accounts-backend/internal/router"
	"github.com/hyeonlab/accounts-backend/internal/scheduler"
	"github.com/hyeonlab/accounts-backend/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", err)
	}

	// Initialize logger
	logLevel := "info"
	if cfg.Server.Environment == "development" {
		logLevel = "debug"
	}
	logger.Initialize(logger.Config{
		Level:       logLevel,
		Format:      "console", // Use "json" for production
		EnableColor: true,
	})

	logger.Info("Starting accounts backend server", map[string]interface{}{
		"environment": cfg.Server.Environment,
		"port":        cfg.Server.Port,
		"log_level":   logLevel,
	})

	// Initialize database
	if err := db.Initialize(&cfg.Database); err != nil {
		logger.Fatal("Failed to initialize database", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("Failed to close database connection", err)
		}
	}()

	// Run migrations
	if err := db.Migrate(); err != nil {
		logger.Fatal("Failed to run migrations", err)
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(db.GetDB())
	resetRepo := repository.NewPasswordResetRepository(db.GetDB())

	// Initialize mailer
	mail := mailer.NewSMTPMailer(cfg.Mail, cfg.App)

	// Initialize services
	authService := service.NewAuthService(
		userRepo,
		mail,
		cfg.JWT.Secret,
		cfg.JWT.SessionTokenExpiry,
		cfg.JWT.VerifyTokenExpiry,
		cfg.JWT.ResendTokenExpiry,
	)
	passwordResetService := service.NewPasswordResetService(
		userRepo,
		resetRepo,
		mail,
		cfg.JWT.ResetTokenExpiry,
	)
	userService := service.NewUserService(userRepo)

	// Initialize controllers
	authController := controller.NewAuthController(authService, passwordResetService)
	userController := controller.NewUserController(userService)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(cfg.JWT.Secret, userRepo)

	// Setup router
	r := router.NewRouter(authController, userController, authMiddleware, cfg)
	engine := r.Setup()

	// Start the reset-record cleanup scheduler
	cleanupScheduler := scheduler.NewResetCleanupScheduler(passwordResetService)
	if err := cleanupScheduler.Start(); err != nil {
		logger.Fatal("Failed to start cleanup scheduler", err)
	}
	defer cleanupScheduler.Stop()

	// Start server in a goroutine
	go func() {
		addr := fmt.Sprintf(":%s", cfg.Server.Port)
		logger.Info("Server started successfully", map[string]interface{}{
			"address": addr,
			"pid":     os.Getpid(),
		})
		if err := engine.Run(addr); err != nil {
			logger.Fatal("Failed to start server", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server gracefully...")
	logger.Info("Server stopped successfully")
}
