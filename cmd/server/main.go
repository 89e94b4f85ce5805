package main

import (
	"context"
	"go-finance-ledger/internal/config"
	"go-finance-ledger/pkg/database"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	cfg := config.LoadConfig()
	appLogger := config.NewLogger()

	db, err := database.NewConnection(&cfg.Database)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to connect to database")
	}

	if cfg.Database.Driver == "sqlite" {
		if err := database.AutoMigrate(db); err != nil {
			appLogger.Fatalf("Failed to migrate sqlite schema: %v", err)
		}
	} else if err := database.RunMigrations(&cfg.Database, appLogger); err != nil {
		appLogger.Fatalf("Failed to run migrations: %v", err)
	}

	// Redis is optional; without it history reads go straight to the database.
	redisClient := database.ConnectRedis(&cfg.Redis, appLogger)
	if redisClient != nil {
		defer redisClient.Close()
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	validator := config.NewValidator()

	services := config.Bootstrap(&config.BootstrapConfig{
		DB:           db,
		Redis:        redisClient,
		App:          router,
		Log:          appLogger,
		Validate:     validator,
		JWTConfig:    &cfg.JWT,
		LedgerConfig: &cfg.Ledger,
		NotifyConfig: &cfg.Notify,
	})

	server := &http.Server{
		Addr:           ":" + cfg.Server.Port,
		Handler:        router,
		ReadTimeout:    time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout:   time.Duration(cfg.Server.WriteTimeout) * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	// Start server in a goroutine
	go func() {
		appLogger.WithField("port", cfg.Server.Port).Info("Starting HTTP server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.WithError(err).Fatal("Failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		appLogger.WithError(err).Error("Server forced to shutdown")
	} else {
		appLogger.Info("Server exited gracefully")
	}

	// Let queued notifications finish before exit.
	services.Dispatcher.Wait()
}
