package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/spf13/cobra"
	swagger "github.com/swaggo/echo-swagger"

	"github.com/sinclairt/schedulable/internal/scheduler/config"
	delivery "github.com/sinclairt/schedulable/internal/scheduler/delivery/http"
	"github.com/sinclairt/schedulable/internal/scheduler/docs"
	"github.com/sinclairt/schedulable/internal/scheduler/publisher"
	"github.com/sinclairt/schedulable/internal/scheduler/repository"
	"github.com/sinclairt/schedulable/internal/scheduler/service"
	"github.com/sinclairt/schedulable/pkg/logger"
	"github.com/sinclairt/schedulable/pkg/postgres"
	"github.com/sinclairt/schedulable/pkg/redis"
	"github.com/sinclairt/schedulable/pkg/utils"
)

var configPath string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Starts the scheduling service",
	Run:   runServe,
}

func runServe(cmd *cobra.Command, args []string) {
	// Create a context that is canceled on interrupt signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load configuration
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	appLogger, err := logger.New(cfg.Logger.Level, cfg.Logger.Encoding)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = appLogger.Sync() }()

	appLogger.Info("Starting Scheduling Service", logger.Field("name", cfg.App.Name))

	loc, err := cfg.Scheduler.Location()
	if err != nil {
		appLogger.Fatal("Invalid scheduler time zone", logger.ErrorField(err))
	}
	pollingInterval, err := cfg.Scheduler.PollingDuration()
	if err != nil {
		appLogger.Fatal("Invalid polling interval", logger.ErrorField(err))
	}
	breakerTimeout, err := cfg.Scheduler.BreakerTimeoutDuration()
	if err != nil {
		appLogger.Fatal("Invalid breaker timeout", logger.ErrorField(err))
	}

	// Initialize database
	postgresCfg := postgres.Config{
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		DBName:          cfg.Database.DBName,
		SSLMode:         cfg.Database.SSLMode,
		TimeZone:        cfg.Database.TimeZone,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		LogLevel:        cfg.Database.LogLevel,
	}
	db, err := postgres.NewDB(postgresCfg)
	if err != nil {
		appLogger.Fatal("Failed to initialize database", logger.ErrorField(err))
	}
	if sqlDB, err := db.DB.DB(); err == nil {
		defer sqlDB.Close()
	}

	// Initialize Redis
	redisCfg := redis.Config{
		Host:     cfg.Redis.Host,
		Port:     cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		PoolSize: cfg.Redis.PoolSize,
	}
	redisClient, err := redis.NewClient(redisCfg)
	if err != nil {
		appLogger.Fatal("Failed to initialize Redis", logger.ErrorField(err))
	}
	defer redisClient.Close()

	// Initialize repositories
	scheduleRepo := repository.NewScheduleRepository(db.DB)
	runRepo := repository.NewScheduleRunRepository(db.DB)

	// Initialize services
	duePublisher := publisher.NewRedisPublisher(redisClient.Client, publisher.Config{
		MaxLen:        cfg.Redis.StreamMaxLen,
		RatePerSecond: cfg.Scheduler.MaxPublishPerSecond,
		Burst:         cfg.Scheduler.PublishBurst,
		MaxFailures:   cfg.Scheduler.BreakerMaxFailures,
		Timeout:       breakerTimeout,
	}, appLogger)
	schedulerSvc := service.NewSchedulerService(scheduleRepo, duePublisher, loc, appLogger, pollingInterval)
	scheduleSvc := service.NewScheduleService(scheduleRepo, runRepo, loc, appLogger)

	// Start scheduler service
	utils.GoSafe(func() { schedulerSvc.Start(ctx) })

	// Initialize Echo server
	e := echo.New()
	e.HideBanner = true

	// Initialize handlers and routes
	apiV1 := e.Group("/api/v1")
	scheduleHandler := delivery.NewScheduleHandler(scheduleSvc, appLogger)
	scheduleHandler.RegisterRoutes(apiV1.Group("/schedules"))

	docs.SwaggerInfo.Version = cfg.App.Version
	e.GET("/swagger/*", swagger.WrapHandler)

	// Start server
	go func() {
		addr := fmt.Sprintf("%s:%d", cfg.API.Host, cfg.API.Port)
		appLogger.Info("HTTP server starting", logger.Field("address", addr))
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			appLogger.Error("HTTP server failed to start", logger.ErrorField(err))
			stop() // trigger shutdown
		}
	}()

	// Wait for shutdown signal
	<-ctx.Done()

	appLogger.Info("Shutting down server...")

	// Gracefully shutdown the server
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		appLogger.Fatal("Server forced to shutdown", logger.ErrorField(err))
	}

	appLogger.Info("Server exiting")
}

// @title Schedulable API
// @version 1.0
// @description Attach calendar recurrences to records and query their occurrences.
// @license.name MIT
// @BasePath /api/v1
func main() {
	rootCmd := &cobra.Command{Use: "scheduling-service"}

	serveCmd.Flags().StringVarP(&configPath, "config", "c", "configs/config-scheduler.yaml", "Path to the configuration file")

	rootCmd.AddCommand(serveCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error executing scheduling-service CLI: %s\n", err)
		os.Exit(1)
	}
}
