package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"

	"campool/internal/app"
	"campool/internal/config"
	"campool/internal/handler"
	internalRedis "campool/internal/redis"
	"campool/internal/repository/postgres"
	"campool/internal/service"
)

func main() {
	// Load configuration.
	cfg := config.Load()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Initialize New Relic FIRST (before database so we can instrument DB).
	var nrApp *newrelic.Application
	var err error
	if cfg.NewRelic.Enabled && cfg.NewRelic.LicenseKey != "" {
		nrApp, err = newrelic.NewApplication(
			newrelic.ConfigAppName(cfg.NewRelic.AppName),
			newrelic.ConfigLicense(cfg.NewRelic.LicenseKey),
			newrelic.ConfigDistributedTracerEnabled(true),
			newrelic.ConfigAppLogForwardingEnabled(true),
		)
		if err != nil {
			log.Printf("failed to initialize New Relic: %v", err)
		} else {
			log.Printf("New Relic enabled: app=%s (with DB instrumentation)", cfg.NewRelic.AppName)
		}
	}

	// Initialize database with New Relic instrumentation.
	db, err := app.NewDatabase(ctx, cfg.Database, nrApp)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()
	log.Println("Connected to PostgreSQL")

	// Initialize Redis with New Relic instrumentation.
	redisClient, err := app.NewRedisClient(ctx, cfg.Redis, nrApp)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()
	log.Println("Connected to Redis")

	// Wire dependencies.
	server, sweeps := wireServer(db, redisClient, nrApp, cfg)

	// Start maintenance sweeps.
	sweepCtx, sweepCancel := context.WithCancel(context.Background())
	defer sweepCancel()
	sweeps.Start(sweepCtx)
	log.Println("Maintenance sweeps started")

	// Start server in goroutine.
	go func() {
		log.Printf("Starting server on port %s", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Graceful shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")
	sweepCancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}

// wireServer wires all dependencies and returns the HTTP server plus the
// sweep service so the caller controls its lifetime.
func wireServer(db *sql.DB, redisClient *redis.Client, nrApp *newrelic.Application, cfg *config.Config) (*http.Server, *service.SweepService) {
	// Initialize Redis stores.
	originIndex := internalRedis.NewOriginIndex(redisClient)
	lockStore := internalRedis.NewLockStore(redisClient)
	cacheStore := internalRedis.NewCacheStore(redisClient)

	// Initialize repositories.
	txManager := postgres.NewTxManager(db)
	requestRepo := postgres.NewRequestRepository(db)
	matchRepo := postgres.NewMatchRepository(db)
	userRepo := postgres.NewUserRepository(db)
	notificationRepo := postgres.NewNotificationRepository(db)
	taskRepo := postgres.NewTaskRepository(db)

	// Initialize services.
	scorer := service.NewScorer(service.ScoreConfig{
		OriginCutoffKm:  cfg.Matching.OriginCutoffKm,
		DestCutoffKm:    cfg.Matching.DestCutoffKm,
		MaxTimeWindow:   cfg.Matching.MaxTimeWindow,
		OriginWeight:    service.DefaultScoreConfig().OriginWeight,
		DestWeight:      service.DefaultScoreConfig().DestWeight,
		TimeWeight:      service.DefaultScoreConfig().TimeWeight,
		DepartmentBonus: service.DefaultScoreConfig().DepartmentBonus,
	})
	dispatcher := service.NewNotificationDispatcher(&service.LogPusher{})
	lifecycleService := service.NewLifecycleService(
		txManager, requestRepo, matchRepo, userRepo, scorer, dispatcher,
		lockStore, originIndex,
		service.LifecycleConfig{
			CostBase:      cfg.Matching.CostBase,
			CostPerKm:     cfg.Matching.CostPerKm,
			MaxGroupSize:  cfg.Matching.MaxGroupSize,
			ReminderDelay: cfg.Matching.ReminderDelay,
		},
	)
	candidateService := service.NewCandidateService(requestRepo, userRepo, originIndex, cacheStore, scorer)
	requestService := service.NewRequestService(requestRepo, userRepo, lifecycleService, originIndex)
	sweepService := service.NewSweepService(
		txManager, matchRepo, requestRepo, taskRepo, lifecycleService, dispatcher, originIndex,
		service.SweepConfig{
			ConfirmDeadline:  cfg.Matching.ConfirmDeadline,
			ExpiryInterval:   cfg.Sweeps.ExpiryInterval,
			TimeoutInterval:  cfg.Sweeps.TimeoutInterval,
			CleanupInterval:  cfg.Sweeps.CleanupInterval,
			ReminderInterval: cfg.Sweeps.ReminderInterval,
			BatchSize:        cfg.Sweeps.BatchSize,
		},
	)

	// Initialize handlers.
	requestHandler := handler.NewRequestHandler(requestService, candidateService)
	matchHandler := handler.NewMatchHandler(lifecycleService, matchRepo)
	notificationHandler := handler.NewNotificationHandler(notificationRepo)
	adminHandler := handler.NewAdminHandler(sweepService)

	router := app.NewRouter(app.RouterDeps{
		RequestHandler:      requestHandler,
		MatchHandler:        matchHandler,
		NotificationHandler: notificationHandler,
		AdminHandler:        adminHandler,
		RedisClient:         redisClient,
		NewRelicApp:         nrApp,
	})

	return &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}, sweepService
}
